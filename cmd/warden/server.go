package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/fwber/warden/cachestore"
	"github.com/fwber/warden/countstore"
	"github.com/fwber/warden/flagstore"
	"github.com/fwber/warden/geospoof"
	"github.com/fwber/warden/geospoof/ipintel"
	"github.com/fwber/warden/moderation"
	"github.com/fwber/warden/moderation/providers"
	"github.com/fwber/warden/setstore"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	slogecho "github.com/samber/slog-echo"
)

type Server struct {
	logger    *slog.Logger
	echo      *echo.Echo
	moderator *moderation.Engine
	detector  *geospoof.Detector
}

type Config struct {
	Logger              *slog.Logger
	RedisURL            string
	OpenAIAPIKey        string
	GeminiAPIKey        string
	GeminiModel         string
	ModerationProviders []string
	SetsFileJSON        string
	DecisionCacheTTL    time.Duration
	FailSafeMode        string
	VelocityCeilingKmh  float64
	IPMismatchKm        float64
}

func NewServer(config Config) (*Server, error) {
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
	}

	sets := setstore.NewMemSetStore()
	if config.SetsFileJSON != "" {
		if err := sets.LoadFromFileJSON(config.SetsFileJSON); err != nil {
			return nil, fmt.Errorf("initializing in-process setstore: %v", err)
		}
		logger.Info("loaded set config from JSON", "path", config.SetsFileJSON)
	}

	var counters countstore.CountStore
	var cache cachestore.CacheStore
	var flags flagstore.FlagStore
	// the store-level TTL is the default for IP lookups; decision entries
	// carry the moderation policy's cache TTL per entry
	if config.RedisURL != "" {
		cnt, err := countstore.NewRedisCountStore(config.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("initializing redis countstore: %v", err)
		}
		counters = cnt

		csh, err := cachestore.NewRedisCacheStore(config.RedisURL, 30*time.Minute)
		if err != nil {
			return nil, fmt.Errorf("initializing redis cachestore: %v", err)
		}
		cache = csh

		flg, err := flagstore.NewRedisFlagStore(config.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("initializing redis flagstore: %v", err)
		}
		flags = flg
	} else {
		counters = countstore.NewMemCountStore()
		cache = cachestore.NewMemCacheStore(5_000, 30*time.Minute)
		flags = flagstore.NewMemFlagStore()
	}

	registry := moderation.NewRegistry()
	registry.Register("openai", func() (moderation.ClassifierProvider, error) {
		return providers.NewOpenAIProvider(config.OpenAIAPIKey, "")
	})
	registry.Register("gemini", func() (moderation.ClassifierProvider, error) {
		return providers.NewGeminiProvider(config.GeminiAPIKey, config.GeminiModel)
	})
	registry.Register("wordlist", func() (moderation.ClassifierProvider, error) {
		return providers.NewWordlistProvider(sets), nil
	})

	modPolicy := moderation.DefaultPolicy()
	modPolicy.Providers = config.ModerationProviders
	if config.DecisionCacheTTL > 0 {
		modPolicy.CacheTTL = config.DecisionCacheTTL
	}
	if config.FailSafeMode != "" {
		modPolicy.FailSafeMode = config.FailSafeMode
	}

	moderator, err := moderation.NewEngine(logger, modPolicy, registry, cache)
	if err != nil {
		return nil, fmt.Errorf("initializing moderation engine: %w", err)
	}

	ipRegistry := ipintel.NewRegistry()
	ipRegistry.Register("ipapi", func() (ipintel.Provider, error) {
		return ipintel.NewIPAPIClient(logger, cache, sets), nil
	})
	ipProvider, err := ipRegistry.Build("ipapi")
	if err != nil {
		return nil, fmt.Errorf("initializing IP intelligence provider: %w", err)
	}

	geoPolicy := geospoof.DefaultPolicy()
	if config.VelocityCeilingKmh > 0 {
		geoPolicy.VelocityCeilingKmh = config.VelocityCeilingKmh
	}
	if config.IPMismatchKm > 0 {
		geoPolicy.IPMismatchThresholdKm = config.IPMismatchKm
	}
	geoEngine, err := geospoof.NewEngine(logger, geoPolicy)
	if err != nil {
		return nil, fmt.Errorf("initializing geo-spoof engine: %w", err)
	}
	detector := geospoof.NewDetector(logger, geoEngine, ipProvider, counters, flags)

	e := echo.New()
	e.HideBanner = true
	e.Use(slogecho.New(logger))
	e.Use(middleware.Recover())

	s := &Server{
		logger:    logger,
		echo:      e,
		moderator: moderator,
		detector:  detector,
	}

	e.GET("/healthz", s.handleHealthz)
	e.POST("/api/moderation/evaluate", s.handleModerationEvaluate)
	e.POST("/api/geospoof/evaluate", s.handleGeoSpoofEvaluate)
	e.POST("/admin/prune", s.handlePrune)

	return s, nil
}

// RunAPI serves the HTTP API until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) RunAPI(ctx context.Context, bind string) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.echo.Start(bind)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down HTTP API")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.echo.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	}
}

func (s *Server) RunMetrics(listen string) error {
	http.Handle("/metrics", promhttp.Handler())
	return http.ListenAndServe(listen, nil)
}
