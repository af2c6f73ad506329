package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/carlmjohnson/versioninfo"
	_ "github.com/joho/godotenv/autoload"
	cli "github.com/urfave/cli/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	tracesdk "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
)

func main() {
	if err := run(os.Args); err != nil {
		slog.Error("exiting", "err", err)
		os.Exit(-1)
	}
}

func run(args []string) error {

	app := cli.App{
		Name:    "warden",
		Usage:   "trust and safety decision daemon (content moderation and geo-spoof detection)",
		Version: versioninfo.Short(),
	}

	app.Commands = []*cli.Command{
		runCmd,
	}

	return app.Run(args)
}

var runCmd = &cli.Command{
	Name:  "run",
	Usage: "run the service",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "redis-url",
			Usage:   "redis connection URL for counters, caches, and flags; in-process stores if empty",
			EnvVars: []string{"WARDEN_REDIS_URL", "REDIS_URL"},
		},
		&cli.StringFlag{
			Name:    "openai-api-key",
			Usage:   "API key for the OpenAI moderation endpoint",
			EnvVars: []string{"OPENAI_API_KEY"},
		},
		&cli.StringFlag{
			Name:    "gemini-api-key",
			Usage:   "API key for the Gemini generative language API",
			EnvVars: []string{"GEMINI_API_KEY"},
		},
		&cli.StringFlag{
			Name:    "gemini-model",
			Value:   "gemini-2.0-flash",
			EnvVars: []string{"WARDEN_GEMINI_MODEL"},
		},
		&cli.StringSliceFlag{
			Name:    "moderation-providers",
			Usage:   "classifier providers to fan out to (openai, gemini, wordlist)",
			Value:   cli.NewStringSlice("wordlist"),
			EnvVars: []string{"WARDEN_MODERATION_PROVIDERS"},
		},
		&cli.StringFlag{
			Name:    "sets-file-json",
			Usage:   "file path of JSON file containing wordlists and the datacenter ISP list",
			EnvVars: []string{"WARDEN_SETS_FILE_JSON"},
		},
		&cli.DurationFlag{
			Name:    "decision-cache-ttl",
			Usage:   "how long moderation decisions stay cached by content fingerprint",
			Value:   time.Hour,
			EnvVars: []string{"WARDEN_DECISION_CACHE_TTL"},
		},
		&cli.StringFlag{
			Name:    "fail-safe-mode",
			Usage:   "decision when all classifier providers fail: 'closed' rejects, 'open' approves",
			Value:   "closed",
			EnvVars: []string{"WARDEN_FAIL_SAFE_MODE"},
		},
		&cli.Float64Flag{
			Name:    "velocity-ceiling-kmh",
			Usage:   "fastest plausible travel speed between location fixes",
			Value:   900,
			EnvVars: []string{"WARDEN_VELOCITY_CEILING_KMH"},
		},
		&cli.Float64Flag{
			Name:    "ip-mismatch-km",
			Usage:   "radius within which GPS and IP geolocation should agree",
			Value:   100,
			EnvVars: []string{"WARDEN_IP_MISMATCH_KM"},
		},
		&cli.StringFlag{
			Name:    "bind",
			Usage:   "IP or address, and port, to listen on for HTTP APIs",
			Value:   ":3899",
			EnvVars: []string{"WARDEN_BIND"},
		},
		&cli.StringFlag{
			Name:    "metrics-listen",
			Usage:   "IP or address, and port, to listen on for metrics APIs",
			Value:   ":3898",
			EnvVars: []string{"WARDEN_METRICS_LISTEN"},
		},
	},
	Action: func(cctx *cli.Context) error {
		logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
		slog.SetDefault(logger)

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		// Enable OTLP HTTP exporter
		// For relevant environment variables:
		// https://pkg.go.dev/go.opentelemetry.io/otel/exporters/otlp/otlptrace#readme-environment-variables
		// At a minimum, you need to set
		// OTEL_EXPORTER_OTLP_ENDPOINT=http://localhost:4318
		if ep := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); ep != "" {
			slog.Info("setting up trace exporter", "endpoint", ep)
			exp, err := otlptracehttp.New(ctx)
			if err != nil {
				log.Fatal("failed to create trace exporter", "error", err)
			}
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), time.Second)
				defer cancel()
				if err := exp.Shutdown(ctx); err != nil {
					slog.Error("failed to shutdown trace exporter", "error", err)
				}
			}()

			tp := tracesdk.NewTracerProvider(
				tracesdk.WithBatcher(exp),
				tracesdk.WithResource(resource.NewWithAttributes(
					semconv.SchemaURL,
					semconv.ServiceNameKey.String("warden"),
					attribute.String("env", os.Getenv("ENVIRONMENT")),         // DataDog
					attribute.String("environment", os.Getenv("ENVIRONMENT")), // Others
					attribute.Int64("ID", 1),
				)),
			)
			otel.SetTracerProvider(tp)
		}

		srv, err := NewServer(Config{
			Logger:              logger,
			RedisURL:            cctx.String("redis-url"),
			OpenAIAPIKey:        cctx.String("openai-api-key"),
			GeminiAPIKey:        cctx.String("gemini-api-key"),
			GeminiModel:         cctx.String("gemini-model"),
			ModerationProviders: cctx.StringSlice("moderation-providers"),
			SetsFileJSON:        cctx.String("sets-file-json"),
			DecisionCacheTTL:    cctx.Duration("decision-cache-ttl"),
			FailSafeMode:        cctx.String("fail-safe-mode"),
			VelocityCeilingKmh:  cctx.Float64("velocity-ceiling-kmh"),
			IPMismatchKm:        cctx.Float64("ip-mismatch-km"),
		})
		if err != nil {
			return err
		}

		go func() {
			if err := srv.RunMetrics(cctx.String("metrics-listen")); err != nil {
				slog.Error("failed to start metrics endpoint", "error", err)
				panic(fmt.Errorf("failed to start metrics endpoint: %w", err))
			}
		}()

		if err := srv.RunAPI(ctx, cctx.String("bind")); err != nil {
			return fmt.Errorf("failed to run trust and safety service: %w", err)
		}
		return nil
	},
}
