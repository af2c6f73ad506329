package ipintel

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/fwber/warden/cachestore"
	"github.com/fwber/warden/keyword"
	"github.com/fwber/warden/setstore"
	"github.com/fwber/warden/util"

	"github.com/carlmjohnson/versioninfo"
	"golang.org/x/time/rate"
)

const IPAPIProviderName = "ipapi"

const defaultIPAPIHost = "http://ip-api.com"

// ip-api.com free tier allows 45 requests per minute.
const ipapiFreeTierPerMin = 45

const ipCacheName = "ipgeo"

// IPAPIClient resolves addresses against ip-api.com. Lookups are throttled
// to the free-tier budget and cached, since location updates from the same
// client re-resolve the same address repeatedly.
//
// The `proxy` response field covers VPNs and Tor exits; `hosting` covers
// datacenter ranges. As a supplement, the ISP name is also slug-matched
// against the "datacenter-isps" set when one is configured.
type IPAPIClient struct {
	Client  *http.Client
	Logger  *slog.Logger
	Host    string
	Limiter *rate.Limiter
	Cache   cachestore.CacheStore
	Sets    setstore.SetStore
}

var _ Provider = (*IPAPIClient)(nil)

// response schema: https://ip-api.com/docs/api:json
type ipapiResp struct {
	Status  string  `json:"status"`
	Message string  `json:"message"`
	Country string  `json:"country"`
	City    string  `json:"city"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	ISP     string  `json:"isp"`
	Proxy   bool    `json:"proxy"`
	Hosting bool    `json:"hosting"`
}

func NewIPAPIClient(logger *slog.Logger, cache cachestore.CacheStore, sets setstore.SetStore) *IPAPIClient {
	return &IPAPIClient{
		Client:  util.RobustHTTPClient(),
		Logger:  logger,
		Host:    defaultIPAPIHost,
		Limiter: rate.NewLimiter(rate.Limit(float64(ipapiFreeTierPerMin)/60.0), 5),
		Cache:   cache,
		Sets:    sets,
	}
}

func (c *IPAPIClient) Name() string {
	return IPAPIProviderName
}

func (c *IPAPIClient) Resolve(ctx context.Context, ip string) (*IpLocation, error) {
	if IsPrivateIP(ip) {
		return nil, fmt.Errorf("%w: %s", ErrPrivateIP, ip)
	}

	if c.Cache != nil {
		if raw, ok, err := c.Cache.Get(ctx, ipCacheName, ip); err != nil {
			c.Logger.Warn("IP cache read failed", "err", err, "ip", ip)
		} else if ok {
			ipCacheHits.Inc()
			var loc IpLocation
			if err := json.Unmarshal([]byte(raw), &loc); err == nil {
				return &loc, nil
			}
			c.Logger.Warn("corrupt cached IP location, re-resolving", "ip", ip)
		}
	}

	if err := c.Limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("waiting for ip-api rate budget: %w", err)
	}

	url := fmt.Sprintf("%s/json/%s?fields=status,message,country,city,lat,lon,isp,proxy,hosting", c.Host, ip)
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "warden/"+versioninfo.Short())

	start := time.Now()
	defer func() {
		ipapiAPIDuration.Observe(time.Since(start).Seconds())
	}()

	res, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ip-api request failed: %w", err)
	}
	defer res.Body.Close()

	ipapiAPICount.WithLabelValues(fmt.Sprint(res.StatusCode)).Inc()
	if res.StatusCode != 200 {
		return nil, fmt.Errorf("ip-api request failed statusCode=%d", res.StatusCode)
	}

	respBytes, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read ip-api resp body: %w", err)
	}

	var respObj ipapiResp
	if err := json.Unmarshal(respBytes, &respObj); err != nil {
		return nil, fmt.Errorf("failed to parse ip-api resp JSON: %w", err)
	}
	if respObj.Status != "success" {
		return nil, fmt.Errorf("ip-api lookup failed for %s: %s", ip, respObj.Message)
	}

	loc := &IpLocation{
		Latitude:     respObj.Lat,
		Longitude:    respObj.Lon,
		Country:      respObj.Country,
		City:         respObj.City,
		ISP:          respObj.ISP,
		IsVPN:        respObj.Proxy,
		IsDataCenter: respObj.Hosting,
	}
	if !loc.IsDataCenter && c.Sets != nil {
		hit, err := c.Sets.InSet(ctx, "datacenter-isps", keyword.Slugify(loc.ISP))
		if err == nil && hit {
			loc.IsDataCenter = true
		}
	}

	if c.Cache != nil {
		if raw, err := json.Marshal(loc); err == nil {
			if err := c.Cache.Set(ctx, ipCacheName, ip, string(raw), 0); err != nil {
				c.Logger.Warn("IP cache write failed", "err", err, "ip", ip)
			}
		}
	}
	return loc, nil
}
