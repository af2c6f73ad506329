package ipintel

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var ipapiAPIDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Name: "warden_ipapi_api_duration_sec",
	Help: "Duration of ip-api.com geolocation calls",
})

var ipapiAPICount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "warden_ipapi_api_count",
	Help: "Number of ip-api.com geolocation calls, by HTTP status code",
}, []string{"status"})

var ipCacheHits = promauto.NewCounter(prometheus.CounterOpts{
	Name: "warden_ipintel_cache_hits",
	Help: "Number of IP geolocation lookups served from cache",
})
