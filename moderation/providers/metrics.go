package providers

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var geminiAPIDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Name: "warden_gemini_api_duration_sec",
	Help: "Duration of Gemini moderation API calls",
})

var geminiAPICount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "warden_gemini_api_count",
	Help: "Number of Gemini moderation API calls, by HTTP status code",
}, []string{"status"})
