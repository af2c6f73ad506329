package geospoof

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var findingsSignificant = promauto.NewCounter(prometheus.CounterOpts{
	Name: "warden_geospoof_findings_significant",
	Help: "Number of findings above the significance bar",
})

var findingsHighRisk = promauto.NewCounter(prometheus.CounterOpts{
	Name: "warden_geospoof_findings_high_risk",
	Help: "Number of findings routed to moderator review",
})
