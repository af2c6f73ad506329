package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var moderationRequests = promauto.NewCounter(prometheus.CounterOpts{
	Name: "warden_moderation_requests",
	Help: "Number of moderation evaluation requests served",
})

var geoSpoofRequests = promauto.NewCounter(prometheus.CounterOpts{
	Name: "warden_geospoof_requests",
	Help: "Number of geo-spoof evaluation requests served",
})
