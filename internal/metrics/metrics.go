package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	MeetingsRegistered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nbbang_meetings_registered_total",
		Help: "Number of meetings created.",
	})

	MeetingLoads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nbbang_meeting_loads_total",
		Help: "Meeting loads by outcome.",
	}, []string{"outcome"}) // hit, miss, not_found, error

	MeetingSaves = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nbbang_meeting_saves_total",
		Help: "Meeting saves by outcome.",
	}, []string{"outcome"}) // ok, conflict, error

	SettlementsComputed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nbbang_settlements_computed_total",
		Help: "Settlement computations served.",
	})

	ReportsExported = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nbbang_reports_exported_total",
		Help: "Settlement report exports by outcome.",
	}, []string{"outcome"}) // ok, error

	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "nbbang_http_request_duration_seconds",
		Help:    "HTTP request latency by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})
)

// Handler exposes the default registry for scraping.
func Handler() http.Handler {
	return promhttp.Handler()
}
