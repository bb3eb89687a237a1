// Package metrics records Prometheus metrics for FatSecret API calls.
//
// A nil *Collector is valid and records nothing, so the client can call it
// unconditionally.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/alnah/go-fatsecret/internal/apierr"
)

// Outcome label values besides the apierr kind names.
const (
	OutcomeOK = "ok"
)

// Collector holds the client's metric vectors.
type Collector struct {
	requests          *prometheus.CounterVec
	duration          *prometheus.HistogramVec
	tokenAcquisitions *prometheus.CounterVec
}

// NewCollector registers the metrics with reg. A nil reg uses
// prometheus.DefaultRegisterer.
func NewCollector(reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Collector{
		requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fatsecret_requests_total",
				Help: "FatSecret API calls by API method and outcome",
			},
			[]string{"api_method", "outcome"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fatsecret_request_duration_seconds",
				Help:    "FatSecret API call latency by API method",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"api_method"},
		),
		tokenAcquisitions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fatsecret_token_acquisitions_total",
				Help: "OAuth 2.0 access token acquisitions by outcome",
			},
			[]string{"outcome"},
		),
	}
}

// ObserveRequest records one API call.
func (c *Collector) ObserveRequest(apiMethod string, d time.Duration, err error) {
	if c == nil {
		return
	}
	c.requests.WithLabelValues(apiMethod, Outcome(err)).Inc()
	c.duration.WithLabelValues(apiMethod).Observe(d.Seconds())
}

// ObserveTokenAcquisition records one token acquisition attempt.
func (c *Collector) ObserveTokenAcquisition(err error) {
	if c == nil {
		return
	}
	c.tokenAcquisitions.WithLabelValues(Outcome(err)).Inc()
}

// Outcome maps err to a label value: "ok", an apierr kind name, or
// "unknown" for untyped errors.
func Outcome(err error) string {
	if err == nil {
		return OutcomeOK
	}
	if kind, ok := apierr.KindOf(err); ok {
		return kind.String()
	}
	return "unknown"
}
