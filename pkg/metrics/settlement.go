package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SettlementMetrics records outcomes of booking settlement attempts.
type SettlementMetrics struct {
	duration   *prometheus.HistogramVec
	settled    prometheus.Counter
	collisions prometheus.Counter
	superseded prometheus.Counter
}

// NewSettlementMetrics registers the settlement metrics on the provided registerer.
func NewSettlementMetrics(reg prometheus.Registerer) *SettlementMetrics {
	if reg == nil {
		return &SettlementMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "settlement_duration_seconds",
		Help:    "Duration of settlement transactions in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	settled := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "settlement_settled_total",
		Help: "Listings transitioned to sold.",
	})
	collisions := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "settlement_collisions_total",
		Help: "Settlement attempts that lost the compare-and-swap on a listing.",
	})
	superseded := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "settlement_superseded_bookings_total",
		Help: "Bookings marked superseded by a winning settlement.",
	})
	reg.MustRegister(duration, settled, collisions, superseded)
	return &SettlementMetrics{
		duration:   duration,
		settled:    settled,
		collisions: collisions,
		superseded: superseded,
	}
}

// ObserveDuration records the duration of a settlement attempt by outcome.
func (s *SettlementMetrics) ObserveDuration(outcome string, duration time.Duration) {
	if s == nil || s.duration == nil {
		return
	}
	if outcome == "" {
		outcome = "unknown"
	}
	s.duration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// IncSettled increments the sold-listing counter.
func (s *SettlementMetrics) IncSettled() {
	if s == nil || s.settled == nil {
		return
	}
	s.settled.Inc()
}

// IncCollision increments the lost compare-and-swap counter.
func (s *SettlementMetrics) IncCollision() {
	if s == nil || s.collisions == nil {
		return
	}
	s.collisions.Inc()
}

// AddSuperseded records bookings displaced by a winning settlement.
func (s *SettlementMetrics) AddSuperseded(n int64) {
	if s == nil || s.superseded == nil || n <= 0 {
		return
	}
	s.superseded.Add(float64(n))
}
