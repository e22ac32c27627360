package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Distance lookup sources.
const (
	DistanceSourceRoutes   = "routes_api"
	DistanceSourceFallback = "fallback"
	DistanceSourceCache    = "cache"
)

// PricingMetrics records quote computation and distance resolution activity.
type PricingMetrics struct {
	quoteDuration   *prometheus.HistogramVec
	quotes          *prometheus.CounterVec
	distanceLookups *prometheus.CounterVec
}

// NewPricingMetrics registers the pricing metrics on the provided registerer.
func NewPricingMetrics(reg prometheus.Registerer) *PricingMetrics {
	if reg == nil {
		return &PricingMetrics{}
	}
	quoteDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "quote_duration_seconds",
		Help:    "Duration of quote computations in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	quotes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "quotes_total",
		Help: "Quote computations by outcome.",
	}, []string{"outcome"})
	distanceLookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "distance_lookups_total",
		Help: "Driving-distance resolutions by source.",
	}, []string{"source"})
	reg.MustRegister(quoteDuration, quotes, distanceLookups)
	return &PricingMetrics{
		quoteDuration:   quoteDuration,
		quotes:          quotes,
		distanceLookups: distanceLookups,
	}
}

// ObserveQuote records one quote computation with its outcome and duration.
func (p *PricingMetrics) ObserveQuote(outcome string, duration time.Duration) {
	if p == nil || p.quotes == nil {
		return
	}
	label := normalizeLabel(outcome)
	p.quotes.WithLabelValues(label).Inc()
	p.quoteDuration.WithLabelValues(label).Observe(duration.Seconds())
}

// IncDistanceLookup increments the distance-resolution counter for a source.
func (p *PricingMetrics) IncDistanceLookup(source string) {
	if p == nil || p.distanceLookups == nil {
		return
	}
	p.distanceLookups.WithLabelValues(normalizeLabel(source)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
