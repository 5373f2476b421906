package obs

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// ComparisonsTotal counts comparison requests by outcome.
	ComparisonsTotal *prometheus.CounterVec
	// ComparisonDuration records end-to-end comparison latency in milliseconds.
	ComparisonDuration prometheus.Histogram
	// ComparisonCandidates tracks how many retailers qualified per comparison.
	ComparisonCandidates prometheus.Histogram
	// InvalidOffersTotal counts offers excluded for inconsistent sale pricing.
	InvalidOffersTotal prometheus.Counter
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		ComparisonsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "comparisons_total",
			Help:      "Count of shopping list comparison outcomes.",
		}, []string{"result"})
		ComparisonDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "comparison_duration_ms",
			Help:      "Latency of comparison computations in milliseconds.",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000},
		})
		ComparisonCandidates = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "comparison_candidates",
			Help:      "Number of qualifying retailers per comparison.",
			Buckets:   []float64{1, 2, 3, 5, 8, 13, 21},
		})
		InvalidOffersTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "comparison_invalid_offers_total",
			Help:      "Offers excluded from comparisons due to malformed sale pricing.",
		})

		mustRegisterCollector(reg, ComparisonsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				ComparisonsTotal = v
			}
		})
		mustRegisterCollector(reg, ComparisonDuration, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Histogram); ok {
				ComparisonDuration = v
			}
		})
		mustRegisterCollector(reg, ComparisonCandidates, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Histogram); ok {
				ComparisonCandidates = v
			}
		})
		mustRegisterCollector(reg, InvalidOffersTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Counter); ok {
				InvalidOffersTotal = v
			}
		})
	})
}
