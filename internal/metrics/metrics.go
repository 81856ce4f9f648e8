package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ChainHeight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "floretarget",
		Name:      "chain_height",
		Help:      "Height of the best validated header.",
	})

	ChainDifficulty = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "floretarget",
		Name:      "chain_difficulty",
		Help:      "Difficulty of the best validated header relative to the pow limit.",
	})

	ChainWork = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "floretarget",
		Name:      "chain_work",
		Help:      "Cumulative expected hashes of the validated chain.",
	})

	HeadersValidated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "floretarget",
		Name:      "headers_validated_total",
		Help:      "Total headers that passed validation.",
	})

	HeadersRejected = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "floretarget",
		Name:      "headers_rejected_total",
		Help:      "Total headers rejected, by failed rule.",
	}, []string{"rule"})

	Retargets = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "floretarget",
		Name:      "retargets_total",
		Help:      "Target recalculations performed, by epoch.",
	}, []string{"epoch"})

	MinDifficultyGrants = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "floretarget",
		Name:      "min_difficulty_grants_total",
		Help:      "Headers allowed the pow limit after a production stall.",
	})
)

func init() {
	prometheus.MustRegister(
		ChainHeight,
		ChainDifficulty,
		ChainWork,
		HeadersValidated,
		HeadersRejected,
		Retargets,
		MinDifficultyGrants,
	)
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
