package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		codesGeneratedTotal,
		generationCollisionsTotal,
	)
}

var (
	codesGeneratedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "codes_generated_total",
			Help: "Codes persisted by generation batches, per campaign prefix.",
		},
		[]string{"prefix"},
	)

	generationCollisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "generation_collisions_total",
			Help: "Candidate values rejected as duplicates (pre-filter or store).",
		},
		[]string{"prefix"},
	)
)

func AddCodesGenerated(prefix string, n int) {
	codesGeneratedTotal.WithLabelValues(prefix).Add(float64(n))
}

func IncGenerationCollision(prefix string) {
	generationCollisionsTotal.WithLabelValues(prefix).Inc()
}
