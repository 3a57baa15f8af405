package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	seededCalls = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "power",
			Name:      "seeded_calls",
			Help:      "Call count recovered from the metrics backend at startup, per job.",
		},
		[]string{"job"},
	)

	seedFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "power",
			Name:      "seed_failures_total",
			Help:      "Startup counter queries that failed or timed out, per job.",
		},
		[]string{"job"},
	)

	pushFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "power",
			Name:      "push_failures_total",
			Help:      "Snapshot pushes to the gateway that failed, per job.",
		},
		[]string{"job"},
	)

	queuedCalls = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "power",
			Name:      "queued_calls",
			Help:      "Calls waiting for a free worker slot.",
		},
	)

	evaluationScore = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "power",
			Name:      "evaluation_score",
			Help:      "Most recent evaluation of estimates against measured power.",
		},
		[]string{"model", "score"},
	)
)

// Register attaches the process-wide collectors to the supplied Prometheus registerer.
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		seededCalls,
		seedFailuresTotal,
		pushFailuresTotal,
		queuedCalls,
		evaluationScore,
	}

	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

// ObserveEvaluation records the loss and reporting metric of the latest estimate.
func ObserveEvaluation(model, metricName string, loss, metric float64) {
	evaluationScore.WithLabelValues(model, "loss").Set(loss)
	evaluationScore.WithLabelValues(model, metricName).Set(metric)
}
