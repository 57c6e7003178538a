package dispatcher

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const Namespace = "wordstream"

// Metrics are the dispatcher's Prometheus collectors
type Metrics struct {
	chunks        prometheus.Counter
	bytes         prometheus.Counter
	rounds        prometheus.Counter
	fileErrors    prometheus.Counter
	words         *prometheus.CounterVec
	runs          *prometheus.CounterVec
	roundDuration prometheus.Histogram
	workers       prometheus.Gauge
}

// NewMetrics registers the dispatcher collectors with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		chunks: f.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "chunks_dispatched_total",
			Help:      "Chunks sent to workers.",
		}),
		bytes: f.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "input_bytes_total",
			Help:      "Raw input bytes read.",
		}),
		rounds: f.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "rounds_total",
			Help:      "Completed dispatch rounds.",
		}),
		fileErrors: f.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "file_errors_total",
			Help:      "Input files skipped because they could not be opened or read.",
		}),
		words: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "words_total",
			Help:      "Words classified, by kind.",
		}, []string{"kind"}),
		runs: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "runs_total",
			Help:      "Finished runs, by outcome.",
		}, []string{"outcome"}),
		roundDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "round_duration_seconds",
			Help:      "Time from first send to last result of a round.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}),
		workers: f.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "workers",
			Help:      "Workers in the pool.",
		}),
	}
}
