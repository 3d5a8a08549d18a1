// Package metrics exposes sweep progress as Prometheus metrics, written as
// a node-exporter textfile once the sweep ends.
package metrics

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/fqcompressor/fqbench/bench"
)

const namespace = "fqbench"

// Recorder is a bench.Observer feeding its own registry.
type Recorder struct {
	bench.NopObserver

	registry *prometheus.Registry

	trialDuration     *prometheus.HistogramVec
	trialFailures     *prometheus.CounterVec
	integrityMismatch *prometheus.CounterVec
	bestThroughput    *prometheus.GaugeVec
	bestRatio         *prometheus.GaugeVec
	toolsSkipped      prometheus.Counter
}

// NewRecorder returns a Recorder with all collectors registered.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Recorder{
		registry: reg,
		trialDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "trial_duration_seconds",
			Help:      "Wall time of every compress and decompress command.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 4, 10),
		}, []string{"tool", "operation", "threads"}),
		trialFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trial_failures_total",
			Help:      "Commands that failed or timed out.",
		}, []string{"tool", "operation"}),
		integrityMismatch: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "integrity_mismatch_total",
			Help:      "Round trips whose decompressed size differed from the input.",
		}, []string{"tool"}),
		bestThroughput: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "best_throughput_mbps",
			Help:      "Throughput of the fastest run kept per slot.",
		}, []string{"tool", "operation", "threads"}),
		bestRatio: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "best_ratio",
			Help:      "Compression ratio of the fastest compress run kept per slot.",
		}, []string{"tool", "threads"}),
		toolsSkipped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tools_skipped_total",
			Help:      "Requested tools that were not configured or not installed.",
		}),
	}
}

// Registry returns the registry holding the recorder's collectors.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

func (r *Recorder) ToolSkipped(bench.SkippedTool) {
	r.toolsSkipped.Inc()
}

func (r *Recorder) TrialFinished(tool string, threads, run, runs int, results []bench.RunResult) {
	for _, res := range results {
		op := string(res.Operation)
		r.trialDuration.WithLabelValues(tool, op, strconv.Itoa(threads)).Observe(res.ElapsedSeconds)
		if !res.Success {
			r.trialFailures.WithLabelValues(tool, op).Inc()
		}
		if res.IntegrityWarning() {
			r.integrityMismatch.WithLabelValues(tool).Inc()
		}
	}
}

func (r *Recorder) SlotFinished(tool string, threads int, best, failures []bench.RunResult) {
	n := strconv.Itoa(threads)
	for _, res := range best {
		r.bestThroughput.WithLabelValues(tool, string(res.Operation), n).Set(res.ThroughputMBps())
		if res.Operation == bench.Compress {
			r.bestRatio.WithLabelValues(tool, n).Set(res.Ratio())
		}
	}
}

// WriteTextfile writes every metric to path in the text exposition format.
// The file is replaced atomically so a collector never reads it half
// written.
func (r *Recorder) WriteTextfile(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "creating %s", dir)
		}
	}
	return errors.Wrapf(prometheus.WriteToTextfile(path, r.registry), "writing metrics to %s", path)
}
