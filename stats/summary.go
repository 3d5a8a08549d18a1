// Package stats reduces benchmark results into summaries, comparisons,
// report rows and chart series. Renderers only format what it returns.
package stats

import (
	"fmt"

	"github.com/fqcompressor/fqbench/bench"
)

// StatSummary describes the successful runs of one tool and operation.
// Standard deviations use the N-1 divisor and are 0 for a single run.
type StatSummary struct {
	Tool      string          `json:"tool"`
	Operation bench.Operation `json:"operation"`
	Count     int             `json:"count"`

	ThroughputMean   float64 `json:"throughput_mean"`
	ThroughputStdev  float64 `json:"throughput_stdev"`
	ThroughputMin    float64 `json:"throughput_min"`
	ThroughputMax    float64 `json:"throughput_max"`
	ThroughputMedian float64 `json:"throughput_median"`

	ElapsedMean  float64 `json:"elapsed_mean"`
	ElapsedStdev float64 `json:"elapsed_stdev"`
	ElapsedMin   float64 `json:"elapsed_min"`
	ElapsedMax   float64 `json:"elapsed_max"`
	ElapsedP50   float64 `json:"elapsed_p50"`
	ElapsedP95   float64 `json:"elapsed_p95"`

	// Ratio statistics are only filled for compression.
	HasRatio   bool    `json:"has_ratio"`
	RatioMean  float64 `json:"ratio_mean,omitempty"`
	RatioStdev float64 `json:"ratio_stdev,omitempty"`
}

// Summarize reduces the successful results matching tool and op. The
// second result is false when there are none.
func Summarize(results []bench.RunResult, tool string, op bench.Operation) (StatSummary, bool) {
	throughput := newStatGroup()
	elapsed := newElapsedGroup()
	ratio := newStatGroup()
	for _, r := range results {
		if r.Tool != tool || r.Operation != op || !r.Success {
			continue
		}
		throughput.push(r.ThroughputMBps())
		elapsed.push(r.ElapsedSeconds)
		if op == bench.Compress {
			ratio.push(r.Ratio())
		}
	}
	if throughput.count == 0 {
		return StatSummary{}, false
	}

	s := StatSummary{
		Tool:             tool,
		Operation:        op,
		Count:            int(throughput.count),
		ThroughputMean:   throughput.mean(),
		ThroughputStdev:  throughput.stdDev(),
		ThroughputMin:    throughput.min,
		ThroughputMax:    throughput.max,
		ThroughputMedian: throughput.median(),
		ElapsedMean:      elapsed.mean(),
		ElapsedStdev:     elapsed.stdDev(),
		ElapsedMin:       elapsed.min,
		ElapsedMax:       elapsed.max,
		ElapsedP50:       elapsed.percentile(50),
		ElapsedP95:       elapsed.percentile(95),
	}
	if op == bench.Compress {
		s.HasRatio = true
		s.RatioMean = ratio.mean()
		s.RatioStdev = ratio.stdDev()
	}
	return s, true
}

// SummarizeAll summarizes every tool of the suite, compression before
// decompression, in the order the tools were tested. Tools present only
// in the results follow in order of appearance.
func SummarizeAll(suite *bench.SuiteResult) []StatSummary {
	var out []StatSummary
	for _, tool := range suiteTools(suite) {
		for _, op := range bench.Operations {
			if s, ok := Summarize(suite.Results, tool, op); ok {
				out = append(out, s)
			}
		}
	}
	return out
}

// Speedup returns mean throughput of a over that of b. It is undefined
// when either summary is absent or b has no throughput.
func Speedup(a, b *StatSummary) (float64, bool) {
	if a == nil || b == nil || a.Count == 0 || b.Count == 0 || b.ThroughputMean <= 0 {
		return 0, false
	}
	return a.ThroughputMean / b.ThroughputMean, true
}

// String makes a one-line description of the summary.
func (s StatSummary) String() string {
	line := fmt.Sprintf("\tthroughput mean: %8.2f MB/s, median: %8.2f MB/s, min: %8.2f MB/s, max: %8.2f MB/s, stddev: %8.2f MB/s, elapsed mean: %8.3f s, p50: %8.3f s, p95: %8.3f s, count: %d",
		s.ThroughputMean, s.ThroughputMedian, s.ThroughputMin, s.ThroughputMax, s.ThroughputStdev,
		s.ElapsedMean, s.ElapsedP50, s.ElapsedP95, s.Count)
	if s.HasRatio {
		line += fmt.Sprintf(", ratio mean: %.4f, ratio stddev: %.4f", s.RatioMean, s.RatioStdev)
	}
	return line
}

func suiteTools(suite *bench.SuiteResult) []string {
	seen := map[string]bool{}
	var ids []string
	add := func(id string) {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	for _, id := range suite.ToolsTested {
		add(id)
	}
	for _, r := range suite.Results {
		add(r.Tool)
	}
	return ids
}
