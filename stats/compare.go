package stats

import (
	"sort"

	"github.com/fqcompressor/fqbench/bench"
)

// RecommendThreshold is how much faster one tool must be before it is
// recommended over the other.
const RecommendThreshold = 1.1

// Comparable is the recommendation when neither tool clears the threshold.
const Comparable = "comparable"

// Comparison puts the mean throughput of two tools side by side for one
// operation.
type Comparison struct {
	Operation bench.Operation `json:"operation"`
	A         string          `json:"a"`
	B         string          `json:"b"`
	// Speedup is mean throughput of A over B. Defined is false when either
	// side has no successful run.
	Speedup float64 `json:"speedup"`
	Defined bool    `json:"defined"`
	// Faster is the id of the quicker tool and Difference how much
	// quicker it is, in percent.
	Faster     string  `json:"faster,omitempty"`
	Difference float64 `json:"difference_pct"`
	// Recommendation is a tool id or Comparable.
	Recommendation string `json:"recommendation,omitempty"`
}

// Compare compares tools a and b on op over all their successful results.
func Compare(results []bench.RunResult, a, b string, op bench.Operation) Comparison {
	c := Comparison{Operation: op, A: a, B: b}
	sa, okA := Summarize(results, a, op)
	sb, okB := Summarize(results, b, op)
	if !okA || !okB {
		return c
	}
	speedup, ok := Speedup(&sa, &sb)
	if !ok || speedup == 0 {
		return c
	}
	c.Speedup, c.Defined = speedup, true
	if speedup >= 1 {
		c.Faster, c.Difference = a, (speedup-1)*100
	} else {
		c.Faster, c.Difference = b, (1/speedup-1)*100
	}
	switch {
	case sa.ThroughputMean > sb.ThroughputMean*RecommendThreshold:
		c.Recommendation = a
	case sb.ThroughputMean > sa.ThroughputMean*RecommendThreshold:
		c.Recommendation = b
	default:
		c.Recommendation = Comparable
	}
	return c
}

// Efficiency is how well a tool's compression scales from its lowest to
// its highest thread count.
type Efficiency struct {
	Tool        string  `json:"tool"`
	BaseThreads int     `json:"base_threads"`
	MaxThreads  int     `json:"max_threads"`
	Speedup     float64 `json:"speedup"`
	Percent     float64 `json:"percent"`
	Defined     bool    `json:"defined"`
}

// HeadToHead summarises a two-tool contest on compression.
type HeadToHead struct {
	A string `json:"a"`
	B string `json:"b"`

	// SpeedLeader has the higher best-case compression throughput and
	// leads by SpeedDiff percent.
	SpeedLeader string  `json:"speed_leader,omitempty"`
	SpeedDiff   float64 `json:"speed_diff_pct"`

	// RatioLeader has the lower average ratio and beats the other by
	// RatioDiff percent. Empty when both are equal or unknown.
	RatioLeader string  `json:"ratio_leader,omitempty"`
	RatioDiff   float64 `json:"ratio_diff_pct"`
	RatioTie    bool    `json:"ratio_tie"`

	Efficiency []Efficiency `json:"efficiency"`
}

// CompareHeadToHead builds the head-to-head figures of a and b from the
// compression results.
func CompareHeadToHead(results []bench.RunResult, a, b string) HeadToHead {
	h := HeadToHead{A: a, B: b}

	bestA, bestB := bestThroughput(results, a), bestThroughput(results, b)
	if bestA > 0 && bestB > 0 {
		if bestA > bestB {
			h.SpeedLeader, h.SpeedDiff = a, (bestA-bestB)/bestB*100
		} else {
			h.SpeedLeader, h.SpeedDiff = b, (bestB-bestA)/bestA*100
		}
	}

	ra, okA := Summarize(results, a, bench.Compress)
	rb, okB := Summarize(results, b, bench.Compress)
	if okA && okB && ra.RatioMean > 0 && rb.RatioMean > 0 {
		switch {
		case ra.RatioMean < rb.RatioMean:
			h.RatioLeader, h.RatioDiff = a, (rb.RatioMean-ra.RatioMean)/rb.RatioMean*100
		case rb.RatioMean < ra.RatioMean:
			h.RatioLeader, h.RatioDiff = b, (ra.RatioMean-rb.RatioMean)/ra.RatioMean*100
		default:
			h.RatioTie = true
		}
	}

	h.Efficiency = []Efficiency{ParallelEfficiency(results, a), ParallelEfficiency(results, b)}
	return h
}

// ParallelEfficiency compares a tool's compression throughput at its
// highest thread count with its lowest. Percent is the speedup divided by
// the highest thread count.
func ParallelEfficiency(results []bench.RunResult, tool string) Efficiency {
	e := Efficiency{Tool: tool}
	points := throughputByThreads(results, tool, bench.Compress)
	if len(points) < 2 {
		return e
	}
	first, last := points[0], points[len(points)-1]
	e.BaseThreads, e.MaxThreads = first.threads, last.threads
	if first.value <= 0 {
		return e
	}
	e.Speedup = last.value / first.value
	e.Percent = e.Speedup / float64(last.threads) * 100
	e.Defined = true
	return e
}

// Matchup is the full comparison of a suite with exactly two tools.
type Matchup struct {
	A           string       `json:"a"`
	B           string       `json:"b"`
	Comparisons []Comparison `json:"comparisons"`
	HeadToHead  HeadToHead   `json:"head_to_head"`
}

// MatchupOf returns the comparison of the suite's two tools. The second
// result is false unless exactly two tools took part.
func MatchupOf(suite *bench.SuiteResult) (Matchup, bool) {
	ids := suiteTools(suite)
	if len(ids) != 2 {
		return Matchup{}, false
	}
	a, b := ids[0], ids[1]
	m := Matchup{A: a, B: b, HeadToHead: CompareHeadToHead(suite.Results, a, b)}
	for _, op := range bench.Operations {
		m.Comparisons = append(m.Comparisons, Compare(suite.Results, a, b, op))
	}
	return m, true
}

type threadPoint struct {
	threads int
	value   float64
}

// throughputByThreads returns the best throughput of each thread count,
// ordered by thread count.
func throughputByThreads(results []bench.RunResult, tool string, op bench.Operation) []threadPoint {
	best := map[int]float64{}
	for _, r := range results {
		if r.Tool != tool || r.Operation != op || !r.Success {
			continue
		}
		if v := r.ThroughputMBps(); v > best[r.Threads] {
			best[r.Threads] = v
		}
	}
	points := make([]threadPoint, 0, len(best))
	for n, v := range best {
		points = append(points, threadPoint{threads: n, value: v})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].threads < points[j].threads })
	return points
}

func bestThroughput(results []bench.RunResult, tool string) float64 {
	var best float64
	for _, p := range throughputByThreads(results, tool, bench.Compress) {
		if p.value > best {
			best = p.value
		}
	}
	return best
}
