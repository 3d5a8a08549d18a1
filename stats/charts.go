package stats

import (
	"sort"

	"github.com/fqcompressor/fqbench/bench"
)

// ChartKind names one of the fixed report charts.
type ChartKind string

const (
	CompressionSpeed   ChartKind = "compression-speed"
	DecompressionSpeed ChartKind = "decompression-speed"
	CompressionRatio   ChartKind = "compression-ratio"
	MemoryUsage        ChartKind = "memory-usage"
	Scalability        ChartKind = "scalability"
)

// ChartKinds lists every chart in report order.
var ChartKinds = []ChartKind{CompressionSpeed, DecompressionSpeed, CompressionRatio, MemoryUsage, Scalability}

// Point is a chart coordinate; X is always a thread count.
type Point struct {
	X float64
	Y float64
}

// Series is one line of a chart.
type Series struct {
	Name   string
	Points []Point
	// Reference marks a guide line such as ideal scaling.
	Reference bool
}

// Chart is the data behind one chart kind.
type Chart struct {
	Kind   ChartKind
	Title  string
	XLabel string
	YLabel string
	Series []Series
}

// Empty reports whether the chart has no measured data.
func (c Chart) Empty() bool {
	for _, s := range c.Series {
		if !s.Reference && len(s.Points) > 0 {
			return false
		}
	}
	return true
}

// Charts builds every chart kind for the suite.
func Charts(suite *bench.SuiteResult) []Chart {
	out := make([]Chart, 0, len(ChartKinds))
	for _, k := range ChartKinds {
		out = append(out, ChartFor(suite, k))
	}
	return out
}

// ChartFor builds the series of one chart kind, one line per tool.
func ChartFor(suite *bench.SuiteResult, kind ChartKind) Chart {
	c := Chart{Kind: kind, XLabel: "Threads"}
	switch kind {
	case CompressionSpeed:
		c.Title, c.YLabel = "Compression speed", "MB/s"
		c.Series = perTool(suite, bench.Compress, "", bench.RunResult.ThroughputMBps)
	case DecompressionSpeed:
		c.Title, c.YLabel = "Decompression speed", "MB/s"
		c.Series = perTool(suite, bench.Decompress, "", bench.RunResult.ThroughputMBps)
	case CompressionRatio:
		c.Title, c.YLabel = "Compression ratio", "Output / input"
		c.Series = perTool(suite, bench.Compress, "", bench.RunResult.Ratio)
	case MemoryUsage:
		c.Title, c.YLabel = "Peak memory", "MB"
		peak := func(r bench.RunResult) float64 { return r.PeakMemoryMB }
		c.Series = measured(append(perTool(suite, bench.Compress, " (compress)", peak),
			perTool(suite, bench.Decompress, " (decompress)", peak)...))
	case Scalability:
		c.Title, c.YLabel = "Parallel scalability", "Speedup vs 1 thread"
		c.Series = scalability(suite)
	}
	return c
}

func perTool(suite *bench.SuiteResult, op bench.Operation, suffix string, value func(bench.RunResult) float64) []Series {
	var out []Series
	for _, tool := range suiteTools(suite) {
		var points []Point
		for _, r := range suite.Successful(op) {
			if r.Tool == tool {
				points = append(points, Point{X: float64(r.Threads), Y: value(r)})
			}
		}
		if len(points) == 0 {
			continue
		}
		sort.Slice(points, func(i, j int) bool { return points[i].X < points[j].X })
		out = append(out, Series{Name: suite.ToolName(tool) + suffix, Points: points})
	}
	return out
}

// measured drops points without a value, and series left empty. Peak
// memory is 0 when no meter was available.
func measured(series []Series) []Series {
	var out []Series
	for _, s := range series {
		var points []Point
		for _, p := range s.Points {
			if p.Y > 0 {
				points = append(points, p)
			}
		}
		if len(points) > 0 {
			s.Points = points
			out = append(out, s)
		}
	}
	return out
}

// scalability plots compression speedup over the single-thread run of each
// tool. Tools without a single-thread result are left out. The ideal line
// covers every thread count plotted.
func scalability(suite *bench.SuiteResult) []Series {
	var out []Series
	threads := map[int]bool{}
	for _, tool := range suiteTools(suite) {
		points := throughputByThreads(suite.Results, tool, bench.Compress)
		if len(points) == 0 || points[0].threads != 1 || points[0].value <= 0 {
			continue
		}
		s := Series{Name: suite.ToolName(tool)}
		for _, p := range points {
			s.Points = append(s.Points, Point{X: float64(p.threads), Y: p.value / points[0].value})
			threads[p.threads] = true
		}
		out = append(out, s)
	}
	if len(out) == 0 {
		return nil
	}
	ideal := Series{Name: "Ideal", Reference: true}
	for _, n := range sortedKeys(threads) {
		ideal.Points = append(ideal.Points, Point{X: float64(n), Y: float64(n)})
	}
	return append(out, ideal)
}

func sortedKeys(m map[int]bool) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
