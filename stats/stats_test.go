package stats

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fqcompressor/fqbench/bench"
)

const mb = bench.BytesPerMB

func run(tool string, op bench.Operation, threads int, in, out int64, elapsed float64) bench.RunResult {
	return bench.RunResult{
		Tool:           tool,
		Operation:      op,
		Threads:        threads,
		InputSize:      in,
		OutputSize:     out,
		ElapsedSeconds: elapsed,
		Success:        true,
	}
}

func TestSummarizeSingleRun(t *testing.T) {
	results := []bench.RunResult{run("a", bench.Compress, 1, 10*mb, 2*mb, 2)}

	s, ok := Summarize(results, "a", bench.Compress)
	require.True(t, ok)
	assert.Equal(t, 1, s.Count)
	assert.Equal(t, 5.0, s.ThroughputMean)
	assert.Zero(t, s.ThroughputStdev)
	assert.Zero(t, s.ElapsedStdev)
	assert.Zero(t, s.RatioStdev)
	assert.Equal(t, 5.0, s.ThroughputMedian)
	assert.True(t, s.HasRatio)
	assert.InDelta(t, 0.2, s.RatioMean, 1e-12)
	assert.InDelta(t, 2.0, s.ElapsedP50, 0.01)
}

func TestSummarizeSampleStdev(t *testing.T) {
	results := []bench.RunResult{
		run("a", bench.Decompress, 1, 2*mb, mb, 1),
		run("a", bench.Decompress, 4, 4*mb, mb, 1),
		run("a", bench.Decompress, 8, 6*mb, mb, 1),
		run("b", bench.Decompress, 1, 100*mb, mb, 1),
		run("a", bench.Compress, 1, 100*mb, mb, 1),
	}
	s, ok := Summarize(results, "a", bench.Decompress)
	require.True(t, ok)
	assert.Equal(t, 3, s.Count)
	assert.InDelta(t, 4.0, s.ThroughputMean, 1e-12)
	assert.InDelta(t, 2.0, s.ThroughputStdev, 1e-12)
	assert.Equal(t, 2.0, s.ThroughputMin)
	assert.Equal(t, 6.0, s.ThroughputMax)
	assert.Equal(t, 4.0, s.ThroughputMedian)
	assert.False(t, s.HasRatio)
}

func TestSummarizeIgnoresFailures(t *testing.T) {
	bad := run("a", bench.Compress, 1, mb, mb, 1)
	bad.Success = false
	_, ok := Summarize([]bench.RunResult{bad}, "a", bench.Compress)
	assert.False(t, ok)

	_, ok = Summarize(nil, "a", bench.Compress)
	assert.False(t, ok)
}

func TestSummarizeIsIdempotent(t *testing.T) {
	results := []bench.RunResult{
		run("a", bench.Compress, 1, 10*mb, 3*mb, 1.5),
		run("a", bench.Compress, 4, 10*mb, 3*mb, 0.7),
		run("a", bench.Compress, 8, 10*mb, 3*mb, 0.4),
	}
	first, _ := Summarize(results, "a", bench.Compress)
	second, _ := Summarize(results, "a", bench.Compress)
	assert.Equal(t, first, second)
}

func TestElapsedPercentiles(t *testing.T) {
	var results []bench.RunResult
	for i := 1; i <= 100; i++ {
		results = append(results, run("a", bench.Compress, 1, mb, mb, float64(i)/10))
	}
	s, ok := Summarize(results, "a", bench.Compress)
	require.True(t, ok)
	assert.InDelta(t, 5.0, s.ElapsedP50, 0.01)
	assert.InDelta(t, 9.5, s.ElapsedP95, 0.01)
	assert.Equal(t, 0.1, s.ElapsedMin)
	assert.Equal(t, 10.0, s.ElapsedMax)
}

func TestElapsedPercentilesWithinRange(t *testing.T) {
	results := []bench.RunResult{
		run("a", bench.Compress, 1, mb, mb, 1),
		run("a", bench.Compress, 1, mb, mb, 2),
		run("a", bench.Compress, 1, mb, mb, 3),
		run("a", bench.Compress, 1, mb, mb, 4),
	}
	s, ok := Summarize(results, "a", bench.Compress)
	require.True(t, ok)
	assert.Equal(t, 4.0, s.ElapsedMax)
	assert.Equal(t, 4.0, s.ElapsedP95)
	assert.GreaterOrEqual(t, s.ElapsedP50, s.ElapsedMin)
	assert.LessOrEqual(t, s.ElapsedP50, s.ElapsedMax)

	one, ok := Summarize(results[2:3], "a", bench.Compress)
	require.True(t, ok)
	assert.Equal(t, 3.0, one.ElapsedP50)
	assert.Equal(t, 3.0, one.ElapsedP95)
}

func TestSpeedup(t *testing.T) {
	a := StatSummary{Count: 1, ThroughputMean: 30}
	b := StatSummary{Count: 1, ThroughputMean: 20}
	v, ok := Speedup(&a, &b)
	require.True(t, ok)
	assert.Equal(t, 1.5, v)

	_, ok = Speedup(&a, nil)
	assert.False(t, ok)
	_, ok = Speedup(nil, &b)
	assert.False(t, ok)
	zero := StatSummary{Count: 1}
	_, ok = Speedup(&a, &zero)
	assert.False(t, ok)
}

func TestCompare(t *testing.T) {
	results := []bench.RunResult{
		run("gcc", bench.Compress, 1, 10*mb, mb, 1),
		run("clang", bench.Compress, 1, 10*mb, mb, 2),
		run("gcc", bench.Decompress, 1, 10*mb, mb, 1),
		run("clang", bench.Decompress, 1, 10*mb, mb, 1.05),
	}

	c := Compare(results, "gcc", "clang", bench.Compress)
	require.True(t, c.Defined)
	assert.Equal(t, 2.0, c.Speedup)
	assert.Equal(t, "gcc", c.Faster)
	assert.InDelta(t, 100.0, c.Difference, 1e-9)
	assert.Equal(t, "gcc", c.Recommendation)

	c = Compare(results, "clang", "gcc", bench.Compress)
	assert.Equal(t, "gcc", c.Faster)
	assert.Equal(t, "gcc", c.Recommendation)
	assert.InDelta(t, 0.5, c.Speedup, 1e-12)

	c = Compare(results, "gcc", "clang", bench.Decompress)
	require.True(t, c.Defined)
	assert.Equal(t, Comparable, c.Recommendation)

	c = Compare(results, "gcc", "missing", bench.Compress)
	assert.False(t, c.Defined)
	assert.Empty(t, c.Recommendation)
}

func TestHeadToHead(t *testing.T) {
	results := []bench.RunResult{
		run("a", bench.Compress, 1, 8*mb, 2*mb, 4),
		run("a", bench.Compress, 4, 8*mb, 2*mb, 1),
		run("b", bench.Compress, 1, 8*mb, 4*mb, 2),
		run("b", bench.Compress, 4, 8*mb, 4*mb, 2),
	}
	h := CompareHeadToHead(results, "a", "b")
	assert.Equal(t, "a", h.SpeedLeader)
	assert.InDelta(t, 100.0, h.SpeedDiff, 1e-9)
	assert.Equal(t, "a", h.RatioLeader)
	assert.InDelta(t, 50.0, h.RatioDiff, 1e-9)

	require.Len(t, h.Efficiency, 2)
	assert.True(t, h.Efficiency[0].Defined)
	assert.Equal(t, 4.0, h.Efficiency[0].Speedup)
	assert.Equal(t, 100.0, h.Efficiency[0].Percent)
	assert.Equal(t, 25.0, h.Efficiency[1].Percent)

	single := ParallelEfficiency(results[:1], "a")
	assert.False(t, single.Defined)
}

func suite() *bench.SuiteResult {
	bad := run("zeta", bench.Decompress, 4, 2*mb, 0, 9)
	bad.Success, bad.Error = false, "exit status 2"
	warn := run("alpha", bench.Decompress, 1, 2*mb, 3, 1)
	warn.Error = "Size mismatch: 3 vs 8388608"
	return &bench.SuiteResult{
		UnitFraction: 0.5,
		ToolsTested:  []string{"zeta", "alpha"},
		Tools: map[string]bench.ToolInfo{
			"zeta":  {Name: "Zeta"},
			"alpha": {Name: "Alpha"},
		},
		Results: []bench.RunResult{
			run("zeta", bench.Compress, 1, 8*mb, 2*mb, 2),
			run("zeta", bench.Decompress, 1, 2*mb, 8*mb, 1),
			run("zeta", bench.Compress, 4, 8*mb, 2*mb, 1),
			run("alpha", bench.Compress, 4, 8*mb, mb, 4),
			run("alpha", bench.Compress, 1, 8*mb, mb, 8),
			warn,
		},
		Failures: []bench.RunResult{bad},
	}
}

func TestTabulate(t *testing.T) {
	table := Tabulate(suite())

	require.Len(t, table.Rows, 4)
	var order []string
	for _, r := range table.Rows {
		order = append(order, r.Name+"/"+strings.Repeat("x", r.Threads))
	}
	assert.Equal(t, []string{"Alpha/x", "Alpha/xxxx", "Zeta/x", "Zeta/xxxx"}, order)

	z1 := table.Rows[2]
	assert.Equal(t, 0.25, z1.Ratio)
	assert.Equal(t, 4.0, z1.BitsPerUnit)
	assert.Equal(t, 4.0, z1.CompressMBps)
	assert.True(t, z1.HasDecompress)
	assert.Equal(t, 2.0, z1.DecompressMBps)
	assert.False(t, table.Rows[3].HasDecompress)

	require.NotNil(t, table.BestRatio)
	assert.Equal(t, "alpha", table.BestRatio.Tool)
	require.NotNil(t, table.Fastest)
	assert.Equal(t, "zeta", table.Fastest.Tool)
	assert.Equal(t, 4, table.Fastest.Threads)

	require.Len(t, table.Failures, 2)
	assert.Equal(t, "Alpha", table.Failures[0].Name)
	assert.True(t, table.Failures[0].Warning)
	assert.Equal(t, "exit status 2", table.Failures[1].Error)
}

func TestTabulateSkipsEmptyOutputForHighlights(t *testing.T) {
	empty := run("hollow", bench.Compress, 1, 8*mb, 0, 0.5)
	empty.Error = bench.EmptyOutputText
	s := &bench.SuiteResult{
		ToolsTested: []string{"hollow", "zeta"},
		Results: []bench.RunResult{
			empty,
			run("zeta", bench.Compress, 1, 8*mb, 2*mb, 2),
		},
	}
	table := Tabulate(s)
	require.Len(t, table.Rows, 2)
	require.NotNil(t, table.BestRatio)
	assert.Equal(t, "zeta", table.BestRatio.Tool)
	require.NotNil(t, table.Fastest)
	assert.Equal(t, "zeta", table.Fastest.Tool)

	require.Len(t, table.Failures, 1)
	assert.True(t, table.Failures[0].Warning)
	assert.Equal(t, bench.EmptyOutputText, table.Failures[0].Error)

	only := Tabulate(&bench.SuiteResult{ToolsTested: []string{"hollow"}, Results: []bench.RunResult{empty}})
	assert.Nil(t, only.BestRatio)
	assert.Nil(t, only.Fastest)
}

func TestTabulateEmptySuite(t *testing.T) {
	table := Tabulate(&bench.SuiteResult{})
	assert.Empty(t, table.Rows)
	assert.Nil(t, table.BestRatio)
	assert.Nil(t, table.Fastest)
}

func TestCharts(t *testing.T) {
	charts := Charts(suite())
	require.Len(t, charts, len(ChartKinds))

	speed := charts[0]
	assert.Equal(t, CompressionSpeed, speed.Kind)
	require.Len(t, speed.Series, 2)
	assert.Equal(t, "Zeta", speed.Series[0].Name)
	assert.Equal(t, []Point{{1, 4}, {4, 8}}, speed.Series[0].Points)

	scale := ChartFor(suite(), Scalability)
	require.Len(t, scale.Series, 3)
	assert.Equal(t, []Point{{1, 1}, {4, 2}}, scale.Series[0].Points)
	ideal := scale.Series[2]
	assert.True(t, ideal.Reference)
	assert.Equal(t, []Point{{1, 1}, {4, 4}}, ideal.Points)

	assert.True(t, ChartFor(&bench.SuiteResult{}, Scalability).Empty())
}

func TestMatchupOf(t *testing.T) {
	m, ok := MatchupOf(suite())
	require.True(t, ok)
	assert.Equal(t, "zeta", m.A)
	assert.Equal(t, "alpha", m.B)
	require.Len(t, m.Comparisons, 2)
	assert.Equal(t, "zeta", m.Comparisons[0].Recommendation)

	_, ok = MatchupOf(&bench.SuiteResult{ToolsTested: []string{"one"}})
	assert.False(t, ok)
}

func TestWriteSummaries(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSummaries(&buf, SummarizeAll(suite())))
	out := buf.String()
	assert.Contains(t, out, "alpha/compress  :")
	assert.Contains(t, out, "zeta/decompress :")
	assert.Less(t, strings.Index(out, "alpha/"), strings.Index(out, "zeta/"))
}
