package stats

import (
	"sort"

	"github.com/fqcompressor/fqbench/bench"
)

// Row is one (tool, threads) line of the results table. Rows exist only
// for slots with a successful compression.
type Row struct {
	Tool           string
	Name           string
	Threads        int
	Ratio          float64
	BitsPerUnit    float64
	CompressMBps   float64
	DecompressMBps float64
	HasDecompress  bool
	PeakMemoryMB   float64
}

// Highlight names a single notable result.
type Highlight struct {
	Tool           string
	Name           string
	Threads        int
	Ratio          float64
	BitsPerUnit    float64
	ThroughputMBps float64
}

// FailureRow is a failed run, or a successful run carrying a warning.
type FailureRow struct {
	Tool      string
	Name      string
	Threads   int
	Operation bench.Operation
	Error     string
	Warning   bool
}

// Table is the tabular projection of a suite.
type Table struct {
	Rows     []Row
	Failures []FailureRow
	// BestRatio is the compression with the smallest ratio, Fastest the
	// one with the highest throughput. Compressions that left no output
	// are not considered. Nil when nothing qualifies.
	BestRatio *Highlight
	Fastest   *Highlight
}

// Tabulate projects the suite into report rows sorted by tool name and
// thread count.
func Tabulate(suite *bench.SuiteResult) Table {
	var t Table
	for _, c := range suite.Successful(bench.Compress) {
		row := Row{
			Tool:         c.Tool,
			Name:         suite.ToolName(c.Tool),
			Threads:      c.Threads,
			Ratio:        c.Ratio(),
			BitsPerUnit:  c.BitsPerUnit(suite.UnitFraction),
			CompressMBps: c.ThroughputMBps(),
			PeakMemoryMB: c.PeakMemoryMB,
		}
		if d, ok := suite.Find(c.Tool, c.Threads, bench.Decompress); ok && d.Success {
			row.HasDecompress = true
			row.DecompressMBps = d.ThroughputMBps()
			if d.PeakMemoryMB > row.PeakMemoryMB {
				row.PeakMemoryMB = d.PeakMemoryMB
			}
		}
		t.Rows = append(t.Rows, row)
		if c.OutputSize == 0 || c.IntegrityWarning() {
			continue
		}

		h := Highlight{
			Tool:           c.Tool,
			Name:           row.Name,
			Threads:        c.Threads,
			Ratio:          row.Ratio,
			BitsPerUnit:    row.BitsPerUnit,
			ThroughputMBps: row.CompressMBps,
		}
		if t.BestRatio == nil || h.Ratio < t.BestRatio.Ratio {
			best := h
			t.BestRatio = &best
		}
		if t.Fastest == nil || h.ThroughputMBps > t.Fastest.ThroughputMBps {
			fastest := h
			t.Fastest = &fastest
		}
	}
	sort.SliceStable(t.Rows, func(i, j int) bool {
		a, b := t.Rows[i], t.Rows[j]
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.Threads < b.Threads
	})

	for _, f := range suite.Failures {
		t.Failures = append(t.Failures, failureRow(suite, f, false))
	}
	for _, r := range suite.Results {
		if r.IntegrityWarning() {
			t.Failures = append(t.Failures, failureRow(suite, r, true))
		}
	}
	sort.SliceStable(t.Failures, func(i, j int) bool {
		a, b := t.Failures[i], t.Failures[j]
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.Threads < b.Threads
	})
	return t
}

func failureRow(suite *bench.SuiteResult, r bench.RunResult, warning bool) FailureRow {
	return FailureRow{
		Tool:      r.Tool,
		Name:      suite.ToolName(r.Tool),
		Threads:   r.Threads,
		Operation: r.Operation,
		Error:     r.Error,
		Warning:   warning,
	}
}
