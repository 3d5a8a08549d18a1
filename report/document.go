// Package report renders a finished suite as Markdown, HTML, JSON, XLSX
// and SVG charts. Every figure comes from package stats; renderers only
// format.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/fqcompressor/fqbench/bench"
	"github.com/fqcompressor/fqbench/stats"
	"github.com/fqcompressor/fqbench/sysinfo"
)

// Title heads every human-readable report.
const Title = "fqbench Benchmark Report"

// NotAvailable stands in for missing values.
const NotAvailable = "N/A"

// Document is the projection of a suite shared by the renderers.
type Document struct {
	Suite     *bench.SuiteResult
	Generated time.Time
	Table     stats.Table
	Summaries []stats.StatSummary
	Charts    []stats.Chart
	// Matchup is set when exactly two tools took part.
	Matchup *stats.Matchup
	// ChartFiles maps chart kinds to files written next to the report.
	// Markdown links them when set.
	ChartFiles map[stats.ChartKind]string
}

// NewDocument derives everything the renderers need from suite.
func NewDocument(suite *bench.SuiteResult, generated time.Time) *Document {
	d := &Document{
		Suite:     suite,
		Generated: generated,
		Table:     stats.Tabulate(suite),
		Summaries: stats.SummarizeAll(suite),
		Charts:    stats.Charts(suite),
	}
	if m, ok := stats.MatchupOf(suite); ok {
		d.Matchup = &m
	}
	sort.SliceStable(d.Summaries, func(i, j int) bool {
		a, b := d.Summaries[i], d.Summaries[j]
		if na, nb := d.Name(a.Tool), d.Name(b.Tool); na != nb {
			return na < nb
		}
		return operationRank(a.Operation) < operationRank(b.Operation)
	})
	return d
}

func operationRank(op bench.Operation) int {
	for i, o := range bench.Operations {
		if o == op {
			return i
		}
	}
	return len(bench.Operations)
}

// EnvItem is one line of the test environment section.
type EnvItem struct {
	Label string
	Value string
}

// Environment lists the host and input facts shown at the top of a report.
func (d *Document) Environment() []EnvItem {
	s := d.Suite
	info := func(key string) string {
		if v, ok := s.SystemInfo[key]; ok && v != "" {
			return v
		}
		return NotAvailable
	}
	return []EnvItem{
		{"Input File", s.InputFile},
		{"Input Size", fmt.Sprintf("%.2f MB (%s)", float64(s.InputSize)/bench.BytesPerMB, humanize.IBytes(uint64(s.InputSize)))},
		{"Threads", joinInts(s.Threads)},
		{"Runs per configuration", fmt.Sprintf("%d", s.Runs)},
		{"CPU Cores", info(sysinfo.CPUCores)},
		{"CPU Model", info(sysinfo.CPUModel)},
		{"Memory", withUnit(info(sysinfo.MemoryGB), "GB")},
		{"Kernel", info(sysinfo.Kernel)},
	}
}

// ToolLine describes a tested tool.
type ToolLine struct {
	ID          string
	Name        string
	Category    string
	Description string
	Version     string
}

// ToolsTested lists the exercised tools in test order.
func (d *Document) ToolsTested() []ToolLine {
	var out []ToolLine
	for _, id := range d.Suite.ToolsTested {
		info := d.Suite.Tools[id]
		out = append(out, ToolLine{
			ID:          id,
			Name:        d.Suite.ToolName(id),
			Category:    info.Category,
			Description: info.Description,
			Version:     info.Version,
		})
	}
	return out
}

// Name returns the display name of a tool id.
func (d *Document) Name(id string) string {
	return d.Suite.ToolName(id)
}

// UnitLabel capitalises the unit for column headers, e.g. "Bits/Base".
func (d *Document) UnitLabel() string {
	l := d.Suite.UnitLabel
	if l == "" {
		l = "unit"
	}
	return strings.ToUpper(l[:1]) + l[1:]
}

// ComparisonText phrases a two-tool comparison for humans.
func (d *Document) ComparisonText(c stats.Comparison) string {
	if !c.Defined {
		return "not enough successful runs to compare"
	}
	slower := c.A
	if c.Faster == c.A {
		slower = c.B
	}
	ratio := c.Speedup
	if ratio < 1 {
		ratio = 1 / ratio
	}
	return fmt.Sprintf("%s is %.2fx faster than %s (%.1f%%)", d.Name(c.Faster), ratio, d.Name(slower), c.Difference)
}

// RecommendationText phrases the recommendation of a comparison.
func (d *Document) RecommendationText(c stats.Comparison) string {
	switch c.Recommendation {
	case "":
		return NotAvailable
	case stats.Comparable:
		return "both tools show similar performance"
	default:
		return "use " + d.Name(c.Recommendation)
	}
}

// Label capitalises an operation for headings.
func Label(op bench.Operation) string {
	switch op {
	case bench.Compress:
		return "Compression"
	case bench.Decompress:
		return "Decompression"
	}
	return string(op)
}

func joinInts(v []int) string {
	parts := make([]string, len(v))
	for i, n := range v {
		parts[i] = fmt.Sprintf("%d", n)
	}
	return strings.Join(parts, ", ")
}

func withUnit(v, unit string) string {
	if v == NotAvailable {
		return v
	}
	return v + " " + unit
}
