package report

import (
	"fmt"
	"io"
	"strings"
)

// Markdown renders the document as a Markdown report.
func Markdown(d *Document) string {
	var b strings.Builder
	line := func(format string, args ...interface{}) {
		fmt.Fprintf(&b, format, args...)
		b.WriteByte('\n')
	}

	line("# %s", Title)
	line("")
	line("**Generated:** %s  ", d.Generated.Format("2006-01-02 15:04:05 MST"))
	line("**Run ID:** `%s`", d.Suite.RunID)
	line("")

	line("## Test Environment")
	line("")
	for _, e := range d.Environment() {
		if e.Label == "Input File" {
			line("- **%s:** `%s`", e.Label, e.Value)
			continue
		}
		line("- **%s:** %s", e.Label, e.Value)
	}
	line("")

	line("## Tools Tested")
	line("")
	tested := d.ToolsTested()
	if len(tested) == 0 {
		line("_No tools were available._")
	}
	for _, t := range tested {
		line("- **%s** (%s): %s _(version: %s)_", t.Name, t.Category, t.Description, t.Version)
	}
	line("")

	if len(d.Suite.Skipped) > 0 {
		line("## Skipped Tools")
		line("")
		for _, s := range d.Suite.Skipped {
			line("- `%s`: %s", s.ID, s.Reason)
		}
		line("")
	}

	unit := d.UnitLabel()
	line("## Compression Results")
	line("")
	line("| Tool | Threads | Ratio | Bits/%s | Compress (MB/s) | Decompress (MB/s) | Peak Mem (MB) |", unit)
	line("|------|---------|-------|-----------|-----------------|-------------------|---------------|")
	for _, r := range d.Table.Rows {
		decompress := NotAvailable
		if r.HasDecompress {
			decompress = fmt.Sprintf("%.1f", r.DecompressMBps)
		}
		line("| %s | %d | %.4f | %.2f | %.1f | %s | %s |",
			cell(r.Name), r.Threads, r.Ratio, r.BitsPerUnit, r.CompressMBps, decompress, memory(r.PeakMemoryMB))
	}
	if len(d.Table.Rows) == 0 {
		line("")
		line("_No successful compression runs._")
	}
	line("")

	if len(d.Table.Failures) > 0 {
		line("## Failed Runs")
		line("")
		line("| Tool | Threads | Operation | Error |")
		line("|------|---------|-----------|-------|")
		for _, f := range d.Table.Failures {
			op := string(f.Operation)
			if f.Warning {
				op += " (warning)"
			}
			line("| %s | %d | %s | %s |", cell(f.Name), f.Threads, op, cell(f.Error))
		}
		line("")
	}

	if len(d.Summaries) > 0 {
		line("## Statistics")
		line("")
		line("| Tool | Operation | Runs | Mean (MB/s) | Std Dev | Min | Max | Median | Time (s) | p95 (s) | Ratio |")
		line("|------|-----------|------|-------------|---------|-----|-----|--------|----------|---------|-------|")
		for _, s := range d.Summaries {
			cells := summaryCells(d, s)
			cells[0] = cell(cells[0])
			line("| %s |", strings.Join(cells, " | "))
		}
		line("")
	}

	if m := d.Matchup; m != nil {
		line("## Comparison")
		line("")
		for _, c := range m.Comparisons {
			line("- **%s:** %s; %s", Label(c.Operation), d.ComparisonText(c), d.RecommendationText(c))
		}
		for _, h := range headToHeadLines(d, m.HeadToHead) {
			line("- %s", h)
		}
		line("")
	}

	if len(d.ChartFiles) > 0 {
		line("## Charts")
		line("")
		for _, c := range d.Charts {
			if file, ok := d.ChartFiles[c.Kind]; ok {
				line("![%s](%s)", c.Title, file)
				line("")
			}
		}
	}

	line("## Summary")
	line("")
	if best := d.Table.BestRatio; best != nil {
		line("- **Best Compression Ratio:** %s (%.4f, %.2f bits/%s)", best.Name, best.Ratio, best.BitsPerUnit, d.Suite.UnitLabel)
	}
	if fastest := d.Table.Fastest; fastest != nil {
		line("- **Fastest Compression:** %s (%.1f MB/s)", fastest.Name, fastest.ThroughputMBps)
	}
	if d.Table.BestRatio == nil {
		line("_No successful compression runs._")
	}
	line("")
	line("---")
	line("*Report generated by fqbench*")
	return b.String()
}

// WriteMarkdown writes the Markdown report to w.
func WriteMarkdown(w io.Writer, d *Document) error {
	_, err := io.WriteString(w, Markdown(d))
	return err
}

func memory(mb float64) string {
	if mb <= 0 {
		return NotAvailable
	}
	return fmt.Sprintf("%.1f", mb)
}

// cell keeps free text from breaking a table row.
func cell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	s = strings.ReplaceAll(s, "\r", "")
	return strings.ReplaceAll(strings.TrimSpace(s), "\n", " ")
}
