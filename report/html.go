package report

import (
	"fmt"
	"html/template"
	"io"

	"github.com/pkg/errors"

	"github.com/fqcompressor/fqbench/stats"
)

const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
  body { font-family: -apple-system, "Segoe UI", Roboto, sans-serif; margin: 0; background: #f3f4f6; color: #111827; }
  .container { max-width: 1100px; margin: 0 auto; padding: 24px; }
  .card { background: #fff; border-radius: 8px; box-shadow: 0 1px 3px rgba(0,0,0,.1); padding: 20px; margin-bottom: 20px; }
  .winner { border-left: 6px solid #10b981; }
  h1 { margin-top: 0; }
  table { border-collapse: collapse; width: 100%; font-size: 14px; }
  th, td { border-bottom: 1px solid #e5e7eb; padding: 6px 10px; text-align: right; }
  th:first-child, td:first-child { text-align: left; }
  th { background: #f9fafb; }
  .metric { display: inline-block; margin-right: 32px; }
  .metric-value { font-size: 22px; font-weight: bold; display: block; }
  .muted { color: #6b7280; }
  .chart svg { max-width: 100%; height: auto; }
  .warning { color: #b45309; }
</style>
</head>
<body>
<div class="container">
<div class="card">
  <h1>{{.Title}}</h1>
  <p class="muted">Generated {{.Generated}} &middot; run <code>{{.Doc.Suite.RunID}}</code></p>
</div>

{{with .Winner}}
<div class="card winner">
  <h2>Head to head</h2>
  {{range .Metrics}}<span class="metric"><span class="metric-value">{{.Value}}</span>{{.Label}}</span>{{end}}
  <ul>{{range .Lines}}<li>{{.}}</li>{{end}}</ul>
</div>
{{end}}

<div class="card">
  <h2>Test Environment</h2>
  <table>{{range .Doc.Environment}}<tr><td>{{.Label}}</td><td>{{.Value}}</td></tr>{{end}}</table>
</div>

<div class="card">
  <h2>Tools Tested</h2>
  <ul>{{range .Doc.ToolsTested}}<li><strong>{{.Name}}</strong> ({{.Category}}): {{.Description}} <span class="muted">version {{.Version}}</span></li>{{else}}<li>No tools were available.</li>{{end}}</ul>
  {{with .Doc.Suite.Skipped}}<h3>Skipped Tools</h3>
  <ul>{{range .}}<li><code>{{.ID}}</code>: {{.Reason}}</li>{{end}}</ul>{{end}}
</div>

<div class="card">
  <h2>Compression Results</h2>
  <table>
    <tr><th>Tool</th><th>Threads</th><th>Ratio</th><th>Bits/{{.Doc.UnitLabel}}</th><th>Compress (MB/s)</th><th>Decompress (MB/s)</th><th>Peak Mem (MB)</th></tr>
    {{range .Rows}}<tr><td>{{.Name}}</td><td>{{.Threads}}</td><td>{{.Ratio}}</td><td>{{.Bits}}</td><td>{{.Compress}}</td><td>{{.Decompress}}</td><td>{{.Memory}}</td></tr>
    {{else}}<tr><td colspan="7">No successful compression runs.</td></tr>{{end}}
  </table>
</div>

{{with .Doc.Table.Failures}}
<div class="card">
  <h2>Failed Runs</h2>
  <table>
    <tr><th>Tool</th><th>Threads</th><th>Operation</th><th>Error</th></tr>
    {{range .}}<tr{{if .Warning}} class="warning"{{end}}><td>{{.Name}}</td><td>{{.Threads}}</td><td>{{.Operation}}</td><td>{{.Error}}</td></tr>{{end}}
  </table>
</div>
{{end}}

{{with .Stats}}
<div class="card">
  <h2>Statistics</h2>
  <table>
    <tr><th>Tool</th><th>Operation</th><th>Runs</th><th>Mean (MB/s)</th><th>Std Dev</th><th>Min</th><th>Max</th><th>Median</th><th>Time (s)</th><th>p95 (s)</th><th>Ratio</th></tr>
    {{range .}}<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>{{end}}
  </table>
</div>
{{end}}

{{range .Charts}}
<div class="card chart">{{.}}</div>
{{end}}

<div class="card">
  <h2>Summary</h2>
  <ul>{{range .Summary}}<li>{{.}}</li>{{else}}<li>No successful compression runs.</li>{{end}}</ul>
</div>
<p class="muted">Report generated by fqbench</p>
</div>
</body>
</html>
`

var htmlPage = template.Must(template.New("report").Parse(htmlTemplate))

type htmlRow struct {
	Name       string
	Threads    int
	Ratio      string
	Bits       string
	Compress   string
	Decompress string
	Memory     string
}

type htmlMetric struct {
	Label string
	Value string
}

type htmlWinner struct {
	Metrics []htmlMetric
	Lines   []string
}

type htmlPageData struct {
	Title     string
	Generated string
	Doc       *Document
	Rows      []htmlRow
	Stats     [][]string
	Charts    []template.HTML
	Winner    *htmlWinner
	Summary   []string
}

// WriteHTML renders the document as a single self-contained HTML page with
// inline SVG charts. The head-to-head card appears only for two tools.
func WriteHTML(w io.Writer, d *Document, plotter *SVGPlotter) error {
	if plotter == nil {
		plotter = NewSVGPlotter(DefaultPlotConfig())
	}
	data := htmlPageData{
		Title:     Title,
		Generated: d.Generated.Format("2006-01-02 15:04:05 MST"),
		Doc:       d,
	}
	for _, r := range d.Table.Rows {
		row := htmlRow{
			Name:       r.Name,
			Threads:    r.Threads,
			Ratio:      fmt.Sprintf("%.4f", r.Ratio),
			Bits:       fmt.Sprintf("%.2f", r.BitsPerUnit),
			Compress:   fmt.Sprintf("%.1f", r.CompressMBps),
			Decompress: NotAvailable,
			Memory:     memory(r.PeakMemoryMB),
		}
		if r.HasDecompress {
			row.Decompress = fmt.Sprintf("%.1f", r.DecompressMBps)
		}
		data.Rows = append(data.Rows, row)
	}
	for _, s := range d.Summaries {
		data.Stats = append(data.Stats, summaryCells(d, s))
	}
	for _, c := range d.Charts {
		svg, err := plotter.Render(c)
		if err != nil {
			return errors.Wrapf(err, "rendering %s chart", c.Kind)
		}
		// already escaped by the svg template
		data.Charts = append(data.Charts, template.HTML(svg))
	}
	if m := d.Matchup; m != nil {
		data.Winner = winnerCard(d, m)
	}
	if best := d.Table.BestRatio; best != nil {
		data.Summary = append(data.Summary, fmt.Sprintf("Best compression ratio: %s (%.4f, %.2f bits/%s)", best.Name, best.Ratio, best.BitsPerUnit, d.Suite.UnitLabel))
	}
	if fastest := d.Table.Fastest; fastest != nil {
		data.Summary = append(data.Summary, fmt.Sprintf("Fastest compression: %s (%.1f MB/s)", fastest.Name, fastest.ThroughputMBps))
	}
	return errors.Wrap(htmlPage.Execute(w, data), "rendering html report")
}

func winnerCard(d *Document, m *stats.Matchup) *htmlWinner {
	card := &htmlWinner{}
	for _, c := range m.Comparisons {
		if !c.Defined {
			continue
		}
		ratio := c.Speedup
		if ratio < 1 {
			ratio = 1 / ratio
		}
		card.Metrics = append(card.Metrics, htmlMetric{
			Label: fmt.Sprintf("%s: %s faster (%.1f%% improvement)", Label(c.Operation), d.Name(c.Faster), c.Difference),
			Value: fmt.Sprintf("%.2fx", ratio),
		})
		card.Lines = append(card.Lines, fmt.Sprintf("%s: %s", Label(c.Operation), d.RecommendationText(c)))
	}
	card.Lines = append(card.Lines, headToHeadLines(d, m.HeadToHead)...)
	return card
}

func headToHeadLines(d *Document, h stats.HeadToHead) []string {
	var out []string
	if h.SpeedLeader != "" {
		out = append(out, fmt.Sprintf("Best-case compression speed: %s is %.1f%% faster", d.Name(h.SpeedLeader), h.SpeedDiff))
	}
	switch {
	case h.RatioLeader != "":
		out = append(out, fmt.Sprintf("Average ratio: %s compresses %.1f%% better", d.Name(h.RatioLeader), h.RatioDiff))
	case h.RatioTie:
		out = append(out, "Average ratio: both tools are equal")
	}
	for _, e := range h.Efficiency {
		if e.Defined {
			out = append(out, fmt.Sprintf("Parallel efficiency of %s: %.1f%% at %d threads", d.Name(e.Tool), e.Percent, e.MaxThreads))
		}
	}
	return out
}

func summaryCells(d *Document, s stats.StatSummary) []string {
	ratio := NotAvailable
	if s.HasRatio {
		ratio = fmt.Sprintf("%.4f ± %.4f", s.RatioMean, s.RatioStdev)
	}
	return []string{
		d.Name(s.Tool),
		Label(s.Operation),
		fmt.Sprintf("%d", s.Count),
		fmt.Sprintf("%.2f", s.ThroughputMean),
		fmt.Sprintf("%.2f", s.ThroughputStdev),
		fmt.Sprintf("%.2f", s.ThroughputMin),
		fmt.Sprintf("%.2f", s.ThroughputMax),
		fmt.Sprintf("%.2f", s.ThroughputMedian),
		fmt.Sprintf("%.3f", s.ElapsedMean),
		fmt.Sprintf("%.3f", s.ElapsedP95),
		ratio,
	}
}
