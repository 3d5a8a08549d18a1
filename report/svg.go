package report

import (
	"fmt"
	"html/template"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/fqcompressor/fqbench/stats"
)

// PlotConfig holds chart dimensions and styling.
type PlotConfig struct {
	Width        int
	Height       int
	MarginTop    int
	MarginRight  int
	MarginBottom int
	MarginLeft   int
	GridColor    string
	TextColor    string
	Colors       []string
}

// DefaultPlotConfig returns the chart style used by every report.
func DefaultPlotConfig() PlotConfig {
	return PlotConfig{
		Width: 800, Height: 400, MarginTop: 40, MarginRight: 170,
		MarginBottom: 50, MarginLeft: 60, GridColor: "#e5e7eb", TextColor: "#111827",
		Colors: []string{"#3b82f6", "#ef4444", "#10b981", "#f97316", "#8b5cf6", "#ec4899"},
	}
}

type plotData struct {
	Config      PlotConfig
	Chart       stats.Chart
	InnerWidth  int
	InnerHeight int
	XTicks      []tick
	YTicks      []tick
	Lines       []seriesPath
	Legend      []legendItem
	Empty       bool
}

type tick struct {
	Pos   int
	Label string
}

type marker struct{ X, Y int }

type seriesPath struct {
	Path    string
	Color   string
	Dashed  bool
	Markers []marker
}

type legendItem struct {
	Name   string
	Color  string
	Y      int
	Dashed bool
}

const svgTemplate = `<svg width="{{.Config.Width}}" height="{{.Config.Height}}" viewBox="0 0 {{.Config.Width}} {{.Config.Height}}" xmlns="http://www.w3.org/2000/svg">
  <style>
    .axis { font: 12px sans-serif; fill: {{.Config.TextColor}}; }
    .axis path, .axis line { fill: none; stroke: {{.Config.TextColor}}; }
    .grid { stroke: {{.Config.GridColor}}; stroke-width: 0.5px; }
    .title { font: bold 16px sans-serif; text-anchor: middle; fill: {{.Config.TextColor}}; }
    .label { font: 12px sans-serif; text-anchor: middle; fill: {{.Config.TextColor}}; }
    .legend { font: 12px sans-serif; fill: {{.Config.TextColor}}; }
  </style>
  <text class="title" x="{{div .Config.Width 2}}" y="22">{{.Chart.Title}}</text>
  <g transform="translate({{.Config.MarginLeft}},{{.Config.MarginTop}})">
    {{range .YTicks}}<line class="grid" x1="0" x2="{{$.InnerWidth}}" y1="{{.Pos}}" y2="{{.Pos}}"></line>{{end}}
    <g class="axis" transform="translate(0,{{.InnerHeight}})">
      {{range .XTicks}}<line x1="{{.Pos}}" x2="{{.Pos}}" y1="0" y2="6"></line><text x="{{.Pos}}" y="20" text-anchor="middle">{{.Label}}</text>{{end}}
      <path d="M0,0H{{.InnerWidth}}"></path>
      <text class="label" x="{{div .InnerWidth 2}}" y="40">{{.Chart.XLabel}}</text>
    </g>
    <g class="axis">
      {{range .YTicks}}<line x1="0" x2="-6" y1="{{.Pos}}" y2="{{.Pos}}"></line><text x="-10" y="{{add .Pos 4}}" text-anchor="end">{{.Label}}</text>{{end}}
      <path d="M0,0V{{.InnerHeight}}"></path>
      <text class="label" transform="rotate(-90)" x="{{neg (div .InnerHeight 2)}}" y="-45">{{.Chart.YLabel}}</text>
    </g>
    {{if .Empty}}<text class="label" x="{{div .InnerWidth 2}}" y="{{div .InnerHeight 2}}">no data</text>{{end}}
    {{range .Lines}}<path fill="none" stroke="{{.Color}}" stroke-width="2px"{{if .Dashed}} stroke-dasharray="6 4"{{end}} d="{{.Path}}"></path>
    {{$c := .Color}}{{range .Markers}}<circle cx="{{.X}}" cy="{{.Y}}" r="4" fill="{{$c}}"></circle>{{end}}
    {{end}}
  </g>
  <g class="legend" transform="translate({{add .Config.MarginLeft (add .InnerWidth 20)}},{{.Config.MarginTop}})">
    {{range .Legend}}<rect x="0" y="{{.Y}}" width="12" height="12" fill="{{.Color}}"></rect><text x="20" y="{{add .Y 10}}">{{.Name}}</text>
    {{end}}
  </g>
</svg>
`

// SVGPlotter draws line charts with a numeric thread-count X axis.
type SVGPlotter struct {
	config   PlotConfig
	template *template.Template
}

// NewSVGPlotter returns a plotter using config.
func NewSVGPlotter(config PlotConfig) *SVGPlotter {
	tmpl := template.Must(template.New("svg").Funcs(template.FuncMap{
		"div": func(a, b int) int { return a / b },
		"add": func(a, b int) int { return a + b },
		"neg": func(a int) int { return -a },
	}).Parse(svgTemplate))
	return &SVGPlotter{config: config, template: tmpl}
}

// Render returns the chart as a standalone SVG document.
func (p *SVGPlotter) Render(c stats.Chart) (string, error) {
	innerWidth := p.config.Width - p.config.MarginLeft - p.config.MarginRight
	innerHeight := p.config.Height - p.config.MarginTop - p.config.MarginBottom
	data := plotData{
		Config:      p.config,
		Chart:       c,
		InnerWidth:  innerWidth,
		InnerHeight: innerHeight,
		Empty:       c.Empty(),
	}

	xs, ys := extents(c.Series)
	ys = padExtent(ys)
	xScale := linearScale{domain: xs, rng: [2]int{0, innerWidth}}
	yScale := linearScale{domain: ys, rng: [2]int{innerHeight, 0}}

	for _, x := range xTickValues(c.Series) {
		data.XTicks = append(data.XTicks, tick{Pos: xScale.scale(x), Label: formatValue(x, 0)})
	}
	values := valueTicks(ys[0], ys[1], 6)
	prec := precision(values)
	for _, v := range values {
		data.YTicks = append(data.YTicks, tick{Pos: yScale.scale(v), Label: formatValue(v, prec)})
	}

	colorIdx := 0
	for i, s := range c.Series {
		color := "#6b7280"
		if !s.Reference {
			color = p.config.Colors[colorIdx%len(p.config.Colors)]
			colorIdx++
		}
		line := seriesPath{Color: color, Dashed: s.Reference, Path: linePath(s.Points, xScale, yScale)}
		if !s.Reference {
			for _, pt := range s.Points {
				line.Markers = append(line.Markers, marker{X: xScale.scale(pt.X), Y: yScale.scale(pt.Y)})
			}
		}
		data.Lines = append(data.Lines, line)
		data.Legend = append(data.Legend, legendItem{Name: s.Name, Color: color, Y: i * 20, Dashed: s.Reference})
	}

	var out strings.Builder
	if err := p.template.Execute(&out, data); err != nil {
		return "", err
	}
	return out.String(), nil
}

type linearScale struct {
	domain [2]float64
	rng    [2]int
}

func (ls linearScale) scale(v float64) int {
	d := ls.domain[1] - ls.domain[0]
	if d == 0 {
		return (ls.rng[0] + ls.rng[1]) / 2
	}
	r := (v - ls.domain[0]) / d
	return ls.rng[0] + int(math.Round(r*float64(ls.rng[1]-ls.rng[0])))
}

func extents(series []stats.Series) (x, y [2]float64) {
	x = [2]float64{math.Inf(1), math.Inf(-1)}
	y = [2]float64{0, math.Inf(-1)}
	for _, s := range series {
		for _, pt := range s.Points {
			x[0], x[1] = math.Min(x[0], pt.X), math.Max(x[1], pt.X)
			y[0], y[1] = math.Min(y[0], pt.Y), math.Max(y[1], pt.Y)
		}
	}
	if x[0] > x[1] {
		x = [2]float64{0, 1}
	}
	if y[0] > y[1] {
		y = [2]float64{0, 1}
	}
	return x, y
}

// padExtent keeps zero in view and leaves headroom above the highest point.
func padExtent(e [2]float64) [2]float64 {
	lo, hi := e[0], e[1]
	if lo == hi {
		if hi == 0 {
			return [2]float64{0, 1}
		}
		return [2]float64{math.Min(0, lo), hi + math.Abs(hi)*0.1}
	}
	return [2]float64{lo, hi + (hi-lo)*0.05}
}

func xTickValues(series []stats.Series) []float64 {
	seen := map[float64]bool{}
	var out []float64
	for _, s := range series {
		for _, pt := range s.Points {
			if !seen[pt.X] {
				seen[pt.X] = true
				out = append(out, pt.X)
			}
		}
	}
	sort.Float64s(out)
	return out
}

func linePath(points []stats.Point, xs, ys linearScale) string {
	if len(points) == 0 {
		return ""
	}
	var b strings.Builder
	for i, pt := range points {
		cmd := " L"
		if i == 0 {
			cmd = "M"
		}
		fmt.Fprintf(&b, "%s%d,%d", cmd, xs.scale(pt.X), ys.scale(pt.Y))
	}
	return b.String()
}

func valueTicks(lo, hi float64, maxTicks int) []float64 {
	if lo >= hi {
		return []float64{lo}
	}
	rawStep := (hi - lo) / float64(maxTicks-1)
	magnitude := math.Pow(10, math.Floor(math.Log10(rawStep)))
	var step float64
	switch n := rawStep / magnitude; {
	case n <= 1:
		step = magnitude
	case n <= 2:
		step = 2 * magnitude
	case n <= 5:
		step = 5 * magnitude
	default:
		step = 10 * magnitude
	}
	var ticks []float64
	for v := math.Floor(lo/step) * step; v <= hi+step/2; v += step {
		if v >= lo-step/2 {
			ticks = append(ticks, v)
		}
	}
	return ticks
}

func precision(values []float64) int {
	if len(values) <= 1 {
		return 1
	}
	minDiff := math.Inf(1)
	for i := 1; i < len(values); i++ {
		if d := math.Abs(values[i] - values[i-1]); d > 0 && d < minDiff {
			minDiff = d
		}
	}
	if math.IsInf(minDiff, 0) {
		return 2
	}
	p := int(math.Max(0, -math.Floor(math.Log10(minDiff))))
	if p > 6 {
		return 6
	}
	return p
}

func formatValue(v float64, prec int) string {
	s := strconv.FormatFloat(v, 'f', prec, 64)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	}
	if s == "" || s == "-0" {
		return "0"
	}
	return s
}
