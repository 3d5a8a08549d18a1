package report

import (
	"io"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/fqcompressor/fqbench/stats"
)

// ChartSink writes each chart kind to {dir}/{kind}.svg.
type ChartSink struct {
	Dir     string
	Plotter *SVGPlotter
}

// NewChartSink returns a sink writing into dir with the default style.
func NewChartSink(dir string) *ChartSink {
	return &ChartSink{Dir: dir, Plotter: NewSVGPlotter(DefaultPlotConfig())}
}

// ChartFile is the file name of a chart kind.
func ChartFile(kind stats.ChartKind) string {
	return string(kind) + ".svg"
}

// Write renders every chart and returns the written paths by kind.
// Charts without data are skipped.
func (s *ChartSink) Write(charts []stats.Chart) (map[stats.ChartKind]string, error) {
	written := map[stats.ChartKind]string{}
	for _, c := range charts {
		if c.Empty() {
			continue
		}
		svg, err := s.Plotter.Render(c)
		if err != nil {
			return written, errors.Wrapf(err, "rendering %s chart", c.Kind)
		}
		path := filepath.Join(s.Dir, ChartFile(c.Kind))
		err = writeFile(path, func(w io.Writer) error {
			_, err := io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?>`+"\n"+svg)
			return err
		})
		if err != nil {
			return written, err
		}
		written[c.Kind] = path
	}
	return written, nil
}

// LinkCharts records chart files relative to the report at reportPath so
// the Markdown renderer can link them.
func (d *Document) LinkCharts(reportPath string, written map[stats.ChartKind]string) {
	if len(written) == 0 {
		return
	}
	base := filepath.Dir(reportPath)
	d.ChartFiles = map[stats.ChartKind]string{}
	for kind, path := range written {
		rel, err := filepath.Rel(base, path)
		if err != nil {
			rel = path
		}
		d.ChartFiles[kind] = filepath.ToSlash(rel)
	}
}
