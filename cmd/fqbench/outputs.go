package main

import (
	"context"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/fqcompressor/fqbench/bench"
	"github.com/fqcompressor/fqbench/metrics"
	"github.com/fqcompressor/fqbench/report"
	"github.com/fqcompressor/fqbench/sink"
)

// outputs are the report destinations requested on the command line.
type outputs struct {
	markdown string
	json     string
	html     string
	xlsx     string
	charts   string
}

func (o *outputs) addFlags(cmd *cobra.Command, withJSON bool) {
	f := cmd.Flags()
	f.StringVar(&o.markdown, "report", "", "write the Markdown report to this file")
	if withJSON {
		f.StringVar(&o.json, "json", "", "write the raw results as JSON to this file")
	}
	f.StringVar(&o.html, "html", "", "write the HTML report to this file")
	f.StringVar(&o.xlsx, "xlsx", "", "write an XLSX workbook to this file")
	f.StringVar(&o.charts, "charts", "", "write SVG charts into this directory")
}

func (o *outputs) empty() bool {
	return o.markdown == "" && o.json == "" && o.html == "" && o.xlsx == "" && o.charts == ""
}

// render writes every requested output. Without any, the Markdown report
// goes to stdout unless quiet.
func (a *app) render(suite *bench.SuiteResult, o outputs, quiet bool) error {
	doc := report.NewDocument(suite, time.Now())

	if o.charts != "" {
		written, err := report.NewChartSink(o.charts).Write(doc.Charts)
		if err != nil {
			return err
		}
		a.logger.WithFields(logrus.Fields{"dir": o.charts, "charts": len(written)}).Info("wrote charts")
		if o.markdown != "" {
			doc.LinkCharts(o.markdown, written)
		}
	}
	if o.json != "" {
		if err := report.SaveJSON(o.json, suite); err != nil {
			return err
		}
		a.wrote("json", o.json)
	}
	for _, out := range []struct {
		kind string
		path string
		save func(string, *report.Document) error
	}{
		{"markdown", o.markdown, report.SaveMarkdown},
		{"html", o.html, report.SaveHTML},
		{"xlsx", o.xlsx, report.SaveWorkbook},
	} {
		if out.path == "" {
			continue
		}
		if err := out.save(out.path, doc); err != nil {
			return err
		}
		a.wrote(out.kind, out.path)
	}

	if o.empty() && !quiet {
		return report.WriteMarkdown(a.out, doc)
	}
	return nil
}

func (a *app) wrote(kind, path string) {
	entry := a.logger.WithFields(logrus.Fields{"format": kind, "path": path})
	if info, err := os.Stat(path); err == nil {
		entry = entry.WithField("size", humanize.Bytes(uint64(info.Size())))
	}
	entry.Info("wrote report")
}

// export hands the finished suite to the optional metrics file and Redis.
// Neither can fail the run once the reports exist.
func (a *app) export(ctx context.Context, suite *bench.SuiteResult, rec *metrics.Recorder) {
	if path := a.opts.MetricsFile; path != "" {
		if err := rec.WriteTextfile(path); err != nil {
			a.logger.WithError(err).Error("writing metrics")
		} else {
			a.logger.WithField("path", path).Info("wrote metrics")
		}
	}
	if url := a.opts.RedisURL; url != "" {
		pub, err := sink.Dial(ctx, url, a.logger)
		if err != nil {
			a.logger.WithError(err).Error("connecting to redis")
			return
		}
		defer pub.Close()
		if err := pub.Publish(ctx, suite); err != nil {
			a.logger.WithError(err).Error("publishing results")
		}
	}
}
