package main

import (
	"context"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/fqcompressor/fqbench/bench"
	"github.com/fqcompressor/fqbench/executor"
	"github.com/fqcompressor/fqbench/metrics"
	"github.com/fqcompressor/fqbench/stats"
	"github.com/fqcompressor/fqbench/sysinfo"
	"github.com/fqcompressor/fqbench/tools"
)

type sweepParams struct {
	input   string
	tools   []string
	threads []int
	runs    int
	workDir string
	// sharedWorkDir creates a temporary work directory when none is given.
	sharedWorkDir bool
	keepOutputs   bool
	quiet         bool
}

// sweep runs the benchmark, renders the reports and exports the results.
func (a *app) sweep(ctx context.Context, reg *tools.Registry, p sweepParams, out outputs) error {
	workDir := p.workDir
	if workDir == "" {
		workDir = a.opts.WorkDir
	}
	if p.keepOutputs && workDir == "" {
		return errors.New("--keep requires --workdir")
	}
	if workDir == "" && (p.sharedWorkDir || strings.HasSuffix(p.input, ".gz")) {
		dir, err := os.MkdirTemp("", "fqbench-")
		if err != nil {
			return errors.Wrap(bench.ErrWorkDir, err.Error())
		}
		defer os.RemoveAll(dir)
		workDir = dir
	}

	input, err := bench.PrepareInput(p.input, workDir)
	if err != nil {
		return err
	}
	if info, err := os.Stat(input); err == nil {
		a.logger.WithFields(logrus.Fields{
			"input": input,
			"size":  humanize.IBytes(uint64(info.Size())),
		}).Info("benchmark input")
	}

	meter := executor.SelectMeter(a.opts.TimeBinary, a.logger)
	a.logger.WithField("meter", meter.Name()).Debug("memory meter selected")

	rec := metrics.NewRecorder()
	observers := bench.Observers{rec}
	var bar *progress
	if !p.quiet {
		bar = newProgress(a.errOut)
		observers = append(observers, bar)
	}

	s := bench.NewSweep(reg, executor.New(meter, a.logger),
		bench.WithWorkDir(workDir),
		bench.WithKeepOutputs(p.keepOutputs),
		bench.WithSystemInfo(sysinfo.Collect(a.logger)),
		bench.WithObserver(observers),
		bench.WithLogger(a.logger),
	)
	suite, err := s.Run(p.tools, input, p.threads, p.runs)
	if bar != nil {
		bar.Finish()
	}
	if err != nil {
		return err
	}

	if !p.quiet {
		if err := stats.WriteSummaries(a.errOut, stats.SummarizeAll(suite)); err != nil {
			return err
		}
	}
	if err := a.render(suite, out, p.quiet); err != nil {
		return err
	}
	a.export(ctx, suite, rec)
	return nil
}
