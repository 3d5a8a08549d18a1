package main

import (
	"fmt"
	"io"

	"github.com/cheggaaa/pb/v3"

	"github.com/fqcompressor/fqbench/bench"
)

const progressTemplate = `{{string . "prefix"}} {{counters . }} {{bar . }} {{percent . }} {{etime . }}`

// progress draws one bar tick per finished trial.
type progress struct {
	bench.NopObserver
	w   io.Writer
	bar *pb.ProgressBar
}

func newProgress(w io.Writer) *progress {
	return &progress{w: w}
}

func (p *progress) SweepStarted(ids []string, trials int) {
	if trials == 0 {
		return
	}
	p.bar = pb.ProgressBarTemplate(progressTemplate).New(trials)
	p.bar.SetWriter(p.w)
	p.bar.Start()
}

func (p *progress) TrialFinished(tool string, threads, run, runs int, _ []bench.RunResult) {
	if p.bar == nil {
		return
	}
	p.bar.Set("prefix", fmt.Sprintf("%s t=%d run %d/%d", tool, threads, run, runs))
	p.bar.Increment()
}

// Finish stops the bar; safe when the sweep never started.
func (p *progress) Finish() {
	if p.bar != nil {
		p.bar.Finish()
		p.bar = nil
	}
}
