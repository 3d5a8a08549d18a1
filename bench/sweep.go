package bench

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/fqcompressor/fqbench/tools"
)

// Observer is told about sweep progress. Calls happen on the sweep
// goroutine, one at a time.
type Observer interface {
	// SweepStarted announces the tools that will run and the total
	// number of trials.
	SweepStarted(tools []string, trials int)
	ToolSkipped(skipped SkippedTool)
	TrialFinished(tool string, threads, run, runs int, results []RunResult)
	// SlotFinished reports the results kept for one (tool, threads) pair.
	SlotFinished(tool string, threads int, best []RunResult, failures []RunResult)
}

// NopObserver ignores every event. Embed it to implement part of
// Observer.
type NopObserver struct{}

func (NopObserver) SweepStarted([]string, int)                         {}
func (NopObserver) ToolSkipped(SkippedTool)                            {}
func (NopObserver) TrialFinished(string, int, int, int, []RunResult)   {}
func (NopObserver) SlotFinished(string, int, []RunResult, []RunResult) {}

// Observers fans events out to several observers in order.
type Observers []Observer

func (o Observers) SweepStarted(ids []string, trials int) {
	for _, x := range o {
		x.SweepStarted(ids, trials)
	}
}

func (o Observers) ToolSkipped(s SkippedTool) {
	for _, x := range o {
		x.ToolSkipped(s)
	}
}

func (o Observers) TrialFinished(tool string, threads, run, runs int, results []RunResult) {
	for _, x := range o {
		x.TrialFinished(tool, threads, run, runs, results)
	}
}

func (o Observers) SlotFinished(tool string, threads int, best, failures []RunResult) {
	for _, x := range o {
		x.SlotFinished(tool, threads, best, failures)
	}
}

// Sweep drives every tool through every thread count a number of times
// and keeps the fastest successful run per operation. Trials never run
// concurrently.
type Sweep struct {
	registry *tools.Registry
	exec     Executor
	trial    *TrialRunner

	workDir    string
	systemInfo map[string]string
	observer   Observer
	logger     logrus.FieldLogger
	now        func() time.Time
}

// SweepOption customises a Sweep.
type SweepOption func(*Sweep)

// WithWorkDir shares one caller-owned directory across all trials.
func WithWorkDir(dir string) SweepOption {
	return func(s *Sweep) { s.workDir = dir }
}

// WithSystemInfo attaches host metadata to the suite.
func WithSystemInfo(info map[string]string) SweepOption {
	return func(s *Sweep) { s.systemInfo = info }
}

// WithObserver registers a progress observer.
func WithObserver(o Observer) SweepOption {
	return func(s *Sweep) { s.observer = o }
}

// WithLogger sets the sweep logger.
func WithLogger(l logrus.FieldLogger) SweepOption {
	return func(s *Sweep) { s.logger = l }
}

// WithKeepOutputs leaves trial outputs in a shared work directory.
func WithKeepOutputs(keep bool) SweepOption {
	return func(s *Sweep) { s.trial.KeepOutputs = keep }
}

// WithClock replaces time.Now for the suite timestamp.
func WithClock(now func() time.Time) SweepOption {
	return func(s *Sweep) { s.now = now }
}

// NewSweep returns a Sweep over the tools of registry.
func NewSweep(registry *tools.Registry, exec Executor, opts ...SweepOption) *Sweep {
	s := &Sweep{
		registry: registry,
		exec:     exec,
		observer: NopObserver{},
		logger:   discardLogger(),
		now:      time.Now,
	}
	s.trial = NewTrialRunner(exec, registry.Settings, nil)
	for _, o := range opts {
		o(s)
	}
	s.trial.logger = s.logger
	return s
}

// Run benchmarks toolIDs on input. Nil toolIDs means every configured tool,
// nil threads the configured default list, runs <= 0 the configured run
// count. Tools that are not configured or whose binary is missing are
// listed as skipped. A returned error means the input or work directory
// could not be used; command failures end up in the suite instead.
func (s *Sweep) Run(toolIDs []string, input string, threads []int, runs int) (*SuiteResult, error) {
	settings := s.registry.Settings
	if toolIDs == nil {
		toolIDs = s.registry.IDs()
	}
	if len(threads) == 0 {
		threads = settings.DefaultThreads
	}
	if runs <= 0 {
		runs = settings.Runs
	}
	for _, n := range threads {
		if n <= 0 {
			return nil, errors.Errorf("invalid thread count %d", n)
		}
	}
	inputSize, ok := fileSize(input)
	if !ok {
		return nil, errors.Wrap(ErrInput, input)
	}

	suite := &SuiteResult{
		RunID:        uuid.New().String(),
		Timestamp:    s.now().UTC(),
		InputFile:    input,
		InputSize:    inputSize,
		Threads:      append([]int(nil), threads...),
		Runs:         runs,
		UnitFraction: settings.UnitFraction,
		UnitLabel:    settings.UnitLabel,
		SystemInfo:   s.systemInfo,
		ToolsTested:  []string{},
		Skipped:      []SkippedTool{},
		Tools:        map[string]ToolInfo{},
		Results:      []RunResult{},
		Failures:     []RunResult{},
	}
	if suite.SystemInfo == nil {
		suite.SystemInfo = map[string]string{}
	}

	var available []*tools.Descriptor
	for _, id := range toolIDs {
		d, ok := s.registry.Lookup(id)
		switch {
		case !ok:
			s.skip(suite, SkippedTool{ID: id, Reason: "not configured"})
		case !d.Available():
			s.skip(suite, SkippedTool{ID: id, Reason: fmt.Sprintf("binary %q not found", d.Binary)})
		default:
			available = append(available, d)
		}
	}

	for _, d := range available {
		version := s.exec.Version(d.VersionCommand(), settings.VersionTimeout)
		suite.ToolsTested = append(suite.ToolsTested, d.ID)
		suite.Tools[d.ID] = ToolInfo{
			Name:        d.Name,
			Version:     version,
			Category:    d.Category,
			Description: d.Description,
		}
	}

	s.observer.SweepStarted(suite.ToolsTested, len(available)*len(threads)*runs)
	s.logger.WithFields(logrus.Fields{
		"input":   input,
		"tools":   suite.ToolsTested,
		"threads": threads,
		"runs":    runs,
	}).Info("starting sweep")

	wallStart := time.Now()
	for _, d := range available {
		s.logger.WithFields(logrus.Fields{
			"tool":    d.ID,
			"version": suite.Tools[d.ID].Version,
		}).Info("benchmarking tool")
		for _, n := range threads {
			if err := s.runSlot(suite, d, input, n, runs); err != nil {
				return nil, err
			}
		}
	}
	s.logger.WithField("took", time.Since(wallStart).Round(time.Millisecond)).Info("sweep complete")
	return suite, nil
}

func (s *Sweep) skip(suite *SuiteResult, sk SkippedTool) {
	suite.Skipped = append(suite.Skipped, sk)
	s.logger.WithFields(logrus.Fields{"tool": sk.ID, "reason": sk.Reason}).Warn("skipping tool")
	s.observer.ToolSkipped(sk)
}

func (s *Sweep) runSlot(suite *SuiteResult, d *tools.Descriptor, input string, threads, runs int) error {
	var set bestOfSet
	for run := 1; run <= runs; run++ {
		results, err := s.trial.RunTrial(d, input, threads, s.workDir)
		if err != nil {
			return err
		}
		for _, r := range results {
			set.offer(r)
		}
		s.logTrial(d.ID, threads, run, runs, results)
		s.observer.TrialFinished(d.ID, threads, run, runs, results)
	}
	best, failures := set.best(), set.failures()
	suite.Results = append(suite.Results, best...)
	suite.Failures = append(suite.Failures, failures...)
	s.observer.SlotFinished(d.ID, threads, best, failures)
	return nil
}

func (s *Sweep) logTrial(tool string, threads, run, runs int, results []RunResult) {
	log := s.logger.WithFields(logrus.Fields{
		"tool":    tool,
		"threads": threads,
		"run":     fmt.Sprintf("%d/%d", run, runs),
	})
	if len(results) == 0 {
		log.Warn("no result")
		return
	}
	c := results[0]
	if !c.Success {
		log.WithField("error", c.Error).Warn("compression failed")
		return
	}
	log.WithFields(logrus.Fields{
		"ratio": fmt.Sprintf("%.4f", c.Ratio()),
		"speed": fmt.Sprintf("%.1f MB/s", c.ThroughputMBps()),
	}).Info("trial finished")
}

// bestOfSet keeps, per operation, the successful run with the lowest
// elapsed time. Ties keep the run seen first.
type bestOfSet struct {
	fastest [2]*RunResult
	failed  [2]*RunResult
}

func opIndex(op Operation) int {
	if op == Decompress {
		return 1
	}
	return 0
}

func (b *bestOfSet) offer(r RunResult) {
	i := opIndex(r.Operation)
	if !r.Success {
		if b.failed[i] == nil {
			b.failed[i] = &r
		}
		return
	}
	if cur := b.fastest[i]; cur == nil || r.ElapsedSeconds < cur.ElapsedSeconds {
		b.fastest[i] = &r
	}
}

func (b *bestOfSet) best() []RunResult {
	var out []RunResult
	for _, r := range b.fastest {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out
}

func (b *bestOfSet) failures() []RunResult {
	var out []RunResult
	for i, r := range b.failed {
		if r != nil && b.fastest[i] == nil {
			out = append(out, *r)
		}
	}
	return out
}
