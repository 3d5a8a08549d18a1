// Package executor runs benchmark commands under a wall-clock timeout and
// reports how long they took and how they ended.
package executor

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	// MaxErrorChars bounds the diagnostic text kept from a failed command.
	MaxErrorChars = 200
	// MaxVersionChars bounds a probed version string.
	MaxVersionChars = 50
	// TimeoutText is the error text of a command killed by its timeout.
	TimeoutText = "Timeout"
	// UnknownVersion is reported when a version probe yields nothing.
	UnknownVersion = "unknown"

	maxCapture = 4096
	waitDelay  = 5 * time.Second
)

// Result is the outcome of one command.
type Result struct {
	Elapsed  time.Duration
	Success  bool
	Err      string
	PeakMB   float64
	TimedOut bool

	Stdout string
	Stderr string
}

// Seconds returns the elapsed wall-clock time in seconds.
func (r Result) Seconds() float64 {
	return r.Elapsed.Seconds()
}

// Executor spawns one shell per call and never retries.
type Executor struct {
	meter  Meter
	logger logrus.FieldLogger
}

// New returns an Executor measuring memory with meter. A nil meter means
// NoopMeter.
func New(meter Meter, logger logrus.FieldLogger) *Executor {
	if meter == nil {
		meter = NoopMeter{}
	}
	if logger == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		logger = l
	}
	return &Executor{meter: meter, logger: logger}
}

// Meter returns the memory meter in use.
func (e *Executor) Meter() Meter {
	return e.meter
}

// Run executes command through sh and blocks until it exits or timeout
// elapses. On timeout the whole process group is killed.
func (e *Executor) Run(command string, timeout time.Duration) Result {
	res, peak, ok := e.meter.Measure(command, timeout)
	if ok {
		res.PeakMB = peak
	}
	entry := e.logger.WithFields(logrus.Fields{
		"command": command,
		"elapsed": res.Elapsed,
		"success": res.Success,
	})
	if res.Success {
		entry.Debug("command finished")
	} else {
		entry.WithField("error", res.Err).Debug("command failed")
	}
	return res
}

// Version runs a version probe and returns the first line of its output,
// or UnknownVersion when the probe is empty, fails to start or times out.
// Output of a probe that exits nonzero still counts.
func (e *Executor) Version(command string, timeout time.Duration) string {
	if strings.TrimSpace(command) == "" {
		return UnknownVersion
	}
	res := runProcess(shellArgv(command), timeout)
	if res.TimedOut {
		return UnknownVersion
	}
	out := strings.TrimSpace(res.Stdout)
	if out == "" {
		out = strings.TrimSpace(res.Stderr)
	}
	if out == "" {
		return UnknownVersion
	}
	if i := strings.IndexByte(out, '\n'); i >= 0 {
		out = strings.TrimSpace(out[:i])
	}
	return truncate(out, MaxVersionChars)
}

func shellArgv(command string) []string {
	return []string{"sh", "-c", command}
}

// runProcess is the single place a child process is started.
func runProcess(argv []string, timeout time.Duration) Result {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	setProcessGroup(cmd)
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &limitedWriter{w: &stdout, limit: maxCapture}
	cmd.Stderr = &limitedWriter{w: &stderr, limit: maxCapture}

	start := time.Now()
	err := cmd.Run()
	res := Result{
		Elapsed: time.Since(start),
		Stdout:  stdout.String(),
		Stderr:  stderr.String(),
	}

	if err != nil && ctx.Err() == context.DeadlineExceeded {
		res.Elapsed = timeout
		res.Err = TimeoutText
		res.TimedOut = true
		return res
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.Err = truncate(res.Stderr, MaxErrorChars)
			if strings.TrimSpace(res.Err) == "" {
				res.Err = fmt.Sprintf("exit status %d", exitErr.ExitCode())
			}
			return res
		}
		res.Elapsed = 0
		res.Err = err.Error()
		return res
	}
	res.Success = true
	return res
}

// truncate keeps the first n characters of s.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// limitedWriter keeps at most limit bytes and discards the rest while
// still reporting full writes to the child.
type limitedWriter struct {
	w         *bytes.Buffer
	limit     int
	written   int
	truncated bool
}

func (lw *limitedWriter) Write(p []byte) (int, error) {
	if lw.written >= lw.limit {
		lw.truncated = true
		return len(p), nil
	}
	keep := p
	if remaining := lw.limit - lw.written; len(keep) > remaining {
		keep = keep[:remaining]
		lw.truncated = true
	}
	n, err := lw.w.Write(keep)
	lw.written += n
	return len(p), err
}
