package executor

import (
	"bufio"
	"bytes"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultTimeBinary is where GNU time usually lives.
const DefaultTimeBinary = "/usr/bin/time"

const peakRSSMarker = "Maximum resident set size"

// Meter runs a command and, when it can, reports the peak resident memory
// of the process tree in megabytes. The bool is false when no figure is
// available.
type Meter interface {
	Name() string
	Measure(command string, timeout time.Duration) (Result, float64, bool)
}

// NoopMeter runs commands without memory accounting.
type NoopMeter struct{}

func (NoopMeter) Name() string { return "none" }

func (NoopMeter) Measure(command string, timeout time.Duration) (Result, float64, bool) {
	return runProcess(shellArgv(command), timeout), 0, false
}

// TimeMeter wraps commands with GNU time -v and reads its report back from
// a scratch file.
type TimeMeter struct {
	Path string
}

func (m TimeMeter) Name() string { return "gnu-time" }

func (m TimeMeter) Measure(command string, timeout time.Duration) (Result, float64, bool) {
	f, err := os.CreateTemp("", "fqbench-time-*.txt")
	if err != nil {
		return runProcess(shellArgv(command), timeout), 0, false
	}
	report := f.Name()
	_ = f.Close()
	defer os.Remove(report)

	argv := append([]string{m.Path, "-v", "-o", report}, shellArgv(command)...)
	res := runProcess(argv, timeout)
	data, err := os.ReadFile(report)
	if err != nil {
		return res, 0, false
	}
	peak, ok := ParsePeakRSS(data)
	return res, peak, ok
}

// SelectMeter returns a TimeMeter when timeBinary is GNU time, NoopMeter
// otherwise. The choice is made once at startup.
func SelectMeter(timeBinary string, logger logrus.FieldLogger) Meter {
	if timeBinary == "" {
		return NoopMeter{}
	}
	if !isExecutable(timeBinary) {
		if logger != nil {
			logger.WithField("path", timeBinary).Info("time binary not found, peak memory disabled")
		}
		return NoopMeter{}
	}
	probe := TimeMeter{Path: timeBinary}
	res, _, ok := probe.Measure("true", 5*time.Second)
	if !res.Success || !ok {
		if logger != nil {
			logger.WithField("path", timeBinary).Info("time binary does not support -v -o, peak memory disabled")
		}
		return NoopMeter{}
	}
	return probe
}

// ParsePeakRSS extracts "Maximum resident set size (kbytes): N" from a GNU
// time -v report and converts it to megabytes.
func ParsePeakRSS(report []byte) (float64, bool) {
	sc := bufio.NewScanner(bytes.NewReader(report))
	for sc.Scan() {
		line := sc.Text()
		if !strings.Contains(line, peakRSSMarker) {
			continue
		}
		i := strings.LastIndexByte(line, ':')
		if i < 0 {
			return 0, false
		}
		kb, err := strconv.ParseFloat(strings.TrimSpace(line[i+1:]), 64)
		if err != nil {
			return 0, false
		}
		return kb / 1024, true
	}
	return 0, false
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular() && info.Mode().Perm()&0o111 != 0
}
