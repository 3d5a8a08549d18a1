package bench

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/fqcompressor/fqbench/executor"
	"github.com/fqcompressor/fqbench/tools"
)

var (
	// ErrInput is returned when the benchmark input cannot be read.
	ErrInput = errors.New("benchmark input unavailable")
	// ErrWorkDir is returned when a working directory cannot be set up.
	ErrWorkDir = errors.New("work directory unavailable")
)

// Executor runs shell commands. *executor.Executor implements it.
type Executor interface {
	Run(command string, timeout time.Duration) executor.Result
	Version(command string, timeout time.Duration) string
}

// TrialRunner performs one compress and, when that worked, one decompress
// of an input with a single tool.
type TrialRunner struct {
	exec     Executor
	settings tools.Settings
	logger   logrus.FieldLogger

	// KeepOutputs leaves compressed and decompressed files in a
	// caller-owned work directory after the trial.
	KeepOutputs bool
}

// NewTrialRunner returns a TrialRunner using the timeout, verification and
// naming settings given.
func NewTrialRunner(exec Executor, settings tools.Settings, logger logrus.FieldLogger) *TrialRunner {
	if logger == nil {
		logger = discardLogger()
	}
	return &TrialRunner{exec: exec, settings: settings, logger: logger}
}

// OutputPaths names a tool's compressed and decompressed files inside
// workDir. Names carry the tool id so one directory can serve every tool.
func OutputPaths(input string, tool *tools.Descriptor, workDir, decompressedSuffix string) (compressed, decompressed string) {
	base := filepath.Base(input)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	compressed = filepath.Join(workDir, stem+"_"+tool.ID+tool.Extension)
	decompressed = filepath.Join(workDir, stem+"_"+tool.ID+decompressedSuffix+ext)
	return compressed, decompressed
}

// RunTrial returns the compress result followed, when compression produced
// an artifact, by the decompress result. A nil or unavailable tool yields no
// results. Command failures are recorded in the results; only input and
// work directory problems are returned as errors.
//
// When workDir is empty a temporary directory is created and removed
// before returning.
func (t *TrialRunner) RunTrial(tool *tools.Descriptor, input string, threads int, workDir string) ([]RunResult, error) {
	if tool == nil || !tool.Available() {
		return nil, nil
	}
	inputSize, ok := fileSize(input)
	if !ok {
		return nil, errors.Wrap(ErrInput, input)
	}

	dir, owned, err := acquireWorkDir(workDir)
	if err != nil {
		return nil, err
	}
	if owned {
		defer os.RemoveAll(dir)
	}

	compressed, decompressed := OutputPaths(input, tool, dir, t.settings.DecompressedSuffix)
	removeFiles(compressed, decompressed)
	if !owned && !t.KeepOutputs {
		defer removeFiles(compressed, decompressed)
	}

	params := tools.Params{
		Input:        input,
		Output:       compressed,
		Decompressed: decompressed,
		Threads:      threads,
	}
	log := t.logger.WithFields(logrus.Fields{"tool": tool.ID, "threads": threads})

	c := RunResult{Tool: tool.ID, Operation: Compress, InputSize: inputSize, Threads: threads}
	cmd, err := tool.CompressCommand(params)
	if err != nil {
		c.Error = err.Error()
		return []RunResult{c}, nil
	}
	c.record(t.exec.Run(cmd, t.settings.Timeout))
	compressedSize, produced := fileSize(compressed)
	if c.Success {
		c.OutputSize = compressedSize
		if !produced || compressedSize == 0 {
			c.Error = EmptyOutputText
			log.Warn("compression reported success but produced no output")
			return []RunResult{c}, nil
		}
	}
	results := []RunResult{c}
	if !c.Success {
		return results, nil
	}

	d := RunResult{Tool: tool.ID, Operation: Decompress, InputSize: compressedSize, Threads: threads}
	cmd, err = tool.DecompressCommand(params)
	if err != nil {
		d.Error = err.Error()
		return append(results, d), nil
	}
	d.record(t.exec.Run(cmd, t.settings.Timeout))
	if d.Success {
		d.OutputSize, _ = fileSize(decompressed)
		if t.settings.Verify && d.OutputSize != inputSize {
			// The run keeps its success flag and timing.
			d.Error = fmt.Sprintf("Size mismatch: %d vs %d", d.OutputSize, inputSize)
			log.WithField("error", d.Error).Warn("decompressed output differs from input")
		}
	}
	return append(results, d), nil
}

func acquireWorkDir(workDir string) (dir string, owned bool, err error) {
	if workDir == "" {
		dir, err = os.MkdirTemp("", "fqbench-")
		if err != nil {
			return "", false, errors.Wrap(ErrWorkDir, err.Error())
		}
		return dir, true, nil
	}
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return "", false, errors.Wrapf(ErrWorkDir, "%s: %v", workDir, err)
	}
	return workDir, false, nil
}

func fileSize(path string) (int64, bool) {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return 0, false
	}
	return info.Size(), true
}

func removeFiles(paths ...string) {
	for _, p := range paths {
		_ = os.Remove(p)
	}
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}
