package bench

import (
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fqcompressor/fqbench/executor"
	"github.com/fqcompressor/fqbench/tools"
)

// fakeExec understands the commands of fakeConfig: "fake c SRC DST" writes a
// quarter-size DST, "fake d SRC DST ORIG" writes DST with ORIG's size.
// Results are taken from the queues in order; an empty queue means a 1s
// success.
type fakeExec struct {
	t          *testing.T
	compress   []executor.Result
	decompress []executor.Result
	commands   []string
	versions   []string
}

func secs(s float64) time.Duration {
	return time.Duration(math.Round(s * float64(time.Second)))
}

func ok(seconds float64) executor.Result {
	return executor.Result{Success: true, Elapsed: secs(seconds)}
}

func failed(seconds float64, msg string) executor.Result {
	return executor.Result{Elapsed: secs(seconds), Err: msg}
}

func (f *fakeExec) pop(q *[]executor.Result) executor.Result {
	if len(*q) == 0 {
		return ok(1)
	}
	r := (*q)[0]
	*q = (*q)[1:]
	return r
}

func (f *fakeExec) size(path string) int64 {
	info, err := os.Stat(path)
	require.NoError(f.t, err)
	return info.Size()
}

func (f *fakeExec) Run(command string, _ time.Duration) executor.Result {
	f.commands = append(f.commands, command)
	fields := strings.Fields(command)
	require.GreaterOrEqual(f.t, len(fields), 4, command)
	var res executor.Result
	switch fields[1] {
	case "c":
		res = f.pop(&f.compress)
		if res.Success {
			writeBytes(f.t, fields[3], f.size(fields[2])/4)
		}
	case "d":
		res = f.pop(&f.decompress)
		if res.Success {
			writeBytes(f.t, fields[3], f.size(fields[4]))
		}
	}
	return res
}

func (f *fakeExec) Version(command string, _ time.Duration) string {
	f.versions = append(f.versions, command)
	if command == "" {
		return executor.UnknownVersion
	}
	return "1.0"
}

func writeBytes(t *testing.T, path string, n int64) {
	require.NoError(t, os.WriteFile(path, make([]byte, n), 0o644))
}

const fakeConfig = `
settings:
  default_threads: [1, 4]
  runs: 3
tools:
  alpha:
    name: Alpha
    compress: fake c {input} {output}
    decompress: fake d {output} {decompressed} {input}
    version_cmd: fake --version
  beta:
    compress: fake c {input} {output}
    decompress: fake d {output} {decompressed} {input}
  ghost:
    compress: ghost-binary {input} {output}
    decompress: ghost-binary -d {output} {decompressed}
`

func fakeRegistry(t *testing.T) *tools.Registry {
	r, err := tools.Parse([]byte(fakeConfig), tools.WithLookPath(func(name string) (string, error) {
		if name == "fake" {
			return "/opt/fake", nil
		}
		return "", errors.New("not found")
	}))
	require.NoError(t, err)
	return r
}

func inputFile(t *testing.T, size int64) string {
	path := filepath.Join(t.TempDir(), "reads.fastq")
	writeBytes(t, path, size)
	return path
}

func TestMetricDefinitions(t *testing.T) {
	r := RunResult{Success: true, InputSize: 1000000, OutputSize: 250000, ElapsedSeconds: 2.0}
	assert.Equal(t, 0.25, r.Ratio())
	assert.InDelta(t, 0.4768, r.ThroughputMBps(), 0.0001)
	assert.Equal(t, 4.0, r.BitsPerUnit(0.5))

	assert.Zero(t, Ratio(0, 10))
	assert.Zero(t, ThroughputMBps(10, 0))
	assert.Zero(t, BitsPerUnit(0, 10, 0.5))
	assert.Zero(t, BitsPerUnit(10, 10, 0))

	bad := RunResult{Success: false, InputSize: 1000, OutputSize: 500, ElapsedSeconds: 1}
	assert.Zero(t, bad.Ratio())
	assert.Zero(t, bad.ThroughputMBps())
	assert.Zero(t, bad.BitsPerUnit(0.5))
}

func TestOutputPathsAreDistinctPerTool(t *testing.T) {
	reg := fakeRegistry(t)
	a, _ := reg.Lookup("alpha")
	b, _ := reg.Lookup("beta")

	ac, ad := OutputPaths("/data/reads.fastq", a, "/w", "_decompressed")
	bc, bd := OutputPaths("/data/reads.fastq", b, "/w", "_decompressed")
	assert.Equal(t, "/w/reads_alpha.alpha", ac)
	assert.Equal(t, "/w/reads_alpha_decompressed.fastq", ad)
	assert.NotEqual(t, ac, bc)
	assert.NotEqual(t, ad, bd)
}

func TestBestOfSet(t *testing.T) {
	var set bestOfSet
	for i, e := range []float64{1.5, 1.2, 1.8, 1.2} {
		set.offer(RunResult{Tool: "a", Operation: Compress, Success: true, ElapsedSeconds: e, OutputSize: int64(i)})
	}
	set.offer(RunResult{Tool: "a", Operation: Compress, Success: false, ElapsedSeconds: 0.1})
	set.offer(RunResult{Tool: "a", Operation: Decompress, Success: false, ElapsedSeconds: 0.5, Error: "first"})
	set.offer(RunResult{Tool: "a", Operation: Decompress, Success: false, ElapsedSeconds: 0.2, Error: "second"})

	best := set.best()
	require.Len(t, best, 1)
	assert.Equal(t, 1.2, best[0].ElapsedSeconds)
	assert.Equal(t, int64(1), best[0].OutputSize, "ties keep the first run")

	failures := set.failures()
	require.Len(t, failures, 1)
	assert.Equal(t, Decompress, failures[0].Operation)
	assert.Equal(t, "first", failures[0].Error)
}

func TestSweepKeepsFastestRun(t *testing.T) {
	reg := fakeRegistry(t)
	exec := &fakeExec{t: t, compress: []executor.Result{ok(1.5), ok(1.2), ok(1.8)}}
	input := inputFile(t, 4096)

	suite, err := NewSweep(reg, exec).Run([]string{"alpha"}, input, []int{4}, 3)
	require.NoError(t, err)

	require.Len(t, suite.Results, 2)
	c, found := suite.Find("alpha", 4, Compress)
	require.True(t, found)
	assert.InDelta(t, 1.2, c.ElapsedSeconds, 1e-9)
	assert.Equal(t, int64(1024), c.OutputSize)
	assert.Equal(t, 0.25, c.Ratio())

	d, found := suite.Find("alpha", 4, Decompress)
	require.True(t, found)
	assert.Equal(t, int64(1024), d.InputSize)
	assert.Equal(t, int64(4096), d.OutputSize)
	assert.Empty(t, d.Error)
	assert.Empty(t, suite.Failures)
}

func TestSweepOrderSkipsAndMetadata(t *testing.T) {
	reg := fakeRegistry(t)
	exec := &fakeExec{t: t}
	input := inputFile(t, 400)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rec := &recordingObserver{}

	suite, err := NewSweep(reg, exec,
		WithClock(func() time.Time { return now }),
		WithSystemInfo(map[string]string{"kernel": "6.1"}),
		WithObserver(rec),
	).Run([]string{"beta", "ghost", "nope", "alpha"}, input, nil, 2)
	require.NoError(t, err)

	assert.Equal(t, []string{"beta", "alpha"}, suite.ToolsTested)
	assert.Equal(t, []SkippedTool{
		{ID: "ghost", Reason: `binary "ghost-binary" not found`},
		{ID: "nope", Reason: "not configured"},
	}, suite.Skipped)
	assert.Equal(t, now, suite.Timestamp)
	assert.Equal(t, int64(400), suite.InputSize)
	assert.Equal(t, []int{1, 4}, suite.Threads)
	assert.Equal(t, 2, suite.Runs)
	assert.Equal(t, "6.1", suite.SystemInfo["kernel"])
	assert.NotEmpty(t, suite.RunID)

	assert.Equal(t, ToolInfo{Name: "Alpha", Version: "1.0", Category: "unknown"}, suite.Tools["alpha"])
	assert.Equal(t, executor.UnknownVersion, suite.Tools["beta"].Version)

	var order []string
	for _, r := range suite.Results {
		order = append(order, r.Tool+"/"+string(r.Operation)+"/"+strconv.Itoa(r.Threads))
	}
	assert.Equal(t, []string{
		"beta/compress/1", "beta/decompress/1",
		"beta/compress/4", "beta/decompress/4",
		"alpha/compress/1", "alpha/decompress/1",
		"alpha/compress/4", "alpha/decompress/4",
	}, order)

	assert.Equal(t, 8, rec.trials)
	assert.Equal(t, 8, rec.expected)
	assert.Equal(t, 4, rec.slots)
	assert.Len(t, rec.skipped, 2)
}

func TestSweepAllTrialsFail(t *testing.T) {
	reg := fakeRegistry(t)
	exec := &fakeExec{t: t, compress: []executor.Result{
		failed(0.3, "bad magic"), failed(0.1, "bad magic again"),
	}}
	input := inputFile(t, 100)

	suite, err := NewSweep(reg, exec).Run([]string{"alpha"}, input, []int{2}, 2)
	require.NoError(t, err)

	assert.Empty(t, suite.Results)
	require.Len(t, suite.Failures, 1)
	assert.Equal(t, Compress, suite.Failures[0].Operation)
	assert.Equal(t, "bad magic", suite.Failures[0].Error)
	assert.Zero(t, suite.Failures[0].OutputSize)
	for _, c := range exec.commands {
		assert.NotContains(t, c, "fake d", "no decompression after failed compression")
	}
}

func TestSweepFailedDecompressIsNotSelected(t *testing.T) {
	reg := fakeRegistry(t)
	exec := &fakeExec{t: t, decompress: []executor.Result{failed(0.2, "crc"), ok(3)}}
	input := inputFile(t, 100)

	suite, err := NewSweep(reg, exec).Run([]string{"alpha"}, input, []int{1}, 2)
	require.NoError(t, err)

	d, found := suite.Find("alpha", 1, Decompress)
	require.True(t, found)
	assert.True(t, d.Success)
	assert.InDelta(t, 3.0, d.ElapsedSeconds, 1e-9)
	assert.Empty(t, suite.Failures)
}

func TestSweepRejectsBadInput(t *testing.T) {
	reg := fakeRegistry(t)
	_, err := NewSweep(reg, &fakeExec{t: t}).Run(nil, filepath.Join(t.TempDir(), "missing.fastq"), nil, 1)
	assert.True(t, errors.Is(err, ErrInput))

	_, err = NewSweep(reg, &fakeExec{t: t}).Run(nil, inputFile(t, 1), []int{0}, 1)
	assert.Error(t, err)
}

func TestSweepSharedWorkDirCleansOutputs(t *testing.T) {
	reg := fakeRegistry(t)
	work := t.TempDir()
	input := inputFile(t, 100)

	_, err := NewSweep(reg, &fakeExec{t: t}, WithWorkDir(work)).Run([]string{"alpha", "beta"}, input, []int{1}, 1)
	require.NoError(t, err)
	entries, err := os.ReadDir(work)
	require.NoError(t, err)
	assert.Empty(t, entries)

	_, err = NewSweep(reg, &fakeExec{t: t}, WithWorkDir(work), WithKeepOutputs(true)).Run([]string{"alpha", "beta"}, input, []int{1}, 1)
	require.NoError(t, err)
	entries, err = os.ReadDir(work)
	require.NoError(t, err)
	assert.Len(t, entries, 4)
}

type recordingObserver struct {
	NopObserver
	expected int
	trials   int
	slots    int
	skipped  []SkippedTool
}

func (r *recordingObserver) SweepStarted(_ []string, trials int) { r.expected = trials }
func (r *recordingObserver) ToolSkipped(s SkippedTool)          { r.skipped = append(r.skipped, s) }
func (r *recordingObserver) TrialFinished(string, int, int, int, []RunResult) {
	r.trials++
}
func (r *recordingObserver) SlotFinished(string, int, []RunResult, []RunResult) {
	r.slots++
}
