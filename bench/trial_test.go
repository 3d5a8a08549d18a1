package bench

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fqcompressor/fqbench/executor"
	"github.com/fqcompressor/fqbench/tools"
)

const shellConfig = `
settings:
  timeout: 10s
tools:
  copy:
    compress: cp {input} {output}
    decompress: cp {output} {decompressed}
    extension: .cp
  broken-restore:
    compress: cp {input} {output}
    decompress: false {output} {decompressed}
  truncating:
    compress: cp {input} {output}
    decompress: head -c 10 {output} > {decompressed}
  noisy:
    compress: cat {input} > /dev/null; echo refused >&2; exit 3
    decompress: cp {output} {decompressed}
  silent:
    compress: true {input} {output}
    decompress: cp {output} {decompressed}
  empty:
    compress: touch {output}
    decompress: cp {output} {decompressed}
  missing:
    compress: fqbench-no-such-binary {input} {output}
    decompress: fqbench-no-such-binary -d {output} {decompressed}
`

func shellTrial(t *testing.T) (*tools.Registry, *TrialRunner) {
	reg, err := tools.Parse([]byte(shellConfig))
	require.NoError(t, err)
	return reg, NewTrialRunner(executor.New(nil, nil), reg.Settings, nil)
}

func lookup(t *testing.T, reg *tools.Registry, id string) *tools.Descriptor {
	d, ok := reg.Lookup(id)
	require.True(t, ok, id)
	return d
}

func TestRunTrialRoundTrip(t *testing.T) {
	reg, runner := shellTrial(t)
	input := inputFile(t, 2048)

	results, err := runner.RunTrial(lookup(t, reg, "copy"), input, 1, "")
	require.NoError(t, err)
	require.Len(t, results, 2)

	c, d := results[0], results[1]
	assert.Equal(t, Compress, c.Operation)
	assert.True(t, c.Success)
	assert.Equal(t, int64(2048), c.InputSize)
	assert.Equal(t, int64(2048), c.OutputSize)
	assert.Equal(t, 1.0, c.Ratio())

	assert.Equal(t, Decompress, d.Operation)
	assert.True(t, d.Success)
	assert.Equal(t, int64(2048), d.InputSize)
	assert.Equal(t, int64(2048), d.OutputSize)
	assert.Empty(t, d.Error)
}

func TestRunTrialInputPathWithSpaces(t *testing.T) {
	reg, runner := shellTrial(t)
	dir := filepath.Join(t.TempDir(), "my reads")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	input := filepath.Join(dir, "reads.fastq")
	writeBytes(t, input, 700)

	results, err := runner.RunTrial(lookup(t, reg, "copy"), input, 1, "")
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.True(t, r.Success, r.Error)
		assert.Empty(t, r.Error)
		assert.Equal(t, int64(700), r.OutputSize)
	}

	results, err = runner.RunTrial(lookup(t, reg, "copy"), input, 1, filepath.Join(dir, "work $dir"))
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.True(t, results[1].Success, results[1].Error)
}

func TestRunTrialEmptyCompressOutput(t *testing.T) {
	reg, runner := shellTrial(t)
	for _, id := range []string{"silent", "empty"} {
		results, err := runner.RunTrial(lookup(t, reg, id), inputFile(t, 256), 1, "")
		require.NoError(t, err, id)
		require.Len(t, results, 1, id)
		c := results[0]
		assert.True(t, c.Success, id)
		assert.Zero(t, c.OutputSize, id)
		assert.Equal(t, EmptyOutputText, c.Error, id)
		assert.True(t, c.IntegrityWarning(), id)
	}
}

func TestRunTrialDecompressFailure(t *testing.T) {
	reg, runner := shellTrial(t)
	results, err := runner.RunTrial(lookup(t, reg, "broken-restore"), inputFile(t, 512), 2, "")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.True(t, results[0].Success)
	assert.False(t, results[1].Success)
	assert.Zero(t, results[1].OutputSize)
	assert.Equal(t, "exit status 1", results[1].Error)
	assert.Equal(t, 2, results[1].Threads)
}

func TestRunTrialSizeMismatch(t *testing.T) {
	reg, runner := shellTrial(t)
	results, err := runner.RunTrial(lookup(t, reg, "truncating"), inputFile(t, 100), 1, "")
	require.NoError(t, err)
	require.Len(t, results, 2)

	d := results[1]
	assert.True(t, d.Success)
	assert.Equal(t, int64(10), d.OutputSize)
	assert.Equal(t, "Size mismatch: 10 vs 100", d.Error)
	assert.True(t, d.IntegrityWarning())
}

func TestRunTrialSizeMismatchIgnoredWithoutVerify(t *testing.T) {
	reg, _ := shellTrial(t)
	settings := reg.Settings
	settings.Verify = false
	runner := NewTrialRunner(executor.New(nil, nil), settings, nil)

	results, err := runner.RunTrial(lookup(t, reg, "truncating"), inputFile(t, 100), 1, "")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Empty(t, results[1].Error)
}

func TestRunTrialCompressFailure(t *testing.T) {
	reg, runner := shellTrial(t)
	results, err := runner.RunTrial(lookup(t, reg, "noisy"), inputFile(t, 64), 1, "")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.False(t, results[0].Success)
	assert.Equal(t, "refused\n", results[0].Error)
	assert.Zero(t, results[0].OutputSize)
}

func TestRunTrialUnavailableTool(t *testing.T) {
	reg, runner := shellTrial(t)
	d := lookup(t, reg, "missing")
	assert.False(t, d.Available())

	results, err := runner.RunTrial(d, inputFile(t, 64), 1, "")
	require.NoError(t, err)
	assert.Nil(t, results)

	results, err = runner.RunTrial(nil, inputFile(t, 64), 1, "")
	require.NoError(t, err)
	assert.Nil(t, results)
}

func TestRunTrialMissingInput(t *testing.T) {
	reg, runner := shellTrial(t)
	_, err := runner.RunTrial(lookup(t, reg, "copy"), filepath.Join(t.TempDir(), "absent.fastq"), 1, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInput)
}

func TestRunTrialKeepOutputs(t *testing.T) {
	reg, runner := shellTrial(t)
	runner.KeepOutputs = true
	work := t.TempDir()
	input := inputFile(t, 300)
	tool := lookup(t, reg, "copy")

	_, err := runner.RunTrial(tool, input, 1, work)
	require.NoError(t, err)

	compressed, decompressed := OutputPaths(input, tool, work, reg.Settings.DecompressedSuffix)
	assert.FileExists(t, compressed)
	assert.FileExists(t, decompressed)
	assert.Equal(t, "reads_copy.cp", filepath.Base(compressed))
}

func TestRunTrialTimeout(t *testing.T) {
	reg, _ := shellTrial(t)
	settings := reg.Settings
	settings.Timeout = 200 * time.Millisecond
	runner := NewTrialRunner(executor.New(nil, nil), settings, nil)

	slow, err := reg.Variant("slow", "sleep")
	require.NoError(t, err)
	slow.Compress = "sleep 5; cp {input} {output}"

	results, err := runner.RunTrial(slow, inputFile(t, 64), 1, "")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.False(t, results[0].Success)
	assert.Equal(t, executor.TimeoutText, results[0].Error)
	assert.InDelta(t, 0.2, results[0].ElapsedSeconds, 1e-9)
}

func TestPrepareInputExpandsGzipOnce(t *testing.T) {
	dir := t.TempDir()
	payload := bytes.Repeat([]byte("@r1\nACGT\n+\nIIII\n"), 64)

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write(payload)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	gz := filepath.Join(dir, "sample.fastq.gz")
	require.NoError(t, os.WriteFile(gz, buf.Bytes(), 0o644))

	work := filepath.Join(dir, "work")
	got, err := PrepareInput(gz, work)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(work, "sample.fastq"), got)
	data, err := os.ReadFile(got)
	require.NoError(t, err)
	assert.Equal(t, payload, data)

	// A second call reuses the expanded file.
	require.NoError(t, os.WriteFile(got, []byte("cached"), 0o644))
	again, err := PrepareInput(gz, work)
	require.NoError(t, err)
	assert.Equal(t, got, again)
	data, err = os.ReadFile(again)
	require.NoError(t, err)
	assert.Equal(t, "cached", string(data))
}

func TestPrepareInputPassesPlainFiles(t *testing.T) {
	got, err := PrepareInput("/data/reads.fastq", "")
	require.NoError(t, err)
	assert.Equal(t, "/data/reads.fastq", got)

	_, err = PrepareInput("/data/reads.fastq.gz", "")
	assert.ErrorIs(t, err, ErrWorkDir)

	bad := filepath.Join(t.TempDir(), "bad.fastq.gz")
	require.NoError(t, os.WriteFile(bad, []byte("not gzip"), 0o644))
	_, err = PrepareInput(bad, t.TempDir())
	assert.ErrorIs(t, err, ErrInput)
}
