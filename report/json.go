package report

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/fqcompressor/fqbench/bench"
)

// WriteJSON exports the suite as indented JSON.
func WriteJSON(w io.Writer, suite *bench.SuiteResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(suite), "encoding suite")
}

// ReadJSON loads a suite previously written by WriteJSON.
func ReadJSON(r io.Reader) (*bench.SuiteResult, error) {
	var suite bench.SuiteResult
	if err := json.NewDecoder(r).Decode(&suite); err != nil {
		return nil, errors.Wrap(err, "decoding suite")
	}
	if suite.Tools == nil {
		suite.Tools = map[string]bench.ToolInfo{}
	}
	if suite.SystemInfo == nil {
		suite.SystemInfo = map[string]string{}
	}
	return &suite, nil
}

// SaveJSON writes the suite to path, creating parent directories.
func SaveJSON(path string, suite *bench.SuiteResult) error {
	return writeFile(path, func(w io.Writer) error { return WriteJSON(w, suite) })
}

// LoadJSON reads a suite from path.
func LoadJSON(path string) (*bench.SuiteResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening suite")
	}
	defer f.Close()
	suite, err := ReadJSON(f)
	return suite, errors.WithMessage(err, path)
}

// writeFile creates path and its parent directories and hands the file to
// render.
func writeFile(path string, render func(io.Writer) error) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "creating %s", dir)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating %s", path)
	}
	if err := render(f); err != nil {
		f.Close()
		return errors.WithMessage(err, path)
	}
	return errors.Wrapf(f.Close(), "closing %s", path)
}
