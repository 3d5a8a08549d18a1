package bench

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
)

// PrepareInput returns the file the sweep should benchmark. A gzip input
// is expanded once into workDir and reused by later calls; anything else is
// returned unchanged.
func PrepareInput(input, workDir string) (string, error) {
	if !strings.HasSuffix(input, ".gz") {
		return input, nil
	}
	if workDir == "" {
		return "", errors.Wrap(ErrWorkDir, "a work directory is required for gzip inputs")
	}
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return "", errors.Wrapf(ErrWorkDir, "%s: %v", workDir, err)
	}
	target := filepath.Join(workDir, strings.TrimSuffix(filepath.Base(input), ".gz"))
	if size, ok := fileSize(target); ok && size > 0 {
		return target, nil
	}

	src, err := os.Open(input)
	if err != nil {
		return "", errors.Wrap(ErrInput, err.Error())
	}
	defer src.Close()
	zr, err := gzip.NewReader(src)
	if err != nil {
		return "", errors.Wrapf(ErrInput, "%s: %v", input, err)
	}
	defer zr.Close()

	tmp, err := os.CreateTemp(workDir, ".expand-*")
	if err != nil {
		return "", errors.Wrap(ErrWorkDir, err.Error())
	}
	defer os.Remove(tmp.Name())
	if _, err := io.Copy(tmp, zr); err != nil {
		tmp.Close()
		return "", errors.Wrapf(ErrInput, "expanding %s: %v", input, err)
	}
	if err := tmp.Close(); err != nil {
		return "", errors.Wrap(ErrWorkDir, err.Error())
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return "", errors.Wrap(ErrWorkDir, err.Error())
	}
	return target, nil
}
