package tools

import (
	"os"
	"os/exec"
)

// LookPathFunc searches for an executable the way exec.LookPath does.
type LookPathFunc func(file string) (string, error)

// Resolve returns the first candidate path that is an executable regular
// file. When none is, it falls back to looking name up on PATH. The second
// result reports whether anything was found; fromCandidate reports whether
// the path came from the candidate list.
func Resolve(name string, candidates []string, lookPath LookPathFunc) (path string, fromCandidate bool, found bool) {
	for _, c := range candidates {
		if c == "" {
			continue
		}
		if isExecutable(c) {
			return c, true, true
		}
	}
	if name == "" {
		return "", false, false
	}
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	p, err := lookPath(name)
	if err != nil {
		return "", false, false
	}
	return p, false, true
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular() && info.Mode().Perm()&0o111 != 0
}
