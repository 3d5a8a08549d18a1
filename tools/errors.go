package tools

import "github.com/pkg/errors"

var (
	// ErrConfiguration marks a malformed tool definition file. It aborts a
	// run before any trial starts.
	ErrConfiguration = errors.New("invalid tool configuration")

	// ErrUnknownPlaceholder is returned for templates referencing a
	// placeholder outside the recognised set.
	ErrUnknownPlaceholder = errors.New("unknown placeholder")

	// ErrUnknownTool is returned when a requested tool id is not configured.
	ErrUnknownTool = errors.New("unknown tool")
)

func configErrorf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrConfiguration, format, args...)
}
