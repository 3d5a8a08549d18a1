package tools

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Recognised command template placeholders.
const (
	PlaceholderInput        = "input"
	PlaceholderOutput       = "output"
	PlaceholderDecompressed = "decompressed"
	PlaceholderThreads      = "threads"

	// placeholderBinary is only accepted in compare-mode templates and is
	// substituted when the variant descriptor is built.
	placeholderBinary = "binary"
)

var placeholderPattern = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*)\}`)

var knownPlaceholders = map[string]bool{
	PlaceholderInput:        true,
	PlaceholderOutput:       true,
	PlaceholderDecompressed: true,
	PlaceholderThreads:      true,
}

// Params holds the values substituted into a command template.
type Params struct {
	Input        string
	Output       string
	Decompressed string
	Threads      int
}

func (p Params) value(name string) string {
	switch name {
	case PlaceholderInput:
		return shellQuote(p.Input)
	case PlaceholderOutput:
		return shellQuote(p.Output)
	case PlaceholderDecompressed:
		return shellQuote(p.Decompressed)
	case PlaceholderThreads:
		return strconv.Itoa(p.Threads)
	}
	return ""
}

// Placeholders returns the placeholder names used by tmpl, in order of
// first appearance. Shell parameter expansions such as ${HOME} are not
// placeholders.
func Placeholders(tmpl string) []string {
	var names []string
	seen := map[string]bool{}
	for _, loc := range placeholderLocs(tmpl) {
		name := tmpl[loc[2]:loc[3]]
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}

func placeholderLocs(tmpl string) [][]int {
	var locs [][]int
	for _, loc := range placeholderPattern.FindAllStringSubmatchIndex(tmpl, -1) {
		if loc[0] > 0 && tmpl[loc[0]-1] == '$' {
			continue
		}
		locs = append(locs, loc)
	}
	return locs
}

// CheckTemplate rejects templates that reference placeholders outside the
// recognised set.
func CheckTemplate(tmpl string) error {
	for _, name := range Placeholders(tmpl) {
		if !knownPlaceholders[name] {
			return errors.Wrapf(ErrUnknownPlaceholder, "{%s} in %q", name, tmpl)
		}
	}
	return nil
}

// Substitute fills every recognised placeholder in tmpl from p. Paths are
// shell quoted when they need it.
func Substitute(tmpl string, p Params) (string, error) {
	if err := CheckTemplate(tmpl); err != nil {
		return "", err
	}
	return replacePlaceholders(tmpl, p.value), nil
}

func replacePlaceholders(tmpl string, value func(string) string) string {
	var b strings.Builder
	last := 0
	for _, loc := range placeholderLocs(tmpl) {
		b.WriteString(tmpl[last:loc[0]])
		b.WriteString(value(tmpl[loc[2]:loc[3]]))
		last = loc[1]
	}
	b.WriteString(tmpl[last:])
	return b.String()
}

// shellQuote quotes s for sh when it contains characters the shell would
// split or interpret.
func shellQuote(s string) string {
	if s != "" && !strings.ContainsAny(s, " \t\n'\"\\$`&;|<>()*?[]#~") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// firstToken returns the first whitespace separated word of a command.
func firstToken(cmd string) string {
	fields := strings.Fields(cmd)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// replaceFirstToken swaps the leading word of cmd for repl when it equals
// token.
func replaceFirstToken(cmd, token, repl string) string {
	trimmed := strings.TrimLeft(cmd, " \t")
	if !strings.HasPrefix(trimmed, token) {
		return cmd
	}
	rest := trimmed[len(token):]
	if rest != "" && rest[0] != ' ' && rest[0] != '\t' {
		return cmd
	}
	return repl + rest
}
