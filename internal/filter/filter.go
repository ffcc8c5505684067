// Package filter excludes resolved module names using gitignore-style
// patterns.
package filter

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
)

// DefaultFile is the pattern file looked up when none is named.
const DefaultFile = ".unbrowserifyignore"

// Filter matches module names against a compiled pattern set.
type Filter struct {
	gi       *ignore.GitIgnore
	patterns int
}

// New compiles inline patterns.
func New(lines ...string) *Filter {
	return &Filter{gi: ignore.CompileIgnoreLines(lines...), patterns: countPatterns(lines)}
}

// Load compiles the patterns in path followed by extra. A missing file is
// not an error.
func Load(path string, extra ...string) (*Filter, error) {
	if path == "" {
		return New(extra...), nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return New(extra...), nil
	}
	if err != nil {
		return nil, err
	}
	lines := strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")
	return New(append(lines, extra...)...), nil
}

// Match reports whether the module with the given name is excluded. A name
// matches in its bare form or its file form, so both "lib/util" and
// "lib/*.js" exclude the module lib/util.
func (f *Filter) Match(name string) bool {
	if f == nil || f.patterns == 0 {
		return false
	}
	return f.gi.MatchesPath(name) || f.gi.MatchesPath(name+".js")
}

// Len returns the number of patterns, ignoring blanks and comments.
func (f *Filter) Len() int {
	if f == nil {
		return 0
	}
	return f.patterns
}

func countPatterns(lines []string) int {
	n := 0
	for _, l := range lines {
		l = strings.TrimSpace(l)
		if l != "" && !strings.HasPrefix(l, "#") {
			n++
		}
	}
	return n
}
