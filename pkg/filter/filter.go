// Package filter narrows the set of signal paths shown to the user: ignore
// patterns drop paths at scan time, search narrows what the panel lists.
package filter

import (
	"strings"

	"github.com/moby/patternmatcher"
	"github.com/sahilm/fuzzy"

	"github.com/grovetools/sigscope/pkg/signal"
)

// Ignore matches signal paths against gitignore-style patterns written with
// either dots or slashes ("user.*.token", "_internal/**"). Matching a path
// also excludes everything below it.
type Ignore struct {
	pm *patternmatcher.PatternMatcher
}

// NewIgnore compiles patterns. An empty list yields a matcher that ignores
// nothing.
func NewIgnore(patterns []string) (*Ignore, error) {
	if len(patterns) == 0 {
		return &Ignore{}, nil
	}
	converted := make([]string, 0, len(patterns))
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		converted = append(converted, toSlash(p))
	}
	pm, err := patternmatcher.New(converted)
	if err != nil {
		return nil, err
	}
	return &Ignore{pm: pm}, nil
}

// Match reports whether path is ignored.
func (i *Ignore) Match(path string) bool {
	if i == nil || i.pm == nil {
		return false
	}
	ok, err := i.pm.MatchesOrParentMatches(toSlash(path))
	return err == nil && ok
}

// Empty reports whether the matcher ignores nothing.
func (i *Ignore) Empty() bool {
	return i == nil || i.pm == nil
}

func toSlash(path string) string {
	return strings.ReplaceAll(path, signal.Separator, "/")
}

// Search returns the paths matching query, preserving input order. Plain
// search is a case-insensitive substring match; fuzzy search matches the
// query characters in order.
func Search(paths []string, query string, useFuzzy bool) []string {
	query = strings.TrimSpace(query)
	if query == "" {
		return paths
	}

	if useFuzzy {
		matches := fuzzy.Find(query, paths)
		keep := make([]bool, len(paths))
		for _, m := range matches {
			keep[m.Index] = true
		}
		out := make([]string, 0, len(matches))
		for i, p := range paths {
			if keep[i] {
				out = append(out, p)
			}
		}
		return out
	}

	q := strings.ToLower(query)
	var out []string
	for _, p := range paths {
		if strings.Contains(strings.ToLower(p), q) {
			out = append(out, p)
		}
	}
	return out
}
