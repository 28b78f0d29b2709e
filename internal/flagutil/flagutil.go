// Package flagutil matches resource flags against patterns.
//
// A flag matches a pattern only when the whole flag matches, so patterns
// are compiled with implicit anchors by [Pattern].
package flagutil

import (
	"iter"
	"log/slog"
	"regexp"
	"strconv"
)

// Pattern compiles expr anchored at both ends. It panics on a bad
// expression, like regexp.MustCompile.
func Pattern(expr string) *regexp.Regexp {
	return regexp.MustCompile(`^(?:` + expr + `)$`)
}

// Match holds the submatches of one flag. Match[0] is the whole flag.
type Match []string

// Group returns submatch i, or "" when it does not exist.
func (m Match) Group(i int) string {
	if i < 0 || i >= len(m) {
		return ""
	}
	return m[i]
}

// Int parses submatch i as a decimal integer, returning def on failure.
func (m Match) Int(i, def int) int {
	v, err := strconv.Atoi(m.Group(i))
	if err != nil {
		return def
	}
	return v
}

// MatchFirst returns the first flag matching re. Further matches are
// ignored with a warning on log, which may be nil.
func MatchFirst(log *slog.Logger, flags []string, re *regexp.Regexp) (Match, bool) {
	var first Match
	for _, f := range flags {
		m := re.FindStringSubmatch(f)
		if m == nil {
			continue
		}
		if first != nil {
			if log != nil {
				log.Warn("multiple flags match pattern, using the first", "pattern", re.String(), "flag", f)
			}
			continue
		}
		first = m
	}
	return first, first != nil
}

// MatchAll yields every flag matching re, in order.
func MatchAll(flags []string, re *regexp.Regexp) iter.Seq[Match] {
	return func(yield func(Match) bool) {
		for _, f := range flags {
			if m := re.FindStringSubmatch(f); m != nil {
				if !yield(m) {
					return
				}
			}
		}
	}
}

// Matches reports whether any flag matches re.
func Matches(flags []string, re *regexp.Regexp) bool {
	for range MatchAll(flags, re) {
		return true
	}
	return false
}
