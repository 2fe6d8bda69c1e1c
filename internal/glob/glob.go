// Package glob provides case-insensitive wildcard matching for filenames.
//
// Patterns support '*' (any run of zero or more characters) and '?'
// (exactly one character); every other character matches itself. Matching
// is anchored at both ends: the whole filename must satisfy the pattern.
package glob

import (
	"strings"
	"unicode"
)

// Matcher is a compiled pattern ready for repeated filename tests.
// A Matcher is immutable and safe for concurrent use.
type Matcher struct {
	pattern   string
	runes     []rune
	substring bool
	// lowered pattern used only in substring mode
	lowered string
}

// Options configure pattern compilation.
type Options struct {
	// Substring switches wildcard-free patterns to a case-insensitive
	// substring test instead of an exact anchored match. Patterns that
	// contain '*' or '?' are unaffected.
	Substring bool
}

// New compiles a pattern with default options (exact anchored matching).
func New(pattern string) *Matcher {
	return NewWithOptions(pattern, Options{})
}

// NewWithOptions compiles a pattern with the given options.
func NewWithOptions(pattern string, opts Options) *Matcher {
	m := &Matcher{
		pattern: pattern,
		runes:   []rune(pattern),
	}
	if opts.Substring && !HasWildcard(pattern) {
		m.substring = true
		m.lowered = strings.ToLower(pattern)
	}
	return m
}

// Pattern returns the original pattern string.
func (m *Matcher) Pattern() string {
	return m.pattern
}

// Substring reports whether the matcher operates in substring mode.
func (m *Matcher) Substring() bool {
	return m.substring
}

// Match reports whether name satisfies the compiled pattern.
func (m *Matcher) Match(name string) bool {
	if m.substring {
		return strings.Contains(strings.ToLower(name), m.lowered)
	}
	return matchRunes([]rune(name), m.runes)
}

// Match is a convenience wrapper compiling and applying pattern in one call.
func Match(name, pattern string) bool {
	return matchRunes([]rune(name), []rune(pattern))
}

// HasWildcard reports whether pattern contains '*' or '?'.
func HasWildcard(pattern string) bool {
	return strings.ContainsAny(pattern, "*?")
}

// matchRunes is the two-pointer backtracking matcher. On a mismatch it
// retries from the most recent '*', consuming one more name rune each time;
// each rune of name is revisited at most once per star, so the amortized
// cost is linear.
func matchRunes(name, pattern []rune) bool {
	n, p := 0, 0
	starP, starN := -1, 0

	for n < len(name) {
		switch {
		case p < len(pattern) && (pattern[p] == '?' || foldEqual(pattern[p], name[n])):
			n++
			p++
		case p < len(pattern) && pattern[p] == '*':
			starP = p
			starN = n
			p++
		case starP >= 0:
			// Backtrack: the star swallows one more rune of name.
			starN++
			n = starN
			p = starP + 1
		default:
			return false
		}
	}

	// Name exhausted: only trailing stars may remain.
	for p < len(pattern) && pattern[p] == '*' {
		p++
	}
	return p == len(pattern)
}

// foldEqual compares two runes case-insensitively using Unicode simple
// folding, matching what regexp's (?i) flag and strings.EqualFold do
// (so e.g. the final sigma folds to sigma).
func foldEqual(a, b rune) bool {
	if a == b {
		return true
	}
	for r := unicode.SimpleFold(a); r != a; r = unicode.SimpleFold(r) {
		if r == b {
			return true
		}
	}
	return false
}

// Translate converts pattern into an anchored, case-insensitive regular
// expression equivalent to Match: '*' becomes ".*", '?' becomes ".", and
// all regex metacharacters are escaped. The s flag keeps newlines inside
// filenames matchable by the wildcards, as they are in Match. Useful for
// cross-checking the backtracking matcher and for callers that already
// work with regexps.
func Translate(pattern string) string {
	var b strings.Builder
	b.Grow(len(pattern)*2 + 7)
	b.WriteString("(?is)^")
	for _, r := range pattern {
		switch r {
		case '*':
			b.WriteString(".*")
		case '?':
			b.WriteByte('.')
		case '.', '^', '$', '+', '(', ')', '[', ']', '{', '}', '|', '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('$')
	return b.String()
}
