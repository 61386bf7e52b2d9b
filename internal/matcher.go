package internal

import (
	"fmt"
	"strings"

	"github.com/dlclark/regexp2"
)

// PatternDelimiter separates expressions in fileContentsRegex. No escaping.
const PatternDelimiter = "~"

// Pattern is a regular expression that only matches a whole string.
type Pattern struct {
	expr string
	re   *regexp2.Regexp
}

// CompilePattern compiles expr for full-string matching.
func CompilePattern(expr string) (*Pattern, error) {
	// compile bare first so syntax errors refer to the user's text
	if _, err := regexp2.Compile(expr, regexp2.None); err != nil {
		return nil, err
	}
	re, err := regexp2.Compile(`\A(?:`+expr+`)\z`, regexp2.None)
	if err != nil {
		return nil, err
	}
	return &Pattern{expr: expr, re: re}, nil
}

// MustCompilePattern is like CompilePattern but panics on a bad expression.
func MustCompilePattern(expr string) *Pattern {
	p, err := CompilePattern(expr)
	if err != nil {
		panic(fmt.Sprintf("pattern %q: %v", expr, err))
	}
	return p
}

// Match reports whether s matches the pattern in its entirety.
func (p *Pattern) Match(s string) bool {
	ok, err := p.re.MatchString(s)
	return err == nil && ok
}

func (p *Pattern) Desc() string { return p.expr }

// PatternSet is the ordered list of content patterns parsed from fileContentsRegex.
type PatternSet struct {
	raw      string
	patterns []*Pattern
}

// SplitPatterns splits a raw fileContentsRegex value into its segments.
// Trailing empty segments are dropped; inner ones are kept and match only
// empty lines.
func SplitPatterns(raw string) []string {
	segs := strings.Split(raw, PatternDelimiter)
	for len(segs) > 0 && segs[len(segs)-1] == "" {
		segs = segs[:len(segs)-1]
	}
	return segs
}

// ParsePatternSet compiles every segment of raw. An empty raw value gives an
// empty set, which every file satisfies.
func ParsePatternSet(raw string) (*PatternSet, error) {
	set := &PatternSet{raw: raw}
	for _, seg := range SplitPatterns(raw) {
		p, err := CompilePattern(seg)
		if err != nil {
			return nil, &ConfigError{
				Field:   FieldFileContentsRegex,
				Message: fmt.Sprintf("The regular expression pattern '%s' provided to check file contents is not a valid regular expression", seg),
				Err:     err,
			}
		}
		set.patterns = append(set.patterns, p)
	}
	return set, nil
}

func (s *PatternSet) Len() int { return len(s.patterns) }

func (s *PatternSet) Empty() bool { return len(s.patterns) == 0 }

// String returns the raw, delimiter-separated value the set was parsed from.
func (s *PatternSet) String() string { return s.raw }

// newAccumulator returns a fresh per-file tracker for this set.
func (s *PatternSet) newAccumulator() *matchAccumulator {
	return &matchAccumulator{patterns: s.patterns, found: make([]bool, len(s.patterns)), missing: len(s.patterns)}
}

// matchAccumulator records which patterns have matched at least one line.
type matchAccumulator struct {
	patterns []*Pattern
	found    []bool
	missing  int
}

func (a *matchAccumulator) observe(line string) {
	for i, p := range a.patterns {
		if a.found[i] {
			continue
		}
		if p.Match(line) {
			a.found[i] = true
			a.missing--
		}
	}
}

func (a *matchAccumulator) satisfied() bool { return a.missing == 0 }
