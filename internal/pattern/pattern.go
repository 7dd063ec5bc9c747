// Package pattern builds the per-family regular expressions and combines
// them into a single alternation for one-pass scanning.
//
// Branch order inside the combined alternation is the first-level
// disambiguation mechanism: Go's regexp engine prefers earlier branches
// at the same start offset, so a family listed first wins lexical ties.
// Context-sensitive tie-breaking (heading labels vs. chemical formulas,
// identifiers vs. math scripts) is layered on top by the match package;
// the base expressions here stay reusable and unmodified.
package pattern

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"typograf/internal/segment"
)

// Base expressions per built-in family. Every expression is bounded
// (word boundaries or fixed shapes) so that alternation cannot silently
// swallow an adjacent family's token, and uses non-capturing groups so
// extractors never see shifted submatch indices.
const (
	trademarkExpr  = `™|\(TM\)`
	registeredExpr = `®|\(R\)`
	copyrightExpr  = `©|\(C\)`
	ordinalExpr    = `\b\d+(?:st|nd|rd|th)\b`
	chemicalExpr   = `[A-Z][a-z]?\d+`
	mathSuperExpr  = `[A-Za-z]\^(?:\d+|\{[^{}]+\})`
	mathSubExpr    = `[A-Za-z]_(?:\d+|\{[^{}]+\})`
)

// customNameRe restricts custom family names to valid regexp group names.
var customNameRe = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9]*$`)

// Options selects which families participate in the combined pattern.
type Options struct {
	Trademark  bool
	Registered bool
	Copyright  bool
	Ordinal    bool
	Chemical   bool
	MathSuper  bool
	MathSub    bool

	// Custom maps additional family names to expressions. Each is
	// validated at build time; custom families rank after the built-ins
	// in alternation priority.
	Custom map[string]string
}

// familyPattern is one named expression plus its compiled form.
type familyPattern struct {
	family segment.Family
	expr   string
	re     *regexp.Regexp
}

// Set holds the validated per-family patterns in priority order.
type Set struct {
	patterns []familyPattern
}

// Combined is the single alternation merging all enabled families.
// One left-to-right scan of a text yields non-overlapping matches with
// earlier families winning ties at the same offset.
type Combined struct {
	re *regexp.Regexp
	// groups holds one entry per family in priority order, carrying the
	// family's capture group index in the combined expression. Indices
	// are resolved by group name, so capturing groups inside a custom
	// expression cannot shift a later family's attribution.
	groups []familyGroup
}

// familyGroup ties a family to its named capture group.
type familyGroup struct {
	family segment.Family
	index  int
}

// Build validates and compiles the enabled family expressions.
//
// A malformed custom expression fails here, not at first use, with the
// offending family named in the error. Disabled families are absent from
// the set entirely, so they cannot match even incidentally.
func Build(opts Options) (*Set, error) {
	builtin := []struct {
		family  segment.Family
		expr    string
		enabled bool
	}{
		{segment.Trademark, trademarkExpr, opts.Trademark},
		{segment.Registered, registeredExpr, opts.Registered},
		{segment.Copyright, copyrightExpr, opts.Copyright},
		{segment.Ordinal, ordinalExpr, opts.Ordinal},
		{segment.Chemical, chemicalExpr, opts.Chemical},
		{segment.MathSuper, mathSuperExpr, opts.MathSuper},
		{segment.MathSub, mathSubExpr, opts.MathSub},
	}

	s := &Set{}
	for _, b := range builtin {
		if !b.enabled {
			continue
		}
		re, err := regexp.Compile(b.expr)
		if err != nil {
			// built-in expressions are constants; this guards edits
			return nil, fmt.Errorf("pattern family %q: %w", b.family, err)
		}
		s.patterns = append(s.patterns, familyPattern{family: b.family, expr: b.expr, re: re})
	}

	// custom families are appended in sorted order for deterministic
	// alternation priority
	names := make([]string, 0, len(opts.Custom))
	for name := range opts.Custom {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		expr := opts.Custom[name]
		if !customNameRe.MatchString(name) {
			return nil, fmt.Errorf("custom pattern family %q: name must be alphanumeric and start with a letter", name)
		}
		if isBuiltinName(name) {
			return nil, fmt.Errorf("custom pattern family %q: name collides with a built-in family", name)
		}
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("custom pattern family %q: %w", name, err)
		}
		// a named group inside the expression that reuses a family name
		// would collide with that family's group in the combined
		// alternation; fail here with the owner named rather than at
		// Combine with no attribution
		for _, g := range re.SubexpNames()[1:] {
			if g == "" {
				continue
			}
			if _, ok := opts.Custom[g]; ok || isBuiltinName(g) {
				return nil, fmt.Errorf("custom pattern family %q: group name %q collides with a family name", name, g)
			}
		}
		s.patterns = append(s.patterns, familyPattern{family: segment.Family(name), expr: expr, re: re})
	}

	return s, nil
}

// Families returns the set's families in priority order.
func (s *Set) Families() []segment.Family {
	out := make([]segment.Family, len(s.patterns))
	for i, p := range s.patterns {
		out[i] = p.family
	}
	return out
}

// Expr returns the base expression for a family, or "" if absent.
func (s *Set) Expr(f segment.Family) string {
	for _, p := range s.patterns {
		if p.family == f {
			return p.expr
		}
	}
	return ""
}

// Combine merges the set into one alternation pattern. Each family
// becomes a named capture group so the scanner can attribute a match to
// its owning branch.
func (s *Set) Combine() (*Combined, error) {
	if len(s.patterns) == 0 {
		return &Combined{}, nil
	}

	var b strings.Builder
	for i, p := range s.patterns {
		if i > 0 {
			b.WriteByte('|')
		}
		fmt.Fprintf(&b, "(?P<%s>%s)", p.family, p.expr)
	}

	re, err := regexp.Compile(b.String())
	if err != nil {
		return nil, fmt.Errorf("failed to combine pattern families: %w", err)
	}

	groups := make([]familyGroup, 0, len(s.patterns))
	for _, p := range s.patterns {
		idx := re.SubexpIndex(string(p.family))
		if idx < 0 {
			return nil, fmt.Errorf("pattern family %q: no capture group in combined expression", p.family)
		}
		groups = append(groups, familyGroup{family: p.family, index: idx})
	}
	return &Combined{re: re, groups: groups}, nil
}

// Empty reports whether no family is enabled.
func (c *Combined) Empty() bool {
	return c.re == nil
}

// Match describes one combined-pattern match within a text.
type Match struct {
	Family segment.Family
	Start  int
	End    int
}

// Next finds the first match at or after pos, attributing it to the
// owning family via the named group that participated.
func (c *Combined) Next(text string, pos int) (Match, bool) {
	if c.re == nil || pos > len(text) {
		return Match{}, false
	}
	loc := c.re.FindStringSubmatchIndex(text[pos:])
	if loc == nil {
		return Match{}, false
	}
	m := Match{Start: pos + loc[0], End: pos + loc[1]}
	for _, g := range c.groups {
		// -1 means the family's branch did not participate
		if loc[2*g.index] >= 0 {
			m.Family = g.family
			break
		}
	}
	return m, true
}

func isBuiltinName(name string) bool {
	for _, f := range segment.Builtin() {
		if string(f) == name {
			return true
		}
	}
	return false
}
