package rangemap

import "regexp"

// mungeRule is one (pattern, replacement) pair. Replacement follows Go's
// regexp.Expand syntax ($1, $2, ${name}) — the same RE2 engine bloaty links
// against via re2.h, so this is a faithful behavioral port, not a
// stand-in: Go's regexp package *is* RE2.
type mungeRule struct {
	re          *regexp.Regexp
	replacement string
}

// NameMunger applies an ordered list of regex rewrites to data-source
// names. Only the first matching rule fires — it does not chain.
type NameMunger struct {
	rules []mungeRule
}

// NewNameMunger returns an empty munger (Munge is then the identity).
func NewNameMunger() *NameMunger {
	return &NameMunger{}
}

// AddRegex appends a rewrite rule. pattern is compiled with regexp.Compile;
// an invalid pattern panics, matching the teacher's own fail-fast style for
// programmer-supplied (not user-supplied at a hot path) inputs — custom
// data source patterns are compiled once at startup by internal/config's
// Validate, which reports a bad one as an error before any munger is built.
func (n *NameMunger) AddRegex(pattern, replacement string) {
	n.rules = append(n.rules, mungeRule{re: regexp.MustCompile(pattern), replacement: replacement})
}

// IsEmpty reports whether the munger has no rules (so Munge is a no-op).
func (n *NameMunger) IsEmpty() bool { return len(n.rules) == 0 }

// Munge rewrites name through the first matching rule, or returns it
// unchanged. Reserved labels (those starting with '[') are never
// transformed.
func (n *NameMunger) Munge(name string) string {
	if len(name) > 0 && name[0] == '[' {
		return name
	}
	for _, rule := range n.rules {
		loc := rule.re.FindStringSubmatchIndex(name)
		if loc == nil {
			continue
		}
		var buf []byte
		buf = rule.re.ExpandString(buf, rule.replacement, name, loc)
		return string(buf)
	}
	return name
}
