package core

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// compiledMatcher is a Matcher with its pattern normalized for the
// resolver's mode and, for regex matchers, compiled.
type compiledMatcher struct {
	strategy Strategy
	pattern  string
	re       *regexp.Regexp
}

func (m compiledMatcher) matches(header string) bool {
	switch m.strategy {
	case StrategyExact:
		return header == m.pattern
	case StrategyPrefix:
		return strings.HasPrefix(header, m.pattern)
	case StrategySubstring:
		return strings.Contains(header, m.pattern)
	case StrategyRegex:
		return m.re.MatchString(header)
	default:
		return false
	}
}

type compiledRule struct {
	match   []compiledMatcher
	exclude []compiledMatcher
}

func (r compiledRule) excluded(header string) bool {
	for _, m := range r.exclude {
		if m.matches(header) {
			return true
		}
	}
	return false
}

// Resolver binds normalized headers to targets using a RuleSet.
// A Resolver is immutable and safe for concurrent use.
type Resolver struct {
	mode  Mode
	rules map[Target]compiledRule
}

// NewResolver compiles a rule set. It fails on unknown strategies and
// invalid regular expressions.
func NewResolver(rs RuleSet) (*Resolver, error) {
	r := &Resolver{
		mode:  rs.Mode,
		rules: make(map[Target]compiledRule, len(rs.Rules)),
	}

	for _, rule := range rs.Rules {
		if _, dup := r.rules[rule.Target]; dup {
			return nil, fmt.Errorf("compile rules: duplicate target %q", rule.Target)
		}
		match, err := r.compileAll(rule.Target, rule.Match)
		if err != nil {
			return nil, err
		}
		exclude, err := r.compileAll(rule.Target, rule.Exclude)
		if err != nil {
			return nil, err
		}
		r.rules[rule.Target] = compiledRule{match: match, exclude: exclude}
	}

	return r, nil
}

func (r *Resolver) compileAll(t Target, ms []Matcher) ([]compiledMatcher, error) {
	out := make([]compiledMatcher, 0, len(ms))
	for _, m := range ms {
		strategy, err := ParseStrategy(string(m.Strategy))
		if err != nil {
			return nil, fmt.Errorf("compile rules for %s: %w", t, err)
		}

		cm := compiledMatcher{strategy: strategy}
		if strategy == StrategyRegex {
			expr := m.Pattern
			if r.mode == ModeFold {
				expr = "(?i)" + expr
			}
			re, err := regexp.Compile(expr)
			if err != nil {
				return nil, fmt.Errorf("compile rules for %s: invalid regex %q: %w", t, m.Pattern, err)
			}
			cm.re = re
		} else {
			cm.pattern = Normalize(m.Pattern, r.mode)
		}
		out = append(out, cm)
	}
	return out, nil
}

// Mode returns the normalization mode this resolver matches in.
func (r *Resolver) Mode() Mode {
	return r.mode
}

// NormalizeHeaders normalizes a raw header row in the resolver's mode.
func (r *Resolver) NormalizeHeaders(raw []string) []string {
	return NormalizeAll(raw, r.mode)
}

// Resolve returns the first column bound to target. Matchers are tried in
// priority order and, for each matcher, headers left to right.
// The boolean is false when nothing matches, which is a normal outcome.
func (r *Resolver) Resolve(headers []string, t Target) (Column, bool) {
	rule, ok := r.rules[t]
	if !ok {
		return Column{}, false
	}
	for _, m := range rule.match {
		for i, h := range headers {
			if m.matches(h) && !rule.excluded(h) {
				return Column{Index: i, Name: h}, true
			}
		}
	}
	return Column{}, false
}

// ResolveAll returns every column matching target. Columns are ordered by
// the matcher that first found them, then left to right, and each column
// appears once.
func (r *Resolver) ResolveAll(headers []string, t Target) []Column {
	rule, ok := r.rules[t]
	if !ok {
		return nil
	}
	var out []Column
	seen := make(map[int]bool)
	for _, m := range rule.match {
		for i, h := range headers {
			if seen[i] || !m.matches(h) || rule.excluded(h) {
				continue
			}
			seen[i] = true
			out = append(out, Column{Index: i, Name: h})
		}
	}
	return out
}

// Bindings maps each resolved target to its source columns.
// Single-column targets hold exactly one column; unbound targets are absent.
type Bindings map[Target][]Column

// Bind normalizes a raw header row and resolves every target the resolver
// has a rule for. Bound columns keep their raw header for audit logs.
func (r *Resolver) Bind(raw []string) Bindings {
	headers := r.NormalizeHeaders(raw)
	withHeader := func(cols []Column) []Column {
		for i := range cols {
			cols[i].Header = raw[cols[i].Index]
		}
		return cols
	}

	b := make(Bindings, len(r.rules))
	for t := range r.rules {
		if t.Multi() {
			if cols := r.ResolveAll(headers, t); len(cols) > 0 {
				b[t] = withHeader(cols)
			}
			continue
		}
		if col, ok := r.Resolve(headers, t); ok {
			b[t] = withHeader([]Column{col})
		}
	}
	return b
}

// Has reports whether target is bound.
func (b Bindings) Has(t Target) bool {
	return len(b[t]) > 0
}

// Single returns the column bound to a single-column target.
func (b Bindings) Single(t Target) (Column, bool) {
	cols := b[t]
	if len(cols) == 0 {
		return Column{}, false
	}
	return cols[0], true
}

// Names returns the bound source headers keyed by target, for audit logs.
func (b Bindings) Names() map[string][]string {
	out := make(map[string][]string, len(b))
	for t, cols := range b {
		names := make([]string, len(cols))
		for i, c := range cols {
			names[i] = c.Label()
		}
		out[string(t)] = names
	}
	return out
}

// Targets returns the bound targets in a stable order.
func (b Bindings) Targets() []Target {
	out := make([]Target, 0, len(b))
	for t := range b {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
