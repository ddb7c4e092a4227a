package core

// rules.go declares how source headers are matched to canonical fields.
//
// The rule table is data: every tie-break and fallback lives here and
// nowhere else. Rules are evaluated matcher by matcher in the order listed;
// within a matcher, headers are scanned left to right and the first hit wins.

import (
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// Target names a source-side field that rules resolve.
// Targets differ from output Fields: NotUsed is an input only, and derived
// fields have no source column at all.
type Target string

const (
	TargetCaseNumber      Target = "case_number"
	TargetJurorsReporting Target = "jurors_reporting"
	TargetJurorsUsed      Target = "jurors_used"
	TargetNotUsed         Target = "not_used"
	TargetCaseType        Target = "case_type"
	TargetCivil           Target = "civil"
	TargetCharges         Target = "charges"
	TargetPenalCodes      Target = "penal_codes"
)

// Targets returns every known target in resolution order.
func Targets() []Target {
	return []Target{
		TargetCaseNumber,
		TargetJurorsReporting,
		TargetJurorsUsed,
		TargetNotUsed,
		TargetCaseType,
		TargetCivil,
		TargetCharges,
		TargetPenalCodes,
	}
}

// Multi reports whether the target collects every matching column
// for consolidation instead of a single one.
func (t Target) Multi() bool {
	return t == TargetCharges || t == TargetPenalCodes
}

// Label returns the canonical header text used in log messages.
func (t Target) Label() string {
	switch t {
	case TargetCaseNumber:
		return FieldCaseNumber.String()
	case TargetJurorsReporting:
		return FieldJurorsReporting.String()
	case TargetJurorsUsed:
		return FieldJurorsUsed.String()
	case TargetNotUsed:
		return "Not Used"
	case TargetCaseType:
		return FieldCaseType.String()
	case TargetCivil:
		return FieldCivil.String()
	case TargetCharges:
		return FieldCharges.String()
	case TargetPenalCodes:
		return FieldPenalCodes.String()
	default:
		return string(t)
	}
}

func (t Target) known() bool {
	for _, k := range Targets() {
		if k == t {
			return true
		}
	}
	return false
}

// Strategy is how a matcher compares its pattern to a header.
type Strategy string

const (
	StrategyExact     Strategy = "exact"
	StrategyPrefix    Strategy = "prefix"
	StrategySubstring Strategy = "substring"
	StrategyRegex     Strategy = "regex"
)

// ParseStrategy converts a configuration string to a Strategy.
// "contains" is accepted as an alias for substring.
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "exact":
		return StrategyExact, nil
	case "prefix":
		return StrategyPrefix, nil
	case "substring", "contains":
		return StrategySubstring, nil
	case "regex":
		return StrategyRegex, nil
	default:
		return "", fmt.Errorf("unknown match strategy %q", s)
	}
}

// Matcher is one (strategy, pattern) pair.
type Matcher struct {
	Strategy Strategy `yaml:"strategy" json:"strategy"`
	Pattern  string   `yaml:"pattern" json:"pattern"`
}

// MatchRule is the ordered matcher list for one target.
// A header satisfying any Exclude matcher is never bound by the rule.
type MatchRule struct {
	Target  Target    `yaml:"target" json:"target"`
	Match   []Matcher `yaml:"match" json:"match"`
	Exclude []Matcher `yaml:"exclude,omitempty" json:"exclude,omitempty"`
}

// RuleSet is a complete rule table plus the normalization mode it was
// written for.
type RuleSet struct {
	Mode  Mode        `yaml:"mode" json:"mode"`
	Rules []MatchRule `yaml:"rules" json:"rules"`
}

// Rule returns the rule for a target.
func (rs RuleSet) Rule(t Target) (MatchRule, bool) {
	for _, r := range rs.Rules {
		if r.Target == t {
			return r, true
		}
	}
	return MatchRule{}, false
}

// With returns a copy of the rule set with r replacing any existing rule
// for the same target.
func (rs RuleSet) With(r MatchRule) RuleSet {
	out := RuleSet{Mode: rs.Mode, Rules: make([]MatchRule, 0, len(rs.Rules)+1)}
	replaced := false
	for _, existing := range rs.Rules {
		if existing.Target == r.Target {
			out.Rules = append(out.Rules, r)
			replaced = true
			continue
		}
		out.Rules = append(out.Rules, existing)
	}
	if !replaced {
		out.Rules = append(out.Rules, r)
	}
	return out
}

func exact(p string) Matcher     { return Matcher{Strategy: StrategyExact, Pattern: p} }
func prefix(p string) Matcher    { return Matcher{Strategy: StrategyPrefix, Pattern: p} }
func substring(p string) Matcher { return Matcher{Strategy: StrategySubstring, Pattern: p} }
func regex(p string) Matcher     { return Matcher{Strategy: StrategyRegex, Pattern: p} }

// DefaultRules returns the built-in rule table, written for ModeExact.
func DefaultRules() RuleSet {
	return RuleSet{
		Mode: ModeExact,
		Rules: []MatchRule{
			{
				Target: TargetCaseNumber,
				Match: []Matcher{
					exact("Case No."),
					prefix("Case No."),
					substring("Case No"),
					prefix("Case Number"),
					exact("Case #"),
					exact("Case"),
				},
			},
			{
				Target: TargetJurorsReporting,
				Match: []Matcher{
					exact("Jurors Reporting"),
					prefix("Jurors Reporting"),
					substring("Total Jurors Reporting"),
					substring("Jurors Reporting"),
				},
			},
			{
				Target: TargetJurorsUsed,
				Match: []Matcher{
					exact("Jurors Used"),
					exact("Used"),
					substring("Used"),
				},
				// "Used" alone would otherwise capture the not-used columns.
				Exclude: []Matcher{
					substring("Not Used"),
					substring("Unused"),
				},
			},
			{
				Target: TargetNotUsed,
				Match: []Matcher{
					substring("Not Used"),
					substring("Not Used From Pool"),
					substring("Unused"),
				},
			},
			{
				Target: TargetCaseType,
				Match:  []Matcher{exact("Case Type"), substring("Case Type")},
			},
			{
				Target: TargetCivil,
				Match:  []Matcher{exact("Civil"), substring("Civil")},
			},
			{
				Target: TargetCharges,
				Match:  []Matcher{regex(`Description of Charges`), regex(`\(Charges\)`)},
			},
			{
				Target: TargetPenalCodes,
				Match:  []Matcher{regex(`Penal Codes`), regex(`Penal Code`)},
			},
		},
	}
}

// rulesFile is the on-disk override format.
type rulesFile struct {
	Mode  *Mode       `yaml:"mode"`
	Rules []MatchRule `yaml:"rules"`
}

// LoadRules reads YAML overrides and applies them on top of base.
// Rules in the file replace the base rule for the same target; targets not
// mentioned keep their base rule.
func LoadRules(r io.Reader, base RuleSet) (RuleSet, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f rulesFile
	if err := dec.Decode(&f); err != nil {
		if err == io.EOF {
			return base, nil
		}
		return RuleSet{}, fmt.Errorf("invalid rules: %w", err)
	}

	out := base
	if f.Mode != nil {
		out.Mode = *f.Mode
	}
	for _, rule := range f.Rules {
		if !rule.Target.known() {
			return RuleSet{}, fmt.Errorf("invalid rules: unknown target %q", rule.Target)
		}
		if len(rule.Match) == 0 {
			return RuleSet{}, fmt.Errorf("invalid rules: target %q has no matchers", rule.Target)
		}
		out = out.With(rule)
	}

	// Surface bad strategies and regexes at load time.
	if _, err := NewResolver(out); err != nil {
		return RuleSet{}, fmt.Errorf("invalid rules: %w", err)
	}
	return out, nil
}

// WriteRules encodes a rule set as YAML in the format LoadRules accepts.
func WriteRules(w io.Writer, rs RuleSet) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(rs); err != nil {
		return fmt.Errorf("encode rules: %w", err)
	}
	return enc.Close()
}
