package core

// normalize.go canonicalizes raw header text before rule matching.
//
// Source spreadsheets disagree on punctuation more than on wording: the same
// column shows up as "Jurors Not Used – Pool", "Jurors Not Used - Pool" and
// "Jurors  Not Used-Pool". Normalize folds those differences away.

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Mode selects how header text is normalized.
// A Resolver uses exactly one mode for both headers and rule patterns.
type Mode int

const (
	// ModeExact preserves case. Rule patterns match the header's own casing.
	ModeExact Mode = iota
	// ModeFold lowercases headers and patterns before matching.
	ModeFold
)

// String returns the configuration name of the mode.
func (m Mode) String() string {
	switch m {
	case ModeFold:
		return "fold"
	default:
		return "exact"
	}
}

// ParseMode converts a configuration string to a Mode.
// The empty string selects ModeExact.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "exact":
		return ModeExact, nil
	case "fold":
		return ModeFold, nil
	default:
		return ModeExact, fmt.Errorf("unknown normalization mode %q (want exact or fold)", s)
	}
}

// MarshalText encodes the mode as its name.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText decodes a mode name.
func (m *Mode) UnmarshalText(b []byte) error {
	parsed, err := ParseMode(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// MarshalYAML encodes the mode as its name.
func (m Mode) MarshalYAML() (any, error) {
	return m.String(), nil
}

// UnmarshalYAML decodes a mode name.
func (m *Mode) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := ParseMode(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// punctuationFolder maps typographic quotes and dashes to ASCII.
var punctuationFolder = strings.NewReplacer(
	"\u2018", "'", // left single quotation mark
	"\u2019", "'", // right single quotation mark
	"\u201a", "'", // single low-9 quotation mark
	"\u201b", "'", // single high-reversed-9 quotation mark
	"\u2032", "'", // prime
	"\u02bc", "'", // modifier letter apostrophe
	"\u2010", "-", // hyphen
	"\u2011", "-", // non-breaking hyphen
	"\u2012", "-", // figure dash
	"\u2013", "-", // en dash
	"\u2014", "-", // em dash
	"\u2015", "-", // horizontal bar
	"\u2212", "-", // minus sign
	"\ufe58", "-", // small em dash
	"\ufe63", "-", // small hyphen-minus
	"\uff0d", "-", // fullwidth hyphen-minus
)

// Normalize returns the canonical form of a header string:
// NFKC composition, ASCII quotes and dashes, single spaces, no surrounding
// whitespace, and lowercase when mode is ModeFold.
//
// Normalize is total and idempotent.
func Normalize(header string, mode Mode) string {
	s := norm.NFKC.String(header)
	s = punctuationFolder.Replace(s)
	if mode == ModeFold {
		s = strings.ToLower(s)
	}
	return strings.Join(strings.Fields(s), " ")
}

// NormalizeAll normalizes a header row, preserving positions.
func NormalizeAll(headers []string, mode Mode) []string {
	out := make([]string, len(headers))
	for i, h := range headers {
		out[i] = Normalize(h, mode)
	}
	return out
}
