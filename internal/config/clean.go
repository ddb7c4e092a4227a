package config

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/JonMunkholm/juryclean/internal/core"
)

// RuleSet returns the built-in rules in the configured mode, with the rules
// file applied on top when one is set. A mode in the rules file wins over
// the configured one.
func (c *CleanConfig) RuleSet() (core.RuleSet, error) {
	rs := core.DefaultRules()

	mode, err := core.ParseMode(c.Mode)
	if err != nil {
		return core.RuleSet{}, err
	}
	rs.Mode = mode

	if c.RulesFile == "" {
		return rs, nil
	}

	f, err := os.Open(c.RulesFile)
	if err != nil {
		return core.RuleSet{}, fmt.Errorf("invalid rules: %w", err)
	}
	defer f.Close()

	return core.LoadRules(f, rs)
}

// Options builds cleaner options from the configuration.
func (c *CleanConfig) Options(logger *slog.Logger) (core.Options, error) {
	rs, err := c.RuleSet()
	if err != nil {
		return core.Options{}, err
	}
	policy, err := core.ParseUsedPolicy(c.UsedPolicy)
	if err != nil {
		return core.Options{}, err
	}
	return core.Options{
		Rules:     rs,
		Policy:    policy,
		Precision: c.Precision,
		Workers:   c.Workers,
		Logger:    logger,
	}, nil
}
