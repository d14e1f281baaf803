package secrets

import (
	"fmt"
	"regexp"
	"strings"
)

// Config configures the scrubber.
type Config struct {
	// Enabled controls whether scrubbing is active.
	Enabled bool

	// Rules defines the detection rules.
	Rules []Rule

	// RedactionString replaces each detected secret (default "[REDACTED]").
	RedactionString string

	// AllowList holds patterns for matches that are left alone. It applies
	// to gitleaks findings as well as Rules.
	AllowList []string

	// Gitleaks adds the gitleaks default rule set alongside Rules.
	Gitleaks bool

	compiledRules     []*compiledRule
	compiledAllowList []*regexp.Regexp
}

// Rule defines a secret detection rule.
type Rule struct {
	ID          string
	Description string
	Pattern     string
	// Keywords, when set, must appear (case-insensitively) for the rule to run.
	Keywords []string
	Severity string
}

type compiledRule struct {
	Rule
	pattern  *regexp.Regexp
	keywords []string
}

// DefaultConfig returns a configuration with the standard rule set.
func DefaultConfig() *Config {
	return &Config{
		Enabled:         true,
		RedactionString: "[REDACTED]",
		Rules:           DefaultRules(),
		Gitleaks:        true,
	}
}

// Validate validates and compiles the configuration.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}

	if c.RedactionString == "" {
		c.RedactionString = "[REDACTED]"
	}

	c.compiledRules = make([]*compiledRule, 0, len(c.Rules))
	for i, rule := range c.Rules {
		if rule.ID == "" {
			return fmt.Errorf("rule %d: ID is required", i)
		}
		if rule.Pattern == "" {
			return fmt.Errorf("rule %s: pattern is required", rule.ID)
		}
		pattern, err := regexp.Compile(rule.Pattern)
		if err != nil {
			return fmt.Errorf("rule %s: invalid pattern: %w", rule.ID, err)
		}
		keywords := make([]string, 0, len(rule.Keywords))
		for _, kw := range rule.Keywords {
			keywords = append(keywords, strings.ToLower(kw))
		}
		c.compiledRules = append(c.compiledRules, &compiledRule{Rule: rule, pattern: pattern, keywords: keywords})
	}

	c.compiledAllowList = make([]*regexp.Regexp, 0, len(c.AllowList))
	for i, pattern := range c.AllowList {
		compiled, err := regexp.Compile(pattern)
		if err != nil {
			return fmt.Errorf("allow_list %d: invalid pattern: %w", i, err)
		}
		c.compiledAllowList = append(c.compiledAllowList, compiled)
	}

	return nil
}
