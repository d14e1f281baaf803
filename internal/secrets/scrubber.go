package secrets

import (
	"fmt"
	"sort"
	"strings"

	"github.com/zricethezav/gitleaks/v8/detect"
)

// Scrubber detects and redacts secrets from content.
type Scrubber interface {
	// Scrub redacts secrets from the content.
	Scrub(content string) *Result

	// IsEnabled returns whether scrubbing is enabled.
	IsEnabled() bool
}

type scrubber struct {
	config *Config

	// gitleaks holds the parsed default rule set. Detectors accumulate
	// findings, so each Scrub builds a fresh one from its Config.
	gitleaks *detect.Detector
}

type redaction struct {
	start, end int
}

// New creates a Scrubber. A nil cfg selects DefaultConfig().
func New(cfg *Config) (Scrubber, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if !cfg.Enabled {
		return NoopScrubber{}, nil
	}

	s := &scrubber{config: cfg}
	if cfg.Gitleaks {
		d, err := detect.NewDetectorDefaultConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to load gitleaks rules: %w", err)
		}
		s.gitleaks = d
	}
	return s, nil
}

// MustNew creates a Scrubber, panicking on error.
func MustNew(cfg *Config) Scrubber {
	s, err := New(cfg)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *scrubber) Scrub(content string) *Result {
	result := &Result{
		Original: content,
		Scrubbed: content,
		ByRule:   make(map[string]int),
	}

	lower := strings.ToLower(content)
	var redactions []redaction

	for _, rule := range s.config.compiledRules {
		if len(rule.keywords) > 0 && !containsAny(lower, rule.keywords) {
			continue
		}
		for _, m := range rule.pattern.FindAllStringIndex(content, -1) {
			if s.isAllowed(content[m[0]:m[1]]) {
				continue
			}
			result.Findings = append(result.Findings, Finding{
				RuleID:      rule.ID,
				Description: rule.Description,
				Severity:    rule.Severity,
				StartIndex:  m[0],
				EndIndex:    m[1],
			})
			result.ByRule[rule.ID]++
			redactions = append(redactions, redaction{start: m[0], end: m[1]})
		}
	}

	redactions = append(redactions, s.scanGitleaks(content, result)...)

	if len(redactions) == 0 {
		return result
	}

	merged := mergeRedactions(redactions)

	var b strings.Builder
	b.Grow(len(content))
	prev := 0
	for _, r := range merged {
		b.WriteString(content[prev:r.start])
		b.WriteString(s.config.RedactionString)
		prev = r.end
	}
	b.WriteString(content[prev:])
	result.Scrubbed = b.String()

	return result
}

// scanGitleaks runs the gitleaks rules and records every occurrence of
// each reported secret.
func (s *scrubber) scanGitleaks(content string, result *Result) []redaction {
	if s.gitleaks == nil {
		return nil
	}

	var redactions []redaction
	seen := make(map[string]bool)
	for _, f := range detect.NewDetector(s.gitleaks.Config).DetectString(content) {
		if f.Secret == "" || seen[f.Secret] || s.isAllowed(f.Secret) {
			continue
		}
		seen[f.Secret] = true

		for from := 0; ; {
			i := strings.Index(content[from:], f.Secret)
			if i < 0 {
				break
			}
			start, end := from+i, from+i+len(f.Secret)
			result.Findings = append(result.Findings, Finding{
				RuleID:      f.RuleID,
				Description: f.Description,
				Severity:    "high",
				StartIndex:  start,
				EndIndex:    end,
			})
			result.ByRule[f.RuleID]++
			redactions = append(redactions, redaction{start: start, end: end})
			from = end
		}
	}
	return redactions
}

func (s *scrubber) IsEnabled() bool {
	return true
}

func (s *scrubber) isAllowed(match string) bool {
	for _, pattern := range s.config.compiledAllowList {
		if pattern.MatchString(match) {
			return true
		}
	}
	return false
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// mergeRedactions sorts by start and merges overlapping or adjacent spans.
func mergeRedactions(redactions []redaction) []redaction {
	sort.Slice(redactions, func(i, j int) bool {
		return redactions[i].start < redactions[j].start
	})

	merged := []redaction{redactions[0]}
	for _, curr := range redactions[1:] {
		last := &merged[len(merged)-1]
		if curr.start <= last.end {
			if curr.end > last.end {
				last.end = curr.end
			}
			continue
		}
		merged = append(merged, curr)
	}
	return merged
}

// NoopScrubber returns content unchanged.
type NoopScrubber struct{}

func (NoopScrubber) Scrub(content string) *Result {
	return &Result{Original: content, Scrubbed: content, ByRule: map[string]int{}}
}

func (NoopScrubber) IsEnabled() bool {
	return false
}

var (
	_ Scrubber = (*scrubber)(nil)
	_ Scrubber = NoopScrubber{}
)
