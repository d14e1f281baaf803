package secrets

// Result contains the scrubbing result.
type Result struct {
	Original string `json:"-"`
	Scrubbed string `json:"scrubbed"`

	// Findings contains the detected secrets, without their values.
	Findings []Finding `json:"findings,omitempty"`

	// ByRule maps rule IDs to finding counts.
	ByRule map[string]int `json:"by_rule,omitempty"`
}

// Finding represents a detected secret.
type Finding struct {
	RuleID      string `json:"rule_id"`
	Description string `json:"description"`
	Severity    string `json:"severity"`
	StartIndex  int    `json:"start_index"`
	EndIndex    int    `json:"end_index"`
}

// HasFindings returns true if any secrets were found.
func (r *Result) HasFindings() bool {
	return len(r.Findings) > 0
}

// RuleIDs returns the distinct rule IDs that matched, in first-seen order.
func (r *Result) RuleIDs() []string {
	seen := make(map[string]bool, len(r.ByRule))
	ids := make([]string, 0, len(r.ByRule))
	for _, f := range r.Findings {
		if !seen[f.RuleID] {
			seen[f.RuleID] = true
			ids = append(ids, f.RuleID)
		}
	}
	return ids
}
