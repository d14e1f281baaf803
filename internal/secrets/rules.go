package secrets

// DefaultRules returns the rules applied to chat text and tracking notes.
func DefaultRules() []Rule {
	return []Rule{
		{
			ID:          "google-api-key",
			Description: "Google API Key",
			Pattern:     `AIza[0-9A-Za-z_\-]{35}`,
			Severity:    "high",
		},
		{
			ID:          "openai-api-key",
			Description: "OpenAI API Key",
			Pattern:     `sk-(?:proj-)?[A-Za-z0-9_\-]{20,}`,
			Severity:    "high",
		},
		{
			ID:          "github-token",
			Description: "GitHub Token",
			Pattern:     `gh[pousr]_[A-Za-z0-9]{36}`,
			Severity:    "high",
		},
		{
			ID:          "aws-access-key-id",
			Description: "AWS Access Key ID",
			Pattern:     `(?:AKIA|ASIA)[A-Z0-9]{16}`,
			Severity:    "high",
		},
		{
			ID:          "private-key",
			Description: "Private Key",
			Pattern:     `-----BEGIN (?:RSA |DSA |EC |OPENSSH |PGP )?PRIVATE KEY(?:[- ]BLOCK)?-----`,
			Severity:    "high",
		},
		{
			ID:          "bearer-token",
			Description: "Bearer Token",
			Pattern:     `(?i)bearer\s+[A-Za-z0-9\-._~+/]{16,}=*`,
			Keywords:    []string{"bearer"},
			Severity:    "medium",
		},
		{
			ID:          "generic-api-key",
			Description: "Generic API Key",
			Pattern:     `(?i)(?:api[_-]?key|apikey|access[_-]?token)\s*[:=]\s*['"]?[A-Za-z0-9_\-]{16,64}['"]?`,
			Keywords:    []string{"key", "token"},
			Severity:    "medium",
		},
		{
			ID:          "generic-password",
			Description: "Password Assignment",
			Pattern:     `(?i)(?:password|passwd|pwd)\s*[:=]\s*['"]?[^\s'"]{8,}['"]?`,
			Keywords:    []string{"pass", "pwd"},
			Severity:    "medium",
		},
	}
}
