package identify

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

const noDiseaseSentinel = "no_disease_found"

var (
	fenceRe         = regexp.MustCompile("```json\\n?|```")
	trailingCommaRe = regexp.MustCompile(`,([\s\r\n]*[}\]])`)
)

// Sanitize trims the reply, removes markdown code fences and drops trailing
// commas before a closing brace or bracket.
func Sanitize(text string) string {
	clean := strings.TrimSpace(text)
	clean = fenceRe.ReplaceAllString(clean, "")
	clean = trailingCommaRe.ReplaceAllString(clean, "$1")
	return strings.TrimSpace(clean)
}

// ParseResponse decodes a model reply into a Result.
func ParseResponse(text string) (*Result, error) {
	clean := Sanitize(text)
	if clean == "" {
		return nil, fmt.Errorf("%w: empty response", ErrParse)
	}

	var sentinel struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal([]byte(clean), &sentinel); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if sentinel.Error == noDiseaseSentinel {
		return nil, ErrNoDiseaseFound
	}
	if sentinel.Error != "" {
		return nil, fmt.Errorf("%w: model reported %q", ErrParse, sentinel.Error)
	}

	var r Result
	if err := json.Unmarshal([]byte(clean), &r); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if strings.TrimSpace(r.Name) == "" {
		return nil, fmt.Errorf("%w: missing name", ErrParse)
	}

	normalize(&r)
	return &r, nil
}

func normalize(r *Result) {
	if r.Type == "" {
		r.Type = KindPest
	}
	r.Type = Kind(strings.ToLower(string(r.Type)))
	r.ThreatLevel = ThreatLevel(strings.ToLower(strings.TrimSpace(string(r.ThreatLevel))))

	switch {
	case r.Confidence < 0:
		r.Confidence = 0
	case r.Confidence > 100:
		r.Confidence = 100
	}

	if r.ControlMethods == nil {
		r.ControlMethods = []ControlMethod{}
	}
	if r.AffectedPlants == nil {
		r.AffectedPlants = []string{}
	}
}
