package identify

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Kind distinguishes insect pests from plant diseases.
type Kind string

const (
	KindPest    Kind = "pest"
	KindDisease Kind = "disease"
)

// ThreatLevel grades the damage potential of an identification.
type ThreatLevel string

const (
	ThreatLow    ThreatLevel = "low"
	ThreatMedium ThreatLevel = "medium"
	ThreatHigh   ThreatLevel = "high"
)

// Valid reports whether t is one of the known levels.
func (t ThreatLevel) Valid() bool {
	switch t {
	case ThreatLow, ThreatMedium, ThreatHigh:
		return true
	}
	return false
}

// Result is a model diagnosis for one image.
type Result struct {
	Type           Kind            `json:"type"`
	Name           string          `json:"name"`
	Confidence     float64         `json:"confidence"`
	Description    string          `json:"description"`
	ThreatLevel    ThreatLevel     `json:"threatLevel"`
	ControlMethods []ControlMethod `json:"controlMethods"`
	AffectedPlants []string        `json:"affectedPlants"`
	Symptoms       []string        `json:"symptoms,omitempty"`
}

// ControlMethod is one remediation approach, optionally naming products.
type ControlMethod struct {
	Method      string           `json:"method"`
	Description string           `json:"description,omitempty"`
	Products    []ControlProduct `json:"products,omitempty"`
}

// UnmarshalJSON accepts either a bare string or an object.
func (m *ControlMethod) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*m = ControlMethod{Method: s}
		return nil
	}
	type plain ControlMethod
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*m = ControlMethod(p)
	return nil
}

// ControlProduct is a commercial product recommended for a method.
type ControlProduct struct {
	BrandName         string      `json:"brandName"`
	ActiveIngredient  string      `json:"activeIngredient"`
	ApplicationRate   string      `json:"applicationRate"`
	ApplicationMethod string      `json:"applicationMethod"`
	SafeDays          LooseString `json:"safeDays"`
	SafetyPrecautions string      `json:"safetyPrecautions"`
}

// LooseString decodes from a JSON string or number. Models sometimes answer
// "safeDays": 7 instead of "7".
type LooseString string

// UnmarshalJSON implements json.Unmarshaler.
func (s *LooseString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*s = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = LooseString(v)
		return nil
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		*s = LooseString(n.String())
		return nil
	}
}

// String returns the value.
func (s LooseString) String() string {
	return string(s)
}

// Int parses the value as an integer if possible.
func (s LooseString) Int() (int, bool) {
	n, err := strconv.Atoi(string(s))
	return n, err == nil
}
