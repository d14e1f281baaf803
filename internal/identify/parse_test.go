package identify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"whitespace", "  \n{\"a\":1}\n\t", `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"trailing comma object", `{"a":1,}`, `{"a":1}`},
		{"trailing comma array", `{"a":[1,2,]}`, `{"a":[1,2]}`},
		{"trailing comma before newline", "{\"a\":[1,2,\n  ]\n}", "{\"a\":[1,2\n  ]\n}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.in))
		})
	}
}

func TestParseResponse_FullResult(t *testing.T) {
	text := "```json\n" + `{
"type": "pest",
"name": "Aphids",
"confidence": 87,
"description": "Small sap-sucking insects",
"threatLevel": "medium",
"controlMethods": [
  "Blast with water",
  {"method": "Insecticidal soap", "description": "Spray undersides of leaves",
   "products": [{"brandName": "Safer Soap", "activeIngredient": "Potassium salts of fatty acids",
     "applicationRate": "20ml/L", "applicationMethod": "Spray", "safeDays": 0, "safetyPrecautions": "Avoid eyes"}]},
],
"affectedPlants": ["Tomatoes", "Peppers",],
"symptoms": ["Curled leaves", "Sticky honeydew"]
}` + "\n```"

	r, err := ParseResponse(text)
	require.NoError(t, err)

	assert.Equal(t, KindPest, r.Type)
	assert.Equal(t, "Aphids", r.Name)
	assert.Equal(t, 87.0, r.Confidence)
	assert.Equal(t, ThreatMedium, r.ThreatLevel)
	assert.True(t, r.ThreatLevel.Valid())
	require.Len(t, r.ControlMethods, 2)
	assert.Equal(t, ControlMethod{Method: "Blast with water"}, r.ControlMethods[0])
	assert.Equal(t, "Insecticidal soap", r.ControlMethods[1].Method)
	require.Len(t, r.ControlMethods[1].Products, 1)
	assert.Equal(t, "Safer Soap", r.ControlMethods[1].Products[0].BrandName)
	assert.Equal(t, LooseString("0"), r.ControlMethods[1].Products[0].SafeDays)
	assert.Equal(t, []string{"Tomatoes", "Peppers"}, r.AffectedPlants)
	assert.Equal(t, []string{"Curled leaves", "Sticky honeydew"}, r.Symptoms)
}

func TestParseResponse_Sentinel(t *testing.T) {
	for _, text := range []string{
		`{"error": "no_disease_found"}`,
		"```json\n{\"error\":\"no_disease_found\"}\n```",
	} {
		r, err := ParseResponse(text)
		assert.Nil(t, r)
		assert.ErrorIs(t, err, ErrNoDiseaseFound)
	}
}

func TestParseResponse_Malformed(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"empty", ""},
		{"only fences", "```json\n```"},
		{"prose", "I think this is an aphid."},
		{"truncated", `{"type":"pest","name":"Aph`},
		{"array", `["Aphids"]`},
		{"wrong field type", `{"name":"Aphids","confidence":"high"}`},
		{"other error", `{"error":"quota exceeded"}`},
		{"no name", `{"type":"pest","confidence":50}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				r, err := ParseResponse(tt.text)
				assert.Nil(t, r)
				assert.ErrorIs(t, err, ErrParse)
			})
		})
	}
}

func TestParseResponse_Normalizes(t *testing.T) {
	r, err := ParseResponse(`{"name":"Powdery Mildew","confidence":140,"threatLevel":"HIGH"}`)
	require.NoError(t, err)
	assert.Equal(t, KindPest, r.Type, "type defaults to pest")
	assert.Equal(t, 100.0, r.Confidence)
	assert.Equal(t, ThreatHigh, r.ThreatLevel)
	assert.NotNil(t, r.ControlMethods)
	assert.NotNil(t, r.AffectedPlants)

	r, err = ParseResponse(`{"type":"Disease","name":"Blight","confidence":-3,"threatLevel":"severe"}`)
	require.NoError(t, err)
	assert.Equal(t, KindDisease, r.Type)
	assert.Equal(t, 0.0, r.Confidence)
	assert.Equal(t, ThreatLevel("severe"), r.ThreatLevel)
	assert.False(t, r.ThreatLevel.Valid())
}

func TestLooseString(t *testing.T) {
	var p ControlProduct
	require.NoError(t, (&p.SafeDays).UnmarshalJSON([]byte(`"14 days"`)))
	assert.Equal(t, "14 days", p.SafeDays.String())
	_, ok := p.SafeDays.Int()
	assert.False(t, ok)

	require.NoError(t, (&p.SafeDays).UnmarshalJSON([]byte(`7`)))
	n, ok := p.SafeDays.Int()
	assert.True(t, ok)
	assert.Equal(t, 7, n)

	require.NoError(t, (&p.SafeDays).UnmarshalJSON([]byte(`null`)))
	assert.Equal(t, "", p.SafeDays.String())

	assert.Error(t, (&p.SafeDays).UnmarshalJSON([]byte(`{}`)))
}
