package identify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildPrompt(t *testing.T) {
	p := BuildPrompt(PromptOptions{})
	assert.Contains(t, p, "expert entomologist and plant pathologist")
	assert.Contains(t, p, "ONLY a valid JSON object")
	assert.Contains(t, p, `{"error": "no_disease_found"}`)
	assert.Contains(t, p, `"threatLevel"`)
	assert.NotContains(t, p, "located in")

	assert.Equal(t, p, BuildPrompt(PromptOptions{Country: "Unknown"}))

	withCountry := BuildPrompt(PromptOptions{Country: "Kenya"})
	assert.Contains(t, withCountry, "located in Kenya")
	assert.Contains(t, withCountry, "available in Kenya")
}
