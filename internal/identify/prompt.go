package identify

import (
	"fmt"
	"strings"
)

// PromptOptions tailors the identification prompt.
type PromptOptions struct {
	// Country, when known, asks for products sold there.
	Country string
}

const basePrompt = `You are an expert entomologist and plant pathologist. Analyze this garden image and identify any pests or diseases present.

You must respond with ONLY a valid JSON object and nothing else - no markdown, no extra text. Format:
{
"type": "pest",
"name": "Common name",
"confidence": 85,
"description": "Brief description",
"threatLevel": "low",
"controlMethods": [
  {
    "method": "Method name",
    "description": "How to apply it",
    "products": [
      {
        "brandName": "Product brand",
        "activeIngredient": "Active ingredient",
        "applicationRate": "Rate per litre or hectare",
        "applicationMethod": "Spray, drench, dust",
        "safeDays": "Days before harvest",
        "safetyPrecautions": "Protective measures"
      }
    ]
  }
],
"affectedPlants": ["plant 1", "plant 2"],
"symptoms": ["symptom 1", "symptom 2"]
}

"type" must be "pest" or "disease". "threatLevel" must be "low", "medium" or "high". "confidence" is a number from 0 to 100.

If no pest or disease is visible in the image, respond with exactly:
{"error": "no_disease_found"}`

// BuildPrompt returns the identification instruction prompt.
func BuildPrompt(opts PromptOptions) string {
	country := strings.TrimSpace(opts.Country)
	if country == "" || strings.EqualFold(country, "unknown") {
		return basePrompt
	}
	return basePrompt + fmt.Sprintf(`

The user is located in %s. Recommend control products that are registered and available in %s, and follow local application guidance.`, country, country)
}
