package tracking

import (
	"strings"
	"time"
)

// Samples returns the built-in entries served when the store is unreachable
// and fallback is enabled.
func Samples() []Entry {
	return []Entry{
		{
			ID:             "1",
			Date:           time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
			PestName:       "Aphids",
			Location:       "Vegetable Garden",
			AffectedPlants: "Tomatoes, Peppers",
			TreatmentPlan:  "Neem oil spray applied",
			CreatedAt:      time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			ID:             "2",
			Date:           time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
			PestName:       "Japanese Beetles",
			Location:       "Rose Garden",
			AffectedPlants: "Rose bushes",
			TreatmentPlan:  "Hand picking and organic pesticide",
			CreatedAt:      time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
		},
	}
}

// filterSamples matches term against sample pest names, case-insensitively.
func filterSamples(term string) []Entry {
	needle := strings.ToLower(term)
	out := []Entry{}
	for _, e := range Samples() {
		if strings.Contains(strings.ToLower(e.PestName), needle) {
			out = append(out, e)
		}
	}
	return out
}
