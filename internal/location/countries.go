package location

import (
	"fmt"
	"strings"
)

var countries = []string{
	"South Africa",
	"Kenya",
	"Nigeria",
	"Tanzania",
	"Uganda",
	"Ghana",
	"Ethiopia",
	"Zimbabwe",
	"Zambia",
	"Morocco",
}

// Countries returns the selectable countries in display order.
func Countries() []string {
	out := make([]string, len(countries))
	copy(out, countries)
	return out
}

// Select returns the Info for a manually chosen country. Matching ignores
// case and surrounding space; the canonical name is returned.
func Select(country string) (Info, error) {
	want := strings.TrimSpace(country)
	for _, c := range countries {
		if strings.EqualFold(c, want) {
			return Info{Country: c}, nil
		}
	}
	return Info{}, fmt.Errorf("%w: %q", ErrUnknownCountry, country)
}
