package preference

import "strings"

// styleKeywords is checked in order; the first category with any keyword
// present wins even if a later category also matches.
var styleKeywords = []struct {
	style    Style
	keywords []string
}{
	{StyleLuxury, []string{"luxury", "premium", "high-end", "5-star", "five star"}},
	{StyleBudget, []string{"budget", "cheap", "economy", "low-cost", "affordable"}},
	{StyleMidRange, []string{"mid-range", "moderate", "standard", "comfortable"}},
}

func ExtractTravelStyle(text string) (Style, bool) {
	for _, c := range styleKeywords {
		for _, kw := range c.keywords {
			if strings.Contains(text, kw) {
				return c.style, true
			}
		}
	}
	return "", false
}
