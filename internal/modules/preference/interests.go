package preference

import "strings"

// Vocabulary is the fixed list of interest tags, in reporting order.
var Vocabulary = []string{
	"culture", "food", "adventure", "relaxation", "shopping", "history", "nature",
	"beach", "mountains", "city", "countryside", "art", "music", "sports",
	"wildlife", "architecture", "local cuisine", "nightlife", "family",
	"romantic", "solo", "group", "luxury", "budget", "mid-range",
}

// ExtractInterests returns every vocabulary term contained in text, in
// vocabulary order. Containment is plain substring matching.
func ExtractInterests(text string) []string {
	var found []string
	for _, term := range Vocabulary {
		if strings.Contains(text, term) {
			found = append(found, term)
		}
	}
	return found
}
