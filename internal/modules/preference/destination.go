// README: Destination extraction from ordered phrase rules.
package preference

import (
	"regexp"
	"strings"
)

// destinationRules are evaluated in order and the first rule yielding a
// non-empty place wins. The order is observable: "going to goa" must resolve
// through "going to" before the broader "go" rule gets a chance.
var destinationRules = []*regexp.Regexp{
	regexp.MustCompile(`trip (?:to|of|in) ([a-zA-Z\s]+)(?:\s|$)`),
	regexp.MustCompile(`visit ([a-zA-Z\s]+)(?:\s|$)`),
	regexp.MustCompile(`going to ([a-zA-Z\s]+)(?:\s|$)`),
	regexp.MustCompile(`travel to ([a-zA-Z\s]+)(?:\s|$)`),
	regexp.MustCompile(`plan a trip (?:to|of|in) ([a-zA-Z\s]+)(?:\s|$)`),
	regexp.MustCompile(`want to go (?:to )?([a-zA-Z\s]+)(?:\s|$)`),
	regexp.MustCompile(`interested in ([a-zA-Z\s]+)(?:\s|$)`),
	regexp.MustCompile(`like ([a-zA-Z\s]+)(?:\s|$)`),
	regexp.MustCompile(`love ([a-zA-Z\s]+)(?:\s|$)`),
	regexp.MustCompile(`go ([a-zA-Z\s]+)(?:\s|$)`),
	regexp.MustCompile(`trip for ([a-zA-Z\s]+)(?:\s|$)`),
	regexp.MustCompile(`prefer ([a-zA-Z\s]+)(?:\s|$)`),
	regexp.MustCompile(`looking for ([a-zA-Z\s]+)(?:\s|$)`),
	regexp.MustCompile(`dream(?:ing)? (?:about|of)? ([a-zA-Z\s]+)(?:\s|$)`),
}

// fillerWords start a trailing clause ("goa for 5 days", "paris next month").
// The captured place is cut at the first one.
var fillerWords = map[string]bool{
	"for": true, "with": true, "during": true, "next": true, "this": true,
	"in": true, "on": true, "at": true, "by": true, "from": true,
	"around": true, "within": true, "under": true, "over": true,
	"and": true, "but": true, "because": true, "sometime": true,
}

// ExtractDestination returns the first place name captured by the ordered
// rules, or false when nothing matched. text must already be normalized.
func ExtractDestination(text string) (string, bool) {
	for _, re := range destinationRules {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if place := trimFiller(m[1]); place != "" {
			return place, true
		}
	}
	return "", false
}

func trimFiller(capture string) string {
	words := strings.Fields(capture)
	for i, w := range words {
		if fillerWords[w] {
			words = words[:i]
			break
		}
	}
	return strings.Join(words, " ")
}
