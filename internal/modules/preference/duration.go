// README: Duration extraction; the unit is recognised but not kept.
package preference

import (
	"regexp"
	"strconv"
)

var durationRules = []*regexp.Regexp{
	// days
	regexp.MustCompile(`for (\d+)\s*(?:days?|d)`),
	regexp.MustCompile(`(\d+)\s*(?:days?|d)(?:\s|$)`),
	// nights
	regexp.MustCompile(`for (\d+)\s*(?:nights?|n)`),
	regexp.MustCompile(`(\d+)\s*(?:nights?|n)(?:\s|$)`),
	// weeks
	regexp.MustCompile(`for (\d+)\s*(?:weeks?|w)`),
	regexp.MustCompile(`(\d+)\s*(?:weeks?|w)(?:\s|$)`),
	// months
	regexp.MustCompile(`for (\d+)\s*(?:months?|mo|mnth|m)`),
	regexp.MustCompile(`(\d+)\s*(?:months?|mo|mnth|m)(?:\s|$)`),
	// generic phrasing
	regexp.MustCompile(`stay for (\d+)\s*(?:days?|nights?|weeks?|months?)`),
	regexp.MustCompile(`spend (\d+)\s*(?:days?|nights?|weeks?|months?)`),
}

// ExtractDuration returns the number captured by the first duration rule
// whose capture parses as an int. text must already be normalized.
func ExtractDuration(text string) (int, bool) {
	n, ok, _ := extractDuration(text)
	return n, ok
}

func extractDuration(text string) (int, bool, []*ParseError) {
	var fails []*ParseError
	for _, re := range durationRules {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			fails = append(fails, &ParseError{Field: FieldDuration, Rule: re.String(), Capture: m[1], Err: err})
			continue
		}
		return n, true, fails
	}
	return 0, false, fails
}
