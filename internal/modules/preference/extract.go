// README: Runs every field extractor over one normalized utterance.
package preference

import (
	"errors"
	"fmt"

	"tripmate/internal/types"
)

// ErrParse marks a rule whose pattern matched but whose numeric capture could
// not be parsed. The rule is skipped; it is reported only for diagnostics.
var ErrParse = errors.New("preference: malformed numeric capture")

// ParseError describes one skipped rule.
type ParseError struct {
	Field   Field
	Rule    string
	Capture string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s rule %q: cannot parse %q: %v", e.Field, e.Rule, e.Capture, e.Err)
}

func (e *ParseError) Unwrap() []error {
	return []error{ErrParse, e.Err}
}

// Extraction is the result of running all extractors over one utterance.
// Nil fields (empty Interests) are no-match and leave state untouched.
type Extraction struct {
	Destination *string
	Duration    *int
	Budget      *types.Money
	Interests   []string
	TravelStyle *Style

	// ParseFailures lists rules skipped because their capture was malformed.
	ParseFailures []*ParseError
}

// Extract normalizes the utterance and runs the five extractors against it.
// It never fails.
func Extract(utterance string) Extraction {
	text := Normalize(utterance)

	var e Extraction
	if v, ok := ExtractDestination(text); ok {
		e.Destination = &v
	}
	dur, ok, fails := extractDuration(text)
	if ok {
		e.Duration = &dur
	}
	e.ParseFailures = append(e.ParseFailures, fails...)

	budget, ok, fails := extractBudget(text)
	if ok {
		e.Budget = &budget
	}
	e.ParseFailures = append(e.ParseFailures, fails...)

	e.Interests = ExtractInterests(text)
	if v, ok := ExtractTravelStyle(text); ok {
		e.TravelStyle = &v
	}
	return e
}

// Matched returns the fields this extraction would update.
func (e Extraction) Matched() []Field {
	var out []Field
	if e.Destination != nil {
		out = append(out, FieldDestination)
	}
	if e.Duration != nil {
		out = append(out, FieldDuration)
	}
	if e.Budget != nil {
		out = append(out, FieldBudget)
	}
	if len(e.Interests) > 0 {
		out = append(out, FieldInterests)
	}
	if e.TravelStyle != nil {
		out = append(out, FieldTravelStyle)
	}
	return out
}
