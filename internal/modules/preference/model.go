// README: Preference state accumulated across the turns of one conversation.
package preference

import (
	"slices"

	"tripmate/internal/types"
)

type Style string

const (
	StyleLuxury   Style = "luxury"
	StyleBudget   Style = "budget"
	StyleMidRange Style = "mid-range"
)

// Field names a preference slot. Used for logging and metrics labels.
type Field string

const (
	FieldDestination Field = "destination"
	FieldDuration    Field = "duration"
	FieldBudget      Field = "budget"
	FieldInterests   Field = "interests"
	FieldTravelStyle Field = "travel_style"
)

// State holds the preferences extracted so far. A nil pointer (or empty
// Interests) means the field has not been extracted yet.
//
// Duration is the bare number from the utterance; the unit (days, nights,
// weeks, months) is not kept.
type State struct {
	Destination *string        `json:"destination,omitempty"`
	Duration    *int           `json:"duration,omitempty"`
	Budget      *types.Money   `json:"budget,omitempty"`
	Currency    types.Currency `json:"currency"`
	Interests   []string       `json:"interests,omitempty"`
	TravelStyle *Style         `json:"travel_style,omitempty"`
}

// NewState returns the default state: every field absent, currency INR.
func NewState() State {
	return State{Currency: types.DefaultCurrency}
}

// Clone returns a deep copy so callers can read a snapshot without sharing
// memory with the owning session.
func (s State) Clone() State {
	out := State{Currency: s.Currency}
	if s.Destination != nil {
		v := *s.Destination
		out.Destination = &v
	}
	if s.Duration != nil {
		v := *s.Duration
		out.Duration = &v
	}
	if s.Budget != nil {
		v := *s.Budget
		out.Budget = &v
	}
	if s.TravelStyle != nil {
		v := *s.TravelStyle
		out.TravelStyle = &v
	}
	out.Interests = slices.Clone(s.Interests)
	return out
}

// Merge applies an extraction using each field's overwrite rule: a field only
// changes when the extraction matched it. Interests are replaced wholesale by
// a non-empty match set. It returns the fields that changed.
func (s *State) Merge(e Extraction) []Field {
	if s.Currency == "" {
		s.Currency = types.DefaultCurrency
	}
	var updated []Field
	if e.Destination != nil {
		v := *e.Destination
		s.Destination = &v
		updated = append(updated, FieldDestination)
	}
	if e.Duration != nil {
		v := *e.Duration
		s.Duration = &v
		updated = append(updated, FieldDuration)
	}
	if e.Budget != nil {
		v := *e.Budget
		s.Budget = &v
		s.Currency = v.Currency
		updated = append(updated, FieldBudget)
	}
	if len(e.Interests) > 0 {
		s.Interests = slices.Clone(e.Interests)
		updated = append(updated, FieldInterests)
	}
	if e.TravelStyle != nil {
		v := *e.TravelStyle
		s.TravelStyle = &v
		updated = append(updated, FieldTravelStyle)
	}
	return updated
}

// Update extracts preferences from a raw utterance and merges them.
func (s *State) Update(utterance string) Extraction {
	e := Extract(utterance)
	s.Merge(e)
	return e
}
