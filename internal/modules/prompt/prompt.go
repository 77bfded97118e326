// README: Prompt composition from preference state (chat context, itinerary request, display summary).
package prompt

import (
	"errors"
	"fmt"
	"strings"

	"tripmate/internal/modules/preference"
)

// ErrDestinationRequired is returned instead of an itinerary prompt when no
// destination has been extracted yet.
var ErrDestinationRequired = errors.New("destination required")

// DestinationRequiredMessage is the user-facing text for ErrDestinationRequired.
const DestinationRequiredMessage = "Please provide a destination first."

const notSpecified = "Not specified"

// Exchange is one past (user, assistant) turn rendered into the chat context.
type Exchange struct {
	User      string
	Assistant string
}

// Fields renders each preference on its own "- Label: value" line.
func Fields(s preference.State) string {
	var b strings.Builder
	fmt.Fprintf(&b, "- Destination: %s\n", Destination(s))
	fmt.Fprintf(&b, "- Duration: %s\n", Duration(s))
	fmt.Fprintf(&b, "- Budget: %s\n", Budget(s))
	fmt.Fprintf(&b, "- Interests: %s\n", Interests(s))
	fmt.Fprintf(&b, "- Travel Style: %s\n", TravelStyle(s))
	return b.String()
}

func Destination(s preference.State) string {
	if s.Destination == nil || *s.Destination == "" {
		return notSpecified
	}
	return *s.Destination
}

func Duration(s preference.State) string {
	if s.Duration == nil || *s.Duration == 0 {
		return notSpecified
	}
	return fmt.Sprintf("%d days", *s.Duration)
}

func Budget(s preference.State) string {
	if s.Budget == nil || s.Budget.IsZero() {
		return notSpecified
	}
	budget := *s.Budget
	if budget.Currency == "" {
		budget.Currency = s.Currency
	}
	return budget.String()
}

func Interests(s preference.State) string {
	if len(s.Interests) == 0 {
		return notSpecified
	}
	return strings.Join(s.Interests, ", ")
}

func TravelStyle(s preference.State) string {
	if s.TravelStyle == nil {
		return notSpecified
	}
	return string(*s.TravelStyle)
}

// Summary renders the preferences panel shown next to the conversation.
func Summary(s preference.State) string {
	return "### Current Travel Preferences\n" + Fields(s)
}

// Collection is the greeting that asks for the five preference fields.
func Collection() string {
	return `I'm a travel assistant helping you plan your perfect trip. To provide the best recommendations, I'll need some information:

1. Where would you like to go?
2. How long do you plan to stay?
3. What's your approximate budget?
4. What are your main interests? (e.g., culture, food, adventure, relaxation)
5. What's your preferred travel style? (e.g., luxury, budget, mid-range)

Please share as much detail as you're comfortable with, and I'll help create a personalized itinerary.`
}

// Chat builds the conversational prompt: assistant role, the preferences
// known before this turn, the previous exchanges and the new utterance.
func Chat(s preference.State, history []Exchange, utterance string) string {
	var b strings.Builder
	b.WriteString("You are a helpful travel assistant. Your role is to help users plan their trips, ")
	b.WriteString("provide travel recommendations, and answer questions about destinations. ")
	b.WriteString("Be friendly, informative, and specific in your responses.\n\n")
	b.WriteString("Current travel preferences:\n")
	b.WriteString(Fields(s))
	b.WriteString("\nPrevious conversation:\n")
	for _, ex := range history {
		fmt.Fprintf(&b, "User: %s\nAssistant: %s\n", ex.User, ex.Assistant)
	}
	fmt.Fprintf(&b, "User: %s\nAssistant:", utterance)
	return b.String()
}

// Itinerary builds the day-by-day itinerary request. It reads s only and
// returns ErrDestinationRequired when s has no destination.
func Itinerary(s preference.State) (string, error) {
	if s.Destination == nil || strings.TrimSpace(*s.Destination) == "" {
		return "", ErrDestinationRequired
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Create a detailed day-by-day travel itinerary for %s.\n\n", *s.Destination)
	b.WriteString("Traveler preferences:\n")
	b.WriteString(Fields(s))
	b.WriteString(itineraryInstructions)
	return b.String(), nil
}

const itineraryInstructions = `
Create a detailed itinerary that includes:

For each day:
1. Morning Activities (9:00 AM - 12:00 PM)
   - Specific places to visit
   - Estimated time at each location
   - Entry fees if any
   - Travel time between locations

2. Lunch Options (12:00 PM - 2:00 PM)
   - Restaurant recommendations
   - Local cuisine to try
   - Estimated cost

3. Afternoon Activities (2:00 PM - 5:00 PM)
   - Specific places to visit
   - Estimated time at each location
   - Entry fees if any
   - Travel time between locations

4. Evening Activities (5:00 PM - 9:00 PM)
   - Dinner options
   - Entertainment or relaxation activities
   - Estimated costs

Additional Information:
- Total estimated daily cost
- Transportation options and costs
- Important tips and recommendations
- Local customs and etiquette to be aware of
- Emergency contact numbers if available

Please format the response in a clear, easy-to-read manner with proper spacing and bullet points.`
