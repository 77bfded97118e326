package prompt

import (
	"errors"
	"strings"
	"testing"

	"tripmate/internal/modules/preference"
)

func stateFrom(utterances ...string) preference.State {
	s := preference.NewState()
	for _, u := range utterances {
		s.Update(u)
	}
	return s
}

func TestItineraryRequiresDestination(t *testing.T) {
	s := stateFrom("for 5 days with 2 lakh")
	got, err := Itinerary(s)
	if !errors.Is(err, ErrDestinationRequired) {
		t.Fatalf("expected ErrDestinationRequired, got %v", err)
	}
	if got != "" {
		t.Fatalf("expected no prompt, got %q", got)
	}
}

func TestItineraryEnumeratesFields(t *testing.T) {
	s := stateFrom("trip to goa for 5 days", "2 lakh", "we enjoy food and the beach, luxury stay")
	got, err := Itinerary(s)
	if err != nil {
		t.Fatalf("itinerary: %v", err)
	}
	for _, want := range []string{
		"itinerary for goa",
		"- Destination: goa",
		"- Duration: 5 days",
		"- Budget: INR 200000",
		"- Interests: food, beach, luxury",
		"- Travel Style: luxury",
		"Morning Activities",
		"Lunch Options",
		"Afternoon Activities",
		"Evening Activities",
		"Local customs",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("prompt missing %q:\n%s", want, got)
		}
	}
}

func TestItineraryNotSpecified(t *testing.T) {
	got, err := Itinerary(stateFrom("visit rome"))
	if err != nil {
		t.Fatalf("itinerary: %v", err)
	}
	for _, label := range []string{"Duration", "Budget", "Interests", "Travel Style"} {
		if !strings.Contains(got, "- "+label+": Not specified") {
			t.Errorf("expected %s to be Not specified:\n%s", label, got)
		}
	}
}

func TestItineraryDeterministic(t *testing.T) {
	s := stateFrom("trip to goa for 5 days, around 900, culture and food")
	first, _ := Itinerary(s)
	for i := 0; i < 10; i++ {
		again, _ := Itinerary(s)
		if again != first {
			t.Fatal("itinerary prompt is not deterministic")
		}
	}
}

func TestItineraryDoesNotMutateState(t *testing.T) {
	s := stateFrom("trip to goa")
	before := s.Clone()
	_, _ = Itinerary(s)
	if *s.Destination != *before.Destination || s.Currency != before.Currency {
		t.Fatal("itinerary mutated state")
	}
}

func TestSummary(t *testing.T) {
	got := Summary(preference.NewState())
	if !strings.HasPrefix(got, "### Current Travel Preferences\n") {
		t.Fatalf("unexpected header: %q", got)
	}
	if strings.Count(got, "Not specified") != 5 {
		t.Fatalf("expected five Not specified entries:\n%s", got)
	}

	got = Summary(stateFrom("$1,500.75"))
	if !strings.Contains(got, "- Budget: USD 1500.75") {
		t.Fatalf("unexpected budget line:\n%s", got)
	}
}

func TestSummaryFractionalLakhIsExact(t *testing.T) {
	for utterance, want := range map[string]string{
		"2.3 lakh":   "- Budget: INR 230000\n",
		"1.1 lakh":   "- Budget: INR 110000\n",
		"0.75 crore": "- Budget: INR 7500000\n",
	} {
		got := Summary(stateFrom(utterance))
		if !strings.Contains(got, want) {
			t.Errorf("%s: expected %q in\n%s", utterance, want, got)
		}
	}
}

func TestChatIncludesHistoryAndUtterance(t *testing.T) {
	s := stateFrom("trip to goa")
	got := Chat(s, []Exchange{{User: "hi", Assistant: "hello!"}}, "what should I pack?")

	if !strings.Contains(got, "- Destination: goa") {
		t.Errorf("missing preferences:\n%s", got)
	}
	if !strings.Contains(got, "User: hi\nAssistant: hello!\n") {
		t.Errorf("missing history:\n%s", got)
	}
	if !strings.HasSuffix(got, "User: what should I pack?\nAssistant:") {
		t.Errorf("unexpected ending:\n%s", got)
	}
}

func TestCollectionAsksForEveryField(t *testing.T) {
	got := Collection()
	for _, want := range []string{"go?", "stay?", "budget?", "interests?", "travel style?"} {
		if !strings.Contains(got, want) {
			t.Errorf("collection prompt missing %q", want)
		}
	}
}
