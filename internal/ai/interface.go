package ai

import (
	"context"
)

// Generator is a text-generation backend. It accepts a prompt and returns
// generated text or an error; failures are reported as *BackendError so
// callers can recognise them with errors.Is(err, ErrBackend).
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Request is one generation call.
type Request struct {
	Prompt  string
	Profile Profile
}

// Profile carries sampling settings for a kind of request.
type Profile struct {
	Name            string
	Temperature     float32
	TopP            float32
	TopK            int32
	MaxOutputTokens int32
}

var (
	// ChatProfile is used for conversational replies.
	ChatProfile = Profile{Name: "chat", Temperature: 0.8, TopP: 0.95, TopK: 50, MaxOutputTokens: 2048}
	// ItineraryProfile is used for full itinerary generation.
	ItineraryProfile = Profile{Name: "itinerary", Temperature: 0.7, TopP: 0.95, TopK: 50, MaxOutputTokens: 4096}
)
