package maps

import (
	"context"
	"fmt"
	"strings"

	"googlemaps.github.io/maps"
)

// DefaultQuery is searched when the traveller named no interests.
const DefaultQuery = "top attractions"

const (
	minRating     = 4.0
	perQueryLimit = 3
)

// Place represents a simplified location result.
type Place struct {
	Name             string  `json:"name"`
	Address          string  `json:"address"`
	Rating           float32 `json:"rating"`
	PlaceID          string  `json:"place_id"`
	UserRatingsTotal int     `json:"user_ratings_total"`
	Interest         string  `json:"interest"`
}

// textSearcher is the subset of *maps.Client the service calls.
type textSearcher interface {
	TextSearch(ctx context.Context, r *maps.TextSearchRequest) (maps.PlacesSearchResponse, error)
}

// PlacesService handles interactions with Google Places API.
type PlacesService struct {
	client textSearcher
}

// NewPlacesService creates a new PlacesService with the given API Key.
func NewPlacesService(apiKey string) (*PlacesService, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &PlacesService{client: client}, nil
}

// Highlights runs one text search per interest at destination and returns
// well-rated places, deduplicated by place ID. A failing query is skipped
// unless every query fails.
func (s *PlacesService) Highlights(ctx context.Context, destination string, interests []string) ([]Place, error) {
	seen := make(map[string]bool)
	var out []Place
	var lastErr error
	failed := 0

	queries := highlightQueries(destination, interests)
	for _, q := range queries {
		resp, err := s.client.TextSearch(ctx, &maps.TextSearchRequest{Query: q.text})
		if err != nil {
			lastErr = err
			failed++
			continue
		}

		kept := 0
		for _, result := range resp.Results {
			if kept >= perQueryLimit {
				break
			}
			if result.Rating < minRating || seen[result.PlaceID] {
				continue
			}
			seen[result.PlaceID] = true
			kept++
			out = append(out, Place{
				Name:             result.Name,
				Address:          result.FormattedAddress,
				Rating:           result.Rating,
				PlaceID:          result.PlaceID,
				UserRatingsTotal: result.UserRatingsTotal,
				Interest:         q.interest,
			})
		}
	}

	if failed == len(queries) && lastErr != nil {
		return nil, fmt.Errorf("places api error: %w", lastErr)
	}
	return out, nil
}

type highlightQuery struct {
	interest string
	text     string
}

func highlightQueries(destination string, interests []string) []highlightQuery {
	destination = strings.TrimSpace(destination)
	if len(interests) == 0 {
		return []highlightQuery{{text: fmt.Sprintf("%s in %s", DefaultQuery, destination)}}
	}
	out := make([]highlightQuery, 0, len(interests))
	for _, interest := range interests {
		out = append(out, highlightQuery{
			interest: interest,
			text:     fmt.Sprintf("best %s in %s", interest, destination),
		})
	}
	return out
}
