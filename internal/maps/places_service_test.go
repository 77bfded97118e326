package maps

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"googlemaps.github.io/maps"
)

type stubSearcher struct {
	responses map[string]maps.PlacesSearchResponse
	errs      map[string]error
	queries   []string
}

func (s *stubSearcher) TextSearch(_ context.Context, r *maps.TextSearchRequest) (maps.PlacesSearchResponse, error) {
	s.queries = append(s.queries, r.Query)
	if err := s.errs[r.Query]; err != nil {
		return maps.PlacesSearchResponse{}, err
	}
	return s.responses[r.Query], nil
}

func result(id, name string, rating float32) maps.PlacesSearchResult {
	return maps.PlacesSearchResult{PlaceID: id, Name: name, Rating: rating}
}

func TestHighlightQueries(t *testing.T) {
	got := highlightQueries(" goa ", nil)
	require.Len(t, got, 1)
	assert.Equal(t, "top attractions in goa", got[0].text)

	got = highlightQueries("goa", []string{"beach", "food"})
	require.Len(t, got, 2)
	assert.Equal(t, "best beach in goa", got[0].text)
	assert.Equal(t, "food", got[1].interest)
}

func TestHighlightsFiltersAndDedupes(t *testing.T) {
	stub := &stubSearcher{responses: map[string]maps.PlacesSearchResponse{
		"best beach in goa": {Results: []maps.PlacesSearchResult{
			result("a", "Baga Beach", 4.5),
			result("b", "Dull Beach", 3.1),
			result("c", "Palolem", 4.7),
		}},
		"best food in goa": {Results: []maps.PlacesSearchResult{
			result("a", "Baga Beach", 4.5),
			result("d", "Fish Thali Place", 4.2),
		}},
	}}
	svc := &PlacesService{client: stub}

	places, err := svc.Highlights(context.Background(), "goa", []string{"beach", "food"})
	require.NoError(t, err)
	require.Len(t, places, 3)
	assert.Equal(t, []string{"Baga Beach", "Palolem", "Fish Thali Place"},
		[]string{places[0].Name, places[1].Name, places[2].Name})
	assert.Equal(t, "food", places[2].Interest)
}

func TestHighlightsCapsPerQuery(t *testing.T) {
	stub := &stubSearcher{responses: map[string]maps.PlacesSearchResponse{
		"top attractions in rome": {Results: []maps.PlacesSearchResult{
			result("1", "a", 4.9), result("2", "b", 4.9), result("3", "c", 4.9), result("4", "d", 4.9),
		}},
	}}
	places, err := (&PlacesService{client: stub}).Highlights(context.Background(), "rome", nil)
	require.NoError(t, err)
	assert.Len(t, places, perQueryLimit)
}

func TestHighlightsPartialFailure(t *testing.T) {
	stub := &stubSearcher{
		errs: map[string]error{"best food in goa": errors.New("quota")},
		responses: map[string]maps.PlacesSearchResponse{
			"best beach in goa": {Results: []maps.PlacesSearchResult{result("a", "Baga", 4.4)}},
		},
	}
	places, err := (&PlacesService{client: stub}).Highlights(context.Background(), "goa", []string{"beach", "food"})
	require.NoError(t, err)
	assert.Len(t, places, 1)
}

func TestHighlightsAllQueriesFail(t *testing.T) {
	boom := errors.New("denied")
	stub := &stubSearcher{errs: map[string]error{"top attractions in goa": boom}}
	_, err := (&PlacesService{client: stub}).Highlights(context.Background(), "goa", nil)
	require.ErrorIs(t, err, boom)
}
