// README: Handler tests for the conversation API.
package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tripmate/internal/ai"
	"tripmate/internal/http/handlers"
	"tripmate/internal/http/middleware"
	"tripmate/internal/infra"
	"tripmate/internal/maps"
	"tripmate/internal/modules/aiusage"
	"tripmate/internal/modules/itinerary"
	"tripmate/internal/modules/prompt"
	"tripmate/internal/modules/session"
)

type stubGenerator struct {
	reply string
	err   error
}

func (s *stubGenerator) Generate(_ context.Context, _ ai.Request) (string, error) {
	return s.reply, s.err
}

type stubSpender struct{ err error }

func (s stubSpender) UseToken(context.Context, string) error { return s.err }

type stubLister struct {
	records []itinerary.Record
	limits  []int
}

func (s *stubLister) List(_ context.Context, _ string, limit int) ([]itinerary.Record, error) {
	s.limits = append(s.limits, limit)
	return s.records, nil
}

type stubFinder struct {
	places []maps.Place
	err    error
}

func (s stubFinder) Highlights(context.Context, string, []string) ([]maps.Place, error) {
	return s.places, s.err
}

type fixture struct {
	router *gin.Engine
	gen    *stubGenerator
}

func newFixture(t *testing.T, usage session.TokenSpender, lister handlers.ItineraryLister, finder handlers.HighlightFinder) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	gen := &stubGenerator{reply: "Sounds lovely!"}
	svc := session.NewService(session.ServiceDeps{
		Store:     session.NewMemoryStore(),
		Generator: gen,
		Usage:     usage,
	})
	h := handlers.NewConversationHandler(svc, lister, finder, nil)

	r := gin.New()
	api := r.Group("/api/conversations")
	api.POST("", h.Create)
	api.POST("/:id/messages", h.Message)
	api.GET("/:id/preferences", h.Preferences)
	api.GET("/:id/history", h.History)
	api.GET("/:id/itinerary/prompt", h.ItineraryPrompt)
	api.POST("/:id/itinerary", h.Itinerary)
	api.GET("/:id/itineraries", h.Itineraries)
	api.GET("/:id/highlights", h.Highlights)
	api.DELETE("/:id", h.Reset)
	return &fixture{router: r, gen: gen}
}

func (f *fixture) do(t *testing.T, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	out := map[string]any{}
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w, out
}

func (f *fixture) create(t *testing.T) string {
	t.Helper()
	w, body := f.do(t, http.MethodPost, "/api/conversations", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, prompt.Collection(), body["greeting"])
	id, _ := body["id"].(string)
	require.NotEmpty(t, id)
	return id
}

func TestMessageUpdatesPreferences(t *testing.T) {
	f := newFixture(t, nil, nil, nil)
	id := f.create(t)

	w, body := f.do(t, http.MethodPost, "/api/conversations/"+id+"/messages",
		map[string]string{"message": "I want to visit Goa for 5 days with a budget of $2000"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Sounds lovely!", body["reply"])
	assert.Equal(t, false, body["degraded"])

	prefs := body["preferences"].(map[string]any)
	assert.Equal(t, "goa", prefs["destination"])
	assert.EqualValues(t, 5, prefs["duration"])
	assert.Equal(t, "USD", prefs["currency"])
	assert.Contains(t, body["summary"], "- Destination: goa")

	w, body = f.do(t, http.MethodGet, "/api/conversations/"+id+"/history", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["history"], 1)
}

func TestMessageBackendFailureRecordsFallback(t *testing.T) {
	f := newFixture(t, nil, nil, nil)
	f.gen.err = &ai.BackendError{Provider: "gemini", Err: errors.New("503")}
	id := f.create(t)

	w, body := f.do(t, http.MethodPost, "/api/conversations/"+id+"/messages",
		map[string]string{"message": "trip to paris"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, session.FallbackReply, body["reply"])
	assert.Equal(t, true, body["degraded"])
	assert.Equal(t, "paris", body["preferences"].(map[string]any)["destination"])
}

func TestMessageValidation(t *testing.T) {
	f := newFixture(t, nil, nil, nil)

	w, _ := f.do(t, http.MethodPost, "/api/conversations/bad$id/messages", map[string]string{"message": "hi"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = f.do(t, http.MethodPost, "/api/conversations/abc/messages", map[string]string{"message": "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/conversations/abc/messages", bytes.NewBufferString("{"))
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUnknownConversationIsNotFound(t *testing.T) {
	f := newFixture(t, nil, nil, nil)
	for _, path := range []string{"/preferences", "/history", "/itinerary/prompt"} {
		w, _ := f.do(t, http.MethodGet, "/api/conversations/missing"+path, nil)
		assert.Equal(t, http.StatusNotFound, w.Code, path)
	}
}

func TestItineraryRequiresDestination(t *testing.T) {
	f := newFixture(t, nil, nil, nil)
	id := f.create(t)

	w, body := f.do(t, http.MethodGet, "/api/conversations/"+id+"/itinerary/prompt", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, prompt.DestinationRequiredMessage, body["error"])

	w, _ = f.do(t, http.MethodPost, "/api/conversations/"+id+"/itinerary", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestItineraryGeneration(t *testing.T) {
	f := newFixture(t, nil, nil, nil)
	id := f.create(t)
	f.do(t, http.MethodPost, "/api/conversations/"+id+"/messages", map[string]string{"message": "going to kyoto for 3 days"})

	w, body := f.do(t, http.MethodGet, "/api/conversations/"+id+"/itinerary/prompt", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, body["prompt"], "itinerary for kyoto")

	f.gen.reply = "Day 1: temples"
	w, body = f.do(t, http.MethodPost, "/api/conversations/"+id+"/itinerary", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Day 1: temples", body["itinerary"])

	f.gen.err = &ai.BackendError{Provider: "gemini", Err: errors.New("down")}
	w, _ = f.do(t, http.MethodPost, "/api/conversations/"+id+"/itinerary", nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

type stubVerifier struct{}

func (stubVerifier) VerifyIDToken(context.Context, string) (*infra.Caller, error) {
	return &infra.Caller{UID: "traveller1"}, nil
}

// tokenVerifier treats the bearer token as the caller's UID.
type tokenVerifier struct{}

func (tokenVerifier) VerifyIDToken(_ context.Context, tok string) (*infra.Caller, error) {
	return &infra.Caller{UID: tok}, nil
}

func TestQuotaExhausted(t *testing.T) {
	gin.SetMode(gin.TestMode)
	gen := &stubGenerator{reply: "ok"}
	svc := session.NewService(session.ServiceDeps{
		Store:     session.NewMemoryStore(),
		Generator: gen,
		Usage:     stubSpender{err: aiusage.ErrInsufficientTokens},
	})
	h := handlers.NewConversationHandler(svc, nil, nil, nil)
	r := gin.New()
	r.POST("/authed/:id/messages", middleware.Auth(stubVerifier{}), h.Message)
	r.POST("/anon/:id/messages", middleware.Auth(nil), h.Message)

	req := httptest.NewRequest(http.MethodPost, "/authed/abc/messages", bytes.NewBufferString(`{"message":"hello"}`))
	req.Header.Set("Authorization", "Bearer token")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	_, err := svc.History(context.Background(), "", "abc")
	assert.ErrorIs(t, err, session.ErrNotFound, "no turn may be recorded when quota is exhausted")

	// Anonymous callers are never charged.
	req = httptest.NewRequest(http.MethodPost, "/anon/abc/messages", bytes.NewBufferString(`{"message":"hello"}`))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestResetClearsConversation(t *testing.T) {
	f := newFixture(t, nil, nil, nil)
	id := f.create(t)
	f.do(t, http.MethodPost, "/api/conversations/"+id+"/messages", map[string]string{"message": "trip to goa"})

	w, body := f.do(t, http.MethodDelete, "/api/conversations/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	prefs := body["preferences"].(map[string]any)
	assert.Nil(t, prefs["destination"])
	assert.Equal(t, "INR", prefs["currency"])

	_, body = f.do(t, http.MethodGet, "/api/conversations/"+id+"/history", nil)
	assert.Empty(t, body["history"])
}

func TestItinerariesAndHighlights(t *testing.T) {
	f := newFixture(t, nil, nil, nil)
	id := f.create(t)
	w, _ := f.do(t, http.MethodGet, "/api/conversations/"+id+"/itineraries", nil)
	assert.Equal(t, http.StatusNotImplemented, w.Code)
	w, _ = f.do(t, http.MethodGet, "/api/conversations/"+id+"/highlights", nil)
	assert.Equal(t, http.StatusNotImplemented, w.Code)

	f = newFixture(t, nil,
		&stubLister{records: []itinerary.Record{{ID: 7, ConversationID: "x", Destination: "goa", Content: "plan"}}},
		stubFinder{places: []maps.Place{{Name: "Baga Beach", PlaceID: "p1", Rating: 4.5}}},
	)
	id = f.create(t)

	w, body := f.do(t, http.MethodGet, "/api/conversations/"+id+"/itineraries", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["itineraries"], 1)

	w, _ = f.do(t, http.MethodGet, "/api/conversations/"+id+"/highlights", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	f.do(t, http.MethodPost, "/api/conversations/"+id+"/messages", map[string]string{"message": "trip to goa"})
	w, body = f.do(t, http.MethodGet, "/api/conversations/"+id+"/highlights", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "goa", body["destination"])
	assert.Len(t, body["places"], 1)
}

func TestHighlightsLookupFailure(t *testing.T) {
	f := newFixture(t, nil, nil, stubFinder{err: errors.New("denied")})
	id := f.create(t)
	f.do(t, http.MethodPost, "/api/conversations/"+id+"/messages", map[string]string{"message": "trip to goa"})
	w, _ := f.do(t, http.MethodGet, "/api/conversations/"+id+"/highlights", nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestConversationsAreScopedToCaller(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := session.NewService(session.ServiceDeps{
		Store:     session.NewMemoryStore(),
		Generator: &stubGenerator{reply: "ok"},
	})
	h := handlers.NewConversationHandler(svc, &stubLister{}, stubFinder{}, nil)
	r := gin.New()
	api := r.Group("/api/conversations", middleware.Auth(tokenVerifier{}))
	api.POST("", h.Create)
	api.POST("/:id/messages", h.Message)
	api.GET("/:id/preferences", h.Preferences)
	api.GET("/:id/history", h.History)
	api.GET("/:id/itinerary/prompt", h.ItineraryPrompt)
	api.POST("/:id/itinerary", h.Itinerary)
	api.GET("/:id/itineraries", h.Itineraries)
	api.GET("/:id/highlights", h.Highlights)
	api.DELETE("/:id", h.Reset)

	as := func(uid, method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+uid)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := as("alice", http.MethodPost, "/api/conversations", "")
	require.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	base := "/api/conversations/" + created.ID
	require.Equal(t, http.StatusOK, as("alice", http.MethodPost, base+"/messages", `{"message":"trip to goa"}`).Code)

	for _, tc := range []struct{ method, path, body string }{
		{http.MethodGet, base + "/preferences", ""},
		{http.MethodGet, base + "/history", ""},
		{http.MethodGet, base + "/itinerary/prompt", ""},
		{http.MethodPost, base + "/itinerary", ""},
		{http.MethodGet, base + "/itineraries", ""},
		{http.MethodGet, base + "/highlights", ""},
		{http.MethodPost, base + "/messages", `{"message":"trip to paris"}`},
		{http.MethodDelete, base, ""},
	} {
		w := as("mallory", tc.method, tc.path, tc.body)
		assert.Equal(t, http.StatusNotFound, w.Code, "%s %s", tc.method, tc.path)
	}

	w = as("alice", http.MethodGet, base+"/preferences", "")
	require.Equal(t, http.StatusOK, w.Code)
	var prefs struct {
		Preferences struct {
			Destination string `json:"destination"`
		} `json:"preferences"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &prefs))
	assert.Equal(t, "goa", prefs.Preferences.Destination)

	history, err := svc.History(context.Background(), "alice", created.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestItinerariesLimit(t *testing.T) {
	lister := &stubLister{}
	f := newFixture(t, nil, lister, nil)
	id := f.create(t)
	path := "/api/conversations/" + id + "/itineraries"

	for _, q := range []string{"", "?limit=5", "?limit=100000"} {
		w, _ := f.do(t, http.MethodGet, path+q, nil)
		require.Equal(t, http.StatusOK, w.Code, q)
	}
	assert.Equal(t, []int{itinerary.DefaultListLimit, 5, itinerary.MaxListLimit}, lister.limits)

	for _, q := range []string{"?limit=abc", "?limit=0", "?limit=-3"} {
		w, _ := f.do(t, http.MethodGet, path+q, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, q)
	}
	assert.Len(t, lister.limits, 3)

	w, _ := f.do(t, http.MethodGet, "/api/conversations/missing/itineraries", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
