// README: Conversation handlers (chat turns, preferences, itineraries, highlights).
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tripmate/internal/ai"
	"tripmate/internal/http/middleware"
	"tripmate/internal/logger"
	"tripmate/internal/maps"
	"tripmate/internal/modules/itinerary"
	"tripmate/internal/modules/preference"
	"tripmate/internal/modules/prompt"
	"tripmate/internal/modules/session"
)

const (
	chatTimeout      = 30 * time.Second
	itineraryTimeout = 60 * time.Second
	lookupTimeout    = 10 * time.Second
)

// ItineraryLister reads archived itineraries.
type ItineraryLister interface {
	List(ctx context.Context, conversationID string, limit int) ([]itinerary.Record, error)
}

// HighlightFinder looks up places worth visiting at a destination.
type HighlightFinder interface {
	Highlights(ctx context.Context, destination string, interests []string) ([]maps.Place, error)
}

type ConversationHandler struct {
	sessions    *session.Service
	itineraries ItineraryLister
	places      HighlightFinder
	log         *zap.Logger
}

// NewConversationHandler wires the handler; itineraries and places may be nil.
func NewConversationHandler(sessions *session.Service, itineraries ItineraryLister, places HighlightFinder, log *zap.Logger) *ConversationHandler {
	return &ConversationHandler{
		sessions:    sessions,
		itineraries: itineraries,
		places:      places,
		log:         logger.OrNop(log),
	}
}

type messageReq struct {
	Message string `json:"message"`
}

type preferencesResp struct {
	Preferences preference.State `json:"preferences"`
	Summary     string           `json:"summary"`
}

// Create handles POST /api/conversations.
func (h *ConversationHandler) Create(c *gin.Context) {
	sess, err := h.sessions.Create(c.Request.Context(), middleware.CallerUID(c))
	if err != nil {
		writeSessionError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, gin.H{"id": sess.ID, "greeting": prompt.Collection()})
}

// Message handles POST /api/conversations/:id/messages.
func (h *ConversationHandler) Message(c *gin.Context) {
	id, ok := conversationID(c)
	if !ok {
		return
	}
	var req messageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), chatTimeout)
	defer cancel()

	res, err := h.sessions.Chat(ctx, middleware.CallerUID(c), id, req.Message)
	if res == nil {
		writeSessionError(c, err)
		return
	}
	// A backend failure still yields a recorded turn with the fallback reply.
	writeJSON(c, http.StatusOK, gin.H{
		"reply":       res.Reply,
		"preferences": res.Preferences,
		"updated":     res.Updated,
		"summary":     prompt.Summary(res.Preferences),
		"degraded":    errors.Is(err, ai.ErrBackend),
	})
}

// Preferences handles GET /api/conversations/:id/preferences.
func (h *ConversationHandler) Preferences(c *gin.Context) {
	id, ok := conversationID(c)
	if !ok {
		return
	}
	prefs, err := h.sessions.Preferences(c.Request.Context(), middleware.CallerUID(c), id)
	if err != nil {
		writeSessionError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, preferencesResp{Preferences: prefs, Summary: prompt.Summary(prefs)})
}

// History handles GET /api/conversations/:id/history.
func (h *ConversationHandler) History(c *gin.Context) {
	id, ok := conversationID(c)
	if !ok {
		return
	}
	turns, err := h.sessions.History(c.Request.Context(), middleware.CallerUID(c), id)
	if err != nil {
		writeSessionError(c, err)
		return
	}
	if turns == nil {
		turns = []session.Turn{}
	}
	writeJSON(c, http.StatusOK, gin.H{"id": id, "history": turns})
}

// ItineraryPrompt handles GET /api/conversations/:id/itinerary/prompt.
func (h *ConversationHandler) ItineraryPrompt(c *gin.Context) {
	id, ok := conversationID(c)
	if !ok {
		return
	}
	text, err := h.sessions.ItineraryPrompt(c.Request.Context(), middleware.CallerUID(c), id)
	if err != nil {
		writeSessionError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"prompt": text})
}

// Itinerary handles POST /api/conversations/:id/itinerary.
func (h *ConversationHandler) Itinerary(c *gin.Context) {
	id, ok := conversationID(c)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), itineraryTimeout)
	defer cancel()

	text, err := h.sessions.Itinerary(ctx, middleware.CallerUID(c), id)
	if err != nil {
		writeSessionError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"itinerary": text})
}

// Itineraries handles GET /api/conversations/:id/itineraries.
func (h *ConversationHandler) Itineraries(c *gin.Context) {
	id, ok := conversationID(c)
	if !ok {
		return
	}
	if h.itineraries == nil {
		writeError(c, http.StatusNotImplemented, "itinerary archive not configured")
		return
	}
	limit := itinerary.DefaultListLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(c, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = itinerary.ClampLimit(n)
	}
	if _, err := h.sessions.History(c.Request.Context(), middleware.CallerUID(c), id); err != nil {
		writeSessionError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), lookupTimeout)
	defer cancel()

	records, err := h.itineraries.List(ctx, id, limit)
	if err != nil {
		h.log.Error("list itineraries", zap.String("conversation_id", id), zap.Error(err))
		writeError(c, http.StatusInternalServerError, "internal error")
		return
	}
	if records == nil {
		records = []itinerary.Record{}
	}
	writeJSON(c, http.StatusOK, gin.H{"id": id, "itineraries": records})
}

// Highlights handles GET /api/conversations/:id/highlights.
func (h *ConversationHandler) Highlights(c *gin.Context) {
	id, ok := conversationID(c)
	if !ok {
		return
	}
	if h.places == nil {
		writeError(c, http.StatusNotImplemented, "places lookup not configured")
		return
	}
	prefs, err := h.sessions.Preferences(c.Request.Context(), middleware.CallerUID(c), id)
	if err != nil {
		writeSessionError(c, err)
		return
	}
	if prefs.Destination == nil || strings.TrimSpace(*prefs.Destination) == "" {
		writeSessionError(c, prompt.ErrDestinationRequired)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), lookupTimeout)
	defer cancel()

	places, err := h.places.Highlights(ctx, *prefs.Destination, prefs.Interests)
	if err != nil {
		h.log.Warn("highlights lookup failed", zap.String("conversation_id", id), zap.Error(err))
		writeError(c, http.StatusBadGateway, "places lookup failed")
		return
	}
	if places == nil {
		places = []maps.Place{}
	}
	writeJSON(c, http.StatusOK, gin.H{"destination": *prefs.Destination, "places": places})
}

// Reset handles DELETE /api/conversations/:id.
func (h *ConversationHandler) Reset(c *gin.Context) {
	id, ok := conversationID(c)
	if !ok {
		return
	}
	sess, err := h.sessions.Reset(c.Request.Context(), middleware.CallerUID(c), id)
	if err != nil {
		writeSessionError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"id": sess.ID, "preferences": sess.Snapshot()})
}
