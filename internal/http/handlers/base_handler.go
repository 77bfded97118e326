// README: Base handler utilities (JSON helpers, error mapping).
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"tripmate/internal/ai"
	"tripmate/internal/modules/aiusage"
	"tripmate/internal/modules/prompt"
	"tripmate/internal/modules/session"
)

const maxIDLen = 64

type errorResponse struct {
	Error string `json:"error"`
}

// isValidID accepts conversation IDs made of letters, digits and '-' (UUID form).
func isValidID(v string) bool {
	if v == "" || len(v) > maxIDLen {
		return false
	}
	for _, c := range v {
		if (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '-' {
			continue
		}
		return false
	}
	return true
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

func writeSessionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, session.ErrNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, session.ErrConflict):
		writeError(c, http.StatusConflict, err.Error())
	case errors.Is(err, session.ErrEmptyUtterance):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, prompt.ErrDestinationRequired):
		writeError(c, http.StatusUnprocessableEntity, prompt.DestinationRequiredMessage)
	case errors.Is(err, aiusage.ErrInsufficientTokens):
		writeError(c, http.StatusTooManyRequests, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		writeError(c, http.StatusGatewayTimeout, "generation timed out")
	case errors.Is(err, ai.ErrBackend):
		writeError(c, http.StatusBadGateway, "generation backend unavailable")
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}

// conversationID reads and validates the :id path parameter.
func conversationID(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid conversation id")
		return "", false
	}
	return id, true
}
