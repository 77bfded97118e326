// README: Generation quota lookup for the signed-in caller.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tripmate/internal/http/middleware"
	"tripmate/internal/logger"
)

// QuotaReader reports the caller's remaining generation tokens.
type QuotaReader interface {
	Remaining(ctx context.Context, uid string) (int, error)
}

type QuotaHandler struct {
	quota QuotaReader
	log   *zap.Logger
}

// NewQuotaHandler wires the handler; quota may be nil.
func NewQuotaHandler(quota QuotaReader, log *zap.Logger) *QuotaHandler {
	return &QuotaHandler{quota: quota, log: logger.OrNop(log)}
}

// Get handles GET /api/quota.
func (h *QuotaHandler) Get(c *gin.Context) {
	if h.quota == nil {
		writeError(c, http.StatusNotImplemented, "quota not configured")
		return
	}
	uid := middleware.CallerUID(c)
	if uid == "" {
		writeError(c, http.StatusUnauthorized, "sign in to see your quota")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), lookupTimeout)
	defer cancel()

	remaining, err := h.quota.Remaining(ctx, uid)
	if err != nil {
		h.log.Error("read quota", zap.String("uid", uid), zap.Error(err))
		writeError(c, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"uid": uid, "remaining": remaining})
}
