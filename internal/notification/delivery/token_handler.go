package delivery

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"kokoshiba-backend/internal/notification/usecase"
)

// TokenHandler exposes the device-token registration surface over HTTP. This
// is the append path for users/{uid}.fcmTokens; removal also backs the
// pruner's array-remove semantics.
type TokenHandler struct {
	notifier usecase.NotificationUsecase
	log      zerolog.Logger
}

// NewTokenHandler creates a new TokenHandler.
func NewTokenHandler(notifier usecase.NotificationUsecase, log zerolog.Logger) *TokenHandler {
	return &TokenHandler{notifier: notifier, log: log}
}

type registerTokenRequest struct {
	Token string `json:"token" binding:"required"`
}

// RegisterToken handles POST /api/fcm/register
func (h *TokenHandler) RegisterToken(c *gin.Context) {
	var req registerTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token is required"})
		return
	}

	userID := c.GetString("userID")
	if err := h.notifier.RegisterToken(c.Request.Context(), userID, req.Token); err != nil {
		h.log.Error().Err(err).Str("uid", userID).Msg("failed to register FCM token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to register token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// UnregisterToken handles DELETE /api/fcm/:token
func (h *TokenHandler) UnregisterToken(c *gin.Context) {
	token := c.Param("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token is required"})
		return
	}

	userID := c.GetString("userID")
	if err := h.notifier.UnregisterToken(c.Request.Context(), userID, token); err != nil {
		h.log.Error().Err(err).Str("uid", userID).Msg("failed to unregister FCM token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to unregister token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
