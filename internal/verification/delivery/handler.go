package delivery

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"kokoshiba-backend/internal/verification/usecase"
	"kokoshiba-backend/pkg/apperror"
)

// Handler exposes the callable verification operations over HTTP.
type Handler struct {
	usecase usecase.VerificationUsecase
	log     zerolog.Logger
}

// NewHandler creates a new Handler.
func NewHandler(u usecase.VerificationUsecase, log zerolog.Logger) *Handler {
	return &Handler{usecase: u, log: log}
}

type requestVerificationRequest struct {
	Email       string `json:"email"`
	ForceResend bool   `json:"forceResend"`
}

type verifyCodeRequest struct {
	Code string `json:"code"`
}

// RequestVerification handles POST /api/verification/request
func (h *Handler) RequestVerification(c *gin.Context) {
	var req requestVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	res, err := h.usecase.RequestCode(c.Request.Context(), callerFrom(c), req.Email, req.ForceResend)
	if err != nil {
		h.respondError(c, err)
		return
	}

	if res.Verified {
		c.JSON(http.StatusOK, gin.H{"verified": true})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"expiresAtMillis": res.ExpiresAtMillis,
		"reused":          res.Reused,
	})
}

// VerifyCode handles POST /api/verification/verify
func (h *Handler) VerifyCode(c *gin.Context) {
	var req verifyCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.usecase.VerifyCode(c.Request.Context(), callerFrom(c), req.Code); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"verified": true})
}

func (h *Handler) respondError(c *gin.Context, err error) {
	httpStatus := apperror.HTTPStatus(err)
	if httpStatus == http.StatusInternalServerError {
		h.log.Error().Err(err).Msg("verification operation failed")
	}
	c.JSON(httpStatus, gin.H{
		"error": gin.H{
			"status":  apperror.Code(err).String(),
			"message": apperror.Message(err),
		},
	})
}

func callerFrom(c *gin.Context) usecase.Caller {
	return usecase.Caller{
		UID:   c.GetString("userID"),
		Email: c.GetString("email"),
	}
}
