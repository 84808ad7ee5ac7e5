package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	authDelivery "kokoshiba-backend/internal/auth/delivery"
	notificationDelivery "kokoshiba-backend/internal/notification/delivery"
	verificationDelivery "kokoshiba-backend/internal/verification/delivery"
)

// SetupRoutes wires the HTTP surface: the callable verification operations and
// the device-token registration endpoints, both behind bearer auth.
func SetupRoutes(r *gin.Engine, verificationHandler *verificationDelivery.Handler, tokenHandler *notificationDelivery.TokenHandler, jwtSecret string) {
	api := r.Group("/api")
	{
		// Health check (no auth required)
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		// Email verification routes (protected)
		verification := api.Group("/verification")
		verification.Use(authDelivery.AuthMiddleware(jwtSecret))
		{
			verification.POST("/request", verificationHandler.RequestVerification)
			verification.POST("/verify", verificationHandler.VerifyCode)
		}

		// FCM routes (protected)
		fcm := api.Group("/fcm")
		fcm.Use(authDelivery.AuthMiddleware(jwtSecret))
		{
			fcm.POST("/register", tokenHandler.RegisterToken)
			fcm.DELETE("/:token", tokenHandler.UnregisterToken)
		}
	}
}
