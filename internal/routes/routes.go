package routes

import (
	"github.com/gin-gonic/gin"

	"taskbot/internal/handlers"
	"taskbot/internal/middleware"
)

func SetupRoutes(
	r *gin.Engine,
	webhookHandler *handlers.WebhookHandler,
	exportHandler *handlers.ExportHandler,
	channelSecret string,
) *gin.Engine {
	r.GET("/", webhookHandler.Health)
	r.POST("/webhook", middleware.SignatureGuard(channelSecret), webhookHandler.Webhook)
	r.GET("/export", exportHandler.Download)
	return r
}
