package handlers

import (
	"log"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"taskbot/internal/services"
)

type ExportHandler struct {
	service services.ExportService
}

func NewExportHandler(service services.ExportService) *ExportHandler {
	return &ExportHandler{service: service}
}

// GET /export?token=...
func (h *ExportHandler) Download(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing token"})
		return
	}
	path, err := h.service.Generate(c.Request.Context(), token)
	if err != nil {
		log.Printf("[export][err] %v", err)
		c.JSON(http.StatusForbidden, gin.H{"error": "invalid or expired link"})
		return
	}
	log.Printf("[export][ok] file=%s", path)
	c.FileAttachment(path, filepath.Base(path))
}
