package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"taskbot/internal/bot"
)

type WebhookHandler struct {
	router *bot.Router
}

func NewWebhookHandler(router *bot.Router) *WebhookHandler {
	return &WebhookHandler{router: router}
}

type webhookBody struct {
	Events []struct {
		Type       string `json:"type"`
		ReplyToken string `json:"replyToken"`
		Source     struct {
			UserID  string `json:"userId"`
			GroupID string `json:"groupId"`
		} `json:"source"`
		Message struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"message"`
		Postback struct {
			Data string `json:"data"`
		} `json:"postback"`
	} `json:"events"`
}

// POST /webhook
// The platform retries on non-200, so the response is 200 regardless of
// per-event outcome; failures surface to the user as chat replies only.
func (h *WebhookHandler) Webhook(c *gin.Context) {
	var body webhookBody
	if err := c.ShouldBindJSON(&body); err != nil {
		log.Printf("[webhook][bind][err] %v", err)
		c.Status(http.StatusOK)
		return
	}
	log.Printf("[webhook] incoming events=%d", len(body.Events))

	for _, ev := range body.Events {
		e := bot.Event{
			Type:       ev.Type,
			ReplyToken: ev.ReplyToken,
			UserID:     ev.Source.UserID,
			GroupID:    ev.Source.GroupID,
		}
		switch ev.Type {
		case "message":
			if ev.Message.Type != "text" {
				continue
			}
			e.Text = ev.Message.Text
		case "postback":
			e.Postback = ev.Postback.Data
		default:
			continue
		}
		h.router.Dispatch(c.Request.Context(), e)
	}
	c.Status(http.StatusOK)
}

// GET /
func (h *WebhookHandler) Health(c *gin.Context) {
	c.String(http.StatusOK, "Bot is running!")
}
