package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
)

// Message is one outbound message object in the platform's wire format.
type Message map[string]any

// LineService talks to the LINE Messaging API. Sends are fire-and-forget
// from the caller's perspective: failures are logged and returned but
// never retried.
type LineService struct {
	token   string
	baseURL string
	client  *http.Client
}

func NewLineService(channelToken string) *LineService {
	return &LineService{
		token:   channelToken,
		baseURL: "https://api.line.me/v2/bot",
		client:  &http.Client{},
	}
}

type lineResp struct {
	Message string `json:"message"`
}

// Reply answers the event that carried replyToken. At most 5 messages.
func (l *LineService) Reply(replyToken string, messages []Message) error {
	if l == nil || l.token == "" || replyToken == "" {
		log.Printf("[line][skip] token or replyToken empty (token? %v)", l != nil && l.token != "")
		return nil
	}
	body := map[string]any{
		"replyToken": replyToken,
		"messages":   messages,
	}
	return l.post("/message/reply", body, fmt.Sprintf("reply token=%s n=%d", replyToken, len(messages)))
}

// Push sends out-of-band messages to a user or group id.
func (l *LineService) Push(to string, messages []Message) error {
	if l == nil || l.token == "" || to == "" {
		log.Printf("[line][skip] token or target empty (token? %v)", l != nil && l.token != "")
		return nil
	}
	body := map[string]any{
		"to":       to,
		"messages": messages,
	}
	return l.post("/message/push", body, fmt.Sprintf("push to=%s n=%d", to, len(messages)))
}

func (l *LineService) post(path string, body map[string]any, tag string) error {
	b, _ := json.Marshal(body)
	url := l.baseURL + path
	req, _ := http.NewRequest("POST", url, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+l.token)

	log.Printf("[line][send] %s", tag)
	resp, err := l.client.Do(req)
	if err != nil {
		log.Printf("[line][send][err] http: %v", err)
		return err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != 200 {
		var api lineResp
		_ = json.Unmarshal(respBody, &api)
		log.Printf("[line][send][err] status=%d body=%s", resp.StatusCode, string(respBody))
		return fmt.Errorf("line %s failed: status=%d msg=%s", path, resp.StatusCode, api.Message)
	}
	return nil
}
