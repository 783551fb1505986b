package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const apiURL = "https://api.telegram.org/bot%s/%s"

// Client talks to the Telegram Bot API. It is used for display-name lookups
// and for pushing notification messages with a single "open app" button.
type Client struct {
	token      string
	httpClient *http.Client
}

// NewClient creates a Telegram Bot API client.
func NewClient(token string) *Client {
	return &Client{
		token:      token,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Enabled reports whether a bot token is configured.
func (c *Client) Enabled() bool {
	return c.token != ""
}

// Chat is the subset of the getChat response the platform consumes.
type Chat struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Username  string `json:"username"`
}

// DisplayName returns the best human-readable name for the chat.
func (ch *Chat) DisplayName() string {
	if ch.FirstName != "" {
		if ch.LastName != "" {
			return ch.FirstName + " " + ch.LastName
		}
		return ch.FirstName
	}
	return ch.Username
}

// GetChat resolves a chat/user ID to its profile.
func (c *Client) GetChat(ctx context.Context, chatID int64) (*Chat, error) {
	raw, err := c.doRequest(ctx, "getChat", map[string]interface{}{"chat_id": chatID})
	if err != nil {
		return nil, err
	}

	var chat Chat
	if err := json.Unmarshal(raw, &chat); err != nil {
		return nil, err
	}
	return &chat, nil
}

// SendAppMessage pushes a templated message with one inline button that opens
// the Mini App at the given URL.
func (c *Client) SendAppMessage(ctx context.Context, chatID int64, text, buttonText, appURL string) error {
	params := map[string]interface{}{
		"chat_id":    chatID,
		"text":       text,
		"parse_mode": "HTML",
	}
	if appURL != "" {
		params["reply_markup"] = map[string]interface{}{
			"inline_keyboard": [][]map[string]interface{}{
				{{"text": buttonText, "web_app": map[string]string{"url": appURL}}},
			},
		}
	}

	_, err := c.doRequest(ctx, "sendMessage", params)
	return err
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	Description string          `json:"description"`
}

func (c *Client) doRequest(ctx context.Context, method string, params map[string]interface{}) (json.RawMessage, error) {
	body, err := json.Marshal(params)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf(apiURL, c.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var apiResp apiResponse
	if err := json.Unmarshal(data, &apiResp); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", method, err)
	}
	if !apiResp.OK {
		return nil, fmt.Errorf("telegram %s: %s", method, apiResp.Description)
	}
	return apiResp.Result, nil
}
