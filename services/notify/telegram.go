// Package notify implements the Telegram transport: a minimal Bot API
// client plus the alert formatter used by the scanner.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/kamilkurczyna/okazje-bot/logger"
	"github.com/kamilkurczyna/okazje-bot/pkg/errors"
)

const defaultAPIBase = "https://api.telegram.org"

// parseModeMarkdown is Telegram's legacy Markdown mode. A message that
// fails to parse under it is retried as plain text.
const parseModeMarkdown = "Markdown"

// Update is one entry of the getUpdates stream
type Update struct {
	UpdateID int64    `json:"update_id"`
	Message  *Message `json:"message"`
}

// Message is an incoming Telegram message
type Message struct {
	MessageID int64  `json:"message_id"`
	Text      string `json:"text"`
	Chat      Chat   `json:"chat"`
}

// Chat identifies the conversation a message belongs to
type Chat struct {
	ID int64 `json:"id"`
}

// Client is a minimal Telegram Bot API client
type Client struct {
	token   string
	baseURL string
	client  *http.Client
	log     *logger.Logger
}

// NewClient creates a Telegram client. The HTTP timeout must leave room
// for long polling, which holds requests open up to pollTimeout.
func NewClient(token string) *Client {
	return &Client{
		token:   token,
		baseURL: defaultAPIBase,
		client:  &http.Client{Timeout: 90 * time.Second},
		log:     logger.ForBot(),
	}
}

// SetBaseURL overrides the API endpoint, used in tests
func (c *Client) SetBaseURL(baseURL string) {
	c.baseURL = baseURL
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	Description string          `json:"description"`
	ErrorCode   int             `json:"error_code"`
}

// SendMessage delivers text to chatID as Markdown. Telegram rejects
// messages with broken Markdown entities with a 400; those are retried
// once as plain text so user-supplied titles cannot lose a message.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) error {
	err := c.sendMessage(ctx, chatID, text, parseModeMarkdown)
	if err == nil {
		return nil
	}

	var apiErr *apiError
	if stderrors.As(err, &apiErr) && apiErr.code == http.StatusBadRequest {
		c.log.Debug().Err(err).Msg("Markdown rejected, retrying as plain text")
		return c.sendMessage(ctx, chatID, text, "")
	}
	return err
}

func (c *Client) sendMessage(ctx context.Context, chatID int64, text, parseMode string) error {
	payload := map[string]any{
		"chat_id": chatID,
		"text":    text,
	}
	if parseMode != "" {
		payload["parse_mode"] = parseMode
	}

	_, err := c.call(ctx, "sendMessage", payload)
	return err
}

// GetUpdates long-polls for incoming updates after offset
func (c *Client) GetUpdates(ctx context.Context, offset int64, pollTimeout time.Duration) ([]Update, error) {
	raw, err := c.call(ctx, "getUpdates", map[string]any{
		"offset":  offset,
		"timeout": int(pollTimeout.Seconds()),
	})
	if err != nil {
		return nil, err
	}

	var updates []Update
	if err := json.Unmarshal(raw, &updates); err != nil {
		return nil, errors.NewNotify("failed to decode updates", err)
	}
	return updates, nil
}

// DropPendingUpdates discards updates queued while the bot was down
func (c *Client) DropPendingUpdates(ctx context.Context) error {
	updates, err := c.GetUpdates(ctx, -1, 0)
	if err != nil {
		return err
	}
	if len(updates) == 0 {
		return nil
	}
	_, err = c.call(ctx, "getUpdates", map[string]any{
		"offset":  updates[len(updates)-1].UpdateID + 1,
		"timeout": 0,
	})
	return err
}

// apiError carries the Telegram error code so callers can distinguish
// a Markdown rejection from a transport failure
type apiError struct {
	code        int
	description string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("telegram api error %d: %s", e.code, e.description)
}

func (c *Client) call(ctx context.Context, method string, payload map[string]any) (json.RawMessage, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.NewNotify("failed to encode request", err)
	}

	url := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, errors.NewNotify("failed to create request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, errors.NewNotify(method+" request failed", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.NewNotify("failed to read response", err)
	}

	var parsed apiResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, errors.NewNotify("failed to decode response", err)
	}

	if !parsed.OK {
		return nil, errors.NewNotify(method+" rejected", &apiError{
			code:        parsed.ErrorCode,
			description: parsed.Description,
		})
	}
	return parsed.Result, nil
}
