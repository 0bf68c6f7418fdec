package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/open-builders/giveaway-bot/internal/common/logger"
	"github.com/open-builders/giveaway-bot/internal/features/giveaway/models"
)

const defaultAPIURL = "https://api.telegram.org"

// Client is a minimal Telegram Bot API client covering what the giveaway bot posts.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	log        zerolog.Logger
}

// RPSError is returned when Telegram rate limits the bot.
type RPSError struct {
	Msg        string
	RetryAfter time.Duration
}

func (e *RPSError) Error() string {
	return e.Msg
}

// APIError is a non-ok Bot API response.
type APIError struct {
	Method      string
	Code        int
	Description string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegram %s: %d %s", e.Method, e.Code, e.Description)
}

type response struct {
	Ok          bool            `json:"ok"`
	ErrorCode   int             `json:"error_code,omitempty"`
	Description string          `json:"description,omitempty"`
	Result      json.RawMessage `json:"result,omitempty"`
	Parameters  *struct {
		RetryAfter int `json:"retry_after"`
	} `json:"parameters,omitempty"`
}

// Message is the subset of the Bot API Message object the bot reads back.
type Message struct {
	MessageID int64 `json:"message_id"`
	Chat      struct {
		ID int64 `json:"id"`
	} `json:"chat"`
}

func NewClient(baseURL, token string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = defaultAPIURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		log:        logger.Component("telegram"),
	}
}

// SendMessage posts HTML text and returns the created message.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) (*Message, error) {
	params := url.Values{
		"chat_id":    {strconv.FormatInt(chatID, 10)},
		"text":       {text},
		"parse_mode": {"HTML"},
	}
	var msg Message
	if err := c.call(ctx, "sendMessage", params, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// EditMessageText replaces the text of an existing message.
func (c *Client) EditMessageText(ctx context.Context, chatID, messageID int64, text string) error {
	params := url.Values{
		"chat_id":    {strconv.FormatInt(chatID, 10)},
		"message_id": {strconv.FormatInt(messageID, 10)},
		"text":       {text},
		"parse_mode": {"HTML"},
	}
	return c.call(ctx, "editMessageText", params, nil)
}

// SetMessageReaction sets the bot's own reaction so members can tap it to enter.
func (c *Client) SetMessageReaction(ctx context.Context, chatID, messageID int64, emoji string) error {
	reaction, err := json.Marshal([]map[string]string{{"type": "emoji", "emoji": emoji}})
	if err != nil {
		return err
	}
	params := url.Values{
		"chat_id":    {strconv.FormatInt(chatID, 10)},
		"message_id": {strconv.FormatInt(messageID, 10)},
		"reaction":   {string(reaction)},
	}
	return c.call(ctx, "setMessageReaction", params, nil)
}

func (c *Client) call(ctx context.Context, method string, params url.Values, result interface{}) error {
	endpoint := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(params.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send %s: %w", method, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read %s response: %w", method, err)
	}

	var r response
	if err := json.Unmarshal(body, &r); err != nil {
		return fmt.Errorf("failed to parse %s response (status %d): %w", method, resp.StatusCode, err)
	}

	if !r.Ok {
		if r.ErrorCode == http.StatusTooManyRequests {
			retry := time.Second
			if r.Parameters != nil && r.Parameters.RetryAfter > 0 {
				retry = time.Duration(r.Parameters.RetryAfter) * time.Second
			}
			c.log.Warn().Str("method", method).Dur("retry_after", retry).Msg("Rate limited by Telegram")
			return &RPSError{Msg: r.Description, RetryAfter: retry}
		}
		return &APIError{Method: method, Code: r.ErrorCode, Description: r.Description}
	}

	if result != nil && len(r.Result) > 0 {
		if err := json.Unmarshal(r.Result, result); err != nil {
			return fmt.Errorf("failed to decode %s result: %w", method, err)
		}
	}
	return nil
}

// escapedMention matches models.Mention output after HTML escaping.
var escapedMention = regexp.MustCompile(`&lt;@(\d+)&gt;`)

// RenderText escapes plain text for HTML parse mode and turns <@id> mentions
// into user links.
func RenderText(text string) string {
	return escapedMention.ReplaceAllString(html.EscapeString(text), `<a href="tg://user?id=$1">user $1</a>`)
}

// RenderAnnouncement turns announcement content into Telegram HTML.
func RenderAnnouncement(a models.Announcement) string {
	var b strings.Builder
	if a.Title != "" {
		b.WriteString("<b>")
		b.WriteString(RenderText(a.Title))
		b.WriteString("</b>\n")
	}
	b.WriteString(RenderText(a.Body))
	if a.Footer != "" {
		b.WriteString("\n\n<i>")
		b.WriteString(RenderText(a.Footer))
		b.WriteString("</i>")
	}
	return b.String()
}
