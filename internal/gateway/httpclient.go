package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// defaultAPIBase is the platform Bot API host. Overridable for tests and
// self-hosted API relays.
const defaultAPIBase = "https://api.telegram.org"

// memberStatuses lists the chat-member states that count as "in the group".
var memberStatuses = map[string]bool{
	"creator":       true,
	"administrator": true,
	"member":        true,
	"restricted":    true,
}

// Client is the HTTP implementation of Gateway against the platform Bot API.
// Callers should wrap it with WithTimeout; the embedded http.Client carries
// no timeout of its own and relies on the request context.
type Client struct {
	// Token authenticates every call.
	Token string
	// GroupChatID is the tracked group, the target of membership checks
	// and invite-link minting.
	GroupChatID int64
	// BaseURL overrides the API host when non-empty.
	BaseURL string
	// HTTPClient is used when non-nil; otherwise http.DefaultClient.
	HTTPClient *http.Client
}

// apiOK is the envelope every Bot API response shares. Result is decoded by
// the caller when it cares about the payload.
type apiOK struct {
	OK          bool            `json:"ok"`
	Description string          `json:"description"`
	Result      json.RawMessage `json:"result"`
}

// IsGroupMember resolves the user's membership via getChatMember. A user the
// platform reports as left, kicked, or unknown is not a member.
func (c *Client) IsGroupMember(ctx context.Context, userID int64) (bool, error) {
	var out struct {
		Status string `json:"status"`
	}
	err := c.call(ctx, "getChatMember", map[string]any{
		"chat_id": c.GroupChatID,
		"user_id": userID,
	}, &out)
	if err != nil {
		return false, err
	}
	return memberStatuses[out.Status], nil
}

// CreateInviteLink mints a fresh invite link for the group via
// createChatInviteLink, so each call yields a distinct trackable URL.
func (c *Client) CreateInviteLink(ctx context.Context) (string, error) {
	var out struct {
		InviteLink string `json:"invite_link"`
	}
	err := c.call(ctx, "createChatInviteLink", map[string]any{
		"chat_id": c.GroupChatID,
	}, &out)
	if err != nil {
		return "", err
	}
	return out.InviteLink, nil
}

// SendMessage delivers text to a user or chat, HTML-formatted.
func (c *Client) SendMessage(ctx context.Context, targetID int64, text string) error {
	return c.call(ctx, "sendMessage", map[string]any{
		"chat_id":    targetID,
		"text":       text,
		"parse_mode": "HTML",
	}, nil)
}

// AnswerCallback acknowledges a button tap with a short notice toast.
func (c *Client) AnswerCallback(ctx context.Context, callbackID, text string) error {
	return c.call(ctx, "answerCallbackQuery", map[string]any{
		"callback_query_id": callbackID,
		"text":              text,
	}, nil)
}

// EditMessageText rewrites a previously sent message in place, dropping any
// inline keyboard it carried.
func (c *Client) EditMessageText(ctx context.Context, chatID int64, messageID int, text string) error {
	return c.call(ctx, "editMessageText", map[string]any{
		"chat_id":    chatID,
		"message_id": messageID,
		"text":       text,
	}, nil)
}

// call posts a JSON body to the named Bot API method and decodes the result
// into out when out is non-nil.
func (c *Client) call(ctx context.Context, method string, params map[string]any, out any) error {
	base := c.BaseURL
	if base == "" {
		base = defaultAPIBase
	}
	url := fmt.Sprintf("%s/bot%s/%s", base, c.Token, method)

	body, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("gateway: encode %s: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("gateway: build %s: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	hc := c.HTTPClient
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("gateway: %s: %w", method, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("gateway: read %s response: %w", method, err)
	}

	var env apiOK
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("gateway: decode %s response (status %d): %w", method, resp.StatusCode, err)
	}
	if !env.OK {
		return fmt.Errorf("gateway: %s failed (status %d): %s", method, resp.StatusCode, env.Description)
	}
	if out != nil {
		if err := json.Unmarshal(env.Result, out); err != nil {
			return fmt.Errorf("gateway: decode %s result: %w", method, err)
		}
	}
	return nil
}

// compile-time conformance check
var _ Gateway = (*Client)(nil)
