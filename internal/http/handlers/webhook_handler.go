// Package handlers – webhook intake.
//
// The messaging platform pushes updates to POST /webhook/:secret. The handler
// normalizes the update into a bot.Event, hands it to the dispatcher, and
// returns the replies for the originating chat in the response body, which
// the platform-facing relay turns into sendMessage calls.
package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/referralhub/go-referral-backend/internal/bot"
	"github.com/referralhub/go-referral-backend/internal/services"
)

// userPayload is the sender identity as the platform reports it.
type userPayload struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// chatPayload identifies the chat an update came from.
type chatPayload struct {
	ID   int64  `json:"id"`
	Type string `json:"type"`
}

// messagePayload is a text message update.
type messagePayload struct {
	MessageID int         `json:"message_id"`
	From      userPayload `json:"from"`
	Chat      chatPayload `json:"chat"`
	Text      string      `json:"text"`
}

// callbackPayload is a button-tap update.
type callbackPayload struct {
	ID      string          `json:"id"`
	From    userPayload     `json:"from"`
	Data    string          `json:"data"`
	Message *messagePayload `json:"message"`
}

// webhookUpdate is the envelope the platform posts. At most one of Message
// or Callback is set.
type webhookUpdate struct {
	UpdateID int64            `json:"update_id"`
	Message  *messagePayload  `json:"message"`
	Callback *callbackPayload `json:"callback_query"`
}

// WebhookResponse carries the replies for the originating chat.
type WebhookResponse struct {
	ChatID  int64       `json:"chat_id,omitempty"`
	Replies []bot.Reply `json:"replies"`
}

// WebhookHandler handles POST /webhook/:secret.
type WebhookHandler struct {
	// Secret must match the :secret path segment; mismatches 404 so the
	// route is indistinguishable from a missing one.
	Secret string
	// Dispatcher routes normalized events.
	Dispatcher *bot.Dispatcher
}

// Handle validates the secret, normalizes the update, and dispatches it.
//
// Responses:
//   - 404 when the secret does not match.
//   - 400 when the body is not a valid update envelope.
//   - 200 with the (possibly empty) reply list otherwise. Updates the bot
//     has no interest in (no message, no callback) also answer 200 so the
//     platform does not retry them.
func (h *WebhookHandler) Handle(c *gin.Context) {
	if c.Param("secret") != h.Secret {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "not found")
		return
	}

	var upd webhookUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid update payload")
		return
	}

	ev, ok := normalize(upd)
	if !ok {
		ok2(c, WebhookResponse{})
		return
	}

	// Expose the sender to the access log and the per-user rate limiter.
	c.Set("userID", strconv.FormatInt(ev.SenderID, 10))

	replies := h.Dispatcher.Handle(c.Request.Context(), ev)
	ok2(c, WebhookResponse{ChatID: ev.ChatID, Replies: replies})
}

// ok2 writes the webhook success envelope; replies serialize as [] rather
// than null when empty.
func ok2(c *gin.Context, resp WebhookResponse) {
	if resp.Replies == nil {
		resp.Replies = []bot.Reply{}
	}
	ok(c, http.StatusOK, resp)
}

// normalize maps the platform envelope onto a dispatcher event.
func normalize(upd webhookUpdate) (bot.Event, bool) {
	switch {
	case upd.Callback != nil:
		ev := bot.Event{
			SenderID:     upd.Callback.From.ID,
			CallbackID:   upd.Callback.ID,
			CallbackData: upd.Callback.Data,
			Profile:      profileOf(upd.Callback.From),
		}
		if upd.Callback.Message != nil {
			ev.ChatID = upd.Callback.Message.Chat.ID
			ev.ChatType = upd.Callback.Message.Chat.Type
			ev.MessageID = upd.Callback.Message.MessageID
		}
		return ev, true
	case upd.Message != nil:
		return bot.Event{
			SenderID:  upd.Message.From.ID,
			ChatID:    upd.Message.Chat.ID,
			ChatType:  upd.Message.Chat.Type,
			MessageID: upd.Message.MessageID,
			Text:      upd.Message.Text,
			Profile:   profileOf(upd.Message.From),
		}, true
	default:
		return bot.Event{}, false
	}
}

// profileOf assembles the optional identity fields from the payload.
func profileOf(u userPayload) services.Profile {
	var p services.Profile
	if u.Username != "" {
		username := u.Username
		p.Username = &username
	}
	full := strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
	if full != "" {
		p.FullName = &full
	}
	return p
}
