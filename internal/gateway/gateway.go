// Package gateway defines the boundary to the messaging platform. The core
// workflow consumes three capabilities from it (membership checks, invite
// link minting, message delivery) plus the callback/edit affordances the chat
// UI needs. The package ships the HTTP platform client, a deadline-enforcing
// decorator, and a recording fake for tests.
package gateway

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// Gateway is the messaging-platform boundary consumed by the workflow.
//
// All calls are expected to hit the network; implementations must honor the
// context deadline. Wrap any implementation with WithTimeout so no call can
// block the workflow indefinitely.
type Gateway interface {
	// IsGroupMember reports whether userID currently belongs to the target group.
	IsGroupMember(ctx context.Context, userID int64) (bool, error)

	// CreateInviteLink mints a fresh single-purpose invite link for the group.
	CreateInviteLink(ctx context.Context) (string, error)

	// SendMessage delivers text to a user or chat.
	SendMessage(ctx context.Context, targetID int64, text string) error

	// AnswerCallback acknowledges a callback tap with a short notice.
	AnswerCallback(ctx context.Context, callbackID, text string) error

	// EditMessageText rewrites a previously sent message in place.
	EditMessageText(ctx context.Context, chatID int64, messageID int, text string) error
}

// sendFailures counts outbound deliveries that failed. Best-effort sends are
// never surfaced to users, so the counter is the only signal they emit.
var sendFailures = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "gateway_send_failures_total",
		Help: "Total number of failed best-effort gateway deliveries.",
	},
	[]string{"op"},
)

func init() {
	prometheus.MustRegister(sendFailures)
}

// BestEffortSend delivers text to targetID and swallows the failure, logging
// it at warn level and bumping the failure counter. Used for notifications
// that must never roll back a committed state change.
func BestEffortSend(ctx context.Context, gw Gateway, targetID int64, text string, log zerolog.Logger) {
	if err := gw.SendMessage(ctx, targetID, text); err != nil {
		sendFailures.WithLabelValues("send_message").Inc()
		log.Warn().
			Err(err).
			Int64("target_id", targetID).
			Msg("best-effort send failed")
	}
}

// timeoutGateway enforces a bounded deadline on every call of the wrapped
// gateway. A timed-out call is indistinguishable from a failed one.
type timeoutGateway struct {
	inner Gateway
	d     time.Duration
}

// WithTimeout wraps gw so every call carries a deadline of d. A non-positive
// d returns gw unchanged.
func WithTimeout(gw Gateway, d time.Duration) Gateway {
	if d <= 0 {
		return gw
	}
	return &timeoutGateway{inner: gw, d: d}
}

func (t *timeoutGateway) IsGroupMember(ctx context.Context, userID int64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, t.d)
	defer cancel()
	return t.inner.IsGroupMember(ctx, userID)
}

func (t *timeoutGateway) CreateInviteLink(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.d)
	defer cancel()
	return t.inner.CreateInviteLink(ctx)
}

func (t *timeoutGateway) SendMessage(ctx context.Context, targetID int64, text string) error {
	ctx, cancel := context.WithTimeout(ctx, t.d)
	defer cancel()
	return t.inner.SendMessage(ctx, targetID, text)
}

func (t *timeoutGateway) AnswerCallback(ctx context.Context, callbackID, text string) error {
	ctx, cancel := context.WithTimeout(ctx, t.d)
	defer cancel()
	return t.inner.AnswerCallback(ctx, callbackID, text)
}

func (t *timeoutGateway) EditMessageText(ctx context.Context, chatID int64, messageID int, text string) error {
	ctx, cancel := context.WithTimeout(ctx, t.d)
	defer cancel()
	return t.inner.EditMessageText(ctx, chatID, messageID, text)
}
