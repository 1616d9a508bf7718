// Package bot routes normalized platform events (commands, free text, button
// callbacks) to the referral workflow and renders chat replies. It is the
// seam between the messaging gateway and the services layer: the gateway
// delivers events, the dispatcher produces zero or more replies for the
// originating chat and performs side-effect notifications (issuer messages,
// callback answers, message edits) through the gateway.
//
// Routing (case-sensitive, matching the original bot commands):
//   - /start          register the sender
//   - /gerar          issue or recall the sender's invite link (private chat only)
//   - /ranking        top confirmed inviters (registered admin/owner only)
//   - free text       scanned for an invite link → claim submission (private chat only)
//   - confirm:<id> / deny:<id> callbacks → confirmation resolution
package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/referralhub/go-referral-backend/internal/domain"
	"github.com/referralhub/go-referral-backend/internal/gateway"
	"github.com/referralhub/go-referral-backend/internal/services"
)

// Callback data prefixes for the confirmation prompt buttons.
const (
	callbackConfirmPrefix = "confirm:"
	callbackDenyPrefix    = "deny:"
)

var (
	// botEvents counts inbound events by kind and outcome.
	botEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_events_total",
			Help: "Total number of dispatched bot events.",
		},
		[]string{"kind", "outcome"},
	)

	// resolutions counts confirmation resolutions by terminal status.
	resolutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "confirmations_resolved_total",
			Help: "Total number of confirmations resolved, by terminal status.",
		},
		[]string{"status"},
	)
)

func init() {
	prometheus.MustRegister(botEvents, resolutions)
}

// Dispatcher wires events to the workflow services. All fields are required
// unless noted.
type Dispatcher struct {
	Users         *services.UserService
	Invites       *services.InviteService
	Confirmations *services.ConfirmationService
	Leaderboard   *services.LeaderboardService

	// Gateway delivers side-effect messages (issuer notifications, callback
	// answers, prompt-message edits). Already timeout-wrapped.
	Gateway gateway.Gateway

	// LeaderboardSize is how many inviters /ranking shows.
	LeaderboardSize int

	Log zerolog.Logger

	limiter *senderLimiter
}

// NewDispatcher constructs a Dispatcher with a per-sender rate limit.
func NewDispatcher(users *services.UserService, invites *services.InviteService, confs *services.ConfirmationService, lb *services.LeaderboardService, gw gateway.Gateway, size int, rps float64, burst int, log zerolog.Logger) *Dispatcher {
	if size <= 0 {
		size = 5
	}
	return &Dispatcher{
		Users:           users,
		Invites:         invites,
		Confirmations:   confs,
		Leaderboard:     lb,
		Gateway:         gw,
		LeaderboardSize: size,
		Log:             log,
		limiter:         newSenderLimiter(rps, burst),
	}
}

// Handle routes one event and returns the replies for the originating chat.
// It never returns an error to the transport: failures degrade to an apology
// reply (or silence for callback events, which are answered via the gateway).
func (d *Dispatcher) Handle(ctx context.Context, ev Event) []Reply {
	if d.limiter != nil && !d.limiter.allow(ev.SenderID) {
		botEvents.WithLabelValues(kindOf(ev), "rate_limited").Inc()
		if ev.IsCallback() {
			return nil
		}
		return []Reply{textReply(textRateLimited)}
	}

	var replies []Reply
	switch {
	case ev.IsCallback():
		replies = d.handleCallback(ctx, ev)
	case ev.Text == "/start":
		replies = d.handleStart(ctx, ev)
	case ev.Text == "/gerar":
		replies = d.handleGenerate(ctx, ev)
	case ev.Text == "/ranking":
		replies = d.handleRanking(ctx, ev)
	default:
		replies = d.handleFreeText(ctx, ev)
	}
	botEvents.WithLabelValues(kindOf(ev), "handled").Inc()
	return replies
}

// kindOf labels an event for metrics.
func kindOf(ev Event) string {
	switch {
	case ev.IsCallback():
		return "callback"
	case strings.HasPrefix(ev.Text, "/"):
		return "command"
	default:
		return "text"
	}
}

// handleStart registers the sender on first contact.
func (d *Dispatcher) handleStart(ctx context.Context, ev Event) []Reply {
	created, err := d.Users.Register(ctx, ev.SenderID, ev.Profile)
	if err != nil {
		d.Log.Error().Err(err).Int64("user_id", ev.SenderID).Msg("register failed")
		return []Reply{textReply(textSomethingWrong)}
	}
	if created {
		return []Reply{textReply(textWelcome)}
	}
	return []Reply{textReply(textAlreadyRegistered)}
}

// handleGenerate issues (or recalls) the sender's invite link. Group-chat
// usage is ignored outright, like the original bot.
func (d *Dispatcher) handleGenerate(ctx context.Context, ev Event) []Reply {
	if ev.ChatType != ChatPrivate {
		return nil
	}

	existing, hadLink := d.priorLink(ctx, ev.SenderID)

	link, err := d.Invites.Request(ctx, ev.SenderID)
	switch {
	case err == nil:
		if hadLink && link == existing {
			return []Reply{textReply(fmt.Sprintf(textLinkExisting, link))}
		}
		return []Reply{textReply(fmt.Sprintf(textLinkCreated, link))}
	case errors.Is(err, services.ErrUserNotFound):
		return []Reply{textReply(textNotRegistered)}
	case errors.Is(err, services.ErrNotMember):
		return []Reply{textReply(textMustBeMemberGenerate)}
	default:
		d.Log.Error().Err(err).Int64("user_id", ev.SenderID).Msg("invite request failed")
		return []Reply{textReply(textLinkError)}
	}
}

// priorLink peeks at any already-stored link so the reply can distinguish a
// fresh mint from a recall.
func (d *Dispatcher) priorLink(ctx context.Context, userID int64) (string, bool) {
	link, err := d.Invites.LinkOf(ctx, userID)
	if err != nil {
		return "", false
	}
	return link, true
}

// handleRanking renders the top confirmed inviters for bot admins/owners.
func (d *Dispatcher) handleRanking(ctx context.Context, ev Event) []Reply {
	if err := d.Users.EnsureAdmin(ctx, ev.SenderID); err != nil {
		switch {
		case errors.Is(err, services.ErrUserNotFound):
			return []Reply{textReply(textNotRegistered)}
		case errors.Is(err, services.ErrNotAuthorized):
			return []Reply{textReply(textNotAuthorized)}
		}
		d.Log.Error().Err(err).Int64("user_id", ev.SenderID).Msg("ranking lookup failed")
		return []Reply{textReply(textSomethingWrong)}
	}

	ranks, err := d.Leaderboard.Top(ctx, d.LeaderboardSize)
	if err != nil {
		d.Log.Error().Err(err).Msg("ranking query failed")
		return []Reply{textReply(textSomethingWrong)}
	}
	text := services.FormatLeaderboard(ranks)
	if text == "" {
		return []Reply{textReply(textNoRanking)}
	}
	return []Reply{htmlReply(text)}
}

// handleFreeText scans a private message for an invite link and opens the
// confirmation prompt on a valid claim. Group chatter and linkless text are
// ignored silently.
func (d *Dispatcher) handleFreeText(ctx context.Context, ev Event) []Reply {
	if ev.ChatType != ChatPrivate {
		return nil
	}

	res, err := d.Confirmations.SubmitClaim(ctx, ev.SenderID, ev.Text)
	switch {
	case err == nil:
		prompt := fmt.Sprintf(textClaimPrompt,
			res.Issuer.ID,
			services.DisplayName(res.Issuer.FullName, res.Issuer.Username),
			handle(res.Issuer.Username),
		)
		id := strconv.FormatUint(uint64(res.ConfirmationID), 10)
		return []Reply{{
			Text: prompt,
			HTML: true,
			Buttons: []Button{
				{Text: textPromptYes, Data: callbackConfirmPrefix + id},
				{Text: textPromptNo, Data: callbackDenyPrefix + id},
			},
		}}
	case errors.Is(err, services.ErrNoLink):
		return nil
	case errors.Is(err, services.ErrUserNotFound):
		return []Reply{textReply(textNotRegistered)}
	case errors.Is(err, services.ErrNotMember):
		return []Reply{textReply(textMustBeMemberConfirm)}
	case errors.Is(err, services.ErrInviteNotFound):
		return []Reply{textReply(textInvalidInvite)}
	case errors.Is(err, services.ErrSelfInvite):
		return []Reply{textReply(textSelfInvite)}
	default:
		d.Log.Error().Err(err).Int64("user_id", ev.SenderID).Msg("claim failed")
		return []Reply{textReply(textSomethingWrong)}
	}
}

// handleCallback resolves a confirm/deny tap. All user feedback goes through
// the gateway (callback answer + prompt edit); the issuer notification is
// best-effort and never affects the committed transition.
func (d *Dispatcher) handleCallback(ctx context.Context, ev Event) []Reply {
	decision, confID, ok := parseCallback(ev.CallbackData)
	if !ok {
		d.Log.Warn().Str("data", ev.CallbackData).Msg("unparseable callback")
		return nil
	}

	res, err := d.Confirmations.Resolve(ctx, confID, decision)
	switch {
	case err == nil:
		// fall through below
	case errors.Is(err, services.ErrAlreadyConfirmed):
		d.answer(ctx, ev.CallbackID, textCallbackDup)
		return nil
	case errors.Is(err, services.ErrAlreadyResolved):
		d.answer(ctx, ev.CallbackID, textCallbackDone)
		return nil
	case errors.Is(err, services.ErrNotMember):
		d.answer(ctx, ev.CallbackID, textMustBeMemberResolve)
		return nil
	case errors.Is(err, services.ErrConfirmationNotFound):
		d.answer(ctx, ev.CallbackID, textCallbackDone)
		return nil
	default:
		d.Log.Error().Err(err).Uint("confirmation_id", confID).Msg("resolve failed")
		d.answer(ctx, ev.CallbackID, textSomethingWrong)
		return nil
	}

	if res.Status == domain.StatusConfirmed {
		d.answer(ctx, ev.CallbackID, textCallbackConfirmed)
	} else {
		d.answer(ctx, ev.CallbackID, textCallbackDenied)
	}

	if !res.Replayed {
		resolutions.WithLabelValues(res.Status).Inc()
		d.notifyIssuer(ctx, res)
		if err := d.Gateway.EditMessageText(ctx, ev.ChatID, ev.MessageID, fmt.Sprintf(textStatusLine, statusPT(res.Status))); err != nil {
			d.Log.Warn().Err(err).Msg("prompt edit failed")
		}
	}
	return nil
}

// notifyIssuer tells the link owner how their invite was resolved. Failures
// are logged and counted but never surfaced.
func (d *Dispatcher) notifyIssuer(ctx context.Context, res *services.ResolveResult) {
	tmpl := textIssuerDenied
	if res.Status == domain.StatusConfirmed {
		tmpl = textIssuerConfirmed
	}
	text := fmt.Sprintf(tmpl,
		res.Claimer.ID,
		services.DisplayName(res.Claimer.FullName, res.Claimer.Username),
		handle(res.Claimer.Username),
	)
	gateway.BestEffortSend(ctx, d.Gateway, res.Issuer.ID, text, d.Log)
}

// answer acknowledges a callback tap, logging delivery failures.
func (d *Dispatcher) answer(ctx context.Context, callbackID, text string) {
	if err := d.Gateway.AnswerCallback(ctx, callbackID, text); err != nil {
		d.Log.Warn().Err(err).Msg("callback answer failed")
	}
}

// parseCallback splits "confirm:<id>" / "deny:<id>" into its parts.
func parseCallback(data string) (services.Decision, uint, bool) {
	var decision services.Decision
	var rest string
	switch {
	case strings.HasPrefix(data, callbackConfirmPrefix):
		decision, rest = services.DecisionConfirm, strings.TrimPrefix(data, callbackConfirmPrefix)
	case strings.HasPrefix(data, callbackDenyPrefix):
		decision, rest = services.DecisionDeny, strings.TrimPrefix(data, callbackDenyPrefix)
	default:
		return "", 0, false
	}
	id, err := strconv.ParseUint(rest, 10, 32)
	if err != nil {
		return "", 0, false
	}
	return decision, uint(id), true
}

// handle renders the @-handle or its placeholder.
func handle(username *string) string {
	if username != nil && strings.TrimSpace(*username) != "" {
		return "@" + strings.TrimSpace(*username)
	}
	return "sem @"
}
