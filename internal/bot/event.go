package bot

import "github.com/referralhub/go-referral-backend/internal/services"

// Chat types as the platform reports them.
const (
	ChatPrivate = "private"
	ChatGroup   = "group"
)

// Event is the normalized inbound payload handed to the dispatcher. Exactly
// one of Text or CallbackData is meaningful per event; CallbackID is set only
// for callback events.
type Event struct {
	SenderID  int64
	ChatID    int64
	ChatType  string
	MessageID int

	// Text is the message body for command and free-text events.
	Text string

	// CallbackID and CallbackData identify a button tap.
	CallbackID   string
	CallbackData string

	// Profile carries the sender identity fields the platform exposes.
	Profile services.Profile
}

// IsCallback reports whether the event is a button tap.
func (e Event) IsCallback() bool { return e.CallbackID != "" }

// Button is one inline-keyboard action offered with a reply.
type Button struct {
	Text string `json:"text"`
	Data string `json:"data"`
}

// Reply is one outbound message produced by the dispatcher, addressed to the
// chat the event came from. The transport decides how to deliver it.
type Reply struct {
	Text    string   `json:"text"`
	HTML    bool     `json:"html,omitempty"`
	Buttons []Button `json:"buttons,omitempty"`
}

// textReply builds a plain reply.
func textReply(text string) Reply { return Reply{Text: text} }

// htmlReply builds an HTML-formatted reply.
func htmlReply(text string) Reply { return Reply{Text: text, HTML: true} }
