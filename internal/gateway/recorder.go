package gateway

import (
	"context"
	"sync"
)

// SentMessage is one delivery captured by the Recorder.
type SentMessage struct {
	TargetID int64
	Text     string
}

// Recorder is an in-memory Gateway used in tests. Membership answers and
// minted links are scripted through the public fields; outbound traffic is
// captured for assertions. Safe for concurrent use.
type Recorder struct {
	mu sync.Mutex

	// Members holds the user ids that count as group members.
	Members map[int64]bool
	// NextLinks is the queue of links CreateInviteLink returns.
	NextLinks []string
	// MemberErr / LinkErr / SendErr force the matching call to fail.
	MemberErr error
	LinkErr   error
	SendErr   error

	Sent      []SentMessage
	Answered  []string
	Edited    []string
	LinkCalls int
}

// NewRecorder returns a Recorder with no members and no scripted links.
func NewRecorder() *Recorder {
	return &Recorder{Members: map[int64]bool{}}
}

// IsGroupMember answers from the scripted Members set.
func (r *Recorder) IsGroupMember(_ context.Context, userID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.MemberErr != nil {
		return false, r.MemberErr
	}
	return r.Members[userID], nil
}

// CreateInviteLink pops the next scripted link.
func (r *Recorder) CreateInviteLink(context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.LinkCalls++
	if r.LinkErr != nil {
		return "", r.LinkErr
	}
	if len(r.NextLinks) == 0 {
		return "https://t.me/+recorded", nil
	}
	link := r.NextLinks[0]
	r.NextLinks = r.NextLinks[1:]
	return link, nil
}

// SendMessage captures the delivery.
func (r *Recorder) SendMessage(_ context.Context, targetID int64, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.SendErr != nil {
		return r.SendErr
	}
	r.Sent = append(r.Sent, SentMessage{TargetID: targetID, Text: text})
	return nil
}

// AnswerCallback captures the callback acknowledgement text.
func (r *Recorder) AnswerCallback(_ context.Context, _ string, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Answered = append(r.Answered, text)
	return nil
}

// EditMessageText captures the edited text.
func (r *Recorder) EditMessageText(_ context.Context, _ int64, _ int, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Edited = append(r.Edited, text)
	return nil
}

// SentTo returns the texts delivered to targetID, in order.
func (r *Recorder) SentTo(targetID int64) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, m := range r.Sent {
		if m.TargetID == targetID {
			out = append(out, m.Text)
		}
	}
	return out
}
