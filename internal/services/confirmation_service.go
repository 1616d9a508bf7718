// Package services – ConfirmationService
//
// This file implements the confirmation workflow: a submitted invite link
// becomes a pending confirmation, and an explicit confirm/deny decision moves
// it to its terminal state. Confirming also appends the durable acceptance
// edge inside the same transaction, so a confirmed row can never exist
// without its edge.
//
// Concurrency:
//   - The "one confirmed confirmation per claimer" rule is a check-and-set.
//     Resolve serializes it with a per-claimer mutex held across the
//     transaction (never across gateway calls), so two racing resolutions
//     for the same claimer cannot both observe "no prior confirmed row".
//   - The status update itself only matches pending rows, making terminal
//     transitions one-shot at the SQL level as a second line of defense.
//   - Rapid double-taps on the same button are absorbed by callback
//     receipts: a replayed tap short-circuits to the recorded outcome.
package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/referralhub/go-referral-backend/internal/domain"
	"github.com/referralhub/go-referral-backend/internal/gateway"
	"github.com/referralhub/go-referral-backend/internal/linkparse"
	"github.com/referralhub/go-referral-backend/internal/repo"
)

// Decision is the claimer's answer to the confirmation prompt.
type Decision string

// Valid decisions.
const (
	DecisionConfirm Decision = "confirm"
	DecisionDeny    Decision = "deny"
)

// ClaimResult is returned by SubmitClaim on success and carries what the
// dispatcher needs to render the confirm/deny prompt.
type ClaimResult struct {
	ConfirmationID uint
	Issuer         *domain.User
}

// ResolveResult is returned by Resolve and carries the terminal status plus
// the parties involved, for notification rendering.
type ResolveResult struct {
	Status   string
	Issuer   *domain.User
	Claimer  *domain.User
	InviteID uint
	// Replayed is true when the decision was a double-tap replay and the
	// recorded outcome was returned without touching any state.
	Replayed bool
}

// keyedMutex hands out one mutex per key, creating entries on demand.
// Entries are never evicted; the key space is bounded by active claimers.
type keyedMutex struct {
	mu sync.Mutex
	m  map[int64]*sync.Mutex
}

func (k *keyedMutex) lock(key int64) *sync.Mutex {
	k.mu.Lock()
	if k.m == nil {
		k.m = make(map[int64]*sync.Mutex)
	}
	l, ok := k.m[key]
	if !ok {
		l = &sync.Mutex{}
		k.m[key] = l
	}
	k.mu.Unlock()
	l.Lock()
	return l
}

// ConfirmationService implements the claim/resolve state machine.
type ConfirmationService struct {
	// DB is the database handle used for all confirmation operations.
	DB *gorm.DB
	// Gateway answers membership checks. It must already be wrapped with a
	// bounded timeout.
	Gateway gateway.Gateway
	// ReceiptTTL bounds how long a callback receipt absorbs replays.
	ReceiptTTL time.Duration

	claimers keyedMutex
}

// SubmitClaim parses an invite link out of free text and opens a pending
// confirmation for it on behalf of claimerID.
//
// Outcomes:
//   - text without a link: ErrNoLink (callers stay silent).
//   - claimer not registered: ErrUserNotFound.
//   - claimer not a group member: ErrNotMember.
//   - link not matching any invite: ErrInviteNotFound.
//   - claimer submitted their own link: ErrSelfInvite; no row is created.
//   - success: a pending Confirmation exists and the issuer profile is
//     returned for the prompt.
func (s *ConfirmationService) SubmitClaim(ctx context.Context, claimerID int64, text string) (*ClaimResult, error) {
	link := linkparse.FirstLink(text)
	if link == "" {
		return nil, ErrNoLink
	}

	if _, err := repo.GetUser(ctx, s.DB, claimerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, storagef("user lookup", err)
	}

	member, err := s.Gateway.IsGroupMember(ctx, claimerID)
	if err != nil {
		return nil, &GatewayError{Op: "membership check", Err: err}
	}
	if !member {
		return nil, ErrNotMember
	}

	inv, err := repo.GetInviteByCode(ctx, s.DB, link)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInviteNotFound
		}
		return nil, storagef("invite lookup", err)
	}
	if inv.UserID == claimerID {
		return nil, ErrSelfInvite
	}

	issuer, err := repo.GetUser(ctx, s.DB, inv.UserID)
	if err != nil {
		return nil, storagef("issuer lookup", err)
	}

	conf, err := repo.CreateConfirmation(ctx, s.DB, claimerID, inv.ID)
	if err != nil {
		return nil, storagef("confirmation create", err)
	}
	return &ClaimResult{ConfirmationID: conf.ID, Issuer: issuer}, nil
}

// Resolve applies the claimer's decision to a pending confirmation.
//
// Semantics:
//   - confirmationID must exist; otherwise ErrConfirmationNotFound.
//   - A replayed tap (same claimer, confirmation, decision within the
//     receipt TTL) returns the recorded outcome with Replayed set and
//     mutates nothing.
//   - A claimer with a confirmed confirmation elsewhere is rejected with
//     ErrAlreadyConfirmed before the decision is even looked at: confirm
//     and deny taps alike mutate nothing.
//   - The claimer must still be a group member; otherwise ErrNotMember.
//     The check runs after the already-confirmed rejection and before the
//     transaction so no lock spans the network.
//   - Confirm: status=confirmed and the acceptance edge are committed
//     atomically. Deny: status=denied.
//   - A confirmation already out of pending yields ErrAlreadyResolved.
//
// Notification of the issuer is the caller's job, after this returns: it is
// best-effort and must never roll back the committed transition.
func (s *ConfirmationService) Resolve(ctx context.Context, confirmationID uint, decision Decision) (*ResolveResult, error) {
	if decision != DecisionConfirm && decision != DecisionDeny {
		return nil, ErrConfirmationNotFound
	}

	conf, err := repo.GetConfirmation(ctx, s.DB, confirmationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConfirmationNotFound
		}
		return nil, storagef("confirmation lookup", err)
	}

	// Double-tap replay: hand back the recorded outcome.
	if rec, err := repo.GetCallbackReceipt(ctx, s.DB, conf.UserID, conf.ID, string(decision), time.Now().UTC()); err == nil {
		res, rerr := s.loadResult(ctx, conf, rec.Outcome)
		if rerr != nil {
			return nil, rerr
		}
		res.Replayed = true
		return res, nil
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, storagef("receipt lookup", err)
	}

	if conf.Status != domain.StatusPending {
		return nil, ErrAlreadyResolved
	}

	// A claimer with a confirmed confirmation keeps it for good: once
	// confirmed, every further tap is rejected, deny included.
	has, err := repo.HasConfirmedConfirmation(ctx, s.DB, conf.UserID)
	if err != nil {
		return nil, storagef("confirmed check", err)
	}
	if has {
		return nil, ErrAlreadyConfirmed
	}

	member, err := s.Gateway.IsGroupMember(ctx, conf.UserID)
	if err != nil {
		return nil, &GatewayError{Op: "membership check", Err: err}
	}
	if !member {
		return nil, ErrNotMember
	}

	lock := s.claimers.lock(conf.UserID)
	defer lock.Unlock()

	status := domain.StatusDenied
	if decision == DecisionConfirm {
		status = domain.StatusConfirmed
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cur, err := repo.GetConfirmation(ctx, tx, confirmationID)
		if err != nil {
			return err
		}
		if cur.Status != domain.StatusPending {
			return ErrAlreadyResolved
		}

		// One confirmed invite per claimer, ever. Re-checked inside the
		// transaction under the per-claimer lock.
		has, err := repo.HasConfirmedConfirmation(ctx, tx, cur.UserID)
		if err != nil {
			return err
		}
		if has {
			return ErrAlreadyConfirmed
		}

		if err := repo.UpdateConfirmationStatus(ctx, tx, cur.ID, status); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAlreadyResolved
			}
			return err
		}

		if decision == DecisionConfirm {
			inv, err := repo.GetInvite(ctx, tx, cur.InviteID)
			if err != nil {
				return err
			}
			if _, err := repo.CreateAcceptance(ctx, tx, inv.UserID, cur.UserID, inv.ID, time.Now().UTC()); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrAlreadyResolved) || errors.Is(err, ErrAlreadyConfirmed) {
			return nil, err
		}
		return nil, storagef("confirmation resolve", err)
	}

	ttl := s.ReceiptTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if _, err := repo.CreateCallbackReceipt(ctx, s.DB, conf.UserID, conf.ID, string(decision), status, ttl); err != nil && !errors.Is(err, repo.ErrDuplicate) {
		return nil, storagef("receipt create", err)
	}

	return s.loadResult(ctx, conf, status)
}

// loadResult assembles a ResolveResult for a confirmation and final status.
func (s *ConfirmationService) loadResult(ctx context.Context, conf *domain.Confirmation, status string) (*ResolveResult, error) {
	inv, err := repo.GetInvite(ctx, s.DB, conf.InviteID)
	if err != nil {
		return nil, storagef("invite lookup", err)
	}
	issuer, err := repo.GetUser(ctx, s.DB, inv.UserID)
	if err != nil {
		return nil, storagef("issuer lookup", err)
	}
	claimer, err := repo.GetUser(ctx, s.DB, conf.UserID)
	if err != nil {
		return nil, storagef("claimer lookup", err)
	}
	return &ResolveResult{
		Status:   status,
		Issuer:   issuer,
		Claimer:  claimer,
		InviteID: inv.ID,
	}, nil
}
