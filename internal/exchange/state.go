// Package exchange holds the transition rules for the skill-exchange
// lifecycle. Every precondition lives here, in one place, so route
// handlers and repositories never re-implement authorization or state
// checks. Functions mutate the passed entities in memory only; callers
// persist the result with a conditional update keyed on the same
// preconditions, which is what makes concurrent responders safe.
package exchange

import (
	"errors"
	"time"

	"github.com/Code102SoftwareProject/skill-swap-hub-sub004/internal/models"
)

// DefaultRejectionReason is used when a completion rejection arrives
// without a human-readable reason.
const DefaultRejectionReason = "The other participant did not consider the exchange finished."

var (
	// Authorization failures. The operation is fully rejected, nothing
	// changes.
	ErrSelfSession    = errors.New("proposer and counterpart must be different users")
	ErrNotParticipant = errors.New("user is not a participant of this session")
	ErrOwnDecision    = errors.New("cannot decide a proposal you initiated yourself")
	ErrOwnRequest     = errors.New("cannot respond to your own request")
	ErrNotInitiator   = errors.New("only the initiator of the cancellation may finalize it")
	ErrNotProposer    = errors.New("only the proposer may delete the session")

	// State conflicts. A fresh read no longer satisfies the operation's
	// precondition; the caller reports these distinctly from not-found.
	ErrAlreadyDecided      = errors.New("session has already been decided")
	ErrNotPending          = errors.New("session is no longer pending")
	ErrNotActive           = errors.New("session is not active")
	ErrDuplicateCompletion = errors.New("a pending completion request from this user already exists")
	ErrNoPendingCompletion = errors.New("no pending completion request found")
	ErrCancellationOpen    = errors.New("a cancellation request is already awaiting resolution")
	ErrCancellationClosed  = errors.New("cancellation request has already been resolved")
	ErrNotDisputed         = errors.New("cancellation request has not been disputed")
	ErrOfferDecided        = errors.New("counter offer has already been decided")
)

// transitions is the only legal movement through the session lifecycle.
// Terminal statuses have no outgoing edges; nothing ever re-enters
// pending.
var transitions = map[models.SessionStatus][]models.SessionStatus{
	models.SessionStatusPending: {models.SessionStatusActive, models.SessionStatusRejected},
	models.SessionStatusActive:  {models.SessionStatusCompleted, models.SessionStatusCanceled},
}

// CanTransition reports whether moving a session from one status to
// another is allowed by the lifecycle graph.
func CanTransition(from, to models.SessionStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ValidateProposal checks the party pairing of a new session.
func ValidateProposal(proposerID, counterpartID string) error {
	if proposerID == counterpartID {
		return ErrSelfSession
	}
	return nil
}

// Decide applies the counterpart's accept or reject to a pending session.
// Only the counterpart may decide, and only while the session is
// undecided.
func Decide(s *models.Session, actor string, accept bool, now time.Time) error {
	if !s.HasParticipant(actor) {
		return ErrNotParticipant
	}
	if actor == s.ProposerID {
		return ErrOwnDecision
	}
	if s.IsAccepted != nil || s.Status != models.SessionStatusPending {
		return ErrAlreadyDecided
	}

	decision := accept
	s.IsAccepted = &decision
	s.UpdatedAt = now
	if accept {
		s.Status = models.SessionStatusActive
	} else {
		s.Status = models.SessionStatusRejected
	}
	return nil
}

// CanDelete checks whether actor may hard-delete the session. Only the
// proposer may, and only while the session is still pending and
// undecided.
func CanDelete(s *models.Session, actor string) error {
	if !s.HasParticipant(actor) {
		return ErrNotParticipant
	}
	if actor != s.ProposerID {
		return ErrNotProposer
	}
	if s.IsAccepted != nil || s.Status != models.SessionStatusPending {
		return ErrNotPending
	}
	return nil
}
