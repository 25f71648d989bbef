package exchange

import (
	"strings"
	"time"

	"github.com/Code102SoftwareProject/skill-swap-hub-sub004/internal/models"
)

// RequestCompletion marks that actor asks to finish the session. Either
// participant may ask while the session is active, but a second request
// from the same user while the first is unanswered is a duplicate, not a
// merge.
func RequestCompletion(s *models.Session, actor string, now time.Time) error {
	if !s.HasParticipant(actor) {
		return ErrNotParticipant
	}
	if s.Status != models.SessionStatusActive {
		return ErrNotActive
	}
	if s.CompletionRequestedBy != nil && *s.CompletionRequestedBy == actor {
		return ErrDuplicateCompletion
	}

	requester := actor
	s.CompletionRequestedBy = &requester
	s.CompletionRequestedAt = &now
	s.UpdatedAt = now
	return nil
}

// ApproveCompletion lets the participant opposite the requester confirm
// the exchange is finished. The session reaches its completed terminal
// and any stale rejection fields are cleared.
func ApproveCompletion(s *models.Session, actor string, now time.Time) error {
	if err := validateCompletionResponse(s, actor); err != nil {
		return err
	}

	approver := actor
	s.CompletionApprovedBy = &approver
	s.CompletionApprovedAt = &now
	s.CompletionRejectedBy = nil
	s.CompletionRejectedAt = nil
	s.CompletionRejectedWhy = nil
	s.Status = models.SessionStatusCompleted
	s.UpdatedAt = now
	return nil
}

// RejectCompletion turns down a pending completion request. The session
// stays active and the request fields are cleared so a fresh cycle can
// start. An empty reason falls back to DefaultRejectionReason.
func RejectCompletion(s *models.Session, actor string, reason string, now time.Time) error {
	if err := validateCompletionResponse(s, actor); err != nil {
		return err
	}

	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = DefaultRejectionReason
	}

	rejecter := actor
	s.CompletionRejectedBy = &rejecter
	s.CompletionRejectedAt = &now
	s.CompletionRejectedWhy = &reason
	s.CompletionRequestedBy = nil
	s.CompletionRequestedAt = nil
	s.CompletionApprovedBy = nil
	s.CompletionApprovedAt = nil
	s.UpdatedAt = now
	return nil
}

func validateCompletionResponse(s *models.Session, actor string) error {
	if !s.HasParticipant(actor) {
		return ErrNotParticipant
	}
	if s.Status != models.SessionStatusActive {
		return ErrNotActive
	}
	if s.CompletionRequestedBy == nil {
		return ErrNoPendingCompletion
	}
	if *s.CompletionRequestedBy == actor {
		return ErrOwnRequest
	}
	return nil
}
