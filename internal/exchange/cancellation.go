package exchange

import (
	"time"

	"github.com/Code102SoftwareProject/skill-swap-hub-sub004/internal/models"
)

// ValidateCancellation checks that actor may file a cancellation request
// against the session. pending is the session's currently unresolved
// cancellation request, or nil when there is none; filing is provisional
// and does not touch the session status, so a session may accumulate
// several resolved requests but never two open ones.
func ValidateCancellation(s *models.Session, pending *models.CancellationRequest, actor string) error {
	if !s.HasParticipant(actor) {
		return ErrNotParticipant
	}
	if s.Status != models.SessionStatusActive {
		return ErrNotActive
	}
	if pending != nil {
		return ErrCancellationOpen
	}
	return nil
}

// AgreeCancellation is the responder consenting to end the session. The
// request resolves and the session reaches its canceled terminal in the
// same step.
func AgreeCancellation(s *models.Session, req *models.CancellationRequest, actor string, now time.Time) error {
	if err := validateCancellationResponse(s, req, actor); err != nil {
		return err
	}

	req.ResponseStatus = models.CancellationResponseAgreed
	req.Resolution = models.CancellationResolutionCanceled
	req.RespondedAt = &now
	req.ResolvedAt = &now
	s.Status = models.SessionStatusCanceled
	s.UpdatedAt = now
	return nil
}

// DisputeCancellation records the responder's objection. The request
// stays unresolved and the session stays active; it can now only close
// through the initiator finalizing or the responder agreeing after all.
func DisputeCancellation(s *models.Session, req *models.CancellationRequest, actor string, note string, now time.Time) error {
	if err := validateCancellationResponse(s, req, actor); err != nil {
		return err
	}
	if req.ResponseStatus != models.CancellationResponsePending {
		return ErrCancellationClosed
	}

	req.ResponseStatus = models.CancellationResponseDisputed
	req.RespondedAt = &now
	if note != "" {
		req.DisputeNote = &note
	}
	return nil
}

// FinalizeCancellation is the initiator's binding decision to cancel
// despite a dispute. Only the original initiator may finalize, and only
// after the responder disputed.
func FinalizeCancellation(s *models.Session, req *models.CancellationRequest, actor string, finalNote string, now time.Time) error {
	if !s.HasParticipant(actor) {
		return ErrNotParticipant
	}
	if s.Status != models.SessionStatusActive {
		return ErrNotActive
	}
	if req.Resolution != models.CancellationResolutionPending {
		return ErrCancellationClosed
	}
	if actor != req.InitiatorID {
		return ErrNotInitiator
	}
	if req.ResponseStatus != models.CancellationResponseDisputed {
		return ErrNotDisputed
	}

	if finalNote != "" {
		req.FinalNote = &finalNote
	}
	req.Resolution = models.CancellationResolutionCanceled
	req.ResolvedAt = &now
	s.Status = models.SessionStatusCanceled
	s.UpdatedAt = now
	return nil
}

func validateCancellationResponse(s *models.Session, req *models.CancellationRequest, actor string) error {
	if !s.HasParticipant(actor) {
		return ErrNotParticipant
	}
	if s.Status != models.SessionStatusActive {
		return ErrNotActive
	}
	if req.Resolution != models.CancellationResolutionPending {
		return ErrCancellationClosed
	}
	if actor == req.InitiatorID {
		return ErrOwnRequest
	}
	return nil
}
