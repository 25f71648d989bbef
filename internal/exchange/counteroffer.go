package exchange

import (
	"time"

	"github.com/Code102SoftwareProject/skill-swap-hub-sub004/internal/models"
)

// ValidateCounterOffer checks that actor may attach a counter offer to
// the session. Counter offers are the counterpart's alternative to a
// flat accept/reject, so only the counterpart files them, and only while
// the session is still undecided.
func ValidateCounterOffer(s *models.Session, actor string) error {
	if !s.HasParticipant(actor) {
		return ErrNotParticipant
	}
	if actor == s.ProposerID {
		return ErrOwnDecision
	}
	if s.IsAccepted != nil || s.Status != models.SessionStatusPending {
		return ErrAlreadyDecided
	}
	return nil
}

// DecideCounterOffer applies accept or reject to a pending counter
// offer. The decider is always the participant opposite to whoever filed
// the offer. Accepting adopts the offered terms onto the parent session
// and activates it, exactly as a direct accept would; rejecting leaves
// the parent pending and open to further negotiation.
func DecideCounterOffer(s *models.Session, offer *models.CounterOffer, actor string, accept bool, now time.Time) error {
	if !s.HasParticipant(actor) {
		return ErrNotParticipant
	}
	if actor == offer.OfferedBy {
		return ErrOwnDecision
	}
	if offer.Status != models.CounterOfferPending {
		return ErrOfferDecided
	}
	if s.IsAccepted != nil || s.Status != models.SessionStatusPending {
		return ErrAlreadyDecided
	}

	offer.DecidedAt = &now
	if !accept {
		offer.Status = models.CounterOfferRejected
		return nil
	}

	offer.Status = models.CounterOfferAccepted

	s.ProposerSkillID = offer.ProposerSkillID
	s.ProposerService = offer.ProposerService
	s.CounterpartSkillID = offer.CounterpartSkillID
	s.CounterpartService = offer.CounterpartService
	s.StartDate = offer.StartDate
	s.EndDate = offer.EndDate

	accepted := true
	s.IsAccepted = &accepted
	s.Status = models.SessionStatusActive
	s.UpdatedAt = now
	return nil
}
