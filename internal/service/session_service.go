package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/Code102SoftwareProject/skill-swap-hub-sub004/internal/config"
	"github.com/Code102SoftwareProject/skill-swap-hub-sub004/internal/exchange"
	"github.com/Code102SoftwareProject/skill-swap-hub-sub004/internal/ids"
	"github.com/Code102SoftwareProject/skill-swap-hub-sub004/internal/models"
)

var (
	ErrSkillOwnership = errors.New("skill does not belong to its declared owner")
	ErrTooManyPending = errors.New("outgoing pending request limit reached")
)

// SessionService owns session creation, the direct accept/reject
// decision, counter-offer negotiation, and deletion of still-pending
// proposals. Every mutation re-reads the session, runs the exchange
// rules against the fresh state, then applies a conditional update so a
// racing second writer fails cleanly instead of overwriting.
type SessionService struct {
	sessions    SessionStore
	skills      SkillStore
	offers      CounterOfferStore
	notifier    *Notifier
	invalidator ViewInvalidator
	cfg         *config.AppConfig
	log         zerolog.Logger
}

func NewSessionService(
	sessions SessionStore,
	skills SkillStore,
	offers CounterOfferStore,
	notifier *Notifier,
	invalidator ViewInvalidator,
	cfg *config.AppConfig,
	log zerolog.Logger,
) *SessionService {
	return &SessionService{
		sessions:    sessions,
		skills:      skills,
		offers:      offers,
		notifier:    notifier,
		invalidator: invalidator,
		cfg:         cfg,
		log:         log,
	}
}

type CreateSessionInput struct {
	ProposerID         string
	CounterpartID      string
	ProposerSkillID    string
	ProposerService    string
	CounterpartSkillID string
	CounterpartService string
	StartDate          time.Time
	EndDate            time.Time
}

func (s *SessionService) Create(ctx context.Context, input CreateSessionInput) (models.Session, error) {
	if err := exchange.ValidateProposal(input.ProposerID, input.CounterpartID); err != nil {
		return models.Session{}, err
	}

	if err := s.checkSkillOwner(ctx, input.ProposerSkillID, input.ProposerID); err != nil {
		return models.Session{}, err
	}
	if err := s.checkSkillOwner(ctx, input.CounterpartSkillID, input.CounterpartID); err != nil {
		return models.Session{}, err
	}

	pending, err := s.sessions.CountOutgoingPending(ctx, input.ProposerID)
	if err != nil {
		return models.Session{}, fmt.Errorf("count pending: %w", err)
	}
	if pending >= s.cfg.Engine.MaxOutgoingPending {
		return models.Session{}, ErrTooManyPending
	}

	now := time.Now().UTC()
	session := models.Session{
		ID:                 ids.New(),
		ProposerID:         input.ProposerID,
		CounterpartID:      input.CounterpartID,
		ProposerSkillID:    input.ProposerSkillID,
		ProposerService:    input.ProposerService,
		CounterpartSkillID: input.CounterpartSkillID,
		CounterpartService: input.CounterpartService,
		StartDate:          input.StartDate,
		EndDate:            input.EndDate,
		Status:             models.SessionStatusPending,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return models.Session{}, fmt.Errorf("create session: %w", err)
	}

	s.notifier.Notify(ctx, session.CounterpartID, session.ID, "session.proposed", "You received a new skill exchange proposal.")

	return session, nil
}

func (s *SessionService) checkSkillOwner(ctx context.Context, skillID, ownerID string) error {
	skill, err := s.skills.GetByID(ctx, skillID)
	if err != nil {
		return err
	}
	if skill.UserID != ownerID {
		return ErrSkillOwnership
	}
	return nil
}

// Get returns the session, restricted to its participants.
func (s *SessionService) Get(ctx context.Context, sessionID, actor string) (models.Session, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return models.Session{}, err
	}
	if !session.HasParticipant(actor) {
		return models.Session{}, exchange.ErrNotParticipant
	}
	return session, nil
}

func (s *SessionService) List(ctx context.Context, actor string, status models.SessionStatus) ([]models.Session, error) {
	return s.sessions.ListByUser(ctx, actor, status)
}

// Respond applies the counterpart's accept or reject.
func (s *SessionService) Respond(ctx context.Context, sessionID, actor string, accept bool) (models.Session, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return models.Session{}, err
	}

	now := time.Now().UTC()
	if err := exchange.Decide(&session, actor, accept, now); err != nil {
		return models.Session{}, err
	}

	if err := s.sessions.ApplyDecision(ctx, session); err != nil {
		return models.Session{}, err
	}

	kind, message := "session.rejected", "Your skill exchange proposal was declined."
	if accept {
		kind, message = "session.accepted", "Your skill exchange proposal was accepted."
	}
	s.notifier.Notify(ctx, session.ProposerID, session.ID, kind, message)
	s.invalidator.InvalidateUsers(ctx, session.ProposerID, session.CounterpartID)

	return session, nil
}

// Delete removes a still-undecided proposal on the proposer's request.
func (s *SessionService) Delete(ctx context.Context, sessionID, actor string) error {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return err
	}

	if err := exchange.CanDelete(&session, actor); err != nil {
		return err
	}

	if err := s.sessions.DeletePending(ctx, sessionID, actor); err != nil {
		return err
	}

	s.invalidator.InvalidateUsers(ctx, session.ProposerID, session.CounterpartID)
	return nil
}

type CounterOfferInput struct {
	ProposerSkillID    string
	ProposerService    string
	CounterpartSkillID string
	CounterpartService string
	StartDate          time.Time
	EndDate            time.Time
	Note               string
}

// CreateCounterOffer attaches the counterpart's alternative terms to a
// pending session.
func (s *SessionService) CreateCounterOffer(ctx context.Context, sessionID, actor string, input CounterOfferInput) (models.CounterOffer, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return models.CounterOffer{}, err
	}

	if err := exchange.ValidateCounterOffer(&session, actor); err != nil {
		return models.CounterOffer{}, err
	}

	if err := s.checkSkillOwner(ctx, input.ProposerSkillID, session.ProposerID); err != nil {
		return models.CounterOffer{}, err
	}
	if err := s.checkSkillOwner(ctx, input.CounterpartSkillID, session.CounterpartID); err != nil {
		return models.CounterOffer{}, err
	}

	offer := models.CounterOffer{
		ID:                 ids.New(),
		SessionID:          session.ID,
		OfferedBy:          actor,
		ProposerSkillID:    input.ProposerSkillID,
		ProposerService:    input.ProposerService,
		CounterpartSkillID: input.CounterpartSkillID,
		CounterpartService: input.CounterpartService,
		StartDate:          input.StartDate,
		EndDate:            input.EndDate,
		Note:               input.Note,
		Status:             models.CounterOfferPending,
		CreatedAt:          time.Now().UTC(),
	}

	if err := s.offers.Create(ctx, offer); err != nil {
		return models.CounterOffer{}, err
	}

	s.notifier.Notify(ctx, session.OtherParticipant(actor), session.ID, "session.counter_offered", "A counter offer was made on your skill exchange proposal.")

	return offer, nil
}

func (s *SessionService) ListCounterOffers(ctx context.Context, sessionID, actor string) ([]models.CounterOffer, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.HasParticipant(actor) {
		return nil, exchange.ErrNotParticipant
	}
	return s.offers.ListBySession(ctx, sessionID)
}

// DecideCounterOffer accepts or rejects a counter offer. Accepting
// activates the parent session under the offered terms.
func (s *SessionService) DecideCounterOffer(ctx context.Context, sessionID, offerID, actor string, accept bool) (models.Session, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return models.Session{}, err
	}

	offer, err := s.offers.GetByID(ctx, offerID)
	if err != nil {
		return models.Session{}, err
	}
	if offer.SessionID != session.ID {
		return models.Session{}, exchange.ErrNotParticipant
	}

	now := time.Now().UTC()
	if err := exchange.DecideCounterOffer(&session, &offer, actor, accept, now); err != nil {
		return models.Session{}, err
	}

	if accept {
		if err := s.offers.Accept(ctx, offer, session); err != nil {
			return models.Session{}, err
		}
		s.notifier.Notify(ctx, offer.OfferedBy, session.ID, "session.accepted", "Your counter offer was accepted; the exchange is now active.")
		s.invalidator.InvalidateUsers(ctx, session.ProposerID, session.CounterpartID)
	} else {
		if err := s.offers.Reject(ctx, offer); err != nil {
			return models.Session{}, err
		}
		s.notifier.Notify(ctx, offer.OfferedBy, session.ID, "session.counter_rejected", "Your counter offer was declined.")
	}

	return session, nil
}
