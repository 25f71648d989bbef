package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Code102SoftwareProject/skill-swap-hub-sub004/internal/exchange"
	"github.com/Code102SoftwareProject/skill-swap-hub-sub004/internal/ids"
	"github.com/Code102SoftwareProject/skill-swap-hub-sub004/internal/models"
)

// CompletionService runs the completion handshake of an active session:
// one participant asks, the other approves or rejects.
type CompletionService struct {
	sessions    SessionStore
	completions CompletionStore
	notifier    *Notifier
	invalidator ViewInvalidator
	log         zerolog.Logger
}

func NewCompletionService(
	sessions SessionStore,
	completions CompletionStore,
	notifier *Notifier,
	invalidator ViewInvalidator,
	log zerolog.Logger,
) *CompletionService {
	return &CompletionService{
		sessions:    sessions,
		completions: completions,
		notifier:    notifier,
		invalidator: invalidator,
		log:         log,
	}
}

// Request files a completion request by actor.
func (s *CompletionService) Request(ctx context.Context, sessionID, actor string) (models.CompletionRequest, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return models.CompletionRequest{}, err
	}

	now := time.Now().UTC()
	if err := exchange.RequestCompletion(&session, actor, now); err != nil {
		return models.CompletionRequest{}, err
	}

	req := models.CompletionRequest{
		ID:          ids.New(),
		SessionID:   session.ID,
		RequestedBy: actor,
		Status:      models.CompletionPending,
		CreatedAt:   now,
	}

	if err := s.completions.CreateRequest(ctx, req); err != nil {
		return models.CompletionRequest{}, err
	}

	s.notifier.Notify(ctx, session.OtherParticipant(actor), session.ID, "completion.requested", "The other participant asked to mark your exchange as completed.")

	return req, nil
}

// Respond approves or rejects the pending completion request. Approving
// completes the session; rejecting clears the request so a fresh cycle
// may start, and records why.
func (s *CompletionService) Respond(ctx context.Context, sessionID, actor string, approve bool, reason string) (models.Session, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return models.Session{}, err
	}

	requesterBefore := session.CompletionRequestedBy

	now := time.Now().UTC()
	if approve {
		if err := exchange.ApproveCompletion(&session, actor, now); err != nil {
			return models.Session{}, err
		}
		if err := s.completions.Approve(ctx, session.ID, *requesterBefore, actor, now); err != nil {
			return models.Session{}, err
		}

		s.notifier.Notify(ctx, *requesterBefore, session.ID, "completion.approved", "Your completion request was approved; the exchange is completed.")
		s.invalidator.InvalidateUsers(ctx, session.ProposerID, session.CounterpartID)
		return session, nil
	}

	if err := exchange.RejectCompletion(&session, actor, reason, now); err != nil {
		return models.Session{}, err
	}

	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = exchange.DefaultRejectionReason
	}
	if err := s.completions.Reject(ctx, session.ID, *requesterBefore, actor, reason, now); err != nil {
		return models.Session{}, err
	}

	s.notifier.Notify(ctx, *requesterBefore, session.ID, "completion.rejected", "Your completion request was declined: "+reason)

	return session, nil
}

func (s *CompletionService) ListBySession(ctx context.Context, sessionID, actor string) ([]models.CompletionRequest, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.HasParticipant(actor) {
		return nil, exchange.ErrNotParticipant
	}
	return s.completions.ListBySession(ctx, sessionID)
}

func (s *CompletionService) ListMine(ctx context.Context, actor string) ([]models.CompletionRequest, error) {
	return s.completions.ListByUser(ctx, actor)
}
