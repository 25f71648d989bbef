package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/Code102SoftwareProject/skill-swap-hub-sub004/internal/evidence"
	"github.com/Code102SoftwareProject/skill-swap-hub-sub004/internal/exchange"
	"github.com/Code102SoftwareProject/skill-swap-hub-sub004/internal/ids"
	"github.com/Code102SoftwareProject/skill-swap-hub-sub004/internal/models"
	"github.com/Code102SoftwareProject/skill-swap-hub-sub004/internal/repository"
)

var ErrReasonRequired = errors.New("a cancellation reason is required")

// EvidenceUploader stores one evidence file and returns its URL.
type EvidenceUploader interface {
	Put(ctx context.Context, sessionID string, name string, contentType string, r io.Reader, size int64) (string, error)
}

// EvidenceFile is one uploaded attachment supporting a cancellation
// request.
type EvidenceFile struct {
	Name string
	Data []byte
}

// CancellationService runs the cancellation handshake: a provisional
// request by one participant, then agreement, dispute, or — after a
// dispute — the initiator's finalization.
type CancellationService struct {
	sessions      SessionStore
	cancellations CancellationStore
	uploader      EvidenceUploader
	notifier      *Notifier
	invalidator   ViewInvalidator
	log           zerolog.Logger
}

func NewCancellationService(
	sessions SessionStore,
	cancellations CancellationStore,
	uploader EvidenceUploader,
	notifier *Notifier,
	invalidator ViewInvalidator,
	log zerolog.Logger,
) *CancellationService {
	return &CancellationService{
		sessions:      sessions,
		cancellations: cancellations,
		uploader:      uploader,
		notifier:      notifier,
		invalidator:   invalidator,
		log:           log,
	}
}

// Request files a cancellation request with optional evidence files.
// The session status is deliberately untouched: cancellation stays
// provisional until resolved.
func (s *CancellationService) Request(ctx context.Context, sessionID, actor, reason, description string, files []EvidenceFile) (models.CancellationRequest, error) {
	if reason == "" {
		return models.CancellationRequest{}, ErrReasonRequired
	}

	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return models.CancellationRequest{}, err
	}

	var open *models.CancellationRequest
	existing, err := s.cancellations.GetOpenBySession(ctx, sessionID)
	switch {
	case err == nil:
		open = &existing
	case errors.Is(err, repository.ErrCancellationNotFound):
	default:
		return models.CancellationRequest{}, err
	}

	if err := exchange.ValidateCancellation(&session, open, actor); err != nil {
		return models.CancellationRequest{}, err
	}

	urls, err := s.uploadEvidence(ctx, sessionID, files)
	if err != nil {
		return models.CancellationRequest{}, err
	}

	req := models.CancellationRequest{
		ID:             ids.New(),
		SessionID:      session.ID,
		InitiatorID:    actor,
		Reason:         reason,
		Description:    description,
		EvidenceURLs:   urls,
		ResponseStatus: models.CancellationResponsePending,
		Resolution:     models.CancellationResolutionPending,
		CreatedAt:      time.Now().UTC(),
	}

	if err := s.cancellations.Create(ctx, req); err != nil {
		return models.CancellationRequest{}, err
	}

	s.notifier.Notify(ctx, session.OtherParticipant(actor), session.ID, "cancellation.requested", "The other participant asked to cancel your exchange.")

	return req, nil
}

func (s *CancellationService) uploadEvidence(ctx context.Context, sessionID string, files []EvidenceFile) ([]string, error) {
	if len(files) == 0 {
		return nil, nil
	}
	if s.uploader == nil {
		return nil, errors.New("evidence storage unavailable")
	}

	urls := make([]string, 0, len(files))
	for _, file := range files {
		_, mime, err := evidence.Detect(file.Data)
		if err != nil {
			return nil, fmt.Errorf("evidence %q: %w", file.Name, err)
		}

		url, err := s.uploader.Put(ctx, sessionID, file.Name, mime, bytes.NewReader(file.Data), int64(len(file.Data)))
		if err != nil {
			return nil, fmt.Errorf("store evidence %q: %w", file.Name, err)
		}
		urls = append(urls, url)
	}
	return urls, nil
}

// Get returns the session's unresolved cancellation request.
func (s *CancellationService) Get(ctx context.Context, sessionID, actor string) (models.CancellationRequest, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return models.CancellationRequest{}, err
	}
	if !session.HasParticipant(actor) {
		return models.CancellationRequest{}, exchange.ErrNotParticipant
	}
	return s.cancellations.GetOpenBySession(ctx, sessionID)
}

func (s *CancellationService) History(ctx context.Context, sessionID, actor string) ([]models.CancellationRequest, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.HasParticipant(actor) {
		return nil, exchange.ErrNotParticipant
	}
	return s.cancellations.ListBySession(ctx, sessionID)
}

// Agree is the responder consenting; the session cancels immediately.
func (s *CancellationService) Agree(ctx context.Context, sessionID, actor string) (models.CancellationRequest, error) {
	session, req, err := s.load(ctx, sessionID)
	if err != nil {
		return models.CancellationRequest{}, err
	}

	now := time.Now().UTC()
	if err := exchange.AgreeCancellation(&session, &req, actor, now); err != nil {
		return models.CancellationRequest{}, err
	}

	if err := s.cancellations.Agree(ctx, req.ID, session.ID, now); err != nil {
		return models.CancellationRequest{}, err
	}

	s.notifier.Notify(ctx, req.InitiatorID, session.ID, "cancellation.agreed", "Your cancellation request was accepted; the exchange is canceled.")
	s.invalidator.InvalidateUsers(ctx, session.ProposerID, session.CounterpartID)

	return req, nil
}

// Dispute records the responder's objection; the session stays active.
func (s *CancellationService) Dispute(ctx context.Context, sessionID, actor, note string) (models.CancellationRequest, error) {
	session, req, err := s.load(ctx, sessionID)
	if err != nil {
		return models.CancellationRequest{}, err
	}

	now := time.Now().UTC()
	if err := exchange.DisputeCancellation(&session, &req, actor, note, now); err != nil {
		return models.CancellationRequest{}, err
	}

	if err := s.cancellations.Dispute(ctx, req.ID, req.DisputeNote, now); err != nil {
		return models.CancellationRequest{}, err
	}

	s.notifier.Notify(ctx, req.InitiatorID, session.ID, "cancellation.disputed", "Your cancellation request was disputed.")

	return req, nil
}

// Finalize is the initiator's binding decision after a dispute.
func (s *CancellationService) Finalize(ctx context.Context, sessionID, actor, finalNote string) (models.CancellationRequest, error) {
	session, req, err := s.load(ctx, sessionID)
	if err != nil {
		return models.CancellationRequest{}, err
	}

	now := time.Now().UTC()
	if err := exchange.FinalizeCancellation(&session, &req, actor, finalNote, now); err != nil {
		return models.CancellationRequest{}, err
	}

	if err := s.cancellations.Finalize(ctx, req.ID, session.ID, req.FinalNote, now); err != nil {
		return models.CancellationRequest{}, err
	}

	s.notifier.Notify(ctx, session.OtherParticipant(actor), session.ID, "cancellation.finalized", "The cancellation was finalized; the exchange is canceled.")
	s.invalidator.InvalidateUsers(ctx, session.ProposerID, session.CounterpartID)

	return req, nil
}

func (s *CancellationService) load(ctx context.Context, sessionID string) (models.Session, models.CancellationRequest, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return models.Session{}, models.CancellationRequest{}, err
	}
	req, err := s.cancellations.GetOpenBySession(ctx, sessionID)
	if err != nil {
		return models.Session{}, models.CancellationRequest{}, err
	}
	return session, req, nil
}
