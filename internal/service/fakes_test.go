package service_test

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Code102SoftwareProject/skill-swap-hub-sub004/internal/config"
	"github.com/Code102SoftwareProject/skill-swap-hub-sub004/internal/models"
	"github.com/Code102SoftwareProject/skill-swap-hub-sub004/internal/repository"
	"github.com/Code102SoftwareProject/skill-swap-hub-sub004/internal/service"
)

const (
	alice = "user_alice"
	bob   = "user_bob"
	carol = "user_carol"
)

func testConfig() *config.AppConfig {
	return &config.AppConfig{
		Engine: config.EngineConfig{
			MaxOutgoingPending:        3,
			StalePendingDays:          14,
			NotificationRetentionDays: 30,
		},
	}
}

// fakeSessionStore keeps sessions in a map and mimics the repository's
// conditional-update behavior: decisions and deletes only land while the
// stored row still satisfies the precondition.
type fakeSessionStore struct {
	mu       sync.Mutex
	sessions map[string]models.Session
}

func newFakeSessionStore(seed ...models.Session) *fakeSessionStore {
	f := &fakeSessionStore{sessions: make(map[string]models.Session)}
	for _, s := range seed {
		f.sessions[s.ID] = s
	}
	return f
}

func (f *fakeSessionStore) Create(_ context.Context, s models.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[s.ID] = s
	return nil
}

func (f *fakeSessionStore) GetByID(_ context.Context, id string) (models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok {
		return models.Session{}, repository.ErrSessionNotFound
	}
	return s, nil
}

func (f *fakeSessionStore) ListByUser(_ context.Context, userID string, status models.SessionStatus) ([]models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Session
	for _, s := range f.sessions {
		if !s.HasParticipant(userID) {
			continue
		}
		if status != "" && s.Status != status {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeSessionStore) CountOutgoingPending(_ context.Context, proposerID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, s := range f.sessions {
		if s.ProposerID == proposerID && s.Status == models.SessionStatusPending && s.IsAccepted == nil {
			n++
		}
	}
	return n, nil
}

func (f *fakeSessionStore) ApplyDecision(_ context.Context, s models.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.sessions[s.ID]
	if !ok {
		return repository.ErrSessionNotFound
	}
	if stored.Status != models.SessionStatusPending || stored.IsAccepted != nil {
		return repository.ErrStateConflict
	}
	f.sessions[s.ID] = s
	return nil
}

func (f *fakeSessionStore) DeletePending(_ context.Context, id string, proposerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.sessions[id]
	if !ok {
		return repository.ErrSessionNotFound
	}
	if stored.ProposerID != proposerID || stored.Status != models.SessionStatusPending || stored.IsAccepted != nil {
		return repository.ErrStateConflict
	}
	delete(f.sessions, id)
	return nil
}

type fakeSkillStore struct {
	skills map[string]models.Skill
}

func newFakeSkillStore(skills ...models.Skill) *fakeSkillStore {
	f := &fakeSkillStore{skills: make(map[string]models.Skill)}
	for _, s := range skills {
		f.skills[s.ID] = s
	}
	return f
}

func (f *fakeSkillStore) GetByID(_ context.Context, id string) (models.Skill, error) {
	s, ok := f.skills[id]
	if !ok {
		return models.Skill{}, repository.ErrSkillNotFound
	}
	return s, nil
}

type fakeCounterOfferStore struct {
	mu       sync.Mutex
	offers   map[string]models.CounterOffer
	sessions *fakeSessionStore
}

func newFakeCounterOfferStore(sessions *fakeSessionStore) *fakeCounterOfferStore {
	return &fakeCounterOfferStore{offers: make(map[string]models.CounterOffer), sessions: sessions}
}

func (f *fakeCounterOfferStore) Create(_ context.Context, offer models.CounterOffer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.offers[offer.ID] = offer
	return nil
}

func (f *fakeCounterOfferStore) GetByID(_ context.Context, id string) (models.CounterOffer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.offers[id]
	if !ok {
		return models.CounterOffer{}, repository.ErrCounterOfferNotFound
	}
	return o, nil
}

func (f *fakeCounterOfferStore) ListBySession(_ context.Context, sessionID string) ([]models.CounterOffer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.CounterOffer
	for _, o := range f.offers {
		if o.SessionID == sessionID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeCounterOfferStore) Accept(ctx context.Context, offer models.CounterOffer, s models.Session) error {
	f.mu.Lock()
	f.offers[offer.ID] = offer
	// Any sibling offers still pending lose the race.
	for id, o := range f.offers {
		if o.SessionID == offer.SessionID && id != offer.ID && o.Status == models.CounterOfferPending {
			o.Status = models.CounterOfferRejected
			f.offers[id] = o
		}
	}
	f.mu.Unlock()
	return f.sessions.ApplyDecision(ctx, s)
}

func (f *fakeCounterOfferStore) Reject(_ context.Context, offer models.CounterOffer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.offers[offer.ID] = offer
	return nil
}

type fakeCompletionStore struct {
	mu       sync.Mutex
	requests map[string]models.CompletionRequest
	sessions *fakeSessionStore
}

func newFakeCompletionStore(sessions *fakeSessionStore) *fakeCompletionStore {
	return &fakeCompletionStore{requests: make(map[string]models.CompletionRequest), sessions: sessions}
}

func (f *fakeCompletionStore) CreateRequest(_ context.Context, req models.CompletionRequest) error {
	f.mu.Lock()
	f.requests[req.ID] = req
	f.mu.Unlock()

	f.sessions.mu.Lock()
	defer f.sessions.mu.Unlock()
	s := f.sessions.sessions[req.SessionID]
	requester := req.RequestedBy
	s.CompletionRequestedBy = &requester
	s.CompletionRequestedAt = &req.CreatedAt
	f.sessions.sessions[req.SessionID] = s
	return nil
}

func (f *fakeCompletionStore) Approve(_ context.Context, sessionID, requesterID, approverID string, at time.Time) error {
	f.sessions.mu.Lock()
	s := f.sessions.sessions[sessionID]
	if s.Status != models.SessionStatusActive || s.CompletionRequestedBy == nil || *s.CompletionRequestedBy != requesterID {
		f.sessions.mu.Unlock()
		return repository.ErrStateConflict
	}
	approver := approverID
	s.CompletionApprovedBy = &approver
	s.CompletionApprovedAt = &at
	s.Status = models.SessionStatusCompleted
	f.sessions.sessions[sessionID] = s
	f.sessions.mu.Unlock()

	f.mu.Lock()
	defer f.mu.Unlock()
	for id, r := range f.requests {
		if r.SessionID == sessionID && r.Status == models.CompletionPending {
			if r.RequestedBy == requesterID {
				r.Status = models.CompletionApproved
			} else {
				r.Status = models.CompletionSuperseded
			}
			responder := approverID
			r.RespondedBy = &responder
			r.RespondedAt = &at
			f.requests[id] = r
		}
	}
	return nil
}

func (f *fakeCompletionStore) Reject(_ context.Context, sessionID, requesterID, rejecterID, reason string, at time.Time) error {
	f.sessions.mu.Lock()
	s := f.sessions.sessions[sessionID]
	if s.Status != models.SessionStatusActive || s.CompletionRequestedBy == nil || *s.CompletionRequestedBy != requesterID {
		f.sessions.mu.Unlock()
		return repository.ErrStateConflict
	}
	s.CompletionRequestedBy = nil
	s.CompletionRequestedAt = nil
	rejecter := rejecterID
	s.CompletionRejectedBy = &rejecter
	s.CompletionRejectedAt = &at
	s.CompletionRejectedWhy = &reason
	f.sessions.sessions[sessionID] = s
	f.sessions.mu.Unlock()

	f.mu.Lock()
	defer f.mu.Unlock()
	for id, r := range f.requests {
		if r.SessionID == sessionID && r.Status == models.CompletionPending {
			if r.RequestedBy == requesterID {
				r.Status = models.CompletionRejected
				r.Reason = &reason
			} else {
				r.Status = models.CompletionSuperseded
			}
			responder := rejecterID
			r.RespondedBy = &responder
			r.RespondedAt = &at
			f.requests[id] = r
		}
	}
	return nil
}

func (f *fakeCompletionStore) ListBySession(_ context.Context, sessionID string) ([]models.CompletionRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.CompletionRequest
	for _, r := range f.requests {
		if r.SessionID == sessionID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeCompletionStore) ListByUser(_ context.Context, userID string) ([]models.CompletionRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.CompletionRequest
	for _, r := range f.requests {
		if r.RequestedBy == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeCancellationStore struct {
	mu       sync.Mutex
	requests map[string]models.CancellationRequest
	sessions *fakeSessionStore
}

func newFakeCancellationStore(sessions *fakeSessionStore) *fakeCancellationStore {
	return &fakeCancellationStore{requests: make(map[string]models.CancellationRequest), sessions: sessions}
}

func (f *fakeCancellationStore) Create(_ context.Context, req models.CancellationRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests[req.ID] = req
	return nil
}

func (f *fakeCancellationStore) GetOpenBySession(_ context.Context, sessionID string) (models.CancellationRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.requests {
		if r.SessionID == sessionID && r.Resolution == models.CancellationResolutionPending {
			return r, nil
		}
	}
	return models.CancellationRequest{}, repository.ErrCancellationNotFound
}

func (f *fakeCancellationStore) ListBySession(_ context.Context, sessionID string) ([]models.CancellationRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.CancellationRequest
	for _, r := range f.requests {
		if r.SessionID == sessionID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeCancellationStore) Agree(_ context.Context, requestID, sessionID string, at time.Time) error {
	f.mu.Lock()
	r, ok := f.requests[requestID]
	if !ok || r.Resolution != models.CancellationResolutionPending {
		f.mu.Unlock()
		return repository.ErrStateConflict
	}
	r.ResponseStatus = models.CancellationResponseAgreed
	r.Resolution = models.CancellationResolutionCanceled
	r.RespondedAt = &at
	r.ResolvedAt = &at
	f.requests[requestID] = r
	f.mu.Unlock()
	return f.cancelSession(sessionID, at)
}

func (f *fakeCancellationStore) Dispute(_ context.Context, requestID string, note *string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.requests[requestID]
	if !ok || r.Resolution != models.CancellationResolutionPending || r.ResponseStatus != models.CancellationResponsePending {
		return repository.ErrStateConflict
	}
	r.ResponseStatus = models.CancellationResponseDisputed
	r.DisputeNote = note
	r.RespondedAt = &at
	f.requests[requestID] = r
	return nil
}

func (f *fakeCancellationStore) Finalize(_ context.Context, requestID, sessionID string, finalNote *string, at time.Time) error {
	f.mu.Lock()
	r, ok := f.requests[requestID]
	if !ok || r.ResponseStatus != models.CancellationResponseDisputed {
		f.mu.Unlock()
		return repository.ErrStateConflict
	}
	r.Resolution = models.CancellationResolutionCanceled
	r.FinalNote = finalNote
	r.ResolvedAt = &at
	f.requests[requestID] = r
	f.mu.Unlock()
	return f.cancelSession(sessionID, at)
}

func (f *fakeCancellationStore) cancelSession(sessionID string, at time.Time) error {
	f.sessions.mu.Lock()
	defer f.sessions.mu.Unlock()
	s, ok := f.sessions.sessions[sessionID]
	if !ok || s.Status != models.SessionStatusActive {
		return repository.ErrStateConflict
	}
	s.Status = models.SessionStatusCanceled
	s.UpdatedAt = at
	f.sessions.sessions[sessionID] = s
	return nil
}

// fakeNotificationStore records dispatched notifications; failNext makes
// the next Create fail so fire-and-forget behavior can be checked.
type fakeNotificationStore struct {
	mu       sync.Mutex
	created  []models.Notification
	failNext bool
}

func (f *fakeNotificationStore) Create(_ context.Context, n models.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNext {
		f.failNext = false
		return errors.New("notification store down")
	}
	f.created = append(f.created, n)
	return nil
}

func (f *fakeNotificationStore) sent() []models.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Notification(nil), f.created...)
}

type fakeInvalidator struct {
	mu    sync.Mutex
	users []string
}

func (f *fakeInvalidator) InvalidateUsers(_ context.Context, userIDs ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users = append(f.users, userIDs...)
}

type fakeUploader struct {
	mu   sync.Mutex
	puts []string
	err  error
}

func (f *fakeUploader) Put(_ context.Context, sessionID, name, contentType string, r io.Reader, size int64) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	url := "https://evidence.test/" + sessionID + "/" + name
	f.puts = append(f.puts, url)
	return url, nil
}

func testNotifier(store *fakeNotificationStore) *service.Notifier {
	return service.NewNotifier(store, nil, zerolog.Nop())
}

func seedPendingSession(id string) models.Session {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return models.Session{
		ID:                 id,
		ProposerID:         alice,
		CounterpartID:      bob,
		ProposerSkillID:    "skill_go",
		ProposerService:    "weekly Go lessons",
		CounterpartSkillID: "skill_photo",
		CounterpartService: "portrait shoots",
		StartDate:          now.AddDate(0, 0, 7),
		Status:             models.SessionStatusPending,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

func seedActiveSession(id string) models.Session {
	s := seedPendingSession(id)
	accepted := true
	s.IsAccepted = &accepted
	s.Status = models.SessionStatusActive
	return s
}
