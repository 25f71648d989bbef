package service

import (
	"context"
	"time"

	"github.com/Code102SoftwareProject/skill-swap-hub-sub004/internal/models"
)

// Store contracts consumed by the services. The repository package
// satisfies all of them; tests substitute in-memory fakes.

type SessionStore interface {
	Create(ctx context.Context, s models.Session) error
	GetByID(ctx context.Context, id string) (models.Session, error)
	ListByUser(ctx context.Context, userID string, status models.SessionStatus) ([]models.Session, error)
	CountOutgoingPending(ctx context.Context, proposerID string) (int, error)
	ApplyDecision(ctx context.Context, s models.Session) error
	DeletePending(ctx context.Context, id string, proposerID string) error
}

type SkillStore interface {
	GetByID(ctx context.Context, id string) (models.Skill, error)
}

type CounterOfferStore interface {
	Create(ctx context.Context, offer models.CounterOffer) error
	GetByID(ctx context.Context, id string) (models.CounterOffer, error)
	ListBySession(ctx context.Context, sessionID string) ([]models.CounterOffer, error)
	Accept(ctx context.Context, offer models.CounterOffer, s models.Session) error
	Reject(ctx context.Context, offer models.CounterOffer) error
}

type CompletionStore interface {
	CreateRequest(ctx context.Context, req models.CompletionRequest) error
	Approve(ctx context.Context, sessionID, requesterID, approverID string, at time.Time) error
	Reject(ctx context.Context, sessionID, requesterID, rejecterID, reason string, at time.Time) error
	ListBySession(ctx context.Context, sessionID string) ([]models.CompletionRequest, error)
	ListByUser(ctx context.Context, userID string) ([]models.CompletionRequest, error)
}

type CancellationStore interface {
	Create(ctx context.Context, req models.CancellationRequest) error
	GetOpenBySession(ctx context.Context, sessionID string) (models.CancellationRequest, error)
	ListBySession(ctx context.Context, sessionID string) ([]models.CancellationRequest, error)
	Agree(ctx context.Context, requestID, sessionID string, at time.Time) error
	Dispute(ctx context.Context, requestID string, note *string, at time.Time) error
	Finalize(ctx context.Context, requestID, sessionID string, finalNote *string, at time.Time) error
}

type NotificationStore interface {
	Create(ctx context.Context, n models.Notification) error
}

type UserStore interface {
	Create(ctx context.Context, user models.User) error
	FindByEmail(ctx context.Context, email string) (models.User, error)
	GetByID(ctx context.Context, id string) (models.User, error)
}

// ViewInvalidator drops cached session views after an externally visible
// status change. Calls are best effort.
type ViewInvalidator interface {
	InvalidateUsers(ctx context.Context, userIDs ...string)
}
