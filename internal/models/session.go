package models

import "time"

type SessionStatus string

const (
	SessionStatusPending   SessionStatus = "pending"
	SessionStatusActive    SessionStatus = "active"
	SessionStatusCompleted SessionStatus = "completed"
	SessionStatusCanceled  SessionStatus = "canceled"
	SessionStatusRejected  SessionStatus = "rejected"
)

// Terminal reports whether a session in this status can never change again.
func (s SessionStatus) Terminal() bool {
	switch s {
	case SessionStatusCompleted, SessionStatusCanceled, SessionStatusRejected:
		return true
	}
	return false
}

// Session is one proposed or active skill exchange between two users.
// The proposer opens the session; the counterpart decides it. The
// completion sub-state columns double as the compare-and-swap predicate
// for concurrent responders, so they are only ever written together with
// the satellite CompletionRequest rows in a single transaction.
type Session struct {
	ID            string
	ProposerID    string
	CounterpartID string

	ProposerSkillID    string
	ProposerService    string
	CounterpartSkillID string
	CounterpartService string

	StartDate time.Time
	EndDate   time.Time

	IsAccepted *bool
	Status     SessionStatus

	CompletionRequestedBy *string
	CompletionRequestedAt *time.Time
	CompletionApprovedBy  *string
	CompletionApprovedAt  *time.Time
	CompletionRejectedBy  *string
	CompletionRejectedAt  *time.Time
	CompletionRejectedWhy *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// OtherParticipant returns the participant opposite to userID, or "" when
// userID is not a participant at all.
func (s Session) OtherParticipant(userID string) string {
	switch userID {
	case s.ProposerID:
		return s.CounterpartID
	case s.CounterpartID:
		return s.ProposerID
	}
	return ""
}

func (s Session) HasParticipant(userID string) bool {
	return userID == s.ProposerID || userID == s.CounterpartID
}

type CounterOfferStatus string

const (
	CounterOfferPending  CounterOfferStatus = "pending"
	CounterOfferAccepted CounterOfferStatus = "accepted"
	CounterOfferRejected CounterOfferStatus = "rejected"
)

// CounterOffer carries alternative terms proposed by the counterpart of a
// still-pending session. Accepting one activates the parent session under
// the offered terms; rejecting one leaves the parent pending.
type CounterOffer struct {
	ID        string
	SessionID string
	OfferedBy string

	ProposerSkillID    string
	ProposerService    string
	CounterpartSkillID string
	CounterpartService string
	StartDate          time.Time
	EndDate            time.Time
	Note               string

	Status    CounterOfferStatus
	DecidedAt *time.Time
	CreatedAt time.Time
}

type CompletionStatus string

const (
	CompletionPending  CompletionStatus = "pending"
	CompletionApproved CompletionStatus = "approved"
	CompletionRejected CompletionStatus = "rejected"
	// CompletionSuperseded closes a request that was still open from the
	// other participant when a response settled the handshake. Both sides
	// may have an open ask at once; any response settles them all.
	CompletionSuperseded CompletionStatus = "superseded"
)

// CompletionRequest records one ask to mark an active session finished.
// Rows are the durable history; the parent session's completion columns
// gate which request, if any, is currently awaiting a response.
type CompletionRequest struct {
	ID          string
	SessionID   string
	RequestedBy string
	Status      CompletionStatus
	Reason      *string
	RespondedBy *string
	RespondedAt *time.Time
	CreatedAt   time.Time
}

type CancellationResponse string

const (
	CancellationResponsePending  CancellationResponse = "pending"
	CancellationResponseAgreed   CancellationResponse = "agreed"
	CancellationResponseDisputed CancellationResponse = "disputed"
)

type CancellationResolution string

const (
	CancellationResolutionPending  CancellationResolution = "pending"
	CancellationResolutionCanceled CancellationResolution = "canceled"
)

// CancellationRequest is one ask to terminate an active session early.
// At most one per session may have Resolution pending at a time. Once
// Resolution leaves pending the record is immutable.
type CancellationRequest struct {
	ID          string
	SessionID   string
	InitiatorID string

	Reason       string
	Description  string
	EvidenceURLs []string

	ResponseStatus CancellationResponse
	Resolution     CancellationResolution
	DisputeNote    *string
	FinalNote      *string
	RespondedAt    *time.Time
	ResolvedAt     *time.Time
	CreatedAt      time.Time
}

// Notification is the stored copy of a dispatched event, kept for in-app
// listing. Delivery itself goes over the Redis stream and is best-effort.
type Notification struct {
	ID        string
	UserID    string
	SessionID string
	Kind      string
	Message   string
	Read      bool
	CreatedAt time.Time
}
