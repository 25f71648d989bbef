package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Code102SoftwareProject/skill-swap-hub-sub004/internal/models"
)

var ErrSessionNotFound = errors.New("session not found")

const sessionColumns = `
	id, proposer_id, counterpart_id,
	proposer_skill_id, proposer_service, counterpart_skill_id, counterpart_service,
	start_date, end_date, is_accepted, status,
	completion_requested_by, completion_requested_at,
	completion_approved_by, completion_approved_at,
	completion_rejected_by, completion_rejected_at, completion_rejected_reason,
	created_at, updated_at
`

type SessionRepository struct {
	pool *pgxpool.Pool
}

func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

func (r *SessionRepository) Create(ctx context.Context, s models.Session) error {
	const query = `
		INSERT INTO swap_sessions (
			id, proposer_id, counterpart_id,
			proposer_skill_id, proposer_service, counterpart_skill_id, counterpart_service,
			start_date, end_date, is_accepted, status, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, NULL, $10, NOW(), NOW()
		)
	`

	_, err := r.pool.Exec(ctx, query,
		s.ID,
		s.ProposerID,
		s.CounterpartID,
		s.ProposerSkillID,
		s.ProposerService,
		s.CounterpartSkillID,
		s.CounterpartService,
		s.StartDate,
		s.EndDate,
		s.Status,
	)
	return err
}

func (r *SessionRepository) GetByID(ctx context.Context, id string) (models.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM swap_sessions WHERE id = $1`
	return scanSession(r.pool.QueryRow(ctx, query, id))
}

// ListByUser returns sessions where userID is either party, optionally
// narrowed to one status, newest first.
func (r *SessionRepository) ListByUser(ctx context.Context, userID string, status models.SessionStatus) ([]models.Session, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM swap_sessions
		WHERE (proposer_id = $1 OR counterpart_id = $1)
		  AND ($2 = '' OR status = $2)
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, userID, string(status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []models.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// CountOutgoingPending counts the proposer's undecided outgoing
// proposals, the quantity capped at session creation.
func (r *SessionRepository) CountOutgoingPending(ctx context.Context, proposerID string) (int, error) {
	const query = `
		SELECT COUNT(*) FROM swap_sessions
		WHERE proposer_id = $1 AND status = 'pending' AND is_accepted IS NULL
	`
	var count int
	if err := r.pool.QueryRow(ctx, query, proposerID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// ApplyDecision persists an accept/reject computed by the exchange
// rules. The predicate repeats the precondition the decision was made
// under, so of two racing responders only the first can match.
func (r *SessionRepository) ApplyDecision(ctx context.Context, s models.Session) error {
	const query = `
		UPDATE swap_sessions
		SET is_accepted = $2, status = $3, updated_at = $4
		WHERE id = $1 AND status = 'pending' AND is_accepted IS NULL
	`

	cmd, err := r.pool.Exec(ctx, query, s.ID, s.IsAccepted, s.Status, s.UpdatedAt)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrStateConflict
	}
	return nil
}

// DeletePending removes a still-undecided session owned by proposerID.
// Decided sessions never match and are left untouched.
func (r *SessionRepository) DeletePending(ctx context.Context, id string, proposerID string) error {
	const query = `
		DELETE FROM swap_sessions
		WHERE id = $1 AND proposer_id = $2 AND status = 'pending' AND is_accepted IS NULL
	`
	cmd, err := r.pool.Exec(ctx, query, id, proposerID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrStateConflict
	}
	return nil
}

// RejectStalePending moves pending sessions whose proposed start date is
// already further past than the cutoff to rejected. Used by the sweep
// job; returns how many sessions it closed.
func (r *SessionRepository) RejectStalePending(ctx context.Context, cutoffDays int) (int64, error) {
	const query = `
		UPDATE swap_sessions
		SET status = 'rejected', updated_at = NOW()
		WHERE status = 'pending' AND is_accepted IS NULL
		  AND start_date < NOW() - make_interval(days => $1)
	`
	cmd, err := r.pool.Exec(ctx, query, cutoffDays)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func scanSession(row pgx.Row) (models.Session, error) {
	var s models.Session
	if err := row.Scan(
		&s.ID,
		&s.ProposerID,
		&s.CounterpartID,
		&s.ProposerSkillID,
		&s.ProposerService,
		&s.CounterpartSkillID,
		&s.CounterpartService,
		&s.StartDate,
		&s.EndDate,
		&s.IsAccepted,
		&s.Status,
		&s.CompletionRequestedBy,
		&s.CompletionRequestedAt,
		&s.CompletionApprovedBy,
		&s.CompletionApprovedAt,
		&s.CompletionRejectedBy,
		&s.CompletionRejectedAt,
		&s.CompletionRejectedWhy,
		&s.CreatedAt,
		&s.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Session{}, ErrSessionNotFound
		}
		return models.Session{}, err
	}
	return s, nil
}
