package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Code102SoftwareProject/skill-swap-hub-sub004/internal/models"
)

var ErrCompletionNotFound = errors.New("completion request not found")

const completionColumns = `
	id, session_id, requested_by, status, reason, responded_by, responded_at, created_at
`

// CompletionRepository persists completion requests together with the
// summary columns on the session row. The two always change inside one
// transaction so they cannot drift apart.
type CompletionRepository struct {
	pool *pgxpool.Pool
}

func NewCompletionRepository(pool *pgxpool.Pool) *CompletionRepository {
	return &CompletionRepository{pool: pool}
}

// CreateRequest inserts a pending completion request and mirrors it
// onto the session. The session update is conditional on the session
// still being active with no pending request from the same user; when
// it no longer is, nothing is written and ErrStateConflict comes back.
func (r *CompletionRepository) CreateRequest(ctx context.Context, req models.CompletionRequest) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		const updateSession = `
			UPDATE swap_sessions
			SET completion_requested_by = $2, completion_requested_at = $3, updated_at = $3
			WHERE id = $1 AND status = 'active'
			  AND (completion_requested_by IS NULL OR completion_requested_by <> $2)
		`
		cmd, err := tx.Exec(ctx, updateSession, req.SessionID, req.RequestedBy, req.CreatedAt)
		if err != nil {
			return err
		}
		if cmd.RowsAffected() == 0 {
			return ErrStateConflict
		}

		const insertRequest = `
			INSERT INTO completion_requests (id, session_id, requested_by, status, created_at)
			VALUES ($1, $2, $3, 'pending', $4)
		`
		_, err = tx.Exec(ctx, insertRequest, req.ID, req.SessionID, req.RequestedBy, req.CreatedAt)
		return err
	})
}

// Approve completes the session, keyed on the request still being the
// pending one, and settles every open request on it: approved for the
// requester, superseded for an overlapping ask from the other side. No
// row may stay pending on a completed session.
func (r *CompletionRepository) Approve(ctx context.Context, sessionID, requesterID, approverID string, at time.Time) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		const updateSession = `
			UPDATE swap_sessions
			SET status = 'completed',
			    completion_approved_by = $3, completion_approved_at = $4,
			    completion_rejected_by = NULL, completion_rejected_at = NULL,
			    completion_rejected_reason = NULL,
			    updated_at = $4
			WHERE id = $1 AND status = 'active' AND completion_requested_by = $2
		`
		cmd, err := tx.Exec(ctx, updateSession, sessionID, requesterID, approverID, at)
		if err != nil {
			return err
		}
		if cmd.RowsAffected() == 0 {
			return ErrStateConflict
		}

		const updateRequests = `
			UPDATE completion_requests
			SET status = CASE WHEN requested_by = $2 THEN 'approved' ELSE 'superseded' END,
			    responded_by = $3, responded_at = $4
			WHERE session_id = $1 AND status = 'pending'
		`
		_, err = tx.Exec(ctx, updateRequests, sessionID, requesterID, approverID, at)
		return err
	})
}

// Reject settles the open requests, rejected for the requester and
// superseded for an overlapping ask, and clears the request columns so
// either side may file again. The session stays active.
func (r *CompletionRepository) Reject(ctx context.Context, sessionID, requesterID, rejecterID, reason string, at time.Time) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		const updateSession = `
			UPDATE swap_sessions
			SET completion_requested_by = NULL, completion_requested_at = NULL,
			    completion_approved_by = NULL, completion_approved_at = NULL,
			    completion_rejected_by = $3, completion_rejected_at = $5,
			    completion_rejected_reason = $4,
			    updated_at = $5
			WHERE id = $1 AND status = 'active' AND completion_requested_by = $2
		`
		cmd, err := tx.Exec(ctx, updateSession, sessionID, requesterID, rejecterID, reason, at)
		if err != nil {
			return err
		}
		if cmd.RowsAffected() == 0 {
			return ErrStateConflict
		}

		const updateRequests = `
			UPDATE completion_requests
			SET status = CASE WHEN requested_by = $2 THEN 'rejected' ELSE 'superseded' END,
			    reason = CASE WHEN requested_by = $2 THEN $4 ELSE reason END,
			    responded_by = $3, responded_at = $5
			WHERE session_id = $1 AND status = 'pending'
		`
		_, err = tx.Exec(ctx, updateRequests, sessionID, requesterID, rejecterID, reason, at)
		return err
	})
}

func (r *CompletionRepository) ListBySession(ctx context.Context, sessionID string) ([]models.CompletionRequest, error) {
	query := `
		SELECT ` + completionColumns + `
		FROM completion_requests WHERE session_id = $1
		ORDER BY created_at DESC
	`
	return r.list(ctx, query, sessionID)
}

// ListByUser returns completion requests on sessions userID takes part
// in, either side of the ask.
func (r *CompletionRepository) ListByUser(ctx context.Context, userID string) ([]models.CompletionRequest, error) {
	query := `
		SELECT cr.id, cr.session_id, cr.requested_by, cr.status, cr.reason,
		       cr.responded_by, cr.responded_at, cr.created_at
		FROM completion_requests cr
		JOIN swap_sessions s ON s.id = cr.session_id
		WHERE s.proposer_id = $1 OR s.counterpart_id = $1
		ORDER BY cr.created_at DESC
	`
	return r.list(ctx, query, userID)
}

func (r *CompletionRepository) list(ctx context.Context, query string, args ...any) ([]models.CompletionRequest, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []models.CompletionRequest
	for rows.Next() {
		var req models.CompletionRequest
		if err := rows.Scan(
			&req.ID,
			&req.SessionID,
			&req.RequestedBy,
			&req.Status,
			&req.Reason,
			&req.RespondedBy,
			&req.RespondedAt,
			&req.CreatedAt,
		); err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}

func (r *CompletionRepository) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
