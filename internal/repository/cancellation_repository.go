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

var ErrCancellationNotFound = errors.New("cancellation request not found")

const cancellationColumns = `
	id, session_id, initiator_id, reason, description, evidence_urls,
	response_status, resolution, dispute_note, final_note,
	responded_at, resolved_at, created_at
`

type CancellationRepository struct {
	pool *pgxpool.Pool
}

func NewCancellationRepository(pool *pgxpool.Pool) *CancellationRepository {
	return &CancellationRepository{pool: pool}
}

// Create files a new cancellation request, guarded so the session is
// still active and no other request on it is unresolved. Both guards sit
// in the INSERT itself; a concurrent filer loses with ErrStateConflict,
// either through the guard or through the partial unique index on open
// requests when both filers pass the guard at once.
func (r *CancellationRepository) Create(ctx context.Context, req models.CancellationRequest) error {
	const query = `
		INSERT INTO cancellation_requests (
			id, session_id, initiator_id, reason, description, evidence_urls,
			response_status, resolution, created_at
		)
		SELECT $1, $2, $3, $4, $5, $6, 'pending', 'pending', $7
		WHERE EXISTS (
			SELECT 1 FROM swap_sessions WHERE id = $2 AND status = 'active'
		)
		AND NOT EXISTS (
			SELECT 1 FROM cancellation_requests
			WHERE session_id = $2 AND resolution = 'pending'
		)
	`

	cmd, err := r.pool.Exec(ctx, query,
		req.ID,
		req.SessionID,
		req.InitiatorID,
		req.Reason,
		req.Description,
		req.EvidenceURLs,
		req.CreatedAt,
	)
	if err != nil {
		return conflictFromUnique(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrStateConflict
	}
	return nil
}

// GetOpenBySession returns the session's single unresolved request.
func (r *CancellationRepository) GetOpenBySession(ctx context.Context, sessionID string) (models.CancellationRequest, error) {
	query := `
		SELECT ` + cancellationColumns + `
		FROM cancellation_requests
		WHERE session_id = $1 AND resolution = 'pending'
	`
	return scanCancellation(r.pool.QueryRow(ctx, query, sessionID))
}

func (r *CancellationRepository) ListBySession(ctx context.Context, sessionID string) ([]models.CancellationRequest, error) {
	query := `
		SELECT ` + cancellationColumns + `
		FROM cancellation_requests
		WHERE session_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []models.CancellationRequest
	for rows.Next() {
		req, err := scanCancellation(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}

// Agree resolves the request as mutually agreed and cancels the session
// in one transaction. The responder may agree while the request is
// unanswered or even after having disputed it.
func (r *CancellationRepository) Agree(ctx context.Context, requestID, sessionID string, at time.Time) error {
	return r.resolve(ctx, requestID, sessionID, at, `
		UPDATE cancellation_requests
		SET response_status = 'agreed', resolution = 'canceled',
		    responded_at = $2, resolved_at = $2
		WHERE id = $1 AND resolution = 'pending'
	`)
}

// Dispute records the responder's objection. Resolution stays pending
// and the session is untouched.
func (r *CancellationRepository) Dispute(ctx context.Context, requestID string, note *string, at time.Time) error {
	const query = `
		UPDATE cancellation_requests
		SET response_status = 'disputed', dispute_note = $2, responded_at = $3
		WHERE id = $1 AND resolution = 'pending' AND response_status = 'pending'
	`
	cmd, err := r.pool.Exec(ctx, query, requestID, note, at)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrStateConflict
	}
	return nil
}

// Finalize closes a disputed request on the initiator's authority and
// cancels the session in one transaction.
func (r *CancellationRepository) Finalize(ctx context.Context, requestID, sessionID string, finalNote *string, at time.Time) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		const updateRequest = `
			UPDATE cancellation_requests
			SET resolution = 'canceled', final_note = $2, resolved_at = $3
			WHERE id = $1 AND resolution = 'pending' AND response_status = 'disputed'
		`
		cmd, err := tx.Exec(ctx, updateRequest, requestID, finalNote, at)
		if err != nil {
			return err
		}
		if cmd.RowsAffected() == 0 {
			return ErrStateConflict
		}
		return cancelSession(ctx, tx, sessionID, at)
	})
}

func (r *CancellationRepository) resolve(ctx context.Context, requestID, sessionID string, at time.Time, updateRequest string) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		cmd, err := tx.Exec(ctx, updateRequest, requestID, at)
		if err != nil {
			return err
		}
		if cmd.RowsAffected() == 0 {
			return ErrStateConflict
		}
		return cancelSession(ctx, tx, sessionID, at)
	})
}

func cancelSession(ctx context.Context, tx pgx.Tx, sessionID string, at time.Time) error {
	const query = `
		UPDATE swap_sessions
		SET status = 'canceled', updated_at = $2
		WHERE id = $1 AND status = 'active'
	`
	cmd, err := tx.Exec(ctx, query, sessionID, at)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrStateConflict
	}
	return nil
}

func scanCancellation(row pgx.Row) (models.CancellationRequest, error) {
	var req models.CancellationRequest
	if err := row.Scan(
		&req.ID,
		&req.SessionID,
		&req.InitiatorID,
		&req.Reason,
		&req.Description,
		&req.EvidenceURLs,
		&req.ResponseStatus,
		&req.Resolution,
		&req.DisputeNote,
		&req.FinalNote,
		&req.RespondedAt,
		&req.ResolvedAt,
		&req.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.CancellationRequest{}, ErrCancellationNotFound
		}
		return models.CancellationRequest{}, err
	}
	return req, nil
}

func (r *CancellationRepository) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
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
