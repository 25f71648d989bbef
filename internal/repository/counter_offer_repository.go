package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Code102SoftwareProject/skill-swap-hub-sub004/internal/models"
)

var ErrCounterOfferNotFound = errors.New("counter offer not found")

const counterOfferColumns = `
	id, session_id, offered_by,
	proposer_skill_id, proposer_service, counterpart_skill_id, counterpart_service,
	start_date, end_date, note, status, decided_at, created_at
`

type CounterOfferRepository struct {
	pool *pgxpool.Pool
}

func NewCounterOfferRepository(pool *pgxpool.Pool) *CounterOfferRepository {
	return &CounterOfferRepository{pool: pool}
}

// Create inserts a counter offer, guarded on the parent session still
// being pending and undecided.
func (r *CounterOfferRepository) Create(ctx context.Context, offer models.CounterOffer) error {
	const query = `
		INSERT INTO counter_offers (
			id, session_id, offered_by,
			proposer_skill_id, proposer_service, counterpart_skill_id, counterpart_service,
			start_date, end_date, note, status, created_at
		)
		SELECT $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, 'pending', $11
		WHERE EXISTS (
			SELECT 1 FROM swap_sessions
			WHERE id = $2 AND status = 'pending' AND is_accepted IS NULL
		)
	`

	cmd, err := r.pool.Exec(ctx, query,
		offer.ID,
		offer.SessionID,
		offer.OfferedBy,
		offer.ProposerSkillID,
		offer.ProposerService,
		offer.CounterpartSkillID,
		offer.CounterpartService,
		offer.StartDate,
		offer.EndDate,
		offer.Note,
		offer.CreatedAt,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrStateConflict
	}
	return nil
}

func (r *CounterOfferRepository) GetByID(ctx context.Context, id string) (models.CounterOffer, error) {
	query := `SELECT ` + counterOfferColumns + ` FROM counter_offers WHERE id = $1`
	return scanCounterOffer(r.pool.QueryRow(ctx, query, id))
}

func (r *CounterOfferRepository) ListBySession(ctx context.Context, sessionID string) ([]models.CounterOffer, error) {
	query := `
		SELECT ` + counterOfferColumns + `
		FROM counter_offers WHERE session_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var offers []models.CounterOffer
	for rows.Next() {
		offer, err := scanCounterOffer(rows)
		if err != nil {
			return nil, err
		}
		offers = append(offers, offer)
	}
	return offers, rows.Err()
}

// Accept marks the offer accepted and activates the parent session under
// the offered terms, superseding any sibling pending offers. All of it
// is one transaction keyed on both rows still being pending.
func (r *CounterOfferRepository) Accept(ctx context.Context, offer models.CounterOffer, s models.Session) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		const updateOffer = `
			UPDATE counter_offers
			SET status = 'accepted', decided_at = $2
			WHERE id = $1 AND status = 'pending'
		`
		cmd, err := tx.Exec(ctx, updateOffer, offer.ID, offer.DecidedAt)
		if err != nil {
			return err
		}
		if cmd.RowsAffected() == 0 {
			return ErrStateConflict
		}

		const updateSession = `
			UPDATE swap_sessions
			SET proposer_skill_id = $2, proposer_service = $3,
			    counterpart_skill_id = $4, counterpart_service = $5,
			    start_date = $6, end_date = $7,
			    is_accepted = TRUE, status = 'active', updated_at = $8
			WHERE id = $1 AND status = 'pending' AND is_accepted IS NULL
		`
		cmd, err = tx.Exec(ctx, updateSession,
			s.ID,
			s.ProposerSkillID,
			s.ProposerService,
			s.CounterpartSkillID,
			s.CounterpartService,
			s.StartDate,
			s.EndDate,
			s.UpdatedAt,
		)
		if err != nil {
			return err
		}
		if cmd.RowsAffected() == 0 {
			return ErrStateConflict
		}

		const supersede = `
			UPDATE counter_offers
			SET status = 'rejected', decided_at = $3
			WHERE session_id = $1 AND status = 'pending' AND id <> $2
		`
		_, err = tx.Exec(ctx, supersede, offer.SessionID, offer.ID, offer.DecidedAt)
		return err
	})
}

// Reject turns the offer down. The parent session stays pending.
func (r *CounterOfferRepository) Reject(ctx context.Context, offer models.CounterOffer) error {
	const query = `
		UPDATE counter_offers
		SET status = 'rejected', decided_at = $2
		WHERE id = $1 AND status = 'pending'
	`
	cmd, err := r.pool.Exec(ctx, query, offer.ID, offer.DecidedAt)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrStateConflict
	}
	return nil
}

func scanCounterOffer(row pgx.Row) (models.CounterOffer, error) {
	var offer models.CounterOffer
	if err := row.Scan(
		&offer.ID,
		&offer.SessionID,
		&offer.OfferedBy,
		&offer.ProposerSkillID,
		&offer.ProposerService,
		&offer.CounterpartSkillID,
		&offer.CounterpartService,
		&offer.StartDate,
		&offer.EndDate,
		&offer.Note,
		&offer.Status,
		&offer.DecidedAt,
		&offer.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.CounterOffer{}, ErrCounterOfferNotFound
		}
		return models.CounterOffer{}, err
	}
	return offer, nil
}

func (r *CounterOfferRepository) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
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
