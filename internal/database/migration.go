package database

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

var migrationStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		password_hash BYTEA NOT NULL,
		display_name TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'active',
		avatar_url TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS skills (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		category TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_skills_user ON skills (user_id)`,
	`CREATE TABLE IF NOT EXISTS swap_sessions (
		id TEXT PRIMARY KEY,
		proposer_id TEXT NOT NULL REFERENCES users(id),
		counterpart_id TEXT NOT NULL REFERENCES users(id),
		proposer_skill_id TEXT NOT NULL,
		proposer_service TEXT NOT NULL,
		counterpart_skill_id TEXT NOT NULL,
		counterpart_service TEXT NOT NULL,
		start_date TIMESTAMPTZ NOT NULL,
		end_date TIMESTAMPTZ NOT NULL,
		is_accepted BOOLEAN,
		status TEXT NOT NULL DEFAULT 'pending',
		completion_requested_by TEXT,
		completion_requested_at TIMESTAMPTZ,
		completion_approved_by TEXT,
		completion_approved_at TIMESTAMPTZ,
		completion_rejected_by TEXT,
		completion_rejected_at TIMESTAMPTZ,
		completion_rejected_reason TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_swap_sessions_proposer ON swap_sessions (proposer_id, status)`,
	`CREATE INDEX IF NOT EXISTS idx_swap_sessions_counterpart ON swap_sessions (counterpart_id, status)`,
	`CREATE TABLE IF NOT EXISTS counter_offers (
		id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL REFERENCES swap_sessions(id) ON DELETE CASCADE,
		offered_by TEXT NOT NULL REFERENCES users(id),
		proposer_skill_id TEXT NOT NULL,
		proposer_service TEXT NOT NULL,
		counterpart_skill_id TEXT NOT NULL,
		counterpart_service TEXT NOT NULL,
		start_date TIMESTAMPTZ NOT NULL,
		end_date TIMESTAMPTZ NOT NULL,
		note TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'pending',
		decided_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_counter_offers_session ON counter_offers (session_id)`,
	`CREATE TABLE IF NOT EXISTS completion_requests (
		id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL REFERENCES swap_sessions(id) ON DELETE CASCADE,
		requested_by TEXT NOT NULL REFERENCES users(id),
		status TEXT NOT NULL DEFAULT 'pending',
		reason TEXT,
		responded_by TEXT,
		responded_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_completion_requests_session ON completion_requests (session_id)`,
	`CREATE TABLE IF NOT EXISTS cancellation_requests (
		id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL REFERENCES swap_sessions(id) ON DELETE CASCADE,
		initiator_id TEXT NOT NULL REFERENCES users(id),
		reason TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		evidence_urls TEXT[] NOT NULL DEFAULT '{}',
		response_status TEXT NOT NULL DEFAULT 'pending',
		resolution TEXT NOT NULL DEFAULT 'pending',
		dispute_note TEXT,
		final_note TEXT,
		responded_at TIMESTAMPTZ,
		resolved_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_cancellation_requests_open
		ON cancellation_requests (session_id) WHERE resolution = 'pending'`,
	`CREATE TABLE IF NOT EXISTS notifications (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		session_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		message TEXT NOT NULL,
		read BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications (user_id, created_at DESC)`,
}

// RunMigration applies the schema statements in order. Every statement is
// idempotent so the call is safe on every boot.
func RunMigration(ctx context.Context, pool *pgxpool.Pool) error {
	for _, s := range migrationStatements {
		stmt := strings.TrimSpace(s)
		if stmt == "" {
			continue
		}
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
