package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrStateConflict is returned when a conditional update matched no
// rows: another request already moved the entity past the precondition
// this write was keyed on. First writer wins, the loser sees this.
var ErrStateConflict = errors.New("state changed concurrently")

// Postgres error code for a unique constraint violation.
const codeUniqueViolation = "23505"

// conflictFromUnique turns a unique constraint violation into
// ErrStateConflict. Guarded inserts read their precondition before
// writing, so two truly concurrent writers can both pass the guard and
// the partial unique index catches the loser; that loser raced, it did
// not hit an unexpected failure.
func conflictFromUnique(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == codeUniqueViolation {
		return ErrStateConflict
	}
	return err
}
