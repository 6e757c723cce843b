package store

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	sqlite "modernc.org/sqlite"
)

// ErrConstraint marks a constraint violation so handlers can report it as a
// client error instead of crashing the action.
var ErrConstraint = errors.New("constraint violation")

const sqliteConstraintCode = 19 // SQLITE_CONSTRAINT

func wrapDBErr(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && len(pgErr.Code) >= 2 && pgErr.Code[:2] == "23" {
		return fmt.Errorf("%w: %v", ErrConstraint, err)
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) && liteErr.Code()&0xff == sqliteConstraintCode {
		return fmt.Errorf("%w: %v", ErrConstraint, err)
	}
	return err
}
