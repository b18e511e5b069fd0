package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/M0hammadUsman/campusboard/internal/domain"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
)

// translateErr maps driver specific errors to the domain ones callers match on
func translateErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrRecordNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.ForeignKeyViolation:
			return fmt.Errorf("%w: %s", domain.ErrRecordNotFound, pgErr.ConstraintName)
		case pgerrcode.UniqueViolation:
			return fmt.Errorf("%w: %s", domain.ErrDuplicateRecord, pgErr.ConstraintName)
		}
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		switch liteErr.ExtendedCode {
		case sqlite3.ErrConstraintForeignKey:
			return fmt.Errorf("%w: %s", domain.ErrRecordNotFound, liteErr.Error())
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return fmt.Errorf("%w: %s", domain.ErrDuplicateRecord, liteErr.Error())
		}
	}
	return err
}
