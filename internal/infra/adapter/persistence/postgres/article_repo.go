package postgres

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"article-management/internal/infra/adapter/persistence/sqlstore"
)

// SQLSTATE codes reported when a concurrent writer won the race.
const (
	uniqueViolation      = "23505"
	foreignKeyViolation  = "23503"
	serializationFailure = "40001"
	deadlockDetected     = "40P01"
)

type dialect struct {
	*ArticleQueryBuilder
}

// IsConflict classifies pgx errors by SQLSTATE.
func (dialect) IsConflict(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	switch pgErr.Code {
	case uniqueViolation, foreignKeyViolation, serializationFailure, deadlockDetected:
		return true
	}
	return false
}

// NewArticleStore returns an article store backed by a pgx database/sql pool.
func NewArticleStore(db *sql.DB) *sqlstore.Store {
	return sqlstore.New(db, dialect{NewArticleQueryBuilder()})
}
