package sqlite

import (
	"database/sql"
	"errors"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"article-management/internal/infra/adapter/persistence/sqlstore"
)

type dialect struct {
	*ArticleQueryBuilder
}

// IsConflict reports constraint violations on keys and a database locked by
// another writer.
func (dialect) IsConflict(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	switch sqliteErr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE,
		sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY,
		sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
		return true
	}
	return sqliteErr.Code()&0xff == sqlite3.SQLITE_BUSY
}

// NewArticleStore returns an article store backed by a modernc SQLite database.
func NewArticleStore(db *sql.DB) *sqlstore.Store {
	return sqlstore.New(db, dialect{NewArticleQueryBuilder()})
}
