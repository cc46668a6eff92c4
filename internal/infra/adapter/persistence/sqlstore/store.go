// Package sqlstore implements the article unit of work on top of database/sql.
// Driver specifics (placeholders, substring predicate, error codes) are
// supplied by a Dialect from the postgres or sqlite packages.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"article-management/internal/domain/entity"
	"article-management/internal/observability/metrics"
	"article-management/internal/repository"
)

// Dialect captures what differs between SQL backends.
type Dialect interface {
	// Rebind rewrites '?' placeholders into the driver's native form.
	Rebind(query string) string
	// BuildWhereClause renders the filter as a WHERE clause over the alias "a"
	// using native placeholders. It returns "" when no condition applies.
	BuildWhereClause(filter repository.ArticleFilter) (clause string, args []any)
	// IsConflict reports driver errors that mean a concurrent writer won:
	// unique key violations and serialization failures.
	IsConflict(err error) bool
}

// Store opens sessions against one database.
type Store struct {
	db      *sql.DB
	dialect Dialect
}

// New creates a Store.
func New(db *sql.DB, dialect Dialect) *Store {
	return &Store{db: db, dialect: dialect}
}

// Session opens a new unit of work.
func (s *Store) Session() repository.ArticleRepository {
	return &session{
		db:      s.db,
		dialect: s.dialect,
		tracked: make(map[int64]*tracked),
	}
}

type tracked struct {
	article  *entity.Article
	snapshot *entity.Article
	removed  bool
}

type session struct {
	db      *sql.DB
	dialect Dialect
	tracked map[int64]*tracked
	added   []*entity.Article
}

const selectArticleColumns = `a.id, a.article_number, a.brand, a.is_bulky, a.is_approved, a.last_changed, a.version`

func (s *session) Get(ctx context.Context, articleNumber int) (*entity.Article, error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("get_article", time.Since(start)) }()

	// The column cannot hold such a key, and the driver would refuse to encode it.
	if entity.ValidateArticleNumber(articleNumber) != nil {
		return nil, nil
	}
	for _, t := range s.tracked {
		if t.article.ArticleNumber == articleNumber && !t.removed {
			return t.article, nil
		}
	}

	query := s.dialect.Rebind(`
SELECT ` + selectArticleColumns + `
FROM articles a
WHERE a.article_number = ?`)
	a, err := scanArticle(s.db.QueryRowContext(ctx, query, articleNumber))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}

	attrs, err := s.loadAttributes(ctx, `a.id = ?`, []any{a.ID})
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	a.Attributes = attrs[a.ID]
	return s.track(a), nil
}

func (s *session) Exists(ctx context.Context, articleNumber int) (bool, error) {
	if entity.ValidateArticleNumber(articleNumber) != nil {
		return false, nil
	}
	query := s.dialect.Rebind(`SELECT EXISTS(SELECT 1 FROM articles WHERE article_number = ?)`)
	var exists bool
	if err := s.db.QueryRowContext(ctx, query, articleNumber).Scan(&exists); err != nil {
		return false, fmt.Errorf("Exists: %w", err)
	}
	return exists, nil
}

func (s *session) Query(ctx context.Context, filter repository.ArticleFilter, timeout time.Duration) ([]*entity.Article, error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("query_articles", time.Since(start)) }()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	where, args := s.dialect.BuildWhereClause(filter)
	query := `
SELECT ` + selectArticleColumns + `
FROM articles a` + where + `
ORDER BY a.article_number`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, queryError(ctx, err)
	}
	defer func() { _ = rows.Close() }()

	articles := make([]*entity.Article, 0, 16)
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, queryError(ctx, err)
		}
		articles = append(articles, a)
	}
	if err := rows.Err(); err != nil {
		return nil, queryError(ctx, err)
	}
	// Release the connection before the attribute query; pools may hold only one.
	_ = rows.Close()
	if len(articles) == 0 {
		return articles, nil
	}

	attrs, err := s.loadAttributes(ctx, `a.id IN (SELECT a.id FROM articles a`+where+`)`, args)
	if err != nil {
		return nil, queryError(ctx, err)
	}
	for i, a := range articles {
		a.Attributes = attrs[a.ID]
		articles[i] = s.track(a)
	}
	return articles, nil
}

// queryError reports a missed deadline as ErrQueryTimeout whatever error the
// driver surfaced for the cancellation.
func queryError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", repository.ErrQueryTimeout, err)
	}
	return fmt.Errorf("Query: %w", err)
}

// loadAttributes returns the attributes of every article matching cond,
// grouped by article ID.
func (s *session) loadAttributes(ctx context.Context, cond string, args []any) (map[int64][]*entity.Attribute, error) {
	query := s.dialect.Rebind(`
SELECT a.id, t.id, t.country, t.title, t.description, t.color, t.last_change
FROM article_attributes t
JOIN articles a ON a.id = t.article_id
WHERE ` + cond + `
ORDER BY t.id`)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("loadAttributes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make(map[int64][]*entity.Attribute)
	for rows.Next() {
		var articleID int64
		var attr entity.Attribute
		var country string
		if err := rows.Scan(&articleID, &attr.ID, &country, &attr.Title,
			&attr.Description, &attr.Color, &attr.LastChange); err != nil {
			return nil, fmt.Errorf("loadAttributes: Scan: %w", err)
		}
		attr.Country = entity.Country(country)
		attr.LastChange = attr.LastChange.UTC()
		out[articleID] = append(out[articleID], &attr)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanArticle(row scanner) (*entity.Article, error) {
	var a entity.Article
	if err := row.Scan(&a.ID, &a.ArticleNumber, &a.Brand, &a.IsBulky,
		&a.IsApproved, &a.LastChanged, &a.Version); err != nil {
		return nil, err
	}
	a.LastChanged = a.LastChanged.UTC()
	a.Attributes = []*entity.Attribute{}
	return &a, nil
}

// track registers a freshly loaded article, or returns the instance the
// session already tracks under the same ID.
func (s *session) track(a *entity.Article) *entity.Article {
	if a.Attributes == nil {
		a.Attributes = []*entity.Attribute{}
	}
	if t, ok := s.tracked[a.ID]; ok {
		return t.article
	}
	s.tracked[a.ID] = &tracked{article: a, snapshot: a.Clone()}
	return a
}

func (s *session) Add(article *entity.Article) {
	s.added = append(s.added, article)
}

func (s *session) Remove(article *entity.Article) {
	for _, t := range s.tracked {
		if t.article == article {
			t.removed = true
			return
		}
	}
	for i, a := range s.added {
		if a == article {
			s.added = append(s.added[:i], s.added[i+1:]...)
			return
		}
	}
}
