package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"reflect"
	"time"

	"article-management/internal/domain/entity"
	"article-management/internal/observability/metrics"
	"article-management/internal/repository"
)

// execer is satisfied by *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SaveChanges writes removed, changed and added articles in one transaction.
// Changed articles are updated only if their stored version still equals the
// loaded one; otherwise nothing is written and ErrConcurrencyConflict is returned.
func (s *session) SaveChanges(ctx context.Context) (int, error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("save_changes", time.Since(start)) }()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, s.saveError("begin", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	// In-memory state is only touched after a successful commit.
	var after []func()
	rows := 0

	for id, t := range s.tracked {
		if !t.removed {
			continue
		}
		n, err := s.deleteArticle(ctx, tx, t)
		if err != nil {
			return 0, err
		}
		rows += n
		after = append(after, func() { delete(s.tracked, id) })
	}

	for _, t := range s.tracked {
		if t.removed || reflect.DeepEqual(t.article, t.snapshot) {
			continue
		}
		n, assign, err := s.updateArticle(ctx, tx, t)
		if err != nil {
			return 0, err
		}
		rows += n
		after = append(after, assign...)
		after = append(after, func() {
			t.article.Version++
			t.snapshot = t.article.Clone()
		})
	}

	for _, a := range s.added {
		n, assign, err := s.insertArticle(ctx, tx, a)
		if err != nil {
			return 0, err
		}
		rows += n
		after = append(after, assign...)
	}

	if err := tx.Commit(); err != nil {
		return 0, s.saveError("commit", err)
	}
	committed = true

	for _, fn := range after {
		fn()
	}
	for _, a := range s.added {
		s.tracked[a.ID] = &tracked{article: a, snapshot: a.Clone()}
	}
	s.added = nil
	return rows, nil
}

func (s *session) deleteArticle(ctx context.Context, tx execer, t *tracked) (int, error) {
	query := s.dialect.Rebind(`DELETE FROM articles WHERE id = ? AND version = ?`)
	res, err := tx.ExecContext(ctx, query, t.article.ID, t.snapshot.Version)
	if err != nil {
		return 0, s.saveError("delete article", err)
	}
	if err := expectOneRow(res, t.article); err != nil {
		return 0, err
	}
	// Attribute rows go with the article through ON DELETE CASCADE.
	return 1 + len(t.snapshot.Attributes), nil
}

func (s *session) updateArticle(ctx context.Context, tx execer, t *tracked) (int, []func(), error) {
	a := t.article
	query := s.dialect.Rebind(`
UPDATE articles
SET brand = ?, is_bulky = ?, is_approved = ?, last_changed = ?, version = version + 1
WHERE id = ? AND version = ?`)
	res, err := tx.ExecContext(ctx, query,
		a.Brand, a.IsBulky, a.IsApproved, a.LastChanged.UTC(), a.ID, t.snapshot.Version)
	if err != nil {
		return 0, nil, s.saveError("update article", err)
	}
	if err := expectOneRow(res, a); err != nil {
		return 0, nil, err
	}
	rows := 1

	before := make(map[int64]*entity.Attribute, len(t.snapshot.Attributes))
	for _, attr := range t.snapshot.Attributes {
		before[attr.ID] = attr
	}
	current := make(map[int64]bool, len(a.Attributes))
	for _, attr := range a.Attributes {
		if attr.ID != 0 {
			current[attr.ID] = true
		}
	}

	// Deletes run first so a country removed and re-added in one session
	// does not collide with the unique (article_id, country) key.
	for id := range before {
		if current[id] {
			continue
		}
		query := s.dialect.Rebind(`DELETE FROM article_attributes WHERE id = ?`)
		if _, err := tx.ExecContext(ctx, query, id); err != nil {
			return 0, nil, s.saveError("delete attribute", err)
		}
		rows++
	}

	var assign []func()
	for _, attr := range a.Attributes {
		prev, ok := before[attr.ID]
		switch {
		case attr.ID == 0:
			fn, err := s.insertAttribute(ctx, tx, a.ID, attr)
			if err != nil {
				return 0, nil, err
			}
			assign = append(assign, fn)
			rows++
		case ok && *prev != *attr:
			query := s.dialect.Rebind(`
UPDATE article_attributes
SET title = ?, description = ?, color = ?, last_change = ?
WHERE id = ?`)
			if _, err := tx.ExecContext(ctx, query,
				attr.Title, attr.Description, attr.Color, attr.LastChange.UTC(), attr.ID); err != nil {
				return 0, nil, s.saveError("update attribute", err)
			}
			rows++
		}
	}
	return rows, assign, nil
}

func (s *session) insertArticle(ctx context.Context, tx execer, a *entity.Article) (int, []func(), error) {
	query := s.dialect.Rebind(`
INSERT INTO articles (article_number, brand, is_bulky, is_approved, last_changed, version)
VALUES (?, ?, ?, ?, ?, 1)
RETURNING id`)
	var id int64
	if err := tx.QueryRowContext(ctx, query,
		a.ArticleNumber, a.Brand, a.IsBulky, a.IsApproved, a.LastChanged.UTC()).Scan(&id); err != nil {
		return 0, nil, s.saveError("insert article", err)
	}

	assign := []func(){func() {
		a.ID = id
		a.Version = 1
	}}
	for _, attr := range a.Attributes {
		fn, err := s.insertAttribute(ctx, tx, id, attr)
		if err != nil {
			return 0, nil, err
		}
		assign = append(assign, fn)
	}
	return 1 + len(a.Attributes), assign, nil
}

func (s *session) insertAttribute(ctx context.Context, tx execer, articleID int64, attr *entity.Attribute) (func(), error) {
	query := s.dialect.Rebind(`
INSERT INTO article_attributes (article_id, country, title, description, color, last_change)
VALUES (?, ?, ?, ?, ?, ?)
RETURNING id`)
	var id int64
	if err := tx.QueryRowContext(ctx, query,
		articleID, string(attr.Country), attr.Title, attr.Description, attr.Color, attr.LastChange.UTC()).Scan(&id); err != nil {
		return nil, s.saveError("insert attribute", err)
	}
	return func() { attr.ID = id }, nil
}

func expectOneRow(res sql.Result, a *entity.Article) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: rows affected: %w", repository.ErrPersistence, err)
	}
	if n != 1 {
		return fmt.Errorf("%w: article %d was changed or removed by another writer",
			repository.ErrConcurrencyConflict, a.ArticleNumber)
	}
	return nil
}

func (s *session) saveError(step string, err error) error {
	if s.dialect.IsConflict(err) {
		return fmt.Errorf("%w: %s: %w", repository.ErrConcurrencyConflict, step, err)
	}
	return fmt.Errorf("%w: %s: %w", repository.ErrPersistence, step, err)
}
