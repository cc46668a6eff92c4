package circuitbreaker

import (
	"context"
	"errors"
	"time"

	"article-management/internal/domain/entity"
	"article-management/internal/repository"
)

// ArticleStore guards every storage round trip of the wrapped store with one
// breaker. Staging calls (Add, Remove) never touch the database and pass through.
type ArticleStore struct {
	inner repository.ArticleStore
	cb    *CircuitBreaker
}

// NewArticleStore wraps inner. Lost optimistic-concurrency races and caller
// cancellations say nothing about database health and do not trip the breaker.
func NewArticleStore(inner repository.ArticleStore, cfg Config) *ArticleStore {
	cfg.IsSuccessful = func(err error) bool {
		return err == nil ||
			errors.Is(err, repository.ErrConcurrencyConflict) ||
			errors.Is(err, context.Canceled)
	}
	return &ArticleStore{inner: inner, cb: New(cfg)}
}

// Session opens a guarded unit of work.
func (s *ArticleStore) Session() repository.ArticleRepository {
	return &guardedSession{inner: s.inner.Session(), cb: s.cb}
}

// Breaker exposes the breaker for health reporting.
func (s *ArticleStore) Breaker() *CircuitBreaker {
	return s.cb
}

type guardedSession struct {
	inner repository.ArticleRepository
	cb    *CircuitBreaker
}

func (g *guardedSession) Get(ctx context.Context, articleNumber int) (*entity.Article, error) {
	return Do(g.cb, func() (*entity.Article, error) {
		return g.inner.Get(ctx, articleNumber)
	})
}

func (g *guardedSession) Exists(ctx context.Context, articleNumber int) (bool, error) {
	return Do(g.cb, func() (bool, error) {
		return g.inner.Exists(ctx, articleNumber)
	})
}

func (g *guardedSession) Query(ctx context.Context, filter repository.ArticleFilter, timeout time.Duration) ([]*entity.Article, error) {
	return Do(g.cb, func() ([]*entity.Article, error) {
		return g.inner.Query(ctx, filter, timeout)
	})
}

func (g *guardedSession) Add(article *entity.Article)    { g.inner.Add(article) }
func (g *guardedSession) Remove(article *entity.Article) { g.inner.Remove(article) }

func (g *guardedSession) SaveChanges(ctx context.Context) (int, error) {
	return Do(g.cb, func() (int, error) {
		return g.inner.SaveChanges(ctx)
	})
}
