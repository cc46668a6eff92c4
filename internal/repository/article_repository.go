// Package repository defines the persistence contracts used by the use case layer.
package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"article-management/internal/domain/entity"
)

// Commit and query failures reported by every ArticleRepository implementation.
var (
	// ErrConcurrencyConflict indicates that another writer changed or removed the same
	// rows since they were loaded, or won a race on a unique business key.
	ErrConcurrencyConflict = errors.New("concurrent modification detected")

	// ErrPersistence indicates any other storage failure while saving changes.
	ErrPersistence = errors.New("persistence failure")

	// ErrQueryTimeout indicates that a bulk query did not finish before its deadline.
	ErrQueryTimeout = errors.New("query timed out")
)

// ArticleFilter contains optional filters for article queries.
// Nil fields are not applied.
type ArticleFilter struct {
	ChangedFrom   *time.Time // Optional: articles with last_changed >= this time
	ChangedTo     *time.Time // Optional: articles with last_changed <= this time
	TitleContains *string    // Optional: at least one attribute title contains this (case-sensitive)
}

// Matches evaluates the filter against an in-memory article.
// Adapters that cannot push the predicate down to storage use it directly.
func (f ArticleFilter) Matches(a *entity.Article) bool {
	if f.ChangedFrom != nil && a.LastChanged.Before(*f.ChangedFrom) {
		return false
	}
	if f.ChangedTo != nil && a.LastChanged.After(*f.ChangedTo) {
		return false
	}
	if f.TitleContains == nil {
		return true
	}
	for _, attr := range a.Attributes {
		if strings.Contains(attr.Title, *f.TitleContains) {
			return true
		}
	}
	return false
}

// ArticleRepository is a single unit of work over the article aggregate.
// It is not safe for concurrent use; open one per operation via ArticleStore.
//
// Articles returned by Get and Query are tracked: changes made to them in memory
// are written by SaveChanges together with staged adds and removes.
type ArticleRepository interface {
	// Get loads an article with all attributes.
	// Returns (nil, nil) if no article has the given number.
	Get(ctx context.Context, articleNumber int) (*entity.Article, error)
	// Exists reports whether an article with the number is stored, without loading it.
	Exists(ctx context.Context, articleNumber int) (bool, error)
	// Query loads all articles matching the filter before the timeout elapses.
	// An elapsed timeout is reported as ErrQueryTimeout, never as an empty result.
	Query(ctx context.Context, filter ArticleFilter, timeout time.Duration) ([]*entity.Article, error)
	// Add stages the insert of a new article and its attributes.
	Add(article *entity.Article)
	// Remove stages the delete of a tracked article; its attributes go with it.
	Remove(article *entity.Article)
	// SaveChanges flushes all staged and tracked changes atomically and returns the
	// number of affected rows. Failures wrap ErrConcurrencyConflict or ErrPersistence.
	SaveChanges(ctx context.Context) (int, error)
}

// ArticleStore opens units of work against one storage backend.
type ArticleStore interface {
	Session() ArticleRepository
}
