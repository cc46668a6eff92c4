// Package article provides the Article Manager: the use cases for creating, reading,
// updating and deleting articles and their country-specific attributes.
// It enforces the business rules of the article aggregate and delegates persistence
// to a repository unit of work.
package article

import (
	"errors"

	"article-management/internal/domain/entity"
)

// Sentinel errors for article use case operations.
var (
	// ErrArticleNotFound indicates that no article has the requested article number.
	ErrArticleNotFound = errors.New("article not found")

	// ErrAttributeNotFound indicates that the article has no attribute for the requested country.
	ErrAttributeNotFound = errors.New("attribute not found")

	// ErrInvalidArticleNumber indicates that the provided article number is invalid.
	// Create and upsert reject numbers outside 1..entity.MaxArticleNumber with it.
	ErrInvalidArticleNumber = errors.New("invalid article number")

	// ErrArticleExists indicates that an article with the same article number already exists.
	ErrArticleExists = errors.New("article already exists")

	// ErrAttributeExists indicates that the article already has an attribute for the country.
	ErrAttributeExists = errors.New("attribute for country and article already exists")

	// ErrQueryTimeout indicates that listing articles exceeded the configured query timeout.
	ErrQueryTimeout = errors.New("article query timed out")

	// ErrInvariantViolation indicates that storage returned more than one entity for a
	// key that must be unique. It signals a bug or corrupt data, never a user error.
	ErrInvariantViolation = errors.New("invariant violation")

	// ErrPersistenceConflict indicates that the commit lost an optimistic concurrency race.
	// The operation was not applied and may be resubmitted.
	ErrPersistenceConflict = errors.New("cannot save changes due to concurrent access to database, please try again")

	// ErrPersistence indicates that the commit failed for any other reason.
	ErrPersistence = errors.New("an error occurred while saving to the database")
)

// Kind classifies an error returned by the Manager.
type Kind int

const (
	KindNone Kind = iota
	KindNotFound
	KindConflict
	KindInvalid
	KindTimeout
	KindInvariantViolation
	KindPersistenceConflict
	KindPersistence
	KindInternal
)

var kindNames = map[Kind]string{
	KindNone:                "ok",
	KindNotFound:            "not_found",
	KindConflict:            "conflict",
	KindInvalid:             "invalid",
	KindTimeout:             "timeout",
	KindInvariantViolation:  "invariant_violation",
	KindPersistenceConflict: "persistence_conflict",
	KindPersistence:         "persistence",
	KindInternal:            "internal",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// ServerFault reports whether the kind is caused by the server rather than the request.
func (k Kind) ServerFault() bool {
	switch k {
	case KindTimeout, KindInvariantViolation, KindPersistenceConflict, KindPersistence, KindInternal:
		return true
	}
	return false
}

// KindOf classifies err. A nil error is KindNone; unrecognized errors are KindInternal.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrArticleNotFound), errors.Is(err, ErrAttributeNotFound):
		return KindNotFound
	case errors.Is(err, ErrArticleExists), errors.Is(err, ErrAttributeExists):
		return KindConflict
	case errors.Is(err, ErrInvalidArticleNumber), errors.Is(err, entity.ErrInvalidInput):
		return KindInvalid
	case errors.Is(err, ErrQueryTimeout):
		return KindTimeout
	case errors.Is(err, ErrInvariantViolation):
		return KindInvariantViolation
	case errors.Is(err, ErrPersistenceConflict):
		return KindPersistenceConflict
	case errors.Is(err, ErrPersistence):
		return KindPersistence
	default:
		return KindInternal
	}
}
