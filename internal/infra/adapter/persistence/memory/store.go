// Package memory provides an in-process ArticleStore. It applies the same
// optimistic concurrency and uniqueness rules as the SQL adapters and is used
// for tests and for running the service without a database.
package memory

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"sync"
	"time"

	"article-management/internal/domain/entity"
	"article-management/internal/repository"
)

// Store keeps committed articles keyed by their storage ID.
// Values handed to sessions are always deep copies.
type Store struct {
	mu         sync.Mutex
	articles   map[int64]*entity.Article
	byNumber   map[int]int64
	nextID     int64
	nextAttrID int64
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		articles: make(map[int64]*entity.Article),
		byNumber: make(map[int]int64),
	}
}

// Session opens a new unit of work.
func (s *Store) Session() repository.ArticleRepository {
	return &session{store: s, tracked: make(map[int64]*tracked)}
}

type tracked struct {
	article  *entity.Article
	snapshot *entity.Article
	removed  bool
}

type session struct {
	store   *Store
	tracked map[int64]*tracked
	added   []*entity.Article
}

func (s *session) Get(ctx context.Context, articleNumber int) (*entity.Article, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	id, ok := s.store.byNumber[articleNumber]
	if !ok {
		return nil, nil
	}
	return s.track(s.store.articles[id]), nil
}

func (s *session) Exists(ctx context.Context, articleNumber int) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	_, ok := s.store.byNumber[articleNumber]
	return ok, nil
}

func (s *session) Query(ctx context.Context, filter repository.ArticleFilter, timeout time.Duration) ([]*entity.Article, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	out := make([]*entity.Article, 0)
	for _, stored := range s.store.articles {
		if err := ctx.Err(); err != nil {
			return nil, queryError(err)
		}
		if filter.Matches(stored) {
			out = append(out, s.track(stored))
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, queryError(err)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ArticleNumber < out[j].ArticleNumber })
	return out, nil
}

func queryError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", repository.ErrQueryTimeout, err)
	}
	return err
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
	// An article added in this session and removed before saving is never written.
	for i, a := range s.added {
		if a == article {
			s.added = append(s.added[:i], s.added[i+1:]...)
			return
		}
	}
}

// track returns the session's copy of stored, creating it on first load so
// that repeated loads yield the same pointer. Callers hold the store lock.
func (s *session) track(stored *entity.Article) *entity.Article {
	if t, ok := s.tracked[stored.ID]; ok {
		return t.article
	}
	s.tracked[stored.ID] = &tracked{article: stored.Clone(), snapshot: stored.Clone()}
	return s.tracked[stored.ID].article
}

func (s *session) SaveChanges(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("%w: %w", repository.ErrPersistence, err)
	}
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	if err := s.check(); err != nil {
		return 0, err
	}

	// All checks passed; nothing below can fail.
	rows := 0
	for id, t := range s.tracked {
		switch {
		case t.removed:
			delete(s.store.byNumber, t.article.ArticleNumber)
			delete(s.store.articles, id)
			rows += 1 + len(t.snapshot.Attributes)
			delete(s.tracked, id)
		case !reflect.DeepEqual(t.article, t.snapshot):
			rows += 1 + attributeChanges(t.snapshot, t.article)
			s.write(t)
		}
	}
	for _, a := range s.added {
		a.ID = s.store.allocID()
		rows += 1 + len(a.Attributes)
		t := &tracked{article: a}
		s.write(t)
		s.tracked[a.ID] = t
		s.store.byNumber[a.ArticleNumber] = a.ID
	}
	s.added = nil
	return rows, nil
}

// check verifies every staged change against committed state.
func (s *session) check() error {
	for id, t := range s.tracked {
		if !t.removed && reflect.DeepEqual(t.article, t.snapshot) {
			continue
		}
		stored, ok := s.store.articles[id]
		if !ok || stored.Version != t.snapshot.Version {
			return fmt.Errorf("%w: article %d", repository.ErrConcurrencyConflict, t.article.ArticleNumber)
		}
		if !t.removed {
			if err := uniqueCountries(t.article); err != nil {
				return err
			}
		}
	}
	numbers := make(map[int]bool, len(s.added))
	for _, a := range s.added {
		if _, taken := s.store.byNumber[a.ArticleNumber]; taken || numbers[a.ArticleNumber] {
			return fmt.Errorf("%w: article number %d already stored", repository.ErrConcurrencyConflict, a.ArticleNumber)
		}
		numbers[a.ArticleNumber] = true
		if err := uniqueCountries(a); err != nil {
			return err
		}
	}
	return nil
}

// write assigns missing attribute IDs, bumps the version and stores a copy.
func (s *session) write(t *tracked) {
	for _, attr := range t.article.Attributes {
		if attr.ID == 0 {
			s.store.nextAttrID++
			attr.ID = s.store.nextAttrID
		}
	}
	t.article.Version++
	s.store.articles[t.article.ID] = t.article.Clone()
	t.snapshot = t.article.Clone()
}

func (st *Store) allocID() int64 {
	st.nextID++
	return st.nextID
}

// uniqueCountries mirrors the UNIQUE(article_id, country) constraint of the SQL schema.
func uniqueCountries(a *entity.Article) error {
	seen := make(map[entity.Country]bool, len(a.Attributes))
	for _, attr := range a.Attributes {
		if seen[attr.Country] {
			return fmt.Errorf("%w: duplicate country %s for article %d",
				repository.ErrConcurrencyConflict, attr.Country, a.ArticleNumber)
		}
		seen[attr.Country] = true
	}
	return nil
}

func attributeChanges(before, after *entity.Article) int {
	old := make(map[int64]*entity.Attribute, len(before.Attributes))
	for _, attr := range before.Attributes {
		old[attr.ID] = attr
	}
	n := 0
	for _, attr := range after.Attributes {
		prev, ok := old[attr.ID]
		if attr.ID == 0 || !ok || *prev != *attr {
			n++
		}
		delete(old, attr.ID)
	}
	return n + len(old)
}
