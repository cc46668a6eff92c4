package sqlite_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"article-management/internal/domain/entity"
	"article-management/internal/infra/adapter/persistence/sqlite"
	"article-management/internal/infra/db"
	"article-management/internal/repository"
	"article-management/internal/usecase/article"
)

/* ────────────────────────────  helpers  ──────────────────────────── */

var base = time.Date(2024, 6, 1, 10, 0, 0, 123456000, time.UTC)

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()
	conn, err := db.Open(ctx, db.DriverSQLite, ":memory:", db.DefaultConnectionConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, db.MigrateUp(ctx, conn, db.DriverSQLite))
	return conn
}

func insert(t *testing.T, store repository.ArticleStore, n int, changed time.Time, titles map[entity.Country]string) {
	t.Helper()
	a := entity.NewArticle(n, "Acme", false, changed)
	for _, c := range entity.Countries() {
		if title, ok := titles[c]; ok {
			a.AddAttribute(c, entity.AttributeFields{Title: title, Description: "d", Color: "red"}, changed)
		}
	}
	sess := store.Session()
	sess.Add(a)
	_, err := sess.SaveChanges(context.Background())
	require.NoError(t, err)
}

/* ──────────────────────────── 1. Round trip ──────────────────────────── */

func TestArticleStore_RoundTrip(t *testing.T) {
	store := sqlite.NewArticleStore(openDB(t))
	ctx := context.Background()

	a := entity.NewArticle(1001, "Acme", true, base)
	a.AddAttribute(entity.CountryGermany, entity.AttributeFields{Title: "Hemd", Description: "Ein Hemd", Color: "rot"}, base)
	sess := store.Session()
	sess.Add(a)
	rows, err := sess.SaveChanges(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, rows)
	require.NotZero(t, a.ID)
	require.NotZero(t, a.Attributes[0].ID)

	got, err := store.Session().Get(ctx, 1001)
	require.NoError(t, err)
	if diff := cmp.Diff(a, got); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}

	missing, err := store.Session().Get(ctx, 7)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

/* ──────────────────────────── 2. Concurrency ──────────────────────────── */

func TestArticleStore_StaleWriterConflicts(t *testing.T) {
	store := sqlite.NewArticleStore(openDB(t))
	ctx := context.Background()
	insert(t, store, 1001, base, nil)

	s1, s2 := store.Session(), store.Session()
	a1, err := s1.Get(ctx, 1001)
	require.NoError(t, err)
	a2, err := s2.Get(ctx, 1001)
	require.NoError(t, err)

	a1.Update("First", false, base.Add(time.Minute))
	_, err = s1.SaveChanges(ctx)
	require.NoError(t, err)

	a2.AddAttribute(entity.CountryFrance, entity.AttributeFields{Title: "x", Description: "d", Color: "c"}, base.Add(time.Minute))
	_, err = s2.SaveChanges(ctx)
	require.ErrorIs(t, err, repository.ErrConcurrencyConflict)

	stored, err := store.Session().Get(ctx, 1001)
	require.NoError(t, err)
	assert.Equal(t, "First", stored.Brand)
	assert.Empty(t, stored.Attributes, "losing transaction must be rolled back")
}

func TestArticleStore_DuplicateNumberConflicts(t *testing.T) {
	store := sqlite.NewArticleStore(openDB(t))
	insert(t, store, 1001, base, nil)

	sess := store.Session()
	sess.Add(entity.NewArticle(1001, "Other", false, base))
	_, err := sess.SaveChanges(context.Background())
	assert.ErrorIs(t, err, repository.ErrConcurrencyConflict)
}

/* ──────────────────────────── 3. Attribute diff ──────────────────────────── */

func TestArticleStore_AttributeChanges(t *testing.T) {
	store := sqlite.NewArticleStore(openDB(t))
	ctx := context.Background()
	insert(t, store, 1001, base, map[entity.Country]string{
		entity.CountryGermany: "Hemd",
		entity.CountryAustria: "Hemd AT",
	})

	sess := store.Session()
	a, err := sess.Get(ctx, 1001)
	require.NoError(t, err)
	later := base.Add(time.Hour)
	a.UpdateAttribute(a.AttributesFor(entity.CountryGermany)[0],
		entity.AttributeFields{Title: "Neues Hemd", Description: "d", Color: "blau"}, later)
	a.RemoveAttribute(a.AttributesFor(entity.CountryAustria)[0], later)
	// Removing and re-adding a country in one unit of work must not trip the unique key.
	a.AddAttribute(entity.CountryAustria, entity.AttributeFields{Title: "Hemd neu", Description: "d", Color: "c"}, later)

	rows, err := sess.SaveChanges(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, rows)

	got, err := store.Session().Get(ctx, 1001)
	require.NoError(t, err)
	require.Len(t, got.Attributes, 2)
	assert.Equal(t, "Neues Hemd", got.AttributesFor(entity.CountryGermany)[0].Title)
	assert.Equal(t, "Hemd neu", got.AttributesFor(entity.CountryAustria)[0].Title)
	assert.Equal(t, later, got.LastChanged)
	assert.Equal(t, int64(2), got.Version)
}

func TestArticleStore_DeleteCascades(t *testing.T) {
	conn := openDB(t)
	store := sqlite.NewArticleStore(conn)
	ctx := context.Background()
	insert(t, store, 1001, base, map[entity.Country]string{entity.CountryGermany: "Hemd"})

	sess := store.Session()
	a, err := sess.Get(ctx, 1001)
	require.NoError(t, err)
	sess.Remove(a)
	_, err = sess.SaveChanges(ctx)
	require.NoError(t, err)

	var n int
	require.NoError(t, conn.QueryRowContext(ctx, `SELECT count(*) FROM article_attributes`).Scan(&n))
	assert.Zero(t, n, "attributes must be deleted with their article")
}

/* ──────────────────────────── 4. Query ──────────────────────────── */

func TestArticleStore_Query(t *testing.T) {
	store := sqlite.NewArticleStore(openDB(t))
	ctx := context.Background()
	insert(t, store, 1, base, map[entity.Country]string{entity.CountryGermany: "Red Shirt"})
	insert(t, store, 2, base.Add(time.Hour), map[entity.Country]string{entity.CountryGermany: "Blue Shirt", entity.CountryFrance: "Chemise"})
	insert(t, store, 3, base.Add(2*time.Hour), map[entity.Country]string{entity.CountryGermany: "Trousers"})

	at := func(d time.Duration) *time.Time { v := base.Add(d); return &v }
	str := func(s string) *string { return &s }
	cet := base.Add(time.Hour).In(time.FixedZone("CET", 3600))

	tests := []struct {
		name   string
		filter repository.ArticleFilter
		want   []int
	}{
		{name: "no filter", filter: repository.ArticleFilter{}, want: []int{1, 2, 3}},
		{name: "inclusive bounds", filter: repository.ArticleFilter{ChangedFrom: at(time.Hour), ChangedTo: at(time.Hour)}, want: []int{2}},
		{name: "bound in other zone", filter: repository.ArticleFilter{ChangedFrom: &cet}, want: []int{2, 3}},
		{name: "title substring", filter: repository.ArticleFilter{TitleContains: str("Shirt")}, want: []int{1, 2}},
		{name: "title case sensitive", filter: repository.ArticleFilter{TitleContains: str("shirt")}, want: []int{}},
		{name: "percent is literal", filter: repository.ArticleFilter{TitleContains: str("%")}, want: []int{}},
		{name: "future from", filter: repository.ArticleFilter{ChangedFrom: at(48 * time.Hour)}, want: []int{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.Session().Query(ctx, tt.filter, time.Second)
			require.NoError(t, err)
			numbers := make([]int, 0, len(got))
			for _, a := range got {
				numbers = append(numbers, a.ArticleNumber)
			}
			if diff := cmp.Diff(tt.want, numbers); diff != "" {
				t.Errorf("Query mismatch (-want +got):\n%s", diff)
			}
		})
	}

	got, err := store.Session().Query(ctx, repository.ArticleFilter{ChangedFrom: at(time.Hour), ChangedTo: at(time.Hour)}, time.Second)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Len(t, got[0].Attributes, 2, "listed articles carry all attributes")
}

/* ──────────────────────────── 5. Manager on SQLite ──────────────────────────── */

func TestManager_OnSQLite(t *testing.T) {
	ctx := context.Background()
	m := &article.Manager{
		Store: sqlite.NewArticleStore(openDB(t)),
		Now:   func() time.Time { return base },
	}

	_, err := m.CreateArticle(ctx, article.ArticleInput{ArticleNumber: 1001, Brand: "Acme"})
	require.NoError(t, err)
	_, err = m.CreateArticle(ctx, article.ArticleInput{ArticleNumber: 1001, Brand: "Acme"})
	require.ErrorIs(t, err, article.ErrArticleExists)

	for _, c := range entity.Countries() {
		_, err := m.AddAttribute(ctx, 1001, article.AttributeInput{
			Country:         c,
			AttributeFields: entity.AttributeFields{Title: "T " + c.String(), Description: "d", Color: "c"},
		})
		require.NoError(t, err)
	}
	got, err := m.GetArticle(ctx, 1001)
	require.NoError(t, err)
	assert.True(t, got.IsApproved)

	require.NoError(t, m.DeleteAttribute(ctx, 1001, entity.CountryDenmark))
	got, err = m.GetArticle(ctx, 1001)
	require.NoError(t, err)
	assert.False(t, got.IsApproved)

	list, err := m.ListArticles(ctx, article.ListInput{})
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, m.DeleteArticle(ctx, 1001))
	_, err = m.ListAttributes(ctx, 1001)
	assert.ErrorIs(t, err, article.ErrArticleNotFound)
}
