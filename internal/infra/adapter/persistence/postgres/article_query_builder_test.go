package postgres_test

import (
	"testing"
	"time"

	"article-management/internal/infra/adapter/persistence/postgres"
	"article-management/internal/repository"
)

/* ──────────────────────────── BuildWhereClause Tests ──────────────────────────── */

func TestArticleQueryBuilder_BuildWhereClause_NoConditions(t *testing.T) {
	builder := postgres.NewArticleQueryBuilder()
	clause, args := builder.BuildWhereClause(repository.ArticleFilter{})

	if clause != "" {
		t.Errorf("clause should be empty, got %q", clause)
	}
	if len(args) != 0 {
		t.Errorf("args should be empty, got %v", args)
	}
}

func TestArticleQueryBuilder_BuildWhereClause_TitleOnly(t *testing.T) {
	builder := postgres.NewArticleQueryBuilder()
	title := "Shirt"
	clause, args := builder.BuildWhereClause(repository.ArticleFilter{TitleContains: &title})

	expected := "\nWHERE EXISTS (SELECT 1 FROM article_attributes t WHERE t.article_id = a.id AND strpos(t.title, $1) > 0)"
	if clause != expected {
		t.Errorf("clause = %q, want %q", clause, expected)
	}
	if len(args) != 1 || args[0] != "Shirt" {
		t.Errorf("args = %v, want [Shirt]", args)
	}
}

func TestArticleQueryBuilder_BuildWhereClause_AllFilters(t *testing.T) {
	builder := postgres.NewArticleQueryBuilder()
	berlin := time.FixedZone("CET", 3600)
	from := time.Date(2024, 1, 1, 1, 0, 0, 0, berlin)
	to := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
	title := "Hemd"

	clause, args := builder.BuildWhereClause(repository.ArticleFilter{
		ChangedFrom:   &from,
		ChangedTo:     &to,
		TitleContains: &title,
	})

	expected := "\nWHERE a.last_changed >= $1 AND a.last_changed <= $2 AND " +
		"EXISTS (SELECT 1 FROM article_attributes t WHERE t.article_id = a.id AND strpos(t.title, $3) > 0)"
	if clause != expected {
		t.Errorf("clause = %q, want %q", clause, expected)
	}
	if len(args) != 3 {
		t.Fatalf("len(args) = %d, want 3", len(args))
	}
	gotFrom, ok := args[0].(time.Time)
	if !ok || !gotFrom.Equal(from) || gotFrom.Location() != time.UTC {
		t.Errorf("args[0] = %v, want %v in UTC", args[0], from)
	}
	if args[2] != "Hemd" {
		t.Errorf("args[2] = %v, want Hemd", args[2])
	}
}

func TestArticleQueryBuilder_Rebind(t *testing.T) {
	builder := postgres.NewArticleQueryBuilder()

	tests := []struct {
		in   string
		want string
	}{
		{in: "SELECT 1", want: "SELECT 1"},
		{in: "WHERE id = ?", want: "WHERE id = $1"},
		{in: "SET a = ?, b = ? WHERE id = ?", want: "SET a = $1, b = $2 WHERE id = $3"},
	}
	for _, tt := range tests {
		if got := builder.Rebind(tt.in); got != tt.want {
			t.Errorf("Rebind(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
