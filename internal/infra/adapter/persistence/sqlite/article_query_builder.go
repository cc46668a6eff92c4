// Package sqlite provides the SQLite dialect of the article store.
package sqlite

import (
	"strings"

	"article-management/internal/repository"
)

// ArticleQueryBuilder builds WHERE clauses for article listing in SQLite.
// instr() gives a case-sensitive substring match, unlike LIKE which folds ASCII case.
type ArticleQueryBuilder struct{}

// NewArticleQueryBuilder creates a new query builder instance.
func NewArticleQueryBuilder() *ArticleQueryBuilder {
	return &ArticleQueryBuilder{}
}

// BuildWhereClause renders the filter over the articles alias "a".
// Returns empty string if no conditions are provided.
func (qb *ArticleQueryBuilder) BuildWhereClause(filter repository.ArticleFilter) (clause string, args []any) {
	var conditions []string

	// Times are stored as UTC text, so the bounds must be UTC as well to compare correctly.
	if filter.ChangedFrom != nil {
		conditions = append(conditions, "a.last_changed >= ?")
		args = append(args, filter.ChangedFrom.UTC())
	}
	if filter.ChangedTo != nil {
		conditions = append(conditions, "a.last_changed <= ?")
		args = append(args, filter.ChangedTo.UTC())
	}
	if filter.TitleContains != nil {
		conditions = append(conditions,
			"EXISTS (SELECT 1 FROM article_attributes t WHERE t.article_id = a.id AND instr(t.title, ?) > 0)")
		args = append(args, *filter.TitleContains)
	}

	if len(conditions) == 0 {
		return "", nil
	}
	return "\nWHERE " + strings.Join(conditions, " AND "), args
}

// Rebind returns query unchanged; SQLite accepts '?' natively.
func (qb *ArticleQueryBuilder) Rebind(query string) string {
	return query
}
