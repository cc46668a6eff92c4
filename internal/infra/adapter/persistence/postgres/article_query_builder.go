// Package postgres provides the PostgreSQL dialect of the article store.
package postgres

import (
	"fmt"
	"strings"

	"article-management/internal/repository"
)

// ArticleQueryBuilder builds WHERE clauses for article listing in PostgreSQL.
// It uses numbered placeholders ($1, $2, ...) and strpos for a case-sensitive
// substring match, so no LIKE escaping is needed.
type ArticleQueryBuilder struct{}

// NewArticleQueryBuilder creates a new query builder instance.
func NewArticleQueryBuilder() *ArticleQueryBuilder {
	return &ArticleQueryBuilder{}
}

// BuildWhereClause renders the filter over the articles alias "a".
// Returns empty string if no conditions are provided.
func (qb *ArticleQueryBuilder) BuildWhereClause(filter repository.ArticleFilter) (clause string, args []any) {
	var conditions []string
	paramIndex := 1

	if filter.ChangedFrom != nil {
		conditions = append(conditions, fmt.Sprintf("a.last_changed >= $%d", paramIndex))
		args = append(args, filter.ChangedFrom.UTC())
		paramIndex++
	}
	if filter.ChangedTo != nil {
		conditions = append(conditions, fmt.Sprintf("a.last_changed <= $%d", paramIndex))
		args = append(args, filter.ChangedTo.UTC())
		paramIndex++
	}
	if filter.TitleContains != nil {
		conditions = append(conditions, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM article_attributes t WHERE t.article_id = a.id AND strpos(t.title, $%d) > 0)",
			paramIndex))
		args = append(args, *filter.TitleContains)
	}

	if len(conditions) == 0 {
		return "", nil
	}
	return "\nWHERE " + strings.Join(conditions, " AND "), args
}

// Rebind converts '?' placeholders to $1, $2, ... in order of appearance.
func (qb *ArticleQueryBuilder) Rebind(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
