package repository_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"article-management/internal/domain/entity"
	"article-management/internal/repository"
)

func TestArticleFilter_Matches(t *testing.T) {
	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	a := entity.NewArticle(1, "Acme", false, base)
	a.AddAttribute(entity.CountryGermany, entity.AttributeFields{Title: "Gartenstuhl", Description: "d", Color: "grün"}, base)

	before := base.Add(-time.Hour)
	after := base.Add(time.Hour)
	sub := "Stuhl"
	lower := "stuhl"
	missing := "Tisch"

	tests := []struct {
		name   string
		filter repository.ArticleFilter
		want   bool
	}{
		{name: "no filter", filter: repository.ArticleFilter{}, want: true},
		{name: "from before", filter: repository.ArticleFilter{ChangedFrom: &before}, want: true},
		{name: "from equal is inclusive", filter: repository.ArticleFilter{ChangedFrom: &base}, want: true},
		{name: "from after", filter: repository.ArticleFilter{ChangedFrom: &after}, want: false},
		{name: "to equal is inclusive", filter: repository.ArticleFilter{ChangedTo: &base}, want: true},
		{name: "to before", filter: repository.ArticleFilter{ChangedTo: &before}, want: false},
		{name: "title contains", filter: repository.ArticleFilter{TitleContains: &lower}, want: true},
		{name: "title is case-sensitive", filter: repository.ArticleFilter{TitleContains: &sub}, want: false},
		{name: "title missing", filter: repository.ArticleFilter{TitleContains: &missing}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Matches(a))
		})
	}
}
