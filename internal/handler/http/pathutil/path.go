// Package pathutil extracts typed route parameters from ServeMux path values.
package pathutil

import (
	"errors"
	"net/http"
	"strconv"

	"article-management/internal/domain/entity"
)

// Route parameter names used in the article routes.
const (
	ArticleNumberParam = "articleNumber"
	CountryParam       = "country"
)

// ErrInvalidArticleNumber is returned when the article number segment is not
// an integer in 1..entity.MaxArticleNumber.
var ErrInvalidArticleNumber = errors.New("invalid article number")

// ArticleNumber parses the {articleNumber} path value.
//
// Example:
//
//	// route "GET /api/v1/articles/{articleNumber}", path "/api/v1/articles/1001"
//	n, err := ArticleNumber(r) // 1001, nil
func ArticleNumber(r *http.Request) (int, error) {
	n, err := strconv.Atoi(r.PathValue(ArticleNumberParam))
	if err != nil || entity.ValidateArticleNumber(n) != nil {
		return 0, ErrInvalidArticleNumber
	}
	return n, nil
}

// Country parses the {country} path value. Codes are case-insensitive.
func Country(r *http.Request) (entity.Country, error) {
	return entity.ParseCountry(r.PathValue(CountryParam))
}
