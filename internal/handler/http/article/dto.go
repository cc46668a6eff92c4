// Package article provides the HTTP handlers for articles and their
// country-specific attributes under /api/v1/articles.
package article

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"article-management/internal/domain/entity"
	artUC "article-management/internal/usecase/article"
)

// ArticleDTO is the JSON representation of an article.
type ArticleDTO struct {
	ArticleNumber int    `json:"articleNumber"`
	Brand         string `json:"brand"`
	IsBulky       bool   `json:"isBulky"`
	IsApproved    bool   `json:"isApproved"`
}

// AttributeDTO is the JSON representation of an attribute.
type AttributeDTO struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Color       string         `json:"color"`
	Country     entity.Country `json:"country"`
}

func toArticleDTO(a *artUC.ArticleOutput) ArticleDTO {
	return ArticleDTO{
		ArticleNumber: a.ArticleNumber,
		Brand:         a.Brand,
		IsBulky:       a.IsBulky,
		IsApproved:    a.IsApproved,
	}
}

func toAttributeDTO(a *artUC.AttributeOutput) AttributeDTO {
	return AttributeDTO{
		Title:       a.Title,
		Description: a.Description,
		Color:       a.Color,
		Country:     a.Country,
	}
}

// Request bodies use pointers so a missing field can be told apart from a zero value.

type articlePostRequest struct {
	ArticleNumber *int    `json:"articleNumber"`
	Brand         *string `json:"brand"`
	IsBulky       *bool   `json:"isBulky"`
}

type articlePutRequest struct {
	Brand   *string `json:"brand"`
	IsBulky *bool   `json:"isBulky"`
}

type attributePutRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Color       *string `json:"color"`
}

type attributePostRequest struct {
	attributePutRequest
	Country *entity.Country `json:"country"`
}

func (r attributePutRequest) fields() entity.AttributeFields {
	return entity.AttributeFields{Title: *r.Title, Description: *r.Description, Color: *r.Color}
}

func (r attributePutRequest) missing() error {
	return required(map[string]bool{
		"title":       r.Title != nil,
		"description": r.Description != nil,
		"color":       r.Color != nil,
	})
}

// required reports the first absent field in a stable order.
func required(present map[string]bool) error {
	for _, name := range []string{"articleNumber", "brand", "isBulky", "title", "description", "color", "country"} {
		if ok, known := present[name]; known && !ok {
			return fmt.Errorf("%s is required", name)
		}
	}
	return nil
}

// decode reads one JSON object from the request body.
func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return fmt.Errorf("request body must not exceed %d bytes", maxErr.Limit)
		case errors.Is(err, io.EOF):
			return errors.New("request body is required")
		default:
			return fmt.Errorf("invalid request body: %w", err)
		}
	}
	return nil
}
