package article

import (
	"context"
	"net/http"

	"article-management/internal/domain/entity"
	artUC "article-management/internal/usecase/article"
)

// BasePath is the prefix of every article route.
const BasePath = "/api/v1/articles"

// Service is the subset of the article Manager the handlers call.
type Service interface {
	GetArticle(ctx context.Context, articleNumber int) (*artUC.ArticleOutput, error)
	ListArticles(ctx context.Context, in artUC.ListInput) ([]artUC.ArticleOutput, error)
	CreateArticle(ctx context.Context, in artUC.ArticleInput) (*artUC.ArticleOutput, error)
	UpsertArticle(ctx context.Context, in artUC.ArticleInput) (*artUC.UpsertResult, error)
	DeleteArticle(ctx context.Context, articleNumber int) error

	ListAttributes(ctx context.Context, articleNumber int) ([]artUC.AttributeOutput, error)
	GetAttribute(ctx context.Context, articleNumber int, country entity.Country) (*artUC.AttributeOutput, error)
	AddAttribute(ctx context.Context, articleNumber int, in artUC.AttributeInput) (*artUC.AttributeOutput, error)
	UpsertAttribute(ctx context.Context, articleNumber int, country entity.Country, fields entity.AttributeFields) (*artUC.AttributeUpsertResult, error)
	DeleteAttribute(ctx context.Context, articleNumber int, country entity.Country) error
}

// Register registers all article-related HTTP handlers with the given mux.
func Register(mux *http.ServeMux, svc Service) {
	const item = BasePath + "/{articleNumber}"
	const attr = item + "/attributes/{country}"

	mux.Handle("GET "+BasePath, ListHandler{svc})
	mux.Handle("POST "+BasePath, CreateHandler{svc})
	mux.Handle("GET "+item, GetHandler{svc})
	mux.Handle("PUT "+item, UpsertHandler{svc})
	mux.Handle("DELETE "+item, DeleteHandler{svc})

	mux.Handle("GET "+item+"/attributes", ListAttributesHandler{svc})
	mux.Handle("POST "+item+"/attributes", AddAttributeHandler{svc})
	mux.Handle("GET "+attr, GetAttributeHandler{svc})
	mux.Handle("PUT "+attr, UpsertAttributeHandler{svc})
	mux.Handle("DELETE "+attr, DeleteAttributeHandler{svc})
}
