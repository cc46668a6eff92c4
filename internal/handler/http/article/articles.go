package article

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"article-management/internal/handler/http/pathutil"
	"article-management/internal/handler/http/respond"
	artUC "article-management/internal/usecase/article"
)

func articleLocation(n int) string {
	return BasePath + "/" + strconv.Itoa(n)
}

// GetHandler serves GET /api/v1/articles/{articleNumber}.
type GetHandler struct{ Svc Service }

func (h GetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	n, err := pathutil.ArticleNumber(r)
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	a, err := h.Svc.GetArticle(r.Context(), n)
	if err != nil {
		writeError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, toArticleDTO(a))
}

// ListHandler serves GET /api/v1/articles?from=&to=&title=.
// from and to are RFC 3339 timestamps; both bounds are inclusive.
type ListHandler struct{ Svc Service }

func (h ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var in artUC.ListInput

	for _, p := range []struct {
		name string
		dst  **time.Time
	}{{"from", &in.ChangedFrom}, {"to", &in.ChangedTo}} {
		v := q.Get(p.name)
		if v == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			respond.SafeError(w, http.StatusBadRequest, errors.New(p.name+" must be in RFC3339 format"))
			return
		}
		*p.dst = &t
	}
	if title := q.Get("title"); title != "" {
		in.TitleContains = &title
	}

	articles, err := h.Svc.ListArticles(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]ArticleDTO, 0, len(articles))
	for i := range articles {
		out = append(out, toArticleDTO(&articles[i]))
	}
	respond.JSON(w, http.StatusOK, out)
}

// CreateHandler serves POST /api/v1/articles.
type CreateHandler struct{ Svc Service }

func (h CreateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req articlePostRequest
	if err := decode(r, &req); err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	if err := required(map[string]bool{
		"articleNumber": req.ArticleNumber != nil,
		"brand":         req.Brand != nil,
		"isBulky":       req.IsBulky != nil,
	}); err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	a, err := h.Svc.CreateArticle(r.Context(), artUC.ArticleInput{
		ArticleNumber: *req.ArticleNumber,
		Brand:         *req.Brand,
		IsBulky:       *req.IsBulky,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Location", articleLocation(a.ArticleNumber))
	respond.JSON(w, http.StatusCreated, toArticleDTO(a))
}

// UpsertHandler serves PUT /api/v1/articles/{articleNumber}.
// It answers 201 with the article when it was created and 204 when it was updated.
type UpsertHandler struct{ Svc Service }

func (h UpsertHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	n, err := pathutil.ArticleNumber(r)
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	var req articlePutRequest
	if err := decode(r, &req); err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	if err := required(map[string]bool{
		"brand":   req.Brand != nil,
		"isBulky": req.IsBulky != nil,
	}); err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	res, err := h.Svc.UpsertArticle(r.Context(), artUC.ArticleInput{
		ArticleNumber: n,
		Brand:         *req.Brand,
		IsBulky:       *req.IsBulky,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	if !res.Created {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.Header().Set("Location", articleLocation(n))
	respond.JSON(w, http.StatusCreated, toArticleDTO(res.Article))
}

// DeleteHandler serves DELETE /api/v1/articles/{articleNumber}.
type DeleteHandler struct{ Svc Service }

func (h DeleteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	n, err := pathutil.ArticleNumber(r)
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	if err := h.Svc.DeleteArticle(r.Context(), n); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
