package article

import (
	"net/http"
	"strconv"

	"article-management/internal/domain/entity"
	"article-management/internal/handler/http/pathutil"
	"article-management/internal/handler/http/respond"
	artUC "article-management/internal/usecase/article"
)

func attributeLocation(n int, c entity.Country) string {
	return BasePath + "/" + strconv.Itoa(n) + "/attributes/" + c.String()
}

// attributeTarget parses {articleNumber} and {country}.
func attributeTarget(w http.ResponseWriter, r *http.Request) (int, entity.Country, bool) {
	n, err := pathutil.ArticleNumber(r)
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return 0, "", false
	}
	c, err := pathutil.Country(r)
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return 0, "", false
	}
	return n, c, true
}

// ListAttributesHandler serves GET /api/v1/articles/{articleNumber}/attributes.
type ListAttributesHandler struct{ Svc Service }

func (h ListAttributesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	n, err := pathutil.ArticleNumber(r)
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	attrs, err := h.Svc.ListAttributes(r.Context(), n)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]AttributeDTO, 0, len(attrs))
	for i := range attrs {
		out = append(out, toAttributeDTO(&attrs[i]))
	}
	respond.JSON(w, http.StatusOK, out)
}

// GetAttributeHandler serves GET /api/v1/articles/{articleNumber}/attributes/{country}.
type GetAttributeHandler struct{ Svc Service }

func (h GetAttributeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	n, c, ok := attributeTarget(w, r)
	if !ok {
		return
	}

	attr, err := h.Svc.GetAttribute(r.Context(), n, c)
	if err != nil {
		writeError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, toAttributeDTO(attr))
}

// AddAttributeHandler serves POST /api/v1/articles/{articleNumber}/attributes.
type AddAttributeHandler struct{ Svc Service }

func (h AddAttributeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	n, err := pathutil.ArticleNumber(r)
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	var req attributePostRequest
	if err := decode(r, &req); err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	if err := req.missing(); err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	if err := required(map[string]bool{"country": req.Country != nil}); err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	attr, err := h.Svc.AddAttribute(r.Context(), n, artUC.AttributeInput{
		Country:         *req.Country,
		AttributeFields: req.fields(),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Location", attributeLocation(n, attr.Country))
	respond.JSON(w, http.StatusCreated, toAttributeDTO(attr))
}

// UpsertAttributeHandler serves PUT /api/v1/articles/{articleNumber}/attributes/{country}.
// It answers 201 with the attribute when it was created and 204 when it was updated.
type UpsertAttributeHandler struct{ Svc Service }

func (h UpsertAttributeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	n, c, ok := attributeTarget(w, r)
	if !ok {
		return
	}
	var req attributePutRequest
	if err := decode(r, &req); err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	if err := req.missing(); err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	res, err := h.Svc.UpsertAttribute(r.Context(), n, c, req.fields())
	if err != nil {
		writeError(w, err)
		return
	}
	if !res.Created {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.Header().Set("Location", attributeLocation(n, c))
	respond.JSON(w, http.StatusCreated, toAttributeDTO(res.Attribute))
}

// DeleteAttributeHandler serves DELETE /api/v1/articles/{articleNumber}/attributes/{country}.
type DeleteAttributeHandler struct{ Svc Service }

func (h DeleteAttributeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	n, c, ok := attributeTarget(w, r)
	if !ok {
		return
	}
	if err := h.Svc.DeleteAttribute(r.Context(), n, c); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
