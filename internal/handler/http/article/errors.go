package article

import (
	"net/http"

	"article-management/internal/handler/http/respond"
	artUC "article-management/internal/usecase/article"
)

// writeError maps a Manager error to its HTTP status. Commit failures keep
// their message so callers know whether to retry; other server faults are masked.
func writeError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch artUC.KindOf(err) {
	case artUC.KindNotFound:
		code = http.StatusNotFound
	case artUC.KindConflict:
		code = http.StatusConflict
	case artUC.KindInvalid:
		code = http.StatusBadRequest
	case artUC.KindPersistenceConflict:
		err = respond.Public(artUC.ErrPersistenceConflict.Error(), err)
	case artUC.KindPersistence:
		err = respond.Public(artUC.ErrPersistence.Error(), err)
	case artUC.KindTimeout:
		err = respond.Public(artUC.ErrQueryTimeout.Error(), err)
	}
	respond.SafeError(w, code, err)
}
