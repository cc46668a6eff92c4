// Package respond writes JSON responses and error bodies of the form
// {"error": "..."}. Server-side failures are logged and masked.
package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
)

// JSON writes a JSON response with the given status code and data.
func JSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			// Headers are already sent; all that is left is to log.
			slog.Default().Error("failed to encode JSON response",
				slog.Int("status_code", code),
				slog.Any("error", err))
		}
	}
}

// PublicError carries a message that may be shown to clients even on a 5xx.
type PublicError struct {
	Msg string
	Err error
}

func (e *PublicError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Msg
}

func (e *PublicError) Unwrap() error { return e.Err }

// Public marks err as safe to show with msg as the client-facing text.
func Public(msg string, err error) error {
	return &PublicError{Msg: msg, Err: err}
}

// SafeError writes err as the response body. Client errors (4xx) are
// returned verbatim. Server errors are logged with secrets masked and
// answered with "internal server error" unless err wraps a PublicError.
func SafeError(w http.ResponseWriter, code int, err error) {
	if err == nil {
		return
	}
	if code < http.StatusInternalServerError {
		JSON(w, code, map[string]string{"error": err.Error()})
		return
	}

	msg := "internal server error"
	var pub *PublicError
	if errors.As(err, &pub) {
		msg = pub.Msg
	}
	slog.Default().Error("internal server error",
		slog.String("status", http.StatusText(code)),
		slog.Int("code", code),
		slog.String("error", SanitizeError(err)))
	JSON(w, code, map[string]string{"error": msg})
}
