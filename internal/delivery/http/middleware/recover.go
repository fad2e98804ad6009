package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	h "campusengage/internal/delivery/http/helpers"
)

// Recover turns a panicking handler into a 500 response and logs the stack.
func Recover(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			p := recover()
			if p == nil {
				return
			}
			if p == http.ErrAbortHandler {
				panic(p)
			}
			logger.ErrorContext(r.Context(), "handler panicked",
				"path", r.URL.Path,
				"method", r.Method,
				"panic", fmt.Sprint(p),
				"stack", string(debug.Stack()),
			)
			h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, "internal server error")
		}()
		next.ServeHTTP(w, r)
	})
}
