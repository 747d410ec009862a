package middleware

import (
	"net/http"

	"github.com/rs/zerolog/log"
)

// Recover converts a handler panic into the structured failure response the
// form clients expect, never a bare error page.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Error().
					Interface("panic", rec).
					Str("path", r.URL.Path).
					Msg("Recovered from panic in handler")

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte(`{"success": false, "message": "Something went wrong. Please try again later."}`))
			}
		}()

		next.ServeHTTP(w, r)
	})
}
