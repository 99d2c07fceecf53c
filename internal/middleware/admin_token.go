package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/jrramp/arecheoedu/internal/errs"
)

const AdminTokenHeader = "X-Admin-Token"

// AdminToken rejects requests without a matching X-Admin-Token header.
// An empty token lets every request through.
func AdminToken(token string, logger zerolog.Logger) func(http.Handler) http.Handler {
	const op errs.Op = "middleware.AdminToken"

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			provided := r.Header.Get(AdminTokenHeader)
			if subtle.ConstantTimeCompare([]byte(provided), []byte(token)) != 1 {
				errs.HTTPErrorResponse(w, logger, errs.E(errs.Unauthenticated, op, errs.Str("missing or invalid admin token")))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
