package middleware

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"rentabike/pkg/auth"
	apperrors "rentabike/pkg/errors"
	httputil "rentabike/pkg/http"
	"rentabike/pkg/logger"
)

// Guard wraps a route handle, e.g. to require an admin session.
type Guard func(httprouter.Handle) httprouter.Handle

// RequireAdmin rejects requests without a valid admin Bearer token.
func RequireAdmin(verifier auth.Verifier, log *logger.Logger) Guard {
	return func(next httprouter.Handle) httprouter.Handle {
		return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
			token := auth.BearerToken(r)
			if token == "" || !verifier.Authorized(token) {
				log.Warn("Admin request rejected",
					"request_id", GetRequestID(r.Context()),
					"method", r.Method,
					"path", r.URL.Path,
					"token_present", token != "",
				)
				if err := httputil.WriteError(w, apperrors.Unauthorized("Admin authentication required")); err != nil {
					log.Error("failed to write error response", "handler", "RequireAdmin", "operation", "WriteError", "error", err)
				}
				return
			}
			next(w, r, ps)
		}
	}
}

// Open is a Guard that lets every request through.
func Open(next httprouter.Handle) httprouter.Handle {
	return next
}
