package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/mkarpenko/streamhub/internal/logger"
	"github.com/mkarpenko/streamhub/internal/session"
	"github.com/mkarpenko/streamhub/internal/utils"
	"github.com/mkarpenko/streamhub/models"
)

// sessionKeyHeader is the fallback token transport for device clients that
// cannot carry cookies.
const sessionKeyHeader = "X-Session-Key"

// sessionGate authenticates requests for one session class. The token comes
// from the class's cookie, or from the X-Session-Key header for device
// classes. A valid token attaches the user id and the token itself to the
// request context; anything else is an opaque 403.
func (h *Handler) sessionGate(class models.SessionClass) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log := logger.FromRequest(r)

			key := sessionKeyFromRequest(r, class)
			if key == "" {
				log.Warn().Str("class", class.String()).Msg("request without session key rejected")
				forbidden(w)
				return
			}

			userID, err := h.sessions.Validate(r.Context(), class, key)
			if err != nil {
				if errors.Is(err, session.ErrInvalidSession) {
					log.Warn().Str("class", class.String()).Msg("invalid session key rejected")
					forbidden(w)
					return
				}
				log.Err(err).Str("class", class.String()).Msg("error validating session key")
				internalError(w)
				return
			}

			ctx := context.WithValue(r.Context(), utils.UserIDCtxKey, userID)
			ctx = context.WithValue(ctx, utils.SessionKeyCtxKey, key)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func sessionKeyFromRequest(r *http.Request, class models.SessionClass) string {
	if cookie, err := r.Cookie(class.Info().CookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	if class == models.SessFrontend {
		// Browser sessions are cookie-only.
		return ""
	}

	return r.Header.Get(sessionKeyHeader)
}
