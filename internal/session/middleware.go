package session

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/Amund211/riftrewind/internal/logging"
	"github.com/Amund211/riftrewind/internal/reporting"
)

const CookieName = "rr_session"

type sessionContextKey struct{}

func FromContext(ctx context.Context) (*Session, bool) {
	session, ok := ctx.Value(sessionContextKey{}).(*Session)
	return session, ok
}

func AddToContext(ctx context.Context, session *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, session)
}

// NewMiddleware attaches the visitor's session to the request, issuing a cookie for new sessions
func NewMiddleware(registry *Registry, secureCookie bool) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			id := ""
			if cookie, err := r.Cookie(CookieName); err == nil {
				id = cookie.Value
			}

			session, created := registry.GetOrCreate(id)
			if created {
				http.SetCookie(w, &http.Cookie{
					Name:     CookieName,
					Value:    session.ID,
					Path:     "/",
					HttpOnly: true,
					Secure:   secureCookie,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx := AddToContext(r.Context(), session)
			ctx = logging.AddMetaToContext(ctx, slog.String("sessionId", session.ID))
			ctx = reporting.SetUserIDInContext(ctx, session.ID)

			next(w, r.WithContext(ctx))
		}
	}
}
