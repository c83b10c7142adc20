package ports

import (
	"log/slog"
	"net/http"

	"github.com/Amund211/riftrewind/internal/app"
)

func MakeResetSessionHandler(
	resetSession app.ResetSession,
	rootLogger *slog.Logger,
	sentryMiddleware func(http.HandlerFunc) http.HandlerFunc,
	sessionMiddleware func(http.HandlerFunc) http.HandlerFunc,
) http.HandlerFunc {
	middleware := buildMiddleware("reset", rootLogger, sentryMiddleware, sessionMiddleware)

	handler := func(w http.ResponseWriter, r *http.Request) {
		sess, ok := sessionOrFail(w, r)
		if !ok {
			return
		}

		resetSession(r.Context(), sess)

		redirect(w, r, "/", "session reset")
	}

	return middleware(handler)
}
