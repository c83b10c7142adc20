package ports

import (
	"log/slog"
	"net/http"

	"github.com/Amund211/riftrewind/internal/views"
)

func MakeNotFoundHandler(
	rootLogger *slog.Logger,
	sentryMiddleware func(http.HandlerFunc) http.HandlerFunc,
	sessionMiddleware func(http.HandlerFunc) http.HandlerFunc,
) http.HandlerFunc {
	middleware := buildMiddleware("notfound", rootLogger, sentryMiddleware, sessionMiddleware)

	handler := func(w http.ResponseWriter, r *http.Request) {
		writeHTML(w, r, http.StatusNotFound, "no such route", views.NotFoundPage())
	}

	return middleware(handler)
}
