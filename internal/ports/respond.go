package ports

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/Amund211/riftrewind/internal/logging"
	"github.com/Amund211/riftrewind/internal/reporting"
	"github.com/Amund211/riftrewind/internal/session"
	"github.com/Amund211/riftrewind/internal/views"
	"github.com/a-h/templ"
)

func writeHTML(w http.ResponseWriter, r *http.Request, statusCode int, reason string, component templ.Component) {
	ctx := r.Context()
	logging.FromContext(ctx).InfoContext(ctx, "Returning response", slog.Int("statusCode", statusCode), slog.String("reason", reason))

	templ.Handler(component, templ.WithStatus(statusCode)).ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, r *http.Request, statusCode int, reason string, body any) {
	ctx := r.Context()

	marshalled, err := json.Marshal(body)
	if err != nil {
		reporting.Report(ctx, fmt.Errorf("failed to marshal response: %w", err))
		statusCode = http.StatusInternalServerError
		reason = "failed to marshal response"
		marshalled = []byte(`{"error":"Failed to marshal response"}`)
	}

	logging.FromContext(ctx).InfoContext(ctx, "Returning response", slog.Int("statusCode", statusCode), slog.String("reason", reason))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	w.Write(marshalled)
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSONError(w http.ResponseWriter, r *http.Request, statusCode int, message string) {
	writeJSON(w, r, statusCode, message, errorResponse{Error: message})
}

func redirect(w http.ResponseWriter, r *http.Request, location, reason string) {
	ctx := r.Context()
	logging.FromContext(ctx).InfoContext(ctx, "Returning response", slog.Int("statusCode", http.StatusSeeOther), slog.String("reason", reason), slog.String("location", location))

	http.Redirect(w, r, location, http.StatusSeeOther)
}

func pageRateLimitExceeded(w http.ResponseWriter, r *http.Request) {
	writeHTML(w, r, http.StatusTooManyRequests, "ratelimit exceeded", views.ErrorPage("Too many requests, please slow down."))
}

func jsonRateLimitExceeded(w http.ResponseWriter, r *http.Request) {
	writeJSONError(w, r, http.StatusTooManyRequests, "Rate limit exceeded")
}

// sessionOrFail returns the request's session, answering 500 when the session middleware is missing
func sessionOrFail(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		reporting.Report(r.Context(), fmt.Errorf("no session in request context"))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return nil, false
	}
	return sess, true
}
