package ports

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Amund211/riftrewind/internal/app"
	"github.com/Amund211/riftrewind/internal/domain"
	"github.com/Amund211/riftrewind/internal/logging"
	"github.com/Amund211/riftrewind/internal/markdown"
	"github.com/Amund211/riftrewind/internal/reporting"
	"github.com/Amund211/riftrewind/internal/views"
	"github.com/a-h/templ"
)

const maxChatMessageBytes = 16 * 1024

func turnView(ctx context.Context, turn domain.ChatTurn) views.TurnView {
	view := views.TurnView{
		Role: string(turn.Role),
		Text: turn.Text,
		HTML: templ.EscapeString(turn.Text),
	}
	if turn.Role != domain.ChatRoleAssistant {
		return view
	}

	rendered, err := markdown.Render(turn.Text)
	if err != nil {
		reporting.Report(ctx, err, map[string]string{
			"length": strconv.Itoa(len(turn.Text)),
		})
		return view
	}
	view.HTML = rendered
	return view
}

func turnViews(ctx context.Context, turns []domain.ChatTurn) []views.TurnView {
	result := make([]views.TurnView, 0, len(turns))
	for _, turn := range turns {
		result = append(result, turnView(ctx, turn))
	}
	return result
}

type chatLogResponse struct {
	Turns    []views.TurnView `json:"turns"`
	Awaiting bool             `json:"awaiting"`
}

type chatMessageRequest struct {
	Message string `json:"message"`
}

func MakeGetChatHandler(
	rootLogger *slog.Logger,
	sentryMiddleware func(http.HandlerFunc) http.HandlerFunc,
	sessionMiddleware func(http.HandlerFunc) http.HandlerFunc,
) http.HandlerFunc {
	middleware := buildMiddleware("chatlog", rootLogger, sentryMiddleware, sessionMiddleware)

	handler := func(w http.ResponseWriter, r *http.Request) {
		sess, ok := sessionOrFail(w, r)
		if !ok {
			return
		}

		writeJSON(w, r, http.StatusOK, "chat log", chatLogResponse{
			Turns:    turnViews(r.Context(), sess.Chat.Turns()),
			Awaiting: sess.Chat.Awaiting(),
		})
	}

	return middleware(handler)
}

// chatErrorStatus maps errors from SendChatMessage to a status code and a message for the visitor
func chatErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrAwaitingReply):
		return http.StatusConflict, "Still waiting for the previous reply"
	case errors.Is(err, domain.ErrNoRecapContext):
		return http.StatusBadRequest, "Load a recap before chatting"
	default:
		return http.StatusInternalServerError, "Failed to send message"
	}
}

func MakeSendChatHandler(
	sendChatMessage app.SendChatMessage,
	rootLogger *slog.Logger,
	sentryMiddleware func(http.HandlerFunc) http.HandlerFunc,
	sessionMiddleware func(http.HandlerFunc) http.HandlerFunc,
) http.HandlerFunc {
	middleware := buildMiddleware(
		"chat", rootLogger, sentryMiddleware, sessionMiddleware,
		buildRateLimitMiddlewares(chatIPRateLimit, chatSessionRateLimit, jsonRateLimitExceeded),
	)

	handler := func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		sess, ok := sessionOrFail(w, r)
		if !ok {
			return
		}

		defer r.Body.Close()
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxChatMessageBytes))
		if err != nil {
			writeJSONError(w, r, http.StatusBadRequest, "Failed to read request body")
			return
		}
		var request chatMessageRequest
		if err := json.Unmarshal(body, &request); err != nil {
			writeJSONError(w, r, http.StatusBadRequest, "Failed to parse request body")
			return
		}

		appended, err := sendChatMessage(ctx, sess, request.Message, nil)
		if err != nil {
			statusCode, message := chatErrorStatus(err)
			if statusCode == http.StatusInternalServerError {
				reporting.Report(ctx, fmt.Errorf("failed to send chat message: %w", err))
			}
			writeJSONError(w, r, statusCode, message)
			return
		}

		logging.FromContext(ctx).InfoContext(ctx, "Sent chat message", slog.Int("appended", len(appended)))

		writeJSON(w, r, http.StatusOK, "chat reply", chatLogResponse{
			Turns:    turnViews(ctx, appended),
			Awaiting: sess.Chat.Awaiting(),
		})
	}

	return middleware(handler)
}
