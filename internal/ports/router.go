package ports

import (
	"log/slog"
	"net/http"

	"github.com/Amund211/riftrewind/internal/app"
	"github.com/gorilla/mux"
)

// Handlers are the application operations served by the router
type Handlers struct {
	GetRecap        app.GetRecap
	GetComparison   app.GetComparison
	SendChatMessage app.SendChatMessage
	GetSummonerIcon app.GetSummonerIcon
	ResetSession    app.ResetSession
}

func NewRouter(
	handlers Handlers,
	rootLogger *slog.Logger,
	sentryMiddleware func(http.HandlerFunc) http.HandlerFunc,
	sessionMiddleware func(http.HandlerFunc) http.HandlerFunc,
) *mux.Router {
	router := mux.NewRouter()

	router.Methods(http.MethodGet).Path("/").HandlerFunc(
		MakeGetIndexHandler(rootLogger, sentryMiddleware, sessionMiddleware),
	)
	router.Methods(http.MethodPost).Path("/").HandlerFunc(
		MakeSubmitEntryHandler(rootLogger, sentryMiddleware, sessionMiddleware),
	)
	router.Methods(http.MethodGet).Path("/recap").HandlerFunc(
		MakeGetRecapHandler(handlers.GetRecap, handlers.GetSummonerIcon, rootLogger, sentryMiddleware, sessionMiddleware),
	)
	router.Methods(http.MethodGet).Path("/compare").HandlerFunc(
		MakeGetComparisonHandler(handlers.GetComparison, rootLogger, sentryMiddleware, sessionMiddleware),
	)
	router.Methods(http.MethodGet).Path("/chat").HandlerFunc(
		MakeGetChatHandler(rootLogger, sentryMiddleware, sessionMiddleware),
	)
	router.Methods(http.MethodPost).Path("/chat").HandlerFunc(
		MakeSendChatHandler(handlers.SendChatMessage, rootLogger, sentryMiddleware, sessionMiddleware),
	)
	router.Methods(http.MethodGet).Path("/chat/ws").HandlerFunc(
		MakeChatWebsocketHandler(handlers.SendChatMessage, rootLogger, sentryMiddleware, sessionMiddleware),
	)
	router.Methods(http.MethodPost).Path("/session/reset").HandlerFunc(
		MakeResetSessionHandler(handlers.ResetSession, rootLogger, sentryMiddleware, sessionMiddleware),
	)
	router.Methods(http.MethodGet).Path("/api/summoner-icon").HandlerFunc(
		MakeGetSummonerIconHandler(handlers.GetSummonerIcon, rootLogger, sentryMiddleware, sessionMiddleware),
	)

	router.NotFoundHandler = MakeNotFoundHandler(rootLogger, sentryMiddleware, sessionMiddleware)

	return router
}
