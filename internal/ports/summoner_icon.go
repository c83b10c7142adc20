package ports

import (
	"log/slog"
	"net/http"

	"github.com/Amund211/riftrewind/internal/app"
	"github.com/Amund211/riftrewind/internal/domain"
)

type summonerIconResponse struct {
	IconURL string `json:"iconUrl"`
}

func MakeGetSummonerIconHandler(
	getSummonerIcon app.GetSummonerIcon,
	rootLogger *slog.Logger,
	sentryMiddleware func(http.HandlerFunc) http.HandlerFunc,
	sessionMiddleware func(http.HandlerFunc) http.HandlerFunc,
) http.HandlerFunc {
	middleware := buildMiddleware(
		"summonericon", rootLogger, sentryMiddleware, sessionMiddleware,
		buildRateLimitMiddlewares(pageIPRateLimit, pageSessionRateLimit, jsonRateLimitExceeded),
	)

	handler := func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		player, err := domain.NewPlayerID(query.Get("name"), query.Get("tag"), query.Get("region"))
		if err != nil {
			writeJSONError(w, r, http.StatusBadRequest, err.Error())
			return
		}

		iconURL, err := getSummonerIcon(r.Context(), player)
		if err != nil {
			// NOTE: GetSummonerIcon implementations handle their own logging
			writeJSONError(w, r, http.StatusBadGateway, "Failed to get summoner icon")
			return
		}

		writeJSON(w, r, http.StatusOK, "summoner icon", summonerIconResponse{IconURL: iconURL})
	}

	return middleware(handler)
}
