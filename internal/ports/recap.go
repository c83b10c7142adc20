package ports

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/Amund211/riftrewind/internal/app"
	"github.com/Amund211/riftrewind/internal/domain"
	"github.com/Amund211/riftrewind/internal/logging"
	"github.com/Amund211/riftrewind/internal/reporting"
	"github.com/Amund211/riftrewind/internal/views"
)

const iconLookupTimeout = 2 * time.Second

func MakeGetRecapHandler(
	getRecap app.GetRecap,
	getSummonerIcon app.GetSummonerIcon,
	rootLogger *slog.Logger,
	sentryMiddleware func(http.HandlerFunc) http.HandlerFunc,
	sessionMiddleware func(http.HandlerFunc) http.HandlerFunc,
) http.HandlerFunc {
	middleware := buildMiddleware(
		"recap", rootLogger, sentryMiddleware, sessionMiddleware,
		buildRateLimitMiddlewares(pageIPRateLimit, pageSessionRateLimit, pageRateLimitExceeded),
	)

	handler := func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		query := r.URL.Query()
		player, err := domain.NewPlayerID(query.Get("name"), query.Get("tag"), query.Get("region"))
		if err != nil {
			redirect(w, r, "/", err.Error())
			return
		}

		ctx = logging.AddMetaToContext(ctx,
			slog.String("name", player.Name),
			slog.String("tag", player.Tag),
			slog.String("region", player.Region),
		)
		ctx = reporting.AddExtrasToContext(ctx, map[string]string{
			"riotId": player.RiotID(),
			"region": player.Region,
		})
		r = r.WithContext(ctx)

		sess, ok := sessionOrFail(w, r)
		if !ok {
			return
		}

		recap, err := getRecap(ctx, sess, player)
		if err != nil {
			// NOTE: GetRecap implementations handle their own error reporting
			writeHTML(w, r, http.StatusBadGateway, "failed to get recap", views.ErrorPage(err.Error()))
			return
		}

		iconCtx, cancel := context.WithTimeout(ctx, iconLookupTimeout)
		defer cancel()
		// Best effort, the page is shown without an icon on failure
		iconURL, _ := getSummonerIcon(iconCtx, player)

		writeHTML(w, r, http.StatusOK, "recap", views.RecapPage(views.RecapView{
			Player:   player,
			Summary:  recap.Summary(),
			IconURL:  iconURL,
			Chat:     turnViews(ctx, sess.Chat.Turns()),
			Awaiting: sess.Chat.Awaiting(),
		}))
	}

	return middleware(handler)
}
