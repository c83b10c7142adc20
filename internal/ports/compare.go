package ports

import (
	"log/slog"
	"net/http"

	"github.com/Amund211/riftrewind/internal/app"
	"github.com/Amund211/riftrewind/internal/domain"
	"github.com/Amund211/riftrewind/internal/logging"
	"github.com/Amund211/riftrewind/internal/reporting"
	"github.com/Amund211/riftrewind/internal/views"
)

func comparedPlayerView(player domain.ComparedPlayer) views.ComparedPlayerView {
	return views.ComparedPlayerView{
		Name:    player.Name,
		Region:  player.Region,
		Summary: domain.Recap{Payload: player.Recap}.Summary(),
	}
}

func MakeGetComparisonHandler(
	getComparison app.GetComparison,
	rootLogger *slog.Logger,
	sentryMiddleware func(http.HandlerFunc) http.HandlerFunc,
	sessionMiddleware func(http.HandlerFunc) http.HandlerFunc,
) http.HandlerFunc {
	middleware := buildMiddleware(
		"compare", rootLogger, sentryMiddleware, sessionMiddleware,
		buildRateLimitMiddlewares(pageIPRateLimit, pageSessionRateLimit, pageRateLimitExceeded),
	)

	handler := func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		values := r.URL.Query()
		query := domain.ComparisonQuery{
			Player1: domain.PlayerID{
				Name:   values.Get("name1"),
				Tag:    values.Get("tag1"),
				Region: values.Get("region1"),
			},
			Player2: domain.PlayerID{
				Name:   values.Get("name2"),
				Tag:    values.Get("tag2"),
				Region: values.Get("region2"),
			},
			TestMode: values.Get("test") == "true",
		}
		if err := query.Validate(); err != nil {
			redirect(w, r, "/", err.Error())
			return
		}

		ctx = logging.AddMetaToContext(ctx,
			slog.String("player1", query.Player1.RiotID()),
			slog.String("player2", query.Player2.RiotID()),
			slog.Bool("testMode", query.TestMode),
		)
		ctx = reporting.AddExtrasToContext(ctx, map[string]string{
			"player1": query.Player1.RiotID(),
			"region1": query.Player1.Region,
			"player2": query.Player2.RiotID(),
			"region2": query.Player2.Region,
		})
		r = r.WithContext(ctx)

		sess, ok := sessionOrFail(w, r)
		if !ok {
			return
		}

		comparison, err := getComparison(ctx, sess, query)
		if err != nil {
			// NOTE: GetComparison implementations handle their own error reporting
			writeHTML(w, r, http.StatusBadGateway, "failed to get comparison", views.ErrorPage(err.Error()))
			return
		}

		writeHTML(w, r, http.StatusOK, "comparison", views.ComparePage(views.CompareView{
			Player1:    comparedPlayerView(comparison.Player1),
			Player2:    comparedPlayerView(comparison.Player2),
			Comparison: comparison.ComparisonText(),
		}))
	}

	return middleware(handler)
}
