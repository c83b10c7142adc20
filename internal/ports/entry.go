package ports

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/Amund211/riftrewind/internal/domain"
	"github.com/Amund211/riftrewind/internal/views"
)

const riotIDFormatError = "Riot ID must be in the format Name#TAG"

func entryFormFromRequest(r *http.Request) views.EntryForm {
	form := views.EntryForm{
		Mode:     views.ModeSolo,
		RiotID:   strings.TrimSpace(r.PostFormValue("riotId")),
		Region:   strings.TrimSpace(r.PostFormValue("region")),
		RiotID2:  strings.TrimSpace(r.PostFormValue("riotId2")),
		Region2:  strings.TrimSpace(r.PostFormValue("region2")),
		TestMode: r.PostFormValue("test") == "true",
	}
	if r.PostFormValue("mode") == string(views.ModeDuo) {
		form.Mode = views.ModeDuo
	}
	return form
}

func parseEntryPlayer(riotID, region string) (domain.PlayerID, string) {
	name, tag, err := domain.ParseRiotID(riotID)
	if err != nil {
		return domain.PlayerID{}, riotIDFormatError
	}
	if region == "" {
		return domain.PlayerID{}, "Please select a region"
	}
	return domain.PlayerID{Name: name, Tag: tag, Region: region}, ""
}

// validateEntryForm returns the location of the requested page, or a message
// explaining why the form cannot be submitted
func validateEntryForm(form views.EntryForm) (string, string) {
	player1, problem := parseEntryPlayer(form.RiotID, form.Region)
	if form.Mode == views.ModeSolo {
		if problem != "" {
			return "", problem
		}
		return recapLocation(player1), ""
	}

	if problem != "" {
		return "", "Player 1: " + problem
	}
	player2, problem := parseEntryPlayer(form.RiotID2, form.Region2)
	if problem != "" {
		return "", "Player 2: " + problem
	}

	return compareLocation(domain.ComparisonQuery{
		Player1:  player1,
		Player2:  player2,
		TestMode: form.TestMode,
	}), ""
}

func recapLocation(player domain.PlayerID) string {
	values := url.Values{}
	values.Set("name", player.Name)
	values.Set("tag", player.Tag)
	values.Set("region", player.Region)
	return "/recap?" + values.Encode()
}

func compareLocation(query domain.ComparisonQuery) string {
	values := url.Values{}
	values.Set("name1", query.Player1.Name)
	values.Set("tag1", query.Player1.Tag)
	values.Set("region1", query.Player1.Region)
	values.Set("name2", query.Player2.Name)
	values.Set("tag2", query.Player2.Tag)
	values.Set("region2", query.Player2.Region)
	if query.TestMode {
		values.Set("test", "true")
	}
	return "/compare?" + values.Encode()
}

func MakeGetIndexHandler(
	rootLogger *slog.Logger,
	sentryMiddleware func(http.HandlerFunc) http.HandlerFunc,
	sessionMiddleware func(http.HandlerFunc) http.HandlerFunc,
) http.HandlerFunc {
	middleware := buildMiddleware("index", rootLogger, sentryMiddleware, sessionMiddleware)

	handler := func(w http.ResponseWriter, r *http.Request) {
		writeHTML(w, r, http.StatusOK, "entry form", views.IndexPage(views.EntryForm{}))
	}

	return middleware(handler)
}

func MakeSubmitEntryHandler(
	rootLogger *slog.Logger,
	sentryMiddleware func(http.HandlerFunc) http.HandlerFunc,
	sessionMiddleware func(http.HandlerFunc) http.HandlerFunc,
) http.HandlerFunc {
	middleware := buildMiddleware("entry", rootLogger, sentryMiddleware, sessionMiddleware)

	handler := func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			form := views.EntryForm{Error: "Invalid form submission"}
			writeHTML(w, r, http.StatusBadRequest, fmt.Sprintf("failed to parse form: %s", err.Error()), views.IndexPage(form))
			return
		}

		form := entryFormFromRequest(r)

		location, problem := validateEntryForm(form)
		if problem != "" {
			form.Error = problem
			writeHTML(w, r, http.StatusBadRequest, problem, views.IndexPage(form))
			return
		}

		redirect(w, r, location, "valid entry form")
	}

	return middleware(handler)
}
