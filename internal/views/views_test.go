package views_test

import (
	"bytes"
	"testing"

	"github.com/Amund211/riftrewind/internal/domain"
	"github.com/Amund211/riftrewind/internal/views"
	"github.com/a-h/templ"
	"github.com/stretchr/testify/require"
)

func renderString(t *testing.T, component templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, component.Render(t.Context(), &buf))
	return buf.String()
}

func TestIndexPage(t *testing.T) {
	t.Parallel()

	t.Run("defaults to solo", func(t *testing.T) {
		t.Parallel()

		html := renderString(t, views.IndexPage(views.EntryForm{}))
		require.Contains(t, html, `value="solo" checked`)
		require.NotContains(t, html, "validation-error")
	})

	t.Run("echoes input and error", func(t *testing.T) {
		t.Parallel()

		html := renderString(t, views.IndexPage(views.EntryForm{
			Mode:    views.ModeDuo,
			RiotID:  `Caps<script>`,
			Region:  "EUW1",
			RiotID2: "Faker#KR1",
			Error:   "Riot ID must be in the format Name#TAG",
		}))
		require.Contains(t, html, `value="duo" checked`)
		require.Contains(t, html, `value="Caps&lt;script&gt;"`)
		require.Contains(t, html, `value="Faker#KR1"`)
		require.Contains(t, html, `<option value="EUW1" selected>`)
		require.Contains(t, html, "Riot ID must be in the format Name#TAG")
	})
}

func TestErrorPage(t *testing.T) {
	t.Parallel()

	html := renderString(t, views.ErrorPage("API Error 404: <no such player>"))
	require.Contains(t, html, "API Error 404: &lt;no such player&gt;")
	require.Contains(t, html, `<a class="go-back" href="/">Go back</a>`)
}

func TestRecapPage(t *testing.T) {
	t.Parallel()

	html := renderString(t, views.RecapPage(views.RecapView{
		Player: domain.PlayerID{Name: "Caps", Tag: "EUW", Region: "euw1"},
		Summary: domain.RecapSummary{
			Archetype:    "The Roamer",
			Games:        120,
			Winrate:      55.5,
			MainChampion: "Sylas",
			Highlights:   []string{"Pentakill"},
		},
		IconURL: "https://cdn.example.com/icon.png",
		Chat: []views.TurnView{
			{Role: "user", Text: "hi", HTML: "hi"},
			{Role: "assistant", Text: "**GG**", HTML: "<p><strong>GG</strong></p>"},
		},
	}))

	require.Contains(t, html, "<h1>Caps#EUW</h1>")
	require.Contains(t, html, "EUW1")
	require.Contains(t, html, "The Roamer")
	require.Contains(t, html, "55.5%")
	require.Contains(t, html, "Sylas")
	require.Contains(t, html, "<li>Pentakill</li>")
	require.Contains(t, html, `src="https://cdn.example.com/icon.png"`)
	require.Contains(t, html, `<div class="chat-turn chat-turn-assistant"><p><strong>GG</strong></p></div>`)
}

func TestRecapPageEdgeCases(t *testing.T) {
	t.Parallel()

	t.Run("unsafe icon urls are not rendered", func(t *testing.T) {
		t.Parallel()

		html := renderString(t, views.RecapPage(views.RecapView{
			Player:  domain.PlayerID{Name: "Caps", Tag: "EUW", Region: "euw1"},
			IconURL: "javascript:alert(1)",
		}))
		require.NotContains(t, html, "javascript:")
	})

	t.Run("missing fields are left out", func(t *testing.T) {
		t.Parallel()

		html := renderString(t, views.RecapPage(views.RecapView{
			Player: domain.PlayerID{Name: "Caps", Tag: "EUW", Region: "euw1"},
		}))
		require.NotContains(t, html, "summoner-icon")
		require.NotContains(t, html, "Games")
		require.NotContains(t, html, "Highlights")
		require.Contains(t, html, `<dl class="stats"></dl>`)
	})

	t.Run("chat widget reflects a pending reply", func(t *testing.T) {
		t.Parallel()

		html := renderString(t, views.RecapPage(views.RecapView{
			Player:   domain.PlayerID{Name: "Caps", Tag: "EUW", Region: "euw1"},
			Awaiting: true,
		}))
		require.Contains(t, html, `<form id="chat-form" data-awaiting="true">`)
		require.Contains(t, html, `action="/session/reset"`)
	})
}

func TestChatTurns(t *testing.T) {
	t.Parallel()

	html := renderString(t, views.ChatTurns([]views.TurnView{
		{Role: "user", Text: "<b>hi</b>", HTML: "&lt;b&gt;hi&lt;/b&gt;"},
		{Role: "assistant", Text: "GG", HTML: "<p>GG</p>"},
	}))
	require.Equal(t, `<div class="chat-turn chat-turn-user">&lt;b&gt;hi&lt;/b&gt;</div><div class="chat-turn chat-turn-assistant"><p>GG</p></div>`, html)
}

func TestComparePage(t *testing.T) {
	t.Parallel()

	html := renderString(t, views.ComparePage(views.CompareView{
		Player1:    views.ComparedPlayerView{Name: "Caps#EUW", Region: "EUW1"},
		Player2:    views.ComparedPlayerView{Name: "Faker#KR1", Region: "KR"},
		Comparison: "Faker edges it",
	}))

	require.Contains(t, html, "<title>Caps#EUW vs Faker#KR1 | Rift Rewind</title>")
	require.Contains(t, html, "Faker edges it")
}

func TestNotFoundPage(t *testing.T) {
	t.Parallel()

	require.Contains(t, renderString(t, views.NotFoundPage()), "Page not found")
}
