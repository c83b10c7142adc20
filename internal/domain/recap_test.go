package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/Amund211/riftrewind/internal/domain"
	"github.com/stretchr/testify/require"
)

var player = domain.PlayerID{Name: "Faker", Tag: "KR1", Region: "KR"}

func TestNewRecap(t *testing.T) {
	t.Parallel()

	t.Run("wrapped_data", func(t *testing.T) {
		t.Parallel()

		payload := json.RawMessage(`{"unique_id":"faker_kr1_kr","wrapped_data":{"stats":{"games":10}}}`)
		recap, err := domain.NewRecap(player, payload)
		require.NoError(t, err)
		require.Equal(t, player, recap.Player)
		require.JSONEq(t, string(payload), string(recap.Payload))
	})

	t.Run("wrapped", func(t *testing.T) {
		t.Parallel()

		_, err := domain.NewRecap(player, json.RawMessage(`{"wrapped":{"tagline":"x"}}`))
		require.NoError(t, err)
	})

	for _, payload := range []string{
		`{}`,
		`{"wrapped_data":null}`,
		`"a string"`,
		`[]`,
		`not json`,
	} {
		t.Run(payload, func(t *testing.T) {
			t.Parallel()

			_, err := domain.NewRecap(player, json.RawMessage(payload))
			require.ErrorIs(t, err, domain.ErrMalformedResponse)
		})
	}
}

func TestRecapSummary(t *testing.T) {
	t.Parallel()

	t.Run("backend recap", func(t *testing.T) {
		t.Parallel()

		recap := domain.Recap{Player: player, Payload: json.RawMessage(`{
			"unique_id": "faker_kr1_kr",
			"wrapped_data": {
				"wrapped": {"tagline": "The GOAT", "summary": "Another year", "archetype": "Playmaker"},
				"stats": {"games": 412, "winrate": 61.5, "hours": 230.5, "peakTime": "22:00", "bestMonth": "March"},
				"highlights": [{"title": "Pentakill"}, {"title": "Comeback"}],
				"champions": {
					"main": {"name": "Azir", "games": 80},
					"top3": [{"name": "Azir", "games": 80, "wr": 60}, {"name": "Ahri", "games": 40, "wr": 55}]
				},
				"funFacts": ["Never tilts"],
				"closing": {"message": "See you next season"}
			}
		}`)}

		require.Equal(t, domain.RecapSummary{
			Tagline:      "The GOAT",
			Archetype:    "Playmaker",
			Summary:      "Another year",
			Games:        412,
			Winrate:      61.5,
			Hours:        230.5,
			PeakTime:     "22:00",
			BestMonth:    "March",
			MainChampion: "Azir",
			TopChampions: []domain.ChampionSummary{
				{Name: "Azir", Games: 80, Winrate: 60},
				{Name: "Ahri", Games: 40, Winrate: 55},
			},
			Highlights: []string{"Pentakill", "Comeback"},
			FunFacts:   []string{"Never tilts"},
			Closing:    "See you next season",
		}, recap.Summary())
	})

	t.Run("stored recap nests wrapped_data", func(t *testing.T) {
		t.Parallel()

		recap := domain.Recap{Player: player, Payload: json.RawMessage(`{
			"wrapped_data": {"unique_id": "x", "wrapped_data": {"stats": {"games": 3}}}
		}`)}
		require.Equal(t, 3, recap.Summary().Games)
	})

	t.Run("seeded from comparison", func(t *testing.T) {
		t.Parallel()

		recap := domain.Recap{Player: player, Payload: json.RawMessage(`{
			"wrapped": {"tagline": "Duo king"},
			"stats": {"games": 7},
			"wrapped_info": {}
		}`)}
		summary := recap.Summary()
		require.Equal(t, "Duo king", summary.Tagline)
		require.Equal(t, 7, summary.Games)
	})

	t.Run("compared player recap", func(t *testing.T) {
		t.Parallel()

		recap := domain.Recap{Player: player, Payload: json.RawMessage(`{
			"wrapped": {
				"unique_id": "faker_kr1_asia",
				"wrapped_data": {"wrapped": {"archetype": "Legend"}, "stats": {"games": 12}}
			}
		}`)}
		summary := recap.Summary()
		require.Equal(t, "Legend", summary.Archetype)
		require.Equal(t, 12, summary.Games)
	})

	t.Run("unexpected shapes give zero values", func(t *testing.T) {
		t.Parallel()

		for _, payload := range []string{`{}`, `[]`, `{"wrapped_data": 12}`, `garbage`} {
			recap := domain.Recap{Player: player, Payload: json.RawMessage(payload)}
			require.NotPanics(t, func() {
				recap.Summary()
			})
		}
		recap := domain.Recap{Player: player, Payload: json.RawMessage(`{"wrapped_data": {"stats": "nope"}}`)}
		require.Equal(t, domain.RecapSummary{}, recap.Summary())
	})
}
