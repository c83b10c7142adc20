package backendclient

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Amund211/riftrewind/internal/domain"
)

// mockedBackend is a deterministic stand-in for the recap backend used in development
type mockedBackend struct{}

func NewMockedBackend() *mockedBackend {
	return &mockedBackend{}
}

func mockedWrappedData(player domain.PlayerID) json.RawMessage {
	games := 40 + len(player.Name)*7
	return json.RawMessage(fmt.Sprintf(`{
		"wrapped": {
			"tagline": "%[1]s's year on the Rift",
			"archetype": "The Steady Climber",
			"summary": "%[1]s played %[2]d games and never stopped queueing."
		},
		"stats": {"games": %[2]d, "winrate": 52.5, "hours": %[3]d, "peakTime": "21:00", "bestMonth": "March"},
		"champions": {
			"main": {"name": "Ahri"},
			"top3": [{"name": "Ahri", "games": 20, "wr": 55}, {"name": "Orianna", "games": 12, "wr": 50}, {"name": "Sylas", "games": 8, "wr": 62.5}]
		},
		"highlights": [{"title": "Pentakill in April"}, {"title": "Ten game win streak"}],
		"funFacts": ["You warded more than your support"],
		"closing": {"message": "See you next season"}
	}`, jsonEscape(player.Name), games, games/2))
}

func jsonEscape(s string) string {
	encoded, _ := json.Marshal(s)
	return strings.Trim(string(encoded), `"`)
}

func (m *mockedBackend) GetMatchData(ctx context.Context, player domain.PlayerID) (domain.Recap, error) {
	payload := json.RawMessage(fmt.Sprintf(`{"unique_id": %q, "wrapped_data": %s}`, player.CacheKey(), mockedWrappedData(player)))
	return domain.NewRecap(player, payload)
}

func (m *mockedBackend) GetComparison(ctx context.Context, query domain.ComparisonQuery) (domain.Comparison, error) {
	compared := func(player domain.PlayerID) domain.ComparedPlayer {
		return domain.ComparedPlayer{
			Name:   player.RiotID(),
			Region: player.Region,
			Recap:  json.RawMessage(fmt.Sprintf(`{"wrapped": {"unique_id": %q, "wrapped_data": %s}}`, player.CacheKey(), mockedWrappedData(player))),
		}
	}

	summary := fmt.Sprintf("%s and %s are evenly matched", query.Player1.RiotID(), query.Player2.RiotID())
	if query.TestMode {
		summary += " (test mode)"
	}
	comparisonText, _ := json.Marshal(map[string]string{"overall_summary": summary})

	return domain.Comparison{
		Tag:        query.CacheTag(),
		Player1:    compared(query.Player1),
		Player2:    compared(query.Player2),
		Comparison: comparisonText,
	}, nil
}

func (m *mockedBackend) SendChat(ctx context.Context, stats json.RawMessage, conversation []domain.ChatTurn) ([]byte, error) {
	last := ""
	if len(conversation) > 0 {
		last = conversation[len(conversation)-1].Text
	}
	return json.Marshal(map[string]any{
		"conversation": []map[string]any{
			{"role": "user", "content": []map[string]string{{"text": last}}},
			{"role": "assistant", "content": []map[string]string{{"text": fmt.Sprintf("You asked: **%s**", last)}}},
		},
	})
}

func (m *mockedBackend) GetSummonerIcon(ctx context.Context, player domain.PlayerID) (string, error) {
	return "https://ddragon.leagueoflegends.com/cdn/14.1.1/img/profileicon/29.png", nil
}
