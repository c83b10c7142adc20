package app

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/Amund211/riftrewind/internal/domain"
	"github.com/Amund211/riftrewind/internal/session"
	"github.com/stretchr/testify/require"
)

type mockedSender struct {
	t     *testing.T
	stats []json.RawMessage
}

func (m *mockedSender) SendChat(ctx context.Context, stats json.RawMessage, conversation []domain.ChatTurn) ([]byte, error) {
	m.t.Helper()
	m.stats = append(m.stats, stats)
	return []byte(`{"message":"GG"}`), nil
}

func newRegistry(t *testing.T, sender *mockedSender) *session.Registry {
	t.Helper()
	registry, stop := session.NewRegistry(time.Hour, sender)
	t.Cleanup(stop)
	return registry
}

func newSession(t *testing.T) *session.Session {
	t.Helper()
	sess, _ := newRegistry(t, &mockedSender{t: t}).GetOrCreate("")
	return sess
}

func newPlayer(t *testing.T, name, tag, region string) domain.PlayerID {
	t.Helper()
	player, err := domain.NewPlayerID(name, tag, region)
	require.NoError(t, err)
	return player
}

func newRecap(t *testing.T, player domain.PlayerID) domain.Recap {
	t.Helper()
	recap, err := domain.NewRecap(player, json.RawMessage(`{"unique_id":"x","wrapped_data":{"wrapped":{"archetype":"Roamer"}}}`))
	require.NoError(t, err)
	return recap
}

func nowForTests() time.Time {
	return time.Date(2025, time.November, 3, 18, 30, 0, 0, time.UTC)
}
