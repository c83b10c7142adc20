package session_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Amund211/riftrewind/internal/domain"
	"github.com/Amund211/riftrewind/internal/session"
	"github.com/stretchr/testify/require"
)

type mockedSender struct{}

func (m mockedSender) SendChat(ctx context.Context, stats json.RawMessage, conversation []domain.ChatTurn) ([]byte, error) {
	return []byte(`{"text":"ok"}`), nil
}

func newRegistry(t *testing.T, ttl time.Duration) *session.Registry {
	t.Helper()
	registry, stop := session.NewRegistry(ttl, mockedSender{})
	t.Cleanup(stop)
	return registry
}

var recap = domain.Recap{
	Player:  domain.PlayerID{Name: "Caps", Tag: "EUW", Region: "europe"},
	Payload: json.RawMessage(`{"wrapped_data":{}}`),
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	t.Run("unknown id creates a new session", func(t *testing.T) {
		t.Parallel()

		registry := newRegistry(t, time.Hour)

		first, created := registry.GetOrCreate("")
		require.True(t, created)
		require.NotEmpty(t, first.ID)

		again, created := registry.GetOrCreate(first.ID)
		require.False(t, created)
		require.Same(t, first, again)

		other, created := registry.GetOrCreate("forged-id")
		require.True(t, created)
		require.NotEqual(t, "forged-id", other.ID)
		require.Equal(t, 2, registry.Len())
	})

	t.Run("sessions are isolated", func(t *testing.T) {
		t.Parallel()

		registry := newRegistry(t, time.Hour)
		a, _ := registry.GetOrCreate("")
		b, _ := registry.GetOrCreate("")

		a.Recaps.Set("Caps", "EUW", "europe", recap)
		a.SetCurrent(recap)

		_, ok := b.Recaps.Get("Caps", "EUW", "europe")
		require.False(t, ok)
		_, ok = b.Current()
		require.False(t, ok)
	})

	t.Run("reset clears state and keeps the id", func(t *testing.T) {
		t.Parallel()

		registry := newRegistry(t, time.Hour)
		s, _ := registry.GetOrCreate("")
		s.Recaps.Set("Caps", "EUW", "europe", recap)
		s.SetCurrent(recap)
		_, err := s.Chat.Send(t.Context(), "hi", recap.Payload, nil)
		require.NoError(t, err)

		require.True(t, registry.Reset(s.ID))

		again, created := registry.GetOrCreate(s.ID)
		require.False(t, created)
		_, ok := again.Recaps.Get("Caps", "EUW", "europe")
		require.False(t, ok)
		_, ok = again.Current()
		require.False(t, ok)
		require.Empty(t, again.Chat.Turns())

		require.False(t, registry.Reset("unknown"))
	})

	t.Run("idle sessions expire", func(t *testing.T) {
		t.Parallel()

		registry := newRegistry(t, 50*time.Millisecond)
		s, _ := registry.GetOrCreate("")

		require.Eventually(t, func() bool {
			return registry.Len() == 0
		}, 2*time.Second, 20*time.Millisecond)

		_, created := registry.GetOrCreate(s.ID)
		require.True(t, created)
	})
}

func TestMiddleware(t *testing.T) {
	t.Parallel()

	registry := newRegistry(t, time.Hour)
	middleware := session.NewMiddleware(registry, true)

	var seen *session.Session
	handler := middleware(func(w http.ResponseWriter, r *http.Request) {
		s, ok := session.FromContext(r.Context())
		require.True(t, ok)
		seen = s
	})

	w := httptest.NewRecorder()
	handler(w, httptest.NewRequest(http.MethodGet, "/", nil))

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	cookie := cookies[0]
	require.Equal(t, session.CookieName, cookie.Name)
	require.Equal(t, seen.ID, cookie.Value)
	require.True(t, cookie.HttpOnly)
	require.True(t, cookie.Secure)
	require.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	first := seen

	// Returning visitor keeps the session and gets no new cookie
	req := httptest.NewRequest(http.MethodGet, "/recap", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: first.ID})
	w = httptest.NewRecorder()
	handler(w, req)

	require.Empty(t, w.Result().Cookies())
	require.Same(t, first, seen)
}

func TestFromContextWithoutSession(t *testing.T) {
	t.Parallel()

	_, ok := session.FromContext(context.Background())
	require.False(t, ok)
}
