package ports_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Amund211/riftrewind/internal/chat"
	"github.com/Amund211/riftrewind/internal/domain"
	"github.com/Amund211/riftrewind/internal/ports"
	"github.com/Amund211/riftrewind/internal/session"
	"github.com/stretchr/testify/require"
)

type nopSender struct{}

func (nopSender) SendChat(ctx context.Context, stats json.RawMessage, conversation []domain.ChatTurn) ([]byte, error) {
	return []byte(`{"message":"GG"}`), nil
}

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func noopMiddleware(h http.HandlerFunc) http.HandlerFunc {
	return h
}

func newTestRecap(t *testing.T, player domain.PlayerID) domain.Recap {
	t.Helper()
	recap, err := domain.NewRecap(player, json.RawMessage(`{"wrapped_data":{"wrapped":{"archetype":"The Roamer"},"stats":{"games":120,"winrate":55.5}}}`))
	require.NoError(t, err)
	return recap
}

func failingHandlers(t *testing.T) ports.Handlers {
	return ports.Handlers{
		GetRecap: func(ctx context.Context, sess *session.Session, player domain.PlayerID) (domain.Recap, error) {
			t.Fatal("GetRecap should not be called")
			return domain.Recap{}, nil
		},
		GetComparison: func(ctx context.Context, sess *session.Session, query domain.ComparisonQuery) (domain.Comparison, error) {
			t.Fatal("GetComparison should not be called")
			return domain.Comparison{}, nil
		},
		SendChatMessage: func(ctx context.Context, sess *session.Session, text string, observe chat.TurnObserver) ([]domain.ChatTurn, error) {
			t.Fatal("SendChatMessage should not be called")
			return nil, nil
		},
		GetSummonerIcon: func(ctx context.Context, player domain.PlayerID) (string, error) {
			return "", domain.ErrTemporarilyUnavailable
		},
		ResetSession: func(ctx context.Context, sess *session.Session) {
			t.Fatal("ResetSession should not be called")
		},
	}
}

func newRouter(t *testing.T, handlers ports.Handlers) http.Handler {
	t.Helper()
	registry, stop := session.NewRegistry(time.Hour, nopSender{})
	t.Cleanup(stop)
	return ports.NewRouter(handlers, testLogger, noopMiddleware, session.NewMiddleware(registry, false))
}

func serve(t *testing.T, handler http.Handler, req *http.Request) *http.Response {
	t.Helper()
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w.Result()
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func postForm(values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestEntryForm(t *testing.T) {
	t.Parallel()

	router := newRouter(t, failingHandlers(t))

	t.Run("GET renders the form and issues a session", func(t *testing.T) {
		t.Parallel()

		resp := serve(t, router, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Contains(t, readBody(t, resp), `<form method="post" action="/">`)

		cookies := resp.Cookies()
		require.Len(t, cookies, 1)
		require.Equal(t, session.CookieName, cookies[0].Name)
		require.True(t, cookies[0].HttpOnly)
	})

	cases := []struct {
		name             string
		values           url.Values
		expectedStatus   int
		expectedLocation string
		expectedError    string
	}{
		{
			name:             "solo",
			values:           url.Values{"mode": {"solo"}, "riotId": {" Caps#EUW "}, "region": {"EUW1"}},
			expectedStatus:   http.StatusSeeOther,
			expectedLocation: "/recap?name=Caps&region=EUW1&tag=EUW",
		},
		{
			name:             "solo with special characters",
			values:           url.Values{"riotId": {"Hide on bush#KR 1"}, "region": {"KR"}},
			expectedStatus:   http.StatusSeeOther,
			expectedLocation: "/recap?name=Hide+on+bush&region=KR&tag=KR+1",
		},
		{
			name:           "solo without separator",
			values:         url.Values{"mode": {"solo"}, "riotId": {"Caps"}, "region": {"EUW1"}},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Riot ID must be in the format Name#TAG",
		},
		{
			name:           "solo with empty tag",
			values:         url.Values{"riotId": {"Caps#"}, "region": {"EUW1"}},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Riot ID must be in the format Name#TAG",
		},
		{
			name:           "solo without region",
			values:         url.Values{"riotId": {"Caps#EUW"}},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Please select a region",
		},
		{
			name: "duo",
			values: url.Values{
				"mode":    {"duo"},
				"riotId":  {"Caps#EUW"},
				"region":  {"EUW1"},
				"riotId2": {"Faker#KR1"},
				"region2": {"KR"},
			},
			expectedStatus:   http.StatusSeeOther,
			expectedLocation: "/compare?name1=Caps&name2=Faker&region1=EUW1&region2=KR&tag1=EUW&tag2=KR1",
		},
		{
			name: "duo in test mode",
			values: url.Values{
				"mode":    {"duo"},
				"riotId":  {"Caps#EUW"},
				"region":  {"EUW1"},
				"riotId2": {"Faker#KR1"},
				"region2": {"KR"},
				"test":    {"true"},
			},
			expectedStatus:   http.StatusSeeOther,
			expectedLocation: "/compare?name1=Caps&name2=Faker&region1=EUW1&region2=KR&tag1=EUW&tag2=KR1&test=true",
		},
		{
			name: "duo without separator in the first id",
			values: url.Values{
				"mode":    {"duo"},
				"riotId":  {"Caps"},
				"region":  {"EUW1"},
				"riotId2": {"Faker#KR1"},
				"region2": {"KR"},
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Player 1: Riot ID must be in the format Name#TAG",
		},
		{
			name: "duo without separator in the second id",
			values: url.Values{
				"mode":    {"duo"},
				"riotId":  {"Caps#EUW"},
				"region":  {"EUW1"},
				"riotId2": {"Faker"},
				"region2": {"KR"},
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Player 2: Riot ID must be in the format Name#TAG",
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			resp := serve(t, router, postForm(c.values))
			require.Equal(t, c.expectedStatus, resp.StatusCode)
			require.Equal(t, c.expectedLocation, resp.Header.Get("Location"))

			body := readBody(t, resp)
			if c.expectedError != "" {
				require.Contains(t, body, c.expectedError)
			}
		})
	}
}

func TestRecapRoute(t *testing.T) {
	t.Parallel()

	t.Run("missing parameter redirects to the entry form", func(t *testing.T) {
		t.Parallel()

		router := newRouter(t, failingHandlers(t))
		for _, target := range []string{"/recap", "/recap?name=Caps&tag=EUW", "/recap?name=Caps&region=EUW1", "/recap?tag=EUW&region=EUW1"} {
			resp := serve(t, router, httptest.NewRequest(http.MethodGet, target, nil))
			require.Equal(t, http.StatusSeeOther, resp.StatusCode, target)
			require.Equal(t, "/", resp.Header.Get("Location"), target)
		}
	})

	t.Run("backend error is shown verbatim", func(t *testing.T) {
		t.Parallel()

		handlers := failingHandlers(t)
		handlers.GetRecap = func(ctx context.Context, sess *session.Session, player domain.PlayerID) (domain.Recap, error) {
			return domain.Recap{}, &domain.BackendError{StatusCode: 404, Body: `{"detail":"Summoner not found"}`}
		}
		router := newRouter(t, handlers)

		resp := serve(t, router, httptest.NewRequest(http.MethodGet, "/recap?name=Caps&tag=EUW&region=EUW1", nil))
		require.Equal(t, http.StatusBadGateway, resp.StatusCode)

		body := readBody(t, resp)
		require.Contains(t, body, "API Error 404: {&#34;detail&#34;:&#34;Summoner not found&#34;}")
		require.Contains(t, body, "Go back")
		require.NotContains(t, body, "chat-form")
	})

	t.Run("renders the recap", func(t *testing.T) {
		t.Parallel()

		var gotPlayer domain.PlayerID
		handlers := failingHandlers(t)
		handlers.GetRecap = func(ctx context.Context, sess *session.Session, player domain.PlayerID) (domain.Recap, error) {
			gotPlayer = player
			return newTestRecap(t, player), nil
		}
		router := newRouter(t, handlers)

		resp := serve(t, router, httptest.NewRequest(http.MethodGet, "/recap?name=Hide+on+bush&tag=KR1&region=KR", nil))
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Equal(t, domain.PlayerID{Name: "Hide on bush", Tag: "KR1", Region: "KR"}, gotPlayer)

		body := readBody(t, resp)
		require.Contains(t, body, "Hide on bush#KR1")
		require.Contains(t, body, "The Roamer")
		require.Contains(t, body, "chat-form")
		// The icon lookup failed
		require.NotContains(t, body, "summoner-icon")
	})
}

func TestCompareRoute(t *testing.T) {
	t.Parallel()

	t.Run("missing parameter redirects to the entry form", func(t *testing.T) {
		t.Parallel()

		router := newRouter(t, failingHandlers(t))
		resp := serve(t, router, httptest.NewRequest(http.MethodGet, "/compare?name1=Caps&tag1=EUW&region1=EUW1&name2=Faker&tag2=KR1", nil))
		require.Equal(t, http.StatusSeeOther, resp.StatusCode)
		require.Equal(t, "/", resp.Header.Get("Location"))
	})

	t.Run("renders the comparison", func(t *testing.T) {
		t.Parallel()

		var gotQuery domain.ComparisonQuery
		handlers := failingHandlers(t)
		handlers.GetComparison = func(ctx context.Context, sess *session.Session, query domain.ComparisonQuery) (domain.Comparison, error) {
			gotQuery = query
			return domain.Comparison{
				Tag:        query.CacheTag(),
				Player1:    domain.ComparedPlayer{Name: "Caps#EUW", Region: "EUW1"},
				Player2:    domain.ComparedPlayer{Name: "Faker#KR1", Region: "KR"},
				Comparison: json.RawMessage(`{"overall_summary":"Faker edges it"}`),
			}, nil
		}
		router := newRouter(t, handlers)

		resp := serve(t, router, httptest.NewRequest(http.MethodGet, "/compare?name1=Caps&tag1=EUW&region1=EUW1&name2=Faker&tag2=KR1&region2=KR&test=true", nil))
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.True(t, gotQuery.TestMode)

		body := readBody(t, resp)
		require.Contains(t, body, "Faker edges it")
		require.Contains(t, body, "Caps#EUW")
	})

	t.Run("backend error is shown verbatim", func(t *testing.T) {
		t.Parallel()

		handlers := failingHandlers(t)
		handlers.GetComparison = func(ctx context.Context, sess *session.Session, query domain.ComparisonQuery) (domain.Comparison, error) {
			return domain.Comparison{}, &domain.BackendError{StatusCode: 500, Body: "Player 2 not found"}
		}
		router := newRouter(t, handlers)

		resp := serve(t, router, httptest.NewRequest(http.MethodGet, "/compare?name1=Caps&tag1=EUW&region1=EUW1&name2=Faker&tag2=KR1&region2=KR", nil))
		require.Equal(t, http.StatusBadGateway, resp.StatusCode)
		require.Contains(t, readBody(t, resp), "API Error 500: Player 2 not found")
	})
}

func postChat(message string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"message":`+jsonString(message)+`}`))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func jsonString(s string) string {
	quoted, _ := json.Marshal(s)
	return string(quoted)
}

func TestChatRoutes(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name           string
		err            error
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "without a recap",
			err:            domain.ErrNoRecapContext,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"Load a recap before chatting"}`,
		},
		{
			name:           "while awaiting a reply",
			err:            domain.ErrAwaitingReply,
			expectedStatus: http.StatusConflict,
			expectedBody:   `{"error":"Still waiting for the previous reply"}`,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			handlers := failingHandlers(t)
			handlers.SendChatMessage = func(ctx context.Context, sess *session.Session, text string, observe chat.TurnObserver) ([]domain.ChatTurn, error) {
				return nil, c.err
			}

			resp := serve(t, newRouter(t, handlers), postChat("hello"))
			require.Equal(t, c.expectedStatus, resp.StatusCode)
			require.JSONEq(t, c.expectedBody, readBody(t, resp))
		})
	}

	t.Run("invalid body", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"message":`))
		resp := serve(t, newRouter(t, failingHandlers(t)), req)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("returns the appended turns as html", func(t *testing.T) {
		t.Parallel()

		handlers := failingHandlers(t)
		handlers.SendChatMessage = func(ctx context.Context, sess *session.Session, text string, observe chat.TurnObserver) ([]domain.ChatTurn, error) {
			require.Equal(t, "<b>how</b> did I do?", text)
			return []domain.ChatTurn{
				{Role: domain.ChatRoleUser, Text: text},
				{Role: domain.ChatRoleAssistant, Text: "**Great** season"},
			}, nil
		}

		resp := serve(t, newRouter(t, handlers), postChat("<b>how</b> did I do?"))
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Equal(t, "application/json", resp.Header.Get("Content-Type"))
		require.JSONEq(t, `{
			"awaiting": false,
			"turns": [
				{"role": "user", "text": "<b>how</b> did I do?", "html": "&lt;b&gt;how&lt;/b&gt; did I do?"},
				{"role": "assistant", "text": "**Great** season", "html": "<p><strong>Great</strong> season</p>\n"}
			]
		}`, readBody(t, resp))
	})

	t.Run("chat log of a new session is empty", func(t *testing.T) {
		t.Parallel()

		resp := serve(t, newRouter(t, failingHandlers(t)), httptest.NewRequest(http.MethodGet, "/chat", nil))
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.JSONEq(t, `{"turns":[],"awaiting":false}`, readBody(t, resp))
	})
}

func TestResetSessionRoute(t *testing.T) {
	t.Parallel()

	var called atomic.Bool
	handlers := failingHandlers(t)
	handlers.ResetSession = func(ctx context.Context, sess *session.Session) {
		called.Store(true)
	}

	resp := serve(t, newRouter(t, handlers), httptest.NewRequest(http.MethodPost, "/session/reset", nil))
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/", resp.Header.Get("Location"))
	require.True(t, called.Load())
}

func TestSummonerIconRoute(t *testing.T) {
	t.Parallel()

	handlers := failingHandlers(t)
	handlers.GetSummonerIcon = func(ctx context.Context, player domain.PlayerID) (string, error) {
		return "https://cdn.example.com/" + player.Name + ".png", nil
	}
	router := newRouter(t, handlers)

	resp := serve(t, router, httptest.NewRequest(http.MethodGet, "/api/summoner-icon?name=Caps&tag=EUW&region=EUW1", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.JSONEq(t, `{"iconUrl":"https://cdn.example.com/Caps.png"}`, readBody(t, resp))

	resp = serve(t, router, httptest.NewRequest(http.MethodGet, "/api/summoner-icon?name=Caps", nil))
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestNotFound(t *testing.T) {
	t.Parallel()

	resp := serve(t, newRouter(t, failingHandlers(t)), httptest.NewRequest(http.MethodGet, "/no/such/page", nil))
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.Contains(t, readBody(t, resp), "Page not found")
}

func TestSessionIsReused(t *testing.T) {
	t.Parallel()

	var sessionIDs []string
	handlers := failingHandlers(t)
	handlers.GetRecap = func(ctx context.Context, sess *session.Session, player domain.PlayerID) (domain.Recap, error) {
		sessionIDs = append(sessionIDs, sess.ID)
		return newTestRecap(t, player), nil
	}
	router := newRouter(t, handlers)

	first := serve(t, router, httptest.NewRequest(http.MethodGet, "/recap?name=Caps&tag=EUW&region=EUW1", nil))
	require.Equal(t, http.StatusOK, first.StatusCode)
	cookies := first.Cookies()
	require.Len(t, cookies, 1)

	req := httptest.NewRequest(http.MethodGet, "/recap?name=Caps&tag=EUW&region=EUW1", nil)
	req.AddCookie(cookies[0])
	second := serve(t, router, req)
	require.Equal(t, http.StatusOK, second.StatusCode)
	require.Empty(t, second.Cookies())

	require.Len(t, sessionIDs, 2)
	require.Equal(t, sessionIDs[0], sessionIDs[1])
	require.Equal(t, cookies[0].Value, sessionIDs[0])
}
