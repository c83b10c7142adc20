package ratelimiting

import (
	"net/http"
	"net/http/httptest"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type mockedRateLimiter struct {
	consumeFunc func(key string) bool
}

func (m *mockedRateLimiter) Consume(key string) bool {
	return m.consumeFunc(key)
}

func TestTokenBucketRateLimiter(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping test in short mode")
	}
	rateLimiter, stop := NewTokenBucketRateLimiter(1, 2)
	defer stop()

	assert.True(t, rateLimiter.Consume("session2"))

	// Burst of 2
	assert.True(t, rateLimiter.Consume("session1"))
	assert.True(t, rateLimiter.Consume("session1"))
	assert.False(t, rateLimiter.Consume("session1"))

	time.Sleep(1000 * time.Millisecond)
	runtime.Gosched()

	// Refill rate of 1
	assert.True(t, rateLimiter.Consume("session1"))
	assert.False(t, rateLimiter.Consume("session1"))

	// Burst of 2 - even after refill
	assert.True(t, rateLimiter.Consume("session3"))
	assert.True(t, rateLimiter.Consume("session3"))
	assert.False(t, rateLimiter.Consume("session3"))

	assert.True(t, rateLimiter.Consume("session2"))
	assert.True(t, rateLimiter.Consume("session2"))
	assert.False(t, rateLimiter.Consume("session2"))
}

func TestIPKeyFunc(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name          string
		remoteAddr    string
		forwardedFor  string
		expectedKeyIP string
	}{
		{name: "ipv4 without port", remoteAddr: "123.123.123.123", expectedKeyIP: "123.123.123.123"},
		{name: "ipv4 with port", remoteAddr: "123.123.123.123:54321", expectedKeyIP: "123.123.123.123"},
		{name: "ipv6 with port", remoteAddr: "[dead:beef::1]:54321", expectedKeyIP: "dead:beef::1"},
		{name: "forwarded", remoteAddr: "10.0.0.1:80", forwardedFor: "12.12.123.123", expectedKeyIP: "12.12.123.123"},
		{name: "forwarded chain", remoteAddr: "10.0.0.1:80", forwardedFor: "12.12.123.123, 10.0.0.2", expectedKeyIP: "12.12.123.123"},
		{name: "forwarded blank", remoteAddr: "10.0.0.1:80", forwardedFor: " ,10.0.0.2", expectedKeyIP: "10.0.0.1"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			request := &http.Request{RemoteAddr: c.remoteAddr, Header: http.Header{}}
			if c.forwardedFor != "" {
				request.Header.Set("X-Forwarded-For", c.forwardedFor)
			}
			assert.Equal(t, "ip: "+c.expectedKeyIP, IPKeyFunc(request))
		})
	}
}

func TestCookieKeyFunc(t *testing.T) {
	t.Parallel()

	keyFunc := CookieKeyFunc("rr_session")

	t.Run("missing", func(t *testing.T) {
		t.Parallel()

		request := httptest.NewRequest(http.MethodGet, "/chat", nil)
		assert.Equal(t, "rr_session: <missing>", keyFunc(request))
	})

	t.Run("present", func(t *testing.T) {
		t.Parallel()

		request := httptest.NewRequest(http.MethodGet, "/chat", nil)
		request.AddCookie(&http.Cookie{Name: "rr_session", Value: "abc"})
		assert.Equal(t, "rr_session: abc", keyFunc(request))
	})

	t.Run("truncated", func(t *testing.T) {
		t.Parallel()

		request := httptest.NewRequest(http.MethodGet, "/chat", nil)
		request.AddCookie(&http.Cookie{Name: "rr_session", Value: strings.Repeat("a", 100)})
		assert.Equal(t, "rr_session: "+strings.Repeat("a", 50), keyFunc(request))
	})
}

func TestRequestBasedRateLimiter(t *testing.T) {
	var expectedKey string
	var allowed bool
	rateLimiter := &mockedRateLimiter{
		consumeFunc: func(key string) bool {
			t.Helper()
			assert.Equal(t, expectedKey, key)
			return allowed
		},
	}
	requestRateLimiter := NewRequestBasedRateLimiter(rateLimiter, IPKeyFunc)

	expectedKey = "ip: 1.1.1.1"
	allowed = true
	assert.True(t, requestRateLimiter.Consume(&http.Request{RemoteAddr: "1.1.1.1"}))
	assert.True(t, requestRateLimiter.Consume(&http.Request{RemoteAddr: "1.1.1.1"}))
	allowed = false
	assert.False(t, requestRateLimiter.Consume(&http.Request{RemoteAddr: "1.1.1.1"}))

	expectedKey = "ip: 2.1.1.1"
	allowed = true
	assert.True(t, requestRateLimiter.Consume(&http.Request{RemoteAddr: "2.1.1.1"}))
	assert.Equal(t, "ip: 2.1.1.1", requestRateLimiter.KeyFor(&http.Request{RemoteAddr: "2.1.1.1"}))

	expectedKey = "ip: 1.1.1.1"
	allowed = false
	assert.False(t, requestRateLimiter.Consume(&http.Request{RemoteAddr: "1.1.1.1"}))
}
