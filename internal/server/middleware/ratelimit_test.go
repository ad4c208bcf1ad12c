package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/iudanet/deltasync/internal/server/handlers"
)

func newTestLimiter(t *testing.T, rate int, window time.Duration) (*RateLimiter, *time.Time) {
	t.Helper()

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(rate, window)
	rl.now = func() time.Time { return now }
	t.Cleanup(rl.Stop)

	return rl, &now
}

func TestRateLimiter_Allow(t *testing.T) {
	rl, now := newTestLimiter(t, 3, time.Minute)

	for i := 0; i < 3; i++ {
		allowed, _ := rl.Allow("a")
		assert.True(t, allowed, "request %d should pass", i+1)
	}

	allowed, retryAfter := rl.Allow("a")
	assert.False(t, allowed)
	assert.Equal(t, time.Minute, retryAfter)

	// другой ключ не затронут
	allowed, _ = rl.Allow("b")
	assert.True(t, allowed)

	*now = now.Add(time.Minute)
	allowed, _ = rl.Allow("a")
	assert.True(t, allowed)
}

func TestRateLimiter_Cleanup(t *testing.T) {
	rl, now := newTestLimiter(t, 1, time.Second)

	rl.Allow("a")
	*now = now.Add(3 * time.Second)
	rl.cleanupOldBuckets()

	rl.mu.Lock()
	defer rl.mu.Unlock()
	assert.Empty(t, rl.buckets)
}

func TestRateLimiter_StopTwice(t *testing.T) {
	rl := NewRateLimiter(1, time.Second)
	assert.NotPanics(t, func() {
		rl.Stop()
		rl.Stop()
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	rl, _ := newTestLimiter(t, 1, time.Minute)
	handler := RateLimitMiddleware(rl, setupTestLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	send := func(clientID, remote string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/sync", nil)
		req.RemoteAddr = remote
		if clientID != "" {
			req = req.WithContext(context.WithValue(req.Context(), handlers.ClientIDKey, clientID))
		}
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, send("", "10.0.0.1:5000").Code)

	w := send("", "10.0.0.1:5001")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), `"code":"rate_limited"`)

	// два клиента за одним IP лимитируются раздельно
	assert.Equal(t, http.StatusOK, send("tablet-01", "10.0.0.1:5002").Code)
	assert.Equal(t, http.StatusOK, send("tablet-02", "10.0.0.1:5003").Code)
	assert.Equal(t, http.StatusTooManyRequests, send("tablet-01", "10.0.0.1:5004").Code)
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{name: "remote addr", remote: "192.168.1.5:1234", want: "192.168.1.5"},
		{name: "x-forwarded-for", headers: map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1"}, remote: "10.0.0.1:1", want: "203.0.113.7"},
		{name: "x-real-ip", headers: map[string]string{"X-Real-IP": "198.51.100.2"}, remote: "10.0.0.1:1", want: "198.51.100.2"},
		{name: "remote without port", remote: "unix", want: "unix"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, getClientIP(req))
		})
	}
}
