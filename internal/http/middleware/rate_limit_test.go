package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(t *testing.T, cfg RateLimitConfig) (*RateLimiter, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	return NewRateLimiter(rdb, cfg), mr
}

func doRequest(handler http.Handler, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/bookings", nil)
	req.RemoteAddr = ip + ":54321"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimiterBlocksAfterLimit(t *testing.T) {
	limiter, _ := newTestLimiter(t, RateLimitConfig{
		Requests: 3,
		Window:   time.Minute,
		KeyFunc:  IPRateLimitKeyFunc,
	})
	handler := limiter.Middleware()(okHandler())

	for i := 0; i < 3; i++ {
		rec := doRequest(handler, "203.0.113.5")
		require.Equal(t, http.StatusOK, rec.Code, "request %d", i+1)
	}

	rec := doRequest(handler, "203.0.113.5")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestRateLimiterKeysAreIndependent(t *testing.T) {
	limiter, _ := newTestLimiter(t, RateLimitConfig{
		Requests: 1,
		Window:   time.Minute,
		KeyFunc:  IPRateLimitKeyFunc,
	})
	handler := limiter.Middleware()(okHandler())

	require.Equal(t, http.StatusOK, doRequest(handler, "203.0.113.5").Code)
	require.Equal(t, http.StatusTooManyRequests, doRequest(handler, "203.0.113.5").Code)

	assert.Equal(t, http.StatusOK, doRequest(handler, "203.0.113.6").Code)
}

func TestRateLimiterWindowExpires(t *testing.T) {
	limiter, mr := newTestLimiter(t, RateLimitConfig{
		Requests: 1,
		Window:   time.Minute,
		KeyFunc:  IPRateLimitKeyFunc,
	})
	handler := limiter.Middleware()(okHandler())

	require.Equal(t, http.StatusOK, doRequest(handler, "203.0.113.5").Code)
	require.Equal(t, http.StatusTooManyRequests, doRequest(handler, "203.0.113.5").Code)

	mr.FastForward(61 * time.Second)

	assert.Equal(t, http.StatusOK, doRequest(handler, "203.0.113.5").Code)
}

func TestRateLimiterFailsOpenWhenRedisDown(t *testing.T) {
	limiter, mr := newTestLimiter(t, RateLimitConfig{
		Requests: 1,
		Window:   time.Minute,
		KeyFunc:  IPRateLimitKeyFunc,
	})
	handler := limiter.Middleware()(okHandler())
	mr.Close()

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, doRequest(handler, "203.0.113.5").Code)
	}
}

func TestRateLimiterSkipFunc(t *testing.T) {
	limiter, _ := newTestLimiter(t, RateLimitConfig{
		Requests: 1,
		Window:   time.Minute,
		KeyFunc:  IPRateLimitKeyFunc,
		SkipFunc: func(r *http.Request) bool {
			return r.Header.Get("X-Internal") == "true"
		},
	})
	handler := limiter.Middleware()(okHandler())

	require.Equal(t, http.StatusOK, doRequest(handler, "203.0.113.5").Code)
	require.Equal(t, http.StatusTooManyRequests, doRequest(handler, "203.0.113.5").Code)

	req := httptest.NewRequest(http.MethodPost, "/bookings", nil)
	req.RemoteAddr = "203.0.113.5:54321"
	req.Header.Set("X-Internal", "true")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestClientIPPrefersForwardedFor(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:1234"

	assert.Equal(t, "10.0.0.1", clientIP(req))

	req.Header.Set("X-Real-IP", "198.51.100.7")
	assert.Equal(t, "198.51.100.7", clientIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	assert.Equal(t, "203.0.113.9", clientIP(req))
}
