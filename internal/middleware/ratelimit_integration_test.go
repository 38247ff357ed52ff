//go:build integration

package middleware

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/envis/envis/internal/cache"
	"github.com/envis/envis/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestIntegrationRateLimitIP_Concurrency drives the middleware against Redis
// from many goroutines and checks that the burst bounds admissions.
func TestIntegrationRateLimitIP_Concurrency(t *testing.T) {
	ctx := context.Background()
	redisURL := testutil.RequireEnv(t, "REDIS_URL")

	c, err := cache.New(ctx, redisURL)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	require.NoError(t, testutil.FlushRedis(ctx, c.Client()))

	const burst = 3
	handler := RateLimitIP(RateLimitConfig{
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		Limiter: c,
		Enabled: true,
		RPS:     1,
		Burst:   burst,
	}, "waitlist")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	var allowed, rejected int64
	var wg sync.WaitGroup
	for i := 0; i < 30; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodPost, "/api/waitlist", nil)
			req.RemoteAddr = "192.168.1.100:5555"
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			switch rec.Code {
			case http.StatusCreated:
				atomic.AddInt64(&allowed, 1)
			case http.StatusTooManyRequests:
				atomic.AddInt64(&rejected, 1)
			}
		}()
	}
	wg.Wait()

	t.Logf("IP rate limit: %d allowed, %d rejected", allowed, rejected)
	assert.LessOrEqual(t, allowed, int64(burst+1), "too many requests allowed")
	assert.Positive(t, rejected, "expected some requests to be rejected")

	// Another scope has its own bucket.
	other, err := c.CheckIPRateLimit(ctx, "login", "192.168.1.100", 1, burst)
	require.NoError(t, err)
	assert.True(t, other.Allowed, "login scope should be unaffected by waitlist traffic")
}
