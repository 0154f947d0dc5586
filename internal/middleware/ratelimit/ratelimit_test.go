package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestLimiter_Allow(t *testing.T) {
	clock := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	rl := NewLimiter(Config{RequestsPerMinute: 3}).WithClock(func() time.Time { return clock })
	defer rl.Stop()

	for i := 0; i < 3; i++ {
		if !rl.Allow("1.2.3.4") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if rl.Allow("1.2.3.4") {
		t.Fatal("fourth request in the window should be limited")
	}
	if !rl.Allow("5.6.7.8") {
		t.Fatal("other clients have their own budget")
	}

	// Steady traffic must not extend the window forever
	clock = clock.Add(61 * time.Second)
	if !rl.Allow("1.2.3.4") {
		t.Fatal("a new window should reset the budget")
	}

	if got := rl.GetMetrics(); got.TotalHits != 1 || got.ClientCount != 2 {
		t.Errorf("unexpected metrics: %+v", got)
	}
}

func TestLimiter_CleanupStaleEntries(t *testing.T) {
	clock := time.Now()
	rl := NewLimiter(DefaultConfig()).WithClock(func() time.Time { return clock })
	defer rl.Stop()

	rl.Allow("1.2.3.4")
	clock = clock.Add(11 * time.Minute)
	rl.cleanupStaleEntries()
	if rl.ActiveClients() != 0 {
		t.Errorf("stale client not removed")
	}
	rl.Stop() // idempotent
}

func TestLimiter_MiddlewareSkipsSafeMethods(t *testing.T) {
	rl := NewLimiter(Config{RequestsPerMinute: 1})
	defer rl.Stop()

	handler := rl.Middleware(func(*http.Request) string { return "ip" }, nil)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) }))

	tests := []struct {
		method string
		want   int
	}{
		{http.MethodPost, http.StatusNoContent},
		{http.MethodGet, http.StatusNoContent},
		{http.MethodGet, http.StatusNoContent},
		{http.MethodPatch, http.StatusTooManyRequests},
	}
	for i, tt := range tests {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(tt.method, "/api/lists", nil))
		if rr.Code != tt.want {
			t.Errorf("request %d (%s): status %d, want %d", i, tt.method, rr.Code, tt.want)
		}
		if tt.want == http.StatusTooManyRequests && rr.Header().Get("Retry-After") != "60" {
			t.Errorf("missing Retry-After header")
		}
	}
}
