package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRateLimiterAllowsWithinWindow(t *testing.T) {
	rl := newRateLimiter(3)
	defer rl.stop()

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		if !rl.allow("203.0.113.1", now) {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if rl.allow("203.0.113.1", now) {
		t.Fatal("fourth request in the window should be rejected")
	}
	if !rl.allow("203.0.113.2", now) {
		t.Fatal("other clients have their own budget")
	}
	if !rl.allow("203.0.113.1", now.Add(time.Minute+time.Second)) {
		t.Fatal("a new window should reset the budget")
	}
}

func TestRateLimiterCleanup(t *testing.T) {
	rl := newRateLimiter(1)
	defer rl.stop()

	now := time.Now()
	rl.allow("203.0.113.1", now.Add(-20*time.Minute))
	rl.allow("203.0.113.2", now)
	rl.sweep(now)

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if _, ok := rl.windows["203.0.113.1"]; ok {
		t.Error("stale client should be removed")
	}
	if _, ok := rl.windows["203.0.113.2"]; !ok {
		t.Error("active client should be kept")
	}
}

func TestRateLimiterStopIsIdempotent(t *testing.T) {
	rl := newRateLimiter(1)
	rl.stop()
	rl.stop()
}

func TestLimitMiddleware(t *testing.T) {
	s := &Server{limiter: newRateLimiter(1)}
	defer s.limiter.stop()

	h := s.limit(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})

	req := httptest.NewRequest(http.MethodPost, "/api/assistant/ask", nil)
	req.RemoteAddr = "198.51.100.7:1234"

	rec := httptest.NewRecorder()
	h(rec, req)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("first request: got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request: got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("missing Retry-After header")
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name   string
		remote string
		xff    string
		want   string
	}{
		{"direct", "198.51.100.7:1234", "", "198.51.100.7"},
		{"untrusted peer ignores forwarded", "198.51.100.7:1234", "203.0.113.9", "198.51.100.7"},
		{"trusted proxy", "10.0.0.2:80", "203.0.113.9, 10.0.0.2", "203.0.113.9"},
		{"trusted proxy with junk header", "127.0.0.1:80", "not-an-ip", "127.0.0.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if got := clientIP(req); got != tt.want {
				t.Errorf("clientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}
