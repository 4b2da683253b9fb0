package http

import (
	"net/http"
	"strconv"
	"sync"
	"time"
)

const (
	rateWindow    = time.Minute
	sweepInterval = 5 * time.Minute
	staleAfter    = 10 * time.Minute
)

// window counts one client's requests since start.
type window struct {
	start time.Time
	count int
}

// rateLimiter is a fixed-window limiter keyed by client IP.
type rateLimiter struct {
	perWindow int

	mu      sync.Mutex
	windows map[string]window

	done     chan struct{}
	stopOnce sync.Once
}

func newRateLimiter(perMinute int) *rateLimiter {
	if perMinute <= 0 {
		perMinute = 30
	}
	rl := &rateLimiter{
		perWindow: perMinute,
		windows:   make(map[string]window),
		done:      make(chan struct{}),
	}
	go rl.sweepLoop()
	return rl
}

func (rl *rateLimiter) sweepLoop() {
	t := time.NewTicker(sweepInterval)
	defer t.Stop()
	for {
		select {
		case now := <-t.C:
			rl.sweep(now)
		case <-rl.done:
			return
		}
	}
}

// sweep forgets clients whose window started before now-staleAfter.
func (rl *rateLimiter) sweep(now time.Time) {
	cutoff := now.Add(-staleAfter)
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for ip, w := range rl.windows {
		if w.start.Before(cutoff) {
			delete(rl.windows, ip)
		}
	}
}

func (rl *rateLimiter) stop() {
	rl.stopOnce.Do(func() { close(rl.done) })
}

// allow records a request from ip at now and reports whether it fits the
// current window.
func (rl *rateLimiter) allow(ip string, now time.Time) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	w, ok := rl.windows[ip]
	if !ok || now.Sub(w.start) > rateWindow {
		w = window{start: now}
	}
	w.count++
	rl.windows[ip] = w
	return w.count <= rl.perWindow
}

// limit guards handlers that start expensive work: uploads and completions.
func (s *Server) limit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := time.Now()
		if s.now != nil {
			now = s.now()
		}
		ip := clientIP(r)
		if s.limiter.allow(ip, now) {
			next(w, r)
			return
		}
		s.logFor(r).WarnContext(r.Context(), "Rate limit exceeded", "client_ip", ip, "path", r.URL.Path)
		w.Header().Set("Retry-After", strconv.Itoa(int(rateWindow.Seconds())))
		writeJSON(w, http.StatusTooManyRequests, errorBody{Error: "rate limit exceeded, try again later"})
	}
}
