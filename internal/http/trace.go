package http

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
	"time"

	"reikningar/internal/log"
)

const requestIDHeader = "X-Request-ID"

// generateRequestID creates a unique request ID for tracing.
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

// requestID keeps a sane caller-supplied ID and generates one otherwise.
func requestID(r *http.Request) string {
	if id := strings.TrimSpace(r.Header.Get(requestIDHeader)); id != "" && len(id) <= 64 {
		return sanitizeInput(id)
	}
	return generateRequestID()
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// assignRequestID makes sure the request and the response carry an ID.
func assignRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := requestID(r)
		r.Header.Set(requestIDHeader, id)
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

func requestIDFromHeader(r *http.Request) string {
	return r.Header.Get(requestIDHeader)
}

// withAccessLog logs the completion of every request with the
// request-scoped logger.
func withAccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)
		log.NewStructuredLogger(log.FromContext(r.Context())).
			LogHTTPEnd(r.Context(), r, rw.statusCode, time.Since(start).Milliseconds(), clientIP(r))
	})
}

// traced wraps h with request IDs, the request-scoped logger and access
// logging.
func traced(logger *log.Logger, h http.Handler) http.Handler {
	h = withAccessLog(h)
	h = log.RequestIDMiddleware(requestIDFromHeader)(h)
	h = assignRequestID(h)
	return log.Middleware(logger)(h)
}

func (s *Server) logFor(r *http.Request) *log.Logger {
	return log.FromContext(r.Context())
}
