package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"nbbang/internal/cache"
	"nbbang/internal/core"
	"nbbang/internal/metrics"
	"nbbang/internal/services"
)

// Server exposes the meeting API. Loaded meetings sit in a small LRU with TTL
// so repeated settlement views during an active session skip the database;
// every save invalidates the entry.
type Server struct {
	http.Server

	svc         *services.MeetingService
	meetings    *cache.TTLCache[core.Meeting]
	rateLimiter *rateLimiter

	stopCleanup  chan struct{}
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, svc *services.MeetingService, cacheSize int, cacheTTL time.Duration) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		svc:         svc,
		meetings:    cache.New[core.Meeting](cacheSize, cacheTTL),
		rateLimiter: newRateLimiter(60),
		stopCleanup: make(chan struct{}),
	}
	s.meetings.StartJanitor(10*time.Minute, s.stopCleanup)

	mux.HandleFunc("POST /api/meetings", s.withRequestContext("register", s.handleRegister))
	mux.HandleFunc("GET /api/meetings/{entryCode}", s.withRequestContext("get_meeting", s.handleGetMeeting))
	mux.HandleFunc("PUT /api/meetings/{entryCode}", s.withRequestContext("save_meeting", s.handleSaveMeeting))
	mux.HandleFunc("POST /api/meetings/{entryCode}/edit-session", s.withRequestContext("edit_session", s.handleEditSession))
	mux.HandleFunc("GET /api/meetings/{entryCode}/settlement", s.withRequestContext("settlement", s.handleSettlement))
	mux.HandleFunc("GET /api/meetings/{entryCode}/settlement/{userId}", s.withRequestContext("user_settlement", s.handleUserSettlement))
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)
	mux.Handle("GET /metrics", metrics.Handler())

	return s
}

// Shutdown stops the HTTP server and the background cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		close(s.stopCleanup)
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// withRequestContext adds a request id, rate limiting on writes, security
// headers, and request logging.
func (s *Server) withRequestContext(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"client_ip", clientIP)

		if (r.Method == http.MethodPost || r.Method == http.MethodPut) && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded", "client_ip", clientIP, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded").Write(w)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		metrics.RequestDuration.WithLabelValues(route, r.Method).Observe(duration.Seconds())
		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", duration.Milliseconds())
	}
}

type requestIDKey struct{}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

// loadSession opens an edit session for the entry code, serving the document
// from cache when a fresh copy is there.
func (s *Server) loadSession(ctx context.Context, entryCode string) (*services.Session, error) {
	if m, ok := s.meetings.Get(entryCode); ok {
		metrics.MeetingLoads.WithLabelValues("hit").Inc()
		return services.NewSession(m), nil
	}

	sess, err := s.svc.Load(ctx, entryCode)
	if err != nil {
		if errors.Is(err, core.ErrMeetingNotFound) {
			metrics.MeetingLoads.WithLabelValues("not_found").Inc()
		} else {
			metrics.MeetingLoads.WithLabelValues("error").Inc()
		}
		return nil, err
	}

	metrics.MeetingLoads.WithLabelValues("miss").Inc()
	s.meetings.Set(entryCode, sess.Meeting())
	return sess, nil
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
