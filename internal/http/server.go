// Package http exposes the finances JSON API.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"finances/internal/middleware/trace"
	"finances/internal/services"
)

type Server struct {
	http.Server
	users       *services.UserService
	launches    *services.LaunchService
	rateLimiter *rateLimiter
}

// NewServer wires routes and middleware, returning a ready-to-run server.
func NewServer(addr string, users *services.UserService, launches *services.LaunchService) *Server {
	s := &Server{
		users:       users,
		launches:    launches,
		rateLimiter: newRateLimiter(),
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("POST /api/users", s.handleRegisterUser)
	mux.HandleFunc("POST /api/users/authenticate", s.handleAuthenticate)
	mux.HandleFunc("GET /api/users/{id}/balance", s.handleBalance)

	mux.HandleFunc("GET /api/launches", s.handleSearchLaunches)
	mux.HandleFunc("POST /api/launches", s.handleCreateLaunch)
	mux.HandleFunc("GET /api/launches/{id}", s.handleGetLaunch)
	mux.HandleFunc("PUT /api/launches/{id}", s.handleUpdateLaunch)
	mux.HandleFunc("PUT /api/launches/{id}/status", s.handleUpdateLaunchStatus)
	mux.HandleFunc("DELETE /api/launches/{id}", s.handleDeleteLaunch)

	s.Server = http.Server{
		Addr:    addr,
		Handler: trace.Middleware(s.withProtection(mux)),
	}

	return s
}

// withProtection adds security headers and rate limits mutating requests.
func (s *Server) withProtection(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientAddr(r)) {
			w.Header().Set("Retry-After", "60")
			writeError(w, r, errRateLimited)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func clientAddr(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return ip
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	return r.RemoteAddr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// Simple in-memory rate limiter: up to 60 mutating requests per client per
// minute, with periodic cleanup of stale entries.
type rateLimiter struct {
	mu           sync.Mutex
	clients      map[string]*clientInfo
	stopCleanup  chan struct{}
	shutdownOnce sync.Once
}

type clientInfo struct {
	lastRequest time.Time
	requests    int
}

func newRateLimiter() *rateLimiter {
	rl := &rateLimiter{
		clients:     make(map[string]*clientInfo),
		stopCleanup: make(chan struct{}),
	}
	go rl.startCleanup()
	return rl
}

func (rl *rateLimiter) startCleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanupStaleEntries()
		case <-rl.stopCleanup:
			return
		}
	}
}

func (rl *rateLimiter) cleanupStaleEntries() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-10 * time.Minute)
	for ip, client := range rl.clients {
		if client.lastRequest.Before(cutoff) {
			delete(rl.clients, ip)
		}
	}
}

func (rl *rateLimiter) stop() {
	rl.shutdownOnce.Do(func() {
		close(rl.stopCleanup)
	})
}

func (rl *rateLimiter) allow(clientIP string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	client, exists := rl.clients[clientIP]

	if !exists {
		rl.clients[clientIP] = &clientInfo{lastRequest: now, requests: 1}
		return true
	}

	if now.Sub(client.lastRequest) > time.Minute {
		client.requests = 1
		client.lastRequest = now
		return true
	}

	client.requests++
	client.lastRequest = now

	return client.requests <= 60
}

// Shutdown stops the rate limiter cleanup goroutine and the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.rateLimiter.stop()
	return s.Server.Shutdown(ctx)
}
