// Package http exposes the JSON API: transaction intake, statement
// uploads, the aggregation endpoints, debts, reminders, and the chatbot.
// Handlers only translate between the wire and the core; all aggregation
// lives in the analyser package.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"spendwise/internal/cache"
	"spendwise/internal/chat"
	"spendwise/internal/core"
	"spendwise/internal/ledger"
	applog "spendwise/internal/log"
)

type Server struct {
	http.Server
	store        ledger.Store
	bot          *chat.Bot
	topMerchants int
	rateLimiter  *rateLimiter
	structured   *applog.StructuredLogger

	// Analysis results are cached per ledger revision; any mutation
	// bumps the revision and naturally misses the cache.
	analysisCache *cache.LRUCache[core.Analysis]
	cacheManager  *cache.Manager

	shutdownOnce sync.Once
}

// Simple in-memory rate limiter
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

// startCleanup runs periodic cleanup to remove stale client entries
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

// cleanupStaleEntries removes client entries older than 10 minutes
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

// stop gracefully shuts down the rate limiter cleanup goroutine
func (rl *rateLimiter) stop() {
	rl.shutdownOnce.Do(func() {
		if rl.stopCleanup != nil {
			close(rl.stopCleanup)
		}
	})
}

func (rl *rateLimiter) allow(clientIP string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	client, exists := rl.clients[clientIP]

	if !exists {
		rl.clients[clientIP] = &clientInfo{
			lastRequest: now,
			requests:    1,
		}
		return true
	}

	// Reset counter if more than 1 minute has passed
	if now.Sub(client.lastRequest) > time.Minute {
		client.requests = 1
		client.lastRequest = now
		return true
	}

	// Allow up to 60 requests per minute
	client.requests++
	client.lastRequest = now

	return client.requests <= 60
}

// NewServer configures routes, returning a ready-to-run http.Server.
func NewServer(addr string, store ledger.Store, bot *chat.Bot, topMerchants int) *Server {
	mux := http.NewServeMux()

	// Handlers pull the request logger from the context.
	requestLogger := applog.New(applog.Config{Level: slog.LevelInfo, Component: applog.ComponentHTTP})

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: applog.Middleware(requestLogger)(mux),
		},
		store:         store,
		bot:           bot,
		topMerchants:  topMerchants,
		rateLimiter:   newRateLimiter(),
		structured:    applog.NewStructuredLogger(requestLogger),
		analysisCache: cache.NewLRUCache[core.Analysis](100, 5*time.Minute),
		cacheManager:  cache.NewManager(),
	}

	// Periodic sweep of expired analysis entries
	s.cacheManager.Register(s.analysisCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("/", s.withSecurityHeaders(s.handleHome))
	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)

	mux.HandleFunc("/transactions", s.withSecurityHeaders(s.handleTransactions))
	mux.HandleFunc("/statements/csv", s.withSecurityHeaders(s.handleUploadCSV))
	mux.HandleFunc("/statements/lines", s.withSecurityHeaders(s.handleUploadLines))

	mux.HandleFunc("/overall", s.withSecurityHeaders(s.handleOverall))
	mux.HandleFunc("/by_category", s.withSecurityHeaders(s.handleByCategory))
	mux.HandleFunc("/monthly_trends", s.withSecurityHeaders(s.handleMonthlyTrends))
	mux.HandleFunc("/top_merchants", s.withSecurityHeaders(s.handleTopMerchants))
	mux.HandleFunc("/anomalies", s.withSecurityHeaders(s.handleAnomalies))
	mux.HandleFunc("/analyse", s.withSecurityHeaders(s.handleAnalyse))

	mux.HandleFunc("/debts", s.withSecurityHeaders(s.handleDebts))
	mux.HandleFunc("/debts/summary", s.withSecurityHeaders(s.handleDebtSummary))
	mux.HandleFunc("/reminders", s.withSecurityHeaders(s.handleReminders))

	mux.HandleFunc("/chatbot", s.withSecurityHeaders(s.handleChatbot))
	mux.HandleFunc("/greet", s.withSecurityHeaders(s.handleGreet))

	return s
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		if s.cacheManager != nil {
			s.cacheManager.Stop()
		}

		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}

		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// withSecurityHeaders adds security headers, rate limiting, and request logging to responses
func (s *Server) withSecurityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := extractClientIP(r)

		// Generate request ID for tracing
		requestID := generateRequestID()

		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			applog.FieldRequestID, requestID,
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldClientIP, clientIP,
			applog.FieldUserAgent, r.Header.Get("User-Agent"),
			applog.FieldComponent, applog.ComponentHTTP)

		// Apply rate limiting to mutations
		if r.Method == http.MethodPost && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded",
				applog.FieldClientIP, clientIP,
				applog.FieldMethod, r.Method,
				applog.FieldPath, r.URL.Path,
				applog.FieldComponent, applog.ComponentRateLimit)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		w.Header().Set("Content-Security-Policy", "default-src 'self'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		// Capture status code for the completion log
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		slog.InfoContext(ctx, "Request completed",
			applog.FieldRequestID, requestID,
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldStatusCode, rw.statusCode,
			applog.FieldDuration, duration.Milliseconds(),
			applog.FieldClientIP, clientIP,
			applog.FieldComponent, applog.ComponentHTTP)
	}
}

type contextKey string

const requestIDKey contextKey = "request_id"

// extractClientIP resolves the client address, considering proxies.
func extractClientIP(r *http.Request) string {
	clientIP := r.Header.Get("X-Forwarded-For")
	if clientIP == "" {
		clientIP = r.Header.Get("X-Real-IP")
	}
	if clientIP == "" {
		clientIP = r.RemoteAddr
	}
	return clientIP
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// generateRequestID creates a unique request ID for tracing
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		// Fallback to timestamp if random fails
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Welcome to the Expenditure Analysis Backend"})
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if _, err := s.store.Revision(r.Context()); err != nil {
		slog.ErrorContext(r.Context(), "Readiness check failed", "error", err)
		http.Error(w, "not ready", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
