// Package main implements the tweetbeat web server: activity analysis
// for X/Twitter accounts over HTTP.
package main

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"html/template"
	"log/slog"
	"math"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/tweetbeat/tweetbeat/pkg/analyzer"
	"github.com/tweetbeat/tweetbeat/pkg/twitter"
)

//go:embed templates/home.html
var homeTemplate string

//go:embed static/*
var staticFiles embed.FS

var (
	port         = flag.String("port", "8080", "Port for web server")
	geminiAPIKey = flag.String("gemini-key", "", "Gemini API key for AI summaries (or set GEMINI_API_KEY)")
	geminiModel  = flag.String("gemini-model", "", "Gemini model to use (or set GEMINI_MODEL)")
	gcpProject   = flag.String("gcp-project", "", "GCP project ID (or set GCP_PROJECT)")
	maxTweets    = flag.Int("max-tweets", 50, "Maximum number of recent posts to analyze")
	verbose      = flag.Bool("verbose", false, "Enable verbose logging")
	version      = flag.Bool("version", false, "Show version")
)

type rateLimiter struct {
	requests map[string][]time.Time
	mu       sync.Mutex
}

func newRateLimiter() *rateLimiter {
	return &rateLimiter{
		requests: make(map[string][]time.Time),
	}
}

func (rl *rateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-time.Minute)

	var valid []time.Time
	for _, t := range rl.requests[ip] {
		if t.After(cutoff) {
			valid = append(valid, t)
		}
	}

	// Rate limit: 15 requests per minute per IP
	if len(valid) >= 15 {
		rl.requests[ip] = valid
		return false
	}

	rl.requests[ip] = append(valid, now)
	return true
}

func main() {
	flag.Parse()

	if *version {
		fmt.Println("tweetbeat Server v1.0.0")
		return
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if *geminiAPIKey == "" {
		*geminiAPIKey = os.Getenv("GEMINI_API_KEY")
	}
	if *geminiModel == "" {
		*geminiModel = os.Getenv("GEMINI_MODEL")
	}
	if *gcpProject == "" {
		*gcpProject = os.Getenv("GCP_PROJECT")
	}

	logger.Info("Server configuration",
		"port", *port,
		"verbose", *verbose,
		"max_tweets", *maxTweets,
		"has_gemini_key", *geminiAPIKey != "",
		"has_gcp_project", *gcpProject != "")

	a := analyzer.New(context.Background(), logger,
		analyzer.WithMaxTweets(*maxTweets),
		analyzer.WithGeminiAPIKey(*geminiAPIKey),
		analyzer.WithGeminiModel(*geminiModel),
		analyzer.WithGCPProject(*gcpProject),
		analyzer.WithMemoryOnlyCache(),
	)
	defer func() {
		if err := a.Close(); err != nil {
			logger.Error("Failed to close analyzer", "error", err)
		}
	}()

	srv := newServer(a, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("/", srv.handleHome)
	mux.HandleFunc("GET /api/analyze/{username}", srv.handleAnalyze)
	mux.HandleFunc("GET /api/status", srv.handleStatus)
	mux.Handle("/static/", http.FileServer(http.FS(staticFiles)))

	httpServer := &http.Server{
		Addr:              ":" + *port,
		Handler:           srv.wrap(mux),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logger.Info("Server starting", "port", *port)
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("Shutdown failed", "error", err)
	}
	logger.Info("Server stopped")
}

type server struct {
	analyzer *analyzer.Analyzer
	limiter  *rateLimiter
	logger   *slog.Logger
	started  time.Time
}

func newServer(a *analyzer.Analyzer, logger *slog.Logger) *server {
	return &server{
		analyzer: a,
		limiter:  newRateLimiter(),
		logger:   logger,
		started:  time.Now(),
	}
}

func (s *server) wrap(handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := fmt.Sprintf("%d-%d", time.Now().Unix(), time.Now().Nanosecond())
		w.Header().Set("X-Request-ID", requestID)

		defer func() {
			if err := recover(); err != nil {
				const size = 64 << 10
				buf := make([]byte, size)
				buf = buf[:runtime.Stack(buf, false)]

				s.logger.Error("PANIC: Request handler crashed",
					"error", err,
					"path", r.URL.Path,
					"method", r.Method,
					"request_id", requestID,
					"client_ip", clientIP(r),
					"user_agent", r.Header.Get("User-Agent"),
					"stack", string(buf))
				http.Error(w, "Internal server error", http.StatusInternalServerError)
			}
		}()

		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		w.Header().Set("Permissions-Policy", "geolocation=(), microphone=(), camera=(), payment=(), usb=(), bluetooth=()")

		w.Header().Set("Content-Security-Policy",
			"default-src 'self'; "+
				"script-src 'self' 'unsafe-inline'; "+
				"style-src 'self' 'unsafe-inline'; "+
				"img-src 'self' data: https:; "+
				"connect-src 'self'")

		if strings.HasPrefix(r.URL.Path, "/api/") {
			w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, private")
			w.Header().Set("Pragma", "no-cache")
			w.Header().Set("Expires", "0")
		} else if strings.HasPrefix(r.URL.Path, "/static/") {
			w.Header().Set("Cache-Control", "public, max-age=3600, immutable")
		}

		handler.ServeHTTP(w, r)
	})
}

func (s *server) handleHome(w http.ResponseWriter, r *http.Request) {
	requestID := w.Header().Get("X-Request-ID")

	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Path or query can pre-fill the username in the form.
	username := strings.TrimPrefix(r.URL.Path, "/")
	if username == "" {
		username = r.URL.Query().Get("u")
	}
	if username != "" && !twitter.IsValidUsername(username) {
		username = ""
	}

	tmpl, err := template.New("home").Parse(homeTemplate)
	if err != nil {
		s.logger.Error("Template parsing failed",
			"request_id", requestID,
			"error", err,
			"path", r.URL.Path)
		http.Error(w, "Template error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html")
	if err := tmpl.Execute(w, struct{ Username string }{username}); err != nil {
		s.logger.Error("Template execution failed",
			"request_id", requestID,
			"error", err,
			"username", username)
	}
}

func (s *server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ip := clientIP(r)
	requestID := w.Header().Get("X-Request-ID")

	if !s.limiter.allow(ip) {
		s.logger.Error("Rate limit exceeded",
			"request_id", requestID,
			"client_ip", ip,
			"user_agent", r.Header.Get("User-Agent"))
		writeError(w, http.StatusTooManyRequests, errorResponse{
			Error:   "Rate limit exceeded",
			Details: "Too many requests from this address. Please wait a minute and try again.",
			Code:    "RATE_LIMITED",
		}, s.logger, requestID)
		return
	}

	username := strings.TrimPrefix(strings.TrimSpace(r.PathValue("username")), "@")
	if !twitter.IsValidUsername(username) {
		writeError(w, http.StatusBadRequest, errorResponse{
			Error:   "Invalid username",
			Details: "Usernames are 1-15 letters, digits, or underscores.",
			Code:    "INVALID_USERNAME",
		}, s.logger, requestID)
		return
	}

	offsetHours, err := parseOffset(r.URL.Query().Get("tz"))
	if err != nil {
		writeError(w, http.StatusBadRequest, errorResponse{
			Error:   "Invalid timezone offset",
			Details: "The tz parameter must be a number of hours, e.g. -5 or 5.5.",
			Code:    "INVALID_OFFSET",
		}, s.logger, requestID)
		return
	}

	demoMode := false
	if v := r.URL.Query().Get("demo"); v != "" {
		demoMode, err = strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, errorResponse{
				Error:   "Invalid demo parameter",
				Details: "The demo parameter must be a boolean, e.g. true or 1.",
				Code:    "INVALID_DEMO",
			}, s.logger, requestID)
			return
		}
	}

	s.logger.Info("Analysis request started",
		"request_id", requestID,
		"username", username,
		"offset", offsetHours,
		"demo", demoMode,
		"client_ip", ip)

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	rep, err := s.analyzer.Analyze(ctx, username, offsetHours, demoMode)
	if err != nil {
		status := http.StatusInternalServerError
		resp := errorResponse{
			Error:   "Analysis failed",
			Details: "An unexpected error occurred. Please try again.",
			Code:    "INTERNAL_ERROR",
		}
		switch {
		case errors.Is(err, twitter.ErrNotFound):
			status = http.StatusNotFound
			resp = errorResponse{
				Error:   "Account not found",
				Details: fmt.Sprintf("@%s does not exist, is suspended, or has no public posts.", username),
				Code:    "USER_NOT_FOUND",
			}
		case errors.Is(err, context.DeadlineExceeded):
			status = http.StatusGatewayTimeout
			resp = errorResponse{
				Error:   "Analysis took too long",
				Details: "The analysis exceeded the 30-second timeout. Please try again.",
				Code:    "TIMEOUT",
			}
		case errors.Is(err, context.Canceled):
			status = http.StatusRequestTimeout
			resp = errorResponse{
				Error:   "Request was canceled",
				Details: "The request was canceled before completion. Please try again.",
				Code:    "CANCELED",
			}
		}
		s.logger.Error("Analysis failed",
			"request_id", requestID,
			"username", username,
			"error", err,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds())
		writeError(w, status, resp, s.logger, requestID)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(rep); err != nil {
		s.logger.Error("Failed to write response",
			"request_id", requestID,
			"error", err,
			"username", username)
		return
	}

	s.logger.Info("Analysis request completed",
		"request_id", requestID,
		"username", username,
		"posts", rep.TotalAnalyzed,
		"pattern", rep.ActivityPattern.Label,
		"duration_ms", time.Since(start).Milliseconds())
}

func (s *server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]any{
		"status":         "ok",
		"version":        "1.0.0",
		"uptime_seconds": int(time.Since(s.started).Seconds()),
	}); err != nil {
		s.logger.Error("Failed to encode status", "error", err)
	}
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
	Code    string `json:"code,omitempty"`
}

func writeError(w http.ResponseWriter, status int, resp errorResponse, logger *slog.Logger, requestID string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.Error("Failed to encode error response",
			"request_id", requestID,
			"encode_error", err)
	}
}

// parseOffset parses the tz query parameter. Empty means UTC. Any
// finite number is accepted; reprojection normalizes it modulo 24.
func parseOffset(raw string) (float64, error) {
	if raw == "" {
		return 0, nil
	}
	offset, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(offset) || math.IsInf(offset, 0) {
		return 0, errors.New("offset must be finite")
	}
	return offset, nil
}

func clientIP(r *http.Request) string {
	return strings.Split(r.RemoteAddr, ":")[0]
}
