package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"resxai/internal/app"
	"resxai/internal/ratelimit"
	"resxai/internal/realtime"
	"resxai/internal/security"
	"resxai/internal/util"
	"resxai/pkg/domain"
	"resxai/pkg/storage"
)

const defaultMaxUploadBytes = 5 << 20

// Config wires required dependencies for the HTTP server.
type Config struct {
	App            *app.App
	Files          *storage.FileStore
	Hub            *realtime.Hub
	MaxUploadBytes int64
	AllowedOrigins []string
	TrustedProxies *util.TrustedProxies

	// Nil limiters disable rate limiting for that route.
	RegisterLimiter *ratelimit.FixedWindowLimiter
	LoginLimiter    *ratelimit.FixedWindowLimiter

	// Alerter is optional; without it failed events are only logged.
	Alerter *security.Alerter
}

// Server exposes the HTTP API.
type Server struct {
	app             *app.App
	files           *storage.FileStore
	hub             *realtime.Hub
	mux             *http.ServeMux
	maxUploadBytes  int64
	allowedOrigins  []string
	trustedProxies  *util.TrustedProxies
	registerLimiter *ratelimit.FixedWindowLimiter
	loginLimiter    *ratelimit.FixedWindowLimiter
	alerter         *security.Alerter
}

// New constructs the server with routes configured.
func New(cfg Config) (*Server, error) {
	if cfg.App == nil {
		return nil, errors.New("app is required")
	}
	if cfg.Files == nil {
		return nil, errors.New("file store is required")
	}
	maxBytes := cfg.MaxUploadBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxUploadBytes
	}
	s := &Server{
		app:             cfg.App,
		files:           cfg.Files,
		hub:             cfg.Hub,
		mux:             http.NewServeMux(),
		maxUploadBytes:  maxBytes,
		allowedOrigins:  cfg.AllowedOrigins,
		trustedProxies:  cfg.TrustedProxies,
		registerLimiter: cfg.RegisterLimiter,
		loginLimiter:    cfg.LoginLimiter,
		alerter:         cfg.Alerter,
	}
	s.routes()
	return s, nil
}

// Router returns the configured handler.
func (s *Server) Router() http.Handler {
	return util.WithRequestID(util.WithRequestLog(util.WithSecurityHeaders(util.WithCORS(s.allowedOrigins, s.mux))))
}

// Paths lists every route the server handles. The OpenAPI document must
// describe each of them.
var Paths = []string{
	"/healthz",
	"/api/auth/register",
	"/api/auth/login",
	"/api/resume/upload",
	"/api/resume/dashboard",
	"/api/resume/analytics",
	"/api/settings",
	"/api/settings/export",
	"/api/settings/reset",
	"/api/settings/delete-all",
	"/ws",
}

func (s *Server) routes() {
	s.mux.HandleFunc("/healthz", s.handleHealth)

	// auth
	s.mux.HandleFunc("/api/auth/register", s.handleRegister)
	s.mux.HandleFunc("/api/auth/login", s.handleLogin)

	// resumes
	s.mux.Handle("/api/resume/upload", s.authenticated(s.handleUpload))
	s.mux.Handle("/api/resume/dashboard", s.authenticated(s.handleDashboard))
	s.mux.Handle("/api/resume/analytics", s.authenticated(s.handleAnalytics))

	// settings
	s.mux.Handle("/api/settings", s.authenticated(s.handleSettings))
	s.mux.Handle("/api/settings/export", s.authenticated(s.handleExport))
	s.mux.Handle("/api/settings/reset", s.authenticated(s.handleResetSettings))
	s.mux.Handle("/api/settings/delete-all", s.authenticated(s.handleDeleteAll))

	// realtime
	s.mux.HandleFunc("/ws", s.handleWebSocket)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type authHandler func(http.ResponseWriter, *http.Request, domain.Account)

func (s *Server) authenticated(next authHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			s.audit(r, "authorize", "fail", "reason", "missing_token")
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		account, ok := s.app.AccountFromToken(token)
		if !ok {
			s.audit(r, "authorize", "fail", "reason", "invalid_token")
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next(w, r, account)
	})
}

// /ws?token=<jwt>; browsers cannot set headers on websocket handshakes.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		http.NotFound(w, r)
		return
	}
	token := strings.TrimSpace(r.URL.Query().Get("token"))
	if token == "" {
		token, _ = bearerToken(r)
	}
	account, ok := s.app.AccountFromToken(token)
	if !ok {
		s.audit(r, "ws.connect", "fail", "reason", "invalid_token")
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	s.audit(r, "ws.connect", "success", "account_id", account.ID)
	s.hub.ServeHTTP(w, r)
}

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if token == "" {
		return "", false
	}
	return token, true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeAppError maps application errors to status codes. Unknown errors are
// logged and hidden behind a generic message.
func writeAppError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, app.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, app.ErrNoFileProvided),
		errors.Is(err, app.ErrNameEmailPasswordRequired),
		errors.Is(err, app.ErrEmailAlreadyExists),
		errors.Is(err, app.ErrInvalidDays),
		errors.Is(err, app.ErrInvalidSettings):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, app.ErrAccountNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, app.ErrAnalysisFailed):
		writeError(w, http.StatusInternalServerError, app.ErrAnalysisFailed.Error())
	default:
		util.LoggerFromContext(r.Context()).Error("request failed", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func (s *Server) audit(r *http.Request, event, outcome string, attrs ...any) {
	ip := util.ClientIP(r, s.trustedProxies)
	logAttrs := []any{
		"event", event,
		"outcome", outcome,
		"path", r.URL.Path,
		"method", r.Method,
		"ip", ip,
	}
	logAttrs = append(logAttrs, attrs...)
	logger := util.LoggerFromContext(r.Context())
	if outcome == "success" {
		logger.Info("security_event", logAttrs...)
		return
	}
	logger.Warn("security_event", logAttrs...)

	alert, err := s.alerter.Observe(r.Context(), event, outcome, ip)
	if err != nil {
		logger.Warn("security alert counter failed", "event", event, "err", err)
		return
	}
	if alert.Triggered {
		logger.Error("security_alert",
			"event", event,
			"outcome", outcome,
			"ip", ip,
			"count", alert.Count,
			"threshold", alert.Threshold,
			"window", alert.Window.String(),
		)
	}
}

func (s *Server) allowRate(w http.ResponseWriter, r *http.Request, limiter *ratelimit.FixedWindowLimiter, msg string) bool {
	key := r.URL.Path + "|" + util.ClientIP(r, s.trustedProxies)
	if limiter.Allow(r.Context(), key) {
		return true
	}
	w.Header().Set("Retry-After", "60")
	writeError(w, http.StatusTooManyRequests, msg)
	return false
}
