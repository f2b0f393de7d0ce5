// Package server exposes the marketplace over HTTP/JSON. Handlers stay
// thin: decode, call into internal/app, map the error to a status code.
package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"bookshare/internal/app"
	"bookshare/internal/util"
	"bookshare/pkg/auth"
	"bookshare/pkg/domain"
	"bookshare/pkg/store"
)

const (
	maxBodyBytes     = 1 << 20  // JSON bodies
	maxMaterialBytes = 32 << 20 // multipart material uploads
)

// AuthLimiter throttles login/register attempts per client key.
type AuthLimiter interface {
	Allow(key string) bool
}

// Server holds the HTTP surface.
type Server struct {
	app        *app.App
	limiter    AuthLimiter
	trustProxy bool
	logger     *slog.Logger
}

// Options configures the server; App is required, the rest optional.
type Options struct {
	App        *app.App
	Limiter    AuthLimiter
	TrustProxy bool
	Logger     *slog.Logger
}

func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		app:        opts.App,
		limiter:    opts.Limiter,
		trustProxy: opts.TrustProxy,
		logger:     logger,
	}
}

// Handler builds the routed handler with the shared middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	mux.HandleFunc("POST /auth/register", s.rateLimited(s.handleRegister))
	mux.HandleFunc("POST /auth/login", s.rateLimited(s.handleLogin))
	mux.HandleFunc("POST /auth/logout", s.handleLogout)
	mux.HandleFunc("GET /auth/me", s.authenticated(s.handleMe))

	mux.HandleFunc("GET /ads", s.authenticated(s.handleListAds))
	mux.HandleFunc("POST /ads", s.authenticated(s.handleCreateAd))
	mux.HandleFunc("GET /ads/{id}", s.authenticated(s.handleGetAd))
	mux.HandleFunc("DELETE /ads/{id}", s.authenticated(s.handleDeleteAd))

	mux.HandleFunc("POST /transactions", s.authenticated(s.handleRequestTransaction))
	mux.HandleFunc("POST /transactions/{id}/accept", s.authenticated(s.handleAcceptTransaction))
	mux.HandleFunc("GET /sales", s.authenticated(s.handleSales))
	mux.HandleFunc("GET /history", s.authenticated(s.handleHistory))

	mux.HandleFunc("GET /notifications", s.authenticated(s.handleNotifications))
	mux.HandleFunc("POST /notifications/{id}/read", s.authenticated(s.handleMarkNotificationRead))

	// content lists are readable without a session
	mux.HandleFunc("GET /blogs", s.handleListBlogs)
	mux.HandleFunc("POST /blogs", s.authenticated(s.handlePostBlog))
	mux.HandleFunc("GET /blogs/{id}", s.handleGetBlog)
	mux.HandleFunc("PUT /blogs/{id}", s.authenticated(s.handleEditBlog))
	mux.HandleFunc("DELETE /blogs/{id}", s.authenticated(s.handleDeleteBlog))

	mux.HandleFunc("GET /interviews", s.handleListInterviews)
	mux.HandleFunc("POST /interviews", s.authenticated(s.handlePostInterview))
	mux.HandleFunc("PUT /interviews/{id}", s.authenticated(s.handleEditInterview))
	mux.HandleFunc("DELETE /interviews/{id}", s.authenticated(s.handleDeleteInterview))

	mux.HandleFunc("GET /materials", s.handleListMaterials)
	mux.HandleFunc("POST /materials", s.authenticated(s.handleUploadMaterial))
	mux.HandleFunc("GET /materials/{id}/download", s.authenticated(s.handleMaterialDownload))
	mux.HandleFunc("POST /materials/{id}/verify", s.authenticated(s.handleVerifyMaterial))

	mux.HandleFunc("GET /reports", s.authenticated(s.handleListReports))
	mux.HandleFunc("POST /reports", s.authenticated(s.handleReportAd))
	mux.HandleFunc("POST /reports/{id}/resolve", s.authenticated(s.handleResolveReport))

	mux.HandleFunc("GET /users", s.authenticated(s.handleListUsers))
	mux.HandleFunc("DELETE /users/{id}", s.authenticated(s.handleDeleteUser))

	var h http.Handler = mux
	h = util.WithCORS(h)
	h = util.WithSecurityHeaders(h)
	h = util.WithRequestLog(h)
	h = util.WithRequestID(h)
	return h
}

// authenticated resolves the bearer token before calling the handler.
func (s *Server) authenticated(next func(http.ResponseWriter, *http.Request, domain.User)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		user, err := s.app.UserFromToken(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or expired session token")
			return
		}
		next(w, r, user)
	}
}

// rateLimited throttles by client IP; without a limiter it is a no-op.
func (s *Server) rateLimited(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.limiter != nil && !s.limiter.Allow(util.ClientIP(r, s.trustProxy)) {
			writeError(w, http.StatusTooManyRequests, "too many requests")
			return
		}
		next(w, r)
	}
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	defer r.Body.Close()
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// respondError maps application errors to HTTP statuses.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, app.ErrMissingFields),
		errors.Is(err, app.ErrInvalidRole),
		errors.Is(err, app.ErrInvalidPrice),
		errors.Is(err, app.ErrInvalidYear),
		errors.Is(err, app.ErrInvalidTransactionType),
		errors.Is(err, auth.ErrPasswordTooShort):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, app.ErrInvalidCredentials),
		errors.Is(err, app.ErrRoleMismatch),
		errors.Is(err, app.ErrInvalidToken):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, app.ErrNotAllowed):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, app.ErrUserNotFound),
		errors.Is(err, app.ErrAdNotFound),
		errors.Is(err, app.ErrTransactionNotFound),
		errors.Is(err, app.ErrBlogNotFound),
		errors.Is(err, app.ErrPostNotFound),
		errors.Is(err, app.ErrMaterialNotFound),
		errors.Is(err, app.ErrNotificationNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, app.ErrEmailTaken),
		errors.Is(err, app.ErrOwnListing),
		errors.Is(err, store.ErrAdNotAvailable),
		errors.Is(err, store.ErrTransactionNotPending):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, app.ErrStorageDisabled):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		s.logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", util.RequestIDFromRequest(r),
			"error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
