// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MediaHub Contributors

package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gobwas/glob"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/mediahub/mediahub/internal/access"
	"github.com/mediahub/mediahub/internal/auth"
	"github.com/mediahub/mediahub/internal/content"
	"github.com/mediahub/mediahub/pkg/errutil"
)

// AuthService is the subset of auth.Service the API uses.
type AuthService interface {
	Register(ctx context.Context, in auth.RegisterInput) (*auth.Result, error)
	Login(ctx context.Context, identifier, password string) (*auth.Result, error)
	Authenticate(ctx context.Context, token string) (access.Principal, error)
	Logout(ctx context.Context, token string) error
	ListIdentities(ctx context.Context) ([]*auth.Identity, error)
}

// ResetService is the subset of auth.PasswordResetService the API uses.
type ResetService interface {
	RequestReset(ctx context.Context, email string) error
	CompleteReset(ctx context.Context, token, newPassword string) error
}

// ContentGuard is the subset of content.Guard the API uses.
type ContentGuard interface {
	CreateComment(ctx context.Context, mediaID ulid.ULID, text string) (*content.Comment, error)
	EditComment(ctx context.Context, commentID ulid.ULID, text string) (*content.Comment, error)
	DeleteComment(ctx context.Context, commentID ulid.ULID) error
	ToggleLike(ctx context.Context, commentID ulid.ULID) (content.LikeState, error)
	CommentLikes(ctx context.Context, commentID ulid.ULID) (*content.Likes, error)
	CommentsByNickName(ctx context.Context, nickName string) ([]content.CommentView, error)
}

// RequestRecorder observes completed requests.
type RequestRecorder interface {
	RecordHTTPRequest(route string, status int, elapsed time.Duration)
}

// Sentinel errors for constructor validation.
var (
	ErrNilAuthService  = errors.New("auth service is required")
	ErrNilResetService = errors.New("reset service is required")
	ErrNilContentGuard = errors.New("content guard is required")
)

// DefaultMaxBodyBytes caps request bodies.
const DefaultMaxBodyBytes = 1 << 20

// Config holds the API dependencies.
type Config struct {
	Auth    AuthService
	Resets  ResetService
	Content ContentGuard

	// CORSOrigins are glob patterns matched against the Origin header.
	// Empty disables CORS headers.
	CORSOrigins []string

	// Recorder is optional.
	Recorder RequestRecorder
	Logger   *slog.Logger

	MaxBodyBytes int64
}

// API is the HTTP handler for the public endpoints.
type API struct {
	auth     AuthService
	resets   ResetService
	content  ContentGuard
	origins  []glob.Glob
	recorder RequestRecorder
	logger   *slog.Logger
	maxBody  int64
	handler  http.Handler
}

// New builds the API handler.
func New(cfg Config) (*API, error) {
	switch {
	case cfg.Auth == nil:
		return nil, ErrNilAuthService
	case cfg.Resets == nil:
		return nil, ErrNilResetService
	case cfg.Content == nil:
		return nil, ErrNilContentGuard
	}

	origins := make([]glob.Glob, 0, len(cfg.CORSOrigins))
	for _, pattern := range cfg.CORSOrigins {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, oops.Code("WEB_INVALID_CORS_ORIGIN").With("pattern", pattern).Wrap(err)
		}
		origins = append(origins, g)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = DefaultMaxBodyBytes
	}

	a := &API{
		auth:     cfg.Auth,
		resets:   cfg.Resets,
		content:  cfg.Content,
		origins:  origins,
		recorder: cfg.Recorder,
		logger:   logger,
		maxBody:  maxBody,
	}
	a.handler = a.observe(a.cors(a.routes()))
	return a, nil
}

// ServeHTTP implements http.Handler.
func (a *API) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.handler.ServeHTTP(w, r)
}

func (a *API) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", a.handleHealth)

	mux.HandleFunc("POST /api/auth/register", a.handleRegister)
	mux.HandleFunc("POST /api/auth/login", a.handleLogin)
	mux.HandleFunc("POST /api/auth/logout", a.handleLogout)
	mux.HandleFunc("POST /api/auth/forgot-password", a.handleForgotPassword)
	mux.HandleFunc("POST /api/auth/reset-password", a.handleResetPassword)

	mux.Handle("GET /api/users", a.authenticated(a.handleListUsers))

	// GET /api/comments/user/{nickName} and GET /api/comments/{commentId}/likes
	// overlap as ServeMux patterns, so one pattern serves both.
	mux.HandleFunc("GET /api/comments/{first}/{second}", a.handleCommentQuery)
	mux.Handle("POST /api/media/{mediaId}/comments", a.authenticated(a.handleCreateComment))
	mux.Handle("PUT /api/comments/{commentId}", a.authenticated(a.handleEditComment))
	mux.Handle("DELETE /api/comments/{commentId}", a.authenticated(a.handleDeleteComment))
	mux.Handle("POST /api/comments/{commentId}/likes", a.authenticated(a.handleToggleLike))

	mux.HandleFunc(fallbackPattern, a.handleUnmatched(mux))

	return mux
}

// fallbackPattern catches every request no route matches.
const fallbackPattern = "/"

var routeMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete}

// handleUnmatched answers 405 when the path is routed for another method
// and 404 otherwise, both in the error envelope.
func (a *API) handleUnmatched(mux *http.ServeMux) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var allowed []string
		for _, method := range routeMethods {
			if method == r.Method {
				continue
			}
			alt := r.Clone(r.Context())
			alt.Method = method
			if _, pattern := mux.Handler(alt); pattern != "" && pattern != fallbackPattern {
				allowed = append(allowed, method)
			}
		}

		if len(allowed) > 0 {
			w.Header().Set("Allow", strings.Join(allowed, ", "))
			a.logger.DebugContext(r.Context(), "request rejected",
				"status", http.StatusMethodNotAllowed, "method", r.Method, "path", r.URL.Path)
			writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: "Method not allowed"})
			return
		}
		a.writeError(w, r, errutil.Wrap(errutil.KindNotFound, "Not found",
			oops.Code("HTTP_ROUTE_NOT_FOUND").With("path", r.URL.Path).Errorf("no route")))
	}
}

func (a *API) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
