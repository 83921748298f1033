package api

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/quiverapp/quiver-server/internal/domain"
	apperrors "github.com/quiverapp/quiver-server/internal/errors"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	contextKeyUserID    contextKey = "user_id"
	contextKeySessionID contextKey = "session_id"
)

// sessionFromCookie resolves the session cookie into a user and session.
// A missing cookie and a dead session are the same answer: not
// authenticated.
func (s *Server) sessionFromCookie(r *http.Request) (*domain.User, *domain.Session, error) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil || cookie.Value == "" {
		return nil, nil, apperrors.Authentication("Authentication required")
	}

	return s.authService.Authenticate(r.Context(), cookie.Value)
}

// requireAuth validates the session cookie and attaches the user and
// session ids to the request context.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, session, err := s.sessionFromCookie(r)
		if err != nil {
			respondError(w, r, err, s.logger)
			return
		}

		ctx := context.WithValue(r.Context(), contextKeyUserID, user.ID)
		ctx = context.WithValue(ctx, contextKeySessionID, session.ID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// rateLimit rejects callers that exceed the per-IP budget. Applied to
// the auth endpoints that accept credentials.
func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow(clientIP(r)) {
			respondError(w, r, apperrors.RateLimited("Too many requests, please try again later"), s.logger)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// requestLogger emits one structured log line per completed request.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		s.logger.Info("Request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
			"client_ip", clientIP(r),
		)
	})
}

// clientIP returns the caller's IP without the port. middleware.RealIP
// has already folded X-Forwarded-For and X-Real-IP into RemoteAddr.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// getUserID extracts the authenticated user ID from request context.
// Returns empty string if not authenticated.
func getUserID(ctx context.Context) string {
	if userID, ok := ctx.Value(contextKeyUserID).(string); ok {
		return userID
	}
	return ""
}

// getSessionID extracts the session ID from request context.
// Returns empty string if not available.
func getSessionID(ctx context.Context) string {
	if sessionID, ok := ctx.Value(contextKeySessionID).(string); ok {
		return sessionID
	}
	return ""
}
