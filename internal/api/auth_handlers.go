package api

import (
	"net/http"
	"time"

	"github.com/quiverapp/quiver-server/internal/domain"
	"github.com/quiverapp/quiver-server/internal/service"
)

// userPayload is the public view of an account. Everything else on the
// user row stays server-side.
type userPayload struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

func userView(u *domain.User) *userPayload {
	return &userPayload{ID: u.ID, Email: u.Email}
}

// sessionPayload answers "who am I": user is null for anonymous callers.
type sessionPayload struct {
	User            *userPayload `json:"user"`
	IsAuthenticated bool         `json:"isAuthenticated"`
}

// handleSession reports whether the caller has a valid session. Always
// 200: an anonymous caller is a normal answer, not an error.
func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	user, _, err := s.sessionFromCookie(r)
	if err != nil {
		respondJSON(w, http.StatusOK, sessionPayload{}, s.logger)
		return
	}

	respondJSON(w, http.StatusOK, sessionPayload{
		User:            userView(user),
		IsAuthenticated: true,
	}, s.logger)
}

// handleRegister creates an account and signs the new user in.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err, s.logger)
		return
	}

	result, err := s.authService.Register(r.Context(), req)
	if err != nil {
		respondError(w, r, err, s.logger)
		return
	}

	s.setSessionCookie(w, result.Token, result.ExpiresAt)
	respondJSON(w, http.StatusCreated, map[string]any{
		"user": userView(result.User),
	}, s.logger)
}

// handleLogin authenticates an existing user and starts a session.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req service.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err, s.logger)
		return
	}

	result, err := s.authService.Login(r.Context(), req)
	if err != nil {
		respondError(w, r, err, s.logger)
		return
	}

	s.setSessionCookie(w, result.Token, result.ExpiresAt)
	respondJSON(w, http.StatusOK, map[string]any{
		"user": userView(result.User),
	}, s.logger)
}

// handleLogout revokes the current session and clears the cookie.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := s.authService.Logout(ctx, getSessionID(ctx)); err != nil {
		respondError(w, r, err, s.logger)
		return
	}

	s.clearSessionCookie(w)
	respondJSON(w, http.StatusOK, map[string]string{
		"message": "Logged out successfully",
	}, s.logger)
}

// handleResetPassword starts a password reset. The response is the same
// whether or not the email exists, so the endpoint cannot be used to
// enumerate accounts.
func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req service.ResetPasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err, s.logger)
		return
	}

	if err := s.authService.RequestPasswordReset(r.Context(), req); err != nil {
		respondError(w, r, err, s.logger)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "If an account with that email exists, a password reset link has been sent",
	}, s.logger)
}

// handleUpdatePassword changes a password. The caller proves identity
// with either the session cookie plus the current password, or a reset
// token; the service enforces that one of the two holds.
func (s *Server) handleUpdatePassword(w http.ResponseWriter, r *http.Request) {
	var req service.UpdatePasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err, s.logger)
		return
	}

	var userID, sessionID string
	if user, session, err := s.sessionFromCookie(r); err == nil {
		userID, sessionID = user.ID, session.ID
	}

	if err := s.authService.UpdatePassword(r.Context(), userID, sessionID, req); err != nil {
		respondError(w, r, err, s.logger)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "Password updated successfully",
	}, s.logger)
}

// setSessionCookie attaches the session token to the response. Lax keeps
// the cookie on top-level navigation while blocking cross-site POSTs.
func (s *Server) setSessionCookie(w http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   s.cfg.Auth.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// clearSessionCookie expires the session cookie immediately.
func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.cfg.Auth.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}
