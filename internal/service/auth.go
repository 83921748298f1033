package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/quiverapp/quiver-server/internal/auth"
	"github.com/quiverapp/quiver-server/internal/domain"
	domainerrors "github.com/quiverapp/quiver-server/internal/errors"
	"github.com/quiverapp/quiver-server/internal/id"
	"github.com/quiverapp/quiver-server/internal/logger"
	"github.com/quiverapp/quiver-server/internal/store"
)

const resetTokenDuration = time.Hour

// AuthService handles registration, login, sessions, and password resets.
type AuthService struct {
	store  store.Store
	tokens *auth.TokenService
	logger *logger.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(st store.Store, tokens *auth.TokenService, log *logger.Logger) *AuthService {
	return &AuthService{
		store:  st,
		tokens: tokens,
		logger: log,
	}
}

// RegisterRequest contains new account credentials.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

// LoginRequest contains login credentials.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required"`
}

// ResetPasswordRequest asks for a password reset token.
type ResetPasswordRequest struct {
	Email string `json:"email" validate:"required,email,max=255"`
}

// UpdatePasswordRequest changes a password. Exactly one proof is needed:
// a reset token, or (for a logged-in caller) the current password.
type UpdatePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=128"`
	ResetToken      string `json:"reset_token"`
}

// AuthResult is a successful registration or login: the user plus the
// session token the handler turns into a cookie.
type AuthResult struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

// normalizeEmail trims and lowercases an email address. Applied before
// every store read or write so lookups stay exact-match.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a new account and logs it in. A duplicate email fails
// with the same generic message as any other registration problem, so
// the endpoint cannot be used to probe which addresses have accounts.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*AuthResult, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now()
	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        normalizeEmail(req.Email),
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		if domainerrors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.RegistrationFailed("Unable to register with the provided credentials")
		}
		return nil, domainerrors.Database(err)
	}

	result, err := s.createSession(ctx, user)
	if err != nil {
		return nil, err
	}

	if s.logger != nil {
		s.logger.Info("User registered", "user_id", user.ID)
	}

	return result, nil
}

// Login authenticates credentials and creates a session. Every failure
// mode returns the same generic 401; an unknown email still pays the
// cost of one argon2 hash so response timing does not reveal whether
// the address is registered.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResult, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.store.GetUserByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if domainerrors.Is(err, store.ErrNotFound) {
			_, _ = auth.HashPassword(req.Password)
			return nil, domainerrors.Authentication("Invalid email or password")
		}
		return nil, domainerrors.Database(err)
	}

	valid, err := auth.VerifyPassword(user.PasswordHash, req.Password)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !valid {
		return nil, domainerrors.Authentication("Invalid email or password")
	}

	result, err := s.createSession(ctx, user)
	if err != nil {
		return nil, err
	}

	if s.logger != nil {
		s.logger.Info("User logged in", "user_id", user.ID)
	}

	return result, nil
}

// createSession persists a session row and encodes its token.
func (s *AuthService) createSession(ctx context.Context, user *domain.User) (*AuthResult, error) {
	sessionID, err := id.Generate("sess")
	if err != nil {
		return nil, fmt.Errorf("generate session ID: %w", err)
	}

	now := time.Now()
	session := &domain.Session{
		ID:        sessionID,
		UserID:    user.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.tokens.SessionDuration()),
	}

	if err := s.store.CreateSession(ctx, session); err != nil {
		return nil, domainerrors.Database(err)
	}

	token, err := s.tokens.GenerateSessionToken(user.ID, sessionID)
	if err != nil {
		return nil, fmt.Errorf("generate session token: %w", err)
	}

	return &AuthResult{
		User:      user,
		Token:     token,
		ExpiresAt: session.ExpiresAt,
	}, nil
}

// Authenticate resolves a session token to its user. Used by the auth
// middleware and the public session endpoint. The token must decrypt,
// and the session row it names must exist, be unrevoked, and be
// unexpired; any failure is the same generic 401.
func (s *AuthService) Authenticate(ctx context.Context, tokenString string) (*domain.User, *domain.Session, error) {
	claims, err := s.tokens.VerifySessionToken(tokenString)
	if err != nil {
		return nil, nil, domainerrors.Authentication("Invalid or expired session").WithCause(err)
	}

	session, err := s.store.GetSession(ctx, claims.SessionID())
	if err != nil {
		if domainerrors.Is(err, store.ErrNotFound) {
			return nil, nil, domainerrors.Authentication("Invalid or expired session")
		}
		return nil, nil, domainerrors.Database(err)
	}
	if !session.IsValid(time.Now()) {
		return nil, nil, domainerrors.Authentication("Invalid or expired session")
	}

	user, err := s.store.GetUser(ctx, session.UserID)
	if err != nil {
		if domainerrors.Is(err, store.ErrNotFound) {
			return nil, nil, domainerrors.Authentication("Invalid or expired session")
		}
		return nil, nil, domainerrors.Database(err)
	}

	return user, session, nil
}

// Logout revokes a session. Revoking an already-revoked session is not
// an error, so logout stays idempotent.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if err := s.store.RevokeSession(ctx, sessionID); err != nil {
		if domainerrors.Is(err, store.ErrNotFound) {
			return nil
		}
		return domainerrors.Database(err)
	}

	if s.logger != nil {
		s.logger.Info("User logged out", "session_id", sessionID)
	}

	return nil
}

// RequestPasswordReset issues a single-use reset token for the account,
// if one exists. The caller always gets the same answer either way; the
// token itself is written to the server log in place of an email.
func (s *AuthService) RequestPasswordReset(ctx context.Context, req ResetPasswordRequest) error {
	if err := validate.Validate(req); err != nil {
		return err
	}

	user, err := s.store.GetUserByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if domainerrors.Is(err, store.ErrNotFound) {
			if s.logger != nil {
				s.logger.Debug("Password reset requested for unknown email")
			}
			return nil
		}
		return domainerrors.Database(err)
	}

	token, err := auth.GenerateResetToken()
	if err != nil {
		return fmt.Errorf("generate reset token: %w", err)
	}

	resetID, err := id.Generate("reset")
	if err != nil {
		return fmt.Errorf("generate reset ID: %w", err)
	}

	now := time.Now()
	reset := &domain.PasswordReset{
		ID:        resetID,
		UserID:    user.ID,
		TokenHash: auth.HashResetToken(token),
		CreatedAt: now,
		ExpiresAt: now.Add(resetTokenDuration),
	}

	if err := s.store.CreatePasswordReset(ctx, reset); err != nil {
		return domainerrors.Database(err)
	}

	// No mailer: the operator reads the token out of the log and
	// relays it to the user.
	if s.logger != nil {
		s.logger.Info("Password reset token issued",
			"user_id", user.ID,
			"token", token,
			"expires_at", reset.ExpiresAt.UTC().Format(time.RFC3339),
		)
	}

	return nil
}

// UpdatePassword changes a password given one of two proofs: a valid
// unused reset token, or a session (userID) plus the current password.
// On success every other session for the user is revoked; sessionID
// names the caller's own session so it survives a logged-in change, and
// is empty on the reset-token path.
func (s *AuthService) UpdatePassword(ctx context.Context, userID, sessionID string, req UpdatePasswordRequest) error {
	if err := validate.Validate(req); err != nil {
		return err
	}

	var targetUserID string

	switch {
	case req.ResetToken != "":
		reset, err := s.consumeResetToken(ctx, req.ResetToken)
		if err != nil {
			return err
		}
		targetUserID = reset.UserID

	case userID != "":
		if req.CurrentPassword == "" {
			return domainerrors.Validation("current_password is required")
		}

		user, err := s.store.GetUser(ctx, userID)
		if err != nil {
			if domainerrors.Is(err, store.ErrNotFound) {
				return domainerrors.Authentication("Invalid or expired session")
			}
			return domainerrors.Database(err)
		}

		valid, err := auth.VerifyPassword(user.PasswordHash, req.CurrentPassword)
		if err != nil {
			return fmt.Errorf("verify password: %w", err)
		}
		if !valid {
			return domainerrors.Authentication("Current password is incorrect")
		}
		targetUserID = userID

	default:
		return domainerrors.Authentication("A session or reset token is required")
	}

	newHash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.store.UpdateUserPassword(ctx, targetUserID, newHash); err != nil {
		if domainerrors.Is(err, store.ErrNotFound) {
			return domainerrors.Authentication("Invalid or expired session")
		}
		return domainerrors.Database(err)
	}

	revoked, err := s.store.RevokeUserSessions(ctx, targetUserID, sessionID)
	if err != nil {
		return domainerrors.Database(err)
	}

	if s.logger != nil {
		s.logger.Info("Password updated",
			"user_id", targetUserID,
			"sessions_revoked", revoked,
		)
	}

	return nil
}

// consumeResetToken validates and burns a reset token. Marking the row
// used is conditional on it being unused, so two concurrent redemptions
// of the same token produce exactly one winner.
func (s *AuthService) consumeResetToken(ctx context.Context, token string) (*domain.PasswordReset, error) {
	reset, err := s.store.GetPasswordReset(ctx, auth.HashResetToken(token))
	if err != nil {
		if domainerrors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.Authentication("Invalid or expired reset token")
		}
		return nil, domainerrors.Database(err)
	}

	if !reset.IsUsable(time.Now()) {
		return nil, domainerrors.Authentication("Invalid or expired reset token")
	}

	if err := s.store.MarkPasswordResetUsed(ctx, reset.ID); err != nil {
		if domainerrors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.Authentication("Invalid or expired reset token")
		}
		return nil, domainerrors.Database(err)
	}

	return reset, nil
}

// CleanupExpired removes expired sessions and reset tokens. Run
// periodically as a background job.
func (s *AuthService) CleanupExpired(ctx context.Context) error {
	sessions, err := s.store.DeleteExpiredSessions(ctx)
	if err != nil {
		return domainerrors.Database(err)
	}

	resets, err := s.store.DeleteExpiredPasswordResets(ctx)
	if err != nil {
		return domainerrors.Database(err)
	}

	if s.logger != nil && (sessions > 0 || resets > 0) {
		s.logger.Info("Cleaned up expired auth records",
			"sessions", sessions,
			"password_resets", resets,
		)
	}

	return nil
}
