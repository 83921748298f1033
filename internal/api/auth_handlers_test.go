package api

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sessionCookie digs the session cookie out of a response.
func sessionCookie(t *testing.T, cookies []*http.Cookie) *http.Cookie {
	t.Helper()

	for _, c := range cookies {
		if c.Name == sessionCookieName {
			return c
		}
	}
	t.Fatalf("no %s cookie in %v", sessionCookieName, cookies)
	return nil
}

func TestRegister(t *testing.T) {
	server := setupTestServer(t)

	w := doJSON(t, server, http.MethodPost, "/api/auth/register", map[string]string{
		"email":    "  Rider@Example.COM ",
		"password": "powder-day-8",
	}, nil)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	body := decodeBody(t, w)
	user, ok := body["user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "rider@example.com", user["email"])
	assert.NotEmpty(t, user["id"])

	// The response must never carry password material.
	assert.NotContains(t, w.Body.String(), "password")

	c := sessionCookie(t, w.Result().Cookies())
	assert.True(t, strings.HasPrefix(c.Value, "v4.local."))
	assert.True(t, c.HttpOnly)
	assert.Equal(t, "/", c.Path)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), c.Expires, time.Minute)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	server := setupTestServer(t)
	registerUser(t, server, "rider@example.com")

	// Same address, different case. The rejection must not confirm
	// that the account exists.
	w := doJSON(t, server, http.MethodPost, "/api/auth/register", map[string]string{
		"email":    "RIDER@example.com",
		"password": "another-pass-9",
	}, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, "REGISTRATION_FAILED", body["code"])
	assert.NotContains(t, strings.ToLower(body["error"].(string)), "exists")
}

func TestRegister_Validation(t *testing.T) {
	server := setupTestServer(t)

	tests := []struct {
		name string
		body map[string]string
	}{
		{"bad email", map[string]string{"email": "not-an-email", "password": "powder-day-8"}},
		{"short password", map[string]string{"email": "rider@example.com", "password": "short"}},
		{"missing password", map[string]string{"email": "rider@example.com"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, server, http.MethodPost, "/api/auth/register", tt.body, nil)

			assert.Equal(t, http.StatusBadRequest, w.Code)

			body := decodeBody(t, w)
			assert.Equal(t, "VALIDATION_ERROR", body["code"])
			assert.NotEmpty(t, body["details"])
		})
	}
}

func TestRegister_MalformedJSON(t *testing.T) {
	server := setupTestServer(t)

	w := doRaw(t, server, http.MethodPost, "/api/auth/register",
		"application/json", `{"email": "rider@`)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, "INVALID_JSON", body["code"])
}

func TestRegister_UnknownField(t *testing.T) {
	server := setupTestServer(t)

	w := doRaw(t, server, http.MethodPost, "/api/auth/register",
		"application/json", `{"email": "rider@example.com", "password": "powder-day-8", "admin": true}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, "VALIDATION_ERROR", body["code"])
}

func TestLogin(t *testing.T) {
	server := setupTestServer(t)
	registerUser(t, server, "rider@example.com")

	w := doJSON(t, server, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "rider@example.com",
		"password": "powder-day-8",
	}, nil)

	assert.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	user, ok := body["user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "rider@example.com", user["email"])

	c := sessionCookie(t, w.Result().Cookies())
	assert.NotEmpty(t, c.Value)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	server := setupTestServer(t)
	registerUser(t, server, "rider@example.com")

	wrongPassword := doJSON(t, server, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "rider@example.com",
		"password": "not-the-password",
	}, nil)
	unknownEmail := doJSON(t, server, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "ghost@example.com",
		"password": "powder-day-8",
	}, nil)

	// Wrong password and unknown account must be indistinguishable.
	assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	assert.Equal(t, http.StatusUnauthorized, unknownEmail.Code)
	assert.Equal(t, decodeBody(t, wrongPassword)["error"], decodeBody(t, unknownEmail)["error"])
	assert.Empty(t, wrongPassword.Result().Cookies())
}

func TestSession(t *testing.T) {
	server := setupTestServer(t)

	anon := doJSON(t, server, http.MethodGet, "/api/auth/session", nil, nil)
	assert.Equal(t, http.StatusOK, anon.Code)

	body := decodeBody(t, anon)
	assert.Nil(t, body["user"])
	assert.Equal(t, false, body["isAuthenticated"])

	cookies := registerUser(t, server, "rider@example.com")

	authed := doJSON(t, server, http.MethodGet, "/api/auth/session", nil, cookies)
	assert.Equal(t, http.StatusOK, authed.Code)

	body = decodeBody(t, authed)
	user, ok := body["user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "rider@example.com", user["email"])
	assert.Equal(t, true, body["isAuthenticated"])
}

func TestSession_GarbageCookie(t *testing.T) {
	server := setupTestServer(t)

	garbage := []*http.Cookie{{Name: sessionCookieName, Value: "v4.local.garbage"}}

	w := doJSON(t, server, http.MethodGet, "/api/auth/session", nil, garbage)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decodeBody(t, w)["isAuthenticated"])
}

func TestLogout(t *testing.T) {
	server := setupTestServer(t)
	cookies := registerUser(t, server, "rider@example.com")

	w := doJSON(t, server, http.MethodPost, "/api/auth/logout", nil, cookies)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Logged out successfully", decodeBody(t, w)["message"])

	cleared := sessionCookie(t, w.Result().Cookies())
	assert.Empty(t, cleared.Value)
	assert.Negative(t, cleared.MaxAge)

	// The old cookie is dead server-side, not just in the browser.
	after := doJSON(t, server, http.MethodGet, "/api/ski-specs", nil, cookies)
	assert.Equal(t, http.StatusUnauthorized, after.Code)
}

func TestResetPassword_SameAnswerEitherWay(t *testing.T) {
	server := setupTestServer(t)
	registerUser(t, server, "rider@example.com")

	known := doJSON(t, server, http.MethodPost, "/api/auth/reset-password",
		map[string]string{"email": "rider@example.com"}, nil)
	unknown := doJSON(t, server, http.MethodPost, "/api/auth/reset-password",
		map[string]string{"email": "ghost@example.com"}, nil)

	assert.Equal(t, http.StatusOK, known.Code)
	assert.Equal(t, http.StatusOK, unknown.Code)
	assert.Equal(t, known.Body.String(), unknown.Body.String())
}

func TestUpdatePassword_WithSession(t *testing.T) {
	server := setupTestServer(t)
	cookies := registerUser(t, server, "rider@example.com")

	w := doJSON(t, server, http.MethodPost, "/api/auth/update-password", map[string]string{
		"current_password": "powder-day-8",
		"new_password":     "corn-harvest-9",
	}, cookies)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	oldLogin := doJSON(t, server, http.MethodPost, "/api/auth/login", map[string]string{
		"email": "rider@example.com", "password": "powder-day-8",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, oldLogin.Code)

	newLogin := doJSON(t, server, http.MethodPost, "/api/auth/login", map[string]string{
		"email": "rider@example.com", "password": "corn-harvest-9",
	}, nil)
	assert.Equal(t, http.StatusOK, newLogin.Code)
}

func TestUpdatePassword_NoProof(t *testing.T) {
	server := setupTestServer(t)

	w := doJSON(t, server, http.MethodPost, "/api/auth/update-password", map[string]string{
		"new_password": "corn-harvest-9",
	}, nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "AUTHENTICATION_ERROR", decodeBody(t, w)["code"])
}

func TestUpdatePassword_WrongCurrentPassword(t *testing.T) {
	server := setupTestServer(t)
	cookies := registerUser(t, server, "rider@example.com")

	w := doJSON(t, server, http.MethodPost, "/api/auth/update-password", map[string]string{
		"current_password": "not-the-password",
		"new_password":     "corn-harvest-9",
	}, cookies)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
