package http

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthAPI_RegisterRoleDerivation(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	w := server.do(t, http.MethodPost, "/api/auth/register", map[string]string{
		"name":             "Admin",
		"email":            "admin@example.com",
		"password":         "password123",
		"confirmPassword":  "password123",
		"verificationCode": "ADM777",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var body struct {
		ID   uint   `json:"id"`
		Role string `json:"role"`
	}
	decodeBody(t, w, &body)
	assert.Equal(t, "admin", body.Role)
}

func TestAuthAPI_RegisterDuplicate(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	payload := map[string]string{
		"name":             "Alice",
		"email":            "alice@example.com",
		"password":         "password123",
		"confirmPassword":  "password123",
		"verificationCode": "CODE1",
	}

	w := server.do(t, http.MethodPost, "/api/auth/register", payload)
	require.Equal(t, http.StatusCreated, w.Code)

	w = server.do(t, http.MethodPost, "/api/auth/register", payload)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAuthAPI_LoginStatuses(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	server.register(t, "alice@example.com", "CODE1")

	// unknown email
	w := server.do(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email": "nobody@example.com", "password": "password123", "verificationCode": "CODE1",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	// wrong password
	w = server.do(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email": "alice@example.com", "password": "wrongpassword", "verificationCode": "CODE1",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// wrong code
	w = server.do(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email": "alice@example.com", "password": "password123", "verificationCode": "WRONG",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthAPI_LoginResponseShape(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	server.register(t, "alice@example.com", "CODE1")

	w := server.do(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email": "alice@example.com", "password": "password123", "verificationCode": "CODE1",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Message    string         `json:"message"`
		RedirectTo string         `json:"redirectTo"`
		User       map[string]any `json:"user"`
	}
	decodeBody(t, w, &body)
	assert.Equal(t, "Login successful", body.Message)
	assert.Equal(t, "/user-dashboard.html", body.RedirectTo)
	assert.Equal(t, "alice@example.com", body.User["email"])

	// credentials never serialize
	_, hasHash := body.User["password_hash"]
	assert.False(t, hasHash)
	_, hasCode := body.User["verification_code"]
	assert.False(t, hasCode)
}

func TestAuthAPI_SessionRoundTrip(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	cookies := server.register(t, "alice@example.com", "CODE1")

	w := server.do(t, http.MethodGet, "/api/books/borrowed", nil, cookies...)
	assert.Equal(t, http.StatusOK, w.Code)

	w = server.do(t, http.MethodPost, "/api/auth/logout", nil, cookies...)
	require.Equal(t, http.StatusOK, w.Code)

	w = server.do(t, http.MethodGet, "/api/books/borrowed", nil, cookies...)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthAPI_CheckUser(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	server.register(t, "alice@example.com", "CODE1")

	w := server.do(t, http.MethodPost, "/api/auth/check-user", map[string]string{"email": "alice@example.com"})
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Exists bool `json:"exists"`
	}
	decodeBody(t, w, &body)
	assert.True(t, body.Exists)

	w = server.do(t, http.MethodPost, "/api/auth/check-user", map[string]string{"email": "nobody@example.com"})
	decodeBody(t, w, &body)
	assert.False(t, body.Exists)
}

func TestUsersAPI_AdminOnly(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	w := server.do(t, http.MethodGet, "/api/users", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	userCookies := server.register(t, "user@example.com", "CODE1")
	w = server.do(t, http.MethodGet, "/api/users", nil, userCookies...)
	assert.Equal(t, http.StatusForbidden, w.Code)

	adminCookies := server.register(t, "admin@example.com", "ADM42")
	w = server.do(t, http.MethodGet, "/api/users", nil, adminCookies...)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUsersAPI_CRUD(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	adminCookies := server.register(t, "admin@example.com", "ADM42")

	w := server.do(t, http.MethodPost, "/api/users", map[string]string{
		"name": "Bob", "email": "bob@example.com", "password": "password123",
	}, adminCookies...)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		ID uint `json:"id"`
	}
	decodeBody(t, w, &created)

	w = server.do(t, http.MethodPut, "/api/users/2", map[string]string{
		"name": "Robert", "email": "bob@example.com",
	}, adminCookies...)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = server.do(t, http.MethodDelete, "/api/users/2", nil, adminCookies...)
	require.Equal(t, http.StatusOK, w.Code)

	w = server.do(t, http.MethodPost, "/api/users/2/restore", nil, adminCookies...)
	require.Equal(t, http.StatusOK, w.Code)
}
