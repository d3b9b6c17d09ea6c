package http

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openshelf/openshelf/internal/entities"
)

func TestUsersAPI_RequiresAdmin(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	w := server.do(t, http.MethodGet, "/api/users", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	readerCookies := server.register(t, "reader@example.com", "LIB-0001")
	w = server.do(t, http.MethodGet, "/api/users", nil, readerCookies...)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestUsersAPI_CreateListGet(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	adminCookies := server.register(t, "admin@example.com", "ADM-0001")

	w := server.do(t, http.MethodPost, "/api/users", map[string]string{
		"name":             "New Member",
		"email":            "member@example.com",
		"password":         "password123",
		"role":             "user",
		"verificationCode": "LIB-0002",
	}, adminCookies...)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		ID uint `json:"id"`
	}
	decodeBody(t, w, &created)
	require.NotZero(t, created.ID)

	w = server.do(t, http.MethodGet, "/api/users", nil, adminCookies...)
	require.Equal(t, http.StatusOK, w.Code)

	var listed []entities.User
	decodeBody(t, w, &listed)
	// the registered admin plus the created member
	assert.Len(t, listed, 2)

	w = server.do(t, http.MethodGet, "/api/users?role=admin&status=active", nil, adminCookies...)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decodeBody(t, w, &listed)
	require.Len(t, listed, 1)
	assert.Equal(t, "admin@example.com", listed[0].Email)

	w = server.do(t, http.MethodGet, "/api/users/999", nil, adminCookies...)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUsersAPI_DeleteAndRestore(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	adminCookies := server.register(t, "admin@example.com", "ADM-0001")

	w := server.do(t, http.MethodPost, "/api/users", map[string]string{
		"name":             "Ephemeral",
		"email":            "gone@example.com",
		"password":         "password123",
		"verificationCode": "LIB-0003",
	}, adminCookies...)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		ID uint `json:"id"`
	}
	decodeBody(t, w, &created)

	w = server.do(t, http.MethodDelete, fmt.Sprintf("/api/users/%d", created.ID), nil, adminCookies...)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = server.do(t, http.MethodPost, fmt.Sprintf("/api/users/%d/restore", created.ID), nil, adminCookies...)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var restored entities.User
	decodeBody(t, w, &restored)
	assert.False(t, restored.IsDeleted)
}

func TestUsersAPI_DeleteAllNeedsReauth(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	adminCookies := server.register(t, "admin@example.com", "ADM-0001")

	w := server.do(t, http.MethodDelete, "/api/users", map[string]string{
		"password":         "wrong-password",
		"verificationCode": "ADM-0001",
	}, adminCookies...)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = server.do(t, http.MethodDelete, "/api/users", map[string]string{
		"password":         "password123",
		"verificationCode": "ADM-0001",
	}, adminCookies...)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}
