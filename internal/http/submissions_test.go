package http

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openshelf/openshelf/internal/entities"
)

func TestSubmissionsAPI_RatingDefaultMessage(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	w := server.do(t, http.MethodPost, "/api/submissions/rating", map[string]any{
		"stars": 4, "user": "Visitor",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	adminCookies := server.register(t, "admin@example.com", "ADM42")
	w = server.do(t, http.MethodGet, "/api/submissions/ratings", nil, adminCookies...)
	require.Equal(t, http.StatusOK, w.Code)

	var ratings []entities.Rating
	decodeBody(t, w, &ratings)
	require.Len(t, ratings, 1)
	assert.Equal(t, "4 star rating", ratings[0].Message)
}

func TestSubmissionsAPI_RatingStarsRange(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	for _, stars := range []int{0, 6, -1} {
		w := server.do(t, http.MethodPost, "/api/submissions/rating", map[string]any{"stars": stars})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	}
}

func TestSubmissionsAPI_RatingEmitsNotification(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	w := server.do(t, http.MethodPost, "/api/submissions/rating", map[string]any{
		"stars": 5, "message": "Great library!",
	})
	require.Equal(t, http.StatusOK, w.Code)

	adminCookies := server.register(t, "admin@example.com", "ADM42")
	w = server.do(t, http.MethodGet, "/api/notifications", nil, adminCookies...)
	require.Equal(t, http.StatusOK, w.Code)

	var notifications []entities.Notification
	decodeBody(t, w, &notifications)

	var found bool
	for _, n := range notifications {
		if n.Type == entities.NotificationNewRating {
			found = true
			assert.Equal(t, "Great library!", n.Message)
			assert.False(t, n.IsRead)
		}
	}
	assert.True(t, found)
}

func TestSubmissionsAPI_ReplyToRating(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	w := server.do(t, http.MethodPost, "/api/submissions/rating", map[string]any{"stars": 3})
	require.Equal(t, http.StatusOK, w.Code)

	adminCookies := server.register(t, "admin@example.com", "ADM42")

	w = server.do(t, http.MethodPut, "/api/submissions/ratings/1/reply", map[string]string{
		"reply": "Thanks for the feedback",
	}, adminCookies...)
	require.Equal(t, http.StatusOK, w.Code)

	w = server.do(t, http.MethodGet, "/api/submissions/ratings", nil, adminCookies...)
	var ratings []entities.Rating
	decodeBody(t, w, &ratings)
	require.Len(t, ratings, 1)
	assert.Equal(t, "Thanks for the feedback", ratings[0].Reply)

	w = server.do(t, http.MethodPut, "/api/submissions/ratings/42/reply", map[string]string{
		"reply": "x",
	}, adminCookies...)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSubmissionsAPI_Contact(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	w := server.do(t, http.MethodPost, "/api/submissions/contact", map[string]string{
		"name": "Carol", "email": "carol@example.com", "message": "When do you open?",
	})
	require.Equal(t, http.StatusOK, w.Code)

	// missing fields rejected
	w = server.do(t, http.MethodPost, "/api/submissions/contact", map[string]string{
		"name": "Carol",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	adminCookies := server.register(t, "admin@example.com", "ADM42")
	w = server.do(t, http.MethodGet, "/api/submissions/contacts", nil, adminCookies...)
	require.Equal(t, http.StatusOK, w.Code)

	var contacts []entities.ContactSubmission
	decodeBody(t, w, &contacts)
	require.Len(t, contacts, 1)
	assert.Equal(t, "Carol", contacts[0].Name)
}

func TestNotificationsAPI_MarkRead(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	w := server.do(t, http.MethodPost, "/api/submissions/rating", map[string]any{"stars": 5})
	require.Equal(t, http.StatusOK, w.Code)

	adminCookies := server.register(t, "admin@example.com", "ADM42")

	w = server.do(t, http.MethodGet, "/api/notifications", nil, adminCookies...)
	var notifications []entities.Notification
	decodeBody(t, w, &notifications)
	require.NotEmpty(t, notifications)
	id := notifications[0].ID

	w = server.do(t, http.MethodPut, fmt.Sprintf("/api/notifications/%d/read", id), nil, adminCookies...)
	require.Equal(t, http.StatusOK, w.Code)

	w = server.do(t, http.MethodGet, "/api/notifications", nil, adminCookies...)
	decodeBody(t, w, &notifications)
	var seen bool
	for _, n := range notifications {
		if n.ID == id {
			seen = true
			assert.True(t, n.IsRead)
		}
	}
	assert.True(t, seen)
}
