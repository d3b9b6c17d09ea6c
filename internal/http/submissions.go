package http

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/openshelf/openshelf/internal/activity"
	"github.com/openshelf/openshelf/internal/apperr"
	"github.com/openshelf/openshelf/internal/auth"
	"github.com/openshelf/openshelf/internal/database/submissions"
	"github.com/openshelf/openshelf/internal/entities"
)

type SubmissionsController struct {
	submissions *submissions.Repository
	recorder    *activity.Recorder
	auth        *auth.Service
}

func NewSubmissionsController(repo *submissions.Repository, recorder *activity.Recorder, authService *auth.Service) *SubmissionsController {
	return &SubmissionsController{
		submissions: repo,
		recorder:    recorder,
		auth:        authService,
	}
}

type ratingRequest struct {
	Stars   int    `json:"stars"`
	Message string `json:"message"`
	User    string `json:"user"`
	Email   string `json:"email"`
}

// SubmitRating accepts visitor star feedback. Message defaults to
// "N star rating" when blank.
func (controller *SubmissionsController) SubmitRating(c *gin.Context) {
	var req ratingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	if req.Stars < 1 || req.Stars > 5 {
		respondBadRequest(c, "stars must be between 1 and 5")
		return
	}

	message := strings.TrimSpace(req.Message)
	if message == "" {
		message = fmt.Sprintf("%d star rating", req.Stars)
	}

	rating := &entities.Rating{
		Stars:   req.Stars,
		Message: message,
		User:    strings.TrimSpace(req.User),
		Email:   strings.TrimSpace(req.Email),
	}
	if err := controller.submissions.CreateRating(rating); err != nil {
		respondAppError(c, apperr.Internal(err, "saving rating"))
		return
	}

	controller.recorder.Notify(entities.NotificationNewRating, message, &rating.ID)
	c.JSON(http.StatusOK, gin.H{"id": rating.ID, "message": "Rating submitted successfully"})
}

type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

func (controller *SubmissionsController) SubmitContact(c *gin.Context) {
	var req contactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Email) == "" || strings.TrimSpace(req.Message) == "" {
		respondBadRequest(c, "name, email and message are required")
		return
	}

	contact := &entities.ContactSubmission{
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.TrimSpace(req.Email),
		Message: strings.TrimSpace(req.Message),
	}
	if err := controller.submissions.CreateContact(contact); err != nil {
		respondAppError(c, apperr.Internal(err, "saving contact submission"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": contact.ID, "message": "Contact form submitted successfully"})
}

func (controller *SubmissionsController) ListRatings(c *gin.Context) {
	ratings, err := controller.submissions.ListRatings()
	if err != nil {
		respondAppError(c, apperr.Internal(err, "listing ratings"))
		return
	}
	c.JSON(http.StatusOK, ratings)
}

func (controller *SubmissionsController) ListContacts(c *gin.Context) {
	contacts, err := controller.submissions.ListContacts()
	if err != nil {
		respondAppError(c, apperr.Internal(err, "listing contact submissions"))
		return
	}
	c.JSON(http.StatusOK, contacts)
}

// ReplyToRating closes the loop on a rating by storing the admin's answer.
func (controller *SubmissionsController) ReplyToRating(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Reply string `json:"reply"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Reply) == "" {
		respondBadRequest(c, "reply is required")
		return
	}

	if err := controller.submissions.ReplyToRating(id, strings.TrimSpace(req.Reply)); err != nil {
		if submissions.IsNotFound(err) {
			respondAppError(c, apperr.NotFound("rating not found"))
			return
		}
		respondAppError(c, apperr.Internal(err, "replying to rating"))
		return
	}
	respondSuccess(c, "Reply saved successfully")
}

func (controller *SubmissionsController) DeleteAllRatings(c *gin.Context) {
	if !verifyReauth(c, controller.auth) {
		return
	}

	if err := controller.submissions.DeleteAllRatings(); err != nil {
		respondAppError(c, apperr.Internal(err, "deleting all ratings"))
		return
	}
	respondSuccess(c, "All ratings deleted")
}

func (controller *SubmissionsController) ListNotifications(c *gin.Context) {
	notifications, err := controller.submissions.ListNotifications()
	if err != nil {
		respondAppError(c, apperr.Internal(err, "listing notifications"))
		return
	}
	c.JSON(http.StatusOK, notifications)
}

func (controller *SubmissionsController) MarkNotificationRead(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := controller.submissions.MarkNotificationRead(id); err != nil {
		if submissions.IsNotFound(err) {
			respondAppError(c, apperr.NotFound("notification not found"))
			return
		}
		respondAppError(c, apperr.Internal(err, "marking notification read"))
		return
	}
	respondSuccess(c, "Notification marked as read")
}
