package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/openshelf/openshelf/internal/apperr"
	"github.com/openshelf/openshelf/internal/auth"
	"github.com/openshelf/openshelf/internal/database/activities"
	"github.com/openshelf/openshelf/internal/entities"
)

type ActivitiesController struct {
	activities *activities.Repository
	auth       *auth.Service
}

func NewActivitiesController(repo *activities.Repository, authService *auth.Service) *ActivitiesController {
	return &ActivitiesController{
		activities: repo,
		auth:       authService,
	}
}

// List returns the most recent activity entries, 50 by default.
func (controller *ActivitiesController) List(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(activities.DefaultLimit)))
	if err != nil || limit <= 0 {
		limit = activities.DefaultLimit
	}

	result, err := controller.activities.Recent(limit)
	if err != nil {
		respondAppError(c, apperr.Internal(err, "listing activities"))
		return
	}
	c.JSON(http.StatusOK, result)
}

type activityRequest struct {
	Description string `json:"description"`
	UserID      *uint  `json:"user_id"`
}

func (controller *ActivitiesController) Create(c *gin.Context) {
	var req activityRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Description == "" {
		respondBadRequest(c, "description is required")
		return
	}

	entry := &entities.Activity{Description: req.Description, UserID: req.UserID}
	if err := controller.activities.Log(entry); err != nil {
		respondAppError(c, apperr.Internal(err, "creating activity"))
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": entry.ID, "message": "Activity created successfully"})
}

func (controller *ActivitiesController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := controller.activities.Delete(id); err != nil {
		if activities.IsNotFound(err) {
			respondAppError(c, apperr.NotFound("activity not found"))
			return
		}
		respondAppError(c, apperr.Internal(err, "deleting activity"))
		return
	}
	respondSuccess(c, "Activity deleted successfully")
}

func (controller *ActivitiesController) DeleteAll(c *gin.Context) {
	if !verifyReauth(c, controller.auth) {
		return
	}

	if err := controller.activities.DeleteAll(); err != nil {
		respondAppError(c, apperr.Internal(err, "deleting all activities"))
		return
	}
	respondSuccess(c, "All activities deleted")
}
