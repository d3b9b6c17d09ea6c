package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openshelf/openshelf/internal/apperr"
	"github.com/openshelf/openshelf/internal/auth"
	"github.com/openshelf/openshelf/internal/database/settings"
)

type SettingsController struct {
	settings *settings.Repository
	auth     *auth.Service
}

func NewSettingsController(repo *settings.Repository, authService *auth.Service) *SettingsController {
	return &SettingsController{
		settings: repo,
		auth:     authService,
	}
}

// List returns all settings as a flat key/value map.
func (controller *SettingsController) List(c *gin.Context) {
	all, err := controller.settings.AllSettings()
	if err != nil {
		respondAppError(c, apperr.Internal(err, "listing settings"))
		return
	}
	c.JSON(http.StatusOK, all)
}

func (controller *SettingsController) Get(c *gin.Context) {
	key := c.Param("key")

	setting, err := controller.settings.GetSetting(key)
	if err != nil {
		if settings.IsNotFound(err) {
			respondAppError(c, apperr.NotFound("setting not found"))
			return
		}
		respondAppError(c, apperr.Internal(err, "loading setting"))
		return
	}
	c.JSON(http.StatusOK, gin.H{setting.Key: setting.Value})
}

type settingRequest struct {
	Key   string  `json:"key"`
	Value *string `json:"value"`
}

// Upsert creates or replaces a setting.
func (controller *SettingsController) Upsert(c *gin.Context) {
	var req settingRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Key == "" || req.Value == nil {
		respondBadRequest(c, "key and value are required")
		return
	}

	if err := controller.settings.SetSetting(req.Key, *req.Value); err != nil {
		respondAppError(c, apperr.Internal(err, "saving setting"))
		return
	}
	c.JSON(http.StatusCreated, SuccessResponse{Message: "Setting saved successfully"})
}

// Update changes an existing setting and 404s when it is absent.
func (controller *SettingsController) Update(c *gin.Context) {
	key := c.Param("key")

	var req settingRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Value == nil {
		respondBadRequest(c, "value is required")
		return
	}

	if err := controller.settings.UpdateSetting(key, *req.Value); err != nil {
		if settings.IsNotFound(err) {
			respondAppError(c, apperr.NotFound("setting not found"))
			return
		}
		respondAppError(c, apperr.Internal(err, "updating setting"))
		return
	}
	respondSuccess(c, "Setting updated successfully")
}

func (controller *SettingsController) Delete(c *gin.Context) {
	key := c.Param("key")

	if err := controller.settings.DeleteSetting(key); err != nil {
		if settings.IsNotFound(err) {
			respondAppError(c, apperr.NotFound("setting not found"))
			return
		}
		respondAppError(c, apperr.Internal(err, "deleting setting"))
		return
	}
	respondSuccess(c, "Setting deleted successfully")
}

func (controller *SettingsController) DeleteAll(c *gin.Context) {
	if !verifyReauth(c, controller.auth) {
		return
	}

	if err := controller.settings.DeleteAll(); err != nil {
		respondAppError(c, apperr.Internal(err, "deleting all settings"))
		return
	}
	respondSuccess(c, "All settings deleted")
}
