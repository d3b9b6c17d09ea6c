package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/openshelf/openshelf/internal/database"
)

type HealthResponse struct {
	Status  string            `json:"status"`
	Time    string            `json:"time"`
	Version string            `json:"version,omitempty"`
	Checks  map[string]string `json:"checks"`
}

type HealthController struct {
	library     *database.Database
	submissions *database.SubmissionsDatabase
	version     string
}

func NewHealthController(library *database.Database, submissions *database.SubmissionsDatabase, version string) *HealthController {
	return &HealthController{
		library:     library,
		submissions: submissions,
		version:     version,
	}
}

func (h *HealthController) Status(c *gin.Context) {
	checks := make(map[string]string)
	status := "healthy"

	checks["library_db"] = h.pingLibrary()
	checks["submissions_db"] = h.pingSubmissions()
	for _, v := range checks {
		if v != "ok" {
			status = "unhealthy"
		}
	}

	health := HealthResponse{
		Status:  status,
		Time:    time.Now().Format(time.RFC3339),
		Version: h.version,
		Checks:  checks,
	}

	statusCode := http.StatusOK
	if status != "healthy" {
		statusCode = http.StatusServiceUnavailable
	}
	c.JSON(statusCode, health)
}

func (h *HealthController) pingLibrary() string {
	if h.library == nil {
		return "not configured"
	}
	sqlDB, err := h.library.DB.DB()
	if err == nil {
		err = sqlDB.Ping()
	}
	if err != nil {
		return "error: " + err.Error()
	}
	return "ok"
}

func (h *HealthController) pingSubmissions() string {
	if h.submissions == nil {
		return "not configured"
	}
	sqlDB, err := h.submissions.DB.DB()
	if err == nil {
		err = sqlDB.Ping()
	}
	if err != nil {
		return "error: " + err.Error()
	}
	return "ok"
}
