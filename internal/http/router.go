package http

import (
	"github.com/gin-gonic/gin"

	"github.com/openshelf/openshelf/internal/auth"
	"github.com/openshelf/openshelf/internal/demo"
)

// NewRouter wires all endpoints. Middleware order matters: CSRF runs
// before session load so the session context is not overwritten by CSRF's
// request replacement.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	if cfg.DemoMode {
		router.Use(demo.NewMiddleware(true).Handler())
	}
	if len(cfg.CSRFSecret) > 0 {
		router.Use(auth.CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies))
	}
	if cfg.SessionManager != nil {
		router.Use(cfg.SessionManager.SessionLoadSave())
	}

	middleware := auth.NewMiddleware(cfg.SessionManager)
	requireAuth := middleware.RequireAuth()
	requireAdmin := middleware.RequireAdmin()

	healthController := NewHealthController(cfg.Library, cfg.Submissions, cfg.Version)
	booksController := NewBooksController(cfg.BooksService, cfg.LendingService, cfg.AuthService)
	authController := NewAuthController(cfg.AuthService, cfg.SessionManager)
	usersController := NewUsersController(cfg.UsersService, cfg.AuthService)
	settingsController := NewSettingsController(cfg.SettingsRepo, cfg.AuthService)
	activitiesController := NewActivitiesController(cfg.ActivitiesRepo, cfg.AuthService)
	submissionsController := NewSubmissionsController(cfg.SubmissionsRepo, cfg.Recorder, cfg.AuthService)

	api := router.Group("/api")

	api.GET("/health", healthController.Status)

	booksGroup := api.Group("/books")
	booksGroup.GET("", booksController.List)
	booksGroup.GET("/borrowed", requireAuth, booksController.Borrowed)
	booksGroup.GET("/export", booksController.Export)
	booksGroup.GET("/:id", booksController.Get)
	booksGroup.POST("", booksController.Create)
	booksGroup.PUT("/:id", booksController.Update)
	booksGroup.DELETE("/:id", booksController.Delete)
	booksGroup.POST("/:id/restore", booksController.Restore)
	booksGroup.DELETE("", requireAdmin, booksController.DeleteAll)
	booksGroup.POST("/import", booksController.Import)
	booksGroup.POST("/:id/borrow", requireAuth, booksController.Borrow)
	booksGroup.POST("/:id/return", requireAuth, booksController.Return)

	if cfg.TaskClient != nil {
		enrichmentController := NewEnrichmentController(cfg.BooksService, cfg.TaskClient, cfg.CoverCache)
		booksGroup.POST("/:id/enrich", requireAdmin, enrichmentController.EnrichBook)
		booksGroup.POST("/enrich", requireAdmin, enrichmentController.EnrichAll)
		if cfg.CoverCache != nil {
			booksGroup.GET("/:id/cover", enrichmentController.Cover)
		}
	}

	authGroup := api.Group("/auth")
	authGroup.POST("/register", authController.Register)
	if cfg.LoginLimiter != nil {
		authGroup.POST("/login", auth.LoginRateLimit(cfg.LoginLimiter), authController.Login)
	} else {
		authGroup.POST("/login", authController.Login)
	}
	authGroup.POST("/logout", authController.Logout)
	authGroup.POST("/check-user", authController.CheckUser)
	authGroup.POST("/verify-admin-password", requireAdmin, authController.VerifyAdminPassword)

	usersGroup := api.Group("/users", requireAdmin)
	usersGroup.GET("", usersController.List)
	usersGroup.GET("/:id", usersController.Get)
	usersGroup.POST("", usersController.Create)
	usersGroup.PUT("/:id", usersController.Update)
	usersGroup.DELETE("/:id", usersController.Delete)
	usersGroup.POST("/:id/restore", usersController.Restore)
	usersGroup.DELETE("", usersController.DeleteAll)

	settingsGroup := api.Group("/settings")
	settingsGroup.GET("", settingsController.List)
	settingsGroup.GET("/:key", settingsController.Get)
	settingsGroup.POST("", settingsController.Upsert)
	settingsGroup.PUT("/:key", settingsController.Update)
	settingsGroup.DELETE("/:key", settingsController.Delete)
	settingsGroup.DELETE("", requireAdmin, settingsController.DeleteAll)

	activitiesGroup := api.Group("/activities")
	activitiesGroup.GET("", activitiesController.List)
	activitiesGroup.POST("", activitiesController.Create)
	activitiesGroup.DELETE("/:id", activitiesController.Delete)
	activitiesGroup.DELETE("", requireAdmin, activitiesController.DeleteAll)

	submissionsGroup := api.Group("/submissions")
	submissionsGroup.POST("/rating", submissionsController.SubmitRating)
	submissionsGroup.POST("/contact", submissionsController.SubmitContact)
	submissionsGroup.GET("/ratings", requireAdmin, submissionsController.ListRatings)
	submissionsGroup.GET("/contacts", requireAdmin, submissionsController.ListContacts)
	submissionsGroup.PUT("/ratings/:id/reply", requireAdmin, submissionsController.ReplyToRating)
	submissionsGroup.DELETE("/ratings", requireAdmin, submissionsController.DeleteAllRatings)

	notificationsGroup := api.Group("/notifications", requireAdmin)
	notificationsGroup.GET("", submissionsController.ListNotifications)
	notificationsGroup.PUT("/:id/read", submissionsController.MarkNotificationRead)

	return router
}
