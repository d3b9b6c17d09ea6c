package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/openshelf/openshelf/internal/activity"
	"github.com/openshelf/openshelf/internal/auth"
	"github.com/openshelf/openshelf/internal/books"
	"github.com/openshelf/openshelf/internal/config"
	"github.com/openshelf/openshelf/internal/covers"
	"github.com/openshelf/openshelf/internal/database"
	"github.com/openshelf/openshelf/internal/database/activities"
	bookrepo "github.com/openshelf/openshelf/internal/database/books"
	"github.com/openshelf/openshelf/internal/database/borrowings"
	"github.com/openshelf/openshelf/internal/database/settings"
	submissionrepo "github.com/openshelf/openshelf/internal/database/submissions"
	userrepo "github.com/openshelf/openshelf/internal/database/users"
	webapp "github.com/openshelf/openshelf/internal/http"
	"github.com/openshelf/openshelf/internal/importers"
	"github.com/openshelf/openshelf/internal/lending"
	"github.com/openshelf/openshelf/internal/metadata"
	"github.com/openshelf/openshelf/internal/scheduler"
	"github.com/openshelf/openshelf/internal/tasks"
	"github.com/openshelf/openshelf/internal/users"
)

// ShutdownFunc runs after the HTTP server stops accepting connections
// and before the process exits.
type ShutdownFunc func()

// Run wires the full application and blocks until shutdown.
func Run(cfg *config.Config, version string) error {
	libraryDB, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("opening library database: %w", err)
	}
	defer libraryDB.Close()

	submissionsDB, err := database.NewSubmissionsDatabase(cfg.Database.SubmissionsPath)
	if err != nil {
		return fmt.Errorf("opening submissions database: %w", err)
	}
	defer submissionsDB.Close()

	booksRepo := bookrepo.NewRepository(libraryDB.DB)
	usersRepo := userrepo.NewRepository(libraryDB.DB)
	borrowingsRepo := borrowings.NewRepository(libraryDB.DB)
	settingsRepo := settings.NewRepository(libraryDB.DB)
	activitiesRepo := activities.NewRepository(libraryDB.DB)
	submissionsRepo := submissionrepo.NewRepository(submissionsDB.DB)

	recorder := activity.NewRecorder(activitiesRepo, submissionsRepo)

	booksService := books.NewService(booksRepo, importers.NewMultiFormat(), recorder)
	lendingService := lending.NewService(booksRepo, borrowingsRepo, recorder, cfg.Lending.LoanPeriodDays)
	authService := auth.NewService(usersRepo, recorder, cfg.Auth)
	usersService := users.NewService(usersRepo, recorder, cfg.Auth.BcryptCost)

	sqlDB, err := libraryDB.DB.DB()
	if err != nil {
		return fmt.Errorf("accessing library sql handle: %w", err)
	}
	sessionManager, err := auth.NewSessionManager(sqlDB, cfg.Auth)
	if err != nil {
		return fmt.Errorf("initialising session store: %w", err)
	}

	csrfSecret := cfg.Auth.SessionSecret
	if csrfSecret == "" {
		csrfSecret, err = auth.GenerateSecret()
		if err != nil {
			return fmt.Errorf("generating session secret: %w", err)
		}
		log.Println("AUTH_SESSION_SECRET not set, generated an ephemeral one; sessions will not survive restarts")
	}

	loginLimiter := auth.NewRateLimiter(0, 0, 0)

	coverCache, err := covers.NewCache(cfg.Database.CoversCacheDir)
	if err != nil {
		return fmt.Errorf("initialising cover cache: %w", err)
	}

	enricher := metadata.NewEnricher(metadata.NewOpenLibraryClient(), booksRepo)
	enricher.SetCoverInvalidator(coverCache)

	taskClient, err := tasks.NewClient(cfg.Database.Path, tasks.DefaultConfig())
	if err != nil {
		return fmt.Errorf("initialising task queue: %w", err)
	}
	defer taskClient.Close()
	taskClient.Register(
		tasks.NewEnrichBookQueue(enricher),
		tasks.NewEnrichAllBooksQueue(enricher),
	)

	taskCtx, cancelTasks := context.WithCancel(context.Background())
	defer cancelTasks()
	taskClient.Start(taskCtx)

	sweeper := scheduler.NewRetentionSweeper(activitiesRepo, cfg.Activities.RetentionDays, cfg.Activities.CleanupSchedule)
	if err := sweeper.Start(); err != nil {
		return fmt.Errorf("starting retention sweeper: %w", err)
	}

	router := webapp.NewRouter(webapp.RouterConfig{
		Library:     libraryDB,
		Submissions: submissionsDB,

		BooksService:   booksService,
		LendingService: lendingService,
		AuthService:    authService,
		UsersService:   usersService,

		SettingsRepo:    settingsRepo,
		ActivitiesRepo:  activitiesRepo,
		SubmissionsRepo: submissionsRepo,

		Recorder: recorder,

		SessionManager: sessionManager,
		CSRFSecret:     []byte(csrfSecret),
		SecureCookies:  cfg.Auth.SecureCookies,

		LoginLimiter: loginLimiter,

		TaskClient: taskClient,
		CoverCache: coverCache,

		DemoMode: cfg.Global.DemoMode,

		Version: version,
	})

	return Serve(router, cfg, func() {
		sweeper.Stop()
		loginLimiter.Stop()

		cancelTasks()
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		taskClient.Stop(stopCtx)
	})
}

// Serve starts the HTTP server and blocks until SIGINT or SIGTERM,
// then shuts down gracefully within the configured timeout.
func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) error {
	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		log.Printf("Received %s, shutting down", sig)
	}

	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if onShutdown != nil {
		onShutdown()
	}

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}

	log.Println("Server exiting")
	return nil
}
