package http

import (
	"github.com/openshelf/openshelf/internal/activity"
	"github.com/openshelf/openshelf/internal/auth"
	"github.com/openshelf/openshelf/internal/books"
	"github.com/openshelf/openshelf/internal/covers"
	"github.com/openshelf/openshelf/internal/database"
	"github.com/openshelf/openshelf/internal/database/activities"
	"github.com/openshelf/openshelf/internal/database/settings"
	"github.com/openshelf/openshelf/internal/database/submissions"
	"github.com/openshelf/openshelf/internal/lending"
	"github.com/openshelf/openshelf/internal/tasks"
	"github.com/openshelf/openshelf/internal/users"
)

// RouterConfig carries every dependency NewRouter needs. All fields are
// required unless noted.
type RouterConfig struct {
	// Stores (health checks only; controllers go through services/repos)
	Library     *database.Database
	Submissions *database.SubmissionsDatabase

	// Services
	BooksService   *books.Service
	LendingService *lending.Service
	AuthService    *auth.Service
	UsersService   *users.Service

	// Repositories served directly
	SettingsRepo    *settings.Repository
	ActivitiesRepo  *activities.Repository
	SubmissionsRepo *submissions.Repository

	// Shared side-effect sink
	Recorder *activity.Recorder

	// Sessions and CSRF
	SessionManager *auth.SessionManager
	CSRFSecret     []byte // empty disables CSRF (tests)
	SecureCookies  bool

	// Optional login throttle
	LoginLimiter *auth.RateLimiter

	// Optional background enrichment queue and cover cache
	TaskClient *tasks.Client
	CoverCache *covers.Cache

	// DemoMode blocks all write endpoints except the auth flow
	DemoMode bool

	Version string
}
