package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/openshelf/openshelf/internal/activity"
	"github.com/openshelf/openshelf/internal/auth"
	"github.com/openshelf/openshelf/internal/books"
	"github.com/openshelf/openshelf/internal/config"
	"github.com/openshelf/openshelf/internal/covers"
	"github.com/openshelf/openshelf/internal/database"
	activityrepo "github.com/openshelf/openshelf/internal/database/activities"
	bookrepo "github.com/openshelf/openshelf/internal/database/books"
	borrowrepo "github.com/openshelf/openshelf/internal/database/borrowings"
	settingsrepo "github.com/openshelf/openshelf/internal/database/settings"
	submissionsrepo "github.com/openshelf/openshelf/internal/database/submissions"
	userrepo "github.com/openshelf/openshelf/internal/database/users"
	"github.com/openshelf/openshelf/internal/importers"
	"github.com/openshelf/openshelf/internal/lending"
	"github.com/openshelf/openshelf/internal/metadata"
	"github.com/openshelf/openshelf/internal/tasks"
	"github.com/openshelf/openshelf/internal/users"
)

// testServer bundles the router with everything a handler test needs to
// poke at state directly.
type testServer struct {
	router *gin.Engine
	books  *bookrepo.Repository
	subs   *submissionsrepo.Repository
}

func setupTestServer(t *testing.T) (*testServer, func()) {
	gin.SetMode(gin.TestMode)

	libraryPath := "./test_http_library_" + t.Name() + ".db"
	submissionsPath := "./test_http_submissions_" + t.Name() + ".db"

	library, err := database.NewDatabase(libraryPath)
	require.NoError(t, err)
	subs, err := database.NewSubmissionsDatabase(submissionsPath)
	require.NoError(t, err)

	booksRepo := bookrepo.NewRepository(library.DB)
	usersRepo := userrepo.NewRepository(library.DB)
	borrowingsRepo := borrowrepo.NewRepository(library.DB)
	settingsRepo := settingsrepo.NewRepository(library.DB)
	activitiesRepo := activityrepo.NewRepository(library.DB)
	subsRepo := submissionsrepo.NewRepository(subs.DB)

	recorder := activity.NewRecorder(activitiesRepo, subsRepo)
	authCfg := config.Auth{BcryptCost: bcrypt.MinCost, AdminCodePrefix: "ADM"}

	sqlDB, err := library.DB.DB()
	require.NoError(t, err)
	sessionManager, err := auth.NewSessionManager(sqlDB, authCfg)
	require.NoError(t, err)

	authService := auth.NewService(usersRepo, recorder, authCfg)

	coverCache, err := covers.NewCache(t.TempDir())
	require.NoError(t, err)

	enricher := metadata.NewEnricher(metadata.NewOpenLibraryClient(), booksRepo)
	taskClient, err := tasks.NewClient(libraryPath, tasks.DefaultConfig())
	require.NoError(t, err)
	taskClient.Register(
		tasks.NewEnrichBookQueue(enricher),
		tasks.NewEnrichAllBooksQueue(enricher),
	)

	router := NewRouter(RouterConfig{
		Library:         library,
		Submissions:     subs,
		BooksService:    books.NewService(booksRepo, importers.NewMultiFormat(), recorder),
		LendingService:  lending.NewService(booksRepo, borrowingsRepo, recorder, 14),
		AuthService:     authService,
		UsersService:    users.NewService(usersRepo, recorder, bcrypt.MinCost),
		SettingsRepo:    settingsRepo,
		ActivitiesRepo:  activitiesRepo,
		SubmissionsRepo: subsRepo,
		Recorder:        recorder,
		SessionManager:  sessionManager,
		TaskClient:      taskClient,
		CoverCache:      coverCache,
	})

	server := &testServer{
		router: router,
		books:  booksRepo,
		subs:   subsRepo,
	}

	cleanup := func() {
		taskClient.Close()
		library.Close()
		subs.Close()
		os.Remove(libraryPath)
		os.Remove(submissionsPath)
		os.Remove("./test_http_library_" + t.Name() + "-tasks.db")
	}

	return server, cleanup
}

// do performs a JSON request, attaching the given session cookies.
func (s *testServer) do(t *testing.T, method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		require.NoError(t, err)
	}

	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

// doRaw sends a request with a raw body, for import payloads.
func (s *testServer) doRaw(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

// register creates an account and returns its login session cookies.
func (s *testServer) register(t *testing.T, email, code string) []*http.Cookie {
	w := s.do(t, http.MethodPost, "/api/auth/register", map[string]string{
		"name":             "Test User",
		"email":            email,
		"password":         "password123",
		"confirmPassword":  "password123",
		"verificationCode": code,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email":            email,
		"password":         "password123",
		"verificationCode": code,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	return cookies
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, out any) {
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
}
