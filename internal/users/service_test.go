package users

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/openshelf/openshelf/internal/activity"
	"github.com/openshelf/openshelf/internal/apperr"
	"github.com/openshelf/openshelf/internal/auth"
	userrepo "github.com/openshelf/openshelf/internal/database/users"
	"github.com/openshelf/openshelf/internal/entities"
)

type nullLog struct{}

func (nullLog) Log(*entities.Activity) error { return nil }

type nullInbox struct{}

func (nullInbox) CreateNotification(*entities.Notification) error { return nil }

func setupService(t *testing.T) (*Service, func()) {
	dbPath := "./test_users_service_" + t.Name() + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.User{})
	require.NoError(t, err)

	service := NewService(
		userrepo.NewRepository(db),
		activity.NewRecorder(nullLog{}, nullInbox{}),
		bcrypt.MinCost,
	)

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return service, cleanup
}

func validInput() UserInput {
	return UserInput{
		Name:     "Bob",
		Email:    "bob@example.com",
		Password: "password123",
	}
}

func TestCreate_Defaults(t *testing.T) {
	service, cleanup := setupService(t)
	defer cleanup()

	user, err := service.Create(validInput(), nil)

	require.NoError(t, err)
	assert.Equal(t, entities.UserRoleUser, user.Role)
	assert.Equal(t, entities.UserStatusActive, user.Status)
	assert.NoError(t, auth.CheckPassword("password123", user.PasswordHash))
}

func TestCreate_ExplicitRoleAndStatus(t *testing.T) {
	service, cleanup := setupService(t)
	defer cleanup()

	input := validInput()
	input.Role = "admin"
	input.Status = "inactive"

	user, err := service.Create(input, nil)

	require.NoError(t, err)
	assert.Equal(t, entities.UserRoleAdmin, user.Role)
	assert.Equal(t, entities.UserStatusInactive, user.Status)
}

func TestCreate_Validation(t *testing.T) {
	service, cleanup := setupService(t)
	defer cleanup()

	cases := []struct {
		name   string
		mutate func(*UserInput)
	}{
		{"missing name", func(i *UserInput) { i.Name = "" }},
		{"missing password", func(i *UserInput) { i.Password = "" }},
		{"bad email", func(i *UserInput) { i.Email = "nope" }},
		{"bad role", func(i *UserInput) { i.Role = "owner" }},
		{"bad status", func(i *UserInput) { i.Status = "banned" }},
		{"short password", func(i *UserInput) { i.Password = "short" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := validInput()
			tc.mutate(&input)

			_, err := service.Create(input, nil)

			assert.True(t, apperr.IsKind(err, apperr.KindValidation))
		})
	}
}

func TestCreate_DuplicateEmail(t *testing.T) {
	service, cleanup := setupService(t)
	defer cleanup()

	_, err := service.Create(validInput(), nil)
	require.NoError(t, err)

	_, err = service.Create(validInput(), nil)

	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
}

func TestUpdate_BlankPasswordKeepsHash(t *testing.T) {
	service, cleanup := setupService(t)
	defer cleanup()

	user, err := service.Create(validInput(), nil)
	require.NoError(t, err)
	originalHash := user.PasswordHash

	input := validInput()
	input.Name = "Robert"
	input.Password = ""

	updated, err := service.Update(user.ID, input, nil)

	require.NoError(t, err)
	assert.Equal(t, "Robert", updated.Name)
	assert.Equal(t, originalHash, updated.PasswordHash)
}

func TestUpdate_NewPasswordRehashed(t *testing.T) {
	service, cleanup := setupService(t)
	defer cleanup()

	user, err := service.Create(validInput(), nil)
	require.NoError(t, err)

	input := validInput()
	input.Password = "newpassword456"

	updated, err := service.Update(user.ID, input, nil)

	require.NoError(t, err)
	assert.NoError(t, auth.CheckPassword("newpassword456", updated.PasswordHash))
}

func TestUpdate_NotFound(t *testing.T) {
	service, cleanup := setupService(t)
	defer cleanup()

	_, err := service.Update(42, validInput(), nil)

	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestDelete_SoftThenRestore(t *testing.T) {
	service, cleanup := setupService(t)
	defer cleanup()

	user, err := service.Create(validInput(), nil)
	require.NoError(t, err)

	require.NoError(t, service.Delete(user.ID, false, nil))

	deleted, err := service.Get(user.ID)
	require.NoError(t, err)
	assert.True(t, deleted.IsDeleted)

	restored, err := service.Restore(user.ID, nil)
	require.NoError(t, err)
	assert.False(t, restored.IsDeleted)
}

func TestDelete_Permanent(t *testing.T) {
	service, cleanup := setupService(t)
	defer cleanup()

	user, err := service.Create(validInput(), nil)
	require.NoError(t, err)

	require.NoError(t, service.Delete(user.ID, true, nil))

	_, err = service.Get(user.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestDeleteAll(t *testing.T) {
	service, cleanup := setupService(t)
	defer cleanup()

	_, err := service.Create(validInput(), nil)
	require.NoError(t, err)

	require.NoError(t, service.DeleteAll(nil))

	all, err := service.List(userrepo.ListFilter{IncludeDeleted: true})
	require.NoError(t, err)
	assert.Empty(t, all)
}
