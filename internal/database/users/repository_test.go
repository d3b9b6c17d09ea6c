package users

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/openshelf/openshelf/internal/entities"
)

func setupTestDB(t *testing.T) (*Repository, func()) {
	dbPath := "./test_users_" + t.Name() + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.User{})
	require.NoError(t, err)

	repo := NewRepository(db)

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return repo, cleanup
}

func newUser(name, email string, role entities.UserRole) *entities.User {
	return &entities.User{
		Name:         name,
		Email:        email,
		PasswordHash: "$2a$10$fakehash",
		Role:         role,
		Status:       entities.UserStatusActive,
	}
}

func TestRepository_CreateAndGetByEmail(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	user := newUser("Alice", "alice@example.com", entities.UserRoleUser)
	require.NoError(t, repo.Create(user))

	got, err := repo.GetByEmail("alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.Name)
	assert.Equal(t, entities.UserRoleUser, got.Role)
}

func TestRepository_GetByEmail_IgnoresDeleted(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	user := newUser("Bob", "bob@example.com", entities.UserRoleUser)
	require.NoError(t, repo.Create(user))
	require.NoError(t, repo.SoftDelete(user.ID))

	_, err := repo.GetByEmail("bob@example.com")
	assert.True(t, IsNotFound(err))
}

func TestRepository_EmailExists(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	user := newUser("Alice", "alice@example.com", entities.UserRoleUser)
	require.NoError(t, repo.Create(user))

	exists, err := repo.EmailExists("alice@example.com", 0)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.EmailExists("alice@example.com", user.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	// A soft-deleted user frees the address for re-registration.
	require.NoError(t, repo.SoftDelete(user.ID))
	exists, err = repo.EmailExists("alice@example.com", 0)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRepository_List_Filters(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	require.NoError(t, repo.Create(newUser("Admin Anna", "anna@example.com", entities.UserRoleAdmin)))
	inactive := newUser("Mellow Mike", "mike@example.com", entities.UserRoleUser)
	inactive.Status = entities.UserStatusInactive
	require.NoError(t, repo.Create(inactive))
	require.NoError(t, repo.Create(newUser("Plain Pat", "pat@example.com", entities.UserRoleUser)))

	users, err := repo.List(ListFilter{Role: entities.UserRoleAdmin})
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "Admin Anna", users[0].Name)

	users, err = repo.List(ListFilter{Status: entities.UserStatusInactive})
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "Mellow Mike", users[0].Name)

	users, err = repo.List(ListFilter{Search: "pat"})
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "Plain Pat", users[0].Name)
}

func TestRepository_SoftDeleteAndRestore(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	user := newUser("Alice", "alice@example.com", entities.UserRoleUser)
	require.NoError(t, repo.Create(user))

	require.NoError(t, repo.SoftDelete(user.ID))
	users, err := repo.List(ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, users)

	require.NoError(t, repo.Restore(user.ID))
	got, err := repo.GetByID(user.ID)
	require.NoError(t, err)
	assert.False(t, got.IsDeleted)
	assert.Nil(t, got.DeletedAt)
}

func TestRepository_DeleteAll(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	require.NoError(t, repo.Create(newUser("A", "a@example.com", entities.UserRoleUser)))
	require.NoError(t, repo.Create(newUser("B", "b@example.com", entities.UserRoleUser)))
	require.NoError(t, repo.DeleteAll())

	users, err := repo.List(ListFilter{IncludeDeleted: true})
	require.NoError(t, err)
	assert.Empty(t, users)
}
