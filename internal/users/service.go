// Package users is the admin-facing account CRUD. It mirrors the book
// lifecycle: soft delete with restore, includeDeleted listings, bulk wipe
// behind re-auth. Self-service registration lives in the auth package.
package users

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/openshelf/openshelf/internal/activity"
	"github.com/openshelf/openshelf/internal/apperr"
	"github.com/openshelf/openshelf/internal/auth"
	userrepo "github.com/openshelf/openshelf/internal/database/users"
	"github.com/openshelf/openshelf/internal/entities"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// UserInput carries the admin create/update form. Password is required on
// create and optional on update (blank keeps the current hash).
type UserInput struct {
	Name             string `json:"name"`
	Email            string `json:"email"`
	Password         string `json:"password"`
	Role             string `json:"role"`
	Status           string `json:"status"`
	VerificationCode string `json:"verificationCode"`
}

type Service struct {
	repo       *userrepo.Repository
	recorder   *activity.Recorder
	bcryptCost int
}

func NewService(repo *userrepo.Repository, recorder *activity.Recorder, bcryptCost int) *Service {
	return &Service{
		repo:       repo,
		recorder:   recorder,
		bcryptCost: bcryptCost,
	}
}

// Create adds an account on behalf of an admin. Role defaults to user,
// status to active.
func (s *Service) Create(input UserInput, actorID *uint) (*entities.User, error) {
	name := strings.TrimSpace(input.Name)
	email := strings.TrimSpace(input.Email)

	if name == "" || email == "" || input.Password == "" {
		return nil, apperr.Validation("name, email and password are required")
	}
	if !emailPattern.MatchString(email) {
		return nil, apperr.Validation("invalid email format")
	}

	role, err := parseRole(input.Role)
	if err != nil {
		return nil, err
	}
	status, err := parseStatus(input.Status)
	if err != nil {
		return nil, err
	}

	taken, err := s.repo.EmailExists(email, 0)
	if err != nil {
		return nil, apperr.Internal(err, "checking email uniqueness")
	}
	if taken {
		return nil, apperr.Conflict("email already exists")
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperr.Validation("%v", err)
	}

	user := &entities.User{
		Name:             name,
		Email:            email,
		PasswordHash:     hash,
		Role:             role,
		Status:           status,
		VerificationCode: strings.TrimSpace(input.VerificationCode),
	}
	if err := s.repo.Create(user); err != nil {
		return nil, apperr.Internal(err, "creating user")
	}

	s.recorder.Activity(fmt.Sprintf("User %s created", name), actorID)
	s.recorder.Notify(entities.NotificationUserRegistered, fmt.Sprintf("New user: %s", name), &user.ID)
	return user, nil
}

// Update replaces the mutable fields. A blank password keeps the stored
// hash; a non-blank one is rehashed.
func (s *Service) Update(id uint, input UserInput, actorID *uint) (*entities.User, error) {
	user, err := s.repo.GetByID(id)
	if err != nil {
		if userrepo.IsNotFound(err) {
			return nil, apperr.NotFound("user %d not found", id)
		}
		return nil, apperr.Internal(err, "loading user")
	}

	name := strings.TrimSpace(input.Name)
	email := strings.TrimSpace(input.Email)
	if name == "" || email == "" {
		return nil, apperr.Validation("name and email are required")
	}
	if !emailPattern.MatchString(email) {
		return nil, apperr.Validation("invalid email format")
	}

	role, err := parseRole(input.Role)
	if err != nil {
		return nil, err
	}
	status, err := parseStatus(input.Status)
	if err != nil {
		return nil, err
	}

	taken, err := s.repo.EmailExists(email, id)
	if err != nil {
		return nil, apperr.Internal(err, "checking email uniqueness")
	}
	if taken {
		return nil, apperr.Conflict("email already exists")
	}

	user.Name = name
	user.Email = email
	user.Role = role
	user.Status = status
	if code := strings.TrimSpace(input.VerificationCode); code != "" {
		user.VerificationCode = code
	}
	if input.Password != "" {
		hash, err := auth.HashPassword(input.Password, s.bcryptCost)
		if err != nil {
			return nil, apperr.Validation("%v", err)
		}
		user.PasswordHash = hash
	}

	if err := s.repo.Update(user); err != nil {
		return nil, apperr.Internal(err, "updating user")
	}

	s.recorder.Activity(fmt.Sprintf("User %s updated", name), actorID)
	return user, nil
}

func (s *Service) Get(id uint) (*entities.User, error) {
	user, err := s.repo.GetByID(id)
	if err != nil {
		if userrepo.IsNotFound(err) {
			return nil, apperr.NotFound("user %d not found", id)
		}
		return nil, apperr.Internal(err, "loading user")
	}
	return user, nil
}

func (s *Service) List(filter userrepo.ListFilter) ([]entities.User, error) {
	result, err := s.repo.List(filter)
	if err != nil {
		return nil, apperr.Internal(err, "listing users")
	}
	return result, nil
}

// Delete removes an account, soft by default.
func (s *Service) Delete(id uint, permanent bool, actorID *uint) error {
	user, err := s.repo.GetByID(id)
	if err != nil {
		if userrepo.IsNotFound(err) {
			return apperr.NotFound("user %d not found", id)
		}
		return apperr.Internal(err, "loading user")
	}

	if permanent {
		if err := s.repo.DeletePermanently(id); err != nil {
			return apperr.Internal(err, "deleting user")
		}
		s.recorder.Activity(fmt.Sprintf("User %s permanently deleted", user.Name), actorID)
		return nil
	}

	if err := s.repo.SoftDelete(id); err != nil {
		if userrepo.IsNotFound(err) {
			return apperr.NotFound("user %d not found", id)
		}
		return apperr.Internal(err, "deleting user")
	}
	s.recorder.Activity(fmt.Sprintf("User %s moved to trash", user.Name), actorID)
	return nil
}

// Restore clears the soft-delete flag.
func (s *Service) Restore(id uint, actorID *uint) (*entities.User, error) {
	if err := s.repo.Restore(id); err != nil {
		if userrepo.IsNotFound(err) {
			return nil, apperr.NotFound("user %d not found", id)
		}
		return nil, apperr.Internal(err, "restoring user")
	}
	user, err := s.repo.GetByID(id)
	if err != nil {
		return nil, apperr.Internal(err, "loading restored user")
	}
	s.recorder.Activity(fmt.Sprintf("User %s restored from trash", user.Name), actorID)
	return user, nil
}

// DeleteAll wipes the accounts table. Callers gate this behind admin
// re-auth.
func (s *Service) DeleteAll(actorID *uint) error {
	if err := s.repo.DeleteAll(); err != nil {
		return apperr.Internal(err, "deleting all users")
	}
	s.recorder.Activity("All users deleted", actorID)
	return nil
}

func parseRole(raw string) (entities.UserRole, error) {
	switch entities.UserRole(strings.TrimSpace(raw)) {
	case "":
		return entities.UserRoleUser, nil
	case entities.UserRoleAdmin:
		return entities.UserRoleAdmin, nil
	case entities.UserRoleUser:
		return entities.UserRoleUser, nil
	}
	return "", apperr.Validation("invalid role: %s", raw)
}

func parseStatus(raw string) (entities.UserStatus, error) {
	switch entities.UserStatus(strings.TrimSpace(raw)) {
	case "":
		return entities.UserStatusActive, nil
	case entities.UserStatusActive:
		return entities.UserStatusActive, nil
	case entities.UserStatusInactive:
		return entities.UserStatusInactive, nil
	}
	return "", apperr.Validation("invalid status: %s", raw)
}
