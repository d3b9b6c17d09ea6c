package auth

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/openshelf/openshelf/internal/activity"
	"github.com/openshelf/openshelf/internal/apperr"
	"github.com/openshelf/openshelf/internal/config"
	userrepo "github.com/openshelf/openshelf/internal/database/users"
	"github.com/openshelf/openshelf/internal/entities"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Role-based landing pages returned by Login.
const (
	RedirectAdmin = "/dashboard.html"
	RedirectUser  = "/user-dashboard.html"
)

// RegisterInput carries the registration form fields.
type RegisterInput struct {
	Name             string `json:"name"`
	Email            string `json:"email"`
	Password         string `json:"password"`
	ConfirmPassword  string `json:"confirmPassword"`
	VerificationCode string `json:"verificationCode"`
}

// LoginInput carries the login form fields. The verification code is a
// second factor compared verbatim against the stored one.
type LoginInput struct {
	Email            string `json:"email"`
	Password         string `json:"password"`
	VerificationCode string `json:"verificationCode"`
}

// LoginResult is the sanitized outcome of a successful login.
type LoginResult struct {
	User       *entities.User
	RedirectTo string
}

type Service struct {
	users    *userrepo.Repository
	recorder *activity.Recorder
	cfg      config.Auth
}

func NewService(users *userrepo.Repository, recorder *activity.Recorder, cfg config.Auth) *Service {
	return &Service{
		users:    users,
		recorder: recorder,
		cfg:      cfg,
	}
}

// Register creates an account. The role is derived from the verification
// code prefix; the code itself is stored and required again at login.
func (s *Service) Register(input RegisterInput) (*entities.User, error) {
	name := strings.TrimSpace(input.Name)
	email := strings.TrimSpace(input.Email)

	if name == "" || email == "" || input.Password == "" || input.ConfirmPassword == "" || input.VerificationCode == "" {
		return nil, apperr.Validation("all fields are required")
	}
	if input.Password != input.ConfirmPassword {
		return nil, apperr.Validation("passwords do not match")
	}
	if !emailPattern.MatchString(email) {
		return nil, apperr.Validation("invalid email format")
	}
	if len(input.Password) < MinPasswordLength {
		return nil, apperr.Validation("password must be at least %d characters long", MinPasswordLength)
	}

	taken, err := s.users.EmailExists(email, 0)
	if err != nil {
		return nil, apperr.Internal(err, "checking existing user")
	}
	if taken {
		return nil, apperr.Conflict("user already exists")
	}

	role := entities.UserRoleUser
	if strings.HasPrefix(input.VerificationCode, s.cfg.AdminCodePrefix) {
		role = entities.UserRoleAdmin
	}

	hash, err := HashPassword(input.Password, s.cfg.BcryptCost)
	if err != nil {
		return nil, apperr.Internal(err, "hashing password")
	}

	user := &entities.User{
		Name:             name,
		Email:            email,
		PasswordHash:     hash,
		Role:             role,
		Status:           entities.UserStatusActive,
		VerificationCode: input.VerificationCode,
	}
	if err := s.users.Create(user); err != nil {
		return nil, apperr.Internal(err, "creating user")
	}

	s.recorder.Activity(fmt.Sprintf("New user registered: %s (%s) as %s", name, email, role), nil)
	s.recorder.Notify(entities.NotificationUserRegistered, fmt.Sprintf("New user: %s", name), &user.ID)
	return user, nil
}

// Login authenticates email + password + verification code. An unknown
// email is NotFound; a wrong password or code is Unauthenticated.
func (s *Service) Login(input LoginInput) (*LoginResult, error) {
	email := strings.TrimSpace(input.Email)
	if email == "" || input.Password == "" || input.VerificationCode == "" {
		return nil, apperr.Validation("all fields are required")
	}

	user, err := s.users.GetByEmail(email)
	if err != nil {
		if userrepo.IsNotFound(err) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, apperr.Internal(err, "loading user")
	}

	if err := CheckPassword(input.Password, user.PasswordHash); err != nil {
		return nil, apperr.Unauthenticated("invalid credentials")
	}
	if user.VerificationCode != input.VerificationCode {
		return nil, apperr.Unauthenticated("invalid verification code")
	}

	redirect := RedirectUser
	if user.Role == entities.UserRoleAdmin {
		redirect = RedirectAdmin
	}
	return &LoginResult{User: user, RedirectTo: redirect}, nil
}

// CheckUserExists is a boolean probe by email.
func (s *Service) CheckUserExists(email string) (bool, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return false, apperr.Validation("email is required")
	}
	exists, err := s.users.EmailExists(email, 0)
	if err != nil {
		return false, apperr.Internal(err, "checking user")
	}
	return exists, nil
}

// VerifyAdminCredentials re-checks the logged-in admin's own password and
// verification code. Every destructive bulk operation requires this.
func (s *Service) VerifyAdminCredentials(userID uint, password, code string) error {
	if password == "" {
		return apperr.Validation("password is required")
	}
	if code == "" {
		return apperr.Validation("verification code is required")
	}

	user, err := s.users.GetByID(userID)
	if err != nil {
		if userrepo.IsNotFound(err) {
			return apperr.NotFound("user not found")
		}
		return apperr.Internal(err, "loading user")
	}

	if err := CheckPassword(password, user.PasswordHash); err != nil {
		return apperr.Unauthenticated("incorrect password")
	}
	if user.VerificationCode != code {
		return apperr.Unauthenticated("invalid verification code")
	}
	return nil
}

// GetUserByID loads a user for session middleware lookups.
func (s *Service) GetUserByID(id uint) (*entities.User, error) {
	user, err := s.users.GetByID(id)
	if err != nil {
		if userrepo.IsNotFound(err) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, apperr.Internal(err, "loading user")
	}
	return user, nil
}
