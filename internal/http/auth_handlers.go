package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openshelf/openshelf/internal/auth"
)

type AuthController struct {
	auth     *auth.Service
	sessions *auth.SessionManager
}

func NewAuthController(authService *auth.Service, sessions *auth.SessionManager) *AuthController {
	return &AuthController{
		auth:     authService,
		sessions: sessions,
	}
}

func (controller *AuthController) Register(c *gin.Context) {
	var input auth.RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	user, err := controller.auth.Register(input)
	if err != nil {
		respondAppError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"id":      user.ID,
		"message": "User registered successfully",
		"role":    user.Role,
	})
}

func (controller *AuthController) Login(c *gin.Context) {
	var input auth.LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	result, err := controller.auth.Login(input)
	if err != nil {
		respondAppError(c, err)
		return
	}

	if err := controller.sessions.CreateSession(c.Request, result.User); err != nil {
		respondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Login successful",
		"user":       result.User,
		"redirectTo": result.RedirectTo,
	})
}

func (controller *AuthController) Logout(c *gin.Context) {
	if err := controller.sessions.DestroySession(c.Request); err != nil {
		respondAppError(c, err)
		return
	}
	respondSuccess(c, "Logged out successfully")
}

func (controller *AuthController) CheckUser(c *gin.Context) {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" {
		respondBadRequest(c, "email is required")
		return
	}

	exists, err := controller.auth.CheckUserExists(req.Email)
	if err != nil {
		respondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"exists": exists})
}

// VerifyAdminPassword lets the UI pre-check credentials before issuing a
// destructive bulk request. The wipe endpoints re-verify regardless.
func (controller *AuthController) VerifyAdminPassword(c *gin.Context) {
	var req reauthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "password and verification code are required")
		return
	}

	if err := controller.auth.VerifyAdminCredentials(auth.GetUserID(c), req.Password, req.VerificationCode); err != nil {
		respondAppError(c, err)
		return
	}
	respondSuccess(c, "Credentials verified successfully")
}
