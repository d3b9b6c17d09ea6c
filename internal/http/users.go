package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openshelf/openshelf/internal/auth"
	userrepo "github.com/openshelf/openshelf/internal/database/users"
	"github.com/openshelf/openshelf/internal/entities"
	"github.com/openshelf/openshelf/internal/users"
)

type UsersController struct {
	users *users.Service
	auth  *auth.Service
}

func NewUsersController(usersService *users.Service, authService *auth.Service) *UsersController {
	return &UsersController{
		users: usersService,
		auth:  authService,
	}
}

func (controller *UsersController) List(c *gin.Context) {
	filter := userrepo.ListFilter{
		Search:         c.Query("search"),
		Status:         entities.UserStatus(c.Query("status")),
		Role:           entities.UserRole(c.Query("role")),
		SortBy:         c.Query("sortBy"),
		SortDesc:       c.Query("sortOrder") != "asc",
		IncludeDeleted: boolQuery(c, "includeDeleted"),
	}

	result, err := controller.users.List(filter)
	if err != nil {
		respondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (controller *UsersController) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	user, err := controller.users.Get(id)
	if err != nil {
		respondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (controller *UsersController) Create(c *gin.Context) {
	var input users.UserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	user, err := controller.users.Create(input, auth.ActorID(c))
	if err != nil {
		respondAppError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": user.ID, "message": "User created successfully"})
}

func (controller *UsersController) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var input users.UserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	user, err := controller.users.Update(id, input, auth.ActorID(c))
	if err != nil {
		respondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (controller *UsersController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	err := controller.users.Delete(id, boolQuery(c, "permanent"), auth.ActorID(c))
	if err != nil {
		respondAppError(c, err)
		return
	}
	respondSuccess(c, "User deleted successfully")
}

func (controller *UsersController) Restore(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	user, err := controller.users.Restore(id, auth.ActorID(c))
	if err != nil {
		respondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (controller *UsersController) DeleteAll(c *gin.Context) {
	if !verifyReauth(c, controller.auth) {
		return
	}

	if err := controller.users.DeleteAll(auth.ActorID(c)); err != nil {
		respondAppError(c, err)
		return
	}
	respondSuccess(c, "All users deleted")
}
