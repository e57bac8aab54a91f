package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/bookshelf-backend/internal/app/service"
)

type AdminUserController struct {
	userService service.UserService
}

func NewAdminUserController(userService service.UserService) *AdminUserController {
	return &AdminUserController{userService: userService}
}

// List GET /api/admin/users
func (ctrl *AdminUserController) List(c *gin.Context) {
	users, err := ctrl.userService.List()
	if err != nil {
		respondError(c, err, "list users")
		return
	}
	c.JSON(http.StatusOK, users)
}

// Get GET /api/admin/users/:id
func (ctrl *AdminUserController) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	user, err := ctrl.userService.Get(id)
	if err != nil {
		respondError(c, err, "get user")
		return
	}
	c.JSON(http.StatusOK, user)
}

// Create POST /api/admin/users
func (ctrl *AdminUserController) Create(c *gin.Context) {
	var input service.UserInput
	if !bindJSON(c, &input, "create user") {
		return
	}

	user, err := ctrl.userService.Create(input)
	if err != nil {
		respondError(c, err, "create user")
		return
	}
	c.JSON(http.StatusCreated, user)
}

// Replace PUT /api/admin/users/:id
func (ctrl *AdminUserController) Replace(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var input service.UserInput
	if !bindJSON(c, &input, "replace user") {
		return
	}

	if err := ctrl.userService.Replace(id, input); err != nil {
		respondError(c, err, "replace user")
		return
	}
	c.Status(http.StatusNoContent)
}

// Delete DELETE /api/admin/users/:id
func (ctrl *AdminUserController) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := ctrl.userService.Delete(id); err != nil {
		respondError(c, err, "delete user")
		return
	}
	c.Status(http.StatusNoContent)
}

// Roles GET /api/admin/roles
func (ctrl *AdminUserController) Roles(c *gin.Context) {
	roles, err := ctrl.userService.Roles()
	if err != nil {
		respondError(c, err, "list roles")
		return
	}
	c.JSON(http.StatusOK, roles)
}
