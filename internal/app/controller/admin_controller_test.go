package controller

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/bookshelf-backend/internal/app/model"
	"github.com/ikkim/bookshelf-backend/internal/app/service"
	apperrors "github.com/ikkim/bookshelf-backend/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupAdminTest(t *testing.T) (*gin.Engine, *testEnv) {
	env := setupTestEnv(t)
	categories := NewAdminCategoryController(env.Category)
	users := NewAdminUserController(env.User)

	router := gin.New()
	router.GET("/categories", categories.List)
	router.GET("/categories/:id", categories.Get)
	router.POST("/categories", categories.Create)
	router.PUT("/categories/:id", categories.Replace)
	router.DELETE("/categories/:id", categories.Delete)

	router.GET("/users", users.List)
	router.GET("/users/:id", users.Get)
	router.POST("/users", users.Create)
	router.PUT("/users/:id", users.Replace)
	router.DELETE("/users/:id", users.Delete)
	router.GET("/roles", users.Roles)
	return router, env
}

func TestAdminCategoryController_CRUD(t *testing.T) {
	router, _ := setupAdminTest(t)

	w := performRequest(router, http.MethodPost, "/categories", "", model.Category{Name: "Poetry"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var category model.Category
	decodeBody(t, w, &category)

	w = performRequest(router, http.MethodPost, "/categories", "", model.Category{Name: "Poetry"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, apperrors.ResourceAlreadyExists, errorCode(t, w))

	w = performRequest(router, http.MethodPost, "/categories", "", model.Category{Name: "  "})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = performRequest(router, http.MethodPut, fmt.Sprintf("/categories/%d", category.ID), "", model.Category{Name: "Verse"})
	require.Equal(t, http.StatusNoContent, w.Code)

	w = performRequest(router, http.MethodGet, fmt.Sprintf("/categories/%d", category.ID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeBody(t, w, &category)
	assert.Equal(t, "Verse", category.Name)

	w = performRequest(router, http.MethodGet, "/categories", "", nil)
	var all []model.Category
	decodeBody(t, w, &all)
	assert.Len(t, all, 1)

	w = performRequest(router, http.MethodDelete, fmt.Sprintf("/categories/%d", category.ID), "", nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = performRequest(router, http.MethodDelete, fmt.Sprintf("/categories/%d", category.ID), "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, apperrors.CategoryNotFound, errorCode(t, w))
}

func TestAdminUserController_CRUD(t *testing.T) {
	router, _ := setupAdminTest(t)

	w := performRequest(router, http.MethodPost, "/users", "", service.UserInput{
		Login:    "editor",
		Email:    "editor@example.com",
		Password: "secret",
		RoleID:   model.RoleIDAdmin,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var user model.User
	decodeBody(t, w, &user)
	assert.Equal(t, model.RoleIDAdmin, user.RoleID)

	w = performRequest(router, http.MethodPost, "/users", "", service.UserInput{
		Login:    "editor",
		Email:    "other@example.com",
		Password: "secret",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, apperrors.AuthLoginExists, errorCode(t, w))

	w = performRequest(router, http.MethodPut, fmt.Sprintf("/users/%d", user.ID), "", service.UserInput{
		Login: "editor",
		Email: "editor@example.org",
	})
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

	w = performRequest(router, http.MethodGet, fmt.Sprintf("/users/%d", user.ID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeBody(t, w, &user)
	assert.Equal(t, "editor@example.org", user.Email)
	assert.Equal(t, model.RoleIDUser, user.RoleID)

	w = performRequest(router, http.MethodDelete, fmt.Sprintf("/users/%d", user.ID), "", nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = performRequest(router, http.MethodGet, fmt.Sprintf("/users/%d", user.ID), "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminUserController_Errors(t *testing.T) {
	router, env := setupAdminTest(t)
	buyer := createUser(t, env.DB, "buyer", model.RoleIDUser)
	item := createItem(t, env.DB, "Dune", "10")
	_, err := env.Cart.AddToCart(buyer.ID, item.ID)
	require.NoError(t, err)

	w := performRequest(router, http.MethodDelete, fmt.Sprintf("/users/%d", buyer.ID), "", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, apperrors.UserInUse, errorCode(t, w))

	w = performRequest(router, http.MethodPost, "/users", "", service.UserInput{
		Login:    "ghost",
		Email:    "ghost@example.com",
		Password: "secret",
		RoleID:   99,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apperrors.AuthzRoleNotFound, errorCode(t, w))

	w = performRequest(router, http.MethodPost, "/users", "", service.UserInput{
		Login:    "verbose",
		Email:    "verbose@example.com",
		Password: strings.Repeat("p", 80),
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apperrors.ValidationInvalidInput, errorCode(t, w))

	w = performRequest(router, http.MethodPut, fmt.Sprintf("/users/%d", buyer.ID), "", service.UserInput{
		Login:    "buyer",
		Email:    "buyer@example.com",
		Password: strings.Repeat("p", 80),
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apperrors.ValidationInvalidInput, errorCode(t, w))

	w = performRequest(router, http.MethodPut, fmt.Sprintf("/users/%d", buyer.ID), "", service.UserInput{
		ID:    buyer.ID + 1,
		Login: "buyer",
		Email: "buyer@example.com",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apperrors.ValidationIDMismatch, errorCode(t, w))
}

func TestAdminUserController_Roles(t *testing.T) {
	router, _ := setupAdminTest(t)

	w := performRequest(router, http.MethodGet, "/roles", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var roles []model.Role
	decodeBody(t, w, &roles)
	require.Len(t, roles, 2)
	names := []string{roles[0].Name, roles[1].Name}
	assert.ElementsMatch(t, []string{model.RoleNameUser, model.RoleNameAdmin}, names)
}
