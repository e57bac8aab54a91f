package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/bookshelf-backend/internal/app/model"
	"github.com/ikkim/bookshelf-backend/internal/app/service"
)

type AdminCategoryController struct {
	categoryService service.CategoryService
}

func NewAdminCategoryController(categoryService service.CategoryService) *AdminCategoryController {
	return &AdminCategoryController{categoryService: categoryService}
}

// List GET /api/admin/categories
func (ctrl *AdminCategoryController) List(c *gin.Context) {
	categories, err := ctrl.categoryService.List()
	if err != nil {
		respondError(c, err, "list categories")
		return
	}
	c.JSON(http.StatusOK, categories)
}

// Get GET /api/admin/categories/:id
func (ctrl *AdminCategoryController) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	category, err := ctrl.categoryService.Get(id)
	if err != nil {
		respondError(c, err, "get category")
		return
	}
	c.JSON(http.StatusOK, category)
}

// Create POST /api/admin/categories
func (ctrl *AdminCategoryController) Create(c *gin.Context) {
	var category model.Category
	if !bindJSON(c, &category, "create category") {
		return
	}

	if err := ctrl.categoryService.Create(&category); err != nil {
		respondError(c, err, "create category")
		return
	}
	c.JSON(http.StatusCreated, category)
}

// Replace PUT /api/admin/categories/:id
func (ctrl *AdminCategoryController) Replace(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var category model.Category
	if !bindJSON(c, &category, "replace category") {
		return
	}

	if err := ctrl.categoryService.Replace(id, &category); err != nil {
		respondError(c, err, "replace category")
		return
	}
	c.Status(http.StatusNoContent)
}

// Delete DELETE /api/admin/categories/:id
func (ctrl *AdminCategoryController) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := ctrl.categoryService.Delete(id); err != nil {
		respondError(c, err, "delete category")
		return
	}
	c.Status(http.StatusNoContent)
}
