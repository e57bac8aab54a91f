package controller

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/bookshelf-backend/internal/app/repository"
	"github.com/ikkim/bookshelf-backend/internal/app/service"
	"github.com/ikkim/bookshelf-backend/internal/middleware"
)

// CatalogController serves the public storefront
type CatalogController struct {
	catalogService service.CatalogService
}

func NewCatalogController(catalogService service.CatalogService) *CatalogController {
	return &CatalogController{catalogService: catalogService}
}

// Browse lists catalog items with optional filters
// GET /api/customer/catalog?category=&searchQuery=&sortBy=price_asc|price_desc
func (ctrl *CatalogController) Browse(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	filter := repository.CatalogFilter{
		Category: strings.TrimSpace(c.Query("category")),
		Search:   strings.TrimSpace(c.Query("searchQuery")),
		SortBy:   c.Query("sortBy"),
	}

	items, err := ctrl.catalogService.Browse(filter)
	if err != nil {
		respondError(c, err, "browse catalog")
		return
	}

	log.Debug("Catalog browsed", map[string]interface{}{
		"count": len(items),
	})
	c.JSON(http.StatusOK, items)
}

// ProductDetails returns an item with its reviews
// GET /api/customer/product-details/:id
func (ctrl *CatalogController) ProductDetails(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	details, err := ctrl.catalogService.ProductDetails(id)
	if err != nil {
		respondError(c, err, "get product details")
		return
	}
	c.JSON(http.StatusOK, details)
}
