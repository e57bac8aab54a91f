package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/bookshelf-backend/internal/app/service"
	"github.com/ikkim/bookshelf-backend/internal/middleware"
)

type CartController struct {
	cartService service.CartService
}

func NewCartController(cartService service.CartService) *CartController {
	return &CartController{cartService: cartService}
}

type AddToCartRequest struct {
	CatalogID uint `json:"catalogId" binding:"required"`
}

type UpdateCartRequest struct {
	PosOrderID uint `json:"posOrderId" binding:"required"`
	NewCount   *int `json:"newCount" binding:"required"`
}

// GetCart returns the caller's open order
// GET /api/customer/cart
func (ctrl *CartController) GetCart(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	cart, err := ctrl.cartService.GetCart(userID)
	if err != nil {
		respondError(c, err, "get cart")
		return
	}
	c.JSON(http.StatusOK, cart)
}

// AddToCart adds one unit of a catalog item
// POST /api/customer/add-to-cart
func (ctrl *CartController) AddToCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req AddToCartRequest
	if !bindJSON(c, &req, "add to cart") {
		return
	}

	cart, err := ctrl.cartService.AddToCart(userID, req.CatalogID)
	if err != nil {
		respondError(c, err, "add to cart")
		return
	}

	log.Info("Item added to cart", map[string]interface{}{
		"user_id":         userID,
		"catalog_item_id": req.CatalogID,
	})
	c.JSON(http.StatusOK, cart)
}

// UpdateCart sets a line's count; zero or less removes the line
// POST /api/customer/update-cart
func (ctrl *CartController) UpdateCart(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req UpdateCartRequest
	if !bindJSON(c, &req, "update cart") {
		return
	}

	cart, err := ctrl.cartService.UpdateCartLine(userID, req.PosOrderID, *req.NewCount)
	if err != nil {
		respondError(c, err, "update cart line")
		return
	}
	c.JSON(http.StatusOK, cart)
}

// Checkout completes the open order
// POST /api/customer/checkout
func (ctrl *CartController) Checkout(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	order, err := ctrl.cartService.Checkout(userID)
	if err != nil {
		respondError(c, err, "checkout")
		return
	}

	login, _ := middleware.GetUserLogin(c)
	log.Info("Order checked out", map[string]interface{}{
		"user_id":  userID,
		"login":    login,
		"order_id": order.ID,
	})
	c.JSON(http.StatusOK, order)
}
