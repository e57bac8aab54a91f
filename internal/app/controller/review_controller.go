package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/ikkim/bookshelf-backend/internal/app/service"
	"github.com/ikkim/bookshelf-backend/internal/middleware"
	ws "github.com/ikkim/bookshelf-backend/internal/websocket"
)

type ReviewController struct {
	reviewService  service.ReviewService
	catalogService service.CatalogService
	hub            *ws.Hub
	upgrader       *websocket.Upgrader
}

// NewReviewController wires review endpoints. A nil hub disables the live feed.
func NewReviewController(
	reviewService service.ReviewService,
	catalogService service.CatalogService,
	hub *ws.Hub,
	upgrader *websocket.Upgrader,
) *ReviewController {
	return &ReviewController{
		reviewService:  reviewService,
		catalogService: catalogService,
		hub:            hub,
		upgrader:       upgrader,
	}
}

type AddReviewRequest struct {
	ProductID uint   `json:"productId" binding:"required"`
	Text      string `json:"text"`
	Rating    int    `json:"rating"`
}

// AddReview stores a review by the caller
// POST /api/customer/add-review
func (ctrl *ReviewController) AddReview(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req AddReviewRequest
	if !bindJSON(c, &req, "add review") {
		return
	}

	review, err := ctrl.reviewService.AddReview(userID, req.ProductID, req.Text, req.Rating)
	if err != nil {
		respondError(c, err, "add review for product")
		return
	}

	login, _ := middleware.GetUserLogin(c)
	log.Info("Review created", map[string]interface{}{
		"review_id":  review.ID,
		"product_id": review.ProductID,
		"login":      login,
	})
	c.JSON(http.StatusCreated, review)
}

// AverageRating returns the product's mean rating
// GET /api/customer/average-rating/:productId
func (ctrl *ReviewController) AverageRating(c *gin.Context) {
	productID, ok := parseID(c, "productId")
	if !ok {
		return
	}

	summary, err := ctrl.reviewService.AverageRating(productID)
	if err != nil {
		respondError(c, err, "get average rating for product")
		return
	}
	c.JSON(http.StatusOK, summary)
}

// ReviewFeed upgrades to a websocket that receives the product's new reviews
// GET /api/customer/ws/reviews/:productId
func (ctrl *ReviewController) ReviewFeed(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	productID, ok := parseID(c, "productId")
	if !ok {
		return
	}
	if _, err := ctrl.catalogService.Get(productID); err != nil {
		respondError(c, err, "subscribe to product reviews")
		return
	}
	if ctrl.hub == nil {
		c.AbortWithStatus(http.StatusServiceUnavailable)
		return
	}

	userID, _ := middleware.GetUserID(c)
	if err := ctrl.hub.Subscribe(ctrl.upgrader, c.Writer, c.Request, productID, userID); err != nil {
		// The upgrader has already written the handshake error
		log.Warn("WebSocket upgrade failed", map[string]interface{}{
			"product_id": productID,
			"error":      err.Error(),
		})
		return
	}

	log.Info("Review feed subscribed", map[string]interface{}{
		"product_id": productID,
	})
}
