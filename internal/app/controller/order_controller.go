package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/bookshelf-backend/internal/app/model"
	"github.com/ikkim/bookshelf-backend/internal/app/service"
)

// OrderController administers orders and their lines
type OrderController struct {
	orderService service.OrderService
}

func NewOrderController(orderService service.OrderService) *OrderController {
	return &OrderController{orderService: orderService}
}

// ListOrders GET /api/admin/orders
func (ctrl *OrderController) ListOrders(c *gin.Context) {
	orders, err := ctrl.orderService.List()
	if err != nil {
		respondError(c, err, "list orders")
		return
	}
	c.JSON(http.StatusOK, orders)
}

// GetOrder GET /api/admin/orders/:id
func (ctrl *OrderController) GetOrder(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	order, err := ctrl.orderService.Get(id)
	if err != nil {
		respondError(c, err, "get order")
		return
	}
	c.JSON(http.StatusOK, order)
}

// CreateOrder POST /api/admin/orders
func (ctrl *OrderController) CreateOrder(c *gin.Context) {
	var order model.Order
	if !bindJSON(c, &order, "create order") {
		return
	}

	if err := ctrl.orderService.Create(&order); err != nil {
		respondError(c, err, "create order")
		return
	}
	c.JSON(http.StatusCreated, order)
}

// ReplaceOrder PUT /api/admin/orders/:id
func (ctrl *OrderController) ReplaceOrder(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var order model.Order
	if !bindJSON(c, &order, "replace order") {
		return
	}

	if err := ctrl.orderService.Replace(id, &order); err != nil {
		respondError(c, err, "replace order")
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteOrder DELETE /api/admin/orders/:id
func (ctrl *OrderController) DeleteOrder(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := ctrl.orderService.Delete(id); err != nil {
		respondError(c, err, "delete order")
		return
	}
	c.Status(http.StatusNoContent)
}

// ListLines GET /api/admin/order-lines
func (ctrl *OrderController) ListLines(c *gin.Context) {
	lines, err := ctrl.orderService.ListLines()
	if err != nil {
		respondError(c, err, "list order lines")
		return
	}
	c.JSON(http.StatusOK, lines)
}

// GetLine GET /api/admin/order-lines/:id
func (ctrl *OrderController) GetLine(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	line, err := ctrl.orderService.GetLine(id)
	if err != nil {
		respondError(c, err, "get order line")
		return
	}
	c.JSON(http.StatusOK, line)
}

// CreateLine POST /api/admin/order-lines
func (ctrl *OrderController) CreateLine(c *gin.Context) {
	var line model.OrderLine
	if !bindJSON(c, &line, "create order line") {
		return
	}

	if err := ctrl.orderService.CreateLine(&line); err != nil {
		respondError(c, err, "create order line")
		return
	}
	c.JSON(http.StatusCreated, line)
}

// ReplaceLine PUT /api/admin/order-lines/:id
func (ctrl *OrderController) ReplaceLine(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var line model.OrderLine
	if !bindJSON(c, &line, "replace order line") {
		return
	}

	if err := ctrl.orderService.ReplaceLine(id, &line); err != nil {
		respondError(c, err, "replace order line")
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteLine DELETE /api/admin/order-lines/:id
func (ctrl *OrderController) DeleteLine(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := ctrl.orderService.DeleteLine(id); err != nil {
		respondError(c, err, "delete order line")
		return
	}
	c.Status(http.StatusNoContent)
}
