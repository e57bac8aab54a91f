package repository

import (
	"errors"
	"time"

	"github.com/ikkim/bookshelf-backend/internal/app/model"
	"github.com/ikkim/bookshelf-backend/pkg/logger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderRepository covers orders and their lines. The cart is the user's open order.
type OrderRepository interface {
	WithTx(tx *gorm.DB) OrderRepository

	FindAll() ([]model.Order, error)
	FindByID(id uint) (*model.Order, error)
	FindOpenByUser(userID uint) (*model.Order, error)
	FindOpenIDsByProduct(productID uint) ([]uint, error)
	CountOpenByUser(userID, exceptOrderID uint) (int64, error)
	Create(order *model.Order) error
	Update(order *model.Order) (int64, error)
	UpdateTotal(orderID uint, total decimal.Decimal) error
	UpdateStatus(orderID uint, status model.OrderStatus) error
	Delete(id uint) (int64, error)
	CountByUser(userID uint) (int64, error)
	DeleteEmptyOpenBefore(cutoff time.Time) (int64, error)

	FindAllLines() ([]model.OrderLine, error)
	FindLineByID(id uint) (*model.OrderLine, error)
	FindLine(orderID, productID uint) (*model.OrderLine, error)
	FindLines(orderID uint) ([]model.OrderLine, error)
	CreateLine(line *model.OrderLine) error
	UpdateLine(line *model.OrderLine) (int64, error)
	DeleteLine(id uint) (int64, error)
	CountLinesByProduct(productID uint) (int64, error)
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) WithTx(tx *gorm.DB) OrderRepository {
	return &orderRepository{db: tx}
}

func (r *orderRepository) FindAll() ([]model.Order, error) {
	logger.Debug("Finding all orders in database")

	var orders []model.Order
	err := r.db.Preload("Lines", func(db *gorm.DB) *gorm.DB {
		return db.Order("order_lines.id ASC")
	}).Preload("Lines.Product").
		Order("id ASC").
		Find(&orders).Error
	if err != nil {
		logger.Error("Failed to find orders in database", err)
		return nil, err
	}

	logger.Debug("Orders found in database", logger.Fields{
		"count": len(orders),
	})
	return orders, nil
}

func (r *orderRepository) FindByID(id uint) (*model.Order, error) {
	logger.Debug("Finding order by ID in database", logger.Fields{
		"order_id": id,
	})

	var order model.Order
	err := r.db.Preload("Lines", func(db *gorm.DB) *gorm.DB {
		return db.Order("order_lines.id ASC")
	}).Preload("Lines.Product").
		First(&order, id).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Error("Failed to find order by ID in database", err, logger.Fields{
				"order_id": id,
			})
		}
		return nil, err
	}

	logger.Debug("Order found by ID in database", logger.Fields{
		"order_id":    order.ID,
		"user_id":     order.UserID,
		"lines_count": len(order.Lines),
	})
	return &order, nil
}

func (r *orderRepository) FindOpenByUser(userID uint) (*model.Order, error) {
	var order model.Order
	err := r.db.Where("user_id = ? AND status = ?", userID, model.OrderStatusOpen).
		Order("id ASC").
		First(&order).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Error("Failed to find open order", err, logger.Fields{
				"user_id": userID,
			})
		}
		return nil, err
	}
	return &order, nil
}

// FindOpenIDsByProduct lists open orders holding a line for the product.
func (r *orderRepository) FindOpenIDsByProduct(productID uint) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&model.Order{}).
		Where("status = ?", model.OrderStatusOpen).
		Where("EXISTS (SELECT 1 FROM order_lines ol WHERE ol.order_id = orders.id AND ol.product_id = ?)", productID).
		Order("id ASC").
		Pluck("id", &ids).Error
	if err != nil {
		logger.Error("Failed to find open orders by product", err, logger.Fields{
			"product_id": productID,
		})
		return nil, err
	}
	return ids, nil
}

// CountOpenByUser counts the user's open orders other than exceptOrderID.
func (r *orderRepository) CountOpenByUser(userID, exceptOrderID uint) (int64, error) {
	var count int64
	err := r.db.Model(&model.Order{}).
		Where("user_id = ? AND status = ? AND id <> ?", userID, model.OrderStatusOpen, exceptOrderID).
		Count(&count).Error
	return count, err
}

func (r *orderRepository) Create(order *model.Order) error {
	logger.Debug("Creating order in database", logger.Fields{
		"user_id": order.UserID,
		"status":  order.Status,
	})

	if err := r.db.Omit("Lines", "User").Create(order).Error; err != nil {
		logger.Error("Failed to create order in database", err, logger.Fields{
			"user_id": order.UserID,
		})
		return err
	}

	logger.Debug("Order created in database", logger.Fields{
		"order_id": order.ID,
	})
	return nil
}

func (r *orderRepository) Update(order *model.Order) (int64, error) {
	result := r.db.Model(&model.Order{}).
		Where("id = ?", order.ID).
		Select("user_id", "total_sum", "status").
		Updates(order)
	if result.Error != nil {
		logger.Error("Failed to update order in database", result.Error, logger.Fields{
			"order_id": order.ID,
		})
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *orderRepository) UpdateTotal(orderID uint, total decimal.Decimal) error {
	err := r.db.Model(&model.Order{}).Where("id = ?", orderID).Update("total_sum", total).Error
	if err != nil {
		logger.Error("Failed to update order total", err, logger.Fields{
			"order_id": orderID,
		})
		return err
	}

	logger.Debug("Order total updated", logger.Fields{
		"order_id":  orderID,
		"total_sum": total.StringFixed(2),
	})
	return nil
}

func (r *orderRepository) UpdateStatus(orderID uint, status model.OrderStatus) error {
	err := r.db.Model(&model.Order{}).Where("id = ?", orderID).Update("status", status).Error
	if err != nil {
		logger.Error("Failed to update order status", err, logger.Fields{
			"order_id": orderID,
			"status":   status,
		})
	}
	return err
}

// Delete removes the order together with its lines.
func (r *orderRepository) Delete(id uint) (int64, error) {
	logger.Debug("Deleting order from database", logger.Fields{
		"order_id": id,
	})

	if err := r.db.Where("order_id = ?", id).Delete(&model.OrderLine{}).Error; err != nil {
		logger.Error("Failed to delete order lines from database", err, logger.Fields{
			"order_id": id,
		})
		return 0, err
	}

	result := r.db.Delete(&model.Order{}, id)
	if result.Error != nil {
		logger.Error("Failed to delete order from database", result.Error, logger.Fields{
			"order_id": id,
		})
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *orderRepository) CountByUser(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&model.Order{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

// DeleteEmptyOpenBefore removes open orders without lines last touched before cutoff.
func (r *orderRepository) DeleteEmptyOpenBefore(cutoff time.Time) (int64, error) {
	result := r.db.
		Where("status = ? AND updated_at < ?", model.OrderStatusOpen, cutoff).
		Where("NOT EXISTS (SELECT 1 FROM order_lines ol WHERE ol.order_id = orders.id)").
		Delete(&model.Order{})
	if result.Error != nil {
		logger.Error("Failed to delete abandoned carts", result.Error, logger.Fields{
			"cutoff": cutoff,
		})
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *orderRepository) FindAllLines() ([]model.OrderLine, error) {
	var lines []model.OrderLine
	if err := r.db.Preload("Product").Order("id ASC").Find(&lines).Error; err != nil {
		logger.Error("Failed to find order lines in database", err)
		return nil, err
	}
	return lines, nil
}

func (r *orderRepository) FindLineByID(id uint) (*model.OrderLine, error) {
	var line model.OrderLine
	if err := r.db.Preload("Product").First(&line, id).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Error("Failed to find order line by ID", err, logger.Fields{
				"order_line_id": id,
			})
		}
		return nil, err
	}
	return &line, nil
}

func (r *orderRepository) FindLine(orderID, productID uint) (*model.OrderLine, error) {
	var line model.OrderLine
	err := r.db.Where("order_id = ? AND product_id = ?", orderID, productID).First(&line).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Error("Failed to find order line by order and product", err, logger.Fields{
				"order_id":   orderID,
				"product_id": productID,
			})
		}
		return nil, err
	}
	return &line, nil
}

func (r *orderRepository) FindLines(orderID uint) ([]model.OrderLine, error) {
	var lines []model.OrderLine
	err := r.db.Where("order_id = ?", orderID).
		Preload("Product").
		Order("id ASC").
		Find(&lines).Error
	if err != nil {
		logger.Error("Failed to find order lines", err, logger.Fields{
			"order_id": orderID,
		})
		return nil, err
	}
	return lines, nil
}

func (r *orderRepository) CreateLine(line *model.OrderLine) error {
	logger.Debug("Creating order line in database", logger.Fields{
		"order_id":   line.OrderID,
		"product_id": line.ProductID,
		"count":      line.Count,
	})

	if err := r.db.Omit("Product").Create(line).Error; err != nil {
		logger.Error("Failed to create order line in database", err, logger.Fields{
			"order_id":   line.OrderID,
			"product_id": line.ProductID,
		})
		return err
	}
	return nil
}

func (r *orderRepository) UpdateLine(line *model.OrderLine) (int64, error) {
	result := r.db.Model(&model.OrderLine{}).
		Where("id = ?", line.ID).
		Select("order_id", "product_id", "count").
		Updates(line)
	if result.Error != nil {
		logger.Error("Failed to update order line in database", result.Error, logger.Fields{
			"order_line_id": line.ID,
		})
		return 0, result.Error
	}

	logger.Debug("Order line updated in database", logger.Fields{
		"order_line_id": line.ID,
		"count":         line.Count,
	})
	return result.RowsAffected, nil
}

func (r *orderRepository) DeleteLine(id uint) (int64, error) {
	result := r.db.Delete(&model.OrderLine{}, id)
	if result.Error != nil {
		logger.Error("Failed to delete order line from database", result.Error, logger.Fields{
			"order_line_id": id,
		})
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *orderRepository) CountLinesByProduct(productID uint) (int64, error) {
	var count int64
	err := r.db.Model(&model.OrderLine{}).Where("product_id = ?", productID).Count(&count).Error
	return count, err
}
