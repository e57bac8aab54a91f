package service

import (
	"errors"
	"time"

	"github.com/ikkim/bookshelf-backend/internal/app/model"
	"github.com/ikkim/bookshelf-backend/internal/app/repository"
	"github.com/ikkim/bookshelf-backend/pkg/logger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CartMetrics counts cart mutations. Nil disables counting.
type CartMetrics interface {
	CartOperation(operation string)
}

// CartView is the customer's open order.
type CartView struct {
	OrderID  uint              `json:"order_id,omitempty"`
	Items    []model.OrderLine `json:"items"`
	TotalSum decimal.Decimal   `json:"total_sum"`
}

type CartService interface {
	GetCart(userID uint) (*CartView, error)
	AddToCart(userID, catalogID uint) (*CartView, error)
	UpdateCartLine(userID, lineID uint, newCount int) (*CartView, error)
	Checkout(userID uint) (*model.Order, error)
	SweepAbandoned(maxAge time.Duration) (int64, error)
}

type cartService struct {
	db          *gorm.DB
	orderRepo   repository.OrderRepository
	userRepo    repository.UserRepository
	catalogRepo repository.CatalogRepository
	metrics     CartMetrics
}

func NewCartService(
	db *gorm.DB,
	orderRepo repository.OrderRepository,
	userRepo repository.UserRepository,
	catalogRepo repository.CatalogRepository,
	metrics CartMetrics,
) CartService {
	return &cartService{
		db:          db,
		orderRepo:   orderRepo,
		userRepo:    userRepo,
		catalogRepo: catalogRepo,
		metrics:     metrics,
	}
}

func (s *cartService) observe(operation string) {
	if s.metrics != nil {
		s.metrics.CartOperation(operation)
	}
}

// lockUser serializes cart mutations of one user for the rest of the transaction.
func lockUser(users repository.UserRepository, userID uint) error {
	if _, err := users.LockByID(userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

func (s *cartService) GetCart(userID uint) (*CartView, error) {
	order, err := s.orderRepo.FindOpenByUser(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &CartView{Items: []model.OrderLine{}, TotalSum: decimal.Zero}, nil
		}
		return nil, err
	}

	lines, err := s.orderRepo.FindLines(order.ID)
	if err != nil {
		return nil, err
	}

	logger.Debug("Cart fetched", logger.Fields{
		"user_id":     userID,
		"order_id":    order.ID,
		"lines_count": len(lines),
	})
	return &CartView{OrderID: order.ID, Items: lines, TotalSum: order.TotalSum}, nil
}

// AddToCart finds or creates the open order and the line, then bumps the count by one.
func (s *cartService) AddToCart(userID, catalogID uint) (*CartView, error) {
	logger.Info("Adding item to cart", logger.Fields{
		"user_id":         userID,
		"catalog_item_id": catalogID,
	})

	err := s.db.Transaction(func(tx *gorm.DB) error {
		orders := s.orderRepo.WithTx(tx)

		if err := lockUser(s.userRepo.WithTx(tx), userID); err != nil {
			return err
		}

		exists, err := s.catalogRepo.WithTx(tx).Exists(catalogID)
		if err != nil {
			return err
		}
		if !exists {
			logger.Warn("Cannot add to cart: catalog item not found", logger.Fields{
				"user_id":         userID,
				"catalog_item_id": catalogID,
			})
			return ErrCatalogItemNotFound
		}

		order, err := orders.FindOpenByUser(userID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			order = &model.Order{UserID: userID, Status: model.OrderStatusOpen, TotalSum: decimal.Zero}
			err = orders.Create(order)
		}
		if err != nil {
			return err
		}

		line, err := orders.FindLine(order.ID, catalogID)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			err = orders.CreateLine(&model.OrderLine{OrderID: order.ID, ProductID: catalogID, Count: 1})
		case err == nil:
			line.Count++
			_, err = orders.UpdateLine(line)
		}
		if err != nil {
			return err
		}

		_, err = recalculateTotal(orders, order.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.observe("add")
	return s.GetCart(userID)
}

// UpdateCartLine sets the line count; zero or less removes the line.
func (s *cartService) UpdateCartLine(userID, lineID uint, newCount int) (*CartView, error) {
	logger.Info("Updating cart line", logger.Fields{
		"user_id":   userID,
		"line_id":   lineID,
		"new_count": newCount,
	})

	err := s.db.Transaction(func(tx *gorm.DB) error {
		orders := s.orderRepo.WithTx(tx)

		if err := lockUser(s.userRepo.WithTx(tx), userID); err != nil {
			return err
		}

		order, err := orders.FindOpenByUser(userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCartLineNotFound
			}
			return err
		}

		line, err := orders.FindLineByID(lineID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCartLineNotFound
			}
			return err
		}
		if line.OrderID != order.ID {
			logger.Warn("Cart line belongs to another order", logger.Fields{
				"user_id": userID,
				"line_id": lineID,
			})
			return ErrCartLineNotFound
		}

		if newCount <= 0 {
			_, err = orders.DeleteLine(line.ID)
		} else {
			line.Count = newCount
			line.Product = nil
			_, err = orders.UpdateLine(line)
		}
		if err != nil {
			return err
		}

		_, err = recalculateTotal(orders, order.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	if newCount <= 0 {
		s.observe("remove")
	} else {
		s.observe("update")
	}
	return s.GetCart(userID)
}

// Checkout completes the open order. A missing or empty cart is rejected.
func (s *cartService) Checkout(userID uint) (*model.Order, error) {
	var orderID uint
	err := s.db.Transaction(func(tx *gorm.DB) error {
		orders := s.orderRepo.WithTx(tx)

		if err := lockUser(s.userRepo.WithTx(tx), userID); err != nil {
			return err
		}

		order, err := orders.FindOpenByUser(userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCartEmpty
			}
			return err
		}

		lines, err := orders.FindLines(order.ID)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return ErrCartEmpty
		}

		if _, err := recalculateTotal(orders, order.ID); err != nil {
			return err
		}
		orderID = order.ID
		return orders.UpdateStatus(order.ID, model.OrderStatusCompleted)
	})
	if err != nil {
		return nil, err
	}

	s.observe("checkout")
	logger.Info("Order checked out", logger.Fields{
		"user_id":  userID,
		"order_id": orderID,
	})
	return s.orderRepo.FindByID(orderID)
}

// SweepAbandoned deletes empty open orders untouched for longer than maxAge.
func (s *cartService) SweepAbandoned(maxAge time.Duration) (int64, error) {
	deleted, err := s.orderRepo.DeleteEmptyOpenBefore(time.Now().Add(-maxAge))
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		logger.Info("Abandoned carts removed", logger.Fields{
			"deleted": deleted,
			"max_age": maxAge.String(),
		})
	}
	return deleted, nil
}
