package service

import (
	"errors"

	"github.com/ikkim/bookshelf-backend/internal/app/model"
	"github.com/ikkim/bookshelf-backend/internal/app/repository"
	"github.com/ikkim/bookshelf-backend/pkg/logger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderService is the admin view of orders and order lines.
// Every line mutation recomputes the parent order total in the same transaction.
type OrderService interface {
	List() ([]model.Order, error)
	Get(id uint) (*model.Order, error)
	Create(order *model.Order) error
	Replace(id uint, order *model.Order) error
	Delete(id uint) error

	ListLines() ([]model.OrderLine, error)
	GetLine(id uint) (*model.OrderLine, error)
	CreateLine(line *model.OrderLine) error
	ReplaceLine(id uint, line *model.OrderLine) error
	DeleteLine(id uint) error
}

type orderService struct {
	db          *gorm.DB
	orderRepo   repository.OrderRepository
	userRepo    repository.UserRepository
	catalogRepo repository.CatalogRepository
}

func NewOrderService(
	db *gorm.DB,
	orderRepo repository.OrderRepository,
	userRepo repository.UserRepository,
	catalogRepo repository.CatalogRepository,
) OrderService {
	return &orderService{
		db:          db,
		orderRepo:   orderRepo,
		userRepo:    userRepo,
		catalogRepo: catalogRepo,
	}
}

// recalculateTotal stores sum(count * price) over the order's lines.
func recalculateTotal(orders repository.OrderRepository, orderID uint) (decimal.Decimal, error) {
	lines, err := orders.FindLines(orderID)
	if err != nil {
		return decimal.Zero, err
	}
	total, err := model.ComputeTotal(lines)
	if err != nil {
		return decimal.Zero, err
	}
	if err := orders.UpdateTotal(orderID, total); err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

func validStatus(status model.OrderStatus) bool {
	return status == model.OrderStatusOpen || status == model.OrderStatusCompleted
}

func (s *orderService) List() ([]model.Order, error) {
	return s.orderRepo.FindAll()
}

func (s *orderService) Get(id uint) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

func (s *orderService) requireUser(users repository.UserRepository, id uint) error {
	if _, err := users.FindByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

func (s *orderService) requireProduct(catalog repository.CatalogRepository, id uint) error {
	exists, err := catalog.Exists(id)
	if err != nil {
		return err
	}
	if !exists {
		return ErrCatalogItemNotFound
	}
	return nil
}

// requireSingleOpen keeps at most one open order (the cart) per user.
func (s *orderService) requireSingleOpen(users repository.UserRepository, orders repository.OrderRepository, order *model.Order) error {
	if order.Status != model.OrderStatusOpen {
		return nil
	}
	if _, err := users.LockByID(order.UserID); err != nil {
		return err
	}
	count, err := orders.CountOpenByUser(order.UserID, order.ID)
	if err != nil {
		return err
	}
	if count > 0 {
		logger.Warn("Second open order rejected", logger.Fields{
			"order_id": order.ID,
			"user_id":  order.UserID,
		})
		return ErrOpenOrderExists
	}
	return nil
}

// Create stores an order header. Lines are added through CreateLine, so the total starts at zero.
func (s *orderService) Create(order *model.Order) error {
	if order.Status == "" {
		order.Status = model.OrderStatusOpen
	}
	if !validStatus(order.Status) {
		return ErrInvalidStatus
	}
	order.ID = 0
	order.TotalSum = decimal.Zero
	order.Lines = nil
	order.User = nil

	return s.db.Transaction(func(tx *gorm.DB) error {
		users := s.userRepo.WithTx(tx)
		orders := s.orderRepo.WithTx(tx)
		if err := s.requireUser(users, order.UserID); err != nil {
			return err
		}
		if err := s.requireSingleOpen(users, orders, order); err != nil {
			return err
		}
		if err := orders.Create(order); err != nil {
			return err
		}

		logger.Info("Order created", logger.Fields{
			"order_id": order.ID,
			"user_id":  order.UserID,
		})
		return nil
	})
}

func (s *orderService) Replace(id uint, order *model.Order) error {
	resolved, err := resolveID(id, order.ID)
	if err != nil {
		return err
	}
	order.ID = resolved

	if order.Status == "" {
		order.Status = model.OrderStatusOpen
	}
	if !validStatus(order.Status) {
		return ErrInvalidStatus
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		users := s.userRepo.WithTx(tx)
		orders := s.orderRepo.WithTx(tx)
		if err := s.requireOrder(orders, order.ID); err != nil {
			return err
		}
		if err := s.requireUser(users, order.UserID); err != nil {
			return err
		}
		if err := s.requireSingleOpen(users, orders, order); err != nil {
			return err
		}

		total, err := recalculateTotal(orders, order.ID)
		if err != nil {
			return err
		}
		order.TotalSum = total

		rows, err := orders.Update(order)
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrOrderNotFound
		}
		return nil
	})
}

func (s *orderService) Delete(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		rows, err := s.orderRepo.WithTx(tx).Delete(id)
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrOrderNotFound
		}

		logger.Info("Order deleted", logger.Fields{
			"order_id": id,
		})
		return nil
	})
}

func (s *orderService) ListLines() ([]model.OrderLine, error) {
	return s.orderRepo.FindAllLines()
}

func (s *orderService) GetLine(id uint) (*model.OrderLine, error) {
	line, err := s.orderRepo.FindLineByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderLineNotFound
		}
		return nil, err
	}
	return line, nil
}

func (s *orderService) requireOrder(orders repository.OrderRepository, id uint) error {
	if _, err := orders.FindByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOrderNotFound
		}
		return err
	}
	return nil
}

func (s *orderService) CreateLine(line *model.OrderLine) error {
	if line.Count <= 0 {
		return ErrInvalidOrderLine
	}
	line.ID = 0
	line.Product = nil

	return s.db.Transaction(func(tx *gorm.DB) error {
		orders := s.orderRepo.WithTx(tx)
		if err := s.requireOrder(orders, line.OrderID); err != nil {
			return err
		}
		if err := s.requireProduct(s.catalogRepo.WithTx(tx), line.ProductID); err != nil {
			return err
		}
		if err := orders.CreateLine(line); err != nil {
			return err
		}
		_, err := recalculateTotal(orders, line.OrderID)
		return err
	})
}

// ReplaceLine may move a line between orders; both totals are recomputed.
func (s *orderService) ReplaceLine(id uint, line *model.OrderLine) error {
	resolved, err := resolveID(id, line.ID)
	if err != nil {
		return err
	}
	line.ID = resolved
	line.Product = nil

	if line.Count <= 0 {
		return ErrInvalidOrderLine
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		orders := s.orderRepo.WithTx(tx)

		existing, err := orders.FindLineByID(line.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderLineNotFound
			}
			return err
		}
		if err := s.requireOrder(orders, line.OrderID); err != nil {
			return err
		}
		if err := s.requireProduct(s.catalogRepo.WithTx(tx), line.ProductID); err != nil {
			return err
		}

		rows, err := orders.UpdateLine(line)
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrOrderLineNotFound
		}

		if _, err := recalculateTotal(orders, line.OrderID); err != nil {
			return err
		}
		if existing.OrderID != line.OrderID {
			if _, err := recalculateTotal(orders, existing.OrderID); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *orderService) DeleteLine(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		orders := s.orderRepo.WithTx(tx)

		line, err := orders.FindLineByID(id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderLineNotFound
			}
			return err
		}

		rows, err := orders.DeleteLine(id)
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrOrderLineNotFound
		}

		_, err = recalculateTotal(orders, line.OrderID)
		return err
	})
}
