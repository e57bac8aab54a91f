package service

import (
	"errors"
	"strings"

	"github.com/ikkim/bookshelf-backend/internal/app/model"
	"github.com/ikkim/bookshelf-backend/internal/app/repository"
	"github.com/ikkim/bookshelf-backend/internal/catalogio"
	"github.com/ikkim/bookshelf-backend/pkg/logger"
	"gorm.io/gorm"
)

// ProductDetails is a catalog item with its reviews, newest first.
type ProductDetails struct {
	Product *model.CatalogItem `json:"product"`
	Reviews []model.Review     `json:"reviews"`
}

type CatalogService interface {
	Browse(filter repository.CatalogFilter) ([]model.CatalogItem, error)
	List() ([]model.CatalogItem, error)
	Get(id uint) (*model.CatalogItem, error)
	ProductDetails(id uint) (*ProductDetails, error)
	Create(item *model.CatalogItem) error
	Replace(id uint, item *model.CatalogItem) error
	Delete(id uint) error
	SetCoverURL(id uint, url string) error
	Import(rows []catalogio.Row) (int, error)
}

type catalogService struct {
	db           *gorm.DB
	catalogRepo  repository.CatalogRepository
	categoryRepo repository.CategoryRepository
	orderRepo    repository.OrderRepository
	reviewRepo   repository.ReviewRepository
}

func NewCatalogService(
	db *gorm.DB,
	catalogRepo repository.CatalogRepository,
	categoryRepo repository.CategoryRepository,
	orderRepo repository.OrderRepository,
	reviewRepo repository.ReviewRepository,
) CatalogService {
	return &catalogService{
		db:           db,
		catalogRepo:  catalogRepo,
		categoryRepo: categoryRepo,
		orderRepo:    orderRepo,
		reviewRepo:   reviewRepo,
	}
}

func (s *catalogService) Browse(filter repository.CatalogFilter) ([]model.CatalogItem, error) {
	items, err := s.catalogRepo.Find(filter)
	if err != nil {
		return nil, err
	}

	logger.Debug("Catalog browsed", logger.Fields{
		"category": filter.Category,
		"search":   filter.Search,
		"sort_by":  filter.SortBy,
		"count":    len(items),
	})
	return items, nil
}

func (s *catalogService) List() ([]model.CatalogItem, error) {
	return s.catalogRepo.Find(repository.CatalogFilter{})
}

func (s *catalogService) Get(id uint) (*model.CatalogItem, error) {
	item, err := s.catalogRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCatalogItemNotFound
		}
		return nil, err
	}
	return item, nil
}

func (s *catalogService) ProductDetails(id uint) (*ProductDetails, error) {
	item, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	reviews, err := s.reviewRepo.FindByProduct(id)
	if err != nil {
		return nil, err
	}
	return &ProductDetails{Product: item, Reviews: reviews}, nil
}

func validateCatalogItem(item *model.CatalogItem) error {
	item.Title = strings.TrimSpace(item.Title)
	item.Price = strings.TrimSpace(item.Price)
	if item.Title == "" {
		return ErrInvalidCatalogItem
	}
	if _, err := item.PriceValue(); err != nil {
		return ErrInvalidCatalogItem
	}
	return nil
}

func (s *catalogService) Create(item *model.CatalogItem) error {
	logger.Info("Creating catalog item", logger.Fields{
		"title": item.Title,
		"price": item.Price,
	})

	if err := validateCatalogItem(item); err != nil {
		return err
	}
	item.ID = 0

	return s.db.Transaction(func(tx *gorm.DB) error {
		categories, err := s.resolveCategories(tx, item.CategoryIDs)
		if err != nil {
			return err
		}

		item.Categories = nil
		catalog := s.catalogRepo.WithTx(tx)
		if err := catalog.Create(item); err != nil {
			return err
		}
		if len(categories) > 0 {
			return catalog.ReplaceCategories(item, categories)
		}
		return nil
	})
}

// Replace overwrites every column and the category link set.
func (s *catalogService) Replace(id uint, item *model.CatalogItem) error {
	resolved, err := resolveID(id, item.ID)
	if err != nil {
		return err
	}
	item.ID = resolved

	if err := validateCatalogItem(item); err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		categories, err := s.resolveCategories(tx, item.CategoryIDs)
		if err != nil {
			return err
		}

		item.Categories = nil
		catalog := s.catalogRepo.WithTx(tx)
		rows, err := catalog.Update(item)
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrCatalogItemNotFound
		}
		if err := catalog.ReplaceCategories(item, categories); err != nil {
			return err
		}
		return s.repriceOpenOrders(tx, item.ID)
	})
	if err != nil {
		return err
	}

	logger.Info("Catalog item replaced", logger.Fields{
		"catalog_item_id": id,
	})
	return nil
}

// repriceOpenOrders recomputes carts holding the item. Completed orders keep their checkout total.
func (s *catalogService) repriceOpenOrders(tx *gorm.DB, itemID uint) error {
	orders := s.orderRepo.WithTx(tx)
	ids, err := orders.FindOpenIDsByProduct(itemID)
	if err != nil {
		return err
	}
	for _, orderID := range ids {
		if _, err := recalculateTotal(orders, orderID); err != nil {
			return err
		}
	}
	if len(ids) > 0 {
		logger.Debug("Open orders repriced", logger.Fields{
			"catalog_item_id": itemID,
			"orders":          len(ids),
		})
	}
	return nil
}

// Delete is rejected while any order line references the item. Reviews go with it.
func (s *catalogService) Delete(id uint) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		catalog := s.catalogRepo.WithTx(tx)

		exists, err := catalog.Exists(id)
		if err != nil {
			return err
		}
		if !exists {
			return ErrCatalogItemNotFound
		}

		referenced, err := s.orderRepo.WithTx(tx).CountLinesByProduct(id)
		if err != nil {
			return err
		}
		if referenced > 0 {
			logger.Warn("Catalog item delete restricted", logger.Fields{
				"catalog_item_id": id,
				"order_lines":     referenced,
			})
			return ErrCatalogItemInUse
		}

		if _, err := s.reviewRepo.WithTx(tx).DeleteByProduct(id); err != nil {
			return err
		}
		rows, err := catalog.Delete(id)
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrCatalogItemNotFound
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info("Catalog item deleted", logger.Fields{
		"catalog_item_id": id,
	})
	return nil
}

func (s *catalogService) SetCoverURL(id uint, url string) error {
	rows, err := s.catalogRepo.UpdateCoverURL(id, url)
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrCatalogItemNotFound
	}
	return nil
}

// Import creates one item per row, creating categories by name as needed.
func (s *catalogService) Import(rows []catalogio.Row) (int, error) {
	imported := 0
	err := s.db.Transaction(func(tx *gorm.DB) error {
		catalog := s.catalogRepo.WithTx(tx)
		categoryRepo := s.categoryRepo.WithTx(tx)

		for _, row := range rows {
			item := &model.CatalogItem{
				Title:     row.Title,
				Author:    row.Author,
				Publisher: row.Publisher,
				Year:      row.Year,
				Price:     row.Price,
			}
			if err := validateCatalogItem(item); err != nil {
				logger.Warn("Skipping invalid catalog row", logger.Fields{
					"line": row.Line,
				})
				continue
			}

			categories := make([]model.Category, 0, len(row.Categories))
			for _, name := range row.Categories {
				category, err := categoryRepo.FindOrCreateByName(name)
				if err != nil {
					return err
				}
				categories = append(categories, *category)
			}

			if err := catalog.Create(item); err != nil {
				return err
			}
			if len(categories) > 0 {
				if err := catalog.ReplaceCategories(item, categories); err != nil {
					return err
				}
			}
			imported++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	logger.Info("Catalog import completed", logger.Fields{
		"rows":     len(rows),
		"imported": imported,
	})
	return imported, nil
}

func (s *catalogService) resolveCategories(tx *gorm.DB, ids []uint) ([]model.Category, error) {
	unique := make([]uint, 0, len(ids))
	seen := make(map[uint]bool, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}

	categories, err := s.categoryRepo.WithTx(tx).FindByIDs(unique)
	if err != nil {
		return nil, err
	}
	if len(categories) != len(unique) {
		return nil, ErrCategoryNotFound
	}
	return categories, nil
}
