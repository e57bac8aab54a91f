package repository

import (
	"errors"
	"strings"

	"github.com/ikkim/bookshelf-backend/internal/app/model"
	"github.com/ikkim/bookshelf-backend/pkg/logger"
	"gorm.io/gorm"
)

const (
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// CatalogFilter narrows the customer catalog listing. Empty fields are ignored.
type CatalogFilter struct {
	Category string
	Search   string
	SortBy   string
}

type CatalogRepository interface {
	WithTx(tx *gorm.DB) CatalogRepository
	Find(filter CatalogFilter) ([]model.CatalogItem, error)
	FindByID(id uint) (*model.CatalogItem, error)
	Create(item *model.CatalogItem) error
	Update(item *model.CatalogItem) (int64, error)
	ReplaceCategories(item *model.CatalogItem, categories []model.Category) error
	UpdateCoverURL(id uint, url string) (int64, error)
	Delete(id uint) (int64, error)
	Exists(id uint) (bool, error)
}

type catalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) CatalogRepository {
	return &catalogRepository{db: db}
}

func (r *catalogRepository) WithTx(tx *gorm.DB) CatalogRepository {
	return &catalogRepository{db: tx}
}

func (r *catalogRepository) Find(filter CatalogFilter) ([]model.CatalogItem, error) {
	logger.Debug("Finding catalog items in database", logger.Fields{
		"category": filter.Category,
		"search":   filter.Search,
		"sort_by":  filter.SortBy,
	})

	query := r.db.Model(&model.CatalogItem{}).Preload("Categories")

	if filter.Category != "" {
		query = query.
			Joins("JOIN catalog_item_categories cic ON cic.catalog_item_id = catalog_items.id").
			Joins("JOIN categories cat ON cat.id = cic.category_id").
			Where("cat.name = ?", filter.Category)
	}

	if q := strings.TrimSpace(filter.Search); q != "" {
		pattern := "%" + likeEscaper.Replace(strings.ToLower(q)) + "%"
		query = query.Where(
			`LOWER(catalog_items.title) LIKE ? ESCAPE '\' OR LOWER(catalog_items.author) LIKE ? ESCAPE '\' OR LOWER(catalog_items.publisher) LIKE ? ESCAPE '\'`,
			pattern, pattern, pattern,
		)
	}

	switch filter.SortBy {
	case SortPriceAsc:
		query = query.Order("CAST(catalog_items.price AS DECIMAL) ASC")
	case SortPriceDesc:
		query = query.Order("CAST(catalog_items.price AS DECIMAL) DESC")
	}
	query = query.Order("catalog_items.id ASC")

	var items []model.CatalogItem
	if err := query.Find(&items).Error; err != nil {
		logger.Error("Failed to find catalog items in database", err, logger.Fields{
			"category": filter.Category,
			"search":   filter.Search,
		})
		return nil, err
	}

	logger.Debug("Catalog items found in database", logger.Fields{
		"count": len(items),
	})
	return items, nil
}

func (r *catalogRepository) FindByID(id uint) (*model.CatalogItem, error) {
	logger.Debug("Finding catalog item by ID in database", logger.Fields{
		"catalog_item_id": id,
	})

	var item model.CatalogItem
	if err := r.db.Preload("Categories").First(&item, id).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Error("Failed to find catalog item by ID in database", err, logger.Fields{
				"catalog_item_id": id,
			})
		}
		return nil, err
	}

	logger.Debug("Catalog item found by ID in database", logger.Fields{
		"catalog_item_id": item.ID,
		"title":           item.Title,
	})
	return &item, nil
}

func (r *catalogRepository) Create(item *model.CatalogItem) error {
	logger.Debug("Creating catalog item in database", logger.Fields{
		"title": item.Title,
		"price": item.Price,
	})

	if err := r.db.Omit("Categories.*").Create(item).Error; err != nil {
		logger.Error("Failed to create catalog item in database", err, logger.Fields{
			"title": item.Title,
		})
		return err
	}

	logger.Debug("Catalog item created in database", logger.Fields{
		"catalog_item_id": item.ID,
	})
	return nil
}

// Update writes every editable column and reports the number of rows touched.
func (r *catalogRepository) Update(item *model.CatalogItem) (int64, error) {
	logger.Debug("Updating catalog item in database", logger.Fields{
		"catalog_item_id": item.ID,
	})

	result := r.db.Model(&model.CatalogItem{}).
		Where("id = ?", item.ID).
		Select("title", "author", "publisher", "year", "price", "cover_url").
		Updates(item)
	if result.Error != nil {
		logger.Error("Failed to update catalog item in database", result.Error, logger.Fields{
			"catalog_item_id": item.ID,
		})
		return 0, result.Error
	}

	logger.Debug("Catalog item updated in database", logger.Fields{
		"catalog_item_id": item.ID,
		"rows_affected":   result.RowsAffected,
	})
	return result.RowsAffected, nil
}

func (r *catalogRepository) ReplaceCategories(item *model.CatalogItem, categories []model.Category) error {
	logger.Debug("Replacing catalog item categories in database", logger.Fields{
		"catalog_item_id": item.ID,
		"count":           len(categories),
	})

	assoc := r.db.Model(item).Association("Categories")
	var err error
	if len(categories) == 0 {
		err = assoc.Clear()
	} else {
		err = assoc.Replace(categories)
	}
	if err != nil {
		logger.Error("Failed to replace catalog item categories in database", err, logger.Fields{
			"catalog_item_id": item.ID,
		})
		return err
	}
	item.Categories = categories
	return nil
}

func (r *catalogRepository) UpdateCoverURL(id uint, url string) (int64, error) {
	result := r.db.Model(&model.CatalogItem{}).Where("id = ?", id).Update("cover_url", url)
	if result.Error != nil {
		logger.Error("Failed to update catalog item cover in database", result.Error, logger.Fields{
			"catalog_item_id": id,
		})
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *catalogRepository) Delete(id uint) (int64, error) {
	logger.Debug("Deleting catalog item from database", logger.Fields{
		"catalog_item_id": id,
	})

	if err := r.db.Exec("DELETE FROM catalog_item_categories WHERE catalog_item_id = ?", id).Error; err != nil {
		logger.Error("Failed to unlink catalog item categories", err, logger.Fields{
			"catalog_item_id": id,
		})
		return 0, err
	}

	result := r.db.Delete(&model.CatalogItem{}, id)
	if result.Error != nil {
		logger.Error("Failed to delete catalog item from database", result.Error, logger.Fields{
			"catalog_item_id": id,
		})
		return 0, result.Error
	}

	logger.Debug("Catalog item deleted from database", logger.Fields{
		"catalog_item_id": id,
		"rows_affected":   result.RowsAffected,
	})
	return result.RowsAffected, nil
}

func (r *catalogRepository) Exists(id uint) (bool, error) {
	var count int64
	if err := r.db.Model(&model.CatalogItem{}).Where("id = ?", id).Count(&count).Error; err != nil {
		logger.Error("Failed to check catalog item existence", err, logger.Fields{
			"catalog_item_id": id,
		})
		return false, err
	}
	return count > 0, nil
}
