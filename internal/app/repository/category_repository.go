package repository

import (
	"errors"

	"github.com/ikkim/bookshelf-backend/internal/app/model"
	"github.com/ikkim/bookshelf-backend/pkg/logger"
	"gorm.io/gorm"
)

type CategoryRepository interface {
	WithTx(tx *gorm.DB) CategoryRepository
	FindAll() ([]model.Category, error)
	FindByID(id uint) (*model.Category, error)
	FindByIDs(ids []uint) ([]model.Category, error)
	FindOrCreateByName(name string) (*model.Category, error)
	Create(category *model.Category) error
	Update(category *model.Category) (int64, error)
	Delete(id uint) (int64, error)
}

type categoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) WithTx(tx *gorm.DB) CategoryRepository {
	return &categoryRepository{db: tx}
}

func (r *categoryRepository) FindAll() ([]model.Category, error) {
	var categories []model.Category
	if err := r.db.Order("name ASC").Find(&categories).Error; err != nil {
		logger.Error("Failed to list categories", err)
		return nil, err
	}

	logger.Debug("Categories found in database", logger.Fields{
		"count": len(categories),
	})
	return categories, nil
}

func (r *categoryRepository) FindByID(id uint) (*model.Category, error) {
	var category model.Category
	if err := r.db.First(&category, id).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Error("Failed to find category by ID", err, logger.Fields{
				"category_id": id,
			})
		}
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) FindByIDs(ids []uint) ([]model.Category, error) {
	if len(ids) == 0 {
		return []model.Category{}, nil
	}

	var categories []model.Category
	if err := r.db.Where("id IN ?", ids).Order("id ASC").Find(&categories).Error; err != nil {
		logger.Error("Failed to find categories by IDs", err, logger.Fields{
			"category_ids": ids,
		})
		return nil, err
	}
	return categories, nil
}

func (r *categoryRepository) FindOrCreateByName(name string) (*model.Category, error) {
	category := model.Category{Name: name}
	if err := r.db.Where("name = ?", name).FirstOrCreate(&category).Error; err != nil {
		logger.Error("Failed to find or create category", err, logger.Fields{
			"name": name,
		})
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) Create(category *model.Category) error {
	logger.Debug("Creating category in database", logger.Fields{
		"name": category.Name,
	})

	if err := r.db.Create(category).Error; err != nil {
		logger.Error("Failed to create category in database", err, logger.Fields{
			"name": category.Name,
		})
		return err
	}
	return nil
}

func (r *categoryRepository) Update(category *model.Category) (int64, error) {
	result := r.db.Model(&model.Category{}).
		Where("id = ?", category.ID).
		Update("name", category.Name)
	if result.Error != nil {
		logger.Error("Failed to update category in database", result.Error, logger.Fields{
			"category_id": category.ID,
		})
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// Delete removes the category and its item links. Items are kept.
func (r *categoryRepository) Delete(id uint) (int64, error) {
	logger.Debug("Deleting category from database", logger.Fields{
		"category_id": id,
	})

	if err := r.db.Exec("DELETE FROM catalog_item_categories WHERE category_id = ?", id).Error; err != nil {
		logger.Error("Failed to unlink category items", err, logger.Fields{
			"category_id": id,
		})
		return 0, err
	}

	result := r.db.Delete(&model.Category{}, id)
	if result.Error != nil {
		logger.Error("Failed to delete category from database", result.Error, logger.Fields{
			"category_id": id,
		})
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
