package service

import (
	"errors"
	"strings"

	"github.com/ikkim/bookshelf-backend/internal/app/model"
	"github.com/ikkim/bookshelf-backend/internal/app/repository"
	"github.com/ikkim/bookshelf-backend/pkg/logger"
	"gorm.io/gorm"
)

type CategoryService interface {
	List() ([]model.Category, error)
	Get(id uint) (*model.Category, error)
	Create(category *model.Category) error
	Replace(id uint, category *model.Category) error
	Delete(id uint) error
}

type categoryService struct {
	db           *gorm.DB
	categoryRepo repository.CategoryRepository
}

func NewCategoryService(db *gorm.DB, categoryRepo repository.CategoryRepository) CategoryService {
	return &categoryService{db: db, categoryRepo: categoryRepo}
}

func (s *categoryService) List() ([]model.Category, error) {
	return s.categoryRepo.FindAll()
}

func (s *categoryService) Get(id uint) (*model.Category, error) {
	category, err := s.categoryRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return category, nil
}

func (s *categoryService) Create(category *model.Category) error {
	category.Name = strings.TrimSpace(category.Name)
	if category.Name == "" {
		return ErrInvalidCategory
	}
	category.ID = 0

	if err := s.categoryRepo.Create(category); err != nil {
		return err
	}

	logger.Info("Category created", logger.Fields{
		"category_id": category.ID,
		"name":        category.Name,
	})
	return nil
}

func (s *categoryService) Replace(id uint, category *model.Category) error {
	resolved, err := resolveID(id, category.ID)
	if err != nil {
		return err
	}
	category.ID = resolved

	category.Name = strings.TrimSpace(category.Name)
	if category.Name == "" {
		return ErrInvalidCategory
	}

	rows, err := s.categoryRepo.Update(category)
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

// Delete removes the category's item links; the items stay.
func (s *categoryService) Delete(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		rows, err := s.categoryRepo.WithTx(tx).Delete(id)
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrCategoryNotFound
		}

		logger.Info("Category deleted", logger.Fields{
			"category_id": id,
		})
		return nil
	})
}
