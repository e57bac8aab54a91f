package repository

import (
	"errors"

	"github.com/ikkim/bookshelf-backend/internal/app/model"
	"github.com/ikkim/bookshelf-backend/pkg/logger"
	"gorm.io/gorm"
)

type ReviewRepository interface {
	WithTx(tx *gorm.DB) ReviewRepository
	Create(review *model.Review) error
	FindByID(id uint) (*model.Review, error)
	FindByProduct(productID uint) ([]model.Review, error)
	Summary(productID uint) (float64, int64, error)
	DeleteByProduct(productID uint) (int64, error)
	CountByUser(userID uint) (int64, error)
}

type reviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) WithTx(tx *gorm.DB) ReviewRepository {
	return &reviewRepository{db: tx}
}

func (r *reviewRepository) Create(review *model.Review) error {
	logger.Debug("Creating review in database", logger.Fields{
		"product_id": review.ProductID,
		"user_id":    review.UserID,
		"rating":     review.Rating,
	})

	if err := r.db.Omit("User").Create(review).Error; err != nil {
		logger.Error("Failed to create review in database", err, logger.Fields{
			"product_id": review.ProductID,
			"user_id":    review.UserID,
		})
		return err
	}
	return nil
}

func (r *reviewRepository) FindByID(id uint) (*model.Review, error) {
	var review model.Review
	if err := r.db.Preload("User").First(&review, id).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Error("Failed to find review by ID", err, logger.Fields{
				"review_id": id,
			})
		}
		return nil, err
	}
	return &review, nil
}

// FindByProduct returns the product's reviews with authors, newest first.
func (r *reviewRepository) FindByProduct(productID uint) ([]model.Review, error) {
	var reviews []model.Review
	err := r.db.Where("product_id = ?", productID).
		Preload("User").
		Order("created_at DESC").
		Order("id DESC").
		Find(&reviews).Error
	if err != nil {
		logger.Error("Failed to find reviews by product", err, logger.Fields{
			"product_id": productID,
		})
		return nil, err
	}

	logger.Debug("Reviews found by product", logger.Fields{
		"product_id": productID,
		"count":      len(reviews),
	})
	return reviews, nil
}

// Summary returns the average rating and review count. Both are 0 when there are no reviews.
func (r *reviewRepository) Summary(productID uint) (float64, int64, error) {
	var row struct {
		Average float64
		Count   int64
	}
	err := r.db.Model(&model.Review{}).
		Select("COALESCE(AVG(rating), 0) AS average, COUNT(*) AS count").
		Where("product_id = ?", productID).
		Scan(&row).Error
	if err != nil {
		logger.Error("Failed to calculate rating summary", err, logger.Fields{
			"product_id": productID,
		})
		return 0, 0, err
	}
	return row.Average, row.Count, nil
}

func (r *reviewRepository) DeleteByProduct(productID uint) (int64, error) {
	result := r.db.Where("product_id = ?", productID).Delete(&model.Review{})
	if result.Error != nil {
		logger.Error("Failed to delete product reviews", result.Error, logger.Fields{
			"product_id": productID,
		})
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *reviewRepository) CountByUser(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&model.Review{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}
