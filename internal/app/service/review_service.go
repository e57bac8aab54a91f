package service

import (
	"errors"
	"math"
	"strings"

	"github.com/ikkim/bookshelf-backend/internal/app/model"
	"github.com/ikkim/bookshelf-backend/internal/app/repository"
	"github.com/ikkim/bookshelf-backend/pkg/logger"
	"gorm.io/gorm"
)

// ReviewBroadcaster pushes new reviews to live subscribers. Nil disables it.
type ReviewBroadcaster interface {
	BroadcastReview(review *model.Review)
}

type ReviewService interface {
	AddReview(userID, productID uint, text string, rating int) (*model.Review, error)
	AverageRating(productID uint) (*model.RatingSummary, error)
}

type reviewService struct {
	reviewRepo  repository.ReviewRepository
	catalogRepo repository.CatalogRepository
	userRepo    repository.UserRepository
	broadcaster ReviewBroadcaster
}

func NewReviewService(
	reviewRepo repository.ReviewRepository,
	catalogRepo repository.CatalogRepository,
	userRepo repository.UserRepository,
	broadcaster ReviewBroadcaster,
) ReviewService {
	return &reviewService{
		reviewRepo:  reviewRepo,
		catalogRepo: catalogRepo,
		userRepo:    userRepo,
		broadcaster: broadcaster,
	}
}

func (s *reviewService) AddReview(userID, productID uint, text string, rating int) (*model.Review, error) {
	logger.Info("Adding review", logger.Fields{
		"user_id":    userID,
		"product_id": productID,
		"rating":     rating,
	})

	if rating < model.MinRating || rating > model.MaxRating {
		return nil, ErrInvalidRating
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyReview
	}

	exists, err := s.catalogRepo.Exists(productID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrCatalogItemNotFound
	}

	if _, err := s.userRepo.FindByID(userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	review := &model.Review{
		ProductID: productID,
		UserID:    userID,
		Text:      text,
		Rating:    rating,
	}
	if err := s.reviewRepo.Create(review); err != nil {
		return nil, err
	}

	saved, err := s.reviewRepo.FindByID(review.ID)
	if err != nil {
		return nil, err
	}

	if s.broadcaster != nil {
		s.broadcaster.BroadcastReview(saved)
	}

	logger.Info("Review added", logger.Fields{
		"review_id":  saved.ID,
		"product_id": productID,
	})
	return saved, nil
}

// AverageRating returns 0 for a product without reviews.
func (s *reviewService) AverageRating(productID uint) (*model.RatingSummary, error) {
	exists, err := s.catalogRepo.Exists(productID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrCatalogItemNotFound
	}

	avg, count, err := s.reviewRepo.Summary(productID)
	if err != nil {
		return nil, err
	}

	return &model.RatingSummary{
		ProductID:     productID,
		AverageRating: math.Round(avg*100) / 100,
		ReviewCount:   count,
	}, nil
}
