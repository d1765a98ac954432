package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"natours/internal/event"
	"natours/internal/model"
	"natours/internal/repository"
)

var (
	ErrReviewNotFound  = errors.New("review not found")
	ErrDuplicateReview = errors.New("you have already reviewed this tour")
	ErrNotReviewOwner  = errors.New("forbidden: you may only modify your own reviews")
)

// ReviewService provides review management. Every successful mutation
// publishes ReviewChanged so the tour's cached rating stats follow.
type ReviewService interface {
	Create(ctx context.Context, userID int, req model.CreateReviewRequest) (*model.Review, error)
	GetByID(ctx context.Context, id int) (*model.Review, error)
	GetAll(ctx context.Context, tourID *int) ([]model.Review, error)
	Update(ctx context.Context, reviewID, userID int, userRole string, req model.UpdateReviewRequest) (*model.Review, error)
	Delete(ctx context.Context, reviewID, userID int, userRole string) error
}

type reviewService struct {
	reviewRepo repository.ReviewRepository
	tourRepo   repository.TourRepository
	bus        *event.Bus
}

// NewReviewService creates a new ReviewService
func NewReviewService(reviewRepo repository.ReviewRepository, tourRepo repository.TourRepository, bus *event.Bus) ReviewService {
	return &reviewService{reviewRepo: reviewRepo, tourRepo: tourRepo, bus: bus}
}

func (s *reviewService) Create(ctx context.Context, userID int, req model.CreateReviewRequest) (*model.Review, error) {
	tour, err := s.tourRepo.FindByID(ctx, req.TourID)
	if err != nil {
		return nil, fmt.Errorf("failed to verify tour for review: %w", err)
	}
	if tour == nil {
		return nil, ErrTourNotFound
	}

	review := &model.Review{
		Review:    req.Review,
		Rating:    req.Rating,
		TourID:    req.TourID,
		UserID:    userID,
		CreatedAt: time.Now(),
	}

	if err := s.reviewRepo.Create(ctx, review); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateReview
		}
		return nil, fmt.Errorf("failed to create review in repo: %w", err)
	}

	s.bus.PublishReviewChanged(ctx, event.ReviewChanged{TourID: review.TourID})
	return review, nil
}

func (s *reviewService) GetByID(ctx context.Context, id int) (*model.Review, error) {
	review, err := s.reviewRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find review by ID: %w", err)
	}
	if review == nil {
		return nil, ErrReviewNotFound
	}
	return review, nil
}

func (s *reviewService) GetAll(ctx context.Context, tourID *int) ([]model.Review, error) {
	reviews, err := s.reviewRepo.FindAll(ctx, tourID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	return reviews, nil
}

func (s *reviewService) Update(ctx context.Context, reviewID, userID int, userRole string, req model.UpdateReviewRequest) (*model.Review, error) {
	existing, err := s.reviewRepo.FindByID(ctx, reviewID)
	if err != nil {
		return nil, fmt.Errorf("failed to find review for update: %w", err)
	}
	if existing == nil {
		return nil, ErrReviewNotFound
	}
	if userRole != model.RoleAdmin && existing.UserID != userID {
		return nil, ErrNotReviewOwner
	}

	if req.Review != nil {
		existing.Review = *req.Review
	}
	if req.Rating != nil {
		existing.Rating = *req.Rating
	}

	if err := s.reviewRepo.Update(ctx, existing); err != nil {
		return nil, fmt.Errorf("failed to update review in repo: %w", err)
	}

	s.bus.PublishReviewChanged(ctx, event.ReviewChanged{TourID: existing.TourID})
	return existing, nil
}

func (s *reviewService) Delete(ctx context.Context, reviewID, userID int, userRole string) error {
	existing, err := s.reviewRepo.FindByID(ctx, reviewID)
	if err != nil {
		return fmt.Errorf("failed to find review for deletion: %w", err)
	}
	if existing == nil {
		return ErrReviewNotFound
	}
	if userRole != model.RoleAdmin && existing.UserID != userID {
		return ErrNotReviewOwner
	}

	if err := s.reviewRepo.Delete(ctx, reviewID); err != nil {
		return fmt.Errorf("failed to delete review in repo: %w", err)
	}

	s.bus.PublishReviewChanged(ctx, event.ReviewChanged{TourID: existing.TourID})
	return nil
}
