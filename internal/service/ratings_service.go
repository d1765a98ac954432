package service

import (
	"context"
	"fmt"
	"math"

	"natours/internal/event"
	"natours/internal/model"
	"natours/internal/repository"
)

// RatingsService keeps each tour's denormalized rating stats equal to the
// aggregate of its reviews. The recompute is idempotent: it derives the
// full aggregate from the review set every time instead of applying
// deltas.
type RatingsService struct {
	reviewRepo repository.ReviewRepository
	tourRepo   repository.TourRepository
}

// NewRatingsService creates a RatingsService and subscribes it to
// ReviewChanged events on the given bus.
func NewRatingsService(reviewRepo repository.ReviewRepository, tourRepo repository.TourRepository, bus *event.Bus) *RatingsService {
	s := &RatingsService{reviewRepo: reviewRepo, tourRepo: tourRepo}
	bus.SubscribeReviewChanged(s.onReviewChanged)
	return s
}

func (s *RatingsService) onReviewChanged(ctx context.Context, e event.ReviewChanged) error {
	return s.Recompute(ctx, e.TourID)
}

// Recompute counts and averages the tour's reviews and writes the result
// back. A tour with no reviews gets quantity 0 and the documented default
// average rather than an undefined value.
func (s *RatingsService) Recompute(ctx context.Context, tourID int) error {
	stats, err := s.reviewRepo.AggregateForTour(ctx, tourID)
	if err != nil {
		return err
	}

	quantity := stats.Quantity
	average := stats.Average
	if quantity == 0 {
		average = model.DefaultRatingsAverage
	}
	average = roundToTenth(average)

	if err := s.tourRepo.UpdateRatingStats(ctx, tourID, quantity, average); err != nil {
		return fmt.Errorf("failed to write rating stats for tour %d: %w", tourID, err)
	}
	return nil
}

// roundToTenth rounds a rating to one decimal place
func roundToTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
