package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"natours/internal/model"
	"natours/internal/repository"
	"natours/internal/utils"
	"natours/internal/validate"
)

var (
	ErrTourNotFound    = errors.New("tour not found")
	ErrTourNameTaken   = errors.New("a tour with this name already exists")
	ErrDiscountTooHigh = errors.New("discount price should be below the regular price")
	ErrGuideNotFound   = errors.New("one of the listed guides does not exist")
)

// TourService provides tour management
type TourService interface {
	Create(ctx context.Context, req model.CreateTourRequest) (*model.Tour, error)
	GetByID(ctx context.Context, id int) (*model.Tour, error)
	GetBySlug(ctx context.Context, slug string) (*model.Tour, error)
	GetAll(ctx context.Context, filters model.TourFilters) ([]model.Tour, error)
	Update(ctx context.Context, id int, req model.UpdateTourRequest) (*model.Tour, error)
	Delete(ctx context.Context, id int) error
	TopCheap(ctx context.Context) ([]model.Tour, error)
	DifficultyStats(ctx context.Context) ([]model.DifficultyStats, error)
}

type tourService struct {
	tourRepo repository.TourRepository
	userRepo repository.UserRepository
}

// NewTourService creates a new TourService
func NewTourService(tourRepo repository.TourRepository, userRepo repository.UserRepository) TourService {
	return &tourService{tourRepo: tourRepo, userRepo: userRepo}
}

// tourNameRules is the declarative rule set for tour names.
var tourNameRules = validate.RuleSet{
	{Field: "name", Rules: []validate.Rule{
		validate.MinLength(10, "a tour name must have 10 or more characters"),
		validate.MaxLength(40, "a tour name must have 40 or fewer characters"),
		validate.LettersOnly("tour name can include letters only"),
	}},
}

func (s *tourService) Create(ctx context.Context, req model.CreateTourRequest) (*model.Tour, error) {
	if failures := tourNameRules.Evaluate(map[string]string{"name": req.Name}); len(failures) > 0 {
		return nil, validationError(failures)
	}
	if req.PriceDiscount != nil && *req.PriceDiscount >= req.Price {
		return nil, ErrDiscountTooHigh
	}
	if err := s.checkGuides(ctx, req.GuideIDs); err != nil {
		return nil, err
	}

	tour := &model.Tour{
		Name:           req.Name,
		Slug:           utils.Slugify(req.Name),
		Duration:       req.Duration,
		MaxGroupSize:   req.MaxGroupSize,
		Difficulty:     req.Difficulty,
		RatingsAverage: model.DefaultRatingsAverage,
		Price:          req.Price,
		PriceDiscount:  req.PriceDiscount,
		Summary:        req.Summary,
		Description:    req.Description,
		ImageCover:     req.ImageCover,
		SecretTour:     req.SecretTour,
		CreatedAt:      time.Now(),
	}

	if err := s.tourRepo.Create(ctx, tour); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrTourNameTaken
		}
		return nil, fmt.Errorf("failed to create tour in repo: %w", err)
	}

	if len(req.GuideIDs) > 0 {
		if err := s.tourRepo.ReplaceGuides(ctx, tour.ID, req.GuideIDs); err != nil {
			return nil, err
		}
	}

	// Secret tours are excluded from reads, so the re-fetch that hydrates
	// guides would come back empty; return the copy we just wrote.
	if tour.SecretTour {
		return tour, nil
	}
	return s.GetByID(ctx, tour.ID)
}

func (s *tourService) GetByID(ctx context.Context, id int) (*model.Tour, error) {
	tour, err := s.tourRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find tour by ID: %w", err)
	}
	if tour == nil {
		return nil, ErrTourNotFound
	}
	return tour, nil
}

func (s *tourService) GetBySlug(ctx context.Context, slug string) (*model.Tour, error) {
	tour, err := s.tourRepo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("failed to find tour by slug: %w", err)
	}
	if tour == nil {
		return nil, ErrTourNotFound
	}
	return tour, nil
}

func (s *tourService) GetAll(ctx context.Context, filters model.TourFilters) ([]model.Tour, error) {
	tours, err := s.tourRepo.FindAll(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list tours: %w", err)
	}
	return tours, nil
}

func (s *tourService) Update(ctx context.Context, id int, req model.UpdateTourRequest) (*model.Tour, error) {
	existing, err := s.tourRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find tour for update: %w", err)
	}
	if existing == nil {
		return nil, ErrTourNotFound
	}

	// Apply updates
	if req.Name != nil {
		if failures := tourNameRules.Evaluate(map[string]string{"name": *req.Name}); len(failures) > 0 {
			return nil, validationError(failures)
		}
		existing.Name = *req.Name
		existing.Slug = utils.Slugify(*req.Name) // slug always tracks the name
	}
	if req.Duration != nil {
		existing.Duration = *req.Duration
	}
	if req.MaxGroupSize != nil {
		existing.MaxGroupSize = *req.MaxGroupSize
	}
	if req.Difficulty != nil {
		existing.Difficulty = *req.Difficulty
	}
	if req.Price != nil {
		existing.Price = *req.Price
	}
	if req.PriceDiscount != nil { // handles setting a new discount
		existing.PriceDiscount = req.PriceDiscount
	}
	if req.Summary != nil {
		existing.Summary = *req.Summary
	}
	if req.Description != nil {
		existing.Description = req.Description
	}
	if req.ImageCover != nil {
		existing.ImageCover = *req.ImageCover
	}
	if req.SecretTour != nil {
		existing.SecretTour = *req.SecretTour
	}

	if existing.PriceDiscount != nil && *existing.PriceDiscount >= existing.Price {
		return nil, ErrDiscountTooHigh
	}

	// Guides are verified before any write so a bad id cannot leave the
	// field changes half-committed.
	if req.GuideIDs != nil {
		if err := s.checkGuides(ctx, req.GuideIDs); err != nil {
			return nil, err
		}
	}

	if err := s.tourRepo.Update(ctx, existing); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrTourNameTaken
		}
		return nil, fmt.Errorf("failed to update tour in repo: %w", err)
	}

	if req.GuideIDs != nil {
		if err := s.tourRepo.ReplaceGuides(ctx, id, req.GuideIDs); err != nil {
			return nil, err
		}
	}

	if existing.SecretTour {
		return existing, nil
	}
	return s.GetByID(ctx, id)
}

func (s *tourService) Delete(ctx context.Context, id int) error {
	existing, err := s.tourRepo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to find tour for deletion: %w", err)
	}
	if existing == nil {
		return ErrTourNotFound
	}
	if err := s.tourRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete tour in repo: %w", err)
	}
	return nil
}

// TopCheap is the pre-filled "top 5 cheap" listing: best rated first,
// then cheapest
func (s *tourService) TopCheap(ctx context.Context) ([]model.Tour, error) {
	return s.GetAll(ctx, model.TourFilters{
		Limit:  5,
		SortBy: "-ratings_average,price",
	})
}

func (s *tourService) DifficultyStats(ctx context.Context) ([]model.DifficultyStats, error) {
	stats, err := s.tourRepo.GetDifficultyStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get difficulty stats: %w", err)
	}
	return stats, nil
}

// checkGuides verifies every referenced guide exists and is active
func (s *tourService) checkGuides(ctx context.Context, guideIDs []int) error {
	for _, id := range guideIDs {
		user, err := s.userRepo.FindByID(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to verify guide %d: %w", id, err)
		}
		if user == nil {
			return ErrGuideNotFound
		}
	}
	return nil
}
