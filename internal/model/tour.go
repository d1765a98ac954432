package model

import "time"

const (
	DifficultyEasy      = "easy"
	DifficultyMedium    = "medium"
	DifficultyDifficult = "difficult"
)

// DefaultRatingsAverage is the rating shown for a tour with no reviews.
const DefaultRatingsAverage = 4.5

// Tour represents a bookable tour
type Tour struct {
	ID              int       `json:"id"`
	Name            string    `json:"name"`
	Slug            string    `json:"slug"`
	Duration        int       `json:"duration"`
	MaxGroupSize    int       `json:"max_group_size"`
	Difficulty      string    `json:"difficulty"`
	RatingsAverage  float64   `json:"ratings_average"`
	RatingsQuantity int       `json:"ratings_quantity"`
	Price           float64   `json:"price"`
	PriceDiscount   *float64  `json:"price_discount,omitempty"`
	Summary         string    `json:"summary"`
	Description     *string   `json:"description,omitempty"`
	ImageCover      string    `json:"image_cover"`
	SecretTour      bool      `json:"-"`
	Guides          []User    `json:"guides,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// CreateTourRequest is used for creating a new tour
type CreateTourRequest struct {
	Name          string   `json:"name" binding:"required"`
	Duration      int      `json:"duration" binding:"required,gt=0"`
	MaxGroupSize  int      `json:"max_group_size" binding:"required,gt=0"`
	Difficulty    string   `json:"difficulty" binding:"required,oneof=easy medium difficult"`
	Price         float64  `json:"price" binding:"required,gt=0"`
	PriceDiscount *float64 `json:"price_discount"`
	Summary       string   `json:"summary" binding:"required"`
	Description   *string  `json:"description"`
	ImageCover    string   `json:"image_cover"`
	SecretTour    bool     `json:"secret_tour"`
	GuideIDs      []int    `json:"guide_ids"`
}

type UpdateTourRequest struct {
	Name          *string  `json:"name,omitempty"` // Pointers to allow partial updates
	Duration      *int     `json:"duration,omitempty" binding:"omitempty,gt=0"`
	MaxGroupSize  *int     `json:"max_group_size,omitempty" binding:"omitempty,gt=0"`
	Difficulty    *string  `json:"difficulty,omitempty" binding:"omitempty,oneof=easy medium difficult"`
	Price         *float64 `json:"price,omitempty" binding:"omitempty,gt=0"`
	PriceDiscount *float64 `json:"price_discount,omitempty"`
	Summary       *string  `json:"summary,omitempty"`
	Description   *string  `json:"description,omitempty"`
	ImageCover    *string  `json:"image_cover,omitempty"`
	SecretTour    *bool    `json:"secret_tour,omitempty"`
	GuideIDs      []int    `json:"guide_ids,omitempty"`
}

// TourFilters contains filter parameters for tour listing
type TourFilters struct {
	Difficulty    *string
	MaxPrice      *float64
	MinRating     *float64
	IncludeSecret bool // admins and lead guides may list secret tours
	Limit         int
	SortBy        string // e.g. "price", "-ratings_average"
}

// DifficultyStats is one row of the per-difficulty aggregation
type DifficultyStats struct {
	Difficulty string  `json:"difficulty"`
	NumTours   int     `json:"num_tours"`
	NumRatings int     `json:"num_ratings"`
	AvgRating  float64 `json:"avg_rating"`
	AvgPrice   float64 `json:"avg_price"`
	MinPrice   float64 `json:"min_price"`
	MaxPrice   float64 `json:"max_price"`
}
