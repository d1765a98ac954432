package model

import "time"

// Review is a user's rating of a tour. A user may review a tour at most
// once; the (tour, user) pair is unique.
type Review struct {
	ID        int       `json:"id"`
	Review    string    `json:"review"`
	Rating    int       `json:"rating"`
	TourID    int       `json:"tour_id"`
	UserID    int       `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateReviewRequest is used for creating a new review
type CreateReviewRequest struct {
	Review string `json:"review" binding:"required"`
	Rating int    `json:"rating" binding:"required,min=1,max=5"`
	TourID int    `json:"tour_id" binding:"required"`
}

type UpdateReviewRequest struct {
	Review *string `json:"review,omitempty"`
	Rating *int    `json:"rating,omitempty" binding:"omitempty,min=1,max=5"`
}

// RatingStats is the aggregate recomputed after every review mutation
type RatingStats struct {
	Quantity int
	Average  float64
}
