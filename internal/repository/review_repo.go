package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"natours/internal/model"

	"github.com/jackc/pgx/v5"
)

// ReviewRepository defines operations for review data
type ReviewRepository interface {
	Create(ctx context.Context, review *model.Review) error
	FindByID(ctx context.Context, id int) (*model.Review, error)
	FindAll(ctx context.Context, tourID *int) ([]model.Review, error)
	Update(ctx context.Context, review *model.Review) error
	Delete(ctx context.Context, id int) error
	AggregateForTour(ctx context.Context, tourID int) (*model.RatingStats, error)
}

type reviewRepository struct {
	db DBTX
}

// NewReviewRepository creates a new ReviewRepository
func NewReviewRepository(db DBTX) ReviewRepository {
	return &reviewRepository{db: db}
}

const reviewColumns = `id, review, rating, tour_id, user_id, created_at`

func scanReview(row pgx.Row) (*model.Review, error) {
	rv := &model.Review{}
	err := row.Scan(&rv.ID, &rv.Review, &rv.Rating, &rv.TourID, &rv.UserID, &rv.CreatedAt)
	if err != nil {
		return nil, err
	}
	return rv, nil
}

// Create inserts a new review. Violating the one-review-per-(tour, user)
// constraint surfaces as ErrDuplicate.
func (r *reviewRepository) Create(ctx context.Context, rv *model.Review) error {
	sql := `INSERT INTO reviews (review, rating, tour_id, user_id, created_at)
            VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at`
	err := r.db.QueryRow(ctx, sql, rv.Review, rv.Rating, rv.TourID, rv.UserID, rv.CreatedAt).
		Scan(&rv.ID, &rv.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create review: %w", err)
	}
	return nil
}

// FindByID retrieves a review by its ID
func (r *reviewRepository) FindByID(ctx context.Context, id int) (*model.Review, error) {
	sql := `SELECT ` + reviewColumns + ` FROM reviews WHERE id = $1`
	rv, err := scanReview(r.db.QueryRow(ctx, sql, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to find review by ID: %w", err)
	}
	return rv, nil
}

// FindAll retrieves reviews, optionally scoped to one tour
func (r *reviewRepository) FindAll(ctx context.Context, tourID *int) ([]model.Review, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + reviewColumns + ` FROM reviews`)

	args := []interface{}{}
	if tourID != nil {
		queryBuilder.WriteString(" WHERE tour_id = $1")
		args = append(args, *tourID)
	}
	queryBuilder.WriteString(" ORDER BY created_at DESC")

	rows, err := r.db.Query(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query reviews: %w", err)
	}
	defer rows.Close()

	var reviews []model.Review
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan review row: %w", err)
		}
		reviews = append(reviews, *rv)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating review rows: %w", err)
	}
	return reviews, nil
}

// Update modifies the text and rating of an existing review
func (r *reviewRepository) Update(ctx context.Context, rv *model.Review) error {
	sql := `UPDATE reviews SET review = $1, rating = $2 WHERE id = $3 RETURNING id`
	var id int
	err := r.db.QueryRow(ctx, sql, rv.Review, rv.Rating, rv.ID).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("review not found for update")
		}
		return fmt.Errorf("failed to update review: %w", err)
	}
	return nil
}

// Delete removes a review from the database
func (r *reviewRepository) Delete(ctx context.Context, id int) error {
	sql := `DELETE FROM reviews WHERE id = $1`
	cmdTag, err := r.db.Exec(ctx, sql, id)
	if err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("review not found for deletion")
	}
	return nil
}

// AggregateForTour computes the review count and mean rating for a tour.
// Zero reviews yields Quantity 0 and Average 0; the caller substitutes
// the documented default.
func (r *reviewRepository) AggregateForTour(ctx context.Context, tourID int) (*model.RatingStats, error) {
	stats := &model.RatingStats{}
	sql := `SELECT COUNT(*), COALESCE(AVG(rating), 0) FROM reviews WHERE tour_id = $1`
	err := r.db.QueryRow(ctx, sql, tourID).Scan(&stats.Quantity, &stats.Average)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate reviews for tour %d: %w", tourID, err)
	}
	return stats, nil
}
