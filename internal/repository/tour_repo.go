package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"natours/internal/model"

	"github.com/jackc/pgx/v5"
)

// TourRepository defines operations for tour data. Secret tours are
// excluded from every read unless the filter opts in explicitly; the
// filter lives here, where the queries are built.
type TourRepository interface {
	Create(ctx context.Context, tour *model.Tour) error
	FindByID(ctx context.Context, id int) (*model.Tour, error)
	FindBySlug(ctx context.Context, slug string) (*model.Tour, error)
	FindAll(ctx context.Context, filters model.TourFilters) ([]model.Tour, error)
	Update(ctx context.Context, tour *model.Tour) error
	Delete(ctx context.Context, id int) error
	ReplaceGuides(ctx context.Context, tourID int, guideIDs []int) error
	UpdateRatingStats(ctx context.Context, tourID int, quantity int, average float64) error
	GetDifficultyStats(ctx context.Context) ([]model.DifficultyStats, error)
}

type tourRepository struct {
	db DBTX
}

// NewTourRepository creates a new TourRepository
func NewTourRepository(db DBTX) TourRepository {
	return &tourRepository{db: db}
}

const tourColumns = `id, name, slug, duration, max_group_size, difficulty, ratings_average,
            ratings_quantity, price, price_discount, summary, description, image_cover, secret_tour, created_at`

func scanTour(row pgx.Row) (*model.Tour, error) {
	t := &model.Tour{}
	err := row.Scan(&t.ID, &t.Name, &t.Slug, &t.Duration, &t.MaxGroupSize, &t.Difficulty,
		&t.RatingsAverage, &t.RatingsQuantity, &t.Price, &t.PriceDiscount, &t.Summary,
		&t.Description, &t.ImageCover, &t.SecretTour, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Create inserts a new tour into the database
func (r *tourRepository) Create(ctx context.Context, t *model.Tour) error {
	sql := `INSERT INTO tours (name, slug, duration, max_group_size, difficulty, price, price_discount, summary, description, image_cover, secret_tour, created_at)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
            RETURNING id, ratings_average, ratings_quantity, created_at`
	err := r.db.QueryRow(ctx, sql, t.Name, t.Slug, t.Duration, t.MaxGroupSize, t.Difficulty,
		t.Price, t.PriceDiscount, t.Summary, t.Description, t.ImageCover, t.SecretTour, t.CreatedAt).
		Scan(&t.ID, &t.RatingsAverage, &t.RatingsQuantity, &t.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create tour: %w", err)
	}
	return nil
}

// FindByID retrieves a non-secret tour by its ID, guides included
func (r *tourRepository) FindByID(ctx context.Context, id int) (*model.Tour, error) {
	sql := `SELECT ` + tourColumns + ` FROM tours WHERE id = $1 AND secret_tour = FALSE`
	t, err := scanTour(r.db.QueryRow(ctx, sql, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to find tour by ID: %w", err)
	}
	if err := r.loadGuides(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// FindBySlug retrieves a non-secret tour by its slug, guides included
func (r *tourRepository) FindBySlug(ctx context.Context, slug string) (*model.Tour, error) {
	sql := `SELECT ` + tourColumns + ` FROM tours WHERE slug = $1 AND secret_tour = FALSE`
	t, err := scanTour(r.db.QueryRow(ctx, sql, slug))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find tour by slug: %w", err)
	}
	if err := r.loadGuides(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// FindAll retrieves tours with optional filters
func (r *tourRepository) FindAll(ctx context.Context, filters model.TourFilters) ([]model.Tour, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + tourColumns + ` FROM tours`)

	args := []interface{}{}
	argCount := 1
	var conditions []string

	if !filters.IncludeSecret {
		conditions = append(conditions, "secret_tour = FALSE")
	}
	if filters.Difficulty != nil && *filters.Difficulty != "" {
		conditions = append(conditions, fmt.Sprintf("difficulty = $%d", argCount))
		args = append(args, *filters.Difficulty)
		argCount++
	}
	if filters.MaxPrice != nil {
		conditions = append(conditions, fmt.Sprintf("price <= $%d", argCount))
		args = append(args, *filters.MaxPrice)
		argCount++
	}
	if filters.MinRating != nil {
		conditions = append(conditions, fmt.Sprintf("ratings_average >= $%d", argCount))
		args = append(args, *filters.MinRating)
		argCount++
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE ")
		queryBuilder.WriteString(strings.Join(conditions, " AND "))
	}

	queryBuilder.WriteString(" ORDER BY ")
	queryBuilder.WriteString(orderClause(filters.SortBy))

	if filters.Limit > 0 {
		queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d", argCount))
		args = append(args, filters.Limit)
	}

	rows, err := r.db.Query(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tours: %w", err)
	}
	defer rows.Close()

	var tours []model.Tour
	for rows.Next() {
		t, err := scanTour(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tour row: %w", err)
		}
		tours = append(tours, *t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tour rows: %w", err)
	}
	return tours, nil
}

// orderClause maps a sort spec like "-ratings_average,price" onto a safe
// ORDER BY fragment. Unknown columns are ignored.
func orderClause(sortBy string) string {
	allowed := map[string]string{
		"price":           "price",
		"ratings_average": "ratings_average",
		"duration":        "duration",
		"created_at":      "created_at",
	}
	var parts []string
	for _, field := range strings.Split(sortBy, ",") {
		field = strings.TrimSpace(field)
		desc := strings.HasPrefix(field, "-")
		field = strings.TrimPrefix(field, "-")
		col, ok := allowed[field]
		if !ok {
			continue
		}
		if desc {
			col += " DESC"
		}
		parts = append(parts, col)
	}
	if len(parts) == 0 {
		return "created_at DESC"
	}
	return strings.Join(parts, ", ")
}

// Update rewrites the mutable fields of an existing tour
func (r *tourRepository) Update(ctx context.Context, t *model.Tour) error {
	sql := `UPDATE tours
            SET name = $1, slug = $2, duration = $3, max_group_size = $4, difficulty = $5,
                price = $6, price_discount = $7, summary = $8, description = $9,
                image_cover = $10, secret_tour = $11
            WHERE id = $12 RETURNING id`
	var id int
	err := r.db.QueryRow(ctx, sql, t.Name, t.Slug, t.Duration, t.MaxGroupSize, t.Difficulty,
		t.Price, t.PriceDiscount, t.Summary, t.Description, t.ImageCover, t.SecretTour, t.ID).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("tour not found for update")
		}
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to update tour: %w", err)
	}
	return nil
}

// Delete removes a tour from the database
func (r *tourRepository) Delete(ctx context.Context, id int) error {
	sql := `DELETE FROM tours WHERE id = $1`
	cmdTag, err := r.db.Exec(ctx, sql, id)
	if err != nil {
		return fmt.Errorf("failed to delete tour: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("tour not found for deletion")
	}
	return nil
}

// ReplaceGuides swaps the tour's guide set for the given user ids
func (r *tourRepository) ReplaceGuides(ctx context.Context, tourID int, guideIDs []int) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM tour_guides WHERE tour_id = $1`, tourID); err != nil {
		return fmt.Errorf("failed to clear tour guides: %w", err)
	}
	for _, guideID := range guideIDs {
		_, err := r.db.Exec(ctx, `INSERT INTO tour_guides (tour_id, user_id) VALUES ($1, $2)`, tourID, guideID)
		if err != nil {
			return fmt.Errorf("failed to attach guide %d: %w", guideID, err)
		}
	}
	return nil
}

// UpdateRatingStats writes the denormalized aggregate back to the tour.
// Secret tours are included on purpose: their reviews still exist.
func (r *tourRepository) UpdateRatingStats(ctx context.Context, tourID int, quantity int, average float64) error {
	sql := `UPDATE tours SET ratings_quantity = $2, ratings_average = $3 WHERE id = $1`
	if _, err := r.db.Exec(ctx, sql, tourID, quantity, average); err != nil {
		return fmt.Errorf("failed to update rating stats: %w", err)
	}
	return nil
}

// loadGuides populates the tour's guide list
func (r *tourRepository) loadGuides(ctx context.Context, t *model.Tour) error {
	sql := `SELECT u.id, u.name, u.email, u.photo, u.role, u.password_hash, u.password_changed_at,
              u.password_reset_token, u.password_reset_expires, u.active, u.created_at
            FROM users u JOIN tour_guides tg ON tg.user_id = u.id
            WHERE tg.tour_id = $1 AND u.active = TRUE ORDER BY u.id`
	rows, err := r.db.Query(ctx, sql, t.ID)
	if err != nil {
		return fmt.Errorf("failed to load tour guides: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return fmt.Errorf("failed to scan guide row: %w", err)
		}
		t.Guides = append(t.Guides, *u)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating guide rows: %w", err)
	}
	return nil
}

// GetDifficultyStats aggregates tours per difficulty level
func (r *tourRepository) GetDifficultyStats(ctx context.Context) ([]model.DifficultyStats, error) {
	sql := `SELECT difficulty,
              COUNT(*) AS num_tours,
              COALESCE(SUM(ratings_quantity), 0) AS num_ratings,
              COALESCE(ROUND(AVG(ratings_average), 2), 0) AS avg_rating,
              COALESCE(ROUND(AVG(price), 2), 0) AS avg_price,
              COALESCE(MIN(price), 0) AS min_price,
              COALESCE(MAX(price), 0) AS max_price
            FROM tours WHERE secret_tour = FALSE
            GROUP BY difficulty ORDER BY avg_price`
	rows, err := r.db.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("failed to query difficulty stats: %w", err)
	}
	defer rows.Close()

	var stats []model.DifficultyStats
	for rows.Next() {
		var s model.DifficultyStats
		if err := rows.Scan(&s.Difficulty, &s.NumTours, &s.NumRatings, &s.AvgRating,
			&s.AvgPrice, &s.MinPrice, &s.MaxPrice); err != nil {
			return nil, fmt.Errorf("failed to scan difficulty stats: %w", err)
		}
		stats = append(stats, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating difficulty stats: %w", err)
	}
	return stats, nil
}
