package config

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ConnectDB establishes a connection to the PostgreSQL database
func ConnectDB(cfg *Config) (*pgxpool.Pool, error) {
	var pool *pgxpool.Pool
	var err error

	// Retry connecting to the database a few times
	maxRetries := 5
	retryInterval := 5 * time.Second

	for i := 0; i < maxRetries; i++ {
		pool, err = pgxpool.New(context.Background(), cfg.DSN())
		if err == nil {
			err = pool.Ping(context.Background())
			if err == nil {
				log.Println("Successfully connected to PostgreSQL!")
				return pool, nil
			}
		}
		log.Printf("Failed to connect to database (attempt %d/%d): %v. Retrying in %v...", i+1, maxRetries, err, retryInterval)
		time.Sleep(retryInterval)
	}
	return nil, fmt.Errorf("unable to connect to database after %d attempts: %w", maxRetries, err)
}

// AutoMigrate creates tables if they don't exist
func AutoMigrate(db *pgxpool.Pool) error {
	sql := `
	CREATE TABLE IF NOT EXISTS users (
		id SERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT UNIQUE NOT NULL,
		photo TEXT NOT NULL DEFAULT 'default.jpg',
		role TEXT NOT NULL CHECK (role IN ('user', 'admin', 'guide', 'lead-guide')) DEFAULT 'user',
		password_hash TEXT NOT NULL,
		password_changed_at TIMESTAMP WITH TIME ZONE,
		password_reset_token TEXT,
		password_reset_expires TIMESTAMP WITH TIME ZONE,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS tours (
		id SERIAL PRIMARY KEY,
		name TEXT UNIQUE NOT NULL,
		slug TEXT NOT NULL,
		duration INT NOT NULL,
		max_group_size INT NOT NULL,
		difficulty TEXT NOT NULL CHECK (difficulty IN ('easy', 'medium', 'difficult')),
		ratings_average NUMERIC(3,1) NOT NULL DEFAULT 4.5,
		ratings_quantity INT NOT NULL DEFAULT 0,
		price NUMERIC(10,2) NOT NULL,
		price_discount NUMERIC(10,2),
		summary TEXT NOT NULL,
		description TEXT,
		image_cover TEXT NOT NULL DEFAULT '',
		secret_tour BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS tour_guides (
		tour_id INT NOT NULL REFERENCES tours(id) ON DELETE CASCADE,
		user_id INT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		PRIMARY KEY (tour_id, user_id)
	);

	CREATE TABLE IF NOT EXISTS reviews (
		id SERIAL PRIMARY KEY,
		review TEXT NOT NULL,
		rating INT NOT NULL CHECK (rating BETWEEN 1 AND 5),
		tour_id INT NOT NULL REFERENCES tours(id) ON DELETE CASCADE,
		user_id INT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
		UNIQUE (tour_id, user_id)
	);

	-- Indexes for performance
	CREATE INDEX IF NOT EXISTS idx_tours_slug ON tours(slug);
	CREATE INDEX IF NOT EXISTS idx_tours_price_rating ON tours(price, ratings_average DESC);
	CREATE INDEX IF NOT EXISTS idx_reviews_tour_id ON reviews(tour_id);
	CREATE INDEX IF NOT EXISTS idx_users_reset_token ON users(password_reset_token);
	`
	_, err := db.Exec(context.Background(), sql)
	if err != nil {
		return fmt.Errorf("unable to apply migrations: %w", err)
	}

	log.Println("AutoMigrate applied successfully")
	return nil
}
