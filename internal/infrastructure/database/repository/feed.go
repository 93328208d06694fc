package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"stip-taxii-backend/internal/domain/models"
)

// ErrFeedNotFound is returned when a feed name has no configuration row.
var ErrFeedNotFound = errors.New("feed not found")

// FeedRepository handles feed configuration persistence
type FeedRepository struct {
	pool *pgxpool.Pool
}

// NewFeedRepository creates a new feed repository
func NewFeedRepository(pool *pgxpool.Pool) *FeedRepository {
	return &FeedRepository{pool: pool}
}

// Create inserts a new feed configuration
func (r *FeedRepository) Create(ctx context.Context, f *models.Feed) (*models.Feed, error) {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	now := time.Now()
	f.CreatedAt = now
	f.UpdatedAt = now

	query := `
		INSERT INTO feeds (id, collection_name, information_sources, stix_version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		f.ID, f.CollectionName, f.InformationSources, f.STIXVersion, f.CreatedAt, f.UpdatedAt,
	).Scan(&f.ID, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create feed: %w", err)
	}

	return f, nil
}

// GetByCollectionName retrieves the feed backing a collection name.
// Returns ErrFeedNotFound when no such feed is configured.
func (r *FeedRepository) GetByCollectionName(ctx context.Context, name string) (*models.Feed, error) {
	query := `
		SELECT id, collection_name, information_sources, stix_version, created_at, updated_at
		FROM feeds
		WHERE collection_name = $1`

	f := &models.Feed{}
	err := r.pool.QueryRow(ctx, query, name).Scan(
		&f.ID, &f.CollectionName, &f.InformationSources, &f.STIXVersion, &f.CreatedAt, &f.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrFeedNotFound, name)
		}
		return nil, fmt.Errorf("failed to get feed %q: %w", name, err)
	}
	return f, nil
}

// List retrieves all feeds in registration order. The topology derives
// collection ids from this order, so it must be stable across restarts.
func (r *FeedRepository) List(ctx context.Context) ([]models.Feed, error) {
	query := `
		SELECT id, collection_name, information_sources, stix_version, created_at, updated_at
		FROM feeds
		ORDER BY created_at, id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list feeds: %w", err)
	}
	defer rows.Close()

	var feeds []models.Feed
	for rows.Next() {
		var f models.Feed
		if err := rows.Scan(&f.ID, &f.CollectionName, &f.InformationSources, &f.STIXVersion, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan feed: %w", err)
		}
		feeds = append(feeds, f)
	}
	return feeds, rows.Err()
}

// CountDocuments counts the raw documents currently linked to the feed's
// sources. Used by the ops stats surface only; poll counts go through the
// persistence backend so the content filter applies.
func (r *FeedRepository) CountDocuments(ctx context.Context, f *models.Feed) (int64, error) {
	query := `
		SELECT count(*)
		FROM documents
		WHERE information_source = ANY($1)
		  AND split_part(stix_version, '.', 1) = split_part($2, '.', 1)`

	var count int64
	if err := r.pool.QueryRow(ctx, query, f.InformationSources, f.STIXVersion).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count documents for feed %q: %w", f.CollectionName, err)
	}
	return count, nil
}
