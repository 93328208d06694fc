package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"stip-taxii-backend/internal/domain/models"
)

// DocumentRepository is the store query adapter: it resolves a feed name to
// its configuration and issues the conjunctive source/version/time query.
type DocumentRepository struct {
	pool  *pgxpool.Pool
	feeds *FeedRepository
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(pool *pgxpool.Pool, feeds *FeedRepository) *DocumentRepository {
	return &DocumentRepository{pool: pool, feeds: feeds}
}

// QueryDocuments returns the documents of the named feed whose produced
// time lies strictly within the optional bounds. Result order is whatever
// the store yields; callers needing order must sort. An unconfigured feed
// name surfaces as ErrFeedNotFound.
func (r *DocumentRepository) QueryDocuments(ctx context.Context, feedName string, start, end *time.Time) ([]models.Document, error) {
	feed, err := r.feeds.GetByCollectionName(ctx, feedName)
	if err != nil {
		return nil, err
	}

	conditions := []string{
		"information_source = ANY($1)",
		"split_part(stix_version, '.', 1) = split_part($2, '.', 1)",
	}
	args := []any{feed.InformationSources, feed.STIXVersion}

	if start != nil {
		args = append(args, *start)
		conditions = append(conditions, fmt.Sprintf("produced > $%d", len(args)))
	}
	if end != nil {
		args = append(args, *end)
		conditions = append(conditions, fmt.Sprintf("produced < $%d", len(args)))
	}

	query := fmt.Sprintf(
		"SELECT content, produced FROM documents WHERE %s",
		strings.Join(conditions, " AND "),
	)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents for feed %q: %w", feedName, err)
	}
	defer rows.Close()

	var docs []models.Document
	for rows.Next() {
		var d models.Document
		if err := rows.Scan(&d.Content, &d.Produced); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}
