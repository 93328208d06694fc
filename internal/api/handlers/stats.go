package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"stip-taxii-backend/internal/infrastructure/cache"
	"stip-taxii-backend/internal/infrastructure/database/repository"
	"stip-taxii-backend/pkg/logger"
)

const (
	statsCacheKey = "stats:feeds"
	statsCacheTTL = 60 * time.Second
)

// StatsHandler reports per-feed raw document counts for operators. Counts
// here are unfiltered store counts; poll counts always go through the
// persistence backend so the submitter blacklist applies.
type StatsHandler struct {
	feeds  *repository.FeedRepository
	cache  *cache.RedisCache
	logger *logger.Logger
}

// NewStatsHandler creates a new StatsHandler
func NewStatsHandler(feeds *repository.FeedRepository, c *cache.RedisCache, log *logger.Logger) *StatsHandler {
	return &StatsHandler{
		feeds:  feeds,
		cache:  c,
		logger: log.WithComponent("stats"),
	}
}

// FeedStats holds one feed's document count
type FeedStats struct {
	CollectionName string `json:"collection_name"`
	DocumentCount  int64  `json:"document_count"`
}

// StatsResponse is the stats endpoint payload
type StatsResponse struct {
	Feeds       []FeedStats `json:"feeds"`
	GeneratedAt time.Time   `json:"generated_at"`
}

// Get handles GET /api/v1/stats
func (h *StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var response StatsResponse
	if h.cache != nil {
		if err := h.cache.GetJSON(ctx, statsCacheKey, &response); err == nil {
			h.respond(w, &response)
			return
		} else if !cache.IsMiss(err) {
			h.logger.Warn().Err(err).Msg("stats cache read failed")
		}
	}

	feeds, err := h.feeds.List(ctx)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list feeds")
		http.Error(w, `{"error":"failed to collect stats"}`, http.StatusInternalServerError)
		return
	}

	response.Feeds = make([]FeedStats, 0, len(feeds))
	for i := range feeds {
		count, err := h.feeds.CountDocuments(ctx, &feeds[i])
		if err != nil {
			h.logger.Error().Err(err).Str("feed", feeds[i].CollectionName).Msg("failed to count documents")
			http.Error(w, `{"error":"failed to collect stats"}`, http.StatusInternalServerError)
			return
		}
		response.Feeds = append(response.Feeds, FeedStats{
			CollectionName: feeds[i].CollectionName,
			DocumentCount:  count,
		})
	}
	response.GeneratedAt = time.Now().UTC()

	if h.cache != nil {
		if err := h.cache.SetJSON(ctx, statsCacheKey, &response, statsCacheTTL); err != nil {
			h.logger.Warn().Err(err).Msg("stats cache write failed")
		}
	}

	h.respond(w, &response)
}

func (h *StatsHandler) respond(w http.ResponseWriter, response *StatsResponse) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}
