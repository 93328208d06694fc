package handlers

import (
	"stip-taxii-backend/internal/domain/services"
	"stip-taxii-backend/internal/infrastructure/cache"
	"stip-taxii-backend/internal/infrastructure/database"
	"stip-taxii-backend/internal/infrastructure/database/repository"
	"stip-taxii-backend/pkg/logger"
)

// Handlers holds all API handlers
type Handlers struct {
	Health   *HealthHandler
	Topology *TopologyHandler
	Stats    *StatsHandler
	Accounts *AccountsHandler
}

// Dependencies holds dependencies for handlers
type Dependencies struct {
	Backend  *services.Backend
	Auth     *services.AuthBackend
	DB       *database.PostgresDB
	Cache    *cache.RedisCache
	Feeds    *repository.FeedRepository
	Accounts *repository.AccountRepository
	Version  string
	Logger   *logger.Logger
}

// NewHandlers creates all handlers
func NewHandlers(deps Dependencies) *Handlers {
	return &Handlers{
		Health:   NewHealthHandler(deps.DB, deps.Cache, deps.Version, deps.Logger),
		Topology: NewTopologyHandler(deps.Backend, deps.Logger),
		Stats:    NewStatsHandler(deps.Feeds, deps.Cache, deps.Logger),
		Accounts: NewAccountsHandler(deps.Accounts, deps.Auth, deps.Logger),
	}
}
