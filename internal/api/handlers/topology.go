package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"stip-taxii-backend/internal/domain/services"
	"stip-taxii-backend/pkg/logger"
)

// TopologyHandler exposes the startup-built service/collection topology for
// operators. This is a diagnostic surface, not the TAXII wire protocol.
type TopologyHandler struct {
	backend *services.Backend
	logger  *logger.Logger
}

// NewTopologyHandler creates a new TopologyHandler
func NewTopologyHandler(backend *services.Backend, log *logger.Logger) *TopologyHandler {
	return &TopologyHandler{
		backend: backend,
		logger:  log.WithComponent("topology"),
	}
}

type serviceView struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	Properties map[string]any `json:"properties,omitempty"`
}

type collectionView struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	Available bool   `json:"available"`
}

// ListServices handles GET /api/v1/services
func (h *TopologyHandler) ListServices(w http.ResponseWriter, r *http.Request) {
	svcs := h.backend.ListServices("")
	views := make([]serviceView, 0, len(svcs))
	for _, s := range svcs {
		views = append(views, serviceView{
			ID:         s.ID,
			Type:       string(s.Type),
			Properties: s.Properties,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"services": views})
}

// ListCollections handles GET /api/v1/services/{service_id}/collections
func (h *TopologyHandler) ListCollections(w http.ResponseWriter, r *http.Request) {
	serviceID := chi.URLParam(r, "service_id")

	collections := h.backend.ListCollections(serviceID)
	views := make([]collectionView, 0, len(collections))
	for _, c := range collections {
		views = append(views, collectionView{
			ID:        c.ID,
			Name:      c.Name,
			Type:      c.Type,
			Available: c.Available,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"service_id":  serviceID,
		"collections": views,
	})
}
