package services

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"stip-taxii-backend/internal/domain/models"
	"stip-taxii-backend/pkg/logger"
)

// ServiceCatalog holds the TAXII services loaded once at startup from the
// static definition file. It is immutable after load.
type ServiceCatalog struct {
	services []models.Service
}

// LoadServiceCatalog reads the YAML definition file and builds the catalog.
// Each definition is a map with required id and type keys; every other key
// is passed through verbatim as a service property. Any malformed
// definition is an error: the process must not start with a partial catalog.
func LoadServiceCatalog(path string, log *logger.Logger) (*ServiceCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read service definitions: %w", err)
	}
	return ParseServiceCatalog(data, log)
}

// ParseServiceCatalog builds a catalog from raw YAML definitions.
func ParseServiceCatalog(data []byte, log *logger.Logger) (*ServiceCatalog, error) {
	var defs []map[string]any
	if err := yaml.Unmarshal(data, &defs); err != nil {
		return nil, fmt.Errorf("failed to parse service definitions: %w", err)
	}

	catalog := &ServiceCatalog{services: make([]models.Service, 0, len(defs))}
	for i, def := range defs {
		id, ok := def["id"].(string)
		if !ok || id == "" {
			return nil, fmt.Errorf("service definition %d: missing id", i)
		}
		rawType, ok := def["type"].(string)
		if !ok || rawType == "" {
			return nil, fmt.Errorf("service definition %q: missing type", id)
		}
		svcType := models.ServiceType(rawType)
		if !svcType.Valid() {
			return nil, fmt.Errorf("service definition %q: unknown type %q", id, rawType)
		}

		props := make(map[string]any, len(def)-2)
		for k, v := range def {
			if k == "id" || k == "type" {
				continue
			}
			props[k] = v
		}

		catalog.services = append(catalog.services, models.Service{
			ID:         id,
			Type:       svcType,
			Properties: props,
		})
	}

	if log != nil {
		log.Info().Int("services", len(catalog.services)).Msg("service catalog loaded")
	}
	return catalog, nil
}

// All returns every service in definition order.
func (c *ServiceCatalog) All() []models.Service {
	return c.services
}

// Find returns the service with the given id, or nil if absent.
func (c *ServiceCatalog) Find(id string) *models.Service {
	for i := range c.services {
		if c.services[i].ID == id {
			return &c.services[i]
		}
	}
	return nil
}

// IDs returns the service ids in definition order.
func (c *ServiceCatalog) IDs() []string {
	ids := make([]string, len(c.services))
	for i, s := range c.services {
		ids[i] = s.ID
	}
	return ids
}
