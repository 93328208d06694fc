package services

import (
	"strconv"

	"stip-taxii-backend/internal/domain/models"
)

// linkEligibleServices are the service ids that reach data collections.
// Every collection links to every catalog service with one of these ids;
// the topology is "all collections reachable from all data services", not
// per-collection access control.
var linkEligibleServices = []string{"collection_management", "poll", "inbox"}

// CollectionTopology is the startup-built mapping between feeds, TAXII
// collections, and services. Immutable after Build.
type CollectionTopology struct {
	collections []models.Collection
	// serviceID -> collection ids, in link-insertion order (== feed
	// enumeration order, since links are added per feed).
	links map[string][]string
}

// BuildCollectionTopology derives the topology from the registered feeds.
// Collection ids are assigned sequentially from "0" in feed enumeration
// order; NameOf is the exact inverse of that assignment.
func BuildCollectionTopology(feeds []models.Feed, catalog *ServiceCatalog) *CollectionTopology {
	t := &CollectionTopology{
		collections: make([]models.Collection, 0, len(feeds)),
		links:       make(map[string][]string),
	}

	for i, feed := range feeds {
		id := strconv.Itoa(i)
		t.collections = append(t.collections, models.Collection{
			ID:               id,
			Name:             feed.CollectionName,
			Type:             models.CollectionTypeDataFeed,
			AcceptAllContent: true,
			Available:        true,
		})

		for _, serviceID := range linkEligibleServices {
			if catalog.Find(serviceID) == nil {
				continue
			}
			t.links[serviceID] = append(t.links[serviceID], id)
		}
	}

	return t
}

// Collections returns every collection in id order.
func (t *CollectionTopology) Collections() []models.Collection {
	return t.collections
}

// CollectionsForService returns the collections linked to serviceID in
// link-insertion order. Unknown services yield an empty slice, never an
// error: TAXII clients probe with arbitrary ids and must get empty-not-broken.
func (t *CollectionTopology) CollectionsForService(serviceID string) []models.Collection {
	ids := t.links[serviceID]
	cols := make([]models.Collection, 0, len(ids))
	for _, id := range ids {
		for _, col := range t.collections {
			if col.ID == id {
				cols = append(cols, col)
				break
			}
		}
	}
	return cols
}

// CollectionForNameAndService returns the first collection reachable from
// serviceID with the given name, or nil.
func (t *CollectionTopology) CollectionForNameAndService(name, serviceID string) *models.Collection {
	for _, col := range t.CollectionsForService(serviceID) {
		if col.Name == name {
			c := col
			return &c
		}
	}
	return nil
}

// NameOf returns the feed name behind collectionID. The second return is
// false when the id is unknown; callers treat that as "no matching feed"
// and short-circuit to an empty result.
func (t *CollectionTopology) NameOf(collectionID string) (string, bool) {
	for _, col := range t.collections {
		if col.ID == collectionID {
			return col.Name, true
		}
	}
	return "", false
}
