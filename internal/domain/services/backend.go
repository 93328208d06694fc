package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"stip-taxii-backend/internal/domain/models"
	"stip-taxii-backend/pkg/logger"
)

// DocumentStore is the store query boundary. QueryDocuments returns every
// document of the named feed within the (exclusive, independently optional)
// produced-time bounds, in store-defined order. An unknown feed name is an
// error here: feed names reaching the store are trusted to have come from
// the topology, so a miss means misconfiguration, not a client probe.
type DocumentStore interface {
	QueryDocuments(ctx context.Context, feedName string, start, end *time.Time) ([]models.Document, error)
}

// Registrar is the external ingestion capability invoked on push.
type Registrar interface {
	Register(ctx context.Context, path, community, via string) error
}

// BackendConfig carries the construction-time settings of the backend.
type BackendConfig struct {
	// Community and Via fix where all push traffic lands, regardless of
	// which collections the client targeted.
	Community  string
	Via        string
	StagingDir string
}

// Backend is the TAXII persistence contract: a stateless façade over the
// startup-built catalog and topology, the content filter, the document
// store and the ingestion pipeline. All fields are read-only after
// construction, so concurrent request handlers need no locking.
type Backend struct {
	catalog   *ServiceCatalog
	topology  *CollectionTopology
	filter    *ContentFilter
	store     DocumentStore
	registrar Registrar
	cfg       BackendConfig
	logger    *logger.Logger
}

// NewBackend creates the persistence backend.
func NewBackend(
	catalog *ServiceCatalog,
	topology *CollectionTopology,
	filter *ContentFilter,
	store DocumentStore,
	registrar Registrar,
	cfg BackendConfig,
	log *logger.Logger,
) *Backend {
	return &Backend{
		catalog:   catalog,
		topology:  topology,
		filter:    filter,
		store:     store,
		registrar: registrar,
		cfg:       cfg,
		logger:    log.WithComponent("persistence"),
	}
}

// ListServices returns the full service catalog. collectionID is reserved
// for per-collection service scoping and currently ignored.
func (b *Backend) ListServices(collectionID string) []models.Service {
	_ = collectionID
	return b.catalog.All()
}

// ListCollections returns the collections reachable from serviceID.
// Unknown services yield an empty list.
func (b *Backend) ListCollections(serviceID string) []models.Collection {
	return b.topology.CollectionsForService(serviceID)
}

// GetCollection returns the collection with the given name reachable from
// serviceID, or nil.
func (b *Backend) GetCollection(name, serviceID string) *models.Collection {
	return b.topology.CollectionForNameAndService(name, serviceID)
}

// CountContentBlocks counts the blocks a poll over the same range would
// return. Defined as the length of an unbounded fetch so the blacklist
// filter is honored when counting.
func (b *Backend) CountContentBlocks(ctx context.Context, collectionID string, start, end *time.Time) (int, error) {
	blocks, err := b.FetchContentBlocks(ctx, collectionID, start, end, 0, 0)
	if err != nil {
		return 0, err
	}
	return len(blocks), nil
}

// FetchContentBlocks resolves collectionID to a feed, queries the store for
// the time range, and wraps the surviving documents as content blocks.
// offset/limit bound the raw query result before filtering: offset is the
// first index considered and limit the exclusive end index (limit <= 0
// means unbounded). The filter can reduce the returned count below the
// window size but never shifts which documents are considered.
func (b *Backend) FetchContentBlocks(ctx context.Context, collectionID string, start, end *time.Time, offset, limit int) ([]models.ContentBlock, error) {
	name, ok := b.topology.NameOf(collectionID)
	if !ok {
		return nil, nil
	}

	docs, err := b.store.QueryDocuments(ctx, name, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query feed %q: %w", name, err)
	}

	// Positional slice over the raw result, applied once up front.
	if offset < 0 {
		offset = 0
	}
	if offset > len(docs) {
		offset = len(docs)
	}
	stop := len(docs)
	if limit > 0 && limit < stop {
		stop = limit
	}
	if stop < offset {
		stop = offset
	}
	docs = docs[offset:stop]

	timestampLabel := time.Now().UTC()
	binding := models.ContentBinding{Binding: models.STIXContentBinding}

	blocks := make([]models.ContentBlock, 0, len(docs))
	for _, doc := range docs {
		if !b.filter.Accept(doc.Content) {
			continue
		}
		blocks = append(blocks, models.ContentBlock{
			Content:        doc.Content,
			TimestampLabel: timestampLabel,
			ContentBinding: binding,
			Message:        models.ContentBlockMessage,
		})
	}
	return blocks, nil
}

// CreateInboxMessage acknowledges a push. Nothing is validated or stored.
func (b *Backend) CreateInboxMessage(msg *models.InboxMessage) *models.InboxMessage {
	return msg
}

// CreateContentBlock stages the pushed payload and hands it to the
// ingestion pipeline. community/via are fixed at construction, not derived
// from the targeted collections. The staging file is always removed; on
// ingestion failure the original error is logged and propagated so the
// protocol layer can report a failure status.
func (b *Backend) CreateContentBlock(ctx context.Context, block *models.ContentBlock, collectionIDs []string, serviceID string) (*models.ContentBlock, error) {
	path := filepath.Join(b.cfg.StagingDir, fmt.Sprintf("push-%s.xml", uuid.New()))
	if err := os.WriteFile(path, block.Content, 0o600); err != nil {
		return nil, fmt.Errorf("failed to stage pushed content: %w", err)
	}
	defer os.Remove(path)

	if err := b.registrar.Register(ctx, path, b.cfg.Community, b.cfg.Via); err != nil {
		b.logger.Error().Err(err).
			Str("service_id", serviceID).
			Strs("collection_ids", collectionIDs).
			Msg("ingestion failed for pushed content block")
		return nil, err
	}

	b.logger.Info().
		Str("community", b.cfg.Community).
		Int("bytes", len(block.Content)).
		Msg("content block registered")
	return block, nil
}

// CreateResultSet is a stub: result-set management is unsupported.
func (b *Backend) CreateResultSet(rs *models.ResultSet) *models.ResultSet {
	return rs
}

// CreateSubscription is a stub: subscriptions are unsupported.
func (b *Backend) CreateSubscription(sub *models.Subscription) {}

// UpdateSubscription is a stub: subscriptions are unsupported.
func (b *Backend) UpdateSubscription(sub *models.Subscription) {}

// GetSubscription is a stub: subscriptions are unsupported.
func (b *Backend) GetSubscription(subscriptionID string) *models.Subscription {
	return nil
}

// GetSubscriptions is a stub: subscriptions are unsupported.
func (b *Backend) GetSubscriptions(serviceID string) []models.Subscription {
	return nil
}

// AttachCollectionToServices is a stub: the topology is fixed at startup.
func (b *Backend) AttachCollectionToServices(collectionID string, serviceIDs []string) {}
