package services

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stip-taxii-backend/internal/domain/models"
	"stip-taxii-backend/pkg/logger"
)

// fakeStore serves canned documents per feed name.
type fakeStore struct {
	docs map[string][]models.Document
	err  error
}

func (s *fakeStore) QueryDocuments(ctx context.Context, feedName string, start, end *time.Time) ([]models.Document, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.docs[feedName], nil
}

// fakeRegistrar records the staged path and optionally fails.
type fakeRegistrar struct {
	path      string
	community string
	via       string
	err       error
}

func (r *fakeRegistrar) Register(ctx context.Context, path, community, via string) error {
	r.path = path
	r.community = community
	r.via = via
	return r.err
}

func doc(body string) models.Document {
	return models.Document{Content: []byte(body), Produced: time.Now()}
}

func newTestBackend(t *testing.T, store DocumentStore, registrar Registrar, blacklist []string) *Backend {
	t.Helper()

	catalog := testCatalog(t)
	topology := BuildCollectionTopology(testFeeds("A", "B", "C"), catalog)
	parser := &stubParser{packages: map[string]*models.Package{
		"by-eve":   markedBy("eve"),
		"by-bob":   markedBy("bob"),
		"by-carol": markedBy("carol"),
		"unmarked": {},
	}}
	filter := NewContentFilter(parser, blacklist, logger.Nop())

	return NewBackend(catalog, topology, filter, store, registrar, BackendConfig{
		Community:  "test-community",
		Via:        "taxii",
		StagingDir: t.TempDir(),
	}, logger.Nop())
}

func TestListServices(t *testing.T) {
	backend := newTestBackend(t, &fakeStore{}, &fakeRegistrar{}, nil)

	// collection_id is reserved and ignored: the full catalog comes back.
	assert.Len(t, backend.ListServices(""), 4)
	assert.Len(t, backend.ListServices("1"), 4)
}

func TestListCollectionsUnknownService(t *testing.T) {
	backend := newTestBackend(t, &fakeStore{}, &fakeRegistrar{}, nil)
	assert.Empty(t, backend.ListCollections("no-such-service"))
}

func TestGetCollection(t *testing.T) {
	backend := newTestBackend(t, &fakeStore{}, &fakeRegistrar{}, nil)

	col := backend.GetCollection("B", "poll")
	require.NotNil(t, col)
	assert.Equal(t, "1", col.ID)
}

func TestFetchContentBlocksFiltersBlacklisted(t *testing.T) {
	store := &fakeStore{docs: map[string][]models.Document{
		"A": {doc("by-eve"), doc("by-bob")},
	}}
	backend := newTestBackend(t, store, &fakeRegistrar{}, []string{"eve"})

	blocks, err := backend.FetchContentBlocks(context.Background(), "0", nil, nil, 0, 0)
	require.NoError(t, err)
	require.Len(t, blocks, 1)
	assert.Equal(t, []byte("by-bob"), blocks[0].Content)
	assert.Equal(t, models.STIXContentBinding, blocks[0].ContentBinding.Binding)
	assert.Equal(t, models.ContentBlockMessage, blocks[0].Message)
	assert.Equal(t, time.UTC, blocks[0].TimestampLabel.Location())
}

func TestFetchContentBlocksSliceBeforeFilter(t *testing.T) {
	store := &fakeStore{docs: map[string][]models.Document{
		"A": {doc("by-eve"), doc("by-bob"), doc("by-carol")},
	}}
	backend := newTestBackend(t, store, &fakeRegistrar{}, []string{"eve"})

	// limit is the exclusive end index of the raw result, not a count: the
	// window [by-eve by-bob] loses by-eve to the filter, so only one block
	// comes back even though by-carol would qualify.
	blocks, err := backend.FetchContentBlocks(context.Background(), "0", nil, nil, 0, 2)
	require.NoError(t, err)
	require.Len(t, blocks, 1)
	assert.Equal(t, []byte("by-bob"), blocks[0].Content)

	// With both bounds set the window is docs[offset:limit]. Here that is
	// the single document by-bob; by-carol sits past the end index and is
	// never considered.
	blocks, err = backend.FetchContentBlocks(context.Background(), "0", nil, nil, 1, 2)
	require.NoError(t, err)
	require.Len(t, blocks, 1)
	assert.Equal(t, []byte("by-bob"), blocks[0].Content)

	// offset skips raw documents, preserving relative order of the rest.
	blocks, err = backend.FetchContentBlocks(context.Background(), "0", nil, nil, 1, 0)
	require.NoError(t, err)
	require.Len(t, blocks, 2)
	assert.Equal(t, []byte("by-bob"), blocks[0].Content)
	assert.Equal(t, []byte("by-carol"), blocks[1].Content)

	// Out-of-range offset yields empty, not a panic or error.
	blocks, err = backend.FetchContentBlocks(context.Background(), "0", nil, nil, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, blocks)

	// An end index below the offset is an empty window.
	blocks, err = backend.FetchContentBlocks(context.Background(), "0", nil, nil, 2, 1)
	require.NoError(t, err)
	assert.Empty(t, blocks)
}

func TestFetchContentBlocksUnknownCollection(t *testing.T) {
	backend := newTestBackend(t, &fakeStore{}, &fakeRegistrar{}, nil)

	blocks, err := backend.FetchContentBlocks(context.Background(), "99", nil, nil, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, blocks)
}

func TestFetchContentBlocksStoreError(t *testing.T) {
	backend := newTestBackend(t, &fakeStore{err: errors.New("store down")}, &fakeRegistrar{}, nil)

	_, err := backend.FetchContentBlocks(context.Background(), "0", nil, nil, 0, 0)
	assert.Error(t, err)
}

func TestCountContentBlocksMatchesFetch(t *testing.T) {
	store := &fakeStore{docs: map[string][]models.Document{
		"A": {doc("by-eve"), doc("by-bob"), doc("unmarked"), doc("by-carol")},
	}}
	backend := newTestBackend(t, store, &fakeRegistrar{}, []string{"eve", "carol"})

	count, err := backend.CountContentBlocks(context.Background(), "0", nil, nil)
	require.NoError(t, err)

	blocks, err := backend.FetchContentBlocks(context.Background(), "0", nil, nil, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, len(blocks), count)
	assert.Equal(t, 2, count)
}

func TestCreateInboxMessagePassThrough(t *testing.T) {
	backend := newTestBackend(t, &fakeStore{}, &fakeRegistrar{}, nil)

	msg := &models.InboxMessage{MessageID: "m-1"}
	assert.Same(t, msg, backend.CreateInboxMessage(msg))
}

func TestCreateContentBlock(t *testing.T) {
	registrar := &fakeRegistrar{}
	backend := newTestBackend(t, &fakeStore{}, registrar, nil)

	block := &models.ContentBlock{Content: []byte("<stix/>")}
	got, err := backend.CreateContentBlock(context.Background(), block, []string{"0", "1"}, "inbox")
	require.NoError(t, err)
	assert.Same(t, block, got)

	// community/via come from construction, not from the targeted collections.
	assert.Equal(t, "test-community", registrar.community)
	assert.Equal(t, "taxii", registrar.via)

	// The staging file is removed after successful ingestion.
	_, statErr := os.Stat(registrar.path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestCreateContentBlockIngestionFailure(t *testing.T) {
	ingestErr := errors.New("pipeline rejected package")
	registrar := &fakeRegistrar{err: ingestErr}
	backend := newTestBackend(t, &fakeStore{}, registrar, nil)

	_, err := backend.CreateContentBlock(context.Background(), &models.ContentBlock{Content: []byte("<stix/>")}, nil, "inbox")
	require.ErrorIs(t, err, ingestErr)

	// The staged file must not survive the failure path.
	require.NotEmpty(t, registrar.path)
	_, statErr := os.Stat(registrar.path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestUnsupportedOperationsAreCallable(t *testing.T) {
	backend := newTestBackend(t, &fakeStore{}, &fakeRegistrar{}, nil)

	rs := &models.ResultSet{ID: "rs-1"}
	assert.Same(t, rs, backend.CreateResultSet(rs))

	backend.CreateSubscription(&models.Subscription{ID: "s-1"})
	backend.UpdateSubscription(&models.Subscription{ID: "s-1"})
	backend.AttachCollectionToServices("0", []string{"poll"})
	assert.Nil(t, backend.GetSubscription("s-1"))
	assert.Nil(t, backend.GetSubscriptions("poll"))
}
