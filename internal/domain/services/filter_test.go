package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"stip-taxii-backend/internal/domain/models"
	"stip-taxii-backend/pkg/logger"
)

// stubParser maps raw document bytes to canned parse results.
type stubParser struct {
	packages map[string]*models.Package
}

func (p *stubParser) Parse(raw []byte) (*models.Package, error) {
	pkg, ok := p.packages[string(raw)]
	if !ok {
		return nil, errors.New("parse failure")
	}
	return pkg, nil
}

func markedBy(user string) *models.Package {
	return &models.Package{Markings: []models.Marking{
		{Kind: models.MarkingSimple, Statement: SubmitterPrefix + user},
	}}
}

func TestContentFilterAccept(t *testing.T) {
	parser := &stubParser{packages: map[string]*models.Package{
		"by-eve":   markedBy("eve"),
		"by-bob":   markedBy("bob"),
		"unmarked": {Markings: []models.Marking{{Kind: models.MarkingAIS}}},
		"no-prefix": {Markings: []models.Marking{
			{Kind: models.MarkingSimple, Statement: "Produced by S-TIP"},
		}},
		"eve-after-noise": {Markings: []models.Marking{
			{Kind: models.MarkingOther},
			{Kind: models.MarkingSimple, Statement: "Copyright"},
			{Kind: models.MarkingSimple, Statement: SubmitterPrefix + "eve"},
		}},
		"padded-eve": {Markings: []models.Marking{
			{Kind: models.MarkingSimple, Statement: "  " + SubmitterPrefix + "eve"},
		}},
	}}
	filter := NewContentFilter(parser, []string{"eve", "mallory"}, logger.Nop())

	tests := []struct {
		name   string
		doc    string
		accept bool
	}{
		{name: "blacklisted submitter", doc: "by-eve", accept: false},
		{name: "other submitter", doc: "by-bob", accept: true},
		{name: "no simple marking", doc: "unmarked", accept: true},
		{name: "simple marking without prefix", doc: "no-prefix", accept: true},
		{name: "first prefixed marking wins", doc: "eve-after-noise", accept: false},
		{name: "padded statement is not a prefix match", doc: "padded-eve", accept: true},
		{name: "unparseable fails open", doc: "garbage", accept: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.accept, filter.Accept([]byte(tt.doc)))
		})
	}
}

func TestContentFilterEmptyBlacklist(t *testing.T) {
	parser := &stubParser{packages: map[string]*models.Package{
		"by-eve": markedBy("eve"),
	}}
	filter := NewContentFilter(parser, nil, logger.Nop())
	assert.True(t, filter.Accept([]byte("by-eve")))
}
