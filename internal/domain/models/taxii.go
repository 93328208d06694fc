package models

import "time"

// ServiceType identifies the TAXII service kind
type ServiceType string

const (
	ServiceDiscovery            ServiceType = "DISCOVERY"
	ServiceCollectionManagement ServiceType = "COLLECTION_MANAGEMENT"
	ServicePoll                 ServiceType = "POLL"
	ServiceInbox                ServiceType = "INBOX"
)

// Valid reports whether t is one of the known service kinds.
func (t ServiceType) Valid() bool {
	switch t {
	case ServiceDiscovery, ServiceCollectionManagement, ServicePoll, ServiceInbox:
		return true
	}
	return false
}

// CollectionTypeDataFeed is the only collection type this backend serves.
const CollectionTypeDataFeed = "DATA_FEED"

// STIXContentBinding is the content binding attached to every content block.
const STIXContentBinding = "urn:stix.mitre.org:xml:1.1.1"

// ContentBlockMessage is the fixed message attached to every content block.
const ContentBlockMessage = "Message from S-TIP"

// Service is a TAXII service loaded once at startup from the static
// definition file. Properties carries every definition key other than
// id/type through to the protocol layer verbatim.
type Service struct {
	ID         string
	Type       ServiceType
	Properties map[string]any
}

// Collection is a TAXII collection backed 1:1 by a configured feed.
// IDs are dense integer-as-string indexes assigned in feed enumeration
// order at startup and stable for the process lifetime.
type Collection struct {
	ID               string
	Name             string
	Type             string
	Description      *string
	Volume           *int
	AcceptAllContent bool
	SupportedContent []ContentBinding
	Available        bool
}

// ContentBinding identifies a content format a collection or block carries
type ContentBinding struct {
	Binding  string
	Subtypes []string
}

// ContentBlock is one unit of poll output. Blocks are never persisted;
// they are constructed per response, so TimestampLabel is the query time,
// not the document's produced time.
type ContentBlock struct {
	Content        []byte
	TimestampLabel time.Time
	ContentBinding ContentBinding
	Message        string
	InboxMessageID *string
}

// InboxMessage is the push acknowledgment entity. The backend passes it
// through untouched; acknowledgment is purely protocol-level.
type InboxMessage struct {
	ID                     string
	MessageID              string
	OriginalMessage        string
	ContentBlockCount      int
	DestinationCollections []string
}

// Subscription is accepted by the subscription stubs but never stored.
type Subscription struct {
	ID           string
	CollectionID string
	Params       map[string]any
}

// ResultSet is accepted by the result-set stub but never stored.
type ResultSet struct {
	ID           string
	CollectionID string
}

// Account is the authenticated caller identity
type Account struct {
	ID       string
	Username string
}
