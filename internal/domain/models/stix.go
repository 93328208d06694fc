package models

import (
	"time"

	"github.com/google/uuid"
)

// MarkingKind tags a parsed STIX marking structure. The parser classifies
// each structure so downstream code matches on the tag instead of probing
// runtime types.
type MarkingKind string

const (
	MarkingSimple MarkingKind = "simple"
	MarkingAIS    MarkingKind = "ais"
	MarkingOther  MarkingKind = "other"
)

// Marking is one handling statement of a STIX package, in document order.
// Statement is only meaningful for MarkingSimple.
type Marking struct {
	Kind      MarkingKind
	Statement string
}

// Package is the parsed view of a STIX package, reduced to what the
// content filter needs: the ordered top-level handling markings.
type Package struct {
	Title    string
	Markings []Marking
}

// Feed is a configured document source within the backing store. Each feed
// maps 1:1 to a TAXII collection named CollectionName.
type Feed struct {
	ID                 uuid.UUID
	CollectionName     string
	InformationSources []string
	STIXVersion        string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Document is the backend's view of one stored STIX package: the raw
// content plus the time the store recorded it as produced.
type Document struct {
	Content  []byte
	Produced time.Time
}
