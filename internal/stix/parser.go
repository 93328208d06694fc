// Package stix parses STIX 1.1.1 XML packages far enough to expose their
// top-level handling markings. The backend never interprets package bodies;
// it only needs the marking statements, so everything else is skipped.
package stix

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"stip-taxii-backend/internal/domain/models"
)

// Parser turns raw package bytes into the reduced models.Package view.
type Parser struct{}

// NewParser creates a new Parser
func NewParser() *Parser {
	return &Parser{}
}

type xmlMarkingStructure struct {
	Type      string `xml:"http://www.w3.org/2001/XMLSchema-instance type,attr"`
	Statement string `xml:"Statement"`
}

type xmlMarking struct {
	Structures []xmlMarkingStructure `xml:"Marking_Structure"`
}

type xmlPackage struct {
	XMLName xml.Name `xml:"STIX_Package"`
	Header  struct {
		Title    string `xml:"Title"`
		Handling struct {
			Markings []xmlMarking `xml:"Marking"`
		} `xml:"Handling"`
	} `xml:"STIX_Header"`
}

// Parse decodes raw into a models.Package. Marking order follows document
// order; only the first marking structure of each marking specification is
// considered, matching what publishers actually emit. Statement text is
// kept verbatim, padding included, so downstream prefix matches see exactly
// what the publisher wrote.
func (p *Parser) Parse(raw []byte) (*models.Package, error) {
	var doc xmlPackage
	if err := xml.NewDecoder(bytes.NewReader(raw)).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse STIX package: %w", err)
	}

	pkg := &models.Package{Title: doc.Header.Title}
	for _, m := range doc.Header.Handling.Markings {
		if len(m.Structures) == 0 {
			continue
		}
		s := m.Structures[0]
		pkg.Markings = append(pkg.Markings, models.Marking{
			Kind:      classify(s.Type),
			Statement: s.Statement,
		})
	}
	return pkg, nil
}

// classify maps an xsi:type attribute to a marking kind. The attribute
// value is prefix-qualified (e.g. "simpleMarking:SimpleMarkingStructureType"),
// so only the local part is matched.
func classify(xsiType string) models.MarkingKind {
	local := xsiType
	if i := strings.LastIndex(xsiType, ":"); i >= 0 {
		local = xsiType[i+1:]
	}
	switch local {
	case "SimpleMarkingStructureType":
		return models.MarkingSimple
	case "AISMarkingStructure":
		return models.MarkingAIS
	default:
		return models.MarkingOther
	}
}
