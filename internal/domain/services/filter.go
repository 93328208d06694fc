package services

import (
	"strings"

	"stip-taxii-backend/internal/domain/models"
	"stip-taxii-backend/pkg/logger"
)

// SubmitterPrefix marks the simple-marking statement that carries the
// submitting user's identity.
const SubmitterPrefix = "User Name: "

// PackageParser is the external STIX parsing capability the filter needs.
type PackageParser interface {
	Parse(raw []byte) (*models.Package, error)
}

// ContentFilter decides whether a candidate document may be served. The
// only rule today is the submitter blacklist: documents pushed by a
// blacklisted account are withheld from poll responses.
type ContentFilter struct {
	parser    PackageParser
	blacklist map[string]struct{}
	logger    *logger.Logger
}

// NewContentFilter creates a ContentFilter over the given blacklist.
func NewContentFilter(parser PackageParser, blacklist []string, log *logger.Logger) *ContentFilter {
	set := make(map[string]struct{}, len(blacklist))
	for _, name := range blacklist {
		if name = strings.TrimSpace(name); name != "" {
			set[name] = struct{}{}
		}
	}
	return &ContentFilter{
		parser:    parser,
		blacklist: set,
		logger:    log.WithComponent("content-filter"),
	}
}

// Accept reports whether raw may be served. Filtering fails open: a
// document whose submitter cannot be determined (no marking, or a parse
// error) is still served, since dropping legitimate content is judged
// worse than missing a filter hit.
func (f *ContentFilter) Accept(raw []byte) bool {
	submitter, found := f.extractSubmitter(raw)
	if !found {
		return true
	}
	if _, blocked := f.blacklist[submitter]; blocked {
		f.logger.Debug().Str("submitter", submitter).Msg("document rejected by blacklist")
		return false
	}
	return true
}

// extractSubmitter scans the package markings in document order and
// returns the identity carried by the first simple marking with the
// submitter prefix. Parse errors and missing markings both report
// not-found, but are logged distinctly.
func (f *ContentFilter) extractSubmitter(raw []byte) (string, bool) {
	pkg, err := f.parser.Parse(raw)
	if err != nil {
		f.logger.Debug().Err(err).Msg("unparseable document, serving unfiltered")
		return "", false
	}
	for _, marking := range pkg.Markings {
		if marking.Kind != models.MarkingSimple {
			continue
		}
		if strings.HasPrefix(marking.Statement, SubmitterPrefix) {
			return strings.TrimPrefix(marking.Statement, SubmitterPrefix), true
		}
	}
	return "", false
}
