package convert

import (
	"regexp"
	"strconv"

	"github.com/miku/arxivparq/schema/arxiv"
)

// yearPattern matches a four digit year in parentheses, like "Phys (2010)".
var yearPattern = regexp.MustCompile(`\((\d{4})\)`)

// YearRange is a half open interval (Min, Max] of publication years.
type YearRange struct {
	Min int64 // exclusive
	Max int64 // inclusive
}

// DefaultYearRange keeps papers published after 2000, up to and including 2025.
var DefaultYearRange = YearRange{Min: 2000, Max: 2025}

// Contains reports whether year falls into the range.
func (r YearRange) Contains(year int64) bool {
	return r.Min < year && year <= r.Max
}

// Paper is the flat projection of a snapshot document we keep.
type Paper struct {
	ArxivID    string
	Authors    int64
	Year       int64
	Categories string // space delimited, as found in the snapshot
	// HasCategories is false, if the categories field was absent or null.
	HasCategories bool
	Versions      int64
	UpdateDate    string
}

// ExtractYear returns the first parenthesized four digit number in a journal
// reference, e.g. 2010 for "Phys.Rev. D 81 (2010) 054004".
func ExtractYear(ref string) (int64, error) {
	m := yearPattern.FindStringSubmatch(ref)
	if m == nil {
		return 0, skipf(ErrNoYear, "%q", ref)
	}
	year, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, skipf(ErrNoYear, "%q: %v", ref, err)
	}
	return year, nil
}

// DocumentToPaper projects a snapshot document onto a Paper. All reasons to
// drop a document are reported as Skip.
func DocumentToPaper(doc *arxiv.Document, r YearRange) (*Paper, error) {
	ref, err := doc.JournalReference()
	if err != nil {
		return nil, skipf(ErrNoJournalRef, "%v", err)
	}
	year, err := ExtractYear(ref)
	if err != nil {
		return nil, err
	}
	if !r.Contains(year) {
		return nil, skipf(ErrYearOutOfRange, "%d", year)
	}
	var p = Paper{Year: year}
	if p.ArxivID, err = doc.RecordID(); err != nil {
		return nil, skipf(ErrMissingField, "%v", err)
	}
	authors, err := doc.AuthorCount()
	if err != nil {
		return nil, skipf(ErrMissingField, "%v", err)
	}
	p.Authors = int64(authors)
	if p.Categories, p.HasCategories, err = doc.CategoryString(); err != nil {
		return nil, skipf(ErrMissingField, "%v", err)
	}
	versions, err := doc.VersionCount()
	if err != nil {
		return nil, skipf(ErrMissingField, "%v", err)
	}
	p.Versions = int64(versions)
	if p.UpdateDate, err = doc.LastUpdated(); err != nil {
		return nil, skipf(ErrMissingField, "%v", err)
	}
	return &p, nil
}

// LineToPaper parses a raw snapshot line and projects it. Broken lines are
// returned as regular errors, drop conditions as Skip.
func LineToPaper(line []byte, r YearRange) (*Paper, error) {
	doc, err := arxiv.ParseDocument(line)
	if err != nil {
		return nil, err
	}
	return DocumentToPaper(doc, r)
}
