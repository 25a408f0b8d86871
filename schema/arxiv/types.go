package arxiv

import (
	"bytes"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/segmentio/encoding/json"
)

var (
	ErrNotAnObject  = errors.New("line is not a JSON object")
	ErrInvalidUTF8  = errors.New("line is not valid UTF-8")
	ErrTrailingData = errors.New("trailing data after object")
	ErrFieldMissing = errors.New("field missing")
	ErrFieldType    = errors.New("field has unexpected type")
)

var bNull = []byte("null")

// Document is a single line from the arxiv metadata snapshot as distributed
// on kaggle (arxiv-metadata-oai-snapshot.json), e.g.
//
//	{"id":"0704.0001","submitter":"Pavel Nadolsky","authors":"C. Bal\'azs, E. L.
//	Berger, ...","title":"Calculation of prompt diphoton production ...",
//	"journal-ref":"Phys.Rev.D76:013009,2007","categories":"hep-ph",
//	"versions":[{"version":"v1","created":"Mon, 2 Apr 2007 19:18:42 GMT"}, ...],
//	"update_date":"2008-11-13","authors_parsed":[["Balázs","C.",""], ...]}
//
// Fields we project are kept raw, so that a value of unexpected type can be
// told apart from a broken line.
type Document struct {
	ID            json.RawMessage `json:"id"`
	JournalRef    json.RawMessage `json:"journal-ref"`
	Categories    json.RawMessage `json:"categories"`
	AuthorsParsed json.RawMessage `json:"authors_parsed"`
	Versions      json.RawMessage `json:"versions"`
	UpdateDate    json.RawMessage `json:"update_date"`
}

// ParseDocument decodes a single snapshot line. Only a syntactically broken
// line, a line that is not an object or a line with invalid UTF-8 results in
// an error. Keys must match exactly, "Journal-Ref" is not "journal-ref".
func ParseDocument(line []byte) (*Document, error) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 || line[0] != '{' {
		return nil, ErrNotAnObject
	}
	if !utf8.Valid(line) {
		return nil, ErrInvalidUTF8
	}
	var doc Document
	rest, err := json.Parse(line, &doc, json.DontMatchCaseInsensitiveStructFields)
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if len(bytes.TrimSpace(rest)) > 0 {
		return nil, ErrTrailingData
	}
	return &doc, nil
}

// RecordID returns the identifier as found in the snapshot, e.g. "0704.0001".
func (d *Document) RecordID() (string, error) {
	return stringField("id", d.ID)
}

// JournalReference returns the free text citation, if any.
func (d *Document) JournalReference() (string, error) {
	return stringField("journal-ref", d.JournalRef)
}

// LastUpdated returns the update_date value verbatim.
func (d *Document) LastUpdated() (string, error) {
	return stringField("update_date", d.UpdateDate)
}

// CategoryString returns the space delimited categories. The second return
// value is false, if the field is absent or null.
func (d *Document) CategoryString() (string, bool, error) {
	s, err := stringField("categories", d.Categories)
	switch {
	case errors.Is(err, ErrFieldMissing):
		return "", false, nil
	case err != nil:
		return "", false, err
	}
	return s, true, nil
}

// AuthorCount returns the number of parsed authors.
func (d *Document) AuthorCount() (int, error) {
	return arrayLength("authors_parsed", d.AuthorsParsed)
}

// VersionCount returns the number of versions of the paper.
func (d *Document) VersionCount() (int, error) {
	return arrayLength("versions", d.Versions)
}

func isMissing(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), bNull)
}

func stringField(name string, raw json.RawMessage) (string, error) {
	if isMissing(raw) {
		return "", fmt.Errorf("%s: %w", name, ErrFieldMissing)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", fmt.Errorf("%s: %w", name, ErrFieldType)
	}
	return s, nil
}

func arrayLength(name string, raw json.RawMessage) (int, error) {
	if isMissing(raw) {
		return 0, fmt.Errorf("%s: %w", name, ErrFieldMissing)
	}
	var vs []json.RawMessage
	if err := json.Unmarshal(raw, &vs); err != nil {
		return 0, fmt.Errorf("%s: %w", name, ErrFieldType)
	}
	return len(vs), nil
}
