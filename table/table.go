// Package table reshapes kept papers into long-form rows, one row per paper
// and category, and writes them as parquet.
package table

import (
	"strings"

	"github.com/miku/arxivparq/convert"
	"github.com/miku/arxivparq/normal"
)

// Row is a single paper-category pair. Index points back to the position of
// the paper in the input sequence.
type Row struct {
	Index          int64
	ArxivID        string
	Authors        int64
	Year           int64
	Subcategory    string
	HasSubcategory bool // false, if the paper had no categories field
	Versions       int64
	UpdateDate     string
}

// Tokens splits a category string on whitespace. An empty string yields a
// single empty token, so every paper is represented by at least one row.
func Tokens(categories string) []string {
	fields := strings.Fields(categories)
	if len(fields) == 0 {
		return []string{""}
	}
	return fields
}

// Explode turns each paper into one row per category token, in input order.
func Explode(papers []convert.Paper) []Row {
	var n int
	for _, p := range papers {
		n += len(Tokens(p.Categories))
	}
	rows := make([]Row, 0, n)
	for i, p := range papers {
		for _, token := range Tokens(p.Categories) {
			rows = append(rows, Row{
				Index:          int64(i),
				ArxivID:        p.ArxivID,
				Authors:        p.Authors,
				Year:           p.Year,
				Subcategory:    token,
				HasSubcategory: p.HasCategories,
				Versions:       p.Versions,
				UpdateDate:     p.UpdateDate,
			})
		}
	}
	return rows
}

// NormalizeSubcategories rewrites the subcategory of each row in place.
// Null subcategories are left alone.
func NormalizeSubcategories(rows []Row, n normal.Normalizer) {
	for i := range rows {
		if !rows[i].HasSubcategory {
			continue
		}
		rows[i].Subcategory = n.Normalize(rows[i].Subcategory)
	}
}

// NormalizeCategories rewrites each token of the papers' category strings in
// place, used for the wide layout.
func NormalizeCategories(papers []convert.Paper, n normal.Normalizer) {
	for i := range papers {
		if !papers[i].HasCategories {
			continue
		}
		papers[i].Categories = normal.Fields(n, papers[i].Categories)
	}
}
