package etl

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/miku/arxivparq/atomicfile"
	"github.com/miku/arxivparq/config"
	"github.com/miku/arxivparq/convert"
	"github.com/miku/arxivparq/table"
)

func readRows(t *testing.T, filename string) []table.Row {
	t.Helper()
	f, err := os.Open(filename)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := table.ReadLong(context.Background(), f)
	if err != nil {
		t.Fatal(err)
	}
	return rows
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	c := config.Default()
	c.Input = filepath.Join("testdata", "snapshot.jsonl")
	c.Output = filepath.Join(t.TempDir(), "arxiv.parquet")
	return c
}

func TestRun(t *testing.T) {
	c := testConfig(t)
	stats, err := Run(c)
	if err != nil {
		t.Fatal(err)
	}
	want := []table.Row{
		{Index: 0, ArxivID: "0001.0001", Authors: 2, Year: 2010, Subcategory: "astro-ph.GEN", HasSubcategory: true, Versions: 2, UpdateDate: "2010-01-01"},
		{Index: 0, ArxivID: "0001.0001", Authors: 2, Year: 2010, Subcategory: "q-bio.GEN", HasSubcategory: true, Versions: 2, UpdateDate: "2010-01-01"},
		{Index: 1, ArxivID: "0001.0004", Authors: 3, Year: 2024, Subcategory: "cs.AI", HasSubcategory: true, Versions: 1, UpdateDate: "2024-03-01"},
		{Index: 1, ArxivID: "0001.0004", Authors: 3, Year: 2024, Subcategory: "cs.LG", HasSubcategory: true, Versions: 1, UpdateDate: "2024-03-01"},
		{Index: 2, ArxivID: "0001.0007", Authors: 0, Year: 2025, Subcategory: "cond-mat.GEN", HasSubcategory: true, Versions: 3, UpdateDate: "2025-06-01"},
		{Index: 2, ArxivID: "0001.0007", Authors: 0, Year: 2025, Subcategory: "nlin.SI", HasSubcategory: true, Versions: 3, UpdateDate: "2025-06-01"},
		{Index: 2, ArxivID: "0001.0007", Authors: 0, Year: 2025, Subcategory: "nlin.CD", HasSubcategory: true, Versions: 3, UpdateDate: "2025-06-01"},
		{Index: 3, ArxivID: "0001.0009", Authors: 1, Year: 2015, Subcategory: "", HasSubcategory: false, Versions: 1, UpdateDate: "2015-06-01"},
	}
	got := readRows(t, c.Output)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
	if stats.Lines != 10 || stats.Kept != 4 || stats.Rows != int64(len(want)) {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	for _, row := range got {
		if row.Subcategory == "astro-ph" {
			t.Fatal("legacy category in output")
		}
	}
	if _, err := os.Stat(c.Output + atomicfile.Suffix); !os.IsNotExist(err) {
		t.Fatalf("work in progress file left behind: %v", err)
	}
}

func TestRunYearRange(t *testing.T) {
	c := testConfig(t)
	c.MinYear, c.MaxYear = 2014, 2024
	stats, err := Run(c)
	if err != nil {
		t.Fatal(err)
	}
	var ids []string
	for _, row := range readRows(t, c.Output) {
		ids = append(ids, row.ArxivID)
	}
	if diff := cmp.Diff([]string{"0001.0004", "0001.0004", "0001.0009"}, ids); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
	if stats.Kept != 2 {
		t.Fatalf("got %d kept, want 2", stats.Kept)
	}
}

func TestRunWide(t *testing.T) {
	c := testConfig(t)
	c.Wide = true
	stats, err := Run(c)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Rows != 4 || stats.Kept != 4 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if _, err := os.Stat(c.Output); err != nil {
		t.Fatal(err)
	}
}

func TestRunMalformedLine(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "broken.json")
	content := `{"id":"1","journal-ref":"J (2010)","authors_parsed":[],"categories":"cs.AI","versions":[1],"update_date":"2010-01-01"}` + "\n" + `{"id": broken` + "\n"
	if err := os.WriteFile(input, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	output := filepath.Join(dir, "arxiv.parquet")
	if err := os.WriteFile(output, []byte("previous"), 0644); err != nil {
		t.Fatal(err)
	}
	c := config.Default()
	c.Input, c.Output = input, output
	_, err := Run(c)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "line 2") {
		t.Fatalf("error does not name the line: %v", err)
	}
	b, err := os.ReadFile(output)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "previous" {
		t.Fatal("output replaced after failed run")
	}
}

func TestRunMissingInput(t *testing.T) {
	c := config.Default()
	c.Input = filepath.Join(t.TempDir(), "missing.json")
	c.Output = filepath.Join(t.TempDir(), "arxiv.parquet")
	if _, err := Run(c); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("got %v, want not exist", err)
	}
}

func TestRunInvalidConfig(t *testing.T) {
	c := testConfig(t)
	c.MinYear = 2030
	if _, err := Run(c); err == nil {
		t.Fatal("expected error")
	}
}

func TestExtractRowCountInvariant(t *testing.T) {
	f, err := os.Open(filepath.Join("testdata", "snapshot.jsonl"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	papers, lines, err := Extract(f, convert.DefaultYearRange)
	if err != nil {
		t.Fatal(err)
	}
	if lines != 10 {
		t.Fatalf("got %d lines, want 10", lines)
	}
	var want int
	for _, p := range papers {
		want += len(table.Tokens(p.Categories))
	}
	if got := len(table.Explode(papers)); got != want {
		t.Fatalf("got %d rows, want %d", got, want)
	}
}
