// sk-arxiv-parquet turns the arxiv metadata snapshot from kaggle into a
// long-form parquet file, one row per paper and category.
//
// $ sk-arxiv-parquet -i arxiv-metadata-oai-snapshot.json -o arxiv.parquet
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/segmentio/encoding/json"
	log "github.com/sirupsen/logrus"

	"github.com/miku/arxivparq"
	"github.com/miku/arxivparq/config"
	"github.com/miku/arxivparq/etl"
	"github.com/miku/arxivparq/normal"
	"github.com/miku/arxivparq/table"
)

var docs = strings.TrimLeft(`
# sk-arxiv-parquet - arxiv metadata snapshot to parquet

Reads the line delimited JSON snapshot (https://www.kaggle.com/datasets/Cornell-University/arxiv),
keeps papers with a journal reference year in (min-year, max-year], splits
categories into one row each, replaces retired category names (astro-ph,
cond-mat, q-bio, ...) and writes a parquet file with columns:

    index, arxiv_id, authors, year, subcategory, versions, update_date

Input may be gzip or zstd compressed (.gz, .zst) or "-" for stdin.

## examples

$ sk-arxiv-parquet
$ sk-arxiv-parquet -i snapshot.json.zst -o arxiv-2010s.parquet -min-year 2009 -max-year 2019
$ sk-arxiv-parquet -dump arxiv.parquet | head

## flags

`, "\n")

var (
	defaults     = config.Default()
	inputFile    = flag.String("i", defaults.Input, "input snapshot file, use - for stdin")
	outputFile   = flag.String("o", defaults.Output, "output parquet file, will be replaced")
	minYear      = flag.Int64("min-year", defaults.MinYear, "exclusive lower bound of publication year")
	maxYear      = flag.Int64("max-year", defaults.MaxYear, "inclusive upper bound of publication year")
	wide         = flag.Bool("wide", false, "write one row per paper, do not split categories")
	codec        = flag.String("c", defaults.Compression, fmt.Sprintf("parquet compression (one of: %s)", strings.Join(table.CodecNames(), ", ")))
	rowGroupSize = flag.Int64("n", defaults.RowGroupSize, "rows per parquet row group")
	maxLineSize  = flag.Int("x", defaults.MaxLineSize, "max bytes per input line")
	dumpFile     = flag.String("dump", "", "print rows of a long-form parquet file as JSON lines and exit")
	verbose      = flag.Bool("v", false, "verbose output")
	showVersion  = flag.Bool("version", false, "show version")
)

func main() {
	flag.Usage = func() {
		io.WriteString(os.Stderr, docs)
		flag.PrintDefaults()
		io.WriteString(os.Stderr, replacements())
	}
	flag.Parse()
	if *showVersion {
		fmt.Printf("%s %s\n", arxivparq.AppName, arxivparq.Version)
		os.Exit(0)
	}
	if *verbose {
		log.SetLevel(log.DebugLevel)
	}
	if *dumpFile != "" {
		if err := dump(*dumpFile, os.Stdout); err != nil {
			log.Fatal(err)
		}
		return
	}
	c := &config.Config{
		Input:        *inputFile,
		Output:       *outputFile,
		MinYear:      *minYear,
		MaxYear:      *maxYear,
		Wide:         *wide,
		Compression:  *codec,
		RowGroupSize: *rowGroupSize,
		MaxLineSize:  *maxLineSize,
	}
	stats, err := etl.Run(c)
	if err != nil {
		log.Fatal(err)
	}
	log.WithFields(log.Fields{
		"lines":   stats.Lines,
		"kept":    stats.Kept,
		"rows":    stats.Rows,
		"elapsed": stats.Elapsed,
	}).Infof("wrote %s", c.Output)
}

// replacements lists the retired category names and what they become.
func replacements() string {
	var (
		m    = normal.LegacyCategoryMap()
		keys = make([]string, 0, len(m))
		sb   strings.Builder
	)
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	sb.WriteString("\n## category replacements\n\n")
	for _, k := range keys {
		fmt.Fprintf(&sb, "    %-10s %s\n", k, m[k])
	}
	return sb.String()
}

// dumpRow is the JSON representation of a long-form row.
type dumpRow struct {
	Index       int64   `json:"index"`
	ArxivID     string  `json:"arxiv_id"`
	Authors     int64   `json:"authors"`
	Year        int64   `json:"year"`
	Subcategory *string `json:"subcategory"`
	Versions    int64   `json:"versions"`
	UpdateDate  string  `json:"update_date"`
}

func dump(filename string, w io.Writer) error {
	f, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer f.Close()
	rows, err := table.ReadLong(context.Background(), f)
	if err != nil {
		return fmt.Errorf("%s: %w", filename, err)
	}
	bw := bufio.NewWriter(w)
	defer bw.Flush()
	enc := json.NewEncoder(bw)
	for _, row := range rows {
		dr := dumpRow{
			Index:      row.Index,
			ArxivID:    row.ArxivID,
			Authors:    row.Authors,
			Year:       row.Year,
			Versions:   row.Versions,
			UpdateDate: row.UpdateDate,
		}
		if row.HasSubcategory {
			s := row.Subcategory
			dr.Subcategory = &s
		}
		if err := enc.Encode(dr); err != nil {
			return err
		}
	}
	return nil
}
