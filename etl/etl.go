// Package etl runs the snapshot to parquet conversion: read lines, keep
// papers in the year range, explode categories, normalize and write.
package etl

import (
	"errors"
	"fmt"
	"io"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/miku/arxivparq/atomicfile"
	"github.com/miku/arxivparq/config"
	"github.com/miku/arxivparq/convert"
	"github.com/miku/arxivparq/normal"
	"github.com/miku/arxivparq/record"
	"github.com/miku/arxivparq/table"
)

// Stats summarizes a run.
type Stats struct {
	Lines   int64         // non-empty input lines
	Kept    int64         // papers within the year range
	Rows    int64         // rows written
	Elapsed time.Duration // total runtime
}

// Extract reads all lines from r and returns the kept papers in input order,
// together with the number of lines read. Dropped records are not reported.
func Extract(r io.Reader, yr convert.YearRange, opts ...record.ReaderOption) ([]convert.Paper, int64, error) {
	var (
		rd     = record.NewReader(r, opts...)
		papers []convert.Paper
	)
	for {
		line, err := rd.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, rd.Count(), fmt.Errorf("read: %w", err)
		}
		paper, err := convert.LineToPaper(line, yr)
		switch {
		case convert.IsSkip(err):
			continue
		case err != nil:
			return nil, rd.Count(), fmt.Errorf("line %d: %w", rd.Count(), err)
		}
		papers = append(papers, *paper)
	}
	return papers, rd.Count(), nil
}

// Run executes a single conversion as configured.
func Run(c *config.Config) (*Stats, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	var (
		started = time.Now()
		stats   Stats
	)
	codec, err := table.Codec(c.Compression)
	if err != nil {
		return nil, err
	}
	opts := table.DefaultWriterOptions()
	opts.Compression = codec
	opts.RowGroupSize = c.RowGroupSize
	log.WithFields(log.Fields{
		"input":   c.Input,
		"min":     c.MinYear,
		"max":     c.MaxYear,
		"layout":  layout(c),
		"codec":   c.Compression,
		"maxline": c.MaxLineSize,
	}).Debug("starting conversion")
	rc, err := record.Open(c.Input)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	papers, lines, err := Extract(rc, c.YearRange(), record.WithMaxTokenSize(c.MaxLineSize))
	if cerr := rc.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c.Input, err)
	}
	stats.Lines, stats.Kept = lines, int64(len(papers))
	log.WithFields(log.Fields{"lines": lines, "kept": len(papers)}).Debug("extracted papers")
	f, err := atomicfile.New(c.Output)
	if err != nil {
		return nil, fmt.Errorf("create output: %w", err)
	}
	norm := &normal.Pipeline{Normalizer: []normal.Normalizer{
		normal.LegacyCategories{},
	}}
	if c.Wide {
		table.NormalizeCategories(papers, norm)
		err = table.WriteWide(f, papers, opts)
		stats.Rows = int64(len(papers))
	} else {
		rows := table.Explode(papers)
		table.NormalizeSubcategories(rows, norm)
		log.WithField("rows", len(rows)).Debug("exploded categories")
		err = table.WriteLong(f, rows, opts)
		stats.Rows = int64(len(rows))
	}
	if err != nil {
		return nil, errors.Join(fmt.Errorf("write parquet: %w", err), f.Abort())
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("finalize output: %w", err)
	}
	stats.Elapsed = time.Since(started)
	return &stats, nil
}

func layout(c *config.Config) string {
	if c.Wide {
		return "wide"
	}
	return "long"
}
