package config

import (
	"errors"
	"fmt"

	"github.com/miku/arxivparq/convert"
	"github.com/miku/arxivparq/table"
)

const (
	DefaultInput  = "arxiv-metadata-oai-snapshot.json"
	DefaultOutput = "arxiv.parquet"
)

var ErrInvalidConfig = errors.New("invalid config")

// Config for a single conversion run, usually filled from flags.
type Config struct {
	// Input is the snapshot file, "-" for stdin; .gz and .zst are
	// decompressed on the fly.
	Input string
	// Output is the parquet file to write; an existing file is replaced.
	Output string
	// MinYear is the exclusive lower bound of the publication year.
	MinYear int64
	// MaxYear is the inclusive upper bound of the publication year.
	MaxYear int64
	// Wide writes one row per paper, without exploding categories.
	Wide bool
	// Compression codec name for parquet, e.g. snappy, zstd, gzip or none.
	Compression string
	// RowGroupSize is the number of rows per parquet row group.
	RowGroupSize int64
	// MaxLineSize is the hard limit for a single input line in bytes.
	MaxLineSize int
}

// Default returns the configuration used when no flags are given.
func Default() *Config {
	return &Config{
		Input:        DefaultInput,
		Output:       DefaultOutput,
		MinYear:      convert.DefaultYearRange.Min,
		MaxYear:      convert.DefaultYearRange.Max,
		Compression:  "snappy",
		RowGroupSize: table.DefaultRowGroupSize,
		MaxLineSize:  1 << 26,
	}
}

// YearRange returns the configured range of accepted years.
func (c *Config) YearRange() convert.YearRange {
	return convert.YearRange{Min: c.MinYear, Max: c.MaxYear}
}

// Validate checks the config for obvious mistakes.
func (c *Config) Validate() error {
	switch {
	case c.Input == "":
		return fmt.Errorf("%w: input required", ErrInvalidConfig)
	case c.Output == "":
		return fmt.Errorf("%w: output required", ErrInvalidConfig)
	case c.MinYear >= c.MaxYear:
		return fmt.Errorf("%w: min year %d must be less than max year %d",
			ErrInvalidConfig, c.MinYear, c.MaxYear)
	case c.RowGroupSize <= 0:
		return fmt.Errorf("%w: row group size must be positive", ErrInvalidConfig)
	case c.MaxLineSize <= 0:
		return fmt.Errorf("%w: max line size must be positive", ErrInvalidConfig)
	}
	if _, err := table.Codec(c.Compression); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}
