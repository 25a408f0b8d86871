package table

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/memory"
	"github.com/apache/arrow/go/v17/parquet"
	"github.com/apache/arrow/go/v17/parquet/compress"
	"github.com/apache/arrow/go/v17/parquet/pqarrow"

	"github.com/miku/arxivparq/convert"
)

const (
	ParquetExt = ".parquet"
	// DefaultRowGroupSize is the number of rows per parquet row group.
	DefaultRowGroupSize = 1 << 16
)

var ErrUnknownCodec = errors.New("unknown compression codec")

var codecs = map[string]compress.Compression{
	"none":   compress.Codecs.Uncompressed,
	"snappy": compress.Codecs.Snappy,
	"gzip":   compress.Codecs.Gzip,
	"zstd":   compress.Codecs.Zstd,
}

// Codec returns the compression for a name, like "snappy" or "zstd".
func Codec(name string) (compress.Compression, error) {
	c, ok := codecs[strings.ToLower(name)]
	if !ok {
		return compress.Codecs.Uncompressed, fmt.Errorf("%w: %s (available: %s)",
			ErrUnknownCodec, name, strings.Join(CodecNames(), ", "))
	}
	return c, nil
}

// CodecNames lists supported codec names.
func CodecNames() []string {
	var names []string
	for k := range codecs {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

var (
	// LongSchema has one row per paper and category.
	LongSchema = arrow.NewSchema([]arrow.Field{
		{Name: "index", Type: arrow.PrimitiveTypes.Int64},
		{Name: "arxiv_id", Type: arrow.BinaryTypes.String},
		{Name: "authors", Type: arrow.PrimitiveTypes.Int64},
		{Name: "year", Type: arrow.PrimitiveTypes.Int64},
		{Name: "subcategory", Type: arrow.BinaryTypes.String, Nullable: true},
		{Name: "versions", Type: arrow.PrimitiveTypes.Int64},
		{Name: "update_date", Type: arrow.BinaryTypes.String},
	}, nil)

	// WideSchema has one row per paper, subcategory is space delimited.
	WideSchema = arrow.NewSchema([]arrow.Field{
		{Name: "arxiv_id", Type: arrow.BinaryTypes.String},
		{Name: "authors", Type: arrow.PrimitiveTypes.Int64},
		{Name: "year", Type: arrow.PrimitiveTypes.Int64},
		{Name: "subcategory", Type: arrow.BinaryTypes.String, Nullable: true},
		{Name: "versions", Type: arrow.PrimitiveTypes.Int64},
		{Name: "update_date", Type: arrow.BinaryTypes.String},
	}, nil)
)

// WriterOptions configure the parquet output.
type WriterOptions struct {
	Compression  compress.Compression
	RowGroupSize int64
	Allocator    memory.Allocator
}

// DefaultWriterOptions uses snappy, like most dataframe libraries do.
func DefaultWriterOptions() WriterOptions {
	return WriterOptions{
		Compression:  compress.Codecs.Snappy,
		RowGroupSize: DefaultRowGroupSize,
	}
}

func (o WriterOptions) allocator() memory.Allocator {
	if o.Allocator == nil {
		return memory.NewGoAllocator()
	}
	return o.Allocator
}

func (o WriterOptions) rowGroupSize() int {
	if o.RowGroupSize <= 0 {
		return DefaultRowGroupSize
	}
	return int(o.RowGroupSize)
}

// nopCloser keeps the parquet writer from closing our sink.
type nopCloser struct {
	io.Writer
}

func newFileWriter(schema *arrow.Schema, w io.Writer, opts WriterOptions) (*pqarrow.FileWriter, error) {
	props := parquet.NewWriterProperties(
		parquet.WithAllocator(opts.allocator()),
		parquet.WithCompression(opts.Compression),
		parquet.WithMaxRowGroupLength(int64(opts.rowGroupSize())),
	)
	arrProps := pqarrow.NewArrowWriterProperties(
		pqarrow.WithStoreSchema(),
		pqarrow.WithAllocator(opts.allocator()),
	)
	return pqarrow.NewFileWriter(schema, nopCloser{w}, props, arrProps)
}

// WriteLong writes rows with LongSchema to w. The caller is responsible for
// closing w.
func WriteLong(w io.Writer, rows []Row, opts WriterOptions) error {
	fw, err := newFileWriter(LongSchema, w, opts)
	if err != nil {
		return err
	}
	b := array.NewRecordBuilder(opts.allocator(), LongSchema)
	defer b.Release()
	size := opts.rowGroupSize()
	for start := 0; start < len(rows); start += size {
		end := start + size
		if end > len(rows) {
			end = len(rows)
		}
		for _, row := range rows[start:end] {
			appendLong(b, row)
		}
		if err := writeRecord(fw, b); err != nil {
			fw.Close()
			return err
		}
	}
	return fw.Close()
}

// WriteWide writes one row per paper with WideSchema to w.
func WriteWide(w io.Writer, papers []convert.Paper, opts WriterOptions) error {
	fw, err := newFileWriter(WideSchema, w, opts)
	if err != nil {
		return err
	}
	b := array.NewRecordBuilder(opts.allocator(), WideSchema)
	defer b.Release()
	size := opts.rowGroupSize()
	for start := 0; start < len(papers); start += size {
		end := start + size
		if end > len(papers) {
			end = len(papers)
		}
		for _, p := range papers[start:end] {
			appendWide(b, p)
		}
		if err := writeRecord(fw, b); err != nil {
			fw.Close()
			return err
		}
	}
	return fw.Close()
}

func writeRecord(fw *pqarrow.FileWriter, b *array.RecordBuilder) error {
	rec := b.NewRecord()
	defer rec.Release()
	return fw.Write(rec)
}

func appendLong(b *array.RecordBuilder, row Row) {
	b.Field(0).(*array.Int64Builder).Append(row.Index)
	b.Field(1).(*array.StringBuilder).Append(row.ArxivID)
	b.Field(2).(*array.Int64Builder).Append(row.Authors)
	b.Field(3).(*array.Int64Builder).Append(row.Year)
	if row.HasSubcategory {
		b.Field(4).(*array.StringBuilder).Append(row.Subcategory)
	} else {
		b.Field(4).(*array.StringBuilder).AppendNull()
	}
	b.Field(5).(*array.Int64Builder).Append(row.Versions)
	b.Field(6).(*array.StringBuilder).Append(row.UpdateDate)
}

func appendWide(b *array.RecordBuilder, p convert.Paper) {
	b.Field(0).(*array.StringBuilder).Append(p.ArxivID)
	b.Field(1).(*array.Int64Builder).Append(p.Authors)
	b.Field(2).(*array.Int64Builder).Append(p.Year)
	if p.HasCategories {
		b.Field(3).(*array.StringBuilder).Append(p.Categories)
	} else {
		b.Field(3).(*array.StringBuilder).AppendNull()
	}
	b.Field(4).(*array.Int64Builder).Append(p.Versions)
	b.Field(5).(*array.StringBuilder).Append(p.UpdateDate)
}

// ReadLong reads back a file written by WriteLong.
func ReadLong(ctx context.Context, r parquet.ReaderAtSeeker) ([]Row, error) {
	mem := memory.NewGoAllocator()
	tbl, err := pqarrow.ReadTable(ctx, r, parquet.NewReaderProperties(mem), pqarrow.ArrowReadProperties{}, mem)
	if err != nil {
		return nil, err
	}
	defer tbl.Release()
	if err := checkFields(tbl.Schema(), LongSchema); err != nil {
		return nil, err
	}
	var (
		rows = make([]Row, 0, tbl.NumRows())
		tr   = array.NewTableReader(tbl, 0)
	)
	defer tr.Release()
	for tr.Next() {
		rec := tr.Record()
		var (
			index       = rec.Column(0).(*array.Int64)
			arxivID     = rec.Column(1).(*array.String)
			authors     = rec.Column(2).(*array.Int64)
			year        = rec.Column(3).(*array.Int64)
			subcategory = rec.Column(4).(*array.String)
			versions    = rec.Column(5).(*array.Int64)
			updateDate  = rec.Column(6).(*array.String)
		)
		for i := 0; i < int(rec.NumRows()); i++ {
			rows = append(rows, Row{
				Index:          index.Value(i),
				ArxivID:        arxivID.Value(i),
				Authors:        authors.Value(i),
				Year:           year.Value(i),
				Subcategory:    subcategory.Value(i),
				HasSubcategory: subcategory.IsValid(i),
				Versions:       versions.Value(i),
				UpdateDate:     updateDate.Value(i),
			})
		}
	}
	return rows, nil
}

func checkFields(got, want *arrow.Schema) error {
	if got.NumFields() != want.NumFields() {
		return fmt.Errorf("got %d columns, want %d", got.NumFields(), want.NumFields())
	}
	for i := 0; i < want.NumFields(); i++ {
		g, w := got.Field(i), want.Field(i)
		if g.Name != w.Name || !arrow.TypeEqual(g.Type, w.Type) {
			return fmt.Errorf("column %d: got %s %s, want %s %s", i, g.Name, g.Type, w.Name, w.Type)
		}
	}
	return nil
}
