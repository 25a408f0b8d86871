// Package record streams newline delimited records from a file or stream.
package record

import (
	"bufio"
	"errors"
	"io"
)

const (
	defaultMaxBufferSize = 1 << 20 // 1MB, initial buffer
	defaultMaxTokenSize  = 1 << 26 // 64MB, hard limit, needs to be larger than the buffer size
)

var ErrInvalidSplitter = errors.New("invalid splitter")

// ReaderOption allows configuration of the Reader.
type ReaderOption func(*Reader)

// WithMaxTokenSize sets the maximum size of a single record.
func WithMaxTokenSize(size int) ReaderOption {
	return func(r *Reader) {
		if size > 0 {
			r.maxTokenSize = size
		}
	}
}

// WithMaxBufferSize sets the initial buffer size of the scanner.
func WithMaxBufferSize(size int) ReaderOption {
	return func(r *Reader) {
		if size > 0 {
			r.maxBufferSize = size
		}
	}
}

// WithSplitFunc replaces the default line splitter.
func WithSplitFunc(f bufio.SplitFunc) ReaderOption {
	return func(r *Reader) {
		r.splitFunc = f
	}
}

// Reader yields one record at a time, skipping empty ones. A Reader can be
// consumed only once.
type Reader struct {
	scanner       *bufio.Scanner
	splitFunc     bufio.SplitFunc
	maxBufferSize int
	maxTokenSize  int
	err           error
	n             int64 // records returned so far
}

// NewReader creates a new Reader that by default splits on lines.
func NewReader(r io.Reader, opts ...ReaderOption) *Reader {
	rd := &Reader{
		splitFunc:     bufio.ScanLines,
		maxBufferSize: defaultMaxBufferSize,
		maxTokenSize:  defaultMaxTokenSize,
	}
	for _, opt := range opts {
		opt(rd)
	}
	if rd.splitFunc == nil {
		rd.err = ErrInvalidSplitter
	}
	if rd.maxTokenSize < rd.maxBufferSize {
		rd.maxTokenSize = rd.maxBufferSize
	}
	rd.scanner = bufio.NewScanner(r)
	if rd.splitFunc != nil {
		rd.scanner.Split(rd.splitFunc)
	}
	rd.scanner.Buffer(make([]byte, 0, rd.maxBufferSize), rd.maxTokenSize)
	return rd
}

// Next returns the next non-empty record, or io.EOF when the input is
// exhausted. The returned slice is a copy and may be retained.
func (rd *Reader) Next() ([]byte, error) {
	if rd.err != nil {
		return nil, rd.err
	}
	for rd.scanner.Scan() {
		token := rd.scanner.Bytes()
		if len(token) == 0 {
			continue
		}
		data := make([]byte, len(token))
		copy(data, token)
		rd.n++
		return data, nil
	}
	if err := rd.scanner.Err(); err != nil {
		rd.err = err
		return nil, err
	}
	rd.err = io.EOF
	return nil, io.EOF
}

// Count returns the number of records returned so far.
func (rd *Reader) Count() int64 {
	return rd.n
}
