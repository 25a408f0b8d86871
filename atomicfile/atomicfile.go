// Package atomicfile writes to a temporary file next to the destination and
// moves it into place on Close, so readers never see a partial file.
package atomicfile

import (
	"errors"
	"os"
)

// Suffix is appended to the destination name while writing.
const Suffix = ".wip"

var ErrClosed = errors.New("atomicfile: already closed or aborted")

// File is a work in progress file.
type File struct {
	*os.File
	dst  string
	done bool
}

// New creates dst + Suffix for writing. An existing work in progress file is
// truncated.
func New(dst string) (*File, error) {
	f, err := os.Create(dst + Suffix)
	if err != nil {
		return nil, err
	}
	return &File{File: f, dst: dst}, nil
}

// Name returns the final destination.
func (f *File) Name() string {
	return f.dst
}

// Close flushes and closes the temporary file and renames it to the
// destination, replacing any existing file.
func (f *File) Close() error {
	if f.done {
		return ErrClosed
	}
	f.done = true
	wip := f.File.Name()
	if err := f.File.Sync(); err != nil {
		f.File.Close()
		os.Remove(wip)
		return err
	}
	if err := f.File.Close(); err != nil {
		os.Remove(wip)
		return err
	}
	if err := os.Rename(wip, f.dst); err != nil {
		os.Remove(wip)
		return err
	}
	return nil
}

// Abort closes and removes the temporary file, leaving any existing
// destination untouched. Abort after Close is a no-op.
func (f *File) Abort() error {
	if f.done {
		return nil
	}
	f.done = true
	wip := f.File.Name()
	f.File.Close()
	return os.Remove(wip)
}
