package record

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/klauspost/compress/zstd"
	gzip "github.com/klauspost/pgzip"
)

func readAll(t *testing.T, rd *Reader) []string {
	t.Helper()
	var result []string
	for {
		b, err := rd.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
		result = append(result, string(b))
	}
	return result
}

func TestReaderNext(t *testing.T) {
	var cases = []struct {
		help   string
		input  string
		result []string
	}{
		{"empty input", "", nil},
		{"single line without newline", "a", []string{"a"}},
		{"skips empty lines", "a\n\n\nb\n", []string{"a", "b"}},
		{"crlf", "a\r\nb\r\n", []string{"a", "b"}},
	}
	for _, c := range cases {
		t.Run(c.help, func(t *testing.T) {
			rd := NewReader(strings.NewReader(c.input))
			got := readAll(t, rd)
			if diff := cmp.Diff(c.result, got); diff != "" {
				t.Fatalf("mismatch (-want +got):\n%s", diff)
			}
			if rd.Count() != int64(len(c.result)) {
				t.Fatalf("got count %d, want %d", rd.Count(), len(c.result))
			}
			// exhausted readers keep returning EOF
			if _, err := rd.Next(); err != io.EOF {
				t.Fatalf("got %v, want EOF", err)
			}
		})
	}
}

func TestReaderCopiesTokens(t *testing.T) {
	rd := NewReader(strings.NewReader("first\nsecond\n"), WithMaxBufferSize(16))
	a, err := rd.Next()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := rd.Next(); err != nil {
		t.Fatal(err)
	}
	if string(a) != "first" {
		t.Fatalf("token was overwritten: %q", a)
	}
}

func TestReaderMaxTokenSize(t *testing.T) {
	input := strings.Repeat("x", 128) + "\n"
	rd := NewReader(strings.NewReader(input), WithMaxBufferSize(16), WithMaxTokenSize(32))
	_, err := rd.Next()
	if !errors.Is(err, bufio.ErrTooLong) {
		t.Fatalf("got %v, want %v", err, bufio.ErrTooLong)
	}
}

func TestReaderInvalidSplitter(t *testing.T) {
	rd := NewReader(strings.NewReader("a\n"), WithSplitFunc(nil))
	if _, err := rd.Next(); err != ErrInvalidSplitter {
		t.Fatalf("got %v, want %v", err, ErrInvalidSplitter)
	}
}

func TestReaderSplitFunc(t *testing.T) {
	rd := NewReader(strings.NewReader("a b  c"), WithSplitFunc(bufio.ScanWords))
	if diff := cmp.Diff([]string{"a", "b", "c"}, readAll(t, rd)); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestOpen(t *testing.T) {
	var (
		dir     = t.TempDir()
		content = []byte("{\"id\":\"1\"}\n{\"id\":\"2\"}\n")
	)
	plain := filepath.Join(dir, "snapshot.json")
	if err := os.WriteFile(plain, content, 0644); err != nil {
		t.Fatal(err)
	}
	var gzbuf bytes.Buffer
	gw := gzip.NewWriter(&gzbuf)
	if _, err := gw.Write(content); err != nil {
		t.Fatal(err)
	}
	if err := gw.Close(); err != nil {
		t.Fatal(err)
	}
	gz := filepath.Join(dir, "snapshot.json.gz")
	if err := os.WriteFile(gz, gzbuf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}
	var zbuf bytes.Buffer
	zw, err := zstd.NewWriter(&zbuf)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := zw.Write(content); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	zst := filepath.Join(dir, "snapshot.json.zst")
	if err := os.WriteFile(zst, zbuf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}
	for _, filename := range []string{plain, gz, zst} {
		t.Run(filepath.Base(filename), func(t *testing.T) {
			rc, err := Open(filename)
			if err != nil {
				t.Fatal(err)
			}
			got, err := io.ReadAll(rc)
			if err != nil {
				t.Fatal(err)
			}
			if err := rc.Close(); err != nil {
				t.Fatal(err)
			}
			if !bytes.Equal(got, content) {
				t.Fatalf("got %q, want %q", got, content)
			}
		})
	}
}

func TestOpenMissingFile(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "missing.json")); !os.IsNotExist(err) {
		t.Fatalf("got %v, want not exist error", err)
	}
}

func TestOpenBrokenGzip(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "broken.json.gz")
	if err := os.WriteFile(filename, []byte("not gzip"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(filename); err == nil {
		t.Fatal("expected error")
	}
}
