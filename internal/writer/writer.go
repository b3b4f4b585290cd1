// Package writer emits envelopes as newline-delimited JSON. One envelope
// becomes exactly one line, so downstream consumers can stream-parse the
// output without buffering whole documents.
package writer

import (
	"bufio"
	"io"
	"os"
	"path/filepath"

	"github.com/fixgen/fixgen/pkg/errors"
	"github.com/fixgen/fixgen/pkg/record"
)

// Writer serializes envelopes to an underlying stream. It buffers writes;
// callers must Flush (or Close) before relying on the output.
type Writer struct {
	buf   *bufio.Writer
	close io.Closer
	count int
}

// New wraps an output stream. The caller keeps ownership of w.
func New(w io.Writer) *Writer {
	return &Writer{buf: bufio.NewWriter(w)}
}

// Create opens path for writing, creating parent directories as needed.
// Closing the returned writer closes the file.
func Create(path string) (*Writer, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.NewIOError("create", dir, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.NewIOError("create", path, err)
	}
	return &Writer{buf: bufio.NewWriter(f), close: f}, nil
}

// Write appends one envelope as a single JSON line.
func (w *Writer) Write(env record.Envelope) error {
	line, err := env.MarshalLine()
	if err != nil {
		return err
	}
	if _, err := w.buf.Write(line); err != nil {
		return errors.NewIOError("write", "", err)
	}
	if err := w.buf.WriteByte('\n'); err != nil {
		return errors.NewIOError("write", "", err)
	}
	w.count++
	return nil
}

// Count returns how many lines have been written so far.
func (w *Writer) Count() int { return w.count }

// Flush forces buffered lines to the underlying stream.
func (w *Writer) Flush() error {
	if err := w.buf.Flush(); err != nil {
		return errors.NewIOError("flush", "", err)
	}
	return nil
}

// Close flushes and, when the writer owns its destination, closes it.
// Close is idempotent.
func (w *Writer) Close() error {
	if err := w.Flush(); err != nil {
		return err
	}
	if w.close != nil {
		c := w.close
		w.close = nil
		if err := c.Close(); err != nil {
			return errors.NewIOError("close", "", err)
		}
	}
	return nil
}
