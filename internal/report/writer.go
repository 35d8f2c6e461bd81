package report

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"os"
	"strings"
)

// PersistenceError marks report-file failures as recoverable: the computed
// metrics remain valid even when they could not be persisted.
type PersistenceError struct {
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("report: persist to %q: %v", e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Writer appends rows to a cumulative report file. The file is never
// truncated; the header is written exactly once, when the file is created or
// currently empty. One Writer serves one invocation: Open, Append, Close.
type Writer struct {
	path   string
	schema Schema
	f      *os.File
	csv    *csv.Writer
	closed bool
}

// Open opens the report file for appending. The header decision is made once
// here: an empty file gets the schema header, a non-empty file must already
// start with it.
func Open(path string, schema Schema) (*Writer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, &PersistenceError{Path: path, Err: err}
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, &PersistenceError{Path: path, Err: err}
	}

	w := &Writer{path: path, schema: schema, f: f, csv: csv.NewWriter(f)}
	if info.Size() == 0 {
		if err := w.csv.Write(schema.Header()); err != nil {
			_ = f.Close()
			return nil, &PersistenceError{Path: path, Err: err}
		}
	} else if err := verifyHeader(path, schema); err != nil {
		_ = f.Close()
		return nil, err
	}
	return w, nil
}

// Append writes one row per host in the given order.
func (w *Writer) Append(rows []Row) error {
	if w.closed {
		return &PersistenceError{Path: w.path, Err: fmt.Errorf("writer already closed")}
	}
	for _, r := range rows {
		if err := w.csv.Write(r.Cells(w.schema)); err != nil {
			return &PersistenceError{Path: w.path, Err: err}
		}
	}
	return nil
}

// Close flushes and releases the file handle. Safe to call once per Writer;
// it runs on every exit path so a failed append never leaves the handle open.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	w.csv.Flush()
	flushErr := w.csv.Error()
	closeErr := w.f.Close()
	if flushErr != nil {
		return &PersistenceError{Path: w.path, Err: flushErr}
	}
	if closeErr != nil {
		return &PersistenceError{Path: w.path, Err: closeErr}
	}
	return nil
}

// AppendRun is the one-shot path: open, append one run's rows, close.
func AppendRun(path string, schema Schema, rows []Row) (retErr error) {
	w, err := Open(path, schema)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := w.Close(); cerr != nil && retErr == nil {
			retErr = cerr
		}
	}()
	return w.Append(rows)
}

func verifyHeader(path string, schema Schema) error {
	f, err := os.Open(path)
	if err != nil {
		return &PersistenceError{Path: path, Err: err}
	}
	defer f.Close()

	s := bufio.NewScanner(f)
	if !s.Scan() {
		if err := s.Err(); err != nil {
			return &PersistenceError{Path: path, Err: err}
		}
		return nil
	}
	want := strings.Join(schema.Header(), ",")
	if got := strings.TrimRight(s.Text(), "\r"); got != want {
		return &PersistenceError{
			Path: path,
			Err:  fmt.Errorf("existing header does not match schema %q: got %q", schema, got),
		}
	}
	return nil
}
