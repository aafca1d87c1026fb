package fsutil

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
)

// OutputFile is a buffered, append-only sink for line-delimited JSON
// records. Writes go through an in-memory buffer; callers must Close (or
// Flush) to guarantee records reach disk.
type OutputFile struct {
	path string
	f    *os.File
	bw   *bufio.Writer
	enc  *json.Encoder
}

// OpenOutput opens the file at path for appending, creating it if needed.
func OpenOutput(path string) (*OutputFile, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening output file %s: %w", path, err)
	}
	bw := bufio.NewWriter(f)
	return &OutputFile{path: path, f: f, bw: bw, enc: json.NewEncoder(bw)}, nil
}

// Path returns the path the sink writes to.
func (o *OutputFile) Path() string { return o.path }

// WriteRecord appends v as a single JSON line.
func (o *OutputFile) WriteRecord(v any) error {
	if err := o.enc.Encode(v); err != nil {
		return fmt.Errorf("writing record to %s: %w", o.path, err)
	}
	return nil
}

// Flush pushes buffered records to the operating system.
func (o *OutputFile) Flush() error {
	if err := o.bw.Flush(); err != nil {
		return fmt.Errorf("flushing %s: %w", o.path, err)
	}
	return nil
}

// Close flushes buffered records and closes the underlying file.
func (o *OutputFile) Close() error {
	flushErr := o.bw.Flush()
	closeErr := o.f.Close()
	if flushErr != nil {
		return fmt.Errorf("flushing %s: %w", o.path, flushErr)
	}
	if closeErr != nil {
		return fmt.Errorf("closing %s: %w", o.path, closeErr)
	}
	return nil
}
