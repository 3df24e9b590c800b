// Package report writes sweep results to files and the console.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dm/gpuavail/internal/model"
)

// WriteError reports that a snapshot could not be persisted.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write snapshot %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// WriteCSV writes a header row and one row per record, in the order given.
func WriteCSV(w io.Writer, records []model.NodeStatus, cols []model.Column) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(model.Headers(cols)); err != nil {
		return err
	}
	for _, r := range records {
		if err := cw.Write(model.Row(r, cols)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSVFile writes records to path, replacing any existing file. The
// file is written to a temporary sibling first so a failed write never
// leaves a truncated snapshot behind.
func WriteCSVFile(path string, records []model.NodeStatus, cols []model.Column) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".gpuavail-*.csv")
	if err != nil {
		return &WriteError{Path: path, Err: err}
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if err = WriteCSV(tmp, records, cols); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	if err = tmp.Close(); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	return nil
}
