// Package artifacts writes diagnostic output (screenshots) for human review.
// Nothing written here is load-bearing for pass/fail.
package artifacts

import (
	"fmt"
	"io"
	"log"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/gotrs-io/ui-smoke/internal/browser"
)

// DiagnosticIOError reports a failed capture or write. Callers log it and
// carry on.
type DiagnosticIOError struct {
	Path string
	Err  error
}

func (e *DiagnosticIOError) Error() string {
	return fmt.Sprintf("diagnostic capture %s: %v", e.Path, e.Err)
}

func (e *DiagnosticIOError) Unwrap() error { return e.Err }

// Writer stores screenshots below a directory of an afero filesystem.
type Writer struct {
	fs      afero.Fs
	dir     string
	enabled bool
	logger  *log.Logger
}

// NewWriter creates a writer rooted at dir. A nil logger discards output.
func NewWriter(fs afero.Fs, dir string, logger *log.Logger) *Writer {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Writer{fs: fs, dir: dir, enabled: true, logger: logger}
}

// Disable turns Capture into a no-op.
func (w *Writer) Disable() { w.enabled = false }

// Dir is the artifact root.
func (w *Writer) Dir() string { return w.dir }

// Fs exposes the backing filesystem for report writers.
func (w *Writer) Fs() afero.Fs { return w.fs }

// Path resolves name below the artifact root; absolute names are kept.
func (w *Writer) Path(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(w.dir, name)
}

// Capture takes a screenshot of page and writes it to name. It returns the
// written path, or a *DiagnosticIOError.
func (w *Writer) Capture(page browser.Page, name string) (string, error) {
	if !w.enabled {
		return "", nil
	}
	path := w.Path(name)
	data, err := page.Screenshot()
	if err != nil {
		return "", &DiagnosticIOError{Path: path, Err: err}
	}
	if err := w.Write(path, data); err != nil {
		return "", err
	}
	return path, nil
}

// Write stores data at path, creating parent directories.
func (w *Writer) Write(path string, data []byte) error {
	if err := w.fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return &DiagnosticIOError{Path: path, Err: err}
	}
	if err := afero.WriteFile(w.fs, path, data, 0o644); err != nil {
		return &DiagnosticIOError{Path: path, Err: err}
	}
	return nil
}

// TryCapture is Capture for call sites that must not fail: errors are
// logged and an empty path is returned.
func (w *Writer) TryCapture(page browser.Page, name string) string {
	path, err := w.Capture(page, name)
	if err != nil {
		w.logger.Printf("Screenshot skipped: %v", err)
		return ""
	}
	return path
}
