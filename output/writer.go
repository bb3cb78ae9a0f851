// Package output writes generated files to a directory tree or a zip
// archive.
package output

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/syssam/archgen/compiler/gen"
)

// Writer writes generated files under a directory with parallel workers.
type Writer struct {
	dir     string
	workers int
	clean   bool
	logger  *slog.Logger

	mu      sync.Mutex
	metrics Metrics
}

// Metrics tracks what a Writer wrote.
type Metrics struct {
	FilesWritten int
	TotalBytes   int64
	WriteTime    time.Duration
}

// Option configures a Writer.
type Option func(*Writer)

// WithWorkers sets the number of parallel workers. Values below one keep
// the default of GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(w *Writer) {
		if n > 0 {
			w.workers = n
		}
	}
}

// WithClean removes the directory before writing.
func WithClean() Option {
	return func(w *Writer) { w.clean = true }
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(w *Writer) {
		if l != nil {
			w.logger = l
		}
	}
}

// NewWriter returns a Writer rooted at dir.
func NewWriter(dir string, opts ...Option) *Writer {
	w := &Writer{
		dir:     dir,
		workers: runtime.GOMAXPROCS(0),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Metrics returns the metrics of the writes so far.
func (w *Writer) Metrics() Metrics {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.metrics
}

// Write writes every file. Paths are slash-separated and relative; a path
// that would leave the directory fails with a *WriteError before anything
// is written.
func (w *Writer) Write(ctx context.Context, files gen.Files) error {
	start := time.Now()
	paths := files.Paths()
	for _, p := range paths {
		if !filepath.IsLocal(filepath.FromSlash(p)) {
			return &WriteError{Path: p, Cause: errors.New("path escapes the output directory")}
		}
	}
	if w.clean {
		if err := os.RemoveAll(w.dir); err != nil {
			return &WriteError{Path: w.dir, Cause: err}
		}
	}
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return &WriteError{Path: w.dir, Cause: fmt.Errorf("create output directory: %w", err)}
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(w.workers)
	for _, p := range paths {
		eg.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
				return w.writeFile(p, files[p])
			}
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	w.mu.Lock()
	w.metrics.WriteTime += time.Since(start)
	m := w.metrics
	w.mu.Unlock()
	w.logger.Info("files written", "dir", w.dir, "files", m.FilesWritten, "bytes", m.TotalBytes)
	return nil
}

func (w *Writer) writeFile(name, content string) error {
	full := filepath.Join(w.dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return &WriteError{Path: name, Cause: err}
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		return &WriteError{Path: name, Cause: err}
	}
	w.logger.Debug("file written", "path", name, "bytes", len(content))

	w.mu.Lock()
	w.metrics.FilesWritten++
	w.metrics.TotalBytes += int64(len(content))
	w.mu.Unlock()
	return nil
}

// WriteDir is a shorthand for NewWriter followed by Writer.Write.
func WriteDir(ctx context.Context, dir string, files gen.Files, opts ...Option) error {
	return NewWriter(dir, opts...).Write(ctx, files)
}

// ReadDir reads every regular file under dir back into a gen.Files map,
// the inverse of WriteDir.
func ReadDir(dir string) (gen.Files, error) {
	files := make(gen.Files)
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil || !d.Type().IsRegular() {
			return err
		}
		b, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		files[filepath.ToSlash(rel)] = string(b)
		return nil
	})
	return files, err
}
