// Package watch converts mesh files dropped into a directory into CTM files.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/samcharles93/meshctm/internal/logger"
	"github.com/samcharles93/meshctm/internal/meshio"
	"github.com/samcharles93/meshctm/pkg/ctm"
)

// DefaultSettle is the quiet period after the last event on a file before
// it is converted.
const DefaultSettle = 500 * time.Millisecond

// Result reports one conversion.
type Result struct {
	Source string
	Output string
	Err    error
}

type Options struct {
	In  string
	Out string

	Settle  time.Duration
	Export  meshio.ExportOptions
	Process meshio.ProcessOptions
	CTM     []ctm.Option
	Logger  logger.Logger

	// Existing converts files already present in In when Run starts.
	Existing bool
	// OnResult, when set, is called after every conversion attempt.
	OnResult func(Result)
}

type Watcher struct {
	opts Options
	log  logger.Logger

	mu      sync.Mutex
	pending map[string]*time.Timer
	ready   chan string
	done    chan struct{}
}

func New(opts Options) (*Watcher, error) {
	if opts.In == "" || opts.Out == "" {
		return nil, errors.New("watch: input and output directories are required")
	}
	in, err := filepath.Abs(opts.In)
	if err != nil {
		return nil, err
	}
	out, err := filepath.Abs(opts.Out)
	if err != nil {
		return nil, err
	}
	if in == out {
		return nil, errors.New("watch: output directory must differ from input")
	}
	opts.In, opts.Out = in, out
	if opts.Settle <= 0 {
		opts.Settle = DefaultSettle
	}
	if opts.Logger == nil {
		opts.Logger = logger.Discard()
	}
	return &Watcher{
		opts:    opts,
		log:     opts.Logger.With("component", "watch"),
		pending: make(map[string]*time.Timer),
		ready:   make(chan string, 16),
		done:    make(chan struct{}),
	}, nil
}

// Accepts reports whether path has a convertible extension.
func Accepts(path string) bool {
	f, err := meshio.FormatOf(path)
	if err != nil {
		return false
	}
	return f != meshio.FormatCTM
}

// OutputPath returns where the conversion of src is written.
func (w *Watcher) OutputPath(src string) string {
	base := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	return filepath.Join(w.opts.Out, base+".ctm")
}

// Run watches the input directory until ctx is cancelled. A Watcher runs
// at most once.
func (w *Watcher) Run(ctx context.Context) error {
	defer close(w.done)
	if err := os.MkdirAll(w.opts.Out, 0o755); err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer fw.Close()
	if err := fw.Add(w.opts.In); err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer w.stopTimers()

	w.log.Info("watching", "in", w.opts.In, "out", w.opts.Out, "settle", w.opts.Settle)
	if w.opts.Existing {
		entries, err := os.ReadDir(w.opts.In)
		if err != nil {
			return fmt.Errorf("watch: %w", err)
		}
		for _, e := range entries {
			if !e.IsDir() && Accepts(e.Name()) {
				w.schedule(filepath.Join(w.opts.In, e.Name()))
			}
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case e, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if e.Op&(fsnotify.Create|fsnotify.Write) != 0 && Accepts(e.Name) {
				w.schedule(e.Name)
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watcher error", "error", err)
		case path := <-w.ready:
			w.report(w.convertIfPresent(path))
		}
	}
}

// schedule (re)starts the settle timer for path.
func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.scheduleLocked(path)
}

// scheduleLocked requires w.mu. A timer whose callback is already running
// cannot be re-armed, so it is replaced and the stale callback leaves the
// new entry alone.
func (w *Watcher) scheduleLocked(path string) {
	if t, ok := w.pending[path]; ok && t.Stop() {
		t.Reset(w.opts.Settle)
		return
	}
	var t *time.Timer
	t = time.AfterFunc(w.opts.Settle, func() {
		w.mu.Lock()
		if w.pending[path] == t {
			delete(w.pending, path)
		}
		w.mu.Unlock()
		select {
		case w.ready <- path:
		case <-w.done:
		}
	})
	w.pending[path] = t
}

func (w *Watcher) stopTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, t := range w.pending {
		t.Stop()
		delete(w.pending, path)
	}
}

func (w *Watcher) convertIfPresent(path string) Result {
	if _, err := os.Stat(path); err != nil {
		return Result{Source: path, Err: err}
	}
	out, err := w.Convert(path)
	return Result{Source: path, Output: out, Err: err}
}

func (w *Watcher) report(r Result) {
	if r.Err != nil {
		w.log.Error("conversion failed", "source", r.Source, "error", r.Err)
	} else {
		w.log.Info("converted", "source", r.Source, "output", r.Output)
	}
	if w.opts.OnResult != nil {
		w.opts.OnResult(r)
	}
}

// Convert reads src, applies the processing options and writes the CTM
// file. It returns the output path.
func (w *Watcher) Convert(src string) (string, error) {
	m, err := meshio.Read(src, w.opts.CTM...)
	if err != nil {
		return "", err
	}
	meshio.Process(m, w.opts.Process)
	out := w.OutputPath(src)
	if err := meshio.Write(out, m, w.opts.Export, w.opts.CTM...); err != nil {
		return "", err
	}
	return out, nil
}
