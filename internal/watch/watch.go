// Package watch regenerates a workspace whenever one of its manifests
// changes. Every trigger runs a full generation; nothing is regenerated
// incrementally.
package watch

import (
	"context"
	"time"

	"github.com/agentx-labs/wsgen/internal/config"
	"github.com/agentx-labs/wsgen/internal/logging"
	"github.com/agentx-labs/wsgen/internal/manifest"
	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce is how long the watcher waits for further changes before
// regenerating.
const DefaultDebounce = 300 * time.Millisecond

// Target is what the watcher regenerates.
type Target interface {
	Generate(ctx context.Context, path string, cfg config.Generation) (string, error)
	Inputs(ctx context.Context, path string) ([]string, error)
}

// Result is the outcome of one generation.
type Result struct {
	Output string
	Err    error
}

// Watcher observes the manifest directories of a generation and reruns it.
type Watcher struct {
	target   Target
	path     string
	cfg      config.Generation
	debounce time.Duration
	log      *zap.SugaredLogger
	results  chan<- Result
	watched  map[string]bool
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period before regenerating.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// WithResults delivers the outcome of every generation to ch. Sends block,
// so ch must be drained.
func WithResults(ch chan<- Result) Option {
	return func(w *Watcher) { w.results = ch }
}

// New returns a Watcher regenerating path with cfg.
func New(target Target, path string, cfg config.Generation, log *zap.SugaredLogger, opts ...Option) *Watcher {
	w := &Watcher{
		target:   target,
		path:     path,
		cfg:      cfg,
		debounce: DefaultDebounce,
		log:      logging.OrNop(log),
		watched:  make(map[string]bool),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run generates once, then regenerates after every burst of manifest
// changes until ctx is done. Generation failures are logged and reported
// but do not stop the watcher; the watch set is refreshed after each run.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "creating filesystem watcher")
	}
	defer fsw.Close()

	w.generate(ctx, fsw)

	// fire is nil while no regeneration is pending.
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !relevant(event) {
				continue
			}
			w.log.Debugw("manifest changed", logging.FieldFile, event.Name, "op", event.Op.String())
			fire = time.After(w.debounce)

		case <-fire:
			fire = nil
			w.generate(ctx, fsw)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Warnw("filesystem watcher error", "error", err)
		}
	}
}

// relevant reports whether event touches a manifest file.
func relevant(event fsnotify.Event) bool {
	if _, ok := manifest.KindForFile(event.Name); !ok {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0
}

func (w *Watcher) generate(ctx context.Context, fsw *fsnotify.Watcher) {
	out, err := w.target.Generate(ctx, w.path, w.cfg)
	if err != nil {
		w.log.Errorw("generation failed", logging.FieldPath, w.path, "error", err)
	} else {
		w.log.Infow("regenerated", logging.FieldOutput, out)
	}
	w.sync(ctx, fsw)
	if w.results != nil {
		select {
		case w.results <- Result{Output: out, Err: err}:
		case <-ctx.Done():
		}
	}
}

// sync adds the current input directories to fsw. Directories that stop
// being inputs are removed. When the inputs cannot be resolved the
// requested location stays watched so a fix is picked up.
func (w *Watcher) sync(ctx context.Context, fsw *fsnotify.Watcher) {
	dirs, err := w.target.Inputs(ctx, w.path)
	if err != nil {
		w.log.Debugw("resolving watch inputs", logging.FieldPath, w.path, "error", err)
		dirs = append(dirs, w.path)
	}

	want := make(map[string]bool, len(dirs))
	for _, dir := range dirs {
		want[dir] = true
		if w.watched[dir] {
			continue
		}
		if err := fsw.Add(dir); err != nil {
			w.log.Warnw("cannot watch directory", logging.FieldPath, dir, "error", err)
			continue
		}
		w.watched[dir] = true
	}
	for dir := range w.watched {
		if want[dir] {
			continue
		}
		_ = fsw.Remove(dir)
		delete(w.watched, dir)
	}
	w.log.Debugw("watching manifests", logging.FieldCount, len(w.watched))
}
