// Package watch reloads a rules file when it changes on disk.
//
// The directory containing the file is watched rather than the file itself,
// so that editors which replace the file on save are handled.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/macropower/patsub/pkg/log"
	"github.com/macropower/patsub/pkg/rule"
)

// DefaultDebounce is how long the watcher waits for events to settle before
// reloading.
const DefaultDebounce = 100 * time.Millisecond

// BuildFunc builds a new [rule.Set], typically by loading the watched file.
type BuildFunc func(ctx context.Context) (*rule.Set, error)

// Watcher rebuilds a [rule.Set] when a file changes, and stores it in a
// [rule.Holder]. When a rebuild fails, the previous Set stays active.
type Watcher struct {
	tracer   trace.Tracer
	watcher  *fsnotify.Watcher
	holder   *rule.Holder
	build    BuildFunc
	onReload func(*rule.Set, error)
	path     string
	debounce time.Duration
}

// Opt configures a [Watcher].
type Opt func(*Watcher)

// WithDebounce sets the debounce interval.
func WithDebounce(d time.Duration) Opt {
	return func(w *Watcher) {
		w.debounce = d
	}
}

// WithOnReload registers a function called after every reload attempt.
func WithOnReload(fn func(*rule.Set, error)) Opt {
	return func(w *Watcher) {
		w.onReload = fn
	}
}

// New creates a [Watcher] for the file at path. Call [Watcher.Run] to start
// watching.
func New(path string, holder *rule.Holder, build BuildFunc, opts ...Opt) (*Watcher, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve path: %w", err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}

	err = fw.Add(filepath.Dir(absPath))
	if err != nil {
		_ = fw.Close()

		return nil, fmt.Errorf("add path to watcher: %w", err)
	}

	w := &Watcher{
		tracer:   otel.Tracer("watch"),
		watcher:  fw,
		holder:   holder,
		build:    build,
		path:     absPath,
		debounce: DefaultDebounce,
	}
	for _, opt := range opts {
		opt(w)
	}

	return w, nil
}

// Run handles file system events until ctx is done. It closes the
// underlying watcher before returning.
func (w *Watcher) Run(ctx context.Context) error {
	logger := log.WithContext(ctx)

	defer w.close(ctx)

	timer := time.NewTimer(w.debounce)
	timer.Stop()

	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}

			if filepath.Clean(evt.Name) != w.path {
				continue
			}

			// Ignore events that are not related to file content changes.
			if evt.Has(fsnotify.Chmod) && !evt.Has(fsnotify.Write) {
				continue
			}

			logger.DebugContext(ctx, "rules file changed", slog.String("event", evt.String()))
			timer.Reset(w.debounce)

		case <-timer.C:
			w.reload(ctx)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}

			logger.ErrorContext(ctx, "watch rules file", slog.Any("err", err))
		}
	}
}

func (w *Watcher) reload(ctx context.Context) {
	ctx, span := w.tracer.Start(ctx, "reload", trace.WithAttributes(
		attribute.String("path", w.path),
	))
	defer span.End()

	logger := log.WithContext(ctx)

	set, err := w.build(ctx)
	if err != nil {
		span.RecordError(err)
		logger.ErrorContext(ctx, "reload rules, keeping previous rules",
			slog.String("path", w.path),
			slog.Any("err", err),
		)
	} else {
		w.holder.Store(set)
		logger.InfoContext(ctx, "reloaded rules",
			slog.String("path", w.path),
			slog.Int("rules", set.Len()),
		)
	}

	if w.onReload != nil {
		w.onReload(set, err)
	}
}

func (w *Watcher) close(ctx context.Context) {
	err := w.watcher.Close()
	if err != nil {
		log.WithContext(ctx).ErrorContext(ctx, "close watcher", slog.Any("err", err))
	}
}
