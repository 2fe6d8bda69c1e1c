// Package watcher reports files matching a pattern as they appear in a
// directory tree. It complements the one-shot scan in internal/finder: after
// the initial scan, a Watcher keeps running and reports newly created
// matching files until its context is cancelled.
package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/harrison/ffind/internal/finder"
	"github.com/harrison/ffind/internal/glob"
)

// Watcher follows filesystem events under a root directory and reports
// created files whose names match the pattern. Newly created directories
// are added to the watch set and swept for files that appeared before the
// watch registration landed.
type Watcher struct {
	root    string
	matcher *glob.Matcher
	sink    finder.ResultSink
	logger  finder.Logger
	fsw     *fsnotify.Watcher

	// seen dedupes reports: a file swept during watch registration can
	// also surface as a create event. Only touched from the construction
	// sweep and the single Run loop, so no lock is needed.
	seen map[string]struct{}
}

// Options configure a Watcher.
type Options struct {
	// Root is the directory tree to watch. Must exist and be a directory.
	Root string

	// Pattern is the filename pattern, with the same semantics as the
	// scanner's.
	Pattern string

	// Substring treats a wildcard-free pattern as a substring test.
	Substring bool

	// Sink receives matched paths. Required.
	Sink finder.ResultSink

	// Logger receives diagnostics. Optional.
	Logger finder.Logger
}

// New validates opts and constructs a Watcher with watches registered for
// every directory currently under the root. Symlinked directories are not
// followed, matching the scanner's traversal rules.
func New(opts Options) (*Watcher, error) {
	if opts.Sink == nil {
		return nil, fmt.Errorf("result sink is required")
	}

	info, err := os.Stat(opts.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to access root path %s: %w", opts.Root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root path is not a directory: %s", opts.Root)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	w := &Watcher{
		root:    opts.Root,
		matcher: glob.NewWithOptions(opts.Pattern, glob.Options{Substring: opts.Substring}),
		sink:    opts.Sink,
		logger:  opts.Logger,
		fsw:     fsw,
		seen:    make(map[string]struct{}),
	}

	if err := w.watchTree(opts.Root); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// Run processes filesystem events until ctx is cancelled. It always returns
// ctx.Err() on cancellation; event-channel closure returns nil.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.warnf("watch error: %v", err)
		}
	}
}

// handleEvent reacts to create events: new directories extend the watch
// set, new files are tested against the pattern.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) {
		return
	}

	info, err := os.Lstat(event.Name)
	if err != nil {
		// The entry may already be gone; a create/delete race is not
		// worth a warning at info level.
		w.debugf("cannot stat created entry %s: %v", event.Name, err)
		return
	}

	if info.IsDir() {
		// Files may have landed in the directory before our watch
		// registration, so sweep it once after watching.
		if err := w.watchTree(event.Name); err != nil {
			w.warnf("cannot watch new directory %s: %v", event.Name, err)
		}
		return
	}

	if info.Mode().IsRegular() || info.Mode()&os.ModeSymlink != 0 {
		if w.matcher.Match(filepath.Base(event.Name)) {
			w.report(event.Name)
		}
	}
}

// watchTree registers watches for dir and every directory below it, and
// reports matching files it encounters on the way. Unreadable directories
// are warned about and skipped.
func (w *Watcher) watchTree(dir string) error {
	if err := w.fsw.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		w.warnf("cannot read directory %s: %v", dir, err)
		return nil
	}

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		if entry.IsDir() {
			if err := w.watchTree(path); err != nil {
				w.warnf("%v", err)
			}
			continue
		}
		t := entry.Type()
		if t.IsRegular() || t&os.ModeSymlink != 0 {
			if w.matcher.Match(entry.Name()) {
				w.report(path)
			}
		}
	}
	return nil
}

// report forwards path to the sink unless it was already reported.
func (w *Watcher) report(path string) {
	if _, dup := w.seen[path]; dup {
		return
	}
	w.seen[path] = struct{}{}
	w.sink.Report(path)
}

func (w *Watcher) warnf(format string, args ...interface{}) {
	if w.logger != nil {
		w.logger.Warnf(format, args...)
	}
}

func (w *Watcher) debugf(format string, args ...interface{}) {
	if w.logger != nil {
		w.logger.Debugf(format, args...)
	}
}
