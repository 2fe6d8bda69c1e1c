// Package finder implements a concurrent recursive filename search.
//
// A fixed pool of workers shares a queue of directories. Each worker pops a
// directory, enumerates it, pushes discovered subdirectories back onto the
// queue, and reports files whose names match the pattern. Workers both
// consume and produce work, so the pool terminates through a shared pending
// count rather than a central coordinator: the count covers every directory
// that is queued or being enumerated, and the decrement that drives it to
// zero wakes all blocked workers so they can observe that no work can ever
// appear again.
package finder

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/harrison/ffind/internal/glob"
)

// Logger receives diagnostic output from the pool. Implementations must be
// safe for concurrent use. A nil Logger disables diagnostics.
type Logger interface {
	Debugf(format string, args ...interface{})
	Warnf(format string, args ...interface{})
}

// Options configure a Finder.
type Options struct {
	// Root is the directory to scan. It must exist and be a directory.
	Root string

	// Pattern is the filename pattern ('*' and '?' wildcards,
	// case-insensitive, anchored).
	Pattern string

	// Workers is the pool size. Zero or negative selects
	// runtime.NumCPU(), with a minimum of 1.
	Workers int

	// Substring treats a wildcard-free pattern as a case-insensitive
	// substring test instead of an exact match.
	Substring bool

	// ExcludeDirs lists directory names (not paths) that are skipped
	// entirely, e.g. ".git" or "node_modules".
	ExcludeDirs []string

	// MaxDepth limits recursion depth (0 = unlimited, 1 = root only).
	MaxDepth int

	// Sink receives matched paths. Required.
	Sink ResultSink

	// Logger receives per-directory and per-entry warnings. Optional.
	Logger Logger
}

// Stats summarizes a completed (or cancelled) scan.
type Stats struct {
	DirsScanned int64
	FilesTested int64
	Matches     int64
	Warnings    int64
}

// Finder runs one concurrent scan. Create with New, run with Run; a Finder
// is single-use.
type Finder struct {
	root     string
	workers  int
	matcher  *glob.Matcher
	sink     ResultSink
	logger   Logger
	queue    *dirQueue
	exclude  map[string]bool
	maxDepth int

	dirsScanned atomic.Int64
	filesTested atomic.Int64
	matches     atomic.Int64
	warnings    atomic.Int64
}

// New validates opts and constructs a Finder. It fails before any worker
// starts if the root does not exist or is not a directory.
func New(opts Options) (*Finder, error) {
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

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers < 1 {
		workers = 1
	}

	if opts.MaxDepth < 0 {
		return nil, fmt.Errorf("max depth must be >= 0, got %d", opts.MaxDepth)
	}

	exclude := make(map[string]bool, len(opts.ExcludeDirs))
	for _, name := range opts.ExcludeDirs {
		exclude[name] = true
	}

	return &Finder{
		root:     opts.Root,
		workers:  workers,
		matcher:  glob.NewWithOptions(opts.Pattern, glob.Options{Substring: opts.Substring}),
		sink:     opts.Sink,
		logger:   opts.Logger,
		queue:    newDirQueue(),
		exclude:  exclude,
		maxDepth: opts.MaxDepth,
	}, nil
}

// Workers returns the effective pool size.
func (f *Finder) Workers() int {
	return f.workers
}

// Run seeds the queue with the root directory and blocks until every worker
// has exited. Cancelling ctx stops the pool early: workers finish the
// directory in hand and exit, and Run returns ctx.Err().
func (f *Finder) Run(ctx context.Context) (Stats, error) {
	// Register the root before it becomes visible to any worker.
	f.queue.AddPending()
	f.queue.Push(dirTask{path: f.root, depth: 1})

	// Translate context cancellation into a queue stop. The done channel
	// keeps the watcher goroutine from leaking once the scan finishes.
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			f.queue.Stop()
		case <-done:
		}
	}()

	var wg sync.WaitGroup
	wg.Add(f.workers)
	for i := 0; i < f.workers; i++ {
		go func(id int) {
			defer wg.Done()
			f.worker(id)
		}(i)
	}
	wg.Wait()
	close(done)

	return f.stats(), ctx.Err()
}

// stats snapshots the atomic counters.
func (f *Finder) stats() Stats {
	return Stats{
		DirsScanned: f.dirsScanned.Load(),
		FilesTested: f.filesTested.Load(),
		Matches:     f.matches.Load(),
		Warnings:    f.warnings.Load(),
	}
}

// worker is one loop of the symmetric pool.
func (f *Finder) worker(id int) {
	for {
		task, ok := f.queue.PopOrWait()
		if !ok {
			if f.queue.Pending() == 0 || f.queue.Stopped() {
				f.debugf("worker %d: no more work, exiting", id)
				return
			}
			// Spurious wake: queue momentarily empty but work is
			// still pending elsewhere.
			continue
		}

		f.scanDir(task)

		// The decrement must come after every child of the task has
		// been registered, which scanDir guarantees.
		f.queue.Done()
	}
}

// scanDir enumerates one directory: subdirectories are queued, files and
// symlinks are tested against the pattern. A directory that cannot be read
// contributes no children and no matches; the rest of the traversal is
// unaffected.
func (f *Finder) scanDir(task dirTask) {
	entries, err := os.ReadDir(task.path)
	if err != nil {
		f.warnf("cannot read directory %s: %v", task.path, err)
		return
	}

	f.dirsScanned.Add(1)

	for _, entry := range entries {
		path := filepath.Join(task.path, entry.Name())

		if entry.IsDir() {
			if f.exclude[entry.Name()] {
				f.debugf("skipping excluded directory %s", path)
				continue
			}
			if f.maxDepth > 0 && task.depth >= f.maxDepth {
				continue
			}
			// Increment strictly before the task becomes visible
			// so the pending count never undercounts.
			f.queue.AddPending()
			f.queue.Push(dirTask{path: path, depth: task.depth + 1})
			continue
		}

		matchable, err := isMatchable(entry)
		if err != nil {
			f.warnf("cannot classify %s: %v", path, err)
			continue
		}
		if !matchable {
			continue
		}

		f.filesTested.Add(1)
		if f.matcher.Match(entry.Name()) {
			f.matches.Add(1)
			f.sink.Report(path)
		}
	}
}

// isMatchable reports whether entry is a candidate leaf: a regular file or
// a symlink. Symlinked directories are not followed, so symlinks are always
// treated as leaves. Irregular entries are stat'd to decide; a failed stat
// (entry deleted mid-scan, permission change) is reported to the caller.
func isMatchable(entry fs.DirEntry) (bool, error) {
	t := entry.Type()
	if t.IsRegular() || t&fs.ModeSymlink != 0 {
		return true, nil
	}
	if t&fs.ModeIrregular != 0 {
		info, err := entry.Info()
		if err != nil {
			return false, err
		}
		return info.Mode().IsRegular(), nil
	}
	// Named pipes, sockets, devices.
	return false, nil
}

func (f *Finder) warnf(format string, args ...interface{}) {
	f.warnings.Add(1)
	if f.logger != nil {
		f.logger.Warnf(format, args...)
	}
}

func (f *Finder) debugf(format string, args ...interface{}) {
	if f.logger != nil {
		f.logger.Debugf(format, args...)
	}
}
