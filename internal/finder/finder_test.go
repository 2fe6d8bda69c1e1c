package finder

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildTree creates files under root, making parent directories as needed.
func buildTree(t *testing.T, root string, files []string) {
	t.Helper()
	for _, f := range files {
		path := filepath.Join(root, f)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
	}
}

func runScan(t *testing.T, opts Options) ([]string, Stats) {
	t.Helper()
	sink := NewCollectSink()
	opts.Sink = sink
	f, err := New(opts)
	require.NoError(t, err)
	stats, err := f.Run(context.Background())
	require.NoError(t, err)
	paths := sink.Paths()
	sort.Strings(paths)
	return paths, stats
}

func TestFinderEndToEnd(t *testing.T) {
	root := t.TempDir()
	buildTree(t, root, []string{
		"a.txt",
		"sub/b.TXT",
		"sub/c.log",
	})

	paths, stats := runScan(t, Options{Root: root, Pattern: "*.txt", Workers: 4})

	want := []string{
		filepath.Join(root, "a.txt"),
		filepath.Join(root, "sub", "b.TXT"),
	}
	sort.Strings(want)
	assert.Equal(t, want, paths)
	assert.Equal(t, int64(2), stats.Matches)
	assert.Equal(t, int64(2), stats.DirsScanned)
	assert.Equal(t, int64(0), stats.Warnings)
}

func TestFinderDeterministicAcrossWorkerCounts(t *testing.T) {
	root := t.TempDir()
	var files []string
	for d := 0; d < 5; d++ {
		for i := 0; i < 10; i++ {
			files = append(files, fmt.Sprintf("dir%d/sub%d/file_%02d.dat", d, i%3, i))
			files = append(files, fmt.Sprintf("dir%d/note_%02d.txt", d, i))
		}
	}
	buildTree(t, root, files)

	reference, _ := runScan(t, Options{Root: root, Pattern: "*.dat", Workers: 1})
	require.NotEmpty(t, reference)

	for _, workers := range []int{2, 4, 8, 16} {
		paths, _ := runScan(t, Options{Root: root, Pattern: "*.dat", Workers: workers})
		assert.Equal(t, reference, paths, "result set changed with %d workers", workers)
	}
}

func TestFinderZeroDepthTree(t *testing.T) {
	root := t.TempDir()
	buildTree(t, root, []string{"only.txt"})

	paths, stats := runScan(t, Options{Root: root, Pattern: "*.txt", Workers: 4})
	assert.Equal(t, []string{filepath.Join(root, "only.txt")}, paths)
	assert.Equal(t, int64(1), stats.DirsScanned)
}

func TestFinderMoreWorkersThanWork(t *testing.T) {
	// An empty root gives exactly one directory of work; the surplus
	// workers must still terminate.
	root := t.TempDir()

	paths, stats := runScan(t, Options{Root: root, Pattern: "*", Workers: 32})
	assert.Empty(t, paths)
	assert.Equal(t, int64(1), stats.DirsScanned)
}

func TestFinderDefaultWorkerCount(t *testing.T) {
	root := t.TempDir()
	f, err := New(Options{Root: root, Pattern: "*", Sink: NewCollectSink()})
	require.NoError(t, err)
	assert.Equal(t, runtime.NumCPU(), f.Workers())
}

func TestFinderStartupErrors(t *testing.T) {
	t.Run("missing root", func(t *testing.T) {
		_, err := New(Options{
			Root:    filepath.Join(t.TempDir(), "nope"),
			Pattern: "*",
			Sink:    NewCollectSink(),
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to access root path")
	})

	t.Run("root is a file", func(t *testing.T) {
		root := t.TempDir()
		file := filepath.Join(root, "f.txt")
		require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

		_, err := New(Options{Root: file, Pattern: "*", Sink: NewCollectSink()})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not a directory")
	})

	t.Run("missing sink", func(t *testing.T) {
		_, err := New(Options{Root: t.TempDir(), Pattern: "*"})
		require.Error(t, err)
	})
}

func TestFinderUnreadableSubdirectory(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits are not enforced the same way on windows")
	}
	if os.Geteuid() == 0 {
		t.Skip("running as root: permissions are not enforced")
	}

	root := t.TempDir()
	buildTree(t, root, []string{
		"ok/a.txt",
		"locked/hidden.txt",
		"ok/deeper/b.txt",
	})
	locked := filepath.Join(root, "locked")
	require.NoError(t, os.Chmod(locked, 0000))
	t.Cleanup(func() { os.Chmod(locked, 0755) })

	warner := &recordingLogger{}
	sink := NewCollectSink()
	f, err := New(Options{Root: root, Pattern: "*.txt", Workers: 4, Sink: sink, Logger: warner})
	require.NoError(t, err)
	stats, err := f.Run(context.Background())
	require.NoError(t, err)

	paths := sink.Paths()
	sort.Strings(paths)
	want := []string{
		filepath.Join(root, "ok", "a.txt"),
		filepath.Join(root, "ok", "deeper", "b.txt"),
	}
	assert.Equal(t, want, paths, "siblings of the unreadable directory must still be scanned")
	assert.Equal(t, int64(1), stats.Warnings)
	assert.NotEmpty(t, warner.warnings())
}

func TestFinderSymlinks(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlink creation requires privileges on windows")
	}

	root := t.TempDir()
	outside := t.TempDir()
	buildTree(t, root, []string{"real.txt"})
	buildTree(t, outside, []string{"linked.txt", "trap/inner.txt"})

	// Symlinked files are matchable leaves.
	require.NoError(t, os.Symlink(filepath.Join(outside, "linked.txt"), filepath.Join(root, "alias.txt")))
	// Symlinked directories are not followed.
	require.NoError(t, os.Symlink(filepath.Join(outside, "trap"), filepath.Join(root, "trapdir")))

	paths, _ := runScan(t, Options{Root: root, Pattern: "*.txt", Workers: 2})
	want := []string{
		filepath.Join(root, "alias.txt"),
		filepath.Join(root, "real.txt"),
	}
	sort.Strings(want)
	assert.Equal(t, want, paths)
}

func TestFinderSubstringOption(t *testing.T) {
	root := t.TempDir()
	buildTree(t, root, []string{"myconfig.yaml", "conf", "other.txt"})

	exact, _ := runScan(t, Options{Root: root, Pattern: "conf", Workers: 2})
	assert.Equal(t, []string{filepath.Join(root, "conf")}, exact)

	loose, _ := runScan(t, Options{Root: root, Pattern: "conf", Workers: 2, Substring: true})
	sort.Strings(loose)
	want := []string{
		filepath.Join(root, "conf"),
		filepath.Join(root, "myconfig.yaml"),
	}
	sort.Strings(want)
	assert.Equal(t, want, loose)
}

func TestFinderExcludeDirs(t *testing.T) {
	root := t.TempDir()
	buildTree(t, root, []string{
		"keep/a.txt",
		".git/objects/b.txt",
		"node_modules/pkg/c.txt",
	})

	paths, _ := runScan(t, Options{
		Root:        root,
		Pattern:     "*.txt",
		Workers:     4,
		ExcludeDirs: []string{".git", "node_modules"},
	})
	assert.Equal(t, []string{filepath.Join(root, "keep", "a.txt")}, paths)
}

func TestFinderMaxDepth(t *testing.T) {
	root := t.TempDir()
	buildTree(t, root, []string{
		"top.txt",
		"l1/mid.txt",
		"l1/l2/deep.txt",
	})

	t.Run("root only", func(t *testing.T) {
		paths, _ := runScan(t, Options{Root: root, Pattern: "*.txt", Workers: 2, MaxDepth: 1})
		assert.Equal(t, []string{filepath.Join(root, "top.txt")}, paths)
	})

	t.Run("two levels", func(t *testing.T) {
		paths, _ := runScan(t, Options{Root: root, Pattern: "*.txt", Workers: 2, MaxDepth: 2})
		want := []string{
			filepath.Join(root, "l1", "mid.txt"),
			filepath.Join(root, "top.txt"),
		}
		sort.Strings(want)
		assert.Equal(t, want, paths)
	})

	t.Run("unlimited", func(t *testing.T) {
		paths, _ := runScan(t, Options{Root: root, Pattern: "*.txt", Workers: 2})
		assert.Len(t, paths, 3)
	})

	t.Run("negative rejected", func(t *testing.T) {
		_, err := New(Options{Root: root, Pattern: "*", MaxDepth: -1, Sink: NewCollectSink()})
		require.Error(t, err)
	})
}

func TestFinderCancellation(t *testing.T) {
	root := t.TempDir()
	var files []string
	for d := 0; d < 20; d++ {
		for i := 0; i < 5; i++ {
			files = append(files, fmt.Sprintf("d%02d/s%d/f%d.txt", d, i, i))
		}
	}
	buildTree(t, root, files)

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // cancelled before the scan starts

	sink := NewCollectSink()
	f, err := New(Options{Root: root, Pattern: "*.txt", Workers: 4, Sink: sink})
	require.NoError(t, err)

	_, err = f.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

// recordingLogger captures warnings for assertions.
type recordingLogger struct {
	mu   sync.Mutex
	warn []string
}

func (l *recordingLogger) Debugf(format string, args ...interface{}) {}

func (l *recordingLogger) Warnf(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warn = append(l.warn, fmt.Sprintf(format, args...))
}

func (l *recordingLogger) warnings() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.warn))
	copy(out, l.warn)
	return out
}
