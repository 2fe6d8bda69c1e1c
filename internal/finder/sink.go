package finder

import (
	"fmt"
	"io"
	"sync"
)

// ResultSink receives matched file paths. Report may be called concurrently
// from multiple workers; implementations must serialize their own output.
type ResultSink interface {
	Report(path string)
}

// WriterSink writes one matched path per line to an io.Writer, serializing
// concurrent reports with a mutex.
type WriterSink struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterSink creates a WriterSink wrapping w.
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

// Report writes path followed by a newline.
func (s *WriterSink) Report(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintln(s.w, path)
}

// CollectSink accumulates matched paths in memory. Useful for tests and for
// callers that post-process the result set (history persistence, sorting).
type CollectSink struct {
	mu    sync.Mutex
	paths []string
}

// NewCollectSink creates an empty CollectSink.
func NewCollectSink() *CollectSink {
	return &CollectSink{}
}

// Report appends path to the collected set.
func (s *CollectSink) Report(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paths = append(s.paths, path)
}

// Paths returns a copy of the collected paths in report order.
func (s *CollectSink) Paths() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.paths))
	copy(out, s.paths)
	return out
}

// Len returns the number of collected paths.
func (s *CollectSink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.paths)
}

// TeeSink fans each report out to every wrapped sink in order.
type TeeSink struct {
	sinks []ResultSink
}

// NewTeeSink creates a TeeSink over the given sinks.
func NewTeeSink(sinks ...ResultSink) *TeeSink {
	return &TeeSink{sinks: sinks}
}

// Report forwards path to every wrapped sink.
func (s *TeeSink) Report(path string) {
	for _, sink := range s.sinks {
		sink.Report(path)
	}
}
