// Package selflog provides internal diagnostic logging for plume itself.
//
// The engine never writes its own problems through the log pipeline it
// implements; that would recurse. When selflog is enabled, internal errors
// that would otherwise be discarded (template mistakes, sink write
// failures, dropped events) are reported to the configured writer:
//
//	selflog.Enable(os.Stderr)
//	defer selflog.Disable()
//
// Setting the PLUME_SELFLOG environment variable enables it at startup:
// "stderr", "stdout" or a file path.
package selflog

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

var (
	outputWriter atomic.Pointer[io.Writer]
	outputFunc   atomic.Pointer[func(string)]
)

func init() {
	switch target := os.Getenv("PLUME_SELFLOG"); target {
	case "":
	case "stderr":
		Enable(os.Stderr)
	case "stdout":
		Enable(os.Stdout)
	default:
		if f, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); err == nil {
			Enable(Sync(f))
		}
	}
}

// Enable activates self-logging to w. The writer must be safe for
// concurrent use or wrapped with Sync.
func Enable(w io.Writer) {
	if w == nil {
		return
	}
	outputFunc.Store(nil)
	outputWriter.Store(&w)
}

// EnableFunc activates self-logging through a callback.
func EnableFunc(fn func(string)) {
	if fn == nil {
		return
	}
	outputWriter.Store(nil)
	outputFunc.Store(&fn)
}

// Disable deactivates self-logging.
func Disable() {
	outputWriter.Store(nil)
	outputFunc.Store(nil)
}

// IsEnabled reports whether self-logging is active. Check it before
// building expensive diagnostic strings:
//
//	if selflog.IsEnabled() {
//		selflog.Printf("[backend] dropped %d events", n)
//	}
func IsEnabled() bool {
	return outputWriter.Load() != nil || outputFunc.Load() != nil
}

// Printf reports one diagnostic message. The convention is to prefix the
// format with the component in square brackets, e.g. "[file] write: %v".
func Printf(format string, args ...any) {
	w := outputWriter.Load()
	fn := outputFunc.Load()
	if w == nil && fn == nil {
		return
	}
	line := time.Now().UTC().Format(time.RFC3339) + " " + fmt.Sprintf(format, args...)
	if w != nil {
		fmt.Fprintln(*w, line)
		return
	}
	(*fn)(line)
}

type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

// Sync wraps w so concurrent Printf calls do not interleave.
func Sync(w io.Writer) io.Writer {
	return &syncWriter{w: w}
}
