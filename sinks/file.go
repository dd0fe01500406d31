package sinks

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/plumelog/plume/core"
	"github.com/plumelog/plume/selflog"
)

// OpenMode selects how a file sink opens its target.
type OpenMode int

const (
	// Append opens the file for appending, creating it if missing.
	Append OpenMode = iota

	// Truncate opens the file truncated to zero length.
	Truncate
)

// String returns the configuration name of the mode.
func (m OpenMode) String() string {
	if m == Truncate {
		return "truncate"
	}
	return "append"
}

// FilenameAppend selects the date suffix added to the filename. The
// suffix is computed once, when the file is opened, never per write.
type FilenameAppend int

const (
	// AppendNone leaves the filename untouched.
	AppendNone FilenameAppend = iota

	// AppendDate inserts the open date: app.log -> app_20260831.log.
	AppendDate

	// AppendDateTime inserts date and time: app_20260831_154500.log.
	AppendDateTime
)

// String returns the configuration name of the policy.
func (a FilenameAppend) String() string {
	switch a {
	case AppendDate:
		return "date"
	case AppendDateTime:
		return "datetime"
	default:
		return "none"
	}
}

// FileEventNotifier carries optional callbacks for file lifecycle events.
// Callbacks run on whichever goroutine drives the event: Open on the
// creating goroutine, Rotate and Close on the backend.
type FileEventNotifier struct {
	OnOpen   func(path string)
	OnRotate func(oldPath, newPath string)
	OnClose  func(path string)
}

// FileConfig configures a file-backed sink.
type FileConfig struct {
	OpenMode       OpenMode
	FilenameAppend FilenameAppend
	Notifier       FileEventNotifier

	// Encoding selects which rendered form the sink receives.
	Encoding core.Encoding

	// BufferSize is the write buffer size in bytes. Defaults to 64KiB.
	BufferSize int
}

// FileSink writes rendered lines to a file through a buffered writer.
// All methods run on the backend goroutine, plus Flush/Close during
// shutdown; the mutex keeps direct use safe as well.
type FileSink struct {
	id   string
	cfg  FileConfig
	path string

	mu     sync.Mutex
	file   *os.File
	w      *bufio.Writer
	closed bool

	writeErrors atomic.Uint64
}

// NewFileSink creates a text-encoded file sink and opens its target.
func NewFileSink(id, path string, cfg FileConfig) (*FileSink, error) {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 64 * 1024
	}
	fs := &FileSink{
		id:   id,
		cfg:  cfg,
		path: appendSuffix(path, cfg.FilenameAppend, time.Now()),
	}
	if err := fs.open(); err != nil {
		return nil, err
	}
	return fs, nil
}

// NewJSONFileSink creates a file sink that consumes the JSON encoding.
func NewJSONFileSink(id, path string, cfg FileConfig) (*FileSink, error) {
	cfg.Encoding = core.EncodingJSON
	return NewFileSink(id, path, cfg)
}

// ID returns the registry id.
func (fs *FileSink) ID() string { return fs.id }

// Encoding returns the rendered form the sink consumes.
func (fs *FileSink) Encoding() core.Encoding { return fs.cfg.Encoding }

// Path returns the path actually opened, after suffixing.
func (fs *FileSink) Path() string { return fs.path }

// Write outputs one rendered line.
func (fs *FileSink) Write(p []byte) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.closed {
		return fmt.Errorf("file sink %q: closed", fs.id)
	}
	if _, err := fs.w.Write(p); err != nil {
		fs.writeErrors.Add(1)
		if selflog.IsEnabled() {
			selflog.Printf("[file] %s: write: %v", fs.id, err)
		}
		return fmt.Errorf("file sink %q: %w", fs.id, err)
	}
	return nil
}

// Flush pushes buffered bytes to the operating system.
func (fs *FileSink) Flush() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.closed {
		return nil
	}
	return fs.w.Flush()
}

// Close flushes, syncs and closes the file. It is idempotent.
func (fs *FileSink) Close() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.closeLocked()
}

func (fs *FileSink) closeLocked() error {
	if fs.closed {
		return nil
	}
	fs.closed = true
	if err := fs.w.Flush(); err != nil {
		return fmt.Errorf("file sink %q: flush: %w", fs.id, err)
	}
	if err := fs.file.Sync(); err != nil {
		return fmt.Errorf("file sink %q: sync: %w", fs.id, err)
	}
	if err := fs.file.Close(); err != nil {
		return fmt.Errorf("file sink %q: close: %w", fs.id, err)
	}
	if fs.cfg.Notifier.OnClose != nil {
		fs.cfg.Notifier.OnClose(fs.path)
	}
	return nil
}

// WriteErrors returns the number of failed writes since creation.
func (fs *FileSink) WriteErrors() uint64 { return fs.writeErrors.Load() }

func (fs *FileSink) open() error {
	if dir := filepath.Dir(fs.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("file sink %q: create directory: %w", fs.id, err)
		}
	}
	flags := os.O_CREATE | os.O_WRONLY
	if fs.cfg.OpenMode == Truncate {
		flags |= os.O_TRUNC
	} else {
		flags |= os.O_APPEND
	}
	f, err := os.OpenFile(fs.path, flags, 0o644)
	if err != nil {
		return fmt.Errorf("file sink %q: open: %w", fs.id, err)
	}
	fs.file = f
	fs.w = bufio.NewWriterSize(f, fs.cfg.BufferSize)
	fs.closed = false
	if fs.cfg.Notifier.OnOpen != nil {
		fs.cfg.Notifier.OnOpen(fs.path)
	}
	return nil
}

// appendSuffix inserts the date suffix before the extension.
func appendSuffix(path string, policy FilenameAppend, now time.Time) string {
	var stamp string
	switch policy {
	case AppendDate:
		stamp = now.Format("20060102")
	case AppendDateTime:
		stamp = now.Format("20060102_150405")
	default:
		return path
	}
	ext := filepath.Ext(path)
	return path[:len(path)-len(ext)] + "_" + stamp + ext
}
