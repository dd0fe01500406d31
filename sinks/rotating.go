package sinks

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/klauspost/compress/gzip"

	"github.com/plumelog/plume/core"
	"github.com/plumelog/plume/selflog"
)

// RotationInterval defines time-based rotation.
type RotationInterval int

const (
	// RotateNever disables time-based rotation.
	RotateNever RotationInterval = iota
	// RotateHourly rotates at the top of each hour.
	RotateHourly
	// RotateDaily rotates at midnight.
	RotateDaily
)

// RotatingConfig configures a rotating file sink.
type RotatingConfig struct {
	FileConfig

	// MaxFileSize rotates once the current file reaches this many bytes.
	// Zero disables size-based rotation.
	MaxFileSize int64

	// Interval enables time-based rotation.
	Interval RotationInterval

	// MaxBackups is the number of rotated files to retain. Zero keeps all.
	MaxBackups int

	// Compress gzips rotated files.
	Compress bool
}

// RotatingFileSink is a file sink that rotates its target by size and/or
// time. Rotated files are renamed to base_YYYYMMDD_HHMMSS[.N].ext and
// optionally gzipped; files beyond MaxBackups are pruned, oldest first.
type RotatingFileSink struct {
	id   string
	cfg  RotatingConfig
	path string

	mu     sync.Mutex
	file   *os.File
	w      *countingWriter
	closed bool
	rollAt time.Time
}

type countingWriter struct {
	w *os.File
	n int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}

// NewRotatingFileSink creates the sink and opens its target. The rotation
// file naming replaces FilenameAppend suffixing, so cfg.FilenameAppend is
// ignored here.
func NewRotatingFileSink(id, path string, cfg RotatingConfig) (*RotatingFileSink, error) {
	rs := &RotatingFileSink{id: id, cfg: cfg, path: path}
	rs.cfg.FilenameAppend = AppendNone
	if err := rs.open(); err != nil {
		return nil, err
	}
	rs.updateRollTime(time.Now())
	return rs, nil
}

// ID returns the registry id.
func (rs *RotatingFileSink) ID() string { return rs.id }

// Encoding returns the rendered form the sink consumes.
func (rs *RotatingFileSink) Encoding() core.Encoding { return rs.cfg.Encoding }

// Write outputs one rendered line, rotating first when due.
func (rs *RotatingFileSink) Write(p []byte) error {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	if rs.closed {
		return fmt.Errorf("rotating sink %q: closed", rs.id)
	}
	if rs.shouldRotate(int64(len(p))) {
		if err := rs.rotate(); err != nil {
			// A failed rotation must not lose the line; keep writing
			// to the oversized file and report.
			if selflog.IsEnabled() {
				selflog.Printf("[rotating] %s: rotate: %v", rs.id, err)
			}
		}
	}
	if _, err := rs.w.Write(p); err != nil {
		return fmt.Errorf("rotating sink %q: %w", rs.id, err)
	}
	return nil
}

// Flush syncs the current file.
func (rs *RotatingFileSink) Flush() error {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	if rs.closed {
		return nil
	}
	return rs.file.Sync()
}

// Close closes the current file. Idempotent.
func (rs *RotatingFileSink) Close() error {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	if rs.closed {
		return nil
	}
	rs.closed = true
	if err := rs.file.Close(); err != nil {
		return fmt.Errorf("rotating sink %q: close: %w", rs.id, err)
	}
	if rs.cfg.Notifier.OnClose != nil {
		rs.cfg.Notifier.OnClose(rs.path)
	}
	return nil
}

func (rs *RotatingFileSink) shouldRotate(incoming int64) bool {
	if rs.cfg.MaxFileSize > 0 && rs.w.n+incoming > rs.cfg.MaxFileSize && rs.w.n > 0 {
		return true
	}
	if rs.cfg.Interval != RotateNever && !rs.rollAt.IsZero() && !time.Now().Before(rs.rollAt) {
		return true
	}
	return false
}

func (rs *RotatingFileSink) rotate() error {
	if err := rs.file.Close(); err != nil {
		return err
	}
	rotated := rs.rotatedName(time.Now())
	if err := os.Rename(rs.path, rotated); err != nil {
		// Reopen regardless so logging continues.
		reopenErr := rs.open()
		if reopenErr != nil {
			return reopenErr
		}
		return err
	}
	if rs.cfg.Compress {
		if err := gzipFile(rotated); err != nil {
			if selflog.IsEnabled() {
				selflog.Printf("[rotating] %s: compress: %v", rs.id, err)
			}
		} else {
			rotated += ".gz"
		}
	}
	if err := rs.open(); err != nil {
		return err
	}
	if rs.cfg.Notifier.OnRotate != nil {
		rs.cfg.Notifier.OnRotate(rs.path, rotated)
	}
	rs.updateRollTime(time.Now())
	rs.prune()
	return nil
}

func (rs *RotatingFileSink) rotatedName(now time.Time) string {
	ext := filepath.Ext(rs.path)
	base := rs.path[:len(rs.path)-len(ext)]
	name := fmt.Sprintf("%s_%s%s", base, now.Format("20060102_150405"), ext)
	for n := 1; ; n++ {
		if _, err := os.Stat(name); os.IsNotExist(err) {
			if _, err := os.Stat(name + ".gz"); os.IsNotExist(err) {
				return name
			}
		}
		name = fmt.Sprintf("%s_%s.%d%s", base, now.Format("20060102_150405"), n, ext)
	}
}

func (rs *RotatingFileSink) open() error {
	if dir := filepath.Dir(rs.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("rotating sink %q: create directory: %w", rs.id, err)
		}
	}
	flags := os.O_CREATE | os.O_WRONLY
	if rs.cfg.OpenMode == Truncate && rs.file == nil {
		flags |= os.O_TRUNC
	} else {
		flags |= os.O_APPEND
	}
	f, err := os.OpenFile(rs.path, flags, 0o644)
	if err != nil {
		return fmt.Errorf("rotating sink %q: open: %w", rs.id, err)
	}
	size := int64(0)
	if st, err := f.Stat(); err == nil {
		size = st.Size()
	}
	rs.file = f
	rs.w = &countingWriter{w: f, n: size}
	if rs.cfg.Notifier.OnOpen != nil {
		rs.cfg.Notifier.OnOpen(rs.path)
	}
	return nil
}

func (rs *RotatingFileSink) updateRollTime(now time.Time) {
	switch rs.cfg.Interval {
	case RotateHourly:
		rs.rollAt = now.Truncate(time.Hour).Add(time.Hour)
	case RotateDaily:
		y, m, d := now.Date()
		rs.rollAt = time.Date(y, m, d, 0, 0, 0, 0, now.Location()).AddDate(0, 0, 1)
	default:
		rs.rollAt = time.Time{}
	}
}

// prune removes rotated files beyond MaxBackups, oldest first.
func (rs *RotatingFileSink) prune() {
	if rs.cfg.MaxBackups <= 0 {
		return
	}
	ext := filepath.Ext(rs.path)
	base := rs.path[:len(rs.path)-len(ext)]
	matches, err := filepath.Glob(base + "_*")
	if err != nil {
		return
	}
	var rotated []string
	for _, m := range matches {
		if m == rs.path {
			continue
		}
		if strings.HasSuffix(m, ext) || strings.HasSuffix(m, ext+".gz") {
			rotated = append(rotated, m)
		}
	}
	if len(rotated) <= rs.cfg.MaxBackups {
		return
	}
	sort.Strings(rotated) // timestamped names sort chronologically
	for _, victim := range rotated[:len(rotated)-rs.cfg.MaxBackups] {
		if err := os.Remove(victim); err != nil && selflog.IsEnabled() {
			selflog.Printf("[rotating] %s: prune %s: %v", rs.id, victim, err)
		}
	}
}

// gzipFile compresses path to path.gz and removes the original.
func gzipFile(path string) error {
	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()
	dst, err := os.Create(path + ".gz")
	if err != nil {
		return err
	}
	gz := gzip.NewWriter(dst)
	if _, err := io.Copy(gz, src); err != nil {
		dst.Close()
		os.Remove(path + ".gz")
		return err
	}
	if err := gz.Close(); err != nil {
		dst.Close()
		os.Remove(path + ".gz")
		return err
	}
	if err := dst.Close(); err != nil {
		return err
	}
	return os.Remove(path)
}
