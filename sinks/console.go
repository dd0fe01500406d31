package sinks

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"

	"github.com/plumelog/plume/core"
)

// ConsoleSink writes pattern-rendered lines to a terminal stream. When the
// stream is a TTY, lines are colorized by severity; colors are stripped on
// Windows consoles without VT support by go-colorable.
type ConsoleSink struct {
	id       string
	mu       sync.Mutex
	out      io.Writer
	useColor bool
}

// ANSI sequences per level. Trace and debug are dimmed, warnings yellow,
// errors red, critical bold red, matching the usual terminal conventions.
var levelColors = map[core.Level]string{
	core.TraceLevel:    "\x1b[2m",
	core.DebugLevel:    "\x1b[36m",
	core.WarningLevel:  "\x1b[33m",
	core.ErrorLevel:    "\x1b[31m",
	core.CriticalLevel: "\x1b[1;31m",
}

const colorReset = "\x1b[0m"

// NewConsoleSink creates a console sink on stdout.
func NewConsoleSink(id string) *ConsoleSink {
	return &ConsoleSink{
		id:       id,
		out:      colorable.NewColorableStdout(),
		useColor: isTerminal(os.Stdout),
	}
}

// NewConsoleSinkStderr creates a console sink on stderr.
func NewConsoleSinkStderr(id string) *ConsoleSink {
	return &ConsoleSink{
		id:       id,
		out:      colorable.NewColorableStderr(),
		useColor: isTerminal(os.Stderr),
	}
}

// NewConsoleSinkWithWriter creates a console sink on an arbitrary writer
// with colors disabled. Useful for tests.
func NewConsoleSinkWithWriter(id string, w io.Writer) *ConsoleSink {
	return &ConsoleSink{id: id, out: w}
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// ID returns the registry id.
func (cs *ConsoleSink) ID() string { return cs.id }

// Encoding returns core.EncodingText; the console consumes pattern output.
func (cs *ConsoleSink) Encoding() core.Encoding { return core.EncodingText }

// SetUseColor overrides TTY detection.
func (cs *ConsoleSink) SetUseColor(use bool) {
	cs.mu.Lock()
	cs.useColor = use
	cs.mu.Unlock()
}

// Write outputs one rendered line without color.
func (cs *ConsoleSink) Write(p []byte) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	if _, err := cs.out.Write(p); err != nil {
		return fmt.Errorf("console sink %q: %w", cs.id, err)
	}
	return nil
}

// WriteLevel outputs one rendered line, colorized by level on a TTY.
func (cs *ConsoleSink) WriteLevel(level core.Level, p []byte) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	color := ""
	if cs.useColor {
		color = levelColors[level]
	}
	if color == "" {
		if _, err := cs.out.Write(p); err != nil {
			return fmt.Errorf("console sink %q: %w", cs.id, err)
		}
		return nil
	}
	// Color the line, keeping the newline outside the reset.
	line := p
	nl := false
	if n := len(line); n > 0 && line[n-1] == '\n' {
		line = line[:n-1]
		nl = true
	}
	buf := make([]byte, 0, len(p)+len(color)+len(colorReset)+1)
	buf = append(buf, color...)
	buf = append(buf, line...)
	buf = append(buf, colorReset...)
	if nl {
		buf = append(buf, '\n')
	}
	if _, err := cs.out.Write(buf); err != nil {
		return fmt.Errorf("console sink %q: %w", cs.id, err)
	}
	return nil
}

// Flush is a no-op; console writes are unbuffered.
func (cs *ConsoleSink) Flush() error { return nil }

// Close is a no-op; the sink does not own the underlying stream.
func (cs *ConsoleSink) Close() error { return nil }
