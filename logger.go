package plume

import (
	"runtime"
	"sync/atomic"
	"time"

	"github.com/plumelog/plume/core"
	"github.com/plumelog/plume/formatters"
	"github.com/plumelog/plume/internal/templates"
	"github.com/plumelog/plume/selflog"
)

// Logger is a named, immutable binding of one or more sinks and one
// rendering configuration. Log calls validate the template against the
// arguments, capture the timestamp and enqueue; all rendering and I/O
// happens later on the backend goroutine.
//
// Loggers are created through Backend.CreateOrGetLogger and are safe for
// concurrent use.
type Logger struct {
	name    string
	backend *Backend
	sinks   []core.Sink
	pattern *formatters.PatternFormatter
	opts    formatters.PatternOptions

	hasText bool
	hasJSON bool
	// Source and goroutine id capture cost runtime calls on the hot
	// path, so they are taken only when the pattern renders them.
	needsSource bool
	needsThread bool

	rejected atomic.Uint64
}

// Name returns the logger's registry name.
func (l *Logger) Name() string { return l.name }

// Sinks returns the bound sinks.
func (l *Logger) Sinks() []core.Sink { return l.sinks }

// PatternOptions returns the rendering configuration.
func (l *Logger) PatternOptions() formatters.PatternOptions { return l.opts }

// Rejected returns the number of log calls rejected before enqueue
// because the template and arguments disagreed.
func (l *Logger) Rejected() uint64 { return l.rejected.Load() }

// Log validates template against args, constructs the event and hands it
// to the transport queue. The template uses {name} or {} placeholders;
// the placeholder count must equal len(args) and named placeholders must
// be unique. Invalid calls are rejected here, before enqueue, counted and
// reported through selflog.
func (l *Logger) Log(level core.Level, template string, args ...any) {
	l.log(level, template, args)
}

// Trace logs at TraceLevel.
func (l *Logger) Trace(template string, args ...any) {
	l.log(core.TraceLevel, template, args)
}

// Debug logs at DebugLevel.
func (l *Logger) Debug(template string, args ...any) {
	l.log(core.DebugLevel, template, args)
}

// Info logs at InfoLevel.
func (l *Logger) Info(template string, args ...any) {
	l.log(core.InfoLevel, template, args)
}

// Warning logs at WarningLevel.
func (l *Logger) Warning(template string, args ...any) {
	l.log(core.WarningLevel, template, args)
}

// Error logs at ErrorLevel.
func (l *Logger) Error(template string, args ...any) {
	l.log(core.ErrorLevel, template, args)
}

// Critical logs at CriticalLevel.
func (l *Logger) Critical(template string, args ...any) {
	l.log(core.CriticalLevel, template, args)
}

func (l *Logger) log(level core.Level, template string, args []any) {
	tmpl, err := templates.ParseCached(template)
	if err != nil {
		l.reject(err)
		return
	}
	bound, err := tmpl.Bind(args...)
	if err != nil {
		l.reject(err)
		return
	}
	ev := &core.LogEvent{
		Timestamp:  time.Now(),
		Level:      level,
		LoggerName: l.name,
		Template:   template,
		Args:       bound,
	}
	if l.needsSource {
		// Two frames up: log and its exported wrapper.
		if pc, file, line, ok := runtime.Caller(2); ok {
			ev.File = file
			ev.Line = line
			if fn := runtime.FuncForPC(pc); fn != nil {
				ev.Function = fn.Name()
			}
		}
	}
	if l.needsThread {
		ev.GoroutineID = goroutineID()
	}
	l.backend.enqueue(envelope{ev: ev, logger: l, tmpl: tmpl})
}

func (l *Logger) reject(err error) {
	l.rejected.Add(1)
	if selflog.IsEnabled() {
		selflog.Printf("[logger] %s: rejected: %v", l.name, err)
	}
}

// goroutineID parses the current goroutine's id out of the runtime stack
// header, the only way the runtime exposes it.
func goroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	// "goroutine 123 [...": take the digits after the first space.
	var id uint64
	started := false
	for _, c := range buf[:n] {
		if c >= '0' && c <= '9' {
			started = true
			id = id*10 + uint64(c-'0')
			continue
		}
		if started {
			break
		}
	}
	return id
}
