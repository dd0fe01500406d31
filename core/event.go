package core

import "time"

// Arg is one argument slot of a log call. Name is the placeholder name
// the slot was bound to, or empty for a purely positional placeholder.
type Arg struct {
	Name  string
	Value Value
}

// LogEvent is the immutable record of one log call. It is constructed on
// the calling goroutine, which captures the timestamp and any source
// information at the call point, and is owned by the transport queue slot
// it occupies until the backend drains it for rendering.
type LogEvent struct {
	// Timestamp is when the call happened. time.Time keeps the monotonic
	// reading alongside the wall clock, so later rendering reports the
	// instant the event logically occurred.
	Timestamp time.Time

	// Level is the severity of the event.
	Level Level

	// LoggerName identifies the logger the event was emitted through.
	LoggerName string

	// Template is the original message template with placeholders.
	Template string

	// Args are the argument slots in placeholder declaration order.
	Args []Arg

	// File and Line locate the log call, when the bound pattern asks
	// for source information. File is empty otherwise.
	File     string
	Line     int
	Function string

	// GoroutineID is the id of the emitting goroutine, captured only
	// when the bound pattern renders it. Zero otherwise.
	GoroutineID uint64
}

// NamedArgs returns the slots that carry a placeholder name, in
// declaration order. Positional slots are skipped.
func (e *LogEvent) NamedArgs() []Arg {
	named := make([]Arg, 0, len(e.Args))
	for _, a := range e.Args {
		if a.Name != "" {
			named = append(named, a)
		}
	}
	return named
}

// HasNamedArgs reports whether any slot carries a placeholder name.
func (e *LogEvent) HasNamedArgs() bool {
	for _, a := range e.Args {
		if a.Name != "" {
			return true
		}
	}
	return false
}
