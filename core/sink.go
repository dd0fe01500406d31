package core

// Encoding identifies the wire form a sink consumes. The backend renders
// each event at most once per encoding required by the bound sinks.
type Encoding int

const (
	// EncodingText consumes pattern-rendered lines.
	EncodingText Encoding = iota

	// EncodingJSON consumes newline-delimited JSON objects.
	EncodingJSON
)

// String returns the configuration name of the encoding.
func (e Encoding) String() string {
	if e == EncodingJSON {
		return "json"
	}
	return "text"
}

// Sink is an output endpoint for rendered log bytes. Write receives one
// complete rendered line, including the trailing newline, and runs on the
// backend goroutine only; it must not block indefinitely.
type Sink interface {
	// ID returns the unique registry id of the sink.
	ID() string

	// Encoding reports which rendered form the sink consumes.
	Encoding() Encoding

	// Write outputs one rendered line.
	Write(p []byte) error

	// Flush forces buffered bytes to the underlying stream.
	Flush() error

	// Close releases the sink's resources. Close implies Flush.
	Close() error
}

// LevelWriter is an optional interface for sinks that want the event's
// severity alongside the rendered bytes, e.g. to colorize console output.
// When a sink implements it, the backend calls WriteLevel instead of Write.
type LevelWriter interface {
	WriteLevel(level Level, p []byte) error
}
