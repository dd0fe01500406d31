package formatters

import (
	"fmt"

	"github.com/goccy/go-json"

	"github.com/plumelog/plume/core"
)

// JSONOptions configures the structured encoder.
type JSONOptions struct {
	// TimeFormat is the strftime-style format of the timestamp field.
	// Empty means DefaultJSONTimeFormat.
	TimeFormat string

	// Timezone selects UTC or local time for the timestamp field.
	Timezone Timezone
}

// DefaultJSONTimeFormat renders a full wall-clock instant with
// nanosecond precision.
const DefaultJSONTimeFormat = "%Y-%m-%dT%H:%M:%S.%Qns%z"

// JSONFormatter renders one self-contained JSON object per event,
// newline-delimited. The object always carries timestamp, level, logger
// and the substituted message; every named argument additionally becomes
// a top-level key with its typed value. Positional arguments contribute
// to the message only.
type JSONFormatter struct {
	timeFmt *timeFormatter
}

// NewJSONFormatter creates a formatter from opts.
func NewJSONFormatter(opts JSONOptions) *JSONFormatter {
	format := opts.TimeFormat
	if format == "" {
		format = DefaultJSONTimeFormat
	}
	return &JSONFormatter{timeFmt: newTimeFormatter(format, opts.Timezone)}
}

// Append renders the event as one JSON line, including the trailing
// newline, and appends it to dst. msg is the already substituted message
// body, shared with the pattern encoder.
func (f *JSONFormatter) Append(dst []byte, ev *core.LogEvent, msg []byte) ([]byte, error) {
	dst = append(dst, `{"timestamp":"`...)
	dst = f.timeFmt.Append(dst, ev.Timestamp)
	dst = append(dst, `","level":`...)
	dst = appendJSONString(dst, ev.Level.String())
	dst = append(dst, `,"logger":`...)
	dst = appendJSONString(dst, ev.LoggerName)
	dst = append(dst, `,"message":`...)
	dst = appendJSONString(dst, string(msg))
	for _, a := range ev.Args {
		if a.Name == "" {
			continue
		}
		dst = append(dst, ',')
		dst = appendJSONString(dst, a.Name)
		dst = append(dst, ':')
		encoded, err := json.Marshal(a.Value.Interface())
		if err != nil {
			return nil, fmt.Errorf("encode field %q: %w", a.Name, err)
		}
		dst = append(dst, encoded...)
	}
	dst = append(dst, '}', '\n')
	return dst, nil
}

func appendJSONString(dst []byte, s string) []byte {
	encoded, err := json.Marshal(s)
	if err != nil {
		// Marshaling a string cannot fail; keep the line well formed
		// regardless.
		return append(dst, `""`...)
	}
	return append(dst, encoded...)
}
