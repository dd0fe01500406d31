package formatters

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/plumelog/plume/core"
)

// DefaultPattern is the rendering pattern applied when PatternOptions is
// created with an empty pattern but pattern output is still wanted.
const DefaultPattern = "%(time) [%(thread_id)] %(short_source_location:<28) " +
	"LOG_%(log_level:<9) %(logger:<20) %(message)"

// PatternOptions configures text rendering for a logger: the line pattern,
// the timestamp sub-format and the timezone selector.
//
// An empty Pattern makes the pattern encoder a no-op, which is the right
// choice for loggers that feed JSON-only sinks: no text render work is done
// for them at all.
type PatternOptions struct {
	// Pattern is the line template. Recognized tokens, written
	// %(name) or %(name:<width) / %(name:>width) for alignment:
	//
	//	time, thread_id, source_location, short_source_location,
	//	caller_function, log_level, logger, message, named_args
	//
	// Everything else is literal text.
	Pattern string

	// TimeFormat is the strftime-style timestamp sub-format used by the
	// time token. Empty means DefaultTimeFormat.
	TimeFormat string

	// Timezone selects UTC or local time for rendering.
	Timezone Timezone
}

// Equal reports whether two option sets describe the same rendering.
func (o PatternOptions) Equal(other PatternOptions) bool {
	return o == other
}

type patternField int

const (
	fieldTime patternField = iota
	fieldThreadID
	fieldSourceLocation
	fieldShortSourceLocation
	fieldCallerFunction
	fieldLogLevel
	fieldLogger
	fieldMessage
	fieldNamedArgs
)

var patternFields = map[string]patternField{
	"time":                  fieldTime,
	"thread_id":             fieldThreadID,
	"source_location":       fieldSourceLocation,
	"short_source_location": fieldShortSourceLocation,
	"caller_function":       fieldCallerFunction,
	"log_level":             fieldLogLevel,
	"logger":                fieldLogger,
	"message":               fieldMessage,
	"named_args":            fieldNamedArgs,
}

type patternToken struct {
	literal string
	field   patternField
	// width > 0 pads to width; leftAlign pads on the right.
	width     int
	leftAlign bool
}

// PatternFormatter renders events as text lines according to a compiled
// pattern. It is pure: the same event and options always produce the same
// bytes, up to the timezone conversion of the timestamp.
type PatternFormatter struct {
	opts        PatternOptions
	tokens      []patternToken
	timeFmt     *timeFormatter
	needsSource bool
	needsThread bool
}

// NewPatternFormatter compiles opts into a formatter. A nil formatter with
// a nil error is returned for an empty pattern; callers treat nil as the
// no-op encoder.
func NewPatternFormatter(opts PatternOptions) (*PatternFormatter, error) {
	if opts.Pattern == "" {
		return nil, nil
	}
	f := &PatternFormatter{
		opts:    opts,
		timeFmt: newTimeFormatter(opts.TimeFormat, opts.Timezone),
	}
	raw := opts.Pattern
	lit := ""
	i := 0
	for i < len(raw) {
		if raw[i] != '%' || i+1 >= len(raw) || raw[i+1] != '(' {
			lit += string(raw[i])
			i++
			continue
		}
		end := strings.IndexByte(raw[i+2:], ')')
		if end < 0 {
			return nil, fmt.Errorf("pattern %q: unterminated %%( at index %d", raw, i)
		}
		spec := raw[i+2 : i+2+end]
		tok, err := parsePatternToken(spec)
		if err != nil {
			return nil, fmt.Errorf("pattern %q: %w", raw, err)
		}
		if lit != "" {
			f.tokens = append(f.tokens, patternToken{literal: lit})
			lit = ""
		}
		f.tokens = append(f.tokens, tok)
		switch tok.field {
		case fieldSourceLocation, fieldShortSourceLocation, fieldCallerFunction:
			f.needsSource = true
		case fieldThreadID:
			f.needsThread = true
		}
		i += end + 3
	}
	if lit != "" {
		f.tokens = append(f.tokens, patternToken{literal: lit})
	}
	return f, nil
}

func parsePatternToken(spec string) (patternToken, error) {
	name := spec
	var tok patternToken
	if idx := strings.IndexByte(spec, ':'); idx >= 0 {
		name = spec[:idx]
		align := spec[idx+1:]
		if len(align) < 2 || (align[0] != '<' && align[0] != '>') {
			return tok, fmt.Errorf("invalid alignment %q for token %q", align, name)
		}
		width, err := strconv.Atoi(align[1:])
		if err != nil || width <= 0 {
			return tok, fmt.Errorf("invalid alignment width %q for token %q", align[1:], name)
		}
		tok.width = width
		tok.leftAlign = align[0] == '<'
	}
	field, ok := patternFields[name]
	if !ok {
		return tok, fmt.Errorf("unknown pattern token %q", name)
	}
	tok.field = field
	return tok, nil
}

// Options returns the options the formatter was compiled from.
func (f *PatternFormatter) Options() PatternOptions { return f.opts }

// NeedsSource reports whether the pattern renders source information, so
// the caller side knows to capture it.
func (f *PatternFormatter) NeedsSource() bool { return f != nil && f.needsSource }

// NeedsThreadID reports whether the pattern renders the goroutine id.
func (f *PatternFormatter) NeedsThreadID() bool { return f != nil && f.needsThread }

// Append renders the event as one line, including the trailing newline,
// and appends it to dst. msg is the already substituted message body; the
// backend computes it once and shares it between encoders.
func (f *PatternFormatter) Append(dst []byte, ev *core.LogEvent, msg []byte) []byte {
	if f == nil {
		return dst
	}
	for _, tok := range f.tokens {
		if tok.literal != "" {
			dst = append(dst, tok.literal...)
			continue
		}
		start := len(dst)
		switch tok.field {
		case fieldTime:
			dst = f.timeFmt.Append(dst, ev.Timestamp)
		case fieldThreadID:
			dst = strconv.AppendUint(dst, ev.GoroutineID, 10)
		case fieldSourceLocation:
			dst = appendSourceLocation(dst, ev.File, ev.Line)
		case fieldShortSourceLocation:
			dst = appendSourceLocation(dst, shortFile(ev.File), ev.Line)
		case fieldCallerFunction:
			dst = append(dst, ev.Function...)
		case fieldLogLevel:
			dst = append(dst, ev.Level.String()...)
		case fieldLogger:
			dst = append(dst, ev.LoggerName...)
		case fieldMessage:
			dst = append(dst, msg...)
		case fieldNamedArgs:
			dst = AppendNamedArgs(dst, ev)
		}
		if tok.width > 0 {
			dst = align(dst, start, tok.width, tok.leftAlign)
		}
	}
	return append(dst, '\n')
}

// AppendNamedArgs renders the named-argument block: name=value pairs in
// declaration order, comma separated. Positional slots do not appear.
func AppendNamedArgs(dst []byte, ev *core.LogEvent) []byte {
	first := true
	for _, a := range ev.Args {
		if a.Name == "" {
			continue
		}
		if !first {
			dst = append(dst, ", "...)
		}
		first = false
		dst = append(dst, a.Name...)
		dst = append(dst, '=')
		dst = a.Value.Append(dst)
	}
	return dst
}

func appendSourceLocation(dst []byte, file string, line int) []byte {
	if file == "" {
		return dst
	}
	dst = append(dst, file...)
	dst = append(dst, ':')
	return strconv.AppendInt(dst, int64(line), 10)
}

func shortFile(file string) string {
	if idx := strings.LastIndexByte(file, '/'); idx >= 0 {
		return file[idx+1:]
	}
	return file
}

// align pads dst[start:] with spaces up to width. Content longer than the
// width is left as-is.
func align(dst []byte, start, width int, left bool) []byte {
	n := len(dst) - start
	if n >= width {
		return dst
	}
	padN := width - n
	for i := 0; i < padN; i++ {
		dst = append(dst, ' ')
	}
	if !left {
		// Shift the rendered content right and fill the front.
		copy(dst[start+padN:], dst[start:start+n])
		for i := 0; i < padN; i++ {
			dst[start+i] = ' '
		}
	}
	return dst
}
