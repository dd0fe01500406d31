package formatters

import (
	"strconv"
	"time"
)

// Timezone selects how timestamps are converted for rendering. It affects
// presentation only, never the captured instant.
type Timezone int

const (
	// LocalTime renders timestamps in the process's local timezone.
	LocalTime Timezone = iota

	// GmtTime renders timestamps in UTC.
	GmtTime
)

// String returns the configuration name of the timezone selector.
func (tz Timezone) String() string {
	if tz == GmtTime {
		return "GmtTime"
	}
	return "LocalTime"
}

// DefaultTimeFormat is used when a pattern or JSON formatter is created
// with an empty time format.
const DefaultTimeFormat = "%H:%M:%S.%Qms"

// timeFormatter renders a timestamp according to a strftime-style format
// string. The format is compiled once into a token list; rendering appends
// straight into the destination buffer.
//
// Supported directives: %Y %y %m %d %j %b %B %a %A %H %I %M %S %p %z %%
// plus the sub-second precision directives %Qms, %Qus and %Qns.
type timeFormatter struct {
	tokens []timeToken
	tz     Timezone
}

type timeToken struct {
	literal string
	render  func(dst []byte, t time.Time) []byte
}

func newTimeFormatter(format string, tz Timezone) *timeFormatter {
	if format == "" {
		format = DefaultTimeFormat
	}
	f := &timeFormatter{tz: tz}
	lit := ""
	i := 0
	for i < len(format) {
		if format[i] != '%' || i+1 >= len(format) {
			lit += string(format[i])
			i++
			continue
		}
		var render func(dst []byte, t time.Time) []byte
		size := 2
		switch format[i+1] {
		case '%':
			lit += "%"
			i += 2
			continue
		case 'Y':
			render = func(dst []byte, t time.Time) []byte { return pad(dst, t.Year(), 4) }
		case 'y':
			render = func(dst []byte, t time.Time) []byte { return pad(dst, t.Year()%100, 2) }
		case 'm':
			render = func(dst []byte, t time.Time) []byte { return pad(dst, int(t.Month()), 2) }
		case 'd':
			render = func(dst []byte, t time.Time) []byte { return pad(dst, t.Day(), 2) }
		case 'j':
			render = func(dst []byte, t time.Time) []byte { return pad(dst, t.YearDay(), 3) }
		case 'b':
			render = func(dst []byte, t time.Time) []byte { return t.AppendFormat(dst, "Jan") }
		case 'B':
			render = func(dst []byte, t time.Time) []byte { return t.AppendFormat(dst, "January") }
		case 'a':
			render = func(dst []byte, t time.Time) []byte { return t.AppendFormat(dst, "Mon") }
		case 'A':
			render = func(dst []byte, t time.Time) []byte { return t.AppendFormat(dst, "Monday") }
		case 'H':
			render = func(dst []byte, t time.Time) []byte { return pad(dst, t.Hour(), 2) }
		case 'I':
			render = func(dst []byte, t time.Time) []byte { return t.AppendFormat(dst, "03") }
		case 'M':
			render = func(dst []byte, t time.Time) []byte { return pad(dst, t.Minute(), 2) }
		case 'S':
			render = func(dst []byte, t time.Time) []byte { return pad(dst, t.Second(), 2) }
		case 'p':
			render = func(dst []byte, t time.Time) []byte { return t.AppendFormat(dst, "PM") }
		case 'z':
			render = func(dst []byte, t time.Time) []byte { return t.AppendFormat(dst, "-0700") }
		case 'Q':
			// %Qms, %Qus, %Qns: fractional part of the second at the
			// requested precision.
			switch {
			case i+3 < len(format) && format[i+2] == 'm' && format[i+3] == 's':
				render = func(dst []byte, t time.Time) []byte { return pad(dst, t.Nanosecond()/1e6, 3) }
			case i+3 < len(format) && format[i+2] == 'u' && format[i+3] == 's':
				render = func(dst []byte, t time.Time) []byte { return pad(dst, t.Nanosecond()/1e3, 6) }
			case i+3 < len(format) && format[i+2] == 'n' && format[i+3] == 's':
				render = func(dst []byte, t time.Time) []byte { return pad(dst, t.Nanosecond(), 9) }
			}
			if render != nil {
				size = 4
			}
		}
		if render == nil {
			// Unrecognized directive passes through verbatim.
			lit += format[i : i+2]
			i += 2
			continue
		}
		if lit != "" {
			f.tokens = append(f.tokens, timeToken{literal: lit})
			lit = ""
		}
		f.tokens = append(f.tokens, timeToken{render: render})
		i += size
	}
	if lit != "" {
		f.tokens = append(f.tokens, timeToken{literal: lit})
	}
	return f
}

// Append renders t into dst after applying the timezone selector.
func (f *timeFormatter) Append(dst []byte, t time.Time) []byte {
	if f.tz == GmtTime {
		t = t.UTC()
	} else {
		t = t.Local()
	}
	for _, tok := range f.tokens {
		if tok.render == nil {
			dst = append(dst, tok.literal...)
		} else {
			dst = tok.render(dst, t)
		}
	}
	return dst
}

// pad appends n zero-padded to the given width.
func pad(dst []byte, n, width int) []byte {
	s := strconv.Itoa(n)
	for w := width - len(s); w > 0; w-- {
		dst = append(dst, '0')
	}
	return append(dst, s...)
}
