package core

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// Kind identifies the variant stored in a Value.
type Kind uint8

const (
	// KindNull is the zero Value.
	KindNull Kind = iota
	// KindBool stores a boolean.
	KindBool
	// KindInt64 stores a signed integer.
	KindInt64
	// KindUint64 stores an unsigned integer.
	KindUint64
	// KindFloat64 stores a floating point number.
	KindFloat64
	// KindString stores a string.
	KindString
	// KindBytes stores a raw byte sequence.
	KindBytes
	// KindTime stores a time.Time.
	KindTime
	// KindDuration stores a time.Duration.
	KindDuration
	// KindList stores an ordered sequence of Values.
	KindList
)

// Value is a type-tagged argument value. The set of variants is closed:
// anything that is not one of the supported types is stringified at
// capture time, so rendering on the backend never needs reflection.
type Value struct {
	kind Kind
	num  uint64
	str  string
	raw  []byte
	t    time.Time
	list []Value
}

// BoolValue returns a Value holding b.
func BoolValue(b bool) Value {
	var n uint64
	if b {
		n = 1
	}
	return Value{kind: KindBool, num: n}
}

// Int64Value returns a Value holding i.
func Int64Value(i int64) Value { return Value{kind: KindInt64, num: uint64(i)} }

// Uint64Value returns a Value holding u.
func Uint64Value(u uint64) Value { return Value{kind: KindUint64, num: u} }

// Float64Value returns a Value holding f.
func Float64Value(f float64) Value {
	return Value{kind: KindFloat64, num: math.Float64bits(f)}
}

// StringValue returns a Value holding s.
func StringValue(s string) Value { return Value{kind: KindString, str: s} }

// BytesValue returns a Value holding p. The slice is not copied.
func BytesValue(p []byte) Value { return Value{kind: KindBytes, raw: p} }

// TimeValue returns a Value holding t.
func TimeValue(t time.Time) Value { return Value{kind: KindTime, t: t} }

// DurationValue returns a Value holding d.
func DurationValue(d time.Duration) Value {
	return Value{kind: KindDuration, num: uint64(d)}
}

// ListValue returns a Value holding the given elements.
func ListValue(elems ...Value) Value { return Value{kind: KindList, list: elems} }

// ValueOf converts an arbitrary argument into a Value. Unsupported types
// fall back to their fmt representation, captured eagerly on the caller's
// goroutine so rendering stays deferred and allocation-free.
func ValueOf(v any) Value {
	switch x := v.(type) {
	case nil:
		return Value{}
	case bool:
		return BoolValue(x)
	case int:
		return Int64Value(int64(x))
	case int8:
		return Int64Value(int64(x))
	case int16:
		return Int64Value(int64(x))
	case int32:
		return Int64Value(int64(x))
	case int64:
		return Int64Value(x)
	case uint:
		return Uint64Value(uint64(x))
	case uint8:
		return Uint64Value(uint64(x))
	case uint16:
		return Uint64Value(uint64(x))
	case uint32:
		return Uint64Value(uint64(x))
	case uint64:
		return Uint64Value(x)
	case uintptr:
		return Uint64Value(uint64(x))
	case float32:
		return Float64Value(float64(x))
	case float64:
		return Float64Value(x)
	case string:
		return StringValue(x)
	case []byte:
		return BytesValue(x)
	case time.Time:
		return TimeValue(x)
	case time.Duration:
		return DurationValue(x)
	case error:
		return StringValue(x.Error())
	case []any:
		elems := make([]Value, len(x))
		for i, e := range x {
			elems[i] = ValueOf(e)
		}
		return Value{kind: KindList, list: elems}
	case []string:
		elems := make([]Value, len(x))
		for i, s := range x {
			elems[i] = StringValue(s)
		}
		return Value{kind: KindList, list: elems}
	case []int:
		elems := make([]Value, len(x))
		for i, n := range x {
			elems[i] = Int64Value(int64(n))
		}
		return Value{kind: KindList, list: elems}
	case []float64:
		elems := make([]Value, len(x))
		for i, f := range x {
			elems[i] = Float64Value(f)
		}
		return Value{kind: KindList, list: elems}
	case fmt.Stringer:
		return StringValue(x.String())
	default:
		return StringValue(fmt.Sprintf("%v", v))
	}
}

// Kind returns the variant stored in v.
func (v Value) Kind() Kind { return v.kind }

// Bool returns the boolean held by v. It is valid only for KindBool.
func (v Value) Bool() bool { return v.num != 0 }

// Int64 returns the signed integer held by v.
func (v Value) Int64() int64 { return int64(v.num) }

// Uint64 returns the unsigned integer held by v.
func (v Value) Uint64() uint64 { return v.num }

// Float64 returns the float held by v.
func (v Value) Float64() float64 { return math.Float64frombits(v.num) }

// Str returns the string held by v.
func (v Value) Str() string { return v.str }

// Bytes returns the byte sequence held by v.
func (v Value) Bytes() []byte { return v.raw }

// Time returns the time held by v.
func (v Value) Time() time.Time { return v.t }

// Duration returns the duration held by v.
func (v Value) Duration() time.Duration { return time.Duration(v.num) }

// List returns the elements held by v.
func (v Value) List() []Value { return v.list }

// Interface returns the native Go value stored in v.
func (v Value) Interface() any {
	switch v.kind {
	case KindNull:
		return nil
	case KindBool:
		return v.Bool()
	case KindInt64:
		return v.Int64()
	case KindUint64:
		return v.Uint64()
	case KindFloat64:
		return v.Float64()
	case KindString:
		return v.str
	case KindBytes:
		return v.raw
	case KindTime:
		return v.t
	case KindDuration:
		return time.Duration(v.num)
	case KindList:
		elems := make([]any, len(v.list))
		for i, e := range v.list {
			elems[i] = e.Interface()
		}
		return elems
	default:
		return nil
	}
}

// Append renders v in its text form and appends it to dst.
// Integers never carry a decimal point; floats use the shortest
// representation that round-trips.
func (v Value) Append(dst []byte) []byte {
	switch v.kind {
	case KindNull:
		return append(dst, "nil"...)
	case KindBool:
		return strconv.AppendBool(dst, v.Bool())
	case KindInt64:
		return strconv.AppendInt(dst, v.Int64(), 10)
	case KindUint64:
		return strconv.AppendUint(dst, v.num, 10)
	case KindFloat64:
		return strconv.AppendFloat(dst, v.Float64(), 'g', -1, 64)
	case KindString:
		return append(dst, v.str...)
	case KindBytes:
		return append(dst, v.raw...)
	case KindTime:
		return v.t.AppendFormat(dst, time.RFC3339Nano)
	case KindDuration:
		return append(dst, time.Duration(v.num).String()...)
	case KindList:
		dst = append(dst, '[')
		for i, e := range v.list {
			if i > 0 {
				dst = append(dst, ", "...)
			}
			dst = e.Append(dst)
		}
		return append(dst, ']')
	default:
		return dst
	}
}

// Text returns the rendered text form of v.
func (v Value) Text() string { return string(v.Append(nil)) }
