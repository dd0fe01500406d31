package core

import (
	"errors"
	"testing"
	"time"
)

func TestValueOfKinds(t *testing.T) {
	tests := []struct {
		name string
		in   any
		kind Kind
	}{
		{"nil", nil, KindNull},
		{"bool", true, KindBool},
		{"int", 42, KindInt64},
		{"int64", int64(-7), KindInt64},
		{"uint", uint(7), KindUint64},
		{"uint64", uint64(7), KindUint64},
		{"float32", float32(1.5), KindFloat64},
		{"float64", 2.25, KindFloat64},
		{"string", "hello", KindString},
		{"bytes", []byte("raw"), KindBytes},
		{"time", time.Now(), KindTime},
		{"duration", time.Second, KindDuration},
		{"error", errors.New("boom"), KindString},
		{"any slice", []any{1, "two"}, KindList},
		{"string slice", []string{"a", "b"}, KindList},
		{"int slice", []int{1, 2}, KindList},
		{"float slice", []float64{0.5}, KindList},
		{"fallback struct", struct{ X int }{1}, KindString},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValueOf(tt.in).Kind(); got != tt.kind {
				t.Errorf("ValueOf(%v).Kind() = %v, want %v", tt.in, got, tt.kind)
			}
		})
	}
}

func TestValueText(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{42, "42"},
		{int64(-7), "-7"},
		{uint64(9), "9"},
		{0, "0"},
		{3.5, "3.5"},
		{float64(10), "10"},
		{true, "true"},
		{"text", "text"},
		{nil, "nil"},
		{[]byte("bytes"), "bytes"},
		{time.Duration(1500 * time.Millisecond), "1.5s"},
		{[]any{1, "two", 3.5}, "[1, two, 3.5]"},
		{errors.New("broken pipe"), "broken pipe"},
	}
	for _, tt := range tests {
		if got := ValueOf(tt.in).Text(); got != tt.want {
			t.Errorf("ValueOf(%v).Text() = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestValueTextIntegersHaveNoDecimalPoint(t *testing.T) {
	for _, v := range []any{0, 10, int64(1 << 40), uint64(5)} {
		got := ValueOf(v).Text()
		for _, c := range got {
			if c == '.' {
				t.Errorf("integer %v rendered with decimal point: %q", v, got)
			}
		}
	}
}

func TestValueInterfaceRoundTrip(t *testing.T) {
	if got := ValueOf(int32(5)).Interface(); got != int64(5) {
		t.Errorf("Interface() = %v (%T), want int64(5)", got, got)
	}
	if got := ValueOf("s").Interface(); got != "s" {
		t.Errorf("Interface() = %v, want \"s\"", got)
	}
	if got := ValueOf(1.5).Interface(); got != 1.5 {
		t.Errorf("Interface() = %v, want 1.5", got)
	}
	list := ValueOf([]any{1, "a"}).Interface().([]any)
	if len(list) != 2 || list[0] != int64(1) || list[1] != "a" {
		t.Errorf("Interface() list = %v", list)
	}
}

func TestEventNamedArgs(t *testing.T) {
	ev := &LogEvent{
		Args: []Arg{
			{Name: "method", Value: StringValue("POST")},
			{Name: "", Value: Int64Value(1)},
			{Name: "elapsed", Value: Int64Value(10)},
		},
	}
	if !ev.HasNamedArgs() {
		t.Fatal("HasNamedArgs() = false")
	}
	named := ev.NamedArgs()
	if len(named) != 2 || named[0].Name != "method" || named[1].Name != "elapsed" {
		t.Errorf("NamedArgs() = %v", named)
	}

	pos := &LogEvent{Args: []Arg{{Value: Int64Value(1)}}}
	if pos.HasNamedArgs() {
		t.Error("HasNamedArgs() = true for positional-only event")
	}
}
