package sinks

import (
	"bytes"
	"strings"
	"testing"

	"github.com/plumelog/plume/core"
)

func TestConsoleSinkPlainWrite(t *testing.T) {
	var buf bytes.Buffer
	cs := NewConsoleSinkWithWriter("console", &buf)
	if err := cs.Write([]byte("hello\n")); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "hello\n" {
		t.Errorf("output = %q", buf.String())
	}
}

func TestConsoleSinkWriteLevelWithoutColor(t *testing.T) {
	var buf bytes.Buffer
	cs := NewConsoleSinkWithWriter("console", &buf)
	if err := cs.WriteLevel(core.ErrorLevel, []byte("boom\n")); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "boom\n" {
		t.Errorf("output = %q", buf.String())
	}
}

func TestConsoleSinkWriteLevelColor(t *testing.T) {
	var buf bytes.Buffer
	cs := NewConsoleSinkWithWriter("console", &buf)
	cs.SetUseColor(true)

	if err := cs.WriteLevel(core.ErrorLevel, []byte("boom\n")); err != nil {
		t.Fatal(err)
	}
	got := buf.String()
	if !strings.HasPrefix(got, "\x1b[31m") {
		t.Errorf("missing color prefix: %q", got)
	}
	if !strings.HasSuffix(got, "\x1b[0m\n") {
		t.Errorf("newline must follow the reset: %q", got)
	}
	if !strings.Contains(got, "boom") {
		t.Errorf("line body lost: %q", got)
	}
}

func TestConsoleSinkInfoUncolored(t *testing.T) {
	// Info has no color entry; the line passes through untouched even
	// when colors are enabled.
	var buf bytes.Buffer
	cs := NewConsoleSinkWithWriter("console", &buf)
	cs.SetUseColor(true)

	if err := cs.WriteLevel(core.InfoLevel, []byte("fine\n")); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "fine\n" {
		t.Errorf("output = %q", buf.String())
	}
}

func TestConsoleSinkEncoding(t *testing.T) {
	cs := NewConsoleSinkWithWriter("console", &bytes.Buffer{})
	if cs.Encoding() != core.EncodingText {
		t.Errorf("encoding = %v", cs.Encoding())
	}
	if err := cs.Flush(); err != nil {
		t.Errorf("Flush: %v", err)
	}
	if err := cs.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}
