package plume

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/plumelog/plume/core"
	"github.com/plumelog/plume/formatters"
	"github.com/plumelog/plume/sinks"
)

func TestCreateOrGetSinkReturnsSharedInstance(t *testing.T) {
	b := Start(BackendOptions{})
	defer b.Stop()

	path := filepath.Join(t.TempDir(), "app.log")
	cfg := SinkConfig{Kind: File, Path: path}
	first, err := b.CreateOrGetSink("file", cfg)
	if err != nil {
		t.Fatal(err)
	}
	second, err := b.CreateOrGetSink("file", cfg)
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Error("equivalent re-creation returned a different instance")
	}
}

func TestCreateOrGetSinkConfigMismatch(t *testing.T) {
	b := Start(BackendOptions{})
	defer b.Stop()

	dir := t.TempDir()
	if _, err := b.CreateOrGetSink("file", SinkConfig{Kind: File, Path: filepath.Join(dir, "a.log")}); err != nil {
		t.Fatal(err)
	}

	_, err := b.CreateOrGetSink("file", SinkConfig{Kind: File, Path: filepath.Join(dir, "b.log")})
	if !errors.Is(err, ErrConfigMismatch) {
		t.Errorf("different path: %v", err)
	}
	_, err = b.CreateOrGetSink("file", SinkConfig{Kind: JSONFile, Path: filepath.Join(dir, "a.log")})
	if !errors.Is(err, ErrConfigMismatch) {
		t.Errorf("different kind: %v", err)
	}
	_, err = b.CreateOrGetSink("file", SinkConfig{Kind: File, Path: filepath.Join(dir, "a.log"), OpenMode: sinks.Truncate})
	if !errors.Is(err, ErrConfigMismatch) {
		t.Errorf("different open mode: %v", err)
	}
}

func TestCreateOrGetSinkRequiresPath(t *testing.T) {
	b := Start(BackendOptions{})
	defer b.Stop()

	for _, kind := range []SinkKind{File, JSONFile, RotatingFile, RotatingJSONFile} {
		if _, err := b.CreateOrGetSink("s", SinkConfig{Kind: kind}); err == nil {
			t.Errorf("kind %d: empty path accepted", kind)
		}
	}
}

func TestGetSinkNotFound(t *testing.T) {
	b := Start(BackendOptions{})
	defer b.Stop()

	if _, err := b.GetSink("missing"); !errors.Is(err, ErrSinkNotFound) {
		t.Errorf("err = %v", err)
	}

	path := filepath.Join(t.TempDir(), "app.log")
	created, err := b.CreateOrGetSink("file", SinkConfig{Kind: File, Path: path})
	if err != nil {
		t.Fatal(err)
	}
	got, err := b.GetSink("file")
	if err != nil {
		t.Fatal(err)
	}
	if got != created {
		t.Error("GetSink returned a different instance")
	}
}

func TestRegisterCustomSink(t *testing.T) {
	b := Start(BackendOptions{})
	defer b.Stop()

	mem := sinks.NewMemorySink("custom", core.EncodingText)
	if err := b.RegisterSink(mem); err != nil {
		t.Fatal(err)
	}
	// Same instance again is a no-op.
	if err := b.RegisterSink(mem); err != nil {
		t.Fatalf("re-register same instance: %v", err)
	}
	// A different instance under the taken id conflicts.
	other := sinks.NewMemorySink("custom", core.EncodingText)
	if err := b.RegisterSink(other); !errors.Is(err, ErrConfigMismatch) {
		t.Errorf("different instance: %v", err)
	}
	// So does building a canonical sink over it.
	_, err := b.CreateOrGetSink("custom", SinkConfig{Kind: Console})
	if !errors.Is(err, ErrConfigMismatch) {
		t.Errorf("create over custom: %v", err)
	}

	got, err := b.GetSink("custom")
	if err != nil {
		t.Fatal(err)
	}
	if got != core.Sink(mem) {
		t.Error("registry holds a different sink")
	}
}

func TestCreateOrGetLoggerIdentity(t *testing.T) {
	b := Start(BackendOptions{})
	defer b.Stop()

	mem := sinks.NewMemorySink("mem", core.EncodingText)
	opts := formatters.PatternOptions{Pattern: "%(message)"}
	first, err := b.CreateOrGetLogger("app", []core.Sink{mem}, opts)
	if err != nil {
		t.Fatal(err)
	}
	second, err := b.CreateOrGetLogger("app", []core.Sink{mem}, opts)
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Error("equivalent re-creation returned a different logger")
	}
	if b.GetLogger("app") != first {
		t.Error("GetLogger returned a different logger")
	}
	if b.GetLogger("missing") != nil {
		t.Error("GetLogger for unknown name is non-nil")
	}
}

func TestCreateOrGetLoggerMismatch(t *testing.T) {
	b := Start(BackendOptions{})
	defer b.Stop()

	mem := sinks.NewMemorySink("mem", core.EncodingText)
	opts := formatters.PatternOptions{Pattern: "%(message)"}
	if _, err := b.CreateOrGetLogger("app", []core.Sink{mem}, opts); err != nil {
		t.Fatal(err)
	}

	_, err := b.CreateOrGetLogger("app", []core.Sink{mem}, formatters.PatternOptions{Pattern: "%(log_level) %(message)"})
	if !errors.Is(err, ErrConfigMismatch) {
		t.Errorf("different pattern: %v", err)
	}

	other := sinks.NewMemorySink("other", core.EncodingText)
	_, err = b.CreateOrGetLogger("app", []core.Sink{mem, other}, opts)
	if !errors.Is(err, ErrConfigMismatch) {
		t.Errorf("different sink set: %v", err)
	}
}

func TestCreateOrGetLoggerValidation(t *testing.T) {
	b := Start(BackendOptions{})
	defer b.Stop()

	if _, err := b.CreateOrGetLogger("", nil, formatters.PatternOptions{}); err == nil {
		t.Error("empty name accepted")
	}
	if _, err := b.CreateOrGetLogger("app", nil, formatters.PatternOptions{}); err == nil {
		t.Error("empty sink list accepted")
	}
	mem := sinks.NewMemorySink("mem", core.EncodingText)
	_, err := b.CreateOrGetLogger("app", []core.Sink{mem}, formatters.PatternOptions{Pattern: "%(bogus)"})
	if err == nil {
		t.Error("invalid pattern accepted")
	}
}

func TestRegistryRejectsAfterStop(t *testing.T) {
	b := Start(BackendOptions{})
	if err := b.Stop(); err != nil {
		t.Fatal(err)
	}

	if _, err := b.CreateOrGetSink("s", SinkConfig{Kind: Console}); !errors.Is(err, ErrBackendStopped) {
		t.Errorf("CreateOrGetSink: %v", err)
	}
	if _, err := b.GetSink("s"); !errors.Is(err, ErrBackendStopped) {
		t.Errorf("GetSink: %v", err)
	}
	mem := sinks.NewMemorySink("mem", core.EncodingText)
	if err := b.RegisterSink(mem); !errors.Is(err, ErrBackendStopped) {
		t.Errorf("RegisterSink: %v", err)
	}
	if _, err := b.CreateOrGetLogger("app", []core.Sink{mem}, formatters.PatternOptions{}); !errors.Is(err, ErrBackendStopped) {
		t.Errorf("CreateOrGetLogger: %v", err)
	}
}

func TestFileSinksEndToEnd(t *testing.T) {
	dir := t.TempDir()
	textPath := filepath.Join(dir, "app.log")
	jsonPath := filepath.Join(dir, "app.json")

	b := Start(BackendOptions{})
	textSink, err := b.CreateOrGetSink("text", SinkConfig{Kind: File, Path: textPath})
	if err != nil {
		t.Fatal(err)
	}
	jsonSink, err := b.CreateOrGetSink("json", SinkConfig{Kind: JSONFile, Path: jsonPath, OpenMode: sinks.Truncate})
	if err != nil {
		t.Fatal(err)
	}
	lg, err := b.CreateOrGetLogger("hybrid", []core.Sink{textSink, jsonSink}, formatters.PatternOptions{
		Pattern: "%(log_level) %(logger) %(message)",
	})
	if err != nil {
		t.Fatal(err)
	}

	lg.Info("user {user} logged in from {ip}", "ada", "10.0.0.1")
	lg.Error("disk {disk} is {pct} percent full", "sda", 93)
	if err := b.Stop(); err != nil {
		t.Fatal(err)
	}

	textData, err := os.ReadFile(textPath)
	if err != nil {
		t.Fatal(err)
	}
	textLines := strings.Split(strings.TrimSuffix(string(textData), "\n"), "\n")
	if len(textLines) != 2 {
		t.Fatalf("text lines = %q", textLines)
	}
	if textLines[0] != "INFO hybrid user ada logged in from 10.0.0.1" {
		t.Errorf("text[0] = %q", textLines[0])
	}
	if textLines[1] != "ERROR hybrid disk sda is 93 percent full" {
		t.Errorf("text[1] = %q", textLines[1])
	}

	jsonData, err := os.ReadFile(jsonPath)
	if err != nil {
		t.Fatal(err)
	}
	jsonLines := strings.Split(strings.TrimSuffix(string(jsonData), "\n"), "\n")
	if len(jsonLines) != 2 {
		t.Fatalf("json lines = %q", jsonLines)
	}
	var first map[string]any
	if err := json.Unmarshal([]byte(jsonLines[0]), &first); err != nil {
		t.Fatalf("json[0]: %v", err)
	}
	if first["user"] != "ada" || first["ip"] != "10.0.0.1" {
		t.Errorf("json[0] fields = %v", first)
	}
	var second map[string]any
	if err := json.Unmarshal([]byte(jsonLines[1]), &second); err != nil {
		t.Fatalf("json[1]: %v", err)
	}
	if second["level"] != "ERROR" || second["pct"] != float64(93) {
		t.Errorf("json[1] fields = %v", second)
	}
}
