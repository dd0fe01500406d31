package plume

import (
	"errors"
	"testing"

	"github.com/plumelog/plume/core"
	"github.com/plumelog/plume/sinks"
)

func TestDefaultBackendLifecycle(t *testing.T) {
	if Default() != nil {
		t.Fatal("default backend running before StartDefault")
	}
	if _, err := GetSink("any"); !errors.Is(err, ErrBackendStopped) {
		t.Errorf("GetSink with no default backend: %v", err)
	}

	b := StartDefault(BackendOptions{})
	if Default() != b {
		t.Error("Default does not return the started backend")
	}
	// A second start returns the running instance.
	if StartDefault(BackendOptions{QueueCapacity: 1}) != b {
		t.Error("second StartDefault returned a new backend")
	}

	mem := sinks.NewMemorySink("mem", core.EncodingText)
	if err := b.RegisterSink(mem); err != nil {
		t.Fatal(err)
	}
	lg, err := CreateOrGetLogger("app", []core.Sink{mem}, messageOnly())
	if err != nil {
		t.Fatal(err)
	}
	lg.Info("via default backend")

	if err := StopDefault(); err != nil {
		t.Fatal(err)
	}
	if Default() != nil {
		t.Error("default backend survives StopDefault")
	}
	if mem.Count() != 1 {
		t.Errorf("delivered %d lines, want 1", mem.Count())
	}
	// Stopping again is harmless.
	if err := StopDefault(); err != nil {
		t.Errorf("second StopDefault: %v", err)
	}
}
