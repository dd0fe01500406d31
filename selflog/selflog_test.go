package selflog

import (
	"strings"
	"sync"
	"testing"
)

func TestDisabledByDefault(t *testing.T) {
	Disable()
	if IsEnabled() {
		t.Fatal("enabled without a writer")
	}
	// Printf without a destination is a no-op, not a panic.
	Printf("[test] discarded %d", 1)
}

func TestEnableWriter(t *testing.T) {
	var buf strings.Builder
	Enable(Sync(&buf))
	defer Disable()

	if !IsEnabled() {
		t.Fatal("not enabled after Enable")
	}
	Printf("[test] value=%d", 42)

	got := buf.String()
	if !strings.Contains(got, "[test] value=42") {
		t.Errorf("output = %q", got)
	}
	if !strings.HasSuffix(got, "\n") {
		t.Errorf("missing newline: %q", got)
	}
	// The timestamp prefix precedes the message.
	if strings.HasPrefix(got, "[test]") {
		t.Errorf("no timestamp prefix: %q", got)
	}
}

func TestEnableFunc(t *testing.T) {
	var mu sync.Mutex
	var lines []string
	EnableFunc(func(line string) {
		mu.Lock()
		lines = append(lines, line)
		mu.Unlock()
	})
	defer Disable()

	Printf("[queue] dropped %d", 3)
	mu.Lock()
	defer mu.Unlock()
	if len(lines) != 1 || !strings.Contains(lines[0], "[queue] dropped 3") {
		t.Errorf("lines = %q", lines)
	}
}

func TestDisableStopsOutput(t *testing.T) {
	var buf strings.Builder
	Enable(Sync(&buf))
	Disable()
	Printf("[test] after disable")
	if buf.Len() != 0 {
		t.Errorf("output after Disable: %q", buf.String())
	}
}

func TestSyncWriterConcurrentUse(t *testing.T) {
	var buf strings.Builder
	Enable(Sync(&buf))
	defer Disable()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				Printf("[w%d] line %d", i, j)
			}
		}(i)
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) != 8*50 {
		t.Fatalf("got %d lines, want %d", len(lines), 8*50)
	}
	for _, line := range lines {
		if !strings.Contains(line, "] line ") {
			t.Fatalf("interleaved line: %q", line)
		}
	}
}
