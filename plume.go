// Package plume is an asynchronous structured logging engine. A log call
// on any goroutine validates its message template, captures a timestamp
// and enqueues an immutable event; a single backend goroutine drains the
// queue, renders each event once per required encoding (pattern text,
// newline-delimited JSON) and writes the shared bytes to every bound
// sink.
//
// Templates use {name} or {} placeholders; the placeholder count must
// match the argument count. Named placeholders become structured fields
// in JSON output and name=value pairs in the pattern's named-argument
// block:
//
//	backend := plume.Start(plume.BackendOptions{})
//	defer backend.Stop()
//
//	sink, _ := backend.CreateOrGetSink("app.json", plume.SinkConfig{
//		Kind: plume.JSONFile,
//		Path: "app.json",
//	})
//	logger, _ := backend.CreateOrGetLogger("app", []core.Sink{sink},
//		formatters.PatternOptions{})
//
//	logger.Info("{method} to {endpoint} took {elapsed} ms", "POST", "/v1/items", 12)
package plume

import (
	"sync"

	"github.com/plumelog/plume/core"
	"github.com/plumelog/plume/formatters"
)

// The package-level functions operate on a process-wide default backend,
// for programs that do not need isolated instances.
var (
	defaultMu      sync.Mutex
	defaultBackend *Backend
)

// StartDefault starts the process-wide default backend. Starting it twice
// without an intervening StopDefault returns the running instance
// unchanged; pass the options you mean on the first call.
func StartDefault(opts BackendOptions) *Backend {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultBackend != nil {
		return defaultBackend
	}
	defaultBackend = Start(opts)
	return defaultBackend
}

// Default returns the running default backend, or nil.
func Default() *Backend {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	return defaultBackend
}

// StopDefault stops and clears the default backend. Safe to call when
// none is running.
func StopDefault() error {
	defaultMu.Lock()
	b := defaultBackend
	defaultBackend = nil
	defaultMu.Unlock()
	if b == nil {
		return nil
	}
	return b.Stop()
}

// CreateOrGetSink calls CreateOrGetSink on the default backend.
func CreateOrGetSink(id string, cfg SinkConfig) (core.Sink, error) {
	b := Default()
	if b == nil {
		return nil, ErrBackendStopped
	}
	return b.CreateOrGetSink(id, cfg)
}

// GetSink calls GetSink on the default backend.
func GetSink(id string) (core.Sink, error) {
	b := Default()
	if b == nil {
		return nil, ErrBackendStopped
	}
	return b.GetSink(id)
}

// CreateOrGetLogger calls CreateOrGetLogger on the default backend.
func CreateOrGetLogger(name string, sinks []core.Sink, opts formatters.PatternOptions) (*Logger, error) {
	b := Default()
	if b == nil {
		return nil, ErrBackendStopped
	}
	return b.CreateOrGetLogger(name, sinks, opts)
}
