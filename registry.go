package plume

import (
	"fmt"
	"sort"

	"github.com/plumelog/plume/core"
	"github.com/plumelog/plume/formatters"
	"github.com/plumelog/plume/sinks"
)

// CreateOrGetSink returns the sink registered under id, creating it from
// cfg on first request. Re-requesting an existing id with an equivalent
// configuration returns the same shared instance; a different
// configuration fails with ErrConfigMismatch. The first creator wins
// under concurrency.
func (b *Backend) CreateOrGetSink(id string, cfg SinkConfig) (core.Sink, error) {
	if id == "" {
		return nil, fmt.Errorf("plume: empty sink id")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.stopped {
		return nil, ErrBackendStopped
	}
	if e, ok := b.sinks[id]; ok {
		if e.custom || e.fp != cfg.fingerprint() {
			return nil, fmt.Errorf("%w: sink %q", ErrConfigMismatch, id)
		}
		return e.sink, nil
	}
	sink, err := buildSink(id, cfg)
	if err != nil {
		return nil, err
	}
	b.sinks[id] = &sinkEntry{sink: sink, fp: cfg.fingerprint()}
	return sink, nil
}

// GetSink returns the sink registered under id, or ErrSinkNotFound.
func (b *Backend) GetSink(id string) (core.Sink, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.stopped {
		return nil, ErrBackendStopped
	}
	e, ok := b.sinks[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrSinkNotFound, id)
	}
	return e.sink, nil
}

// RegisterSink adds a ready-made sink instance (a custom implementation)
// to the registry under its own id. Registering the same instance again
// is a no-op; a different instance under an existing id fails with
// ErrConfigMismatch.
func (b *Backend) RegisterSink(sink core.Sink) error {
	if sink == nil || sink.ID() == "" {
		return fmt.Errorf("plume: nil sink or empty sink id")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.stopped {
		return ErrBackendStopped
	}
	if e, ok := b.sinks[sink.ID()]; ok {
		if e.sink == sink {
			return nil
		}
		return fmt.Errorf("%w: sink %q", ErrConfigMismatch, sink.ID())
	}
	b.sinks[sink.ID()] = &sinkEntry{sink: sink, custom: true}
	return nil
}

// CreateOrGetLogger returns the logger registered under name, creating it
// on first request as an immutable binding of the given sinks and pattern
// options. Re-requesting an existing name with the same sink set and
// options returns the same instance; anything else fails with
// ErrConfigMismatch. Sinks not yet in the registry are registered
// implicitly, so a custom sink can be passed directly.
func (b *Backend) CreateOrGetLogger(name string, sinkList []core.Sink, opts formatters.PatternOptions) (*Logger, error) {
	if name == "" {
		return nil, fmt.Errorf("plume: empty logger name")
	}
	if len(sinkList) == 0 {
		return nil, fmt.Errorf("plume: logger %q needs at least one sink", name)
	}
	pattern, err := formatters.NewPatternFormatter(opts)
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.stopped {
		return nil, ErrBackendStopped
	}
	if existing, ok := b.loggers[name]; ok {
		if !existing.opts.Equal(opts) || !sameSinkSet(existing.sinks, sinkList) {
			return nil, fmt.Errorf("%w: logger %q", ErrConfigMismatch, name)
		}
		return existing, nil
	}

	lg := &Logger{
		name:        name,
		backend:     b,
		sinks:       append([]core.Sink(nil), sinkList...),
		pattern:     pattern,
		opts:        opts,
		needsSource: pattern.NeedsSource(),
		needsThread: pattern.NeedsThreadID(),
	}
	for _, s := range sinkList {
		if s == nil {
			return nil, fmt.Errorf("plume: logger %q: nil sink", name)
		}
		e, ok := b.sinks[s.ID()]
		if ok && e.sink != s {
			return nil, fmt.Errorf("%w: sink %q", ErrConfigMismatch, s.ID())
		}
		if !ok {
			e = &sinkEntry{sink: s, custom: true}
			b.sinks[s.ID()] = e
		}
		e.refs++
		switch s.Encoding() {
		case core.EncodingJSON:
			lg.hasJSON = true
		default:
			lg.hasText = true
		}
	}
	b.loggers[name] = lg
	return lg, nil
}

// GetLogger returns the logger registered under name, or nil.
func (b *Backend) GetLogger(name string) *Logger {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.loggers[name]
}

func sameSinkSet(a, bb []core.Sink) bool {
	if len(a) != len(bb) {
		return false
	}
	ids := func(list []core.Sink) []string {
		out := make([]string, len(list))
		for i, s := range list {
			out[i] = s.ID()
		}
		sort.Strings(out)
		return out
	}
	ai, bi := ids(a), ids(bb)
	for i := range ai {
		if ai[i] != bi[i] {
			return false
		}
	}
	return true
}

func buildSink(id string, cfg SinkConfig) (core.Sink, error) {
	fileCfg := sinks.FileConfig{
		OpenMode:       cfg.OpenMode,
		FilenameAppend: cfg.FilenameAppend,
		Notifier:       cfg.Notifier,
		BufferSize:     cfg.BufferSize,
	}
	switch cfg.Kind {
	case Console:
		return sinks.NewConsoleSink(id), nil
	case ConsoleStderr:
		return sinks.NewConsoleSinkStderr(id), nil
	case File, JSONFile, RotatingFile, RotatingJSONFile:
		if cfg.Path == "" {
			return nil, fmt.Errorf("plume: sink %q: file path is required", id)
		}
	}
	switch cfg.Kind {
	case File:
		return sinks.NewFileSink(id, cfg.Path, fileCfg)
	case JSONFile:
		return sinks.NewJSONFileSink(id, cfg.Path, fileCfg)
	case RotatingFile, RotatingJSONFile:
		rcfg := sinks.RotatingConfig{
			FileConfig:  fileCfg,
			MaxFileSize: cfg.MaxFileSize,
			Interval:    cfg.RotationInterval,
			MaxBackups:  cfg.MaxBackups,
			Compress:    cfg.Compress,
		}
		if cfg.Kind == RotatingJSONFile {
			rcfg.Encoding = core.EncodingJSON
		}
		return sinks.NewRotatingFileSink(id, cfg.Path, rcfg)
	default:
		return nil, fmt.Errorf("plume: unknown sink kind %d", cfg.Kind)
	}
}
