package plume

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/plumelog/plume/core"
	"github.com/plumelog/plume/formatters"
	"github.com/plumelog/plume/internal/queue"
	"github.com/plumelog/plume/internal/templates"
	"github.com/plumelog/plume/selflog"
)

// envelope is one queued unit of work: the immutable event, the logger it
// was emitted through and the parsed template, so the backend never
// re-parses on the consumer side.
type envelope struct {
	ev     *core.LogEvent
	logger *Logger
	tmpl   *templates.Template
}

// Backend owns the transport queue, the single consumer goroutine and the
// sink/logger registries. It is created running by Start and wound down by
// Stop, which drains every already-enqueued event before returning.
type Backend struct {
	opts BackendOptions
	q    *queue.Queue[envelope]
	json *formatters.JSONFormatter

	wg       sync.WaitGroup
	stopOnce sync.Once
	stopErr  error

	mu      sync.Mutex
	stopped bool
	sinks   map[string]*sinkEntry
	loggers map[string]*Logger

	processed   atomic.Uint64
	writeErrors atomic.Uint64
}

type sinkEntry struct {
	sink core.Sink
	fp   sinkFingerprint
	// custom marks sinks registered as ready-made instances rather than
	// built from a SinkConfig; they have no fingerprint to compare.
	custom bool
	refs   int
}

// Start launches a backend with the given options. The returned backend
// is independent of any other; tests can run several side by side.
func Start(opts BackendOptions) *Backend {
	opts = opts.withDefaults()
	b := &Backend{
		opts:    opts,
		q:       queue.New[envelope](opts.QueueCapacity, opts.FullPolicy.queuePolicy()),
		json:    formatters.NewJSONFormatter(opts.JSON),
		sinks:   make(map[string]*sinkEntry),
		loggers: make(map[string]*Logger),
	}
	b.wg.Add(1)
	go b.run()
	return b
}

// Stop closes the queue, waits for the backend goroutine to drain and
// render every pending event, then flushes and closes all sinks and tears
// down the registries. It is idempotent; concurrent and repeated calls
// return the first call's result.
func (b *Backend) Stop() error {
	b.stopOnce.Do(func() {
		b.q.Close()
		b.wg.Wait()

		b.mu.Lock()
		b.stopped = true
		entries := make([]*sinkEntry, 0, len(b.sinks))
		for _, e := range b.sinks {
			entries = append(entries, e)
		}
		b.sinks = make(map[string]*sinkEntry)
		b.loggers = make(map[string]*Logger)
		b.mu.Unlock()

		var errs []error
		for _, e := range entries {
			if err := e.sink.Close(); err != nil {
				errs = append(errs, err)
			}
		}
		b.stopErr = errors.Join(errs...)
	})
	return b.stopErr
}

// Dropped returns the number of events rejected by the queue under the
// Drop policy (or pushed after Stop).
func (b *Backend) Dropped() uint64 { return b.q.Dropped() }

// Processed returns the number of events rendered and written.
func (b *Backend) Processed() uint64 { return b.processed.Load() }

// WriteErrors returns the number of failed sink writes.
func (b *Backend) WriteErrors() uint64 { return b.writeErrors.Load() }

// QueueLen returns the number of events waiting in the transport queue.
func (b *Backend) QueueLen() int { return b.q.Len() }

func (b *Backend) enqueue(env envelope) bool {
	return b.q.Push(env)
}

// run is the backend goroutine: drain a batch, process each event with
// per-event failure isolation, flush sinks on the configured cadence,
// exit once the queue is closed and empty.
func (b *Backend) run() {
	defer b.wg.Done()
	batch := make([]envelope, 0, b.opts.BatchSize)
	lastFlush := time.Now()
	for {
		var open bool
		batch, open = b.q.PopBatch(batch, b.opts.BatchSize, b.opts.PollInterval)
		for i := range batch {
			b.process(&batch[i])
			batch[i] = envelope{}
		}
		if !open {
			b.flushSinks()
			return
		}
		if time.Since(lastFlush) >= b.opts.FlushInterval {
			b.flushSinks()
			lastFlush = time.Now()
		}
	}
}

// process renders one event once per encoding required by the bound sinks
// and writes the shared bytes to each sink. A panic or error for one
// event never aborts the loop.
func (b *Backend) process(env *envelope) {
	defer func() {
		if r := recover(); r != nil {
			b.writeErrors.Add(1)
			if selflog.IsEnabled() {
				selflog.Printf("[backend] panic processing event from %s: %v", env.logger.name, r)
			}
			b.reportError(fmt.Errorf("plume: panic processing event: %v", r))
		}
	}()

	lg := env.logger
	msg := env.tmpl.Render(nil, env.ev.Args)

	var textLine, jsonLine []byte
	if lg.hasText && lg.pattern != nil {
		textLine = lg.pattern.Append(nil, env.ev, msg)
	}
	if lg.hasJSON {
		var err error
		jsonLine, err = b.json.Append(nil, env.ev, msg)
		if err != nil {
			b.writeErrors.Add(1)
			if selflog.IsEnabled() {
				selflog.Printf("[backend] %s: json render: %v", lg.name, err)
			}
			b.reportError(err)
		}
	}

	for _, s := range lg.sinks {
		var line []byte
		switch s.Encoding() {
		case core.EncodingJSON:
			line = jsonLine
		default:
			line = textLine
		}
		if line == nil {
			continue
		}
		var err error
		if lw, ok := s.(core.LevelWriter); ok {
			err = lw.WriteLevel(env.ev.Level, line)
		} else {
			err = s.Write(line)
		}
		if err != nil {
			b.writeErrors.Add(1)
			if selflog.IsEnabled() {
				selflog.Printf("[backend] %s: write to sink %s: %v", lg.name, s.ID(), err)
			}
			b.reportError(err)
		}
	}
	b.processed.Add(1)
}

func (b *Backend) flushSinks() {
	b.mu.Lock()
	sinks := make([]core.Sink, 0, len(b.sinks))
	for _, e := range b.sinks {
		sinks = append(sinks, e.sink)
	}
	b.mu.Unlock()
	for _, s := range sinks {
		if err := s.Flush(); err != nil {
			if selflog.IsEnabled() {
				selflog.Printf("[backend] flush sink %s: %v", s.ID(), err)
			}
			b.reportError(err)
		}
	}
}

func (b *Backend) reportError(err error) {
	if b.opts.OnError != nil {
		b.opts.OnError(err)
	}
}
