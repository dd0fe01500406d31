package plume

import (
	"time"

	"github.com/plumelog/plume/formatters"
	"github.com/plumelog/plume/internal/queue"
	"github.com/plumelog/plume/sinks"
)

// FullPolicy decides what a log call does when the transport queue is at
// capacity. The choice is always explicit in the options; the default
// bounds memory and blocks the producer.
type FullPolicy int

const (
	// Block stalls the logging goroutine until the backend frees a slot.
	Block FullPolicy = iota

	// Drop rejects the event. Drops are counted and reported through
	// Backend.Dropped and selflog.
	Drop

	// Grow lets the queue grow without bound. Log calls never stall.
	Grow
)

func (p FullPolicy) queuePolicy() queue.FullPolicy {
	switch p {
	case Drop:
		return queue.DropNewest
	case Grow:
		return queue.Grow
	default:
		return queue.Block
	}
}

// BackendOptions configures the backend started by Start.
type BackendOptions struct {
	// QueueCapacity is the transport queue capacity in events.
	// Defaults to 8192.
	QueueCapacity int

	// FullPolicy selects the backpressure behavior when the queue is
	// full. Defaults to Block.
	FullPolicy FullPolicy

	// PollInterval bounds how long the backend sleeps waiting for the
	// queue to become non-empty. Defaults to 10ms.
	PollInterval time.Duration

	// FlushInterval is how often sinks are flushed. Defaults to 500ms.
	FlushInterval time.Duration

	// BatchSize is the maximum number of events drained per backend
	// iteration. Defaults to 256.
	BatchSize int

	// JSON configures the structured encoder shared by all JSON sinks.
	JSON formatters.JSONOptions

	// OnError, when set, receives render and write errors from the
	// backend goroutine. Must not log through this backend.
	OnError func(error)
}

func (o BackendOptions) withDefaults() BackendOptions {
	if o.QueueCapacity <= 0 {
		o.QueueCapacity = 8192
	}
	if o.PollInterval <= 0 {
		o.PollInterval = 10 * time.Millisecond
	}
	if o.FlushInterval <= 0 {
		o.FlushInterval = 500 * time.Millisecond
	}
	if o.BatchSize <= 0 {
		o.BatchSize = 256
	}
	return o
}

// SinkKind selects which canonical sink CreateOrGetSink builds.
type SinkKind int

const (
	// Console writes to stdout.
	Console SinkKind = iota

	// ConsoleStderr writes to stderr.
	ConsoleStderr

	// File writes pattern-rendered lines to a file.
	File

	// JSONFile writes newline-delimited JSON objects to a file.
	JSONFile

	// RotatingFile writes pattern-rendered lines with rotation.
	RotatingFile

	// RotatingJSONFile writes JSON lines with rotation.
	RotatingJSONFile
)

// SinkConfig describes one sink of the canonical console/file/JSON family
// for the registry. Fields that do not apply to the Kind are ignored.
type SinkConfig struct {
	Kind SinkKind

	// Path is the target file for file-backed kinds.
	Path string

	OpenMode       sinks.OpenMode
	FilenameAppend sinks.FilenameAppend
	Notifier       sinks.FileEventNotifier
	BufferSize     int

	// Rotation settings, for the rotating kinds.
	MaxFileSize      int64
	RotationInterval sinks.RotationInterval
	MaxBackups       int
	Compress         bool
}

// fingerprint is the comparable projection of a SinkConfig used to detect
// re-creation under the same id with different settings. Notifier
// callbacks are identity, not configuration, and are excluded.
type sinkFingerprint struct {
	Kind             SinkKind
	Path             string
	OpenMode         sinks.OpenMode
	FilenameAppend   sinks.FilenameAppend
	BufferSize       int
	MaxFileSize      int64
	RotationInterval sinks.RotationInterval
	MaxBackups       int
	Compress         bool
}

func (c SinkConfig) fingerprint() sinkFingerprint {
	return sinkFingerprint{
		Kind:             c.Kind,
		Path:             c.Path,
		OpenMode:         c.OpenMode,
		FilenameAppend:   c.FilenameAppend,
		BufferSize:       c.BufferSize,
		MaxFileSize:      c.MaxFileSize,
		RotationInterval: c.RotationInterval,
		MaxBackups:       c.MaxBackups,
		Compress:         c.Compress,
	}
}
