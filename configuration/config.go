// Package configuration builds a running plume backend, its sinks and its
// loggers from a declarative file. YAML and JSON are both accepted, by
// file extension.
package configuration

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Config is the root of a configuration file.
type Config struct {
	Backend BackendConfig  `json:"backend" yaml:"backend"`
	Sinks   []SinkConfig   `json:"sinks" yaml:"sinks"`
	Loggers []LoggerConfig `json:"loggers" yaml:"loggers"`
}

// BackendConfig mirrors plume.BackendOptions with file-friendly types.
type BackendConfig struct {
	QueueCapacity int    `json:"queueCapacity" yaml:"queueCapacity"`
	FullPolicy    string `json:"fullPolicy" yaml:"fullPolicy"`
	PollInterval  string `json:"pollInterval" yaml:"pollInterval"`
	FlushInterval string `json:"flushInterval" yaml:"flushInterval"`
	BatchSize     int    `json:"batchSize" yaml:"batchSize"`

	JSONTimeFormat string `json:"jsonTimeFormat" yaml:"jsonTimeFormat"`
	JSONTimezone   string `json:"jsonTimezone" yaml:"jsonTimezone"`
}

// SinkConfig declares one sink.
type SinkConfig struct {
	ID   string `json:"id" yaml:"id"`
	Kind string `json:"kind" yaml:"kind"`
	Path string `json:"path" yaml:"path"`

	OpenMode       string `json:"openMode" yaml:"openMode"`
	FilenameAppend string `json:"filenameAppend" yaml:"filenameAppend"`
	BufferSize     int    `json:"bufferSize" yaml:"bufferSize"`

	MaxFileSize      int64  `json:"maxFileSize" yaml:"maxFileSize"`
	RotationInterval string `json:"rotationInterval" yaml:"rotationInterval"`
	MaxBackups       int    `json:"maxBackups" yaml:"maxBackups"`
	Compress         bool   `json:"compress" yaml:"compress"`
}

// LoggerConfig declares one logger bound to previously declared sinks.
type LoggerConfig struct {
	Name       string   `json:"name" yaml:"name"`
	Sinks      []string `json:"sinks" yaml:"sinks"`
	Pattern    string   `json:"pattern" yaml:"pattern"`
	TimeFormat string   `json:"timeFormat" yaml:"timeFormat"`
	Timezone   string   `json:"timezone" yaml:"timezone"`
}

// LoadFile reads and parses a configuration file. ".yaml"/".yml" parse as
// YAML, everything else as JSON.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("configuration: read %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return LoadYAML(data)
	default:
		return LoadJSON(data)
	}
}

// LoadYAML parses a YAML configuration document.
func LoadYAML(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("configuration: parse yaml: %w", err)
	}
	return &cfg, nil
}

// LoadJSON parses a JSON configuration document.
func LoadJSON(data []byte) (*Config, error) {
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("configuration: parse json: %w", err)
	}
	return &cfg, nil
}

func parseDuration(s, field string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("configuration: %s: %w", field, err)
	}
	return d, nil
}
