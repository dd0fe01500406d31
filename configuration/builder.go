package configuration

import (
	"fmt"
	"strings"

	"github.com/plumelog/plume"
	"github.com/plumelog/plume/core"
	"github.com/plumelog/plume/formatters"
	"github.com/plumelog/plume/sinks"
)

// Build starts a backend from cfg and creates every declared sink and
// logger on it. On any error the partially built backend is stopped
// before returning.
func Build(cfg *Config) (*plume.Backend, error) {
	opts, err := backendOptions(cfg.Backend)
	if err != nil {
		return nil, err
	}
	b := plume.Start(opts)
	if err := populate(b, cfg); err != nil {
		b.Stop()
		return nil, err
	}
	return b, nil
}

func populate(b *plume.Backend, cfg *Config) error {
	for _, sc := range cfg.Sinks {
		built, err := sinkConfig(sc)
		if err != nil {
			return err
		}
		if _, err := b.CreateOrGetSink(sc.ID, built); err != nil {
			return err
		}
	}
	for _, lc := range cfg.Loggers {
		bound := make([]core.Sink, 0, len(lc.Sinks))
		for _, id := range lc.Sinks {
			s, err := b.GetSink(id)
			if err != nil {
				return fmt.Errorf("configuration: logger %q: %w", lc.Name, err)
			}
			bound = append(bound, s)
		}
		tz, err := parseTimezone(lc.Timezone)
		if err != nil {
			return err
		}
		popts := formatters.PatternOptions{
			Pattern:    lc.Pattern,
			TimeFormat: lc.TimeFormat,
			Timezone:   tz,
		}
		if _, err := b.CreateOrGetLogger(lc.Name, bound, popts); err != nil {
			return err
		}
	}
	return nil
}

func backendOptions(bc BackendConfig) (plume.BackendOptions, error) {
	var opts plume.BackendOptions
	opts.QueueCapacity = bc.QueueCapacity
	opts.BatchSize = bc.BatchSize

	switch strings.ToLower(bc.FullPolicy) {
	case "", "block":
		opts.FullPolicy = plume.Block
	case "drop":
		opts.FullPolicy = plume.Drop
	case "grow":
		opts.FullPolicy = plume.Grow
	default:
		return opts, fmt.Errorf("configuration: unknown fullPolicy %q", bc.FullPolicy)
	}

	var err error
	if opts.PollInterval, err = parseDuration(bc.PollInterval, "pollInterval"); err != nil {
		return opts, err
	}
	if opts.FlushInterval, err = parseDuration(bc.FlushInterval, "flushInterval"); err != nil {
		return opts, err
	}

	tz, err := parseTimezone(bc.JSONTimezone)
	if err != nil {
		return opts, err
	}
	opts.JSON = formatters.JSONOptions{TimeFormat: bc.JSONTimeFormat, Timezone: tz}
	return opts, nil
}

func sinkConfig(sc SinkConfig) (plume.SinkConfig, error) {
	var out plume.SinkConfig
	if sc.ID == "" {
		return out, fmt.Errorf("configuration: sink with empty id")
	}
	switch strings.ToLower(sc.Kind) {
	case "console":
		out.Kind = plume.Console
	case "console_stderr", "stderr":
		out.Kind = plume.ConsoleStderr
	case "file":
		out.Kind = plume.File
	case "json_file", "jsonfile":
		out.Kind = plume.JSONFile
	case "rotating_file":
		out.Kind = plume.RotatingFile
	case "rotating_json_file":
		out.Kind = plume.RotatingJSONFile
	default:
		return out, fmt.Errorf("configuration: sink %q: unknown kind %q", sc.ID, sc.Kind)
	}

	switch strings.ToLower(sc.OpenMode) {
	case "", "append":
		out.OpenMode = sinks.Append
	case "truncate", "w":
		out.OpenMode = sinks.Truncate
	default:
		return out, fmt.Errorf("configuration: sink %q: unknown openMode %q", sc.ID, sc.OpenMode)
	}

	switch strings.ToLower(sc.FilenameAppend) {
	case "", "none":
		out.FilenameAppend = sinks.AppendNone
	case "date":
		out.FilenameAppend = sinks.AppendDate
	case "datetime", "date_and_time":
		out.FilenameAppend = sinks.AppendDateTime
	default:
		return out, fmt.Errorf("configuration: sink %q: unknown filenameAppend %q", sc.ID, sc.FilenameAppend)
	}

	switch strings.ToLower(sc.RotationInterval) {
	case "", "never":
		out.RotationInterval = sinks.RotateNever
	case "hourly":
		out.RotationInterval = sinks.RotateHourly
	case "daily":
		out.RotationInterval = sinks.RotateDaily
	default:
		return out, fmt.Errorf("configuration: sink %q: unknown rotationInterval %q", sc.ID, sc.RotationInterval)
	}

	out.Path = sc.Path
	out.BufferSize = sc.BufferSize
	out.MaxFileSize = sc.MaxFileSize
	out.MaxBackups = sc.MaxBackups
	out.Compress = sc.Compress
	return out, nil
}

func parseTimezone(s string) (formatters.Timezone, error) {
	switch strings.ToLower(s) {
	case "", "localtime", "local":
		return formatters.LocalTime, nil
	case "gmttime", "gmt", "utc":
		return formatters.GmtTime, nil
	default:
		return formatters.LocalTime, fmt.Errorf("configuration: unknown timezone %q", s)
	}
}
