package logging

import "time"

// Config controls how internal/app wires a Router: which sinks are
// enabled, how big the event queue is, and each sink's own knobs. A
// zero Config is usable but DefaultConfig is the sane starting point.
type Config struct {
	EnabledSinks     []string
	BufferSize       int
	MinimumSeverity  Severity
	Fields           map[string]any
	JSON             JSONConfig
	Console          ConsoleConfig
	DropWarnInterval time.Duration
}

// JSONConfig configures logging/sinks.JSON: where it writes and how
// aggressively it batches before flushing.
type JSONConfig struct {
	FilePath      string
	MaxBatch      int
	FlushInterval time.Duration
}

// ConsoleConfig configures logging/sinks.ConsoleSink's output formatting.
type ConsoleConfig struct {
	UseColor bool
}

// DefaultConfig returns a Config suitable for local development: console
// sink only, info severity and above, a moderate event buffer.
func DefaultConfig() Config {
	return Config{
		EnabledSinks:     []string{"console"},
		BufferSize:       512,
		MinimumSeverity:  SeverityInfo,
		DropWarnInterval: 5 * time.Second,
		JSON: JSONConfig{
			MaxBatch:      32,
			FlushInterval: 2 * time.Second,
		},
	}
}

// HasSink reports whether name appears in EnabledSinks.
func (c Config) HasSink(name string) bool {
	for _, enabled := range c.EnabledSinks {
		if enabled == name {
			return true
		}
	}
	return false
}

// CloneFields returns a defensive copy of Fields, or nil if empty, so a
// Router can hold its own map independent of the Config it was built from.
func (c Config) CloneFields() map[string]any {
	if len(c.Fields) == 0 {
		return nil
	}
	cloned := make(map[string]any, len(c.Fields))
	for k, v := range c.Fields {
		cloned[k] = v
	}
	return cloned
}
