package ocigo

import (
	"os"
	"sync"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// FormatConfig names the six overridable format strings (spec §6 "Format
// strings"), one field per value.FormatKind in declaration order.
type FormatConfig struct {
	Date           string `yaml:"date,omitempty"`
	Timestamp      string `yaml:"timestamp,omitempty"`
	TimestampTZ    string `yaml:"timestamp_tz,omitempty"`
	Numeric        string `yaml:"numeric,omitempty"`
	BinaryFloat    string `yaml:"binary_float,omitempty"`
	BinaryDouble   string `yaml:"binary_double,omitempty"`
}

// PoolConfig mirrors the pool knobs spec §4.3 exposes on Pool.CreatePool, so
// a process can keep them in one YAML file instead of scattered call sites.
type PoolConfig struct {
	Min       int `yaml:"min,omitempty"`
	Max       int `yaml:"max,omitempty"`
	Increment int `yaml:"increment,omitempty"`
}

// Config is the optional YAML-sourced process-wide defaults document (spec
// §4.2.1 "Format string defaults", §4.3.1 "Pool warm-fill"). Nothing in the
// driver requires a Config file to exist; LoadConfig and WatchConfig are
// opt-in plumbing a deployment can use to avoid hard-coding format strings
// and pool sizes in Go source.
type Config struct {
	Format FormatConfig `yaml:"format"`
	Pool   PoolConfig   `yaml:"pool"`
}

// LoadConfig reads and parses a YAML config file. A missing file is not an
// error — it returns a zero-value Config so callers can layer it under
// their own defaults unconditionally.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Config{}, nil
	}
	if err != nil {
		return nil, newError(KindArgumentInvalidValue, "LoadConfig", err.Error())
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, newError(KindArgumentInvalidValue, "LoadConfig", err.Error())
	}
	return &cfg, nil
}

// ApplyFormats pushes the non-empty fields of fc onto e via
// Environment.SetFormat, using the same kind indices defaultFormatFor uses.
func (fc FormatConfig) ApplyFormats(e *Environment) {
	fields := []string{fc.Date, fc.Timestamp, fc.TimestampTZ, fc.Numeric, fc.BinaryFloat, fc.BinaryDouble}
	for kind, pattern := range fields {
		if pattern != "" {
			e.SetFormat(kind, pattern)
		}
	}
}

// ConfigWatcher applies a Config's format strings to an Environment and
// keeps them live-reloaded as the source file changes, per SPEC_FULL.md §4.2.1's
// "fsnotify watches the source file for live updates" note. Pool sizing is
// read once at LoadConfig time since Pool.CreatePool's min/max/increment are
// fixed for a pool's lifetime; only the format strings are hot-reloadable.
type ConfigWatcher struct {
	path    string
	env     *Environment
	watcher *fsnotify.Watcher

	mu     sync.Mutex
	closed bool
}

// WatchConfig loads path once, applies its format strings to env, and
// starts a background watch that re-applies them on every file write. The
// returned ConfigWatcher must be closed to stop the watch goroutine.
func WatchConfig(path string, env *Environment) (*ConfigWatcher, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}
	cfg.Format.ApplyFormats(env)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, newError(KindVendor, "WatchConfig", err.Error())
	}
	if err := watcher.Add(path); err != nil {
		// No source file to watch (e.g. defaults-only config); the
		// already-applied defaults stand and Close is a harmless no-op.
		watcher.Close()
		return &ConfigWatcher{path: path, env: env, closed: true}, nil
	}

	cw := &ConfigWatcher{path: path, env: env, watcher: watcher}
	go cw.loop()
	return cw, nil
}

func (cw *ConfigWatcher) loop() {
	for {
		select {
		case event, ok := <-cw.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if cfg, err := LoadConfig(cw.path); err == nil {
				cfg.Format.ApplyFormats(cw.env)
			}
		case _, ok := <-cw.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

// Close stops the watch goroutine.
func (cw *ConfigWatcher) Close() error {
	cw.mu.Lock()
	defer cw.mu.Unlock()
	if cw.closed {
		return nil
	}
	cw.closed = true
	return cw.watcher.Close()
}
