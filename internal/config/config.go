// Package config loads and validates the boot-time configuration.
//
// Config files are CUE; they are unified against an embedded schema so
// malformed or misspelled settings fail at startup rather than at first
// use. The loaded Config is immutable.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

//go:embed schema.cue
var schemaSource string

// Config is the validated boot configuration.
type Config struct {
	// Database is the path to the SQLite mirror database.
	Database string `yaml:"database"`

	// Consumers bounds the number of concurrently processed messages.
	Consumers int `yaml:"consumers"`

	// IgnoreOnStartup lists categories suppressed during startup replay.
	IgnoreOnStartup []string `yaml:"ignore_on_startup"`

	// StorageTimeout bounds any single storage round trip.
	StorageTimeout time.Duration `yaml:"storage_timeout"`

	// NotifyEndpoint receives offer-event notifications; empty disables
	// them.
	NotifyEndpoint string `yaml:"notify_endpoint"`

	// NotifyTimeout bounds a single notification POST.
	NotifyTimeout time.Duration `yaml:"notify_timeout"`

	ignore *IgnoreSet
}

// fileConfig mirrors the schema's wire shape for decoding.
type fileConfig struct {
	Database         string   `json:"database"`
	Consumers        int      `json:"consumers"`
	IgnoreOnStartup  []string `json:"ignore_on_startup"`
	StorageTimeoutMS int      `json:"storage_timeout_ms"`
	Notify           struct {
		Endpoint  string `json:"endpoint"`
		TimeoutMS int    `json:"timeout_ms"`
	} `json:"notify"`
}

// Load reads, validates, and decodes a CUE config file.
func Load(path string) (*Config, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return parse(source, path)
}

// parse validates config source against the embedded schema.
func parse(source []byte, filename string) (*Config, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile config schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Config"))
	if err := def.Err(); err != nil {
		return nil, fmt.Errorf("lookup config schema: %w", err)
	}

	value := ctx.CompileBytes(source, cue.Filename(filename))
	if err := value.Err(); err != nil {
		return nil, fmt.Errorf("compile config %s: %w", filename, err)
	}

	unified := def.Unify(value)
	if err := unified.Validate(cue.Concrete(true), cue.Final()); err != nil {
		return nil, fmt.Errorf("validate config %s: %w", filename, err)
	}

	var fc fileConfig
	if err := unified.Decode(&fc); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", filename, err)
	}

	ignore, err := ParseIgnoreSet(fc.IgnoreOnStartup)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", filename, err)
	}

	return &Config{
		Database:        fc.Database,
		Consumers:       fc.Consumers,
		IgnoreOnStartup: fc.IgnoreOnStartup,
		StorageTimeout:  time.Duration(fc.StorageTimeoutMS) * time.Millisecond,
		NotifyEndpoint:  fc.Notify.Endpoint,
		NotifyTimeout:   time.Duration(fc.Notify.TimeoutMS) * time.Millisecond,
		ignore:          ignore,
	}, nil
}

// Ignore returns the startup-replay ignore set.
func (c *Config) Ignore() *IgnoreSet {
	return c.ignore
}
