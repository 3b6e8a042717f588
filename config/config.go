// Package config implements the cascading configuration record described
// by the emulator's design notes: defaults, overridden by a config file,
// overridden by environment variables, overridden by CLI flags. Each
// layer is an Options value with unset fields left nil; Merge fills gaps
// from a lower-priority source without clobbering anything already set.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Options is a sparse configuration record: every field is a pointer so
// "unset" (nil) is distinguishable from the zero value of its type.
type Options struct {
	// Emulation
	BootROMPath  *string
	SavePath     *string
	StrictHeader *bool

	// Interface
	Backend *string
	Scale   *int

	// Debug
	LogLevel  *string
	TracePath *string
}

// Default returns the hardcoded baseline every other layer overrides.
func Default() Options {
	return Options{
		StrictHeader: boolPtr(false),
		Backend:      stringPtr("terminal"),
		Scale:        intPtr(2),
		LogLevel:     stringPtr("info"),
	}
}

// Merge returns a copy of o with every nil field filled in from lower,
// a lower-priority source. Fields already set on o are left untouched.
func (o Options) Merge(lower Options) Options {
	result := o
	if result.BootROMPath == nil {
		result.BootROMPath = lower.BootROMPath
	}
	if result.SavePath == nil {
		result.SavePath = lower.SavePath
	}
	if result.StrictHeader == nil {
		result.StrictHeader = lower.StrictHeader
	}
	if result.Backend == nil {
		result.Backend = lower.Backend
	}
	if result.Scale == nil {
		result.Scale = lower.Scale
	}
	if result.LogLevel == nil {
		result.LogLevel = lower.LogLevel
	}
	if result.TracePath == nil {
		result.TracePath = lower.TracePath
	}
	return result
}

// RebaseRelativePaths resolves every path-shaped field that isn't already
// absolute against root, so a config file's relative paths are interpreted
// relative to the file's own directory rather than the process's cwd.
func (o *Options) RebaseRelativePaths(root string) {
	rebase := func(p *string) {
		if p != nil && *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(root, *p)
		}
	}
	rebase(o.BootROMPath)
	rebase(o.SavePath)
	rebase(o.TracePath)
}

// FromFile reads a JSON config file into an Options. A missing file is
// not an error — it simply contributes no overrides.
func FromFile(path string) (Options, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Options{}, nil
	}
	if err != nil {
		return Options{}, fmt.Errorf("reading config %s: %w", path, err)
	}

	var o Options
	if err := json.Unmarshal(data, &o); err != nil {
		return Options{}, fmt.Errorf("parsing config %s: %w", path, err)
	}
	o.RebaseRelativePaths(filepath.Dir(path))
	return o, nil
}

// envPrefix namespaces every environment variable this package reads.
const envPrefix = "DMGCORE_"

// FromEnv reads DMGCORE_* environment variables into an Options.
func FromEnv() Options {
	var o Options
	if v, ok := lookupEnv("BOOT_ROM"); ok {
		o.BootROMPath = &v
	}
	if v, ok := lookupEnv("SAVE_PATH"); ok {
		o.SavePath = &v
	}
	if v, ok := lookupEnv("STRICT_HEADER"); ok {
		b := v == "1" || v == "true"
		o.StrictHeader = &b
	}
	if v, ok := lookupEnv("BACKEND"); ok {
		o.Backend = &v
	}
	if v, ok := lookupEnv("SCALE"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			o.Scale = &n
		}
	}
	if v, ok := lookupEnv("LOG_LEVEL"); ok {
		o.LogLevel = &v
	}
	if v, ok := lookupEnv("TRACE_PATH"); ok {
		o.TracePath = &v
	}
	return o
}

func lookupEnv(name string) (string, bool) {
	return os.LookupEnv(envPrefix + name)
}

func stringPtr(s string) *string { return &s }
func boolPtr(b bool) *bool       { return &b }
func intPtr(i int) *int          { return &i }
