// Licensed to the Apache Software Foundation (ASF) under one
// or more contributor license agreements.  See the NOTICE file
// distributed with this work for additional information
// regarding copyright ownership.  The ASF licenses this file
// to you under the Apache License, Version 2.0 (the
// "License"); you may not use this file except in compliance
// with the License.  You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config loads the settings that are fixed for the lifetime of a
// process: arena size, whether arena checks run, which raw allocator backs
// the arenas, logging and metrics.
package config

import (
	"io"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/nw4j/nativestack/memory"
	"github.com/nw4j/nativestack/stack"
	"github.com/rs/zerolog"
	"golang.org/x/xerrors"
)

// AllocatorKind selects the raw memory source.
type AllocatorKind string

const (
	AllocatorGo   AllocatorKind = "go"   // Go heap
	AllocatorMmap AllocatorKind = "mmap" // anonymous mappings, unix only
)

// Environment overrides, applied after the file.
const (
	EnvDisableChecks = "NATIVESTACK_DISABLE_CHECKS"
	EnvTracking      = "NATIVESTACK_TRACKING"
	EnvCapacity      = "NATIVESTACK_CAPACITY"
)

// StackConfiguration sizes the arenas
type StackConfiguration struct {
	Capacity     int  `toml:"capacity"`
	EnableChecks bool `toml:"enable_checks"`
}

// AllocatorConfiguration selects and decorates the raw allocator
type AllocatorConfiguration struct {
	Kind     AllocatorKind `toml:"kind"`
	Tracking bool          `toml:"tracking"` // wrap in memory.CheckedAllocator
	Limit    int           `toml:"limit"`    // byte budget, 0 = unlimited
}

// LoggingConfiguration controls logging behavior
type LoggingConfiguration struct {
	Verbose bool   `toml:"verbose"`
	Format  string `toml:"format"` // "console" or "json"
}

// PrometheusConfiguration for metrics
type PrometheusConfiguration struct {
	Enabled bool   `toml:"enabled"`
	Address string `toml:"address"`
}

type Configuration struct {
	Stack      StackConfiguration      `toml:"stack"`
	Allocator  AllocatorConfiguration  `toml:"allocator"`
	Logging    LoggingConfiguration    `toml:"logging"`
	Prometheus PrometheusConfiguration `toml:"prometheus"`
}

// Default returns the configuration used when no file is given.
func Default() *Configuration {
	return &Configuration{
		Stack: StackConfiguration{
			Capacity:     64 << 10,
			EnableChecks: true,
		},
		Allocator: AllocatorConfiguration{
			Kind: AllocatorGo,
		},
		Logging: LoggingConfiguration{
			Format: "console",
		},
		Prometheus: PrometheusConfiguration{
			Address: "127.0.0.1:9090",
		},
	}
}

// Load reads the TOML file at path on top of the defaults, applies the
// environment overrides and validates the result. An empty path skips the
// file.
func Load(path string) (*Configuration, error) {
	c := Default()
	if path != "" {
		if _, err := toml.DecodeFile(path, c); err != nil {
			return nil, xerrors.Errorf("config: decoding %s: %w", path, err)
		}
	}
	if err := c.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Decode parses TOML text on top of the defaults. Environment overrides are
// not applied.
func Decode(data string) (*Configuration, error) {
	c := Default()
	if _, err := toml.Decode(data, c); err != nil {
		return nil, xerrors.Errorf("config: decoding: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Configuration) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvDisableChecks); ok {
		disable, err := strconv.ParseBool(v)
		if err != nil {
			return xerrors.Errorf("config: %s: %w", EnvDisableChecks, err)
		}
		c.Stack.EnableChecks = !disable
	}
	if v, ok := lookup(EnvTracking); ok {
		tracking, err := strconv.ParseBool(v)
		if err != nil {
			return xerrors.Errorf("config: %s: %w", EnvTracking, err)
		}
		c.Allocator.Tracking = tracking
	}
	if v, ok := lookup(EnvCapacity); ok {
		capacity, err := strconv.Atoi(v)
		if err != nil {
			return xerrors.Errorf("config: %s: %w", EnvCapacity, err)
		}
		c.Stack.Capacity = capacity
	}
	return nil
}

// Validate reports the first invalid setting.
func (c *Configuration) Validate() error {
	if c.Stack.Capacity <= 0 {
		return xerrors.Errorf("config: stack.capacity must be positive, got %d", c.Stack.Capacity)
	}
	switch c.Allocator.Kind {
	case AllocatorGo, AllocatorMmap:
	default:
		return xerrors.Errorf("config: unknown allocator.kind %q", c.Allocator.Kind)
	}
	if c.Allocator.Limit < 0 {
		return xerrors.Errorf("config: allocator.limit must not be negative, got %d", c.Allocator.Limit)
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return xerrors.Errorf("config: unknown logging.format %q", c.Logging.Format)
	}
	return nil
}

// NewAllocator builds the raw allocator described by the configuration. When
// tracking is on the returned CheckedAllocator is also the Allocator; it is
// nil otherwise.
func (c *Configuration) NewAllocator() (memory.Allocator, *memory.CheckedAllocator, error) {
	var mem memory.Allocator
	switch c.Allocator.Kind {
	case AllocatorMmap:
		m, err := newMmapAllocator()
		if err != nil {
			return nil, nil, err
		}
		mem = m
	default:
		mem = memory.NewGoAllocator()
	}

	if c.Allocator.Limit > 0 {
		mem = memory.NewLimitedAllocator(mem, c.Allocator.Limit)
	}

	var checked *memory.CheckedAllocator
	if c.Allocator.Tracking {
		checked = memory.NewCheckedAllocator(mem)
		mem = checked
	}
	return mem, checked, nil
}

// StackConfig returns the arena settings, logging through log.
func (c *Configuration) StackConfig(log zerolog.Logger) stack.Config {
	return stack.Config{EnableChecks: c.Stack.EnableChecks, Logger: log}
}

// NewLogger builds the process logger. Console output goes to w in human
// readable form, json output goes to w as is.
func (c *Configuration) NewLogger(w io.Writer) zerolog.Logger {
	if c.Logging.Format != "json" {
		w = zerolog.ConsoleWriter{Out: w}
	}
	lvl := zerolog.InfoLevel
	if c.Logging.Verbose {
		lvl = zerolog.DebugLevel
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}
