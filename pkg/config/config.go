// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 🔌 Parser is the interface for config parsers
type Parser interface {
	// 📝 Parse parses the config from bytes
	Parse(ctx context.Context, data []byte) (*Config, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// 📚 Config represents the complete configuration
type Config struct {
	Source         string   `json:"source" yaml:"source"`
	Destination    string   `json:"destination" yaml:"destination"`
	Workers        int      `json:"workers,omitempty" yaml:"workers,omitempty"`
	TaskDelay      string   `json:"task_delay,omitempty" yaml:"task_delay,omitempty"`
	Receiver       string   `json:"receiver,omitempty" yaml:"receiver,omitempty"`
	LogLevel       string   `json:"log_level,omitempty" yaml:"log_level,omitempty"`
	IgnorePatterns []string `json:"ignore_patterns,omitempty" yaml:"ignore_patterns,omitempty"`
}

// 🎯 Load loads the configuration from a file
func Load(ctx context.Context, path string) (*Config, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading configuration")

	// Read config file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	// Get parser
	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("no parser found for file: %s", path)
	}

	// Parse config
	cfg, err := p.Parse(ctx, data)
	if err != nil {
		return nil, errors.Errorf("parsing config: %w", err)
	}

	// Validate
	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// ✅ Validate fills defaults and rejects inconsistent values. Source
// and destination may still come from CLI arguments, so their presence
// is checked later, at wiring time.
func (c *Config) Validate() error {
	if c.Workers < 0 {
		return errors.Errorf("workers must be positive, got %d", c.Workers)
	}
	if c.TaskDelay != "" {
		d, err := time.ParseDuration(c.TaskDelay)
		if err != nil {
			return errors.Errorf("parsing task_delay: %w", err)
		}
		if d < 0 {
			return errors.Errorf("task_delay must not be negative, got %s", c.TaskDelay)
		}
	}
	switch c.Receiver {
	case "", "task", "process":
	default:
		return errors.Errorf("receiver must be \"task\" or \"process\", got %q", c.Receiver)
	}
	if c.LogLevel != "" {
		if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
			return errors.Errorf("parsing log_level: %w", err)
		}
	}
	return nil
}

// 🎚️ Level returns the configured zerolog level, defaulting to info.
// Validate must have accepted the config first.
func (c *Config) Level() zerolog.Level {
	if c.LogLevel == "" {
		return zerolog.InfoLevel
	}
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.InfoLevel
	}
	return lvl
}

// ⏱️ Delay returns the parsed task delay. Validate must have accepted
// the config first.
func (c *Config) Delay() time.Duration {
	if c.TaskDelay == "" {
		return 0
	}
	d, err := time.ParseDuration(c.TaskDelay)
	if err != nil {
		return 0
	}
	return d
}
