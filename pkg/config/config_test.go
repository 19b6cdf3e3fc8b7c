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
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 🧪 TestParserSelection tests parser selection by file extension
func TestParserSelection(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		wantNil  bool
	}{
		{name: "yaml_file", filename: "config.yaml"},
		{name: "yml_file", filename: "config.yml"},
		{name: "hcl_file", filename: ".mirrorpool.hcl"},
		{name: "unknown_file", filename: "config.toml", wantNil: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := GetParser(tt.filename)
			if tt.wantNil {
				assert.Nil(t, p)
			} else {
				assert.NotNil(t, p)
			}
		})
	}
}

// 🧪 TestLoadYAML tests loading a YAML config file
func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".mirrorpool.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
source: /data/in
destination: /data/out
workers: 3
task_delay: 20ms
receiver: process
log_level: debug
ignore_patterns:
  - "**/*.tmp"
`), 0o644))

	cfg, err := Load(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "/data/in", cfg.Source)
	assert.Equal(t, "/data/out", cfg.Destination)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, 20*time.Millisecond, cfg.Delay())
	assert.Equal(t, "process", cfg.Receiver)
	assert.Equal(t, []string{"**/*.tmp"}, cfg.IgnorePatterns)
}

// 🧪 TestLoadHCL tests loading an HCL config file
func TestLoadHCL(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".mirrorpool.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`
source          = "/data/in"
destination     = "/data/out"
workers         = 8
receiver        = "task"
ignore_patterns = ["**/*.bak"]
`), 0o644))

	cfg, err := Load(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "/data/in", cfg.Source)
	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, "task", cfg.Receiver)
	assert.Equal(t, []string{"**/*.bak"}, cfg.IgnorePatterns)
}

// 🧪 TestLoadMissingFile tests the read error path
func TestLoadMissingFile(t *testing.T) {
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

// 🧪 TestLevel tests the configured-level accessor
func TestLevel(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want zerolog.Level
	}{
		{name: "default_is_info", cfg: Config{}, want: zerolog.InfoLevel},
		{name: "warn", cfg: Config{LogLevel: "warn"}, want: zerolog.WarnLevel},
		{name: "debug", cfg: Config{LogLevel: "debug"}, want: zerolog.DebugLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.Level())
		})
	}
}

// 🧪 TestValidate tests default filling and rejection
func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{name: "empty_is_fine", cfg: Config{}},
		{name: "task_receiver", cfg: Config{Receiver: "task"}},
		{name: "process_receiver", cfg: Config{Receiver: "process"}},
		{name: "negative_workers", cfg: Config{Workers: -1}, wantErr: "workers"},
		{name: "bad_delay", cfg: Config{TaskDelay: "soon"}, wantErr: "task_delay"},
		{name: "negative_delay", cfg: Config{TaskDelay: "-5ms"}, wantErr: "task_delay"},
		{name: "bad_receiver", cfg: Config{Receiver: "thread"}, wantErr: "receiver"},
		{name: "bad_level", cfg: Config{LogLevel: "chatty"}, wantErr: "log_level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}
