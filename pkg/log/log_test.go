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

package log

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 🧪 TestConsoleOutput tests the user-facing console mirror
func TestConsoleOutput(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, zerolog.InfoLevel)

	l.Info("hello")
	l.Success("done")
	l.Warning("careful")
	l.Error("broken")

	out := buf.String()
	assert.Contains(t, out, "hello")
	assert.Contains(t, out, "done")
	assert.Contains(t, out, "careful")
	assert.Contains(t, out, "broken")
}

// 🧪 TestFormattedVariants tests the printf-style helpers
func TestFormattedVariants(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, zerolog.InfoLevel)

	l.Infof("count: %d", 42)
	l.Successf("wrote %s", "d.txt")

	out := buf.String()
	assert.Contains(t, out, "count: 42")
	assert.Contains(t, out, "wrote d.txt")
}

// 🧪 TestContextRoundTrip tests storing and recovering the logger
func TestContextRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, zerolog.InfoLevel)

	ctx := NewContext(context.Background(), l)
	got := FromContext(ctx)
	require.Same(t, l, got)
}

// 🧪 TestFromContextPanics tests the missing-logger guard
func TestFromContextPanics(t *testing.T) {
	assert.Panics(t, func() {
		FromContext(context.Background())
	})
}
