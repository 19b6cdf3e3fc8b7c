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

package mirror

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testSink builds a throwaway zerolog sink for aggregator tests.
func testSink(t *testing.T) zerolog.Logger {
	t.Helper()
	return zerolog.New(zerolog.NewTestWriter(t))
}

// syncBuffer guards a bytes.Buffer for concurrent zerolog writes.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// 🧪 TestAggregatorFunnels tests many producers, one consumer, one stream
func TestAggregatorFunnels(t *testing.T) {
	ctx := context.Background()
	logs := NewLogStream()

	var buf syncBuffer
	agg := NewAggregator(logs, zerolog.New(&buf)).Unit()
	require.NoError(t, agg.Start(ctx))

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(origin string) {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				logs.Record(ctx, zerolog.DebugLevel, origin, "work item", "some/path")
			}
		}(string(rune('a' + i)))
	}
	wg.Wait()

	logs.End(ctx)
	require.NoError(t, agg.Join())

	// Every record reached the sink as a complete, uninterleaved line.
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 50)
	for _, line := range lines {
		assert.Contains(t, line, `"origin"`)
		assert.Contains(t, line, "work item")
	}
}

// 🧪 TestAggregatorStopsOnEnd tests the LogEnd marker
func TestAggregatorStopsOnEnd(t *testing.T) {
	ctx := context.Background()
	logs := NewLogStream()

	agg := NewAggregator(logs, testSink(t)).Unit()
	require.NoError(t, agg.Start(ctx))

	logs.End(ctx)

	done := make(chan error, 1)
	go func() { done <- agg.Join() }()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("aggregator did not stop on the end marker")
	}
}

// 🧪 TestAggregatorFlushesOnCancel tests the interrupted-run flush
func TestAggregatorFlushesOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	logs := NewLogStream()

	var buf syncBuffer
	agg := NewAggregator(logs, zerolog.New(&buf)).Unit()

	logs.Record(context.Background(), zerolog.WarnLevel, "host", "late news", "")
	require.NoError(t, agg.Start(ctx))

	cancel()
	require.NoError(t, agg.Join())
	assert.Contains(t, buf.String(), "late news")
}
