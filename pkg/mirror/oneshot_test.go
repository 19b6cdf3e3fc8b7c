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
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 🧪 TestOneShotSetGet tests the exactly-once handoff
func TestOneShotSetGet(t *testing.T) {
	o := NewOneShot[[]string]()

	assert.True(t, o.Set([]string{"a", "b"}), "first write should win")
	assert.False(t, o.Set([]string{"x"}), "second write should be a no-op")

	got, err := o.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got)
}

// 🧪 TestOneShotGetBlocks tests that the reader blocks until the write
func TestOneShotGetBlocks(t *testing.T) {
	o := NewOneShot[int]()

	go func() {
		time.Sleep(10 * time.Millisecond)
		o.Set(42)
	}()

	got, err := o.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, got)
}

// 🧪 TestOneShotGetCancelled tests that cancellation unblocks the reader
func TestOneShotGetCancelled(t *testing.T) {
	o := NewOneShot[int]()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := o.Get(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

// 🧪 TestOneShotTryGet tests the non-blocking read used by shutdown
func TestOneShotTryGet(t *testing.T) {
	o := NewOneShot[int]()

	_, ok := o.TryGet()
	assert.False(t, ok, "unset handoff should have nothing to take")

	o.Set(7)
	got, ok := o.TryGet()
	assert.True(t, ok)
	assert.Equal(t, 7, got)

	_, ok = o.TryGet()
	assert.False(t, ok, "value is consumed by the read")
}
