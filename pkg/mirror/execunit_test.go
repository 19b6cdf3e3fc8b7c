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

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"
)

// 🧪 TestGoUnitRuns tests the start/join contract
func TestGoUnitRuns(t *testing.T) {
	ran := make(chan struct{})
	unit := NewGoUnit("test", func(ctx context.Context) error {
		close(ran)
		return nil
	})

	require.NoError(t, unit.Start(context.Background()))
	require.NoError(t, unit.Join())

	select {
	case <-ran:
	default:
		t.Fatal("unit function never ran")
	}
}

// 🧪 TestGoUnitPropagatesError tests that Join surfaces the run error
func TestGoUnitPropagatesError(t *testing.T) {
	boom := errors.New("boom")
	unit := NewGoUnit("angry", func(ctx context.Context) error {
		return boom
	})

	require.NoError(t, unit.Start(context.Background()))
	err := unit.Join()
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "angry")
}

// 🧪 TestGoUnitRequiresRun tests construction misuse
func TestGoUnitRequiresRun(t *testing.T) {
	unit := NewGoUnit("empty", nil)
	assert.Error(t, unit.Start(context.Background()))
}
