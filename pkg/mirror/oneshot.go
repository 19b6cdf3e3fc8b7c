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
	"sync"

	"gitlab.com/tozd/go/errors"
)

// 🎁 OneShot is a single-producer/single-consumer handoff primitive with
// exactly-once-write, exactly-once-read semantics. The receiver uses it
// to deliver the final collection to the host; the writer never blocks,
// so the receiver cannot be stranded when the host stops listening.
type OneShot[T any] struct {
	once sync.Once
	ch   chan T
}

// 🏭 NewOneShot creates an empty one-shot handoff.
func NewOneShot[T any]() *OneShot[T] {
	return &OneShot[T]{ch: make(chan T, 1)}
}

// ✍️ Set fulfills the handoff. The first call wins and returns true;
// every later call is a no-op returning false.
func (o *OneShot[T]) Set(v T) bool {
	wrote := false
	o.once.Do(func() {
		o.ch <- v
		wrote = true
	})
	return wrote
}

// 📖 Get blocks until the value is set or ctx is done. It must be called
// at most once; the value is consumed by the read.
func (o *OneShot[T]) Get(ctx context.Context) (T, error) {
	select {
	case v := <-o.ch:
		return v, nil
	case <-ctx.Done():
		var zero T
		return zero, errors.Errorf("waiting for handoff: %w", ctx.Err())
	}
}

// 🫳 TryGet consumes the value if it was already set. Shutdown uses this
// to collect an already-sent but unread value without blocking.
func (o *OneShot[T]) TryGet() (T, bool) {
	select {
	case v := <-o.ch:
		return v, true
	default:
		var zero T
		return zero, false
	}
}
