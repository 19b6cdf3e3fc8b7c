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
	"time"

	"gitlab.com/tozd/go/errors"
)

// drainGrace is the per-attempt wait DrainN allows the pump to surface
// a buffered entry. It bounds each attempt; DrainN never spins.
const drainGrace = 5 * time.Millisecond

// 📦 Queue is an unbounded multi-producer/multi-consumer queue. A pump
// goroutine shuttles entries from the in channel to the out channel
// through a slice buffer, so Put never blocks on a slow consumer and
// consumers can select on Out alongside a cancellation signal.
type Queue[T any] struct {
	in  chan T
	out chan T
}

// 🏭 NewQueue creates an unbounded queue and starts its pump.
func NewQueue[T any]() *Queue[T] {
	q := &Queue[T]{
		in:  make(chan T),
		out: make(chan T),
	}
	go q.pump()
	return q
}

// 🔄 pump moves entries from in to out, buffering while out is not ready.
func (q *Queue[T]) pump() {
	defer close(q.out)

	var buf []T
	for {
		if len(buf) == 0 {
			v, ok := <-q.in
			if !ok {
				return
			}
			buf = append(buf, v)
			continue
		}
		select {
		case v, ok := <-q.in:
			if !ok {
				// Flush what is left before closing out.
				for _, v := range buf {
					q.out <- v
				}
				return
			}
			buf = append(buf, v)
		case q.out <- buf[0]:
			buf = buf[1:]
		}
	}
}

// 📤 Put enqueues one entry, honoring cancellation.
func (q *Queue[T]) Put(ctx context.Context, v T) error {
	select {
	case q.in <- v:
		return nil
	case <-ctx.Done():
		return errors.Errorf("enqueueing: %w", ctx.Err())
	}
}

// 📥 Out returns the consumption channel, suitable for select.
func (q *Queue[T]) Out() <-chan T {
	return q.out
}

// 🫳 TryGet takes one entry without blocking. The second return is false
// when no entry is immediately available.
func (q *Queue[T]) TryGet() (T, bool) {
	select {
	case v, ok := <-q.out:
		return v, ok
	default:
		var zero T
		return zero, false
	}
}

// 🧹 DrainN removes up to max entries and reports how many were
// removed. Each attempt waits at most drainGrace for the pump, so the
// whole drain is bounded. Used by shutdown to release any producer
// still blocked on a queue that will never again be serviced.
func (q *Queue[T]) DrainN(max int) int {
	n := 0
	for i := 0; i < max; i++ {
		select {
		case _, ok := <-q.out:
			if !ok {
				return n
			}
			n++
		case <-time.After(drainGrace):
			return n
		}
	}
	return n
}

// 🔒 Close stops the pump. Entries already buffered are still delivered
// to Out before it closes. Put after Close panics, so Close belongs to
// the single owner of the producing side.
func (q *Queue[T]) Close() {
	close(q.in)
}
