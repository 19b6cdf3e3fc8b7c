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
	"path/filepath"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 🎛️ ReceiverKind selects how the receiver executes.
type ReceiverKind string

const (
	// ReceiverTask runs the receiver as a goroutine in this process.
	ReceiverTask ReceiverKind = "task"
	// ReceiverProcess runs the aggregation loop in a child process.
	ReceiverProcess ReceiverKind = "process"
)

// 🏭 NewReceiver builds the sole consumer of the result queue as an
// execution unit of the requested kind. The two kinds are behaviorally
// identical from the host's perspective: start, join, deliver the
// collection once through the one-shot handoff.
func NewReceiver(kind ReceiverKind, destRoot string, results *Queue[ResultMsg],
	logs *LogStream, out *OneShot[[]string]) (ExecUnit, error) {
	switch kind {
	case "", ReceiverTask:
		r := &receiver{destRoot: destRoot, results: results, logs: logs, out: out}
		return NewGoUnit("receiver", r.run), nil
	case ReceiverProcess:
		return newProcReceiver(destRoot, results, logs, out), nil
	default:
		return nil, errors.Errorf("unknown receiver kind %q", kind)
	}
}

// 📥 receiver aggregates results into one collection. Aggregation needs
// exactly one linearization point, so there is never more than one of
// these per run.
type receiver struct {
	destRoot string
	results  *Queue[ResultMsg]
	logs     *LogStream
	out      *OneShot[[]string]

	collected []string
}

// 🔄 run reads results until the stream-end marker, then delivers the
// collection exactly once.
func (r *receiver) run(ctx context.Context) error {
	for {
		select {
		case msg, ok := <-r.results.Out():
			if !ok || msg.Kind == ResultEnd {
				r.out.Set(r.collected)
				return nil
			}
			if err := r.collect(ctx, msg.AbsPath); err != nil {
				return err
			}
		case <-ctx.Done():
			// Deliver the partial collection so shutdown can account
			// for it, then surface the interruption.
			r.out.Set(r.collected)
			return errors.Errorf("receiver cancelled: %w", ctx.Err())
		}
	}
}

// ➕ collect converts one absolute result path to a tree-relative path
// and appends it. Paths are distinct by construction, so the collection
// is duplicate-free without a set.
func (r *receiver) collect(ctx context.Context, absPath string) error {
	relPath, err := filepath.Rel(r.destRoot, absPath)
	if err != nil {
		return errors.Errorf("relativizing result %q: %w", absPath, err)
	}
	relPath = filepath.ToSlash(relPath)
	r.collected = append(r.collected, relPath)
	r.logs.Record(ctx, zerolog.DebugLevel, "receiver", "obtained result", relPath)
	return nil
}
