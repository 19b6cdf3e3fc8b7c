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
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// ✍️ ArtifactWriter writes one placeholder artifact at an absolute path.
// The core treats content generation as an external collaborator; the
// host wires in the real writer at construction.
type ArtifactWriter func(absPath string) error

// 👷 Worker pulls tagged messages off the work queue, writes one
// artifact per task, and publishes one result per completed task. It
// consumes exactly one stop marker and then exits; a marker consumed
// here never affects another worker.
type Worker struct {
	ID       int
	DestRoot string
	Delay    time.Duration

	write   ArtifactWriter
	work    *Queue[WorkMsg]
	results *Queue[ResultMsg]
	logs    *LogStream

	origin string
}

// 🏭 NewWorker creates one pool worker.
func NewWorker(id int, destRoot string, delay time.Duration, write ArtifactWriter,
	work *Queue[WorkMsg], results *Queue[ResultMsg], logs *LogStream) *Worker {
	return &Worker{
		ID:       id,
		DestRoot: destRoot,
		Delay:    delay,
		write:    write,
		work:     work,
		results:  results,
		logs:     logs,
		origin:   fmt.Sprintf("worker-%d", id),
	}
}

// 🚂 Unit returns the worker as a startable execution unit.
func (w *Worker) Unit() ExecUnit {
	return NewGoUnit(w.origin, w.run)
}

// 🔄 run is the consumption loop: one task or one stop marker per
// iteration, with cancellation observed at the same blocking point.
func (w *Worker) run(ctx context.Context) error {
	for {
		select {
		case msg, ok := <-w.work.Out():
			if !ok {
				return nil
			}
			if msg.Kind == WorkStop {
				w.logs.Record(ctx, zerolog.DebugLevel, w.origin, "consumed stop marker", "")
				return nil
			}
			if err := w.process(ctx, msg.RelPath); err != nil {
				return err
			}
		case <-ctx.Done():
			return errors.Errorf("worker %d cancelled: %w", w.ID, ctx.Err())
		}
	}
}

// 📄 process handles one task: optional injected delay, artifact write,
// result publication. A write failure is fatal to this worker; no retry
// is attempted and no result is published for the failed task.
func (w *Worker) process(ctx context.Context, relPath string) error {
	if w.Delay > 0 {
		t := time.NewTimer(w.Delay)
		select {
		case <-t.C:
		case <-ctx.Done():
			t.Stop()
			return errors.Errorf("worker %d cancelled: %w", w.ID, ctx.Err())
		}
	}

	absPath := filepath.Join(w.DestRoot, filepath.FromSlash(relPath))
	if err := w.write(absPath); err != nil {
		return &WorkerWriteError{WorkerID: w.ID, RelPath: relPath, Cause: err}
	}

	if err := w.results.Put(ctx, Done(absPath)); err != nil {
		return errors.Errorf("worker %d publishing result: %w", w.ID, err)
	}
	w.logs.Record(ctx, zerolog.DebugLevel, w.origin, "wrote artifact", relPath)
	return nil
}
