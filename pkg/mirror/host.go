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
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// DefaultPoolSize is the worker count used when none is configured.
const DefaultPoolSize = 5

// 🚶 WalkFunc enumerates a source tree, reporting every directory before
// any file beneath it. Enumeration is an external collaborator; the
// host only consumes this interface.
type WalkFunc func(ctx context.Context, onDir, onFile func(relPath string) error) error

// ✅ VerifyFunc checks the finished run. It receives the collected
// tree-relative result paths and returns a StructuralMismatchError on
// divergence.
type VerifyFunc func(ctx context.Context, results []string) error

// 🔧 Options configures a Host.
type Options struct {
	// Source is the readable directory tree to replicate.
	Source string
	// Destination is the tree to create. It must not exist yet.
	Destination string
	// PoolSize is the number of workers. Zero means DefaultPoolSize.
	PoolSize int
	// Delay is an optional artificial per-task delay (latency hook).
	Delay time.Duration
	// Receiver selects the receiver's execution-unit kind.
	Receiver ReceiverKind
	// Walk enumerates the source tree.
	Walk WalkFunc
	// Write writes one placeholder artifact.
	Write ArtifactWriter
	// Verify checks the finished run. Optional.
	Verify VerifyFunc
	// Sink receives the aggregated diagnostic stream.
	Sink zerolog.Logger
}

// 📊 Report is the outcome of one run. CountErr, VerifyErr and
// WorkerErrs are non-fatal findings: the run completed, but not
// necessarily correctly.
type Report struct {
	Submitted  int
	Received   int
	Collection []string
	CountErr   error
	VerifyErr  error
	WorkerErrs []error
	Elapsed    time.Duration
}

// 🎮 Host owns the whole pipeline: it validates paths, mirrors
// directories synchronously, distributes tasks across the pool,
// aggregates results through the receiver, and tears everything down on
// interruption.
type Host struct {
	opts Options
}

// 🏭 NewHost creates a host after checking required collaborators.
func NewHost(opts Options) (*Host, error) {
	if opts.Source == "" || opts.Destination == "" {
		return nil, errors.Errorf("source and destination are required")
	}
	if opts.Walk == nil {
		return nil, errors.Errorf("walk function is required")
	}
	if opts.Write == nil {
		return nil, errors.Errorf("artifact writer is required")
	}
	if opts.PoolSize < 0 {
		return nil, errors.Errorf("pool size must be positive, got %d", opts.PoolSize)
	}
	if opts.PoolSize == 0 {
		opts.PoolSize = DefaultPoolSize
	}
	return &Host{opts: opts}, nil
}

// 🏃 Run executes the pipeline. A PathError aborts before any queue or
// unit exists; a CancellationError is returned after the teardown
// drain; otherwise the Report carries every non-fatal finding.
func (h *Host) Run(ctx context.Context) (*Report, error) {
	start := time.Now()

	// Fail fast on bad paths: nothing has been created yet.
	if err := h.validate(); err != nil {
		return nil, err
	}
	if err := os.Mkdir(h.opts.Destination, 0o755); err != nil {
		return nil, errors.Errorf("creating destination root: %w", err)
	}

	// The three channels are the only shared mutable state.
	work := NewQueue[WorkMsg]()
	results := NewQueue[ResultMsg]()
	logs := NewLogStream()
	handoff := NewOneShot[[]string]()
	ctl := NewController(h.opts.PoolSize, work, results, logs, handoff)

	agg := NewAggregator(logs, h.opts.Sink).Unit()
	if err := agg.Start(ctx); err != nil {
		return nil, err
	}

	// Receiver strictly before workers: a result queue with no consumer
	// could leave a worker blocked forever on publish.
	recv, err := NewReceiver(h.opts.Receiver, h.opts.Destination, results, logs, handoff)
	if err != nil {
		return nil, err
	}
	if err := recv.Start(ctx); err != nil {
		return nil, err
	}

	workers := make([]ExecUnit, h.opts.PoolSize)
	for i := range workers {
		w := NewWorker(i+1, h.opts.Destination, h.opts.Delay, h.opts.Write, work, results, logs)
		workers[i] = w.Unit()
		if err := workers[i].Start(ctx); err != nil {
			return nil, ctl.Abort(err, workers[:i], recv, agg)
		}
	}

	// Enumerate: directories are mirrored synchronously here, before any
	// task beneath them is published, so no worker ever races a missing
	// parent.
	submitted := 0
	walkErr := h.opts.Walk(ctx,
		func(relPath string) error {
			dir := filepath.Join(h.opts.Destination, filepath.FromSlash(relPath))
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return errors.Errorf("mirroring directory %q: %w", relPath, err)
			}
			return nil
		},
		func(relPath string) error {
			if err := work.Put(ctx, Task(relPath)); err != nil {
				return err
			}
			submitted++
			logs.Record(ctx, zerolog.DebugLevel, "host", "pushed task", relPath)
			return nil
		},
	)
	if walkErr != nil {
		if ctx.Err() != nil {
			return nil, ctl.Abort(ctx.Err(), workers, recv, agg)
		}
		ctl.Teardown(workers, recv, agg)
		return nil, errors.Errorf("enumerating source tree: %w", walkErr)
	}

	// One stop marker per worker; each consumption loop terminates
	// independently on reading one.
	for range workers {
		if err := work.Put(ctx, Stop()); err != nil {
			return nil, ctl.Abort(ctx.Err(), workers, recv, agg)
		}
	}

	var workerErrs []error
	for _, w := range workers {
		if err := w.Join(); err != nil {
			workerErrs = append(workerErrs, err)
		}
		logs.Record(ctx, zerolog.DebugLevel, "host", "joined worker", "")
	}
	if ctx.Err() != nil {
		return nil, ctl.Abort(ctx.Err(), nil, recv, agg)
	}

	// All workers are done; end the result stream and collect.
	if err := results.Put(ctx, EndOfResults()); err != nil {
		return nil, ctl.Abort(ctx.Err(), nil, recv, agg)
	}
	collection, err := handoff.Get(ctx)
	if err != nil {
		return nil, ctl.Abort(ctx.Err(), nil, recv, agg)
	}
	if err := recv.Join(); err != nil {
		logs.End(ctx)
		_ = agg.Join()
		ctl.CloseQueues()
		return nil, errors.Errorf("joining receiver: %w", err)
	}

	report := &Report{
		Submitted:  submitted,
		Received:   len(collection),
		Collection: collection,
		WorkerErrs: workerErrs,
	}
	if report.Received != report.Submitted {
		report.CountErr = &CountMismatchError{Submitted: submitted, Received: report.Received}
		logs.Record(ctx, zerolog.ErrorLevel, "host", report.CountErr.Error(), "")
	}

	if h.opts.Verify != nil {
		report.VerifyErr = h.opts.Verify(ctx, collection)
	}

	logs.End(ctx)
	if err := agg.Join(); err != nil {
		return nil, errors.Errorf("joining log aggregator: %w", err)
	}

	// Every unit is joined; closing the queues ends their pumps. A
	// worker that died early leaves its stop marker unconsumed, and the
	// close-side drain clears it.
	ctl.CloseQueues()

	report.Elapsed = time.Since(start)
	return report, nil
}

// 🚫 validate applies the pre-flight path checks.
func (h *Host) validate() error {
	info, err := os.Stat(h.opts.Source)
	if err != nil {
		if os.IsNotExist(err) {
			return &PathError{Path: h.opts.Source, Reason: "does not exist"}
		}
		return errors.Errorf("stating source: %w", err)
	}
	if !info.IsDir() {
		return &PathError{Path: h.opts.Source, Reason: "is not a directory"}
	}
	if _, err := os.Stat(h.opts.Destination); err == nil {
		return &PathError{Path: h.opts.Destination, Reason: "already exists"}
	} else if !os.IsNotExist(err) {
		return errors.Errorf("stating destination: %w", err)
	}
	return nil
}
