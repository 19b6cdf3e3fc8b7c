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

	"github.com/rs/zerolog"
)

// drainBudget bounds the non-blocking drain attempts per queue during
// teardown. Leftovers beyond the budget are abandoned with the process.
const drainBudget = 4096

// 🚦 ctlState is the teardown state machine.
type ctlState int

const (
	stateRunning ctlState = iota
	stateAborting
	stateDrained
)

// ✋ Controller tears the pipeline down after an external interruption.
// It reuses the success path's termination messages (stop markers,
// stream-end markers), so abort is a degenerate case of normal shutdown
// rather than a separate protocol.
type Controller struct {
	poolSize int
	work     *Queue[WorkMsg]
	results  *Queue[ResultMsg]
	logs     *LogStream
	handoff  *OneShot[[]string]

	state ctlState
}

// 🏭 NewController creates a controller over the pipeline's channels.
func NewController(poolSize int, work *Queue[WorkMsg], results *Queue[ResultMsg],
	logs *LogStream, handoff *OneShot[[]string]) *Controller {
	return &Controller{
		poolSize: poolSize,
		work:     work,
		results:  results,
		logs:     logs,
		handoff:  handoff,
	}
}

// 🛑 Abort drives Running → Aborting → Drained and returns the
// interruption wrapped in a CancellationError so the caller can re-raise
// it.
func (c *Controller) Abort(cause error, workers []ExecUnit, recv, agg ExecUnit) error {
	c.Teardown(workers, recv, agg)
	return &CancellationError{Cause: cause}
}

// 🧹 Teardown publishes the success path's termination messages, joins
// every unit, and drains what nobody will service again. Join errors are
// expected here (cancelled units surface their context error) and are
// deliberately not collected.
func (c *Controller) Teardown(workers []ExecUnit, recv, agg ExecUnit) {
	// Markers are published on a fresh context: the run context may be
	// the thing that was just cancelled.
	ctx := context.Background()

	// Running -> Aborting: same termination messages as a clean finish.
	c.state = stateAborting
	for i := 0; i < c.poolSize; i++ {
		_ = c.work.Put(ctx, Stop())
	}
	_ = c.results.Put(ctx, EndOfResults())
	c.logs.Record(ctx, zerolog.WarnLevel, "host", "aborting on interruption", "")
	c.logs.End(ctx)

	// Aborting -> Drained: join everything, then close the queues and
	// release whatever nobody will service again.
	for _, w := range workers {
		_ = w.Join()
	}
	if recv != nil {
		_ = recv.Join()
	}

	// The aggregator owns the log queue's consumption side until it
	// terminates; joining it before any drain keeps the end marker from
	// being stolen out from under it.
	if agg != nil {
		_ = agg.Join()
	}

	// A collection sent but never read would strand nothing here (the
	// handoff writer does not block), but consuming it keeps the
	// exactly-once-read contract intact.
	_, _ = c.handoff.TryGet()

	c.CloseQueues()
	c.state = stateDrained
}

// 🔐 CloseQueues closes every pipeline queue and consumes the flush so
// the pumps terminate. Only callable once every producer and every
// competing consumer has been joined.
func (c *Controller) CloseQueues() {
	c.work.Close()
	c.work.DrainN(drainBudget)
	c.results.Close()
	c.results.DrainN(drainBudget)
	c.logs.Close()
	c.logs.DrainN(drainBudget)
}
