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

	"github.com/rs/zerolog"
)

// 📢 LogStream funnels diagnostic records from every worker, the
// receiver, and the host into one channel. A single aggregator drains
// it, so interleaved output from concurrent producers reaches the sink
// as one ordered stream. The queue is unbounded: publishing a
// diagnostic never blocks pipeline progress.
type LogStream struct {
	q *Queue[LogMsg]
}

// 🏭 NewLogStream creates the shared log channel.
func NewLogStream() *LogStream {
	return &LogStream{q: NewQueue[LogMsg]()}
}

// 📝 Record publishes one diagnostic record.
func (s *LogStream) Record(ctx context.Context, level zerolog.Level, origin, msg, path string) {
	// Best effort: a cancelled context drops the record rather than
	// blocking a producer that is already tearing down.
	_ = s.q.Put(ctx, LogMsg{
		Kind: LogEntry,
		Record: LogRecord{
			Level:   level,
			Origin:  origin,
			Time:    time.Now(),
			Message: msg,
			Path:    path,
		},
	})
}

// 🏁 End publishes the single terminator for the aggregator.
func (s *LogStream) End(ctx context.Context) {
	_ = s.q.Put(ctx, LogMsg{Kind: LogEnd})
}

// 🧹 DrainN removes up to max pending records without blocking.
func (s *LogStream) DrainN(max int) int {
	return s.q.DrainN(max)
}

// 🔒 Close closes the underlying queue. Only callable once no producer
// remains.
func (s *LogStream) Close() {
	s.q.Close()
}

// 🗞️ Aggregator is the sole consumer of the log stream. It terminates
// on the LogEnd marker.
type Aggregator struct {
	stream *LogStream
	sink   zerolog.Logger
}

// 🏭 NewAggregator creates the aggregator for a stream and sink.
func NewAggregator(stream *LogStream, sink zerolog.Logger) *Aggregator {
	return &Aggregator{stream: stream, sink: sink}
}

// 🚂 Unit returns the aggregator as a startable execution unit.
func (a *Aggregator) Unit() ExecUnit {
	return NewGoUnit("log-aggregator", a.run)
}

// 🔄 run drains records to the sink until LogEnd or cancellation.
func (a *Aggregator) run(ctx context.Context) error {
	for {
		select {
		case msg, ok := <-a.stream.q.Out():
			if !ok || msg.Kind == LogEnd {
				return nil
			}
			a.emit(msg.Record)
		case <-ctx.Done():
			// Flush whatever is already queued before giving up, so an
			// interrupted run still shows where every unit stopped. Each
			// attempt is bounded by the same grace the queue drain uses.
			for {
				select {
				case msg, ok := <-a.stream.q.Out():
					if !ok || msg.Kind == LogEnd {
						return nil
					}
					a.emit(msg.Record)
				case <-time.After(drainGrace):
					return nil
				}
			}
		}
	}
}

// 🖋️ emit writes one record to the sink.
func (a *Aggregator) emit(rec LogRecord) {
	ev := a.sink.WithLevel(rec.Level).
		Str("origin", rec.Origin).
		Time("at", rec.Time)
	if rec.Path != "" {
		ev = ev.Str("path", rec.Path)
	}
	ev.Msg(rec.Message)
}
