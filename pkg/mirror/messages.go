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
	"time"

	"github.com/rs/zerolog"
)

// 📬 WorkKind tags the two message variants carried by the work queue.
// A tagged variant keeps the stop signal disjoint from every legal path,
// so no filename can ever be mistaken for a termination marker.
type WorkKind int

const (
	// WorkTask asks a worker to create one artifact.
	WorkTask WorkKind = iota
	// WorkStop tells exactly one worker to stop consuming.
	WorkStop
)

// String returns a string representation of WorkKind
func (k WorkKind) String() string {
	switch k {
	case WorkTask:
		return "task"
	case WorkStop:
		return "stop"
	default:
		return "unknown"
	}
}

// 📨 WorkMsg is one entry on the work queue. RelPath is meaningful only
// when Kind is WorkTask and is immutable once enqueued.
type WorkMsg struct {
	Kind    WorkKind `json:"kind"`
	RelPath string   `json:"rel_path,omitempty"`
}

// 🏷️ Task builds a task message for one tree-relative path.
func Task(relPath string) WorkMsg {
	return WorkMsg{Kind: WorkTask, RelPath: relPath}
}

// 🛑 Stop builds a per-worker stop marker.
func Stop() WorkMsg {
	return WorkMsg{Kind: WorkStop}
}

// 📬 ResultKind tags the two message variants carried by the result queue.
type ResultKind int

const (
	// ResultDone confirms one artifact was written.
	ResultDone ResultKind = iota
	// ResultEnd tells the receiver the stream is over.
	ResultEnd
)

// 📨 ResultMsg is one entry on the result queue. AbsPath is meaningful
// only when Kind is ResultDone.
type ResultMsg struct {
	Kind    ResultKind `json:"kind"`
	AbsPath string     `json:"abs_path,omitempty"`
}

// ✅ Done builds a completion message for one written artifact.
func Done(absPath string) ResultMsg {
	return ResultMsg{Kind: ResultDone, AbsPath: absPath}
}

// 🏁 EndOfResults builds the single result-stream terminator.
func EndOfResults() ResultMsg {
	return ResultMsg{Kind: ResultEnd}
}

// 📝 LogRecord is one diagnostic record funneled through the log channel.
// Ownership is transient: the producer relinquishes the record when it
// publishes it.
type LogRecord struct {
	Level   zerolog.Level
	Origin  string
	Time    time.Time
	Message string
	Path    string
}

// 📬 LogKind tags the two message variants carried by the log channel.
type LogKind int

const (
	// LogEntry carries one LogRecord.
	LogEntry LogKind = iota
	// LogEnd terminates the aggregator.
	LogEnd
)

// 📨 LogMsg is one entry on the log channel.
type LogMsg struct {
	Kind   LogKind
	Record LogRecord
}
