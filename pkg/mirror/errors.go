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
	"fmt"
)

// Exit codes, one per error kind, so scripts can tell failure modes
// apart without parsing diagnostics.
const (
	ExitOK                 = 0
	ExitUsage              = 1
	ExitPath               = 2
	ExitStructuralMismatch = 3
	ExitCountMismatch      = 4
	ExitWorkerWrite        = 5
	ExitInterrupted        = 130
)

// 🚫 PathError reports a pre-flight path validation failure. It is
// always raised before any queue or worker exists, so nothing needs
// cleaning up.
type PathError struct {
	Path   string
	Reason string
}

func (e *PathError) Error() string {
	return fmt.Sprintf("path %q: %s", e.Path, e.Reason)
}

// ExitCode returns the process exit code for this error kind
func (e *PathError) ExitCode() int { return ExitPath }

// 🔢 CountMismatchError reports that the number of results received
// differs from the number of tasks submitted. Non-fatal: verification
// still runs and will catch the structural divergence independently.
type CountMismatchError struct {
	Submitted int
	Received  int
}

func (e *CountMismatchError) Error() string {
	return fmt.Sprintf("submitted %d tasks but received %d results", e.Submitted, e.Received)
}

// ExitCode returns the process exit code for this error kind
func (e *CountMismatchError) ExitCode() int { return ExitCountMismatch }

// 🧩 DiffEntry is one index-aligned triple from the first divergence
// window found by verification.
type DiffEntry struct {
	Index       int
	Source      string
	Destination string
	Result      string
}

func (d DiffEntry) String() string {
	return fmt.Sprintf("%d: %q, %q, %q", d.Index, d.Source, d.Destination, d.Result)
}

// 🧩 StructuralMismatchError reports that the source paths, destination
// paths, and result collection are not pairwise equal.
type StructuralMismatchError struct {
	SourceCount      int
	DestinationCount int
	ResultCount      int
	Window           []DiffEntry
}

func (e *StructuralMismatchError) Error() string {
	return fmt.Sprintf("trees diverge: %d source, %d destination, %d result paths",
		e.SourceCount, e.DestinationCount, e.ResultCount)
}

// ExitCode returns the process exit code for this error kind
func (e *StructuralMismatchError) ExitCode() int { return ExitStructuralMismatch }

// ✋ CancellationError reports that an external interruption tore the
// pipeline down. It wraps the interruption so the cause stays observable
// after the drain completes.
type CancellationError struct {
	Cause error
}

func (e *CancellationError) Error() string {
	return fmt.Sprintf("run interrupted: %v", e.Cause)
}

func (e *CancellationError) Unwrap() error { return e.Cause }

// ExitCode returns the process exit code for this error kind
func (e *CancellationError) ExitCode() int { return ExitInterrupted }

// 💥 WorkerWriteError reports an artifact-write failure. It is fatal to
// the worker that hit it: the worker stops consuming and surfaces this
// from its join. No retry is attempted anywhere.
type WorkerWriteError struct {
	WorkerID int
	RelPath  string
	Cause    error
}

func (e *WorkerWriteError) Error() string {
	return fmt.Sprintf("worker %d: writing %q: %v", e.WorkerID, e.RelPath, e.Cause)
}

func (e *WorkerWriteError) Unwrap() error { return e.Cause }

// ExitCode returns the process exit code for this error kind
func (e *WorkerWriteError) ExitCode() int { return ExitWorkerWrite }
