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

package status

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/mirrorpool/pkg/mirror"
)

// 🧪 newTestReporter builds a reporter over a test logger
func newTestReporter(t *testing.T) *Reporter {
	t.Helper()
	logger := zerolog.New(zerolog.NewTestWriter(t))
	return NewReporter(logger.WithContext(context.Background()))
}

// 🧪 TestReportRunClean tests that a clean run reports no finding
func TestReportRunClean(t *testing.T) {
	r := newTestReporter(t)
	err := r.ReportRun(&mirror.Report{
		Submitted: 3,
		Received:  3,
		Elapsed:   10 * time.Millisecond,
	})
	assert.NoError(t, err)
}

// 🧪 TestReportRunSeverity tests which finding wins the exit code
func TestReportRunSeverity(t *testing.T) {
	workerErr := &mirror.WorkerWriteError{WorkerID: 1, RelPath: "x"}
	countErr := &mirror.CountMismatchError{Submitted: 3, Received: 2}
	verifyErr := &mirror.StructuralMismatchError{SourceCount: 3, DestinationCount: 2, ResultCount: 2}

	tests := []struct {
		name   string
		report mirror.Report
		want   error
	}{
		{
			name:   "worker_error_wins",
			report: mirror.Report{WorkerErrs: []error{workerErr}, CountErr: countErr, VerifyErr: verifyErr},
			want:   workerErr,
		},
		{
			name:   "verify_beats_count",
			report: mirror.Report{CountErr: countErr, VerifyErr: verifyErr},
			want:   verifyErr,
		},
		{
			name:   "count_alone",
			report: mirror.Report{CountErr: countErr},
			want:   countErr,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestReporter(t)
			got := r.ReportRun(&tt.report)
			require.Error(t, got)
			assert.Equal(t, tt.want, got)
		})
	}
}

// 🧪 TestReportVerifyWindow tests that a mismatch window is printable
func TestReportVerifyWindow(t *testing.T) {
	r := newTestReporter(t)
	err := r.ReportRun(&mirror.Report{
		VerifyErr: &mirror.StructuralMismatchError{
			SourceCount:      2,
			DestinationCount: 1,
			ResultCount:      2,
			Window: []mirror.DiffEntry{
				{Index: 1, Source: "b.txt", Destination: "", Result: "b.txt"},
			},
		},
	})
	require.Error(t, err)
}
