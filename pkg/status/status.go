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
	"fmt"
	"time"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/walteh/mirrorpool/pkg/mirror"
	"gitlab.com/tozd/go/errors"
)

// 📢 Reporter provides user-friendly feedback about a mirror run
type Reporter struct {
	log zerolog.Logger // for debug/error logging
}

// 🎯 NewReporter creates a new run reporter
func NewReporter(ctx context.Context) *Reporter {
	return &Reporter{
		log: *zerolog.Ctx(ctx),
	}
}

// 🚀 StartRun announces the run parameters
func (r *Reporter) StartRun(source, destination string, workers int) {
	pterm.Info.WithPrefix(pterm.Prefix{Text: "🪞"}).
		Printf("Mirroring %s -> %s with %d workers\n", source, destination, workers)
	r.log.Info().
		Str("source", source).
		Str("destination", destination).
		Int("workers", workers).
		Msg("starting run")
}

// 📊 ReportRun prints the outcome of a completed run and returns the
// most severe non-fatal finding, if any, so the caller can pick an
// exit code.
func (r *Reporter) ReportRun(report *mirror.Report) error {
	pterm.Info.WithPrefix(pterm.Prefix{Text: "📦"}).
		Printf("Submitted %d tasks, received %d results in %s\n",
			report.Submitted, report.Received, report.Elapsed.Round(time.Millisecond))

	for _, werr := range report.WorkerErrs {
		pterm.Error.WithPrefix(pterm.Prefix{Text: "💥"}).Println(werr)
		r.log.Error().Err(werr).Msg("worker failed")
	}

	if report.CountErr != nil {
		pterm.Warning.WithPrefix(pterm.Prefix{Text: "🔢"}).Println(report.CountErr)
		r.log.Error().Err(report.CountErr).Msg("count mismatch")
	}

	if report.VerifyErr != nil {
		r.reportVerify(report.VerifyErr)
	} else {
		pterm.Success.WithPrefix(pterm.Prefix{Text: "✅"}).
			Printf("Verified: source, destination and results agree (%d files)\n", report.Received)
		r.log.Info().Int("files", report.Received).Msg("verification passed")
	}

	switch {
	case len(report.WorkerErrs) > 0:
		return report.WorkerErrs[0]
	case report.VerifyErr != nil:
		return report.VerifyErr
	case report.CountErr != nil:
		return report.CountErr
	default:
		return nil
	}
}

// 🧩 reportVerify enumerates the divergence window of a failed
// verification, index-aligned the way the three sets are compared.
func (r *Reporter) reportVerify(err error) {
	pterm.Error.WithPrefix(pterm.Prefix{Text: "❌"}).Println("Result is inconsistent")
	r.log.Error().Err(err).Msg("verification failed")

	var mismatch *mirror.StructuralMismatchError
	if !errors.As(err, &mismatch) {
		pterm.Error.Println(err)
		return
	}
	pterm.Error.Printf("source=%d destination=%d results=%d\n",
		mismatch.SourceCount, mismatch.DestinationCount, mismatch.ResultCount)
	for _, entry := range mismatch.Window {
		pterm.Error.Println(entry.String())
	}
}

// ✋ ReportAbort prints the interruption outcome after the drain
func (r *Reporter) ReportAbort(err error) {
	pterm.Warning.WithPrefix(pterm.Prefix{Text: "✋"}).
		Println(fmt.Sprintf("Run interrupted: %v", err))
	r.log.Warn().Err(err).Msg("run interrupted")
}
