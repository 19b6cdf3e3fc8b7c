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

// Package verify re-enumerates the source and destination trees and
// asserts that they and the collected results agree. It trusts nothing
// recorded during the run: both enumerations are fresh.
package verify

import (
	"context"
	"sort"

	"github.com/rs/zerolog"
	"github.com/walteh/mirrorpool/pkg/mirror"
	"github.com/walteh/mirrorpool/pkg/walker"
	"golang.org/x/sync/errgroup"
)

// diffWindow caps how many index-aligned triples a mismatch report
// carries, starting at the first divergence.
const diffWindow = 10

// ✅ Tree checks that sorted(source paths), sorted(destination paths)
// and sorted(results) are pairwise equal. Source enumeration honors the
// same ignore patterns the run used, so the three sets stay comparable.
// On mismatch it returns a StructuralMismatchError carrying the first
// divergence window; it never panics or raises beyond that.
func Tree(ctx context.Context, sourceDir, destDir string, ignore []string, results []string) error {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("source", sourceDir).Str("destination", destDir).Msg("verifying trees")

	var srcPaths, dstPaths []string

	// The two enumerations are independent, so they run concurrently.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		srcPaths, err = walker.New(sourceDir, ignore).Files(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		dstPaths, err = walker.New(destDir, nil).Files(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	sorted := append([]string(nil), results...)
	sort.Strings(sorted)

	if equal(srcPaths, dstPaths) && equal(dstPaths, sorted) {
		logger.Debug().Int("files", len(srcPaths)).Msg("trees verified")
		return nil
	}

	return &mirror.StructuralMismatchError{
		SourceCount:      len(srcPaths),
		DestinationCount: len(dstPaths),
		ResultCount:      len(sorted),
		Window:           divergence(srcPaths, dstPaths, sorted),
	}
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// 🧩 divergence builds index-aligned triples starting at the first
// index where the three sorted sets disagree.
func divergence(src, dst, res []string) []mirror.DiffEntry {
	longest := max(len(src), max(len(dst), len(res)))

	first := -1
	for i := 0; i < longest; i++ {
		if at(src, i) != at(dst, i) || at(dst, i) != at(res, i) {
			first = i
			break
		}
	}
	if first < 0 {
		return nil
	}

	var window []mirror.DiffEntry
	for i := first; i < longest && len(window) < diffWindow; i++ {
		window = append(window, mirror.DiffEntry{
			Index:       i,
			Source:      at(src, i),
			Destination: at(dst, i),
			Result:      at(res, i),
		})
	}
	return window
}

func at(s []string, i int) string {
	if i < len(s) {
		return s[i]
	}
	return ""
}
