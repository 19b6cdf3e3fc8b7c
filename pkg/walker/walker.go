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

// Package walker enumerates a directory tree as tree-relative slash
// paths. It is a plain recursive listing with optional ignore patterns;
// all coordination logic lives elsewhere.
package walker

import (
	"context"
	"io/fs"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"gitlab.com/tozd/go/errors"
)

// 🚶 Walker enumerates one source tree.
type Walker struct {
	root   string
	ignore []string
}

// 🏭 New creates a walker for root. Ignore patterns are doublestar
// globs matched against tree-relative file paths.
func New(root string, ignore []string) *Walker {
	return &Walker{root: root, ignore: ignore}
}

// 🔄 Walk visits the tree depth-first. Directories are reported before
// any file beneath them, so a caller mirroring the tree can create every
// parent before work on its children begins. The root itself is not
// reported. Either callback may be nil.
func (w *Walker) Walk(ctx context.Context, onDir, onFile func(relPath string) error) error {
	return filepath.WalkDir(w.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return errors.Errorf("walking %q: %w", path, err)
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if path == w.root {
			return nil
		}

		relPath, err := filepath.Rel(w.root, path)
		if err != nil {
			return errors.Errorf("relativizing %q: %w", path, err)
		}
		relPath = filepath.ToSlash(relPath)

		if d.IsDir() {
			if onDir != nil {
				return onDir(relPath)
			}
			return nil
		}

		ignored, err := w.shouldIgnore(relPath)
		if err != nil {
			return err
		}
		if ignored || onFile == nil {
			return nil
		}
		return onFile(relPath)
	})
}

// 📜 Files returns the sorted tree-relative paths of every
// non-ignored file under root.
func (w *Walker) Files(ctx context.Context) ([]string, error) {
	var files []string
	err := w.Walk(ctx, nil, func(relPath string) error {
		files = append(files, relPath)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// 🔍 shouldIgnore checks the relative path against the ignore patterns.
func (w *Walker) shouldIgnore(relPath string) (bool, error) {
	for _, pattern := range w.ignore {
		matched, err := doublestar.Match(pattern, relPath)
		if err != nil {
			return false, errors.Errorf("matching pattern %q: %w", pattern, err)
		}
		if matched {
			return true, nil
		}
	}
	return false, nil
}
