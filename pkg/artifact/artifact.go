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

// Package artifact writes the fixed-size placeholder files that stand
// in at every mirrored leaf. Only size and path matter; the bytes are
// meaningless printable filler.
package artifact

import (
	"math/rand"
	"os"

	"gitlab.com/tozd/go/errors"
)

// Size is the exact byte length of every placeholder artifact.
const Size = 1024

const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// ✍️ Write creates one placeholder artifact at absPath. The parent
// directory must already exist; directory creation is the orchestrator's
// job, never the writer's.
func Write(absPath string) error {
	if err := os.WriteFile(absPath, Fill(make([]byte, Size)), 0o644); err != nil {
		return errors.Errorf("writing artifact: %w", err)
	}
	return nil
}

// 🎲 Fill overwrites buf with random printable letters and returns it.
func Fill(buf []byte) []byte {
	for i := range buf {
		buf[i] = letters[rand.Intn(len(letters))]
	}
	return buf
}
