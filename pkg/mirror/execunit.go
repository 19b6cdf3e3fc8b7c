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

	"gitlab.com/tozd/go/errors"
)

// 🚂 ExecUnit abstracts one concurrently running unit of the pipeline.
// The host only ever needs start and join, so whether the unit is a
// goroutine or a child process is a construction-time choice, not a
// branch at every call site.
type ExecUnit interface {
	// Start begins execution. It must be called exactly once.
	Start(ctx context.Context) error

	// Join blocks until the unit has finished and returns its error.
	// It must be called exactly once, after Start.
	Join() error
}

// 🧵 GoUnit runs a function on its own goroutine. This is the
// lightweight-task variant; goroutines already spread across OS threads,
// so it is also how the worker pool achieves parallelism.
type GoUnit struct {
	Name string
	Run  func(ctx context.Context) error

	done chan struct{}
	err  error
}

// 🏭 NewGoUnit creates a goroutine-backed execution unit.
func NewGoUnit(name string, run func(ctx context.Context) error) *GoUnit {
	return &GoUnit{
		Name: name,
		Run:  run,
		done: make(chan struct{}),
	}
}

// 🏃 Start launches the unit's goroutine.
func (u *GoUnit) Start(ctx context.Context) error {
	if u.Run == nil {
		return errors.Errorf("unit %s: no run function", u.Name)
	}
	go func() {
		defer close(u.done)
		u.err = u.Run(ctx)
	}()
	return nil
}

// 🤝 Join waits for the goroutine to finish.
func (u *GoUnit) Join() error {
	<-u.done
	if u.err != nil {
		return errors.Errorf("unit %s: %w", u.Name, u.err)
	}
	return nil
}
