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
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

// ReceiveChildCommand is the hidden CLI subcommand hosting the child
// half of the process-backed receiver.
const ReceiveChildCommand = "receive"

// 🔌 procReceiver is the OS-process-backed receiver variant. The parent
// side pumps the result queue into the child over a pipe as JSON lines;
// the child aggregates and hands the finished collection back on its
// stdout. Child stderr lines are republished onto the log channel, so
// diagnostics from the child still reach the one aggregator.
type procReceiver struct {
	destRoot string
	results  *Queue[ResultMsg]
	logs     *LogStream
	out      *OneShot[[]string]

	cmd *exec.Cmd
	grp *errgroup.Group
}

func newProcReceiver(destRoot string, results *Queue[ResultMsg],
	logs *LogStream, out *OneShot[[]string]) *procReceiver {
	return &procReceiver{
		destRoot: destRoot,
		results:  results,
		logs:     logs,
		out:      out,
	}
}

// 🏃 Start spawns the child and the two pump goroutines.
func (p *procReceiver) Start(ctx context.Context) error {
	exe, err := os.Executable()
	if err != nil {
		return errors.Errorf("locating executable: %w", err)
	}

	// Teardown is driven by the stream-end marker closing stdin, never
	// by killing the child mid-aggregation.
	p.cmd = exec.Command(exe, ReceiveChildCommand, "--dest", p.destRoot)

	stdin, err := p.cmd.StdinPipe()
	if err != nil {
		return errors.Errorf("opening child stdin: %w", err)
	}
	stdout, err := p.cmd.StdoutPipe()
	if err != nil {
		return errors.Errorf("opening child stdout: %w", err)
	}
	stderr, err := p.cmd.StderrPipe()
	if err != nil {
		return errors.Errorf("opening child stderr: %w", err)
	}
	if err := p.cmd.Start(); err != nil {
		return errors.Errorf("starting receiver process: %w", err)
	}

	// Stdout is drained concurrently with the child's lifetime so a
	// large collection cannot wedge the child on a full pipe. The same
	// goroutine fulfills the handoff: the host collects it before it
	// joins this unit, so delivery cannot wait until Join.
	p.grp = &errgroup.Group{}
	p.grp.Go(func() error { return p.pumpResults(ctx, stdin) })
	p.grp.Go(func() error { return p.pumpStderr(ctx, stderr) })
	p.grp.Go(func() error { return p.collectOutput(stdout) })
	return nil
}

// 📬 collectOutput reads the aggregated collection off the child's
// stdout and fulfills the one-shot handoff. On a malformed or truncated
// stream it still fulfills the handoff, empty, so the host is never
// left waiting; the failure surfaces through Join.
func (p *procReceiver) collectOutput(stdout io.Reader) error {
	raw, err := io.ReadAll(stdout)
	if err != nil {
		p.out.Set(nil)
		return errors.Errorf("reading receiver process output: %w", err)
	}
	var collected []string
	if err := json.Unmarshal(raw, &collected); err != nil {
		p.out.Set(nil)
		return errors.Errorf("decoding receiver process output: %w", err)
	}
	p.out.Set(collected)
	return nil
}

// ⛽ pumpResults forwards result-queue messages to the child until the
// stream-end marker, then closes the pipe so the child finishes.
func (p *procReceiver) pumpResults(ctx context.Context, stdin io.WriteCloser) error {
	defer stdin.Close()

	enc := json.NewEncoder(stdin)
	for {
		select {
		case msg, ok := <-p.results.Out():
			if !ok {
				return nil
			}
			if err := enc.Encode(msg); err != nil {
				return errors.Errorf("forwarding result to receiver process: %w", err)
			}
			if msg.Kind == ResultEnd {
				return nil
			}
		case <-ctx.Done():
			return errors.Errorf("result pump cancelled: %w", ctx.Err())
		}
	}
}

// 📢 pumpStderr republishes child diagnostics onto the log channel.
func (p *procReceiver) pumpStderr(ctx context.Context, stderr io.Reader) error {
	sc := bufio.NewScanner(stderr)
	for sc.Scan() {
		p.logs.Record(ctx, zerolog.DebugLevel, "receiver-proc", sc.Text(), "")
	}
	return sc.Err()
}

// 🤝 Join waits for the pumps and the child to exit. The collection
// itself was already delivered by the stdout pump.
func (p *procReceiver) Join() error {
	pumpErr := p.grp.Wait()
	waitErr := p.cmd.Wait()

	if pumpErr != nil {
		return errors.Errorf("receiver process pumps: %w", pumpErr)
	}
	if waitErr != nil {
		return errors.Errorf("receiver process exited: %w", waitErr)
	}
	return nil
}

// 👶 ReceiveChild is the loop run inside the child process: decode
// result messages from in, aggregate tree-relative paths, and write the
// collection to outW as one JSON array on stream end (or EOF, which the
// parent produces by closing the pipe during an abort).
func ReceiveChild(in io.Reader, outW io.Writer, logW io.Writer, destRoot string) error {
	sink := zerolog.New(logW).With().Timestamp().Logger()

	var collected []string
	dec := json.NewDecoder(in)
	for {
		var msg ResultMsg
		if err := dec.Decode(&msg); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return errors.Errorf("decoding result message: %w", err)
		}
		if msg.Kind == ResultEnd {
			break
		}
		relPath, err := filepath.Rel(destRoot, msg.AbsPath)
		if err != nil {
			return errors.Errorf("relativizing result %q: %w", msg.AbsPath, err)
		}
		relPath = filepath.ToSlash(relPath)
		collected = append(collected, relPath)
		sink.Debug().Str("path", relPath).Msg("obtained result")
	}

	if collected == nil {
		collected = []string{}
	}
	enc := json.NewEncoder(outW)
	if err := enc.Encode(collected); err != nil {
		return errors.Errorf("encoding collection: %w", err)
	}
	return nil
}
