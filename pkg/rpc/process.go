package rpc

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"github.com/ormasoftchile/scaff/pkg/logging"
	"github.com/ormasoftchile/scaff/pkg/plugin"
	"github.com/rs/zerolog"
)

// shutdownGrace is how long Close waits for a plugin to exit on its own.
const shutdownGrace = 2 * time.Second

// Process is a running plugin executable seen from the host.
type Process struct {
	name  string
	cmd   *exec.Cmd
	stdin io.WriteCloser
	conn  *Conn
	done  chan struct{}
	log   *zerolog.Logger

	caps plugin.Capabilities

	// sticky outcome of the current call, see track
	stickyMu sync.Mutex
	sticky   error

	closeOnce sync.Once
}

// Spawn starts binary and connects to its stdio. Capability requests the
// plugin makes are served by caps, which may be nil for filter plugins.
func Spawn(ctx context.Context, binary string, args []string, caps plugin.Capabilities) (*Process, error) {
	cmd := exec.CommandContext(ctx, binary, args...)
	cmd.Env = os.Environ()

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("create stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("create stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("create stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start plugin %q: %w", binary, err)
	}

	p := &Process{
		name:  filepath.Base(binary),
		cmd:   cmd,
		stdin: stdin,
		conn:  NewConn(stdout, stdin),
		done:  make(chan struct{}),
		log:   logging.L(),
		caps:  caps,
	}

	// Wait closes the pipes, so it must not start before stderr is drained.
	var forwarding sync.WaitGroup
	forwarding.Add(1)
	go func() {
		defer forwarding.Done()
		p.forwardStderr(stderr)
	}()
	go func() {
		forwarding.Wait()
		cmd.Wait()
		close(p.done)
	}()

	p.log.Debug().Str("plugin", p.name).Int("pid", cmd.Process.Pid).Msg("plugin started")
	return p, nil
}

func (p *Process) forwardStderr(r io.Reader) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		p.log.Info().Str("plugin", p.name).Msg(scanner.Text())
	}
}

// Name is the base name of the plugin executable.
func (p *Process) Name() string { return p.name }

// Call sends method and waits for the response, answering the plugin's
// capability requests meanwhile. A trap raised by any nested capability,
// or a cancel raised by a prompt, decides the call's outcome even when the
// plugin ignores it.
func (p *Process) Call(ctx context.Context, method string, params, result any) error {
	select {
	case <-p.done:
		return &plugin.Trap{Err: fmt.Errorf("plugin %s has exited", p.name)}
	default:
	}

	p.stickyMu.Lock()
	p.sticky = nil
	p.stickyMu.Unlock()

	err := p.conn.Call(ctx, method, params, result, p.dispatch)

	p.stickyMu.Lock()
	sticky := p.sticky
	p.stickyMu.Unlock()
	if sticky != nil {
		return sticky
	}
	return err
}

func (p *Process) track(method string, err error) {
	if err == nil {
		return
	}
	interactive := method == MethodPrompt || method == MethodConfirm || method == MethodSelect
	p.stickyMu.Lock()
	defer p.stickyMu.Unlock()
	switch {
	case plugin.IsTrap(err):
		if !plugin.IsTrap(p.sticky) {
			p.sticky = err
		}
	case interactive && plugin.IsCancel(err):
		if p.sticky == nil {
			p.sticky = plugin.ErrCancel
		}
	}
}

func (p *Process) dispatch(ctx context.Context, method string, params json.RawMessage) (any, error) {
	if p.caps == nil {
		return nil, methodNotFound(method)
	}
	p.log.Trace().Str("plugin", p.name).Str("method", method).Msg("capability request")
	result, err := serveCapability(ctx, p.caps, method, params)
	p.track(method, err)
	return result, err
}

// Close asks the plugin to shut down and kills it if it does not exit in
// time.
func (p *Process) Close() error {
	var err error
	p.closeOnce.Do(func() {
		select {
		case <-p.done:
			return
		default:
		}
		if nerr := p.conn.Notify(MethodShutdown, nil); nerr != nil {
			p.log.Debug().Err(nerr).Str("plugin", p.name).Msg("shutdown notification failed")
		}
		p.stdin.Close()

		select {
		case <-p.done:
		case <-time.After(shutdownGrace):
			if p.cmd.Process != nil {
				if kerr := p.cmd.Process.Kill(); kerr != nil && !errors.Is(kerr, os.ErrProcessDone) {
					err = fmt.Errorf("kill plugin %s: %w", p.name, kerr)
				}
			}
			<-p.done
		}
		p.log.Debug().Str("plugin", p.name).Msg("plugin stopped")
	})
	return err
}

// serveCapability decodes one capability request and runs it against caps.
func serveCapability(ctx context.Context, caps plugin.Capabilities, method string, raw json.RawMessage) (any, error) {
	switch method {
	case MethodPrompt:
		var in promptParams
		if err := decodeParams(method, raw, &in); err != nil {
			return nil, err
		}
		return caps.Prompt(ctx, in.Label, in.Default)
	case MethodConfirm:
		var in confirmParams
		if err := decodeParams(method, raw, &in); err != nil {
			return nil, err
		}
		return caps.Confirm(ctx, in.Label, in.Default)
	case MethodSelect:
		var in selectParams
		if err := decodeParams(method, raw, &in); err != nil {
			return nil, err
		}
		return caps.Select(ctx, in.Label, in.Options, in.Default)
	case MethodListFiles:
		files, err := caps.ListFiles(ctx)
		if err != nil {
			return nil, err
		}
		if files == nil {
			files = []plugin.Handle{}
		}
		return files, nil
	case MethodFilePath, MethodReadFile, MethodReadFileBinary, MethodDropFile:
		var in fileParams
		if err := decodeParams(method, raw, &in); err != nil {
			return nil, err
		}
		switch method {
		case MethodFilePath:
			return caps.FilePath(ctx, in.File)
		case MethodReadFile:
			return caps.ReadFile(ctx, in.File)
		case MethodReadFileBinary:
			return caps.ReadFileBinary(ctx, in.File)
		}
		return nil, caps.DropFile(ctx, in.File)
	case MethodSetVariable:
		var in setVariableParams
		if err := decodeParams(method, raw, &in); err != nil {
			return nil, err
		}
		return nil, caps.SetVariable(ctx, in.Context, in.Key, in.Value)
	case MethodEvaluateTemplate:
		var in evaluateParams
		if err := decodeParams(method, raw, &in); err != nil {
			return nil, err
		}
		return caps.EvaluateTemplate(ctx, in.Context, in.Template)
	case MethodDropContext:
		var in contextParams
		if err := decodeParams(method, raw, &in); err != nil {
			return nil, err
		}
		return nil, caps.DropContext(ctx, in.Context)
	}
	return nil, methodNotFound(method)
}
