// Package rpc runs template and filter plugins out of process. Host and
// plugin exchange newline-delimited JSON-RPC 2.0 over the plugin's stdin
// and stdout. Either side may send requests: while the host waits on a
// call, the plugin calls back into the host for capabilities, and the host
// answers those nested requests before the original response arrives.
package rpc

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/ormasoftchile/scaff/pkg/plugin"
)

// Method names.
const (
	MethodPrompt           = "ui.prompt"
	MethodConfirm          = "ui.confirm"
	MethodSelect           = "ui.select"
	MethodListFiles        = "file.list-all"
	MethodFilePath         = "file.path"
	MethodReadFile         = "file.read"
	MethodReadFileBinary   = "file.read-binary"
	MethodDropFile         = "file.drop"
	MethodSetVariable      = "context.set-variable"
	MethodEvaluateTemplate = "context.evaluate-template"
	MethodDropContext      = "context.drop"
	MethodRun              = "template.run"
	MethodApplyEdit        = "edit.apply"
	MethodDropEdit         = "edit.drop"
	MethodFilterExec       = "filter.exec"
	MethodShutdown         = "shutdown"
)

// Error codes. The application codes carry the three plugin error classes.
const (
	CodeParse          = -32700
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeCancel         = -32001
	CodeOther          = -32002
	CodeTrap           = -32003
)

type message struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      *int64          `json:"id,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *wireError      `json:"error,omitempty"`
}

type wireError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func encodeError(err error) *wireError {
	switch {
	case plugin.IsCancel(err):
		return &wireError{Code: CodeCancel, Message: plugin.ErrCancel.Error()}
	case plugin.IsTrap(err):
		var t *plugin.Trap
		errors.As(err, &t)
		return &wireError{Code: CodeTrap, Message: t.Err.Error()}
	}
	var pe *protocolError
	if errors.As(err, &pe) {
		return &wireError{Code: pe.code, Message: pe.msg}
	}
	return &wireError{Code: CodeOther, Message: err.Error()}
}

func decodeError(we *wireError) error {
	switch we.Code {
	case CodeCancel:
		return plugin.ErrCancel
	case CodeOther:
		return &plugin.OtherError{Message: we.Message}
	case CodeTrap:
		return &plugin.Trap{Err: errors.New(we.Message)}
	}
	// anything else is a protocol failure and unrecoverable
	return &plugin.Trap{Err: fmt.Errorf("rpc error %d: %s", we.Code, we.Message)}
}

type protocolError struct {
	code int
	msg  string
}

func (e *protocolError) Error() string { return e.msg }

func methodNotFound(method string) error {
	return &protocolError{code: CodeMethodNotFound, msg: "method not found: " + method}
}

func invalidParams(method string, err error) error {
	return &protocolError{code: CodeInvalidParams, msg: fmt.Sprintf("%s: invalid params: %v", method, err)}
}

// Handler answers one incoming request. The returned value is marshalled
// as the result.
type Handler func(ctx context.Context, method string, params json.RawMessage) (any, error)

// Conn is one end of a line-delimited JSON-RPC stream.
type Conn struct {
	r      *bufio.Reader
	w      io.Writer
	wmu    sync.Mutex
	callMu sync.Mutex
	nextID atomic.Int64
}

// NewConn wraps a reader and writer pair.
func NewConn(r io.Reader, w io.Writer) *Conn {
	return &Conn{r: bufio.NewReader(r), w: w}
}

func (c *Conn) send(m message) error {
	m.JSONRPC = "2.0"
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	c.wmu.Lock()
	defer c.wmu.Unlock()
	if _, err := fmt.Fprintf(c.w, "%s\n", data); err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	return nil
}

func (c *Conn) read() (message, error) {
	for {
		line, err := c.r.ReadString('\n')
		if err != nil {
			if err == io.EOF && strings.TrimSpace(line) == "" {
				return message{}, io.EOF
			}
			if err != io.EOF {
				return message{}, fmt.Errorf("read message: %w", err)
			}
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var m message
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			return message{}, fmt.Errorf("unmarshal message: %w (raw: %s)", err, line)
		}
		return m, nil
	}
}

// Notify sends a request without an id. No response is expected.
func (c *Conn) Notify(method string, params any) error {
	raw, err := marshalParams(params)
	if err != nil {
		return err
	}
	return c.send(message{Method: method, Params: raw})
}

// Call sends a request and blocks until its response arrives. Requests
// the peer sends in the meantime are answered with h. Only one call is
// outstanding per Conn at a time.
func (c *Conn) Call(ctx context.Context, method string, params any, result any, h Handler) error {
	c.callMu.Lock()
	defer c.callMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	raw, err := marshalParams(params)
	if err != nil {
		return err
	}
	id := c.nextID.Add(1)
	if err := c.send(message{ID: &id, Method: method, Params: raw}); err != nil {
		return err
	}

	for {
		m, err := c.read()
		if err != nil {
			if err == io.EOF {
				return &plugin.Trap{Err: fmt.Errorf("%s: peer closed the connection", method)}
			}
			return &plugin.Trap{Err: err}
		}
		if m.Method != "" {
			if err := c.answer(ctx, m, h); err != nil {
				return err
			}
			continue
		}
		if m.ID == nil || *m.ID != id {
			continue
		}
		if m.Error != nil {
			return decodeError(m.Error)
		}
		if result == nil {
			return nil
		}
		if err := json.Unmarshal(m.Result, result); err != nil {
			return &plugin.Trap{Err: fmt.Errorf("%s: decode result: %w", method, err)}
		}
		return nil
	}
}

// Serve answers requests with h until the peer sends shutdown or closes
// the stream.
func (c *Conn) Serve(ctx context.Context, h Handler) error {
	for {
		m, err := c.read()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		if m.Method == MethodShutdown {
			return nil
		}
		if m.Method == "" {
			continue
		}
		if err := c.answer(ctx, m, h); err != nil {
			return err
		}
	}
}

func (c *Conn) answer(ctx context.Context, m message, h Handler) error {
	var (
		result any
		err    error
	)
	if h == nil {
		err = methodNotFound(m.Method)
	} else {
		result, err = h(ctx, m.Method, m.Params)
	}
	if m.ID == nil {
		return nil
	}

	resp := message{ID: m.ID}
	if err != nil {
		resp.Error = encodeError(err)
		return c.send(resp)
	}
	data, merr := json.Marshal(result)
	if merr != nil {
		resp.Error = &wireError{Code: CodeOther, Message: fmt.Sprintf("marshal result: %v", merr)}
		return c.send(resp)
	}
	resp.Result = data
	return c.send(resp)
}

func marshalParams(params any) (json.RawMessage, error) {
	if params == nil {
		return nil, nil
	}
	data, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("marshal params: %w", err)
	}
	return data, nil
}

func decodeParams(method string, raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		raw = []byte("{}")
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return invalidParams(method, err)
	}
	return nil
}

// --- params ---

type promptParams struct {
	Label   string  `json:"label"`
	Default *string `json:"default,omitempty"`
}

type confirmParams struct {
	Label   string `json:"label"`
	Default *bool  `json:"default,omitempty"`
}

type selectParams struct {
	Label   string   `json:"label"`
	Options []string `json:"options"`
	Default *uint8   `json:"default,omitempty"`
}

type fileParams struct {
	File plugin.Handle `json:"file"`
}

type setVariableParams struct {
	Context plugin.Handle `json:"context"`
	Key     string        `json:"key"`
	Value   string        `json:"value"`
}

type evaluateParams struct {
	Context  plugin.Handle `json:"context"`
	Template string        `json:"template"`
}

type contextParams struct {
	Context plugin.Handle `json:"context"`
}

type runParams struct {
	Context plugin.Handle     `json:"context"`
	Options plugin.RunOptions `json:"options"`
}

type applyEditParams struct {
	Edit    plugin.Handle `json:"edit"`
	Text    string        `json:"text"`
	Context plugin.Handle `json:"context"`
}

type editParams struct {
	Edit plugin.Handle `json:"edit"`
}

type filterParams struct {
	Text *string `json:"text"`
}
