package rpc

import (
	"context"
	"encoding/json"
	"os"

	"github.com/ormasoftchile/scaff/pkg/plugin"
)

// Serve runs tmpl as a plugin process over stdin and stdout. It returns
// when the host sends shutdown or closes stdin. Nothing else may write to
// stdout while Serve runs.
func Serve(ctx context.Context, tmpl plugin.Template) error {
	return ServeConn(ctx, NewConn(os.Stdin, os.Stdout), tmpl)
}

// ServeConn serves tmpl over an existing connection.
func ServeConn(ctx context.Context, conn *Conn, tmpl plugin.Template) error {
	local := plugin.NewLocal(tmpl, &remoteCaps{conn: conn})

	return conn.Serve(ctx, func(ctx context.Context, method string, raw json.RawMessage) (any, error) {
		switch method {
		case MethodRun:
			var in runParams
			if err := decodeParams(method, raw, &in); err != nil {
				return nil, err
			}
			actions, err := local.Run(ctx, in.Context, in.Options)
			if err != nil {
				return nil, err
			}
			if actions == nil {
				actions = []plugin.Action{}
			}
			return plugin.RunResult{Actions: actions}, nil
		case MethodApplyEdit:
			var in applyEditParams
			if err := decodeParams(method, raw, &in); err != nil {
				return nil, err
			}
			return local.ApplyEdit(ctx, in.Edit, in.Text, in.Context)
		case MethodDropEdit:
			var in editParams
			if err := decodeParams(method, raw, &in); err != nil {
				return nil, err
			}
			return nil, local.DropEdit(ctx, in.Edit)
		}
		return nil, methodNotFound(method)
	})
}

// ServeFilter runs fn as a filter plugin over stdin and stdout.
func ServeFilter(ctx context.Context, name string, fn func(string) (string, error)) error {
	return ServeFilterConn(ctx, NewConn(os.Stdin, os.Stdout), name, fn)
}

// ServeFilterConn serves fn over an existing connection.
func ServeFilterConn(ctx context.Context, conn *Conn, name string, fn func(string) (string, error)) error {
	return conn.Serve(ctx, func(_ context.Context, method string, raw json.RawMessage) (any, error) {
		if method != MethodFilterExec {
			return nil, methodNotFound(method)
		}
		var in filterParams
		if err := json.Unmarshal(raw, &in); err != nil || in.Text == nil {
			return nil, plugin.Otherf("Filter '%s': no input or input is not a string", name)
		}
		out, err := fn(*in.Text)
		if err != nil {
			return nil, plugin.Otherf("Filter '%s': %v", name, err)
		}
		return out, nil
	})
}

// remoteCaps forwards every capability to the host.
type remoteCaps struct {
	conn *Conn
}

var _ plugin.Capabilities = (*remoteCaps)(nil)

func (r *remoteCaps) call(ctx context.Context, method string, params, result any) error {
	// the host never calls back into a plugin during a capability request
	return r.conn.Call(ctx, method, params, result, nil)
}

func (r *remoteCaps) Prompt(ctx context.Context, label string, def *string) (string, error) {
	var out string
	err := r.call(ctx, MethodPrompt, promptParams{Label: label, Default: def}, &out)
	return out, err
}

func (r *remoteCaps) Confirm(ctx context.Context, label string, def *bool) (bool, error) {
	var out bool
	err := r.call(ctx, MethodConfirm, confirmParams{Label: label, Default: def}, &out)
	return out, err
}

func (r *remoteCaps) Select(ctx context.Context, label string, options []string, def *uint8) (uint8, error) {
	var out uint8
	err := r.call(ctx, MethodSelect, selectParams{Label: label, Options: options, Default: def}, &out)
	return out, err
}

func (r *remoteCaps) ListFiles(ctx context.Context) ([]plugin.Handle, error) {
	var out []plugin.Handle
	err := r.call(ctx, MethodListFiles, nil, &out)
	return out, err
}

func (r *remoteCaps) FilePath(ctx context.Context, file plugin.Handle) (string, error) {
	var out string
	err := r.call(ctx, MethodFilePath, fileParams{File: file}, &out)
	return out, err
}

func (r *remoteCaps) ReadFile(ctx context.Context, file plugin.Handle) (string, error) {
	var out string
	err := r.call(ctx, MethodReadFile, fileParams{File: file}, &out)
	return out, err
}

func (r *remoteCaps) ReadFileBinary(ctx context.Context, file plugin.Handle) ([]byte, error) {
	var out []byte
	err := r.call(ctx, MethodReadFileBinary, fileParams{File: file}, &out)
	return out, err
}

func (r *remoteCaps) DropFile(ctx context.Context, file plugin.Handle) error {
	return r.call(ctx, MethodDropFile, fileParams{File: file}, nil)
}

func (r *remoteCaps) SetVariable(ctx context.Context, ec plugin.Handle, key, value string) error {
	return r.call(ctx, MethodSetVariable, setVariableParams{Context: ec, Key: key, Value: value}, nil)
}

func (r *remoteCaps) EvaluateTemplate(ctx context.Context, ec plugin.Handle, tmpl string) (string, error) {
	var out string
	err := r.call(ctx, MethodEvaluateTemplate, evaluateParams{Context: ec, Template: tmpl}, &out)
	return out, err
}

func (r *remoteCaps) DropContext(ctx context.Context, ec plugin.Handle) error {
	return r.call(ctx, MethodDropContext, contextParams{Context: ec}, nil)
}
