package rpc

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ormasoftchile/scaff/pkg/plugin"
	"github.com/ormasoftchile/scaff/pkg/render"
)

// Guest adapts a template plugin process to plugin.Guest.
type Guest struct {
	p *Process
}

var _ plugin.Guest = (*Guest)(nil)

// NewGuest wraps p.
func NewGuest(p *Process) *Guest { return &Guest{p: p} }

// SpawnGuest starts a template plugin executable.
func SpawnGuest(ctx context.Context, binary string, caps plugin.Capabilities) (*Guest, error) {
	p, err := Spawn(ctx, binary, nil, caps)
	if err != nil {
		return nil, err
	}
	return NewGuest(p), nil
}

// Run calls template.run. The action list is untrusted and is validated
// before it is returned.
func (g *Guest) Run(ctx context.Context, ec plugin.Handle, opts plugin.RunOptions) ([]plugin.Action, error) {
	var raw json.RawMessage
	if err := g.p.Call(ctx, MethodRun, runParams{Context: ec, Options: opts}, &raw); err != nil {
		return nil, err
	}
	actions, err := plugin.DecodeRunResult(raw)
	if err != nil {
		return nil, &plugin.Trap{Err: fmt.Errorf("plugin %s: %w", g.p.Name(), err)}
	}
	return actions, nil
}

func (g *Guest) ApplyEdit(ctx context.Context, edit plugin.Handle, text string, ec plugin.Handle) (string, error) {
	var out string
	if err := g.p.Call(ctx, MethodApplyEdit, applyEditParams{Edit: edit, Text: text, Context: ec}, &out); err != nil {
		return "", err
	}
	return out, nil
}

func (g *Guest) DropEdit(ctx context.Context, edit plugin.Handle) error {
	return g.p.Call(ctx, MethodDropEdit, editParams{Edit: edit}, nil)
}

func (g *Guest) Close() error { return g.p.Close() }

// Filter adapts a filter plugin process to render.FilterPlugin.
type Filter struct {
	name string
	p    *Process
}

var _ render.FilterPlugin = (*Filter)(nil)

// SpawnFilter starts a filter plugin executable registered as name.
func SpawnFilter(ctx context.Context, name, binary string) (*Filter, error) {
	p, err := Spawn(ctx, binary, nil, nil)
	if err != nil {
		return nil, err
	}
	return &Filter{name: name, p: p}, nil
}

func (f *Filter) Name() string { return f.name }

func (f *Filter) Exec(text string) (string, error) {
	var out string
	if err := f.p.Call(context.Background(), MethodFilterExec, filterParams{Text: &text}, &out); err != nil {
		return "", fmt.Errorf("filter %s: %w", f.name, err)
	}
	return out, nil
}

func (f *Filter) Close() error { return f.p.Close() }
