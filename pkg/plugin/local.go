package plugin

import (
	"context"
	"sync/atomic"

	"github.com/ormasoftchile/scaff/pkg/resource"
)

// Local runs a Template in-process. It behaves like an out-of-process guest:
// edits live in the guest's own table and a Cancel raised by an interactive
// capability ends the call as Cancel whatever the template returns.
type Local struct {
	tmpl  Template
	rt    *localRuntime
	edits *resource.Table[Edit]
}

// NewLocal wires tmpl to caps.
func NewLocal(tmpl Template, caps Capabilities) *Local {
	edits := resource.NewTable[Edit]("edits")
	return &Local{
		tmpl:  tmpl,
		edits: edits,
		rt:    &localRuntime{CancelWatch: &CancelWatch{Capabilities: caps}, edits: edits},
	}
}

func (l *Local) Run(ctx context.Context, ec Handle, opts RunOptions) ([]Action, error) {
	l.rt.Reset()
	actions, err := l.tmpl.Run(ctx, l.rt, ec, opts)
	if l.rt.Cancelled() {
		return nil, ErrCancel
	}
	if err != nil {
		return nil, Normalize(err)
	}
	return actions, nil
}

func (l *Local) ApplyEdit(ctx context.Context, edit Handle, text string, ec Handle) (string, error) {
	e, err := l.edits.Get(edit)
	if err != nil {
		return "", &Trap{Err: err}
	}
	l.rt.Reset()
	out, err := (*e).Apply(ctx, l.rt, text, ec)
	if l.rt.Cancelled() {
		return "", ErrCancel
	}
	if err != nil {
		return "", Normalize(err)
	}
	return out, nil
}

func (l *Local) DropEdit(_ context.Context, edit Handle) error {
	if _, err := l.edits.Delete(edit); err != nil {
		return &Trap{Err: err}
	}
	return nil
}

// Close is a no-op for in-process templates.
func (l *Local) Close() error { return nil }

// LiveEdits returns the number of edit handles not yet dropped.
func (l *Local) LiveEdits() int { return l.edits.Len() }

type localRuntime struct {
	*CancelWatch
	edits *resource.Table[Edit]
}

func (r *localRuntime) NewEdit(e Edit) Handle {
	return r.edits.Insert(e)
}

// CancelWatch wraps Capabilities and remembers whether an interactive
// capability reported Cancel since the last Reset. Cancel from a prompt is
// a trap: it unwinds the plugin call even if the plugin swallows it.
type CancelWatch struct {
	Capabilities
	cancelled atomic.Bool
}

func (w *CancelWatch) Reset()          { w.cancelled.Store(false) }
func (w *CancelWatch) Cancelled() bool { return w.cancelled.Load() }

func (w *CancelWatch) note(err error) error {
	if IsCancel(err) {
		w.cancelled.Store(true)
	}
	return err
}

func (w *CancelWatch) Prompt(ctx context.Context, label string, def *string) (string, error) {
	s, err := w.Capabilities.Prompt(ctx, label, def)
	return s, w.note(err)
}

func (w *CancelWatch) Confirm(ctx context.Context, label string, def *bool) (bool, error) {
	b, err := w.Capabilities.Confirm(ctx, label, def)
	return b, w.note(err)
}

func (w *CancelWatch) Select(ctx context.Context, label string, options []string, def *uint8) (uint8, error) {
	i, err := w.Capabilities.Select(ctx, label, options, def)
	return i, w.note(err)
}
