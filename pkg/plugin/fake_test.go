package plugin

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// fakeCaps is an in-memory Capabilities: files by handle, one variable map
// for every context handle, and canned prompt answers.
type fakeCaps struct {
	files   map[Handle]string
	content map[string]string
	vars    map[string]string
	answers map[string]string
	cancel  map[string]bool
	dropped []Handle
	next    Handle
}

func newFakeCaps(content map[string]string) *fakeCaps {
	return &fakeCaps{
		files:   map[Handle]string{},
		content: content,
		vars:    map[string]string{},
		answers: map[string]string{},
		cancel:  map[string]bool{},
	}
}

func (f *fakeCaps) Prompt(_ context.Context, label string, def *string) (string, error) {
	if f.cancel[label] {
		return "", ErrCancel
	}
	if a, ok := f.answers[label]; ok {
		return a, nil
	}
	if def != nil {
		return *def, nil
	}
	return "", nil
}

func (f *fakeCaps) Confirm(_ context.Context, label string, def *bool) (bool, error) {
	if f.cancel[label] {
		return false, ErrCancel
	}
	return f.answers[label] == "y", nil
}

func (f *fakeCaps) Select(_ context.Context, label string, _ []string, _ *uint8) (uint8, error) {
	if f.cancel[label] {
		return 0, ErrCancel
	}
	return 0, nil
}

func (f *fakeCaps) ListFiles(context.Context) ([]Handle, error) {
	var paths []string
	for p := range f.content {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	var hs []Handle
	for _, p := range paths {
		f.next++
		f.files[f.next] = p
		hs = append(hs, f.next)
	}
	return hs, nil
}

func (f *fakeCaps) FilePath(_ context.Context, h Handle) (string, error) {
	p, ok := f.files[h]
	if !ok {
		return "", &Trap{Err: fmt.Errorf("file %d", h)}
	}
	return p, nil
}

func (f *fakeCaps) ReadFile(ctx context.Context, h Handle) (string, error) {
	p, err := f.FilePath(ctx, h)
	if err != nil {
		return "", err
	}
	return f.content[p], nil
}

func (f *fakeCaps) ReadFileBinary(ctx context.Context, h Handle) ([]byte, error) {
	s, err := f.ReadFile(ctx, h)
	return []byte(s), err
}

func (f *fakeCaps) DropFile(_ context.Context, h Handle) error {
	if _, ok := f.files[h]; !ok {
		return &Trap{Err: fmt.Errorf("file %d", h)}
	}
	delete(f.files, h)
	f.dropped = append(f.dropped, h)
	return nil
}

func (f *fakeCaps) SetVariable(_ context.Context, _ Handle, k, v string) error {
	f.vars[k] = v
	return nil
}

// EvaluateTemplate only understands "{{ name }}" placeholders.
func (f *fakeCaps) EvaluateTemplate(_ context.Context, _ Handle, tmpl string) (string, error) {
	out := tmpl
	for k, v := range f.vars {
		out = strings.ReplaceAll(out, "{{ "+k+" }}", v)
	}
	return out, nil
}

func (f *fakeCaps) DropContext(context.Context, Handle) error { return nil }
