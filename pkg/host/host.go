// Package host implements the capability surface a template plugin runs
// against. The host owns every file and context value; the plugin only
// ever holds handles into the host's tables.
package host

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/ormasoftchile/scaff/pkg/logging"
	"github.com/ormasoftchile/scaff/pkg/plugin"
	"github.com/ormasoftchile/scaff/pkg/prompt"
	"github.com/ormasoftchile/scaff/pkg/render"
	"github.com/ormasoftchile/scaff/pkg/resource"
	"github.com/rs/zerolog"
)

// Host serves plugin.Capabilities for one template content tree.
type Host struct {
	contentRoot string
	prompter    prompt.Prompter
	files       *resource.Table[string]
	contexts    *resource.Table[*render.Context]
	log         *zerolog.Logger
}

var _ plugin.Capabilities = (*Host)(nil)

// New creates a host over contentRoot. Prompts go to p.
func New(contentRoot string, p prompt.Prompter) *Host {
	return &Host{
		contentRoot: contentRoot,
		prompter:    p,
		files:       resource.NewTable[string]("files"),
		contexts:    resource.NewTable[*render.Context]("contexts"),
		log:         logging.L(),
	}
}

// WithLogger replaces the logger used for capability tracing.
func (h *Host) WithLogger(l *zerolog.Logger) *Host {
	h.log = l
	return h
}

// ContentRoot returns the directory ListFiles enumerates.
func (h *Host) ContentRoot() string { return h.contentRoot }

// NewContext registers ec and returns its handle.
func (h *Host) NewContext(ec *render.Context) plugin.Handle {
	return h.contexts.Insert(ec)
}

// Context resolves a context handle.
func (h *Host) Context(ec plugin.Handle) (*render.Context, error) {
	c, err := h.contexts.Get(ec)
	if err != nil {
		return nil, &plugin.Trap{Err: err}
	}
	return *c, nil
}

// OpenFiles returns the number of file handles not yet dropped.
func (h *Host) OpenFiles() int { return h.files.Len() }

// --- ui ---

func (h *Host) Prompt(_ context.Context, label string, def *string) (string, error) {
	h.log.Debug().Str("label", label).Msg("ui.prompt")
	return h.prompter.Text(label, def)
}

func (h *Host) Confirm(_ context.Context, label string, def *bool) (bool, error) {
	h.log.Debug().Str("label", label).Msg("ui.confirm")
	return h.prompter.Confirm(label, def)
}

func (h *Host) Select(_ context.Context, label string, options []string, def *uint8) (uint8, error) {
	h.log.Debug().Str("label", label).Int("options", len(options)).Msg("ui.select")
	return h.prompter.Select(label, options, def)
}

// --- file ---

// ListFiles walks the content root and returns one new handle per regular
// file, ordered by relative path.
func (h *Host) ListFiles(ctx context.Context) ([]plugin.Handle, error) {
	var paths []string
	err := filepath.WalkDir(h.contentRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(h.contentRoot, path)
		if err != nil {
			return err
		}
		paths = append(paths, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, plugin.Otherf("list content %s: %v", h.contentRoot, err)
	}
	sort.Strings(paths)

	handles := make([]plugin.Handle, len(paths))
	for i, p := range paths {
		handles[i] = h.files.Insert(p)
	}
	h.log.Debug().Int("files", len(handles)).Msg("file.list-all")
	return handles, nil
}

func (h *Host) FilePath(_ context.Context, file plugin.Handle) (string, error) {
	p, err := h.files.Get(file)
	if err != nil {
		return "", &plugin.Trap{Err: err}
	}
	return *p, nil
}

func (h *Host) ReadFile(ctx context.Context, file plugin.Handle) (string, error) {
	data, err := h.ReadFileBinary(ctx, file)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (h *Host) ReadFileBinary(_ context.Context, file plugin.Handle) ([]byte, error) {
	p, err := h.files.Get(file)
	if err != nil {
		return nil, &plugin.Trap{Err: err}
	}
	h.log.Debug().Str("path", *p).Msg("file.read")
	data, err := os.ReadFile(filepath.Join(h.contentRoot, filepath.FromSlash(*p)))
	if err != nil {
		return nil, plugin.Otherf("read %s: %v", *p, err)
	}
	return data, nil
}

func (h *Host) DropFile(_ context.Context, file plugin.Handle) error {
	if _, err := h.files.Delete(file); err != nil {
		return &plugin.Trap{Err: err}
	}
	return nil
}

// --- context ---

func (h *Host) SetVariable(_ context.Context, ec plugin.Handle, key, value string) error {
	c, err := h.Context(ec)
	if err != nil {
		return err
	}
	h.log.Debug().Str("key", key).Msg("context.set-variable")
	c.SetVariable(key, value)
	return nil
}

func (h *Host) EvaluateTemplate(_ context.Context, ec plugin.Handle, tmpl string) (string, error) {
	c, err := h.Context(ec)
	if err != nil {
		return "", err
	}
	out, err := c.Evaluate(tmpl)
	if err != nil {
		// render errors surface to the plugin as ordinary failures
		return "", &plugin.OtherError{Message: err.Error()}
	}
	return out, nil
}

func (h *Host) DropContext(_ context.Context, ec plugin.Handle) error {
	if _, err := h.contexts.Delete(ec); err != nil {
		return &plugin.Trap{Err: err}
	}
	return nil
}
