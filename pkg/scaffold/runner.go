// Package scaffold runs one template end to end: it loads the manifest,
// starts the template and any filter plugins, lets the template ask its
// questions, and then previews or applies the returned actions.
package scaffold

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/ormasoftchile/scaff/pkg/executor"
	"github.com/ormasoftchile/scaff/pkg/host"
	"github.com/ormasoftchile/scaff/pkg/logging"
	"github.com/ormasoftchile/scaff/pkg/plugin"
	"github.com/ormasoftchile/scaff/pkg/prompt"
	"github.com/ormasoftchile/scaff/pkg/render"
	"github.com/ormasoftchile/scaff/pkg/rpc"
	"github.com/ormasoftchile/scaff/pkg/templates"
	"github.com/rs/zerolog"
)

// HostVersion is compared against a template's min_host_version.
var HostVersion = "0.3.0"

// Fallback values for variables every template may rely on.
const (
	DefaultProjectName = "merlin-the-happy-project"
	DefaultAuthors     = "merlin-the-happy-pig"
)

// Config is one run's input.
type Config struct {
	Manifest  *TemplateManifest
	OutputDir string
	// AddTo is the existing application manifest; empty creates a new
	// project. Relative paths are taken from OutputDir.
	AddTo       string
	DryRun      bool
	UseDefaults bool
	// Prompter answers prompts; nil means the terminal.
	Prompter prompt.Prompter
	// Variables override the manifest's [variables].
	Variables map[string]string
	// Preview receives dry-run output; nil means stdout.
	Preview io.Writer
}

// Outcome reports what a run did.
type Outcome struct {
	RunID     string
	Cancelled bool
	Actions   []plugin.Action
	Applied   int
}

// Runner executes templates.
type Runner struct {
	Log *zerolog.Logger
}

// Run executes cfg. A cancelled run returns an Outcome with Cancelled set,
// a nil error and no effects on disk.
func (r *Runner) Run(ctx context.Context, cfg Config) (*Outcome, error) {
	m := cfg.Manifest
	if m == nil {
		return nil, fmt.Errorf("no template manifest")
	}
	runID := uuid.NewString()
	base := r.Log
	if base == nil {
		base = logging.L()
	}
	log := base.With().Str("run", runID).Logger()

	if err := m.CheckHostVersion(HostVersion); err != nil {
		return nil, err
	}

	outputDir, err := filepath.Abs(cfg.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("resolve output directory: %w", err)
	}
	opts := plugin.RunOptions{Mode: plugin.CreateNew(), UseDefaultValues: cfg.UseDefaults}
	if cfg.AddTo != "" {
		rel, err := relativeTo(outputDir, cfg.AddTo)
		if err != nil {
			return nil, err
		}
		opts.Mode = plugin.AddTo(rel)
	}

	// --- filters ---
	var filters []render.FilterPlugin
	for _, name := range m.FilterNames() {
		f, err := rpc.SpawnFilter(ctx, name, m.FilterPath(name))
		if err != nil {
			return nil, fmt.Errorf("start filter %s: %w", name, err)
		}
		defer f.Close()
		filters = append(filters, f)
	}
	engine, err := render.NewEngine(filters...)
	if err != nil {
		return nil, err
	}

	// --- context ---
	vars := make(map[string]string, len(m.Variables)+len(cfg.Variables))
	for k, v := range m.Variables {
		vars[k] = v
	}
	for k, v := range cfg.Variables {
		vars[k] = v
	}
	ec := render.NewContext(engine, vars)
	ec.SetDefault("project-name", DefaultProjectName)
	ec.SetDefault("authors", DefaultAuthors)

	p := cfg.Prompter
	switch {
	case cfg.UseDefaults:
		p = prompt.Defaults{}
	case p == nil:
		p = prompt.NewTerminal()
	}
	h := host.New(m.ContentDir(), p).WithLogger(&log)
	ech := h.NewContext(ec)
	defer h.DropContext(ctx, ech)

	// --- guest ---
	guest, err := r.startGuest(ctx, m, h)
	if err != nil {
		return nil, err
	}
	defer guest.Close()

	log.Info().Str("mode", opts.Mode.String()).Str("output", outputDir).Msg("running template")
	actions, err := guest.Run(ctx, ech, opts)
	if plugin.IsCancel(err) {
		log.Info().Msg("template cancelled")
		return &Outcome{RunID: runID, Cancelled: true}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("template run: %w", err)
	}
	log.Debug().Int("actions", len(actions)).Msg("template returned")

	actions, skipped, err := applySkips(m.Skip, actions, opts.Mode, ec.Variables())
	if err != nil {
		releaseEdits(ctx, guest, actions, &log)
		return nil, err
	}
	if skipped > 0 {
		log.Info().Int("skipped", skipped).Msg("skip rules applied")
	}

	// --- execute ---
	var ex executor.Executor
	if cfg.DryRun {
		out := cfg.Preview
		if out == nil {
			out = os.Stdout
		}
		ex = &executor.Preview{Out: out}
	} else {
		if err := os.MkdirAll(outputDir, 0o755); err != nil {
			releaseEdits(ctx, guest, actions, &log)
			return nil, fmt.Errorf("create output directory: %w", err)
		}
		ex = &executor.Apply{
			Guest:      guest,
			Context:    ech,
			Vars:       ec,
			ContentDir: m.ContentDir(),
			OutputDir:  outputDir,
			Log:        &log,
		}
	}
	outcome := &Outcome{RunID: runID, Actions: actions}
	outcome.Applied, err = runActions(ctx, ex, guest, actions, cfg.DryRun, &log)
	if err != nil {
		return outcome, err
	}
	log.Info().Int("applied", outcome.Applied).Bool("dry_run", cfg.DryRun).Msg("template done")
	return outcome, nil
}

// runActions executes actions with ex and then drops the edit handles ex
// never disposed: every edit of a dry run, and the edits after the action
// an applied run stopped at.
func runActions(ctx context.Context, ex executor.Executor, guest plugin.Guest, actions []plugin.Action, dryRun bool, log *zerolog.Logger) (int, error) {
	counter := &counting{Executor: ex}
	err := executor.ExecuteAll(ctx, counter, actions)
	pending := actions[counter.reached:]
	if dryRun {
		pending = actions
	}
	releaseEdits(ctx, guest, pending, log)
	return counter.n, err
}

// releaseEdits drops the edit handles carried by actions. It runs even
// when ctx is already cancelled.
func releaseEdits(ctx context.Context, guest plugin.Guest, actions []plugin.Action, log *zerolog.Logger) {
	ctx = context.WithoutCancel(ctx)
	for _, a := range actions {
		if a.Kind != plugin.KindEditFile || a.Edit == 0 {
			continue
		}
		if err := guest.DropEdit(ctx, a.Edit); err != nil {
			log.Warn().Err(err).Str("path", a.Path).Msg("drop edit")
		}
	}
}

func (r *Runner) startGuest(ctx context.Context, m *TemplateManifest, caps plugin.Capabilities) (plugin.Guest, error) {
	if m.Builtin != "" {
		tmpl, ok := templates.Lookup(m.Builtin)
		if !ok {
			return nil, fmt.Errorf("unknown builtin template %q (have %s)", m.Builtin, strings.Join(templates.Names(), ", "))
		}
		return plugin.NewLocal(tmpl, caps), nil
	}
	g, err := rpc.SpawnGuest(ctx, m.TemplatePath(), caps)
	if err != nil {
		return nil, fmt.Errorf("start template: %w", err)
	}
	return g, nil
}

// relativeTo expresses p as a slash path under root.
func relativeTo(root, p string) (string, error) {
	if !filepath.IsAbs(p) {
		p = filepath.Join(root, p)
	}
	rel, err := filepath.Rel(root, p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s is outside %s", executor.ErrPathEscape, p, root)
	}
	return filepath.ToSlash(rel), nil
}

// counting tracks how many actions reached the executor and how many of
// them succeeded.
type counting struct {
	executor.Executor
	reached int
	n       int
}

func (c *counting) Execute(ctx context.Context, a plugin.Action) error {
	c.reached++
	if err := c.Executor.Execute(ctx, a); err != nil {
		return err
	}
	c.n++
	return nil
}
