package scaffold

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/ormasoftchile/scaff/pkg/executor"
	"github.com/ormasoftchile/scaff/pkg/host"
	"github.com/ormasoftchile/scaff/pkg/logging"
	"github.com/ormasoftchile/scaff/pkg/plugin"
	"github.com/ormasoftchile/scaff/pkg/prompt"
	"github.com/ormasoftchile/scaff/pkg/render"
)

// editingTemplate returns a copy of a file that may not exist followed by
// an edit.
type editingTemplate struct{ source string }

func (t editingTemplate) Run(_ context.Context, rt plugin.Runtime, _ plugin.Handle, _ plugin.RunOptions) ([]plugin.Action, error) {
	e := rt.NewEdit(plugin.EditFunc(func(_ context.Context, _ plugin.Runtime, text string, _ plugin.Handle) (string, error) {
		return text + "edited\n", nil
	}))
	return []plugin.Action{
		plugin.CopyFileSubstituted(t.source),
		plugin.EditFile("a.txt", e),
	}, nil
}

func TestRunActionsReleasesEdits(t *testing.T) {
	tests := []struct {
		name      string
		source    string
		dryRun    bool
		wantErr   bool
		wantEdits int
	}{
		{name: "apply stops before edit", source: "missing.txt", wantErr: true},
		{name: "apply reaches edit", source: "present.txt"},
		{name: "dry run", source: "missing.txt", dryRun: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content, out := t.TempDir(), t.TempDir()
			if err := os.WriteFile(filepath.Join(content, "present.txt"), []byte("hi\n"), 0o644); err != nil {
				t.Fatal(err)
			}
			eng, err := render.NewEngine()
			if err != nil {
				t.Fatal(err)
			}
			ec := render.NewContext(eng, nil)
			h := host.New(content, prompt.Defaults{})
			ech := h.NewContext(ec)
			guest := plugin.NewLocal(editingTemplate{source: tt.source}, h)
			ctx := context.Background()

			actions, err := guest.Run(ctx, ech, plugin.RunOptions{Mode: plugin.CreateNew()})
			if err != nil {
				t.Fatal(err)
			}

			var ex executor.Executor = &executor.Preview{Out: &bytes.Buffer{}}
			if !tt.dryRun {
				ex = &executor.Apply{Guest: guest, Context: ech, Vars: ec, ContentDir: content, OutputDir: out}
			}
			_, err = runActions(ctx, ex, guest, actions, tt.dryRun, logging.L())
			if (err != nil) != tt.wantErr {
				t.Fatalf("runActions err = %v, wantErr %v", err, tt.wantErr)
			}
			if n := guest.LiveEdits(); n != tt.wantEdits {
				t.Errorf("%d edit handles live after the run, want %d", n, tt.wantEdits)
			}
		})
	}
}

func TestRunActionsReleasesEditsOnCancelledContext(t *testing.T) {
	h := host.New(t.TempDir(), prompt.Defaults{})
	eng, err := render.NewEngine()
	if err != nil {
		t.Fatal(err)
	}
	ech := h.NewContext(render.NewContext(eng, nil))
	guest := plugin.NewLocal(editingTemplate{source: "x.txt"}, h)

	actions, err := guest.Run(context.Background(), ech, plugin.RunOptions{Mode: plugin.CreateNew()})
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := runActions(ctx, &executor.Preview{Out: &bytes.Buffer{}}, guest, actions, false, logging.L()); err == nil {
		t.Error("expected the cancelled context to stop the run")
	}
	if n := guest.LiveEdits(); n != 0 {
		t.Errorf("%d edit handles live after a cancelled run", n)
	}
}
