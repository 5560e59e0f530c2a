package executor

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ormasoftchile/scaff/pkg/logging"
	"github.com/ormasoftchile/scaff/pkg/plugin"
	"github.com/ormasoftchile/scaff/pkg/render"
	"github.com/rs/zerolog"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// Apply performs actions for real. Copies read from ContentDir, every
// target lands under OutputDir, and edit callbacks run in Guest.
type Apply struct {
	Guest      plugin.Guest
	Context    plugin.Handle   // handle passed to edit callbacks
	Vars       *render.Context // renders substituted copies
	ContentDir string
	OutputDir  string
	Log        *zerolog.Logger

	// one edit callback at a time
	editMu sync.Mutex
}

var _ Executor = (*Apply)(nil)

func (x *Apply) logger() *zerolog.Logger {
	if x.Log != nil {
		return x.Log
	}
	return logging.L()
}

func (x *Apply) Execute(ctx context.Context, a plugin.Action) error {
	if a.Kind == plugin.KindEditFile && a.Edit != 0 {
		// the handle must be dropped even when the path is rejected
		return x.edit(ctx, a.Path, a.Edit)
	}
	if err := a.Validate(); err != nil {
		return err
	}

	switch a.Kind {
	case plugin.KindCopyFileSubstituted:
		return x.copySubstituted(a.Path, a.Path)
	case plugin.KindCopyFileToSubstituted:
		return x.copySubstituted(a.From, a.To)
	case plugin.KindCopyFileToRaw:
		return x.copyRaw(a.From, a.To)
	case plugin.KindWriteFile:
		return x.write(a.Path, []byte(a.Text), 0o644)
	case plugin.KindWriteFileBinary:
		return x.write(a.Path, a.Bytes, 0o644)
	case plugin.KindCreateDir:
		dir, err := resolve(x.OutputDir, a.Path)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", a.Path, err)
		}
		return nil
	}
	return fmt.Errorf("unknown action kind %q", a.Kind)
}

func (x *Apply) readSource(rel string) ([]byte, fs.FileMode, error) {
	src, err := resolve(x.ContentDir, rel)
	if err != nil {
		return nil, 0, err
	}
	info, err := os.Stat(src)
	if err != nil {
		return nil, 0, fmt.Errorf("stat %s: %w", rel, err)
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return nil, 0, fmt.Errorf("read %s: %w", rel, err)
	}
	return data, info.Mode().Perm(), nil
}

func (x *Apply) copySubstituted(from, to string) error {
	data, perm, err := x.readSource(from)
	if err != nil {
		return err
	}
	out, err := x.Vars.Evaluate(string(data))
	if err != nil {
		return fmt.Errorf("render %s: %w", from, err)
	}
	return x.write(to, []byte(out), perm)
}

func (x *Apply) copyRaw(from, to string) error {
	data, perm, err := x.readSource(from)
	if err != nil {
		return err
	}
	return x.write(to, data, perm)
}

func (x *Apply) write(rel string, data []byte, perm fs.FileMode) error {
	dst, err := resolve(x.OutputDir, rel)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create parent of %s: %w", rel, err)
	}
	if err := os.WriteFile(dst, data, perm); err != nil {
		return fmt.Errorf("write %s: %w", rel, err)
	}
	x.logger().Debug().Str("path", rel).Int("bytes", len(data)).Msg("wrote file")
	return nil
}

// edit runs the edit callback on the target's current text. The handle is
// dropped exactly once whatever the callback returns.
func (x *Apply) edit(ctx context.Context, rel string, edit plugin.Handle) (err error) {
	defer func() {
		if derr := x.Guest.DropEdit(ctx, edit); derr != nil && err == nil {
			err = fmt.Errorf("drop edit for %s: %w", rel, derr)
		}
	}()

	dst, err := resolve(x.OutputDir, rel)
	if err != nil {
		return err
	}

	before := ""
	data, err := os.ReadFile(dst)
	switch {
	case err == nil:
		before = string(data)
	case errors.Is(err, fs.ErrNotExist):
	default:
		return fmt.Errorf("read %s: %w", rel, err)
	}

	x.editMu.Lock()
	after, err := x.Guest.ApplyEdit(ctx, edit, before, x.Context)
	x.editMu.Unlock()
	if err != nil {
		if plugin.IsCancel(err) {
			x.logger().Info().Str("path", rel).Msg("edit cancelled, file left unchanged")
			return nil
		}
		return err
	}

	if after == before {
		x.logger().Debug().Str("path", rel).Msg("edit made no changes")
		return nil
	}
	added, removed := lineChanges(before, after)
	x.logger().Debug().Str("path", rel).Int("added", added).Int("removed", removed).Msg("edited file")
	return x.write(rel, []byte(after), 0o644)
}

// lineChanges counts added and removed lines between two texts.
func lineChanges(before, after string) (added, removed int) {
	dmp := diffmatchpatch.New()
	beforeChars, afterChars, lineArray := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffMain(beforeChars, afterChars, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)
	for _, d := range diffs {
		n := countLines(d.Text)
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			added += n
		case diffmatchpatch.DiffDelete:
			removed += n
		}
	}
	return added, removed
}

func countLines(s string) int {
	if s == "" {
		return 0
	}
	n := strings.Count(s, "\n")
	if !strings.HasSuffix(s, "\n") {
		n++
	}
	return n
}
