// Package executor carries out the action list a template returned.
// Preview describes each action without touching anything; Apply performs
// them against the output directory.
package executor

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ormasoftchile/scaff/pkg/plugin"
)

// ErrPathEscape is returned for action paths that are absolute or climb
// out of their root directory.
var ErrPathEscape = errors.New("path escapes root directory")

// Executor performs one action.
type Executor interface {
	Execute(ctx context.Context, a plugin.Action) error
}

// ExecuteAll runs actions in order and stops at the first error. Effects
// of earlier actions are kept.
func ExecuteAll(ctx context.Context, e Executor, actions []plugin.Action) error {
	for i, a := range actions {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := e.Execute(ctx, a); err != nil {
			return fmt.Errorf("action %d (%s): %w", i+1, a.Kind, err)
		}
	}
	return nil
}

// resolve joins a slash-separated relative path onto root.
func resolve(root, rel string) (string, error) {
	if rel == "" {
		return "", fmt.Errorf("%w: empty path", ErrPathEscape)
	}
	native := filepath.FromSlash(rel)
	if filepath.IsAbs(native) || filepath.VolumeName(native) != "" || strings.HasPrefix(rel, "/") {
		return "", fmt.Errorf("%w: %s", ErrPathEscape, rel)
	}
	clean := filepath.Clean(native)
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrPathEscape, rel)
	}
	return filepath.Join(root, clean), nil
}
