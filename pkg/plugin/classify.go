package plugin

import (
	"context"
	"fmt"
	"slices"
	"strings"
)

const (
	rawSuffix  = ".raw"
	tmplSuffix = ".tmpl"
)

// Classify picks the copy action for one content-tree path. dest renders a
// destination path; it receives the path with any .raw/.tmpl suffix removed.
//
//	x.raw  → CopyFileToRaw(x.raw, x)
//	x.tmpl → CopyFileToSubstituted(x.tmpl, x)
//	x      → CopyFileSubstituted(x)
func Classify(path string, dest func(string) (string, error)) (Action, error) {
	if prefix, ok := strings.CutSuffix(path, rawSuffix); ok {
		to, err := dest(prefix)
		if err != nil {
			return Action{}, err
		}
		return CopyFileToRaw(path, to), nil
	}
	if prefix, ok := strings.CutSuffix(path, tmplSuffix); ok {
		to, err := dest(prefix)
		if err != nil {
			return Action{}, err
		}
		return CopyFileToSubstituted(path, to), nil
	}

	to, err := dest(path)
	if err != nil {
		return Action{}, err
	}
	if to == path {
		return CopyFileSubstituted(path), nil
	}
	// Templated file names keep rendering but need a distinct destination.
	return CopyFileToSubstituted(path, to), nil
}

// ClassifyContent enumerates the content tree once and classifies every
// file not listed in skip. Destination paths are rendered through ec, so a
// file named "{{ .project_name }}.txt" lands under the project's name. All
// file handles are dropped before returning.
func ClassifyContent(ctx context.Context, caps Capabilities, ec Handle, skip []string) ([]Action, error) {
	files, err := caps.ListFiles(ctx)
	if err != nil {
		return nil, err
	}

	var (
		actions  []Action
		firstErr error
	)
	for _, f := range files {
		if firstErr == nil {
			firstErr = classifyOne(ctx, caps, ec, f, skip, &actions)
		}
		if err := caps.DropFile(ctx, f); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return actions, nil
}

func classifyOne(ctx context.Context, caps Capabilities, ec Handle, f Handle, skip []string, out *[]Action) error {
	path, err := caps.FilePath(ctx, f)
	if err != nil {
		return err
	}
	if slices.Contains(skip, path) {
		return nil
	}
	action, err := Classify(path, func(p string) (string, error) {
		return caps.EvaluateTemplate(ctx, ec, p)
	})
	if err != nil {
		return fmt.Errorf("classify %s: %w", path, err)
	}
	*out = append(*out, action)
	return nil
}
