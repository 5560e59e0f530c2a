// Package plugin defines the contract between the trusted host and an
// untrusted template plugin: the capabilities the plugin may call, the
// action list it returns, and the edit callbacks the host invokes while
// applying that list.
package plugin

import "context"

// Capabilities is the host surface a plugin may call. Every value the host
// owns is addressed by a Handle, never by reference.
type Capabilities interface {
	// Prompt reads a line of text. Empty input without a default returns "".
	Prompt(ctx context.Context, label string, def *string) (string, error)
	Confirm(ctx context.Context, label string, def *bool) (bool, error)
	Select(ctx context.Context, label string, options []string, def *uint8) (uint8, error)

	// ListFiles enumerates the template content tree, one handle per file.
	ListFiles(ctx context.Context) ([]Handle, error)
	FilePath(ctx context.Context, file Handle) (string, error)
	ReadFile(ctx context.Context, file Handle) (string, error)
	ReadFileBinary(ctx context.Context, file Handle) ([]byte, error)
	DropFile(ctx context.Context, file Handle) error

	SetVariable(ctx context.Context, ec Handle, key, value string) error
	EvaluateTemplate(ctx context.Context, ec Handle, tmpl string) (string, error)
	DropContext(ctx context.Context, ec Handle) error
}

// Runtime is what a template sees while it runs: the host capabilities
// plus its own table of edit callbacks.
type Runtime interface {
	Capabilities
	// NewEdit registers e and returns the handle to put in an EditFile action.
	NewEdit(e Edit) Handle
}

// Template is the plugin entry point. It returns the whole action list in
// one call; prompts happen while it runs.
type Template interface {
	Run(ctx context.Context, rt Runtime, ec Handle, opts RunOptions) ([]Action, error)
}

// Edit rewrites the current text of one file. Returning ErrCancel leaves
// the file untouched.
type Edit interface {
	Apply(ctx context.Context, rt Runtime, text string, ec Handle) (string, error)
}

// EditFunc adapts a function to Edit.
type EditFunc func(ctx context.Context, rt Runtime, text string, ec Handle) (string, error)

func (f EditFunc) Apply(ctx context.Context, rt Runtime, text string, ec Handle) (string, error) {
	return f(ctx, rt, text, ec)
}

// Guest is the host-side view of a loaded plugin, in-process or not.
type Guest interface {
	Run(ctx context.Context, ec Handle, opts RunOptions) ([]Action, error)
	ApplyEdit(ctx context.Context, edit Handle, text string, ec Handle) (string, error)
	// DropEdit disposes an edit handle. Callers must call it exactly once
	// per EditFile action they consume.
	DropEdit(ctx context.Context, edit Handle) error
	Close() error
}

// Normalize maps an arbitrary plugin error onto the three outcomes the host
// distinguishes: cancel, trap and other.
func Normalize(err error) error {
	switch {
	case err == nil:
		return nil
	case IsCancel(err):
		return ErrCancel
	case IsTrap(err):
		return err
	}
	if oe, ok := err.(*OtherError); ok {
		return oe
	}
	return &OtherError{Message: err.Error()}
}
