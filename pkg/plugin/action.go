package plugin

import (
	"encoding/json"
	"fmt"

	"github.com/ormasoftchile/scaff/pkg/resource"
)

// Handle is the integer reference plugins use for host and guest resources.
type Handle = resource.Handle

// ActionKind discriminates the Action union.
type ActionKind string

const (
	KindCopyFileSubstituted   ActionKind = "copy-file-substituted"
	KindCopyFileToSubstituted ActionKind = "copy-file-to-substituted"
	KindCopyFileToRaw         ActionKind = "copy-file-to-raw"
	KindWriteFile             ActionKind = "write-file"
	KindWriteFileBinary       ActionKind = "write-file-binary"
	KindCreateDir             ActionKind = "create-dir"
	KindEditFile              ActionKind = "edit-file"
)

// Action is one declarative filesystem effect. Which fields are set
// depends on Kind; the constructors below are the supported shapes.
type Action struct {
	Kind ActionKind `json:"kind" jsonschema:"required,enum=copy-file-substituted,enum=copy-file-to-substituted,enum=copy-file-to-raw,enum=write-file,enum=write-file-binary,enum=create-dir,enum=edit-file"`
	// Path is the target of copy-file-substituted, write-*, create-dir and edit-file.
	Path string `json:"path,omitempty"`
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`
	Text string `json:"text,omitempty"`
	// Bytes is base64 on the wire.
	Bytes []byte `json:"bytes,omitempty"`
	// Edit is a guest-owned edit callback; the host disposes it after use.
	Edit Handle `json:"edit,omitempty"`
}

func CopyFileSubstituted(path string) Action {
	return Action{Kind: KindCopyFileSubstituted, Path: path}
}

func CopyFileToSubstituted(from, to string) Action {
	return Action{Kind: KindCopyFileToSubstituted, From: from, To: to}
}

func CopyFileToRaw(from, to string) Action {
	return Action{Kind: KindCopyFileToRaw, From: from, To: to}
}

func WriteFile(path, text string) Action {
	return Action{Kind: KindWriteFile, Path: path, Text: text}
}

func WriteFileBinary(path string, data []byte) Action {
	return Action{Kind: KindWriteFileBinary, Path: path, Bytes: data}
}

func CreateDir(path string) Action {
	return Action{Kind: KindCreateDir, Path: path}
}

func EditFile(path string, edit Handle) Action {
	return Action{Kind: KindEditFile, Path: path, Edit: edit}
}

// Source returns the content-tree path a copy action reads, or "".
func (a Action) Source() string {
	switch a.Kind {
	case KindCopyFileSubstituted:
		return a.Path
	case KindCopyFileToSubstituted, KindCopyFileToRaw:
		return a.From
	}
	return ""
}

// Target returns the output path the action writes or edits.
func (a Action) Target() string {
	switch a.Kind {
	case KindCopyFileToSubstituted, KindCopyFileToRaw:
		return a.To
	}
	return a.Path
}

// String is the one-line preview description of the action.
func (a Action) String() string {
	switch a.Kind {
	case KindCopyFileSubstituted:
		return fmt.Sprintf("Copy %s", a.Path)
	case KindCopyFileToSubstituted:
		return fmt.Sprintf("Copy file %s to %s", a.From, a.To)
	case KindCopyFileToRaw:
		return fmt.Sprintf("Copy raw file %s to %s", a.From, a.To)
	case KindWriteFile:
		return fmt.Sprintf("Write '%s' to %s", a.Text, a.Path)
	case KindWriteFileBinary:
		return fmt.Sprintf("Write %d bytes to %s", len(a.Bytes), a.Path)
	case KindCreateDir:
		return fmt.Sprintf("Create directory %s", a.Path)
	case KindEditFile:
		return fmt.Sprintf("Edit %s", a.Path)
	}
	return fmt.Sprintf("Unknown action %q", string(a.Kind))
}

// Validate checks that the fields required by Kind are present.
func (a Action) Validate() error {
	switch a.Kind {
	case KindCopyFileSubstituted, KindWriteFile, KindWriteFileBinary, KindCreateDir:
		if a.Path == "" {
			return fmt.Errorf("%s: path is required", a.Kind)
		}
	case KindCopyFileToSubstituted, KindCopyFileToRaw:
		if a.From == "" || a.To == "" {
			return fmt.Errorf("%s: from and to are required", a.Kind)
		}
	case KindEditFile:
		if a.Path == "" {
			return fmt.Errorf("%s: path is required", a.Kind)
		}
		if a.Edit == 0 {
			return fmt.Errorf("%s: edit handle is required", a.Kind)
		}
	default:
		return fmt.Errorf("unknown action kind %q", string(a.Kind))
	}
	return nil
}

// ModeKind discriminates Mode.
type ModeKind string

const (
	ModeCreateNew ModeKind = "create-new"
	ModeAddTo     ModeKind = "add-to"
)

// Mode says whether the run creates a project or adds to an existing one.
type Mode struct {
	Kind ModeKind `json:"kind" jsonschema:"required,enum=create-new,enum=add-to"`
	// Manifest names the existing project manifest for add-to runs.
	Manifest string `json:"manifest,omitempty"`
}

// CreateNew is the mode for a brand-new project.
func CreateNew() Mode { return Mode{Kind: ModeCreateNew} }

// AddTo is the mode for adding to the project described by manifest.
func AddTo(manifest string) Mode { return Mode{Kind: ModeAddTo, Manifest: manifest} }

// IsAddTo reports whether m is an add-to mode and returns the manifest.
func (m Mode) IsAddTo() (string, bool) {
	return m.Manifest, m.Kind == ModeAddTo
}

func (m Mode) String() string {
	if m.Kind == ModeAddTo {
		return fmt.Sprintf("add-to(%s)", m.Manifest)
	}
	return string(ModeCreateNew)
}

// UnmarshalJSON defaults an empty kind to create-new.
func (m *Mode) UnmarshalJSON(data []byte) error {
	type raw Mode
	var r raw
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	if r.Kind == "" {
		r.Kind = ModeCreateNew
	}
	if r.Kind != ModeCreateNew && r.Kind != ModeAddTo {
		return fmt.Errorf("unknown mode %q", string(r.Kind))
	}
	*m = Mode(r)
	return nil
}

// RunOptions are passed to Template.Run.
type RunOptions struct {
	Mode             Mode `json:"mode"`
	UseDefaultValues bool `json:"use_default_values"`
}
