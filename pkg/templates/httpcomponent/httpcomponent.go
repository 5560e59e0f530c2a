// Package httpcomponent is the HTTP component template: it copies its
// content tree, asks for the route and a description, and when adding to
// an existing application merges itself into the manifest and the Cargo
// workspace.
package httpcomponent

import (
	"context"

	"github.com/ormasoftchile/scaff/pkg/manifest"
	"github.com/ormasoftchile/scaff/pkg/plugin"
)

// Name is the builtin name of this template.
const Name = "http-component"

// Files owned by a new application; an added component must not copy them.
const (
	ManifestTemplate = "spin.toml.tmpl"
	CargoTemplate    = "Cargo.toml.tmpl"
	CargoManifest    = "Cargo.toml"
)

// Template implements plugin.Template.
type Template struct{}

var _ plugin.Template = Template{}

func (Template) Run(ctx context.Context, rt plugin.Runtime, ec plugin.Handle, opts plugin.RunOptions) ([]plugin.Action, error) {
	target, adding := opts.Mode.IsAddTo()

	var skip []string
	if adding {
		skip = []string{ManifestTemplate, CargoTemplate}
	}
	actions, err := plugin.ClassifyContent(ctx, rt, ec, skip)
	if err != nil {
		return nil, err
	}

	route := "/..."
	httpPath, err := rt.Prompt(ctx, "HTTP route", &route)
	if err != nil {
		return nil, err
	}
	empty := ""
	desc, err := rt.Prompt(ctx, "Description", &empty)
	if err != nil {
		return nil, err
	}

	if err := rt.SetVariable(ctx, ec, "project-description", desc); err != nil {
		return nil, err
	}
	if err := rt.SetVariable(ctx, ec, "http-path", httpPath); err != nil {
		return nil, err
	}

	if adding {
		actions = append(actions,
			plugin.EditFile(target, rt.NewEdit(manifest.AppendSections{Template: ManifestTemplate})),
			plugin.EditFile(CargoManifest, rt.NewEdit(manifest.AppendMember{})),
		)
	}
	return actions, nil
}
