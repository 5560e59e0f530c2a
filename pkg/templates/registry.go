// Package templates registers the templates compiled into the host.
package templates

import (
	"sort"

	"github.com/ormasoftchile/scaff/pkg/plugin"
	"github.com/ormasoftchile/scaff/pkg/templates/fruit"
	"github.com/ormasoftchile/scaff/pkg/templates/httpcomponent"
)

var builtins = map[string]plugin.Template{
	httpcomponent.Name: httpcomponent.Template{},
	fruit.Name:         fruit.Template{},
}

// Lookup returns the builtin template registered as name.
func Lookup(name string) (plugin.Template, bool) {
	t, ok := builtins[name]
	return t, ok
}

// Names lists the builtin templates.
func Names() []string {
	names := make([]string, 0, len(builtins))
	for n := range builtins {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
