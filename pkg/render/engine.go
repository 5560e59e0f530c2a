// Package render holds the execution context shared by host and plugin:
// a guarded variable store plus a text/template renderer extended with
// filters.
package render

import (
	"fmt"
	"sort"
	"strings"
	"text/template"
)

// RenderError reports a template that failed to parse or execute,
// including references to filters that are not registered.
type RenderError struct {
	Stage string // parse, execute
	Err   error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("template %s: %v", e.Stage, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// Engine renders templates with a fixed set of filters. It is immutable
// once built, so one engine serves every render of a run.
type Engine struct {
	funcs template.FuncMap
	names []string
}

// NewEngine registers the built-in filters followed by plugins. A plugin may
// shadow a built-in; two plugins with the same name are rejected.
func NewEngine(plugins ...FilterPlugin) (*Engine, error) {
	e := &Engine{funcs: template.FuncMap{}}
	for _, f := range Builtins() {
		e.funcs[f.Name()] = f.Exec
	}

	seen := make(map[string]bool)
	for _, p := range plugins {
		name := p.Name()
		if name == "" {
			return nil, fmt.Errorf("filter plugin has no name")
		}
		if name == "var" {
			return nil, fmt.Errorf("filter name %q is reserved", name)
		}
		if seen[name] {
			return nil, fmt.Errorf("filter %q registered twice", name)
		}
		seen[name] = true
		e.funcs[name] = p.Exec
	}

	for name := range e.funcs {
		e.names = append(e.names, name)
	}
	sort.Strings(e.names)
	return e, nil
}

// Filters lists the registered filter names.
func (e *Engine) Filters() []string {
	return append([]string(nil), e.names...)
}

// Render executes tmpl against vars. Keys containing '-' are also bound
// with '_' so they can be used as fields: {{ .project_name }}. The var
// function looks a key up verbatim: {{ var "project-name" }}.
func (e *Engine) Render(tmpl string, vars map[string]string) (string, error) {
	if !strings.Contains(tmpl, "{{") {
		return tmpl, nil
	}

	binding := make(map[string]string, len(vars))
	for k, v := range vars {
		binding[k] = v
	}
	for k, v := range vars {
		alias := strings.ReplaceAll(k, "-", "_")
		if _, taken := vars[alias]; !taken {
			binding[alias] = v
		}
	}

	t, err := template.New("").
		Option("missingkey=zero").
		Funcs(e.funcs).
		Funcs(template.FuncMap{"var": func(key string) string { return vars[key] }}).
		Parse(tmpl)
	if err != nil {
		return "", &RenderError{Stage: "parse", Err: err}
	}

	var buf strings.Builder
	if err := t.Execute(&buf, binding); err != nil {
		return "", &RenderError{Stage: "execute", Err: err}
	}
	return buf.String(), nil
}
