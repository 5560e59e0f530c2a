package scaffold

import (
	"fmt"
	"path"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/ormasoftchile/scaff/pkg/plugin"
)

// SkipRule drops copy actions whose source matches Files when When holds.
// When is an expr-lang condition over mode, add_to and vars, for example
// `mode == "add-to"` or `vars["http-path"] == "/..."`. An empty When
// always holds.
type SkipRule struct {
	When  string   `toml:"when"`
	Files []string `toml:"files"`
}

// skipEnv is the evaluation environment of a skip condition.
func skipEnv(mode plugin.Mode, vars map[string]string) map[string]any {
	_, addTo := mode.IsAddTo()
	if vars == nil {
		vars = map[string]string{}
	}
	return map[string]any{
		"mode":   string(mode.Kind),
		"add_to": addTo,
		"vars":   vars,
	}
}

func (r SkipRule) compile() (*vm.Program, error) {
	if r.When == "" {
		return nil, nil
	}
	env := skipEnv(plugin.CreateNew(), nil)
	program, err := expr.Compile(r.When, expr.Env(env), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile skip condition %q: %w", r.When, err)
	}
	return program, nil
}

func (r SkipRule) validate() error {
	if len(r.Files) == 0 {
		return fmt.Errorf("%w: skip rule %q lists no files", ErrInvalidManifest, r.When)
	}
	for _, f := range r.Files {
		if _, err := path.Match(f, ""); err != nil {
			return fmt.Errorf("%w: skip pattern %q: %v", ErrInvalidManifest, f, err)
		}
	}
	if _, err := r.compile(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidManifest, err)
	}
	return nil
}

func (r SkipRule) matches(source string) bool {
	for _, f := range r.Files {
		if ok, _ := path.Match(f, source); ok {
			return true
		}
	}
	return false
}

// applySkips removes the copy actions excluded by rules. Other actions,
// edits included, are always kept.
func applySkips(rules []SkipRule, actions []plugin.Action, mode plugin.Mode, vars map[string]string) ([]plugin.Action, int, error) {
	if len(rules) == 0 {
		return actions, 0, nil
	}
	env := skipEnv(mode, vars)
	var active []SkipRule
	for _, r := range rules {
		program, err := r.compile()
		if err != nil {
			return nil, 0, err
		}
		if program != nil {
			out, err := expr.Run(program, env)
			if err != nil {
				return nil, 0, fmt.Errorf("eval skip condition %q: %w", r.When, err)
			}
			if hold, _ := out.(bool); !hold {
				continue
			}
		}
		active = append(active, r)
	}

	kept := make([]plugin.Action, 0, len(actions))
	skipped := 0
	for _, a := range actions {
		if src := a.Source(); src != "" && skippedBy(active, src) {
			skipped++
			continue
		}
		kept = append(kept, a)
	}
	return kept, skipped, nil
}

func skippedBy(rules []SkipRule, source string) bool {
	for _, r := range rules {
		if r.matches(source) {
			return true
		}
	}
	return false
}
