package render

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// FilterPlugin is a named text transform usable as a template filter:
// {{ .name | my_filter }}.
type FilterPlugin interface {
	Name() string
	Exec(text string) (string, error)
}

type funcFilter struct {
	name string
	fn   func(string) (string, error)
}

func (f funcFilter) Name() string                     { return f.name }
func (f funcFilter) Exec(text string) (string, error) { return f.fn(text) }

// NewFilter wraps fn as a FilterPlugin.
func NewFilter(name string, fn func(string) (string, error)) FilterPlugin {
	return funcFilter{name: name, fn: fn}
}

// Builtins returns the filters every engine starts with.
func Builtins() []FilterPlugin {
	return []FilterPlugin{
		NewFilter("kebab_case", infallible(KebabCase)),
		NewFilter("snake_case", infallible(SnakeCase)),
		NewFilter("pascal_case", infallible(PascalCase)),
		NewFilter("dotted_pascal_case", infallible(DottedPascalCase)),
		NewFilter("http_wildcard", infallible(HTTPWildcard)),
	}
}

func infallible(fn func(string) string) func(string) (string, error) {
	return func(s string) (string, error) { return fn(s), nil }
}

// KebabCase converts "My Project_name" to "my-project-name".
func KebabCase(s string) string {
	return joinLower(splitWords(s), "-")
}

// SnakeCase converts "My Project-name" to "my_project_name".
func SnakeCase(s string) string {
	return joinLower(splitWords(s), "_")
}

// PascalCase converts "my-project name" to "MyProjectName".
func PascalCase(s string) string {
	title := cases.Title(language.Und)
	var b strings.Builder
	for _, w := range splitWords(s) {
		b.WriteString(title.String(w))
	}
	return b.String()
}

// DottedPascalCase applies PascalCase to each dot-separated segment:
// "acme.my-app" becomes "Acme.MyApp".
func DottedPascalCase(s string) string {
	parts := strings.Split(s, ".")
	for i, p := range parts {
		parts[i] = PascalCase(p)
	}
	return strings.Join(parts, ".")
}

// HTTPWildcard makes an HTTP route match everything below it.
func HTTPWildcard(route string) string {
	switch {
	case strings.HasSuffix(route, "/..."):
		return route
	case strings.HasSuffix(route, "/"):
		return route + "..."
	default:
		return route + "/..."
	}
}

func joinLower(words []string, sep string) string {
	for i, w := range words {
		words[i] = strings.ToLower(w)
	}
	return strings.Join(words, sep)
}

// splitWords breaks s on separators and case boundaries. An upper-case run
// followed by a lower-case letter starts a new word at its last rune, so
// "HTTPServer" splits into "HTTP" and "Server".
func splitWords(s string) []string {
	var words []string
	var cur []rune

	flush := func() {
		if len(cur) > 0 {
			words = append(words, string(cur))
			cur = cur[:0]
		}
	}

	runes := []rune(s)
	for i, r := range runes {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			flush()
			continue
		}
		if unicode.IsUpper(r) && len(cur) > 0 {
			prev := cur[len(cur)-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				flush()
			}
		}
		cur = append(cur, r)
	}
	flush()
	return words
}
