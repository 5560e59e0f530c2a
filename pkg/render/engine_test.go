package render

import (
	"errors"
	"strings"
	"sync"
	"testing"
)

func TestRender(t *testing.T) {
	e, err := NewEngine()
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	vars := map[string]string{"project-name": "My App", "route": "/hello"}

	tests := []struct {
		name string
		tmpl string
		want string
	}{
		{"literal fast path", "no templates here", "no templates here"},
		{"alias field", "{{ .project_name }}", "My App"},
		{"filter pipe", "{{ .project_name | kebab_case }}", "my-app"},
		{"chained filters", "{{ .project_name | kebab_case | pascal_case }}", "MyApp"},
		{"var function", `{{ var "project-name" | snake_case }}`, "my_app"},
		{"missing key renders empty", "[{{ .nope }}]", "[]"},
		{"wildcard", "{{ .route | http_wildcard }}", "/hello/..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.Render(tt.tmpl, vars)
			if err != nil {
				t.Fatalf("Render: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderErrors(t *testing.T) {
	boom := NewFilter("boom", func(string) (string, error) { return "", errors.New("kaboom") })
	e, err := NewEngine(boom)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	tests := []struct {
		name  string
		tmpl  string
		stage string
	}{
		{"unknown filter", "{{ .x | no_such_filter }}", "parse"},
		{"unterminated action", "{{ .x ", "parse"},
		{"filter failure", "{{ .x | boom }}", "execute"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Render(tt.tmpl, map[string]string{"x": "1"})
			var re *RenderError
			if !errors.As(err, &re) {
				t.Fatalf("err = %v, want *RenderError", err)
			}
			if re.Stage != tt.stage {
				t.Errorf("stage = %q, want %q", re.Stage, tt.stage)
			}
		})
	}
}

func TestEngineFilterPlugins(t *testing.T) {
	spork := NewFilter("spork", func(s string) (string, error) {
		return strings.Join(strings.Split(s, "-"), "-SPORK-"), nil
	})
	e, err := NewEngine(spork)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	got, err := e.Render("{{ .name | spork }}", map[string]string{"name": "a-b-c"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got != "a-SPORK-b-SPORK-c" {
		t.Errorf("got %q", got)
	}

	found := false
	for _, n := range e.Filters() {
		if n == "spork" {
			found = true
		}
	}
	if !found {
		t.Errorf("Filters() = %v, missing spork", e.Filters())
	}

	if _, err := NewEngine(spork, spork); err == nil {
		t.Error("expected duplicate filter registration to fail")
	}
	if _, err := NewEngine(NewFilter("var", nil)); err == nil {
		t.Error("expected reserved name to be rejected")
	}
}

func TestContextEvaluateIdempotent(t *testing.T) {
	e, _ := NewEngine()
	c := NewContext(e, map[string]string{"name": "x"})

	first, err := c.Evaluate("hello {{ .name }}")
	if err != nil {
		t.Fatal(err)
	}
	second, err := c.Evaluate("hello {{ .name }}")
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Errorf("renders differ: %q vs %q", first, second)
	}

	c.SetVariable("name", "y")
	third, _ := c.Evaluate("hello {{ .name }}")
	if third != "hello y" {
		t.Errorf("after SetVariable: %q", third)
	}
}

func TestContextSetDefault(t *testing.T) {
	e, _ := NewEngine()
	c := NewContext(e, map[string]string{"authors": "me"})

	if c.SetDefault("authors", "someone else") {
		t.Error("SetDefault overwrote an existing value")
	}
	if !c.SetDefault("project-name", "demo") {
		t.Error("SetDefault did not bind a missing key")
	}
	if v, _ := c.Variable("authors"); v != "me" {
		t.Errorf("authors = %q", v)
	}
	if v, _ := c.Variable("project-name"); v != "demo" {
		t.Errorf("project-name = %q", v)
	}
}

func TestContextSnapshotIsolation(t *testing.T) {
	e, _ := NewEngine()
	c := NewContext(e, nil)
	c.SetVariable("a", "1")
	snap := c.Variables()
	snap["a"] = "mutated"
	if v, _ := c.Variable("a"); v != "1" {
		t.Errorf("snapshot aliases context state: a = %q", v)
	}
}

func TestContextConcurrentAccess(t *testing.T) {
	e, _ := NewEngine()
	c := NewContext(e, map[string]string{"n": "0"})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			c.SetVariable("n", "1")
		}()
		go func() {
			defer wg.Done()
			if _, err := c.Evaluate("{{ .n }}"); err != nil {
				t.Errorf("Evaluate: %v", err)
			}
		}()
	}
	wg.Wait()
}
