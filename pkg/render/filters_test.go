package render

import "testing"

func TestCaseFilters(t *testing.T) {
	tests := []struct {
		input  string
		kebab  string
		snake  string
		pascal string
	}{
		{"hello", "hello", "hello", "Hello"},
		{"my-project", "my-project", "my_project", "MyProject"},
		{"My Project_name", "my-project-name", "my_project_name", "MyProjectName"},
		{"HelloWorld", "hello-world", "hello_world", "HelloWorld"},
		{"HTTPServer", "http-server", "http_server", "HttpServer"},
		{"  spaced  out ", "spaced-out", "spaced_out", "SpacedOut"},
		{"", "", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := KebabCase(tt.input); got != tt.kebab {
				t.Errorf("KebabCase(%q) = %q, want %q", tt.input, got, tt.kebab)
			}
			if got := SnakeCase(tt.input); got != tt.snake {
				t.Errorf("SnakeCase(%q) = %q, want %q", tt.input, got, tt.snake)
			}
			if got := PascalCase(tt.input); got != tt.pascal {
				t.Errorf("PascalCase(%q) = %q, want %q", tt.input, got, tt.pascal)
			}
		})
	}
}

func TestDottedPascalCase(t *testing.T) {
	if got := DottedPascalCase("acme.my-app"); got != "Acme.MyApp" {
		t.Errorf("DottedPascalCase = %q, want Acme.MyApp", got)
	}
}

func TestHTTPWildcard(t *testing.T) {
	tests := map[string]string{
		"/api":     "/api/...",
		"/api/":    "/api/...",
		"/api/...": "/api/...",
		"/...":     "/...",
	}
	for in, want := range tests {
		if got := HTTPWildcard(in); got != want {
			t.Errorf("HTTPWildcard(%q) = %q, want %q", in, got, want)
		}
	}
}
