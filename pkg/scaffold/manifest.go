package scaffold

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/pelletier/go-toml/v2"
)

// ManifestFile is the conventional template manifest name.
const ManifestFile = "template.toml"

// DefaultContentDir holds the files a template copies, relative to the
// manifest.
const DefaultContentDir = "content"

// TemplateManifest describes one installed template.
type TemplateManifest struct {
	// Template is the plugin executable, relative to the manifest.
	Template string `toml:"template"`
	// Builtin names a template compiled into the host instead.
	Builtin        string            `toml:"builtin"`
	Content        string            `toml:"content"`
	MinHostVersion string            `toml:"min_host_version"`
	Description    string            `toml:"description"`
	Filters        map[string]string `toml:"filters"`
	Variables      map[string]string `toml:"variables"`
	Skip           []SkipRule        `toml:"skip"`

	dir string
}

// ErrInvalidManifest is wrapped by every manifest validation failure.
var ErrInvalidManifest = errors.New("invalid template manifest")

// LoadManifest reads a template manifest. path may name the manifest file
// or the directory holding template.toml.
func LoadManifest(path string) (*TemplateManifest, error) {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, ManifestFile)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("manifest load failed (%s): %w", path, err)
	}
	var m TemplateManifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("manifest parse failed (%s): %w", path, err)
	}

	abs, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	m.dir = abs
	if m.Content == "" {
		m.Content = DefaultContentDir
	}
	if err := m.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &m, nil
}

func (m *TemplateManifest) validate() error {
	switch {
	case m.Template == "" && m.Builtin == "":
		return fmt.Errorf("%w: one of template or builtin is required", ErrInvalidManifest)
	case m.Template != "" && m.Builtin != "":
		return fmt.Errorf("%w: template and builtin are mutually exclusive", ErrInvalidManifest)
	}
	for name, exe := range m.Filters {
		if name == "" || exe == "" {
			return fmt.Errorf("%w: filter %q has no executable", ErrInvalidManifest, name)
		}
	}
	for _, r := range m.Skip {
		if err := r.validate(); err != nil {
			return err
		}
	}
	if m.MinHostVersion != "" {
		if _, err := hostConstraint(m.MinHostVersion); err != nil {
			return fmt.Errorf("%w: min_host_version %q: %v", ErrInvalidManifest, m.MinHostVersion, err)
		}
	}
	return nil
}

// Dir is the absolute directory holding the manifest.
func (m *TemplateManifest) Dir() string { return m.dir }

// ContentDir is the absolute content tree directory.
func (m *TemplateManifest) ContentDir() string { return m.resolve(m.Content) }

// TemplatePath is the absolute plugin executable path, "" for builtins.
func (m *TemplateManifest) TemplatePath() string {
	if m.Template == "" {
		return ""
	}
	return m.resolve(m.Template)
}

// FilterNames lists the declared filter plugins in order.
func (m *TemplateManifest) FilterNames() []string {
	names := make([]string, 0, len(m.Filters))
	for n := range m.Filters {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// FilterPath is the absolute executable path of filter name.
func (m *TemplateManifest) FilterPath(name string) string {
	return m.resolve(m.Filters[name])
}

func (m *TemplateManifest) resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(m.dir, filepath.FromSlash(p))
}

// CheckHostVersion reports an error when hostVersion does not satisfy the
// manifest's min_host_version. A bare version means "at least".
func (m *TemplateManifest) CheckHostVersion(hostVersion string) error {
	if m.MinHostVersion == "" {
		return nil
	}
	c, err := hostConstraint(m.MinHostVersion)
	if err != nil {
		return fmt.Errorf("%w: min_host_version %q: %v", ErrInvalidManifest, m.MinHostVersion, err)
	}
	v, err := semver.NewVersion(strings.TrimPrefix(hostVersion, "v"))
	if err != nil {
		return fmt.Errorf("parse host version %q: %w", hostVersion, err)
	}
	if !c.Check(v) {
		return fmt.Errorf("template requires host %s, this is %s", m.MinHostVersion, v)
	}
	return nil
}

func hostConstraint(s string) (*semver.Constraints, error) {
	s = strings.TrimSpace(s)
	if _, err := semver.NewVersion(strings.TrimPrefix(s, "v")); err == nil {
		s = ">= " + strings.TrimPrefix(s, "v")
	}
	return semver.NewConstraint(s)
}
