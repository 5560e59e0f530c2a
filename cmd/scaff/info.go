package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/ormasoftchile/scaff/pkg/scaffold"
	"github.com/spf13/cobra"
)

// --- info ---

var infoCmd = &cobra.Command{
	Use:   "info <template>",
	Short: "Describe a template",
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

func runInfo(cmd *cobra.Command, args []string) error {
	m, err := scaffold.LoadManifest(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderMarkdown(describe(m)))
	return nil
}

// describe builds the markdown summary of a template manifest.
func describe(m *scaffold.TemplateManifest) string {
	var b strings.Builder
	if m.Description != "" {
		b.WriteString(strings.TrimSpace(m.Description))
		b.WriteString("\n\n")
	}

	b.WriteString("| | |\n|---|---|\n")
	if m.Builtin != "" {
		fmt.Fprintf(&b, "| builtin | `%s` |\n", m.Builtin)
	} else {
		fmt.Fprintf(&b, "| plugin | `%s` |\n", m.Template)
	}
	fmt.Fprintf(&b, "| content | `%s` |\n", m.Content)
	if m.MinHostVersion != "" {
		fmt.Fprintf(&b, "| host | `%s` |\n", m.MinHostVersion)
	}

	if names := m.FilterNames(); len(names) > 0 {
		b.WriteString("\n**Filters**\n\n")
		for _, n := range names {
			fmt.Fprintf(&b, "- `%s` → `%s`\n", n, m.Filters[n])
		}
	}
	if len(m.Variables) > 0 {
		b.WriteString("\n**Variables**\n\n")
		keys := make([]string, 0, len(m.Variables))
		for k := range m.Variables {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "- `%s` = `%s`\n", k, m.Variables[k])
		}
	}
	if len(m.Skip) > 0 {
		b.WriteString("\n**Skipped files**\n\n")
		for _, r := range m.Skip {
			when := r.When
			if when == "" {
				when = "always"
			}
			fmt.Fprintf(&b, "- `%s` when `%s`\n", strings.Join(r.Files, "`, `"), when)
		}
	}
	return b.String()
}

// renderMarkdown styles md for the terminal, falling back to the raw text.
func renderMarkdown(md string) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}
