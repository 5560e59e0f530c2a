package prompt

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/ormasoftchile/scaff/pkg/plugin"
)

type selectKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Choose key.Binding
	Cancel key.Binding
}

var selectKeys = selectKeyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Choose: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "choose"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc", "ctrl+c"),
		key.WithHelp("esc", "cancel"),
	),
}

var (
	selectLabelStyle  = lipgloss.NewStyle().Bold(true)
	selectCursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	selectDimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// selectModel is a single-choice list.
type selectModel struct {
	label     string
	options   []string
	cursor    int
	chosen    bool
	cancelled bool
}

func newSelectModel(label string, options []string, def *uint8) selectModel {
	m := selectModel{label: label, options: options}
	if def != nil && int(*def) < len(options) {
		m.cursor = int(*def)
	}
	return m
}

func (m selectModel) Init() tea.Cmd { return nil }

func (m selectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, selectKeys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(keyMsg, selectKeys.Down):
		if m.cursor < len(m.options)-1 {
			m.cursor++
		}
	case key.Matches(keyMsg, selectKeys.Choose):
		m.chosen = true
		return m, tea.Quit
	case key.Matches(keyMsg, selectKeys.Cancel):
		m.cancelled = true
		return m, tea.Quit
	default:
		// 1-9 jump straight to an option
		s := keyMsg.String()
		if len(s) == 1 && s[0] >= '1' && s[0] <= '9' {
			if idx := int(s[0] - '1'); idx < len(m.options) {
				m.cursor = idx
				m.chosen = true
				return m, tea.Quit
			}
		}
	}
	return m, nil
}

func (m selectModel) View() string {
	var b strings.Builder
	b.WriteString(selectLabelStyle.Render(m.label))
	b.WriteString("\n")
	if m.chosen {
		fmt.Fprintf(&b, "  %s\n", selectCursorStyle.Render(m.options[m.cursor]))
		return b.String()
	}
	for i, o := range m.options {
		if i == m.cursor {
			fmt.Fprintf(&b, "%s %s\n", selectCursorStyle.Render("▸"), selectCursorStyle.Render(o))
		} else {
			fmt.Fprintf(&b, "  %s\n", o)
		}
	}
	b.WriteString(selectDimStyle.Render("↑/↓ move · enter choose · esc cancel"))
	b.WriteString("\n")
	return b.String()
}

func runSelect(in io.Reader, out io.Writer, label string, options []string, def *uint8) (uint8, error) {
	p := tea.NewProgram(newSelectModel(label, options, def), tea.WithInput(in), tea.WithOutput(out))
	final, err := p.Run()
	if err != nil {
		return 0, fmt.Errorf("select %q: %w", label, err)
	}
	m := final.(selectModel)
	if m.cancelled || !m.chosen {
		return 0, plugin.ErrCancel
	}
	return uint8(m.cursor), nil
}
