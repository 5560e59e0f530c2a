package prompt

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/ormasoftchile/scaff/pkg/plugin"
)

// Terminal prompts on the controlling terminal. Text and confirm prompts
// use readline; select shows a Bubble Tea list. Ctrl-C, Esc and EOF cancel.
type Terminal struct {
	Stdin  io.ReadCloser
	Stdout io.Writer
}

// NewTerminal returns a prompter bound to the process's stdin and stderr,
// so prompts never mix with output piped from stdout.
func NewTerminal() *Terminal {
	return &Terminal{Stdin: os.Stdin, Stdout: os.Stderr}
}

func (t *Terminal) readLine(prompt string) (string, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          prompt,
		Stdin:           t.Stdin,
		Stdout:          t.Stdout,
		InterruptPrompt: "^C",
		EOFPrompt:       "",
	})
	if err != nil {
		return "", fmt.Errorf("init readline: %w", err)
	}
	defer rl.Close()

	line, err := rl.Readline()
	if err != nil {
		if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
			return "", plugin.ErrCancel
		}
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func (t *Terminal) Text(label string, def *string) (string, error) {
	line, err := t.readLine(textPrompt(label, def))
	if err != nil {
		return "", err
	}
	if line == "" && def != nil {
		return *def, nil
	}
	return line, nil
}

func (t *Terminal) Confirm(label string, def *bool) (bool, error) {
	for {
		line, err := t.readLine(confirmPrompt(label, def))
		if err != nil {
			return false, err
		}
		if line == "" && def != nil {
			return *def, nil
		}
		if v, ok := parseYesNo(line); ok {
			return v, nil
		}
		fmt.Fprintln(t.Stdout, "  please answer y or n")
	}
}

func (t *Terminal) Select(label string, options []string, def *uint8) (uint8, error) {
	if err := checkOptions(label, options); err != nil {
		return 0, err
	}
	return runSelect(t.Stdin, t.Stdout, label, options, def)
}

func textPrompt(label string, def *string) string {
	if def != nil && *def != "" {
		return fmt.Sprintf("%s [%s]: ", label, *def)
	}
	return label + ": "
}

func confirmPrompt(label string, def *bool) string {
	switch {
	case def == nil:
		return label + " [y/n]: "
	case *def:
		return label + " [Y/n]: "
	default:
		return label + " [y/N]: "
	}
}
