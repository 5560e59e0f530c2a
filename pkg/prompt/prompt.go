// Package prompt implements the interactive side of the capability host:
// a terminal prompter for people, a defaults prompter for unattended runs,
// and a scripted prompter that replays answers from a YAML file.
package prompt

import (
	"fmt"
	"strconv"
	"strings"
)

// Prompter asks the user for values. Any method may return plugin.ErrCancel.
type Prompter interface {
	Text(label string, def *string) (string, error)
	Confirm(label string, def *bool) (bool, error)
	Select(label string, options []string, def *uint8) (uint8, error)
}

// Defaults answers every prompt with its default, without any I/O. Prompts
// without a default get the zero answer: "", false or the first option.
type Defaults struct{}

func (Defaults) Text(_ string, def *string) (string, error) {
	if def != nil {
		return *def, nil
	}
	return "", nil
}

func (Defaults) Confirm(_ string, def *bool) (bool, error) {
	if def != nil {
		return *def, nil
	}
	return false, nil
}

func (Defaults) Select(label string, options []string, def *uint8) (uint8, error) {
	if err := checkOptions(label, options); err != nil {
		return 0, err
	}
	if def != nil {
		if int(*def) >= len(options) {
			return 0, fmt.Errorf("select %q: default index %d out of range", label, *def)
		}
		return *def, nil
	}
	return 0, nil
}

// parseYesNo interprets a confirm answer. ok is false for unrecognised input.
func parseYesNo(s string) (value, ok bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "y", "yes", "true", "1":
		return true, true
	case "n", "no", "false", "0":
		return false, true
	}
	return false, false
}

// resolveOption accepts either an option's text or its zero-based index.
func resolveOption(answer string, options []string) (uint8, bool) {
	answer = strings.TrimSpace(answer)
	for i, o := range options {
		if strings.EqualFold(o, answer) {
			return uint8(i), true
		}
	}
	if n, err := strconv.Atoi(answer); err == nil && n >= 0 && n < len(options) {
		return uint8(n), true
	}
	return 0, false
}

// checkOptions enforces the u8 index space of the select capability.
func checkOptions(label string, options []string) error {
	if len(options) == 0 {
		return fmt.Errorf("select %q: no options", label)
	}
	if len(options) > 256 {
		return fmt.Errorf("select %q: %d options exceeds 256", label, len(options))
	}
	return nil
}
