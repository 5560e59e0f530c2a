package prompt

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// AnswerFile is the YAML form of a scripted session:
//
//	answers:
//	  HTTP route: /api/...
//	  Description: demo service
//	  Overwrite?: "yes"
//	  Language: Rust        # option text or zero-based index
type AnswerFile struct {
	Answers map[string]string `yaml:"answers"`
}

// Scripted answers prompts from a fixed label → answer map. A prompt with
// no scripted answer falls back to its default, and fails without one.
type Scripted struct {
	answers map[string]string
	mu      sync.Mutex
	asked   map[string]bool
}

// NewScripted builds a prompter from an in-memory answer map.
func NewScripted(answers map[string]string) *Scripted {
	return &Scripted{answers: answers, asked: make(map[string]bool)}
}

// LoadScripted reads an answer file.
func LoadScripted(path string) (*Scripted, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read answers %s: %w", path, err)
	}
	var af AnswerFile
	if err := yaml.Unmarshal(data, &af); err != nil {
		return nil, fmt.Errorf("parse answers %s: %w", path, err)
	}
	if af.Answers == nil {
		af.Answers = map[string]string{}
	}
	return NewScripted(af.Answers), nil
}

func (s *Scripted) lookup(label string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.answers[label]
	if ok {
		s.asked[label] = true
	}
	return a, ok
}

func (s *Scripted) Text(label string, def *string) (string, error) {
	if a, ok := s.lookup(label); ok {
		return a, nil
	}
	if def != nil {
		return *def, nil
	}
	return "", fmt.Errorf("no scripted answer for %q", label)
}

func (s *Scripted) Confirm(label string, def *bool) (bool, error) {
	if a, ok := s.lookup(label); ok {
		v, valid := parseYesNo(a)
		if !valid {
			return false, fmt.Errorf("scripted answer %q for %q is not yes/no", a, label)
		}
		return v, nil
	}
	if def != nil {
		return *def, nil
	}
	return false, fmt.Errorf("no scripted answer for %q", label)
}

func (s *Scripted) Select(label string, options []string, def *uint8) (uint8, error) {
	if err := checkOptions(label, options); err != nil {
		return 0, err
	}
	if a, ok := s.lookup(label); ok {
		idx, valid := resolveOption(a, options)
		if !valid {
			return 0, fmt.Errorf("scripted answer %q for %q matches none of: %s", a, label, strings.Join(options, ", "))
		}
		return idx, nil
	}
	if def != nil && int(*def) < len(options) {
		return *def, nil
	}
	return 0, fmt.Errorf("no scripted answer for %q", label)
}

// Unused lists scripted labels no prompt asked for, usually typos.
func (s *Scripted) Unused() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for label := range s.answers {
		if !s.asked[label] {
			out = append(out, label)
		}
	}
	return out
}
