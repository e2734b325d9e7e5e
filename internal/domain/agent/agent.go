// Package agent defines the AgentSpec domain entity: the normalized input
// record describing a worker agent to be generated.
package agent

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/Strob0t/AgentForge/internal/domain"
)

// Field length bounds, counted in code points.
const (
	MaxNameLen          = 100
	MaxDescriptionLen   = 500
	MaxFunctionalityLen = 2000
)

// Spec describes a to-be-generated worker agent.
type Spec struct {
	Name          string `json:"name" yaml:"name"`
	Description   string `json:"description" yaml:"description"`
	Functionality string `json:"functionality" yaml:"functionality"`
	// Template is accepted for compatibility with the form layer but is not
	// consumed by the generator.
	Template string `json:"template,omitempty" yaml:"template,omitempty"`
}

// Validate checks that all required fields are present and within bounds.
// The returned error wraps domain.ErrValidation.
func (s *Spec) Validate() error {
	if err := checkField("name", s.Name, MaxNameLen); err != nil {
		return err
	}
	if err := checkField("description", s.Description, MaxDescriptionLen); err != nil {
		return err
	}
	return checkField("functionality", s.Functionality, MaxFunctionalityLen)
}

func checkField(name, value string, maxLen int) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: %s is required", domain.ErrValidation, name)
	}
	if n := utf8.RuneCountInString(value); n > maxLen {
		return fmt.Errorf("%w: %s too long (%d chars, max %d)", domain.ErrValidation, name, n, maxLen)
	}
	return nil
}

// Normalize returns a copy with surrounding whitespace trimmed from the free-text
// fields. Name is left untouched: Identifier and WorkerName handle it.
func (s Spec) Normalize() Spec {
	s.Description = strings.TrimSpace(s.Description)
	s.Functionality = strings.TrimSpace(s.Functionality)
	s.Template = strings.TrimSpace(s.Template)
	return s
}

// Identifier returns Name with every whitespace rune removed. Case is kept and
// no separator is inserted, so "Customer Support Bot" and "CustomerSupport Bot"
// collide on the same identifier.
func (s *Spec) Identifier() string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s.Name)
}

// ClassName is the generated class and durable object binding name.
func (s *Spec) ClassName() string {
	return s.Identifier() + "Agent"
}

// WorkerName returns the lower kebab-case deployment name: trimmed, lowercased,
// each whitespace run replaced by a single hyphen.
func (s *Spec) WorkerName() string {
	return strings.ToLower(strings.Join(strings.Fields(s.Name), "-"))
}

// IdentifierIsValid reports whether Identifier is non-empty and consists of
// letters and digits only, starting with a letter. Synthesis does not require it.
func (s *Spec) IdentifierIsValid() bool {
	id := s.Identifier()
	if id == "" {
		return false
	}
	for i, r := range id {
		if i == 0 && !unicode.IsLetter(r) {
			return false
		}
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
