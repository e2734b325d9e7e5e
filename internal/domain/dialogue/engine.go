package dialogue

import (
	"fmt"
	"slices"
	"strings"

	"github.com/Strob0t/AgentForge/internal/domain"
)

// Suggestion holds proposed form values for an agent spec.
type Suggestion struct {
	Category      Category `json:"category"`
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Functionality string   `json:"functionality"`
}

// Engine matches text against an ordered rule table. It is immutable and
// safe for concurrent use.
type Engine struct {
	rules []Rule
}

// NewEngine returns an engine over a copy of rules with keywords lower-cased.
func NewEngine(rules []Rule) *Engine {
	cp := make([]Rule, len(rules))
	for i, r := range rules {
		kw := make([]string, len(r.Keywords))
		for j, k := range r.Keywords {
			kw[j] = strings.ToLower(k)
		}
		r.Keywords = kw
		cp[i] = r
	}
	return &Engine{rules: cp}
}

// Match returns the first rule any of whose keywords occurs in text,
// ignoring case.
func (e *Engine) Match(text string) (Rule, bool) {
	lower := strings.ToLower(text)
	for _, r := range e.rules {
		for _, kw := range r.Keywords {
			if kw != "" && strings.Contains(lower, kw) {
				return r, true
			}
		}
	}
	return Rule{}, false
}

// Respond returns the canned reply of the matching rule, or a generic reply
// quoting text verbatim. The result is never empty.
func (e *Engine) Respond(text string) string {
	reply, _ := e.Reply(text)
	return reply
}

// Reply is Respond that also reports which category answered.
func (e *Engine) Reply(text string) (string, Category) {
	if r, ok := e.Match(text); ok {
		return r.Response, r.Category
	}
	return fmt.Sprintf(genericResponse, text), CategoryGeneric
}

// Suggest proposes form defaults when text matches an autofilling rule.
// Functionality is always the raw input.
func (e *Engine) Suggest(text string) (Suggestion, bool) {
	r, ok := e.Match(text)
	if !ok || !r.Autofills() {
		return Suggestion{}, false
	}
	return Suggestion{
		Category:      r.Category,
		Name:          r.DefaultName,
		Description:   r.DefaultDescription,
		Functionality: text,
	}, true
}

// Rules returns a copy of the table in match order.
func (e *Engine) Rules() []Rule {
	out := make([]Rule, len(e.rules))
	for i, r := range e.rules {
		r.Keywords = slices.Clone(r.Keywords)
		out[i] = r
	}
	return out
}

// Lookup returns the rule for category.
func (e *Engine) Lookup(category Category) (Rule, error) {
	for _, r := range e.rules {
		if r.Category == category {
			r.Keywords = slices.Clone(r.Keywords)
			return r, nil
		}
	}
	return Rule{}, fmt.Errorf("category %q: %w", category, domain.ErrNotFound)
}

var defaultEngine = NewEngine(defaultRules)

// Default returns the engine over the built-in rule table.
func Default() *Engine { return defaultEngine }

// Respond answers text with the built-in rule table.
func Respond(text string) string { return defaultEngine.Respond(text) }

// Match matches text against the built-in rule table.
func Match(text string) (Rule, bool) { return defaultEngine.Match(text) }

// Suggest proposes form defaults from the built-in rule table.
func Suggest(text string) (Suggestion, bool) { return defaultEngine.Suggest(text) }

// Rules returns a copy of the built-in rule table.
func Rules() []Rule { return defaultEngine.Rules() }
