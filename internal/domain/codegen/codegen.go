// Package codegen synthesizes Cloudflare Agents SDK worker sources from an
// agent spec. Synthesis is deterministic: the same spec and options always
// produce byte-identical output.
package codegen

import (
	"embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/Strob0t/AgentForge/internal/domain"
	"github.com/Strob0t/AgentForge/internal/domain/agent"
)

// Variant selects the styling and client features of the embedded chat page.
type Variant string

const (
	// VariantClassic is the plain chat widget.
	VariantClassic Variant = "classic"
	// VariantEnhanced adds gradient styling, a connection status indicator
	// and WebSocket auto-reconnect with backoff.
	VariantEnhanced Variant = "enhanced"
)

// ValidVariants lists all supported variants.
var ValidVariants = []Variant{VariantClassic, VariantEnhanced}

// ParseVariant converts a string to a Variant. Empty selects VariantClassic.
func ParseVariant(s string) (Variant, error) {
	switch Variant(strings.ToLower(strings.TrimSpace(s))) {
	case "", VariantClassic:
		return VariantClassic, nil
	case VariantEnhanced:
		return VariantEnhanced, nil
	}
	return "", fmt.Errorf("%w: unknown variant %q", domain.ErrValidation, s)
}

// Escaping selects how spec fields are interpolated into the document.
type Escaping string

const (
	// EscapeContextual escapes every interpolation for its target context
	// (template literal, HTML, string literal, block comment, TOML).
	// The class name in TypeScript code positions (the class declaration and
	// the Env binding) is emitted as is, since an identifier has no escaped
	// form; agent.Spec.IdentifierIsValid reports names that would break it.
	EscapeContextual Escaping = "contextual"
	// EscapeNone interpolates verbatim. Callers must pre-sanitize: quotes,
	// backticks or comment terminators in the fields break the document.
	EscapeNone Escaping = "none"
)

// ValidEscapings lists all supported escaping policies.
var ValidEscapings = []Escaping{EscapeContextual, EscapeNone}

// ParseEscaping converts a string to an Escaping. Empty selects EscapeContextual.
func ParseEscaping(s string) (Escaping, error) {
	switch Escaping(strings.ToLower(strings.TrimSpace(s))) {
	case "", EscapeContextual:
		return EscapeContextual, nil
	case EscapeNone:
		return EscapeNone, nil
	}
	return "", fmt.Errorf("%w: unknown escaping %q", domain.ErrValidation, s)
}

// Options tunes synthesis. The zero value means classic variant with
// contextual escaping.
type Options struct {
	Variant  Variant
	Escaping Escaping
}

func (o Options) withDefaults() Options {
	if o.Variant == "" {
		o.Variant = VariantClassic
	}
	if o.Escaping == "" {
		o.Escaping = EscapeContextual
	}
	return o
}

// CompatibilityDate is pinned so output does not depend on the clock.
const CompatibilityDate = "2025-01-01"

// DefaultModel is the chat-completion model the generated worker calls.
const DefaultModel = "gpt-4o-mini"

//go:embed templates/*.tmpl
var templateFS embed.FS

const rootTemplate = "agent.ts.tmpl"

var templateSets = map[Escaping]*template.Template{
	EscapeContextual: mustParse(contextualFuncs),
	EscapeNone:       mustParse(verbatimFuncs),
}

func mustParse(funcs template.FuncMap) *template.Template {
	return template.Must(template.New(rootTemplate).Funcs(funcs).ParseFS(templateFS, "templates/*.tmpl"))
}

// templateData is what the templates see. Raw fields are escaped by the
// template functions at each interpolation site.
type templateData struct {
	Name              string
	Description       string
	Functionality     string
	ClassName         string
	WorkerName        string
	HistoryLimit      int
	Model             string
	CompatibilityDate string
	Enhanced          bool
}

// Synthesize renders the complete worker source for spec. Identifiers are
// derived from spec.Name by agent.Spec.ClassName and agent.Spec.WorkerName.
// The spec is not validated here; callers reject invalid specs first.
func Synthesize(spec agent.Spec, opts Options) (string, error) {
	opts = opts.withDefaults()

	tmpl, ok := templateSets[opts.Escaping]
	if !ok {
		return "", fmt.Errorf("%w: unknown escaping %q", domain.ErrValidation, opts.Escaping)
	}
	if opts.Variant != VariantClassic && opts.Variant != VariantEnhanced {
		return "", fmt.Errorf("%w: unknown variant %q", domain.ErrValidation, opts.Variant)
	}

	data := templateData{
		Name:              spec.Name,
		Description:       spec.Description,
		Functionality:     spec.Functionality,
		ClassName:         spec.ClassName(),
		WorkerName:        spec.WorkerName(),
		HistoryLimit:      agent.DefaultHistoryWindow,
		Model:             DefaultModel,
		CompatibilityDate: CompatibilityDate,
		Enhanced:          opts.Variant == VariantEnhanced,
	}

	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, rootTemplate, data); err != nil {
		return "", fmt.Errorf("execute %s: %w", rootTemplate, err)
	}
	return b.String(), nil
}

// MustSynthesize is like Synthesize but panics on error.
func MustSynthesize(spec agent.Spec, opts Options) string {
	out, err := Synthesize(spec, opts)
	if err != nil {
		panic(err)
	}
	return out
}
