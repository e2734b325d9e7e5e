package codegen

import (
	"html"
	"strings"
	"text/template"
)

// Template function names, one per interpolation context:
//
//	comment  inside a /* */ block comment
//	lit      inside a TypeScript template literal
//	htmllit  HTML text inside a TypeScript template literal
//	jsstr    inside a double-quoted TypeScript string
//	toml     inside a double-quoted TOML string that itself sits in a block comment
var (
	contextualFuncs = template.FuncMap{
		"comment": escapeComment,
		"lit":     escapeTemplateLiteral,
		"htmllit": func(s string) string { return escapeTemplateLiteral(html.EscapeString(s)) },
		"jsstr":   escapeJSString,
		"toml":    func(s string) string { return escapeComment(escapeTOMLString(s)) },
	}

	verbatimFuncs = template.FuncMap{
		"comment": identity,
		"lit":     identity,
		"htmllit": identity,
		"jsstr":   identity,
		"toml":    identity,
	}
)

func identity(s string) string { return s }

var commentReplacer = strings.NewReplacer("*/", "*\\/")

// escapeComment neutralizes block comment terminators.
func escapeComment(s string) string {
	return commentReplacer.Replace(s)
}

var templateLiteralReplacer = strings.NewReplacer(
	`\`, `\\`,
	"`", "\\`",
	"${", "\\${",
)

// escapeTemplateLiteral makes s safe between backticks.
func escapeTemplateLiteral(s string) string {
	return templateLiteralReplacer.Replace(s)
}

var jsStringReplacer = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\r", `\r`,
	"\u2028", `\u2028`,
	"\u2029", `\u2029`,
)

// escapeJSString makes s safe between double quotes.
func escapeJSString(s string) string {
	return jsStringReplacer.Replace(s)
}

var tomlStringReplacer = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\t", `\t`,
)

func escapeTOMLString(s string) string {
	return tomlStringReplacer.Replace(s)
}
