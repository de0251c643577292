package pipeline

import (
	"strconv"
	"strings"
	"text/template"
)

// jsonOnly closes every provider prompt.
const jsonOnly = `The response must be a single, valid JSON object matching the structure above.
Do not include markdown, code blocks, or explanatory text. Only return the JSON.`

// Template is a deterministic prompt template. Rendering the same data twice
// yields the same prompt.
type Template struct {
	tmpl *template.Template
}

// Funcs are helpers made available to a template.
type Funcs = template.FuncMap

// MustTemplate parses text and panics on a malformed template. Templates are
// package-level values, so a bad one fails at init.
func MustTemplate(name, text string, funcs ...Funcs) *Template {
	t := template.New(name).Option("missingkey=zero").Funcs(Funcs{"amount": amount})
	for _, f := range funcs {
		t = t.Funcs(f)
	}
	return &Template{tmpl: template.Must(t.Parse(text))}
}

// Render executes the template and appends the JSON-only instruction block.
// A failed execution degrades to the raw template text so that the model is
// still asked for the right shape.
func (t *Template) Render(data interface{}) string {
	var sb strings.Builder
	if err := t.tmpl.Execute(&sb, data); err != nil {
		sb.Reset()
		sb.WriteString(t.tmpl.Root.String())
	}
	out := strings.TrimSpace(sb.String())
	return out + "\n\n" + jsonOnly
}

// amount renders an optional money value without trailing zeros.
func amount(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
