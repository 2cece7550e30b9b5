package gen

import (
	"strings"
	"text/template"
)

// commentWidth is the longest comment text line, excluding the "// " prefix.
const commentWidth = 77

var mirrorTemplate = template.Must(template.New("mirror").Funcs(template.FuncMap{
	"comment": comment,
}).Parse(`// Code generated by volgen. DO NOT EDIT.

package {{.PackageName}}

import (
{{- range .StdImports}}
	{{.}}
{{- end}}
{{range .ExtImports}}
	{{.}}
{{- end}}
)
{{- range .Storage}}

{{comment .Doc}}type {{.Name}} struct {
{{- if .Marker}}
	_ [0]{{.Marker}}
{{- end}}
	_ [{{.Size}}]byte
}
{{- end}}
{{- range $m := .Mirrors}}

{{comment .Doc}}type {{.Type}} struct {
	base unsafe.Pointer
}
{{- if .Root}}

{{comment .OfDoc}}func {{.Type}}Of(p *{{.Struct}}) {{.Type}} {
	return {{.Type}}At(unsafe.Pointer(p))
}

{{comment .AtDoc}}func {{.Type}}At(base unsafe.Pointer) {{.Type}} {
	{{$.V}}.CheckBase(base, {{.Align}})
	return {{.Type}}{base: base}
}
{{- end}}
{{- range .Methods}}

{{comment .Doc}}func (v {{$m.Type}}) {{.Name}}() {{.Result}} {
	return {{.Expr}}
}
{{- end}}

{{comment .FieldsDoc}}type {{.Type}}Fields struct {
{{- range .Fields}}
	{{.Name}} {{.Result}}
{{- end}}
}

{{comment .SplitDoc}}func (v {{.Type}}) Split() {{.Type}}Fields {
	f := {{.Type}}Fields{
{{- range .Fields}}
		{{.Name}}: v.{{.Name}}(),
{{- end}}
	}
	{{$.V}}.AssertDisjoint({{.Spans}})

	return f
}
{{- end}}
{{- if .Asserts}}

// An "invalid array index" compiler error signifies that a layout changed.
// Re-run volgen to regenerate the views.
func _() {
	var x [1]struct{}
{{- range $a := .Asserts}}
	_ = x[unsafe.Sizeof({{.Struct}}{})-{{.Size}}]
	_ = x[unsafe.Alignof({{.Struct}}{})-{{.Align}}]
{{- range .Offsets}}
	_ = x[unsafe.Offsetof({{$a.Struct}}{}.{{.Field}})-{{.Offset}}]
{{- end}}
	_ = x[unsafe.Sizeof({{.Mirror}}{})-unsafe.Sizeof(uintptr(0))]
{{- end}}
}
{{- end}}
`))

// comment renders text as a line comment block ending in a newline,
// wrapping paragraphs at commentWidth. Empty text renders nothing.
func comment(text string) string {
	if text == "" {
		return ""
	}

	var b strings.Builder

	for i, para := range strings.Split(text, "\n\n") {
		if i > 0 {
			b.WriteString("//\n")
		}

		line := ""

		for _, w := range strings.Fields(para) {
			if line != "" && len(line)+1+len(w) > commentWidth {
				b.WriteString("// " + line + "\n")
				line = ""
			}

			if line != "" {
				line += " "
			}

			line += w
		}

		if line != "" {
			b.WriteString("// " + line + "\n")
		}
	}

	return b.String()
}
