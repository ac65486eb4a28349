package templates

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/jordan/portfolio-studio/internal/types"
)

//go:embed tmpl/*.tmpl
var templateFiles embed.FS

// variants maps template IDs to parsed templates. Populated at init; a parse
// failure here is a build defect, so init panics.
var variants = map[string]*template.Template{}

func init() {
	for _, id := range []string{
		types.TemplateStandard,
		types.TemplateTech,
		types.TemplateCorporate,
		types.TemplateFreelancer,
		types.TemplateStudent,
	} {
		name := id + ".tmpl"
		tmpl, err := template.New(name).Funcs(funcMap()).ParseFS(templateFiles, "tmpl/"+name)
		if err != nil {
			panic(fmt.Sprintf("parse template %s: %v", name, err))
		}
		variants[id] = tmpl
	}
}

func funcMap() template.FuncMap {
	return template.FuncMap{
		"join": strings.Join,
		"rgba": func(rgb string, alpha string) template.CSS {
			// rgb carries only digits, commas and spaces; see HexToRGB.
			return template.CSS(fmt.Sprintf("rgba(%s, %s)", rgb, alpha))
		},
		"cssColor": func(hex string) template.CSS {
			if !validHexColor(hex) {
				hex = types.DefaultPrimaryColor
			}
			return template.CSS(hex)
		},
		"firstLetter": func(s string) string {
			for _, r := range s {
				return strings.ToUpper(string(r))
			}
			return "?"
		},
	}
}

func validHexColor(hex string) bool {
	if len(hex) != 7 || hex[0] != '#' {
		return false
	}
	for _, r := range hex[1:] {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}

// VariantIDs returns the known template IDs in display order.
func VariantIDs() []string {
	return []string{
		types.TemplateStandard,
		types.TemplateTech,
		types.TemplateCorporate,
		types.TemplateFreelancer,
		types.TemplateStudent,
	}
}

// KnownVariant reports whether id names one of the template variants.
func KnownVariant(id string) bool {
	_, ok := variants[id]
	return ok
}

// Render writes the HTML page for the record's selected template variant.
// An unknown template ID falls back to the standard variant rather than
// failing the render.
func Render(w io.Writer, rec types.PortfolioRecord, opts RenderOptions) error {
	id := rec.Presentation.TemplateID
	tmpl, ok := variants[id]
	if !ok {
		tmpl = variants[types.TemplateStandard]
	}

	props := BuildProps(rec, opts)
	if err := tmpl.Execute(w, props); err != nil {
		return &RenderError{TemplateID: id, Cause: err}
	}
	return nil
}
