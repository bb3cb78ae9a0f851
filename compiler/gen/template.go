package gen

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/fs"
	"strings"
	"text/template"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/syssam/archgen/naming"
)

// Funcs are the functions available to artifact templates.
var Funcs = template.FuncMap{
	"pascal":   naming.Pascal,
	"snake":    naming.Snake,
	"camel":    naming.Camel,
	"kebab":    naming.Kebab,
	"plural":   naming.Plural,
	"singular": naming.Singular,
	"humanize": naming.Humanize,
	"lower":    strings.ToLower,
	"upper":    strings.ToUpper,
	"title":    title,
	"join":     strings.Join,
	"json":     jsonString,
	"quote":    quote,
}

func quote(s string) string { return fmt.Sprintf("%q", s) }

func title(s string) string {
	return cases.Title(language.English).String(naming.Humanize(s))
}

// jsonString renders s as a JSON string literal.
func jsonString(s string) (string, error) {
	b, err := json.Marshal(s)
	return string(b), err
}

// ParseTemplates parses the templates of fsys matching the patterns, with
// Funcs installed.
func ParseTemplates(fsys fs.FS, patterns ...string) (*template.Template, error) {
	return template.New("").Funcs(Funcs).ParseFS(fsys, patterns...)
}

// MustParseTemplates is like ParseTemplates but panics on error.
func MustParseTemplates(fsys fs.FS, patterns ...string) *template.Template {
	t, err := ParseTemplates(fsys, patterns...)
	if err != nil {
		panic(err)
	}
	return t
}

// Execute runs the named template and returns its output.
func Execute(t *template.Template, name string, data any) (string, error) {
	var b bytes.Buffer
	if err := t.ExecuteTemplate(&b, name, data); err != nil {
		return "", err
	}
	return b.String(), nil
}

// TemplateArtifact returns a TableArtifact rendered by the named template.
func TemplateArtifact(kind ArtifactKind, t *template.Template, name string, path func(*TableView) string) TableArtifact {
	return TableArtifact{
		Kind: kind,
		Path: path,
		Render: func(v *TableView) (string, error) {
			return Execute(t, name, v)
		},
	}
}

// TemplateSchemaArtifact returns a SchemaArtifact rendered by the named
// template.
func TemplateSchemaArtifact(path func(*Project) string, t *template.Template, name string) SchemaArtifact {
	return SchemaArtifact{
		Path: path,
		Render: func(p *Project) (string, error) {
			return Execute(t, name, p)
		},
	}
}

// Static returns a SchemaArtifact with fixed content.
func Static(path, content string) SchemaArtifact {
	return SchemaArtifact{
		Path:   StaticPath(path),
		Render: func(*Project) (string, error) { return content, nil },
	}
}
