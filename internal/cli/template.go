package cli

import (
	"io"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/pkg/errors"
)

// RenderTemplate executes a text template with sprig functions available.
func RenderTemplate(w io.Writer, name, text string, data any) error {
	tmpl, err := template.New(name).Funcs(sprig.TxtFuncMap()).Parse(text)
	if err != nil {
		return errors.Wrapf(err, "parsing %s template", name)
	}
	if err := tmpl.Execute(w, data); err != nil {
		return errors.Wrapf(err, "executing %s template", name)
	}
	return nil
}
