package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRenderTemplate(t *testing.T) {
	var buffer bytes.Buffer
	data := []map[string]string{{"ID": "abc", "Title": "a very long conversation title"}}
	err := RenderTemplate(&buffer, "list", `{{ range . }}{{ .ID }} {{ .Title | trunc 6 | upper }}{{ "\n" }}{{ end }}`, data)
	require.NoError(t, err)
	require.Equal(t, "abc A VERY\n", buffer.String())
}

func TestRenderTemplateParseError(t *testing.T) {
	var buffer bytes.Buffer
	err := RenderTemplate(&buffer, "broken", `{{ .ID `, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "parsing broken template")
}
