package markdown

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/ansi"
	"github.com/charmbracelet/glamour/styles"
	"github.com/pkg/errors"
)

// Renderer renders answers as terminal markdown.
type Renderer struct {
	glamour *glamour.TermRenderer
	width   int
	// Finalized content never changes, so its rendering is cached by content.
	cache map[string]string
}

// NewRenderer creates a new markdown renderer wrapping at width.
func NewRenderer(width int) (*Renderer, error) {
	gr, err := glamour.NewTermRenderer(
		glamour.WithStyles(customStyle()),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, errors.Wrap(err, "creating glamour renderer")
	}
	return &Renderer{
		glamour: gr,
		width:   width,
		cache:   map[string]string{},
	}, nil
}

// Width returns the wrap width.
func (r *Renderer) Width() int { return r.width }

// SetWidth updates the renderer width, recreating internals if needed.
func (r *Renderer) SetWidth(width int) error {
	if r.width == width {
		return nil
	}
	newRenderer, err := NewRenderer(width)
	if err != nil {
		return err
	}
	*r = *newRenderer
	return nil
}

// Render renders finalized markdown content.
func (r *Renderer) Render(content string) string {
	if md, ok := r.cache[content]; ok {
		return md
	}
	md := r.render(content)
	r.cache[content] = md
	return md
}

// RenderStreaming renders content that is still growing: complete lines are rendered
// as markdown, the trailing incomplete line is returned as plain text.
func (r *Renderer) RenderStreaming(content string) string {
	i := strings.LastIndex(content, "\n")
	if i < 0 {
		return content
	}
	complete, tail := content[:i], content[i+1:]
	// An unterminated code fence would swallow the rest of the answer.
	if strings.Count(complete, "```")%2 == 1 {
		complete += "\n```"
	}
	md := r.render(complete)
	if tail == "" {
		return md
	}
	return md + "\n" + tail
}

func (r *Renderer) render(content string) string {
	rendered, err := r.glamour.Render(content)
	if err != nil {
		return content
	}
	return strings.Trim(rendered, "\n")
}

// customStyle returns a modified glamour style for cleaner output.
func customStyle() ansi.StyleConfig {
	style := styles.DraculaStyleConfig
	zero := uint(0)
	style.Document.Margin = &zero
	style.CodeBlock.Margin = &zero
	style.CodeBlock.Indent = &zero
	style.CodeBlock.Prefix = ""
	style.CodeBlock.BlockPrefix = ""

	style.Code.Margin = &zero
	style.Code.Indent = &zero
	style.Code.Prefix = ""
	style.Code.Suffix = ""

	style.Paragraph.BlockPrefix = ""
	style.Paragraph.BlockSuffix = ""

	return style
}
