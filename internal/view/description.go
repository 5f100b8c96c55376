package view

import (
	"html/template"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/microcosm-cc/bluemonday"
)

var descriptionPolicy = bluemonday.UGCPolicy()

// RenderDescription converts a product's Markdown description to sanitized HTML
func RenderDescription(s string) template.HTML {
	if s == "" {
		return ""
	}

	extensions := parser.CommonExtensions | parser.NoEmptyLineBeforeBlock
	p := parser.NewWithExtensions(extensions)
	doc := p.Parse([]byte(s))

	renderer := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.HrefTargetBlank,
	})

	return template.HTML(descriptionPolicy.SanitizeBytes(markdown.Render(doc, renderer)))
}
