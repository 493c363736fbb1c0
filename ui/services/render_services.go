package services

import (
	"html/template"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// RenderService turns narrative text into display HTML
type RenderService struct{}

func NewRenderService() *RenderService {
	return &RenderService{}
}

// RenderNarrative renders markdown to HTML. Raw HTML in the input is dropped,
// so model output cannot inject markup into the page.
func (s *RenderService) RenderNarrative(text string) template.HTML {
	if strings.TrimSpace(text) == "" {
		return ""
	}

	// parsers keep state and are not reusable
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.NoEmptyLineBeforeBlock)
	renderer := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.SkipHTML | html.HrefTargetBlank,
	})

	out := markdown.ToHTML([]byte(text), p, renderer)
	return template.HTML(out)
}
