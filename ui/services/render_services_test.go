package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderNarrative(t *testing.T) {
	s := NewRenderService()

	out := string(s.RenderNarrative("## Highlights\n\n- **Search** converts best\n- Social lags"))
	assert.Contains(t, out, "<h2")
	assert.Contains(t, out, "<strong>Search</strong>")
	assert.Contains(t, out, "<li>Social lags</li>")
}

func TestRenderNarrativeDropsRawHTML(t *testing.T) {
	out := string(NewRenderService().RenderNarrative("Hello <script>alert(1)</script> world"))
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "Hello")
}

func TestRenderNarrativeEmpty(t *testing.T) {
	assert.Empty(t, NewRenderService().RenderNarrative("  \n"))
}
