package templates

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRenderWelcome(t *testing.T) {
	req := require.New(t)

	subject, text, html, err := Render("welcome", map[string]any{"FullName": "Alice Carter"})
	req.NoError(err)
	req.Contains(subject, "Alice Carter")
	req.Contains(text, "Alice Carter")
	req.Contains(html, "Alice Carter")
	req.True(strings.Contains(html, "<html>"))
}

func TestRenderWelcomeFallsBackWithoutName(t *testing.T) {
	req := require.New(t)

	subject, text, _, err := Render("welcome", map[string]any{})
	req.NoError(err)
	req.Contains(subject, "there")
	req.Contains(text, "there")
}

func TestRenderUnknownTemplate(t *testing.T) {
	req := require.New(t)

	_, _, _, err := Render("nope", nil)
	req.Error(err)
}
