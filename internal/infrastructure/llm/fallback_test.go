package llm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFallbackDescription(t *testing.T) {
	text := FallbackDescription("Vincent van Gogh", "The Starry Night", "Post-Impressionism")

	require.NotEmpty(t, text)
	assert.Contains(t, text, "Vincent van Gogh")
	assert.Contains(t, text, "'The Starry Night'")
	assert.Contains(t, text, "Post-Impressionism")
}

func TestFallbackDescriptionDeterministic(t *testing.T) {
	first := FallbackDescription("Claude Monet", "Water Lilies", "Impressionism")
	second := FallbackDescription("Claude Monet", "Water Lilies", "Impressionism")

	assert.Equal(t, first, second)
}

func TestFallbackDescriptionDistinctArtworks(t *testing.T) {
	a := FallbackDescription("Claude Monet", "Water Lilies", "Impressionism")
	b := FallbackDescription("Edgar Degas", "The Dance Class", "Impressionism")

	assert.NotEqual(t, a, b)
	assert.False(t, strings.Contains(b, "Monet"))
}
