package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/albesa-team/artguide-backend/pkg/e"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeMetadata(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "metadata.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeMetadata(t,
		"artist,title,period,image_path\n"+
			"Van Gogh,Starry Night,Post-Impressionism,images/starry_night.jpg\n"+
			"Monet,Impression Sunrise,Impressionism,images/sunrise.jpg\n")

	catalog, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, catalog.Size())

	art, ok := catalog.Artwork(0)
	require.True(t, ok)
	assert.Equal(t, "Van Gogh", art.Artist)
	assert.Equal(t, "Starry Night", art.Title)
	assert.Equal(t, "Post-Impressionism", art.Period)

	_, ok = catalog.Artwork(2)
	assert.False(t, ok)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.csv"))
	assert.ErrorIs(t, err, e.ErrCatalogUnavailable)
}

func TestLoadBadHeader(t *testing.T) {
	path := writeMetadata(t, "artist,name,period,image_path\nVan Gogh,x,y,z\n")

	_, err := Load(path)
	assert.ErrorIs(t, err, e.ErrCatalogUnavailable)
}

func TestValidateAlignment(t *testing.T) {
	path := writeMetadata(t,
		"artist,title,period,image_path\n"+
			"Van Gogh,Starry Night,Post-Impressionism,images/starry_night.jpg\n")

	catalog, err := Load(path)
	require.NoError(t, err)

	assert.NoError(t, catalog.ValidateAlignment(1))
	assert.ErrorIs(t, catalog.ValidateAlignment(5), e.ErrCatalogMisaligned)
}
