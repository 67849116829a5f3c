package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/albesa-team/artguide-backend/pkg/e"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T) []byte {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, color.NRGBA{R: 200, G: 100, B: 50, A: 128})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestCoerceRGBJPEGFromPNG(t *testing.T) {
	out, err := CoerceRGBJPEG(encodePNG(t))
	require.NoError(t, err)

	img, format, err := image.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, image.Rect(0, 0, 4, 4), img.Bounds())
}

func TestCoerceRGBJPEGPassthrough(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2)), nil))
	in := buf.Bytes()

	out, err := CoerceRGBJPEG(in)
	require.NoError(t, err)
	// JPEG не перекодируется
	assert.Equal(t, in, out)
}

func TestCoerceRGBJPEGFromGrayscaleJPEG(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			gray.SetGray(x, y, color.Gray{Y: uint8(x*60 + y)})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, gray, nil))

	out, err := CoerceRGBJPEG(buf.Bytes())
	require.NoError(t, err)

	img, format, err := image.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)

	// Grayscale JPEG обязан перекодироваться в RGB-представление
	_, isGray := img.(*image.Gray)
	assert.False(t, isGray)
}

func TestCoerceRGBJPEGUndecodable(t *testing.T) {
	_, err := CoerceRGBJPEG([]byte("not an image at all"))
	assert.ErrorIs(t, err, e.ErrUndecodableImage)
}
