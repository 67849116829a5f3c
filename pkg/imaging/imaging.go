// Package imaging нормализует пользовательские изображения перед векторизацией.
package imaging

import (
	"bytes"
	"image"
	"image/draw"
	"image/jpeg"

	// Регистрация декодеров поддерживаемых форматов
	_ "image/gif"
	_ "image/png"

	"github.com/albesa-team/artguide-backend/pkg/e"
)

const jpegQuality = 90

// CoerceRGBJPEG декодирует изображение и приводит его к RGB JPEG.
// Не-RGB вход (PNG с альфа-каналом, GIF, grayscale) — не ошибка, он нормализуется;
// нечитаемые байты возвращают e.ErrUndecodableImage.
func CoerceRGBJPEG(data []byte) ([]byte, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, e.Wrap("imaging.CoerceRGBJPEG", e.ErrUndecodableImage)
	}

	// JPEG пропускается без перекодирования только если он уже RGB:
	// grayscale и CMYK JPEG приводятся наравне с остальными форматами
	if format == "jpeg" {
		switch img.(type) {
		case *image.YCbCr, *image.RGBA, *image.NRGBA:
			return data, nil
		}
	}

	bounds := img.Bounds()
	rgba := image.NewRGBA(bounds)
	draw.Draw(rgba, bounds, img, bounds.Min, draw.Src)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, rgba, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, e.Wrap("imaging.CoerceRGBJPEG", err)
	}

	return buf.Bytes(), nil
}
