// Package catalog загружает таблицу метаданных каталога произведений.
// Таблица построчно выровнена с векторным индексом: строка i описывает точку i.
package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/albesa-team/artguide-backend/internal/domain"
	"github.com/albesa-team/artguide-backend/pkg/e"
)

var expectedHeader = []string{"artist", "title", "period", "image_path"}

// CSVCatalog — неизменяемая таблица метаданных, загруженная один раз при старте.
type CSVCatalog struct {
	artworks []domain.Artwork
}

// Load читает CSV-файл метаданных. Файл создаётся офлайновым процессом
// наполнения каталога; здесь он только читается.
func Load(path string) (*CSVCatalog, error) {
	const op = "catalog.Load"

	f, err := os.Open(path)
	if err != nil {
		return nil, e.Wrap(op, e.ErrCatalogUnavailable)
	}
	defer f.Close()

	reader := csv.NewReader(f)

	header, err := reader.Read()
	if err != nil {
		return nil, e.Wrap(op, e.ErrCatalogUnavailable)
	}
	if err := validateHeader(header); err != nil {
		return nil, e.Wrap(op, err)
	}

	var artworks []domain.Artwork
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, e.Wrap(op, err)
		}

		artworks = append(artworks, *domain.NewArtwork(row[0], row[1], row[2], row[3]))
	}

	return &CSVCatalog{artworks: artworks}, nil
}

// Artwork возвращает запись каталога по номеру строки индекса.
func (c *CSVCatalog) Artwork(row uint64) (*domain.Artwork, bool) {
	if row >= uint64(len(c.artworks)) {
		return nil, false
	}

	return &c.artworks[row], true
}

// Size возвращает число записей каталога.
func (c *CSVCatalog) Size() int {
	return len(c.artworks)
}

// ValidateAlignment сверяет число записей метаданных с числом точек индекса.
// Расхождение — латентная ошибка целостности каталога, каталог считается недоступным.
func (c *CSVCatalog) ValidateAlignment(indexCount uint64) error {
	if uint64(c.Size()) != indexCount {
		return e.Wrap(
			fmt.Sprintf("metadata rows: %d, index points: %d", c.Size(), indexCount),
			e.ErrCatalogMisaligned,
		)
	}

	return nil
}

func validateHeader(header []string) error {
	if len(header) != len(expectedHeader) {
		return fmt.Errorf("unexpected metadata header %v: %w", header, e.ErrCatalogUnavailable)
	}
	for i, col := range expectedHeader {
		if header[i] != col {
			return fmt.Errorf("unexpected metadata column %q, want %q: %w", header[i], col, e.ErrCatalogUnavailable)
		}
	}

	return nil
}
