// Package telemetry реализует append-only журнал телеметрии в CSV-файле.
package telemetry

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/albesa-team/artguide-backend/internal/domain"
	"github.com/albesa-team/artguide-backend/pkg/e"
)

const timestampLayout = "2006-01-02 15:04:05"

var header = []string{"timestamp", "artist", "confidence", "response_time"}

// CSVRepo пишет по одной строке на каждый обработанный запрос.
// Строки никогда не изменяются и не удаляются.
type CSVRepo struct {
	path string
	mu   sync.Mutex
}

// NewCSVRepo создаёт журнал. При первом запуске файл создаётся вместе со строкой заголовка.
func NewCSVRepo(path string) (*CSVRepo, error) {
	const op = "telemetry.NewCSVRepo"

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, e.Wrap(op, err)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		f, err := os.Create(path)
		if err != nil {
			return nil, e.Wrap(op, err)
		}

		w := csv.NewWriter(f)
		if err := w.Write(header); err != nil {
			f.Close()
			return nil, e.Wrap(op, err)
		}
		w.Flush()

		if err := f.Close(); err != nil {
			return nil, e.Wrap(op, err)
		}
	}

	return &CSVRepo{path: path}, nil
}

// Append дописывает одну строку в конец журнала.
func (r *CSVRepo) Append(record *domain.TelemetryRecord) error {
	const op = "telemetry.Append"

	r.mu.Lock()
	defer r.mu.Unlock()

	f, err := os.OpenFile(r.path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return e.Wrap(op, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	row := []string{
		record.Timestamp.Format(timestampLayout),
		record.Artist,
		strconv.FormatFloat(record.Confidence, 'f', 4, 64),
		strconv.FormatFloat(record.ResponseTime, 'f', 2, 64),
	}
	if err := w.Write(row); err != nil {
		return e.Wrap(op, err)
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return e.Wrap(op, err)
	}

	return nil
}
