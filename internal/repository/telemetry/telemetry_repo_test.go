package telemetry

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/albesa-team/artguide-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAll(t *testing.T, path string) [][]string {
	t.Helper()

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestNewCSVRepoWritesHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "telemetry.csv")

	_, err := NewCSVRepo(path)
	require.NoError(t, err)

	rows := readAll(t, path)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"timestamp", "artist", "confidence", "response_time"}, rows[0])
}

func TestNewCSVRepoKeepsExistingLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "telemetry.csv")

	repo, err := NewCSVRepo(path)
	require.NoError(t, err)
	require.NoError(t, repo.Append(domain.NewTelemetryRecord("Van Gogh", 0.861, 1.23)))

	// Повторное открытие не затирает накопленные строки
	_, err = NewCSVRepo(path)
	require.NoError(t, err)

	rows := readAll(t, path)
	assert.Len(t, rows, 2)
}

func TestAppend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "telemetry.csv")
	repo, err := NewCSVRepo(path)
	require.NoError(t, err)

	rec := &domain.TelemetryRecord{
		Timestamp:    time.Date(2025, 5, 17, 12, 0, 0, 0, time.UTC),
		Artist:       "Van Gogh",
		Confidence:   0.861,
		ResponseTime: 1.5,
	}
	require.NoError(t, repo.Append(rec))

	failure := &domain.TelemetryRecord{
		Timestamp:    time.Date(2025, 5, 17, 12, 0, 1, 0, time.UTC),
		Artist:       "Unknown",
		Confidence:   0.0,
		ResponseTime: 0.02,
	}
	require.NoError(t, repo.Append(failure))

	rows := readAll(t, path)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"2025-05-17 12:00:00", "Van Gogh", "0.8610", "1.50"}, rows[1])
	assert.Equal(t, []string{"2025-05-17 12:00:01", "Unknown", "0.0000", "0.02"}, rows[2])
}
