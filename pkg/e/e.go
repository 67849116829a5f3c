package e

import "fmt"

var (
	// Ошибки каталога и индекса
	ErrCatalogUnavailable = fmt.Errorf("catalog unavailable")
	ErrCatalogMisaligned  = fmt.Errorf("catalog metadata and index row counts differ")
	ErrArtworkNotFound    = fmt.Errorf("artwork row not found in catalog")

	// Ошибки распознавания
	ErrUndecodableImage     = fmt.Errorf("image cannot be decoded")
	ErrEmbeddingFailed      = fmt.Errorf("embedding failed")
	ErrVectorSizeMismatch   = fmt.Errorf("embedding vector size mismatch")
	ErrGenerationFailed     = fmt.Errorf("description generation failed")
	ErrUnsupportedMediaType = fmt.Errorf("unsupported media type")

	// Ошибки протокола очереди
	ErrMalformedRequest = fmt.Errorf("malformed recognition request")
	ErrQueueEmpty       = fmt.Errorf("request queue is empty")
	ErrResponseNotFound = fmt.Errorf("response not found")
	ErrResponseTimeout  = fmt.Errorf("timed out waiting for response")

	// 400 Bad Request
	ErrStatusBadRequest  = fmt.Errorf("bad request")
	ErrExpectedMultipart = fmt.Errorf("expected multipart/form-data")
	ErrNoImage           = fmt.Errorf("no image provided")
	ErrFileTooLarge      = fmt.Errorf("file too large")

	// 500 / 503 / 504
	ErrInternalServerError = fmt.Errorf("internal server error")

	// Ошибки конфигурации
	ErrIncorrectEnvVariable = fmt.Errorf("incorrect environment variable")
)

// Wrap оборачивает ошибку
func Wrap(msg string, err error) error {
	return fmt.Errorf("%s: %w", msg, err)
}
