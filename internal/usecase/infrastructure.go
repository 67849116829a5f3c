package usecase

import "context"

// EmbedderInfra — внешний сервис эмбеддингов (изображение → вектор фиксированной размерности).
type EmbedderInfra interface {
	Embed(ctx context.Context, image []byte) ([]float32, error)
}

// DescriptionInfra — генератор описаний. Не возвращает ошибку: при сбое LLM
// молча деградирует до детерминированного шаблона.
type DescriptionInfra interface {
	Describe(ctx context.Context, req *DescribeReq) *DescribeRes
}

// ArchiveInfra — фоновая архивация загруженных фото, строго best-effort.
type ArchiveInfra interface {
	ArchivePhoto(image []byte, mimeType string)
	WaitForUploads(ctx context.Context) error
}

// EventPublisher — публикация событий распознавания во внешнюю шину, best-effort.
type EventPublisher interface {
	PublishRecognition(ctx context.Context, event *RecognitionEvent) error
}
