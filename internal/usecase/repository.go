package usecase

import (
	"context"

	"github.com/albesa-team/artguide-backend/internal/domain"
)

// IndexRepository — векторный индекс каталога (k ближайших соседей).
type IndexRepository interface {
	Search(ctx context.Context, vector []float32, k uint64) ([]domain.IndexHit, error)
	Count(ctx context.Context) (uint64, error)
}

// CatalogRepository — таблица метаданных каталога, построчно выровненная с индексом.
type CatalogRepository interface {
	Artwork(row uint64) (*domain.Artwork, bool)
	Size() int
}

// QueueRepository — очередь запросов и хранилище ответов распределённого режима.
type QueueRepository interface {
	Enqueue(ctx context.Context, req *domain.RecognitionRequest) error
	// Dequeue снимает следующий запрос. Возвращает e.ErrQueueEmpty при пустой
	// очереди и e.ErrMalformedRequest, если сообщение не декодируется; если при
	// этом request_id восстановим, он возвращается в частично заполненном
	// запросе вместе с ошибкой.
	Dequeue(ctx context.Context) (*domain.RecognitionRequest, error)
	SetResponse(ctx context.Context, resp *domain.RecognitionResponse) error
	// GetResponse возвращает e.ErrResponseNotFound, пока ответ не записан или уже истёк.
	GetResponse(ctx context.Context, requestID string) (*domain.RecognitionResponse, error)
}

// DescriptionCacheRepository — кэш сгенерированных описаний.
type DescriptionCacheRepository interface {
	GetDescription(ctx context.Context, req *DescribeReq) (string, bool)
	SetDescription(ctx context.Context, req *DescribeReq, text string) error
}

// TelemetryRepository — append-only журнал телеметрии.
type TelemetryRepository interface {
	Append(record *domain.TelemetryRecord) error
}
