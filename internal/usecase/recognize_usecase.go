package usecase

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/albesa-team/artguide-backend/internal/domain"
	"github.com/albesa-team/artguide-backend/pkg/e"
	"github.com/albesa-team/artguide-backend/pkg/imaging"
	"github.com/albesa-team/artguide-backend/pkg/logger"
	"github.com/albesa-team/artguide-backend/pkg/vec"
	"github.com/google/uuid"
)

const (
	// normTolerance — допуск проверки L2-нормы вектора эмбеддинга
	normTolerance = 1e-5

	msgUnavailable    = "No index loaded"
	msgImageError     = "The uploaded image could not be read. Please try another photo."
	msgEmbeddingError = "Recognition failed while analyzing the image. Please try again."
	msgSearchError    = "Recognition failed while searching the catalog. Please try again."

	descUnavailable = "Recognition service is not available. Please try again later."
	descError       = "An error occurred during recognition."
)

// RecognitionUseCase реализует пайплайн распознавания:
// изображение → эмбеддинг → поиск по индексу → confidence → описание → телеметрия.
type RecognitionUseCase struct {
	embedder      EmbedderInfra
	indexRepo     IndexRepository
	catalog       CatalogRepository
	describer     DescriptionInfra
	cacheRepo     DescriptionCacheRepository
	telemetryRepo TelemetryRepository
	archive       ArchiveInfra
	events        EventPublisher
	logger        logger.Logger
	topK          uint64
}

func NewRecognitionUC(
	embedder EmbedderInfra,
	indexRepo IndexRepository,
	catalog CatalogRepository,
	describer DescriptionInfra,
	cacheRepo DescriptionCacheRepository,
	telemetryRepo TelemetryRepository,
	archive ArchiveInfra,
	events EventPublisher,
	logger logger.Logger,
	topK uint64,
) *RecognitionUseCase {
	return &RecognitionUseCase{
		embedder:      embedder,
		indexRepo:     indexRepo,
		catalog:       catalog,
		describer:     describer,
		cacheRepo:     cacheRepo,
		telemetryRepo: telemetryRepo,
		archive:       archive,
		events:        events,
		logger:        logger,
		topK:          topK,
	}
}

// Recognize выполняет запрос распознавания целиком. Все сбои гасятся на границе
// пайплайна: вызывающий всегда получает корректный результат, телеметрия пишется
// безусловно (с заглушками при неуспехе).
func (r *RecognitionUseCase) Recognize(ctx context.Context, req *RecognizeReq) *domain.RecognitionResult {
	start := time.Now()

	res := r.run(ctx, req)
	res.ResponseTime = roundSeconds(time.Since(start))

	r.writeTelemetry(res)
	r.publishEvent(res)

	return res
}

func (r *RecognitionUseCase) run(ctx context.Context, req *RecognizeReq) *domain.RecognitionResult {
	const op = "RecognitionUseCase.run"

	// Пустой или отсутствующий каталог — отдельное состояние, а не ошибка.
	// Индекс и генератор при этом не вызываются.
	if r.catalog == nil || r.catalog.Size() == 0 {
		return unavailableResult()
	}

	// Приведение к RGB JPEG: не-RGB вход нормализуется, нечитаемый — ошибка
	normalized, err := imaging.CoerceRGBJPEG(req.Image)
	if err != nil {
		r.logger.Warnf("undecodable image: %v", e.Wrap(op, err))
		return errorResult(msgImageError)
	}

	vector, err := r.embedder.Embed(ctx, normalized)
	if err != nil {
		r.logger.Errorf(e.Wrap(op, err), "embedding failed")
		return errorResult(msgEmbeddingError)
	}

	if !vec.IsNormalized(vector, normTolerance) {
		vec.Normalize(vector)
	}

	hits, err := r.indexRepo.Search(ctx, vector, r.topK)
	if err != nil {
		r.logger.Errorf(e.Wrap(op, err), "index search failed")
		return errorResult(msgSearchError)
	}

	if len(hits) == 0 {
		return unavailableResult()
	}

	top := hits[0]
	artwork, ok := r.catalog.Artwork(top.Row)
	if !ok {
		r.logger.Errorf(e.Wrap(op, e.ErrArtworkNotFound), "index returned row %d outside catalog", top.Row)
		return errorResult(msgSearchError)
	}

	// confidence = exp(-distance): монотонная эвристика, не вероятность
	confidence := math.Exp(-float64(top.Distance))

	if r.archive != nil {
		r.archive.ArchivePhoto(req.Image, req.MimeType)
	}

	desc := r.describe(ctx, artwork)

	description := desc.Text
	if req.ShowContext && len(hits) > 1 {
		// Контекст дополняет только описание, первичные поля не меняются
		description += r.contextBlock(hits[1:])
	}

	source := domain.DescriptionFallback
	if desc.Generated {
		source = domain.DescriptionGenerated
	}

	return &domain.RecognitionResult{
		Artist:            artwork.Artist,
		Title:             artwork.Title,
		Period:            artwork.Period,
		Confidence:        confidence,
		Description:       description,
		DescriptionSource: source,
		Status:            domain.StatusSuccess,
	}
}

// describe возвращает описание произведения, сначала проверяя кэш.
// Кэшируются только сгенерированные LLM тексты.
func (r *RecognitionUseCase) describe(ctx context.Context, artwork *domain.Artwork) *DescribeRes {
	const op = "RecognitionUseCase.describe"

	req := NewDescribeReq(artwork.Artist, artwork.Title, artwork.Period)

	if r.cacheRepo != nil {
		if text, ok := r.cacheRepo.GetDescription(ctx, req); ok {
			return NewDescribeRes(text, true)
		}
	}

	res := r.describer.Describe(ctx, req)

	if res.Generated && r.cacheRepo != nil {
		// Фоновое добавление описания в кэш
		go func() {
			bgCtx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
			defer cancel()

			if err := r.cacheRepo.SetDescription(bgCtx, req, res.Text); err != nil {
				r.logger.Warnf("Failed to cache description in background: %v", e.Wrap(op, err))
			}
		}()
	}

	return res
}

// contextBlock собирает сводку по похожим работам (ранги 2..4 результатов поиска).
func (r *RecognitionUseCase) contextBlock(rest []domain.IndexHit) string {
	const maxContextItems = 3

	items := make([]string, 0, maxContextItems)
	for _, hit := range rest {
		if len(items) == maxContextItems {
			break
		}

		artwork, ok := r.catalog.Artwork(hit.Row)
		if !ok {
			continue
		}

		items = append(items, fmt.Sprintf(
			"%s - %s (similarity: %.2f)",
			artwork.Artist, artwork.Title, math.Exp(-float64(hit.Distance)),
		))
	}

	if len(items) == 0 {
		return ""
	}

	return "\n\nSimilar artworks: " + strings.Join(items, "; ")
}

// writeTelemetry пишет одну строку телеметрии. Сбой записи логируется и не влияет на ответ.
func (r *RecognitionUseCase) writeTelemetry(res *domain.RecognitionResult) {
	const op = "RecognitionUseCase.writeTelemetry"

	record := domain.NewTelemetryRecord(res.Artist, res.Confidence, res.ResponseTime)
	if err := r.telemetryRepo.Append(record); err != nil {
		r.logger.Warnf("telemetry write failed: %v", e.Wrap(op, err))
	}
}

// publishEvent публикует событие распознавания в фоне, best-effort.
func (r *RecognitionUseCase) publishEvent(res *domain.RecognitionResult) {
	if r.events == nil {
		return
	}

	event := &RecognitionEvent{
		EventID:      uuid.NewString(),
		Artist:       res.Artist,
		Status:       string(res.Status),
		Confidence:   res.Confidence,
		ResponseTime: res.ResponseTime,
		Timestamp:    time.Now().UnixNano(),
	}

	go func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		if err := r.events.PublishRecognition(bgCtx, event); err != nil {
			r.logger.Warnf("recognition event publish failed: %v", err)
		}
	}()
}

func unavailableResult() *domain.RecognitionResult {
	return &domain.RecognitionResult{
		Artist:            "Unknown",
		Title:             "Unknown",
		Period:            "Unknown",
		Confidence:        0.0,
		Description:       descUnavailable,
		DescriptionSource: domain.DescriptionFallback,
		Status:            domain.StatusUnavailable,
		Message:           msgUnavailable,
	}
}

func errorResult(message string) *domain.RecognitionResult {
	return &domain.RecognitionResult{
		Artist:            "Unknown",
		Title:             "Unknown",
		Period:            "Unknown",
		Confidence:        0.0,
		Description:       descError,
		DescriptionSource: domain.DescriptionFallback,
		Status:            domain.StatusError,
		Message:           message,
	}
}

func roundSeconds(d time.Duration) float64 {
	return math.Round(d.Seconds()*100) / 100
}
