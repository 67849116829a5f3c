package usecase

import (
	"context"

	"github.com/albesa-team/artguide-backend/internal/domain"
)

// RecognitionUC — пайплайн распознавания. Никогда не возвращает ошибку наружу:
// любой внутренний сбой превращается в результат со статусом unavailable или error.
type RecognitionUC interface {
	Recognize(ctx context.Context, req *RecognizeReq) *domain.RecognitionResult
}

// DispatchUC — продюсерская сторона протокола очереди.
type DispatchUC interface {
	Submit(ctx context.Context, req *SubmitReq) (string, error)
	Await(ctx context.Context, requestID string) (*domain.RecognitionResponse, error)
	Fetch(ctx context.Context, requestID string) (*domain.RecognitionResponse, error)
}
