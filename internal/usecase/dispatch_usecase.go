package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/albesa-team/artguide-backend/internal/cfg"
	"github.com/albesa-team/artguide-backend/internal/domain"
	"github.com/albesa-team/artguide-backend/pkg/e"
	"github.com/albesa-team/artguide-backend/pkg/logger"
	"github.com/google/uuid"
)

// DispatchUseCase — продюсерская сторона протокола очереди: постановка запроса
// и опрос хранилища ответов. Доставка best-effort: таймаут ожидания означает
// «неизвестно», а не «не обработано» — ответ мог истечь непрочитанным.
type DispatchUseCase struct {
	queueRepo QueueRepository
	cfg       *cfg.QueueCfg
	logger    logger.Logger
}

func NewDispatchUC(queueRepo QueueRepository, cfg *cfg.QueueCfg, logger logger.Logger) *DispatchUseCase {
	return &DispatchUseCase{
		queueRepo: queueRepo,
		cfg:       cfg,
		logger:    logger,
	}
}

// Submit генерирует request_id, сериализует запрос и ставит его в очередь FIFO.
func (d *DispatchUseCase) Submit(ctx context.Context, req *SubmitReq) (string, error) {
	const op = "DispatchUseCase.Submit"

	if len(req.Image) == 0 {
		return "", e.Wrap(op, e.ErrNoImage)
	}

	requestID := uuid.NewString()
	message := domain.NewRecognitionRequest(requestID, req.Image, req.ShowContext)

	if err := d.queueRepo.Enqueue(ctx, message); err != nil {
		return "", e.Wrap(op, err)
	}

	d.logger.Debugf("enqueued recognition request %s", requestID)
	return requestID, nil
}

// Await опрашивает хранилище ответов до появления записи либо до таймаута.
// Возвращает e.ErrResponseTimeout, если ответ не появился вовремя.
func (d *DispatchUseCase) Await(ctx context.Context, requestID string) (*domain.RecognitionResponse, error) {
	const op = "DispatchUseCase.Await"

	deadline := time.Now().Add(d.cfg.AwaitTimeout)
	ticker := time.NewTicker(d.cfg.PollInterval)
	defer ticker.Stop()

	for {
		resp, err := d.queueRepo.GetResponse(ctx, requestID)
		if err == nil {
			return resp, nil
		}
		if !errors.Is(err, e.ErrResponseNotFound) {
			return nil, e.Wrap(op, err)
		}

		if time.Now().After(deadline) {
			return nil, e.Wrap(op, e.ErrResponseTimeout)
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return nil, e.Wrap(op, ctx.Err())
		}
	}
}

// Fetch читает хранилище ответов один раз, без ожидания.
func (d *DispatchUseCase) Fetch(ctx context.Context, requestID string) (*domain.RecognitionResponse, error) {
	const op = "DispatchUseCase.Fetch"

	resp, err := d.queueRepo.GetResponse(ctx, requestID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return resp, nil
}
