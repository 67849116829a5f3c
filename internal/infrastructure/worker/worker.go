// Package worker реализует консьюмер очереди запросов распределённого режима:
// снимает запросы из очереди, прогоняет их через пайплайн распознавания и
// записывает ответы в хранилище ответов.
package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/albesa-team/artguide-backend/internal/domain"
	"github.com/albesa-team/artguide-backend/internal/usecase"
	"github.com/albesa-team/artguide-backend/pkg/e"
	"github.com/albesa-team/artguide-backend/pkg/logger"
)

type QueueWorker struct {
	queueRepo usecase.QueueRepository
	uc        usecase.RecognitionUC
	logger    logger.Logger
	stop      chan struct{}
	wg        sync.WaitGroup
}

func NewQueueWorker(
	queueRepo usecase.QueueRepository,
	uc usecase.RecognitionUC,
	logger logger.Logger,
) *QueueWorker {
	return &QueueWorker{
		queueRepo: queueRepo,
		uc:        uc,
		logger:    logger,
		stop:      make(chan struct{}),
	}
}

func (w *QueueWorker) Start(ctx context.Context) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.run(ctx)
	}()
}

func (w *QueueWorker) Stop() {
	close(w.stop)
	w.wg.Wait()
}

func (w *QueueWorker) run(ctx context.Context) {
	w.logger.Infof("Queue worker started, waiting for recognition requests...")

	for {
		select {
		case <-ctx.Done():
			w.logger.Infof("Worker stopped by context cancellation")
			return
		case <-w.stop:
			w.logger.Infof("Worker stopped")
			return
		default:
			if err := w.poll(ctx); err != nil {
				w.logger.Warnf("poll failed: %v", err)
				select {
				case <-time.After(2 * time.Second):
				case <-w.stop:
				case <-ctx.Done():
				}
			}
		}
	}
}

// poll снимает один запрос и обрабатывает его. Пустая очередь — не ошибка:
// Dequeue уже блокируется на интервал опроса, цикл просто продолжается.
func (w *QueueWorker) poll(ctx context.Context) error {
	const op = "worker.poll"

	req, err := w.queueRepo.Dequeue(ctx)
	if err != nil {
		if errors.Is(err, e.ErrQueueEmpty) {
			return nil
		}
		if errors.Is(err, e.ErrMalformedRequest) {
			// Если request_id удалось восстановить, продюсер получает ответ
			// об ошибке; без него сообщение остаётся только отбросить.
			if req != nil && req.RequestID != "" {
				w.respondMalformed(ctx, req.RequestID)
				return nil
			}
			w.logger.Warnf("dropping malformed queue message without request_id: %v", err)
			return nil
		}
		return e.Wrap(op, err)
	}

	// Снятый запрос дорабатывается до конца даже при отмене внешнего контекста:
	// завершение процесса честно лишь между опросами очереди.
	w.process(context.WithoutCancel(ctx), req)
	return nil
}

func (w *QueueWorker) respondMalformed(ctx context.Context, requestID string) {
	const op = "worker.respondMalformed"

	w.logger.Warnf("%s: request %s could not be decoded, writing error response", op, requestID)

	resp := domain.NewErrorResponse(requestID, "request could not be decoded")
	if err := w.queueRepo.SetResponse(context.WithoutCancel(ctx), resp); err != nil {
		w.logger.Errorf(e.Wrap(op, err), "failed to store error response for request %s", requestID)
	}
}

func (w *QueueWorker) process(ctx context.Context, req *domain.RecognitionRequest) {
	const op = "worker.process"

	if req.RequestID == "" {
		w.logger.Warnf("%s: request without request_id, dropping", op)
		return
	}

	w.logger.Debugf("%s: processing request %s (%d bytes)", op, req.RequestID, len(req.Image))

	var resp *domain.RecognitionResponse
	if len(req.Image) == 0 {
		resp = domain.NewErrorResponse(req.RequestID, "request contains no image data")
	} else {
		res := w.uc.Recognize(ctx, usecase.NewRecognizeReq(req.Image, "image/jpeg", req.ShowContext))
		resp = domain.NewRecognitionResponse(req.RequestID, res)
	}

	if err := w.queueRepo.SetResponse(ctx, resp); err != nil {
		w.logger.Errorf(e.Wrap(op, err), "failed to store response for request %s", req.RequestID)
		return
	}

	w.logger.Infof("%s: request %s completed with status %s", op, req.RequestID, resp.Status)
}
