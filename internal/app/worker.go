package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	config "github.com/albesa-team/artguide-backend/internal/cfg"
	"github.com/albesa-team/artguide-backend/internal/infrastructure/worker"
	redisRepo "github.com/albesa-team/artguide-backend/internal/repository/redis"
	"github.com/albesa-team/artguide-backend/pkg/closer"
	"github.com/albesa-team/artguide-backend/pkg/e"
	"github.com/albesa-team/artguide-backend/pkg/logger"
	"github.com/jimlawless/whereami"
)

// WorkerApp — процесс-консьюмер очереди запросов. Несколько таких процессов
// могут обслуживать одну очередь: BLPOP раздаёт запросы по одному.
type WorkerApp struct {
	logger logger.Logger
	worker *worker.QueueWorker
	closer *closer.Closer
}

func NewWorkerApp(cfg *config.Config, log logger.Logger) (*WorkerApp, error) {
	cl := closer.NewCloser(0)

	redisClient, err := initRedis(cfg.Redis, cl)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	recognitionUC, _, err := buildRecognitionUC(cfg, log, cl, redisClient)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	queueRepo := redisRepo.NewQueueRepo(redisClient, cfg.Queue, log)

	return &WorkerApp{
		logger: log,
		worker: worker.NewQueueWorker(queueRepo, recognitionUC, log),
		closer: cl,
	}, nil
}

func (a *WorkerApp) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.worker.Start(ctx)

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	<-shutdown

	a.logger.Infof("Received shutdown signal, stopping worker...")
	// Сначала дорабатывается снятый запрос, контекст отменяется только после
	a.worker.Stop()
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := a.closer.Close(shutdownCtx); err != nil {
		a.logger.Warnf("resource shutdown: %v", err)
	}

	a.logger.Infof("Worker shutdown complete")
	return nil
}
