// Package app собирает зависимости и управляет жизненным циклом процессов:
// HTTP-сервера распознавания и воркера очереди.
package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	config "github.com/albesa-team/artguide-backend/internal/cfg"
	v1Http "github.com/albesa-team/artguide-backend/internal/delivery/v1/http"
	redisRepo "github.com/albesa-team/artguide-backend/internal/repository/redis"
	"github.com/albesa-team/artguide-backend/internal/usecase"
	"github.com/albesa-team/artguide-backend/pkg/closer"
	"github.com/albesa-team/artguide-backend/pkg/e"
	"github.com/albesa-team/artguide-backend/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/jimlawless/whereami"
)

const shutdownTimeout = 10 * time.Second

// App — HTTP-процесс распознавания. В автономном режиме пайплайн выполняется
// в этом же процессе; в распределённом запросы уходят в очередь воркеров.
type App struct {
	cfg     *config.Config
	logger  logger.Logger
	httpSrv *v1Http.Server
	closer  *closer.Closer
}

func NewApp(cfg *config.Config, log logger.Logger) (*App, error) {
	cl := closer.NewCloser(0)

	redisClient, err := initRedis(cfg.Redis, cl)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	var (
		recognitionUC usecase.RecognitionUC
		dispatchUC    usecase.DispatchUC
		catalogRepo   usecase.CatalogRepository
	)

	switch cfg.Mode {
	case config.ModeDistributed:
		queueRepo := redisRepo.NewQueueRepo(redisClient, cfg.Queue, log)
		dispatchUC = usecase.NewDispatchUC(queueRepo, cfg.Queue, log)
		log.Infof("running in distributed mode, requests go to queue %q", cfg.Queue.RequestQueue)
	default:
		recognitionUC, catalogRepo, err = buildRecognitionUC(cfg, log, cl, redisClient)
		if err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		log.Infof("running in standalone mode, recognition pipeline is in-process")
	}

	r := chi.NewRouter()
	router := v1Http.NewRouter(r, log)
	router.Init(recognitionUC, dispatchUC, catalogRepo)

	return &App{
		cfg:     cfg,
		logger:  log,
		httpSrv: v1Http.NewServer(r, cfg.Http),
		closer:  cl,
	}, nil
}

func (a *App) Run() error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Infof("HTTP server started on port %s", a.cfg.Http.Port)
		if err := a.httpSrv.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	var appErr error
	select {
	case appErr = <-errCh:
		a.logger.Errorf(appErr, "HTTP server fatal error")
	case <-shutdown:
		a.logger.Infof("Received shutdown signal, stopping gracefully...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.httpSrv.Stop(shutdownCtx); err != nil {
		a.logger.Errorf(err, "HTTP server shutdown error")
	} else {
		a.logger.Infof("HTTP server stopped")
	}

	if err := a.closer.Close(shutdownCtx); err != nil {
		a.logger.Warnf("resource shutdown: %v", err)
	}

	a.logger.Infof("Application shutdown complete")
	return appErr
}
