package app

import (
	"context"
	"errors"
	"time"

	config "github.com/albesa-team/artguide-backend/internal/cfg"
	"github.com/albesa-team/artguide-backend/internal/infrastructure/embedder"
	kafkaInfra "github.com/albesa-team/artguide-backend/internal/infrastructure/kafka"
	"github.com/albesa-team/artguide-backend/internal/infrastructure/llm"
	minioInfra "github.com/albesa-team/artguide-backend/internal/infrastructure/minio"
	"github.com/albesa-team/artguide-backend/internal/repository/catalog"
	s3Repo "github.com/albesa-team/artguide-backend/internal/repository/minio"
	qdrantRepo "github.com/albesa-team/artguide-backend/internal/repository/qdrant"
	redisRepo "github.com/albesa-team/artguide-backend/internal/repository/redis"
	"github.com/albesa-team/artguide-backend/internal/repository/telemetry"
	"github.com/albesa-team/artguide-backend/internal/usecase"
	"github.com/albesa-team/artguide-backend/pkg/clients"
	"github.com/albesa-team/artguide-backend/pkg/closer"
	"github.com/albesa-team/artguide-backend/pkg/e"
	"github.com/albesa-team/artguide-backend/pkg/logger"
	"github.com/jimlawless/whereami"
)

const initTimeout = 10 * time.Second

// initRedis подключает Redis и регистрирует закрытие клиента.
func initRedis(cfg *config.RedisCfg, cl *closer.Closer) (*clients.RedisClient, error) {
	redisClient := clients.NewRedisClient(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := redisClient.Ping(ctx); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	cl.Add(func(_ context.Context) error {
		return redisClient.Client.Close()
	})

	return redisClient, nil
}

// buildRecognitionUC собирает пайплайн распознавания целиком: индекс, каталог,
// эмбеддер, генератор описаний, телеметрию и опциональные архив и шину событий.
// Каталог возвращается отдельно: он нужен healthz-обработчику.
func buildRecognitionUC(
	cfg *config.Config,
	log logger.Logger,
	cl *closer.Closer,
	redisClient *clients.RedisClient,
) (usecase.RecognitionUC, usecase.CatalogRepository, error) {
	qdrantClient, err := clients.NewQdrantClient(cfg.Qdrant)
	if err != nil {
		return nil, nil, e.Wrap(whereami.WhereAmI(), err)
	}

	qdrantCtx, qdrantCancel := context.WithTimeout(context.Background(), initTimeout)
	if err := clients.EnsureCollection(qdrantCtx, qdrantClient); err != nil {
		qdrantCancel()
		return nil, nil, e.Wrap(whereami.WhereAmI(), err)
	}
	qdrantCancel()

	cl.Add(func(_ context.Context) error {
		return qdrantClient.Client.Close()
	})

	indexRepo := qdrantRepo.NewIndexRepo(qdrantClient.Client, cfg.Qdrant)

	// Каталог грузится один раз при старте. Любая проблема с метаданными
	// переводит сервис в состояние unavailable, а не роняет процесс.
	catalogRepo := loadCatalog(cfg, log, indexRepo)

	telemetryRepo, err := telemetry.NewCSVRepo(cfg.Telemetry.LogPath)
	if err != nil {
		return nil, nil, e.Wrap(whereami.WhereAmI(), err)
	}

	var archive usecase.ArchiveInfra
	if cfg.Minio.Enabled {
		archiveInfra, err := initArchive(cfg, log, cl)
		if err != nil {
			return nil, nil, e.Wrap(whereami.WhereAmI(), err)
		}
		archive = archiveInfra
	}

	var events usecase.EventPublisher
	if cfg.Kafka.Enabled {
		producer, err := initProducer(cfg, log, cl)
		if err != nil {
			// Шина событий строго best-effort: без неё пайплайн работает
			log.Warnf("kafka producer init failed, recognition events disabled: %v", err)
		} else {
			events = producer
		}
	}

	uc := usecase.NewRecognitionUC(
		embedder.NewClient(cfg.Embedder, log),
		indexRepo,
		catalogRepo,
		llm.NewGenerator(cfg.LLM, log),
		redisRepo.NewDescriptionCacheRepo(redisClient, cfg.Redis, log),
		telemetryRepo,
		archive,
		events,
		log,
		cfg.Pipeline.TopK,
	)

	return uc, catalogRepo, nil
}

// loadCatalog читает метаданные и сверяет число строк с числом точек индекса.
// Возвращает nil при любом расхождении: пайплайн отвечает unavailable,
// пока офлайновый процесс наполнения не приведёт каталог в порядок.
func loadCatalog(cfg *config.Config, log logger.Logger, indexRepo *qdrantRepo.IndexRepo) usecase.CatalogRepository {
	cat, err := catalog.Load(cfg.Catalog.MetadataPath)
	if err != nil {
		log.Warnf("catalog metadata not loaded from %s: %v", cfg.Catalog.MetadataPath, err)
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), initTimeout)
	defer cancel()

	count, err := indexRepo.Count(ctx)
	if err != nil {
		log.Warnf("failed to count index points: %v", err)
		return nil
	}

	if err := cat.ValidateAlignment(count); err != nil {
		if errors.Is(err, e.ErrCatalogMisaligned) {
			log.Warnf("catalog has %d rows but index has %d points, serving unavailable", cat.Size(), count)
		} else {
			log.Warnf("catalog validation failed: %v", err)
		}
		return nil
	}

	log.Infof("catalog loaded: %d artworks", cat.Size())
	return cat
}

func initArchive(cfg *config.Config, log logger.Logger, cl *closer.Closer) (*minioInfra.ArchiveInfrastructure, error) {
	minioClient, err := clients.NewMinIOClient(cfg.Minio)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), initTimeout)
	defer cancel()
	if err := clients.EnsureBucket(ctx, minioClient, cfg.Minio.BucketName); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	archive := minioInfra.NewArchiveInfrastructure(s3Repo.NewPhotoRepo(minioClient, cfg.Minio), cfg.Minio, log)
	cl.Add(archive.WaitForUploads)

	return archive, nil
}

func initProducer(cfg *config.Config, log logger.Logger, cl *closer.Closer) (*kafkaInfra.Producer, error) {
	producer, err := kafkaInfra.NewProducer(log, cfg.Kafka)
	if err != nil {
		return nil, err
	}

	if err := producer.EnsureTopic(initTimeout); err != nil {
		producer.Close()
		return nil, err
	}

	cl.Add(func(_ context.Context) error {
		return producer.Close()
	})

	return producer, nil
}
