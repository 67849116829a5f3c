package minio

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/albesa-team/artguide-backend/internal/cfg"
	"github.com/albesa-team/artguide-backend/internal/domain"
	"github.com/albesa-team/artguide-backend/internal/infrastructure"
	"github.com/albesa-team/artguide-backend/pkg/logger"
	"github.com/google/uuid"
)

// PhotoRepository — хранилище фото (реализуется репозиторием MinIO).
type PhotoRepository interface {
	Upload(ctx context.Context, photo *domain.Photo) (string, error)
}

// ArchiveInfrastructure архивирует присланные пользователями фото в фоне.
// Архивация строго best-effort: сбой загрузки логируется и никак не влияет
// на результат распознавания.
type ArchiveInfrastructure struct {
	photoRepo PhotoRepository
	cfg       *cfg.MinIOCfg
	logger    logger.Logger
	wg        sync.WaitGroup
}

func NewArchiveInfrastructure(photoRepo PhotoRepository, cfg *cfg.MinIOCfg, logger logger.Logger) *ArchiveInfrastructure {
	return &ArchiveInfrastructure{
		photoRepo: photoRepo,
		cfg:       cfg,
		logger:    logger,
	}
}

// ArchivePhoto ставит фоновую загрузку фото. Вызов не блокирует пайплайн.
func (a *ArchiveInfrastructure) ArchivePhoto(image []byte, mimeType string) {
	const op = "ArchiveInfrastructure.ArchivePhoto"

	if len(image) == 0 {
		return
	}

	ext, err := infrastructure.GetExtensionFromMIME(mimeType)
	if err != nil {
		a.logger.Debugf("%s: skipping archive, mime %q: %v", op, mimeType, err)
		return
	}

	photoID := uuid.NewString()
	objKey := fmt.Sprintf("uploads/%s/%s.%s", time.Now().UTC().Format("2006-01-02"), photoID, ext)
	photo := domain.NewPhoto(photoID, a.cfg.BucketName, objKey, image, mimeType)

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if _, err := a.photoRepo.Upload(ctx, photo); err != nil {
			a.logger.Warnf("%s: photo archive upload failed, key=%s: %v", op, objKey, err)
		}
	}()
}

// WaitForUploads ожидает завершения фоновых загрузок с учётом таймаута завершения приложения.
func (a *ArchiveInfrastructure) WaitForUploads(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("photo archive wait timeout during shutdown: %w", ctx.Err())
	}
}
