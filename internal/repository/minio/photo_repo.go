package minio

import (
	"bytes"
	"context"

	"github.com/albesa-team/artguide-backend/internal/cfg"
	"github.com/albesa-team/artguide-backend/internal/domain"
	"github.com/albesa-team/artguide-backend/pkg/e"
	"github.com/jimlawless/whereami"
	"github.com/minio/minio-go/v7"
)

// PhotoRepo реализует хранилище пользовательских фото поверх MinIO.
type PhotoRepo struct {
	mc  *minio.Client
	cfg *cfg.MinIOCfg
}

func NewPhotoRepo(mc *minio.Client, cfg *cfg.MinIOCfg) *PhotoRepo {
	return &PhotoRepo{
		mc:  mc,
		cfg: cfg,
	}
}

// Upload загружает фото в MinIO и возвращает ключ объекта.
func (p *PhotoRepo) Upload(ctx context.Context, photo *domain.Photo) (string, error) {
	reader := bytes.NewReader(photo.Bytes)

	info, err := p.mc.PutObject(ctx, p.cfg.BucketName, photo.ObjectKey, reader, photo.Size, minio.PutObjectOptions{
		ContentType: photo.MimeType,
	})
	if err != nil {
		return "", e.Wrap(whereami.WhereAmI(), err)
	}

	return info.Key, nil
}
