package redis

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/albesa-team/artguide-backend/internal/cfg"
	"github.com/albesa-team/artguide-backend/internal/usecase"
	"github.com/albesa-team/artguide-backend/pkg/clients"
	"github.com/albesa-team/artguide-backend/pkg/e"
	"github.com/albesa-team/artguide-backend/pkg/logger"
	"github.com/jimlawless/whereami"
	r "github.com/redis/go-redis/v9"
)

// DescriptionCacheRepo кэширует сгенерированные LLM описания произведений.
// Промахи и ошибки кэша гасятся: пайплайн просто генерирует описание заново.
type DescriptionCacheRepo struct {
	client *clients.RedisClient
	cfg    *cfg.RedisCfg
	logger logger.Logger
}

func NewDescriptionCacheRepo(client *clients.RedisClient, cfg *cfg.RedisCfg, logger logger.Logger) *DescriptionCacheRepo {
	return &DescriptionCacheRepo{
		client: client,
		cfg:    cfg,
		logger: logger,
	}
}

// GetDescription возвращает закэшированное описание, если оно есть.
func (c *DescriptionCacheRepo) GetDescription(ctx context.Context, req *usecase.DescribeReq) (string, bool) {
	text, err := c.client.Client.Get(ctx, c.descriptionKey(req)).Result()
	if err != nil {
		if !errors.Is(err, r.Nil) {
			c.logger.Warnf("description cache GET failed: %v", e.Wrap(whereami.WhereAmI(), err))
		}
		return "", false
	}

	return text, true
}

// SetDescription кэширует описание с настроенным TTL.
func (c *DescriptionCacheRepo) SetDescription(ctx context.Context, req *usecase.DescribeReq, text string) error {
	if err := c.client.Client.Set(ctx, c.descriptionKey(req), text, c.cfg.DescriptionTTL).Err(); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

// descriptionKey строит ключ кэша из идентичности произведения
func (c *DescriptionCacheRepo) descriptionKey(req *usecase.DescribeReq) string {
	sum := sha256.Sum256(fmt.Appendf(nil, "%s|%s|%s", req.Artist, req.Title, req.Period))
	return fmt.Sprintf("artwork:description:%x", sum[:16])
}
