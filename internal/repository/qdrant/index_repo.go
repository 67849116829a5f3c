package qdrant

import (
	"context"

	"github.com/albesa-team/artguide-backend/internal/cfg"
	"github.com/albesa-team/artguide-backend/internal/domain"
	"github.com/albesa-team/artguide-backend/pkg/e"
	"github.com/jimlawless/whereami"
	"github.com/qdrant/go-client/qdrant"
)

// IndexRepo — векторный индекс каталога поверх Qdrant.
// ID точки равен номеру строки таблицы метаданных.
type IndexRepo struct {
	client *qdrant.Client
	cfg    *cfg.QdrantCfg
}

func NewIndexRepo(client *qdrant.Client, cfg *cfg.QdrantCfg) *IndexRepo {
	return &IndexRepo{
		client: client,
		cfg:    cfg,
	}
}

// Search возвращает до k ближайших соседей вектора, упорядоченных по возрастанию расстояния.
// Коллекция создана с евклидовой метрикой, поэтому score и есть расстояние.
func (q *IndexRepo) Search(ctx context.Context, vector []float32, k uint64) ([]domain.IndexHit, error) {
	points, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.cfg.CollectionName,
		Query:          qdrant.NewQuery(vector...),
		Limit:          &k,
	})
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	hits := make([]domain.IndexHit, 0, len(points))
	for _, point := range points {
		hits = append(hits, domain.IndexHit{
			Row:      point.GetId().GetNum(),
			Distance: point.GetScore(),
		})
	}

	return hits, nil
}

// Count возвращает точное число точек коллекции (для проверки выравнивания с метаданными).
func (q *IndexRepo) Count(ctx context.Context) (uint64, error) {
	exact := true
	count, err := q.client.Count(ctx, &qdrant.CountPoints{
		CollectionName: q.cfg.CollectionName,
		Exact:          &exact,
	})
	if err != nil {
		return 0, e.Wrap(whereami.WhereAmI(), err)
	}

	return count, nil
}
