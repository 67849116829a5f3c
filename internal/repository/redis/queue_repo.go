package redis

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/albesa-team/artguide-backend/internal/cfg"
	"github.com/albesa-team/artguide-backend/internal/domain"
	"github.com/albesa-team/artguide-backend/pkg/clients"
	"github.com/albesa-team/artguide-backend/pkg/e"
	"github.com/albesa-team/artguide-backend/pkg/logger"
	"github.com/jimlawless/whereami"
	r "github.com/redis/go-redis/v9"
)

// QueueRepo реализует очередь запросов (FIFO-список) и хранилище ответов
// (ключи с TTL) поверх Redis. Атомарный BLPOP — единственный примитив
// конкурентного доступа: каждый запрос снимается ровно одним воркером.
type QueueRepo struct {
	client *clients.RedisClient
	cfg    *cfg.QueueCfg
	logger logger.Logger
}

func NewQueueRepo(client *clients.RedisClient, cfg *cfg.QueueCfg, logger logger.Logger) *QueueRepo {
	return &QueueRepo{
		client: client,
		cfg:    cfg,
		logger: logger,
	}
}

// Enqueue сериализует запрос и добавляет его в хвост очереди.
func (q *QueueRepo) Enqueue(ctx context.Context, req *domain.RecognitionRequest) error {
	data, err := json.Marshal(req)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	if err := q.client.Client.RPush(ctx, q.cfg.RequestQueue, data).Err(); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

// Dequeue снимает следующий запрос блокирующим BLPOP с коротким таймаутом,
// чтобы воркер оставался отзывчивым к сигналу завершения между опросами.
func (q *QueueRepo) Dequeue(ctx context.Context) (*domain.RecognitionRequest, error) {
	result, err := q.client.Client.BLPop(ctx, q.cfg.PollTimeout, q.cfg.RequestQueue).Result()
	if err != nil {
		if errors.Is(err, r.Nil) {
			return nil, e.ErrQueueEmpty
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	// BLPOP возвращает пару [ключ, значение]
	if len(result) < 2 {
		return nil, e.Wrap(whereami.WhereAmI(), e.ErrMalformedRequest)
	}

	return decodeRequest([]byte(result[1]))
}

// decodeRequest разбирает сообщение очереди. Если сообщение не декодируется
// целиком (например, битый base64 в image), но request_id восстановим, он
// возвращается вместе с ошибкой, чтобы воркер смог записать ответ об ошибке
// под этим ключом.
func decodeRequest(data []byte) (*domain.RecognitionRequest, error) {
	var req domain.RecognitionRequest
	if err := json.Unmarshal(data, &req); err != nil {
		if id := recoverRequestID(data); id != "" {
			return &domain.RecognitionRequest{RequestID: id}, e.Wrap(err.Error(), e.ErrMalformedRequest)
		}
		return nil, e.Wrap(err.Error(), e.ErrMalformedRequest)
	}

	return &req, nil
}

// recoverRequestID пытается извлечь request_id из сообщения, которое не
// прошло полное декодирование. Поле image при этом игнорируется.
func recoverRequestID(data []byte) string {
	var partial struct {
		RequestID string `json:"request_id"`
	}
	if err := json.Unmarshal(data, &partial); err != nil {
		return ""
	}
	return partial.RequestID
}

// SetResponse записывает ответ под ключом request_id с ограниченным TTL.
// По истечении TTL непрочитанный ответ пропадает — это осознанная at-most-once доставка.
func (q *QueueRepo) SetResponse(ctx context.Context, resp *domain.RecognitionResponse) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	key := q.responseKey(resp.RequestID)
	if err := q.client.Client.Set(ctx, key, data, q.cfg.ResponseTTL).Err(); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

// GetResponse читает ответ по request_id. Отсутствие ключа (ещё не записан
// либо уже истёк) — e.ErrResponseNotFound.
func (q *QueueRepo) GetResponse(ctx context.Context, requestID string) (*domain.RecognitionResponse, error) {
	data, err := q.client.Client.Get(ctx, q.responseKey(requestID)).Bytes()
	if err != nil {
		if errors.Is(err, r.Nil) {
			return nil, e.ErrResponseNotFound
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	var resp domain.RecognitionResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return &resp, nil
}

// responseKey возвращает ключ хранилища ответов для запроса
func (q *QueueRepo) responseKey(requestID string) string {
	return q.cfg.ResponsePrefix + requestID
}
