// Package embedder реализует клиент внешнего CLIP-сервиса эмбеддингов.
package embedder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/albesa-team/artguide-backend/internal/cfg"
	"github.com/albesa-team/artguide-backend/pkg/e"
	"github.com/albesa-team/artguide-backend/pkg/jitter"
	"github.com/albesa-team/artguide-backend/pkg/logger"
)

// embedResponse — JSON-ответ CLIP-сервиса.
type embedResponse struct {
	Features []float32 `json:"features"`
}

// Client — HTTP-клиент сервиса эмбеддингов с retry-логикой и экспоненциальной задержкой.
type Client struct {
	httpClient *http.Client
	cfg        *cfg.EmbedderCfg
	logger     logger.Logger
}

func NewClient(cfg *cfg.EmbedderCfg, logger logger.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cfg:        cfg,
		logger:     logger,
	}
}

// Embed отправляет изображение сервису эмбеддингов и возвращает вектор признаков.
func (c *Client) Embed(ctx context.Context, image []byte) ([]float32, error) {
	const (
		op         = "embedder.Embed"
		baseJitter = 1 * time.Second
		maxJitter  = 30 * time.Second
	)

	for attempt := 0; attempt < c.cfg.MaxRetries; attempt++ {
		vector, err := c.embedOnce(ctx, image)
		if err == nil {
			return vector, nil
		}

		if attempt == c.cfg.MaxRetries-1 {
			return nil, e.Wrap(op, fmt.Errorf("all %d attempts failed: %w", c.cfg.MaxRetries, err))
		}

		sleepTime := jitter.ExponentialBackoff(
			baseJitter,
			maxJitter,
			attempt,
			jitter.DefaultJitter,
		)

		c.logger.Warnf("embedding failed, retrying in %v (attempt %d): %v", sleepTime, attempt+1, err)
		select {
		case <-time.After(sleepTime):
		case <-ctx.Done():
			return nil, e.Wrap(op, ctx.Err())
		}
	}

	return nil, e.Wrap(op, fmt.Errorf("unreachable"))
}

// embedOnce выполняет один запрос к сервису эмбеддингов.
func (c *Client) embedOnce(ctx context.Context, image []byte) ([]float32, error) {
	const op = "embedder.embedOnce"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(image))
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	req.Header.Set("Content-Type", "image/jpeg")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, e.Wrap(op, e.Wrap(err.Error(), e.ErrEmbeddingFailed))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, e.Wrap(op, fmt.Errorf("status %d: %w", resp.StatusCode, e.ErrEmbeddingFailed))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	var parsed embedResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, e.Wrap(op, e.Wrap(err.Error(), e.ErrEmbeddingFailed))
	}

	if len(parsed.Features) != c.cfg.VectorSize {
		return nil, e.Wrap(op, fmt.Errorf("got %d dims, want %d: %w",
			len(parsed.Features), c.cfg.VectorSize, e.ErrVectorSizeMismatch))
	}

	return parsed.Features, nil
}
