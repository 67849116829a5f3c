// Package llm реализует генератор описаний произведений поверх LLM API
// с детерминированным шаблонным fallback.
package llm

import (
	"context"

	"github.com/albesa-team/artguide-backend/internal/cfg"
	"github.com/albesa-team/artguide-backend/internal/usecase"
	"github.com/albesa-team/artguide-backend/pkg/e"
	"github.com/albesa-team/artguide-backend/pkg/logger"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
)

const systemPrompt = `You are a knowledgeable and engaging museum tour guide.
Your role is to provide accessible, conversational explanations of artworks to visitors
with varying levels of art knowledge. Keep descriptions between 150-250 words.

Include:
1. Brief artist background and their significance
2. Historical/cultural context of the period
3. Notable features or techniques in this specific work
4. Why this artwork matters in art history

Use a warm, enthusiastic tone that makes art accessible to everyone.`

// Generator вызывает LLM одним запросом, без повторов: при любом сбое
// молча отдаётся шаблон.
type Generator struct {
	client  openai.Client
	cfg     *cfg.LLMCfg
	logger  logger.Logger
	enabled bool
}

// NewGenerator создаёт генератор. Без API-ключа генерация отключена:
// все запросы сразу обслуживаются шаблоном.
func NewGenerator(cfg *cfg.LLMCfg, logger logger.Logger) *Generator {
	g := &Generator{
		cfg:    cfg,
		logger: logger,
	}

	if cfg.ApiKey != "" {
		g.client = openai.NewClient(option.WithAPIKey(cfg.ApiKey))
		g.enabled = true
	} else {
		logger.Infof("LLM API key not set, descriptions will use the fallback template")
	}

	return g
}

// Describe возвращает описание произведения. Одна попытка LLM, без backoff;
// любой сбой (сеть, квота, пустой ответ) деградирует до шаблона.
func (g *Generator) Describe(ctx context.Context, req *usecase.DescribeReq) *usecase.DescribeRes {
	const op = "llm.Describe"

	if !g.enabled {
		return usecase.NewDescribeRes(FallbackDescription(req.Artist, req.Title, req.Period), false)
	}

	ctx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	completion, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: shared.ChatModel(g.cfg.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userQuery(req)),
		},
	})
	if err != nil {
		g.logger.Warnf("%s: falling back to template: %v", op, e.Wrap(err.Error(), e.ErrGenerationFailed))
		return usecase.NewDescribeRes(FallbackDescription(req.Artist, req.Title, req.Period), false)
	}

	if len(completion.Choices) == 0 || completion.Choices[0].Message.Content == "" {
		g.logger.Warnf("%s: empty completion, falling back to template", op)
		return usecase.NewDescribeRes(FallbackDescription(req.Artist, req.Title, req.Period), false)
	}

	return usecase.NewDescribeRes(completion.Choices[0].Message.Content, true)
}

func userQuery(req *usecase.DescribeReq) string {
	return "Tell me about '" + req.Title + "' by " + req.Artist + " from the " + req.Period + " period."
}
