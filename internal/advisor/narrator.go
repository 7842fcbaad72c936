package advisor

import (
	"context"
	"errors"
	"fmt"

	"investor-livedata/internal/domain"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// LLMClient abstracts the OpenAI chat completions API for testability.
type LLMClient interface {
	CreateChatCompletion(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error)
}

// Narrator turns a computed recommendation into a short plain-language
// explanation. It never changes the verdict.
type Narrator struct {
	tracer trace.Tracer
	llm    LLMClient
	model  string
}

func NewNarrator(tracer trace.Tracer, llm LLMClient, model string) *Narrator {
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &Narrator{tracer: tracer, llm: llm, model: model}
}

// Explain asks the model to justify rec using only the supplied figures.
func (n *Narrator) Explain(ctx context.Context, rec domain.Recommendation, snap *domain.TechnicalSnapshot) (string, error) {
	ctx, span := n.tracer.Start(ctx, "advisor.explain")
	defer span.End()
	span.SetAttributes(
		attribute.String("symbol", rec.Symbol),
		attribute.String("llm.model", n.model),
	)

	if n.llm == nil {
		return "", errors.New("narrator not configured")
	}

	completion, err := n.llm.CreateChatCompletion(ctx, openai.ChatCompletionNewParams{
		Model: n.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(BuildSystemPrompt(rec.GeneratedAt)),
			openai.UserMessage(FormatRecommendationContext(rec, snap)),
		},
	})
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("narrator unavailable: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("no choices in LLM response")
	}

	reply := completion.Choices[0].Message.Content
	span.SetAttributes(attribute.Int("llm.reply_length", len(reply)))
	return reply, nil
}

// openaiClient wraps the official SDK's chat completions service.
type openaiClient struct {
	client openai.Client
}

func NewOpenAIClient(apiKey string) LLMClient {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &openaiClient{client: client}
}

func (c *openaiClient) CreateChatCompletion(
	ctx context.Context,
	params openai.ChatCompletionNewParams,
) (*openai.ChatCompletion, error) {
	return c.client.Chat.Completions.New(ctx, params)
}
