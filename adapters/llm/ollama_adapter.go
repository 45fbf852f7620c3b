package llm

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/khoahotran/devfolio/internal/application/service"
	"github.com/khoahotran/devfolio/internal/config"
	"github.com/khoahotran/devfolio/pkg/datauri"
	"github.com/khoahotran/devfolio/pkg/logger"
)

type ollamaAdapter struct {
	client *openai.Client
	model  string
	log    logger.Logger
}

// NewOllamaAdapter talks to Ollama through its OpenAI compatible endpoint; the model must be
// vision capable.
func NewOllamaAdapter(cfg config.Config, log logger.Logger) (service.TagSuggester, error) {
	if cfg.AI.OllamaHost == "" {
		return nil, fmt.Errorf("ollama Host is not configured")
	}

	config := openai.DefaultConfig("dummy-key")
	config.BaseURL = cfg.AI.OllamaHost

	client := openai.NewClientWithConfig(config)

	log.Info("Ollama tag suggester initialized", zap.String("model", cfg.AI.OllamaModel))
	return &ollamaAdapter{client: client, model: cfg.AI.OllamaModel, log: log}, nil
}

func (a *ollamaAdapter) SuggestTags(ctx context.Context, imageDataURI string) ([]string, error) {
	if _, _, err := datauri.Parse(imageDataURI); err != nil {
		return nil, err
	}

	req := openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: tagPrompt},
					{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{URL: imageDataURI}},
				},
			},
		},
		Temperature: 0.2,
		Stream:      false,
	}

	resp, err := a.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("ollama chat completion request failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("ollama returned no chat choices")
	}

	tags, err := parseTagList(resp.Choices[0].Message.Content)
	if err != nil {
		a.log.Warn("unparseable tag reply", zap.String("reply", resp.Choices[0].Message.Content))
		return nil, err
	}
	return tags, nil
}
