package llm

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/khoahotran/devfolio/internal/application/service"
	"github.com/khoahotran/devfolio/internal/config"
	"github.com/khoahotran/devfolio/pkg/datauri"
	"github.com/khoahotran/devfolio/pkg/logger"
)

// contentGenerator is satisfied by (*genai.Client).Models.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type geminiAdapter struct {
	models contentGenerator
	model  string
	log    logger.Logger
}

func NewGeminiAdapter(ctx context.Context, cfg config.Config, log logger.Logger) (service.TagSuggester, error) {
	if cfg.AI.GeminiAPIKey == "" {
		return nil, fmt.Errorf("gemini api key is not configured")
	}
	model := cfg.AI.GeminiModel
	if model == "" {
		model = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.AI.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	log.Info("Gemini tag suggester initialized", zap.String("model", model))
	return &geminiAdapter{models: client.Models, model: model, log: log}, nil
}

func (a *geminiAdapter) SuggestTags(ctx context.Context, imageDataURI string) ([]string, error) {
	mimeType, data, err := datauri.Parse(imageDataURI)
	if err != nil {
		return nil, err
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(tagPrompt),
			genai.NewPartFromBytes(data, mimeType),
		}, genai.RoleUser),
	}
	temperature := float32(0.2)
	resp, err := a.models.GenerateContent(ctx, a.model, contents, &genai.GenerateContentConfig{
		Temperature:      &temperature,
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type:  genai.TypeArray,
			Items: &genai.Schema{Type: genai.TypeString},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("GenAI generate failed: %w", err)
	}

	reply := resp.Text()
	tags, err := parseTagList(reply)
	if err != nil {
		a.log.Warn("unparseable tag reply", zap.String("reply", reply))
		return nil, err
	}
	return tags, nil
}
