package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/khoahotran/devfolio/internal/application/service"
	"github.com/khoahotran/devfolio/internal/config"
	"github.com/khoahotran/devfolio/internal/domain/tag"
	"github.com/khoahotran/devfolio/pkg/logger"
)

const (
	ProviderGemini = "gemini"
	ProviderOllama = "ollama"
	ProviderNone   = "none"

	maxSuggestedTags = 8
)

const tagPrompt = `You are tagging a software portfolio project from its screenshot or cover image.
Return between 3 and 8 short technology or topic tags (for example "React", "Dashboard", "SaaS").
Answer with a JSON array of strings and nothing else.`

var ErrSuggesterDisabled = errors.New("tag suggestion is not configured")

// NewTagSuggester picks the provider named by ai.provider.
func NewTagSuggester(ctx context.Context, cfg config.Config, log logger.Logger) (service.TagSuggester, error) {
	switch strings.ToLower(cfg.AI.Provider) {
	case ProviderGemini:
		return NewGeminiAdapter(ctx, cfg, log)
	case ProviderOllama:
		return NewOllamaAdapter(cfg, log)
	case "", ProviderNone:
		return disabledSuggester{}, nil
	default:
		return nil, fmt.Errorf("unknown ai provider %q", cfg.AI.Provider)
	}
}

type disabledSuggester struct{}

func (disabledSuggester) SuggestTags(context.Context, string) ([]string, error) {
	return nil, ErrSuggesterDisabled
}

// parseTagList accepts a bare JSON array, an object with a "tags" array, or either of those
// wrapped in a Markdown code fence.
func parseTagList(reply string) ([]string, error) {
	s := strings.TrimSpace(reply)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		if nl := strings.IndexByte(s, '\n'); nl >= 0 {
			s = s[nl+1:]
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
		s = strings.TrimSpace(s)
	}

	var list []string
	if err := json.Unmarshal([]byte(s), &list); err != nil {
		var obj struct {
			Tags []string `json:"tags"`
		}
		if err2 := json.Unmarshal([]byte(s), &obj); err2 != nil || obj.Tags == nil {
			return nil, fmt.Errorf("model reply is not a tag list: %w", err)
		}
		list = obj.Tags
	}

	tags := tag.Normalize(list)
	if len(tags) > maxSuggestedTags {
		tags = tags[:maxSuggestedTags]
	}
	return tags, nil
}
