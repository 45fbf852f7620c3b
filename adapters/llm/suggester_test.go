package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/khoahotran/devfolio/internal/config"
	"github.com/khoahotran/devfolio/pkg/datauri"
	"github.com/khoahotran/devfolio/pkg/logger"
)

var tinyImage = datauri.Encode("image/png", []byte("\x89PNG\r\n\x1a\n"))

func TestParseTagList(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  []string
	}{
		{"bare array", `["React", "SaaS"]`, []string{"React", "SaaS"}},
		{"fenced", "```json\n[\"Go\", \" Go \", \"\"]\n```", []string{"Go"}},
		{"object", `{"tags": ["Dashboard"]}`, []string{"Dashboard"}},
		{"capped", `["a","b","c","d","e","f","g","h","i","j"]`, []string{"a", "b", "c", "d", "e", "f", "g", "h"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseTagList(tt.reply)
			require.NoError(t, err)
			assert.Equal(t, tt.want, []string(got))
		})
	}

	_, err := parseTagList("Sure! Here are some tags: React, Go")
	assert.Error(t, err)
}

func TestOllamaAdapterSendsImageAndParsesReply(t *testing.T) {
	var gotModel string
	var gotImage string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		var body struct {
			Model    string `json:"model"`
			Messages []struct {
				Content []struct {
					Type     string `json:"type"`
					ImageURL *struct {
						URL string `json:"url"`
					} `json:"image_url"`
				} `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		gotModel = body.Model
		for _, part := range body.Messages[0].Content {
			if part.ImageURL != nil {
				gotImage = part.ImageURL.URL
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"[\"Next.js\",\"Stripe\"]"},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	var cfg config.Config
	cfg.AI.OllamaHost = srv.URL
	cfg.AI.OllamaModel = "llava"
	suggester, err := NewOllamaAdapter(cfg, logger.NewNop())
	require.NoError(t, err)

	tags, err := suggester.SuggestTags(context.Background(), tinyImage)
	require.NoError(t, err)
	assert.Equal(t, []string{"Next.js", "Stripe"}, tags)
	assert.Equal(t, "llava", gotModel)
	assert.Equal(t, tinyImage, gotImage)
}

func TestOllamaAdapterRejectsNonDataURI(t *testing.T) {
	var cfg config.Config
	cfg.AI.OllamaHost = "http://127.0.0.1:1"
	suggester, err := NewOllamaAdapter(cfg, logger.NewNop())
	require.NoError(t, err)

	_, err = suggester.SuggestTags(context.Background(), "https://example.com/a.png")
	assert.ErrorIs(t, err, datauri.ErrNotDataURI)
}

type fakeModels struct {
	reply    string
	err      error
	contents []*genai.Content
	config   *genai.GenerateContentConfig
}

func (f *fakeModels) GenerateContent(_ context.Context, _ string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.contents, f.config = contents, config
	if f.err != nil {
		return nil, f.err
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Role: genai.RoleModel, Parts: []*genai.Part{{Text: f.reply}}},
		}},
	}, nil
}

func TestGeminiAdapterSendsInlineImageWithSchema(t *testing.T) {
	models := &fakeModels{reply: `["Firebase","Dashboard"]`}
	a := &geminiAdapter{models: models, model: "gemini-2.5-flash", log: logger.NewNop()}

	tags, err := a.SuggestTags(context.Background(), tinyImage)
	require.NoError(t, err)
	assert.Equal(t, []string{"Firebase", "Dashboard"}, tags)

	require.Len(t, models.contents, 1)
	parts := models.contents[0].Parts
	require.Len(t, parts, 2)
	require.NotNil(t, parts[1].InlineData)
	assert.Equal(t, "image/png", parts[1].InlineData.MIMEType)
	assert.Equal(t, "application/json", models.config.ResponseMIMEType)
	assert.Equal(t, genai.TypeArray, models.config.ResponseSchema.Type)
}

func TestGeminiAdapterWrapsErrors(t *testing.T) {
	boom := errors.New("quota exceeded")
	a := &geminiAdapter{models: &fakeModels{err: boom}, model: "m", log: logger.NewNop()}

	_, err := a.SuggestTags(context.Background(), tinyImage)
	assert.ErrorIs(t, err, boom)
}

func TestNewTagSuggesterDisabled(t *testing.T) {
	s, err := NewTagSuggester(context.Background(), config.Config{}, logger.NewNop())
	require.NoError(t, err)

	_, err = s.SuggestTags(context.Background(), tinyImage)
	assert.ErrorIs(t, err, ErrSuggesterDisabled)

	var cfg config.Config
	cfg.AI.Provider = "skynet"
	_, err = NewTagSuggester(context.Background(), cfg, logger.NewNop())
	assert.Error(t, err)
}
