package service

import (
	"context"
)

// TagSuggester proposes tags for a project from its image.
type TagSuggester interface {
	SuggestTags(ctx context.Context, imageDataURI string) ([]string, error)
}
