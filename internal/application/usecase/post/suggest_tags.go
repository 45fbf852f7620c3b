package post

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/khoahotran/devfolio/internal/application/service"
	"github.com/khoahotran/devfolio/internal/domain/tag"
	"github.com/khoahotran/devfolio/pkg/apperror"
	"github.com/khoahotran/devfolio/pkg/datauri"
	"github.com/khoahotran/devfolio/pkg/logger"
)

type SuggestTagsUseCase struct {
	suggester service.TagSuggester
	logger    logger.Logger
}

func NewSuggestTagsUseCase(s service.TagSuggester, log logger.Logger) *SuggestTagsUseCase {
	return &SuggestTagsUseCase{suggester: s, logger: log}
}

type SuggestTagsInput struct {
	ImageURL string
	// Existing are the tags already on the form; they stay first in the result.
	Existing []string
}

type SuggestTagsOutput struct {
	Suggested []string
	Tags      tag.Set
}

// Execute only works on freshly picked images, which the form holds as data: URIs.
func (uc *SuggestTagsUseCase) Execute(ctx context.Context, input SuggestTagsInput) (*SuggestTagsOutput, error) {
	img := strings.TrimSpace(input.ImageURL)
	if !datauri.IsDataURI(img) {
		return nil, apperror.NewValidation("imageUrl", "tag suggestions need an uploaded image")
	}
	if _, err := datauri.ParseImage(img); err != nil {
		return nil, apperror.NewValidation("imageUrl", err.Error())
	}

	suggested, err := uc.suggester.SuggestTags(ctx, img)
	if err != nil {
		uc.logger.Warn("Tag suggestion failed", zap.Error(err))
		return nil, apperror.NewInference("could not suggest tags for the image", err)
	}

	return &SuggestTagsOutput{
		Suggested: suggested,
		Tags:      tag.Merge(input.Existing, suggested),
	}, nil
}
