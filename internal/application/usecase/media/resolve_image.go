package media

import (
	"bytes"
	"context"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/khoahotran/devfolio/internal/application/service"
	"github.com/khoahotran/devfolio/pkg/apperror"
	"github.com/khoahotran/devfolio/pkg/datauri"
	"github.com/khoahotran/devfolio/pkg/logger"
)

// ResolveImageUseCase turns an image field from a form into the value that gets stored: links
// pass through, inline data: images are validated and, when an uploader is configured, moved to
// the media host.
type ResolveImageUseCase struct {
	uploader service.Uploader
	logger   logger.Logger
}

func NewResolveImageUseCase(u service.Uploader, log logger.Logger) *ResolveImageUseCase {
	return &ResolveImageUseCase{uploader: u, logger: log}
}

type ResolveImageInput struct {
	Field  string
	Source string
	Folder string
}

func (uc *ResolveImageUseCase) Execute(ctx context.Context, input ResolveImageInput) (string, error) {
	src := strings.TrimSpace(input.Source)
	if src == "" {
		return "", nil
	}

	if datauri.IsDataURI(src) {
		img, err := datauri.ParseImage(src)
		if err != nil {
			return "", apperror.NewValidation(input.Field, err.Error())
		}
		if uc.uploader == nil {
			return src, nil
		}
		publicID := uuid.NewString()
		hosted, err := uc.uploader.Upload(ctx, bytes.NewReader(img.Data), input.Folder, publicID)
		if err != nil {
			// keep the inline copy; the page still renders
			uc.logger.Warn("Failed to move inline image to media host", zap.String("field", input.Field), zap.Error(err))
			return src, nil
		}
		return hosted, nil
	}

	u, err := url.Parse(src)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", apperror.NewValidation(input.Field, "must be an http(s) link or an uploaded image")
	}
	return src, nil
}
