package media

import (
	"bytes"
	"context"
	"errors"
	"io"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/khoahotran/devfolio/internal/application/service"
	"github.com/khoahotran/devfolio/pkg/apperror"
	"github.com/khoahotran/devfolio/pkg/datauri"
	"github.com/khoahotran/devfolio/pkg/logger"
)

var ErrUploadsDisabled = errors.New("media uploads are not configured")

type UploadMediaUseCase struct {
	uploader service.Uploader
	logger   logger.Logger
}

// NewUploadMediaUseCase accepts a nil uploader; uploads then fail with a validation error.
func NewUploadMediaUseCase(u service.Uploader, log logger.Logger) *UploadMediaUseCase {
	return &UploadMediaUseCase{uploader: u, logger: log}
}

type UploadMediaInput struct {
	File   io.Reader
	Folder string
}

type UploadMediaOutput struct {
	URL      string
	MIMEType string
	Width    int
	Height   int
}

func (uc *UploadMediaUseCase) Execute(ctx context.Context, input UploadMediaInput) (*UploadMediaOutput, error) {
	if uc.uploader == nil {
		return nil, apperror.NewInvalidInput("file upload", ErrUploadsDisabled)
	}
	if input.File == nil {
		return nil, apperror.NewValidation("file", "a file is required")
	}

	data, err := io.ReadAll(io.LimitReader(input.File, datauri.MaxImageBytes+1))
	if err != nil {
		return nil, apperror.NewInvalidInput("failed to read upload", err)
	}
	img, err := datauri.DecodeImage("", data)
	if err != nil {
		return nil, apperror.NewInvalidInput("file must be an image up to 2 MB", err)
	}

	publicID := uuid.NewString()
	url, err := uc.uploader.Upload(ctx, bytes.NewReader(img.Data), input.Folder, publicID)
	if err != nil {
		return nil, apperror.NewIO("failed to upload media file", err)
	}
	uc.logger.Info("Media uploaded", zap.String("folder", input.Folder), zap.String("public_id", publicID))

	return &UploadMediaOutput{URL: url, MIMEType: img.MIMEType, Width: img.Width, Height: img.Height}, nil
}
