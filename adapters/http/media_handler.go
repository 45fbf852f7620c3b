package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/khoahotran/devfolio/adapters/media_storage"
	mediaUC "github.com/khoahotran/devfolio/internal/application/usecase/media"
	"github.com/khoahotran/devfolio/pkg/apperror"
)

var mediaFolders = map[string]string{
	"projects": media_storage.FolderProjects,
	"blog":     media_storage.FolderBlog,
	"avatars":  media_storage.FolderAvatars,
}

type MediaHandler struct {
	uploadMediaUC *mediaUC.UploadMediaUseCase
}

func NewMediaHandler(uploadUC *mediaUC.UploadMediaUseCase) *MediaHandler {
	return &MediaHandler{uploadMediaUC: uploadUC}
}

// UploadMedia stores a multipart "file" on the media host. "folder" picks projects (default),
// blog or avatars.
func (h *MediaHandler) UploadMedia(c *gin.Context) {
	folder, ok := mediaFolders[c.DefaultPostForm("folder", "projects")]
	if !ok {
		c.Error(apperror.NewValidation("folder", "must be one of projects, blog, avatars"))
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.Error(apperror.NewInvalidInput("'file' is required", err))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.Error(apperror.NewInternal("failed to open file", err))
		return
	}
	defer file.Close()

	output, err := h.uploadMediaUC.Execute(c.Request.Context(), mediaUC.UploadMediaInput{File: file, Folder: folder})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, MediaDTO{
		URL:      output.URL,
		MIMEType: output.MIMEType,
		Width:    output.Width,
		Height:   output.Height,
	})
}
