package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	profileUC "github.com/khoahotran/devfolio/internal/application/usecase/profile"
	"github.com/khoahotran/devfolio/pkg/apperror"
)

type ProfileHandler struct {
	profileUseCase *profileUC.ProfileUseCase
	avatarUseCase  *profileUC.AvatarUseCase
}

func NewProfileHandler(profileUseCase *profileUC.ProfileUseCase, avatarUseCase *profileUC.AvatarUseCase) *ProfileHandler {
	return &ProfileHandler{
		profileUseCase: profileUseCase,
		avatarUseCase:  avatarUseCase,
	}
}

func (h *ProfileHandler) GetProfile(c *gin.Context) {
	output, err := h.profileUseCase.ExecuteGetProfile(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ProfileResponse{
		Profile: output.Profile,
		Avatar:  ToAvatarDTO(output.Avatar),
		Loading: output.Loading,
	})
}

func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid request body", err))
		return
	}

	output, err := h.profileUseCase.ExecuteUpdateProfile(c.Request.Context(), profileUC.UpdateProfileInput{
		Name:           req.Name,
		Bio:            req.Bio,
		Skills:         req.Skills,
		Email:          req.Contact.Email,
		Website:        req.Contact.Website,
		LinkedIn:       req.Contact.LinkedIn,
		AvatarURL:      req.AvatarURL,
		AvatarSettings: req.AvatarSettings,
		Wait:           waitRequested(c),
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ProfileResponse{Profile: output.Profile, Avatar: ToAvatarDTO(output.Avatar)})
}

// SetAvatar accepts either a multipart "file" or a JSON {"source": ...} with a link or data: URI.
func (h *ProfileHandler) SetAvatar(c *gin.Context) {
	input := profileUC.SetAvatarImageInput{Wait: waitRequested(c)}

	if fileHeader, err := c.FormFile("file"); err == nil {
		file, err := fileHeader.Open()
		if err != nil {
			c.Error(apperror.NewInternal("failed to open file", err))
			return
		}
		defer file.Close()
		input.File = file
	} else {
		var req SetAvatarRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.Error(apperror.NewInvalidInput("'file' or 'source' is required", err))
			return
		}
		input.Source = req.Source
	}

	view, err := h.avatarUseCase.ExecuteSetImage(c.Request.Context(), input)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ToAvatarDTO(*view))
}

func (h *ProfileHandler) UpdateAvatarTransform(c *gin.Context) {
	var req TransformRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid request body", err))
		return
	}
	view, err := h.avatarUseCase.ExecuteUpdateTransform(c.Request.Context(), profileUC.UpdateTransformInput{
		Scale: req.Scale,
		X:     req.X,
		Y:     req.Y,
		Wait:  waitRequested(c),
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ToAvatarDTO(*view))
}

func (h *ProfileHandler) DragAvatar(c *gin.Context) {
	var req DragRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid request body", err))
		return
	}
	moves := make([]profileUC.Move, len(req.Moves))
	for i, m := range req.Moves {
		moves[i] = profileUC.Move{DX: m.DX, DY: m.DY}
	}
	view, err := h.avatarUseCase.ExecuteDrag(c.Request.Context(), profileUC.DragInput{
		Moves:       moves,
		Sensitivity: req.Sensitivity,
		Wait:        waitRequested(c),
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ToAvatarDTO(*view))
}

func (h *ProfileHandler) ZoomAvatar(c *gin.Context) {
	var req ZoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid request body", err))
		return
	}
	view, err := h.avatarUseCase.ExecuteZoom(c.Request.Context(), profileUC.ZoomInput{
		WheelDeltas: req.Deltas,
		Wait:        waitRequested(c),
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ToAvatarDTO(*view))
}

func (h *ProfileHandler) RemoveAvatar(c *gin.Context) {
	view, err := h.avatarUseCase.ExecuteRemove(c.Request.Context(), waitRequested(c))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ToAvatarDTO(*view))
}
