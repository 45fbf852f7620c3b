package profile

import (
	"context"
	"errors"
	"io"

	"go.uber.org/zap"

	"github.com/khoahotran/devfolio/adapters/media_storage"
	"github.com/khoahotran/devfolio/internal/application/usecase/media"
	"github.com/khoahotran/devfolio/internal/domain/avatar"
	"github.com/khoahotran/devfolio/internal/domain/profile"
	"github.com/khoahotran/devfolio/pkg/apperror"
	"github.com/khoahotran/devfolio/pkg/datauri"
	"github.com/khoahotran/devfolio/pkg/logger"
)

// AvatarUseCase drives the avatar editor: picking an image and framing it with the sliders,
// pointer drags and the mouse wheel. Every call persists the resulting profile.
type AvatarUseCase struct {
	store  ProfileStore
	images *media.ResolveImageUseCase
	logger logger.Logger
}

func NewAvatarUseCase(s ProfileStore, images *media.ResolveImageUseCase, log logger.Logger) *AvatarUseCase {
	return &AvatarUseCase{store: s, images: images, logger: log}
}

type SetAvatarImageInput struct {
	// Source is a link or a data: URI. File takes precedence when set.
	Source string
	File   io.Reader
	Wait   bool
}

// ExecuteSetImage swaps the picture and resets the framing.
func (uc *AvatarUseCase) ExecuteSetImage(ctx context.Context, input SetAvatarImageInput) (*AvatarView, error) {
	src := input.Source
	if input.File != nil {
		data, err := io.ReadAll(io.LimitReader(input.File, datauri.MaxImageBytes+1))
		if err != nil {
			return nil, apperror.NewInvalidInput("failed to read avatar upload", err)
		}
		img, err := datauri.DecodeImage("", data)
		if err != nil {
			return nil, apperror.NewValidation("avatar", err.Error())
		}
		src = datauri.Encode(img.MIMEType, img.Data)
	}
	if src == "" {
		return nil, apperror.NewValidation("avatar", "an image is required")
	}

	resolved, err := uc.images.Execute(ctx, media.ResolveImageInput{
		Field:  "avatar",
		Source: src,
		Folder: media_storage.FolderAvatars,
	})
	if err != nil {
		return nil, err
	}

	return uc.save(ctx, input.Wait, func(p *profile.Profile) error {
		p.Avatar = avatar.New(resolved)
		return nil
	})
}

type UpdateTransformInput struct {
	Scale *float64
	X     *float64
	Y     *float64
	Wait  bool
}

// ExecuteUpdateTransform applies slider values. Omitted sliders keep their position.
func (uc *AvatarUseCase) ExecuteUpdateTransform(ctx context.Context, input UpdateTransformInput) (*AvatarView, error) {
	return uc.save(ctx, input.Wait, func(p *profile.Profile) error {
		t := avatar.TransformOf(p.Avatar)
		if input.Scale != nil {
			t = t.SetScale(*input.Scale)
		}
		if input.X != nil || input.Y != nil {
			x, y := t.X, t.Y
			if input.X != nil {
				x = *input.X
			}
			if input.Y != nil {
				y = *input.Y
			}
			t = t.SetOffset(x, y)
		}
		return reframe(p, t)
	})
}

type Move struct {
	DX float64
	DY float64
}

type DragInput struct {
	Moves []Move
	// Sensitivity converts pixels to percent; zero means avatar.DefaultSensitivity.
	Sensitivity float64
	Wait        bool
}

// ExecuteDrag replays one pointer gesture.
func (uc *AvatarUseCase) ExecuteDrag(ctx context.Context, input DragInput) (*AvatarView, error) {
	return uc.save(ctx, input.Wait, func(p *profile.Profile) error {
		d, err := avatar.BeginDrag(p.Avatar, input.Sensitivity)
		if err != nil {
			return apperror.NewValidation("avatar", err.Error())
		}
		for _, m := range input.Moves {
			d.Move(m.DX, m.DY)
		}
		p.Avatar = d.End()
		return nil
	})
}

type ZoomInput struct {
	WheelDeltas []float64
	Wait        bool
}

func (uc *AvatarUseCase) ExecuteZoom(ctx context.Context, input ZoomInput) (*AvatarView, error) {
	return uc.save(ctx, input.Wait, func(p *profile.Profile) error {
		t := avatar.TransformOf(p.Avatar)
		for _, d := range input.WheelDeltas {
			t = t.Zoom(d)
		}
		return reframe(p, t)
	})
}

func (uc *AvatarUseCase) ExecuteRemove(ctx context.Context, wait bool) (*AvatarView, error) {
	return uc.save(ctx, wait, func(p *profile.Profile) error {
		p.Avatar = avatar.NoImage{}
		return nil
	})
}

// reframe applies t to the profile's avatar. Framing without an image is a validation error
// wherever settings come from.
func reframe(p *profile.Profile, t avatar.Transform) error {
	framed, err := avatar.WithTransform(p.Avatar, t)
	if errors.Is(err, avatar.ErrNoImage) {
		return apperror.NewValidation("avatarSettings", "upload an image before adjusting it")
	}
	if err != nil {
		return apperror.NewInvalidInput("failed to frame avatar", err)
	}
	p.Avatar = framed
	return nil
}

func (uc *AvatarUseCase) save(ctx context.Context, wait bool, edit func(p *profile.Profile) error) (*AvatarView, error) {
	p := uc.store.Profile()
	if err := edit(&p); err != nil {
		return nil, err
	}
	if err := uc.store.UpdateProfile(p).WaitIf(ctx, wait); err != nil {
		return nil, err
	}
	view := viewOf(p.Avatar)
	uc.logger.Debug("Avatar updated", zap.String("transform", view.CSS))
	return &view, nil
}
