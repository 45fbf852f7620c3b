package profile

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/khoahotran/devfolio/adapters/media_storage"
	"github.com/khoahotran/devfolio/internal/application/store"
	"github.com/khoahotran/devfolio/internal/application/usecase/media"
	"github.com/khoahotran/devfolio/internal/domain/avatar"
	"github.com/khoahotran/devfolio/internal/domain/profile"
	"github.com/khoahotran/devfolio/pkg/apperror"
	"github.com/khoahotran/devfolio/pkg/logger"
)

// ProfileStore is the part of the portfolio store the profile use cases need.
type ProfileStore interface {
	IsLoading() bool
	Profile() profile.Profile
	UpdateProfile(p profile.Profile) *store.Pending
}

// AvatarView is the avatar as the editor preview renders it.
type AvatarView struct {
	HasImage  bool
	Source    string
	Transform avatar.Transform
	CSS       string
}

func viewOf(a avatar.Avatar) AvatarView {
	t := avatar.TransformOf(a)
	return AvatarView{
		HasImage:  avatar.Source(a) != "",
		Source:    avatar.Source(a),
		Transform: t,
		CSS:       t.CSS(),
	}
}

type ProfileUseCase struct {
	store  ProfileStore
	images *media.ResolveImageUseCase
	logger logger.Logger
}

func NewProfileUseCase(s ProfileStore, images *media.ResolveImageUseCase, log logger.Logger) *ProfileUseCase {
	return &ProfileUseCase{store: s, images: images, logger: log}
}

type GetProfileOutput struct {
	Profile profile.Profile
	Avatar  AvatarView
	Loading bool
}

func (uc *ProfileUseCase) ExecuteGetProfile(_ context.Context) (*GetProfileOutput, error) {
	p := uc.store.Profile()
	return &GetProfileOutput{Profile: p, Avatar: viewOf(p.Avatar), Loading: uc.store.IsLoading()}, nil
}

type UpdateProfileInput struct {
	Name     string
	Bio      string
	Skills   []string
	Email    string
	Website  *string
	LinkedIn *string
	// AvatarURL nil keeps the current avatar, "" removes it.
	AvatarURL      *string
	AvatarSettings *avatar.Transform
	Wait           bool
}

type UpdateProfileOutput struct {
	Profile profile.Profile
	Avatar  AvatarView
}

func (uc *ProfileUseCase) ExecuteUpdateProfile(ctx context.Context, input UpdateProfileInput) (*UpdateProfileOutput, error) {
	current := uc.store.Profile()

	p := profile.Profile{
		ID:     current.ID,
		Name:   input.Name,
		Bio:    input.Bio,
		Skills: input.Skills,
		Contact: profile.Contact{
			Email:    input.Email,
			Website:  blankToNil(input.Website),
			LinkedIn: blankToNil(input.LinkedIn),
		},
		Avatar: current.Avatar,
	}

	if input.AvatarURL != nil {
		src, err := uc.images.Execute(ctx, media.ResolveImageInput{
			Field:  "avatarUrl",
			Source: *input.AvatarURL,
			Folder: media_storage.FolderAvatars,
		})
		if err != nil {
			return nil, err
		}
		p.Avatar = avatar.Replace(current.Avatar, src)
	}
	if input.AvatarSettings != nil {
		if err := reframe(&p, *input.AvatarSettings); err != nil {
			return nil, err
		}
	}

	p.Normalize()
	if err := p.Validate(); err != nil {
		return nil, apperror.NewInvalidInput("validation failed", err)
	}

	if err := uc.store.UpdateProfile(p).WaitIf(ctx, input.Wait); err != nil {
		return nil, err
	}
	uc.logger.Info("Profile updated", zap.Int("skills", len(p.Skills)), zap.Bool("has_avatar", avatar.Source(p.Avatar) != ""))

	stored := uc.store.Profile()
	return &UpdateProfileOutput{Profile: stored, Avatar: viewOf(stored.Avatar)}, nil
}

func blankToNil(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
