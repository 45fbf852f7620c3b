package http

import (
	"time"

	"github.com/khoahotran/devfolio/internal/application/usecase/auth"
	"github.com/khoahotran/devfolio/internal/application/usecase/profile"
	"github.com/khoahotran/devfolio/internal/domain/avatar"
	"github.com/khoahotran/devfolio/internal/domain/blog"
	"github.com/khoahotran/devfolio/internal/domain/post"
	profileDomain "github.com/khoahotran/devfolio/internal/domain/profile"
)

// Session DTOs
type SessionDTO struct {
	AccessToken string    `json:"access_token,omitempty"`
	OwnerID     string    `json:"owner_id"`
	Email       string    `json:"email"`
	Provider    string    `json:"provider"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func ToSessionDTO(s *auth.Session, withToken bool) SessionDTO {
	dto := SessionDTO{
		OwnerID:   s.OwnerID,
		Email:     s.Email,
		Provider:  s.Provider,
		ExpiresAt: s.ExpiresAt,
	}
	if withToken {
		dto.AccessToken = s.AccessToken
	}
	return dto
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Profile DTOs
type AvatarDTO struct {
	HasImage  bool             `json:"hasImage"`
	Source    string           `json:"source,omitempty"`
	Transform avatar.Transform `json:"transform"`
	CSS       string           `json:"css"`
}

func ToAvatarDTO(v profile.AvatarView) AvatarDTO {
	return AvatarDTO{HasImage: v.HasImage, Source: v.Source, Transform: v.Transform, CSS: v.CSS}
}

type ProfileResponse struct {
	Profile profileDomain.Profile `json:"profile"`
	Avatar  AvatarDTO             `json:"avatar"`
	Loading bool                  `json:"loading"`
}

type UpdateProfileRequest struct {
	Name    string   `json:"name"`
	Bio     string   `json:"bio"`
	Skills  []string `json:"skills"`
	Contact struct {
		Email    string  `json:"email"`
		Website  *string `json:"website"`
		LinkedIn *string `json:"linkedin"`
	} `json:"contact"`
	AvatarURL      *string           `json:"avatarUrl"`
	AvatarSettings *avatar.Transform `json:"avatarSettings"`
}

type SetAvatarRequest struct {
	Source string `json:"source"`
}

type TransformRequest struct {
	Scale *float64 `json:"scale"`
	X     *float64 `json:"x"`
	Y     *float64 `json:"y"`
}

type DragRequest struct {
	Moves []struct {
		DX float64 `json:"dx"`
		DY float64 `json:"dy"`
	} `json:"moves" binding:"required"`
	Sensitivity float64 `json:"sensitivity"`
}

type ZoomRequest struct {
	Deltas []float64 `json:"deltas" binding:"required"`
}

// Project DTOs
type PostRequest struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	ImageURL    string   `json:"imageUrl"`
	Tags        []string `json:"tags"`
}

type PostListResponse struct {
	Items   []post.Post `json:"items"`
	Loading bool        `json:"loading"`
}

type SuggestTagsRequest struct {
	ImageURL string   `json:"imageUrl" binding:"required"`
	Tags     []string `json:"tags"`
}

// Blog DTOs
type BlogPostRequest struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Excerpt   string   `json:"excerpt"`
	Content   string   `json:"content"`
	CoverURL  string   `json:"coverUrl"`
	Tags      []string `json:"tags"`
	Published *bool    `json:"published"`
}

type BlogListResponse struct {
	Items   []blog.Post `json:"items"`
	Loading bool        `json:"loading"`
}

type BlogPostDTO struct {
	Post  blog.Post `json:"post"`
	Cover string    `json:"cover"`
	HTML  string    `json:"html"`
}

// Media DTOs
type MediaDTO struct {
	URL      string `json:"url"`
	MIMEType string `json:"mimeType"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}
