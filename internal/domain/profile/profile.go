package profile

import (
	"encoding/json"
	"errors"
	"net/mail"
	"strings"

	"github.com/khoahotran/devfolio/internal/domain/avatar"
	"github.com/khoahotran/devfolio/internal/domain/tag"
)

var (
	ErrNameRequired  = errors.New("name is required")
	ErrEmailRequired = errors.New("contact email is required")
	ErrInvalidEmail  = errors.New("contact email is not a valid address")
)

type Contact struct {
	Email    string  `json:"email"`
	Website  *string `json:"website,omitempty"`
	LinkedIn *string `json:"linkedin,omitempty"`
}

// Profile is the site owner's card. There is exactly one per deployment.
type Profile struct {
	ID      string
	Name    string
	Bio     string
	Skills  tag.Set
	Contact Contact
	Avatar  avatar.Avatar
}

func (p *Profile) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrNameRequired
	}
	if strings.TrimSpace(p.Contact.Email) == "" {
		return ErrEmailRequired
	}
	if _, err := mail.ParseAddress(p.Contact.Email); err != nil {
		return ErrInvalidEmail
	}
	return nil
}

// Normalize trims free text and de-duplicates skills in place.
func (p *Profile) Normalize() {
	p.Name = strings.TrimSpace(p.Name)
	p.Contact.Email = strings.TrimSpace(p.Contact.Email)
	p.Skills = tag.Normalize(p.Skills)
	if p.Avatar == nil {
		p.Avatar = avatar.NoImage{}
	}
}

// AddSkill appends a skill unless it is already listed.
func (p *Profile) AddSkill(skill string) {
	p.Skills = p.Skills.Add(skill)
}

func (p *Profile) RemoveSkill(skill string) {
	p.Skills = p.Skills.Remove(skill)
}

// wireProfile is the stored document shape: the avatar travels as two optional fields.
type wireProfile struct {
	ID             string            `json:"id"`
	Name           string            `json:"name"`
	Bio            string            `json:"bio"`
	Skills         []string          `json:"skills"`
	Contact        Contact           `json:"contact"`
	AvatarURL      *string           `json:"avatarUrl,omitempty"`
	AvatarSettings *avatar.Transform `json:"avatarSettings,omitempty"`
}

func (p Profile) MarshalJSON() ([]byte, error) {
	w := wireProfile{
		ID:      p.ID,
		Name:    p.Name,
		Bio:     p.Bio,
		Skills:  tag.Normalize(p.Skills),
		Contact: p.Contact,
	}
	if img, ok := p.Avatar.(avatar.Image); ok {
		src, t := img.Source, img.Transform
		w.AvatarURL = &src
		w.AvatarSettings = &t
	}
	return json.Marshal(w)
}

func (p *Profile) UnmarshalJSON(data []byte) error {
	var w wireProfile
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*p = Profile{
		ID:      w.ID,
		Name:    w.Name,
		Bio:     w.Bio,
		Skills:  tag.Normalize(w.Skills),
		Contact: w.Contact,
		Avatar:  avatar.NoImage{},
	}
	if w.AvatarURL != nil && *w.AvatarURL != "" {
		t := avatar.Identity()
		if w.AvatarSettings != nil {
			t = avatar.Clamp(*w.AvatarSettings)
		}
		p.Avatar = avatar.Image{Source: *w.AvatarURL, Transform: t}
	}
	return nil
}

// Clone returns a deep copy.
func (p Profile) Clone() Profile {
	c := p
	c.Skills = append(tag.Set{}, p.Skills...)
	if p.Contact.Website != nil {
		w := *p.Contact.Website
		c.Contact.Website = &w
	}
	if p.Contact.LinkedIn != nil {
		l := *p.Contact.LinkedIn
		c.Contact.LinkedIn = &l
	}
	if c.Avatar == nil {
		c.Avatar = avatar.NoImage{}
	}
	return c
}
