package post

import (
	"errors"
	"strings"
	"time"

	"github.com/khoahotran/devfolio/internal/domain/tag"
)

// Post is a portfolio project card.
type Post struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ImageURL    string    `json:"imageUrl"`
	Tags        tag.Set   `json:"tags"`
	CreatedAt   time.Time `json:"createdAt"`
}

var (
	ErrTitleRequired = errors.New("title is required")
	ErrImageRequired = errors.New("image is required")
	ErrPostNotFound  = errors.New("post not found")
)

func (p *Post) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return ErrTitleRequired
	}
	if strings.TrimSpace(p.ImageURL) == "" {
		return ErrImageRequired
	}
	return nil
}

func (p *Post) Normalize() {
	p.Title = strings.TrimSpace(p.Title)
	p.Tags = tag.Normalize(p.Tags)
	p.CreatedAt = p.CreatedAt.UTC()
}

// MergeSuggestedTags appends suggested labels after the existing ones.
func (p *Post) MergeSuggestedTags(suggested []string) {
	p.Tags = tag.Merge(p.Tags, suggested)
}

func (p Post) Clone() Post {
	p.Tags = append(tag.Set{}, p.Tags...)
	return p
}

// CloneAll copies a list, including each post's tags.
func CloneAll(posts []Post) []Post {
	out := make([]Post, len(posts))
	for i, p := range posts {
		out[i] = p.Clone()
	}
	return out
}
