package blog

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/khoahotran/devfolio/internal/domain/tag"
)

// CoverFallbackURL is shown when a post has no cover of its own.
const CoverFallbackURL = "https://picsum.photos/seed/%s/1200/600"

var (
	ErrTitleRequired   = errors.New("title is required")
	ErrContentRequired = errors.New("content is required")
	ErrPostNotFound    = errors.New("blog post not found")
)

type Post struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Excerpt   string    `json:"excerpt"`
	Content   string    `json:"content"`
	CoverURL  string    `json:"coverUrl"`
	Tags      tag.Set   `json:"tags"`
	CreatedAt time.Time `json:"createdAt"`
	Published bool      `json:"published"`
}

func (p *Post) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return ErrTitleRequired
	}
	if strings.TrimSpace(p.Content) == "" {
		return ErrContentRequired
	}
	return nil
}

func (p *Post) Normalize() {
	p.Title = strings.TrimSpace(p.Title)
	p.Tags = tag.Normalize(p.Tags)
	p.CreatedAt = p.CreatedAt.UTC()
}

// Cover returns the post's cover or the seeded placeholder image.
func (p Post) Cover() string {
	if strings.TrimSpace(p.CoverURL) != "" {
		return p.CoverURL
	}
	return fmt.Sprintf(CoverFallbackURL, p.ID)
}

// UnmarshalJSON defaults a missing "published" to true.
func (p *Post) UnmarshalJSON(data []byte) error {
	type alias Post
	a := alias{Published: true}
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*p = Post(a)
	p.Tags = tag.Normalize(p.Tags)
	return nil
}

func (p Post) Clone() Post {
	p.Tags = append(tag.Set{}, p.Tags...)
	return p
}

func CloneAll(posts []Post) []Post {
	out := make([]Post, len(posts))
	for i, p := range posts {
		out[i] = p.Clone()
	}
	return out
}

// Published filters out drafts, keeping order.
func Published(posts []Post) []Post {
	out := make([]Post, 0, len(posts))
	for _, p := range posts {
		if p.Published {
			out = append(out, p.Clone())
		}
	}
	return out
}
