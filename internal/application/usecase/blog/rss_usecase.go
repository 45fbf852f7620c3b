package blog

import (
	"context"
	"strings"

	"github.com/gorilla/feeds"
	"go.uber.org/zap"

	"github.com/khoahotran/devfolio/internal/domain/profile"
	"github.com/khoahotran/devfolio/pkg/logger"
)

const rssItemLimit = 20

type profileReader interface {
	Profile() profile.Profile
}

type RSSUseCase struct {
	store    BlogStore
	profiles profileReader
	siteURL  string
	logger   logger.Logger
}

func NewRSSUseCase(s BlogStore, profiles profileReader, siteURL string, log logger.Logger) *RSSUseCase {
	return &RSSUseCase{
		store:    s,
		profiles: profiles,
		siteURL:  strings.TrimSuffix(siteURL, "/"),
		logger:   log,
	}
}

func (uc *RSSUseCase) Execute(_ context.Context) (*feeds.Feed, error) {
	owner := uc.profiles.Profile()
	posts := uc.store.PublishedBlogPosts()

	feed := &feeds.Feed{
		Title:       owner.Name + " - Blog",
		Link:        &feeds.Link{Href: uc.siteURL + "/blog"},
		Description: owner.Bio,
		Author:      &feeds.Author{Name: owner.Name, Email: owner.Contact.Email},
	}
	if len(posts) > 0 {
		feed.Created = posts[0].CreatedAt
	}

	if len(posts) > rssItemLimit {
		posts = posts[:rssItemLimit]
	}
	for _, p := range posts {
		feed.Items = append(feed.Items, &feeds.Item{
			Id:          p.ID,
			Title:       p.Title,
			Link:        &feeds.Link{Href: uc.siteURL + "/blog/" + p.ID},
			Description: p.Excerpt,
			Content:     p.Content,
			Created:     p.CreatedAt,
			Enclosure:   &feeds.Enclosure{Url: p.Cover(), Type: "image/jpeg", Length: "0"},
		})
	}

	uc.logger.Info("RSS feed generated", zap.Int("item_count", len(feed.Items)))
	return feed, nil
}
