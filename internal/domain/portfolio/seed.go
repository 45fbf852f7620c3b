package portfolio

import (
	"time"

	"github.com/khoahotran/devfolio/internal/domain/avatar"
	"github.com/khoahotran/devfolio/internal/domain/blog"
	"github.com/khoahotran/devfolio/internal/domain/post"
	"github.com/khoahotran/devfolio/internal/domain/profile"
	"github.com/khoahotran/devfolio/internal/domain/tag"
)

// Seed is the demo content shown before anything has been stored.
func Seed(now time.Time) Data {
	website := "www.alex-dev.tech"
	linkedin := "linkedin.com/in/alexdev"
	now = now.UTC()
	return Data{
		Profile: profile.Profile{
			ID:   "user-1",
			Name: "Alex Tech",
			Bio: "Senior full-stack developer building scalable products with Next.js, Firebase and " +
				"cloud architecture. Turns ideas into fast, reliable digital products.",
			Skills: tag.Set{"React/Next.js", "Node.js", "TypeScript", "Cloud Computing", "Firebase", "Mobile Development"},
			Contact: profile.Contact{
				Email:    "alex.dev@example.com",
				Website:  &website,
				LinkedIn: &linkedin,
			},
			Avatar: avatar.New("https://picsum.photos/seed/dev-avatar/200/200"),
		},
		Posts: []post.Post{
			{
				ID:          "post-1",
				Title:       "SaaS E-commerce Platform",
				Description: "A complete multi-tenant commerce solution with payments and a real-time admin dashboard.",
				ImageURL:    "https://picsum.photos/seed/web-project-1/800/600",
				Tags:        tag.Set{"Next.js", "Stripe", "Tailwind", "PostgreSQL"},
				CreatedAt:   now,
			},
			{
				ID:          "post-2",
				Title:       "Personal Finance App",
				Description: "Cross-platform mobile app focused on UX, with rich charts and offline data sync.",
				ImageURL:    "https://picsum.photos/seed/app-project-1/800/600",
				Tags:        tag.Set{"React Native", "Firebase", "Recharts", "TypeScript"},
				CreatedAt:   now.Add(-time.Hour),
			},
		},
		BlogPosts: []blog.Post{},
	}
}
