package blog

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/khoahotran/devfolio/internal/application/store"
	"github.com/khoahotran/devfolio/internal/application/store/storetest"
	"github.com/khoahotran/devfolio/internal/application/usecase/media"
	"github.com/khoahotran/devfolio/internal/domain/portfolio"
	"github.com/khoahotran/devfolio/pkg/apperror"
	"github.com/khoahotran/devfolio/pkg/logger"
)

type BlogUseCaseSuite struct {
	suite.Suite
	repo  *storetest.MemoryRepository
	store *store.PortfolioStore
	clock time.Time

	create *CreateBlogPostUseCase
	update *UpdateBlogPostUseCase
	delete *DeleteBlogPostUseCase
	list   *ListBlogPostsUseCase
	get    *GetBlogPostUseCase
	rss    *RSSUseCase
}

func (s *BlogUseCaseSuite) SetupTest() {
	s.clock = time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	s.repo = storetest.NewMemoryRepository()
	s.store = store.New(s.repo,
		store.WithSeed(portfolio.Seed(s.clock)),
		store.WithLogger(logger.NewNop()),
		store.WithNotifier(store.NotifierFunc(func(error) {})),
		store.WithClock(func() time.Time {
			s.clock = s.clock.Add(time.Minute)
			return s.clock
		}),
	)
	s.store.Init(context.Background())
	<-s.store.Ready()

	log := logger.NewNop()
	images := media.NewResolveImageUseCase(nil, log)
	s.create = NewCreateBlogPostUseCase(s.store, images, log)
	s.update = NewUpdateBlogPostUseCase(s.store, images, log)
	s.delete = NewDeleteBlogPostUseCase(s.store, log)
	s.list = NewListBlogPostsUseCase(s.store)
	s.get = NewGetBlogPostUseCase(s.store, log)
	s.rss = NewRSSUseCase(s.store, s.store, "https://alex.dev/", log)
}

func (s *BlogUseCaseSuite) TearDownTest() {
	s.Require().NoError(s.store.Close())
}

func (s *BlogUseCaseSuite) publish(title string, published bool) string {
	p, err := s.create.Execute(context.Background(), CreateBlogPostInput{PostInput: PostInput{
		Title:     title,
		Content:   "# " + title + "\n\nBody with <script>alert(1)</script> text.",
		Published: &published,
		Wait:      true,
	}})
	s.Require().NoError(err)
	return p.ID
}

func (s *BlogUseCaseSuite) TestCreateDefaultsToPublished() {
	p, err := s.create.Execute(context.Background(), CreateBlogPostInput{PostInput: PostInput{
		Title: "Hello", Content: "World",
	}})
	s.Require().NoError(err)
	s.True(p.Published)
}

func (s *BlogUseCaseSuite) TestCreateValidation() {
	_, err := s.create.Execute(context.Background(), CreateBlogPostInput{PostInput: PostInput{Title: "No body"}})
	s.ErrorIs(err, apperror.ErrInvalidInput)
	_, err = s.create.Execute(context.Background(), CreateBlogPostInput{PostInput: PostInput{Content: "No title"}})
	s.ErrorIs(err, apperror.ErrInvalidInput)
}

func (s *BlogUseCaseSuite) TestPublicListHidesDrafts() {
	first := s.publish("First", true)
	s.publish("Draft", false)
	third := s.publish("Third", true)

	public, err := s.list.Execute(context.Background(), ListBlogPostsInput{})
	s.Require().NoError(err)
	s.Require().Len(public.Posts, 2)
	s.Equal(third, public.Posts[0].ID)
	s.Equal(first, public.Posts[1].ID)

	all, err := s.list.Execute(context.Background(), ListBlogPostsInput{IncludeDrafts: true})
	s.Require().NoError(err)
	s.Len(all.Posts, 3)
}

func (s *BlogUseCaseSuite) TestGetRendersSanitizedHTML() {
	id := s.publish("Rendered", true)

	out, err := s.get.Execute(context.Background(), GetBlogPostInput{PostID: id})
	s.Require().NoError(err)
	s.Contains(out.HTML, "<h1")
	s.NotContains(out.HTML, "<script>")
	s.Equal("https://picsum.photos/seed/"+id+"/1200/600", out.Cover)
}

func (s *BlogUseCaseSuite) TestGetHidesDraftFromPublic() {
	id := s.publish("Hidden", false)

	_, err := s.get.Execute(context.Background(), GetBlogPostInput{PostID: id})
	s.ErrorIs(err, apperror.ErrNotFound)

	out, err := s.get.Execute(context.Background(), GetBlogPostInput{PostID: id, IncludeDrafts: true})
	s.Require().NoError(err)
	s.Equal("Hidden", out.Post.Title)
}

func (s *BlogUseCaseSuite) TestUpdatePublishesDraft() {
	id := s.publish("Later", false)
	created, _ := s.store.BlogPost(id)
	yes := true

	out, err := s.update.Execute(context.Background(), UpdateBlogPostInput{PostID: id, PostInput: PostInput{
		Title: "Now", Content: "live", Published: &yes, Wait: true,
	}})
	s.Require().NoError(err)
	s.True(out.Published)
	s.Equal(created.CreatedAt, out.CreatedAt)

	_, err = s.update.Execute(context.Background(), UpdateBlogPostInput{PostID: "missing", PostInput: PostInput{Title: "x", Content: "y"}})
	s.ErrorIs(err, apperror.ErrNotFound)
}

func (s *BlogUseCaseSuite) TestDelete() {
	id := s.publish("Gone", true)
	s.Require().NoError(s.delete.Execute(context.Background(), id, true))
	s.Require().NoError(s.delete.Execute(context.Background(), id, true))
	s.Empty(s.store.BlogPosts())
}

func (s *BlogUseCaseSuite) TestRSSListsPublishedPosts() {
	s.publish("Visible", true)
	s.publish("Secret", false)

	feed, err := s.rss.Execute(context.Background())
	s.Require().NoError(err)
	s.Equal("Alex Tech - Blog", feed.Title)
	s.Equal("https://alex.dev/blog", feed.Link.Href)
	s.Require().Len(feed.Items, 1)
	s.Equal("Visible", feed.Items[0].Title)
	s.True(strings.HasPrefix(feed.Items[0].Link.Href, "https://alex.dev/blog/"))

	rss, err := feed.ToRss()
	s.Require().NoError(err)
	s.Contains(rss, "<title>Visible</title>")
}

func TestBlogUseCaseSuite(t *testing.T) {
	suite.Run(t, new(BlogUseCaseSuite))
}
