package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/khoahotran/devfolio/internal/domain/avatar"
	"github.com/khoahotran/devfolio/internal/domain/blog"
	"github.com/khoahotran/devfolio/internal/domain/portfolio"
	"github.com/khoahotran/devfolio/internal/domain/post"
	"github.com/khoahotran/devfolio/internal/domain/profile"
	"github.com/khoahotran/devfolio/internal/domain/tag"
	"github.com/khoahotran/devfolio/pkg/apperror"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeRepo struct {
	mu       sync.Mutex
	applied  []portfolio.Mutation
	applyErr error

	loadData portfolio.Data
	found    bool
	loadErr  error
	// loadFailures is how many Load calls fail with loadErr before the stored data is returned.
	loadFailures int
	loadGate     chan struct{}

	applyGate  chan struct{}
	subFn      func(portfolio.Snapshot)
	subscribed chan struct{}
	closed     bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{subscribed: make(chan struct{})}
}

func (f *fakeRepo) Load(ctx context.Context) (portfolio.Data, bool, error) {
	if f.loadGate != nil {
		select {
		case <-f.loadGate:
		case <-ctx.Done():
			return portfolio.Data{}, false, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadFailures > 0 {
		f.loadFailures--
		return portfolio.Data{}, false, f.loadErr
	}
	return f.loadData.Clone(), f.found, nil
}

func (f *fakeRepo) Apply(_ context.Context, m portfolio.Mutation) (string, error) {
	if f.applyGate != nil {
		<-f.applyGate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.applied = append(f.applied, m)
	return m.ID, f.applyErr
}

func (f *fakeRepo) Subscribe(ctx context.Context, fn func(portfolio.Snapshot)) error {
	f.mu.Lock()
	f.subFn = fn
	f.mu.Unlock()
	close(f.subscribed)
	<-ctx.Done()
	return nil
}

func (f *fakeRepo) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeRepo) mutations() []portfolio.Mutation {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]portfolio.Mutation(nil), f.applied...)
}

func (f *fakeRepo) push(snap portfolio.Snapshot) {
	f.mu.Lock()
	fn := f.subFn
	f.mu.Unlock()
	fn(snap)
}

// tickingClock returns a strictly increasing time on every call.
func tickingClock() func() time.Time {
	var mu sync.Mutex
	t := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Minute)
		return t
	}
}

func newStore(t *testing.T, repo *fakeRepo, opts ...Option) *PortfolioStore {
	t.Helper()
	s := New(repo, append([]Option{WithClock(tickingClock())}, opts...)...)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func initAndWait(t *testing.T, s *PortfolioStore) {
	t.Helper()
	s.Init(context.Background())
	select {
	case <-s.Ready():
	case <-time.After(2 * time.Second):
		t.Fatal("store never finished loading")
	}
}

func waitAll(t *testing.T, ps ...*Pending) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	for _, p := range ps {
		require.NoError(t, p.Wait(ctx))
	}
}

func project(title string) post.Post {
	return post.Post{Title: title, ImageURL: "https://picsum.photos/seed/" + title + "/800/600"}
}

func TestAddPostAssignsIdsAndOrdersNewestFirst(t *testing.T) {
	repo := newFakeRepo()
	s := newStore(t, repo)
	initAndWait(t, s)

	var pendings []*Pending
	for i := 0; i < 5; i++ {
		_, p := s.AddPost(project(fmt.Sprintf("p%d", i)))
		pendings = append(pendings, p)
	}
	waitAll(t, pendings...)

	posts := s.Posts()
	require.Len(t, posts, 5)
	ids := map[string]bool{}
	for i, p := range posts {
		assert.NotEmpty(t, p.ID)
		assert.False(t, ids[p.ID], "duplicate id %s", p.ID)
		ids[p.ID] = true
		assert.Equal(t, fmt.Sprintf("p%d", 4-i), p.Title)
		if i > 0 {
			assert.False(t, p.CreatedAt.After(posts[i-1].CreatedAt))
		}
	}

	// writes reach the backend in mutation order
	applied := repo.mutations()
	require.Len(t, applied, 5)
	for i, m := range applied {
		assert.Equal(t, portfolio.OpAdd, m.Op)
		assert.Equal(t, fmt.Sprintf("p%d", i), m.Post.Title)
		assert.Len(t, m.Snapshot.Posts, i+1)
	}
}

func TestAddPostKeepsSuppliedID(t *testing.T) {
	s := newStore(t, newFakeRepo())
	initAndWait(t, s)

	p := project("kept")
	p.ID = "post-42"
	stored, pending := s.AddPost(p)
	waitAll(t, pending)

	assert.Equal(t, "post-42", stored.ID)
	assert.Equal(t, "post-42", pending.ID())
}

func TestAddRejectsDuplicateID(t *testing.T) {
	repo := newFakeRepo()
	s := newStore(t, repo)
	initAndWait(t, s)

	p := project("first")
	p.ID = "dup"
	_, pending := s.AddPost(p)
	waitAll(t, pending)

	again := project("second")
	again.ID = "dup"
	_, pending = s.AddPost(again)
	assert.True(t, pending.Rejected())
	assert.ErrorIs(t, pending.WaitIf(context.Background(), false), apperror.ErrConflict)

	b := blog.Post{ID: "dup-blog", Title: "t", Content: "c"}
	_, bp := s.AddBlogPost(b)
	waitAll(t, bp)
	_, bp = s.AddBlogPost(b)
	assert.ErrorIs(t, bp.Err(), apperror.ErrConflict)

	matches := 0
	for _, got := range s.Posts() {
		if got.ID == "dup" {
			matches++
			assert.Equal(t, "first", got.Title)
		}
	}
	assert.Equal(t, 1, matches)
	assert.Len(t, s.BlogPosts(), 1)
	assert.Len(t, repo.mutations(), 2)
}

func TestUpdateProfileIsIdempotent(t *testing.T) {
	s := newStore(t, newFakeRepo())
	initAndWait(t, s)

	p := profile.Profile{
		ID:      "user-1",
		Name:    "Alex Tech",
		Skills:  tag.Set{"Go"},
		Contact: profile.Contact{Email: "alex@example.com"},
		Avatar:  avatar.New("https://example.com/a.png"),
	}
	waitAll(t, s.UpdateProfile(p))
	once := s.Snapshot()
	waitAll(t, s.UpdateProfile(p))

	if diff := cmp.Diff(once, s.Snapshot()); diff != "" {
		t.Errorf("second update changed state (-once +twice):\n%s", diff)
	}
}

func TestUpdateProfileKeepsIDWhenEmpty(t *testing.T) {
	s := newStore(t, newFakeRepo(), WithSeed(portfolio.Seed(time.Now())))
	initAndWait(t, s)

	waitAll(t, s.UpdateProfile(profile.Profile{Name: "New", Contact: profile.Contact{Email: "n@example.com"}}))

	assert.Equal(t, "user-1", s.Profile().ID)
	assert.Equal(t, avatar.NoImage{}, s.Profile().Avatar)
}

func TestDeleteMissingPostIsNoop(t *testing.T) {
	repo := newFakeRepo()
	s := newStore(t, repo, WithSeed(portfolio.Seed(time.Now())))
	initAndWait(t, s)
	before := s.Snapshot()

	pending := s.DeletePost("does-not-exist")
	waitAll(t, pending)

	assert.Equal(t, before, s.Snapshot())
	assert.Empty(t, repo.mutations())
}

func TestDeletePost(t *testing.T) {
	repo := newFakeRepo()
	s := newStore(t, repo, WithSeed(portfolio.Seed(time.Now())))
	initAndWait(t, s)

	waitAll(t, s.DeletePost("post-1"))

	_, ok := s.Post("post-1")
	assert.False(t, ok)
	require.Len(t, repo.mutations(), 1)
	assert.Equal(t, portfolio.OpDelete, repo.mutations()[0].Op)
}

func TestUpdateUnknownPostIsNoop(t *testing.T) {
	repo := newFakeRepo()
	s := newStore(t, repo)
	initAndWait(t, s)

	p := project("ghost")
	p.ID = "nope"
	ok, pending := s.UpdatePost(p)

	assert.False(t, ok)
	waitAll(t, pending)
	assert.Empty(t, s.Posts())
	assert.Empty(t, repo.mutations())
}

func TestUpdatePostPreservesCreatedAt(t *testing.T) {
	s := newStore(t, newFakeRepo())
	initAndWait(t, s)

	stored, pending := s.AddPost(project("first"))
	waitAll(t, pending)

	edited := stored
	edited.Title = "renamed"
	edited.CreatedAt = time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC)
	ok, pending := s.UpdatePost(edited)
	require.True(t, ok)
	waitAll(t, pending)

	got, found := s.Post(stored.ID)
	require.True(t, found)
	assert.Equal(t, "renamed", got.Title)
	assert.True(t, got.CreatedAt.Equal(stored.CreatedAt))
}

func TestMutationsAreVisibleBeforeWriteCompletes(t *testing.T) {
	repo := newFakeRepo()
	repo.applyGate = make(chan struct{})
	s := newStore(t, repo)
	initAndWait(t, s)

	_, pending := s.AddBlogPost(blog.Post{Title: "Hello", Content: "body", Published: true})

	assert.Len(t, s.BlogPosts(), 1)
	select {
	case <-pending.Done():
		t.Fatal("write finished before the backend answered")
	default:
	}
	assert.NoError(t, pending.Err())

	close(repo.applyGate)
	waitAll(t, pending)
}

func TestFailedWriteIsReportedAndNotRolledBack(t *testing.T) {
	repo := newFakeRepo()
	repo.applyErr = errors.New("connection refused")
	var (
		mu       sync.Mutex
		notified []error
	)
	s := newStore(t, repo, WithNotifier(NotifierFunc(func(err error) {
		mu.Lock()
		defer mu.Unlock()
		notified = append(notified, err)
	})))
	initAndWait(t, s)

	stored, pending := s.AddPost(project("offline"))
	err := pending.Wait(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrIO)
	_, ok := s.Post(stored.ID)
	assert.True(t, ok, "optimistic add must survive a failed write")

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, notified, 1)
	assert.ErrorIs(t, notified[0], apperror.ErrIO)
}

func TestMutationsDuringLoadAreReplayedOnLoadedData(t *testing.T) {
	repo := newFakeRepo()
	repo.loadGate = make(chan struct{})
	repo.found = true
	repo.loadData = portfolio.Data{
		Profile: profile.Profile{ID: "user-1", Name: "Stored", Contact: profile.Contact{Email: "s@example.com"}},
		Posts: []post.Post{{
			ID: "stored-1", Title: "stored", ImageURL: "https://x",
			CreatedAt: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		}},
	}
	s := newStore(t, repo, WithSeed(portfolio.Seed(time.Now())))

	s.Init(context.Background())
	assert.True(t, s.IsLoading())

	stored, pending := s.AddPost(project("while-loading"))
	assert.Len(t, s.Posts(), 3, "seed posts plus the new one")

	close(repo.loadGate)
	waitAll(t, pending)
	<-s.Ready()

	assert.False(t, s.IsLoading())
	posts := s.Posts()
	require.Len(t, posts, 2)
	assert.Equal(t, stored.ID, posts[0].ID)
	assert.Equal(t, "stored-1", posts[1].ID)
	assert.Equal(t, "Stored", s.Profile().Name)

	// the queued write carries the rebased snapshot, not the seed
	applied := repo.mutations()
	require.Len(t, applied, 1)
	require.Len(t, applied[0].Snapshot.Posts, 2)
	assert.Equal(t, "stored-1", applied[0].Snapshot.Posts[1].ID)
}

func TestLoadFailureKeepsLoadingAndRetries(t *testing.T) {
	repo := newFakeRepo()
	repo.loadErr = errors.New("dial tcp: connection refused")
	repo.loadFailures = 2
	repo.found = true
	repo.loadData = portfolio.Data{Posts: []post.Post{
		{ID: "stored-1", Title: "one", CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "stored-2", Title: "two", CreatedAt: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
		{ID: "stored-3", Title: "three", CreatedAt: time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)},
	}}

	failures := make(chan error, 8)
	s := newStore(t, repo,
		WithSeed(portfolio.Seed(time.Now())),
		WithLoadRetry(time.Millisecond, 5*time.Millisecond),
		WithNotifier(NotifierFunc(func(err error) { failures <- err })))
	s.Init(context.Background())

	first := <-failures
	assert.ErrorIs(t, first, apperror.ErrIO)
	assert.True(t, s.IsLoading())
	assert.Equal(t, "Alex Tech", s.Profile().Name)

	stored, pending := s.AddPost(project("after-failure"))
	waitAll(t, pending)

	assert.False(t, s.IsLoading())
	assert.Len(t, failures, 1)

	applied := repo.mutations()
	require.Len(t, applied, 1)
	ids := make([]string, 0, len(applied[0].Snapshot.Posts))
	for _, p := range applied[0].Snapshot.Posts {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []string{stored.ID, "stored-3", "stored-2", "stored-1"}, ids)
	assert.Len(t, s.Posts(), 4)
}

func TestCloseDuringFailingLoadDropsQueuedWrites(t *testing.T) {
	repo := newFakeRepo()
	repo.loadErr = errors.New("dial tcp: connection refused")
	repo.loadFailures = 1 << 30

	failures := make(chan error, 1)
	s := New(repo,
		WithLoadRetry(time.Hour, time.Hour),
		WithNotifier(NotifierFunc(func(err error) {
			select {
			case failures <- err:
			default:
			}
		})))
	s.Init(context.Background())
	<-failures

	_, pending := s.AddPost(project("never-persisted"))
	require.NoError(t, s.Close())

	assert.ErrorIs(t, pending.Err(), ErrNotLoaded)
	assert.Empty(t, repo.mutations())
}

func TestLoadBackoffDoublesUpToCap(t *testing.T) {
	s := New(newFakeRepo(), WithLoadRetry(100*time.Millisecond, time.Second))
	defer func() { _ = s.Close() }()

	assert.Equal(t, 100*time.Millisecond, s.loadBackoff(1))
	assert.Equal(t, 200*time.Millisecond, s.loadBackoff(2))
	assert.Equal(t, 800*time.Millisecond, s.loadBackoff(4))
	assert.Equal(t, time.Second, s.loadBackoff(5))
	assert.Equal(t, time.Second, s.loadBackoff(50))
}

func TestEmptyBackendServesSeed(t *testing.T) {
	s := newStore(t, newFakeRepo(), WithSeed(portfolio.Seed(time.Now())))
	initAndWait(t, s)

	assert.Len(t, s.Posts(), 2)
	assert.Empty(t, s.BlogPosts())
}

func TestSnapshotsAreSortedAndSkippedWhileWritesInFlight(t *testing.T) {
	repo := newFakeRepo()
	s := newStore(t, repo)
	initAndWait(t, s)
	<-repo.subscribed

	old := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	repo.push(portfolio.Snapshot{
		Collection: portfolio.CollectionProjects,
		Posts: []post.Post{
			{ID: "a", CreatedAt: old},
			{ID: "b", CreatedAt: old.Add(48 * time.Hour)},
			{ID: "c", CreatedAt: old.Add(24 * time.Hour)},
		},
	})
	var order []string
	for _, p := range s.Posts() {
		order = append(order, p.ID)
	}
	assert.Equal(t, []string{"b", "c", "a"}, order)

	repo.applyGate = make(chan struct{})
	stored, pending := s.AddPost(project("local"))
	repo.push(portfolio.Snapshot{Collection: portfolio.CollectionProjects, Posts: []post.Post{{ID: "a", CreatedAt: old}}})
	_, ok := s.Post(stored.ID)
	assert.True(t, ok, "stale snapshot must not hide a pending write")

	close(repo.applyGate)
	waitAll(t, pending)

	repo.push(portfolio.Snapshot{Collection: portfolio.CollectionProjects, Posts: []post.Post{{ID: "a", CreatedAt: old}}})
	assert.Len(t, s.Posts(), 1)
}

func TestPublishedBlogPostsHidesDrafts(t *testing.T) {
	s := newStore(t, newFakeRepo())
	initAndWait(t, s)

	_, p1 := s.AddBlogPost(blog.Post{Title: "live", Content: "x", Published: true})
	_, p2 := s.AddBlogPost(blog.Post{Title: "draft", Content: "x"})
	waitAll(t, p1, p2)

	assert.Len(t, s.BlogPosts(), 2)
	published := s.PublishedBlogPosts()
	require.Len(t, published, 1)
	assert.Equal(t, "live", published[0].Title)
}

func TestUpdateAndDeleteBlogPost(t *testing.T) {
	s := newStore(t, newFakeRepo())
	initAndWait(t, s)

	stored, p := s.AddBlogPost(blog.Post{Title: "v1", Content: "x", Published: true})
	waitAll(t, p)

	stored.Title = "v2"
	stored.Published = false
	ok, p := s.UpdateBlogPost(stored)
	require.True(t, ok)
	waitAll(t, p)
	got, _ := s.BlogPost(stored.ID)
	assert.Equal(t, "v2", got.Title)
	assert.Empty(t, s.PublishedBlogPosts())

	waitAll(t, s.DeleteBlogPost(stored.ID))
	assert.Empty(t, s.BlogPosts())
}

func TestReadsReturnCopies(t *testing.T) {
	s := newStore(t, newFakeRepo(), WithSeed(portfolio.Seed(time.Now())))
	initAndWait(t, s)

	posts := s.Posts()
	posts[0].Title = "mutated"
	posts[0].Tags[0] = "mutated"

	assert.NotEqual(t, "mutated", s.Posts()[0].Title)
	assert.NotEqual(t, "mutated", s.Posts()[0].Tags[0])
}

func TestCloseDrainsQueuedWrites(t *testing.T) {
	repo := newFakeRepo()
	s := New(repo, WithClock(tickingClock()))
	initAndWait(t, s)

	var pendings []*Pending
	for i := 0; i < 20; i++ {
		_, p := s.AddPost(project(fmt.Sprintf("p%d", i)))
		pendings = append(pendings, p)
	}
	require.NoError(t, s.Close())

	for _, p := range pendings {
		select {
		case <-p.Done():
		default:
			t.Fatal("close returned with writes still queued")
		}
	}
	assert.Len(t, repo.mutations(), 20)
	assert.True(t, repo.closed)

	_, p := s.AddPost(project("late"))
	assert.ErrorIs(t, p.Err(), ErrClosed)
}

func TestCloseWithoutInit(t *testing.T) {
	repo := newFakeRepo()
	s := New(repo)
	_, p := s.AddPost(project("queued"))

	require.NoError(t, s.Close())
	assert.NoError(t, p.Err())
	assert.Len(t, repo.mutations(), 1)
}
