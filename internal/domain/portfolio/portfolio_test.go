package portfolio

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khoahotran/devfolio/internal/domain/blog"
	"github.com/khoahotran/devfolio/internal/domain/post"
)

func TestSortNewestFirst(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	d := Data{
		Posts: []post.Post{
			{ID: "a", CreatedAt: base},
			{ID: "c", CreatedAt: base.Add(2 * time.Hour)},
			{ID: "b", CreatedAt: base},
			{ID: "d", CreatedAt: base.Add(time.Hour)},
		},
		BlogPosts: []blog.Post{
			{ID: "x", CreatedAt: base},
			{ID: "y", CreatedAt: base.Add(time.Minute)},
		},
	}

	SortNewestFirst(&d)

	ids := func(ps []post.Post) []string {
		out := []string{}
		for _, p := range ps {
			out = append(out, p.ID)
		}
		return out
	}
	if diff := cmp.Diff([]string{"c", "d", "b", "a"}, ids(d.Posts)); diff != "" {
		t.Errorf("post order mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "y", d.BlogPosts[0].ID)
}

func TestSeedRoundTripsThroughJSON(t *testing.T) {
	seed := Seed(time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC))

	raw, err := json.Marshal(seed)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"createdAt":"2025-03-04T05:06:07Z"`)
	assert.Contains(t, string(raw), `"avatarUrl":"https://picsum.photos/seed/dev-avatar/200/200"`)

	var back Data
	require.NoError(t, json.Unmarshal(raw, &back))
	if diff := cmp.Diff(seed, back); diff != "" {
		t.Errorf("seed mismatch after decode (-want +got):\n%s", diff)
	}
}

func TestCloneDoesNotShareSlices(t *testing.T) {
	d := Seed(time.Now())
	c := d.Clone()
	c.Posts[0].Tags[0] = "changed"
	c.Posts = append(c.Posts[:0], c.Posts[1:]...)

	assert.Len(t, d.Posts, 2)
	assert.Equal(t, "Next.js", d.Posts[0].Tags[0])
}
