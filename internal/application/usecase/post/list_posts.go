package post

import (
	"context"

	"github.com/khoahotran/devfolio/internal/domain/post"
)

type ListPostsUseCase struct {
	store ProjectStore
}

func NewListPostsUseCase(s ProjectStore) *ListPostsUseCase {
	return &ListPostsUseCase{store: s}
}

type ListPostsInput struct {
	// Tag keeps only projects carrying this label when set.
	Tag string
}

type ListPostsOutput struct {
	Posts   []post.Post
	Loading bool
}

func (uc *ListPostsUseCase) Execute(_ context.Context, input ListPostsInput) (*ListPostsOutput, error) {
	posts := uc.store.Posts()
	if input.Tag != "" {
		filtered := posts[:0]
		for _, p := range posts {
			if p.Tags.Contains(input.Tag) {
				filtered = append(filtered, p)
			}
		}
		posts = filtered
	}
	return &ListPostsOutput{Posts: posts, Loading: uc.store.IsLoading()}, nil
}
