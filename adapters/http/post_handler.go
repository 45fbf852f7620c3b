package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	postUC "github.com/khoahotran/devfolio/internal/application/usecase/post"
	"github.com/khoahotran/devfolio/pkg/apperror"
)

// PostHandler serves portfolio projects.
type PostHandler struct {
	createPostUseCase  *postUC.CreatePostUseCase
	listPostsUseCase   *postUC.ListPostsUseCase
	updatePostUseCase  *postUC.UpdatePostUseCase
	deletePostUseCase  *postUC.DeletePostUseCase
	getPostUseCase     *postUC.GetPostUseCase
	suggestTagsUseCase *postUC.SuggestTagsUseCase
}

func NewPostHandler(
	createUC *postUC.CreatePostUseCase,
	listUC *postUC.ListPostsUseCase,
	updateUC *postUC.UpdatePostUseCase,
	deleteUC *postUC.DeletePostUseCase,
	getUC *postUC.GetPostUseCase,
	suggestUC *postUC.SuggestTagsUseCase,
) *PostHandler {
	return &PostHandler{
		createPostUseCase:  createUC,
		listPostsUseCase:   listUC,
		updatePostUseCase:  updateUC,
		deletePostUseCase:  deleteUC,
		getPostUseCase:     getUC,
		suggestTagsUseCase: suggestUC,
	}
}

func (h *PostHandler) ListPosts(c *gin.Context) {
	output, err := h.listPostsUseCase.Execute(c.Request.Context(), postUC.ListPostsInput{Tag: c.Query("tag")})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, PostListResponse{Items: output.Posts, Loading: output.Loading})
}

func (h *PostHandler) GetPost(c *gin.Context) {
	p, err := h.getPostUseCase.Execute(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *PostHandler) CreatePost(c *gin.Context) {
	var req PostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid request body", err))
		return
	}

	output, err := h.createPostUseCase.Execute(c.Request.Context(), postUC.CreatePostInput{
		ID:          req.ID,
		Title:       req.Title,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		Tags:        req.Tags,
		Wait:        waitRequested(c),
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, output.Post)
}

func (h *PostHandler) UpdatePost(c *gin.Context) {
	var req PostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid request body", err))
		return
	}

	output, err := h.updatePostUseCase.Execute(c.Request.Context(), postUC.UpdatePostInput{
		PostID:      c.Param("id"),
		Title:       req.Title,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		Tags:        req.Tags,
		Wait:        waitRequested(c),
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, output.Post)
}

func (h *PostHandler) DeletePost(c *gin.Context) {
	err := h.deletePostUseCase.Execute(c.Request.Context(), postUC.DeletePostInput{
		PostID: c.Param("id"),
		Wait:   waitRequested(c),
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *PostHandler) SuggestTags(c *gin.Context) {
	var req SuggestTagsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("'imageUrl' is required", err))
		return
	}

	output, err := h.suggestTagsUseCase.Execute(c.Request.Context(), postUC.SuggestTagsInput{
		ImageURL: req.ImageURL,
		Existing: req.Tags,
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"suggested": output.Suggested, "tags": output.Tags})
}
