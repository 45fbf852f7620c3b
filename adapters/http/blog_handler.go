package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	blogUC "github.com/khoahotran/devfolio/internal/application/usecase/blog"
	"github.com/khoahotran/devfolio/pkg/apperror"
)

type BlogHandler struct {
	createUseCase *blogUC.CreateBlogPostUseCase
	updateUseCase *blogUC.UpdateBlogPostUseCase
	deleteUseCase *blogUC.DeleteBlogPostUseCase
	listUseCase   *blogUC.ListBlogPostsUseCase
	getUseCase    *blogUC.GetBlogPostUseCase
}

func NewBlogHandler(
	createUC *blogUC.CreateBlogPostUseCase,
	updateUC *blogUC.UpdateBlogPostUseCase,
	deleteUC *blogUC.DeleteBlogPostUseCase,
	listUC *blogUC.ListBlogPostsUseCase,
	getUC *blogUC.GetBlogPostUseCase,
) *BlogHandler {
	return &BlogHandler{
		createUseCase: createUC,
		updateUseCase: updateUC,
		deleteUseCase: deleteUC,
		listUseCase:   listUC,
		getUseCase:    getUC,
	}
}

func (h *BlogHandler) list(c *gin.Context, includeDrafts bool) {
	output, err := h.listUseCase.Execute(c.Request.Context(), blogUC.ListBlogPostsInput{IncludeDrafts: includeDrafts})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, BlogListResponse{Items: output.Posts, Loading: output.Loading})
}

func (h *BlogHandler) get(c *gin.Context, includeDrafts bool) {
	output, err := h.getUseCase.Execute(c.Request.Context(), blogUC.GetBlogPostInput{
		PostID:        c.Param("id"),
		IncludeDrafts: includeDrafts,
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, BlogPostDTO{Post: output.Post, Cover: output.Cover, HTML: output.HTML})
}

func (h *BlogHandler) ListPublished(c *gin.Context) { h.list(c, false) }
func (h *BlogHandler) ListAll(c *gin.Context)       { h.list(c, true) }
func (h *BlogHandler) GetPublished(c *gin.Context)  { h.get(c, false) }
func (h *BlogHandler) GetAny(c *gin.Context)        { h.get(c, true) }

func (req BlogPostRequest) toInput(wait bool) blogUC.PostInput {
	return blogUC.PostInput{
		Title:     req.Title,
		Excerpt:   req.Excerpt,
		Content:   req.Content,
		CoverURL:  req.CoverURL,
		Tags:      req.Tags,
		Published: req.Published,
		Wait:      wait,
	}
}

func (h *BlogHandler) Create(c *gin.Context) {
	var req BlogPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid request body", err))
		return
	}
	p, err := h.createUseCase.Execute(c.Request.Context(), blogUC.CreateBlogPostInput{
		ID:        req.ID,
		PostInput: req.toInput(waitRequested(c)),
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *BlogHandler) Update(c *gin.Context) {
	var req BlogPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid request body", err))
		return
	}
	p, err := h.updateUseCase.Execute(c.Request.Context(), blogUC.UpdateBlogPostInput{
		PostID:    c.Param("id"),
		PostInput: req.toInput(waitRequested(c)),
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *BlogHandler) Delete(c *gin.Context) {
	if err := h.deleteUseCase.Execute(c.Request.Context(), c.Param("id"), waitRequested(c)); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}
