package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/social-feed/internal/middleware"
	"github.com/iliyamo/social-feed/internal/model"
	"github.com/iliyamo/social-feed/internal/service"
)

// PostHandler serves /api/posts.
type PostHandler struct {
	Posts *service.PostService
	Log   logrus.FieldLogger
}

func NewPostHandler(posts *service.PostService, log logrus.FieldLogger) *PostHandler {
	return &PostHandler{Posts: posts, Log: log}
}

type postPatchReq struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

func (h *PostHandler) Create(c echo.Context) error {
	var in service.PostInput
	if err := c.Bind(&in); err != nil {
		return badBody(c)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	p, err := h.Posts.Create(ctx, middleware.Actor(c), in)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, toPost(p))
}

// Feed lists every post.
func (h *PostHandler) Feed(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	posts, err := h.Posts.Feed(ctx)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, toPosts(posts))
}

// Mine lists the caller's posts.
func (h *PostHandler) Mine(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	posts, err := h.Posts.Mine(ctx, middleware.Actor(c))
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, toPosts(posts))
}

func (h *PostHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, h.Log, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	p, err := h.Posts.Get(ctx, id)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, toPost(p))
}

func (h *PostHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, h.Log, err)
	}
	var req postPatchReq
	if err := c.Bind(&req); err != nil {
		return badBody(c)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	p, err := h.Posts.Update(ctx, middleware.Actor(c), id, model.PostPatch{Title: req.Title, Content: req.Content})
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, toPost(p))
}

func (h *PostHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, h.Log, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Posts.Delete(ctx, middleware.Actor(c), id); err != nil {
		return fail(c, h.Log, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// AdminDelete removes any post regardless of owner.
func (h *PostHandler) AdminDelete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, h.Log, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Posts.AdminDelete(ctx, id); err != nil {
		return fail(c, h.Log, err)
	}
	return c.NoContent(http.StatusNoContent)
}
