package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/social-feed/internal/middleware"
	"github.com/iliyamo/social-feed/internal/model"
	"github.com/iliyamo/social-feed/internal/service"
)

// CommentHandler serves /api/comments.
type CommentHandler struct {
	Comments *service.CommentService
	Log      logrus.FieldLogger
}

func NewCommentHandler(comments *service.CommentService, log logrus.FieldLogger) *CommentHandler {
	return &CommentHandler{Comments: comments, Log: log}
}

type commentPatchReq struct {
	Message *string `json:"message"`
}

// Create comments on the post named by ?post_id=.
func (h *CommentHandler) Create(c echo.Context) error {
	postID, err := queryID(c, "post_id")
	if err != nil {
		return fail(c, h.Log, err)
	}
	var in service.CommentInput
	if err := c.Bind(&in); err != nil {
		return badBody(c)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	cm, err := h.Comments.Create(ctx, middleware.Actor(c), postID, in)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, toComment(cm))
}

func (h *CommentHandler) Mine(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	list, err := h.Comments.Mine(ctx, middleware.Actor(c))
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, toComments(list))
}

func (h *CommentHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, h.Log, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	cm, err := h.Comments.Get(ctx, id)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, toComment(cm))
}

func (h *CommentHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, h.Log, err)
	}
	var req commentPatchReq
	if err := c.Bind(&req); err != nil {
		return badBody(c)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	cm, err := h.Comments.Update(ctx, middleware.Actor(c), id, model.CommentPatch{Message: req.Message})
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, toComment(cm))
}

func (h *CommentHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, h.Log, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Comments.Delete(ctx, middleware.Actor(c), id); err != nil {
		return fail(c, h.Log, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *CommentHandler) AdminList(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	list, err := h.Comments.AdminList(ctx)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, toComments(list))
}

func (h *CommentHandler) AdminDelete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, h.Log, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Comments.AdminDelete(ctx, id); err != nil {
		return fail(c, h.Log, err)
	}
	return c.NoContent(http.StatusNoContent)
}
