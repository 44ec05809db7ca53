package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/yamdb/catalogue-api/internal/core/ports"
)

type CommentHandler struct {
	comments ports.CommentService
}

func NewCommentHandler(comments ports.CommentService) *CommentHandler {
	return &CommentHandler{comments: comments}
}

// List godoc
//
// @Summary  List comments on a review
// @Tags     comments
// @Produce  json
// @Param    title_id   path      string  true   "Title id"
// @Param    review_id  path      string  true   "Review id"
// @Param    page       query     int     false  "Page number"
// @Param    limit      query     int     false  "Page size"
// @Success  200        {object}  pageResponse[commentResponse]
// @Failure  404        {object}  map[string]string
// @Router   /titles/{title_id}/reviews/{review_id}/comments [get]
func (h *CommentHandler) List(c echo.Context) error {
	page, err := bindPage(c)
	if err != nil {
		return err
	}

	res, err := h.comments.List(c.Request().Context(), c.Param("title_id"), c.Param("review_id"), page)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toPageResponse(res, toCommentResponse))
}

// Create godoc
//
// @Summary   Comment on a review
// @Tags      comments
// @Accept    json
// @Produce   json
// @Security  BearerAuth
// @Param     title_id   path      string          true  "Title id"
// @Param     review_id  path      string          true  "Review id"
// @Param     body       body      commentRequest  true  "Comment"
// @Success   201        {object}  commentResponse
// @Failure   400        {object}  map[string]any
// @Failure   401        {object}  map[string]string
// @Failure   404        {object}  map[string]string
// @Router    /titles/{title_id}/reviews/{review_id}/comments [post]
func (h *CommentHandler) Create(c echo.Context) error {
	var req commentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	cm, err := h.comments.Create(c.Request().Context(), ctxPrincipal(c), c.Param("title_id"), c.Param("review_id"), req.Text)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toCommentResponse(cm))
}

// Get godoc
//
// @Summary  Get a comment
// @Tags     comments
// @Produce  json
// @Param    title_id    path      string  true  "Title id"
// @Param    review_id   path      string  true  "Review id"
// @Param    comment_id  path      string  true  "Comment id"
// @Success  200         {object}  commentResponse
// @Failure  404         {object}  map[string]string
// @Router   /titles/{title_id}/reviews/{review_id}/comments/{comment_id} [get]
func (h *CommentHandler) Get(c echo.Context) error {
	cm, err := h.comments.Get(c.Request().Context(), c.Param("title_id"), c.Param("review_id"), c.Param("comment_id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toCommentResponse(cm))
}

// Update godoc
//
// @Summary   Edit a comment
// @Tags      comments
// @Accept    json
// @Produce   json
// @Security  BearerAuth
// @Param     title_id    path      string          true  "Title id"
// @Param     review_id   path      string          true  "Review id"
// @Param     comment_id  path      string          true  "Comment id"
// @Param     body        body      commentRequest  true  "Comment"
// @Success   200         {object}  commentResponse
// @Failure   403         {object}  map[string]string
// @Failure   404         {object}  map[string]string
// @Router    /titles/{title_id}/reviews/{review_id}/comments/{comment_id} [patch]
func (h *CommentHandler) Update(c echo.Context) error {
	var req commentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	cm, err := h.comments.Update(c.Request().Context(), ctxPrincipal(c),
		c.Param("title_id"), c.Param("review_id"), c.Param("comment_id"), req.Text)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toCommentResponse(cm))
}

// Delete godoc
//
// @Summary   Delete a comment
// @Tags      comments
// @Security  BearerAuth
// @Param     title_id    path  string  true  "Title id"
// @Param     review_id   path  string  true  "Review id"
// @Param     comment_id  path  string  true  "Comment id"
// @Success   204
// @Failure   403  {object}  map[string]string
// @Failure   404  {object}  map[string]string
// @Router    /titles/{title_id}/reviews/{review_id}/comments/{comment_id} [delete]
func (h *CommentHandler) Delete(c echo.Context) error {
	err := h.comments.Delete(c.Request().Context(), ctxPrincipal(c), c.Param("title_id"), c.Param("review_id"), c.Param("comment_id"))
	if err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
