package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/yamdb/catalogue-api/internal/core/ports"
)

type ReviewHandler struct {
	reviews ports.ReviewService
}

func NewReviewHandler(reviews ports.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviews: reviews}
}

// List godoc
//
// @Summary  List reviews of a title
// @Tags     reviews
// @Produce  json
// @Param    title_id  path      string  true   "Title id"
// @Param    page      query     int     false  "Page number"
// @Param    limit     query     int     false  "Page size"
// @Success  200       {object}  pageResponse[reviewResponse]
// @Failure  404       {object}  map[string]string
// @Router   /titles/{title_id}/reviews [get]
func (h *ReviewHandler) List(c echo.Context) error {
	page, err := bindPage(c)
	if err != nil {
		return err
	}

	res, err := h.reviews.ListReviews(c.Request().Context(), c.Param("title_id"), page)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toPageResponse(res, toReviewResponse))
}

// Create submits the caller's review. A second review of the same title by
// the same author is rejected with 400.
//
// @Summary   Review a title
// @Tags      reviews
// @Accept    json
// @Produce   json
// @Security  BearerAuth
// @Param     title_id  path      string         true  "Title id"
// @Param     body      body      reviewRequest  true  "Review"
// @Success   201       {object}  reviewResponse
// @Failure   400       {object}  map[string]any
// @Failure   401       {object}  map[string]string
// @Failure   404       {object}  map[string]string
// @Router    /titles/{title_id}/reviews [post]
func (h *ReviewHandler) Create(c echo.Context) error {
	var req reviewRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	r, err := h.reviews.SubmitReview(c.Request().Context(), ctxPrincipal(c), c.Param("title_id"), req.Text, req.Score)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toReviewResponse(r))
}

// Get godoc
//
// @Summary  Get a review
// @Tags     reviews
// @Produce  json
// @Param    title_id   path      string  true  "Title id"
// @Param    review_id  path      string  true  "Review id"
// @Success  200        {object}  reviewResponse
// @Failure  404        {object}  map[string]string
// @Router   /titles/{title_id}/reviews/{review_id} [get]
func (h *ReviewHandler) Get(c echo.Context) error {
	r, err := h.reviews.GetReview(c.Request().Context(), c.Param("title_id"), c.Param("review_id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toReviewResponse(r))
}

// Update godoc
//
// @Summary   Edit a review
// @Tags      reviews
// @Accept    json
// @Produce   json
// @Security  BearerAuth
// @Param     title_id   path      string              true  "Title id"
// @Param     review_id  path      string              true  "Review id"
// @Param     body       body      reviewPatchRequest  true  "Fields to change"
// @Success   200        {object}  reviewResponse
// @Failure   400        {object}  map[string]any
// @Failure   403        {object}  map[string]string
// @Failure   404        {object}  map[string]string
// @Router    /titles/{title_id}/reviews/{review_id} [patch]
func (h *ReviewHandler) Update(c echo.Context) error {
	var req reviewPatchRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	r, err := h.reviews.UpdateReview(c.Request().Context(), ctxPrincipal(c), c.Param("title_id"), c.Param("review_id"),
		ports.ReviewPatch{Text: req.Text, Score: req.Score})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toReviewResponse(r))
}

// Delete godoc
//
// @Summary   Delete a review
// @Tags      reviews
// @Security  BearerAuth
// @Param     title_id   path  string  true  "Title id"
// @Param     review_id  path  string  true  "Review id"
// @Success   204
// @Failure   403  {object}  map[string]string
// @Failure   404  {object}  map[string]string
// @Router    /titles/{title_id}/reviews/{review_id} [delete]
func (h *ReviewHandler) Delete(c echo.Context) error {
	if err := h.reviews.DeleteReview(c.Request().Context(), ctxPrincipal(c), c.Param("title_id"), c.Param("review_id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
