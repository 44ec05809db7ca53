package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/yamdb/catalogue-api/internal/core/ports"
)

type TitleHandler struct {
	titles ports.TitleService
}

func NewTitleHandler(titles ports.TitleService) *TitleHandler {
	return &TitleHandler{titles: titles}
}

// List godoc
//
// @Summary  List titles
// @Tags     titles
// @Produce  json
// @Param    category  query     string  false  "Category slug"
// @Param    genre     query     string  false  "Genre slug"
// @Param    name      query     string  false  "Name substring"
// @Param    year      query     int     false  "Release year"
// @Param    page      query     int     false  "Page number"
// @Param    limit     query     int     false  "Page size"
// @Success  200       {object}  pageResponse[titleResponse]
// @Failure  400       {object}  map[string]any
// @Router   /titles [get]
func (h *TitleHandler) List(c echo.Context) error {
	filter := ports.TitleFilter{
		Category: c.QueryParam("category"),
		Genre:    c.QueryParam("genre"),
		Name:     c.QueryParam("name"),
	}
	err := echo.QueryParamsBinder(c).
		Int("year", &filter.Year).
		Int("page", &filter.Page).
		Int("limit", &filter.Limit).
		BindError()
	if err := queryError(err); err != nil {
		return err
	}

	res, err := h.titles.List(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toPageResponse(res, toTitleResponse))
}

// Get godoc
//
// @Summary  Get a title
// @Tags     titles
// @Produce  json
// @Param    title_id  path      string  true  "Title id"
// @Success  200       {object}  titleResponse
// @Failure  404       {object}  map[string]string
// @Router   /titles/{title_id} [get]
func (h *TitleHandler) Get(c echo.Context) error {
	t, err := h.titles.Get(c.Request().Context(), c.Param("title_id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTitleResponse(t))
}

// Create godoc
//
// @Summary   Create a title
// @Tags      titles
// @Accept    json
// @Produce   json
// @Security  BearerAuth
// @Param     body  body      titleRequest  true  "Title"
// @Success   201   {object}  titleResponse
// @Failure   400   {object}  map[string]any
// @Failure   403   {object}  map[string]string
// @Router    /titles [post]
func (h *TitleHandler) Create(c echo.Context) error {
	var req titleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	t, err := h.titles.Create(c.Request().Context(), ctxPrincipal(c), req.toInput())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toTitleResponse(t))
}

// Update godoc
//
// @Summary   Update a title
// @Tags      titles
// @Accept    json
// @Produce   json
// @Security  BearerAuth
// @Param     title_id  path      string             true  "Title id"
// @Param     body      body      titlePatchRequest  true  "Fields to change"
// @Success   200       {object}  titleResponse
// @Failure   400       {object}  map[string]any
// @Failure   404       {object}  map[string]string
// @Router    /titles/{title_id} [patch]
func (h *TitleHandler) Update(c echo.Context) error {
	var req titlePatchRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	t, err := h.titles.Update(c.Request().Context(), ctxPrincipal(c), c.Param("title_id"), req.toPatch())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTitleResponse(t))
}

// Delete removes the title together with its reviews and comments.
//
// @Summary   Delete a title
// @Tags      titles
// @Security  BearerAuth
// @Param     title_id  path  string  true  "Title id"
// @Success   204
// @Failure   404  {object}  map[string]string
// @Router    /titles/{title_id} [delete]
func (h *TitleHandler) Delete(c echo.Context) error {
	if err := h.titles.Delete(c.Request().Context(), ctxPrincipal(c), c.Param("title_id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
