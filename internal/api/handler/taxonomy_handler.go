package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/yamdb/catalogue-api/internal/core/ports"
)

// TaxonomyHandler serves one kind of taxon; the router mounts one instance
// for categories and one for genres.
type TaxonomyHandler struct {
	taxa ports.TaxonomyService
}

func NewTaxonomyHandler(taxa ports.TaxonomyService) *TaxonomyHandler {
	return &TaxonomyHandler{taxa: taxa}
}

// List godoc
//
// @Summary  List categories or genres
// @Tags     catalogue
// @Produce  json
// @Param    kind    path      string  true   "categories or genres"
// @Param    search  query     string  false  "Name substring"
// @Param    page    query     int     false  "Page number"
// @Param    limit   query     int     false  "Page size"
// @Success  200     {object}  pageResponse[taxonResponse]
// @Router   /{kind} [get]
func (h *TaxonomyHandler) List(c echo.Context) error {
	page, err := bindPage(c)
	if err != nil {
		return err
	}

	res, err := h.taxa.List(c.Request().Context(), ports.TaxonFilter{Search: c.QueryParam("search"), PageRequest: page})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toPageResponse(res, toTaxonResponse))
}

// Create godoc
//
// @Summary   Create a category or genre
// @Tags      catalogue
// @Accept    json
// @Produce   json
// @Security  BearerAuth
// @Param     kind  path      string        true  "categories or genres"
// @Param     body  body      taxonRequest  true  "Name and slug"
// @Success   201   {object}  taxonResponse
// @Failure   400   {object}  map[string]any
// @Failure   409   {object}  map[string]string
// @Router    /{kind} [post]
func (h *TaxonomyHandler) Create(c echo.Context) error {
	var req taxonRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	t, err := h.taxa.Create(c.Request().Context(), ctxPrincipal(c), req.Name, req.Slug)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toTaxonResponse(*t))
}

// Delete godoc
//
// @Summary   Delete a category or genre
// @Tags      catalogue
// @Security  BearerAuth
// @Param     kind  path  string  true  "categories or genres"
// @Param     slug  path  string  true  "Slug"
// @Success   204
// @Failure   404  {object}  map[string]string
// @Router    /{kind}/{slug} [delete]
func (h *TaxonomyHandler) Delete(c echo.Context) error {
	if err := h.taxa.Delete(c.Request().Context(), ctxPrincipal(c), c.Param("slug")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
