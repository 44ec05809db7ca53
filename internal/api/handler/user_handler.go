package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/yamdb/catalogue-api/internal/core/domain"
	"github.com/yamdb/catalogue-api/internal/core/ports"
)

type UserHandler struct {
	users ports.UserService
}

func NewUserHandler(users ports.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// List godoc
//
// @Summary   List users
// @Tags      users
// @Produce   json
// @Security  BearerAuth
// @Param     search  query     string  false  "Username substring"
// @Param     page    query     int     false  "Page number"
// @Param     limit   query     int     false  "Page size"
// @Success   200     {object}  pageResponse[userResponse]
// @Failure   401     {object}  map[string]string
// @Failure   403     {object}  map[string]string
// @Router    /users [get]
func (h *UserHandler) List(c echo.Context) error {
	page, err := bindPage(c)
	if err != nil {
		return err
	}
	filter := ports.UserFilter{Search: c.QueryParam("search"), PageRequest: page}

	res, err := h.users.List(c.Request().Context(), ctxPrincipal(c), filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toPageResponse(res, toUserResponse))
}

// Create godoc
//
// @Summary   Create a user
// @Tags      users
// @Accept    json
// @Produce   json
// @Security  BearerAuth
// @Param     body  body      userCreateRequest  true  "User"
// @Success   201   {object}  userResponse
// @Failure   400   {object}  map[string]any
// @Failure   409   {object}  map[string]string
// @Router    /users [post]
func (h *UserHandler) Create(c echo.Context) error {
	var req userCreateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.users.Create(c.Request().Context(), ctxPrincipal(c), ports.CreateUserInput{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Bio:       req.Bio,
		Role:      domain.Role(req.Role),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toUserResponse(user))
}

// Get godoc
//
// @Summary   Get a user by username
// @Tags      users
// @Produce   json
// @Security  BearerAuth
// @Param     username  path      string  true  "Username"
// @Success   200       {object}  userResponse
// @Failure   404       {object}  map[string]string
// @Router    /users/{username} [get]
func (h *UserHandler) Get(c echo.Context) error {
	user, err := h.users.Get(c.Request().Context(), ctxPrincipal(c), c.Param("username"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}

// Update godoc
//
// @Summary   Update a user
// @Tags      users
// @Accept    json
// @Produce   json
// @Security  BearerAuth
// @Param     username  path      string            true  "Username"
// @Param     body      body      userPatchRequest  true  "Fields to change"
// @Success   200       {object}  userResponse
// @Failure   400       {object}  map[string]any
// @Failure   404       {object}  map[string]string
// @Router    /users/{username} [patch]
func (h *UserHandler) Update(c echo.Context) error {
	var req userPatchRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.users.Update(c.Request().Context(), ctxPrincipal(c), c.Param("username"), req.toPatch())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}

// Delete godoc
//
// @Summary   Delete a user
// @Tags      users
// @Security  BearerAuth
// @Param     username  path  string  true  "Username"
// @Success   204
// @Failure   404  {object}  map[string]string
// @Router    /users/{username} [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	if err := h.users.Delete(c.Request().Context(), ctxPrincipal(c), c.Param("username")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Me godoc
//
// @Summary   Current user's profile
// @Tags      users
// @Produce   json
// @Security  BearerAuth
// @Success   200  {object}  userResponse
// @Failure   401  {object}  map[string]string
// @Router    /users/me [get]
func (h *UserHandler) Me(c echo.Context) error {
	user, err := h.users.Me(c.Request().Context(), ctxPrincipal(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}

// UpdateMe changes the caller's own profile. A role in the payload is
// accepted and ignored.
//
// @Summary   Update current user's profile
// @Tags      users
// @Accept    json
// @Produce   json
// @Security  BearerAuth
// @Param     body  body      userPatchRequest  true  "Fields to change"
// @Success   200   {object}  userResponse
// @Failure   400   {object}  map[string]any
// @Failure   401   {object}  map[string]string
// @Router    /users/me [patch]
func (h *UserHandler) UpdateMe(c echo.Context) error {
	var req userPatchRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.users.UpdateMe(c.Request().Context(), ctxPrincipal(c), req.toPatch())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}
