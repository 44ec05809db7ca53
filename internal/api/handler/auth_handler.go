package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/yamdb/catalogue-api/internal/core/ports"
)

type AuthHandler struct {
	confirmations ports.ConfirmationService
	tokens        ports.TokenService
}

func NewAuthHandler(confirmations ports.ConfirmationService, tokens ports.TokenService) *AuthHandler {
	return &AuthHandler{confirmations: confirmations, tokens: tokens}
}

// Signup issues a confirmation code to the given email address. Repeating the
// call for the same username and email re-issues the code.
//
// @Summary      Request a confirmation code
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      signupRequest  true  "Username and email"
// @Success      200   {object}  signupResponse
// @Failure      400   {object}  map[string]any
// @Failure      409   {object}  map[string]string
// @Failure      429   {object}  map[string]string
// @Router       /auth/signup [post]
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	res, err := h.confirmations.RequestConfirmation(c.Request().Context(), req.Username, req.Email)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, signupResponse{Username: res.Username, Email: res.Email})
}

// Token exchanges a confirmation code for an access token.
//
// @Summary      Obtain an access token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      tokenRequest  true  "Username and confirmation code"
// @Success      200   {object}  tokenResponse
// @Failure      400   {object}  map[string]any
// @Failure      404   {object}  map[string]string
// @Failure      429   {object}  map[string]string
// @Router       /auth/token [post]
func (h *AuthHandler) Token(c echo.Context) error {
	var req tokenRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	token, err := h.tokens.Exchange(c.Request().Context(), req.Username, req.ConfirmationCode)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tokenResponse{Token: token})
}
