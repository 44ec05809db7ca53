package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/yamdb/catalogue-api/internal/api/middleware"
	"github.com/yamdb/catalogue-api/internal/core/domain"
)

// ctxPrincipal returns the caller resolved by the Auth middleware. Anonymous
// callers get the zero principal; services decide whether that is enough.
func ctxPrincipal(c echo.Context) domain.Principal {
	return middleware.Principal(c)
}
