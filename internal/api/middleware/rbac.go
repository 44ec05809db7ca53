package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/yamdb/catalogue-api/internal/core/domain"
	"github.com/yamdb/catalogue-api/pkg/metrics"
)

// Policy applies the ownership-free part of the authorization policy before
// the handler runs. Routes whose decision depends on who authored the target
// leave the check to the service layer.
func Policy(res domain.Resource) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p := Principal(c)
			if domain.Decide(p.Role, false, c.Request().Method, res) == domain.Deny {
				metrics.AuthorizationDeniedTotal.WithLabelValues(res.String()).Inc()
				return domain.ErrAuthorizationDenied
			}
			return next(c)
		}
	}
}
