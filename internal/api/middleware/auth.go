package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/yamdb/catalogue-api/internal/core/domain"
)

const principalKey = "principal"

// TokenVerifier validates an access token and returns the identity it carries.
type TokenVerifier interface {
	Verify(token string) (domain.Principal, error)
}

// Auth resolves the caller from the bearer token. Requests without an
// Authorization header continue as anonymous; a header that is present but
// malformed or carries an invalid token is rejected with 401.
func Auth(verifier TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return next(c)
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			p, err := verifier.Verify(parts[1])
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			c.Set(principalKey, p)
			return next(c)
		}
	}
}

// Principal returns the caller attached by Auth, or the anonymous principal.
func Principal(c echo.Context) domain.Principal {
	p, _ := c.Get(principalKey).(domain.Principal)
	return p
}
