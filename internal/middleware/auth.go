package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"famledger/internal/common"
	"famledger/internal/services"

	"github.com/labstack/echo/v4"
)

// Authentication guards every non-public route: it extracts the Bearer
// credential, verifies it against the token service for this namespace,
// and binds the resolved identity into the request context. Requests
// under the API documentation prefix pass through untouched.
func Authentication(tokens *services.TokenService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if strings.HasPrefix(c.Request().URL.Path, "/swagger") {
				return next(c)
			}

			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing token")
			}

			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token format")
			}

			identity, err := tokens.Verify(c.Request().Context(), tokenString)
			if err != nil {
				if errors.Is(err, services.ErrTokenInvalid) {
					return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
				}
				return echo.NewHTTPError(http.StatusInternalServerError, "session store unavailable")
			}

			ctx := context.WithValue(c.Request().Context(), common.UserIDKey, identity.UserID)
			ctx = context.WithValue(ctx, common.UsernameKey, identity.Username)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}
