package authmw

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/bazarchi/backend/internal/tokens"
)

const (
	CtxUserID = "userID"
	CtxRole   = "role"
)

// RequireAuth checks the bearer access token from the Authorization header
// and puts the principal id and role into the echo context.
func RequireAuth(secret []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			raw, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || raw == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Токен не предоставлен"})
			}

			claims, err := tokens.AccessClaimsFromToken(raw, secret)
			if err != nil {
				return c.JSON(http.StatusForbidden, echo.Map{"message": "Некорректный токен"})
			}

			id, err := tokens.SubjectID(claims.Subject)
			if err != nil {
				return c.JSON(http.StatusForbidden, echo.Map{"message": "Некорректный токен"})
			}

			c.Set(CtxUserID, id)
			c.Set(CtxRole, claims.Role)
			return next(c)
		}
	}
}
