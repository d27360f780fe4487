package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/urbanstyle/tienda/internal/service/token"
)

type Gate struct {
	JWTSecret []byte
}

// RequireLogin extracts the bearer token, verifies it and stores the claims
// in the request context. Missing header is a 401, a bad or expired token a
// 403, matching the API contract.
func (g *Gate) RequireLogin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw := bearerToken(c)
		if raw == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "token faltante")
		}

		claims, err := token.ClaimsFromToken(raw, g.JWTSecret)
		if err != nil {
			return echo.NewHTTPError(http.StatusForbidden, "token inválido")
		}

		setUserContext(c, claims)
		return next(c)
	}
}

// RequireAdmin re-checks the role claim on every request, it is never cached.
func (g *Gate) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return g.RequireLogin(func(c echo.Context) error {
		claims := ClaimsFrom(c)
		if claims == nil || !claims.IsAdmin() {
			return echo.NewHTTPError(http.StatusForbidden, "no autorizado")
		}
		return next(c)
	})
}

func bearerToken(c echo.Context) string {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func setUserContext(c echo.Context, claims *token.Claims) {
	c.Set("claims", claims)
	if id, err := claims.UserID(); err == nil {
		c.Set("userID", id)
	}
	c.Set("role", claims.Role)
}

func ClaimsFrom(c echo.Context) *token.Claims {
	if claims, ok := c.Get("claims").(*token.Claims); ok {
		return claims
	}
	return nil
}

func UserID(c echo.Context) (uint, error) {
	id, ok := c.Get("userID").(uint)
	if !ok || id == 0 {
		return 0, errors.New("unauthorized")
	}
	return id, nil
}
