package auth

import (
	"net/http"
	"strconv"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/hanayashop/backend/internal/tokens"
)

// RequireLogin validates the access token (Authorization header or
// accessToken cookie) and puts userID/role into the echo context.
func RequireLogin(secret []byte) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		SigningMethod: "HS256",
		SigningKey:    secret,
		TokenLookup:   "header:Authorization:Bearer ,cookie:accessToken",
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return &tokens.AccessClaims{}
		},
		SuccessHandler: func(c echo.Context) {
			setUserContext(c)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or missing access token")
		},
	})
}

// RequireAdmin rejects non-admin users. Apply after RequireLogin.
func RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if Role(c) != "admin" {
			return echo.NewHTTPError(http.StatusForbidden, "admin access required")
		}
		return next(c)
	}
}

func setUserContext(c echo.Context) {
	token, ok := c.Get("user").(*jwt.Token)
	if !ok {
		return
	}
	claims, ok := token.Claims.(*tokens.AccessClaims)
	if !ok {
		return
	}
	if id, err := strconv.ParseUint(claims.Subject, 10, 64); err == nil {
		c.Set("userID", uint(id))
	}
	c.Set("role", claims.Role)
}

func UserID(c echo.Context) (uint, error) {
	id, ok := c.Get("userID").(uint)
	if !ok || id == 0 {
		return 0, echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	return id, nil
}

func Role(c echo.Context) string {
	role, _ := c.Get("role").(string)
	return role
}
