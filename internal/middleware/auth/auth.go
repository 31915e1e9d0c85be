package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/mkrasnov/contactbook/internal/models"
	"github.com/mkrasnov/contactbook/internal/service"
)

const userContextKey = "currentUser"

type Middleware struct {
	Auth *service.AuthService
}

// RequireLogin resolves the bearer access token to a user (cache first,
// database on miss) and stores it on the request context.
func (m *Middleware) RequireLogin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(echo.HeaderAuthorization)
		raw, found := strings.CutPrefix(header, "Bearer ")
		if !found || raw == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
		}

		user, err := m.Auth.CurrentUser(c.Request().Context(), raw)
		if err != nil {
			if errors.Is(err, service.ErrInvalidCredentials) {
				return echo.NewHTTPError(http.StatusUnauthorized, "could not validate credentials")
			}
			return err
		}

		SetCurrentUser(c, user)
		return next(c)
	}
}

// AdminOnly must run after RequireLogin.
func (m *Middleware) AdminOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user := CurrentUser(c)
		if user == nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "could not validate credentials")
		}
		if !user.IsAdmin() {
			return echo.NewHTTPError(http.StatusForbidden, "not enough rights")
		}
		return next(c)
	}
}

func SetCurrentUser(c echo.Context, user *models.User) {
	c.Set(userContextKey, user)
}

func CurrentUser(c echo.Context) *models.User {
	if u, ok := c.Get(userContextKey).(*models.User); ok {
		return u
	}
	return nil
}
