package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

type UtilsHandler struct {
	DB      *gorm.DB
	Version string
}

func (h *UtilsHandler) Healthcheck(c echo.Context) error {
	var one int
	err := h.DB.WithContext(c.Request().Context()).Raw("SELECT 1").Scan(&one).Error
	connected := err == nil && one == 1

	status := "healthy"
	if !connected {
		status = "unhealthy"
	}

	return c.JSON(http.StatusOK, echo.Map{
		"status":             status,
		"database_connected": connected,
	})
}

func (h *UtilsHandler) VersionInfo(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"version": h.Version,
		"name":    "Contact Management API",
	})
}

func (h *UtilsHandler) RequestInfo(c echo.Context) error {
	headers := map[string]string{}
	for name, values := range c.Request().Header {
		if len(values) > 0 {
			headers[name] = values[0]
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"client_host": c.RealIP(),
		"method":      c.Request().Method,
		"url":         c.Request().URL.String(),
		"user_agent":  c.Request().UserAgent(),
		"headers":     headers,
	})
}
