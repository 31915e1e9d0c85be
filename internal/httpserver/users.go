package httpserver

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/mkrasnov/contactbook/internal/logging"
	authmw "github.com/mkrasnov/contactbook/internal/middleware/auth"
	"github.com/mkrasnov/contactbook/internal/service"
	"github.com/mkrasnov/contactbook/internal/transport"
	"github.com/mkrasnov/contactbook/internal/util"
)

var allowedAvatarTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/gif":  {},
}

type UserHandler struct {
	Svc *service.UserService
}

func (h *UserHandler) Me(c echo.Context) error {
	user := authmw.CurrentUser(c)
	return c.JSON(http.StatusOK, transport.NewUserResponse(user))
}

func (h *UserHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}

	user, err := h.Svc.Get(c.Request().Context(), uint(id))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "user not found")
		}
		return err
	}
	return c.JSON(http.StatusOK, transport.NewUserResponse(user))
}

// UpdateAvatar validates the declared content type against the allow-list
// before any bytes reach the image host.
func (h *UserHandler) UpdateAvatar(c echo.Context) error {
	ctx := c.Request().Context()
	user := authmw.CurrentUser(c)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if _, ok := allowedAvatarTypes[contentType]; !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid file type. Only JPEG, PNG, and GIF are allowed.")
	}

	f, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "cannot read file")
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "cannot read file")
	}

	updated, err := h.Svc.UpdateAvatar(ctx, user, contentType, data)
	if err != nil {
		if errors.Is(err, service.ErrUpstream) {
			logging.FromContext(ctx).Error("avatar upload failed", "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to upload avatar: "+err.Error())
		}
		return err
	}

	return c.JSON(http.StatusOK, transport.NewUserResponse(updated))
}

func (h *UserHandler) UpdateRole(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}

	var req transport.RoleUpdateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := req.Validate(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	updated, err := h.Svc.ChangeRole(c.Request().Context(), uint(id), req.Role)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "user not found")
		}
		return err
	}
	return c.JSON(http.StatusOK, transport.NewUserResponse(updated))
}

func (h *UserHandler) List(c echo.Context) error {
	skip, _ := strconv.Atoi(c.QueryParam("skip"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	skip, limit = util.Clamp(skip, limit)

	users, err := h.Svc.List(c.Request().Context(), skip, limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, transport.NewUserResponses(users))
}
