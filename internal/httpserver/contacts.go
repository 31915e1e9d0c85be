package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	authmw "github.com/mkrasnov/contactbook/internal/middleware/auth"
	"github.com/mkrasnov/contactbook/internal/models"
	"github.com/mkrasnov/contactbook/internal/service"
	"github.com/mkrasnov/contactbook/internal/transport"
)

type ContactHandler struct {
	Svc *service.ContactService
}

func (h *ContactHandler) List(c echo.Context) error {
	user := authmw.CurrentUser(c)

	skip, _ := strconv.Atoi(c.QueryParam("skip"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	q := c.QueryParam("q")

	contacts, err := h.Svc.List(c.Request().Context(), user.ID, skip, limit, q)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, contacts)
}

func (h *ContactHandler) Get(c echo.Context) error {
	user := authmw.CurrentUser(c)

	id, err := contactID(c)
	if err != nil {
		return err
	}

	contact, err := h.Svc.Get(c.Request().Context(), id, user.ID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "contact not found")
		}
		return err
	}
	return c.JSON(http.StatusOK, contact)
}

func (h *ContactHandler) Create(c echo.Context) error {
	user := authmw.CurrentUser(c)

	var req transport.ContactRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := req.Validate(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	contact := models.Contact{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Phone:       req.Phone,
		Email:       req.Email,
		DateOfBirth: req.DateOfBirth,
		UserID:      user.ID,
	}
	if err := h.Svc.Create(c.Request().Context(), &contact); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, contact)
}

func (h *ContactHandler) Update(c echo.Context) error {
	user := authmw.CurrentUser(c)

	id, err := contactID(c)
	if err != nil {
		return err
	}

	var req transport.ContactRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := req.Validate(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	contact, err := h.Svc.Update(c.Request().Context(), id, user.ID, req.Update())
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "contact not found")
		}
		return err
	}
	return c.JSON(http.StatusOK, contact)
}

func (h *ContactHandler) Delete(c echo.Context) error {
	user := authmw.CurrentUser(c)

	id, err := contactID(c)
	if err != nil {
		return err
	}

	contact, err := h.Svc.Delete(c.Request().Context(), id, user.ID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "contact not found")
		}
		return err
	}
	return c.JSON(http.StatusOK, contact)
}

func (h *ContactHandler) Birthdays(c echo.Context) error {
	user := authmw.CurrentUser(c)

	days := 7
	if raw := c.QueryParam("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 365 {
			return echo.NewHTTPError(http.StatusBadRequest, "days must be between 1 and 365")
		}
		days = n
	}

	contacts, err := h.Svc.Birthdays(c.Request().Context(), user.ID, days)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, contacts)
}

func (h *ContactHandler) Search(c echo.Context) error {
	user := authmw.CurrentUser(c)

	q := c.QueryParam("q")
	if q == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "q is required")
	}
	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("size"))

	total, contacts, err := h.Svc.SearchContacts(c.Request().Context(), user.ID, q, page, size)
	if err != nil {
		if errors.Is(err, service.ErrUnavailable) {
			return echo.NewHTTPError(http.StatusServiceUnavailable, "search is not configured")
		}
		return err
	}
	return c.JSON(http.StatusOK, transport.SearchResponse{Total: total, Contacts: contacts})
}

func contactID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid contact id")
	}
	return uint(id), nil
}
