package httpserver

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hanayashop/backend/internal/service"
)

type Meta struct {
	Timestamp  time.Time `json:"timestamp"`
	StatusCode int       `json:"status_code"`
}

// Envelope is the dashboard API response shape.
type Envelope struct {
	Success bool              `json:"success"`
	Data    any               `json:"data,omitempty"`
	Message string            `json:"message,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
	Meta    Meta              `json:"meta"`
}

func respondOK(c echo.Context, status int, data any) error {
	return c.JSON(status, Envelope{
		Success: true,
		Data:    data,
		Meta:    Meta{Timestamp: time.Now().UTC(), StatusCode: status},
	})
}

func respondError(c echo.Context, status int, message string) error {
	return c.JSON(status, Envelope{
		Success: false,
		Message: message,
		Meta:    Meta{Timestamp: time.Now().UTC(), StatusCode: status},
	})
}

func respondFieldErrors(c echo.Context, fieldErrors map[string]string) error {
	return c.JSON(http.StatusUnprocessableEntity, Envelope{
		Success: false,
		Message: "validation failed",
		Errors:  fieldErrors,
		Meta:    Meta{Timestamp: time.Now().UTC(), StatusCode: http.StatusUnprocessableEntity},
	})
}

// statusOf maps service sentinel errors onto HTTP codes.
func statusOf(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, service.ErrConflict),
		errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrInsufficientStock):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func httpError(err error) *echo.HTTPError {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		return echo.NewHTTPError(status, "internal error")
	}
	return echo.NewHTTPError(status, err.Error())
}

// requestLocale is the explicit locale for customer notifications:
// ?locale= wins, then the Accept-Language header's first tag.
func requestLocale(c echo.Context) string {
	if l := c.QueryParam("locale"); l != "" {
		return l
	}
	al := c.Request().Header.Get("Accept-Language")
	if al == "" {
		return ""
	}
	tag := strings.TrimSpace(strings.Split(al, ",")[0])
	if i := strings.IndexAny(tag, "-;"); i > 0 {
		tag = tag[:i]
	}
	return tag
}
