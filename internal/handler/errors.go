package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Eursukkul/registration-engine/internal/dto"
	"github.com/Eursukkul/registration-engine/internal/form"
	"github.com/Eursukkul/registration-engine/internal/service"
	"github.com/Eursukkul/registration-engine/pkg/validator"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// httpError maps service errors onto status codes and response bodies.
func httpError(err error) error {
	var (
		fieldErr *form.FieldError
		inputErr *service.InputError
		reqErr   *validator.FieldError
	)
	switch {
	case errors.As(err, &fieldErr):
		return echo.NewHTTPError(http.StatusBadRequest, fieldErr)
	case errors.As(err, &inputErr):
		return echo.NewHTTPError(http.StatusBadRequest, dto.FieldErrorResponse{Field: inputErr.Field, Message: inputErr.Message})
	case errors.As(err, &reqErr):
		return echo.NewHTTPError(http.StatusBadRequest, dto.FieldErrorResponse{Field: reqErr.Field, Message: reqErr.Message})
	case errors.Is(err, service.ErrEventNotFound), errors.Is(err, service.ErrRegistrationNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrRegistrationClosed), errors.Is(err, service.ErrPaymentsDisabled):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrCapacityExceeded):
		return echo.NewHTTPError(http.StatusConflict, dto.LimitReachedResponse{LimitReached: true, Message: err.Error()})
	case errors.Is(err, service.ErrInvalidState):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrAmountMismatch):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, service.ErrRegistrationFailed):
		return echo.NewHTTPError(http.StatusServiceUnavailable, service.ErrRegistrationFailed.Error()).SetInternal(err)
	case errors.Is(err, service.ErrVerificationFailed):
		return echo.NewHTTPError(http.StatusServiceUnavailable, service.ErrVerificationFailed.Error()).SetInternal(err)
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)).SetInternal(err)
	}
}

func eventIDParam(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid event id")
	}
	return uint(id), nil
}

func registrationIDParam(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid registration id")
	}
	return id, nil
}

// positiveQuery reads an optional positive integer query parameter. A
// missing parameter is 0.
func positiveQuery(c echo.Context, name string) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return n, nil
}

func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := validator.Validate(c.Request().Context(), req); err != nil {
		return httpError(err)
	}
	return nil
}
