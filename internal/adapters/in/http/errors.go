package http

import (
	"errors"
	"net/http"

	"kiosk/internal/core/domain/model/order"
	"kiosk/internal/core/domain/services"
	"kiosk/internal/generated/servers"
	"kiosk/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// statusFor maps the error taxonomy onto HTTP. Order matters: the more
// specific sentinels come before the kinds they also match.
func statusFor(err error) int {
	switch {
	case errs.IsValidation(err):
		return http.StatusBadRequest
	case errors.Is(err, errs.ErrSignatureInvalid):
		return http.StatusUnauthorized
	case errors.Is(err, errs.ErrObjectNotFound):
		return http.StatusNotFound
	case errors.Is(err, order.ErrPickupCodeExpired):
		return http.StatusGone
	case errors.Is(err, order.ErrNoAssets):
		return http.StatusUnprocessableEntity
	case errors.Is(err, errs.ErrInvalidState),
		errors.Is(err, errs.ErrPreconditionFailed),
		errors.Is(err, errs.ErrObjectAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, services.ErrPickupCodesExhausted):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func respondError(ctx echo.Context, err error) error {
	code := statusFor(err)

	msg := err.Error()
	switch code {
	case http.StatusUnauthorized:
		msg = errs.ErrSignatureInvalid.Error()
	case http.StatusInternalServerError, http.StatusServiceUnavailable:
		ctx.Logger().Errorf("%s %s: %v", ctx.Request().Method, ctx.Path(), err)
		msg = http.StatusText(code)
	}

	return ctx.JSON(code, servers.Error{Code: code, Message: msg})
}

func badRequest(ctx echo.Context, msg string) error {
	return ctx.JSON(http.StatusBadRequest, servers.Error{Code: http.StatusBadRequest, Message: msg})
}

// errorHandler renders errors raised outside the handlers, such as unknown
// routes and malformed path parameters, in the servers.Error shape.
func errorHandler(err error, ctx echo.Context) {
	if ctx.Response().Committed {
		return
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg, ok := he.Message.(string)
		if !ok {
			msg = http.StatusText(he.Code)
		}
		err = ctx.JSON(he.Code, servers.Error{Code: he.Code, Message: msg})
	} else {
		err = respondError(ctx, err)
	}
	if err != nil {
		ctx.Logger().Error(err)
	}
}
