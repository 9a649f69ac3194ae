package api

import (
	"log/slog"
	"net/http"

	echo "github.com/labstack/echo/v5"

	"github.com/codeready-toolchain/contestcore/pkg/errs"
)

// mapCoreError maps a Core error's Kind to an HTTP error response, the way
// the teacher's mapServiceError maps its services package's sentinel errors
// — except here every Core error already carries a machine-readable Kind
// (spec §7), so there is one mapping table instead of an errors.Is chain.
func mapCoreError(err error) *echo.HTTPError {
	kind := errs.KindOf(err)
	status, ok := kindStatus[kind]
	if !ok {
		slog.Error("unmapped core error kind", "kind", kind, "error", err)
		status = http.StatusInternalServerError
	}
	if status == http.StatusInternalServerError {
		slog.Error("internal core error", "error", err)
		return echo.NewHTTPError(status, "internal server error")
	}
	return echo.NewHTTPError(status, errorBody{Kind: string(kind), Detail: err.Error()})
}

var kindStatus = map[errs.Kind]int{
	errs.KindUnauthorized:       http.StatusUnauthorized,
	errs.KindForbidden:          http.StatusForbidden,
	errs.KindNotFound:           http.StatusNotFound,
	errs.KindInvalidState:       http.StatusConflict,
	errs.KindInvalidInput:       http.StatusBadRequest,
	errs.KindInsufficientCredit: http.StatusPaymentRequired,
	errs.KindProviderError:      http.StatusBadGateway,
	errs.KindParseError:         http.StatusUnprocessableEntity,
	errs.KindConflict:           http.StatusConflict,
	errs.KindInternal:           http.StatusInternalServerError,
}

// errorBody is the machine-readable envelope spec §6 requires: kind plus a
// free-form detail.
type errorBody struct {
	Kind   string `json:"kind"`
	Detail string `json:"detail"`
}
