package echo

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	app "github.com/mohammadpnp/candidate-import/internal/application/bulkimport"
)

const (
	codeBadRequest          = "BAD_REQUEST"
	codeInvalidFormat       = "INVALID_FORMAT"
	codeNoAccount           = "NO_ACCOUNT"
	codeInsufficientCredits = "INSUFFICIENT_CREDITS"
	codeNotFound            = "NOT_FOUND"
	codeInvalidState        = "INVALID_STATE"
	codeInternal            = "INTERNAL_ERROR"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type apiResponse struct {
	Data  any        `json:"data,omitempty"`
	Error *errorBody `json:"error,omitempty"`
}

func writeError(c echo.Context, status int, code, message string) error {
	return c.JSON(status, apiResponse{Error: &errorBody{Code: code, Message: message}})
}

// writeUseCaseError maps application errors to the control-surface codes.
// Internal failures never leak their cause to the caller.
func writeUseCaseError(c echo.Context, err error, internalMessage string) error {
	switch {
	case errors.Is(err, app.ErrInvalidUserID):
		return writeError(c, http.StatusBadRequest, codeBadRequest, err.Error())
	case errors.Is(err, app.ErrInvalidFormat):
		return writeError(c, http.StatusBadRequest, codeInvalidFormat, err.Error())
	case errors.Is(err, app.ErrNoAccount):
		return writeError(c, http.StatusBadRequest, codeNoAccount, err.Error())
	case errors.Is(err, app.ErrInsufficientCredits):
		return writeError(c, http.StatusBadRequest, codeInsufficientCredits, err.Error())
	case errors.Is(err, app.ErrImportNotFound):
		return writeError(c, http.StatusNotFound, codeNotFound, "import job not found")
	case errors.Is(err, app.ErrInvalidState):
		return writeError(c, http.StatusConflict, codeInvalidState, "import job is not in draft state")
	default:
		c.Logger().Error(err)
		return writeError(c, http.StatusInternalServerError, codeInternal, internalMessage)
	}
}
