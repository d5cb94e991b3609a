package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/todone/internal/validation"
)

var (
	errInvalidRequestBody = errors.New("invalid request body")
	errTodoNotFound       = errors.New("todo not found")
	errValidationFailed   = errors.New("validation failed")
	errRouteNotFound      = errors.New("route not found")
	errInternalServer     = errors.New("internal server error")
	errOriginNotAllowed   = errors.New("origin not allowed")
)

type apiError struct {
	Code    int                `json:"-"`
	Message string             `json:"message"`
	Path    string             `json:"path,omitempty"`
	Errors  []validation.Issue `json:"errors,omitempty"`
	Stack   string             `json:"stack,omitempty"`
}

func newAPIError(code int, message string) apiError {
	return apiError{
		Code:    code,
		Message: message,
	}
}

func (e apiError) Error() string {
	return e.Message
}

func abort(c *gin.Context, err apiError) {
	c.AbortWithStatusJSON(err.Code, err)
}

func newBadRequestError(message string) apiError {
	return newAPIError(http.StatusBadRequest, message)
}

func newNotFoundError(message string) apiError {
	return newAPIError(http.StatusNotFound, message)
}

func newForbiddenError(message string) apiError {
	return newAPIError(http.StatusForbidden, message)
}

func newValidationError(err *validation.Error) apiError {
	apiErr := newBadRequestError(errValidationFailed.Error())
	apiErr.Errors = err.Issues
	return apiErr
}

// newInternalError hides the cause unless diagnostics are enabled.
func (h *handlerImpl) newInternalError(stack string) apiError {
	apiErr := newAPIError(http.StatusInternalServerError, errInternalServer.Error())
	if h.diagnostics {
		apiErr.Stack = stack
	}
	return apiErr
}

// errorChain renders err and every error it wraps, outermost first.
func errorChain(err error) string {
	chain := err.Error()
	for wrapped := errors.Unwrap(err); wrapped != nil; wrapped = errors.Unwrap(wrapped) {
		chain += "\n    caused by: " + wrapped.Error()
	}
	return chain
}
