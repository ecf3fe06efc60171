package httperr

import (
	"net/http"

	"storefront-core/internal/pkg/errs"

	"github.com/gin-gonic/gin"
)

type Response struct {
	Status int `json:"-"`
	Error  struct {
		Code    string `json:"code,omitempty"`
		Message string `json:"message"`
	} `json:"error"`
	Detail any `json:"detail,omitempty"`
}

type classMapping struct {
	class  error
	status int
	code   string
}

// Order matters: the first class an error is marked with wins.
var classMappings = []classMapping{
	{errs.ErrUnauthorized, http.StatusUnauthorized, "UNAUTHORIZED"},
	{errs.ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
	{errs.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
	{errs.ErrInvalidInput, http.StatusBadRequest, "INVALID_INPUT"},
	{errs.ErrInvalidTransition, http.StatusConflict, "INVALID_TRANSITION"},
	{errs.ErrDuplicateReview, http.StatusConflict, "DUPLICATE_REVIEW"},
	{errs.ErrNotEligible, http.StatusUnprocessableEntity, "NOT_ELIGIBLE"},
	{errs.ErrInvalidOrExpired, http.StatusGone, "CODE_INVALID_OR_EXPIRED"},
	{errs.ErrTooManyAttempts, http.StatusTooManyRequests, "TOO_MANY_ATTEMPTS"},
	{errs.ErrIncorrectCode, http.StatusBadRequest, "INCORRECT_CODE"},
	{errs.ErrDependencyFailure, http.StatusBadGateway, "DEPENDENCY_FAILURE"},
}

// Classify maps an error to its HTTP status and machine-readable code.
// Unclassified errors are internal.
func Classify(err error) (int, string) {
	for _, m := range classMappings {
		if errs.Is(err, m.class) {
			return m.status, m.code
		}
	}
	return http.StatusInternalServerError, "INTERNAL"
}

// AbortWithError preserves the original error on the gin context for the
// logging middleware.
func AbortWithError(c *gin.Context, status int, err error, msg string, detail any) {
	abort(c, status, "", err, msg, detail)
}

// AbortWithClassified derives status and code from the error's class. Client
// errors carry the error text; server errors get a generic message.
func AbortWithClassified(c *gin.Context, err error) {
	status, code := Classify(err)
	msg := err.Error()
	switch {
	case status == http.StatusBadGateway:
		msg = "Upstream service unavailable"
	case status >= http.StatusInternalServerError:
		msg = "Internal server error"
	}
	abort(c, status, code, err, msg, nil)
}

func abort(c *gin.Context, status int, code string, err error, msg string, detail any) {
	if err == nil {
		panic("AbortWithError: err cannot be nil")
	}

	resp := Response{Status: status}
	resp.Error.Code = code
	resp.Error.Message = msg
	resp.Detail = detail

	_ = c.Error(gin.Error{
		Err:  err,
		Type: gin.ErrorTypePublic,
		Meta: resp,
	})
	c.AbortWithStatusJSON(status, resp)
}
