package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/octobees/rentroom/api/internal/apperror"
	"github.com/octobees/rentroom/api/internal/listquery"
	"github.com/octobees/rentroom/api/internal/middleware"
	"github.com/octobees/rentroom/api/internal/response"
	"github.com/octobees/rentroom/api/internal/service"
)

// RespondError maps err onto the envelope and status the API promises for it.
// Anything unrecognised is logged and answered with a generic 500.
func RespondError(c echo.Context, log *zap.Logger, err error) error {
	var qe *listquery.ValidationError
	var nf apperror.NotFoundError

	switch {
	case errors.As(err, &qe):
		return response.Fail(c, http.StatusBadRequest, fmt.Sprintf("%s: %s", response.MessageQueryInvalid, qe.Error()))
	case errors.As(err, &nf):
		return response.Fail(c, http.StatusNotFound, nf.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		return response.Fail(c, http.StatusUnauthorized, "Invalid email or password.")
	case errors.Is(err, service.ErrInvalidSubject):
		return response.Fail(c, http.StatusUnauthorized, response.MessageUnauthorized)
	}

	if fe, ok := apperror.AsFieldErrors(err); ok {
		return response.Invalid(c, fe.Error(), fe)
	}

	if log == nil {
		log = zap.NewNop()
	}
	log.Error("request failed",
		zap.String("request_id", middleware.RequestIDFromContext(c)),
		zap.String("method", c.Request().Method),
		zap.String("path", c.Path()),
		zap.Error(err),
	)
	return response.WentWrong(c)
}

// bindJSON decodes the request body, answering 400 on malformed input.
func bindJSON(c echo.Context, dst any) (bool, error) {
	if err := c.Bind(dst); err != nil {
		return false, response.Fail(c, http.StatusBadRequest, "Invalid request payload.")
	}
	return true, nil
}

// pathID parses the :id parameter as a positive integer. On failure the 422
// response has already been written and ok is false.
func pathID(c echo.Context) (int64, bool, error) {
	raw := strings.TrimSpace(c.Param("id"))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		errs := apperror.FieldErrors{}
		errs.Add("id", "The id field must be an integer.")
		return 0, false, response.Invalid(c, errs.Error(), errs)
	}
	if id < 1 {
		errs := apperror.FieldErrors{}
		errs.Add("id", "The id field must be at least 1.")
		return 0, false, response.Invalid(c, errs.Error(), errs)
	}
	return id, true, nil
}

// listRequest lifts the listing parameters out of the query string.
func listRequest(c echo.Context) listquery.Request {
	return listquery.FromValues(c.QueryParams())
}
