package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/twiced-technology-gmbh/tasktracker/internal/clierr"
	"github.com/twiced-technology-gmbh/tasktracker/internal/output"
)

// statusCodes maps error codes to HTTP statuses. Unlisted codes are 500.
var statusCodes = map[string]int{
	clierr.NotFound:         http.StatusNotFound,
	clierr.ScheduleConflict: http.StatusConflict,
	clierr.InvalidInput:     http.StatusBadRequest,
	clierr.InvalidReference: http.StatusBadRequest,
	clierr.InvalidStatus:    http.StatusBadRequest,
	clierr.InvalidKind:      http.StatusBadRequest,
	clierr.InvalidDate:      http.StatusBadRequest,
	clierr.InvalidTaskID:    http.StatusBadRequest,
}

func (srv *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status, resp := errorResponse(err)
	if status >= http.StatusInternalServerError {
		srv.log.Error().Err(err).Str("path", c.Request().URL.Path).Msg("request failed")
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, resp)
	}
	if err != nil {
		srv.log.Error().Err(err).Msg("writing error response")
	}
}

func errorResponse(err error) (int, output.ErrorResponse) {
	var ce *clierr.Error
	if errors.As(err, &ce) {
		status, ok := statusCodes[ce.Code]
		if !ok {
			status = http.StatusInternalServerError
		}
		return status, output.ErrorResponse{Error: ce.Message, Code: ce.Code, Details: ce.Details}
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code := clierr.InternalError
		switch he.Code {
		case http.StatusNotFound:
			code = clierr.NotFound
		case http.StatusBadRequest, http.StatusMethodNotAllowed:
			code = clierr.InvalidInput
		}
		return he.Code, output.ErrorResponse{Error: fmt.Sprint(he.Message), Code: code}
	}

	return http.StatusInternalServerError, output.ErrorResponse{
		Error: "internal error",
		Code:  clierr.InternalError,
	}
}
