package handler

import (
	"errors"
	"fmt"
	"net/http"

	"crm-service/internal/apperror"
	"crm-service/pkg/logger"
	"crm-service/pkg/validator"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const internalErrorDetail = "Erro interno do servidor"

// ErrorHandler renders every error returned by a handler or middleware as
// {"detail": ...} with the status of its kind
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	log := logger.FromContext(c)

	status, detail := http.StatusInternalServerError, internalErrorDetail

	var appErr *apperror.Error
	var validationErr *validator.Error
	var httpErr *echo.HTTPError
	switch {
	case errors.As(err, &appErr):
		status, detail = appErr.HTTPStatus(), appErr.Detail
	case errors.As(err, &validationErr):
		status, detail = http.StatusUnprocessableEntity, validationErr.Error()
	case errors.As(err, &httpErr):
		status, detail = httpErr.Code, fmt.Sprint(httpErr.Message)
	}

	if status >= http.StatusInternalServerError {
		log.Error("Request failed", zap.Error(err))
		detail = internalErrorDetail
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, echo.Map{"detail": detail})
	}
	if err != nil {
		log.Error("Failed to write error response", zap.Error(err))
	}
}
