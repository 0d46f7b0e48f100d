package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/question-bank/internal/handler/dto"
	"github.com/yourusername/question-bank/internal/logging"
	apperrors "github.com/yourusername/question-bank/internal/pkg/errors"
)

// respondError переводит ошибку сервиса в HTTP-статус и единое тело ошибки
func respondError(c *gin.Context, err error) {
	status := statusForError(err)
	if status == http.StatusInternalServerError {
		logging.FromContext(c.Request.Context()).Error().Err(err).
			Str("path", c.Request.URL.Path).
			Msg("internal server error")
	}
	c.AbortWithStatusJSON(status, dto.NewErrorResponse(status))
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrUnprocessable):
		return http.StatusUnprocessableEntity
	case errors.Is(err, apperrors.ErrBadRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// NotFound - обработчик для несуществующих маршрутов
func NotFound(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusNotFound, dto.NewErrorResponse(http.StatusNotFound))
}

// MethodNotAllowed - обработчик для неподдерживаемого HTTP-метода
func MethodNotAllowed(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusMethodNotAllowed, dto.NewErrorResponse(http.StatusMethodNotAllowed))
}

// Recovery превращает панику обработчика в 500 с единым телом
func Recovery(c *gin.Context, recovered any) {
	logging.FromContext(c.Request.Context()).Error().
		Interface("panic", recovered).
		Str("path", c.Request.URL.Path).
		Msg("panic recovered")
	c.AbortWithStatusJSON(http.StatusInternalServerError, dto.NewErrorResponse(http.StatusInternalServerError))
}
