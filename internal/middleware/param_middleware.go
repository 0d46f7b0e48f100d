package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/question-bank/internal/handler/dto"
)

// ExtractUintParam создает middleware для извлечения числового параметра URL.
// paramName - имя параметра в URL (например, "id").
// contextKey - ключ, под которым значение будет сохранено в контексте Gin.
// Нечисловой идентификатор не совпадает ни с одним ресурсом, поэтому отвечаем 404.
// ID в таблицах - SERIAL (int4), значения больше math.MaxInt32 тоже дают 404.
func ExtractUintParam(paramName, contextKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param(paramName), 10, 31)
		if err != nil {
			AbortWithError(c, http.StatusNotFound)
			return
		}
		c.Set(contextKey, uint(id))
		c.Next()
	}
}

// AbortWithError прерывает цепочку и отдает единое тело ошибки
func AbortWithError(c *gin.Context, status int) {
	c.AbortWithStatusJSON(status, dto.NewErrorResponse(status))
}
