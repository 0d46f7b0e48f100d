package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

const (
	corsAllowHeaders = "Content-Type, Authorization, Data-Type"
	corsAllowMethods = "GET, PUT, POST, DELETE, PATCH, OPTIONS"
)

// CORS разрешает запросы с любого origin вместе с credentials.
// Origin отражается обратно, так как "*" несовместим с credentials.
func CORS() gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOriginFunc:  func(string) bool { return true },
		AllowMethods:     []string{"GET", "PUT", "POST", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Authorization", "Data-Type"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}

// CORSHeaders проставляет разрешающие заголовки на каждый ответ,
// включая запросы без Origin и ответы об ошибках
func CORSHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Headers", corsAllowHeaders)
		h.Set("Access-Control-Allow-Methods", corsAllowMethods)
		h.Set("Access-Control-Allow-Credentials", "true")
		c.Next()
	}
}
