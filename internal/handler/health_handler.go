package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/question-bank/internal/logging"
)

// Pinger проверяет доступность хранилища
type Pinger interface {
	Ping() error
}

// HealthHandler отвечает на проверки живости
type HealthHandler struct {
	store Pinger
}

// NewHealthHandler создает новый обработчик проверки здоровья
func NewHealthHandler(store Pinger) *HealthHandler {
	return &HealthHandler{store: store}
}

// Health пингует хранилище
// GET /healthz
func (h *HealthHandler) Health(c *gin.Context) {
	if err := h.store.Ping(); err != nil {
		logging.FromContext(c.Request.Context()).Warn().Err(err).Msg("health check failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
