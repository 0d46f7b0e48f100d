package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/question-bank/internal/handler/dto"
	apperrors "github.com/yourusername/question-bank/internal/pkg/errors"
	"github.com/yourusername/question-bank/internal/service"
)

// QuizHandler выдает следующий вопрос квиза
type QuizHandler struct {
	quizService *service.QuizService
}

// NewQuizHandler создает новый обработчик квиза
func NewQuizHandler(quizService *service.QuizService) *QuizHandler {
	return &QuizHandler{quizService: quizService}
}

// NextQuestion возвращает вопрос, которого нет в previous_questions.
// Исчерпанный пул - не ошибка: question равен null.
// POST /quizzes/
func (h *QuizHandler) NextQuestion(c *gin.Context) {
	var req dto.QuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, fmt.Errorf("%w: %v", apperrors.ErrBadRequest, err))
		return
	}

	question, err := h.quizService.NextQuestion(req.ToDraw())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewQuizResponse(question))
}
