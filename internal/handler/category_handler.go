package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/question-bank/internal/handler/dto"
	"github.com/yourusername/question-bank/internal/service"
)

// CategoryHandler обрабатывает запросы к справочнику категорий
type CategoryHandler struct {
	questionService *service.QuestionService
}

// NewCategoryHandler создает новый обработчик категорий
func NewCategoryHandler(questionService *service.QuestionService) *CategoryHandler {
	return &CategoryHandler{questionService: questionService}
}

// ListCategories возвращает все категории
// GET /categories/
func (h *CategoryHandler) ListCategories(c *gin.Context) {
	categories, err := h.questionService.ListCategories()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewCategoriesResponse(categories))
}

// ListCategoryQuestions возвращает страницу вопросов категории
// GET /categories/:id/questions/?page=N
func (h *CategoryHandler) ListCategoryQuestions(c *gin.Context) {
	listing, err := h.questionService.ListByCategory(c.Param("id"), service.ParsePage(c.Query("page")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewQuestionListingResponse(listing))
}
