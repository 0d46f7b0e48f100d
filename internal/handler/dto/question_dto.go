package dto

import (
	"encoding/json"
	"net/http"

	"github.com/yourusername/question-bank/internal/domain/entity"
	"github.com/yourusername/question-bank/internal/handler/helper"
	"github.com/yourusername/question-bank/internal/service"
)

// ============================================================================
// Запросы
// ============================================================================

// SearchRequest - тело POST /questions/ в режиме поиска
type SearchRequest struct {
	SearchTerm *string `json:"search_term"`
}

// HasTerm сообщает, задан ли непустой поисковый запрос
func (r SearchRequest) HasTerm() bool {
	return r.SearchTerm != nil && *r.SearchTerm != ""
}

// CreateQuestionRequest - тело POST /questions/ в режиме создания.
// category принимает строку или число, difficulty - число или числовую строку.
type CreateQuestionRequest struct {
	Question   *string          `json:"question"`
	Answer     *string          `json:"answer"`
	Category   *json.RawMessage `json:"category"`
	Difficulty *json.RawMessage `json:"difficulty"`
}

// ToInput преобразует запрос во входные данные сервиса.
// Непреобразуемые значения считаются отсутствующими.
func (r CreateQuestionRequest) ToInput() service.CreateQuestionInput {
	input := service.CreateQuestionInput{
		Question: r.Question,
		Answer:   r.Answer,
	}
	if r.Category != nil {
		if category, ok := helper.ScalarToString(*r.Category); ok {
			input.Category = &category
		}
	}
	if r.Difficulty != nil {
		if difficulty, ok := helper.ScalarToInt(*r.Difficulty); ok {
			input.Difficulty = &difficulty
		}
	}
	return input
}

// QuizCategory - выбранная в квизе категория; id может быть строкой или числом
type QuizCategory struct {
	Type string          `json:"type"`
	ID   json.RawMessage `json:"id"`
}

// QuizRequest - тело POST /quizzes/
type QuizRequest struct {
	PreviousQuestions []uint        `json:"previous_questions"`
	QuizCategory      *QuizCategory `json:"quiz_category"`
}

// ToDraw преобразует запрос в параметры выбора вопроса.
// Отсутствующая категория, "0" и 0 означают все категории.
func (r QuizRequest) ToDraw() service.QuizDraw {
	draw := service.QuizDraw{PreviousIDs: r.PreviousQuestions}
	if r.QuizCategory != nil {
		if id, ok := helper.ScalarToString(r.QuizCategory.ID); ok && !entity.IsAllCategories(id) {
			draw.CategoryID = id
		}
	}
	return draw
}

// ============================================================================
// Ответы
// ============================================================================

// QuestionResponse представляет вопрос в формате для ответа клиенту
type QuestionResponse struct {
	ID         uint   `json:"id"`
	Question   string `json:"question"`
	Answer     string `json:"answer"`
	Category   string `json:"category"`
	Difficulty int    `json:"difficulty"`
}

// CategoriesResponse - ответ GET /categories/
type CategoriesResponse struct {
	Success    bool     `json:"success"`
	Categories []string `json:"categories"`
}

// QuestionListResponse - постраничный листинг вопросов
type QuestionListResponse struct {
	Success         bool               `json:"success"`
	CurrentPage     int                `json:"current_page"`
	Categories      []string           `json:"categories"`
	CurrentCategory string             `json:"current_category"`
	TotalQuestions  int                `json:"total_questions"`
	TotalInPage     int                `json:"total_in_page"`
	Questions       []QuestionResponse `json:"questions"`
}

// SearchResponse - результат поиска
type SearchResponse struct {
	Success         bool               `json:"success"`
	Questions       []QuestionResponse `json:"questions"`
	TotalQuestions  int                `json:"total_questions"`
	CurrentCategory string             `json:"current_category"`
}

// CreateQuestionResponse - результат создания вопроса
type CreateQuestionResponse struct {
	Success          bool               `json:"success"`
	Created          uint               `json:"created"`
	CurrentQuestions []QuestionResponse `json:"current_questions"`
	TotalQuestions   int                `json:"total_questions"`
	TotalInPage      int                `json:"total_in_page"`
	CurrentPage      int                `json:"current_page"`
}

// DeleteQuestionResponse - результат удаления вопроса
type DeleteQuestionResponse struct {
	Success          bool               `json:"success"`
	Deleted          uint               `json:"deleted"`
	CurrentQuestions []QuestionResponse `json:"current_questions"`
	TotalQuestions   int                `json:"total_questions"`
	TotalInPage      int                `json:"total_in_page"`
	CurrentPage      int                `json:"current_page"`
}

// QuestionDetailResponse - ответ GET /questions/{id}/
type QuestionDetailResponse struct {
	Success  bool             `json:"success"`
	Question QuestionResponse `json:"question"`
}

// QuizResponse - следующий вопрос квиза; null, если пул исчерпан
type QuizResponse struct {
	Success  bool              `json:"success"`
	Question *QuestionResponse `json:"question"`
}

// ErrorResponse - единый формат ошибки
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   int    `json:"error"`
	Message string `json:"message"`
}

// NewQuestionResponse создает DTO для вопроса
func NewQuestionResponse(q *entity.Question) QuestionResponse {
	return QuestionResponse{
		ID:         q.ID,
		Question:   q.Question,
		Answer:     q.Answer,
		Category:   q.Category,
		Difficulty: q.Difficulty,
	}
}

// NewQuestionListResponse создает срез DTO; для пустого списка возвращает [], а не null
func NewQuestionListResponse(questions []entity.Question) []QuestionResponse {
	list := make([]QuestionResponse, len(questions))
	for i := range questions {
		list[i] = NewQuestionResponse(&questions[i])
	}
	return list
}

// NewCategoriesResponse создает DTO для справочника категорий
func NewCategoriesResponse(categories []entity.Category) *CategoriesResponse {
	return &CategoriesResponse{
		Success:    true,
		Categories: entity.CategoryNames(categories),
	}
}

// NewQuestionListingResponse создает DTO для листинга
func NewQuestionListingResponse(listing *service.QuestionListing) *QuestionListResponse {
	return &QuestionListResponse{
		Success:         true,
		CurrentPage:     listing.Page,
		Categories:      listing.Categories,
		CurrentCategory: listing.CurrentCategory,
		TotalQuestions:  listing.Total,
		TotalInPage:     len(listing.Questions),
		Questions:       NewQuestionListResponse(listing.Questions),
	}
}

// NewSearchResponse создает DTO для результата поиска
func NewSearchResponse(result *service.SearchResult) *SearchResponse {
	return &SearchResponse{
		Success:         true,
		Questions:       NewQuestionListResponse(result.Questions),
		TotalQuestions:  result.Total,
		CurrentCategory: result.CurrentCategory,
	}
}

// NewCreateQuestionResponse создает DTO для результата создания
func NewCreateQuestionResponse(result *service.MutationResult) *CreateQuestionResponse {
	return &CreateQuestionResponse{
		Success:          true,
		Created:          result.QuestionID,
		CurrentQuestions: NewQuestionListResponse(result.Questions),
		TotalQuestions:   result.Total,
		TotalInPage:      len(result.Questions),
		CurrentPage:      result.Page,
	}
}

// NewDeleteQuestionResponse создает DTO для результата удаления
func NewDeleteQuestionResponse(result *service.MutationResult) *DeleteQuestionResponse {
	return &DeleteQuestionResponse{
		Success:          true,
		Deleted:          result.QuestionID,
		CurrentQuestions: NewQuestionListResponse(result.Questions),
		TotalQuestions:   result.Total,
		TotalInPage:      len(result.Questions),
		CurrentPage:      result.Page,
	}
}

// NewQuizResponse создает DTO для шага квиза
func NewQuizResponse(q *entity.Question) *QuizResponse {
	resp := &QuizResponse{Success: true}
	if q != nil {
		question := NewQuestionResponse(q)
		resp.Question = &question
	}
	return resp
}

// Фиксированные тексты единого формата ошибки
var errorMessages = map[int]string{
	http.StatusBadRequest:          "bad request",
	http.StatusNotFound:            "Resource not found",
	http.StatusMethodNotAllowed:    "method not allowed",
	http.StatusUnprocessableEntity: "unprocessable",
	http.StatusTooManyRequests:     "too many requests",
	http.StatusInternalServerError: "server error",
}

// NewErrorResponse создает тело ошибки для HTTP-статуса.
// Неизвестный статус получает текст "server error".
func NewErrorResponse(status int) *ErrorResponse {
	msg, ok := errorMessages[status]
	if !ok {
		msg = errorMessages[http.StatusInternalServerError]
	}
	return &ErrorResponse{Success: false, Error: status, Message: msg}
}
