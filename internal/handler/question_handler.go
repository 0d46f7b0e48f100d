package handler

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/xuri/excelize/v2"

	"github.com/yourusername/question-bank/internal/domain/entity"
	"github.com/yourusername/question-bank/internal/handler/dto"
	"github.com/yourusername/question-bank/internal/handler/helper"
	"github.com/yourusername/question-bank/internal/logging"
	apperrors "github.com/yourusername/question-bank/internal/pkg/errors"
	"github.com/yourusername/question-bank/internal/service"
)

// QuestionIDKey - ключ ID вопроса в контексте Gin
const QuestionIDKey = "questionID"

var exportHeaders = []string{"id", "question", "answer", "category", "difficulty"}

// QuestionHandler обрабатывает запросы к банку вопросов
type QuestionHandler struct {
	questionService *service.QuestionService
}

// NewQuestionHandler создает новый обработчик вопросов
func NewQuestionHandler(questionService *service.QuestionService) *QuestionHandler {
	return &QuestionHandler{questionService: questionService}
}

// ListQuestions возвращает страницу всех вопросов
// GET /questions/?page=N
func (h *QuestionHandler) ListQuestions(c *gin.Context) {
	listing, err := h.questionService.ListQuestions(service.ParsePage(c.Query("page")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewQuestionListingResponse(listing))
}

// CreateOrSearch обслуживает POST /questions/: непустой search_term
// включает поиск, иначе тело трактуется как новый вопрос
func (h *QuestionHandler) CreateOrSearch(c *gin.Context) {
	var search dto.SearchRequest
	// ShouldBindBodyWith кеширует тело, чтобы разобрать его второй раз
	if err := c.ShouldBindBodyWith(&search, binding.JSON); err != nil {
		respondError(c, fmt.Errorf("%w: %v", apperrors.ErrBadRequest, err))
		return
	}

	page := service.ParsePage(c.Query("page"))

	if search.HasTerm() {
		result, err := h.questionService.SearchQuestions(*search.SearchTerm, page)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.NewSearchResponse(result))
		return
	}

	var req dto.CreateQuestionRequest
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		respondError(c, fmt.Errorf("%w: %v", apperrors.ErrBadRequest, err))
		return
	}

	result, err := h.questionService.CreateQuestion(req.ToInput(), page)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewCreateQuestionResponse(result))
}

// GetQuestion возвращает один вопрос
// GET /questions/:id/
func (h *QuestionHandler) GetQuestion(c *gin.Context) {
	id := c.MustGet(QuestionIDKey).(uint)

	question, err := h.questionService.GetQuestion(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.QuestionDetailResponse{
		Success:  true,
		Question: dto.NewQuestionResponse(question),
	})
}

// DeleteQuestion удаляет вопрос и возвращает обновленный листинг
// DELETE /questions/:id/?page=N
func (h *QuestionHandler) DeleteQuestion(c *gin.Context) {
	id := c.MustGet(QuestionIDKey).(uint)

	result, err := h.questionService.DeleteQuestion(id, service.ParsePage(c.Query("page")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewDeleteQuestionResponse(result))
}

// ExportQuestions выгружает все вопросы в CSV или Excel
// GET /questions/export/?format=csv|xlsx
func (h *QuestionHandler) ExportQuestions(c *gin.Context) {
	format := c.DefaultQuery("format", "csv")
	if format != "csv" && format != "xlsx" {
		respondError(c, fmt.Errorf("%w: unsupported export format %q", apperrors.ErrBadRequest, format))
		return
	}

	questions, err := h.questionService.ExportQuestions()
	if err != nil {
		respondError(c, err)
		return
	}

	filename := "questions_" + time.Now().Format("2006-01-02")
	if format == "xlsx" {
		h.exportXLSX(c, questions, filename)
		return
	}
	h.exportCSV(c, questions, filename)
}

func (h *QuestionHandler) exportCSV(c *gin.Context, questions []entity.Question, filename string) {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.csv\"", filename))
	c.Status(http.StatusOK)

	// BOM для корректного отображения UTF-8 в Excel
	c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})

	writer := csv.NewWriter(c.Writer)
	writer.Write(exportHeaders)
	for _, q := range questions {
		writer.Write([]string{
			strconv.FormatUint(uint64(q.ID), 10),
			helper.SanitizeForExcel(q.Question),
			helper.SanitizeForExcel(q.Answer),
			helper.SanitizeForExcel(q.Category),
			strconv.Itoa(q.Difficulty),
		})
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		logging.FromContext(c.Request.Context()).Error().Err(err).Msg("csv export failed")
	}
}

func (h *QuestionHandler) exportXLSX(c *gin.Context, questions []entity.Question, filename string) {
	log := logging.FromContext(c.Request.Context())

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Questions"
	f.SetSheetName("Sheet1", sheetName)

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		respondError(c, fmt.Errorf("failed to create xlsx stream writer: %w", err))
		return
	}

	headers := make([]interface{}, len(exportHeaders))
	for i, name := range exportHeaders {
		headers[i] = name
	}
	if err := sw.SetRow("A1", headers); err != nil {
		respondError(c, fmt.Errorf("failed to write xlsx header: %w", err))
		return
	}

	for i, q := range questions {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []interface{}{
			q.ID,
			helper.SanitizeForExcel(q.Question),
			helper.SanitizeForExcel(q.Answer),
			helper.SanitizeForExcel(q.Category),
			q.Difficulty,
		}
		if err := sw.SetRow(cell, row); err != nil {
			respondError(c, fmt.Errorf("failed to write xlsx row %d: %w", i+2, err))
			return
		}
	}

	if err := sw.Flush(); err != nil {
		respondError(c, fmt.Errorf("failed to flush xlsx: %w", err))
		return
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.xlsx\"", filename))
	c.Status(http.StatusOK)
	if err := f.Write(c.Writer); err != nil {
		log.Error().Err(err).Msg("xlsx export failed")
	}
}
