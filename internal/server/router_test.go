package server

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yourusername/question-bank/internal/domain/entity"
	"github.com/yourusername/question-bank/internal/handler"
	"github.com/yourusername/question-bank/internal/middleware"
	"github.com/yourusername/question-bank/internal/repository/postgres"
	"github.com/yourusername/question-bank/internal/service"
	"github.com/yourusername/question-bank/pkg/database"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	router    *gin.Engine
	db        *gorm.DB
	questions []entity.Question
	logs      *bytes.Buffer
}

// newTestEnv собирает роутер поверх sqlite с засеянными категориями и вопросами:
// Science - 3, Art - 2, Geography - 0, History - 10 (всего 15)
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := database.NewSQLiteDB(filepath.Join(t.TempDir(), "api.db"), logger.Silent)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	require.NoError(t, database.SeedCategories(db))

	questionRepo := postgres.NewQuestionRepo(db)
	categoryRepo := postgres.NewCategoryRepo(db)

	var questions []entity.Question
	add := func(text, answer, category string, difficulty int) {
		q := entity.Question{Question: text, Answer: answer, Category: category, Difficulty: difficulty}
		require.NoError(t, questionRepo.Create(&q))
		questions = append(questions, q)
	}
	add("What is the heaviest organ in the human body?", "The Liver", "1", 4)
	add("Who discovered penicillin?", "Alexander Fleming", "1", 3)
	add("Hematology is a branch of medicine involving the study of what?", "Blood", "1", 4)
	add("Which Dutch graphic artist made mathematically inspired woodcuts?", "Escher", "2", 1)
	add("=HYPERLINK(\"x\") is whose formula?", "Nobody", "2", 2)
	for i := 1; i <= 10; i++ {
		add(fmt.Sprintf("History question number %d", i), fmt.Sprintf("Answer %d", i), "4", 2)
	}

	questionService := service.NewQuestionService(questionRepo, categoryRepo)
	quizService := service.NewQuizService(questionRepo, false)

	logs := &bytes.Buffer{}
	router := NewRouter(Deps{
		Logger:     zerolog.New(logs),
		Registry:   prometheus.NewRegistry(),
		Categories: handler.NewCategoryHandler(questionService),
		Questions:  handler.NewQuestionHandler(questionService),
		Quizzes:    handler.NewQuizHandler(quizService),
		Health:     handler.NewHealthHandler(questionRepo),
		RateLimit:  middleware.RateLimitConfig{MaxRequests: 10},
	})

	return &testEnv{router: router, db: db, questions: questions, logs: logs}
}

func (e *testEnv) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// parseJSONResponse парсит JSON ответ из *httptest.ResponseRecorder
func parseJSONResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), "Response body should be valid JSON: %s", w.Body.String())
	return resp
}

func assertError(t *testing.T, w *httptest.ResponseRecorder, status int, message string) {
	t.Helper()
	require.Equal(t, status, w.Code, w.Body.String())
	resp := parseJSONResponse(t, w)
	assert.Equal(t, false, resp["success"])
	assert.Equal(t, float64(status), resp["error"])
	assert.Equal(t, message, resp["message"])
}

func totalQuestions(t *testing.T, e *testEnv) float64 {
	t.Helper()
	w := e.do(http.MethodGet, "/questions/", "")
	require.Equal(t, http.StatusOK, w.Code)
	return parseJSONResponse(t, w)["total_questions"].(float64)
}

func questionIDs(resp map[string]interface{}, key string) []float64 {
	items := resp[key].([]interface{})
	out := make([]float64, len(items))
	for i, item := range items {
		out[i] = item.(map[string]interface{})["id"].(float64)
	}
	return out
}

// ============================================================================
// Категории
// ============================================================================

func TestListCategories(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(http.MethodGet, "/categories/", "")
	require.Equal(t, http.StatusOK, w.Code)

	resp := parseJSONResponse(t, w)
	assert.Equal(t, true, resp["success"])
	assert.Equal(t,
		[]interface{}{"Science", "Art", "Geography", "History", "Entertainment", "Sports"},
		resp["categories"])
}

func TestListCategoryQuestions(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(http.MethodGet, "/categories/1/questions/", "")
	require.Equal(t, http.StatusOK, w.Code)

	resp := parseJSONResponse(t, w)
	assert.Equal(t, "Science", resp["current_category"])
	assert.Equal(t, float64(3), resp["total_questions"])
	assert.Equal(t, float64(3), resp["total_in_page"])
	assert.Equal(t, float64(1), resp["current_page"])
	assert.Len(t, resp["categories"], 6)
	for _, item := range resp["questions"].([]interface{}) {
		assert.Equal(t, "1", item.(map[string]interface{})["category"])
	}
}

func TestListCategoryQuestions_EmptyIsNotFound(t *testing.T) {
	e := newTestEnv(t)

	assertError(t, e.do(http.MethodGet, "/categories/3/questions/", ""), http.StatusNotFound, "Resource not found")
	assertError(t, e.do(http.MethodGet, "/categories/99/questions/", ""), http.StatusNotFound, "Resource not found")
	assertError(t, e.do(http.MethodGet, "/categories/4/questions/?page=2", ""), http.StatusNotFound, "Resource not found")
}

// ============================================================================
// Листинг и пагинация
// ============================================================================

func TestListQuestions_Pagination(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(http.MethodGet, "/questions/", "")
	require.Equal(t, http.StatusOK, w.Code)
	resp := parseJSONResponse(t, w)
	assert.Equal(t, float64(15), resp["total_questions"])
	assert.Equal(t, float64(10), resp["total_in_page"])
	assert.Equal(t, float64(1), resp["current_page"])
	assert.Equal(t, "ALL", resp["current_category"])
	assert.Equal(t, float64(e.questions[0].ID), questionIDs(resp, "questions")[0])

	w = e.do(http.MethodGet, "/questions/?page=2", "")
	require.Equal(t, http.StatusOK, w.Code)
	resp = parseJSONResponse(t, w)
	assert.Equal(t, float64(5), resp["total_in_page"])
	assert.Equal(t, float64(2), resp["current_page"])
	assert.Equal(t, float64(e.questions[10].ID), questionIDs(resp, "questions")[0])

	assertError(t, e.do(http.MethodGet, "/questions/?page=3", ""), http.StatusNotFound, "Resource not found")
}

func TestListQuestions_BadPageFallsBackToFirst(t *testing.T) {
	e := newTestEnv(t)

	for _, page := range []string{"0", "-2", "abc"} {
		w := e.do(http.MethodGet, "/questions/?page="+page, "")
		require.Equal(t, http.StatusOK, w.Code, page)
		assert.Equal(t, float64(1), parseJSONResponse(t, w)["current_page"], page)
	}
}

// ============================================================================
// Поиск
// ============================================================================

func TestSearchQuestions(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(http.MethodPost, "/questions/", `{"search_term":"PENICILLIN"}`)
	require.Equal(t, http.StatusOK, w.Code)
	resp := parseJSONResponse(t, w)
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, float64(1), resp["total_questions"])
	assert.Equal(t, "Science", resp["current_category"], "единственный результат задает категорию")
	assert.Equal(t, []float64{float64(e.questions[1].ID)}, questionIDs(resp, "questions"))

	w = e.do(http.MethodPost, "/questions/", `{"search_term":"history question"}`)
	require.Equal(t, http.StatusOK, w.Code)
	resp = parseJSONResponse(t, w)
	assert.Equal(t, float64(10), resp["total_questions"])
	assert.Equal(t, "ALL", resp["current_category"])
}

func TestSearchQuestions_NoResultsIsSuccess(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(http.MethodPost, "/questions/", `{"search_term":"xyzzy"}`)
	require.Equal(t, http.StatusOK, w.Code)
	resp := parseJSONResponse(t, w)
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, float64(0), resp["total_questions"])
	assert.Equal(t, []interface{}{}, resp["questions"])
}

// ============================================================================
// Создание
// ============================================================================

func TestCreateQuestion(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(http.MethodPost, "/questions/",
		`{"question":"What is the capital of Peru?","answer":"Lima","category":"3","difficulty":2}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := parseJSONResponse(t, w)
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, float64(16), resp["total_questions"])
	assert.Equal(t, float64(10), resp["total_in_page"])
	assert.Equal(t, float64(1), resp["current_page"])
	created := resp["created"].(float64)
	assert.Greater(t, created, float64(e.questions[14].ID))

	assert.Equal(t, float64(16), totalQuestions(t, e))

	w = e.do(http.MethodGet, fmt.Sprintf("/questions/%d/", uint(created)), "")
	require.Equal(t, http.StatusOK, w.Code)
	q := parseJSONResponse(t, w)["question"].(map[string]interface{})
	assert.Equal(t, "Lima", q["answer"])
	assert.Equal(t, "3", q["category"])
	assert.Equal(t, float64(2), q["difficulty"])
}

func TestCreateQuestion_LooseScalars(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(http.MethodPost, "/questions/?page=2",
		`{"question":"Who won in 1930?","answer":"Uruguay","category":6,"difficulty":"4"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := parseJSONResponse(t, w)
	assert.Equal(t, float64(2), resp["current_page"])
	assert.Equal(t, float64(6), resp["total_in_page"])
	ids := questionIDs(resp, "current_questions")
	assert.Equal(t, resp["created"], ids[len(ids)-1])
}

func TestCreateQuestion_MissingFieldIsUnprocessable(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"no question", `{"answer":"a","category":"1","difficulty":1}`},
		{"no answer", `{"question":"q","category":"1","difficulty":1}`},
		{"no category", `{"question":"q","answer":"a","difficulty":1}`},
		{"no difficulty", `{"question":"q","answer":"a","category":"1"}`},
		{"null difficulty", `{"question":"q","answer":"a","category":"1","difficulty":null}`},
		{"non numeric difficulty", `{"question":"q","answer":"a","category":"1","difficulty":"hard"}`},
		{"empty object", `{}`},
		{"empty search term", `{"search_term":""}`},
		{"zero difficulty violates constraint", `{"question":"q","answer":"a","category":"1","difficulty":0}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEnv(t)
			assertError(t, e.do(http.MethodPost, "/questions/", tt.body), http.StatusUnprocessableEntity, "unprocessable")
			assert.Equal(t, float64(15), totalQuestions(t, e), "запись не создана")
		})
	}
}

func TestCreateOrSearch_MalformedBodyIsBadRequest(t *testing.T) {
	e := newTestEnv(t)

	for _, body := range []string{"", "{", `{"search_term": 12}`, `[1,2]`} {
		req := httptest.NewRequest(http.MethodPost, "/questions/", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		e.router.ServeHTTP(w, req)
		assertError(t, w, http.StatusBadRequest, "bad request")
	}
}

// ============================================================================
// Получение и удаление
// ============================================================================

func TestGetQuestion(t *testing.T) {
	e := newTestEnv(t)
	target := e.questions[3]

	w := e.do(http.MethodGet, fmt.Sprintf("/questions/%d/", target.ID), "")
	require.Equal(t, http.StatusOK, w.Code)
	resp := parseJSONResponse(t, w)
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, map[string]interface{}{
		"id":         float64(target.ID),
		"question":   target.Question,
		"answer":     "Escher",
		"category":   "2",
		"difficulty": float64(1),
	}, resp["question"])

	assertError(t, e.do(http.MethodGet, "/questions/9999/", ""), http.StatusNotFound, "Resource not found")
	assertError(t, e.do(http.MethodGet, "/questions/abc/", ""), http.StatusNotFound, "Resource not found")
}

func TestDeleteQuestion(t *testing.T) {
	e := newTestEnv(t)
	target := e.questions[0]
	path := fmt.Sprintf("/questions/%d/", target.ID)

	w := e.do(http.MethodDelete, path, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := parseJSONResponse(t, w)
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, float64(target.ID), resp["deleted"])
	assert.Equal(t, float64(14), resp["total_questions"])
	assert.Equal(t, float64(10), resp["total_in_page"])
	assert.NotContains(t, questionIDs(resp, "current_questions"), float64(target.ID))

	assertError(t, e.do(http.MethodGet, path, ""), http.StatusNotFound, "Resource not found")
	assertError(t, e.do(http.MethodDelete, path, ""), http.StatusNotFound, "Resource not found")
	assert.Equal(t, float64(14), totalQuestions(t, e))
}

func TestDeleteQuestion_Missing(t *testing.T) {
	e := newTestEnv(t)

	assertError(t, e.do(http.MethodDelete, "/questions/9999/", ""), http.StatusNotFound, "Resource not found")
	assertError(t, e.do(http.MethodDelete, "/questions/abc/", ""), http.StatusNotFound, "Resource not found")
	// за пределами int4 вопросов быть не может
	assertError(t, e.do(http.MethodDelete, "/questions/2147483648/", ""), http.StatusNotFound, "Resource not found")
	assertError(t, e.do(http.MethodGet, "/questions/3000000000/", ""), http.StatusNotFound, "Resource not found")
	assert.Equal(t, float64(15), totalQuestions(t, e))
}

// ============================================================================
// Квиз
// ============================================================================

func TestQuiz_ExhaustedCategoryReturnsNull(t *testing.T) {
	e := newTestEnv(t)

	body := fmt.Sprintf(`{"previous_questions":[%d,%d],"quiz_category":{"type":"Art","id":"2"}}`,
		e.questions[3].ID, e.questions[4].ID)
	w := e.do(http.MethodPost, "/quizzes/", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := parseJSONResponse(t, w)
	assert.Equal(t, true, resp["success"])
	question, ok := resp["question"]
	assert.True(t, ok, "ключ question присутствует")
	assert.Nil(t, question)
}

func TestQuiz_CategoriesDrawDifferentQuestions(t *testing.T) {
	e := newTestEnv(t)

	draw := func(body string) map[string]interface{} {
		w := e.do(http.MethodPost, "/quizzes/", body)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		return parseJSONResponse(t, w)["question"].(map[string]interface{})
	}

	science := draw(`{"previous_questions":[],"quiz_category":{"type":"Science","id":"1"}}`)
	history := draw(`{"previous_questions":[],"quiz_category":{"type":"History","id":4}}`)

	assert.NotEqual(t, science["id"], history["id"])
	assert.Equal(t, "1", science["category"])
	assert.Equal(t, "4", history["category"])
	assert.Equal(t, float64(e.questions[0].ID), science["id"], "первый вопрос пула")
}

func TestQuiz_SkipsPreviousQuestions(t *testing.T) {
	e := newTestEnv(t)

	seen := map[float64]bool{}
	previous := []uint{}
	for i := 0; i < len(e.questions); i++ {
		payload, err := json.Marshal(map[string]interface{}{
			"previous_questions": previous,
			"quiz_category":      map[string]interface{}{"type": "click", "id": 0},
		})
		require.NoError(t, err)

		w := e.do(http.MethodPost, "/quizzes/", string(payload))
		require.Equal(t, http.StatusOK, w.Code)
		q := parseJSONResponse(t, w)["question"].(map[string]interface{})
		id := q["id"].(float64)
		assert.False(t, seen[id], "вопрос %v повторился", id)
		seen[id] = true
		previous = append(previous, uint(id))
	}

	payload, err := json.Marshal(map[string]interface{}{"previous_questions": previous})
	require.NoError(t, err)
	w := e.do(http.MethodPost, "/quizzes/", string(payload))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, parseJSONResponse(t, w)["question"])
}

func TestQuiz_WrongMethod(t *testing.T) {
	e := newTestEnv(t)

	assertError(t, e.do(http.MethodGet, "/quizzes/", ""), http.StatusMethodNotAllowed, "method not allowed")
	assertError(t, e.do(http.MethodPut, "/categories/", ""), http.StatusMethodNotAllowed, "method not allowed")
}

func TestQuiz_MalformedBody(t *testing.T) {
	e := newTestEnv(t)
	assertError(t, e.do(http.MethodPost, "/quizzes/", `{"previous_questions":"nope"}`), http.StatusBadRequest, "bad request")
	// quiz_category должен быть объектом
	assertError(t, e.do(http.MethodPost, "/quizzes/", `{"previous_questions":[],"quiz_category":"1"}`), http.StatusBadRequest, "bad request")
}

// ============================================================================
// Экспорт
// ============================================================================

func TestExportQuestions_CSV(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(http.MethodGet, "/questions/export/", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".csv")

	body := w.Body.Bytes()
	require.True(t, bytes.HasPrefix(body, []byte{0xEF, 0xBB, 0xBF}), "BOM")

	records, err := csv.NewReader(bytes.NewReader(body[3:])).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 16)
	assert.Equal(t, []string{"id", "question", "answer", "category", "difficulty"}, records[0])
	assert.Equal(t, "The Liver", records[1][2])
	assert.True(t, strings.HasPrefix(records[5][1], "'="), "формула экранирована")
}

func TestExportQuestions_XLSX(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(http.MethodGet, "/questions/export/?format=xlsx", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", w.Header().Get("Content-Type"))

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Questions")
	require.NoError(t, err)
	require.Len(t, rows, 16)
	assert.Equal(t, "id", rows[0][0])
	assert.Equal(t, "Escher", rows[4][2])
}

func TestExportQuestions_UnknownFormat(t *testing.T) {
	e := newTestEnv(t)
	assertError(t, e.do(http.MethodGet, "/questions/export/?format=pdf", ""), http.StatusBadRequest, "bad request")
}

// ============================================================================
// Сквозные свойства
// ============================================================================

func TestCORSOnErrorResponses(t *testing.T) {
	e := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/questions/9999/", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
	assert.Equal(t, "Content-Type, Authorization, Data-Type", w.Header().Get("Access-Control-Allow-Headers"))
	assert.Equal(t, "GET, PUT, POST, DELETE, PATCH, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
}

func TestUnknownRoute(t *testing.T) {
	e := newTestEnv(t)
	assertError(t, e.do(http.MethodGet, "/nowhere/", ""), http.StatusNotFound, "Resource not found")
}

func TestPanicIsServerError(t *testing.T) {
	e := newTestEnv(t)
	e.router.GET("/boom/", func(c *gin.Context) { panic("boom") })

	assertError(t, e.do(http.MethodGet, "/boom/", ""), http.StatusInternalServerError, "server error")
}

func TestHealthz(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", parseJSONResponse(t, w)["status"])

	require.NoError(t, database.Close(e.db))
	w = e.do(http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestStoreFailureIsServerError(t *testing.T) {
	e := newTestEnv(t)
	require.NoError(t, database.Close(e.db))

	assertError(t, e.do(http.MethodGet, "/categories/", ""), http.StatusInternalServerError, "server error")
	assertError(t, e.do(http.MethodGet, "/questions/", ""), http.StatusInternalServerError, "server error")

	// ошибка пишется логгером запроса, вместе с request_id
	var logged map[string]any
	for _, line := range bytes.Split(bytes.TrimSpace(e.logs.Bytes()), []byte("\n")) {
		var entry map[string]any
		require.NoError(t, json.Unmarshal(line, &entry))
		if entry["message"] == "internal server error" {
			logged = entry
			break
		}
	}
	require.NotNil(t, logged, e.logs.String())
	assert.Equal(t, "error", logged["level"])
	assert.Equal(t, "/categories/", logged["path"])
	assert.NotEmpty(t, logged["request_id"])
}

func TestMetricsEndpoint(t *testing.T) {
	e := newTestEnv(t)
	e.do(http.MethodGet, "/categories/", "")

	w := e.do(http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `question_bank_http_requests_total{method="GET",route="/categories/",status="200"} 1`)
}

func TestRequestIDHeader(t *testing.T) {
	e := newTestEnv(t)
	w := e.do(http.MethodGet, "/categories/", "")
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
}
