package server

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/yourusername/question-bank/internal/handler"
	"github.com/yourusername/question-bank/internal/middleware"
)

// Deps - все, что нужно для сборки роутера
type Deps struct {
	Logger   zerolog.Logger
	Registry *prometheus.Registry

	Categories *handler.CategoryHandler
	Questions  *handler.QuestionHandler
	Quizzes    *handler.QuizHandler
	Health     *handler.HealthHandler

	// RateLimiter может быть nil - тогда лимит не применяется
	RateLimiter *middleware.RateLimiter
	RateLimit   middleware.RateLimitConfig

	// TrustedProxies передается в gin; nil - не доверять прокси-заголовкам
	TrustedProxies []string
}

// NewRouter собирает gin.Engine со всеми маршрутами API
func NewRouter(deps Deps) *gin.Engine {
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.RedirectTrailingSlash = true

	if err := router.SetTrustedProxies(deps.TrustedProxies); err != nil {
		deps.Logger.Warn().Err(err).Msg("failed to set trusted proxies")
	}

	metrics := middleware.NewMetrics(deps.Registry)

	router.Use(
		middleware.RequestID(),
		middleware.AccessLog(deps.Logger),
		gin.CustomRecovery(handler.Recovery),
		metrics.Handler(),
		middleware.CORSHeaders(),
		middleware.CORS(),
	)

	router.NoRoute(handler.NotFound)
	router.NoMethod(handler.MethodNotAllowed)

	limit := deps.RateLimiter.Limit(deps.RateLimit)
	questionID := middleware.ExtractUintParam("id", handler.QuestionIDKey)

	categories := router.Group("/categories")
	{
		categories.GET("/", deps.Categories.ListCategories)
		categories.GET("/:id/questions/", deps.Categories.ListCategoryQuestions)
	}

	questions := router.Group("/questions")
	{
		questions.GET("/", deps.Questions.ListQuestions)
		questions.POST("/", limit, deps.Questions.CreateOrSearch)
		questions.GET("/export/", deps.Questions.ExportQuestions)
		questions.GET("/:id/", questionID, deps.Questions.GetQuestion)
		questions.DELETE("/:id/", limit, questionID, deps.Questions.DeleteQuestion)
	}

	router.POST("/quizzes/", limit, deps.Quizzes.NextQuestion)

	router.GET("/healthz", deps.Health.Health)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{})))

	return router
}
