package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yourusername/question-bank/internal/config"
	"github.com/yourusername/question-bank/internal/handler"
	"github.com/yourusername/question-bank/internal/logging"
	"github.com/yourusername/question-bank/internal/middleware"
	pgRepo "github.com/yourusername/question-bank/internal/repository/postgres"
	"github.com/yourusername/question-bank/internal/server"
	"github.com/yourusername/question-bank/internal/service"
	"github.com/yourusername/question-bank/pkg/database"
)

func main() {
	// .env нужен только локально; в production переменные задает окружение
	if os.Getenv("APP_ENV") != "production" {
		_ = godotenv.Load()
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		bootLogger := logging.New("question-bank", os.Getenv("APP_ENV"))
		bootLogger.Fatal().Err(err).Str("config", configPath).Msg("failed to load config")
	}

	log := logging.New(cfg.App.Name, cfg.App.Env)
	log.Info().Str("config", configPath).Str("driver", cfg.Database.Driver).Msg("configuration loaded")

	gin.SetMode(cfg.Server.Mode)
	gormLevel := logger.Warn
	if cfg.Server.Mode == gin.DebugMode {
		gormLevel = logger.Info
	}

	db, err := openStore(cfg, gormLevel, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open store")
	}
	defer func() {
		if err := database.Close(db); err != nil {
			log.Error().Err(err).Msg("failed to close database")
		}
	}()

	// Redis нужен только для rate limiting
	var redisClient redis.UniversalClient
	if cfg.RateLimit.Enabled {
		redisClient, err = database.NewRedisClient(cfg.Redis)
		if err != nil {
			// Лимитер работает fail-open, поэтому без Redis API все равно поднимается
			log.Warn().Err(err).Msg("redis unavailable, rate limiting disabled")
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	questionRepo := pgRepo.NewQuestionRepo(db)
	categoryRepo := pgRepo.NewCategoryRepo(db)

	questionService := service.NewQuestionService(questionRepo, categoryRepo)
	quizService := service.NewQuizService(questionRepo, cfg.Quiz.RandomDraw)
	if cfg.Quiz.RandomDraw {
		log.Info().Msg("quiz random draw enabled")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// В production не доверяем прокси-заголовкам, локально доверяем loopback
	var trustedProxies []string
	if !cfg.IsProduction() {
		trustedProxies = []string{"127.0.0.1", "::1"}
	}

	router := server.NewRouter(server.Deps{
		Logger:         log,
		Registry:       registry,
		Categories:     handler.NewCategoryHandler(questionService),
		Questions:      handler.NewQuestionHandler(questionService),
		Quizzes:        handler.NewQuizHandler(quizService),
		Health:         handler.NewHealthHandler(questionRepo),
		RateLimiter:    newRateLimiter(redisClient, log),
		RateLimit:      middleware.MutationRateLimitConfig(cfg.RateLimit),
		TrustedProxies: trustedProxies,
	})

	// HTTP сервер с тайм-аутами для защиты от slow client attacks
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		return
	}

	log.Info().Msg("server exited properly")
}

// openStore подключает хранилище выбранного драйвера.
// Postgres получает схему миграциями, sqlite - через AutoMigrate и сид категорий.
func openStore(cfg *config.Config, level logger.LogLevel, log zerolog.Logger) (*gorm.DB, error) {
	if cfg.Database.Driver == config.DriverSQLite {
		db, err := database.NewSQLiteDB(cfg.Database.SQLitePath, level)
		if err != nil {
			return nil, err
		}
		if err := database.SeedCategories(db); err != nil {
			return nil, err
		}
		log.Info().Str("path", cfg.Database.SQLitePath).Msg("sqlite store ready")
		return db, nil
	}

	db, err := database.NewPostgresDB(cfg.Database, level)
	if err != nil {
		return nil, err
	}
	if err := database.MigrateDB(db, cfg.Database.MigrationsPath); err != nil {
		return nil, err
	}
	log.Info().Str("host", cfg.Database.Host).Str("dbname", cfg.Database.DBName).Msg("postgres store ready")
	return db, nil
}

func newRateLimiter(client redis.UniversalClient, log zerolog.Logger) *middleware.RateLimiter {
	if client == nil {
		return nil
	}
	return middleware.NewRateLimiter(client, log)
}
