package database

import (
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/yourusername/question-bank/internal/domain/entity"
)

// NewSQLiteDB открывает файловую базу SQLite и создает схему через AutoMigrate.
// Используется для локальной разработки и тестов вместо PostgreSQL.
func NewSQLiteDB(path string, logLevel logger.LogLevel) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// SQLite не любит параллельных писателей
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&entity.Category{}, &entity.Question{}); err != nil {
		return nil, fmt.Errorf("failed to migrate sqlite schema: %w", err)
	}

	return db, nil
}

// Close закрывает пул соединений *gorm.DB
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// defaultCategories повторяет сид-миграцию PostgreSQL
var defaultCategories = []entity.Category{
	{ID: "1", Type: "Science"},
	{ID: "2", Type: "Art"},
	{ID: "3", Type: "Geography"},
	{ID: "4", Type: "History"},
	{ID: "5", Type: "Entertainment"},
	{ID: "6", Type: "Sports"},
}

// SeedCategories заполняет справочник категорий, не трогая существующие строки
func SeedCategories(db *gorm.DB) error {
	categories := make([]entity.Category, len(defaultCategories))
	copy(categories, defaultCategories)
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&categories).Error; err != nil {
		return fmt.Errorf("failed to seed categories: %w", err)
	}
	return nil
}
