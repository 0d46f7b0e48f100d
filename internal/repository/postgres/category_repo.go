package postgres

import (
	"gorm.io/gorm"

	"github.com/yourusername/question-bank/internal/domain/entity"
)

// CategoryRepo реализует repository.CategoryRepository
type CategoryRepo struct {
	db *gorm.DB
}

// NewCategoryRepo создает новый репозиторий категорий
func NewCategoryRepo(db *gorm.DB) *CategoryRepo {
	return &CategoryRepo{db: db}
}

// List возвращает все категории по возрастанию ID
func (r *CategoryRepo) List() ([]entity.Category, error) {
	var categories []entity.Category
	if err := r.db.Order("id").Find(&categories).Error; err != nil {
		return nil, wrapStoreError("list categories", err)
	}
	return categories, nil
}

// GetByID возвращает категорию по ID
func (r *CategoryRepo) GetByID(id string) (*entity.Category, error) {
	var category entity.Category
	if err := r.db.Where("id = ?", id).First(&category).Error; err != nil {
		return nil, wrapStoreError("get category", err)
	}
	return &category, nil
}
