package repository

import (
	"github.com/yourusername/question-bank/internal/domain/entity"
)

// CategoryRepository - справочник категорий только для чтения
type CategoryRepository interface {
	// List возвращает категории по возрастанию ID
	List() ([]entity.Category, error)
	GetByID(id string) (*entity.Category, error)
}
