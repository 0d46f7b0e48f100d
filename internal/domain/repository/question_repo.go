package repository

import (
	"github.com/yourusername/question-bank/internal/domain/entity"
)

// QuestionFilter описывает сужение пула вопросов.
// Пустой фильтр означает "все вопросы"; условия объединяются через AND.
type QuestionFilter struct {
	// CategoryID - идентификатор категории, пустая строка или entity.AllCategoriesID отключают фильтр
	CategoryID string
	// ExcludeIDs - вопросы, которые нужно исключить (уже показанные в квизе)
	ExcludeIDs []uint
}

// QuestionRepository определяет методы для работы с вопросами.
// Все выборки упорядочены по возрастанию ID.
// Запрос сразу после Create/Delete обязан видеть результат мутации.
//
// Ошибки: apperrors.ErrNotFound, если записи нет; любая другая ошибка
// хранилища оборачивается в apperrors.ErrStoreFailure.
type QuestionRepository interface {
	List() ([]entity.Question, error)
	GetByID(id uint) (*entity.Question, error)
	GetByCategory(categoryID string) ([]entity.Question, error)
	// Search ищет вхождение подстроки в текст вопроса без учета регистра
	Search(term string) ([]entity.Question, error)
	Find(filter QuestionFilter) ([]entity.Question, error)
	Create(question *entity.Question) error
	// Delete возвращает true, если запись существовала и была удалена
	Delete(id uint) (bool, error)
	Ping() error
}
