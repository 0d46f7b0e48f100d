package postgres

import (
	"strings"

	"gorm.io/gorm"

	"github.com/yourusername/question-bank/internal/domain/entity"
	"github.com/yourusername/question-bank/internal/domain/repository"
)

// QuestionRepo реализует repository.QuestionRepository
type QuestionRepo struct {
	db *gorm.DB
}

// NewQuestionRepo создает новый репозиторий вопросов
func NewQuestionRepo(db *gorm.DB) *QuestionRepo {
	return &QuestionRepo{db: db}
}

// likeEscaper экранирует спецсимволы LIKE, чтобы искать буквальную подстроку
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// List возвращает все вопросы
func (r *QuestionRepo) List() ([]entity.Question, error) {
	var questions []entity.Question
	if err := r.db.Order("id").Find(&questions).Error; err != nil {
		return nil, wrapStoreError("list questions", err)
	}
	return questions, nil
}

// GetByID возвращает вопрос по ID
func (r *QuestionRepo) GetByID(id uint) (*entity.Question, error) {
	var question entity.Question
	if err := r.db.First(&question, id).Error; err != nil {
		return nil, wrapStoreError("get question", err)
	}
	return &question, nil
}

// GetByCategory возвращает вопросы категории
func (r *QuestionRepo) GetByCategory(categoryID string) ([]entity.Question, error) {
	var questions []entity.Question
	err := r.db.Where("category = ?", categoryID).Order("id").Find(&questions).Error
	if err != nil {
		return nil, wrapStoreError("list questions by category", err)
	}
	return questions, nil
}

// Search ищет вопросы, текст которых содержит term (без учета регистра).
// LOWER + LIKE вместо ILIKE, чтобы запрос работал и на sqlite.
func (r *QuestionRepo) Search(term string) ([]entity.Question, error) {
	var questions []entity.Question
	pattern := "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"
	err := r.db.Where(`LOWER(question) LIKE ? ESCAPE '\'`, pattern).Order("id").Find(&questions).Error
	if err != nil {
		return nil, wrapStoreError("search questions", err)
	}
	return questions, nil
}

// Find возвращает вопросы, удовлетворяющие фильтру
func (r *QuestionRepo) Find(filter repository.QuestionFilter) ([]entity.Question, error) {
	var questions []entity.Question

	query := r.db.Model(&entity.Question{})
	if !entity.IsAllCategories(filter.CategoryID) {
		query = query.Where("category = ?", filter.CategoryID)
	}
	// Исключаем уже показанные вопросы
	if len(filter.ExcludeIDs) > 0 {
		query = query.Where("id NOT IN ?", filter.ExcludeIDs)
	}

	if err := query.Order("id").Find(&questions).Error; err != nil {
		return nil, wrapStoreError("find questions", err)
	}
	return questions, nil
}

// Create создает новый вопрос, ID назначает хранилище
func (r *QuestionRepo) Create(question *entity.Question) error {
	return wrapStoreError("create question", r.db.Create(question).Error)
}

// Delete удаляет вопрос
func (r *QuestionRepo) Delete(id uint) (bool, error) {
	result := r.db.Delete(&entity.Question{}, id)
	if result.Error != nil {
		return false, wrapStoreError("delete question", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// Ping проверяет доступность хранилища
func (r *QuestionRepo) Ping() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return wrapStoreError("ping", err)
	}
	return wrapStoreError("ping", sqlDB.Ping())
}
