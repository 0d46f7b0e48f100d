package service

import (
	"errors"
	"fmt"

	"github.com/yourusername/question-bank/internal/domain/entity"
	"github.com/yourusername/question-bank/internal/domain/repository"
	apperrors "github.com/yourusername/question-bank/internal/pkg/errors"
)

// AllCategoriesLabel - подпись текущей категории, когда конкретная категория не определена
const AllCategoriesLabel = "ALL"

// QuestionPage - окно выборки вопросов вместе с метаданными
type QuestionPage struct {
	Questions []entity.Question
	Page      int
	// Total - размер всей выборки, а не окна
	Total int
}

// QuestionListing - результат листинга с категориями
type QuestionListing struct {
	QuestionPage
	Categories      []string
	CurrentCategory string
}

// SearchResult - результат поиска по подстроке
type SearchResult struct {
	QuestionPage
	CurrentCategory string
}

// MutationResult - результат создания/удаления вместе с обновленным листингом
type MutationResult struct {
	QuestionPage
	// QuestionID - ID созданного или удаленного вопроса
	QuestionID uint
}

// CreateQuestionInput - поля нового вопроса; nil означает отсутствие поля
type CreateQuestionInput struct {
	Question   *string
	Answer     *string
	Category   *string
	Difficulty *int
}

// complete проверяет, что все четыре поля переданы
func (in CreateQuestionInput) complete() bool {
	return in.Question != nil && in.Answer != nil && in.Category != nil && in.Difficulty != nil
}

// QuestionService разрешает запросы листинга, поиска, создания и удаления вопросов
type QuestionService struct {
	questionRepo repository.QuestionRepository
	categoryRepo repository.CategoryRepository
}

// NewQuestionService создает новый сервис вопросов
func NewQuestionService(
	questionRepo repository.QuestionRepository,
	categoryRepo repository.CategoryRepository,
) *QuestionService {
	return &QuestionService{
		questionRepo: questionRepo,
		categoryRepo: categoryRepo,
	}
}

// ListCategories возвращает справочник категорий по возрастанию ID
func (s *QuestionService) ListCategories() ([]entity.Category, error) {
	categories, err := s.categoryRepo.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// ListByCategory возвращает страницу вопросов категории.
// Пустое окно - ErrNotFound, в том числе для категории без вопросов.
func (s *QuestionService) ListByCategory(categoryID string, page int) (*QuestionListing, error) {
	questions, err := s.questionRepo.GetByCategory(categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions of category %s: %w", categoryID, err)
	}

	window, page := Paginate(questions, page)
	if len(window) == 0 {
		return nil, fmt.Errorf("%w: category %s page %d is empty", apperrors.ErrNotFound, categoryID, page)
	}

	categories, err := s.ListCategories()
	if err != nil {
		return nil, err
	}

	category, err := s.categoryRepo.GetByID(categoryID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: category %s", apperrors.ErrNotFound, categoryID)
		}
		return nil, fmt.Errorf("failed to get category %s: %w", categoryID, err)
	}

	return &QuestionListing{
		QuestionPage:    QuestionPage{Questions: window, Page: page, Total: len(questions)},
		Categories:      entity.CategoryNames(categories),
		CurrentCategory: category.Type,
	}, nil
}

// ListQuestions возвращает страницу всех вопросов; пустое окно - ErrNotFound
func (s *QuestionService) ListQuestions(page int) (*QuestionListing, error) {
	current, err := s.currentPage(page)
	if err != nil {
		return nil, err
	}
	if len(current.Questions) == 0 {
		return nil, fmt.Errorf("%w: questions page %d is empty", apperrors.ErrNotFound, current.Page)
	}

	categories, err := s.ListCategories()
	if err != nil {
		return nil, err
	}

	return &QuestionListing{
		QuestionPage:    *current,
		Categories:      entity.CategoryNames(categories),
		CurrentCategory: AllCategoriesLabel,
	}, nil
}

// SearchQuestions ищет вопросы по подстроке. Пустой результат не является ошибкой.
// Если в окне ровно один вопрос, текущей категорией становится его категория.
func (s *QuestionService) SearchQuestions(term string, page int) (*SearchResult, error) {
	questions, err := s.questionRepo.Search(term)
	if err != nil {
		return nil, fmt.Errorf("failed to search questions: %w", err)
	}

	window, page := Paginate(questions, page)

	label := AllCategoriesLabel
	if len(window) == 1 {
		// Категория могла быть удалена - тогда остается "ALL"
		if category, err := s.categoryRepo.GetByID(window[0].Category); err == nil {
			label = category.Type
		}
	}

	return &SearchResult{
		QuestionPage:    QuestionPage{Questions: window, Page: page, Total: len(questions)},
		CurrentCategory: label,
	}, nil
}

// CreateQuestion создает вопрос и возвращает свежий листинг для страницы page.
// Отсутствие любого поля или ошибка хранилища - ErrUnprocessable.
func (s *QuestionService) CreateQuestion(input CreateQuestionInput, page int) (*MutationResult, error) {
	if !input.complete() {
		return nil, fmt.Errorf("%w: question, answer, category and difficulty are required", apperrors.ErrUnprocessable)
	}

	question := &entity.Question{
		Question:   *input.Question,
		Answer:     *input.Answer,
		Category:   *input.Category,
		Difficulty: *input.Difficulty,
	}
	if err := s.questionRepo.Create(question); err != nil {
		return nil, fmt.Errorf("%w: failed to create question: %w", apperrors.ErrUnprocessable, err)
	}

	current, err := s.currentPage(page)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrUnprocessable, err)
	}

	return &MutationResult{QuestionPage: *current, QuestionID: question.ID}, nil
}

// GetQuestion возвращает вопрос по ID
func (s *QuestionService) GetQuestion(id uint) (*entity.Question, error) {
	question, err := s.questionRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: question #%d", apperrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get question #%d: %w", id, err)
	}
	return question, nil
}

// DeleteQuestion удаляет вопрос и возвращает свежий листинг для страницы page.
// Отсутствующий вопрос - ErrNotFound; сбой хранилища после проверки - ErrUnprocessable.
func (s *QuestionService) DeleteQuestion(id uint, page int) (*MutationResult, error) {
	if _, err := s.GetQuestion(id); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", apperrors.ErrUnprocessable, err)
	}

	deleted, err := s.questionRepo.Delete(id)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to delete question #%d: %w", apperrors.ErrUnprocessable, id, err)
	}
	if !deleted {
		// Запись исчезла между проверкой и удалением
		return nil, fmt.Errorf("%w: question #%d was removed concurrently", apperrors.ErrUnprocessable, id)
	}

	current, err := s.currentPage(page)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrUnprocessable, err)
	}

	return &MutationResult{QuestionPage: *current, QuestionID: id}, nil
}

// ExportQuestions возвращает все вопросы по возрастанию ID
func (s *QuestionService) ExportQuestions() ([]entity.Question, error) {
	questions, err := s.questionRepo.List()
	if err != nil {
		return nil, fmt.Errorf("failed to export questions: %w", err)
	}
	return questions, nil
}

// currentPage перечитывает весь список и берет окно страницы page
func (s *QuestionService) currentPage(page int) (*QuestionPage, error) {
	questions, err := s.questionRepo.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}

	window, page := Paginate(questions, page)
	return &QuestionPage{Questions: window, Page: page, Total: len(questions)}, nil
}
