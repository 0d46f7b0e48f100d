package service

import (
	"fmt"
	"math/rand"

	"github.com/yourusername/question-bank/internal/domain/entity"
	"github.com/yourusername/question-bank/internal/domain/repository"
	apperrors "github.com/yourusername/question-bank/internal/pkg/errors"
)

// QuizDraw - параметры одного шага квиза. Состояние сессии хранит клиент.
type QuizDraw struct {
	// CategoryID - категория квиза; "" или entity.AllCategoriesID - все категории
	CategoryID string
	// PreviousIDs - уже показанные вопросы
	PreviousIDs []uint
}

// QuizService выбирает следующий вопрос квиза
type QuizService struct {
	questionRepo repository.QuestionRepository
	randomDraw   bool
	intn         func(n int) int
}

// NewQuizService создает новый сервис квиза.
// При randomDraw=false возвращается первый вопрос первой страницы пула
// (по возрастанию ID); при true - случайный вопрос всего пула.
func NewQuizService(questionRepo repository.QuestionRepository, randomDraw bool) *QuizService {
	return &QuizService{
		questionRepo: questionRepo,
		randomDraw:   randomDraw,
		intn:         rand.Intn,
	}
}

// NextQuestion возвращает следующий вопрос или nil, если пул исчерпан.
// Любой сбой хранилища при разрешении пула - ErrNotFound.
func (s *QuizService) NextQuestion(draw QuizDraw) (*entity.Question, error) {
	filter := repository.QuestionFilter{ExcludeIDs: draw.PreviousIDs}
	if !entity.IsAllCategories(draw.CategoryID) {
		filter.CategoryID = draw.CategoryID
	}

	pool, err := s.questionRepo.Find(filter)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to resolve quiz pool: %w", apperrors.ErrNotFound, err)
	}

	if len(pool) == 0 {
		return nil, nil
	}

	if s.randomDraw {
		question := pool[s.intn(len(pool))]
		return &question, nil
	}

	window, _ := Paginate(pool, 1)
	question := window[0]
	return &question, nil
}
