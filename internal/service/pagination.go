package service

import "strconv"

// QuestionsPerPage - фиксированный размер окна пагинации
const QuestionsPerPage = 10

// Paginate возвращает окно items для страницы page (нумерация с 1) и
// фактически использованный номер страницы.
// Страница меньше 1 трактуется как первая; страница за пределами данных
// дает пустое окно, а не ошибку.
func Paginate[T any](items []T, page int) ([]T, int) {
	if page < 1 {
		page = 1
	}

	start := (page - 1) * QuestionsPerPage
	if start >= len(items) {
		return []T{}, page
	}
	end := start + QuestionsPerPage
	if end > len(items) {
		end = len(items)
	}

	return items[start:end], page
}

// ParsePage разбирает параметр page из запроса; пустое или нечисловое значение дает 1
func ParsePage(raw string) int {
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return 1
	}
	return page
}
