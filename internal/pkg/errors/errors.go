package errors

import "errors"

// Общие ошибки приложения
var (
	// ErrNotFound используется, когда запись, страница или пул вопросов не найдены.
	ErrNotFound = errors.New("record not found")

	// ErrUnprocessable используется, когда не хватает обязательных полей
	// или мутирующая операция хранилища не удалась после валидации.
	ErrUnprocessable = errors.New("unprocessable entity")

	// ErrBadRequest используется для некорректного тела запроса.
	ErrBadRequest = errors.New("bad request")

	// ErrStoreFailure оборачивает любую ошибку хранилища, кроме "не найдено".
	// Сервисы сами решают, в какой статус ее превратить.
	ErrStoreFailure = errors.New("store operation failed")
)
