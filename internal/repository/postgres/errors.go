package postgres

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"

	apperrors "github.com/yourusername/question-bank/internal/pkg/errors"
)

// wrapStoreError переводит ошибку GORM в таксономию приложения.
// Нарушения ограничений дополнительно помечаются как ErrUnprocessable.
func wrapStoreError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.ErrNotFound
	}
	if isConstraintViolation(err) {
		return fmt.Errorf("%w: %w: %s: %v", apperrors.ErrStoreFailure, apperrors.ErrUnprocessable, op, err)
	}
	return fmt.Errorf("%w: %s: %v", apperrors.ErrStoreFailure, op, err)
}

// isConstraintViolation проверяет нарушение ограничений целостности (класс 23)
// для pgconn, lib/pq и sqlite драйверов
func isConstraintViolation(err error) bool {
	// pgx/v5 driver (pgconn.PgError)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && strings.HasPrefix(pgErr.Code, "23") {
		return true
	}
	// lib/pq driver
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Class() == "23" {
		return true
	}
	// sqlite возвращает только текст
	return strings.Contains(err.Error(), "constraint failed")
}
