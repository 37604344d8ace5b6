package repository

import (
	"fmt"
	"testing"

	"github.com/lib/pq"
)

func TestIsUniqueViolation(t *testing.T) {
	raw := &pq.Error{Code: "23505"}

	if !IsUniqueViolation(raw) {
		t.Fatal("прямое нарушение уникальности не распознано")
	}

	// Репозитории возвращают ошибку обернутой через %w - цепочка
	// должна разворачиваться, иначе гонка двух прогонов генератора
	// превращается в ошибку вместо тихого пропуска
	wrapped := fmt.Errorf("duplicate occurrence: %w", raw)
	if !IsUniqueViolation(wrapped) {
		t.Fatal("обернутое нарушение уникальности не распознано")
	}

	doubleWrapped := fmt.Errorf("ошибка записи: %w", wrapped)
	if !IsUniqueViolation(doubleWrapped) {
		t.Fatal("дважды обернутое нарушение уникальности не распознано")
	}
}

func TestIsUniqueViolationOtherErrors(t *testing.T) {
	if IsUniqueViolation(fmt.Errorf("connection refused")) {
		t.Fatal("обычная ошибка принята за нарушение уникальности")
	}

	foreignKey := &pq.Error{Code: "23503"}
	if IsUniqueViolation(foreignKey) {
		t.Fatal("нарушение внешнего ключа принято за нарушение уникальности")
	}

	if IsUniqueViolation(nil) {
		t.Fatal("nil принят за нарушение уникальности")
	}
}
