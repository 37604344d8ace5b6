package model

import (
	"time"

	"github.com/google/uuid"
)

// RecurringTemplate - правило для автоматического создания транзакций по расписанию.
// Поле NextOccurrence является курсором генератора: дата следующего
// несозданного вхождения (включительно). Курсор монотонно возрастает и
// изменяется только генератором либо явным редактированием шаблона.
type RecurringTemplate struct {
	ID                uuid.UUID       `json:"id" db:"id"`
	UserID            uuid.UUID       `json:"user_id" db:"user_id"`
	WalletID          uuid.UUID       `json:"wallet_id" db:"wallet_id"`
	ToWalletID        *uuid.UUID      `json:"to_wallet_id" db:"to_wallet_id"` // только для переводов
	CategoryID        *uuid.UUID      `json:"category_id" db:"category_id"`
	TransactionType   TransactionType `json:"transaction_type" db:"transaction_type"`
	Amount            float64         `json:"amount" db:"amount"`
	Description       string          `json:"description" db:"description"`
	Frequency         string          `json:"frequency" db:"frequency"` // daily, weekly, monthly, quarterly, yearly
	StartDate         time.Time       `json:"start_date" db:"start_date"`
	EndDate           *time.Time      `json:"end_date" db:"end_date"`
	NextOccurrence    time.Time       `json:"next_occurrence" db:"next_occurrence"`
	LastGeneratedDate *time.Time      `json:"last_generated_date" db:"last_generated_date"`
	IsActive          bool            `json:"is_active" db:"is_active"`
	AutoGenerate      bool            `json:"auto_generate" db:"auto_generate"`
	CreatedAt         time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at" db:"updated_at"`
}

type CreateRecurringTemplateRequest struct {
	WalletID        uuid.UUID       `json:"wallet_id" validate:"required"`
	ToWalletID      *uuid.UUID      `json:"to_wallet_id"`
	CategoryID      *uuid.UUID      `json:"category_id"`
	TransactionType TransactionType `json:"transaction_type" validate:"required,oneof=income expense transfer"`
	Amount          float64         `json:"amount" validate:"required,gt=0"`
	Description     string          `json:"description" validate:"max=255"`
	Frequency       string          `json:"frequency" validate:"required,oneof=daily weekly monthly quarterly yearly"`
	StartDate       string          `json:"start_date" validate:"required"` // YYYY-MM-DD
	EndDate         *string         `json:"end_date"`                       // YYYY-MM-DD
	AutoGenerate    *bool           `json:"auto_generate"`                  // по умолчанию true
}

// UpdateRecurringTemplateRequest - изменение параметров шаблона.
// Смена расписания сбрасывает курсор на новую дату начала.
type UpdateRecurringTemplateRequest struct {
	Amount       float64 `json:"amount" validate:"required,gt=0"`
	Description  string  `json:"description" validate:"max=255"`
	Frequency    string  `json:"frequency" validate:"required,oneof=daily weekly monthly quarterly yearly"`
	StartDate    string  `json:"start_date" validate:"required"` // YYYY-MM-DD
	EndDate      *string `json:"end_date"`                       // YYYY-MM-DD
	AutoGenerate *bool   `json:"auto_generate"`
}

// TemplateError - ошибка обработки отдельного шаблона в рамках прогона генератора
type TemplateError struct {
	TemplateID  uuid.UUID `json:"template_id"`
	Description string    `json:"description"`
	Error       string    `json:"error"`
}

// GenerationResult - итог прогона генератора: сколько транзакций создано
// и какие шаблоны завершились ошибкой. Ошибки отдельных шаблонов не
// прерывают обработку остальных.
type GenerationResult struct {
	Created int             `json:"created"`
	Errors  []TemplateError `json:"errors"`
}
