package model

import (
	"time"

	"github.com/google/uuid"
)

type TransactionType string

const (
	TransactionTypeIncome   TransactionType = "income"   // поступление средств
	TransactionTypeExpense  TransactionType = "expense"  // расход средств
	TransactionTypeTransfer TransactionType = "transfer" // перевод между кошельками
)

type Transaction struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	UserID          uuid.UUID       `json:"user_id" db:"user_id"`
	WalletID        uuid.UUID       `json:"wallet_id" db:"wallet_id"`
	ToWalletID      *uuid.UUID      `json:"to_wallet_id" db:"to_wallet_id"` // только для переводов
	CategoryID      *uuid.UUID      `json:"category_id" db:"category_id"`
	Amount          float64         `json:"amount" db:"amount"`
	TransactionType TransactionType `json:"transaction_type" db:"transaction_type"`
	Description     string          `json:"description" db:"description"`
	OccurredOn      time.Time       `json:"occurred_on" db:"occurred_on"` // дата операции (день)
	TemplateID      *uuid.UUID      `json:"template_id" db:"template_id"` // ссылка на шаблон, если создана генератором
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
}

type CreateTransactionRequest struct {
	WalletID        uuid.UUID       `json:"wallet_id" validate:"required"`
	ToWalletID      *uuid.UUID      `json:"to_wallet_id"`
	CategoryID      *uuid.UUID      `json:"category_id"`
	Amount          float64         `json:"amount" validate:"required,gt=0"`
	TransactionType TransactionType `json:"transaction_type" validate:"required,oneof=income expense transfer"`
	Description     string          `json:"description" validate:"max=255"`
	OccurredOn      string          `json:"occurred_on"` // YYYY-MM-DD, по умолчанию сегодня
}
