package model

import (
	"time"

	"github.com/google/uuid"
)

// DefaultAlertThresholds - пороги уведомлений по умолчанию (в процентах от лимита)
var DefaultAlertThresholds = []float64{80, 100}

type Budget struct {
	ID              uuid.UUID  `json:"id" db:"id"`
	UserID          uuid.UUID  `json:"user_id" db:"user_id"`
	CategoryID      *uuid.UUID `json:"category_id" db:"category_id"` // nil = общий бюджет по всем расходам
	Amount          float64    `json:"amount" db:"amount"`
	Period          string     `json:"period" db:"period"` // пока поддерживается только monthly
	AlertThresholds []float64  `json:"alert_thresholds" db:"alert_thresholds"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
}

// BudgetAlert - уведомление о пересечении порога бюджета.
// Не более одного уведомления на тройку (бюджет, порог, начало периода).
type BudgetAlert struct {
	ID               uuid.UUID `json:"id" db:"id"`
	UserID           uuid.UUID `json:"user_id" db:"user_id"`
	BudgetID         uuid.UUID `json:"budget_id" db:"budget_id"`
	ThresholdPercent float64   `json:"threshold_percent" db:"threshold_percent"`
	PeriodStart      time.Time `json:"period_start" db:"period_start"`
	Message          string    `json:"message" db:"message"`
	IsRead           bool      `json:"is_read" db:"is_read"`
	TriggeredAt      time.Time `json:"triggered_at" db:"triggered_at"`
}

type CreateBudgetRequest struct {
	CategoryID      *uuid.UUID `json:"category_id"`
	Amount          float64    `json:"amount" validate:"required,gt=0"`
	Period          string     `json:"period" validate:"omitempty,oneof=monthly"`
	AlertThresholds []float64  `json:"alert_thresholds"` // по умолчанию [80, 100]
}

// BudgetCheckResult - итог проверки бюджетов пользователя
type BudgetCheckResult struct {
	Checked int `json:"checked"`
	Created int `json:"created"`
}
