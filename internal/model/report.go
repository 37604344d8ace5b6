package model

import "time"

// FinancialStats - статистика по доходам/расходам за период
type FinancialStats struct {
	TotalIncome   float64                  `json:"total_income"`
	TotalExpenses float64                  `json:"total_expenses"`
	NetBalance    float64                  `json:"net_balance"`
	ByCategory    map[string]CategoryStats `json:"by_category"`
}

// CategoryStats - статистика по отдельной категории
type CategoryStats struct {
	Income   float64 `json:"income"`
	Expenses float64 `json:"expenses"`
	Count    int     `json:"count"`
}

// ForecastPoint - точка прогнозной кривой баланса
type ForecastPoint struct {
	Date    time.Time `json:"date"`
	Balance float64   `json:"balance"`
	Label   string    `json:"label"`
}

// WalletSummary - сводка по кошельку с пересчетом в базовую валюту
type WalletSummary struct {
	WalletID  string  `json:"wallet_id"`
	Name      string  `json:"name"`
	Currency  string  `json:"currency"`
	Balance   float64 `json:"balance"`
	Converted float64 `json:"converted"` // баланс в базовой валюте
}

// NetWorthSummary - суммарное состояние пользователя по всем кошелькам
type NetWorthSummary struct {
	BaseCurrency string          `json:"base_currency"`
	Total        float64         `json:"total"`
	Wallets      []WalletSummary `json:"wallets"`
}
