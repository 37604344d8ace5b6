package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/Yoodaddy171/MyLedge-sub000/internal/model"
)

type BudgetRepository struct {
	db     *sql.DB
	logger *logrus.Logger
}

func NewBudgetRepository(db *sql.DB, logger *logrus.Logger) *BudgetRepository {
	return &BudgetRepository{db: db, logger: logger}
}

func (r *BudgetRepository) Create(ctx context.Context, budget *model.Budget) error {
	query := `
        INSERT INTO budgets (id, user_id, category_id, amount, period, alert_thresholds, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    `

	_, err := r.db.ExecContext(
		ctx,
		query,
		budget.ID,
		budget.UserID,
		budget.CategoryID,
		budget.Amount,
		budget.Period,
		pq.Array(budget.AlertThresholds),
		budget.CreatedAt,
		budget.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create budget: %w", err)
	}

	return nil
}

func (r *BudgetRepository) GetUserBudgets(ctx context.Context, userID uuid.UUID) ([]model.Budget, error) {
	query := `
        SELECT id, user_id, category_id, amount, period, alert_thresholds, created_at, updated_at
        FROM budgets
        WHERE user_id = $1
        ORDER BY created_at
    `

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query user budgets: %w", err)
	}
	defer rows.Close()

	var budgets []model.Budget
	for rows.Next() {
		var budget model.Budget
		var thresholds pq.Float64Array
		if err := rows.Scan(
			&budget.ID,
			&budget.UserID,
			&budget.CategoryID,
			&budget.Amount,
			&budget.Period,
			&thresholds,
			&budget.CreatedAt,
			&budget.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan budget: %w", err)
		}
		budget.AlertThresholds = []float64(thresholds)
		budgets = append(budgets, budget)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate budgets: %w", err)
	}

	return budgets, nil
}

// GetUsersWithBudgets возвращает идентификаторы пользователей, у которых
// есть хотя бы один бюджет (для ежедневной проверки по всем пользователям)
func (r *BudgetRepository) GetUsersWithBudgets(ctx context.Context) ([]uuid.UUID, error) {
	query := `SELECT DISTINCT user_id FROM budgets`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query users with budgets: %w", err)
	}
	defer rows.Close()

	var users []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		users = append(users, id)
	}

	return users, rows.Err()
}

func (r *BudgetRepository) Delete(ctx context.Context, budgetID uuid.UUID) error {
	query := `DELETE FROM budgets WHERE id = $1`

	_, err := r.db.ExecContext(ctx, query, budgetID)
	if err != nil {
		return fmt.Errorf("failed to delete budget: %w", err)
	}

	return nil
}

// AlertExists проверяет наличие уведомления по тройке (бюджет, порог, период).
// Это проверка дедупликации перед вставкой; страховкой от гонки служит
// уникальное ограничение в таблице budget_alerts.
func (r *BudgetRepository) AlertExists(
	ctx context.Context,
	budgetID uuid.UUID,
	thresholdPercent float64,
	periodStart time.Time,
) (bool, error) {
	query := `
        SELECT EXISTS(
            SELECT 1 FROM budget_alerts
            WHERE budget_id = $1 AND threshold_percent = $2 AND period_start = $3
        )
    `

	var exists bool
	err := r.db.QueryRowContext(ctx, query, budgetID, thresholdPercent, periodStart).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check alert existence: %w", err)
	}

	return exists, nil
}

func (r *BudgetRepository) CreateAlert(ctx context.Context, alert *model.BudgetAlert) error {
	query := `
        INSERT INTO budget_alerts (id, user_id, budget_id, threshold_percent, period_start,
                                   message, is_read, triggered_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    `

	_, err := r.db.ExecContext(
		ctx,
		query,
		alert.ID,
		alert.UserID,
		alert.BudgetID,
		alert.ThresholdPercent,
		alert.PeriodStart,
		alert.Message,
		alert.IsRead,
		alert.TriggeredAt,
	)

	if err != nil {
		if IsUniqueViolation(err) {
			return fmt.Errorf("duplicate alert: %w", err)
		}
		return fmt.Errorf("failed to create budget alert: %w", err)
	}

	return nil
}

func (r *BudgetRepository) GetUserAlerts(ctx context.Context, userID uuid.UUID) ([]model.BudgetAlert, error) {
	query := `
        SELECT id, user_id, budget_id, threshold_percent, period_start, message, is_read, triggered_at
        FROM budget_alerts
        WHERE user_id = $1
        ORDER BY triggered_at DESC
    `

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query user alerts: %w", err)
	}
	defer rows.Close()

	var alerts []model.BudgetAlert
	for rows.Next() {
		var alert model.BudgetAlert
		if err := rows.Scan(
			&alert.ID,
			&alert.UserID,
			&alert.BudgetID,
			&alert.ThresholdPercent,
			&alert.PeriodStart,
			&alert.Message,
			&alert.IsRead,
			&alert.TriggeredAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan budget alert: %w", err)
		}
		alerts = append(alerts, alert)
	}

	return alerts, rows.Err()
}

func (r *BudgetRepository) MarkAlertRead(ctx context.Context, alertID uuid.UUID, userID uuid.UUID) error {
	query := `
        UPDATE budget_alerts
        SET is_read = TRUE
        WHERE id = $1 AND user_id = $2
    `

	result, err := r.db.ExecContext(ctx, query, alertID, userID)
	if err != nil {
		return fmt.Errorf("failed to mark alert as read: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("alert not found")
	}

	return nil
}
