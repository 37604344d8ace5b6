package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Yoodaddy171/MyLedge-sub000/internal/model"
)

type RecurringRepository struct {
	db     *sql.DB
	logger *logrus.Logger
}

func NewRecurringRepository(db *sql.DB, logger *logrus.Logger) *RecurringRepository {
	return &RecurringRepository{db: db, logger: logger}
}

const recurringColumns = `id, user_id, wallet_id, to_wallet_id, category_id, transaction_type,
               amount, description, frequency, start_date, end_date, next_occurrence,
               last_generated_date, is_active, auto_generate, created_at, updated_at`

func scanTemplate(row interface{ Scan(...interface{}) error }) (*model.RecurringTemplate, error) {
	var tpl model.RecurringTemplate
	err := row.Scan(
		&tpl.ID,
		&tpl.UserID,
		&tpl.WalletID,
		&tpl.ToWalletID,
		&tpl.CategoryID,
		&tpl.TransactionType,
		&tpl.Amount,
		&tpl.Description,
		&tpl.Frequency,
		&tpl.StartDate,
		&tpl.EndDate,
		&tpl.NextOccurrence,
		&tpl.LastGeneratedDate,
		&tpl.IsActive,
		&tpl.AutoGenerate,
		&tpl.CreatedAt,
		&tpl.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &tpl, nil
}

func (r *RecurringRepository) Create(ctx context.Context, tpl *model.RecurringTemplate) error {
	query := `
        INSERT INTO recurring_templates (id, user_id, wallet_id, to_wallet_id, category_id,
                                         transaction_type, amount, description, frequency,
                                         start_date, end_date, next_occurrence, last_generated_date,
                                         is_active, auto_generate, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
    `

	_, err := r.db.ExecContext(
		ctx,
		query,
		tpl.ID,
		tpl.UserID,
		tpl.WalletID,
		tpl.ToWalletID,
		tpl.CategoryID,
		tpl.TransactionType,
		tpl.Amount,
		tpl.Description,
		tpl.Frequency,
		tpl.StartDate,
		tpl.EndDate,
		tpl.NextOccurrence,
		tpl.LastGeneratedDate,
		tpl.IsActive,
		tpl.AutoGenerate,
		tpl.CreatedAt,
		tpl.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create recurring template: %w", err)
	}

	return nil
}

func (r *RecurringRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.RecurringTemplate, error) {
	query := `SELECT ` + recurringColumns + ` FROM recurring_templates WHERE id = $1`

	tpl, err := scanTemplate(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("template not found")
		}
		return nil, fmt.Errorf("failed to get recurring template: %w", err)
	}

	return tpl, nil
}

func (r *RecurringRepository) GetUserTemplates(ctx context.Context, userID uuid.UUID) ([]model.RecurringTemplate, error) {
	query := `SELECT ` + recurringColumns + ` FROM recurring_templates WHERE user_id = $1 ORDER BY created_at`

	return r.queryTemplates(ctx, query, userID)
}

// GetActiveUserTemplates возвращает активные шаблоны пользователя
// (для прогноза баланса, независимо от auto_generate)
func (r *RecurringRepository) GetActiveUserTemplates(ctx context.Context, userID uuid.UUID) ([]model.RecurringTemplate, error) {
	query := `SELECT ` + recurringColumns + ` FROM recurring_templates
              WHERE user_id = $1 AND is_active = TRUE
              ORDER BY created_at`

	return r.queryTemplates(ctx, query, userID)
}

// GetDueTemplates возвращает шаблоны, подлежащие генерации на указанную дату:
// активные, с автогенерацией, с курсором не позже today и не исчерпавшие end_date.
// Без фильтра по пользователю - ежедневный прогон обрабатывает всех.
func (r *RecurringRepository) GetDueTemplates(ctx context.Context, today time.Time) ([]model.RecurringTemplate, error) {
	query := `SELECT ` + recurringColumns + ` FROM recurring_templates
              WHERE is_active = TRUE
                AND auto_generate = TRUE
                AND next_occurrence <= $1
                AND (end_date IS NULL OR next_occurrence <= end_date)
              ORDER BY next_occurrence`

	return r.queryTemplates(ctx, query, today)
}

// GetDueTemplatesForUser - то же, что GetDueTemplates, но в рамках одного пользователя
func (r *RecurringRepository) GetDueTemplatesForUser(ctx context.Context, userID uuid.UUID, today time.Time) ([]model.RecurringTemplate, error) {
	query := `SELECT ` + recurringColumns + ` FROM recurring_templates
              WHERE user_id = $1
                AND is_active = TRUE
                AND auto_generate = TRUE
                AND next_occurrence <= $2
                AND (end_date IS NULL OR next_occurrence <= end_date)
              ORDER BY next_occurrence`

	return r.queryTemplates(ctx, query, userID, today)
}

func (r *RecurringRepository) queryTemplates(ctx context.Context, query string, args ...interface{}) ([]model.RecurringTemplate, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query recurring templates: %w", err)
	}
	defer rows.Close()

	var templates []model.RecurringTemplate
	for rows.Next() {
		tpl, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recurring template: %w", err)
		}
		templates = append(templates, *tpl)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate recurring templates: %w", err)
	}

	return templates, nil
}

// AdvanceCursorTx двигает курсор шаблона с оптимистической проверкой:
// обновление проходит только если курсор в базе все еще равен expected.
// Возврат false означает, что вхождение уже забрал параллельный прогон.
func (r *RecurringRepository) AdvanceCursorTx(
	ctx context.Context,
	tx *sql.Tx,
	templateID uuid.UUID,
	expected, next, generated time.Time,
) (bool, error) {
	query := `
        UPDATE recurring_templates
        SET next_occurrence = $1,
            last_generated_date = $2,
            updated_at = NOW()
        WHERE id = $3 AND next_occurrence = $4
    `

	result, err := tx.ExecContext(ctx, query, next, generated, templateID, expected)
	if err != nil {
		return false, fmt.Errorf("failed to advance template cursor: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

// SetActive приостанавливает или возобновляет шаблон
func (r *RecurringRepository) SetActive(ctx context.Context, templateID uuid.UUID, active bool) error {
	query := `
        UPDATE recurring_templates
        SET is_active = $1,
            updated_at = NOW()
        WHERE id = $2
    `

	_, err := r.db.ExecContext(ctx, query, active, templateID)
	if err != nil {
		return fmt.Errorf("failed to update template state: %w", err)
	}

	return nil
}

// Update перезаписывает редактируемые поля шаблона вместе с курсором
func (r *RecurringRepository) Update(ctx context.Context, tpl *model.RecurringTemplate) error {
	query := `
        UPDATE recurring_templates
        SET amount = $1,
            description = $2,
            frequency = $3,
            start_date = $4,
            end_date = $5,
            next_occurrence = $6,
            auto_generate = $7,
            updated_at = NOW()
        WHERE id = $8
    `

	_, err := r.db.ExecContext(
		ctx,
		query,
		tpl.Amount,
		tpl.Description,
		tpl.Frequency,
		tpl.StartDate,
		tpl.EndDate,
		tpl.NextOccurrence,
		tpl.AutoGenerate,
		tpl.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update recurring template: %w", err)
	}

	return nil
}

func (r *RecurringRepository) Delete(ctx context.Context, templateID uuid.UUID) error {
	query := `DELETE FROM recurring_templates WHERE id = $1`

	_, err := r.db.ExecContext(ctx, query, templateID)
	if err != nil {
		return fmt.Errorf("failed to delete recurring template: %w", err)
	}

	return nil
}

func (r *RecurringRepository) GetDB() *sql.DB {
	return r.db
}
