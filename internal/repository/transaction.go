package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/Yoodaddy171/MyLedge-sub000/internal/model"
)

type TransactionRepository struct {
	db     *sql.DB
	logger *logrus.Logger
}

func NewTransactionRepository(db *sql.DB, logger *logrus.Logger) *TransactionRepository {
	return &TransactionRepository{db: db, logger: logger}
}

// IsUniqueViolation сообщает, что ошибка вставки вызвана нарушением
// уникального ограничения. Для сгенерированных транзакций это означает,
// что вхождение (шаблон, дата) уже было создано параллельным прогоном.
// Ошибка может прийти обернутой через %w, поэтому разворачиваем цепочку.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code.Name() == "unique_violation"
	}
	return false
}

func (r *TransactionRepository) CreateTx(ctx context.Context, tx *sql.Tx, transaction *model.Transaction) error {
	r.logger.WithFields(logrus.Fields{
		"transaction_id": transaction.ID,
		"wallet_id":      transaction.WalletID,
		"amount":         transaction.Amount,
		"type":           transaction.TransactionType,
		"occurred_on":    transaction.OccurredOn.Format("2006-01-02"),
		"template_id":    transaction.TemplateID,
	}).Debug("Создание новой транзакции")

	query := `
        INSERT INTO transactions (id, user_id, wallet_id, to_wallet_id, category_id,
                                  amount, transaction_type, description, occurred_on, template_id, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
    `

	_, err := tx.ExecContext(
		ctx,
		query,
		transaction.ID,
		transaction.UserID,
		transaction.WalletID,
		transaction.ToWalletID,
		transaction.CategoryID,
		transaction.Amount,
		transaction.TransactionType,
		transaction.Description,
		transaction.OccurredOn,
		transaction.TemplateID,
		transaction.CreatedAt,
	)

	if err != nil {
		// Нарушение уникальности не логируем как ошибку: для генератора
		// это штатная ситуация гонки двух прогонов
		if IsUniqueViolation(err) {
			return fmt.Errorf("duplicate occurrence: %w", err)
		}
		r.logger.WithError(err).Error("Ошибка при создании транзакции")
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	return nil
}

// GetByUserAndPeriod возвращает транзакции пользователя за период
func (r *TransactionRepository) GetByUserAndPeriod(
	ctx context.Context,
	userID uuid.UUID,
	startDate, endDate time.Time,
) ([]model.Transaction, error) {
	// Добавляем 1 день к endDate, чтобы включить весь последний день периода
	endDate = endDate.Add(24 * time.Hour)

	r.logger.WithFields(logrus.Fields{
		"user_id":    userID,
		"start_date": startDate.Format("2006-01-02"),
		"end_date":   endDate.Format("2006-01-02"),
	}).Debug("Запрос транзакций пользователя за период")

	const query = `SELECT id, user_id, wallet_id, to_wallet_id, category_id,
                         amount, transaction_type, description, occurred_on, template_id, created_at
                  FROM transactions
                  WHERE user_id = $1 AND occurred_on >= $2 AND occurred_on < $3
                  ORDER BY occurred_on DESC, created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID, startDate, endDate)
	if err != nil {
		r.logger.WithError(err).Error("Ошибка запроса транзакций")
		return nil, fmt.Errorf("ошибка получения транзакций: %w", err)
	}
	defer rows.Close()

	var transactions []model.Transaction
	for rows.Next() {
		var tx model.Transaction
		if err := rows.Scan(
			&tx.ID,
			&tx.UserID,
			&tx.WalletID,
			&tx.ToWalletID,
			&tx.CategoryID,
			&tx.Amount,
			&tx.TransactionType,
			&tx.Description,
			&tx.OccurredOn,
			&tx.TemplateID,
			&tx.CreatedAt,
		); err != nil {
			r.logger.WithError(err).Error("Ошибка чтения строки транзакции")
			return nil, fmt.Errorf("ошибка чтения транзакции: %w", err)
		}
		transactions = append(transactions, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка обработки результатов: %w", err)
	}

	r.logger.WithField("count", len(transactions)).Debug("Транзакции успешно получены")
	return transactions, nil
}

// SumExpenses возвращает сумму расходов пользователя за период,
// при заданной категории - только по ней
func (r *TransactionRepository) SumExpenses(
	ctx context.Context,
	userID uuid.UUID,
	categoryID *uuid.UUID,
	startDate, endDate time.Time,
) (float64, error) {
	endDate = endDate.Add(24 * time.Hour)

	query := `
        SELECT COALESCE(SUM(amount), 0)
        FROM transactions
        WHERE user_id = $1
          AND transaction_type = 'expense'
          AND occurred_on >= $2 AND occurred_on < $3
    `
	args := []interface{}{userID, startDate, endDate}

	if categoryID != nil {
		query += " AND category_id = $4"
		args = append(args, *categoryID)
	}

	var total float64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		r.logger.WithError(err).Error("Ошибка подсчета суммы расходов")
		return 0, fmt.Errorf("ошибка подсчета расходов: %w", err)
	}

	return total, nil
}
