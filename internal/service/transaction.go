package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Yoodaddy171/MyLedge-sub000/internal/model"
	"github.com/Yoodaddy171/MyLedge-sub000/internal/repository"
	"github.com/Yoodaddy171/MyLedge-sub000/internal/schedule"
)

// TransactionService - ручной ввод операций. Эффект на балансы кошельков
// применяется в одной SQL-транзакции с записью операции, как и у генератора.
type TransactionService struct {
	walletRepo      *repository.WalletRepository
	transactionRepo *repository.TransactionRepository
	categoryRepo    *repository.CategoryRepository
	logger          *logrus.Logger
}

func NewTransactionService(
	walletRepo *repository.WalletRepository,
	transactionRepo *repository.TransactionRepository,
	categoryRepo *repository.CategoryRepository,
	logger *logrus.Logger,
) *TransactionService {
	return &TransactionService{
		walletRepo:      walletRepo,
		transactionRepo: transactionRepo,
		categoryRepo:    categoryRepo,
		logger:          logger,
	}
}

func (s *TransactionService) CreateTransaction(
	ctx context.Context,
	userID uuid.UUID,
	req model.CreateTransactionRequest,
) (*model.Transaction, error) {
	if req.Amount <= 0 {
		s.logger.Warn("Попытка создания транзакции с неположительной суммой")
		return nil, fmt.Errorf("сумма транзакции должна быть положительной")
	}

	// Проверяем принадлежность кошелька пользователю
	wallet, err := s.walletRepo.GetByID(ctx, req.WalletID)
	if err != nil {
		s.logger.WithError(err).Errorf("Ошибка получения кошелька %s", req.WalletID)
		return nil, fmt.Errorf("ошибка получения кошелька: %w", err)
	}
	if wallet.UserID != userID {
		s.logger.Warnf("Попытка операции с чужим кошельком: пользователь %s, владелец %s", userID, wallet.UserID)
		return nil, fmt.Errorf("кошелек не принадлежит пользователю")
	}

	if req.TransactionType == model.TransactionTypeTransfer {
		if req.ToWalletID == nil {
			return nil, fmt.Errorf("для перевода требуется кошелек-получатель")
		}
		toWallet, err := s.walletRepo.GetByID(ctx, *req.ToWalletID)
		if err != nil {
			return nil, fmt.Errorf("ошибка получения кошелька получателя: %w", err)
		}
		if toWallet.UserID != userID {
			return nil, fmt.Errorf("кошелек-получатель не принадлежит пользователю")
		}
		if toWallet.Currency != wallet.Currency {
			s.logger.Warnf("Попытка перевода между кошельками с разными валютами: %s -> %s",
				wallet.Currency, toWallet.Currency)
			return nil, fmt.Errorf("переводы возможны только между кошельками одной валюты")
		}
	}

	occurredOn := schedule.TruncateToDay(time.Now())
	if req.OccurredOn != "" {
		parsed, err := time.Parse("2006-01-02", req.OccurredOn)
		if err != nil {
			return nil, fmt.Errorf("неверный формат даты операции: %w", err)
		}
		occurredOn = parsed
	}

	transaction := &model.Transaction{
		ID:              uuid.New(),
		UserID:          userID,
		WalletID:        req.WalletID,
		ToWalletID:      req.ToWalletID,
		CategoryID:      req.CategoryID,
		Amount:          req.Amount,
		TransactionType: req.TransactionType,
		Description:     req.Description,
		OccurredOn:      occurredOn,
		CreatedAt:       time.Now(),
	}

	// Запись операции и эффект на балансы - одна SQL-транзакция
	db := s.walletRepo.GetDB()
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.WithError(err).Error("Ошибка начала транзакции")
		return nil, fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback()

	if err := s.transactionRepo.CreateTx(ctx, tx, transaction); err != nil {
		s.logger.WithError(err).Error("Ошибка создания записи об операции")
		return nil, fmt.Errorf("ошибка записи транзакции: %w", err)
	}

	switch transaction.TransactionType {
	case model.TransactionTypeIncome:
		err = s.walletRepo.UpdateBalanceTx(ctx, tx, transaction.WalletID, transaction.Amount)
	case model.TransactionTypeExpense:
		err = s.walletRepo.UpdateBalanceTx(ctx, tx, transaction.WalletID, -transaction.Amount)
	case model.TransactionTypeTransfer:
		// Источник читается под блокировкой строки: проверка средств
		// и дебет должны видеть один и тот же баланс
		var source *model.Wallet
		if source, err = s.walletRepo.GetByIDForUpdate(ctx, tx, transaction.WalletID); err != nil {
			break
		}
		if err = checkSufficientFunds(source.Balance, transaction.Amount); err != nil {
			break
		}
		if err = s.walletRepo.UpdateBalanceTx(ctx, tx, transaction.WalletID, -transaction.Amount); err == nil {
			err = s.walletRepo.UpdateBalanceTx(ctx, tx, *transaction.ToWalletID, transaction.Amount)
		}
	default:
		err = fmt.Errorf("неизвестный тип транзакции: %s", transaction.TransactionType)
	}
	if err != nil {
		s.logger.WithError(err).Error("Ошибка применения операции к балансу")
		return nil, fmt.Errorf("ошибка обновления баланса: %w", err)
	}

	if err := tx.Commit(); err != nil {
		s.logger.WithError(err).Error("Ошибка подтверждения транзакции")
		return nil, fmt.Errorf("ошибка подтверждения операции: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"transaction_id": transaction.ID,
		"type":           transaction.TransactionType,
		"amount":         transaction.Amount,
	}).Info("Транзакция успешно создана")

	return transaction, nil
}

// checkSufficientFunds проверяет, что на кошельке хватает средств на перевод.
// Ручные расходы допускают уход в минус, перевод чужих денег - нет.
func checkSufficientFunds(balance, amount float64) error {
	if balance < amount {
		return fmt.Errorf("недостаточно средств на кошельке")
	}
	return nil
}

// GetUserTransactions возвращает транзакции пользователя за период
func (s *TransactionService) GetUserTransactions(
	ctx context.Context,
	userID uuid.UUID,
	startDate, endDate time.Time,
) ([]model.Transaction, error) {
	if startDate.After(endDate) {
		return nil, fmt.Errorf("дата начала не может быть позже даты окончания")
	}

	transactions, err := s.transactionRepo.GetByUserAndPeriod(ctx, userID, startDate, endDate)
	if err != nil {
		s.logger.WithError(err).Error("Ошибка получения транзакций пользователя")
		return nil, fmt.Errorf("ошибка получения транзакций: %w", err)
	}

	return transactions, nil
}
