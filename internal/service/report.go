package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Yoodaddy171/MyLedge-sub000/internal/model"
	"github.com/Yoodaddy171/MyLedge-sub000/internal/repository"
)

type ReportService struct {
	transactionRepo *repository.TransactionRepository
	walletRepo      *repository.WalletRepository
	categoryRepo    *repository.CategoryRepository
	ratesClient     *RatesClient
	baseCurrency    string
	logger          *logrus.Logger
}

func NewReportService(
	transactionRepo *repository.TransactionRepository,
	walletRepo *repository.WalletRepository,
	categoryRepo *repository.CategoryRepository,
	ratesClient *RatesClient,
	baseCurrency string,
	logger *logrus.Logger,
) *ReportService {
	return &ReportService{
		transactionRepo: transactionRepo,
		walletRepo:      walletRepo,
		categoryRepo:    categoryRepo,
		ratesClient:     ratesClient,
		baseCurrency:    baseCurrency,
		logger:          logger,
	}
}

// GetFinancialStats возвращает статистику по доходам/расходам за период
func (s *ReportService) GetFinancialStats(
	ctx context.Context,
	userID uuid.UUID,
	startDate, endDate time.Time,
) (*model.FinancialStats, error) {
	s.logger.WithFields(logrus.Fields{
		"user_id":    userID,
		"start_date": startDate.Format("2006-01-02"),
		"end_date":   endDate.Format("2006-01-02"),
	}).Debug("Начало расчета финансовой статистики")

	// Валидация дат
	if startDate.After(endDate) {
		s.logger.Warn("Дата начала периода позже даты окончания")
		return nil, fmt.Errorf("дата начала не может быть позже даты окончания")
	}

	transactions, err := s.transactionRepo.GetByUserAndPeriod(ctx, userID, startDate, endDate)
	if err != nil {
		s.logger.WithError(err).Error("Ошибка получения транзакций для анализа")
		return nil, fmt.Errorf("не удалось получить транзакции: %w", err)
	}

	// Имена категорий для группировки
	categories, err := s.categoryRepo.GetUserCategories(ctx, userID)
	if err != nil {
		s.logger.WithError(err).Warn("Не удалось получить категории, группировка по идентификаторам")
		categories = nil
	}
	categoryNames := make(map[uuid.UUID]string, len(categories))
	for _, c := range categories {
		categoryNames[c.ID] = c.Name
	}

	stats := &model.FinancialStats{
		ByCategory: make(map[string]model.CategoryStats),
	}

	for _, tx := range transactions {
		// Переводы не являются ни доходом, ни расходом
		if tx.TransactionType == model.TransactionTypeTransfer {
			continue
		}

		name := "без категории"
		if tx.CategoryID != nil {
			if n, ok := categoryNames[*tx.CategoryID]; ok {
				name = n
			} else {
				name = tx.CategoryID.String()
			}
		}

		categoryStats := stats.ByCategory[name]

		if tx.TransactionType == model.TransactionTypeIncome {
			stats.TotalIncome += tx.Amount
			categoryStats.Income += tx.Amount
		} else {
			stats.TotalExpenses += tx.Amount
			categoryStats.Expenses += tx.Amount
		}
		categoryStats.Count++
		stats.ByCategory[name] = categoryStats
	}

	stats.NetBalance = stats.TotalIncome - stats.TotalExpenses

	s.logger.WithFields(logrus.Fields{
		"income":       stats.TotalIncome,
		"expenses":     stats.TotalExpenses,
		"balance":      stats.NetBalance,
		"categories":   len(stats.ByCategory),
		"transactions": len(transactions),
	}).Info("Финансовая статистика успешно рассчитана")

	return stats, nil
}

// GetNetWorth возвращает суммарное состояние пользователя по всем кошелькам
// с пересчетом в базовую валюту. При недоступности курса кошелек учитывается
// по номиналу с предупреждением в логе.
func (s *ReportService) GetNetWorth(ctx context.Context, userID uuid.UUID) (*model.NetWorthSummary, error) {
	s.logger.WithField("user_id", userID).Info("Расчет суммарного состояния")

	wallets, err := s.walletRepo.GetUserWallets(ctx, userID)
	if err != nil {
		s.logger.WithError(err).Error("Ошибка получения кошельков пользователя")
		return nil, fmt.Errorf("ошибка получения кошельков: %w", err)
	}

	summary := &model.NetWorthSummary{
		BaseCurrency: s.baseCurrency,
		Wallets:      make([]model.WalletSummary, 0, len(wallets)),
	}

	// Кэш курсов в рамках одного запроса
	rates := map[string]float64{s.baseCurrency: 1}

	for _, w := range wallets {
		rate, ok := rates[w.Currency]
		if !ok {
			fetched, err := s.ratesClient.GetRate(w.Currency)
			if err != nil {
				s.logger.WithError(err).Warnf("Курс %s недоступен, кошелек учитывается по номиналу", w.Currency)
				fetched = 1
			}
			rates[w.Currency] = fetched
			rate = fetched
		}

		converted := w.Balance * rate
		summary.Total += converted
		summary.Wallets = append(summary.Wallets, model.WalletSummary{
			WalletID:  w.ID.String(),
			Name:      w.Name,
			Currency:  w.Currency,
			Balance:   w.Balance,
			Converted: converted,
		})
	}

	s.logger.WithFields(logrus.Fields{
		"wallets": len(wallets),
		"total":   summary.Total,
	}).Info("Суммарное состояние рассчитано")

	return summary, nil
}
