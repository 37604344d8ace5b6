package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Yoodaddy171/MyLedge-sub000/internal/model"
	"github.com/Yoodaddy171/MyLedge-sub000/internal/repository"
	"github.com/Yoodaddy171/MyLedge-sub000/internal/schedule"
)

// BudgetService проверяет расход по бюджетам и создает уведомления при
// пересечении настроенных порогов. Дедупликация: не более одного
// уведомления на тройку (бюджет, порог, календарный период) - проверка
// существования перед вставкой плюс уникальное ограничение в базе.
type BudgetService struct {
	budgetRepo      *repository.BudgetRepository
	transactionRepo *repository.TransactionRepository
	categoryRepo    *repository.CategoryRepository
	userRepo        *repository.UserRepository
	emailSender     *EmailSender
	logger          *logrus.Logger
}

func NewBudgetService(
	budgetRepo *repository.BudgetRepository,
	transactionRepo *repository.TransactionRepository,
	categoryRepo *repository.CategoryRepository,
	userRepo *repository.UserRepository,
	emailSender *EmailSender,
	logger *logrus.Logger,
) *BudgetService {
	return &BudgetService{
		budgetRepo:      budgetRepo,
		transactionRepo: transactionRepo,
		categoryRepo:    categoryRepo,
		userRepo:        userRepo,
		emailSender:     emailSender,
		logger:          logger,
	}
}

func (s *BudgetService) CreateBudget(ctx context.Context, userID uuid.UUID, req model.CreateBudgetRequest) (*model.Budget, error) {
	if req.Amount <= 0 {
		return nil, fmt.Errorf("лимит бюджета должен быть положительным")
	}

	period := req.Period
	if period == "" {
		period = "monthly"
	}
	if period != "monthly" {
		return nil, fmt.Errorf("поддерживается только месячный период бюджета")
	}

	thresholds := req.AlertThresholds
	if len(thresholds) == 0 {
		thresholds = model.DefaultAlertThresholds
	}
	for _, t := range thresholds {
		if t <= 0 {
			return nil, fmt.Errorf("пороги уведомлений должны быть положительными")
		}
	}

	// Категория, если задана, должна принадлежать пользователю
	if req.CategoryID != nil {
		category, err := s.categoryRepo.GetByID(ctx, *req.CategoryID)
		if err != nil {
			return nil, fmt.Errorf("ошибка получения категории: %w", err)
		}
		if category.UserID != userID {
			return nil, fmt.Errorf("категория не принадлежит пользователю")
		}
	}

	now := time.Now()
	budget := &model.Budget{
		ID:              uuid.New(),
		UserID:          userID,
		CategoryID:      req.CategoryID,
		Amount:          req.Amount,
		Period:          period,
		AlertThresholds: thresholds,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.budgetRepo.Create(ctx, budget); err != nil {
		s.logger.WithError(err).Error("Ошибка создания бюджета")
		return nil, fmt.Errorf("ошибка создания бюджета: %w", err)
	}

	s.logger.Infof("Бюджет %s создан для пользователя %s (лимит %.2f)", budget.ID, userID, budget.Amount)
	return budget, nil
}

func (s *BudgetService) GetUserBudgets(ctx context.Context, userID uuid.UUID) ([]model.Budget, error) {
	budgets, err := s.budgetRepo.GetUserBudgets(ctx, userID)
	if err != nil {
		s.logger.WithError(err).Error("Ошибка получения бюджетов пользователя")
		return nil, fmt.Errorf("ошибка получения бюджетов: %w", err)
	}
	return budgets, nil
}

func (s *BudgetService) GetUserAlerts(ctx context.Context, userID uuid.UUID) ([]model.BudgetAlert, error) {
	alerts, err := s.budgetRepo.GetUserAlerts(ctx, userID)
	if err != nil {
		s.logger.WithError(err).Error("Ошибка получения уведомлений пользователя")
		return nil, fmt.Errorf("ошибка получения уведомлений: %w", err)
	}
	return alerts, nil
}

func (s *BudgetService) MarkAlertRead(ctx context.Context, userID, alertID uuid.UUID) error {
	if err := s.budgetRepo.MarkAlertRead(ctx, alertID, userID); err != nil {
		return fmt.Errorf("ошибка обновления уведомления: %w", err)
	}
	return nil
}

// EvaluateAll - ежедневная проверка бюджетов всех пользователей
func (s *BudgetService) EvaluateAll(ctx context.Context, today time.Time) (*model.BudgetCheckResult, error) {
	users, err := s.budgetRepo.GetUsersWithBudgets(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Ошибка получения пользователей с бюджетами")
		return nil, fmt.Errorf("ошибка получения пользователей: %w", err)
	}

	total := &model.BudgetCheckResult{}
	for _, userID := range users {
		result, err := s.EvaluateBudgets(ctx, userID, today)
		if err != nil {
			// Ошибка одного пользователя не прерывает проверку остальных
			s.logger.WithError(err).Errorf("Ошибка проверки бюджетов пользователя %s", userID)
			continue
		}
		total.Checked += result.Checked
		total.Created += result.Created
	}

	s.logger.WithFields(logrus.Fields{
		"users":   len(users),
		"checked": total.Checked,
		"created": total.Created,
	}).Info("Ежедневная проверка бюджетов завершена")

	return total, nil
}

// EvaluateBudgets проверяет бюджеты одного пользователя за текущий период.
// Безопасна к повторным вызовам в течение дня: по уже пересеченным порогам
// новые уведомления не создаются.
func (s *BudgetService) EvaluateBudgets(ctx context.Context, userID uuid.UUID, today time.Time) (*model.BudgetCheckResult, error) {
	today = schedule.TruncateToDay(today)
	periodStart := schedule.PeriodStart(today)

	s.logger.WithFields(logrus.Fields{
		"user_id":      userID,
		"period_start": periodStart.Format("2006-01-02"),
	}).Debug("Проверка бюджетов пользователя")

	budgets, err := s.budgetRepo.GetUserBudgets(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения бюджетов: %w", err)
	}

	result := &model.BudgetCheckResult{}
	for i := range budgets {
		budget := &budgets[i]
		result.Checked++

		created, err := s.evaluateBudget(ctx, budget, periodStart, today)
		if err != nil {
			// Ошибка одного бюджета не прерывает проверку остальных
			s.logger.WithError(err).Errorf("Ошибка проверки бюджета %s", budget.ID)
			continue
		}
		result.Created += created
	}

	return result, nil
}

func (s *BudgetService) evaluateBudget(
	ctx context.Context,
	budget *model.Budget,
	periodStart, today time.Time,
) (int, error) {
	spend, err := s.transactionRepo.SumExpenses(ctx, budget.UserID, budget.CategoryID, periodStart, today)
	if err != nil {
		return 0, fmt.Errorf("ошибка подсчета расходов: %w", err)
	}

	percentUsed := spend / budget.Amount * 100

	thresholds := budget.AlertThresholds
	if len(thresholds) == 0 {
		thresholds = model.DefaultAlertThresholds
	}

	created := 0
	// Пороги проверяются независимо: уведомление о 100% не отменяет
	// и не заменяет ранее созданное уведомление о 80%
	for _, threshold := range crossedThresholds(percentUsed, thresholds) {
		exists, err := s.budgetRepo.AlertExists(ctx, budget.ID, threshold, periodStart)
		if err != nil {
			return created, err
		}
		if exists {
			continue
		}

		alert := &model.BudgetAlert{
			ID:               uuid.New(),
			UserID:           budget.UserID,
			BudgetID:         budget.ID,
			ThresholdPercent: threshold,
			PeriodStart:      periodStart,
			Message:          alertMessage(threshold, percentUsed, budget.Amount),
			TriggeredAt:      time.Now(),
		}

		if err := s.budgetRepo.CreateAlert(ctx, alert); err != nil {
			if repository.IsUniqueViolation(err) {
				// Уведомление уже создано параллельной проверкой
				s.logger.WithField("budget_id", budget.ID).Debug("Уведомление уже существует, пропускаем")
				continue
			}
			return created, err
		}

		created++
		s.logger.WithFields(logrus.Fields{
			"budget_id": budget.ID,
			"threshold": threshold,
			"used":      percentUsed,
		}).Info("Создано уведомление о пересечении порога бюджета")

		s.notifyAlert(ctx, budget.UserID, alert)
	}

	return created, nil
}

// crossedThresholds возвращает пороги, пересеченные текущим расходом,
// в порядке возрастания. Порядок хранения порогов в базе не гарантирован.
func crossedThresholds(percentUsed float64, thresholds []float64) []float64 {
	var crossed []float64
	for _, t := range thresholds {
		if percentUsed >= t {
			crossed = append(crossed, t)
		}
	}
	sort.Float64s(crossed)
	return crossed
}

// alertMessage формирует текст уведомления: "превышен" для порогов от 100%,
// "приближается к лимиту" для меньших
func alertMessage(threshold, percentUsed, limit float64) string {
	if threshold >= 100 {
		return fmt.Sprintf("Бюджет превышен: израсходовано %.1f%% лимита %.2f", percentUsed, limit)
	}
	return fmt.Sprintf("Расход приближается к лимиту бюджета: %.1f%% из %.2f (порог %.0f%%)",
		percentUsed, limit, threshold)
}

// notifyAlert отправляет email о новом уведомлении после фиксации в базе
func (s *BudgetService) notifyAlert(ctx context.Context, userID uuid.UUID, alert *model.BudgetAlert) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil || user.Email == "" {
		return
	}

	go func() {
		if err := s.emailSender.SendBudgetAlertNotification(user.Email, alert.Message, alert.ThresholdPercent); err != nil {
			s.logger.WithError(err).Warn("Не удалось отправить email уведомление")
		}
	}()
}
