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

// ForecastService строит прогнозную кривую баланса по повторяющимся шаблонам.
// Прогноз - чистая симуляция: курсоры шаблонов копируются в память и
// никогда не записываются обратно, в отличие от генератора, который
// двигает реальные курсоры тем же самым schedule.Advance.
type ForecastService struct {
	recurringRepo *repository.RecurringRepository
	walletRepo    *repository.WalletRepository
	logger        *logrus.Logger
}

func NewForecastService(
	recurringRepo *repository.RecurringRepository,
	walletRepo *repository.WalletRepository,
	logger *logrus.Logger,
) *ForecastService {
	return &ForecastService{
		recurringRepo: recurringRepo,
		walletRepo:    walletRepo,
		logger:        logger,
	}
}

// forecastEvent - одно смоделированное будущее вхождение шаблона.
// Существует только в памяти на время построения прогноза.
type forecastEvent struct {
	date   time.Time
	amount float64 // со знаком: доход +, расход -
	label  string
}

// Project строит прогноз баланса от startingBalance до horizonEnd.
// Чистая функция своих аргументов: шаблоны не изменяются, повторный
// вызов с теми же входами дает тот же результат.
func Project(
	startingBalance float64,
	templates []model.RecurringTemplate,
	today, horizonEnd time.Time,
) []model.ForecastPoint {
	today = schedule.TruncateToDay(today)

	var events []forecastEvent
	for i := range templates {
		events = append(events, templateEvents(&templates[i], today, horizonEnd)...)
	}

	// Стабильная сортировка: при совпадении дат сохраняется порядок вставки
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].date.Before(events[j].date)
	})

	points := make([]model.ForecastPoint, 0, len(events)+1)
	points = append(points, model.ForecastPoint{
		Date:    today,
		Balance: startingBalance,
		Label:   "Сегодня",
	})

	balance := startingBalance
	for _, ev := range events {
		balance += ev.amount
		points = append(points, model.ForecastPoint{
			Date:    ev.date,
			Balance: balance,
			Label:   ev.label,
		})
	}

	return points
}

// templateEvents моделирует вхождения одного шаблона по локальной копии
// курсора. Некорректные шаблоны пропускаются целиком: прогноз отдает
// лучшую доступную кривую и не падает из-за одного плохого шаблона.
func templateEvents(tpl *model.RecurringTemplate, today, horizonEnd time.Time) []forecastEvent {
	if !tpl.IsActive {
		return nil
	}
	if tpl.Amount <= 0 || tpl.NextOccurrence.IsZero() {
		return nil
	}
	// Переводы не меняют суммарное состояние и в прогноз не входят
	if tpl.TransactionType == model.TransactionTypeTransfer {
		return nil
	}

	freq, err := schedule.ParseFrequency(tpl.Frequency)
	if err != nil {
		return nil
	}

	signed := tpl.Amount
	if tpl.TransactionType == model.TransactionTypeExpense {
		signed = -tpl.Amount
	}

	var events []forecastEvent
	// Локальная копия курсора: реальный шаблон не изменяется
	cursor := schedule.TruncateToDay(tpl.NextOccurrence)

	for !cursor.After(horizonEnd) {
		if tpl.EndDate != nil && cursor.After(*tpl.EndDate) {
			break
		}
		// Вхождения не позже today принадлежат генератору, а не прогнозу:
		// они материализуются в реальный баланс при ближайшем прогоне
		if cursor.After(today) {
			events = append(events, forecastEvent{
				date:   cursor,
				amount: signed,
				label:  tpl.Description,
			})
		}
		cursor = schedule.Advance(cursor, freq)
	}

	return events
}

// GetBalanceForecast возвращает прогноз суммарного баланса пользователя
// на указанное число месяцев вперед (по умолчанию 6)
func (s *ForecastService) GetBalanceForecast(
	ctx context.Context,
	userID uuid.UUID,
	months int,
) ([]model.ForecastPoint, error) {
	if months <= 0 {
		months = 6
	}
	if months > 24 {
		return nil, fmt.Errorf("горизонт прогноза должен быть от 1 до 24 месяцев")
	}

	s.logger.WithFields(logrus.Fields{
		"user_id": userID,
		"months":  months,
	}).Info("Расчет прогноза баланса")

	wallets, err := s.walletRepo.GetUserWallets(ctx, userID)
	if err != nil {
		s.logger.WithError(err).Error("Ошибка получения кошельков пользователя")
		return nil, fmt.Errorf("ошибка получения кошельков: %w", err)
	}

	var currentBalance float64
	for _, w := range wallets {
		currentBalance += w.Balance
	}

	templates, err := s.recurringRepo.GetActiveUserTemplates(ctx, userID)
	if err != nil {
		s.logger.WithError(err).Error("Ошибка получения шаблонов пользователя")
		return nil, fmt.Errorf("ошибка получения шаблонов: %w", err)
	}

	today := time.Now()
	horizonEnd := schedule.TruncateToDay(today).AddDate(0, months, 0)

	points := Project(currentBalance, templates, today, horizonEnd)

	s.logger.WithFields(logrus.Fields{
		"start_balance": currentBalance,
		"end_balance":   points[len(points)-1].Balance,
		"points":        len(points),
	}).Info("Прогноз баланса рассчитан")

	return points, nil
}
