package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Yoodaddy171/MyLedge-sub000/internal/model"
	"github.com/Yoodaddy171/MyLedge-sub000/internal/repository"
	"github.com/Yoodaddy171/MyLedge-sub000/internal/schedule"
)

// RecurringService - генератор транзакций по повторяющимся шаблонам.
// Курсор next_occurrence шаблона служит механизмом идемпотентности:
// каждое вхождение материализуется в одной SQL-транзакции вместе со
// сдвигом курсора, поэтому повторный прогон за тот же день не создает
// дубликатов - он видит уже сдвинутый курсор и не делает ничего.
type RecurringService struct {
	recurringRepo   *repository.RecurringRepository
	walletRepo      *repository.WalletRepository
	transactionRepo *repository.TransactionRepository
	categoryRepo    *repository.CategoryRepository
	userRepo        *repository.UserRepository
	emailSender     *EmailSender
	logger          *logrus.Logger
}

func NewRecurringService(
	recurringRepo *repository.RecurringRepository,
	walletRepo *repository.WalletRepository,
	transactionRepo *repository.TransactionRepository,
	categoryRepo *repository.CategoryRepository,
	userRepo *repository.UserRepository,
	emailSender *EmailSender,
	logger *logrus.Logger,
) *RecurringService {
	return &RecurringService{
		recurringRepo:   recurringRepo,
		walletRepo:      walletRepo,
		transactionRepo: transactionRepo,
		categoryRepo:    categoryRepo,
		userRepo:        userRepo,
		emailSender:     emailSender,
		logger:          logger,
	}
}

// CreateTemplate создает новый повторяющийся шаблон.
// Курсор next_occurrence инициализируется датой начала.
func (s *RecurringService) CreateTemplate(
	ctx context.Context,
	userID uuid.UUID,
	req model.CreateRecurringTemplateRequest,
) (*model.RecurringTemplate, error) {
	s.logger.WithFields(logrus.Fields{
		"user_id":   userID,
		"frequency": req.Frequency,
		"amount":    req.Amount,
	}).Info("Создание повторяющегося шаблона")

	if req.Amount <= 0 {
		return nil, fmt.Errorf("сумма шаблона должна быть положительной")
	}

	if _, err := schedule.ParseFrequency(req.Frequency); err != nil {
		return nil, err
	}

	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return nil, fmt.Errorf("неверный формат даты начала: %w", err)
	}

	var endDate *time.Time
	if req.EndDate != nil {
		parsed, err := time.Parse("2006-01-02", *req.EndDate)
		if err != nil {
			return nil, fmt.Errorf("неверный формат даты окончания: %w", err)
		}
		if parsed.Before(startDate) {
			return nil, fmt.Errorf("дата окончания раньше даты начала")
		}
		endDate = &parsed
	}

	// Проверяем принадлежность кошелька пользователю
	wallet, err := s.walletRepo.GetByID(ctx, req.WalletID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения кошелька: %w", err)
	}
	if wallet.UserID != userID {
		s.logger.Warnf("Попытка создания шаблона на чужой кошелек: пользователь %s, владелец %s",
			userID, wallet.UserID)
		return nil, fmt.Errorf("кошелек не принадлежит пользователю")
	}

	if req.TransactionType == model.TransactionTypeTransfer && req.ToWalletID == nil {
		return nil, fmt.Errorf("для перевода требуется кошелек-получатель")
	}

	autoGenerate := true
	if req.AutoGenerate != nil {
		autoGenerate = *req.AutoGenerate
	}

	now := time.Now()
	tpl := &model.RecurringTemplate{
		ID:              uuid.New(),
		UserID:          userID,
		WalletID:        req.WalletID,
		ToWalletID:      req.ToWalletID,
		CategoryID:      req.CategoryID,
		TransactionType: req.TransactionType,
		Amount:          req.Amount,
		Description:     req.Description,
		Frequency:       req.Frequency,
		StartDate:       startDate,
		EndDate:         endDate,
		NextOccurrence:  startDate,
		IsActive:        true,
		AutoGenerate:    autoGenerate,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.recurringRepo.Create(ctx, tpl); err != nil {
		s.logger.WithError(err).Error("Ошибка создания шаблона")
		return nil, fmt.Errorf("ошибка создания шаблона: %w", err)
	}

	s.logger.Infof("Шаблон %s успешно создан для пользователя %s", tpl.ID, userID)
	return tpl, nil
}

func (s *RecurringService) GetUserTemplates(ctx context.Context, userID uuid.UUID) ([]model.RecurringTemplate, error) {
	templates, err := s.recurringRepo.GetUserTemplates(ctx, userID)
	if err != nil {
		s.logger.WithError(err).Error("Ошибка получения шаблонов пользователя")
		return nil, fmt.Errorf("ошибка получения шаблонов: %w", err)
	}
	return templates, nil
}

// UpdateTemplate изменяет параметры шаблона. Курсор сбрасывается на новую
// дату начала: уже созданные операции не трогаем, а следующее вхождение
// считается по обновленному расписанию.
func (s *RecurringService) UpdateTemplate(
	ctx context.Context,
	userID, templateID uuid.UUID,
	req model.UpdateRecurringTemplateRequest,
) (*model.RecurringTemplate, error) {
	tpl, err := s.recurringRepo.GetByID(ctx, templateID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения шаблона: %w", err)
	}
	if tpl.UserID != userID {
		return nil, fmt.Errorf("шаблон не принадлежит пользователю")
	}

	if req.Amount <= 0 {
		return nil, fmt.Errorf("сумма шаблона должна быть положительной")
	}
	if _, err := schedule.ParseFrequency(req.Frequency); err != nil {
		return nil, err
	}

	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return nil, fmt.Errorf("неверный формат даты начала: %w", err)
	}

	var endDate *time.Time
	if req.EndDate != nil {
		parsed, err := time.Parse("2006-01-02", *req.EndDate)
		if err != nil {
			return nil, fmt.Errorf("неверный формат даты окончания: %w", err)
		}
		if parsed.Before(startDate) {
			return nil, fmt.Errorf("дата окончания раньше даты начала")
		}
		endDate = &parsed
	}

	tpl.Amount = req.Amount
	tpl.Description = req.Description
	tpl.Frequency = req.Frequency
	tpl.StartDate = startDate
	tpl.EndDate = endDate
	tpl.NextOccurrence = startDate
	if req.AutoGenerate != nil {
		tpl.AutoGenerate = *req.AutoGenerate
	}

	if err := s.recurringRepo.Update(ctx, tpl); err != nil {
		s.logger.WithError(err).Error("Ошибка обновления шаблона")
		return nil, fmt.Errorf("ошибка обновления шаблона: %w", err)
	}

	s.logger.Infof("Шаблон %s обновлен, курсор сброшен на %s",
		tpl.ID, startDate.Format("2006-01-02"))
	return tpl, nil
}

// DeleteTemplate удаляет шаблон. Созданные им операции остаются
// в истории - внешний ключ переводится в NULL на стороне базы.
func (s *RecurringService) DeleteTemplate(ctx context.Context, userID, templateID uuid.UUID) error {
	tpl, err := s.recurringRepo.GetByID(ctx, templateID)
	if err != nil {
		return fmt.Errorf("ошибка получения шаблона: %w", err)
	}
	if tpl.UserID != userID {
		return fmt.Errorf("шаблон не принадлежит пользователю")
	}

	if err := s.recurringRepo.Delete(ctx, templateID); err != nil {
		s.logger.WithError(err).Error("Ошибка удаления шаблона")
		return fmt.Errorf("ошибка удаления шаблона: %w", err)
	}

	s.logger.Infof("Шаблон %s удален", templateID)
	return nil
}

// SetTemplateActive приостанавливает или возобновляет шаблон
func (s *RecurringService) SetTemplateActive(ctx context.Context, userID, templateID uuid.UUID, active bool) error {
	tpl, err := s.recurringRepo.GetByID(ctx, templateID)
	if err != nil {
		return fmt.Errorf("ошибка получения шаблона: %w", err)
	}
	if tpl.UserID != userID {
		return fmt.Errorf("шаблон не принадлежит пользователю")
	}

	if err := s.recurringRepo.SetActive(ctx, templateID, active); err != nil {
		s.logger.WithError(err).Errorf("Ошибка изменения состояния шаблона %s", templateID)
		return fmt.Errorf("ошибка изменения состояния шаблона: %w", err)
	}

	s.logger.Infof("Шаблон %s: is_active = %v", templateID, active)
	return nil
}

// ProcessDueTemplates - ежедневный прогон генератора по всем пользователям.
// Ошибки отдельных шаблонов собираются в результат и не прерывают прогон.
func (s *RecurringService) ProcessDueTemplates(ctx context.Context, today time.Time) (*model.GenerationResult, error) {
	today = schedule.TruncateToDay(today)
	s.logger.WithField("today", today.Format("2006-01-02")).Info("Запуск генерации повторяющихся транзакций")

	templates, err := s.recurringRepo.GetDueTemplates(ctx, today)
	if err != nil {
		s.logger.WithError(err).Error("Ошибка получения шаблонов к генерации")
		return nil, fmt.Errorf("ошибка получения шаблонов: %w", err)
	}

	s.logger.Infof("Найдено %d шаблонов к генерации", len(templates))
	result := s.processTemplates(ctx, templates, today)
	if len(result.Errors) > 0 {
		s.notifyGenerationFailures(ctx, templates, result.Errors)
	}
	return result, nil
}

// notifyGenerationFailures рассылает владельцам проблемных шаблонов
// письма о сбоях автоматического прогона. Сбой отправки не влияет
// на результат генерации - транзакции уже зафиксированы.
func (s *RecurringService) notifyGenerationFailures(
	ctx context.Context,
	templates []model.RecurringTemplate,
	errs []model.TemplateError,
) {
	for userID, failed := range failuresByUser(templates, errs) {
		user, err := s.userRepo.GetByID(ctx, userID)
		if err != nil {
			s.logger.WithError(err).Errorf("Не удалось получить пользователя %s для уведомления о сбоях", userID)
			continue
		}

		go func(email string, failed int) {
			if err := s.emailSender.SendGenerationFailureNotification(email, failed); err != nil {
				s.logger.WithError(err).Error("Ошибка отправки уведомления о сбоях генерации")
			}
		}(user.Email, failed)
	}
}

// failuresByUser считает число проблемных шаблонов на каждого владельца
func failuresByUser(templates []model.RecurringTemplate, errs []model.TemplateError) map[uuid.UUID]int {
	owners := make(map[uuid.UUID]uuid.UUID, len(templates))
	for i := range templates {
		owners[templates[i].ID] = templates[i].UserID
	}

	failures := make(map[uuid.UUID]int)
	for _, e := range errs {
		owner, ok := owners[e.TemplateID]
		if !ok {
			continue
		}
		failures[owner]++
	}
	return failures
}

// RunForUser - прогон генератора по шаблонам одного пользователя ("запустить сейчас")
func (s *RecurringService) RunForUser(ctx context.Context, userID uuid.UUID, today time.Time) (*model.GenerationResult, error) {
	today = schedule.TruncateToDay(today)

	templates, err := s.recurringRepo.GetDueTemplatesForUser(ctx, userID, today)
	if err != nil {
		s.logger.WithError(err).Error("Ошибка получения шаблонов пользователя к генерации")
		return nil, fmt.Errorf("ошибка получения шаблонов: %w", err)
	}

	return s.processTemplates(ctx, templates, today), nil
}

// GenerateNow материализует просроченные вхождения одного шаблона вручную.
// В отличие от автоматического прогона работает и при auto_generate = false.
func (s *RecurringService) GenerateNow(ctx context.Context, userID, templateID uuid.UUID, today time.Time) (*model.GenerationResult, error) {
	today = schedule.TruncateToDay(today)

	tpl, err := s.recurringRepo.GetByID(ctx, templateID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения шаблона: %w", err)
	}
	if tpl.UserID != userID {
		s.logger.Warnf("Попытка генерации по чужому шаблону: пользователь %s, владелец %s", userID, tpl.UserID)
		return nil, fmt.Errorf("шаблон не принадлежит пользователю")
	}
	if !tpl.IsActive {
		return nil, fmt.Errorf("шаблон приостановлен")
	}

	return s.processTemplates(ctx, []model.RecurringTemplate{*tpl}, today), nil
}

func (s *RecurringService) processTemplates(ctx context.Context, templates []model.RecurringTemplate, today time.Time) *model.GenerationResult {
	result := &model.GenerationResult{}

	for i := range templates {
		created, err := s.processTemplate(ctx, &templates[i], today)
		result.Created += created
		if err != nil {
			s.logger.WithError(err).Errorf("Ошибка обработки шаблона %s", templates[i].ID)
			result.Errors = append(result.Errors, model.TemplateError{
				TemplateID:  templates[i].ID,
				Description: templates[i].Description,
				Error:       err.Error(),
			})
			continue
		}
	}

	s.logger.WithFields(logrus.Fields{
		"created": result.Created,
		"errors":  len(result.Errors),
	}).Info("Генерация повторяющихся транзакций завершена")

	return result
}

// dueOccurrences возвращает даты вхождений шаблона, подлежащие генерации
// на дату today: от курсора включительно, не позже today и end_date.
// Догоняющая семантика: шаблон, пропустивший N периодов, дает N дат.
func dueOccurrences(tpl *model.RecurringTemplate, today time.Time) []time.Time {
	freq, err := schedule.ParseFrequency(tpl.Frequency)
	if err != nil {
		return nil
	}

	var due []time.Time
	cursor := schedule.TruncateToDay(tpl.NextOccurrence)

	for !cursor.After(today) {
		// Дата за end_date - терминальное состояние шаблона
		if tpl.EndDate != nil && cursor.After(*tpl.EndDate) {
			break
		}
		due = append(due, cursor)
		cursor = schedule.Advance(cursor, freq)
	}

	return due
}

// processTemplate выполняет догоняющий цикл по одному шаблону.
// Вхождения создаются строго в хронологическом порядке - каждый шаг
// зависит от предыдущего значения курсора.
func (s *RecurringService) processTemplate(ctx context.Context, tpl *model.RecurringTemplate, today time.Time) (int, error) {
	freq, err := schedule.ParseFrequency(tpl.Frequency)
	if err != nil {
		return 0, err
	}

	created := 0
	for _, occurrence := range dueOccurrences(tpl, today) {
		next := schedule.Advance(occurrence, freq)

		ok, err := s.materializeOccurrence(ctx, tpl, occurrence, next)
		if err != nil {
			return created, err
		}
		if !ok {
			// Курсор в базе уже не совпадает с ожидаемым: вхождение
			// забрал параллельный прогон. Безопасно остановиться.
			s.logger.WithFields(logrus.Fields{
				"template_id": tpl.ID,
				"occurrence":  occurrence.Format("2006-01-02"),
			}).Debug("Вхождение уже сгенерировано параллельным прогоном")
			break
		}

		created++
	}

	return created, nil
}

// materializeOccurrence создает одну транзакцию по шаблону и двигает курсор
// в одной SQL-транзакции. Возвращает false без ошибки, если вхождение уже
// было создано другим прогоном (проверка пре-образа курсора или уникальное
// ограничение на пару шаблон+дата).
func (s *RecurringService) materializeOccurrence(
	ctx context.Context,
	tpl *model.RecurringTemplate,
	occurrence, next time.Time,
) (bool, error) {
	db := s.recurringRepo.GetDB()
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback()

	// Оптимистический сдвиг курсора: проходит только если курсор в базе
	// все еще равен ожидаемому значению
	advanced, err := s.recurringRepo.AdvanceCursorTx(ctx, tx, tpl.ID, occurrence, next, occurrence)
	if err != nil {
		return false, err
	}
	if !advanced {
		return false, nil
	}

	transaction := &model.Transaction{
		ID:              uuid.New(),
		UserID:          tpl.UserID,
		WalletID:        tpl.WalletID,
		ToWalletID:      tpl.ToWalletID,
		CategoryID:      tpl.CategoryID,
		Amount:          tpl.Amount,
		TransactionType: tpl.TransactionType,
		Description:     tpl.Description,
		OccurredOn:      occurrence,
		TemplateID:      &tpl.ID,
		CreatedAt:       time.Now(),
	}

	if err := s.transactionRepo.CreateTx(ctx, tx, transaction); err != nil {
		if repository.IsUniqueViolation(err) {
			// Дубликат пары (шаблон, дата): вхождение уже создано
			// другим процессом, тихо пропускаем
			return false, nil
		}
		return false, fmt.Errorf("ошибка записи транзакции: %w", err)
	}

	if err := s.applyBalanceEffectTx(ctx, tx, transaction); err != nil {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("ошибка подтверждения транзакции: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"template_id":    tpl.ID,
		"transaction_id": transaction.ID,
		"occurred_on":    occurrence.Format("2006-01-02"),
		"amount":         tpl.Amount,
	}).Info("Создана транзакция по шаблону")

	return true, nil
}

// applyBalanceEffectTx применяет эффект транзакции к балансам кошельков
func (s *RecurringService) applyBalanceEffectTx(ctx context.Context, tx *sql.Tx, transaction *model.Transaction) error {
	switch transaction.TransactionType {
	case model.TransactionTypeIncome:
		if err := s.walletRepo.UpdateBalanceTx(ctx, tx, transaction.WalletID, transaction.Amount); err != nil {
			return fmt.Errorf("ошибка зачисления средств: %w", err)
		}
	case model.TransactionTypeExpense:
		if err := s.walletRepo.UpdateBalanceTx(ctx, tx, transaction.WalletID, -transaction.Amount); err != nil {
			return fmt.Errorf("ошибка списания средств: %w", err)
		}
	case model.TransactionTypeTransfer:
		if transaction.ToWalletID == nil {
			return fmt.Errorf("у перевода отсутствует кошелек-получатель")
		}
		if err := s.walletRepo.UpdateBalanceTx(ctx, tx, transaction.WalletID, -transaction.Amount); err != nil {
			return fmt.Errorf("ошибка списания средств: %w", err)
		}
		if err := s.walletRepo.UpdateBalanceTx(ctx, tx, *transaction.ToWalletID, transaction.Amount); err != nil {
			return fmt.Errorf("ошибка зачисления средств: %w", err)
		}
	default:
		return fmt.Errorf("неизвестный тип транзакции: %s", transaction.TransactionType)
	}

	return nil
}
