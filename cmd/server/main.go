package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/Yoodaddy171/MyLedge-sub000/internal/config"
	"github.com/Yoodaddy171/MyLedge-sub000/internal/handler"
	"github.com/Yoodaddy171/MyLedge-sub000/internal/repository"
	"github.com/Yoodaddy171/MyLedge-sub000/internal/service"
)

func main() {
	// Настраиваем логгер
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetLevel(logrus.InfoLevel)

	// Загружаем конфигурацию
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.WithError(err).Fatal("Не удалось загрузить конфигурацию")
	}

	// Подключаемся к базе данных
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName,
	)
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		logger.WithError(err).Fatal("Не удалось открыть соединение с базой данных")
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.WithError(err).Fatal("База данных недоступна")
	}
	logger.Info("Соединение с базой данных установлено")

	// Создаем репозитории
	userRepo := repository.NewUserRepository(db, logger)
	walletRepo := repository.NewWalletRepository(db, logger)
	categoryRepo := repository.NewCategoryRepository(db, logger)
	transactionRepo := repository.NewTransactionRepository(db, logger)
	recurringRepo := repository.NewRecurringRepository(db, logger)
	budgetRepo := repository.NewBudgetRepository(db, logger)

	// Создаем сервисы
	emailSender := service.NewEmailSender(logger)
	ratesClient := service.NewRatesClient(logger)
	authService := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.TokenExpiry, logger)
	walletService := service.NewWalletService(userRepo, walletRepo, logger)
	categoryService := service.NewCategoryService(categoryRepo, logger)
	transactionService := service.NewTransactionService(walletRepo, transactionRepo, categoryRepo, logger)
	recurringService := service.NewRecurringService(recurringRepo, walletRepo, transactionRepo, categoryRepo, userRepo, emailSender, logger)
	forecastService := service.NewForecastService(recurringRepo, walletRepo, logger)
	budgetService := service.NewBudgetService(budgetRepo, transactionRepo, categoryRepo, userRepo, emailSender, logger)
	reportService := service.NewReportService(transactionRepo, walletRepo, categoryRepo, ratesClient, cfg.BaseCurrency, logger)

	// Создаем обработчики
	authHandler := handler.NewAuthHandler(authService, logger)
	walletHandler := handler.NewWalletHandler(walletService, logger)
	categoryHandler := handler.NewCategoryHandler(categoryService, logger)
	transactionHandler := handler.NewTransactionHandler(transactionService, logger)
	recurringHandler := handler.NewRecurringHandler(recurringService, logger)
	budgetHandler := handler.NewBudgetHandler(budgetService, logger)
	reportHandler := handler.NewReportHandler(reportService, forecastService, logger)

	// Настраиваем маршрутизацию
	router := mux.NewRouter()

	// Публичные маршруты аутентификации
	authRouter := router.PathPrefix("/auth").Subrouter()
	authHandler.RegisterRoutes(authRouter)

	// Защищенные маршруты
	apiRouter := router.PathPrefix("/api").Subrouter()
	apiRouter.Use(handler.AuthMiddleware(authService, logger))
	walletHandler.RegisterRoutes(apiRouter)
	categoryHandler.RegisterRoutes(apiRouter)
	transactionHandler.RegisterRoutes(apiRouter)
	recurringHandler.RegisterRoutes(apiRouter)
	budgetHandler.RegisterRoutes(apiRouter)
	reportHandler.RegisterRoutes(apiRouter)

	// Ежедневный запуск: генерация просроченных операций, затем проверка бюджетов
	c := cron.New()
	_, err = c.AddFunc(cfg.GenerateCron, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		today := time.Now()
		result, err := recurringService.ProcessDueTemplates(ctx, today)
		if err != nil {
			logger.WithError(err).Error("Ошибка при генерации регулярных операций")
		} else {
			logger.WithFields(logrus.Fields{
				"created": result.Created,
				"errors":  len(result.Errors),
			}).Info("Генерация регулярных операций завершена")
		}

		checkResult, err := budgetService.EvaluateAll(ctx, today)
		if err != nil {
			logger.WithError(err).Error("Ошибка при проверке бюджетов")
		} else {
			logger.WithFields(logrus.Fields{
				"checked": checkResult.Checked,
				"created": checkResult.Created,
			}).Info("Проверка бюджетов завершена")
		}
	})
	if err != nil {
		logger.WithError(err).Fatal("Не удалось настроить расписание генерации")
	}
	c.Start()
	defer c.Stop()

	// Запускаем HTTP сервер
	server := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		logger.WithField("port", cfg.HTTPPort).Info("Запуск HTTP сервера")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Ошибка HTTP сервера")
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Завершение работы сервера")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Ошибка при остановке сервера")
	}
	logger.Info("Сервер остановлен")
}
