package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/Yoodaddy171/MyLedge-sub000/internal/service"
)

// ReportHandler обрабатывает запросы по отчетам и прогнозам
type ReportHandler struct {
	reportService   *service.ReportService
	forecastService *service.ForecastService
	logger          *logrus.Logger
}

// NewReportHandler создает новый ReportHandler
func NewReportHandler(
	reportService *service.ReportService,
	forecastService *service.ForecastService,
	logger *logrus.Logger,
) *ReportHandler {
	return &ReportHandler{
		reportService:   reportService,
		forecastService: forecastService,
		logger:          logger,
	}
}

// RegisterRoutes регистрирует маршруты для отчетов
func (h *ReportHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/reports/stats", h.GetStats).Methods("GET")
	router.HandleFunc("/reports/forecast", h.GetForecast).Methods("GET")
	router.HandleFunc("/reports/networth", h.GetNetWorth).Methods("GET")
}

// GetStats возвращает финансовую статистику за период
func (h *ReportHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		http.Error(w, "Пользователь не авторизован", http.StatusUnauthorized)
		return
	}

	startDate, endDate, err := parseDateRange(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	stats, err := h.reportService.GetFinancialStats(r.Context(), userID, startDate, endDate)
	if err != nil {
		h.logger.WithError(err).Error("Не удалось получить финансовую статистику")
		http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}

// GetForecast возвращает прогноз баланса на горизонт в месяцах
func (h *ReportHandler) GetForecast(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		http.Error(w, "Пользователь не авторизован", http.StatusUnauthorized)
		return
	}

	months := 0
	if s := r.URL.Query().Get("months"); s != "" {
		parsed, err := strconv.Atoi(s)
		if err != nil {
			http.Error(w, "Неверное значение параметра months", http.StatusBadRequest)
			return
		}
		months = parsed
	}

	forecast, err := h.forecastService.GetBalanceForecast(r.Context(), userID, months)
	if err != nil {
		h.logger.WithError(err).Error("Не удалось построить прогноз баланса")
		http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(forecast)
}

// GetNetWorth возвращает сводку по состоянию пользователя
func (h *ReportHandler) GetNetWorth(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		http.Error(w, "Пользователь не авторизован", http.StatusUnauthorized)
		return
	}

	summary, err := h.reportService.GetNetWorth(r.Context(), userID)
	if err != nil {
		h.logger.WithError(err).Error("Не удалось получить сводку состояния")
		http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(summary)
}
