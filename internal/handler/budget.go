package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/Yoodaddy171/MyLedge-sub000/internal/model"
	"github.com/Yoodaddy171/MyLedge-sub000/internal/service"
)

// BudgetHandler обрабатывает запросы по бюджетам и оповещениям
type BudgetHandler struct {
	budgetService *service.BudgetService
	logger        *logrus.Logger
}

// NewBudgetHandler создает новый BudgetHandler
func NewBudgetHandler(budgetService *service.BudgetService, logger *logrus.Logger) *BudgetHandler {
	return &BudgetHandler{budgetService: budgetService, logger: logger}
}

// RegisterRoutes регистрирует маршруты для бюджетов
func (h *BudgetHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/budgets", h.CreateBudget).Methods("POST")
	router.HandleFunc("/budgets", h.GetBudgets).Methods("GET")
	router.HandleFunc("/budgets/check", h.CheckBudgets).Methods("POST")
	router.HandleFunc("/budgets/alerts", h.GetAlerts).Methods("GET")
	router.HandleFunc("/budgets/alerts/{id}/read", h.MarkAlertRead).Methods("POST")
}

// CreateBudget обрабатывает запрос на создание бюджета
func (h *BudgetHandler) CreateBudget(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		http.Error(w, "Пользователь не авторизован", http.StatusUnauthorized)
		return
	}

	var req model.CreateBudgetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WithError(err).Error("Не удалось декодировать запрос на создание бюджета")
		http.Error(w, "Неверный формат запроса", http.StatusBadRequest)
		return
	}

	budget, err := h.budgetService.CreateBudget(r.Context(), userID, req)
	if err != nil {
		h.logger.WithError(err).Error("Не удалось создать бюджет")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(budget)
}

// GetBudgets возвращает бюджеты пользователя
func (h *BudgetHandler) GetBudgets(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		http.Error(w, "Пользователь не авторизован", http.StatusUnauthorized)
		return
	}

	budgets, err := h.budgetService.GetUserBudgets(r.Context(), userID)
	if err != nil {
		h.logger.WithError(err).Error("Не удалось получить бюджеты пользователя")
		http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(budgets)
}

// CheckBudgets запускает проверку бюджетов пользователя
func (h *BudgetHandler) CheckBudgets(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		http.Error(w, "Пользователь не авторизован", http.StatusUnauthorized)
		return
	}

	result, err := h.budgetService.EvaluateBudgets(r.Context(), userID, time.Now())
	if err != nil {
		h.logger.WithError(err).Error("Не удалось выполнить проверку бюджетов")
		http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// GetAlerts возвращает оповещения пользователя
func (h *BudgetHandler) GetAlerts(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		http.Error(w, "Пользователь не авторизован", http.StatusUnauthorized)
		return
	}

	alerts, err := h.budgetService.GetUserAlerts(r.Context(), userID)
	if err != nil {
		h.logger.WithError(err).Error("Не удалось получить оповещения пользователя")
		http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(alerts)
}

// MarkAlertRead отмечает оповещение прочитанным
func (h *BudgetHandler) MarkAlertRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		http.Error(w, "Пользователь не авторизован", http.StatusUnauthorized)
		return
	}

	alertID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Неверный идентификатор оповещения", http.StatusBadRequest)
		return
	}

	if err := h.budgetService.MarkAlertRead(r.Context(), userID, alertID); err != nil {
		h.logger.WithError(err).Error("Не удалось отметить оповещение прочитанным")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"is_read": true})
}
