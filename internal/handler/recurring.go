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

// RecurringHandler обрабатывает запросы по шаблонам регулярных операций
type RecurringHandler struct {
	recurringService *service.RecurringService
	logger           *logrus.Logger
}

// NewRecurringHandler создает новый RecurringHandler
func NewRecurringHandler(recurringService *service.RecurringService, logger *logrus.Logger) *RecurringHandler {
	return &RecurringHandler{recurringService: recurringService, logger: logger}
}

// RegisterRoutes регистрирует маршруты для шаблонов
func (h *RecurringHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/recurring", h.CreateTemplate).Methods("POST")
	router.HandleFunc("/recurring", h.GetTemplates).Methods("GET")
	router.HandleFunc("/recurring/run", h.RunGeneration).Methods("POST")
	router.HandleFunc("/recurring/{id}", h.UpdateTemplate).Methods("PUT")
	router.HandleFunc("/recurring/{id}", h.DeleteTemplate).Methods("DELETE")
	router.HandleFunc("/recurring/{id}/pause", h.PauseTemplate).Methods("POST")
	router.HandleFunc("/recurring/{id}/resume", h.ResumeTemplate).Methods("POST")
	router.HandleFunc("/recurring/{id}/generate", h.GenerateNow).Methods("POST")
}

// CreateTemplate обрабатывает запрос на создание шаблона
func (h *RecurringHandler) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		http.Error(w, "Пользователь не авторизован", http.StatusUnauthorized)
		return
	}

	var req model.CreateRecurringTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WithError(err).Error("Не удалось декодировать запрос на создание шаблона")
		http.Error(w, "Неверный формат запроса", http.StatusBadRequest)
		return
	}

	template, err := h.recurringService.CreateTemplate(r.Context(), userID, req)
	if err != nil {
		h.logger.WithError(err).Error("Не удалось создать шаблон регулярной операции")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(template)
}

// GetTemplates возвращает шаблоны пользователя
func (h *RecurringHandler) GetTemplates(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		http.Error(w, "Пользователь не авторизован", http.StatusUnauthorized)
		return
	}

	templates, err := h.recurringService.GetUserTemplates(r.Context(), userID)
	if err != nil {
		h.logger.WithError(err).Error("Не удалось получить шаблоны пользователя")
		http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(templates)
}

// UpdateTemplate изменяет параметры шаблона
func (h *RecurringHandler) UpdateTemplate(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		http.Error(w, "Пользователь не авторизован", http.StatusUnauthorized)
		return
	}

	templateID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Неверный идентификатор шаблона", http.StatusBadRequest)
		return
	}

	var req model.UpdateRecurringTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WithError(err).Error("Не удалось декодировать запрос на обновление шаблона")
		http.Error(w, "Неверный формат запроса", http.StatusBadRequest)
		return
	}

	template, err := h.recurringService.UpdateTemplate(r.Context(), userID, templateID, req)
	if err != nil {
		h.logger.WithError(err).Error("Не удалось обновить шаблон")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(template)
}

// DeleteTemplate удаляет шаблон
func (h *RecurringHandler) DeleteTemplate(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		http.Error(w, "Пользователь не авторизован", http.StatusUnauthorized)
		return
	}

	templateID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Неверный идентификатор шаблона", http.StatusBadRequest)
		return
	}

	if err := h.recurringService.DeleteTemplate(r.Context(), userID, templateID); err != nil {
		h.logger.WithError(err).Error("Не удалось удалить шаблон")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RunGeneration запускает генерацию просроченных операций пользователя
func (h *RecurringHandler) RunGeneration(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		http.Error(w, "Пользователь не авторизован", http.StatusUnauthorized)
		return
	}

	result, err := h.recurringService.RunForUser(r.Context(), userID, time.Now())
	if err != nil {
		h.logger.WithError(err).Error("Не удалось запустить генерацию операций")
		http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// PauseTemplate приостанавливает шаблон
func (h *RecurringHandler) PauseTemplate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, false)
}

// ResumeTemplate возобновляет шаблон
func (h *RecurringHandler) ResumeTemplate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, true)
}

func (h *RecurringHandler) setActive(w http.ResponseWriter, r *http.Request, active bool) {
	userID, ok := userIDFromContext(r)
	if !ok {
		http.Error(w, "Пользователь не авторизован", http.StatusUnauthorized)
		return
	}

	templateID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Неверный идентификатор шаблона", http.StatusBadRequest)
		return
	}

	if err := h.recurringService.SetTemplateActive(r.Context(), userID, templateID, active); err != nil {
		h.logger.WithError(err).Error("Не удалось изменить статус шаблона")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"is_active": active})
}

// GenerateNow выполняет немедленную генерацию по одному шаблону
func (h *RecurringHandler) GenerateNow(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		http.Error(w, "Пользователь не авторизован", http.StatusUnauthorized)
		return
	}

	templateID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Неверный идентификатор шаблона", http.StatusBadRequest)
		return
	}

	result, err := h.recurringService.GenerateNow(r.Context(), userID, templateID, time.Now())
	if err != nil {
		h.logger.WithError(err).Error("Не удалось выполнить генерацию по шаблону")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}
