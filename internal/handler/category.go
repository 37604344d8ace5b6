package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/Yoodaddy171/MyLedge-sub000/internal/model"
	"github.com/Yoodaddy171/MyLedge-sub000/internal/service"
)

// CategoryHandler обрабатывает запросы по категориям
type CategoryHandler struct {
	categoryService *service.CategoryService
	logger          *logrus.Logger
}

// NewCategoryHandler создает новый CategoryHandler
func NewCategoryHandler(categoryService *service.CategoryService, logger *logrus.Logger) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService, logger: logger}
}

// RegisterRoutes регистрирует маршруты для категорий
func (h *CategoryHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/categories", h.CreateCategory).Methods("POST")
	router.HandleFunc("/categories", h.GetCategories).Methods("GET")
}

// CreateCategory обрабатывает запрос на создание категории
func (h *CategoryHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		http.Error(w, "Пользователь не авторизован", http.StatusUnauthorized)
		return
	}

	var req model.CreateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WithError(err).Error("Не удалось декодировать запрос на создание категории")
		http.Error(w, "Неверный формат запроса", http.StatusBadRequest)
		return
	}

	category, err := h.categoryService.CreateCategory(r.Context(), userID, req)
	if err != nil {
		h.logger.WithError(err).Error("Не удалось создать категорию")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(category)
}

// GetCategories возвращает категории пользователя
func (h *CategoryHandler) GetCategories(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		http.Error(w, "Пользователь не авторизован", http.StatusUnauthorized)
		return
	}

	categories, err := h.categoryService.GetUserCategories(r.Context(), userID)
	if err != nil {
		h.logger.WithError(err).Error("Не удалось получить категории пользователя")
		http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(categories)
}
