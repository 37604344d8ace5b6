package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/Yoodaddy171/MyLedge-sub000/internal/model"
	"github.com/Yoodaddy171/MyLedge-sub000/internal/service"
)

// WalletHandler обрабатывает запросы по кошелькам
type WalletHandler struct {
	walletService *service.WalletService
	logger        *logrus.Logger
}

// NewWalletHandler создает новый WalletHandler
func NewWalletHandler(walletService *service.WalletService, logger *logrus.Logger) *WalletHandler {
	return &WalletHandler{walletService: walletService, logger: logger}
}

// RegisterRoutes регистрирует маршруты для кошельков
func (h *WalletHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/wallets", h.CreateWallet).Methods("POST")
	router.HandleFunc("/wallets", h.GetWallets).Methods("GET")
}

// CreateWallet обрабатывает запрос на создание кошелька
func (h *WalletHandler) CreateWallet(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		http.Error(w, "Пользователь не авторизован", http.StatusUnauthorized)
		return
	}

	var req model.CreateWalletRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WithError(err).Error("Не удалось декодировать запрос на создание кошелька")
		http.Error(w, "Неверный формат запроса", http.StatusBadRequest)
		return
	}

	wallet, err := h.walletService.CreateWallet(r.Context(), userID, req)
	if err != nil {
		h.logger.WithError(err).Error("Не удалось создать кошелек")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(wallet)
}

// GetWallets возвращает кошельки пользователя
func (h *WalletHandler) GetWallets(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		http.Error(w, "Пользователь не авторизован", http.StatusUnauthorized)
		return
	}

	wallets, err := h.walletService.GetUserWallets(r.Context(), userID)
	if err != nil {
		h.logger.WithError(err).Error("Не удалось получить кошельки пользователя")
		http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(wallets)
}
