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

type WalletService struct {
	userRepo   *repository.UserRepository
	walletRepo *repository.WalletRepository
	logger     *logrus.Logger
}

func NewWalletService(
	userRepo *repository.UserRepository,
	walletRepo *repository.WalletRepository,
	logger *logrus.Logger,
) *WalletService {
	return &WalletService{
		userRepo:   userRepo,
		walletRepo: walletRepo,
		logger:     logger,
	}
}

func (s *WalletService) CreateWallet(ctx context.Context, userID uuid.UUID, req model.CreateWalletRequest) (*model.Wallet, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("название кошелька обязательно")
	}
	if len(req.Currency) != 3 {
		return nil, fmt.Errorf("код валюты должен состоять из трех букв")
	}

	now := time.Now()
	wallet := &model.Wallet{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      req.Name,
		Balance:   0,
		Currency:  req.Currency,
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.logger.Infof("Создание нового кошелька %q для пользователя %s", req.Name, userID)
	if err := s.walletRepo.Create(ctx, wallet); err != nil {
		s.logger.WithError(err).Error("Ошибка при создании кошелька")
		return nil, fmt.Errorf("ошибка создания кошелька: %w", err)
	}

	s.logger.Infof("Успешно создан кошелек %s для пользователя %s", wallet.ID, userID)
	return wallet, nil
}

func (s *WalletService) GetUserWallets(ctx context.Context, userID uuid.UUID) ([]model.Wallet, error) {
	s.logger.Infof("Получение списка кошельков пользователя %s", userID)
	wallets, err := s.walletRepo.GetUserWallets(ctx, userID)
	if err != nil {
		s.logger.WithError(err).Error("Ошибка при получении кошельков пользователя")
		return nil, fmt.Errorf("ошибка получения кошельков: %w", err)
	}
	return wallets, nil
}
