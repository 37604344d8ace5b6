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

type CategoryService struct {
	categoryRepo *repository.CategoryRepository
	logger       *logrus.Logger
}

func NewCategoryService(categoryRepo *repository.CategoryRepository, logger *logrus.Logger) *CategoryService {
	return &CategoryService{categoryRepo: categoryRepo, logger: logger}
}

func (s *CategoryService) CreateCategory(ctx context.Context, userID uuid.UUID, req model.CreateCategoryRequest) (*model.Category, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("название категории обязательно")
	}
	if req.Kind != "income" && req.Kind != "expense" {
		return nil, fmt.Errorf("тип категории должен быть income или expense")
	}

	category := &model.Category{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      req.Name,
		Kind:      req.Kind,
		CreatedAt: time.Now(),
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		s.logger.WithError(err).Error("Ошибка создания категории")
		return nil, fmt.Errorf("ошибка создания категории: %w", err)
	}

	s.logger.Infof("Категория %q создана для пользователя %s", category.Name, userID)
	return category, nil
}

func (s *CategoryService) GetUserCategories(ctx context.Context, userID uuid.UUID) ([]model.Category, error) {
	categories, err := s.categoryRepo.GetUserCategories(ctx, userID)
	if err != nil {
		s.logger.WithError(err).Error("Ошибка получения категорий пользователя")
		return nil, fmt.Errorf("ошибка получения категорий: %w", err)
	}
	return categories, nil
}
