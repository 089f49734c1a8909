package service

import (
	"context"
	"errors"
	"strings"

	"moneywise/internal/apperr"
	"moneywise/internal/models"
	"moneywise/internal/repo"
)

type CategoryStore interface {
	CreateCategory(ctx context.Context, userID, name, catType string, color, icon *string, budgetLimit *float64) (*models.Category, error)
	GetActiveCategory(ctx context.Context, userID, categoryID string) (*models.Category, error)
	ListCategories(ctx context.Context, userID, catType string, page, pageSize int) ([]models.Category, int64, error)
	UpdateCategory(ctx context.Context, userID, categoryID string, name, catType, color, icon *string, budgetLimit *float64) (*models.Category, error)
	SoftDeleteCategory(ctx context.Context, userID, categoryID string) error
}

type CategoryService struct {
	store CategoryStore
}

func NewCategoryService(store CategoryStore) *CategoryService {
	return &CategoryService{store: store}
}

type CategoryInput struct {
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Color       *string  `json:"color"`
	Icon        *string  `json:"icon"`
	BudgetLimit *float64 `json:"budgetLimit"`
}

func validCategoryType(t string) bool {
	return t == models.TypeRevenue || t == models.TypeExpense
}

func (s *CategoryService) Create(ctx context.Context, userID string, in CategoryInput) (*models.Category, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, apperr.E(apperr.KindValidation, "Le nom de la catégorie est requis")
	}
	if !validCategoryType(in.Type) {
		return nil, apperr.E(apperr.KindValidation, "Le type doit être REVENUE ou EXPENSE")
	}
	if in.BudgetLimit != nil && *in.BudgetLimit < 0 {
		return nil, apperr.E(apperr.KindValidation, "La limite de budget doit être positive")
	}

	cat, err := s.store.CreateCategory(ctx, userID, in.Name, in.Type, in.Color, in.Icon, in.BudgetLimit)
	if errors.Is(err, repo.ErrDuplicate) {
		return nil, apperr.E(apperr.KindConflict, "Une catégorie avec ce nom existe déjà")
	}
	return cat, err
}

func (s *CategoryService) Get(ctx context.Context, userID, categoryID string) (*models.Category, error) {
	cat, err := s.store.GetActiveCategory(ctx, userID, categoryID)
	return cat, notFound(err, "Catégorie non trouvée")
}

type CategoryList struct {
	Categories []models.Category `json:"categories"`
	Pagination models.Pagination `json:"pagination"`
}

func (s *CategoryService) List(ctx context.Context, userID, catType string, page, pageSize int) (*CategoryList, error) {
	if catType != "" && !validCategoryType(catType) {
		return nil, apperr.E(apperr.KindValidation, "Le type doit être REVENUE ou EXPENSE")
	}
	page, pageSize = normalizePage(page, pageSize)

	cats, total, err := s.store.ListCategories(ctx, userID, catType, page, pageSize)
	if err != nil {
		return nil, err
	}
	if cats == nil {
		cats = []models.Category{}
	}
	return &CategoryList{Categories: cats, Pagination: models.NewPagination(page, pageSize, total)}, nil
}

type CategoryUpdate struct {
	Name        *string  `json:"name"`
	Type        *string  `json:"type"`
	Color       *string  `json:"color"`
	Icon        *string  `json:"icon"`
	BudgetLimit *float64 `json:"budgetLimit"`
}

func (s *CategoryService) Update(ctx context.Context, userID, categoryID string, in CategoryUpdate) (*models.Category, error) {
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return nil, apperr.E(apperr.KindValidation, "Le nom de la catégorie est requis")
	}
	if in.Type != nil && !validCategoryType(*in.Type) {
		return nil, apperr.E(apperr.KindValidation, "Le type doit être REVENUE ou EXPENSE")
	}
	if in.BudgetLimit != nil && *in.BudgetLimit < 0 {
		return nil, apperr.E(apperr.KindValidation, "La limite de budget doit être positive")
	}

	cat, err := s.store.UpdateCategory(ctx, userID, categoryID, in.Name, in.Type, in.Color, in.Icon, in.BudgetLimit)
	if errors.Is(err, repo.ErrDuplicate) {
		return nil, apperr.E(apperr.KindConflict, "Une catégorie avec ce nom existe déjà")
	}
	return cat, notFound(err, "Catégorie non trouvée")
}

func (s *CategoryService) Delete(ctx context.Context, userID, categoryID string) error {
	return notFound(s.store.SoftDeleteCategory(ctx, userID, categoryID), "Catégorie non trouvée")
}
