package service

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moneywise/internal/apperr"
	"moneywise/internal/models"
	"moneywise/internal/repo"
)

type fakeCategoryStore struct {
	categories map[string]*models.Category
	nextID     int
}

func newFakeCategoryStore() *fakeCategoryStore {
	return &fakeCategoryStore{categories: map[string]*models.Category{}}
}

func (f *fakeCategoryStore) CreateCategory(_ context.Context, userID, name, catType string, color, icon *string, budgetLimit *float64) (*models.Category, error) {
	for _, c := range f.categories {
		if c.UserID == userID && c.Name == name && c.Type == catType && c.Status == models.StatusActive {
			return nil, repo.ErrDuplicate
		}
	}
	f.nextID++
	c := &models.Category{
		ID:          "cat-" + strconv.Itoa(f.nextID),
		UserID:      userID,
		Name:        name,
		Type:        catType,
		Color:       color,
		Icon:        icon,
		BudgetLimit: budgetLimit,
		Status:      models.StatusActive,
	}
	f.categories[c.ID] = c
	return c, nil
}

func (f *fakeCategoryStore) GetActiveCategory(_ context.Context, userID, categoryID string) (*models.Category, error) {
	c, ok := f.categories[categoryID]
	if !ok || c.UserID != userID || c.Status != models.StatusActive {
		return nil, repo.ErrNotFound
	}
	return c, nil
}

func (f *fakeCategoryStore) ListCategories(_ context.Context, userID, catType string, page, pageSize int) ([]models.Category, int64, error) {
	var out []models.Category
	for _, c := range f.categories {
		if c.UserID != userID || c.Status != models.StatusActive {
			continue
		}
		if catType != "" && c.Type != catType {
			continue
		}
		out = append(out, *c)
	}
	return out, int64(len(out)), nil
}

func (f *fakeCategoryStore) UpdateCategory(_ context.Context, userID, categoryID string, name, catType, color, icon *string, budgetLimit *float64) (*models.Category, error) {
	c, ok := f.categories[categoryID]
	if !ok || c.UserID != userID || c.Status != models.StatusActive {
		return nil, repo.ErrNotFound
	}
	if name != nil {
		c.Name = *name
	}
	if catType != nil {
		c.Type = *catType
	}
	if color != nil {
		c.Color = color
	}
	if icon != nil {
		c.Icon = icon
	}
	if budgetLimit != nil {
		c.BudgetLimit = budgetLimit
	}
	return c, nil
}

func (f *fakeCategoryStore) SoftDeleteCategory(_ context.Context, userID, categoryID string) error {
	c, ok := f.categories[categoryID]
	if !ok || c.UserID != userID || c.Status != models.StatusActive {
		return repo.ErrNotFound
	}
	c.Status = models.StatusDeleted
	return nil
}

func TestCreateCategory(t *testing.T) {
	svc := NewCategoryService(newFakeCategoryStore())
	ctx := context.Background()

	limit := 500.0
	cat, err := svc.Create(ctx, "u1", CategoryInput{Name: " Courses ", Type: models.TypeExpense, BudgetLimit: &limit})
	require.NoError(t, err)
	assert.Equal(t, "Courses", cat.Name)

	_, err = svc.Create(ctx, "u1", CategoryInput{Name: "Courses", Type: models.TypeExpense})
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	assert.Equal(t, "Une catégorie avec ce nom existe déjà", apperr.Message(err))

	_, err = svc.Create(ctx, "u1", CategoryInput{Name: "", Type: models.TypeExpense})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = svc.Create(ctx, "u1", CategoryInput{Name: "Divers", Type: "TRANSFER"})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	negative := -10.0
	_, err = svc.Create(ctx, "u1", CategoryInput{Name: "Divers", Type: models.TypeExpense, BudgetLimit: &negative})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestUpdateCategory(t *testing.T) {
	store := newFakeCategoryStore()
	svc := NewCategoryService(store)
	ctx := context.Background()

	cat, err := svc.Create(ctx, "u1", CategoryInput{Name: "Courses", Type: models.TypeExpense})
	require.NoError(t, err)

	name := "Alimentation"
	updated, err := svc.Update(ctx, "u1", cat.ID, CategoryUpdate{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Alimentation", updated.Name)

	_, err = svc.Update(ctx, "u1", "cat-missing", CategoryUpdate{Name: &name})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	assert.Equal(t, "Catégorie non trouvée", apperr.Message(err))

	blank := "  "
	_, err = svc.Update(ctx, "u1", cat.ID, CategoryUpdate{Name: &blank})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestDeleteCategory(t *testing.T) {
	store := newFakeCategoryStore()
	svc := NewCategoryService(store)
	ctx := context.Background()

	cat, err := svc.Create(ctx, "u1", CategoryInput{Name: "Courses", Type: models.TypeExpense})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, "u1", cat.ID))
	_, err = svc.Get(ctx, "u1", cat.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	err = svc.Delete(ctx, "u1", cat.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestListCategoriesRejectsUnknownType(t *testing.T) {
	svc := NewCategoryService(newFakeCategoryStore())

	_, err := svc.List(context.Background(), "u1", "TRANSFER", 1, 10)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	list, err := svc.List(context.Background(), "u1", "", 0, 0)
	require.NoError(t, err)
	assert.NotNil(t, list.Categories)
	assert.Equal(t, defaultPageSize, list.Pagination.PageSize)
}
