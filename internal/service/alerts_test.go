package service

import (
	"context"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moneywise/internal/apperr"
	"moneywise/internal/logx"
	"moneywise/internal/models"
	"moneywise/internal/repo"
)

// fakeAlertStore mimics the dedup behavior of the partial unique
// indexes: one unread category alert per (category, type) per month, one
// per (transaction, type).
type fakeAlertStore struct {
	categories []models.Category
	txs        []models.Transaction
	alerts     []models.BudgetAlert
	nextID     int
}

func (f *fakeAlertStore) ListBudgetedCategories(_ context.Context, _ string) ([]models.Category, error) {
	var out []models.Category
	for _, c := range f.categories {
		if c.BudgetLimit != nil && c.Status == models.StatusActive {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeAlertStore) GetActiveCategory(_ context.Context, _, categoryID string) (*models.Category, error) {
	for _, c := range f.categories {
		if c.ID == categoryID && c.Status == models.StatusActive {
			cat := c
			return &cat, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (f *fakeAlertStore) SpentByCategory(_ context.Context, _ string, start, end time.Time) (map[string]float64, error) {
	spent := map[string]float64{}
	for _, t := range f.txs {
		if t.Type == models.TypeExpense && t.Status == models.StatusActive && t.CategoryID != nil &&
			!t.Date.Before(start) && !t.Date.After(end) {
			spent[*t.CategoryID] += t.Amount
		}
	}
	return spent, nil
}

func (f *fakeAlertStore) ListActiveInRange(_ context.Context, _ string, start, end time.Time, txType, _ string, _ int) ([]models.Transaction, error) {
	var out []models.Transaction
	for _, t := range f.txs {
		if t.Status != models.StatusActive || t.Date.Before(start) || t.Date.After(end) {
			continue
		}
		if txType != "" && t.Type != txType {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (f *fakeAlertStore) CreateAlert(_ context.Context, userID, alertType, sourceType string, categoryID, transactionID *string, message string, amount, threshold *float64) (*models.BudgetAlert, error) {
	f.nextID++
	a := models.BudgetAlert{
		ID:            strconv.Itoa(f.nextID),
		UserID:        userID,
		Type:          alertType,
		SourceType:    sourceType,
		CategoryID:    categoryID,
		TransactionID: transactionID,
		Message:       message,
		Amount:        amount,
		Threshold:     threshold,
		Status:        models.StatusActive,
		CreatedAt:     time.Now(),
	}
	f.alerts = append(f.alerts, a)
	return &a, nil
}

func (f *fakeAlertStore) CreateAlertDedup(ctx context.Context, userID, alertType, sourceType string, categoryID, transactionID *string, message string, amount, threshold *float64) (*models.BudgetAlert, error) {
	for _, a := range f.alerts {
		if a.Status != models.StatusActive || a.IsRead || a.Type != alertType {
			continue
		}
		if transactionID != nil && a.TransactionID != nil && *a.TransactionID == *transactionID {
			return nil, nil
		}
		if transactionID == nil && categoryID != nil && a.CategoryID != nil && a.TransactionID == nil && *a.CategoryID == *categoryID {
			return nil, nil
		}
	}
	return f.CreateAlert(ctx, userID, alertType, sourceType, categoryID, transactionID, message, amount, threshold)
}

func (f *fakeAlertStore) ListAlerts(_ context.Context, _ string, flt repo.AlertFilter) ([]models.BudgetAlert, int64, error) {
	return f.alerts, int64(len(f.alerts)), nil
}

func (f *fakeAlertStore) MarkAlertRead(_ context.Context, _, id string) (*models.BudgetAlert, error) {
	for i := range f.alerts {
		if f.alerts[i].ID == id {
			f.alerts[i].IsRead = true
			a := f.alerts[i]
			return &a, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (f *fakeAlertStore) GetAlertStats(_ context.Context, _ string) (*repo.AlertStats, error) {
	s := &repo.AlertStats{Total: int64(len(f.alerts))}
	for _, a := range f.alerts {
		if !a.IsRead {
			s.Unread++
		}
	}
	return s, nil
}

func newAlertFixture(budget float64, expenses ...float64) (*AlertService, *fakeAlertStore) {
	catID := "cat-1"
	store := &fakeAlertStore{
		categories: []models.Category{{
			ID:          catID,
			Name:        "Groceries",
			Type:        models.TypeExpense,
			BudgetLimit: &budget,
			Status:      models.StatusActive,
		}},
	}
	for i, amount := range expenses {
		id := catID
		desc := fmt.Sprintf("achat %d", i+1)
		store.txs = append(store.txs, models.Transaction{
			ID:          fmt.Sprintf("tx-%d", i+1),
			Type:        models.TypeExpense,
			Amount:      amount,
			CategoryID:  &id,
			Description: &desc,
			Date:        time.Now(),
			Status:      models.StatusActive,
		})
	}
	svc := NewAlertService(store, logx.New("error"))
	return svc, store
}

func alertTypes(alerts []models.BudgetAlert) []string {
	types := make([]string, len(alerts))
	for i, a := range alerts {
		types[i] = a.Type
	}
	return types
}

func TestGenerateBudgetExceededAndLargeExpense(t *testing.T) {
	svc, _ := newAlertFixture(500, 600)

	alerts, err := svc.Generate(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, alerts, 2)
	assert.ElementsMatch(t, []string{models.AlertBudgetExceeded, models.AlertLargeExpense}, alertTypes(alerts))

	for _, a := range alerts {
		if a.Type == models.AlertBudgetExceeded {
			require.NotNil(t, a.Amount)
			require.NotNil(t, a.Threshold)
			assert.Equal(t, 600.0, *a.Amount)
			assert.Equal(t, 500.0, *a.Threshold)
			assert.Equal(t, models.SourceCategory, a.SourceType)
		}
		if a.Type == models.AlertLargeExpense {
			assert.Equal(t, models.SourceTransaction, a.SourceType)
			require.NotNil(t, a.TransactionID)
		}
	}
}

func TestGenerateThresholdReached(t *testing.T) {
	svc, _ := newAlertFixture(500, 460)

	alerts, err := svc.Generate(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, models.AlertThresholdReached, alerts[0].Type)
	assert.Contains(t, alerts[0].Message, "92%")
}

func TestGenerateBelowThresholdNoAlerts(t *testing.T) {
	svc, _ := newAlertFixture(500, 400)

	alerts, err := svc.Generate(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Empty(t, alerts)
}

func TestGenerateExceededSuppressesThreshold(t *testing.T) {
	svc, _ := newAlertFixture(500, 300, 150, 150)

	alerts, err := svc.Generate(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, models.AlertBudgetExceeded, alerts[0].Type)
}

func TestGenerateIdempotent(t *testing.T) {
	svc, store := newAlertFixture(500, 600)

	first, err := svc.Generate(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, first, 2)

	second, err := svc.Generate(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Empty(t, second)
	assert.Len(t, store.alerts, 2)
}

func TestManualAlertValidation(t *testing.T) {
	svc, _ := newAlertFixture(500)

	_, err := svc.Create(context.Background(), "user-1", ManualAlertInput{Type: "BOGUS", Message: "x"})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = svc.Create(context.Background(), "user-1", ManualAlertInput{Type: models.AlertLargeExpense})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	missing := "cat-missing"
	_, err = svc.Create(context.Background(), "user-1", ManualAlertInput{
		Type:       models.AlertBudgetExceeded,
		Message:    "test",
		CategoryID: &missing,
	})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestManualAlertDefaultsToGlobalSource(t *testing.T) {
	svc, _ := newAlertFixture(500)

	alert, err := svc.Create(context.Background(), "user-1", ManualAlertInput{
		Type:    models.AlertBudgetExceeded,
		Message: "alerte manuelle",
	})
	require.NoError(t, err)
	assert.Equal(t, models.SourceGlobal, alert.SourceType)
}
