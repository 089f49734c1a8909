package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"moneywise/internal/apperr"
	"moneywise/internal/logx"
	"moneywise/internal/models"
	"moneywise/internal/repo"
)

// LargeExpenseThreshold is the fixed amount above which a single expense
// raises a LARGE_EXPENSE alert.
const LargeExpenseThreshold = 500.0

type AlertStore interface {
	ListBudgetedCategories(ctx context.Context, userID string) ([]models.Category, error)
	GetActiveCategory(ctx context.Context, userID, categoryID string) (*models.Category, error)
	SpentByCategory(ctx context.Context, userID string, start, end time.Time) (map[string]float64, error)
	ListActiveInRange(ctx context.Context, userID string, start, end time.Time, txType, categoryID string, limit int) ([]models.Transaction, error)
	CreateAlert(ctx context.Context, userID, alertType, sourceType string, categoryID, transactionID *string, message string, amount, threshold *float64) (*models.BudgetAlert, error)
	CreateAlertDedup(ctx context.Context, userID, alertType, sourceType string, categoryID, transactionID *string, message string, amount, threshold *float64) (*models.BudgetAlert, error)
	ListAlerts(ctx context.Context, userID string, f repo.AlertFilter) ([]models.BudgetAlert, int64, error)
	MarkAlertRead(ctx context.Context, userID, id string) (*models.BudgetAlert, error)
	GetAlertStats(ctx context.Context, userID string) (*repo.AlertStats, error)
}

type AlertService struct {
	store AlertStore
	log   *logx.Logger
	now   func() time.Time
}

func NewAlertService(store AlertStore, log *logx.Logger) *AlertService {
	return &AlertService{store: store, log: log.WithComponent("alerts"), now: time.Now}
}

// Generate recomputes the month's budget alerts for one user and returns
// the newly created ones. Duplicate suppression happens in the store, so
// concurrent invocations cannot double-insert.
func (s *AlertService) Generate(ctx context.Context, userID string) ([]models.BudgetAlert, error) {
	now := s.now()
	start := repo.MonthStart(now)

	categories, err := s.store.ListBudgetedCategories(ctx, userID)
	if err != nil {
		return nil, err
	}
	spent, err := s.store.SpentByCategory(ctx, userID, start, now)
	if err != nil {
		return nil, err
	}

	created := []models.BudgetAlert{}
	for _, cat := range categories {
		if cat.BudgetLimit == nil || *cat.BudgetLimit <= 0 {
			continue
		}
		limit := *cat.BudgetLimit
		amount := spent[cat.ID]

		// Exceeded wins over threshold; at most one alert per category
		// per invocation.
		var alertType, message string
		switch {
		case amount > limit:
			alertType = models.AlertBudgetExceeded
			message = fmt.Sprintf("Budget dépassé pour %s : %.2f€ dépensés sur %.2f€", cat.Name, amount, limit)
		case amount >= 0.9*limit:
			alertType = models.AlertThresholdReached
			pct := int(math.Round(amount / limit * 100))
			message = fmt.Sprintf("Seuil d'alerte atteint pour %s : %.2f€ dépensés (%d%% du budget)", cat.Name, amount, pct)
		default:
			continue
		}

		catID := cat.ID
		alert, err := s.store.CreateAlertDedup(ctx, userID, alertType, models.SourceCategory, &catID, nil, message, &amount, &limit)
		if err != nil {
			return nil, err
		}
		if alert != nil {
			created = append(created, *alert)
		}
	}

	expenses, err := s.store.ListActiveInRange(ctx, userID, start, now, models.TypeExpense, "", 0)
	if err != nil {
		return nil, err
	}
	for _, tx := range expenses {
		if tx.Amount < LargeExpenseThreshold {
			continue
		}
		desc := "sans description"
		if tx.Description != nil && *tx.Description != "" {
			desc = *tx.Description
		}
		message := fmt.Sprintf("Dépense importante : %.2f€ pour %s", tx.Amount, desc)
		txID := tx.ID
		amount := tx.Amount

		alert, err := s.store.CreateAlertDedup(ctx, userID, models.AlertLargeExpense, models.SourceTransaction, tx.CategoryID, &txID, message, &amount, nil)
		if err != nil {
			return nil, err
		}
		if alert != nil {
			created = append(created, *alert)
		}
	}

	return created, nil
}

type AlertList struct {
	Alerts     []models.BudgetAlert `json:"alerts"`
	Pagination models.Pagination    `json:"pagination"`
}

func (s *AlertService) List(ctx context.Context, userID string, f repo.AlertFilter) (*AlertList, error) {
	f.Page, f.PageSize = normalizePage(f.Page, f.PageSize)

	alerts, total, err := s.store.ListAlerts(ctx, userID, f)
	if err != nil {
		return nil, err
	}
	if alerts == nil {
		alerts = []models.BudgetAlert{}
	}
	return &AlertList{Alerts: alerts, Pagination: models.NewPagination(f.Page, f.PageSize, total)}, nil
}

func (s *AlertService) MarkRead(ctx context.Context, userID, alertID string) (*models.BudgetAlert, error) {
	alert, err := s.store.MarkAlertRead(ctx, userID, alertID)
	return alert, notFound(err, "Alerte non trouvée")
}

type ManualAlertInput struct {
	Type       string   `json:"type"`
	SourceType string   `json:"sourceType"`
	CategoryID *string  `json:"categoryId"`
	Message    string   `json:"message"`
	Amount     *float64 `json:"amount"`
	Threshold  *float64 `json:"threshold"`
}

func validAlertType(t string) bool {
	switch t {
	case models.AlertBudgetExceeded, models.AlertThresholdReached, models.AlertLargeExpense:
		return true
	}
	return false
}

func validSourceType(t string) bool {
	switch t {
	case models.SourceGlobal, models.SourceCategory, models.SourceTransaction:
		return true
	}
	return false
}

func (s *AlertService) Create(ctx context.Context, userID string, in ManualAlertInput) (*models.BudgetAlert, error) {
	if !validAlertType(in.Type) {
		return nil, apperr.E(apperr.KindValidation, "Type d'alerte invalide")
	}
	if in.SourceType == "" {
		in.SourceType = models.SourceGlobal
	}
	if !validSourceType(in.SourceType) {
		return nil, apperr.E(apperr.KindValidation, "Type de source invalide")
	}
	if in.Message == "" {
		return nil, apperr.E(apperr.KindValidation, "Le message est requis")
	}
	if in.CategoryID != nil {
		if _, err := s.store.GetActiveCategory(ctx, userID, *in.CategoryID); err != nil {
			return nil, notFound(err, "Catégorie non trouvée")
		}
	}
	return s.store.CreateAlert(ctx, userID, in.Type, in.SourceType, in.CategoryID, nil, in.Message, in.Amount, in.Threshold)
}

func (s *AlertService) Stats(ctx context.Context, userID string) (*repo.AlertStats, error) {
	return s.store.GetAlertStats(ctx, userID)
}
