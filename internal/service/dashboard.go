package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"moneywise/internal/models"
	"moneywise/internal/repo"
)

type DashboardStore interface {
	TotalAmount(ctx context.Context, userID, txType string, start, end time.Time) (float64, error)
	CountTransactions(ctx context.Context, userID string, start, end time.Time) (int64, error)
	CountUnreadAlerts(ctx context.Context, userID string) (int64, error)
	RecentTransactions(ctx context.Context, userID string, limit int) ([]models.Transaction, error)
	ListBudgetedCategories(ctx context.Context, userID string) ([]models.Category, error)
	SpentByCategory(ctx context.Context, userID string, start, end time.Time) (map[string]float64, error)
	ExpensesByCategory(ctx context.Context, userID string, start, end time.Time) ([]repo.CategoryExpense, error)
	MonthlyTotals(ctx context.Context, userID string, start, end time.Time) ([]repo.MonthlyTotal, error)
	SumBudgetLimits(ctx context.Context, userID string) (float64, error)
}

type DashboardService struct {
	store DashboardStore
	now   func() time.Time
}

func NewDashboardService(store DashboardStore) *DashboardService {
	return &DashboardService{store: store, now: time.Now}
}

// periodRange maps a period name to a rolling window ending now. Unknown
// periods fall back to one month.
func periodRange(period string, now time.Time) (time.Time, time.Time) {
	switch period {
	case "week":
		return now.AddDate(0, 0, -7), now
	case "quarter":
		return now.AddDate(0, -3, 0), now
	case "year":
		return now.AddDate(-1, 0, 0), now
	default:
		return now.AddDate(0, -1, 0), now
	}
}

func periodDisplay(period string) string {
	switch period {
	case "week":
		return "7 derniers jours"
	case "quarter":
		return "3 derniers mois"
	case "year":
		return "12 derniers mois"
	default:
		return "30 derniers jours"
	}
}

type OverviewSummary struct {
	Balance           float64 `json:"balance"`
	TotalRevenue      float64 `json:"totalRevenue"`
	TotalExpenses     float64 `json:"totalExpenses"`
	TransactionsCount int64   `json:"transactionsCount"`
	BudgetAlertsCount int64   `json:"budgetAlertsCount"`
}

type BudgetStatus struct {
	CategoryID   string  `json:"categoryId"`
	CategoryName string  `json:"categoryName"`
	Spent        float64 `json:"spent"`
	Budget       float64 `json:"budget"`
	Remaining    float64 `json:"remaining"`
	Percentage   int     `json:"percentage"`
	Color        *string `json:"color"`
	Icon         *string `json:"icon"`
	Status       string  `json:"status"`
}

type Overview struct {
	Summary            OverviewSummary      `json:"summary"`
	BudgetStatus       []BudgetStatus       `json:"budgetStatus"`
	RecentTransactions []models.Transaction `json:"recentTransactions"`
	Period             string               `json:"period"`
}

func (s *DashboardService) Overview(ctx context.Context, userID, period string) (*Overview, error) {
	now := s.now()
	start, end := periodRange(period, now)

	revenue, err := s.store.TotalAmount(ctx, userID, models.TypeRevenue, start, end)
	if err != nil {
		return nil, err
	}
	expenses, err := s.store.TotalAmount(ctx, userID, models.TypeExpense, start, end)
	if err != nil {
		return nil, err
	}
	txCount, err := s.store.CountTransactions(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}
	alertCount, err := s.store.CountUnreadAlerts(ctx, userID)
	if err != nil {
		return nil, err
	}
	recent, err := s.store.RecentTransactions(ctx, userID, 5)
	if err != nil {
		return nil, err
	}
	if recent == nil {
		recent = []models.Transaction{}
	}
	budgets, err := s.budgetStatus(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}

	return &Overview{
		Summary: OverviewSummary{
			Balance:           revenue - expenses,
			TotalRevenue:      revenue,
			TotalExpenses:     expenses,
			TransactionsCount: txCount,
			BudgetAlertsCount: alertCount,
		},
		BudgetStatus:       budgets,
		RecentTransactions: recent,
		Period:             periodDisplay(period),
	}, nil
}

func (s *DashboardService) budgetStatus(ctx context.Context, userID string, start, end time.Time) ([]BudgetStatus, error) {
	categories, err := s.store.ListBudgetedCategories(ctx, userID)
	if err != nil {
		return nil, err
	}
	spent, err := s.store.SpentByCategory(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}

	out := []BudgetStatus{}
	for _, c := range categories {
		if c.BudgetLimit == nil || *c.BudgetLimit <= 0 {
			continue
		}
		budget := *c.BudgetLimit
		used := spent[c.ID]
		// Display percentage is capped at 100 even when over budget.
		pct := int(math.Min(math.Round(used/budget*100), 100))

		status := "safe"
		switch {
		case pct >= 90:
			status = "danger"
		case pct >= 75:
			status = "warning"
		}

		out = append(out, BudgetStatus{
			CategoryID:   c.ID,
			CategoryName: c.Name,
			Spent:        used,
			Budget:       budget,
			Remaining:    math.Max(budget-used, 0),
			Percentage:   pct,
			Color:        c.Color,
			Icon:         c.Icon,
			Status:       status,
		})
	}
	return out, nil
}

type ExpenseBucket struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Value      float64 `json:"value"`
	Count      int64   `json:"count"`
	Color      string  `json:"color"`
	Icon       string  `json:"icon"`
	Percentage int     `json:"percentage"`
}

type ExpensesByCategory struct {
	Data   []ExpenseBucket `json:"data"`
	Total  float64         `json:"total"`
	Period string          `json:"period"`
}

func (s *DashboardService) ExpensesByCategory(ctx context.Context, userID, period string) (*ExpensesByCategory, error) {
	now := s.now()
	start, end := periodRange(period, now)

	buckets, err := s.store.ExpensesByCategory(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}

	var total float64
	for _, b := range buckets {
		total += b.Total
	}

	data := []ExpenseBucket{}
	for _, b := range buckets {
		eb := ExpenseBucket{
			ID:    "autres",
			Name:  "Non catégorisé",
			Value: b.Total,
			Count: b.Count,
			Color: "#6B7280",
			Icon:  "📁",
		}
		if b.CategoryID != nil {
			eb.ID = *b.CategoryID
		}
		if b.Name != nil {
			eb.Name = *b.Name
		}
		if b.Color != nil {
			eb.Color = *b.Color
		}
		if b.Icon != nil {
			eb.Icon = *b.Icon
		}
		if total > 0 {
			eb.Percentage = int(math.Round(b.Total / total * 100))
		}
		data = append(data, eb)
	}

	return &ExpensesByCategory{Data: data, Total: total, Period: periodDisplay(period)}, nil
}

type TrendPoint struct {
	Month    string  `json:"month"`
	Period   string  `json:"period"`
	Revenue  float64 `json:"revenue"`
	Expenses float64 `json:"expenses"`
	Balance  float64 `json:"balance"`
}

type MonthlyTrends struct {
	Data    []TrendPoint `json:"data"`
	Summary struct {
		TotalRevenue  float64 `json:"totalRevenue"`
		TotalExpenses float64 `json:"totalExpenses"`
	} `json:"summary"`
	Period string `json:"period"`
}

var frenchMonths = [...]string{
	"janv.", "févr.", "mars", "avr.", "mai", "juin",
	"juil.", "août", "sept.", "oct.", "nov.", "déc.",
}

// MonthlyTrends returns one point per calendar month, oldest first,
// zero-filled for months without transactions. months is clamped to
// [1,12]; zero means the default of six.
func (s *DashboardService) MonthlyTrends(ctx context.Context, userID string, months int) (*MonthlyTrends, error) {
	if months == 0 {
		months = 6
	}
	if months < 1 {
		months = 1
	}
	if months > 12 {
		months = 12
	}

	now := s.now()
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -(months - 1), 0)

	totals, err := s.store.MonthlyTotals(ctx, userID, first, now)
	if err != nil {
		return nil, err
	}

	type key struct{ year, month int }
	revenue := map[key]float64{}
	expenses := map[key]float64{}
	for _, t := range totals {
		k := key{t.Year, t.Month}
		switch t.Type {
		case models.TypeRevenue:
			revenue[k] += t.Total
		case models.TypeExpense:
			expenses[k] += t.Total
		}
	}

	trends := &MonthlyTrends{Period: fmt.Sprintf("%d derniers mois", months)}
	for i := 0; i < months; i++ {
		m := first.AddDate(0, i, 0)
		k := key{m.Year(), int(m.Month())}
		p := TrendPoint{
			Month:    fmt.Sprintf("%s %d", frenchMonths[m.Month()-1], m.Year()),
			Period:   fmt.Sprintf("%04d-%02d", m.Year(), int(m.Month())),
			Revenue:  revenue[k],
			Expenses: expenses[k],
		}
		p.Balance = p.Revenue - p.Expenses
		trends.Data = append(trends.Data, p)
		trends.Summary.TotalRevenue += p.Revenue
		trends.Summary.TotalExpenses += p.Expenses
	}
	return trends, nil
}

type GlobalBudget struct {
	BudgetGlobal float64 `json:"budgetGlobal"`
}

func (s *DashboardService) GlobalBudget(ctx context.Context, userID string) (*GlobalBudget, error) {
	total, err := s.store.SumBudgetLimits(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &GlobalBudget{BudgetGlobal: total}, nil
}
