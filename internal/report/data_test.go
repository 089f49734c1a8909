package report

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"moneywise/internal/models"
)

func expense(amount float64, category string) models.Transaction {
	t := models.Transaction{Type: models.TypeExpense, Amount: amount}
	if category != "" {
		t.Category = &models.CategoryRef{Name: category}
	}
	return t
}

func TestBuildSummary(t *testing.T) {
	txs := []models.Transaction{
		{Type: models.TypeRevenue, Amount: 2000},
		{Type: models.TypeRevenue, Amount: 500},
		expense(300, "Courses"),
		expense(120, "Transport"),
	}

	s := BuildSummary(txs)
	assert.Equal(t, 2500.0, s.TotalRevenue)
	assert.Equal(t, 420.0, s.TotalExpenses)
	assert.Equal(t, 2080.0, s.NetIncome)
	assert.Equal(t, 4, s.TransactionCount)
}

func TestBuildBreakdownOrdersAndBuckets(t *testing.T) {
	txs := []models.Transaction{
		expense(50, "Transport"),
		expense(200, "Courses"),
		expense(100, "Courses"),
		expense(75, ""),
		{Type: models.TypeRevenue, Amount: 5000},
	}

	out := BuildBreakdown(txs)
	assert.Len(t, out, 3)
	assert.Equal(t, CategoryTotal{Category: "Courses", Total: 300, Count: 2}, out[0])
	assert.Equal(t, CategoryTotal{Category: "Sans catégorie", Total: 75, Count: 1}, out[1])
	assert.Equal(t, CategoryTotal{Category: "Transport", Total: 50, Count: 1}, out[2])
}

func TestBuildBudgetVsActual(t *testing.T) {
	limit := func(v float64) *float64 { return &v }
	categories := []models.Category{
		{ID: "c1", Name: "Courses", BudgetLimit: limit(500)},
		{ID: "c2", Name: "Transport", BudgetLimit: limit(200)},
		{ID: "c3", Name: "Loisirs"},
	}
	spent := map[string]float64{"c1": 250, "c2": 180}

	out := BuildBudgetVsActual(categories, spent)
	assert.Len(t, out, 2)
	// Highest usage first: Transport at 90%, Courses at 50%.
	assert.Equal(t, "Transport", out[0].Category)
	assert.InDelta(t, 90.0, out[0].Percentage, 0.001)
	assert.Equal(t, 20.0, out[0].Difference)
	assert.Equal(t, "Courses", out[1].Category)
	assert.InDelta(t, 50.0, out[1].Percentage, 0.001)
}

func TestValidKind(t *testing.T) {
	assert.True(t, ValidKind(KindMonthlySummary))
	assert.True(t, ValidKind(KindCategoryBreakdown))
	assert.True(t, ValidKind(KindBudgetVsActual))
	assert.False(t, ValidKind("weekly"))
}
