package report

import (
	"sort"

	"moneywise/internal/models"
)

// Data holds the computed figures for one report. Only the section
// matching the report kind is populated.
type Data struct {
	Summary        *Summary         `json:"summary,omitempty"`
	Breakdown      []CategoryTotal  `json:"breakdown,omitempty"`
	BudgetVsActual []BudgetCategory `json:"budgetVsActual,omitempty"`
}

type Summary struct {
	TotalRevenue     float64 `json:"totalRevenue"`
	TotalExpenses    float64 `json:"totalExpenses"`
	NetIncome        float64 `json:"netIncome"`
	TransactionCount int     `json:"transactionCount"`
}

type CategoryTotal struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
	Count    int     `json:"count"`
}

type BudgetCategory struct {
	Category   string  `json:"category"`
	Budget     float64 `json:"budget"`
	Actual     float64 `json:"actual"`
	Difference float64 `json:"difference"`
	Percentage float64 `json:"percentage"`
}

// BuildSummary totals the transactions of the period.
func BuildSummary(txs []models.Transaction) *Summary {
	s := &Summary{TransactionCount: len(txs)}
	for _, t := range txs {
		switch t.Type {
		case models.TypeRevenue:
			s.TotalRevenue += t.Amount
		case models.TypeExpense:
			s.TotalExpenses += t.Amount
		}
	}
	s.NetIncome = s.TotalRevenue - s.TotalExpenses
	return s
}

// BuildBreakdown groups expenses by category name, largest first.
// Uncategorized transactions land under "Sans catégorie".
func BuildBreakdown(txs []models.Transaction) []CategoryTotal {
	totals := map[string]*CategoryTotal{}
	for _, t := range txs {
		if t.Type != models.TypeExpense {
			continue
		}
		name := "Sans catégorie"
		if t.Category != nil {
			name = t.Category.Name
		}
		ct, ok := totals[name]
		if !ok {
			ct = &CategoryTotal{Category: name}
			totals[name] = ct
		}
		ct.Total += t.Amount
		ct.Count++
	}
	out := make([]CategoryTotal, 0, len(totals))
	for _, ct := range totals {
		out = append(out, *ct)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Total > out[j].Total })
	return out
}

// BuildBudgetVsActual compares spending against category budgets.
// Only categories with a budget limit appear.
func BuildBudgetVsActual(categories []models.Category, spent map[string]float64) []BudgetCategory {
	out := make([]BudgetCategory, 0, len(categories))
	for _, c := range categories {
		if c.BudgetLimit == nil {
			continue
		}
		budget := *c.BudgetLimit
		actual := spent[c.ID]
		bc := BudgetCategory{
			Category:   c.Name,
			Budget:     budget,
			Actual:     actual,
			Difference: budget - actual,
		}
		if budget > 0 {
			bc.Percentage = actual / budget * 100
		}
		out = append(out, bc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Percentage > out[j].Percentage })
	return out
}

// Title returns the French display title for a report kind.
func Title(kind string) string {
	switch kind {
	case KindMonthlySummary:
		return "Rapport Mensuel"
	case KindCategoryBreakdown:
		return "Répartition par Catégorie"
	case KindBudgetVsActual:
		return "Budget vs Réel"
	}
	return "Rapport"
}
