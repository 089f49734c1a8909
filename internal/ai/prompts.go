package ai

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const advisorSystemPrompt = `Tu es MoneyWise, assistant financier expert.
Fournis des conseils clairs, concis et pratiques.
Prends en compte le contexte financier et l'historique de conversation.
Réponds toujours en français.`

// SpendingSummary carries the aggregated figures embedded in prompts.
type SpendingSummary struct {
	TotalIncome   float64
	TotalExpenses float64
	SavingsRate   float64
	TopCategories []CategorySpend
	AlertCount    int
}

type CategorySpend struct {
	Name  string
	Total float64
}

// TransactionLine is a single recent transaction, pre-formatted by the
// caller to avoid dragging model types into this package.
type TransactionLine struct {
	Date        time.Time
	Amount      float64
	Description string
	Category    string
}

// UserContext is the financial snapshot attached to chat questions.
type UserContext struct {
	MonthlyIncome   float64
	MonthlyExpenses float64
	MonthlySavings  float64
	FinancialGoals  string
}

// GenerateRecommendations asks for 3-5 bullet-point recommendations in
// French based on the user's spending summary and recent transactions.
func (c *Client) GenerateRecommendations(ctx context.Context, summary SpendingSummary, recent []TransactionLine) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Analyse les données et propose 3 à 5 recommandations financières claires, personnalisées et réalistes.\n\n")
	fmt.Fprintf(&b, "Revenus : %.2f€\n", summary.TotalIncome)
	fmt.Fprintf(&b, "Dépenses : %.2f€\n", summary.TotalExpenses)
	fmt.Fprintf(&b, "Taux d'épargne : %.1f%%\n", summary.SavingsRate)
	fmt.Fprintf(&b, "Alertes budgétaires : %d\n", summary.AlertCount)

	if len(summary.TopCategories) > 0 {
		b.WriteString("Catégories principales :\n")
		for _, cat := range summary.TopCategories {
			fmt.Fprintf(&b, "- %s : %.2f€\n", cat.Name, cat.Total)
		}
	}

	if len(recent) > 0 {
		b.WriteString("\nTransactions récentes :\n")
		for _, t := range recent {
			desc := t.Description
			if desc == "" {
				desc = "Non précisé"
			}
			fmt.Fprintf(&b, "- %s: %.2f€ pour %s (%s)\n", t.Date.Format("2006-01-02"), t.Amount, desc, t.Category)
		}
	}

	b.WriteString("\nRéponds en français, sous forme de bullet points.")

	return c.Complete(ctx, []Message{
		{Role: RoleSystem, Content: "Tu es MoneyWise, assistant financier expert."},
		{Role: RoleUser, Content: b.String()},
	}, 500)
}

// AnswerQuestion answers a chat message with the conversation history and
// the user's financial context.
func (c *Client) AnswerQuestion(ctx context.Context, history []Message, userCtx UserContext, question string) (string, error) {
	goals := userCtx.FinancialGoals
	if goals == "" {
		goals = "Non spécifiés"
	}

	prompt := fmt.Sprintf(`CONTEXTE FINANCIER :
- Revenus mensuels : %.2f€
- Dépenses mensuelles : %.2f€
- Épargne mensuelle : %.2f€
- Objectifs financiers : %s

QUESTION :
%s`, userCtx.MonthlyIncome, userCtx.MonthlyExpenses, userCtx.MonthlySavings, goals, question)

	messages := make([]Message, 0, len(history)+2)
	messages = append(messages, Message{Role: RoleSystem, Content: advisorSystemPrompt})
	messages = append(messages, history...)
	messages = append(messages, Message{Role: RoleUser, Content: prompt})

	return c.Complete(ctx, messages, 500)
}
