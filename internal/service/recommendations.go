package service

import (
	"context"
	"regexp"
	"strings"
	"time"

	"moneywise/internal/ai"
	"moneywise/internal/apperr"
	"moneywise/internal/logx"
	"moneywise/internal/models"
	"moneywise/internal/repo"
)

const (
	maxRecommendations = 5
	maxTitleLen        = 50
	recentTxLimit      = 50
)

type RecommendationStore interface {
	ListActiveInRange(ctx context.Context, userID string, start, end time.Time, txType, categoryID string, limit int) ([]models.Transaction, error)
	CountUnreadAlerts(ctx context.Context, userID string) (int64, error)
	ExpensesByCategory(ctx context.Context, userID string, start, end time.Time) ([]repo.CategoryExpense, error)
	TotalAmount(ctx context.Context, userID, txType string, start, end time.Time) (float64, error)
	CreateRecommendation(ctx context.Context, userID, recoType, title, message string, categoryID *string) (*models.Recommendation, error)
	ListRecommendations(ctx context.Context, userID, recoType string, page, pageSize int) ([]models.Recommendation, int64, error)
	DeleteRecommendation(ctx context.Context, userID, id string) error
}

// Advisor is the AI surface the generator depends on.
type Advisor interface {
	GenerateRecommendations(ctx context.Context, summary ai.SpendingSummary, recent []ai.TransactionLine) (string, error)
}

type RecommendationService struct {
	store   RecommendationStore
	advisor Advisor
	log     *logx.Logger
	now     func() time.Time
}

func NewRecommendationService(store RecommendationStore, advisor Advisor, log *logx.Logger) *RecommendationService {
	return &RecommendationService{store: store, advisor: advisor, log: log.WithComponent("recommendations"), now: time.Now}
}

// Generate builds a spending summary for the current month, asks the AI
// for advice and persists the parsed lines. Any AI failure falls back to
// two fixed recommendations; the caller never sees an AI error.
func (s *RecommendationService) Generate(ctx context.Context, userID string) ([]models.Recommendation, error) {
	now := s.now()
	start := repo.MonthStart(now)

	summary, recent, err := s.spendingSummary(ctx, userID, start, now)
	if err != nil {
		return nil, err
	}

	text, err := s.advisor.GenerateRecommendations(ctx, summary, recent)
	if err != nil {
		s.log.WarnContext(ctx, "ai recommendation call failed", "user_id", userID, "error", err)
		return s.saveDefaults(ctx, userID)
	}

	parsed := parseRecommendations(text)
	if len(parsed) == 0 {
		s.log.WarnContext(ctx, "ai returned no usable recommendations", "user_id", userID)
		return s.saveDefaults(ctx, userID)
	}

	saved := make([]models.Recommendation, 0, len(parsed))
	for _, p := range parsed {
		rec, err := s.store.CreateRecommendation(ctx, userID, p.Type, p.Title, p.Message, nil)
		if err != nil {
			return nil, err
		}
		saved = append(saved, *rec)
	}
	return saved, nil
}

func (s *RecommendationService) spendingSummary(ctx context.Context, userID string, start, now time.Time) (ai.SpendingSummary, []ai.TransactionLine, error) {
	income, err := s.store.TotalAmount(ctx, userID, models.TypeRevenue, start, now)
	if err != nil {
		return ai.SpendingSummary{}, nil, err
	}
	expenses, err := s.store.TotalAmount(ctx, userID, models.TypeExpense, start, now)
	if err != nil {
		return ai.SpendingSummary{}, nil, err
	}
	buckets, err := s.store.ExpensesByCategory(ctx, userID, start, now)
	if err != nil {
		return ai.SpendingSummary{}, nil, err
	}
	alertCount, err := s.store.CountUnreadAlerts(ctx, userID)
	if err != nil {
		return ai.SpendingSummary{}, nil, err
	}
	txs, err := s.store.ListActiveInRange(ctx, userID, start, now, "", "", recentTxLimit)
	if err != nil {
		return ai.SpendingSummary{}, nil, err
	}

	summary := ai.SpendingSummary{
		TotalIncome:   income,
		TotalExpenses: expenses,
		SavingsRate:   savingsRate(income, expenses),
		AlertCount:    int(alertCount),
	}
	for i, b := range buckets {
		if i == 5 {
			break
		}
		name := "Non catégorisé"
		if b.Name != nil {
			name = *b.Name
		}
		summary.TopCategories = append(summary.TopCategories, ai.CategorySpend{Name: name, Total: b.Total})
	}

	lines := make([]ai.TransactionLine, 0, len(txs))
	for _, t := range txs {
		line := ai.TransactionLine{Date: t.Date, Amount: t.Amount}
		if t.Description != nil {
			line.Description = *t.Description
		}
		if t.Category != nil {
			line.Category = t.Category.Name
		} else {
			line.Category = "Non catégorisé"
		}
		lines = append(lines, line)
	}
	return summary, lines, nil
}

func savingsRate(income, expenses float64) float64 {
	if income == 0 {
		return 0
	}
	return (income - expenses) / income * 100
}

type parsedRecommendation struct {
	Type    string
	Title   string
	Message string
}

var bulletPrefix = regexp.MustCompile(`^[•\-\d\.\s]+`)

// parseRecommendations splits the AI reply into at most five cleaned
// lines, classifying each by keyword.
func parseRecommendations(text string) []parsedRecommendation {
	var out []parsedRecommendation
	for _, line := range strings.Split(text, "\n") {
		clean := strings.TrimSpace(bulletPrefix.ReplaceAllString(line, ""))
		if clean == "" {
			continue
		}
		out = append(out, parsedRecommendation{
			Type:    classifyRecommendation(clean),
			Title:   recommendationTitle(clean),
			Message: clean,
		})
		if len(out) == maxRecommendations {
			break
		}
	}
	return out
}

func classifyRecommendation(text string) string {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "budget") || strings.Contains(lower, "dépense"):
		return models.RecoBudgetAlert
	case strings.Contains(lower, "épargne") || strings.Contains(lower, "économi"):
		return models.RecoSavingOpportunity
	case strings.Contains(lower, "dette") || strings.Contains(lower, "crédit"):
		return models.RecoDebtReduction
	case strings.Contains(lower, "investi"):
		return models.RecoInvestmentSuggestion
	default:
		return models.RecoSpendingPattern
	}
}

// recommendationTitle keeps the first sentence, truncated to 50 runes.
func recommendationTitle(text string) string {
	if i := strings.IndexAny(text, ".!?"); i > 0 {
		text = text[:i]
	}
	runes := []rune(text)
	if len(runes) > maxTitleLen {
		return string(runes[:maxTitleLen-3]) + "..."
	}
	return text
}

func (s *RecommendationService) saveDefaults(ctx context.Context, userID string) ([]models.Recommendation, error) {
	defaults := []parsedRecommendation{
		{
			Type:    models.RecoSpendingPattern,
			Title:   "Analysez vos dépenses régulières",
			Message: "Revoir vos dépenses mensuelles pour identifier les économies possibles.",
		},
		{
			Type:    models.RecoSavingOpportunity,
			Title:   "Établissez un fonds d'urgence",
			Message: "Mettre de côté 3 mois de dépenses pour les imprévus.",
		},
	}

	saved := make([]models.Recommendation, 0, len(defaults))
	for _, d := range defaults {
		rec, err := s.store.CreateRecommendation(ctx, userID, d.Type, d.Title, d.Message, nil)
		if err != nil {
			return nil, err
		}
		saved = append(saved, *rec)
	}
	return saved, nil
}

type RecommendationList struct {
	Recommendations []models.Recommendation `json:"recommendations"`
	Pagination      models.Pagination       `json:"pagination"`
}

func validRecommendationType(t string) bool {
	switch t {
	case models.RecoBudgetAlert, models.RecoSpendingPattern, models.RecoSavingOpportunity,
		models.RecoDebtReduction, models.RecoInvestmentSuggestion:
		return true
	}
	return false
}

func (s *RecommendationService) List(ctx context.Context, userID, recoType string, page, pageSize int) (*RecommendationList, error) {
	if recoType != "" && !validRecommendationType(recoType) {
		return nil, apperr.E(apperr.KindValidation, "Type de recommandation invalide")
	}
	page, pageSize = normalizePage(page, pageSize)

	recs, total, err := s.store.ListRecommendations(ctx, userID, recoType, page, pageSize)
	if err != nil {
		return nil, err
	}
	if recs == nil {
		recs = []models.Recommendation{}
	}
	return &RecommendationList{Recommendations: recs, Pagination: models.NewPagination(page, pageSize, total)}, nil
}

func (s *RecommendationService) Delete(ctx context.Context, userID, id string) error {
	return notFound(s.store.DeleteRecommendation(ctx, userID, id), "Recommandation non trouvée")
}
