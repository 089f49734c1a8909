package service

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moneywise/internal/apperr"
	"moneywise/internal/models"
	"moneywise/internal/report"
	"moneywise/internal/repo"
)

type fakeReportStore struct {
	transactions []models.Transaction
	categories   []models.Category
	spent        map[string]float64
	reports      map[string]*models.Report
	nextID       int
}

func newFakeReportStore() *fakeReportStore {
	return &fakeReportStore{spent: map[string]float64{}, reports: map[string]*models.Report{}}
}

func (f *fakeReportStore) ListActiveInRange(_ context.Context, _ string, _, _ time.Time, _, categoryID string, _ int) ([]models.Transaction, error) {
	if categoryID == "" {
		return f.transactions, nil
	}
	var out []models.Transaction
	for _, t := range f.transactions {
		if t.CategoryID != nil && *t.CategoryID == categoryID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeReportStore) ListBudgetedCategories(context.Context, string) ([]models.Category, error) {
	return f.categories, nil
}

func (f *fakeReportStore) SpentByCategory(context.Context, string, time.Time, time.Time) (map[string]float64, error) {
	return f.spent, nil
}

func (f *fakeReportStore) CreateReport(_ context.Context, userID, title string, description *string, start, end time.Time, totalIncome, totalExpense float64, fileURL string) (*models.Report, error) {
	f.nextID++
	r := &models.Report{
		ID:           "r-" + strconv.Itoa(f.nextID),
		UserID:       userID,
		Title:        title,
		Description:  description,
		StartDate:    start,
		EndDate:      end,
		TotalIncome:  totalIncome,
		TotalExpense: totalExpense,
		Balance:      totalIncome - totalExpense,
		FileURL:      fileURL,
		Status:       models.StatusActive,
	}
	f.reports[r.ID] = r
	return r, nil
}

func (f *fakeReportStore) GetReport(_ context.Context, userID, id string) (*models.Report, error) {
	r, ok := f.reports[id]
	if !ok || r.UserID != userID {
		return nil, repo.ErrNotFound
	}
	return r, nil
}

func (f *fakeReportStore) ListReports(_ context.Context, userID string, page, pageSize int) ([]models.Report, int64, error) {
	var out []models.Report
	for _, r := range f.reports {
		if r.UserID == userID {
			out = append(out, *r)
		}
	}
	return out, int64(len(out)), nil
}

type fakeRenderer struct {
	path string
	err  error
	kind string
}

func (f *fakeRenderer) Render(kind, _ string, _ *report.Data, _, _ time.Time) (string, error) {
	f.kind = kind
	return f.path, f.err
}

func reportPeriod() (time.Time, time.Time) {
	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0).Add(-time.Second)
}

func TestReportInputValidation(t *testing.T) {
	svc := NewReportService(newFakeReportStore(), &fakeRenderer{})
	ctx := context.Background()
	start, end := reportPeriod()

	_, err := svc.Generate(ctx, "u1", ReportInput{})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = svc.Generate(ctx, "u1", ReportInput{ReportType: "weekly", StartDate: start, EndDate: end})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Equal(t, "Type de rapport non valide", apperr.Message(err))

	_, err = svc.Generate(ctx, "u1", ReportInput{ReportType: report.KindMonthlySummary, StartDate: end, EndDate: start})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestGenerateReportPersistsTotals(t *testing.T) {
	store := newFakeReportStore()
	store.transactions = []models.Transaction{
		{Type: models.TypeRevenue, Amount: 2000},
		{Type: models.TypeExpense, Amount: 450},
	}
	renderer := &fakeRenderer{path: "/tmp/report.pdf"}
	svc := NewReportService(store, renderer)
	start, end := reportPeriod()

	rep, err := svc.Generate(context.Background(), "u1", ReportInput{
		ReportType: report.KindMonthlySummary,
		StartDate:  start,
		EndDate:    end,
	})
	require.NoError(t, err)
	assert.Equal(t, "Rapport "+report.KindMonthlySummary, rep.Title)
	assert.Equal(t, 2000.0, rep.TotalIncome)
	assert.Equal(t, 450.0, rep.TotalExpense)
	assert.Equal(t, 1550.0, rep.Balance)
	assert.Equal(t, "/tmp/report.pdf", rep.FileURL)
	assert.Equal(t, report.KindMonthlySummary, renderer.kind)
}

func TestGenerateDataPerKind(t *testing.T) {
	store := newFakeReportStore()
	catID := "c1"
	store.transactions = []models.Transaction{
		{Type: models.TypeExpense, Amount: 100, CategoryID: &catID, Category: &models.CategoryRef{ID: catID, Name: "Courses"}},
		{Type: models.TypeRevenue, Amount: 900},
	}
	limit := 500.0
	store.categories = []models.Category{{ID: catID, Name: "Courses", BudgetLimit: &limit}}
	store.spent = map[string]float64{catID: 100}
	svc := NewReportService(store, &fakeRenderer{})
	ctx := context.Background()
	start, end := reportPeriod()

	summary, err := svc.GenerateData(ctx, "u1", ReportInput{ReportType: report.KindMonthlySummary, StartDate: start, EndDate: end})
	require.NoError(t, err)
	require.NotNil(t, summary.ReportData.Summary)
	assert.Equal(t, 800.0, summary.ReportData.Summary.NetIncome)
	assert.Nil(t, summary.ReportData.Breakdown)

	breakdown, err := svc.GenerateData(ctx, "u1", ReportInput{ReportType: report.KindCategoryBreakdown, StartDate: start, EndDate: end})
	require.NoError(t, err)
	require.Len(t, breakdown.ReportData.Breakdown, 1)
	assert.Equal(t, "Courses", breakdown.ReportData.Breakdown[0].Category)

	budget, err := svc.GenerateData(ctx, "u1", ReportInput{ReportType: report.KindBudgetVsActual, StartDate: start, EndDate: end})
	require.NoError(t, err)
	require.Len(t, budget.ReportData.BudgetVsActual, 1)
	assert.InDelta(t, 20.0, budget.ReportData.BudgetVsActual[0].Percentage, 0.001)
}

func TestExportPDF(t *testing.T) {
	store := newFakeReportStore()
	svc := NewReportService(store, &fakeRenderer{})
	ctx := context.Background()
	start, end := reportPeriod()

	_, _, err := svc.ExportPDF(ctx, "u1", "r-missing")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	// Stored path pointing to a missing file.
	_, err = store.CreateReport(ctx, "u1", "Rapport", nil, start, end, 0, 0, "/nonexistent/report.pdf")
	require.NoError(t, err)
	_, _, err = svc.ExportPDF(ctx, "u1", "r-1")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	assert.Equal(t, "Fichier PDF non trouvé", apperr.Message(err))

	path := filepath.Join(t.TempDir(), "report.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4"), 0o600))
	_, err = store.CreateReport(ctx, "u1", "Rapport", nil, start, end, 0, 0, path)
	require.NoError(t, err)

	rep, got, err := svc.ExportPDF(ctx, "u1", "r-2")
	require.NoError(t, err)
	assert.Equal(t, path, got)
	assert.Equal(t, "Rapport", rep.Title)
}
