package service

import (
	"context"
	"os"
	"time"

	"moneywise/internal/apperr"
	"moneywise/internal/models"
	"moneywise/internal/report"
)

type ReportStore interface {
	ListActiveInRange(ctx context.Context, userID string, start, end time.Time, txType, categoryID string, limit int) ([]models.Transaction, error)
	ListBudgetedCategories(ctx context.Context, userID string) ([]models.Category, error)
	SpentByCategory(ctx context.Context, userID string, start, end time.Time) (map[string]float64, error)
	CreateReport(ctx context.Context, userID, title string, description *string, start, end time.Time, totalIncome, totalExpense float64, fileURL string) (*models.Report, error)
	GetReport(ctx context.Context, userID, id string) (*models.Report, error)
	ListReports(ctx context.Context, userID string, page, pageSize int) ([]models.Report, int64, error)
}

// PDFRenderer writes a report to disk and returns the file path.
type PDFRenderer interface {
	Render(kind, title string, data *report.Data, start, end time.Time) (string, error)
}

type ReportService struct {
	store    ReportStore
	renderer PDFRenderer
}

func NewReportService(store ReportStore, renderer PDFRenderer) *ReportService {
	return &ReportService{store: store, renderer: renderer}
}

type ReportInput struct {
	ReportType  string    `json:"reportType"`
	StartDate   time.Time `json:"startDate"`
	EndDate     time.Time `json:"endDate"`
	CategoryID  *string   `json:"categoryId"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
}

func (in *ReportInput) validate() error {
	if in.ReportType == "" || in.StartDate.IsZero() || in.EndDate.IsZero() {
		return apperr.E(apperr.KindValidation, "Type de rapport, date de début et date de fin sont requis")
	}
	if !report.ValidKind(in.ReportType) {
		return apperr.E(apperr.KindValidation, "Type de rapport non valide")
	}
	if in.EndDate.Before(in.StartDate) {
		return apperr.E(apperr.KindValidation, "La date de fin doit être postérieure à la date de début")
	}
	return nil
}

// buildData computes the aggregates for one report kind over the period's
// active transactions.
func (s *ReportService) buildData(ctx context.Context, userID string, in ReportInput) (*report.Data, []models.Transaction, error) {
	categoryID := ""
	if in.CategoryID != nil {
		categoryID = *in.CategoryID
	}
	txs, err := s.store.ListActiveInRange(ctx, userID, in.StartDate, in.EndDate, "", categoryID, 0)
	if err != nil {
		return nil, nil, err
	}

	data := &report.Data{}
	switch in.ReportType {
	case report.KindMonthlySummary:
		data.Summary = report.BuildSummary(txs)
	case report.KindCategoryBreakdown:
		data.Breakdown = report.BuildBreakdown(txs)
	case report.KindBudgetVsActual:
		categories, err := s.store.ListBudgetedCategories(ctx, userID)
		if err != nil {
			return nil, nil, err
		}
		spent, err := s.store.SpentByCategory(ctx, userID, in.StartDate, in.EndDate)
		if err != nil {
			return nil, nil, err
		}
		data.BudgetVsActual = report.BuildBudgetVsActual(categories, spent)
	}
	return data, txs, nil
}

// Generate renders the PDF and persists the report row.
func (s *ReportService) Generate(ctx context.Context, userID string, in ReportInput) (*models.Report, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if in.Title == "" {
		in.Title = "Rapport " + in.ReportType
	}

	data, txs, err := s.buildData(ctx, userID, in)
	if err != nil {
		return nil, err
	}

	path, err := s.renderer.Render(in.ReportType, in.Title, data, in.StartDate, in.EndDate)
	if err != nil {
		return nil, err
	}

	totals := report.BuildSummary(txs)
	rep, err := s.store.CreateReport(ctx, userID, in.Title, in.Description, in.StartDate, in.EndDate, totals.TotalRevenue, totals.TotalExpenses, path)
	if err != nil {
		return nil, err
	}
	return rep, nil
}

// ReportData is the JSON-only variant of Generate; nothing is persisted.
type ReportData struct {
	ReportType   string               `json:"reportType"`
	StartDate    time.Time            `json:"startDate"`
	EndDate      time.Time            `json:"endDate"`
	Transactions []models.Transaction `json:"transactions"`
	ReportData   *report.Data         `json:"reportData"`
}

func (s *ReportService) GenerateData(ctx context.Context, userID string, in ReportInput) (*ReportData, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	data, txs, err := s.buildData(ctx, userID, in)
	if err != nil {
		return nil, err
	}
	if txs == nil {
		txs = []models.Transaction{}
	}
	return &ReportData{
		ReportType:   in.ReportType,
		StartDate:    in.StartDate,
		EndDate:      in.EndDate,
		Transactions: txs,
		ReportData:   data,
	}, nil
}

type ReportList struct {
	Reports    []models.Report   `json:"reports"`
	Pagination models.Pagination `json:"pagination"`
}

func (s *ReportService) List(ctx context.Context, userID string, page, pageSize int) (*ReportList, error) {
	page, pageSize = normalizePage(page, pageSize)

	reports, total, err := s.store.ListReports(ctx, userID, page, pageSize)
	if err != nil {
		return nil, err
	}
	if reports == nil {
		reports = []models.Report{}
	}
	return &ReportList{Reports: reports, Pagination: models.NewPagination(page, pageSize, total)}, nil
}

func (s *ReportService) Get(ctx context.Context, userID, id string) (*models.Report, error) {
	rep, err := s.store.GetReport(ctx, userID, id)
	return rep, notFound(err, "Rapport non trouvé")
}

// ExportPDF returns the stored PDF path after checking the file exists.
func (s *ReportService) ExportPDF(ctx context.Context, userID, id string) (*models.Report, string, error) {
	rep, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, "", err
	}
	if rep.FileURL == "" {
		return nil, "", apperr.E(apperr.KindNotFound, "Fichier PDF non trouvé")
	}
	if _, err := os.Stat(rep.FileURL); err != nil {
		return nil, "", apperr.E(apperr.KindNotFound, "Fichier PDF non trouvé")
	}
	return rep, rep.FileURL, nil
}
