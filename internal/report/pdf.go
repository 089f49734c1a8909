// Package report computes report aggregates and renders them to PDF.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/google/uuid"
)

// Report kinds accepted by the generate endpoints.
const (
	KindMonthlySummary    = "monthly-summary"
	KindCategoryBreakdown = "category-breakdown"
	KindBudgetVsActual    = "budget-vs-actual"
)

func ValidKind(kind string) bool {
	switch kind {
	case KindMonthlySummary, KindCategoryBreakdown, KindBudgetVsActual:
		return true
	}
	return false
}

// Renderer writes report PDFs under Dir.
type Renderer struct {
	Dir string
}

func NewRenderer(dir string) *Renderer {
	return &Renderer{Dir: dir}
}

// Render writes the PDF for data and returns the file path.
func (r *Renderer) Render(kind, title string, data *Data, start, end time.Time) (string, error) {
	if err := os.MkdirAll(r.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create reports dir: %w", err)
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(0, 12, tr(title), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 12)
	pdf.CellFormat(0, 8, tr(fmt.Sprintf("Période: %s - %s", start.Format("02/01/2006"), end.Format("02/01/2006"))), "", 1, "C", false, 0, "")
	pdf.Ln(8)

	switch kind {
	case KindMonthlySummary:
		r.renderSummary(pdf, tr, data)
	case KindCategoryBreakdown:
		r.renderBreakdown(pdf, tr, data)
	case KindBudgetVsActual:
		r.renderBudgetVsActual(pdf, tr, data)
	}

	pdf.Ln(10)
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Généré le %s", time.Now().Format("02/01/2006 15:04"))), "", 1, "C", false, 0, "")

	path := filepath.Join(r.Dir, fmt.Sprintf("report_%s.pdf", uuid.NewString()))
	if err := pdf.OutputFileAndClose(path); err != nil {
		return "", fmt.Errorf("write pdf: %w", err)
	}
	return path, nil
}

func (r *Renderer) renderSummary(pdf *fpdf.Fpdf, tr func(string) string, data *Data) {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, tr("Résumé Mensuel"), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 12)
	s := data.Summary
	pdf.CellFormat(0, 7, tr(fmt.Sprintf("Total Revenus: %.2f €", s.TotalRevenue)), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 7, tr(fmt.Sprintf("Total Dépenses: %.2f €", s.TotalExpenses)), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 7, tr(fmt.Sprintf("Revenus Nets: %.2f €", s.NetIncome)), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 7, tr(fmt.Sprintf("Nombre de transactions: %d", s.TransactionCount)), "", 1, "L", false, 0, "")
}

func (r *Renderer) renderBreakdown(pdf *fpdf.Fpdf, tr func(string) string, data *Data) {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, tr("Répartition par Catégorie"), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 12)
	for _, b := range data.Breakdown {
		pdf.CellFormat(0, 7, tr(fmt.Sprintf("%s: %.2f € (%d transactions)", b.Category, b.Total, b.Count)), "", 1, "L", false, 0, "")
	}
}

func (r *Renderer) renderBudgetVsActual(pdf *fpdf.Fpdf, tr func(string) string, data *Data) {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, tr("Budget vs Réel"), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 12)
	for _, c := range data.BudgetVsActual {
		pdf.CellFormat(0, 7, tr(c.Category+":"), "", 1, "L", false, 0, "")
		pdf.CellFormat(0, 6, tr(fmt.Sprintf("  Budget: %.2f €", c.Budget)), "", 1, "L", false, 0, "")
		pdf.CellFormat(0, 6, tr(fmt.Sprintf("  Réel: %.2f €", c.Actual)), "", 1, "L", false, 0, "")
		pdf.CellFormat(0, 6, tr(fmt.Sprintf("  Différence: %.2f €", c.Difference)), "", 1, "L", false, 0, "")
		pdf.CellFormat(0, 6, tr(fmt.Sprintf("  Pourcentage: %.2f%%", c.Percentage)), "", 1, "L", false, 0, "")
		pdf.Ln(2)
	}
}
