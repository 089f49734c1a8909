package http

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"moneywise/internal/service"
)

func (a *API) handleListReports(w http.ResponseWriter, r *http.Request) {
	userID, ok := mustUserID(w, r)
	if !ok {
		return
	}
	list, err := a.Reports.List(r.Context(), userID, queryInt(r, "page"), queryInt(r, "limit"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Rapports récupérés", list)
}

type reportRequest struct {
	ReportType  string   `json:"reportType"`
	StartDate   flexTime `json:"startDate"`
	EndDate     flexTime `json:"endDate"`
	CategoryID  *string  `json:"categoryId"`
	Title       string   `json:"title"`
	Description *string  `json:"description"`
}

func (req reportRequest) toInput() service.ReportInput {
	return service.ReportInput{
		ReportType:  req.ReportType,
		StartDate:   req.StartDate.Time,
		EndDate:     req.EndDate.Time,
		CategoryID:  req.CategoryID,
		Title:       req.Title,
		Description: req.Description,
	}
}

func (a *API) handleGenerateReport(w http.ResponseWriter, r *http.Request) {
	userID, ok := mustUserID(w, r)
	if !ok {
		return
	}
	var req reportRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	rep, err := a.Reports.Generate(r.Context(), userID, req.toInput())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, "Rapport généré avec succès", rep)
}

func (a *API) handleGenerateReportData(w http.ResponseWriter, r *http.Request) {
	userID, ok := mustUserID(w, r)
	if !ok {
		return
	}
	var req reportRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	data, err := a.Reports.GenerateData(r.Context(), userID, req.toInput())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Données du rapport générées", data)
}

func (a *API) handleExportReport(w http.ResponseWriter, r *http.Request) {
	userID, ok := mustUserID(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "pdf"
	}

	switch format {
	case "pdf":
		rep, path, err := a.Reports.ExportPDF(r.Context(), userID, id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", rep.Title+".pdf"))
		http.ServeFile(w, r, path)
	case "json":
		rep, err := a.Reports.Get(r.Context(), userID, id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", rep.Title+".json"))
		writeJSON(w, http.StatusOK, rep)
	default:
		writeError(w, http.StatusBadRequest, "Format non supporté")
	}
}
