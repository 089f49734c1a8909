package http

import "net/http"

func (a *API) handleDashboardOverview(w http.ResponseWriter, r *http.Request) {
	userID, ok := mustUserID(w, r)
	if !ok {
		return
	}
	overview, err := a.Dashboard.Overview(r.Context(), userID, r.URL.Query().Get("period"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Vue d'ensemble récupérée", overview)
}

func (a *API) handleExpensesByCategory(w http.ResponseWriter, r *http.Request) {
	userID, ok := mustUserID(w, r)
	if !ok {
		return
	}
	expenses, err := a.Dashboard.ExpensesByCategory(r.Context(), userID, r.URL.Query().Get("period"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Dépenses par catégorie récupérées", expenses)
}

func (a *API) handleMonthlyTrends(w http.ResponseWriter, r *http.Request) {
	userID, ok := mustUserID(w, r)
	if !ok {
		return
	}
	trends, err := a.Dashboard.MonthlyTrends(r.Context(), userID, queryInt(r, "months"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Tendances mensuelles récupérées", trends)
}

func (a *API) handleGlobalBudget(w http.ResponseWriter, r *http.Request) {
	userID, ok := mustUserID(w, r)
	if !ok {
		return
	}
	budget, err := a.Dashboard.GlobalBudget(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Budget global récupéré", budget)
}
