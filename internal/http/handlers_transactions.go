package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"moneywise/internal/repo"
	"moneywise/internal/service"
)

func (a *API) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := mustUserID(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	filter := repo.TransactionFilter{
		Type:       q.Get("type"),
		CategoryID: q.Get("categoryId"),
		StartDate:  parseQueryTime(r, "startDate"),
		EndDate:    parseQueryTime(r, "endDate"),
		Search:     q.Get("search"),
		Status:     q.Get("status"),
		Page:       queryInt(r, "page"),
		PageSize:   queryInt(r, "limit"),
	}
	list, err := a.Transactions.List(r.Context(), userID, filter)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Transactions récupérées", list)
}

type transactionRequest struct {
	Type        string   `json:"type"`
	Amount      float64  `json:"amount"`
	CategoryID  *string  `json:"categoryId"`
	Description *string  `json:"description"`
	Date        flexTime `json:"date"`
}

func (a *API) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := mustUserID(w, r)
	if !ok {
		return
	}
	var req transactionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	tx, err := a.Transactions.Create(r.Context(), userID, service.TransactionInput{
		Type:        req.Type,
		Amount:      req.Amount,
		CategoryID:  req.CategoryID,
		Description: req.Description,
		Date:        req.Date.Time,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, "Transaction créée avec succès", tx)
}

func (a *API) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := mustUserID(w, r)
	if !ok {
		return
	}
	tx, err := a.Transactions.Get(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Transaction récupérée", tx)
}

type transactionUpdateRequest struct {
	Type        *string   `json:"type"`
	Amount      *float64  `json:"amount"`
	CategoryID  *string   `json:"categoryId"`
	Description *string   `json:"description"`
	Date        *flexTime `json:"date"`
}

func (a *API) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := mustUserID(w, r)
	if !ok {
		return
	}
	var req transactionUpdateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	tx, err := a.Transactions.Update(r.Context(), userID, chi.URLParam(r, "id"), service.TransactionUpdate{
		Type:        req.Type,
		Amount:      req.Amount,
		CategoryID:  req.CategoryID,
		Description: req.Description,
		Date:        req.Date.timePtr(),
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Transaction mise à jour", tx)
}

func (a *API) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := mustUserID(w, r)
	if !ok {
		return
	}
	if err := a.Transactions.Delete(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Transaction supprimée", nil)
}

func (a *API) handleRestoreTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := mustUserID(w, r)
	if !ok {
		return
	}
	tx, err := a.Transactions.Restore(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Transaction restaurée", tx)
}
