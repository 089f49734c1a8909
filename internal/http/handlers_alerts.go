package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"moneywise/internal/repo"
	"moneywise/internal/service"
)

func (a *API) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	userID, ok := mustUserID(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	filter := repo.AlertFilter{
		Type:       q.Get("type"),
		SourceType: q.Get("sourceType"),
		Page:       queryInt(r, "page"),
		PageSize:   queryInt(r, "limit"),
		SortBy:     q.Get("sortBy"),
		SortOrder:  q.Get("sortOrder"),
	}
	if v := q.Get("isRead"); v != "" {
		if isRead, err := strconv.ParseBool(v); err == nil {
			filter.IsRead = &isRead
		}
	}
	list, err := a.Alerts.List(r.Context(), userID, filter)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Alertes récupérées", list)
}

func (a *API) handleCreateAlert(w http.ResponseWriter, r *http.Request) {
	userID, ok := mustUserID(w, r)
	if !ok {
		return
	}
	var req service.ManualAlertInput
	if !decodeJSON(w, r, &req) {
		return
	}
	alert, err := a.Alerts.Create(r.Context(), userID, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, "Alerte créée avec succès", alert)
}

func (a *API) handleMarkAlertRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := mustUserID(w, r)
	if !ok {
		return
	}
	alert, err := a.Alerts.MarkRead(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Alerte marquée comme lue", alert)
}

func (a *API) handleGenerateAlerts(w http.ResponseWriter, r *http.Request) {
	userID, ok := mustUserID(w, r)
	if !ok {
		return
	}
	alerts, err := a.Alerts.Generate(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Alertes générées", alerts)
}

func (a *API) handleAlertStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := mustUserID(w, r)
	if !ok {
		return
	}
	stats, err := a.Alerts.Stats(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Statistiques récupérées", stats)
}
