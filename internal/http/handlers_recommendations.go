package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (a *API) handleListRecommendations(w http.ResponseWriter, r *http.Request) {
	userID, ok := mustUserID(w, r)
	if !ok {
		return
	}
	list, err := a.Recommendations.List(r.Context(), userID, r.URL.Query().Get("type"), queryInt(r, "page"), queryInt(r, "limit"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Recommandations récupérées", list)
}

func (a *API) handleGenerateRecommendations(w http.ResponseWriter, r *http.Request) {
	userID, ok := mustUserID(w, r)
	if !ok {
		return
	}
	recs, err := a.Recommendations.Generate(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, "Recommandations générées", recs)
}

func (a *API) handleDeleteRecommendation(w http.ResponseWriter, r *http.Request) {
	userID, ok := mustUserID(w, r)
	if !ok {
		return
	}
	if err := a.Recommendations.Delete(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Recommandation supprimée", nil)
}
