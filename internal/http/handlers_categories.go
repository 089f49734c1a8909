package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"moneywise/internal/service"
)

func (a *API) handleListCategories(w http.ResponseWriter, r *http.Request) {
	userID, ok := mustUserID(w, r)
	if !ok {
		return
	}
	list, err := a.Categories.List(r.Context(), userID, r.URL.Query().Get("type"), queryInt(r, "page"), queryInt(r, "limit"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Catégories récupérées", list)
}

func (a *API) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	userID, ok := mustUserID(w, r)
	if !ok {
		return
	}
	var req service.CategoryInput
	if !decodeJSON(w, r, &req) {
		return
	}
	cat, err := a.Categories.Create(r.Context(), userID, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, "Catégorie créée avec succès", cat)
}

func (a *API) handleGetCategory(w http.ResponseWriter, r *http.Request) {
	userID, ok := mustUserID(w, r)
	if !ok {
		return
	}
	cat, err := a.Categories.Get(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Catégorie récupérée", cat)
}

func (a *API) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	userID, ok := mustUserID(w, r)
	if !ok {
		return
	}
	var req service.CategoryUpdate
	if !decodeJSON(w, r, &req) {
		return
	}
	cat, err := a.Categories.Update(r.Context(), userID, chi.URLParam(r, "id"), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Catégorie mise à jour", cat)
}

func (a *API) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	userID, ok := mustUserID(w, r)
	if !ok {
		return
	}
	if err := a.Categories.Delete(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Catégorie supprimée", nil)
}
