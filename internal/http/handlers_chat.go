package http

import "net/http"

type chatMessageRequest struct {
	Content string `json:"content"`
}

func (a *API) handleSendChatMessage(w http.ResponseWriter, r *http.Request) {
	userID, ok := mustUserID(w, r)
	if !ok {
		return
	}
	var req chatMessageRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	exchange, err := a.Chat.SendMessage(r.Context(), userID, req.Content)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, "Message envoyé", exchange)
}

func (a *API) handleChatHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := mustUserID(w, r)
	if !ok {
		return
	}
	history, err := a.Chat.History(r.Context(), userID, queryInt(r, "page"), queryInt(r, "pageSize"), r.URL.Query().Get("sortOrder"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Historique récupéré", history)
}

func (a *API) handleClearChat(w http.ResponseWriter, r *http.Request) {
	userID, ok := mustUserID(w, r)
	if !ok {
		return
	}
	result, err := a.Chat.Clear(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Conversation supprimée", result)
}
