package handlers

import (
	"GophShare/internal/service"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"
)

// ShareHandler выдача и отзыв публичных ссылок.
type ShareHandler struct {
	Shares *service.ShareService
	Logger *zap.SugaredLogger
}

func NewShareHandler(shares *service.ShareService, logger *zap.SugaredLogger) *ShareHandler {
	return &ShareHandler{Shares: shares, Logger: logger}
}

type issueShareRequest struct {
	// "{число}h" или "{число}d"; иначе срок по умолчанию
	Duration string `json:"duration"`
}

// Issue POST /api/folders/{id}/shares. Пустое тело допустимо.
func (h *ShareHandler) Issue(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req issueShareRequest
	if err := decodeJSON(r, &req); err != nil && !isEmptyBody(err) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	link, err := h.Shares.Issue(r.Context(), userID, id, req.Duration)
	if err != nil {
		writeServiceError(w, h.Logger, "IssueShare", err)
		return
	}
	writeJSON(w, http.StatusCreated, link)
}

func (h *ShareHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	links, err := h.Shares.List(r.Context(), userID)
	if err != nil {
		writeServiceError(w, h.Logger, "ListShares", err)
		return
	}
	writeJSON(w, http.StatusOK, links)
}

func (h *ShareHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.Shares.Revoke(r.Context(), userID, id); err != nil {
		writeServiceError(w, h.Logger, "RevokeShare", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func isEmptyBody(err error) bool {
	return errors.Is(err, io.EOF)
}
