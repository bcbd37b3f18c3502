package handlers

import (
	"GophShare/internal/blob"
	"GophShare/internal/service"
	"errors"
	"net/http"
	"strconv"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// PublicHandler анонимный доступ по токену ссылки. Авторизация не требуется.
type PublicHandler struct {
	Public *service.PublicService
	Blobs  blob.Store
	Signer *blob.URLSigner
	Logger *zap.SugaredLogger
}

func NewPublicHandler(public *service.PublicService, blobs blob.Store, signer *blob.URLSigner, logger *zap.SugaredLogger) *PublicHandler {
	return &PublicHandler{Public: public, Blobs: blobs, Signer: signer, Logger: logger}
}

// Open GET /s/{token}: дерево расшаренной папки.
func (h *PublicHandler) Open(w http.ResponseWriter, r *http.Request) {
	view, err := h.Public.Open(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		writeServiceError(w, h.Logger, "OpenShare", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// File GET /s/{token}/files/{fileID}. С ?download=1 сразу редиректит на ссылку блоба.
func (h *PublicHandler) File(w http.ResponseWriter, r *http.Request) {
	fileID, ok := pathID(w, r, "fileID")
	if !ok {
		return
	}
	f, err := h.Public.File(r.Context(), chi.URLParam(r, "token"), fileID)
	if err != nil {
		writeServiceError(w, h.Logger, "ShareFile", err)
		return
	}
	if boolQuery(r, "download") {
		if f.URL == "" {
			http.Error(w, service.ErrUnavailable.Error(), http.StatusServiceUnavailable)
			return
		}
		http.Redirect(w, r, f.URL, http.StatusFound)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

// Blob GET /blobs/{token}: содержимое локального хранилища по подписанной ссылке.
func (h *PublicHandler) Blob(w http.ResponseWriter, r *http.Request) {
	opener, ok := h.Blobs.(blob.Opener)
	if !ok || h.Signer == nil {
		http.NotFound(w, r)
		return
	}
	ref, err := h.Signer.Verify(chi.URLParam(r, "token"))
	if err != nil {
		http.Error(w, "invalid or expired link", http.StatusForbidden)
		return
	}

	data, err := opener.Open(r.Context(), ref)
	if err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		h.Logger.Errorw("Blob: open failed", "ref", ref, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", mimetype.Detect(data).String())
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "private, max-age=60")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
