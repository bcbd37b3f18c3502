package handlers

import (
	"GophShare/internal/service"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
)

// FileHandler загрузка и управление файлами.
type FileHandler struct {
	Files  *service.FileService
	Logger *zap.SugaredLogger
}

func NewFileHandler(files *service.FileService, logger *zap.SugaredLogger) *FileHandler {
	return &FileHandler{Files: files, Logger: logger}
}

// Upload multipart/form-data: части "files" (можно несколько) и необязательный "folder_id".
// 201, если прикреплены все файлы, 207 при частичном успехе.
func (h *FileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	// Лимит общего тела запроса: все файлы пакета плюс запас на заголовки частей
	policy := h.Files.Policy()
	maxBody := policy.MaxFileSize*int64(policy.MaxBatchFiles) + 1<<20
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "payload too large, limit "+humanize.IBytes(uint64(maxBody)), http.StatusRequestEntityTooLarge)
			return
		}
		h.Logger.Warnw("Upload: invalid multipart form", "error", err)
		http.Error(w, "invalid multipart form", http.StatusBadRequest)
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	var folderID *string
	if v := r.FormValue("folder_id"); v != "" {
		if err := validate.Var(v, "uuid"); err != nil {
			http.Error(w, "folder_id must be a uuid", http.StatusBadRequest)
			return
		}
		folderID = &v
	}

	parts := r.MultipartForm.File["files"]
	if len(parts) == 0 {
		parts = r.MultipartForm.File["file"]
	}
	uploads := make([]service.Upload, 0, len(parts))
	var total int64
	for _, p := range parts {
		u, err := readPart(p)
		if err != nil {
			h.Logger.Warnw("Upload: failed to read part", "name", p.Filename, "error", err)
			http.Error(w, "failed to read file "+p.Filename, http.StatusBadRequest)
			return
		}
		total += int64(len(u.Data))
		uploads = append(uploads, u)
	}
	h.Logger.Infow("upload received", "user_id", userID, "files", len(uploads), "size", humanize.Bytes(uint64(total)))

	attached, err := h.Files.Attach(r.Context(), userID, folderID, uploads)
	var partial *service.PartialFailureError
	switch {
	case errors.As(err, &partial):
		writeJSON(w, http.StatusMultiStatus, map[string]any{
			"files":    partial.Attached,
			"failures": partial.Failures,
			"attached": len(partial.Attached),
			"failed":   len(partial.Failures),
		})
	case err != nil:
		writeServiceError(w, h.Logger, "Upload", err)
	default:
		writeJSON(w, http.StatusCreated, map[string]any{
			"files":    attached,
			"attached": len(attached),
			"failed":   0,
		})
	}
}

// readPart читает часть формы; тип без явного значения определяется по содержимому.
func readPart(p *multipart.FileHeader) (service.Upload, error) {
	f, err := p.Open()
	if err != nil {
		return service.Upload{}, err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return service.Upload{}, err
	}
	ctype := p.Header.Get("Content-Type")
	if ctype == "" || ctype == "application/octet-stream" {
		ctype = mimetype.Detect(data).String()
	}
	return service.Upload{Name: p.Filename, MimeType: ctype, Data: data}, nil
}

// List файлы папки (?folder_id=) или файлы без папки.
func (h *FileHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var folderID *string
	if v := r.URL.Query().Get("folder_id"); v != "" {
		if err := validate.Var(v, "uuid"); err != nil {
			http.Error(w, "folder_id must be a uuid", http.StatusBadRequest)
			return
		}
		folderID = &v
	}
	files, err := h.Files.List(r.Context(), userID, folderID)
	if err != nil {
		writeServiceError(w, h.Logger, "ListFiles", err)
		return
	}
	writeJSON(w, http.StatusOK, files)
}

// Get метаданные и ссылка на скачивание.
func (h *FileHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	f, err := h.Files.Get(r.Context(), userID, id)
	if err != nil {
		writeServiceError(w, h.Logger, "GetFile", err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

// Update частичное изменение: {"name": "...", "folder_id": "<uuid>" | null}.
func (h *FileHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var body struct {
		Name     *string         `json:"name"`
		FolderID json.RawMessage `json:"folder_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	folderID, unfiled, _, err := optionalID(body.FolderID)
	if err != nil {
		http.Error(w, "folder_id: "+err.Error(), http.StatusBadRequest)
		return
	}

	f, err := h.Files.Update(r.Context(), userID, id, service.FileUpdate{
		Name:          body.Name,
		FolderID:      folderID,
		MoveToUnfiled: unfiled,
	})
	if err != nil {
		writeServiceError(w, h.Logger, "UpdateFile", err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (h *FileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.Files.Remove(r.Context(), userID, id); err != nil {
		writeServiceError(w, h.Logger, "DeleteFile", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
