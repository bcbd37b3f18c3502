package handlers

import (
	"GophShare/internal/model"
	"GophShare/internal/service"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// FolderHandler дерево папок.
type FolderHandler struct {
	Folders *service.FolderService
	Files   *service.FileService
	Logger  *zap.SugaredLogger
}

func NewFolderHandler(folders *service.FolderService, files *service.FileService, logger *zap.SugaredLogger) *FolderHandler {
	return &FolderHandler{Folders: folders, Files: files, Logger: logger}
}

type createFolderRequest struct {
	Name     string  `json:"name" validate:"required"`
	ParentID *string `json:"parent_id" validate:"omitempty,uuid"`
}

// folderView папка с содержимым.
type folderView struct {
	Folder  *model.Folder         `json:"folder,omitempty"`
	Folders []*service.FolderNode `json:"folders"`
	Files   []model.File          `json:"files"`
}

func (h *FolderHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req createFolderRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	f, err := h.Folders.Create(r.Context(), userID, req.Name, req.ParentID)
	if err != nil {
		writeServiceError(w, h.Logger, "CreateFolder", err)
		return
	}
	writeJSON(w, http.StatusCreated, f)
}

// ListRoots корневые папки и файлы без папки. ?nested=true раскрывает дерево.
func (h *FolderHandler) ListRoots(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	h.list(w, r, userID, nil)
}

// Get папка, её дочерние папки и файлы.
func (h *FolderHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	h.list(w, r, userID, &id)
}

func (h *FolderHandler) list(w http.ResponseWriter, r *http.Request, userID int64, folderID *string) {
	view := folderView{}
	if folderID != nil {
		f, err := h.Folders.Get(r.Context(), userID, *folderID)
		if err != nil {
			writeServiceError(w, h.Logger, "GetFolder", err)
			return
		}
		view.Folder = f
	}

	nodes, err := h.Folders.List(r.Context(), userID, folderID, boolQuery(r, "nested"))
	if err != nil {
		writeServiceError(w, h.Logger, "ListFolders", err)
		return
	}
	files, err := h.Files.List(r.Context(), userID, folderID)
	if err != nil {
		writeServiceError(w, h.Logger, "ListFiles", err)
		return
	}
	view.Folders, view.Files = nodes, files
	writeJSON(w, http.StatusOK, view)
}

// Update частичное изменение: {"name": "...", "parent_id": "<uuid>" | null}.
func (h *FolderHandler) Update(w http.ResponseWriter, r *http.Request) {
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
		ParentID json.RawMessage `json:"parent_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	parentID, toRoot, _, err := optionalID(body.ParentID)
	if err != nil {
		http.Error(w, "parent_id: "+err.Error(), http.StatusBadRequest)
		return
	}

	f, err := h.Folders.Update(r.Context(), userID, id, service.FolderUpdate{
		Name:       body.Name,
		ParentID:   parentID,
		MoveToRoot: toRoot,
	})
	if err != nil {
		writeServiceError(w, h.Logger, "UpdateFolder", err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

// Delete удаляет папку; ?recursive=true вместе с содержимым.
func (h *FolderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	err := h.Folders.Delete(r.Context(), userID, id, boolQuery(r, "recursive"))
	if err != nil {
		writeServiceError(w, h.Logger, "DeleteFolder", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
