package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"GophShare/internal/cli/api"
	"GophShare/internal/cli/repo"
	fsrepo "GophShare/internal/cli/repo/fs"
	"GophShare/internal/config"
)

// rootArg обозначает корень (для папок) или «без папки» (для файлов).
const rootArg = "/"

type folderView struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	ParentID *string       `json:"parent_id"`
	Children []*folderView `json:"children"`
}

type fileView struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	MimeType string    `json:"mimetype"`
	Size     int64     `json:"size"`
	FolderID *string   `json:"folder_id"`
	URL      string    `json:"url"`
	Checksum string    `json:"checksum"`
	Created  time.Time `json:"created_at"`
}

type shareView struct {
	ID        string    `json:"id"`
	Token     string    `json:"token"`
	FolderID  string    `json:"folder_id"`
	ExpiresAt time.Time `json:"expires_at"`
	URL       string    `json:"url"`
}

func tokenStore(cfg *config.Config) repo.TokenStore {
	return fsrepo.AuthFSStore{Path: cfg.TokenFile}
}

func endpoint(cfg *config.Config, path string) string {
	return strings.TrimRight(cfg.ServerURL, "/") + path
}

// call выполняет авторизованный запрос и декодирует ответ в out (если не nil).
// Статусы вне ok превращаются в ошибку с текстом сервера.
func call(ctx context.Context, cfg *config.Config, method, path string, payload, out any, ok ...int) error {
	token, err := tokenStore(cfg).Load()
	if err != nil {
		return api.ErrUnauthorized
	}
	resp, body, err := api.DoJSON(ctx, method, endpoint(cfg, path), payload, token)
	if err != nil {
		return err
	}
	if len(ok) == 0 {
		ok = []int{http.StatusOK}
	}
	if !slices.Contains(ok, resp.StatusCode) {
		return api.StatusError(resp, body)
	}
	if out != nil {
		return decodeBody(body, out)
	}
	return nil
}

func decodeBody(body []byte, out any) error {
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}

// idOrRoot превращает "/" в JSON null.
func idOrRoot(arg string) *string {
	if arg == rootArg {
		return nil
	}
	return &arg
}
