package commands

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"GophShare/internal/cli/api"
	"GophShare/internal/config"
)

type shareCmd struct{}

func (shareCmd) Name() string { return "share" }
func (shareCmd) Description() string {
	return "Create a public link to a folder (duration like 12h or 7d)"
}
func (shareCmd) Usage() string { return "share <folder-id> [duration]" }

func (shareCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return ErrUsage
	}
	req := map[string]string{}
	if len(args) == 2 {
		req["duration"] = args[1]
	}
	var s shareView
	path := "/api/folders/" + url.PathEscape(args[0]) + "/shares"
	if err := call(ctx, cfg, http.MethodPost, path, req, &s, http.StatusCreated); err != nil {
		return err
	}
	fmt.Fprintf(Out, "%s\n", s.URL)
	fmt.Fprintf(Out, "expires %s (%s)\n", s.ExpiresAt.Local().Format(time.RFC3339), humanize.Time(s.ExpiresAt))
	return nil
}

type sharesCmd struct{}

func (sharesCmd) Name() string        { return "shares" }
func (sharesCmd) Description() string { return "List your public links" }
func (sharesCmd) Usage() string       { return "shares" }

func (sharesCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	var list []shareView
	if err := call(ctx, cfg, http.MethodGet, "/api/shares", nil, &list); err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Fprintln(Out, "Нет ссылок")
		return nil
	}
	now := time.Now()
	for _, s := range list {
		state := "expires " + humanize.Time(s.ExpiresAt)
		if !now.Before(s.ExpiresAt) {
			state = "expired"
		}
		fmt.Fprintf(Out, "- %s  folder=%s  %s  %s\n", s.ID, s.FolderID, state, s.URL)
	}
	return nil
}

type unshareCmd struct{}

func (unshareCmd) Name() string        { return "unshare" }
func (unshareCmd) Description() string { return "Revoke a public link" }
func (unshareCmd) Usage() string       { return "unshare <share-id>" }

func (unshareCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	if err := call(ctx, cfg, http.MethodDelete, "/api/shares/"+url.PathEscape(args[0]), nil, nil, http.StatusNoContent); err != nil {
		return err
	}
	fmt.Fprintln(Out, "Revoked")
	return nil
}

type publicFolder struct {
	Name    string          `json:"name"`
	Files   []fileView      `json:"files"`
	Folders []*publicFolder `json:"folders"`
}

type openCmd struct{}

func (openCmd) Name() string        { return "open" }
func (openCmd) Description() string { return "Show what a public link exposes (no login needed)" }
func (openCmd) Usage() string       { return "open <token|link>" }

func (openCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	// принимаем и полную ссылку .../s/{token}
	token := args[0]
	if i := strings.LastIndex(token, "/s/"); i >= 0 {
		token = token[i+len("/s/"):]
	}

	resp, body, err := api.DoJSON(ctx, http.MethodGet, endpoint(cfg, "/s/"+url.PathEscape(token)), nil, "")
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return api.StatusError(resp, body)
	}
	var view struct {
		Folder    *publicFolder `json:"folder"`
		ExpiresAt time.Time     `json:"expires_at"`
	}
	if err := decodeBody(body, &view); err != nil {
		return err
	}
	if view.Folder != nil {
		printPublic(view.Folder, 0)
	}
	fmt.Fprintf(Out, "link expires %s\n", humanize.Time(view.ExpiresAt))
	return nil
}

func printPublic(f *publicFolder, depth int) {
	fmt.Fprintf(Out, "%s%s/\n", strings.Repeat("  ", depth), f.Name)
	printFiles(f.Files, depth+1)
	for _, c := range f.Folders {
		printPublic(c, depth+1)
	}
}

func init() {
	RegisterCmd(shareCmd{})
	RegisterCmd(sharesCmd{})
	RegisterCmd(unshareCmd{})
	RegisterCmd(openCmd{})
}
