package commands

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/dustin/go-humanize"

	"GophShare/internal/cli/api"
	"GophShare/internal/config"
)

type uploadCmd struct{}

func (uploadCmd) Name() string        { return "upload" }
func (uploadCmd) Description() string { return "Upload files (into a folder with -f)" }
func (uploadCmd) Usage() string       { return "upload [-f folder-id] <path>..." }

func (uploadCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("upload", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	folder := fs.String("f", "", "")
	if err := fs.Parse(args); err != nil || fs.NArg() == 0 {
		return ErrUsage
	}
	token, err := tokenStore(cfg).Load()
	if err != nil {
		return api.ErrUnauthorized
	}
	fields := map[string]string{}
	if *folder != "" {
		fields["folder_id"] = *folder
	}

	resp, body, err := api.PostFiles(ctx, endpoint(cfg, "/api/files"), fields, fs.Args(), token)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusMultiStatus {
		return api.StatusError(resp, body)
	}
	var res struct {
		Files    []fileView `json:"files"`
		Failures []struct {
			Name   string `json:"name"`
			Reason string `json:"reason"`
		} `json:"failures"`
	}
	if err := json.Unmarshal(body, &res); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	for _, f := range res.Files {
		fmt.Fprintf(Out, "+ %s  %s  %s\n", f.Name, humanize.IBytes(uint64(f.Size)), f.ID)
	}
	for _, f := range res.Failures {
		fmt.Fprintf(Out, "! %s: %s\n", f.Name, f.Reason)
	}
	if len(res.Failures) > 0 {
		return fmt.Errorf("%d of %d files failed", len(res.Failures), len(res.Files)+len(res.Failures))
	}
	return nil
}

type filesCmd struct{}

func (filesCmd) Name() string        { return "files" }
func (filesCmd) Description() string { return "List files in a folder, or unfiled files" }
func (filesCmd) Usage() string       { return "files [folder-id]" }

func (filesCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) > 1 {
		return ErrUsage
	}
	path := "/api/files"
	if len(args) == 1 {
		path += "?folder_id=" + url.QueryEscape(args[0])
	}
	var files []fileView
	if err := call(ctx, cfg, http.MethodGet, path, nil, &files); err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Fprintln(Out, "Нет файлов")
		return nil
	}
	printFiles(files, 0)
	fmt.Fprintf(Out, "Всего: %d\n", len(files))
	return nil
}

type fileGetCmd struct{}

func (fileGetCmd) Name() string        { return "file-get" }
func (fileGetCmd) Description() string { return "Show file metadata and a download link" }
func (fileGetCmd) Usage() string       { return "file-get <file-id>" }

func (fileGetCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	var f fileView
	if err := call(ctx, cfg, http.MethodGet, "/api/files/"+url.PathEscape(args[0]), nil, &f); err != nil {
		return err
	}
	fmt.Fprintf(Out, "id:        %s\n", f.ID)
	fmt.Fprintf(Out, "name:      %s\n", f.Name)
	fmt.Fprintf(Out, "type:      %s\n", f.MimeType)
	fmt.Fprintf(Out, "size:      %s\n", humanize.IBytes(uint64(f.Size)))
	fmt.Fprintf(Out, "blake3:    %s\n", f.Checksum)
	fmt.Fprintf(Out, "uploaded:  %s\n", humanize.Time(f.Created))
	fmt.Fprintf(Out, "url:       %s\n", f.URL)
	return nil
}

type fileMvCmd struct{}

func (fileMvCmd) Name() string        { return "file-mv" }
func (fileMvCmd) Description() string { return "Move a file into a folder, or out of folders with /" }
func (fileMvCmd) Usage() string       { return "file-mv <file-id> <folder-id|/>" }

func (fileMvCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 2 {
		return ErrUsage
	}
	var f fileView
	req := map[string]any{"folder_id": idOrRoot(args[1])}
	if err := call(ctx, cfg, http.MethodPatch, "/api/files/"+url.PathEscape(args[0]), req, &f); err != nil {
		return err
	}
	fmt.Fprintf(Out, "Moved %s\n", f.Name)
	return nil
}

type fileRmCmd struct{}

func (fileRmCmd) Name() string        { return "file-rm" }
func (fileRmCmd) Description() string { return "Delete a file" }
func (fileRmCmd) Usage() string       { return "file-rm <file-id>" }

func (fileRmCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	if err := call(ctx, cfg, http.MethodDelete, "/api/files/"+url.PathEscape(args[0]), nil, nil, http.StatusNoContent); err != nil {
		return err
	}
	fmt.Fprintln(Out, "Deleted")
	return nil
}

func init() {
	RegisterCmd(uploadCmd{})
	RegisterCmd(filesCmd{})
	RegisterCmd(fileGetCmd{})
	RegisterCmd(fileMvCmd{})
	RegisterCmd(fileRmCmd{})
}
