package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/dustin/go-humanize"

	"GophShare/internal/config"
)

type mkdirCmd struct{}

func (mkdirCmd) Name() string        { return "mkdir" }
func (mkdirCmd) Description() string { return "Create a folder (at root or inside parent)" }
func (mkdirCmd) Usage() string       { return "mkdir <name> [parent-id]" }

func (mkdirCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return ErrUsage
	}
	req := map[string]any{"name": args[0]}
	if len(args) == 2 {
		req["parent_id"] = args[1]
	}
	var f folderView
	if err := call(ctx, cfg, http.MethodPost, "/api/folders", req, &f, http.StatusCreated); err != nil {
		return err
	}
	fmt.Fprintf(Out, "Created %s  %s\n", f.ID, f.Name)
	return nil
}

type lsCmd struct{}

func (lsCmd) Name() string        { return "ls" }
func (lsCmd) Description() string { return "List folders and files (-r for the whole subtree)" }
func (lsCmd) Usage() string       { return "ls [-r] [folder-id]" }

func (lsCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("ls", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	recursive := fs.Bool("r", false, "")
	if err := fs.Parse(args); err != nil || fs.NArg() > 1 {
		return ErrUsage
	}

	path := "/api/folders"
	if fs.NArg() == 1 {
		path += "/" + url.PathEscape(fs.Arg(0))
	}
	if *recursive {
		path += "?nested=true"
	}
	var view struct {
		Folder  *folderView   `json:"folder"`
		Folders []*folderView `json:"folders"`
		Files   []fileView    `json:"files"`
	}
	if err := call(ctx, cfg, http.MethodGet, path, nil, &view); err != nil {
		return err
	}

	if view.Folder != nil {
		fmt.Fprintf(Out, "%s/  (%s)\n", view.Folder.Name, view.Folder.ID)
	}
	for _, f := range view.Folders {
		printFolder(f, 0)
	}
	printFiles(view.Files, 0)
	if len(view.Folders) == 0 && len(view.Files) == 0 {
		fmt.Fprintln(Out, "Пусто")
	}
	return nil
}

func printFolder(f *folderView, depth int) {
	fmt.Fprintf(Out, "%s%s/  %s\n", strings.Repeat("  ", depth), f.Name, f.ID)
	for _, c := range f.Children {
		printFolder(c, depth+1)
	}
}

func printFiles(files []fileView, depth int) {
	for _, f := range files {
		fmt.Fprintf(Out, "%s%s  %s  %s  %s\n", strings.Repeat("  ", depth), f.Name, humanize.IBytes(uint64(f.Size)), f.MimeType, f.ID)
	}
}

type mvCmd struct{}

func (mvCmd) Name() string        { return "mv" }
func (mvCmd) Description() string { return "Move a folder under another folder, or to root with /" }
func (mvCmd) Usage() string       { return "mv <folder-id> <parent-id|/>" }

func (mvCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 2 {
		return ErrUsage
	}
	req := map[string]any{"parent_id": idOrRoot(args[1])}
	var f folderView
	if err := call(ctx, cfg, http.MethodPatch, "/api/folders/"+url.PathEscape(args[0]), req, &f); err != nil {
		return err
	}
	fmt.Fprintf(Out, "Moved %s\n", f.Name)
	return nil
}

type renameCmd struct{}

func (renameCmd) Name() string        { return "rename" }
func (renameCmd) Description() string { return "Rename a folder" }
func (renameCmd) Usage() string       { return "rename <folder-id> <new-name>" }

func (renameCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 2 {
		return ErrUsage
	}
	var f folderView
	if err := call(ctx, cfg, http.MethodPatch, "/api/folders/"+url.PathEscape(args[0]), map[string]any{"name": args[1]}, &f); err != nil {
		return err
	}
	fmt.Fprintf(Out, "Renamed to %s\n", f.Name)
	return nil
}

type rmCmd struct{}

func (rmCmd) Name() string        { return "rm" }
func (rmCmd) Description() string { return "Delete a folder (-r with everything inside)" }
func (rmCmd) Usage() string       { return "rm [-r] <folder-id>" }

func (rmCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("rm", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	recursive := fs.Bool("r", false, "")
	if err := fs.Parse(args); err != nil || fs.NArg() != 1 {
		return ErrUsage
	}
	path := "/api/folders/" + url.PathEscape(fs.Arg(0))
	if *recursive {
		path += "?recursive=true"
	}
	if err := call(ctx, cfg, http.MethodDelete, path, nil, nil, http.StatusNoContent); err != nil {
		return err
	}
	fmt.Fprintln(Out, "Deleted")
	return nil
}

func init() {
	RegisterCmd(mkdirCmd{})
	RegisterCmd(lsCmd{})
	RegisterCmd(mvCmd{})
	RegisterCmd(renameCmd{})
	RegisterCmd(rmCmd{})
}
