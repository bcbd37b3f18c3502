package service

import (
	"GophShare/internal/blob"
	"GophShare/internal/model"
	"GophShare/internal/repo"
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// PublicFile метаданные файла для анонимного доступа.
type PublicFile struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	MimeType string `json:"mimetype"`
	Size     int64  `json:"size"`
	URL      string `json:"url,omitempty"`
}

// PublicFolder папка расшаренного поддерева.
type PublicFolder struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Files   []PublicFile    `json:"files"`
	Folders []*PublicFolder `json:"folders"`
}

// PublicView то, что видит держатель токена.
type PublicView struct {
	Folder    *PublicFolder `json:"folder"`
	ExpiresAt time.Time     `json:"expires_at"`
}

// PublicService анонимный доступ к поддереву по токену, только чтение.
type PublicService struct {
	shares  *ShareService
	folders repo.FolderRepository
	files   repo.FileRepository
	blobs   blob.Store
	logger  *zap.SugaredLogger
}

func NewPublicService(shares *ShareService, folders repo.FolderRepository, files repo.FileRepository,
	blobs blob.Store, logger *zap.SugaredLogger) *PublicService {
	return &PublicService{shares: shares, folders: folders, files: files, blobs: blobs, logger: logger}
}

// Open раскрывает расшаренную папку целиком: подпапки и файлы со ссылками на скачивание.
func (s *PublicService) Open(ctx context.Context, token string) (*PublicView, error) {
	link, err := s.shares.Resolve(ctx, token)
	if err != nil {
		return nil, err
	}
	root, err := s.folders.GetByID(ctx, link.FolderID)
	if err != nil {
		return nil, storeErr(err)
	}

	nodes, all, err := expand(ctx, s.folders, []model.Folder{*root})
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(all))
	for _, n := range all {
		ids = append(ids, n.ID)
	}
	files, err := s.files.FindMany(ctx, repo.FileFilter{OwnerID: root.OwnerID, FolderIDs: ids}, "name ASC")
	if err != nil {
		return nil, storeErr(err)
	}
	byFolder := make(map[string][]PublicFile, len(all))
	for i := range files {
		f := &files[i]
		byFolder[*f.FolderID] = append(byFolder[*f.FolderID], s.publicFile(ctx, f))
	}

	return &PublicView{Folder: toPublic(nodes[0], byFolder), ExpiresAt: link.ExpiresAt}, nil
}

// File отдаёт один файл по id, только если он лежит внутри расшаренного поддерева.
func (s *PublicService) File(ctx context.Context, token, fileID string) (*PublicFile, error) {
	link, err := s.shares.Resolve(ctx, token)
	if err != nil {
		return nil, err
	}
	f, err := s.files.GetByID(ctx, fileID)
	if err != nil {
		return nil, storeErr(err)
	}
	if f.FolderID == nil {
		return nil, ErrNotFound
	}
	inside, err := walkUp(ctx, s.folders, *f.FolderID, func(folder *model.Folder) bool {
		return folder.ID == link.FolderID
	})
	if err != nil {
		if errors.Is(err, ErrUnavailable) {
			return nil, err
		}
		return nil, ErrNotFound
	}
	if !inside {
		return nil, ErrNotFound
	}
	pf := s.publicFile(ctx, f)
	return &pf, nil
}

// publicFile без BlobRef; ссылку не удалось получить: файл отдаётся без неё.
func (s *PublicService) publicFile(ctx context.Context, f *model.File) PublicFile {
	pf := PublicFile{ID: f.ID, Name: f.Name, MimeType: f.MimeType, Size: f.Size}
	url, err := s.blobs.AccessURL(ctx, f.BlobRef)
	if err != nil {
		s.logger.Warnw("blob url unavailable", "file_id", f.ID, "ref", f.BlobRef, "error", err)
		return pf
	}
	pf.URL = url
	return pf
}

func toPublic(n *FolderNode, files map[string][]PublicFile) *PublicFolder {
	out := &PublicFolder{ID: n.ID, Name: n.Name, Files: files[n.ID], Folders: make([]*PublicFolder, 0, len(n.Children))}
	if out.Files == nil {
		out.Files = []PublicFile{}
	}
	for _, c := range n.Children {
		out.Folders = append(out.Folders, toPublic(c, files))
	}
	return out
}
