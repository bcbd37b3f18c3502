package service

import (
	"GophShare/internal/blob"
	"GophShare/internal/config"
	"GophShare/internal/model"
	"GophShare/internal/repo"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"lukechampine.com/blake3"
)

const blobCleanupTimeout = 30 * time.Second

// FileService реестр метаданных файлов.
type FileService struct {
	tx      repo.TxManager
	files   repo.FileRepository
	folders repo.FolderRepository
	blobs   blob.Store
	policy  config.UploadPolicy
	logger  *zap.SugaredLogger
	now     Clock
}

func NewFileService(tx repo.TxManager, files repo.FileRepository, folders repo.FolderRepository,
	blobs blob.Store, policy config.UploadPolicy, logger *zap.SugaredLogger) *FileService {
	return &FileService{
		tx:      tx,
		files:   files,
		folders: folders,
		blobs:   blobs,
		policy:  policy,
		logger:  logger,
		now:     systemClock,
	}
}

// Policy действующие ограничения загрузки.
func (s *FileService) Policy() config.UploadPolicy { return s.policy }

// Upload один файл пакета.
type Upload struct {
	Name     string
	MimeType string
	Data     []byte
}

// AttachedFile прикреплённый файл и ссылка на скачивание.
type AttachedFile struct {
	model.File
	URL string `json:"url,omitempty"`
}

// FileUpdate частичное изменение файла. MoveToUnfiled убирает файл из папки и исключает FolderID.
type FileUpdate struct {
	Name          *string
	FolderID      *string
	MoveToUnfiled bool
}

// Attach загружает пакет файлов в folderID (nil: без папки).
// Каждый файл: blob, затем запись в БД; при ошибке записи blob удаляется.
// Если часть файлов не прошла, возвращается *PartialFailureError с успешными и причинами отказов.
// Пакет из одного файла возвращает ошибку этого файла как есть.
func (s *FileService) Attach(ctx context.Context, principalID int64, folderID *string, uploads []Upload) ([]AttachedFile, error) {
	if len(uploads) == 0 {
		return nil, fmt.Errorf("%w: no files in upload", ErrValidation)
	}
	if len(uploads) > s.policy.MaxBatchFiles {
		return nil, fmt.Errorf("%w: %d files in one upload, limit is %d", ErrValidation, len(uploads), s.policy.MaxBatchFiles)
	}
	if folderID != nil {
		if _, err := authorize(ctx, principalID, *folderID, s.folders.GetByID); err != nil {
			return nil, err
		}
	}

	attached := make([]AttachedFile, 0, len(uploads))
	var failures []FileFailure
	for _, u := range uploads {
		f, err := s.attachOne(ctx, principalID, folderID, u)
		if err != nil {
			failures = append(failures, FileFailure{Name: u.Name, Reason: err.Error(), Err: err})
			continue
		}
		attached = append(attached, s.withURL(ctx, f))
	}

	if len(failures) == 0 {
		s.logger.Infow("files attached", "owner_id", principalID, "count", len(attached))
		return attached, nil
	}
	if len(uploads) == 1 {
		return nil, failures[0].Err
	}
	s.logger.Warnw("upload partially failed", "owner_id", principalID,
		"attached", len(attached), "failed", len(failures))
	return attached, &PartialFailureError{Attached: attached, Failures: failures}
}

func (s *FileService) attachOne(ctx context.Context, principalID int64, folderID *string, u Upload) (*model.File, error) {
	name, err := validateName(u.Name)
	if err != nil {
		return nil, err
	}
	size := int64(len(u.Data))
	if size > s.policy.MaxFileSize {
		return nil, fmt.Errorf("%w: %s is larger than the %s limit", ErrValidation,
			humanize.IBytes(uint64(size)), humanize.IBytes(uint64(s.policy.MaxFileSize)))
	}
	mimeType := normalizeMime(u.MimeType)
	if !s.mimeAllowed(mimeType) {
		return nil, fmt.Errorf("%w: type %s is not allowed", ErrValidation, mimeType)
	}

	ref, err := s.blobs.Put(ctx, u.Data, mimeType)
	if err != nil {
		return nil, blobErr(err)
	}

	sum := blake3.Sum256(u.Data)
	f := &model.File{
		ID:       uuid.NewString(),
		Name:     name,
		MimeType: mimeType,
		Size:     size,
		Checksum: hex.EncodeToString(sum[:]),
		BlobRef:  ref,
		FolderID: folderID,
		OwnerID:  principalID,
	}
	err = inTx(ctx, s.tx, func(ctx context.Context) error {
		// папку могли удалить, пока грузился blob
		if folderID != nil {
			if _, err := authorize(ctx, principalID, *folderID, s.folders.GetByID); err != nil {
				return err
			}
		}
		if err := s.checkUnique(ctx, principalID, folderID, name, ""); err != nil {
			return err
		}
		return storeErr(s.files.Create(ctx, f))
	})
	if err != nil {
		deleteBlobs(ctx, s.blobs, s.logger, []string{ref})
		return nil, err
	}
	return f, nil
}

// withURL ссылка необязательна: файл уже прикреплён, даже если её не выдали.
func (s *FileService) withURL(ctx context.Context, f *model.File) AttachedFile {
	url, err := s.blobs.AccessURL(ctx, f.BlobRef)
	if err != nil {
		s.logger.Warnw("blob url unavailable", "file_id", f.ID, "error", err)
		return AttachedFile{File: *f}
	}
	return AttachedFile{File: *f, URL: url}
}

func (s *FileService) checkUnique(ctx context.Context, ownerID int64, folderID *string, name, excludeID string) error {
	filter := fileSiblings(ownerID, folderID)
	filter.Name = &name
	filter.ExcludeID = excludeID
	dup, err := s.files.FindMany(ctx, filter, "")
	if err != nil {
		return storeErr(err)
	}
	if len(dup) > 0 {
		return ErrDuplicateName
	}
	return nil
}

// mimeAllowed пустой список разрешает всё; поддерживаются шаблоны вида "image/*".
func (s *FileService) mimeAllowed(mimeType string) bool {
	if len(s.policy.AllowedMimeTypes) == 0 {
		return true
	}
	for _, allowed := range s.policy.AllowedMimeTypes {
		if allowed == mimeType {
			return true
		}
		if prefix, ok := strings.CutSuffix(allowed, "/*"); ok && strings.HasPrefix(mimeType, prefix+"/") {
			return true
		}
	}
	return false
}

// normalizeMime отбрасывает параметры: "text/plain; charset=utf-8" -> "text/plain".
func normalizeMime(m string) string {
	if i := strings.IndexByte(m, ';'); i >= 0 {
		m = m[:i]
	}
	m = strings.ToLower(strings.TrimSpace(m))
	if m == "" {
		return "application/octet-stream"
	}
	return m
}

// Update переименовывает и/или переносит файл.
func (s *FileService) Update(ctx context.Context, principalID int64, fileID string, upd FileUpdate) (*model.File, error) {
	var newName *string
	if upd.Name != nil {
		n, err := validateName(*upd.Name)
		if err != nil {
			return nil, err
		}
		newName = &n
	}

	var out *model.File
	err := inTx(ctx, s.tx, func(ctx context.Context) error {
		f, err := authorize(ctx, principalID, fileID, s.files.GetByID)
		if err != nil {
			return err
		}
		name, folder := f.Name, f.FolderID
		if newName != nil {
			name = *newName
		}
		switch {
		case upd.MoveToUnfiled:
			folder = nil
		case upd.FolderID != nil:
			target := *upd.FolderID
			if _, err := authorize(ctx, principalID, target, s.folders.GetByID); err != nil {
				return err
			}
			folder = &target
		}

		if name == f.Name && sameParent(folder, f.FolderID) {
			out = f
			return nil
		}
		if err := s.checkUnique(ctx, principalID, folder, name, f.ID); err != nil {
			return err
		}
		now := s.now()
		err = s.files.Update(ctx, f.ID, map[string]any{
			"name":       name,
			"folder_id":  folder,
			"updated_at": now,
		})
		if err != nil {
			return storeErr(err)
		}
		f.Name, f.FolderID, f.UpdatedAt = name, folder, now
		out = f
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Remove удаляет запись, затем blob. Ошибка удаления blob только логируется.
// Удаление отсутствующего файла считается успешным.
func (s *FileService) Remove(ctx context.Context, principalID int64, fileID string) error {
	var ref string
	err := inTx(ctx, s.tx, func(ctx context.Context) error {
		f, err := authorize(ctx, principalID, fileID, s.files.GetByID)
		if err != nil {
			return err
		}
		if _, err := s.files.Delete(ctx, f.ID); err != nil {
			return storeErr(err)
		}
		ref = f.BlobRef
		return nil
	})
	if err = ignoreNotFound(err); err != nil || ref == "" {
		return err
	}
	deleteBlobs(ctx, s.blobs, s.logger, []string{ref})
	return nil
}

// Get возвращает метаданные файла и ссылку на скачивание.
func (s *FileService) Get(ctx context.Context, principalID int64, fileID string) (*AttachedFile, error) {
	f, err := authorize(ctx, principalID, fileID, s.files.GetByID)
	if err != nil {
		return nil, err
	}
	url, err := s.blobs.AccessURL(ctx, f.BlobRef)
	if err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			s.logger.Warnw("blob missing for file", "file_id", f.ID, "ref", f.BlobRef)
			return &AttachedFile{File: *f}, nil
		}
		return nil, blobErr(err)
	}
	return &AttachedFile{File: *f, URL: url}, nil
}

// List перечисляет файлы папки или файлы без папки, если folderID nil.
func (s *FileService) List(ctx context.Context, principalID int64, folderID *string) ([]model.File, error) {
	filter := fileSiblings(principalID, folderID)
	if folderID != nil {
		if _, err := authorize(ctx, principalID, *folderID, s.folders.GetByID); err != nil {
			return nil, err
		}
	}
	files, err := s.files.FindMany(ctx, filter, "name ASC")
	if err != nil {
		return nil, storeErr(err)
	}
	return files, nil
}

// deleteBlobs удаляет блобы вне запроса: отмена клиента не должна оставлять мусор.
func deleteBlobs(ctx context.Context, store blob.Store, logger *zap.SugaredLogger, refs []string) {
	if len(refs) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), blobCleanupTimeout)
	defer cancel()
	for _, ref := range refs {
		if err := store.Delete(ctx, ref); err != nil {
			logger.Warnw("blob delete failed", "ref", ref, "error", err)
		}
	}
}
