package service

import (
	"GophShare/internal/blob"
	"GophShare/internal/model"
	"GophShare/internal/repo"
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// FolderService дерево папок пользователя.
type FolderService struct {
	tx      repo.TxManager
	folders repo.FolderRepository
	files   repo.FileRepository
	shares  repo.ShareRepository
	blobs   blob.Store
	logger  *zap.SugaredLogger
	now     Clock
}

func NewFolderService(tx repo.TxManager, folders repo.FolderRepository, files repo.FileRepository,
	shares repo.ShareRepository, blobs blob.Store, logger *zap.SugaredLogger) *FolderService {
	return &FolderService{
		tx:      tx,
		folders: folders,
		files:   files,
		shares:  shares,
		blobs:   blobs,
		logger:  logger,
		now:     systemClock,
	}
}

// FolderUpdate частичное изменение папки. MoveToRoot переносит папку в корень и исключает ParentID.
type FolderUpdate struct {
	Name       *string
	ParentID   *string
	MoveToRoot bool
}

// Create создаёт папку в parentID или в корне.
func (s *FolderService) Create(ctx context.Context, principalID int64, name string, parentID *string) (*model.Folder, error) {
	name, err := validateName(name)
	if err != nil {
		return nil, err
	}

	f := &model.Folder{
		ID:       uuid.NewString(),
		Name:     name,
		OwnerID:  principalID,
		ParentID: parentID,
	}
	err = inTx(ctx, s.tx, func(ctx context.Context) error {
		if parentID != nil {
			if _, err := authorize(ctx, principalID, *parentID, s.folders.GetByID); err != nil {
				return err
			}
		}
		if err := s.checkUnique(ctx, principalID, parentID, name, ""); err != nil {
			return err
		}
		return storeErr(s.folders.Create(ctx, f))
	})
	if err != nil {
		return nil, err
	}
	return f, nil
}

// Update переименовывает и/или переносит папку.
// Перенос в собственное поддерево отклоняется с ErrCircularReference.
func (s *FolderService) Update(ctx context.Context, principalID int64, folderID string, upd FolderUpdate) (*model.Folder, error) {
	var newName *string
	if upd.Name != nil {
		n, err := validateName(*upd.Name)
		if err != nil {
			return nil, err
		}
		newName = &n
	}

	var out *model.Folder
	err := inTx(ctx, s.tx, func(ctx context.Context) error {
		f, err := authorize(ctx, principalID, folderID, s.folders.GetByID)
		if err != nil {
			return err
		}

		name, parent := f.Name, f.ParentID
		if newName != nil {
			name = *newName
		}
		switch {
		case upd.MoveToRoot:
			parent = nil
		case upd.ParentID != nil:
			target := *upd.ParentID
			if _, err := authorize(ctx, principalID, target, s.folders.GetByID); err != nil {
				return err
			}
			if target == f.ID {
				return ErrSelfParent
			}
			if err := s.checkNotDescendant(ctx, f.ID, target); err != nil {
				return err
			}
			parent = &target
		}

		if name == f.Name && sameParent(parent, f.ParentID) {
			out = f
			return nil
		}
		if err := s.checkUnique(ctx, principalID, parent, name, f.ID); err != nil {
			return err
		}

		now := s.now()
		err = s.folders.Update(ctx, f.ID, map[string]any{
			"name":       name,
			"parent_id":  parent,
			"updated_at": now,
		})
		if err != nil {
			return storeErr(err)
		}
		f.Name, f.ParentID, f.UpdatedAt = name, parent, now
		out = f
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// checkNotDescendant поднимается от newParentID к корню и ищет folderID среди предков.
func (s *FolderService) checkNotDescendant(ctx context.Context, folderID, newParentID string) error {
	found, err := walkUp(ctx, s.folders, newParentID, func(f *model.Folder) bool {
		return f.ID == folderID
	})
	if err != nil {
		return err
	}
	if found {
		return ErrCircularReference
	}
	return nil
}

func (s *FolderService) checkUnique(ctx context.Context, ownerID int64, parentID *string, name, excludeID string) error {
	filter := folderSiblings(ownerID, parentID)
	filter.Name = &name
	filter.ExcludeID = excludeID
	dup, err := s.folders.FindMany(ctx, filter, "")
	if err != nil {
		return storeErr(err)
	}
	if len(dup) > 0 {
		return ErrDuplicateName
	}
	return nil
}

// Get возвращает папку владельца.
func (s *FolderService) Get(ctx context.Context, principalID int64, folderID string) (*model.Folder, error) {
	return authorize(ctx, principalID, folderID, s.folders.GetByID)
}

// List перечисляет дочерние папки folderID или корневые папки, если folderID nil.
// nested раскрывает всё поддерево.
func (s *FolderService) List(ctx context.Context, principalID int64, folderID *string, nested bool) ([]*FolderNode, error) {
	filter := folderSiblings(principalID, folderID)
	if folderID != nil {
		if _, err := authorize(ctx, principalID, *folderID, s.folders.GetByID); err != nil {
			return nil, err
		}
		// дети чужих папок уже отсечены проверкой владения
		filter.OwnerID = 0
	}

	children, err := s.folders.FindMany(ctx, filter, "name ASC")
	if err != nil {
		return nil, storeErr(err)
	}
	if !nested {
		nodes := make([]*FolderNode, 0, len(children))
		for i := range children {
			nodes = append(nodes, &FolderNode{Folder: children[i]})
		}
		return nodes, nil
	}

	nodes, _, err := expand(ctx, s.folders, children)
	if err != nil {
		return nil, err
	}
	if nodes == nil {
		nodes = []*FolderNode{}
	}
	return nodes, nil
}

// Delete удаляет папку. Непустая папка без recursive даёт *NotEmptyError.
// recursive удаляет поддерево от листьев к корню в одной транзакции,
// блобы файлов удаляются после фиксации, ошибки только логируются.
// Удаление отсутствующей папки считается успешным.
func (s *FolderService) Delete(ctx context.Context, principalID int64, folderID string, recursive bool) error {
	var refs []string
	err := inTx(ctx, s.tx, func(ctx context.Context) error {
		f, err := authorize(ctx, principalID, folderID, s.folders.GetByID)
		if err != nil {
			return err
		}

		nFolders, err := s.folders.CountChildren(ctx, f.ID)
		if err != nil {
			return storeErr(err)
		}
		nFiles, err := s.files.CountInFolder(ctx, f.ID)
		if err != nil {
			return storeErr(err)
		}
		if (nFolders > 0 || nFiles > 0) && !recursive {
			return &NotEmptyError{Folders: nFolders, Files: nFiles}
		}

		_, all, err := expand(ctx, s.folders, []model.Folder{*f})
		if err != nil {
			return err
		}
		// обход в ширину, развёрнутый назад: дети всегда раньше родителя
		for i := len(all) - 1; i >= 0; i-- {
			id := all[i].ID
			removed, err := s.files.DeleteInFolder(ctx, id)
			if err != nil {
				return storeErr(err)
			}
			for _, file := range removed {
				refs = append(refs, file.BlobRef)
			}
			if _, err := s.shares.DeleteByFolder(ctx, id); err != nil {
				return storeErr(err)
			}
			if _, err := s.folders.Delete(ctx, id); err != nil {
				return storeErr(err)
			}
		}
		return nil
	})
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	s.logger.Infow("folder deleted", "folder_id", folderID, "owner_id", principalID, "files", len(refs))
	deleteBlobs(ctx, s.blobs, s.logger, refs)
	return nil
}
