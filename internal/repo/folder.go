package repo

import (
	"GophShare/internal/model"
	"context"

	"gorm.io/gorm"
)

// FolderFilter условия выборки папок. Пустые поля не участвуют в фильтре.
type FolderFilter struct {
	OwnerID   int64
	ParentIDs []string // дети любой из перечисленных папок
	RootsOnly bool     // только parent_id IS NULL
	Name      *string
	ExcludeID string
}

// FolderRepository определяет контракт доступа к Folder.
type FolderRepository interface {
	Create(ctx context.Context, f *model.Folder) error
	// GetByID возвращает gorm.ErrRecordNotFound, если папки нет.
	GetByID(ctx context.Context, id string) (*model.Folder, error)
	// FindMany выбирает папки по фильтру в порядке orderBy (например "name ASC").
	FindMany(ctx context.Context, filter FolderFilter, orderBy string) ([]model.Folder, error)
	// CountChildren считает прямые дочерние папки.
	CountChildren(ctx context.Context, id string) (int64, error)
	// Update применяет частичное обновление. Возвращает gorm.ErrRecordNotFound, если строки нет.
	Update(ctx context.Context, id string, updates map[string]any) error
	// Delete удаляет одну папку и возвращает число удалённых строк.
	Delete(ctx context.Context, id string) (int64, error)
}

type folderRepo struct {
	db *gorm.DB
}

// NewFolderRepository создаёт реализацию репозитория для Folder.
func NewFolderRepository(db *gorm.DB) FolderRepository {
	return &folderRepo{db: db}
}

func (r *folderRepo) Create(ctx context.Context, f *model.Folder) error {
	return conn(ctx, r.db).Create(f).Error
}

func (r *folderRepo) GetByID(ctx context.Context, id string) (*model.Folder, error) {
	var f model.Folder
	if err := conn(ctx, r.db).Where("id = ?", id).First(&f).Error; err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *folderRepo) FindMany(ctx context.Context, filter FolderFilter, orderBy string) ([]model.Folder, error) {
	q := conn(ctx, r.db).Model(&model.Folder{})
	if filter.OwnerID != 0 {
		q = q.Where("owner_id = ?", filter.OwnerID)
	}
	if filter.RootsOnly {
		q = q.Where("parent_id IS NULL")
	}
	if filter.ParentIDs != nil {
		if len(filter.ParentIDs) == 0 {
			return []model.Folder{}, nil
		}
		q = q.Where("parent_id IN ?", filter.ParentIDs)
	}
	if filter.Name != nil {
		q = q.Where("name = ?", *filter.Name)
	}
	if filter.ExcludeID != "" {
		q = q.Where("id <> ?", filter.ExcludeID)
	}
	if orderBy != "" {
		q = q.Order(orderBy)
	}
	var res []model.Folder
	if err := q.Find(&res).Error; err != nil {
		return nil, err
	}
	return res, nil
}

func (r *folderRepo) CountChildren(ctx context.Context, id string) (int64, error) {
	var n int64
	err := conn(ctx, r.db).Model(&model.Folder{}).Where("parent_id = ?", id).Count(&n).Error
	return n, err
}

func (r *folderRepo) Update(ctx context.Context, id string, updates map[string]any) error {
	tx := conn(ctx, r.db).Model(&model.Folder{}).Where("id = ?", id).Updates(updates)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *folderRepo) Delete(ctx context.Context, id string) (int64, error) {
	tx := conn(ctx, r.db).Where("id = ?", id).Delete(&model.Folder{})
	return tx.RowsAffected, tx.Error
}
