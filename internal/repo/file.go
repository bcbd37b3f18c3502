package repo

import (
	"GophShare/internal/model"
	"context"

	"gorm.io/gorm"
)

// FileFilter условия выборки файлов. Пустые поля не участвуют в фильтре.
type FileFilter struct {
	OwnerID   int64
	FolderIDs []string // файлы любой из перечисленных папок
	Unfiled   bool     // только folder_id IS NULL
	Name      *string
	ExcludeID string
}

// FileRepository определяет контракт доступа к File.
type FileRepository interface {
	Create(ctx context.Context, f *model.File) error
	// GetByID возвращает gorm.ErrRecordNotFound, если файла нет.
	GetByID(ctx context.Context, id string) (*model.File, error)
	FindMany(ctx context.Context, filter FileFilter, orderBy string) ([]model.File, error)
	// CountInFolder считает файлы, лежащие прямо в папке.
	CountInFolder(ctx context.Context, folderID string) (int64, error)
	Update(ctx context.Context, id string, updates map[string]any) error
	Delete(ctx context.Context, id string) (int64, error)
	// DeleteInFolder удаляет файлы папки и возвращает их (для последующей чистки blob).
	DeleteInFolder(ctx context.Context, folderID string) ([]model.File, error)
}

type fileRepo struct {
	db *gorm.DB
}

// NewFileRepository создаёт реализацию репозитория для File.
func NewFileRepository(db *gorm.DB) FileRepository {
	return &fileRepo{db: db}
}

func (r *fileRepo) Create(ctx context.Context, f *model.File) error {
	return conn(ctx, r.db).Create(f).Error
}

func (r *fileRepo) GetByID(ctx context.Context, id string) (*model.File, error) {
	var f model.File
	if err := conn(ctx, r.db).Where("id = ?", id).First(&f).Error; err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *fileRepo) FindMany(ctx context.Context, filter FileFilter, orderBy string) ([]model.File, error) {
	q := conn(ctx, r.db).Model(&model.File{})
	if filter.OwnerID != 0 {
		q = q.Where("owner_id = ?", filter.OwnerID)
	}
	if filter.Unfiled {
		q = q.Where("folder_id IS NULL")
	}
	if filter.FolderIDs != nil {
		if len(filter.FolderIDs) == 0 {
			return []model.File{}, nil
		}
		q = q.Where("folder_id IN ?", filter.FolderIDs)
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
	var res []model.File
	if err := q.Find(&res).Error; err != nil {
		return nil, err
	}
	return res, nil
}

func (r *fileRepo) CountInFolder(ctx context.Context, folderID string) (int64, error) {
	var n int64
	err := conn(ctx, r.db).Model(&model.File{}).Where("folder_id = ?", folderID).Count(&n).Error
	return n, err
}

func (r *fileRepo) Update(ctx context.Context, id string, updates map[string]any) error {
	tx := conn(ctx, r.db).Model(&model.File{}).Where("id = ?", id).Updates(updates)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *fileRepo) Delete(ctx context.Context, id string) (int64, error) {
	tx := conn(ctx, r.db).Where("id = ?", id).Delete(&model.File{})
	return tx.RowsAffected, tx.Error
}

func (r *fileRepo) DeleteInFolder(ctx context.Context, folderID string) ([]model.File, error) {
	db := conn(ctx, r.db)
	var files []model.File
	if err := db.Where("folder_id = ?", folderID).Find(&files).Error; err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return files, nil
	}
	if err := db.Where("folder_id = ?", folderID).Delete(&model.File{}).Error; err != nil {
		return nil, err
	}
	return files, nil
}
