package repo

import (
	"GophShare/internal/model"
	"context"
	"time"

	"gorm.io/gorm"
)

// ShareRepository определяет контракт доступа к ShareLink.
type ShareRepository interface {
	Create(ctx context.Context, s *model.ShareLink) error
	GetByID(ctx context.Context, id string) (*model.ShareLink, error)
	GetByToken(ctx context.Context, token string) (*model.ShareLink, error)
	// ListByOwner возвращает ссылки на все папки владельца, новые первыми.
	ListByOwner(ctx context.Context, ownerID int64) ([]model.ShareLink, error)
	Delete(ctx context.Context, id string) (int64, error)
	DeleteByFolder(ctx context.Context, folderID string) (int64, error)
	// DeleteExpired удаляет ссылки с expires_at <= now.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type shareRepo struct {
	db *gorm.DB
}

// NewShareRepository создаёт реализацию репозитория для ShareLink.
func NewShareRepository(db *gorm.DB) ShareRepository {
	return &shareRepo{db: db}
}

func (r *shareRepo) Create(ctx context.Context, s *model.ShareLink) error {
	return conn(ctx, r.db).Create(s).Error
}

func (r *shareRepo) GetByID(ctx context.Context, id string) (*model.ShareLink, error) {
	var s model.ShareLink
	if err := conn(ctx, r.db).Where("id = ?", id).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *shareRepo) GetByToken(ctx context.Context, token string) (*model.ShareLink, error) {
	var s model.ShareLink
	if err := conn(ctx, r.db).Where("token = ?", token).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *shareRepo) ListByOwner(ctx context.Context, ownerID int64) ([]model.ShareLink, error) {
	var res []model.ShareLink
	err := conn(ctx, r.db).
		Joins("JOIN folders ON folders.id = share_links.folder_id").
		Where("folders.owner_id = ?", ownerID).
		Order("share_links.created_at DESC").
		Find(&res).Error
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (r *shareRepo) Delete(ctx context.Context, id string) (int64, error) {
	tx := conn(ctx, r.db).Where("id = ?", id).Delete(&model.ShareLink{})
	return tx.RowsAffected, tx.Error
}

func (r *shareRepo) DeleteByFolder(ctx context.Context, folderID string) (int64, error) {
	tx := conn(ctx, r.db).Where("folder_id = ?", folderID).Delete(&model.ShareLink{})
	return tx.RowsAffected, tx.Error
}

func (r *shareRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tx := conn(ctx, r.db).Where("expires_at <= ?", now).Delete(&model.ShareLink{})
	return tx.RowsAffected, tx.Error
}
