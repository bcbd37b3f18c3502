package model

import "time"

// Folder: узел дерева папок пользователя. ParentID == nil означает корневую папку владельца.
// Уникальный индекс (owner_id, parent_id, name) не ловит дубли среди корневых папок (NULL),
// их проверяет сервис.
type Folder struct {
	ID       string  `gorm:"primaryKey;type:uuid" json:"id"`
	Name     string  `gorm:"not null;uniqueIndex:idx_folder_sibling,priority:3" json:"name"`
	OwnerID  int64   `gorm:"not null;index;uniqueIndex:idx_folder_sibling,priority:1" json:"owner_id"`
	ParentID *string `gorm:"type:uuid;index;uniqueIndex:idx_folder_sibling,priority:2" json:"parent_id"`

	// Связи
	Owner  *User   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Parent *Folder `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// GetOwnerID реализует проверку владения.
func (f *Folder) GetOwnerID() int64 { return f.OwnerID }
