package model

import "time"

// File: метаданные загруженного файла. Содержимое лежит в blob-хранилище под BlobRef.
// FolderID == nil: файл «без папки».
type File struct {
	ID       string  `gorm:"primaryKey;type:uuid" json:"id"`
	Name     string  `gorm:"not null;uniqueIndex:idx_file_sibling,priority:3" json:"name"`
	MimeType string  `gorm:"not null" json:"mimetype"`
	Size     int64   `gorm:"not null" json:"size"`
	Checksum string  `json:"checksum,omitempty"` // blake3, hex
	BlobRef  string  `gorm:"not null" json:"-"`
	FolderID *string `gorm:"type:uuid;index;uniqueIndex:idx_file_sibling,priority:2" json:"folder_id"`
	OwnerID  int64   `gorm:"not null;index;uniqueIndex:idx_file_sibling,priority:1" json:"owner_id"`

	// Связи
	Owner  *User   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Folder *Folder `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// GetOwnerID реализует проверку владения.
func (f *File) GetOwnerID() int64 { return f.OwnerID }
