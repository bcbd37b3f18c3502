package model

import "time"

// ShareLink: публичная ссылка на поддерево папки.
// Владельца у ссылки нет: права проверяются через владельца папки.
type ShareLink struct {
	ID        string    `gorm:"primaryKey;type:uuid" json:"id"`
	Token     string    `gorm:"not null;uniqueIndex" json:"token"`
	FolderID  string    `gorm:"type:uuid;not null;index" json:"folder_id"`
	Folder    *Folder   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	ExpiresAt time.Time `gorm:"not null;index" json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// Expired сообщает, истекла ли ссылка к моменту now (граница включительно).
func (s *ShareLink) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
