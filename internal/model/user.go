package model

import "time"

// User: зарегистрированный пользователь, владелец папок и файлов.
type User struct {
	ID       int64  `gorm:"primaryKey;autoIncrement"`
	Email    string `gorm:"not null;uniqueIndex"`
	Password string `gorm:"not null"` // bcrypt-хеш
	Name     string

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
