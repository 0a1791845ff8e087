package model

import "time"

type User struct {
	ID        string `gorm:"primaryKey"`
	Email     string `gorm:"unique;not null"`
	Username  string `gorm:"unique;not null"`
	Password  string
	Role      string `gorm:"default:parent"` // parent, teacher
	LastLogin time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}
