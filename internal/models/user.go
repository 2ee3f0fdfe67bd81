package models

import (
	"time"
)

// User is a registered author or reader
type User struct {
	ID           uint64    `gorm:"primaryKey;autoIncrement;column:id"`
	Username     string    `gorm:"type:varchar(150);not null;uniqueIndex:users_username_ux;column:username"`
	PasswordHash string    `gorm:"type:varchar(100);not null;default:'';column:password_hash"`
	CreatedAt    time.Time `gorm:"not null;column:created_at"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "users"
}

// String returns the username
func (u User) String() string {
	return u.Username
}
