package models

import (
	"time"
)

// Comment is an immutable reply attached to a post
type Comment struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement;column:id"`
	PostID    uint64    `gorm:"not null;index:comments_post_idx;column:post_id"`
	AuthorID  uint64    `gorm:"not null;index:comments_author_idx;column:author_id"`
	Text      string    `gorm:"type:text;not null;column:text"`
	CreatedAt time.Time `gorm:"not null;column:created"`

	// Relationships
	Post   *Post `gorm:"foreignKey:PostID;references:ID;constraint:OnDelete:CASCADE"`
	Author *User `gorm:"foreignKey:AuthorID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for Comment
func (Comment) TableName() string {
	return "comments"
}
