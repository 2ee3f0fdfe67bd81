package models

import (
	"time"
)

// Follow is a directed edge: UserID sees AuthorID's posts in their feed.
// At most one edge exists per (follower, author) pair.
type Follow struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement;column:id"`
	UserID    uint64    `gorm:"not null;uniqueIndex:follows_user_author_ux;column:user_id"`
	AuthorID  uint64    `gorm:"not null;uniqueIndex:follows_user_author_ux;index:follows_author_idx;column:author_id"`
	CreatedAt time.Time `gorm:"not null;column:created_at"`

	// Relationships
	User   *User `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
	Author *User `gorm:"foreignKey:AuthorID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for Follow
func (Follow) TableName() string {
	return "follows"
}

// All returns every model in migration order
func All() []interface{} {
	return []interface{}{
		&User{},
		&Group{},
		&Post{},
		&Comment{},
		&Follow{},
	}
}
