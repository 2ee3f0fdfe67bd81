package models

import (
	"time"
)

// PostOrder is the default ordering for every post listing: newest first,
// id as a tie-breaker for posts sharing a timestamp.
const PostOrder = "pub_date DESC, id DESC"

// previewLength is how many characters of text String returns
const previewLength = 15

// Post is a blog entry owned by its author
type Post struct {
	ID       uint64    `gorm:"primaryKey;autoIncrement;column:id"`
	Text     string    `gorm:"type:text;not null;column:text"`
	PubDate  time.Time `gorm:"not null;index:posts_pub_date_idx;column:pub_date"`
	Image    string    `gorm:"type:varchar(255);not null;default:'';column:image"`
	GroupID  *uint64   `gorm:"index:posts_group_idx;column:group_id"`
	AuthorID uint64    `gorm:"not null;index:posts_author_idx;column:author_id"`

	// Relationships
	Group  *Group `gorm:"foreignKey:GroupID;references:ID;constraint:OnDelete:SET NULL"`
	Author *User  `gorm:"foreignKey:AuthorID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for Post
func (Post) TableName() string {
	return "posts"
}

// String returns the first characters of the post text
func (p Post) String() string {
	runes := []rune(p.Text)
	if len(runes) > previewLength {
		return string(runes[:previewLength])
	}
	return p.Text
}

// HasImage reports whether an image is attached
func (p Post) HasImage() bool {
	return p.Image != ""
}
