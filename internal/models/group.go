package models

import (
	"database/sql"
)

// Group is a topical collection that posts may optionally belong to
type Group struct {
	ID          uint64         `gorm:"primaryKey;autoIncrement;column:id"`
	Title       string         `gorm:"type:varchar(200);not null;column:title"`
	Slug        string         `gorm:"type:varchar(100);not null;uniqueIndex:post_groups_slug_ux;column:slug"`
	Description sql.NullString `gorm:"type:text;column:description"`
}

// TableName specifies the table name for Group
func (Group) TableName() string {
	return "post_groups"
}

// String returns the group title
func (g Group) String() string {
	return g.Title
}
