// Package service holds the blog operations the web layer calls: posts,
// comments and follow edges.
package service

import (
	"context"
	"strings"
	"time"

	"github.com/yatube/yatube/internal/db"
	"github.com/yatube/yatube/internal/models"
)

// DefaultPageSize is the number of posts on one feed page
const DefaultPageSize = 10

var now = func() time.Time {
	return time.Now().UTC()
}

// lookupAuthor resolves a username or fails with ErrNotFound
func lookupAuthor(ctx context.Context, users *db.UserRepository, username string) (*models.User, error) {
	author, err := users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if author == nil {
		return nil, notFound("user %q", username)
	}
	return author, nil
}

// requiredText trims text and rejects it when nothing is left
func requiredText(field, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", invalid(field, "This field is required.")
	}
	return text, nil
}
