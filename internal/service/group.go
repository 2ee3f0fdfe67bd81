package service

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/yatube/yatube/internal/db"
	"github.com/yatube/yatube/internal/models"
	"github.com/yatube/yatube/pkg/logging"
)

const maxGroupTitleLength = 200

var slugPattern = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)

// GroupService manages the groups posts can be filed under
type GroupService struct {
	groups *db.GroupRepository
	logger *zap.Logger
}

// NewGroupService creates a new group service
func NewGroupService(repo *db.Repository) *GroupService {
	return &GroupService{
		groups: db.NewGroupRepository(repo),
		logger: logging.WithComponent("group-service"),
	}
}

// Create adds a group. The slug must be unique.
func (s *GroupService) Create(ctx context.Context, title, slug, description string) (*models.Group, error) {
	title, err := requiredText("title", title)
	if err != nil {
		return nil, err
	}
	if len([]rune(title)) > maxGroupTitleLength {
		return nil, invalid("title", fmt.Sprintf("Ensure this value has at most %d characters.", maxGroupTitleLength))
	}
	slug = strings.TrimSpace(slug)
	if !slugPattern.MatchString(slug) {
		return nil, invalid("slug", "Enter a valid slug consisting of letters, numbers, underscores or hyphens.")
	}

	existing, err := s.groups.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, NewError(ErrConflict, "slug", "Group with this slug already exists.")
	}

	group := &models.Group{Title: title, Slug: slug}
	if description = strings.TrimSpace(description); description != "" {
		group.Description = sql.NullString{String: description, Valid: true}
	}
	if err := s.groups.Create(ctx, group); err != nil {
		return nil, fmt.Errorf("failed to create group: %w", err)
	}

	s.logger.Info("Group created", zap.String("slug", slug))
	return group, nil
}

// Delete removes a group by slug; its posts stay without a group
func (s *GroupService) Delete(ctx context.Context, slug string) error {
	group, err := s.groups.GetBySlug(ctx, slug)
	if err != nil {
		return err
	}
	if group == nil {
		return notFound("group %q", slug)
	}
	if err := s.groups.Delete(ctx, group.ID); err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}

	s.logger.Info("Group deleted", zap.String("slug", slug))
	return nil
}

// List returns all groups ordered by title
func (s *GroupService) List(ctx context.Context) ([]models.Group, error) {
	return s.groups.List(ctx)
}
