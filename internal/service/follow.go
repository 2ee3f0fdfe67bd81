package service

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/yatube/yatube/internal/db"
	"github.com/yatube/yatube/internal/models"
	"github.com/yatube/yatube/pkg/logging"
	"github.com/yatube/yatube/pkg/telemetry"
)

// FollowService manages follow edges and the followed-authors feed
type FollowService struct {
	users    *db.UserRepository
	posts    *db.PostRepository
	follows  *db.FollowRepository
	pageSize int
	logger   *zap.Logger
}

// NewFollowService creates a new follow service
func NewFollowService(repo *db.Repository, pageSize int) *FollowService {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &FollowService{
		users:    db.NewUserRepository(repo),
		posts:    db.NewPostRepository(repo),
		follows:  db.NewFollowRepository(repo),
		pageSize: pageSize,
		logger:   logging.WithComponent("follow-service"),
	}
}

// IsFollowing reports whether follower follows author. Anonymous callers
// follow nobody.
func (s *FollowService) IsFollowing(ctx context.Context, follower, author *models.User) (bool, error) {
	if follower == nil || author == nil {
		return false, nil
	}
	return s.follows.Exists(ctx, follower.ID, author.ID)
}

// Follow adds the edge follower -> username. Following yourself or an
// author you already follow is a no-op.
func (s *FollowService) Follow(ctx context.Context, follower *models.User, username string) error {
	ctx, span := telemetry.StartSpan(ctx, "follows.follow")
	defer span.End()

	if follower == nil {
		return ErrUnauthenticated
	}
	author, err := lookupAuthor(ctx, s.users, username)
	if err != nil {
		return err
	}
	if author.ID == follower.ID {
		return nil
	}

	inserted, err := s.follows.Create(ctx, &models.Follow{
		UserID:    follower.ID,
		AuthorID:  author.ID,
		CreatedAt: now(),
	})
	if err != nil {
		return fmt.Errorf("failed to follow %q: %w", username, err)
	}
	if inserted {
		telemetry.Count(ctx, telemetry.FollowsChanged, attribute.String("action", "follow"))
		s.logger.Info("Follow added",
			zap.String("follower", follower.Username),
			zap.String("author", author.Username))
	}
	return nil
}

// Unfollow removes the edge follower -> username. Unfollowing an author
// that was never followed is ErrNotFound.
func (s *FollowService) Unfollow(ctx context.Context, follower *models.User, username string) error {
	ctx, span := telemetry.StartSpan(ctx, "follows.unfollow")
	defer span.End()

	if follower == nil {
		return ErrUnauthenticated
	}
	author, err := lookupAuthor(ctx, s.users, username)
	if err != nil {
		return err
	}

	removed, err := s.follows.Delete(ctx, follower.ID, author.ID)
	if err != nil {
		return fmt.Errorf("failed to unfollow %q: %w", username, err)
	}
	if !removed {
		return notFound("%q does not follow %q", follower.Username, username)
	}

	telemetry.Count(ctx, telemetry.FollowsChanged, attribute.String("action", "unfollow"))
	s.logger.Info("Follow removed",
		zap.String("follower", follower.Username),
		zap.String("author", author.Username))
	return nil
}

// Feed returns a page of posts by every author follower follows, newest
// first. Following nobody yields an empty page.
func (s *FollowService) Feed(ctx context.Context, follower *models.User, page int) (*db.Page[models.Post], error) {
	ctx, span := telemetry.StartSpan(ctx, "follows.feed")
	defer span.End()

	if follower == nil {
		return nil, ErrUnauthenticated
	}
	return s.posts.PageByFollower(ctx, follower.ID, page, s.pageSize)
}

// Counts returns how many users follow user and how many user follows
func (s *FollowService) Counts(ctx context.Context, user *models.User) (followers, following int64, err error) {
	if followers, err = s.follows.CountFollowers(ctx, user.ID); err != nil {
		return 0, 0, err
	}
	if following, err = s.follows.CountFollowing(ctx, user.ID); err != nil {
		return 0, 0, err
	}
	return followers, following, nil
}
