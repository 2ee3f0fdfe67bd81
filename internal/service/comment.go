package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/yatube/yatube/internal/db"
	"github.com/yatube/yatube/internal/models"
	"github.com/yatube/yatube/pkg/logging"
	"github.com/yatube/yatube/pkg/telemetry"
)

// CommentService attaches comments to posts. Comments cannot be edited or
// deleted once written.
type CommentService struct {
	users    *db.UserRepository
	posts    *db.PostRepository
	comments *db.CommentRepository
	logger   *zap.Logger
}

// NewCommentService creates a new comment service
func NewCommentService(repo *db.Repository) *CommentService {
	return &CommentService{
		users:    db.NewUserRepository(repo),
		posts:    db.NewPostRepository(repo),
		comments: db.NewCommentRepository(repo),
		logger:   logging.WithComponent("comment-service"),
	}
}

// ListForPost returns all comments of a post, newest first
func (s *CommentService) ListForPost(ctx context.Context, postID uint64) ([]models.Comment, error) {
	ctx, span := telemetry.StartSpan(ctx, "comments.list_for_post")
	defer span.End()

	return s.comments.ListByPost(ctx, postID)
}

// Add writes a comment by author on the post identified by username and id
func (s *CommentService) Add(ctx context.Context, author *models.User, username string, postID uint64, text string) (*models.Comment, error) {
	ctx, span := telemetry.StartSpan(ctx, "comments.add")
	defer span.End()

	if author == nil {
		return nil, ErrUnauthenticated
	}

	postAuthor, err := lookupAuthor(ctx, s.users, username)
	if err != nil {
		return nil, err
	}
	post, err := s.posts.GetByAuthorAndID(ctx, postAuthor.ID, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, notFound("post %d by %q", postID, username)
	}

	text, err = requiredText("text", text)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{
		PostID:    post.ID,
		AuthorID:  author.ID,
		Text:      text,
		CreatedAt: now(),
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}
	comment.Author = author
	comment.Post = post

	telemetry.Count(ctx, telemetry.CommentsCreated)
	s.logger.Info("Comment added",
		zap.Uint64("comment_id", comment.ID),
		zap.Uint64("post_id", post.ID),
		zap.String("author", author.Username))

	return comment, nil
}
