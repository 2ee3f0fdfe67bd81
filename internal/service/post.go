package service

import (
	"context"
	"fmt"
	"io"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/yatube/yatube/internal/db"
	"github.com/yatube/yatube/internal/media"
	"github.com/yatube/yatube/internal/models"
	"github.com/yatube/yatube/pkg/logging"
	"github.com/yatube/yatube/pkg/telemetry"
)

// Upload is an image submitted with a post form
type Upload struct {
	Filename string
	Body     io.Reader
}

// PostInput holds the editable fields of a post
type PostInput struct {
	Text    string
	GroupID *uint64
	Image   *Upload
}

// PostService creates, edits and lists posts
type PostService struct {
	users    *db.UserRepository
	groups   *db.GroupRepository
	posts    *db.PostRepository
	media    media.Store
	pageSize int
	logger   *zap.Logger
}

// NewPostService creates a new post service. store may be nil, in which
// case posts carrying an image are rejected.
func NewPostService(repo *db.Repository, store media.Store, pageSize int) *PostService {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &PostService{
		users:    db.NewUserRepository(repo),
		groups:   db.NewGroupRepository(repo),
		posts:    db.NewPostRepository(repo),
		media:    store,
		pageSize: pageSize,
		logger:   logging.WithComponent("post-service"),
	}
}

// ListFeed returns a page of all posts, newest first
func (s *PostService) ListFeed(ctx context.Context, page int) (*db.Page[models.Post], error) {
	ctx, span := telemetry.StartSpan(ctx, "posts.list_feed")
	defer span.End()

	return s.posts.PageAll(ctx, page, s.pageSize)
}

// ListByGroup returns the group and a page of its posts
func (s *PostService) ListByGroup(ctx context.Context, slug string, page int) (*models.Group, *db.Page[models.Post], error) {
	ctx, span := telemetry.StartSpan(ctx, "posts.list_by_group")
	defer span.End()

	group, err := s.groups.GetBySlug(ctx, slug)
	if err != nil {
		return nil, nil, err
	}
	if group == nil {
		return nil, nil, notFound("group %q", slug)
	}

	posts, err := s.posts.PageByGroup(ctx, group.ID, page, s.pageSize)
	if err != nil {
		return nil, nil, err
	}
	return group, posts, nil
}

// ListByAuthor returns the author and a page of their posts. The page's
// Total is the author's post count.
func (s *PostService) ListByAuthor(ctx context.Context, username string, page int) (*models.User, *db.Page[models.Post], error) {
	ctx, span := telemetry.StartSpan(ctx, "posts.list_by_author")
	defer span.End()

	author, err := lookupAuthor(ctx, s.users, username)
	if err != nil {
		return nil, nil, err
	}

	posts, err := s.posts.PageByAuthor(ctx, author.ID, page, s.pageSize)
	if err != nil {
		return nil, nil, err
	}
	return author, posts, nil
}

// Get returns one post of the named author along with the author's post
// count. A post that exists under a different author is not found.
func (s *PostService) Get(ctx context.Context, username string, postID uint64) (*models.Post, int64, error) {
	ctx, span := telemetry.StartSpan(ctx, "posts.get")
	defer span.End()

	author, err := lookupAuthor(ctx, s.users, username)
	if err != nil {
		return nil, 0, err
	}

	post, err := s.posts.GetByAuthorAndID(ctx, author.ID, postID)
	if err != nil {
		return nil, 0, err
	}
	if post == nil {
		return nil, 0, notFound("post %d by %q", postID, username)
	}

	count, err := s.posts.CountByAuthor(ctx, author.ID)
	if err != nil {
		return nil, 0, err
	}
	return post, count, nil
}

// Groups lists the groups a post may be filed under
func (s *PostService) Groups(ctx context.Context) ([]models.Group, error) {
	return s.groups.List(ctx)
}

// Create persists a new post owned by author
func (s *PostService) Create(ctx context.Context, author *models.User, in PostInput) (*models.Post, error) {
	ctx, span := telemetry.StartSpan(ctx, "posts.create")
	defer span.End()

	if author == nil {
		return nil, ErrUnauthenticated
	}

	post := &models.Post{AuthorID: author.ID}
	if err := s.apply(ctx, post, in); err != nil {
		return nil, err
	}
	post.PubDate = now()

	if err := s.posts.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}
	post.Author = author

	telemetry.Count(ctx, telemetry.PostsCreated)
	s.logger.Info("Post created",
		zap.Uint64("post_id", post.ID),
		zap.String("author", author.Username))

	return post, nil
}

// CanEdit reports whether user may edit post
func CanEdit(user *models.User, post *models.Post) bool {
	return user != nil && post != nil && user.ID == post.AuthorID
}

// Edit changes text, group and image of a post in place. Only the author may
// edit; pub_date and author never change. A nil image keeps the current one.
func (s *PostService) Edit(ctx context.Context, editor *models.User, username string, postID uint64, in PostInput) (*models.Post, error) {
	ctx, span := telemetry.StartSpan(ctx, "posts.edit")
	defer span.End()

	if editor == nil {
		return nil, ErrUnauthenticated
	}

	post, _, err := s.Get(ctx, username, postID)
	if err != nil {
		return nil, err
	}
	if !CanEdit(editor, post) {
		s.logger.Warn("Edit rejected for non-author",
			zap.Uint64("post_id", post.ID),
			zap.String("editor", editor.Username))
		return nil, NewError(ErrForbidden, "", "only the author may edit this post")
	}

	if err := s.apply(ctx, post, in); err != nil {
		return nil, err
	}
	if err := s.posts.UpdateContent(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to update post: %w", err)
	}

	telemetry.Count(ctx, telemetry.PostsEdited, attribute.String("author", editor.Username))
	s.logger.Info("Post edited", zap.Uint64("post_id", post.ID))

	return post, nil
}

// apply validates in and copies it onto post. The image is stored last so
// invalid forms never leave orphaned files behind.
func (s *PostService) apply(ctx context.Context, post *models.Post, in PostInput) error {
	text, err := requiredText("text", in.Text)
	if err != nil {
		return err
	}

	var group *models.Group
	if in.GroupID != nil {
		group, err = s.groups.GetByID(ctx, *in.GroupID)
		if err != nil {
			return err
		}
		if group == nil {
			return invalid("group", "Select a valid choice.")
		}
	}

	if in.Image != nil {
		if s.media == nil {
			return invalid("image", "Image uploads are not enabled.")
		}
		key, err := s.media.Save(ctx, in.Image.Filename, in.Image.Body)
		if err != nil {
			if msg := media.ValidationMessage(err); msg != "" {
				return invalid("image", msg)
			}
			return fmt.Errorf("failed to store image: %w", err)
		}
		post.Image = key
	}

	post.Text = text
	post.GroupID = in.GroupID
	post.Group = group
	return nil
}
