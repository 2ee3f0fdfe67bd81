package db

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yatube/yatube/internal/models"
)

// Repository provides database access methods
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new repository
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// first loads one row into dest; a missing row yields (false, nil).
func (r *Repository) first(ctx context.Context, dest interface{}, query *gorm.DB) (bool, error) {
	if err := query.WithContext(ctx).First(dest).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// UserRepository provides user-related database operations
type UserRepository struct {
	*Repository
}

// NewUserRepository creates a new user repository
func NewUserRepository(repo *Repository) *UserRepository {
	return &UserRepository{Repository: repo}
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id uint64) (*models.User, error) {
	var user models.User
	found, err := r.first(ctx, &user, r.db.Where("id = ?", id))
	if err != nil || !found {
		return nil, err
	}
	return &user, nil
}

// GetByUsername retrieves a user by username
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	found, err := r.first(ctx, &user, r.db.Where("username = ?", username))
	if err != nil || !found {
		return nil, err
	}
	return &user, nil
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// GroupRepository provides group-related database operations
type GroupRepository struct {
	*Repository
}

// NewGroupRepository creates a new group repository
func NewGroupRepository(repo *Repository) *GroupRepository {
	return &GroupRepository{Repository: repo}
}

// GetByID retrieves a group by ID
func (r *GroupRepository) GetByID(ctx context.Context, id uint64) (*models.Group, error) {
	var group models.Group
	found, err := r.first(ctx, &group, r.db.Where("id = ?", id))
	if err != nil || !found {
		return nil, err
	}
	return &group, nil
}

// GetBySlug retrieves a group by slug
func (r *GroupRepository) GetBySlug(ctx context.Context, slug string) (*models.Group, error) {
	var group models.Group
	found, err := r.first(ctx, &group, r.db.Where("slug = ?", slug))
	if err != nil || !found {
		return nil, err
	}
	return &group, nil
}

// List returns all groups ordered by title
func (r *GroupRepository) List(ctx context.Context) ([]models.Group, error) {
	var groups []models.Group
	if err := r.db.WithContext(ctx).Order("title").Find(&groups).Error; err != nil {
		return nil, err
	}
	return groups, nil
}

// Create creates a new group
func (r *GroupRepository) Create(ctx context.Context, group *models.Group) error {
	return r.db.WithContext(ctx).Create(group).Error
}

// Delete removes a group; its posts stay with a NULL group
func (r *GroupRepository) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Delete(&models.Group{}, id).Error
}

// PostRepository provides post-related database operations
type PostRepository struct {
	*Repository
}

// NewPostRepository creates a new post repository
func NewPostRepository(repo *Repository) *PostRepository {
	return &PostRepository{Repository: repo}
}

// withRelations preloads author and group in the default order
func withRelations(q *gorm.DB) *gorm.DB {
	return q.Preload("Author").Preload("Group").Order(models.PostOrder)
}

func (r *PostRepository) posts(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Post{})
}

// GetByAuthorAndID retrieves a post only if it belongs to the given author
func (r *PostRepository) GetByAuthorAndID(ctx context.Context, authorID, id uint64) (*models.Post, error) {
	var post models.Post
	found, err := r.first(ctx, &post, withRelations(r.db).Where("id = ? AND author_id = ?", id, authorID))
	if err != nil || !found {
		return nil, err
	}
	return &post, nil
}

// Create creates a new post without touching its associations
func (r *PostRepository) Create(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(post).Error
}

// UpdateContent writes the editable columns only; author and pub_date are
// never part of the statement.
func (r *PostRepository) UpdateContent(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).
		Model(&models.Post{ID: post.ID}).
		Select("text", "group_id", "image").
		Updates(map[string]interface{}{
			"text":     post.Text,
			"group_id": post.GroupID,
			"image":    post.Image,
		}).Error
}

// CountByAuthor counts an author's posts
func (r *PostRepository) CountByAuthor(ctx context.Context, authorID uint64) (int64, error) {
	var count int64
	err := r.posts(ctx).Where("author_id = ?", authorID).Count(&count).Error
	return count, err
}

// PageAll returns a page of every post
func (r *PostRepository) PageAll(ctx context.Context, number, size int) (*Page[models.Post], error) {
	return Paginate[models.Post](r.posts(ctx), number, size, withRelations)
}

// PageByGroup returns a page of one group's posts
func (r *PostRepository) PageByGroup(ctx context.Context, groupID uint64, number, size int) (*Page[models.Post], error) {
	return Paginate[models.Post](r.posts(ctx).Where("group_id = ?", groupID), number, size, withRelations)
}

// PageByAuthor returns a page of one author's posts
func (r *PostRepository) PageByAuthor(ctx context.Context, authorID uint64, number, size int) (*Page[models.Post], error) {
	return Paginate[models.Post](r.posts(ctx).Where("author_id = ?", authorID), number, size, withRelations)
}

// PageByFollower returns a page of posts written by anyone the follower
// follows, resolved as one sub-select against the follow edges.
func (r *PostRepository) PageByFollower(ctx context.Context, followerID uint64, number, size int) (*Page[models.Post], error) {
	followed := r.db.Model(&models.Follow{}).Select("author_id").Where("user_id = ?", followerID)
	return Paginate[models.Post](r.posts(ctx).Where("author_id IN (?)", followed), number, size, withRelations)
}

// CommentRepository provides comment-related database operations
type CommentRepository struct {
	*Repository
}

// NewCommentRepository creates a new comment repository
func NewCommentRepository(repo *Repository) *CommentRepository {
	return &CommentRepository{Repository: repo}
}

// ListByPost returns a post's comments, newest first
func (r *CommentRepository) ListByPost(ctx context.Context, postID uint64) ([]models.Comment, error) {
	var comments []models.Comment
	if err := r.db.WithContext(ctx).
		Preload("Author").
		Where("post_id = ?", postID).
		Order("created DESC, id DESC").
		Find(&comments).Error; err != nil {
		return nil, err
	}
	return comments, nil
}

// Create creates a new comment
func (r *CommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(comment).Error
}

// FollowRepository provides follow-edge database operations
type FollowRepository struct {
	*Repository
}

// NewFollowRepository creates a new follow repository
func NewFollowRepository(repo *Repository) *FollowRepository {
	return &FollowRepository{Repository: repo}
}

// Exists reports whether userID follows authorID
func (r *FollowRepository) Exists(ctx context.Context, userID, authorID uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Count(&count).Error
	return count > 0, err
}

// Create inserts the edge; an existing edge is left untouched. Reports
// whether a row was inserted.
func (r *FollowRepository) Create(ctx context.Context, follow *models.Follow) (bool, error) {
	res := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(follow)
	return res.RowsAffected > 0, res.Error
}

// Delete removes the edge. Reports whether a row was removed.
func (r *FollowRepository) Delete(ctx context.Context, userID, authorID uint64) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Delete(&models.Follow{})
	return res.RowsAffected > 0, res.Error
}

// CountFollowers counts users following authorID
func (r *FollowRepository) CountFollowers(ctx context.Context, authorID uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Follow{}).Where("author_id = ?", authorID).Count(&count).Error
	return count, err
}

// CountFollowing counts authors userID follows
func (r *FollowRepository) CountFollowing(ctx context.Context, userID uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Follow{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}
